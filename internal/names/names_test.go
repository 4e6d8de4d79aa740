package names

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Jane Doe", "jane doe"},
		{"diacritics stripped", "José García", "jose garcia"},
		{"lithuanian dot above", "GIEDRĖ", "giedre"},
		{"whitespace collapsed", "  Jane   Doe ", "jane doe"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSame(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact", "Jane Doe", "Jane Doe", true},
		{"case insensitive", "jane doe", "JANE DOE", true},
		{"accents", "José García", "Jose Garcia", true},
		{"accents reversed", "Jose Garcia", "José García", true},
		{"giedre", "GIEDRĖ", "giedre", true},
		{"different people", "Jane Smith", "Jane Smithson", false},
		{"trailing space", "Jane Doe ", "Jane Doe", true},
		{"both empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Same(tt.a, tt.b); got != tt.want {
				t.Errorf("Same(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
