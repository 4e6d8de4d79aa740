package names

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize folds a free-text person name into its canonical matching key:
// lowercase, diacritics stripped, whitespace trimmed and collapsed.
// Records from independently entered data sources (tracker vs. sheet)
// are matched on this key and nothing else.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return s
	}
	s = stripDiacritics(s)
	return whitespaceRe.ReplaceAllString(s, " ")
}

// Same reports whether two free-text names denote the same person.
// An exact case-insensitive match succeeds without decomposition.
func Same(a, b string) bool {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return true
	}
	return Normalize(a) == Normalize(b)
}

// stripDiacritics decomposes the string into NFD form and drops
// combining marks (unicode.Mn), so "José" compares equal to "Jose".
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var result strings.Builder
	result.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
