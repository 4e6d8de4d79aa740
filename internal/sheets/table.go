package sheets

import "strings"

// Table is a header-indexed view over a rectangular range read.
// Column lookup is always by case-insensitive header name, never by
// fixed position, because header order varies per tab.
type Table struct {
	Headers []string
	Rows    [][]string

	headerIdx map[string]int
	headerRow int // 1-based sheet row holding the headers
}

// NewTable builds a table from raw range values, treating the first
// row as headers. Duplicate headers keep the first occurrence.
func NewTable(values [][]string) *Table {
	return NewTableAt(values, 1)
}

// NewTableAt is NewTable with a configurable 1-based header row
// position within the sheet, for tabs that carry rows above the table.
func NewTableAt(values [][]string, headerRow int) *Table {
	t := &Table{
		headerIdx: make(map[string]int),
		headerRow: headerRow,
	}
	if len(values) == 0 {
		return t
	}

	t.Headers = values[0]
	t.Rows = values[1:]
	for i, h := range t.Headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, exists := t.headerIdx[key]; !exists {
			t.headerIdx[key] = i
		}
	}
	return t
}

// Column returns the 0-based column index for a header name.
func (t *Table) Column(name string) (int, bool) {
	idx, ok := t.headerIdx[strings.ToLower(strings.TrimSpace(name))]
	return idx, ok
}

// Cell returns the trimmed value at the given data row (0-based,
// excluding the header row) and header name. Ragged rows read as "".
func (t *Table) Cell(row int, name string) string {
	idx, ok := t.Column(name)
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	cells := t.Rows[row]
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// RowNumber converts a 0-based data row index into the 1-based sheet
// row number used for single-cell patches.
func (t *Table) RowNumber(row int) int {
	return t.headerRow + 1 + row
}

// ColumnLetter converts a 0-based column index into its A1-notation
// letter ("A", "B", ..., "AA").
func ColumnLetter(idx int) string {
	letter := ""
	for idx >= 0 {
		letter = string(rune('A'+idx%26)) + letter
		idx = idx/26 - 1
	}
	return letter
}
