package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and local mode.
type MemoryStore struct {
	mu   sync.RWMutex
	tabs map[string][][]string

	// Writes records every mutation in order, so tests can assert on
	// exactly which cells a reconciliation run touched.
	Writes []string
}

// NewMemoryStore creates an empty in-memory spreadsheet.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tabs: make(map[string][][]string)}
}

// Seed replaces the contents of a tab.
func (s *MemoryStore) Seed(tab string, values [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([][]string, len(values))
	for i, row := range values {
		copied[i] = append([]string(nil), row...)
	}
	s.tabs[tab] = copied
}

// ReadRange returns a copy of the tab's values.
func (s *MemoryStore) ReadRange(_ context.Context, tab string) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.tabs[tab]
	if !ok {
		return nil, fmt.Errorf("unknown tab %q", tab)
	}
	copied := make([][]string, len(values))
	for i, row := range values {
		copied[i] = append([]string(nil), row...)
	}
	return copied, nil
}

// UpdateCell patches a single cell by column letter and 1-based row.
func (s *MemoryStore) UpdateCell(_ context.Context, tab, column string, row int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, ok := s.tabs[tab]
	if !ok {
		return fmt.Errorf("unknown tab %q", tab)
	}
	if row < 1 || row > len(values) {
		return fmt.Errorf("row %d out of range for tab %q", row, tab)
	}

	col := columnIndex(column)
	if col < 0 {
		return fmt.Errorf("invalid column %q", column)
	}
	cells := values[row-1]
	for len(cells) <= col {
		cells = append(cells, "")
	}
	cells[col] = value
	values[row-1] = cells

	s.Writes = append(s.Writes, fmt.Sprintf("update %s!%s%d=%s", tab, column, row, value))
	return nil
}

// AppendRows appends rows to the end of the tab.
func (s *MemoryStore) AppendRows(_ context.Context, tab string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tabs[tab]; !ok {
		return fmt.Errorf("unknown tab %q", tab)
	}
	for _, row := range rows {
		s.tabs[tab] = append(s.tabs[tab], append([]string(nil), row...))
		s.Writes = append(s.Writes, fmt.Sprintf("append %s:%v", tab, row))
	}
	return nil
}

// WriteCount returns the number of recorded mutations.
func (s *MemoryStore) WriteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Writes)
}

// columnIndex converts an A1 column letter back to a 0-based index,
// returning -1 for invalid input.
func columnIndex(column string) int {
	if column == "" {
		return -1
	}
	idx := 0
	for _, r := range column {
		if r < 'A' || r > 'Z' {
			return -1
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}
