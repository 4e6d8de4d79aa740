package sheets

import "context"

// Store provides rectangular range reads and writes against one
// spreadsheet. Writes are either a single-cell patch addressed by
// column letter + row number, or a multi-row append at the bottom of
// a tab. Reads return string cells with the header row included.
type Store interface {
	ReadRange(ctx context.Context, tab string) ([][]string, error)
	UpdateCell(ctx context.Context, tab, column string, row int, value string) error
	AppendRows(ctx context.Context, tab string, rows [][]string) error
}
