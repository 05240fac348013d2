package timesheet

import "context"

// RowStore abstracts the external spreadsheet holding time log rows so the
// reconciliation engine can be tested against an in-memory fake.
//
// Row indices are 1-based sheet positions and shift when rows above them are
// deleted. Implementations delete the rows for DeleteRows one at a time in the
// order given; the engine passes indices in descending order so earlier
// deletions never invalidate later ones.
type RowStore interface {
	// FindRows returns all stored rows for the given day and staff member,
	// each annotated with its current row index.
	FindRows(ctx context.Context, date, staffID string) ([]StoredRow, error)

	// UpdateRow overwrites the full cell range of the row at index.
	UpdateRow(ctx context.Context, index int64, row Row) error

	// AppendRows inserts new rows at the end of the time log in one batch.
	AppendRows(ctx context.Context, rows []Row) error

	// DeleteRows removes exactly one row per index, in the order given.
	DeleteRows(ctx context.Context, indices []int64) error
}
