package timesheet

import (
	"context"
	"log/slog"
	"sort"

	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
	"github.com/shopstack-asia/shopstack-timesheet/internal/logging"
)

// pairKey identifies an entry within a day: the (project, task) pairing.
type pairKey struct {
	projectID string
	taskID    string
}

// Engine reconciles a day's submitted entries against the stored rows.
type Engine struct {
	store  RowStore
	logger *slog.Logger
}

// NewEngine creates a reconciliation engine over the given row store.
func NewEngine(store RowStore) *Engine {
	return &Engine{
		store:  store,
		logger: logging.ForService("reconcile"),
	}
}

// Reconcile makes the stored rows for (date, staff) match the desired entry
// set: rows whose pairing was dropped are deleted, matching pairings are
// updated in place, new pairings are appended in one batch. An empty desired
// set clears the whole day. The operation is idempotent.
//
// Updates run first so every index from the initial read is still valid, then
// deletes in descending row-index order, then the append batch. There is no
// rollback: the first store error aborts the remaining steps, so partial
// application is a possible failure mode.
//
// Two concurrent reconciles for the same (date, staff) can race and both
// append, creating a duplicate pairing. The store offers no transactions and
// this limitation is accepted; do not add locking here without revisiting the
// documented behavior.
func (e *Engine) Reconcile(ctx context.Context, date string, staff *StaffProfile, desired []Entry) error {
	stored, err := e.store.FindRows(ctx, date, staff.EmployeeID)
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryReconcile).
			Context("date", date).
			Context("staff_id", staff.EmployeeID).
			Build()
	}

	existing := make(map[pairKey]StoredRow, len(stored))
	for _, sr := range stored {
		existing[pairKey{sr.Row.ProjectID, sr.Row.TaskID}] = sr
	}

	wanted := make(map[pairKey]struct{}, len(desired))
	for i := range desired {
		wanted[pairKey{desired[i].Project.ID, desired[i].Task.ID}] = struct{}{}
	}

	// Stored pairings absent from the submission are scheduled for deletion.
	var deletions []int64
	for key, sr := range existing {
		if _, ok := wanted[key]; !ok {
			deletions = append(deletions, sr.Index)
		}
	}
	// Descending order so earlier deletions do not shift rows not yet deleted.
	sort.Slice(deletions, func(i, j int) bool { return deletions[i] > deletions[j] })

	type update struct {
		index int64
		row   Row
	}
	var updates []update
	var appends []Row
	for i := range desired {
		row := BuildRow(date, staff, &desired[i])
		if sr, ok := existing[pairKey{row.ProjectID, row.TaskID}]; ok {
			updates = append(updates, update{index: sr.Index, row: row})
		} else {
			appends = append(appends, row)
		}
	}

	// Updates go first: a deletion above an updated row would shift it and
	// leave the captured index pointing at a different row.
	for _, u := range updates {
		if err := e.store.UpdateRow(ctx, u.index, u.row); err != nil {
			return errors.New(err).
				Category(errors.CategoryReconcile).
				Context("date", date).
				Context("staff_id", staff.EmployeeID).
				Context("row_index", u.index).
				Build()
		}
	}

	if len(deletions) > 0 {
		if err := e.store.DeleteRows(ctx, deletions); err != nil {
			return errors.New(err).
				Category(errors.CategoryReconcile).
				Context("date", date).
				Context("staff_id", staff.EmployeeID).
				Context("deletions", len(deletions)).
				Build()
		}
	}

	if len(appends) > 0 {
		if err := e.store.AppendRows(ctx, appends); err != nil {
			return errors.New(err).
				Category(errors.CategoryReconcile).
				Context("date", date).
				Context("staff_id", staff.EmployeeID).
				Context("appends", len(appends)).
				Build()
		}
	}

	e.logger.Info("day reconciled",
		"date", date,
		"staff_id", staff.EmployeeID,
		"deleted", len(deletions),
		"updated", len(updates),
		"appended", len(appends))

	return nil
}
