package timesheet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
)

// fakeStore mimics the spreadsheet semantics: rows live in insertion order,
// the stored index is 1-based with data starting at row 2, and deleting a row
// shifts every row below it up.
type fakeStore struct {
	rows []Row

	findCalls   int
	updateCalls int
	appendCalls int
	deleteCalls int

	failFind   error
	failDelete error
}

const fakeFirstDataRow = 2

func (f *fakeStore) FindRows(_ context.Context, date, staffID string) ([]StoredRow, error) {
	f.findCalls++
	if f.failFind != nil {
		return nil, f.failFind
	}
	var matched []StoredRow
	for i := range f.rows {
		if f.rows[i].Date == date && f.rows[i].StaffID == staffID {
			matched = append(matched, StoredRow{Index: int64(i + fakeFirstDataRow), Row: f.rows[i]})
		}
	}
	return matched, nil
}

func (f *fakeStore) UpdateRow(_ context.Context, index int64, row Row) error {
	f.updateCalls++
	f.rows[index-fakeFirstDataRow] = row
	return nil
}

func (f *fakeStore) AppendRows(_ context.Context, rows []Row) error {
	f.appendCalls++
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeStore) DeleteRows(_ context.Context, indices []int64) error {
	f.deleteCalls++
	if f.failDelete != nil {
		return f.failDelete
	}
	for i, index := range indices {
		if i > 0 && index >= indices[i-1] {
			return errors.NewStd("indices must be strictly descending")
		}
		pos := index - fakeFirstDataRow
		f.rows = append(f.rows[:pos], f.rows[pos+1:]...)
	}
	return nil
}

var testStaff = &StaffProfile{
	EmployeeID: "S001",
	FirstName:  "Ann",
	LastName:   "Chan",
	Position:   "Engineer",
}

func entry(projectID, taskID string, hours float64) Entry {
	return Entry{
		Project: Project{ID: projectID, Client: "ACME", Name: "Website", Code: "WEB"},
		Task:    Task{ID: taskID, Name: "Development"},
		Hours:   hours,
	}
}

func TestReconcileAppendsNewDay(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	engine := NewEngine(store)

	err := engine.Reconcile(context.Background(), "2024-03-15", testStaff,
		[]Entry{entry("P1", "T1", 4), entry("P2", "T1", 3)})
	require.NoError(t, err)

	assert.Len(t, store.rows, 2)
	assert.Equal(t, 1, store.appendCalls, "new pairings go out as one batch")
	assert.Zero(t, store.updateCalls)
	assert.Zero(t, store.deleteCalls)
	assert.Equal(t, EntryID("2024-03-15", "S001", "P1", "T1"), store.rows[0].ID)
}

func TestReconcileEmptySetClearsDay(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff,
		[]Entry{entry("P1", "T1", 4), entry("P2", "T1", 3), entry("P3", "T2", 1)}))
	require.Len(t, store.rows, 3)

	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff, nil))

	assert.Empty(t, store.rows)
	assert.Equal(t, 1, store.deleteCalls)
	assert.Equal(t, 1, store.appendCalls, "only the initial submission appended")
	assert.Zero(t, store.updateCalls)
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	engine := NewEngine(store)
	ctx := context.Background()
	desired := []Entry{entry("P1", "T1", 4)}

	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff, desired))
	after := append([]Row(nil), store.rows...)
	appends := store.appendCalls

	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff, desired))

	assert.Equal(t, after, store.rows, "second identical submission leaves the stored state unchanged")
	assert.Equal(t, appends, store.appendCalls, "no new rows on resubmission")
	assert.Zero(t, store.deleteCalls)
}

func TestReconcileHoursChangeIsSingleUpdate(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff, []Entry{entry("P1", "T1", 2)}))
	store.updateCalls = 0

	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff, []Entry{entry("P1", "T1", 3)}))

	require.Len(t, store.rows, 1)
	assert.InDelta(t, 3, store.rows[0].Hours, 0.0001)
	assert.Equal(t, 1, store.appendCalls, "hours change is not a delete plus append")
	assert.Zero(t, store.deleteCalls)
}

func TestReconcileMixedDay(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff,
		[]Entry{entry("P1", "T1", 4), entry("P2", "T1", 3)}))

	// Keep P1 with new hours, drop P2, add P3.
	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff,
		[]Entry{entry("P1", "T1", 5), entry("P3", "T2", 1)}))

	require.Len(t, store.rows, 2)
	byProject := map[string]float64{}
	for _, row := range store.rows {
		byProject[row.ProjectID] = row.Hours
	}
	assert.InDelta(t, 5, byProject["P1"], 0.0001)
	assert.InDelta(t, 1, byProject["P3"], 0.0001)
	assert.NotContains(t, byProject, "P2")
}

func TestReconcileDeleteAboveUpdatedRow(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	// P1 lands on row 2, P2 on row 3, a neighbor's entry on row 4.
	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff,
		[]Entry{entry("P1", "T1", 2), entry("P2", "T1", 4)}))
	neighbor := &StaffProfile{EmployeeID: "S002", FirstName: "Bo"}
	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", neighbor, []Entry{entry("P1", "T1", 8)}))

	// Dropping P1 deletes the row above the kept pairing; the update must
	// still land on P2, not on whatever shifts into its old position.
	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff, []Entry{entry("P2", "T1", 5)}))

	require.Len(t, store.rows, 2)
	assert.Equal(t, "P2", store.rows[0].ProjectID)
	assert.Equal(t, "S001", store.rows[0].StaffID)
	assert.InDelta(t, 5, store.rows[0].Hours, 0.0001)
	assert.Equal(t, "S002", store.rows[1].StaffID, "the neighbor's row survives untouched")
	assert.InDelta(t, 8, store.rows[1].Hours, 0.0001)
	assert.Equal(t, 1, store.deleteCalls)
}

func TestReconcileLeavesOtherDaysAlone(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	otherStaff := &StaffProfile{EmployeeID: "S002", FirstName: "Bo"}
	require.NoError(t, engine.Reconcile(ctx, "2024-03-14", testStaff, []Entry{entry("P1", "T1", 8)}))
	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", otherStaff, []Entry{entry("P1", "T1", 8)}))

	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff, nil))

	assert.Len(t, store.rows, 2, "other days and other staff survive a clear")
}

func TestReconcileDeletionsDescendAcrossMultipleRows(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff,
		[]Entry{entry("P1", "T1", 1), entry("P2", "T1", 2), entry("P3", "T1", 3), entry("P4", "T1", 4)}))

	// The fake rejects any non-descending index sequence, so success here
	// proves the ordering contract.
	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff, nil))
	assert.Empty(t, store.rows)
}

func TestReconcilePropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failFind: errors.NewStd("boom")}
	engine := NewEngine(store)

	err := engine.Reconcile(context.Background(), "2024-03-15", testStaff, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryReconcile))
}

func TestReconcileStopsAfterFailedDelete(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	engine := NewEngine(store)
	ctx := context.Background()

	require.NoError(t, engine.Reconcile(ctx, "2024-03-15", testStaff, []Entry{entry("P1", "T1", 4)}))
	store.failDelete = errors.NewStd("quota exceeded")

	err := engine.Reconcile(ctx, "2024-03-15", testStaff, []Entry{entry("P2", "T1", 2)})
	require.Error(t, err)
	assert.Zero(t, store.updateCalls)
	assert.Equal(t, 1, store.appendCalls, "no append after a failed delete")
}
