package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

func sampleRow() timesheet.Row {
	return timesheet.Row{
		ID:            "a1b2c3d4e5f60718",
		Date:          "2024-03-15",
		StaffID:       "S001",
		FirstName:     "Ann",
		LastName:      "Chan",
		Position:      "Engineer",
		ProjectID:     "P001",
		ProjectClient: "ACME",
		ProjectName:   "Website",
		ProjectCode:   "WEB",
		TaskID:        "T001",
		TaskName:      "Development",
		Hours:         7.5,
	}
}

func TestRowValuesRoundTrip(t *testing.T) {
	t.Parallel()

	row := sampleRow()
	values := rowToValues(&row)
	require.Len(t, values, timeLogColumns)

	decoded, err := valuesToRow(values)
	require.NoError(t, err)
	assert.Equal(t, row, decoded)
}

func TestValuesToRowNormalizesDate(t *testing.T) {
	t.Parallel()

	row := sampleRow()
	values := rowToValues(&row)
	values[1] = "15/03/2024"

	decoded, err := valuesToRow(values)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", decoded.Date)
}

func TestValuesToRowHoursAsString(t *testing.T) {
	t.Parallel()

	row := sampleRow()
	values := rowToValues(&row)
	values[12] = "7.5"

	decoded, err := valuesToRow(values)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, decoded.Hours, 0.0001)
}

func TestValuesToRowRejectsShortRow(t *testing.T) {
	t.Parallel()

	_, err := valuesToRow([]any{"id", "2024-03-15", "S001"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryRowParsing))
}

func TestValuesToRowRejectsBadDate(t *testing.T) {
	t.Parallel()

	row := sampleRow()
	values := rowToValues(&row)
	values[1] = "someday"

	_, err := valuesToRow(values)
	require.Error(t, err)
}

func TestProjectFromValues(t *testing.T) {
	t.Parallel()

	p, ok := projectFromValues([]any{"P001", "ACME", "Website", "WEB"})
	require.True(t, ok)
	assert.Equal(t, timesheet.Project{ID: "P001", Client: "ACME", Name: "Website", Code: "WEB"}, p)

	_, ok = projectFromValues([]any{"", "ACME", "Website", "WEB"})
	assert.False(t, ok, "blank id means an empty sheet row")

	_, ok = projectFromValues([]any{"P001", "ACME"})
	assert.False(t, ok, "short rows are skipped")
}

func TestTaskFromValues(t *testing.T) {
	t.Parallel()

	task, ok := taskFromValues([]any{"T001", "Development"})
	require.True(t, ok)
	assert.Equal(t, timesheet.Task{ID: "T001", Name: "Development"}, task)

	_, ok = taskFromValues([]any{""})
	assert.False(t, ok)
}
