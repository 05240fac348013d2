package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

// timeLogColumns is the fixed width of a Time Log row (columns A through M).
const timeLogColumns = 13

// rowToValues converts a typed row into the positional cell layout of the
// Time Log sheet.
func rowToValues(row *timesheet.Row) []any {
	return []any{
		row.ID,
		row.Date,
		row.StaffID,
		row.FirstName,
		row.LastName,
		row.Position,
		row.ProjectID,
		row.ProjectClient,
		row.ProjectName,
		row.ProjectCode,
		row.TaskID,
		row.TaskName,
		row.Hours,
	}
}

// valuesToRow converts a positional cell slice into a typed row, normalizing
// the date column. Short rows and rows with unparseable dates are rejected;
// callers drop them from read results.
func valuesToRow(values []any) (timesheet.Row, error) {
	if len(values) < timeLogColumns {
		return timesheet.Row{}, errors.Newf("short time log row: %d of %d columns", len(values), timeLogColumns).
			Category(errors.CategoryRowParsing).
			Build()
	}

	date, err := NormalizeDate(cellString(values[1]))
	if err != nil {
		return timesheet.Row{}, err
	}

	return timesheet.Row{
		ID:            cellString(values[0]),
		Date:          date,
		StaffID:       cellString(values[2]),
		FirstName:     cellString(values[3]),
		LastName:      cellString(values[4]),
		Position:      cellString(values[5]),
		ProjectID:     cellString(values[6]),
		ProjectClient: cellString(values[7]),
		ProjectName:   cellString(values[8]),
		ProjectCode:   cellString(values[9]),
		TaskID:        cellString(values[10]),
		TaskName:      cellString(values[11]),
		Hours:         cellFloat(values[12]),
	}, nil
}

// projectFromValues maps a Projects sheet row (id, client, name, code).
func projectFromValues(values []any) (timesheet.Project, bool) {
	if len(values) < 4 || cellString(values[0]) == "" {
		return timesheet.Project{}, false
	}
	return timesheet.Project{
		ID:     cellString(values[0]),
		Client: cellString(values[1]),
		Name:   cellString(values[2]),
		Code:   cellString(values[3]),
	}, true
}

// taskFromValues maps a Roles and Tasks sheet row (id, name).
func taskFromValues(values []any) (timesheet.Task, bool) {
	if len(values) < 2 || cellString(values[0]) == "" {
		return timesheet.Task{}, false
	}
	return timesheet.Task{
		ID:   cellString(values[0]),
		Name: cellString(values[1]),
	}, true
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func cellFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
