// Package timesheet holds the core domain types and the reconciliation engine
// that keeps a day's stored time log rows in sync with a submitted entry set.
package timesheet

// Project is a reference entity sourced from the Projects sheet.
type Project struct {
	ID     string `json:"projectId"`
	Client string `json:"projectClient"`
	Name   string `json:"projectName"`
	Code   string `json:"projectCode"`
}

// Task is a reference entity sourced from the Roles and Tasks sheet.
type Task struct {
	ID   string `json:"taskId"`
	Name string `json:"task"`
}

// StaffProfile carries the HR directory metadata attached to a session at
// sign-in. It is never persisted beyond the session lifetime.
type StaffProfile struct {
	EmployeeID string `json:"employeeId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Nickname   string `json:"nickname"`
	Email      string `json:"email"`
	Position   string `json:"position"`
}

// EntryInput is one submitted line of a day: a project/task pairing with hours.
type EntryInput struct {
	ProjectID string  `json:"projectId"`
	TaskID    string  `json:"taskId"`
	Hours     float64 `json:"hours"`
}

// Entry is a submitted line with its project and task references resolved
// against the cached master data.
type Entry struct {
	Project Project
	Task    Task
	Hours   float64
}

// Row is the typed form of one Time Log sheet row. Column order in the sheet
// follows field order here: id, date, staff id, first name, last name,
// position, project id/client/name/code, task id/name, hours.
type Row struct {
	ID            string  `json:"id"`
	Date          string  `json:"date"` // YYYY-MM-DD
	StaffID       string  `json:"staffId"`
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Position      string  `json:"position"`
	ProjectID     string  `json:"projectId"`
	ProjectClient string  `json:"projectClient"`
	ProjectName   string  `json:"projectName"`
	ProjectCode   string  `json:"projectCode"`
	TaskID        string  `json:"taskId"`
	TaskName      string  `json:"task"`
	Hours         float64 `json:"hours"`
}

// StoredRow couples a Row with its current 1-based sheet row index. The index
// is ephemeral: deleting rows above shifts it, so callers must re-resolve on
// each operation rather than caching indices across calls.
type StoredRow struct {
	Index int64
	Row   Row
}

// BuildRow assembles the stored representation of a submitted entry for a
// given day and staff member, including its derived identifier.
func BuildRow(date string, staff *StaffProfile, entry *Entry) Row {
	return Row{
		ID:            EntryID(date, staff.EmployeeID, entry.Project.ID, entry.Task.ID),
		Date:          date,
		StaffID:       staff.EmployeeID,
		FirstName:     staff.FirstName,
		LastName:      staff.LastName,
		Position:      staff.Position,
		ProjectID:     entry.Project.ID,
		ProjectClient: entry.Project.Client,
		ProjectName:   entry.Project.Name,
		ProjectCode:   entry.Project.Code,
		TaskID:        entry.Task.ID,
		TaskName:      entry.Task.Name,
		Hours:         entry.Hours,
	}
}
