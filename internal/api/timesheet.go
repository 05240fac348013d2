package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopstack-asia/shopstack-timesheet/internal/security"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

const dateLayout = "2006-01-02"

// weekResponse groups the week's stored rows by calendar day.
type weekResponse struct {
	WeekStart string                     `json:"weekStart"`
	WeekEnd   string                     `json:"weekEnd"`
	Days      map[string][]timesheet.Row `json:"days"`
}

// handleGetWeek returns the signed-in staff member's entries for the Monday
// through Friday window starting at weekStart.
func (c *Controller) handleGetWeek(ec echo.Context) error {
	profile := security.ProfileFromContext(ec)
	if profile == nil {
		return respondError(ec, http.StatusUnauthorized, "authentication required")
	}

	weekStart := ec.QueryParam("weekStart")
	if err := timesheet.ValidateDate(weekStart); err != nil {
		return respondError(ec, http.StatusBadRequest, fmt.Sprintf("invalid weekStart: %v", err))
	}

	start, _ := time.Parse(dateLayout, weekStart)
	weekEnd := start.AddDate(0, 0, 4).Format(dateLayout)

	stored, err := c.weeks.RowsBetween(ec.Request().Context(), profile.EmployeeID, weekStart, weekEnd)
	if err != nil {
		c.logger.Error("failed to load week",
			"staff_id", profile.EmployeeID,
			"week_start", weekStart,
			"error", err)
		return respondError(ec, http.StatusInternalServerError, err.Error())
	}

	days := make(map[string][]timesheet.Row)
	for _, sr := range stored {
		days[sr.Row.Date] = append(days[sr.Row.Date], sr.Row)
	}

	return respondOK(ec, http.StatusOK, weekResponse{
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Days:      days,
	})
}

// submitRequest is the body of a day submission.
type submitRequest struct {
	Date    string                 `json:"date"`
	Entries []timesheet.EntryInput `json:"entries"`
}

// submitResponse echoes back what was reconciled.
type submitResponse struct {
	Date    string `json:"date"`
	Entries int    `json:"entries"`
}

// handleSubmitDay validates a submitted day against the cached reference
// lists, then reconciles it. Validation failures return 400 before any
// spreadsheet write happens.
func (c *Controller) handleSubmitDay(ec echo.Context) error {
	profile := security.ProfileFromContext(ec)
	if profile == nil {
		return respondError(ec, http.StatusUnauthorized, "authentication required")
	}

	var req submitRequest
	if err := ec.Bind(&req); err != nil {
		return respondError(ec, http.StatusBadRequest, "invalid request body")
	}

	if err := timesheet.ValidateDate(req.Date); err != nil {
		return respondError(ec, http.StatusBadRequest, err.Error())
	}

	ctx := ec.Request().Context()
	projects, err := c.master.ProjectMap(ctx)
	if err != nil {
		c.logger.Error("failed to load project references", "error", err)
		return respondError(ec, http.StatusInternalServerError, err.Error())
	}
	tasks, err := c.master.TaskMap(ctx)
	if err != nil {
		c.logger.Error("failed to load task references", "error", err)
		return respondError(ec, http.StatusInternalServerError, err.Error())
	}

	// Resolve inputs against the reference lists. A repeated (project, task)
	// pairing in the payload collapses to its last occurrence.
	resolved := make(map[[2]string]timesheet.Entry, len(req.Entries))
	order := make([][2]string, 0, len(req.Entries))
	for i := range req.Entries {
		input := &req.Entries[i]

		if err := timesheet.ValidateHours(input.Hours); err != nil {
			return respondError(ec, http.StatusBadRequest, err.Error())
		}
		project, ok := projects[input.ProjectID]
		if !ok {
			return respondError(ec, http.StatusBadRequest,
				fmt.Sprintf("unknown projectId %q", input.ProjectID))
		}
		task, ok := tasks[input.TaskID]
		if !ok {
			return respondError(ec, http.StatusBadRequest,
				fmt.Sprintf("unknown taskId %q", input.TaskID))
		}

		key := [2]string{input.ProjectID, input.TaskID}
		if _, seen := resolved[key]; !seen {
			order = append(order, key)
		}
		resolved[key] = timesheet.Entry{Project: project, Task: task, Hours: input.Hours}
	}

	desired := make([]timesheet.Entry, 0, len(order))
	for _, key := range order {
		desired = append(desired, resolved[key])
	}

	if err := c.engine.Reconcile(ctx, req.Date, profile, desired); err != nil {
		c.logger.Error("day submission failed",
			"staff_id", profile.EmployeeID,
			"date", req.Date,
			"error", err)
		return respondError(ec, http.StatusInternalServerError, err.Error())
	}

	return respondOK(ec, http.StatusOK, submitResponse{
		Date:    req.Date,
		Entries: len(desired),
	})
}
