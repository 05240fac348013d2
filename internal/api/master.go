package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// handleProjects returns the cached project list.
func (c *Controller) handleProjects(ec echo.Context) error {
	projects, err := c.master.Projects(ec.Request().Context())
	if err != nil {
		c.logger.Error("failed to load projects", "error", err)
		return respondError(ec, http.StatusInternalServerError, err.Error())
	}
	return respondOK(ec, http.StatusOK, projects)
}

// handleTasks returns the cached task list.
func (c *Controller) handleTasks(ec echo.Context) error {
	tasks, err := c.master.Tasks(ec.Request().Context())
	if err != nil {
		c.logger.Error("failed to load tasks", "error", err)
		return respondError(ec, http.StatusInternalServerError, err.Error())
	}
	return respondOK(ec, http.StatusOK, tasks)
}
