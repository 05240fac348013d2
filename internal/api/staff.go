package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopstack-asia/shopstack-timesheet/internal/security"
)

// handleStaffProfile returns the signed-in staff member's directory profile.
func (c *Controller) handleStaffProfile(ec echo.Context) error {
	profile := security.ProfileFromContext(ec)
	if profile == nil {
		return respondError(ec, http.StatusUnauthorized, "authentication required")
	}
	return respondOK(ec, http.StatusOK, profile)
}
