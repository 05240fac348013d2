package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// requireCronSecret guards the cron endpoints with a shared bearer secret.
// Comparison runs over hashes so it is constant time regardless of length.
func (c *Controller) requireCronSecret(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ec echo.Context) error {
		secret := c.settings.Cron.Secret
		if secret == "" {
			c.logger.Error("cron endpoint called but no cron secret is configured")
			return respondError(ec, http.StatusUnauthorized, "cron endpoint disabled")
		}

		header := ec.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return respondError(ec, http.StatusUnauthorized, "missing bearer token")
		}

		tokenHash := sha256.Sum256([]byte(token))
		secretHash := sha256.Sum256([]byte(secret))
		if subtle.ConstantTimeCompare(tokenHash[:], secretHash[:]) != 1 {
			c.logger.Warn("cron endpoint rejected: invalid secret")
			return respondError(ec, http.StatusUnauthorized, "invalid token")
		}
		return next(ec)
	}
}

// handleFridayReminder pulls the directory, keeps addresses in the allowed
// domain and fans the reminder out. Per-recipient email failures land in the
// report rather than failing the request.
func (c *Controller) handleFridayReminder(ec echo.Context) error {
	ctx := ec.Request().Context()

	employees, err := c.directory.AllEmployees(ctx)
	if err != nil {
		c.logger.Error("reminder run failed to list employees", "error", err)
		return respondError(ec, http.StatusInternalServerError, err.Error())
	}

	domain := c.settings.Security.AllowedDomain
	if domain != "" {
		suffix := "@" + strings.ToLower(domain)
		filtered := employees[:0]
		for _, emp := range employees {
			if strings.HasSuffix(strings.ToLower(emp.Email), suffix) {
				filtered = append(filtered, emp)
			}
		}
		employees = filtered
	}

	report, err := c.reminders.SendReminders(ctx, employees)
	if err != nil {
		c.logger.Error("reminder fan-out failed", "error", err)
		return respondError(ec, http.StatusInternalServerError, err.Error())
	}

	return respondOK(ec, http.StatusOK, report)
}
