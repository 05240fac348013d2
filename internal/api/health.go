package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// handleHealth is the unauthenticated liveness probe.
func (c *Controller) handleHealth(ec echo.Context) error {
	return respondOK(ec, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
	})
}
