// Package api hosts the HTTP layer: routes, JSON envelope, session guard and
// the cron-secret guard for the reminder endpoint.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/shopstack-asia/shopstack-timesheet/internal/conf"
	"github.com/shopstack-asia/shopstack-timesheet/internal/logging"
	"github.com/shopstack-asia/shopstack-timesheet/internal/notify"
	"github.com/shopstack-asia/shopstack-timesheet/internal/security"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

// MasterData supplies the cached reference lists and their id lookups.
type MasterData interface {
	Projects(ctx context.Context) ([]timesheet.Project, error)
	Tasks(ctx context.Context) ([]timesheet.Task, error)
	ProjectMap(ctx context.Context) (map[string]timesheet.Project, error)
	TaskMap(ctx context.Context) (map[string]timesheet.Task, error)
}

// WeekStore reads one staff member's rows for a date interval.
type WeekStore interface {
	RowsBetween(ctx context.Context, staffID, start, end string) ([]timesheet.StoredRow, error)
}

// Reconciler applies a submitted day against the row store.
type Reconciler interface {
	Reconcile(ctx context.Context, date string, staff *timesheet.StaffProfile, desired []timesheet.Entry) error
}

// Directory lists the employees eligible for the weekly reminder.
type Directory interface {
	AllEmployees(ctx context.Context) ([]timesheet.StaffProfile, error)
}

// ReminderSender fans the weekly reminder out to staff.
type ReminderSender interface {
	SendReminders(ctx context.Context, employees []timesheet.StaffProfile) (*notify.ReminderReport, error)
}

// Controller owns the echo instance and wires handlers to their dependencies.
type Controller struct {
	Echo *echo.Echo

	settings  *conf.Settings
	master    MasterData
	weeks     WeekStore
	engine    Reconciler
	directory Directory
	reminders ReminderSender
	sessions  *security.SessionManager
	auth      *security.AuthHandlers

	logger         *slog.Logger
	accessLog      *slog.Logger
	accessLogClose func() error
	startTime      time.Time
}

// New assembles the controller and registers all routes.
func New(settings *conf.Settings, master MasterData, weeks WeekStore, engine Reconciler,
	directory Directory, reminders ReminderSender,
	sessions *security.SessionManager, auth *security.AuthHandlers) *Controller {

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	c := &Controller{
		Echo:      e,
		settings:  settings,
		master:    master,
		weeks:     weeks,
		engine:    engine,
		directory: directory,
		reminders: reminders,
		sessions:  sessions,
		auth:      auth,
		logger:    logging.ForService("api"),
		startTime: time.Now(),
	}

	level := slog.LevelInfo
	if settings.Debug || settings.WebServer.Debug {
		level = slog.LevelDebug
	}
	accessLog, closeFunc, err := logging.NewFileLogger("logs/access.log", "api", level)
	if err != nil {
		c.logger.Warn("file access log unavailable, using stdout", "error", err)
		accessLog = c.logger
	} else {
		c.accessLogClose = closeFunc
	}
	c.accessLog = accessLog

	e.Use(middleware.Recover())
	e.Use(c.requestLogger())

	c.initRoutes()
	return c
}

// initRoutes registers the route tree. The cron endpoint sits outside the
// session guard and carries its own bearer-secret check.
func (c *Controller) initRoutes() {
	e := c.Echo

	e.GET("/api/health", c.handleHealth)

	e.GET("/auth/google/login", c.auth.Login)
	e.GET("/auth/google/callback", c.auth.Callback)
	e.GET("/auth/logout", c.auth.Logout)

	cron := e.Group("/api/cron", c.requireCronSecret)
	cron.GET("/friday-reminder", c.handleFridayReminder)
	cron.POST("/friday-reminder", c.handleFridayReminder)

	authed := e.Group("/api", c.sessions.RequireSession)
	authed.GET("/master/projects", c.handleProjects)
	authed.GET("/master/tasks", c.handleTasks)
	authed.GET("/timesheet/get", c.handleGetWeek)
	authed.POST("/timesheet/submit", c.handleSubmitDay)
	authed.GET("/staff/profile", c.handleStaffProfile)
}

// requestLogger emits one structured line per request.
func (c *Controller) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			start := time.Now()
			err := next(ec)
			c.accessLog.Info("http request",
				"method", ec.Request().Method,
				"path", ec.Request().URL.Path,
				"status", ec.Response().Status,
				"duration_ms", time.Since(start).Milliseconds())
			return err
		}
	}
}

// Start runs the HTTP server until the context is canceled, then shuts the
// listener down with a grace period.
func (c *Controller) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("http server listening", "address", c.settings.WebServer.Listen)
		errCh <- c.Echo.Start(c.settings.WebServer.Listen)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.logger.Info("shutting down http server")
		err := c.Echo.Shutdown(shutdownCtx)
		if c.accessLogClose != nil {
			_ = c.accessLogClose()
		}
		return err
	}
}
