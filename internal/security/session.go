// Package security covers Google sign-in and the session that carries the
// signed-in staff member's directory profile between requests.
package security

import (
	"crypto/sha256"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"github.com/shopstack-asia/shopstack-timesheet/internal/conf"
	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
	"github.com/shopstack-asia/shopstack-timesheet/internal/logging"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

const (
	sessionName = "timesheet_session"
	profileKey  = "staffProfile"

	sessionMaxAge = 86400 * 7 // 7 days
)

// ProfileContextKey is where RequireSession places the staff profile for
// downstream handlers.
const ProfileContextKey = "staffProfile"

// SessionManager wraps the cookie session store. The staff profile is kept in
// the session as a JSON string so the cookie store needs no type registration.
type SessionManager struct {
	store  *sessions.CookieStore
	logger *slog.Logger
}

// NewSessionManager builds the cookie store from the configured session
// secret. Secure cookies follow the HTTPS redirect setting.
func NewSessionManager(settings *conf.SecuritySettings) *SessionManager {
	logger := logging.ForService("security")

	if settings.SessionSecret == "" {
		logger.Error("session secret is empty, sessions will not survive a restart safely")
	} else if len(settings.SessionSecret) < 32 {
		logger.Warn("session secret is shorter than 32 bytes, consider a longer random secret")
	}

	store := sessions.NewCookieStore(createSessionKey(settings.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   settings.RedirectToHTTPS,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionManager{store: store, logger: logger}
}

// Store exposes the underlying session store so the OAuth flow can share it.
func (m *SessionManager) Store() sessions.Store {
	return m.store
}

// SaveProfile writes the staff profile into the request's session.
func (m *SessionManager) SaveProfile(c echo.Context, profile *timesheet.StaffProfile) error {
	encoded, err := json.Marshal(profile)
	if err != nil {
		return errors.Newf("failed to encode staff profile: %w", err).
			Category(errors.CategoryAuth).
			Component("security").
			Build()
	}

	session, _ := m.store.Get(c.Request(), sessionName)
	session.Values[profileKey] = string(encoded)
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return errors.Newf("failed to save session: %w", err).
			Category(errors.CategoryAuth).
			Component("security").
			Build()
	}
	return nil
}

// Profile reads the staff profile from the request's session. A missing or
// unreadable profile yields an auth-category error.
func (m *SessionManager) Profile(c echo.Context) (*timesheet.StaffProfile, error) {
	session, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		return nil, errors.Newf("failed to read session: %w", err).
			Category(errors.CategoryAuth).
			Component("security").
			Build()
	}

	encoded, ok := session.Values[profileKey].(string)
	if !ok || encoded == "" {
		return nil, errors.Newf("no signed-in profile in session").
			Category(errors.CategoryAuth).
			Component("security").
			Build()
	}

	var profile timesheet.StaffProfile
	if err := json.Unmarshal([]byte(encoded), &profile); err != nil {
		return nil, errors.Newf("failed to decode staff profile: %w", err).
			Category(errors.CategoryAuth).
			Component("security").
			Build()
	}
	return &profile, nil
}

// Clear drops the session cookie.
func (m *SessionManager) Clear(c echo.Context) error {
	session, _ := m.store.Get(c.Request(), sessionName)
	session.Values = make(map[any]any)
	session.Options.MaxAge = -1
	return session.Save(c.Request(), c.Response())
}

// RequireSession rejects requests without a signed-in profile and attaches the
// profile to the echo context for handlers.
func (m *SessionManager) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		profile, err := m.Profile(c)
		if err != nil {
			m.logger.Debug("unauthenticated request rejected",
				"path", c.Request().URL.Path)
			return c.JSON(http.StatusUnauthorized, map[string]any{
				"success": false,
				"error":   "authentication required",
			})
		}
		c.Set(ProfileContextKey, profile)
		return next(c)
	}
}

// ProfileFromContext returns the profile placed by RequireSession, or nil.
func ProfileFromContext(c echo.Context) *timesheet.StaffProfile {
	profile, _ := c.Get(ProfileContextKey).(*timesheet.StaffProfile)
	return profile
}

// createSessionKey derives a 32-byte key from the configured seed, sized for
// AES-256 as the cookie store expects.
func createSessionKey(seed string) []byte {
	hash := sha256.Sum256([]byte(seed))
	return hash[:]
}
