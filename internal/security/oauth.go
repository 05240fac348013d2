package security

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	gothGoogle "github.com/markbates/goth/providers/google"

	"github.com/shopstack-asia/shopstack-timesheet/internal/conf"
	"github.com/shopstack-asia/shopstack-timesheet/internal/logging"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

const providerName = "google"

// Directory resolves a signed-in email address to its HR profile.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*timesheet.StaffProfile, error)
}

// InitializeGoth wires the Google provider and points gothic at the shared
// session store.
func InitializeGoth(settings *conf.SecuritySettings, store *SessionManager) {
	logger := logging.ForService("security")

	gothic.Store = store.Store()

	auth := settings.GoogleAuth
	if auth.ClientID == "" || auth.ClientSecret == "" {
		logger.Warn("google auth not configured, sign-in is unavailable")
		return
	}

	provider := gothGoogle.New(auth.ClientID, auth.ClientSecret, auth.RedirectURI,
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	)
	goth.UseProviders(provider)
	logger.Info("google auth provider initialized")
}

// AuthHandlers holds the sign-in flow endpoints.
type AuthHandlers struct {
	sessions      *SessionManager
	directory     Directory
	allowedDomain string
	logger        *slog.Logger
}

// NewAuthHandlers creates the sign-in handlers. The allowed domain comes from
// configuration; an empty value disables the domain check.
func NewAuthHandlers(settings *conf.SecuritySettings, sessions *SessionManager, directory Directory) *AuthHandlers {
	return &AuthHandlers{
		sessions:      sessions,
		directory:     directory,
		allowedDomain: settings.AllowedDomain,
		logger:        logging.ForService("security"),
	}
}

// Login starts the Google OAuth flow.
func (h *AuthHandlers) Login(c echo.Context) error {
	query := c.Request().URL.Query()
	query.Set("provider", providerName)
	c.Request().URL.RawQuery = query.Encode()

	request := c.Request()
	response := c.Response().Writer
	if user, err := gothic.CompleteUserAuth(response, request); err == nil {
		// Already authenticated with the provider; finish sign-in directly.
		return h.completeSignIn(c, user.Email)
	}
	gothic.BeginAuthHandler(response, request)
	return nil
}

// Callback finishes the Google OAuth flow, enforces the email domain and
// attaches the directory profile to a fresh session.
func (h *AuthHandlers) Callback(c echo.Context) error {
	query := c.Request().URL.Query()
	query.Set("provider", providerName)
	c.Request().URL.RawQuery = query.Encode()

	user, err := gothic.CompleteUserAuth(c.Response().Writer, c.Request())
	if err != nil {
		h.logger.Error("google sign-in failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	}

	return h.completeSignIn(c, user.Email)
}

// completeSignIn runs the domain allowlist and directory lookup, then saves
// the profile into the session and redirects home.
func (h *AuthHandlers) completeSignIn(c echo.Context, email string) error {
	if !emailDomainAllowed(email, h.allowedDomain) {
		h.logger.Warn("sign-in rejected: email outside allowed domain",
			"email", email,
			"allowed_domain", h.allowedDomain)
		return echo.NewHTTPError(http.StatusForbidden, "email domain not allowed")
	}

	profile, err := h.directory.FindByEmail(c.Request().Context(), email)
	if err != nil {
		h.logger.Error("sign-in rejected: no directory profile",
			"email", email,
			"error", err)
		return echo.NewHTTPError(http.StatusForbidden, "no staff record for this account")
	}

	// Keep the address the user actually signed in with.
	profile.Email = email

	if err := h.sessions.SaveProfile(c, profile); err != nil {
		h.logger.Error("failed to persist session after sign-in",
			"email", email,
			"error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "session error after sign-in")
	}

	h.logger.Info("sign-in successful",
		"email", email,
		"staff_id", profile.EmployeeID)
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

// Logout clears the session and returns to the landing page.
func (h *AuthHandlers) Logout(c echo.Context) error {
	if err := gothic.Logout(c.Response().Writer, c.Request()); err != nil {
		h.logger.Debug("gothic logout returned error", "error", err)
	}
	if err := h.sessions.Clear(c); err != nil {
		h.logger.Warn("failed to clear session on logout", "error", err)
	}
	return c.Redirect(http.StatusFound, "/")
}

// emailDomainAllowed reports whether the address belongs to the allowed
// domain. An empty domain allows everything.
func emailDomainAllowed(email, domain string) bool {
	if domain == "" {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return strings.EqualFold(email[at+1:], domain)
}
