package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

type fakeDirectory struct {
	profile *timesheet.StaffProfile
	err     error
	queried string
}

func (f *fakeDirectory) FindByEmail(_ context.Context, email string) (*timesheet.StaffProfile, error) {
	f.queried = email
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func TestCompleteSignInHappyPath(t *testing.T) {
	t.Parallel()

	sessions := NewSessionManager(testSettings())
	directory := &fakeDirectory{profile: testProfile()}
	h := NewAuthHandlers(testSettings(), sessions, directory)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/google/callback", http.NoBody), rec)

	require.NoError(t, h.completeSignIn(c, "ann@shopstack.asia"))

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "ann@shopstack.asia", directory.queried)

	// The profile landed in the session cookie.
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	profile, err := sessions.Profile(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "S001", profile.EmployeeID)
}

func TestCompleteSignInRejectsForeignDomain(t *testing.T) {
	t.Parallel()

	sessions := NewSessionManager(testSettings())
	directory := &fakeDirectory{profile: testProfile()}
	h := NewAuthHandlers(testSettings(), sessions, directory)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/google/callback", http.NoBody), httptest.NewRecorder())

	err := h.completeSignIn(c, "intruder@example.com")
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	assert.Empty(t, directory.queried, "directory is not consulted for disallowed domains")
}

func TestCompleteSignInRejectsUnknownStaff(t *testing.T) {
	t.Parallel()

	sessions := NewSessionManager(testSettings())
	directory := &fakeDirectory{err: errors.NotFoundError("employee not found: %s", "ghost@shopstack.asia")}
	h := NewAuthHandlers(testSettings(), sessions, directory)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/google/callback", http.NoBody), httptest.NewRecorder())

	err := h.completeSignIn(c, "ghost@shopstack.asia")
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestCompleteSignInKeepsSignInAddress(t *testing.T) {
	t.Parallel()

	profile := testProfile()
	profile.Email = "stale@shopstack.asia"
	sessions := NewSessionManager(testSettings())
	h := NewAuthHandlers(testSettings(), sessions, &fakeDirectory{profile: profile})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/google/callback", http.NoBody), rec)
	require.NoError(t, h.completeSignIn(c, "ann@shopstack.asia"))

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	stored, err := sessions.Profile(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "ann@shopstack.asia", stored.Email, "session carries the address used to sign in")
}
