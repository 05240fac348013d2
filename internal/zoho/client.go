// Package zoho resolves staff profiles through the Zoho People directory API.
package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopstack-asia/shopstack-timesheet/internal/conf"
	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
	"github.com/shopstack-asia/shopstack-timesheet/internal/logging"
	"github.com/shopstack-asia/shopstack-timesheet/internal/timesheet"
)

const (
	recordsPath = "/people/api/forms/P_EmployeeView/records"
	tokenPath   = "/oauth/v2/token"

	// Access tokens are refreshed this much before their declared expiry.
	tokenSafetyMargin = 5 * time.Minute

	requestTimeout = 30 * time.Second
)

// Client is the directory API client. A lazily refreshed access token is
// shared across requests; the refresh-token flow is the only implicit retry
// in the system.
type Client struct {
	clientID     string
	clientSecret string
	refreshToken string
	apiDomain    string
	accountsURL  string

	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a directory client from the Zoho settings.
func NewClient(settings *conf.ZohoSettings) (*Client, error) {
	if settings.ClientID == "" || settings.ClientSecret == "" || settings.RefreshToken == "" {
		return nil, errors.Newf("zoho credentials are required").
			Category(errors.CategoryConfiguration).
			Component("zoho").
			Build()
	}

	apiDomain := settings.APIDomain
	if apiDomain == "" {
		apiDomain = "https://people.zoho.com"
	}
	accountsURL := settings.AccountsURL
	if accountsURL == "" {
		accountsURL = "https://accounts.zoho.com"
	}

	logger := logging.ForService("zoho")
	logger.Info("zoho client initialized", "api_domain", apiDomain)

	return &Client{
		clientID:     settings.ClientID,
		clientSecret: settings.ClientSecret,
		refreshToken: settings.RefreshToken,
		apiDomain:    strings.TrimRight(apiDomain, "/"),
		accountsURL:  strings.TrimRight(accountsURL, "/"),
		httpClient:   &http.Client{Timeout: requestTimeout},
		logger:       logger,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Error       string `json:"error"`
}

// token returns a valid access token, refreshing it when missing or past the
// expiry timestamp (declared lifetime minus the safety margin).
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	params := url.Values{
		"refresh_token": {c.refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"refresh_token"},
	}
	tokenURL := c.accountsURL + tokenPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, http.NoBody)
	if err != nil {
		return "", errors.Newf("failed to create token request: %w", err).
			Category(errors.CategoryTokenRefresh).
			Component("zoho").
			Build()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("token refresh request failed", "error", err)
		return "", errors.Newf("token refresh failed: %w", err).
			Category(errors.CategoryTokenRefresh).
			Component("zoho").
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Newf("failed to read token response: %w", err).
			Category(errors.CategoryTokenRefresh).
			Component("zoho").
			Build()
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", errors.Newf("failed to parse token response: %w", err).
			Category(errors.CategoryTokenRefresh).
			Component("zoho").
			Build()
	}
	if resp.StatusCode != http.StatusOK || token.AccessToken == "" {
		c.logger.Error("token refresh rejected",
			"status_code", resp.StatusCode,
			"api_error", token.Error)
		return "", errors.Newf("token refresh rejected (status %d): %s", resp.StatusCode, token.Error).
			Category(errors.CategoryTokenRefresh).
			Context("status_code", resp.StatusCode).
			Component("zoho").
			Build()
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenSafetyMargin)

	c.logger.Debug("access token refreshed", "expires_in_s", token.ExpiresIn)
	return c.accessToken, nil
}

// FindByEmail resolves an email address to a staff profile.
//
// The search filter on the records endpoint is not always reliable, so the
// result set is re-filtered by case-insensitive exact email match instead of
// trusting the first row. No match yields a not-found error.
func (c *Client) FindByEmail(ctx context.Context, email string) (*timesheet.StaffProfile, error) {
	if email == "" {
		return nil, errors.Newf("email is required").
			Category(errors.CategoryValidation).
			Component("zoho").
			Build()
	}

	criteria := fmt.Sprintf("(Email:equals:%s)", email)
	records, err := c.fetchRecords(ctx, criteria)
	if err != nil {
		return nil, err
	}

	for _, fields := range records {
		profile := profileFromFields(fields)
		if strings.EqualFold(profile.Email, email) {
			return &profile, nil
		}
	}

	c.logger.Warn("employee not found in directory", "email", email, "candidates", len(records))
	return nil, errors.Newf("employee not found: %s", email).
		Category(errors.CategoryNotFound).
		Component("zoho").
		Build()
}

// AllEmployees returns every directory record as a staff profile.
func (c *Client) AllEmployees(ctx context.Context) ([]timesheet.StaffProfile, error) {
	records, err := c.fetchRecords(ctx, "")
	if err != nil {
		return nil, err
	}

	profiles := make([]timesheet.StaffProfile, 0, len(records))
	for _, fields := range records {
		profiles = append(profiles, profileFromFields(fields))
	}
	return profiles, nil
}

// fetchRecords calls the records endpoint with an optional search criteria and
// decodes whichever response shape comes back.
func (c *Client) fetchRecords(ctx context.Context, searchCriteria string) ([]map[string]string, error) {
	accessToken, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	recordsURL := c.apiDomain + recordsPath
	if searchCriteria != "" {
		recordsURL += "?" + url.Values{"searchCriteria": {searchCriteria}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordsURL, http.NoBody)
	if err != nil {
		return nil, errors.Newf("failed to create directory request: %w", err).
			Category(errors.CategoryDirectory).
			Component("zoho").
			Build()
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+accessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("directory request failed", "error", err)
		return nil, errors.Newf("directory request failed: %w", err).
			Category(errors.CategoryDirectory).
			Component("zoho").
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Newf("failed to read directory response: %w", err).
			Category(errors.CategoryDirectory).
			Context("status_code", resp.StatusCode).
			Component("zoho").
			Build()
	}

	if resp.StatusCode >= 400 {
		preview := string(body)
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		c.logger.Error("directory API error",
			"status_code", resp.StatusCode,
			"response_preview", preview)
		return nil, errors.Newf("directory API error (status %d)", resp.StatusCode).
			Category(errors.CategoryDirectory).
			Context("status_code", resp.StatusCode).
			Component("zoho").
			Build()
	}

	records, err := decodeEmployeeRecords(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("directory records fetched",
		"count", len(records),
		"filtered", searchCriteria != "",
		"duration_ms", time.Since(start).Milliseconds())
	return records, nil
}
