package zoho

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstack-asia/shopstack-timesheet/internal/conf"
	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
)

const (
	testAPIDomain   = "https://people.test"
	testAccountsURL = "https://accounts.test"

	tokenURLPattern   = `=~^https://accounts\.test/oauth/v2/token`
	recordsURLPattern = `=~^https://people\.test/people/api/forms/P_EmployeeView/records`
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(&conf.ZohoSettings{
		ClientID:     "cid",
		ClientSecret: "secret",
		RefreshToken: "refresh",
		APIDomain:    testAPIDomain,
		AccountsURL:  testAccountsURL,
	})
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func registerToken(t *testing.T) {
	t.Helper()
	httpmock.RegisterResponder(http.MethodPost, tokenURLPattern,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"access_token": "token-123",
			"expires_in":   3600,
		}))
}

const legacyBody = `{
  "response": {
    "status": 0,
    "result": {
      "Employees": {
        "row": [
          {"FL": [
            {"val": "EmployeeID", "content": "S001"},
            {"val": "First Name", "content": "Ann"},
            {"val": "Last Name", "content": "Chan"},
            {"val": "Nick Name", "content": "Annie"},
            {"val": "Email address", "content": "ann@shopstack.asia"},
            {"val": "Designation", "content": "Engineer"}
          ]},
          {"FL": [
            {"val": "EmployeeID", "content": "S002"},
            {"val": "First Name", "content": "Bo"},
            {"val": "Email address", "content": "bo@shopstack.asia"}
          ]}
        ]
      }
    }
  }
}`

const flatBody = `{
  "response": {
    "status": 0,
    "result": [
      {
        "EmployeeID": "S001",
        "FirstName": "Ann",
        "LastName": "Chan",
        "Nickname": "Annie",
        "Email": "ann@shopstack.asia",
        "Position": "Engineer"
      }
    ]
  }
}`

func TestFindByEmailLegacyShape(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodGet, recordsURLPattern,
		httpmock.NewStringResponder(http.StatusOK, legacyBody))

	profile, err := client.FindByEmail(context.Background(), "ann@shopstack.asia")
	require.NoError(t, err)

	assert.Equal(t, "S001", profile.EmployeeID)
	assert.Equal(t, "Ann", profile.FirstName)
	assert.Equal(t, "Chan", profile.LastName)
	assert.Equal(t, "Annie", profile.Nickname)
	assert.Equal(t, "Engineer", profile.Position)
}

func TestFindByEmailFlatShape(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodGet, recordsURLPattern,
		httpmock.NewStringResponder(http.StatusOK, flatBody))

	profile, err := client.FindByEmail(context.Background(), "ann@shopstack.asia")
	require.NoError(t, err)

	assert.Equal(t, "S001", profile.EmployeeID)
	assert.Equal(t, "Engineer", profile.Position)
}

func TestFindByEmailCaseInsensitiveExactMatch(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodGet, recordsURLPattern,
		httpmock.NewStringResponder(http.StatusOK, legacyBody))

	profile, err := client.FindByEmail(context.Background(), "ANN@ShopStack.Asia")
	require.NoError(t, err)
	assert.Equal(t, "S001", profile.EmployeeID, "second record must not win on a loose match")
}

func TestFindByEmailNotFound(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodGet, recordsURLPattern,
		httpmock.NewStringResponder(http.StatusOK, legacyBody))

	_, err := client.FindByEmail(context.Background(), "stranger@shopstack.asia")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestAccessTokenReusedAcrossRequests(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodGet, recordsURLPattern,
		httpmock.NewStringResponder(http.StatusOK, flatBody))

	ctx := context.Background()
	_, err := client.FindByEmail(ctx, "ann@shopstack.asia")
	require.NoError(t, err)
	_, err = client.FindByEmail(ctx, "ann@shopstack.asia")
	require.NoError(t, err)

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["POST "+tokenURLPattern], "an unexpired token is not refetched")
	assert.Equal(t, 2, info["GET "+recordsURLPattern])
}

func TestTokenRefreshRejected(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodPost, tokenURLPattern,
		httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, map[string]any{
			"error": "invalid_client",
		}))

	_, err := client.FindByEmail(context.Background(), "ann@shopstack.asia")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryTokenRefresh))
}

func TestDirectoryAPIError(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodGet, recordsURLPattern,
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"error":"upstream"}`))

	_, err := client.FindByEmail(context.Background(), "ann@shopstack.asia")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDirectory))
}

func TestAllEmployees(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodGet, recordsURLPattern,
		httpmock.NewStringResponder(http.StatusOK, legacyBody))

	employees, err := client.AllEmployees(context.Background())
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "S001", employees[0].EmployeeID)
	assert.Equal(t, "bo@shopstack.asia", employees[1].Email)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewClient(&conf.ZohoSettings{ClientID: "cid"})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}
