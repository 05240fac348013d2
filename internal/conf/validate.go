package conf

import (
	"strings"

	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
)

// ValidateSettings checks that settings required for startup are present.
// Mail and chat settings are optional: when unset the reminder fan-out skips
// the corresponding channel, matching the behavior of the cron handler.
func ValidateSettings(settings *Settings) error {
	var missing []string

	if settings.Security.SessionSecret == "" {
		missing = append(missing, "security.sessionsecret (SESSION_SECRET)")
	}
	if settings.Security.GoogleAuth.ClientID == "" {
		missing = append(missing, "security.googleauth.clientid (GOOGLE_CLIENT_ID)")
	}
	if settings.Security.GoogleAuth.ClientSecret == "" {
		missing = append(missing, "security.googleauth.clientsecret (GOOGLE_CLIENT_SECRET)")
	}
	if settings.Sheets.SpreadsheetID == "" {
		missing = append(missing, "sheets.spreadsheetid (GOOGLE_SHEETS_SPREADSHEET_ID)")
	}
	if settings.Sheets.CredentialsJSON == "" && settings.Sheets.CredentialsFile == "" {
		missing = append(missing, "sheets.credentialsjson or sheets.credentialsfile")
	}
	if settings.Zoho.ClientID == "" || settings.Zoho.ClientSecret == "" || settings.Zoho.RefreshToken == "" {
		missing = append(missing, "zoho.clientid/clientsecret/refreshtoken (ZOHO_*)")
	}
	if settings.Cron.Secret == "" {
		missing = append(missing, "cron.secret (CRON_SECRET)")
	}

	if len(missing) > 0 {
		return errors.Newf("missing required configuration: %s", strings.Join(missing, ", ")).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}

	if settings.MasterData.CacheTTL <= 0 {
		return errors.Newf("masterdata.cachettl must be positive").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}

	return nil
}
