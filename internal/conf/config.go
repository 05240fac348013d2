// Package conf loads and validates the application configuration.
package conf

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
)

// WebServerSettings holds the HTTP listener configuration
type WebServerSettings struct {
	Listen string `yaml:"listen"` // listen address, e.g. ":8080"
	Debug  bool   `yaml:"debug"`  // enable debug logging for the web server
}

// GoogleAuthSettings holds the Google OAuth sign-in configuration
type GoogleAuthSettings struct {
	ClientID     string `yaml:"clientid"`
	ClientSecret string `yaml:"clientsecret"`
	RedirectURI  string `yaml:"redirecturi"`
}

// SecuritySettings holds session and sign-in configuration
type SecuritySettings struct {
	SessionSecret   string             `yaml:"sessionsecret"`
	AllowedDomain   string             `yaml:"alloweddomain"` // e.g. "shopstack.asia"
	RedirectToHTTPS bool               `yaml:"redirecttohttps"`
	GoogleAuth      GoogleAuthSettings `yaml:"googleauth"`
}

// SheetsSettings holds the Google Sheets backing store configuration
type SheetsSettings struct {
	SpreadsheetID   string `yaml:"spreadsheetid"`
	CredentialsJSON string `yaml:"credentialsjson"` // service account key, raw JSON
	CredentialsFile string `yaml:"credentialsfile"` // alternative: path to key file
}

// ZohoSettings holds the Zoho People directory configuration
type ZohoSettings struct {
	ClientID     string `yaml:"clientid"`
	ClientSecret string `yaml:"clientsecret"`
	RefreshToken string `yaml:"refreshtoken"`
	APIDomain    string `yaml:"apidomain"`
	AccountsURL  string `yaml:"accountsurl"`
}

// SMTPSettings holds outbound mail configuration for reminders
type SMTPSettings struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// SlackSettings holds the reminder chat channel configuration
type SlackSettings struct {
	BotToken  string `yaml:"bottoken"`
	ChannelID string `yaml:"channelid"`
}

// CronSettings guards the cron-triggered endpoints
type CronSettings struct {
	Secret string `yaml:"secret"`
}

// MasterDataSettings controls the reference data cache
type MasterDataSettings struct {
	CacheTTL time.Duration `yaml:"cachettl"`
}

// Settings is the root configuration structure
type Settings struct {
	Debug      bool               `yaml:"debug"`
	WebServer  WebServerSettings  `yaml:"webserver"`
	Security   SecuritySettings   `yaml:"security"`
	Sheets     SheetsSettings     `yaml:"sheets"`
	Zoho       ZohoSettings       `yaml:"zoho"`
	SMTP       SMTPSettings       `yaml:"smtp"`
	Slack      SlackSettings      `yaml:"slack"`
	Cron       CronSettings       `yaml:"cron"`
	MasterData MasterDataSettings `yaml:"masterdata"`
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a Settings
// instance and stores it as the process-wide configuration.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values, the optional config file and
// environment bindings.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/shopstack-timesheet")

	setDefaultConfig()
	bindEnvironment()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file is optional, environment variables are enough
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// bindEnvironment wires both the TIMESHEET_ prefixed variables and the legacy
// flat variable names the deployment environment already uses.
func bindEnvironment() {
	viper.SetEnvPrefix("timesheet")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	legacy := map[string]string{
		"security.sessionsecret":           "SESSION_SECRET",
		"security.alloweddomain":           "ALLOWED_EMAIL_DOMAIN",
		"security.googleauth.clientid":     "GOOGLE_CLIENT_ID",
		"security.googleauth.clientsecret": "GOOGLE_CLIENT_SECRET",
		"security.googleauth.redirecturi":  "GOOGLE_REDIRECT_URI",
		"sheets.spreadsheetid":             "GOOGLE_SHEETS_SPREADSHEET_ID",
		"sheets.credentialsjson":           "GOOGLE_SERVICE_ACCOUNT_KEY",
		"sheets.credentialsfile":           "GOOGLE_SERVICE_ACCOUNT_KEY_FILE",
		"zoho.clientid":                    "ZOHO_CLIENT_ID",
		"zoho.clientsecret":                "ZOHO_CLIENT_SECRET",
		"zoho.refreshtoken":                "ZOHO_REFRESH_TOKEN",
		"zoho.apidomain":                   "ZOHO_API_DOMAIN",
		"smtp.host":                        "SMTP_HOST",
		"smtp.port":                        "SMTP_PORT",
		"smtp.username":                    "SMTP_USER",
		"smtp.password":                    "SMTP_PASSWORD",
		"smtp.from":                        "FROM_EMAIL",
		"slack.bottoken":                   "SLACK_BOT_TOKEN",
		"slack.channelid":                  "SLACK_CHANNEL_ID",
		"cron.secret":                      "CRON_SECRET",
	}
	for key, env := range legacy {
		// BindEnv only errors on an empty key
		_ = viper.BindEnv(key, env)
	}
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SetSettings replaces the process-wide settings instance. Intended for tests.
func SetSettings(settings *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	settingsInstance = settings
}
