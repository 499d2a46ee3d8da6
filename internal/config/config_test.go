package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"APP_PORT", "LOG_LEVEL", "STORE_BACKEND", "WORKBOOK_PATH", "GOOGLE_SHEETS_CREDENTIALS_PATH",
	"GOOGLE_SHEET_DATABASE_ID", "SQLITE_PATH", "DATABASE_URL", "FORM_RESPONSES_SHEET", "GEAR_SHEET",
	"CHECKOUT_LOG_SHEET", "DASHBOARD_SHEET", "RECONCILE_CRON_SCHEDULE", "TIMEZONE", "RECONCILE_STRICT",
	"MONGODB_URI", "MONGODB_DB_NAME", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_JOURNAL_KEY",
	"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION", "CUSTODIAN_PHONE",
}

// clearEnv blanks every key so values from the developer's shell do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
}

func envFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, BackendXLSX, cfg.Store.Backend)
	assert.Equal(t, "inventory.xlsx", cfg.Store.WorkbookPath)
	assert.Equal(t, "Form Responses", cfg.Sheets.FormSheet)
	assert.Equal(t, "gear_inventory", cfg.Sheets.GearSheet)
	assert.Equal(t, "checkout_log", cfg.Sheets.CheckoutSheet)
	assert.Equal(t, "dashboard", cfg.Sheets.DashboardSheet)
	assert.False(t, cfg.Reconcile.Strict)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.Empty(t, cfg.MongoDB.URI)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, even to "".
	for _, key := range []string{"STORE_BACKEND", "SQLITE_PATH", "RECONCILE_STRICT", "TIMEZONE"} {
		require.NoError(t, os.Unsetenv(key))
	}
	t.Cleanup(func() {
		for _, key := range []string{"STORE_BACKEND", "SQLITE_PATH", "RECONCILE_STRICT", "TIMEZONE"} {
			os.Unsetenv(key)
		}
	})

	path := envFile(t, "STORE_BACKEND=SQLite\nSQLITE_PATH=/tmp/gear.db\nRECONCILE_STRICT=true\nTIMEZONE=America/Chicago\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/gear.db", cfg.Store.SQLitePath)
	assert.True(t, cfg.Reconcile.Strict)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", loc.String())
}

func TestLoadRejectsBadBoolean(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECONCILE_STRICT", "sometimes")

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECONCILE_STRICT")
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		Store:     StoreConfig{Backend: BackendXLSX, WorkbookPath: "inventory.xlsx"},
		Reconcile: ReconcileConfig{CronSchedule: "@every 15m", Timezone: "UTC"},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "APP_PORT"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "csv" }, "STORE_BACKEND"},
		{"sheets without credentials", func(c *Config) { c.Store.Backend = BackendSheets }, "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{"sheets without id", func(c *Config) {
			c.Store.Backend = BackendSheets
			c.Sheets.CredentialsPath = "creds.json"
		}, "GOOGLE_SHEET_DATABASE_ID"},
		{"postgres without url", func(c *Config) { c.Store.Backend = BackendPostgres }, "DATABASE_URL"},
		{"sqlite without path", func(c *Config) { c.Store.Backend = BackendSQLite }, "SQLITE_PATH"},
		{"bad timezone", func(c *Config) { c.Reconcile.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"missing schedule", func(c *Config) { c.Reconcile.CronSchedule = "" }, "RECONCILE_CRON_SCHEDULE"},
		{"whatsapp without version", func(c *Config) {
			c.WhatsApp = WhatsAppConfig{AccessToken: "t", PhoneNumberID: "p", CustodianPhone: "c", BaseURL: "https://graph.facebook.com"}
		}, "WHATSAPP_API_VERSION"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.want == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateNil(t *testing.T) {
	var cfg *Config
	require.Error(t, cfg.Validate())
}
