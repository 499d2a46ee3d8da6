package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported STORE_BACKEND values.
const (
	BackendXLSX     = "xlsx"
	BackendSheets   = "sheets"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Sheets    SheetsConfig
	Reconcile ReconcileConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	WhatsApp  WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// StoreConfig selects where the inventory workbook lives.
type StoreConfig struct {
	Backend      string
	WorkbookPath string
	SQLitePath   string
	DatabaseURL  string
}

// SheetsConfig contains the Google Sheets credentials and the tab names shared
// by the spreadsheet backends.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	FormSheet       string
	GearSheet       string
	CheckoutSheet   string
	DashboardSheet  string
}

// ReconcileConfig holds scheduler and engine settings.
type ReconcileConfig struct {
	CronSchedule string
	Timezone     string
	Strict       bool
}

// MongoDBConfig holds settings for the metrics archive. Empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds settings for the event journal. Empty Addr disables it.
type RedisConfig struct {
	Addr       string
	Password   string
	JournalKey string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API used to
// send overdue reports. Notifications are off unless token, phone number id and
// custodian phone are all set.
type WhatsAppConfig struct {
	AccessToken    string
	PhoneNumberID  string
	BaseURL        string
	APIVersion     string
	CustodianPhone string
}

// Enabled reports whether overdue notifications can be sent.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != "" && w.CustodianPhone != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	strict, err := getenvBool("RECONCILE_STRICT", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend:      strings.ToLower(getenvWithDefault("STORE_BACKEND", BackendXLSX)),
			WorkbookPath: getenvWithDefault("WORKBOOK_PATH", "inventory.xlsx"),
			SQLitePath:   getenvWithDefault("SQLITE_PATH", "inventory.db"),
			DatabaseURL:  os.Getenv("DATABASE_URL"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			FormSheet:       getenvWithDefault("FORM_RESPONSES_SHEET", "Form Responses"),
			GearSheet:       getenvWithDefault("GEAR_SHEET", "gear_inventory"),
			CheckoutSheet:   getenvWithDefault("CHECKOUT_LOG_SHEET", "checkout_log"),
			DashboardSheet:  getenvWithDefault("DASHBOARD_SHEET", "dashboard"),
		},
		Reconcile: ReconcileConfig{
			CronSchedule: getenvWithDefault("RECONCILE_CRON_SCHEDULE", "*/15 * * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
			Strict:       strict,
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "inventory"),
		},
		Redis: RedisConfig{
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			JournalKey: getenvWithDefault("REDIS_JOURNAL_KEY", "inventory:reconciled_events"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:    os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:  os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:        getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:     getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			CustodianPhone: os.Getenv("CUSTODIAN_PHONE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Backend {
	case BackendXLSX:
		if c.Store.WorkbookPath == "" {
			return errors.New("WORKBOOK_PATH must be provided")
		}
	case BackendSheets:
		switch {
		case c.Sheets.CredentialsPath == "":
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		case c.Sheets.SpreadsheetID == "":
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be provided")
		}
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be provided")
		}
	default:
		return fmt.Errorf("STORE_BACKEND %q is not supported", c.Store.Backend)
	}

	if c.Reconcile.CronSchedule == "" {
		return errors.New("RECONCILE_CRON_SCHEDULE must be provided")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty when MONGODB_URI is set")
	}

	if c.Redis.Addr != "" && c.Redis.JournalKey == "" {
		return errors.New("REDIS_JOURNAL_KEY must not be empty when REDIS_ADDR is set")
	}

	if c.WhatsApp.Enabled() {
		if c.WhatsApp.BaseURL == "" {
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		}
		if c.WhatsApp.APIVersion == "" {
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

// Location resolves TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	if c.Reconcile.Timezone == "" {
		return nil, errors.New("TIMEZONE must be provided")
	}
	loc, err := time.LoadLocation(c.Reconcile.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Reconcile.Timezone, err)
	}
	return loc, nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}
