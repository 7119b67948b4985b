// Package config loads fintrack settings from an optional TOML file, an
// optional .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
	AMQP    AMQPConfig    `toml:"amqp"`
	Sheets  SheetsConfig  `toml:"sheets"`
	Display DisplayConfig `toml:"display"`
}

type StorageConfig struct {
	// Backend is "sqlite" or "memory".
	Backend       string `toml:"backend" env:"DATA_BACKEND"`
	SQLiteDBPath  string `toml:"sqlite_db_path" env:"SQLITE_DB_PATH"`
	DataDirectory string `toml:"data_dir" env:"DATA_DIR"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Format string `toml:"format" env:"LOG_FORMAT"`
}

// AMQPConfig configures posting events. An empty URL disables them.
type AMQPConfig struct {
	URL      string `toml:"url" env:"AMQP_URL"`
	Exchange string `toml:"exchange" env:"AMQP_EXCHANGE"`
	Queue    string `toml:"queue" env:"AMQP_QUEUE"`
}

// SheetsConfig is only read by the sync worker.
type SheetsConfig struct {
	SpreadsheetID   string `toml:"spreadsheet_id" env:"GOOGLE_SPREADSHEET_ID"`
	ExpensesSheet   string `toml:"expenses_sheet" env:"GOOGLE_EXPENSES_SHEET"`
	IncomeSheet     string `toml:"income_sheet" env:"GOOGLE_INCOME_SHEET"`
	CategoriesSheet string `toml:"categories_sheet" env:"GOOGLE_CATEGORIES_SHEET"`
	CredentialsFile string `toml:"credentials_file" env:"GOOGLE_CREDENTIALS_FILE"`
	CredentialsJSON string `toml:"-" env:"GOOGLE_CREDENTIALS_JSON"`
	WritesPerMinute int    `toml:"writes_per_minute" env:"SHEETS_WRITES_PER_MINUTE"`
	// MetricsAddr is where the worker serves Prometheus metrics; empty disables.
	MetricsAddr string `toml:"metrics_addr" env:"METRICS_ADDR"`
}

type DisplayConfig struct {
	Currency string `toml:"currency" env:"CURRENCY"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend:       "sqlite",
			SQLiteDBPath:  filepath.Join(DataDir(), "fintrack.db"),
			DataDirectory: DataDir(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		AMQP: AMQPConfig{
			Exchange: "fintrack",
			Queue:    "postings",
		},
		Sheets: SheetsConfig{
			ExpensesSheet:   "Expenses",
			IncomeSheet:     "Income",
			CategoriesSheet: "Categories",
			WritesPerMinute: 50,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fintrack")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fintrack")
}

// Path returns the config file location. FINTRACK_CONFIG overrides it.
func Path() string {
	if p := os.Getenv("FINTRACK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at Path if present, then .env, then the
// environment.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile is Load with an explicit config file path. A missing file is not
// an error.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// .env is optional and never overrides variables already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return &cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

var (
	validBackends   = []string{"memory", "sqlite"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"console", "text", "json"}
)

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if v == s {
			return true
		}
	}
	return false
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if !oneOf(c.Storage.Backend, validBackends) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.Storage.Backend, validBackends))
	}
	if c.Storage.Backend == "sqlite" && c.Storage.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
	}

	if !oneOf(strings.ToLower(c.Log.Level), validLogLevels) {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of %v", c.Log.Level, validLogLevels))
	}
	if !oneOf(strings.ToLower(c.Log.Format), validLogFormats) {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be one of %v", c.Log.Format, validLogFormats))
	}

	if c.AMQP.URL != "" {
		if parsedURL, err := url.Parse(c.AMQP.URL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQP.URL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQP.Exchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQP.Queue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateSync checks the settings the sheets sync worker needs on top of
// Validate.
func (c *Config) ValidateSync() error {
	var errs []string
	if err := c.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.AMQP.URL == "" {
		errs = append(errs, "AMQP_URL is required for the sync worker")
	}
	if c.Sheets.SpreadsheetID == "" {
		errs = append(errs, "Google Spreadsheet ID is required for the sync worker")
	}
	if c.Sheets.ExpensesSheet == "" || c.Sheets.IncomeSheet == "" {
		errs = append(errs, "Google sheet names cannot be empty")
	}
	hasFile := c.Sheets.CredentialsFile != ""
	if !hasFile && c.Sheets.CredentialsJSON == "" {
		errs = append(errs, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided")
	}
	if hasFile {
		if _, err := os.Stat(c.Sheets.CredentialsFile); errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Sprintf("Google credentials file does not exist: %s", c.Sheets.CredentialsFile))
		}
	}
	if c.Sheets.WritesPerMinute < 0 {
		errs = append(errs, "SHEETS_WRITES_PER_MINUTE cannot be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("sync configuration invalid:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
