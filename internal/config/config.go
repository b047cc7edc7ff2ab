package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood by Load. Each can be set in the config file, or in the
// environment with the LEDGER_ prefix (LEDGER_DATA_BACKEND, ...).
const (
	KeyConfigFile            = "config"
	KeyPort                  = "port"
	KeyDataBackend           = "data_backend"
	KeyCSVPath               = "csv_path"
	KeySQLiteDBPath          = "sqlite_db_path"
	KeyGoogleSpreadsheetID   = "google_spreadsheet_id"
	KeyGoogleSheetName       = "google_sheet_name"
	KeyGoogleCredentialsFile = "google_credentials_file"
	KeyGoogleCredentialsJSON = "google_credentials_json"
	KeyAMQPURL               = "amqp_url"
	KeyAMQPExchange          = "amqp_exchange"
	KeyAMQPQueue             = "amqp_queue"
	KeyMirrorBackend         = "mirror_backend"
	KeyMirrorCSVPath         = "mirror_csv_path"
	KeySyncInterval          = "sync_interval"
	KeyLogLevel              = "log_level"
	KeyLogFormat             = "log_format"
)

const EnvPrefix = "LEDGER"

var (
	validBackends       = []string{"csv", "sqlite", "memory", "sheets"}
	validMirrorBackends = []string{"csv", "sheets"}
	validLogLevels      = []string{"debug", "info", "warn", "error"}
	validLogFormats     = []string{"text", "json"}
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Files
	CSVPath      string
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string

	// AMQP, disabled when the URL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	MirrorBackend string
	MirrorCSVPath string
	SyncInterval  time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyDataBackend, "csv")
	v.SetDefault(KeyCSVPath, "expenses.csv")
	v.SetDefault(KeySQLiteDBPath, "./data/ledger.db")
	v.SetDefault(KeyGoogleSheetName, "Expenses")
	v.SetDefault(KeyAMQPURL, "")
	v.SetDefault(KeyAMQPExchange, "ledger")
	v.SetDefault(KeyAMQPQueue, "ledger_mirror")
	v.SetDefault(KeyMirrorBackend, "csv")
	v.SetDefault(KeyMirrorCSVPath, "./data/expenses-mirror.csv")
	v.SetDefault(KeySyncInterval, 5*time.Minute)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
}

// Load resolves the configuration from defaults, the optional config file
// named by the "config" key, the environment and any flags already bound
// to v. A nil v uses a fresh instance.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString(KeyConfigFile)); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return &Config{
		Port:                  v.GetString(KeyPort),
		DataBackend:           strings.ToLower(strings.TrimSpace(v.GetString(KeyDataBackend))),
		CSVPath:               v.GetString(KeyCSVPath),
		SQLiteDBPath:          v.GetString(KeySQLiteDBPath),
		GoogleSpreadsheetID:   v.GetString(KeyGoogleSpreadsheetID),
		GoogleSheetName:       v.GetString(KeyGoogleSheetName),
		GoogleCredentialsFile: v.GetString(KeyGoogleCredentialsFile),
		GoogleCredentialsJSON: v.GetString(KeyGoogleCredentialsJSON),
		AMQPURL:               v.GetString(KeyAMQPURL),
		AMQPExchange:          v.GetString(KeyAMQPExchange),
		AMQPQueue:             v.GetString(KeyAMQPQueue),
		MirrorBackend:         strings.ToLower(strings.TrimSpace(v.GetString(KeyMirrorBackend))),
		MirrorCSVPath:         v.GetString(KeyMirrorCSVPath),
		SyncInterval:          v.GetDuration(KeySyncInterval),
		LogLevel:              strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:             strings.ToLower(v.GetString(KeyLogFormat)),
	}, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !oneOf(c.DataBackend, validBackends) {
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "csv":
		if strings.TrimSpace(c.CSVPath) == "" {
			problems = append(problems, "CSV path cannot be empty when using csv backend")
		}
	case "sqlite":
		if strings.TrimSpace(c.SQLiteDBPath) == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "sheets":
		problems = append(problems, c.sheetsProblems("sheets backend")...)
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SyncInterval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if !oneOf(c.LogLevel, validLogLevels) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if !oneOf(c.LogFormat, validLogFormats) {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	return joinProblems(problems)
}

// ValidateMirror checks the settings only the mirror worker needs.
func (c *Config) ValidateMirror() error {
	var problems []string
	if c.AMQPURL == "" {
		problems = append(problems, "AMQP URL is required by the mirror worker")
	}
	switch c.MirrorBackend {
	case "csv":
		if strings.TrimSpace(c.MirrorCSVPath) == "" {
			problems = append(problems, "mirror CSV path cannot be empty when using csv mirror")
		} else if c.DataBackend == "csv" && c.MirrorCSVPath == c.CSVPath {
			problems = append(problems, "mirror CSV path must differ from the primary CSV path")
		}
	case "sheets":
		problems = append(problems, c.sheetsProblems("sheets mirror")...)
		if c.DataBackend == "sheets" {
			problems = append(problems, "mirror backend must differ from the primary backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid mirror backend '%s': must be one of %v", c.MirrorBackend, validMirrorBackends))
	}
	return joinProblems(problems)
}

func (c *Config) sheetsProblems(what string) []string {
	var problems []string
	if c.GoogleSpreadsheetID == "" {
		problems = append(problems, fmt.Sprintf("Google Spreadsheet ID is required when using %s", what))
	}
	hasFile := c.GoogleCredentialsFile != ""
	hasJSON := c.GoogleCredentialsJSON != ""
	if !hasFile && !hasJSON {
		problems = append(problems, fmt.Sprintf("either LEDGER_GOOGLE_CREDENTIALS_FILE or LEDGER_GOOGLE_CREDENTIALS_JSON must be provided for %s", what))
	}
	if hasFile && !hasJSON {
		if _, err := os.Stat(c.GoogleCredentialsFile); errors.Is(err, os.ErrNotExist) {
			problems = append(problems, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
		}
	}
	return problems
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
}
