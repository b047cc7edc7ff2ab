package backend

import (
	"errors"
	"fmt"
	"strings"

	"ledger/internal/config"
	"ledger/internal/storage/sheets"
)

// Type names a storage backend.
type Type string

const (
	CSVBackend    Type = "csv"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
	SheetsBackend Type = "sheets"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case CSVBackend, SQLiteBackend, MemoryBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Types returns every valid backend type.
func Types() []Type {
	return []Type{CSVBackend, SQLiteBackend, MemoryBackend, SheetsBackend}
}

// Config holds what the factory needs for one store.
type Config struct {
	Type         Type
	CSVPath      string
	SQLiteDBPath string
	Sheets       sheets.Options
}

// FromAppConfig describes the primary store.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	return fromType(appConfig, appConfig.DataBackend, appConfig.CSVPath)
}

// MirrorFromAppConfig describes the store the mirror worker writes to.
func MirrorFromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	return fromType(appConfig, appConfig.MirrorBackend, appConfig.MirrorCSVPath)
}

func fromType(appConfig *config.Config, backendType, csvPath string) (Config, error) {
	t := Type(strings.ToLower(strings.TrimSpace(backendType)))
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", backendType)
	}
	return Config{
		Type:         t,
		CSVPath:      csvPath,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		Sheets: sheets.Options{
			SpreadsheetID:   appConfig.GoogleSpreadsheetID,
			SheetName:       appConfig.GoogleSheetName,
			CredentialsJSON: appConfig.GoogleCredentialsJSON,
			CredentialsFile: appConfig.GoogleCredentialsFile,
		},
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	switch c.Type {
	case CSVBackend:
		if strings.TrimSpace(c.CSVPath) == "" {
			return errors.New("CSV path is required for csv backend")
		}
	case SQLiteBackend:
		if strings.TrimSpace(c.SQLiteDBPath) == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
	case MemoryBackend:
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	return nil
}
