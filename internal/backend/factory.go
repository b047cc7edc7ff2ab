// Package backend builds the configured ledger store.
package backend

import (
	"context"
	"fmt"

	"ledger/internal/log"
	"ledger/internal/storage"
	"ledger/internal/storage/csvfile"
	"ledger/internal/storage/memory"
	"ledger/internal/storage/sheets"
	"ledger/internal/storage/sqlite"
)

// CleanupFunc releases resources held by a store.
type CleanupFunc func() error

// Result is a ready store plus its cleanup, which may be nil.
type Result struct {
	Store   storage.Store
	Cleanup CleanupFunc
	// Location is a human readable description of where data lives.
	Location string
}

// Close runs Cleanup when there is one.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates stores based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch config.Type {
	case CSVBackend:
		s := csvfile.New(config.CSVPath)
		res = &Result{Store: s, Location: s.Path()}
	case SQLiteBackend:
		res, err = f.createSQLite(config)
	case SheetsBackend:
		res, err = f.createSheets(ctx, config)
	case MemoryBackend:
		res = &Result{Store: memory.New(nil), Location: "memory"}
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		log.FieldBackend, config.Type.String(),
		log.FieldStorePath, res.Location)
	return res, nil
}

func (f *DefaultFactory) createSQLite(config Config) (*Result, error) {
	s, err := sqlite.New(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite store: %w", err)
	}
	return &Result{Store: s, Cleanup: s.Close, Location: config.SQLiteDBPath}, nil
}

func (f *DefaultFactory) createSheets(ctx context.Context, config Config) (*Result, error) {
	s, err := sheets.New(ctx, config.Sheets)
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets store: %w", err)
	}
	return &Result{Store: s, Location: "sheets:" + config.Sheets.SpreadsheetID}, nil
}
