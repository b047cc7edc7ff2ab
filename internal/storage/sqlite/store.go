// Package sqlite keeps the ledger snapshot in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"ledger/internal/core"
	"ledger/internal/storage"
)

type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) the database at dbPath and applies the
// embedded migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, &storage.IOError{Op: "open", Path: dbPath, Err: fmt.Errorf("create db directory: %w", err)}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &storage.IOError{Op: "open", Path: dbPath, Err: err}
	}
	// One connection serialises writers and keeps the snapshot swap atomic.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &storage.IOError{Op: "open", Path: dbPath, Err: fmt.Errorf("ping database: %w", err)}
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, &storage.IOError{Op: "migrate", Path: dbPath, Err: err}
	}
	return &Store{db: db, path: dbPath}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (core.Ledger, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, category, item, amount_cents FROM expenses ORDER BY position`)
	if err != nil {
		return nil, &storage.IOError{Op: "load", Path: s.path, Err: err}
	}
	defer rows.Close()

	l := core.Ledger{}
	for rows.Next() {
		var (
			r        core.Record
			date     string
			category string
			cents    int64
		)
		if err := rows.Scan(&r.ID, &date, &category, &r.Item, &cents); err != nil {
			return nil, &storage.IOError{Op: "load", Path: s.path, Err: fmt.Errorf("scan row: %w", err)}
		}
		if r.Date, err = core.ParseDate(date); err != nil {
			return nil, &storage.FormatError{Path: s.path, Line: len(l) + 1, Err: &core.ValidationError{Field: "date", Err: err}}
		}
		if r.Category, err = core.ParseCategory(category); err != nil {
			return nil, &storage.FormatError{Path: s.path, Line: len(l) + 1, Err: &core.ValidationError{Field: "category", Err: err}}
		}
		r.Amount = core.Money{Cents: cents}
		if err := r.Validate(); err != nil {
			return nil, &storage.FormatError{Path: s.path, Line: len(l) + 1, Err: err}
		}
		l = append(l, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.IOError{Op: "load", Path: s.path, Err: err}
	}
	return l, nil
}

// Save replaces every row inside one transaction.
func (s *Store) Save(ctx context.Context, l core.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &storage.IOError{Op: "save", Path: s.path, Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return &storage.IOError{Op: "save", Path: s.path, Err: fmt.Errorf("clear expenses: %w", err)}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expenses (position, id, date, category, item, amount_cents) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return &storage.IOError{Op: "save", Path: s.path, Err: fmt.Errorf("prepare insert: %w", err)}
	}
	defer stmt.Close()

	for i, r := range l {
		if _, err := stmt.ExecContext(ctx, i, r.ID, r.Date.String(), r.Category.String(), r.Item, r.Amount.Cents); err != nil {
			return &storage.IOError{Op: "save", Path: s.path, Err: fmt.Errorf("insert record %d: %w", i, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &storage.IOError{Op: "save", Path: s.path, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}
