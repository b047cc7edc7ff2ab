// Package csvfile persists a ledger as a four-column CSV file.
package csvfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ledger/internal/core"
	"ledger/internal/storage"
)

// DefaultPath is used when no file is configured.
const DefaultPath = "expenses.csv"

type Store struct {
	path string
}

func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the whole file. A missing or zero-length file is an empty
// ledger.
func (s *Store) Load(ctx context.Context) (core.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.Ledger{}, nil
	}
	if err != nil {
		return nil, &storage.IOError{Op: "load", Path: s.path, Err: err}
	}
	defer f.Close()

	l, err := storage.ReadCSV(f)
	if err != nil {
		var fe *storage.FormatError
		if errors.As(err, &fe) {
			fe.Path = s.path
			return nil, fe
		}
		return nil, &storage.IOError{Op: "load", Path: s.path, Err: err}
	}
	return l, nil
}

// Save writes the ledger to a temporary file next to the target and
// renames it into place, so readers see either the old or the new file.
func (s *Store) Save(ctx context.Context, l core.Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.Validate(); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &storage.IOError{Op: "save", Path: s.path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &storage.IOError{Op: "save", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := storage.WriteCSV(tmp, l); err != nil {
		tmp.Close()
		return &storage.IOError{Op: "save", Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &storage.IOError{Op: "save", Path: s.path, Err: fmt.Errorf("sync: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return &storage.IOError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &storage.IOError{Op: "save", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return &storage.IOError{Op: "save", Path: s.path, Err: err}
	}
	committed = true
	return nil
}
