// Package memory provides an in-process Store for tests and throwaway runs.
package memory

import (
	"context"
	"sync"

	"ledger/internal/core"
	"ledger/internal/storage"
)

type Store struct {
	mu      sync.Mutex
	ledger  core.Ledger
	saves   int
	saveErr error
}

// New returns a store seeded with a copy of initial.
func New(initial core.Ledger) *Store {
	return &Store{ledger: initial.Clone()}
}

func (s *Store) Load(ctx context.Context) (core.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Clone(), nil
}

func (s *Store) Save(ctx context.Context, l core.Ledger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return &storage.IOError{Op: "save", Path: "memory", Err: s.saveErr}
	}
	s.ledger = l.Clone()
	s.saves++
	return nil
}

// FailSaves makes every following Save fail with err. Pass nil to recover.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves reports how many saves succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
