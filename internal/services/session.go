package services

import (
	"context"
	"fmt"
	"sync"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// Publisher is notified after every successful save.
type Publisher interface {
	PublishSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error
}

// Session owns the in-memory ledger snapshot of one UI process and threads
// it through add and delete. Every mutation persists the full snapshot
// before it becomes visible; a failed save leaves the session unchanged.
type Session struct {
	mu        sync.RWMutex
	store     storage.Store
	publisher Publisher
	logger    *log.Logger

	ledger  core.Ledger
	version uint64
	loaded  bool
}

type Option func(*Session)

// WithPublisher announces saved snapshots through p.
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l.WithComponent(log.ComponentLedger) }
}

func NewSession(store storage.Store, opts ...Option) *Session {
	s := &Session{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.FromContext(context.Background()).WithComponent(log.ComponentLedger)
	}
	return s
}

// Load replaces the snapshot with the store's content. Records get fresh
// IDs when the store does not keep them.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Session) loadLocked(ctx context.Context) error {
	l, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	s.ledger = l.WithIDs()
	s.version++
	s.loaded = true
	s.logger.InfoContext(ctx, "Ledger loaded", log.FieldCount, len(s.ledger), log.FieldVersion, s.version)
	return nil
}

func (s *Session) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

// Ledger returns a copy of the current snapshot.
func (s *Session) Ledger(ctx context.Context) (core.Ledger, error) {
	if err := s.loadIfNeeded(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Clone(), nil
}

// Snapshot returns a copy of the current ledger together with its version.
func (s *Session) Snapshot(ctx context.Context) (core.Ledger, uint64, error) {
	if err := s.loadIfNeeded(ctx); err != nil {
		return nil, 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Clone(), s.version, nil
}

// Version increases by one on every load and every successful mutation.
func (s *Session) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Session) Summary(ctx context.Context) (core.Summary, uint64, error) {
	l, v, err := s.Snapshot(ctx)
	if err != nil {
		return core.Summary{}, 0, err
	}
	return core.Summarize(l), v, nil
}

// Add validates r, appends it and saves. The stored record, with its
// assigned ID, is returned together with its position in the ledger that
// was saved.
func (s *Session) Add(ctx context.Context, r core.Record) (core.Record, int, error) {
	if err := r.Validate(); err != nil {
		return core.Record{}, -1, err
	}

	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return core.Record{}, -1, err
	}
	next, err := s.ledger.Append(r)
	if err != nil {
		s.mu.Unlock()
		return core.Record{}, -1, err
	}
	index := len(next) - 1
	added := next[index]
	msg, err := s.commitLocked(ctx, next, amqp.ReasonAdd)
	s.mu.Unlock()
	if err != nil {
		return core.Record{}, -1, err
	}

	s.logger.InfoContext(ctx, "Expense added",
		log.FieldRecordID, added.ID,
		log.FieldCategory, added.Category.String(),
		log.FieldAmountCents, added.Amount.Cents,
		log.FieldVersion, msg.Version)
	s.publish(ctx, msg)
	return added, index, nil
}

// DeleteAt removes the record at position i of the load-order ledger.
func (s *Session) DeleteAt(ctx context.Context, i int) (core.Record, error) {
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return core.Record{}, err
	}
	next, err := s.ledger.DeleteAt(i)
	if err != nil {
		s.mu.Unlock()
		return core.Record{}, err
	}
	removed := s.ledger[i]
	msg, err := s.commitLocked(ctx, next, amqp.ReasonDelete)
	s.mu.Unlock()
	if err != nil {
		return core.Record{}, err
	}

	s.logger.InfoContext(ctx, "Expense deleted",
		log.FieldRecordID, removed.ID,
		log.FieldIndex, i,
		log.FieldVersion, msg.Version)
	s.publish(ctx, msg)
	return removed, nil
}

// Delete removes the record with the given ID and reports the position it
// held.
func (s *Session) Delete(ctx context.Context, recordID string) (core.Record, int, error) {
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return core.Record{}, -1, err
	}
	next, removed, pos, err := s.ledger.DeleteByID(recordID)
	if err != nil {
		s.mu.Unlock()
		return core.Record{}, -1, err
	}
	msg, err := s.commitLocked(ctx, next, amqp.ReasonDelete)
	s.mu.Unlock()
	if err != nil {
		return core.Record{}, -1, err
	}

	s.logger.InfoContext(ctx, "Expense deleted",
		log.FieldRecordID, removed.ID,
		log.FieldIndex, pos,
		log.FieldVersion, msg.Version)
	s.publish(ctx, msg)
	return removed, pos, nil
}

// commitLocked saves next and only then makes it the current snapshot.
func (s *Session) commitLocked(ctx context.Context, next core.Ledger, reason string) (*amqp.SnapshotSavedMessage, error) {
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save ledger", log.FieldError, err, log.FieldOperation, reason)
		return nil, fmt.Errorf("save ledger: %w", err)
	}
	s.ledger = next
	s.version++
	return amqp.NewSnapshotSavedMessage(s.version, reason, len(next), core.Total(next).Cents), nil
}

func (s *Session) publish(ctx context.Context, msg *amqp.SnapshotSavedMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSnapshotSaved(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish snapshot message",
			log.FieldError, err,
			log.FieldVersion, msg.Version)
	}
}

func (s *Session) loadIfNeeded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLoadedLocked(ctx)
}
