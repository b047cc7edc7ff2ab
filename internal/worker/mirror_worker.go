// Package worker copies the primary ledger snapshot to a mirror store.
package worker

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// MirrorWorker keeps mirror equal to source. It reacts to snapshot
// messages and also reconciles on a timer, so missed messages only delay
// the copy.
type MirrorWorker struct {
	source storage.Store
	mirror storage.Store
	logger *log.Logger

	mu          sync.Mutex
	fingerprint string
	lastSeen    time.Time
	copies      int
}

func NewMirrorWorker(source, mirror storage.Store, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &MirrorWorker{
		source: source,
		mirror: mirror,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSnapshotSaved is the AMQP handler. Messages older than one already
// handled are acknowledged without work.
func (w *MirrorWorker) HandleSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error {
	w.mu.Lock()
	stale := !msg.Timestamp.IsZero() && msg.Timestamp.Before(w.lastSeen)
	if !stale && msg.Timestamp.After(w.lastSeen) {
		w.lastSeen = msg.Timestamp
	}
	w.mu.Unlock()

	if stale {
		w.logger.DebugContext(ctx, "Skipping stale snapshot message", log.FieldVersion, msg.Version)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing snapshot message",
		log.FieldVersion, msg.Version,
		log.FieldCount, msg.Count,
		log.FieldOperation, msg.Reason)

	if _, err := w.Sync(ctx); err != nil {
		return fmt.Errorf("mirror snapshot %d: %w", msg.Version, err)
	}
	return nil
}

// Sync copies the source snapshot when it differs from the last one copied.
// It reports whether the mirror was written.
func (w *MirrorWorker) Sync(ctx context.Context) (bool, error) {
	l, err := w.source.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load source: %w", err)
	}

	var buf bytes.Buffer
	if err := storage.WriteCSV(&buf, l); err != nil {
		return false, fmt.Errorf("fingerprint snapshot: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	fp := hex.EncodeToString(sum[:])

	w.mu.Lock()
	defer w.mu.Unlock()
	if fp == w.fingerprint {
		return false, nil
	}
	if err := w.mirror.Save(ctx, l); err != nil {
		return false, fmt.Errorf("save mirror: %w", err)
	}
	w.fingerprint = fp
	w.copies++
	w.logger.InfoContext(ctx, "Mirror updated", log.FieldCount, len(l))
	return true, nil
}

// Run reconciles once immediately and then every interval until ctx ends.
func (w *MirrorWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := w.Sync(ctx); err != nil && ctx.Err() == nil {
			w.logger.ErrorContext(ctx, "Periodic mirror failed", log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Copies reports how many times the mirror was written.
func (w *MirrorWorker) Copies() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.copies
}
