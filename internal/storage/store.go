package storage

import (
	"context"

	"ledger/internal/core"
)

// Store persists a whole ledger. Load of storage that does not exist yet
// yields an empty ledger; Save replaces everything previously stored.
type Store interface {
	Load(ctx context.Context) (core.Ledger, error)
	Save(ctx context.Context, l core.Ledger) error
}
