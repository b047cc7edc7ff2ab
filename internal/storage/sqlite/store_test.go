package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/core"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "ledger.db")
	s, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func sample() core.Ledger {
	return core.Ledger{
		{ID: "01A", Date: core.NewDate(2024, time.January, 5), Category: core.Food, Item: "Bread", Amount: core.Money{Cents: 1000}},
		{ID: "01B", Date: core.NewDate(2024, time.January, 20), Category: core.Transport, Item: "Bus", Amount: core.Money{Cents: 500}},
		{ID: "01C", Date: core.NewDate(2024, time.February, 1), Category: core.Food, Item: "", Amount: core.Money{Cents: 2000}},
	}
}

func TestLoadFreshDatabase(t *testing.T) {
	s, _ := newStore(t)
	l, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, l)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sample()))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)

	require.NoError(t, s.Save(ctx, sample()[1:]))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample()[1:], got)
}

func TestReopenKeepsData(t *testing.T) {
	s, path := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sample()))
	require.NoError(t, s.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestSaveRejectsInvalidAmountAtomically(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sample()))

	bad := append(sample().Clone(), core.Record{Date: core.NewDate(2024, time.March, 1), Category: core.Other, Amount: core.Money{Cents: 0}})
	require.Error(t, s.Save(ctx, bad))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}
