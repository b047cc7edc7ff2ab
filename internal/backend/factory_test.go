package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage/csvfile"
	"ledger/internal/storage/memory"
	"ledger/internal/storage/sheets"
	"ledger/internal/storage/sqlite"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		DataBackend:         "SQLite",
		CSVPath:             "a.csv",
		SQLiteDBPath:        "db.sqlite",
		GoogleSpreadsheetID: "sid",
		MirrorBackend:       "csv",
		MirrorCSVPath:       "mirror.csv",
	}
	bc, err := FromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, bc.Type)
	assert.Equal(t, "db.sqlite", bc.SQLiteDBPath)
	assert.Equal(t, "sid", bc.Sheets.SpreadsheetID)

	mc, err := MirrorFromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, CSVBackend, mc.Type)
	assert.Equal(t, "mirror.csv", mc.CSVPath)

	_, err = FromAppConfig(&config.Config{DataBackend: "excel"})
	assert.Error(t, err)
	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestCreateStores(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	f := NewFactory(log.Discard())

	res, err := f.Create(ctx, Config{Type: CSVBackend, CSVPath: filepath.Join(dir, "expenses.csv")})
	require.NoError(t, err)
	assert.IsType(t, &csvfile.Store{}, res.Store)
	assert.NoError(t, res.Close())

	res, err = f.Create(ctx, Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, res.Store)

	res, err = f.Create(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "ledger.db")})
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, res.Store)

	l := core.Ledger{{ID: "x", Date: core.NewDate(2024, time.May, 1), Category: core.Food, Amount: core.Money{Cents: 1}}}
	require.NoError(t, res.Store.Save(ctx, l))
	got, err := res.Store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, l, got)
	assert.NoError(t, res.Close())
}

func TestCreateRejectsIncompleteConfig(t *testing.T) {
	f := NewFactory(log.Discard())
	ctx := context.Background()

	_, err := f.Create(ctx, Config{Type: "nope"})
	assert.Error(t, err)
	_, err = f.Create(ctx, Config{Type: SQLiteBackend})
	assert.Error(t, err)
	_, err = f.Create(ctx, Config{Type: SheetsBackend})
	assert.Error(t, err)
	_, err = f.Create(ctx, Config{Type: SheetsBackend, Sheets: sheetsOptions("sid")})
	assert.ErrorContains(t, err, "credentials")
}

func sheetsOptions(id string) sheets.Options {
	return sheets.Options{SpreadsheetID: id}
}
