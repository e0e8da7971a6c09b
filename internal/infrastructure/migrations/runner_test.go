package migrations

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"oticas/internal/config"
)

func openMemory(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunner_UpCreatesTables(t *testing.T) {
	db := openMemory(t)
	r, err := NewRunner(db.DB, config.DriverSQLite, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, r.Up(context.Background()))

	for _, table := range []string{"Clients", "ServiceOrders", "AdminUsers"} {
		var n int
		require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table))
		assert.Equal(t, 1, n, table)
	}

	statuses, err := r.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	for _, s := range statuses {
		assert.True(t, s.Applied, s.Name)
	}
}

func TestRunner_DownRollsBackLatest(t *testing.T) {
	db := openMemory(t)
	r, err := NewRunner(db.DB, config.DriverSQLite, nil)
	require.NoError(t, err)
	require.NoError(t, r.Up(context.Background()))

	require.NoError(t, r.Down(context.Background()))

	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'AdminUsers'"))
	assert.Equal(t, 0, n)
}

func TestNewRunner_UnknownDriver(t *testing.T) {
	_, err := NewRunner(nil, "oracle", nil)
	assert.Error(t, err)
}

func TestDialectFor_AllDriversHaveMigrations(t *testing.T) {
	for _, d := range []string{config.DriverMySQL, config.DriverPostgres, config.DriverSQLite} {
		_, dir, err := dialectFor(d)
		require.NoError(t, err)
		entries, err := files.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 3, d)
	}
}
