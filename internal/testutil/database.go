package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"oticas/internal/config"
	"oticas/internal/infrastructure/database"
	"oticas/internal/infrastructure/migrations"
)

// SetupTestDB opens a private in-memory SQLite database with the full schema applied.
// It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *database.DB {
	t.Helper()

	raw, err := sqlx.Open(config.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { raw.Close() })

	runner, err := migrations.NewRunner(raw.DB, config.DriverSQLite, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create migration runner: %v", err)
	}
	if err := runner.Up(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return database.Wrap(raw, 1, zap.NewNop())
}

// InsertClient seeds a client row and returns its id.
func InsertClient(t *testing.T, db *database.DB, fullName, cpf string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO Clients (FullName, Cpf) VALUES (?, ?)`, fullName, cpf)
	if err != nil {
		t.Fatalf("failed to insert client: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read client id: %v", err)
	}
	return id
}

// InsertOrder seeds a service order row with an explicit CreatedAt ("2006-01-02 15:04:05").
func InsertOrder(t *testing.T, db *database.DB, clientID int64, description, status, history, createdAt string) int64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO ServiceOrders (ClientId, Description, Status, History, CreatedAt) VALUES (?, ?, ?, ?, ?)`,
		clientID, description, status, history, createdAt,
	)
	if err != nil {
		t.Fatalf("failed to insert order: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("failed to read order id: %v", err)
	}
	return id
}
