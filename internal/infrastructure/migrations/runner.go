package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"oticas/internal/config"
)

// Runner applies the embedded schema for one database driver.
type Runner struct {
	provider *goose.Provider
	logger   *zap.Logger
}

type Status struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt time.Time
}

func NewRunner(db *sql.DB, driver string, logger *zap.Logger) (*Runner, error) {
	dialect, dir, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	sub, err := fs.Sub(files, dir)
	if err != nil {
		return nil, fmt.Errorf("opening %s migrations: %w", dir, err)
	}
	provider, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return nil, fmt.Errorf("creating migration provider: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{provider: provider, logger: logger}, nil
}

func dialectFor(driver string) (goose.Dialect, string, error) {
	switch driver {
	case config.DriverMySQL:
		return goose.DialectMySQL, "mysql", nil
	case config.DriverPostgres:
		return goose.DialectPostgres, "postgres", nil
	case config.DriverSQLite:
		return goose.DialectSQLite3, "sqlite", nil
	default:
		return "", "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

// Up applies every pending migration.
func (r *Runner) Up(ctx context.Context) error {
	results, err := r.provider.Up(ctx)
	for _, res := range results {
		r.logResult(res)
	}
	if err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down(ctx context.Context) error {
	res, err := r.provider.Down(ctx)
	if res != nil {
		r.logResult(res)
	}
	if err != nil {
		return fmt.Errorf("rolling back migration: %w", err)
	}
	return nil
}

func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	statuses, err := r.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading migration status: %w", err)
	}
	out := make([]Status, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, Status{
			Version:   s.Source.Version,
			Name:      s.Source.Path,
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	return out, nil
}

func (r *Runner) logResult(res *goose.MigrationResult) {
	fields := []zap.Field{
		zap.Int64("version", res.Source.Version),
		zap.String("direction", res.Direction),
		zap.Duration("duration", res.Duration),
	}
	if res.Error != nil {
		r.logger.Error("migration failed", append(fields, zap.Error(res.Error))...)
		return
	}
	r.logger.Info("migration applied", fields...)
}
