package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"oticas/internal/config"
)

// InsertReturningID executes an INSERT written with ? placeholders and returns
// the generated Id. PostgreSQL has no LastInsertId, so the statement is
// extended with RETURNING there.
func InsertReturningID(ctx context.Context, ext sqlx.ExtContext, query string, args ...any) (int64, error) {
	if ext.DriverName() == config.DriverPostgres {
		var id int64
		if err := sqlx.GetContext(ctx, ext, &id, ext.Rebind(query+" RETURNING Id"), args...); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return id, nil
}
