package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"oticas/internal/domain"
	apperrors "oticas/internal/errors"
	"oticas/internal/infrastructure/database"
)

const orderColumns = `
	o.Id AS id, o.Description AS description, o.Status AS status,
	o.History AS history, o.CreatedAt AS created_at,
	c.FullName AS client_name, c.Cpf AS client_cpf`

type SQLOrderRepository struct {
	db sqlx.ExtContext
}

func NewSQLOrderRepository(db sqlx.ExtContext) *SQLOrderRepository {
	return &SQLOrderRepository{db: db}
}

func (r *SQLOrderRepository) FindByID(ctx context.Context, id int64) (*domain.OrderRow, error) {
	query := `SELECT` + orderColumns + `
		FROM ServiceOrders o
		LEFT JOIN Clients c ON c.Id = o.ClientId
		WHERE o.Id = ?
	`

	var row domain.OrderRow
	err := sqlx.GetContext(ctx, r.db, &row, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return &row, nil
}

// FindSummariesByClientCPF lists a client's orders, newest first. cpf must be canonical.
func (r *SQLOrderRepository) FindSummariesByClientCPF(ctx context.Context, cpf string) ([]domain.OrderSummary, error) {
	query := `
		SELECT o.Id AS id, o.CreatedAt AS created_at, o.Description AS description, o.Status AS status
		FROM ServiceOrders o
		INNER JOIN Clients c ON c.Id = o.ClientId
		WHERE c.Cpf = ?
		ORDER BY o.CreatedAt DESC, o.Id DESC
	`

	summaries := []domain.OrderSummary{}
	if err := sqlx.SelectContext(ctx, r.db, &summaries, r.db.Rebind(query), cpf); err != nil {
		return nil, fmt.Errorf("querying orders by client cpf: %w", err)
	}
	return summaries, nil
}

// FindExcludingStatuses lists every order whose stored status is none of
// statuses, newest first. An empty statuses lists every order.
func (r *SQLOrderRepository) FindExcludingStatuses(ctx context.Context, statuses []string) ([]domain.OrderRow, error) {
	where := ""
	var args []interface{}
	if len(statuses) > 0 {
		where = "WHERE o.Status NOT IN (?)"
		args = []interface{}{statuses}
	}
	query := `SELECT` + orderColumns + `
		FROM ServiceOrders o
		LEFT JOIN Clients c ON c.Id = o.ClientId
		` + where + `
		ORDER BY o.CreatedAt DESC, o.Id DESC
	`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("building order status filter: %w", err)
	}

	rows := []domain.OrderRow{}
	if err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying orders excluding statuses: %w", err)
	}
	return rows, nil
}

func (r *SQLOrderRepository) Insert(ctx context.Context, ext sqlx.ExtContext, clientID int64, description, status, history string, createdAt time.Time) (int64, error) {
	query := `INSERT INTO ServiceOrders (ClientId, Description, Status, History, CreatedAt) VALUES (?, ?, ?, ?, ?)`

	id, err := database.InsertReturningID(ctx, ext, query, clientID, description, status, history, createdAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}
	return id, nil
}

func (r *SQLOrderRepository) UpdateStatus(ctx context.Context, id int64, status, history string) error {
	query := `UPDATE ServiceOrders SET Status = ?, History = ? WHERE Id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), status, history, id)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

func (r *SQLOrderRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM ServiceOrders WHERE Id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}
