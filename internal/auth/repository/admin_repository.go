package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"oticas/internal/domain"
	apperrors "oticas/internal/errors"
	"oticas/internal/infrastructure/database"
)

type SQLAdminRepository struct {
	db sqlx.ExtContext
}

func NewSQLAdminRepository(db sqlx.ExtContext) *SQLAdminRepository {
	return &SQLAdminRepository{db: db}
}

// FindByEmail matches case-insensitively; emails are stored lowercased.
func (r *SQLAdminRepository) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := `
		SELECT Id AS id, Email AS email, PasswordHash AS password_hash, CreatedAt AS created_at
		FROM AdminUsers
		WHERE Email = ?
	`

	var admin domain.Admin
	err := sqlx.GetContext(ctx, r.db, &admin, r.db.Rebind(query), normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("admin %s not found", email))
	}
	if err != nil {
		return nil, fmt.Errorf("querying admin by email: %w", err)
	}
	return &admin, nil
}

func (r *SQLAdminRepository) FindByID(ctx context.Context, id int64) (*domain.Admin, error) {
	query := `
		SELECT Id AS id, Email AS email, PasswordHash AS password_hash, CreatedAt AS created_at
		FROM AdminUsers
		WHERE Id = ?
	`

	var admin domain.Admin
	err := sqlx.GetContext(ctx, r.db, &admin, r.db.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("admin with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying admin by id: %w", err)
	}
	return &admin, nil
}

func (r *SQLAdminRepository) Insert(ctx context.Context, email, passwordHash string, createdAt time.Time) (int64, error) {
	query := `INSERT INTO AdminUsers (Email, PasswordHash, CreatedAt) VALUES (?, ?, ?)`

	id, err := database.InsertReturningID(ctx, r.db, query, normalizeEmail(email), passwordHash, createdAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("inserting admin: %w", err)
	}
	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
