package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"oticas/internal/domain"
	apperrors "oticas/internal/errors"
	"oticas/internal/infrastructure/database"
)

type SQLClientRepository struct{}

func NewSQLClientRepository() *SQLClientRepository {
	return &SQLClientRepository{}
}

// FindByCPF expects a canonical CPF.
func (r *SQLClientRepository) FindByCPF(ctx context.Context, ext sqlx.ExtContext, cpf string) (*domain.Client, error) {
	query := `
		SELECT Id AS id, FullName AS full_name, Cpf AS cpf, Phone AS phone
		FROM Clients
		WHERE Cpf = ?
	`

	var client domain.Client
	err := sqlx.GetContext(ctx, ext, &client, ext.Rebind(query), cpf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("client with cpf %s not found", cpf))
	}
	if err != nil {
		return nil, fmt.Errorf("querying client by cpf: %w", err)
	}

	return &client, nil
}

func (r *SQLClientRepository) Insert(ctx context.Context, ext sqlx.ExtContext, client domain.Client) (int64, error) {
	query := `INSERT INTO Clients (FullName, Cpf, Phone) VALUES (?, ?, ?)`

	id, err := database.InsertReturningID(ctx, ext, query, client.FullName, client.CPF, client.Phone)
	if err != nil {
		return 0, fmt.Errorf("inserting client: %w", err)
	}
	return id, nil
}
