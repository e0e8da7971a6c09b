package domain

import (
	"database/sql"
	"strconv"
	"time"
)

const (
	DefaultCustomerName = "Cliente"
	DefaultCustomerCPF  = ""
)

// Order is the presentation shape of a service order joined with its client.
type Order struct {
	ID            string
	CustomerName  string
	CPF           string
	CurrentStatus Stage
	History       []HistoryEntry
	Description   string
	CreatedAt     time.Time
}

// OrderRow is a ServiceOrders row joined with Clients, as scanned by the repositories.
type OrderRow struct {
	ID          int64          `db:"id"`
	Description sql.NullString `db:"description"`
	Status      sql.NullString `db:"status"`
	History     sql.NullString `db:"history"`
	CreatedAt   time.Time      `db:"created_at"`
	ClientName  sql.NullString `db:"client_name"`
	ClientCPF   sql.NullString `db:"client_cpf"`
}

// OrderSummary is one candidate in a multi-order CPF lookup. Status is kept raw.
type OrderSummary struct {
	ID          int64     `db:"id"`
	CreatedAt   time.Time `db:"created_at"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
}

type Client struct {
	ID       int64          `db:"id"`
	FullName string         `db:"full_name"`
	CPF      string         `db:"cpf"`
	Phone    sql.NullString `db:"phone"`
}

// NewOrder is the admin input for order creation.
type NewOrder struct {
	CustomerName string
	CPF          string
	GlassesModel string
	LensType     string
}

// Description joins model and lens the way the store labels jobs.
func (n NewOrder) Description() string {
	return n.GlassesModel + " - " + n.LensType
}

type Admin struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// MapOrder converts a joined row into an Order. It never fails: unreadable
// history becomes empty, missing client data gets placeholders and every
// status is normalized.
func MapOrder(row OrderRow) Order {
	history, _ := ParseHistory(row.History.String)

	name := DefaultCustomerName
	if row.ClientName.Valid && row.ClientName.String != "" {
		name = row.ClientName.String
	}
	cpf := DefaultCustomerCPF
	if row.ClientCPF.Valid {
		cpf = row.ClientCPF.String
	}

	return Order{
		ID:            strconv.FormatInt(row.ID, 10),
		CustomerName:  name,
		CPF:           cpf,
		CurrentStatus: NormalizeStatus(row.Status.String),
		History:       history,
		Description:   row.Description.String,
		CreatedAt:     row.CreatedAt,
	}
}

// MapOrders applies MapOrder to each row, preserving order.
func MapOrders(rows []OrderRow) []Order {
	out := make([]Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, MapOrder(r))
	}
	return out
}
