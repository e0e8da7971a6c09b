package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"oticas/internal/domain"
	apperrors "oticas/internal/errors"
)

const (
	msgSearchFailed    = "Ocorreu um erro ao buscar os pedidos. Verifique o CPF."
	msgLoadFailed      = "Não foi possível carregar os pedidos."
	msgOrderLoadFailed = "Não foi possível carregar o pedido."
	msgCreateFailed    = "Não foi possível criar o pedido."
	msgUpdateFailed    = "Não foi possível atualizar o status do pedido."
	msgDeleteFailed    = "Não foi possível excluir o pedido."
	msgOrderNotFound   = "Pedido não encontrado."
)

type TransactionManager interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type ClientRepository interface {
	FindByCPF(ctx context.Context, ext sqlx.ExtContext, cpf string) (*domain.Client, error)
	Insert(ctx context.Context, ext sqlx.ExtContext, client domain.Client) (int64, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.OrderRow, error)
	FindSummariesByClientCPF(ctx context.Context, cpf string) ([]domain.OrderSummary, error)
	FindExcludingStatuses(ctx context.Context, statuses []string) ([]domain.OrderRow, error)
	Insert(ctx context.Context, ext sqlx.ExtContext, clientID int64, description, status, history string, createdAt time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status, history string) error
	Delete(ctx context.Context, id int64) error
}

// OrderService is the only path from the flows to the ServiceOrders and Clients tables.
type OrderService struct {
	tx         TransactionManager
	clientRepo ClientRepository
	orderRepo  OrderRepository
	logger     *zap.Logger
	now        func() time.Time
	loc        *time.Location
}

type Option func(*OrderService)

func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *OrderService) { s.loc = loc }
}

func NewOrderService(
	tx TransactionManager,
	clientRepo ClientRepository,
	orderRepo OrderRepository,
	logger *zap.Logger,
	opts ...Option,
) *OrderService {
	s := &OrderService{
		tx:         tx,
		clientRepo: clientRepo,
		orderRepo:  orderRepo,
		logger:     logger,
		now:        time.Now,
		loc:        time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindSummariesByCPF returns the orders of the client with the given CPF,
// newest first. Input is canonicalized before querying.
func (s *OrderService) FindSummariesByCPF(ctx context.Context, cpf string) ([]domain.OrderSummary, error) {
	canonical := domain.CanonicalCPF(cpf)
	summaries, err := s.orderRepo.FindSummariesByClientCPF(ctx, canonical)
	if err != nil {
		s.logger.Error("order lookup failed", zap.Error(err))
		return nil, apperrors.NewBackendError(msgSearchFailed, err)
	}
	return summaries, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	row, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewNotFoundError(msgOrderNotFound)
		}
		s.logger.Error("order fetch failed", zap.Int64("orderId", id), zap.Error(err))
		return nil, apperrors.NewBackendError(msgOrderLoadFailed, err)
	}
	if _, herr := domain.ParseHistory(row.History.String); herr != nil {
		s.logger.Warn("order history unreadable", zap.Int64("orderId", id), zap.Error(herr))
	}
	order := domain.MapOrder(*row)
	return &order, nil
}

// ListActive returns every order not yet delivered, newest first. Rows still
// carrying a legacy delivered label count as delivered.
func (s *OrderService) ListActive(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.orderRepo.FindExcludingStatuses(ctx, domain.TerminalStage.StoredLabels())
	if err != nil {
		s.logger.Error("active orders fetch failed", zap.Error(err))
		return nil, apperrors.NewBackendError(msgLoadFailed, err)
	}
	return domain.MapOrders(rows), nil
}

// CreateOrder reuses the client with the same CPF or registers a new one, then
// inserts the order at the first stage with a single history entry. Both
// writes share one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, input domain.NewOrder) (int64, error) {
	input.CPF = domain.CanonicalCPF(input.CPF)
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.GlassesModel = strings.TrimSpace(input.GlassesModel)
	input.LensType = strings.TrimSpace(input.LensType)
	if err := validateNewOrder(input); err != nil {
		return 0, err
	}

	now := s.now()
	history, err := domain.EncodeHistory([]domain.HistoryEntry{
		{Status: domain.FirstStage, Date: domain.FormatHistoryDate(now, s.loc)},
	})
	if err != nil {
		return 0, apperrors.NewBackendError(msgCreateFailed, err)
	}

	var orderID int64
	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		clientID, err := s.resolveClient(ctx, tx, input)
		if err != nil {
			return err
		}
		orderID, err = s.orderRepo.Insert(ctx, tx, clientID, input.Description(), string(domain.FirstStage), history, now)
		return err
	})
	if err != nil {
		s.logger.Error("order creation failed", zap.Error(err))
		return 0, apperrors.NewBackendError(msgCreateFailed, err)
	}

	s.logger.Info("order created", zap.Int64("orderId", orderID))
	return orderID, nil
}

func (s *OrderService) resolveClient(ctx context.Context, tx sqlx.ExtContext, input domain.NewOrder) (int64, error) {
	client, err := s.clientRepo.FindByCPF(ctx, tx, input.CPF)
	if err == nil {
		return client.ID, nil
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		return 0, err
	}
	return s.clientRepo.Insert(ctx, tx, domain.Client{
		FullName: input.CustomerName,
		CPF:      input.CPF,
		Phone:    sql.NullString{},
	})
}

func validateNewOrder(input domain.NewOrder) error {
	var details []apperrors.ValidationDetail
	if input.CustomerName == "" {
		details = append(details, apperrors.ValidationDetail{Field: "customerName", Message: "customerName is required"})
	}
	if input.CPF == "" {
		details = append(details, apperrors.ValidationDetail{Field: "cpf", Message: "cpf is required"})
	}
	if input.GlassesModel == "" {
		details = append(details, apperrors.ValidationDetail{Field: "glassesModel", Message: "glassesModel is required"})
	}
	if input.LensType == "" {
		details = append(details, apperrors.ValidationDetail{Field: "lensType", Message: "lensType is required"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

// UpdateStatus persists the new status together with the full history.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status domain.Stage, history []domain.HistoryEntry) error {
	encoded, err := domain.EncodeHistory(history)
	if err != nil {
		return apperrors.NewBackendError(msgUpdateFailed, err)
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, string(status), encoded); err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return apperrors.NewNotFoundError(msgOrderNotFound)
		}
		s.logger.Error("order status update failed", zap.Int64("orderId", id), zap.Error(err))
		return apperrors.NewBackendError(msgUpdateFailed, err)
	}
	s.logger.Info("order status updated", zap.Int64("orderId", id), zap.String("status", string(status)))
	return nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return apperrors.NewNotFoundError(msgOrderNotFound)
		}
		s.logger.Error("order deletion failed", zap.Int64("orderId", id), zap.Error(err))
		return apperrors.NewBackendError(msgDeleteFailed, err)
	}
	s.logger.Info("order deleted", zap.Int64("orderId", id))
	return nil
}
