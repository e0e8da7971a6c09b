package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oticas/internal/domain"
	apperrors "oticas/internal/errors"
)

// Mock implementations
type mockOrderFinder struct {
	FindSummariesByCPFFunc func(ctx context.Context, cpf string) ([]domain.OrderSummary, error)
}

func (m *mockOrderFinder) FindSummariesByCPF(ctx context.Context, cpf string) ([]domain.OrderSummary, error) {
	return m.FindSummariesByCPFFunc(ctx, cpf)
}

type recordingRecorder struct {
	outcomes []string
}

func (r *recordingRecorder) RecordLookup(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func finderReturning(summaries []domain.OrderSummary, captured *string) *mockOrderFinder {
	return &mockOrderFinder{FindSummariesByCPFFunc: func(ctx context.Context, cpf string) ([]domain.OrderSummary, error) {
		if captured != nil {
			*captured = cpf
		}
		return summaries, nil
	}}
}

// Tests

func TestLookup_NotFound(t *testing.T) {
	rec := &recordingRecorder{}
	uc := NewLookupUseCase(finderReturning(nil, nil), rec, zap.NewNop())

	out, err := uc.Lookup(context.Background(), "000.000.000-00")

	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, out.Kind)
	assert.Equal(t, MsgNoOrdersForCPF, out.Message)
	assert.Equal(t, []string{"not_found"}, rec.outcomes)
}

func TestLookup_SingleMatchResolvesToOrder(t *testing.T) {
	var cpf string
	uc := NewLookupUseCase(finderReturning([]domain.OrderSummary{{ID: 17}}, &cpf), nil, zap.NewNop())

	out, err := uc.Lookup(context.Background(), "123.456.789-00")

	require.NoError(t, err)
	assert.Equal(t, "12345678900", cpf)
	assert.Equal(t, OutcomeSingleMatch, out.Kind)
	assert.Equal(t, int64(17), out.OrderID)
	assert.Empty(t, out.Matches)
}

func TestLookup_MultipleMatchesKeepOrder(t *testing.T) {
	matches := []domain.OrderSummary{
		{ID: 3, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Description: "C - D", Status: "Montagem"},
		{ID: 1, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Description: "A - B", Status: "Entregue"},
	}
	uc := NewLookupUseCase(finderReturning(matches, nil), nil, zap.NewNop())

	out, err := uc.Lookup(context.Background(), "12345678900")

	require.NoError(t, err)
	assert.Equal(t, OutcomeMultipleMatches, out.Kind)
	assert.Equal(t, matches, out.Matches)
}

func TestLookup_PunctuationIsIrrelevant(t *testing.T) {
	var first, second string
	uc1 := NewLookupUseCase(finderReturning(nil, &first), nil, zap.NewNop())
	uc2 := NewLookupUseCase(finderReturning(nil, &second), nil, zap.NewNop())

	_, err := uc1.Lookup(context.Background(), "123.456.789-00")
	require.NoError(t, err)
	_, err = uc2.Lookup(context.Background(), "12345678900")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLookup_BackendFailure(t *testing.T) {
	rec := &recordingRecorder{}
	finder := &mockOrderFinder{FindSummariesByCPFFunc: func(ctx context.Context, cpf string) ([]domain.OrderSummary, error) {
		return nil, errors.New("connection refused")
	}}
	uc := NewLookupUseCase(finder, rec, zap.NewNop())

	out, err := uc.Lookup(context.Background(), "1")

	assert.Nil(t, out)
	be, ok := apperrors.IsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, "Ocorreu um erro ao buscar os pedidos. Verifique o CPF.", be.Message)
	assert.Equal(t, []string{"error"}, rec.outcomes)
}
