package usecase

import (
	"context"

	"go.uber.org/zap"

	"oticas/internal/domain"
	apperrors "oticas/internal/errors"
)

const MsgNoOrdersForCPF = "Nenhum pedido encontrado para este CPF."

type OutcomeKind string

const (
	OutcomeNotFound        OutcomeKind = "not_found"
	OutcomeSingleMatch     OutcomeKind = "single"
	OutcomeMultipleMatches OutcomeKind = "multiple"
)

// LookupOutcome is what a customer sees after searching by CPF. OrderID is set
// only for a single match, Matches only for several, Message only for none.
type LookupOutcome struct {
	Kind    OutcomeKind
	OrderID int64
	Matches []domain.OrderSummary
	Message string
}

type OrderFinder interface {
	FindSummariesByCPF(ctx context.Context, cpf string) ([]domain.OrderSummary, error)
}

type LookupRecorder interface {
	RecordLookup(outcome string)
}

type LookupUseCase struct {
	finder   OrderFinder
	recorder LookupRecorder
	logger   *zap.Logger
}

func NewLookupUseCase(finder OrderFinder, recorder LookupRecorder, logger *zap.Logger) *LookupUseCase {
	return &LookupUseCase{
		finder:   finder,
		recorder: recorder,
		logger:   logger,
	}
}

// Lookup searches orders by CPF in any punctuation. Backend failures come back
// as a BackendError carrying the user-facing message; nothing is retried.
func (uc *LookupUseCase) Lookup(ctx context.Context, input string) (*LookupOutcome, error) {
	cpf := domain.CanonicalCPF(input)

	matches, err := uc.finder.FindSummariesByCPF(ctx, cpf)
	if err != nil {
		uc.record("error")
		if _, ok := apperrors.IsBackendError(err); ok {
			return nil, err
		}
		return nil, apperrors.NewBackendError("Ocorreu um erro ao buscar os pedidos. Verifique o CPF.", err)
	}

	var outcome *LookupOutcome
	switch len(matches) {
	case 0:
		outcome = &LookupOutcome{Kind: OutcomeNotFound, Message: MsgNoOrdersForCPF}
	case 1:
		outcome = &LookupOutcome{Kind: OutcomeSingleMatch, OrderID: matches[0].ID}
	default:
		outcome = &LookupOutcome{Kind: OutcomeMultipleMatches, Matches: matches}
	}

	uc.record(string(outcome.Kind))
	uc.logger.Debug("order lookup", zap.String("outcome", string(outcome.Kind)), zap.Int("matches", len(matches)))
	return outcome, nil
}

func (uc *LookupUseCase) record(outcome string) {
	if uc.recorder != nil {
		uc.recorder.RecordLookup(outcome)
	}
}
