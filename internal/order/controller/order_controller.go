package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"oticas/internal/domain"
	"oticas/internal/dto"
	apperrors "oticas/internal/errors"
	"oticas/internal/infrastructure/httpjson"
	"oticas/internal/order/usecase"
)

type LookupUseCase interface {
	Lookup(ctx context.Context, input string) (*usecase.LookupOutcome, error)
}

type DetailUseCase interface {
	GetOrder(ctx context.Context, id int64) (*usecase.OrderDetail, error)
}

// OrderController serves the anonymous, read-only customer routes.
type OrderController struct {
	lookup LookupUseCase
	detail DetailUseCase
	out    *httpjson.Writer
	logger *zap.Logger
}

func NewOrderController(lookup LookupUseCase, detail DetailUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		lookup: lookup,
		detail: detail,
		out:    httpjson.NewWriter(logger),
		logger: logger,
	}
}

func (c *OrderController) Statuses(w http.ResponseWriter, r *http.Request) {
	stages := domain.Stages()
	labels := make([]string, len(stages))
	for i, s := range stages {
		labels[i] = s.String()
	}
	c.out.WriteJSON(w, http.StatusOK, dto.StatusesResponse{
		Statuses: labels,
		Terminal: domain.TerminalStage.String(),
	})
}

func (c *OrderController) Lookup(w http.ResponseWriter, r *http.Request) {
	traceID := httpjson.NewTraceID()

	var req dto.LookupRequest
	if !c.out.Decode(w, r, traceID, &req) {
		return
	}
	if domain.CanonicalCPF(req.CPF) == "" {
		c.out.WriteValidationError(w, traceID, "invalid cpf", apperrors.ValidationDetail{
			Field:   "cpf",
			Message: "cpf must contain digits",
		})
		return
	}

	outcome, err := c.lookup.Lookup(r.Context(), req.CPF)
	if err != nil {
		c.out.WriteError(w, traceID, err)
		return
	}

	resp := dto.LookupResponse{
		TraceID: traceID,
		Outcome: string(outcome.Kind),
		Message: outcome.Message,
	}
	switch outcome.Kind {
	case usecase.OutcomeSingleMatch:
		id := outcome.OrderID
		resp.OrderID = &id
	case usecase.OutcomeMultipleMatches:
		resp.Matches = dto.FromSummaries(outcome.Matches)
	}
	c.out.WriteJSON(w, http.StatusOK, resp)
}

func (c *OrderController) Detail(w http.ResponseWriter, r *http.Request) {
	traceID := httpjson.NewTraceID()

	id, ok := c.orderID(w, r, traceID)
	if !ok {
		return
	}

	detail, err := c.detail.GetOrder(r.Context(), id)
	if err != nil {
		c.out.WriteError(w, traceID, err)
		return
	}

	c.out.WriteJSON(w, http.StatusOK, dto.OrderDetailResponse{
		TraceID:  traceID,
		Order:    dto.FromOrder(detail.Order),
		Timeline: dto.FromTimeline(detail.Timeline),
	})
}

func (c *OrderController) orderID(w http.ResponseWriter, r *http.Request, traceID string) (int64, bool) {
	raw := chi.URLParam(r, "orderId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.logger.Warn("invalid orderId in path", zap.String("traceId", traceID), zap.String("orderId", raw))
		c.out.WriteValidationError(w, traceID, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return 0, false
	}
	return id, true
}
