package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"oticas/internal/dashboard"
	"oticas/internal/domain"
	"oticas/internal/dto"
	apperrors "oticas/internal/errors"
	"oticas/internal/infrastructure/httpjson"
)

// DashboardController serves the admin routes. Every handler except Login
// expects AdminGuard to have placed a session in the request context.
type DashboardController struct {
	registry SessionRegistry
	out      *httpjson.Writer
	logger   *zap.Logger
}

func NewDashboardController(registry SessionRegistry, logger *zap.Logger) *DashboardController {
	return &DashboardController{
		registry: registry,
		out:      httpjson.NewWriter(logger),
		logger:   logger,
	}
}

func (c *DashboardController) Login(w http.ResponseWriter, r *http.Request) {
	traceID := httpjson.NewTraceID()

	var req dto.LoginRequest
	if !c.out.Decode(w, r, traceID, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	var details []apperrors.ValidationDetail
	if req.Email == "" {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is required"})
	}
	if req.Password == "" {
		details = append(details, apperrors.ValidationDetail{Field: "password", Message: "password is required"})
	}
	if len(details) > 0 {
		c.out.WriteValidationError(w, traceID, "validation failed", details...)
		return
	}

	s := c.registry.New()
	identity, err := s.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		c.logger.Info("admin login rejected", zap.String("traceId", traceID), zap.Error(err))
		c.out.WriteError(w, traceID, err)
		return
	}
	c.registry.Put(s)

	c.out.WriteJSON(w, http.StatusOK, dto.SessionResponse{
		TraceID:   traceID,
		Token:     identity.Token,
		Email:     identity.Email,
		ExpiresAt: identity.ExpiresAt,
	})
}

func (c *DashboardController) Logout(w http.ResponseWriter, r *http.Request) {
	traceID := httpjson.NewTraceID()
	s, ok := c.session(w, r, traceID)
	if !ok {
		return
	}

	identity := s.Identity()
	err := s.Logout(r.Context())
	if identity != nil {
		c.registry.Remove(identity.ID)
	}
	if err != nil {
		c.out.WriteError(w, traceID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *DashboardController) Session(w http.ResponseWriter, r *http.Request) {
	traceID := httpjson.NewTraceID()
	s, ok := c.session(w, r, traceID)
	if !ok {
		return
	}

	identity := s.Identity()
	if identity == nil {
		c.out.WriteError(w, traceID, apperrors.NewUnauthorizedError(msgMissingToken))
		return
	}
	c.out.WriteJSON(w, http.StatusOK, dto.SessionResponse{
		TraceID:   traceID,
		Email:     identity.Email,
		ExpiresAt: identity.ExpiresAt,
	})
}

func (c *DashboardController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := httpjson.NewTraceID()
	s, ok := c.session(w, r, traceID)
	if !ok {
		return
	}

	refresh := false
	if raw := r.URL.Query().Get("refresh"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.out.WriteValidationError(w, traceID, "invalid refresh", apperrors.ValidationDetail{
				Field:   "refresh",
				Message: "refresh must be a boolean",
			})
			return
		}
		refresh = parsed
	}

	orders, err := s.Orders(r.Context(), refresh)
	if err != nil {
		c.out.WriteError(w, traceID, err)
		return
	}
	c.out.WriteJSON(w, http.StatusOK, dto.OrdersResponse{
		TraceID: traceID,
		Orders:  dto.FromOrders(orders),
	})
}

func (c *DashboardController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := httpjson.NewTraceID()
	s, ok := c.session(w, r, traceID)
	if !ok {
		return
	}

	var req dto.CreateOrderRequest
	if !c.out.Decode(w, r, traceID, &req) {
		return
	}

	id, err := s.CreateOrder(r.Context(), domain.NewOrder{
		CustomerName: req.CustomerName,
		CPF:          req.CPF,
		GlassesModel: req.GlassesModel,
		LensType:     req.LensType,
	})
	if err != nil {
		c.out.WriteError(w, traceID, err)
		return
	}
	c.out.WriteJSON(w, http.StatusCreated, dto.CreateOrderResponse{TraceID: traceID, ID: id})
}

func (c *DashboardController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID := httpjson.NewTraceID()
	s, ok := c.session(w, r, traceID)
	if !ok {
		return
	}
	id, ok := c.orderID(w, r, traceID)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !c.out.Decode(w, r, traceID, &req) {
		return
	}

	if err := s.UpdateStatus(r.Context(), id, domain.Stage(req.Status)); err != nil {
		c.out.WriteError(w, traceID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *DashboardController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	traceID := httpjson.NewTraceID()
	s, ok := c.session(w, r, traceID)
	if !ok {
		return
	}
	id, ok := c.orderID(w, r, traceID)
	if !ok {
		return
	}

	if err := s.DeleteOrder(r.Context(), id); err != nil {
		c.out.WriteError(w, traceID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *DashboardController) session(w http.ResponseWriter, r *http.Request, traceID string) (*dashboard.Session, bool) {
	s, ok := dashboard.FromContext(r.Context())
	if !ok {
		c.out.WriteError(w, traceID, apperrors.NewUnauthorizedError(msgMissingToken))
		return nil, false
	}
	return s, true
}

func (c *DashboardController) orderID(w http.ResponseWriter, r *http.Request, traceID string) (int64, bool) {
	raw := chi.URLParam(r, "orderId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.out.WriteValidationError(w, traceID, "invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId must be a positive integer",
		})
		return 0, false
	}
	return id, true
}
