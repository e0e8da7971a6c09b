package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	authsvc "oticas/internal/auth/service"
	"oticas/internal/dashboard"
	"oticas/internal/domain"
	"oticas/internal/dto"
	apperrors "oticas/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))
}

type memoryBackend struct {
	mu     sync.Mutex
	orders []domain.Order
	nextID int64
}

func (b *memoryBackend) ListActive(ctx context.Context) ([]domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Order
	for _, o := range b.orders {
		if !o.CurrentStatus.IsTerminal() {
			out = append(out, o)
		}
	}
	return out, nil
}

func (b *memoryBackend) CreateOrder(ctx context.Context, input domain.NewOrder) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if strings.TrimSpace(input.CustomerName) == "" {
		return 0, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "customerName", Message: "customerName is required"})
	}
	b.nextID++
	b.orders = append([]domain.Order{{
		ID:            strconv.FormatInt(b.nextID, 10),
		CustomerName:  input.CustomerName,
		CPF:           domain.CanonicalCPF(input.CPF),
		CurrentStatus: domain.FirstStage,
		Description:   input.Description(),
	}}, b.orders...)
	return b.nextID, nil
}

func (b *memoryBackend) UpdateStatus(ctx context.Context, id int64, status domain.Stage, history []domain.HistoryEntry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == strconv.FormatInt(id, 10) {
			b.orders[i].CurrentStatus = status
			b.orders[i].History = history
			return nil
		}
	}
	return apperrors.NewNotFoundError("Pedido não encontrado.")
}

func (b *memoryBackend) DeleteOrder(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == strconv.FormatInt(id, 10) {
			b.orders = append(b.orders[:i], b.orders[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError("Pedido não encontrado.")
}

// fakeAuth issues tokens equal to the session id and remembers revocations.
type fakeAuth struct {
	mu      sync.Mutex
	issued  int
	revoked map[string]bool
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{revoked: make(map[string]bool)}
}

func (a *fakeAuth) Authenticate(ctx context.Context, email, password string) (*authsvc.Session, error) {
	if password != "secret" {
		return nil, apperrors.NewUnauthorizedError("E-mail ou senha inválidos.")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.issued++
	id := "tok-" + strconv.Itoa(a.issued)
	return &authsvc.Session{ID: id, AdminID: 1, Email: email, Token: id, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (a *fakeAuth) Revoke(ctx context.Context, s *authsvc.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.revoked[s.ID] = true
	return nil
}

func (a *fakeAuth) Verify(ctx context.Context, bearer string) (*authsvc.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !strings.HasPrefix(bearer, "tok-") || a.revoked[bearer] {
		return nil, apperrors.NewUnauthorizedError("Sessão encerrada. Faça login novamente.")
	}
	return &authsvc.Session{ID: bearer, AdminID: 1, Email: "admin@oticas.com", Token: bearer, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type harness struct {
	handler  http.Handler
	backend  *memoryBackend
	auth     *fakeAuth
	registry *dashboard.Registry
}

func newHarness(t *testing.T, orders ...domain.Order) *harness {
	t.Helper()
	backend := &memoryBackend{orders: orders, nextID: int64(len(orders))}
	auth := newFakeAuth()
	registry := dashboard.NewRegistry(func() *dashboard.Session {
		return dashboard.NewSession(backend, auth, dashboard.WithRemovalDelay(10*time.Millisecond))
	}, time.Minute, nil)
	t.Cleanup(func() {
		for i := 1; i <= auth.issued; i++ {
			registry.Remove("tok-" + strconv.Itoa(i))
		}
	})

	ctrl := NewDashboardController(registry, zap.NewNop())
	guard := NewAdminGuard(auth, registry, zap.NewNop())

	r := chi.NewRouter()
	r.Post("/admin/login", ctrl.Login)
	r.Group(func(r chi.Router) {
		r.Use(guard.Middleware)
		r.Post("/admin/logout", ctrl.Logout)
		r.Get("/admin/session", ctrl.Session)
		r.Get("/admin/orders", ctrl.ListOrders)
		r.Post("/admin/orders", ctrl.CreateOrder)
		r.Patch("/admin/orders/{orderId}/status", ctrl.UpdateStatus)
		r.Delete("/admin/orders/{orderId}", ctrl.DeleteOrder)
	})

	return &harness{handler: r, backend: backend, auth: auth, registry: registry}
}

func (h *harness) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(t *testing.T) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/admin/login", "", `{"email":"admin@oticas.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body dto.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	return body.Token
}

func (h *harness) orders(t *testing.T, token string) []dto.OrderDTO {
	t.Helper()
	rec := h.do(t, http.MethodGet, "/admin/orders", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body dto.OrdersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Orders
}

func order(id string, status domain.Stage) domain.Order {
	return domain.Order{ID: id, CustomerName: "Cliente " + id, CPF: "12345678900", CurrentStatus: status,
		History: []domain.HistoryEntry{{Status: domain.FirstStage, Date: "01/06/2024, 10:00:00"}}}
}

func TestLogin_Rejected(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/admin/login", "", `{"email":"admin@oticas.com","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, h.registry.Len())
}

func TestLogin_ValidatesFields(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/admin/login", "", `{"email":" "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password")
}

func TestGuard_RejectsMissingAndInvalidTokens(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/admin/orders", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/admin/orders", "garbage", "").Code)
}

func TestSessionCheck(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)

	rec := h.do(t, http.MethodGet, "/admin/session", token, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body dto.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "admin@oticas.com", body.Email)
	assert.Empty(t, body.Token)
}

func TestListOrders_ExcludesDelivered(t *testing.T) {
	h := newHarness(t, order("2", domain.StageAssembly), order("1", domain.StageDelivered))
	token := h.login(t)

	orders := h.orders(t, token)

	require.Len(t, orders, 1)
	assert.Equal(t, "2", orders[0].ID)
	assert.Equal(t, "123.456.789-00", orders[0].FormattedCPF)
}

func TestListOrders_InvalidRefreshFlag(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)

	rec := h.do(t, http.MethodGet, "/admin/orders?refresh=maybe", token, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)

	rec := h.do(t, http.MethodPost, "/admin/orders", token,
		`{"customerName":"Ana","cpf":"111.222.333-44","glassesModel":"Ray-Ban","lensType":"Multifocal"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orders := h.orders(t, token)
	require.Len(t, orders, 1)
	assert.Equal(t, "Ray-Ban - Multifocal", orders[0].Description)
	assert.Equal(t, string(domain.FirstStage), orders[0].CurrentStatus)
}

func TestCreateOrder_ValidationError(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)

	rec := h.do(t, http.MethodPost, "/admin/orders", token, `{"cpf":"1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "customerName")
}

func TestUpdateStatus_TerminalLeavesList(t *testing.T) {
	h := newHarness(t, order("1", domain.StageReadyForPickup))
	token := h.login(t)

	rec := h.do(t, http.MethodPatch, "/admin/orders/1/status", token, `{"status":"Entregue"}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	assert.Eventually(t, func() bool {
		return len(h.orders(t, token)) == 0
	}, time.Second, 5*time.Millisecond)

	h.backend.mu.Lock()
	defer h.backend.mu.Unlock()
	assert.Len(t, h.backend.orders[0].History, 2)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	h := newHarness(t, order("1", domain.StageAssembly))
	token := h.login(t)

	rec := h.do(t, http.MethodPatch, "/admin/orders/1/status", token, `{"status":"Pronto"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteOrder(t *testing.T) {
	h := newHarness(t, order("1", domain.StageAssembly))
	token := h.login(t)

	rec := h.do(t, http.MethodDelete, "/admin/orders/1", token, "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, h.orders(t, token))
}

func TestDeleteOrder_InvalidID(t *testing.T) {
	h := newHarness(t)
	token := h.login(t)

	rec := h.do(t, http.MethodDelete, "/admin/orders/0", token, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	h := newHarness(t, order("1", domain.StageAssembly))
	token := h.login(t)
	require.Equal(t, 1, h.registry.Len())

	rec := h.do(t, http.MethodPost, "/admin/logout", token, "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, h.registry.Len())
	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/admin/orders", token, "").Code)
}

func TestGuard_ResumesUnknownSession(t *testing.T) {
	h := newHarness(t, order("1", domain.StageAssembly))
	token := h.login(t)
	h.registry.Remove(token)

	orders := h.orders(t, token)

	assert.Len(t, orders, 1)
	assert.Equal(t, 1, h.registry.Len())
}
