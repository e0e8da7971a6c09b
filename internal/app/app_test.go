package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oticas/internal/auth"
	"oticas/internal/config"
	"oticas/internal/dto"
	"oticas/internal/infrastructure/session"
	"oticas/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			Issuer:     "oticas-test",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
		},
		Dashboard: config.DashboardConfig{TerminalRemovalDelay: 10 * time.Millisecond},
		Locale:    config.LocaleConfig{TimeZone: "UTC"},
		Metrics:   config.MetricsConfig{Enabled: true, Namespace: "oticas"},
	}
}

type client struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *client) do(method, path, body string, out interface{}) int {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestEndToEnd_AdminAndCustomerFlows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testConfig()

	registrar, err := auth.NewAdminRegistrar(db, cfg.Auth, zap.NewNop())
	require.NoError(t, err)
	_, err = registrar.CreateAdmin(context.Background(), "admin@oticas.com", "supersecret")
	require.NoError(t, err)

	a, err := Assemble(db, session.NewMemoryStore(time.Minute), cfg, zap.NewNop())
	require.NoError(t, err)
	c := &client{t: t, handler: a.Handler}

	var login dto.SessionResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/v1/admin/login", `{"email":"admin@oticas.com","password":"supersecret"}`, &login))
	c.token = login.Token

	var created dto.CreateOrderResponse
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/v1/admin/orders",
		`{"customerName":"Maria Silva","cpf":"123.456.789-00","glassesModel":"Ray-Ban","lensType":"Multifocal"}`, &created))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/v1/admin/orders",
		`{"customerName":"Maria Silva","cpf":"12345678900","glassesModel":"Oakley","lensType":"Simples"}`, nil))

	var list dto.OrdersResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/admin/orders", "", &list))
	require.Len(t, list.Orders, 2)
	assert.Equal(t, "Oakley - Simples", list.Orders[0].Description)

	path := "/api/v1/admin/orders/" + strconv.FormatInt(created.ID, 10) + "/status"
	require.Equal(t, http.StatusNoContent, c.do(http.MethodPatch, path, `{"status":"Em Montagem"}`, nil))

	customer := &client{t: t, handler: a.Handler}
	var lookup dto.LookupResponse
	require.Equal(t, http.StatusOK, customer.do(http.MethodPost, "/api/v1/lookup", `{"cpf":"123 456 789 00"}`, &lookup))
	assert.Equal(t, "multiple", lookup.Outcome)
	require.Len(t, lookup.Matches, 2)

	var detail dto.OrderDetailResponse
	require.Equal(t, http.StatusOK, customer.do(http.MethodGet, "/api/v1/orders/"+strconv.FormatInt(created.ID, 10), "", &detail))
	assert.Equal(t, "Em Montagem", detail.Order.CurrentStatus)
	require.Len(t, detail.Order.History, 2)
	assert.True(t, detail.Timeline[3].IsCurrent)
	assert.True(t, detail.Timeline[0].IsCompleted)

	require.Equal(t, http.StatusNoContent, c.do(http.MethodPatch, path, `{"status":"Entregue"}`, nil))
	assert.Eventually(t, func() bool {
		var l dto.OrdersResponse
		return c.do(http.MethodGet, "/api/v1/admin/orders", "", &l) == http.StatusOK && len(l.Orders) == 1
	}, time.Second, 10*time.Millisecond)

	var fresh dto.OrdersResponse
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/admin/orders?refresh=true", "", &fresh))
	assert.Len(t, fresh.Orders, 1, "delivered orders stay out of the active list")

	require.Equal(t, http.StatusNoContent, c.do(http.MethodPost, "/api/v1/admin/logout", "", nil))
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/v1/admin/orders", "", nil))
	assert.Equal(t, 0, a.Registry.Len())
}

func TestAssemble_RequiresSigningKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testConfig()
	cfg.Auth.JWTSecret = ""

	_, err := Assemble(db, session.NewMemoryStore(time.Minute), cfg, zap.NewNop())

	assert.Error(t, err)
}

func TestNewRevocationStore_MemoryByDefault(t *testing.T) {
	store, closeStore, err := newRevocationStore(context.Background(), config.SessionConfig{Store: config.SessionStoreMemory}, zap.NewNop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, closeStore()) }()

	_, isMemory := store.(*session.MemoryStore)
	assert.True(t, isMemory)

	require.NoError(t, store.Revoke(context.Background(), "sess-1", time.Hour))
	revoked, err := store.IsRevoked(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}
