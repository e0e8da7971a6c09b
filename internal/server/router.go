package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	dashboardctrl "oticas/internal/dashboard/controller"
	"oticas/internal/infrastructure/metrics"
	orderctrl "oticas/internal/order/controller"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Orders    *orderctrl.OrderController
	Dashboard *dashboardctrl.DashboardController
	Guard     *dashboardctrl.AdminGuard
}

// RouterOptions carries the optional pieces of the router. A nil Metrics
// disables instrumentation and the /metrics endpoint.
type RouterOptions struct {
	DB       Pinger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(opts.Metrics.Middleware)

	r.Get("/healthz", healthHandler(opts.DB))
	if opts.Metrics != nil && opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/statuses", h.Orders.Statuses)
		r.Post("/lookup", h.Orders.Lookup)
		r.Get("/orders/{orderId}", h.Orders.Detail)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Dashboard.Login)

			r.Group(func(r chi.Router) {
				r.Use(h.Guard.Middleware)
				r.Post("/logout", h.Dashboard.Logout)
				r.Get("/session", h.Dashboard.Session)
				r.Get("/orders", h.Dashboard.ListOrders)
				r.Post("/orders", h.Dashboard.CreateOrder)
				r.Patch("/orders/{orderId}/status", h.Dashboard.UpdateStatus)
				r.Delete("/orders/{orderId}", h.Dashboard.DeleteOrder)
			})
		})
	})

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
