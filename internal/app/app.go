// Package app assembles the HTTP service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"oticas/internal/auth"
	authsvc "oticas/internal/auth/service"
	"oticas/internal/config"
	"oticas/internal/dashboard"
	dashboardctrl "oticas/internal/dashboard/controller"
	"oticas/internal/infrastructure/database"
	"oticas/internal/infrastructure/metrics"
	"oticas/internal/infrastructure/session"
	"oticas/internal/order"
	"oticas/internal/server"
)

const registryCleanupInterval = time.Minute

type App struct {
	DB       *database.DB
	Handler  http.Handler
	Registry *dashboard.Registry
	Metrics  *metrics.Metrics
	closers  []func() error
}

// New opens the database and the session store and builds the handler.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected", zap.String("driver", cfg.Database.Driver))

	revoked, closeStore, err := newRevocationStore(ctx, cfg.Session, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	a, err := Assemble(db, revoked, cfg, logger)
	if err != nil {
		closeStore()
		db.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeStore, db.Close)
	return a, nil
}

// Assemble wires every module on top of an open database.
func Assemble(db *database.DB, revoked authsvc.RevocationStore, cfg *config.Config, logger *zap.Logger) (*App, error) {
	var (
		m   *metrics.Metrics
		reg *prometheus.Registry
	)
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(reg, metrics.DefaultConfig(cfg.Metrics.Namespace))
	}

	authService, err := auth.NewModule(db, cfg.Auth, revoked, logger)
	if err != nil {
		return nil, err
	}

	orders := order.NewModule(db, cfg, m, logger)

	registry := dashboard.NewRegistry(func() *dashboard.Session {
		return dashboard.NewSession(orders.Service, authService,
			dashboard.WithRemovalDelay(cfg.Dashboard.TerminalRemovalDelay),
			dashboard.WithLocation(cfg.Location()),
			dashboard.WithLogger(logger.Named("dashboard")),
			dashboard.WithRecorder(m),
		)
	}, registryCleanupInterval, m)

	handler := server.NewRouter(server.Handlers{
		Orders:    orders.Controller,
		Dashboard: dashboardctrl.NewDashboardController(registry, logger),
		Guard:     dashboardctrl.NewAdminGuard(authService, registry, logger),
	}, server.RouterOptions{
		DB:       db,
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
	})

	return &App{
		DB:       db,
		Handler:  handler,
		Registry: registry,
		Metrics:  m,
	}, nil
}

// Close releases the session store and the database, in reverse opening order.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newRevocationStore(ctx context.Context, cfg config.SessionConfig, logger *zap.Logger) (session.RevocationStore, func() error, error) {
	if cfg.Store == config.SessionStoreRedis {
		client, err := session.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		logger.Info("session store connected", zap.String("store", cfg.Store))
		return session.NewRedisStore(client), client.Close, nil
	}
	return session.NewMemoryStore(0), func() error { return nil }, nil
}
