package order

import (
	"go.uber.org/zap"

	"oticas/internal/config"
	"oticas/internal/infrastructure/database"
	"oticas/internal/infrastructure/metrics"
	"oticas/internal/order/controller"
	"oticas/internal/order/repository"
	"oticas/internal/order/service"
	"oticas/internal/order/usecase"
)

type Module struct {
	Service    *service.OrderService
	Controller *controller.OrderController
}

func NewModule(db *database.DB, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *Module {
	clientRepo := repository.NewSQLClientRepository()
	orderRepo := repository.NewSQLOrderRepository(db)

	svc := service.NewOrderService(db, clientRepo, orderRepo, logger, service.WithLocation(cfg.Location()))

	lookup := usecase.NewLookupUseCase(svc, m, logger)
	detail := usecase.NewDetailUseCase(svc)

	return &Module{
		Service:    svc,
		Controller: controller.NewOrderController(lookup, detail, logger),
	}
}
