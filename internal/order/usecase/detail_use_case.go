package usecase

import (
	"context"

	"oticas/internal/domain"
)

type OrderGetter interface {
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
}

type OrderDetail struct {
	Order    domain.Order
	Timeline []domain.TimelineStep
}

type DetailUseCase struct {
	getter OrderGetter
}

func NewDetailUseCase(getter OrderGetter) *DetailUseCase {
	return &DetailUseCase{getter: getter}
}

// GetOrder loads one order with its rendered timeline. A missing order surfaces
// the getter's NotFoundError unchanged.
func (uc *DetailUseCase) GetOrder(ctx context.Context, id int64) (*OrderDetail, error) {
	order, err := uc.getter.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{
		Order:    *order,
		Timeline: domain.BuildTimeline(*order),
	}, nil
}
