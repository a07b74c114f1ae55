package handlers

import (
	"context"

	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/service/delivery"
	"cafe-delivery-service/internal/store"
)

type deliveryUsecase interface {
	List(ctx context.Context, q domain.ListQuery) (store.Page, error)
	Get(ctx context.Context, id int64) (*domain.DeliveryDetails, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (domain.Delivery, error)
	UpdateTime(ctx context.Context, id int64, u domain.TimeUpdate) (domain.Delivery, error)
}

// NewDeliveryUsecase wires a DeliveryService into a deliveryUsecase.
func NewDeliveryUsecase(svc *delivery.Service) deliveryUsecase {
	return svc
}
