package deliverytx

import (
	"context"
	"time"

	"cafe-delivery-service/internal/domain"
)

// Repository is the set of delivery writes that run inside one transaction.
type Repository interface {
	GetForUpdate(ctx context.Context, id int64) (*domain.Delivery, error)
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.Delivery, error)
	Update(ctx context.Context, d *domain.Delivery) error
	InsertStatusChange(ctx context.Context, deliveryID int64, from, to domain.Status, at time.Time) error
	InsertTimeChange(ctx context.Context, c domain.TimeChange) error
	InsertIntent(ctx context.Context, in domain.NotificationIntent, at time.Time) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
