//go:generate mockgen -source=contracts.go -destination=delivery_mocks_test.go -package=delivery_test

package delivery

import (
	"context"
	"time"

	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/ports/deliverytx"
)

// Repository is the delivery storage used by the service.
type Repository interface {
	WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) error
	List(ctx context.Context, q domain.ListQuery) ([]domain.Delivery, error)
	GetDetails(ctx context.Context, id int64) (*domain.DeliveryDetails, error)
	Create(ctx context.Context, d *domain.Delivery, order domain.OrderSummary) error
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
	PendingIntents(ctx context.Context, before time.Time, limit int) ([]domain.NotificationIntent, error)
	MarkIntentPublished(ctx context.Context, id string, at time.Time) error
}

// DetailsCache holds recently read delivery details. After Invalidate, a Set
// whose details are older than updatedAt must not be stored.
type DetailsCache interface {
	Get(ctx context.Context, id int64) (*domain.DeliveryDetails, bool)
	Set(ctx context.Context, d *domain.DeliveryDetails)
	Invalidate(ctx context.Context, id int64, updatedAt time.Time)
}

// IntentPublisher hands notification intents to the collaborator that sends them.
type IntentPublisher interface {
	Publish(ctx context.Context, in domain.NotificationIntent) error
}
