//go:generate mockgen -source=contracts.go -destination=orders_mocks_test.go -package=orders_test

package orders

import (
	"context"

	"cafe-delivery-service/internal/domain"
)

// DeliveryPort abstracts the subset of delivery service operations
// needed by orders Processor when handling order events
type DeliveryPort interface {
	CreateForOrder(ctx context.Context, n domain.NewDelivery) (domain.Delivery, error)
	CancelForOrder(ctx context.Context, orderID string) (domain.Delivery, error)
}
