package app

import (
	"context"
	"errors"
	"time"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/service/orders"
	"cafe-delivery-service/internal/transport/kafka"
)

const orderEventTimeout = 5 * time.Second

type orderEventHandler interface {
	Handle(context.Context, orders.Event) error
}

// makeOrdersKafka bounds each order event with its own deadline so one stuck
// event cannot stall the partition. Events the delivery service rejects as
// invalid are reported as permanent so the consumer commits them.
func makeOrdersKafka(p orderEventHandler, timeout time.Duration) kafka.HandleFunc {
	if timeout <= 0 {
		timeout = orderEventTimeout
	}
	return func(ctx context.Context, event orders.Event) error {
		hCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		err := p.Handle(hCtx, event)
		if errors.Is(err, apperr.ErrInvalid) {
			return kafka.Permanent("order event rejected", err)
		}
		return err
	}
}
