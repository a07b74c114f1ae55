package orders

import (
	"context"
	"errors"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/logx"
)

// Processor processes orders events
type Processor struct {
	delivery DeliveryPort
	factory  *actionFactory
	logger   logx.Logger
}

// NewProcessor creates a new orders.Processor
func NewProcessor(deliverySvc DeliveryPort, logger logx.Logger) *Processor {
	if logger == nil {
		logger = logx.Nop()
	}
	p := &Processor{
		delivery: deliverySvc,
		logger:   logger,
	}
	p.factory = newActionFactory(p.onReady, p.onCanceled)
	return p
}

// Handle processes a single orders.Event. Statuses with no delivery
// consequence are ignored.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	if p.factory == nil {
		return nil
	}
	fn, ok := p.factory.get(e.Status)
	if !ok {
		p.logger.Debug("order event ignored", logx.String("order_id", e.OrderID), logx.String("status", e.Status))
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onReady(ctx context.Context, e Event) error {
	_, err := p.delivery.CreateForOrder(ctx, e.NewDelivery())
	if errors.Is(err, apperr.ErrConflict) {
		p.logger.Info("delivery already exists", logx.String("order_id", e.OrderID))
		return nil
	}
	return err
}

func (p *Processor) onCanceled(ctx context.Context, e Event) error {
	_, err := p.delivery.CancelForOrder(ctx, e.OrderID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return nil
	case errors.Is(err, apperr.ErrConflict):
		p.logger.Warn("order cancelled after delivery finished", logx.String("order_id", e.OrderID), logx.Err(err))
		return nil
	}
	return err
}
