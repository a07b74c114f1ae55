package backend

import (
	"context"
	"time"

	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/logx"
	"cafe-delivery-service/internal/store"
)

type api interface {
	List(ctx context.Context, q domain.ListQuery) (store.Page, error)
	Get(ctx context.Context, id int64) (*domain.DeliveryDetails, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (domain.Delivery, error)
	UpdateTime(ctx context.Context, id int64, u domain.TimeUpdate) (domain.Delivery, error)
}

type counter interface {
	Inc()
}

// RetryConfig controls how RetryingClient repeats reads.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingClient repeats idempotent reads on transport errors, 5xx and 429.
// Status and time updates go through exactly once.
type RetryingClient struct {
	next    api
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
	sleep   func(context.Context, time.Duration) bool
}

// NewRetryingClient wraps next. It returns nil when next is nil.
func NewRetryingClient(next api, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingClient {
	if next == nil {
		return nil
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryingClient{next: next, logger: logger, retries: retries, cfg: cfg, sleep: sleepWithContext}
}

// List fetches a page of deliveries, retrying temporary failures.
func (c *RetryingClient) List(ctx context.Context, q domain.ListQuery) (store.Page, error) {
	var page store.Page
	err := c.retry(ctx, "List", func() error {
		var err error
		page, err = c.next.List(ctx, q)
		return err
	})
	return page, err
}

// Get fetches one delivery, retrying temporary failures.
func (c *RetryingClient) Get(ctx context.Context, id int64) (*domain.DeliveryDetails, error) {
	var d *domain.DeliveryDetails
	err := c.retry(ctx, "Get", func() error {
		var err error
		d, err = c.next.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateStatus is not retried.
func (c *RetryingClient) UpdateStatus(ctx context.Context, id int64, status domain.Status) (domain.Delivery, error) {
	return c.next.UpdateStatus(ctx, id, status)
}

// UpdateTime is not retried.
func (c *RetryingClient) UpdateTime(ctx context.Context, id int64, u domain.TimeUpdate) (domain.Delivery, error) {
	return c.next.UpdateTime(ctx, id, u)
}

func (c *RetryingClient) retry(ctx context.Context, method string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == c.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(c.cfg.BaseDelay, c.cfg.MaxDelay, attempt)
		if c.retries != nil {
			c.retries.Inc()
		}
		c.logger.Warn("backend retry",
			logx.String("method", method),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !c.sleep(ctx, delay) {
			break
		}
	}
	return lastErr
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if max > 0 && d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
