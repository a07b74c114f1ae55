package delivery

import (
	"context"
	"errors"
	"strings"
	"time"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/logx"
	"cafe-delivery-service/internal/metrics"
	"cafe-delivery-service/internal/ports/deliverytx"
	"cafe-delivery-service/internal/store"
)

// Service runs the delivery lifecycle operations.
type Service struct {
	repo             Repository
	cache            DetailsCache
	publisher        IntentPublisher
	metrics          *metrics.Delivery
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
	loc              *time.Location
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// NewDeliveryService creates a new Service. cache, publisher and m may be nil.
func NewDeliveryService(
	r Repository,
	cache DetailsCache,
	publisher IntentPublisher,
	m *metrics.Delivery,
	timeout time.Duration,
	logger logx.Logger,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if cache == nil {
		cache = noCache{}
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             r,
		cache:            cache,
		publisher:        publisher,
		metrics:          m,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// WithLocation sets the zone for update times sent without one.
func (s *Service) WithLocation(loc *time.Location) *Service {
	s.loc = loc
	return s
}

// WithClock replaces the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List narrows deliveries in storage by status, date range and employee,
// then searches, sorts and paginates the result.
func (s *Service) List(ctx context.Context, q domain.ListQuery) (store.Page, error) {
	if q.Status != nil && !q.Status.Valid() {
		return store.Page{}, apperr.ErrInvalid
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return store.Page{}, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	list, err := s.repo.List(ctx, q)
	if err != nil {
		return store.Page{}, err
	}
	return store.New(list).Query(q)
}

// Get returns a delivery with its order and employee.
func (s *Service) Get(ctx context.Context, id int64) (*domain.DeliveryDetails, error) {
	if id <= 0 {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if d, ok := s.cache.Get(ctx, id); ok {
		return d, nil
	}
	d, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, d)
	return d, nil
}

// UpdateStatus moves a delivery to status. Reaching delivered stamps the actual time.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.Status) (domain.Delivery, error) {
	if id <= 0 || !status.Valid() {
		return domain.Delivery{}, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		prev domain.Status
		out  domain.Delivery
	)
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		cur, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		next, err := cur.WithStatus(status, now)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, &next); err != nil {
			return err
		}
		if err := tx.InsertStatusChange(ctx, id, cur.Status, next.Status, now); err != nil {
			return err
		}
		prev, out = cur.Status, next
		return nil
	})
	if err != nil {
		s.recordRejection(err, id)
		return domain.Delivery{}, err
	}

	s.cache.Invalidate(ctx, id, out.UpdatedAt)
	s.metrics.StatusChanged(string(out.Status))
	s.logger.Info("delivery status changed",
		logx.String("event", "delivery_status_changed"),
		logx.Int64("delivery_id", id),
		logx.String("from", string(prev)),
		logx.String("to", string(out.Status)),
	)
	return out, nil
}

// UpdateTime changes the estimated or actual delivery time. The audit entry
// and any notification intent are stored in the same transaction; the intent
// is then published.
func (s *Service) UpdateTime(ctx context.Context, id int64, u domain.TimeUpdate) (domain.Delivery, error) {
	if id <= 0 {
		return domain.Delivery{}, apperr.ErrInvalid
	}
	if u.Location == nil {
		u.Location = s.loc
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var res domain.TimeUpdateResult
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		cur, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		r, err := domain.ApplyTimeUpdate(*cur, u, now)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, &r.Delivery); err != nil {
			return err
		}
		if err := tx.InsertTimeChange(ctx, r.Change); err != nil {
			return err
		}
		if r.Delivery.Status != cur.Status {
			if err := tx.InsertStatusChange(ctx, id, cur.Status, r.Delivery.Status, now); err != nil {
				return err
			}
		}
		if r.Intent != nil {
			if err := tx.InsertIntent(ctx, *r.Intent, now); err != nil {
				return err
			}
		}
		res = r
		return nil
	})
	if err != nil {
		s.recordRejection(err, id)
		return domain.Delivery{}, err
	}

	s.cache.Invalidate(ctx, id, res.Delivery.UpdatedAt)
	s.metrics.TimeUpdated(string(u.Field))
	s.logger.Info("delivery time updated",
		logx.String("event", "delivery_time_updated"),
		logx.Int64("delivery_id", id),
		logx.String("field", string(u.Field)),
		logx.Time("new_time", res.Change.NewTime),
		logx.String("reason", res.Change.Reason),
		logx.Bool("notify_customer", res.Intent != nil),
	)
	if res.Intent != nil {
		s.publish(ctx, *res.Intent)
	}
	return res.Delivery, nil
}

// CreateForOrder opens a pending delivery for an order.
// A second delivery for the same order yields apperr.ErrConflict.
func (s *Service) CreateForOrder(ctx context.Context, n domain.NewDelivery) (domain.Delivery, error) {
	d, err := n.Build(s.now())
	if err != nil {
		return domain.Delivery{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.repo.Create(ctx, &d, n.Order()); err != nil {
		return domain.Delivery{}, err
	}

	s.logger.Info("delivery created",
		logx.String("event", "delivery_created"),
		logx.Int64("delivery_id", d.ID),
		logx.String("order_id", d.OrderID),
	)
	return d, nil
}

// CancelForOrder cancels the delivery of an order. Cancelling twice is a no-op.
func (s *Service) CancelForOrder(ctx context.Context, orderID string) (domain.Delivery, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Delivery{}, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		out     domain.Delivery
		changed bool
	)
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		cur, err := tx.GetByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if cur.Status == domain.StatusCancelled {
			out = *cur
			return nil
		}
		now := s.now()
		next, err := cur.WithStatus(domain.StatusCancelled, now)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, &next); err != nil {
			return err
		}
		if err := tx.InsertStatusChange(ctx, next.ID, cur.Status, next.Status, now); err != nil {
			return err
		}
		out, changed = next, true
		return nil
	})
	if err != nil {
		return domain.Delivery{}, err
	}
	if !changed {
		return out, nil
	}

	s.cache.Invalidate(ctx, out.ID, out.UpdatedAt)
	s.metrics.StatusChanged(string(out.Status))
	s.logger.Info("delivery cancelled",
		logx.String("event", "delivery_status_changed"),
		logx.Int64("delivery_id", out.ID),
		logx.String("order_id", orderID),
		logx.String("to", string(out.Status)),
	)
	return out, nil
}

// SweepOverdue counts open deliveries past their estimated time.
func (s *Service) SweepOverdue(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.repo.CountOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.metrics.SetOverdue(n)
	if n > 0 {
		s.logger.Warn("overdue deliveries", logx.String("event", "delivery_overdue"), logx.Int64("count", n))
	}
	return n, nil
}

// RelayIntents publishes up to limit outbox intents that were not published
// when they were stored. It returns how many were published.
//
// Intents younger than the operation timeout are left alone: the update that
// stored them may still be publishing. A publish that outlives that window
// can still be repeated, so delivery is at least once per intent id.
func (s *Service) RelayIntents(ctx context.Context, limit int) (int, error) {
	if s.publisher == nil {
		return 0, nil
	}

	cutoff := s.now().Add(-s.operationTimeout)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pending, err := s.repo.PendingIntents(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}
	published := 0
	for _, in := range pending {
		if !s.publish(ctx, in) {
			break
		}
		published++
	}
	return published, nil
}

func (s *Service) publish(ctx context.Context, in domain.NotificationIntent) bool {
	if s.publisher == nil {
		return false
	}
	log := s.logger.With(
		logx.String("intent_id", in.ID),
		logx.Int64("delivery_id", in.DeliveryID),
		logx.String("channel", string(in.Channel)),
	)
	if err := s.publisher.Publish(ctx, in); err != nil {
		s.metrics.NotificationIntent(string(in.Channel), "failed")
		log.Warn("notification intent publish failed", logx.Err(err))
		return false
	}
	s.metrics.NotificationIntent(string(in.Channel), "published")
	if err := s.repo.MarkIntentPublished(ctx, in.ID, s.now()); err != nil {
		log.Warn("notification intent not marked published", logx.Err(err))
	}
	log.Info("notification intent published", logx.String("event", "notification_intent_published"))
	return true
}

func (s *Service) recordRejection(err error, id int64) {
	var ite *domain.InvalidTransitionError
	if errors.As(err, &ite) {
		s.metrics.InvalidTransition()
		s.logger.Info("delivery transition rejected",
			logx.Int64("delivery_id", id),
			logx.String("from", string(ite.Current)),
			logx.String("to", string(ite.Requested)),
		)
		return
	}
	if !errors.Is(err, apperr.ErrInvalid) && !errors.Is(err, apperr.ErrNotFound) {
		s.logger.Error("delivery update failed", logx.Int64("delivery_id", id), logx.Err(err))
	}
}

type noCache struct{}

func (noCache) Get(context.Context, int64) (*domain.DeliveryDetails, bool) { return nil, false }
func (noCache) Set(context.Context, *domain.DeliveryDetails)               {}
func (noCache) Invalidate(context.Context, int64, time.Time)               {}
