package store

import (
	"context"
	"fmt"
	"time"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/logx"
)

// Backend confirms delivery mutations against the system of record.
type Backend interface {
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (domain.Delivery, error)
	UpdateTime(ctx context.Context, id int64, u domain.TimeUpdate) (domain.Delivery, error)
}

// TxnState is the lifecycle of one optimistic update.
type TxnState string

// List of transaction states.
const (
	TxnPending   TxnState = "pending"
	TxnConfirmed TxnState = "confirmed"
	TxnFailed    TxnState = "failed"
)

// TxnKind names the mutation a transaction carries.
type TxnKind string

// List of transaction kinds.
const (
	TxnStatus TxnKind = "status"
	TxnTime   TxnKind = "time"
)

// Txn records one optimistic update and how it ended.
type Txn struct {
	ID         int
	DeliveryID int64
	Kind       TxnKind
	State      TxnState
	Before     domain.Delivery
	Applied    domain.Delivery
	Err        error
	StartedAt  time.Time
	EndedAt    time.Time
}

// Tracker applies updates to a Store optimistically and confirms them with
// the Backend. A rejected update restores the record it replaced.
type Tracker struct {
	store   *Store
	backend Backend
	logger  logx.Logger
	now     func() time.Time
	txns    []*Txn
}

// NewTracker returns a Tracker over s.
func NewTracker(s *Store, b Backend, logger logx.Logger) *Tracker {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Tracker{
		store:   s,
		backend: b,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Store returns the tracked store.
func (t *Tracker) Store() *Store { return t.store }

// ChangeStatus applies a status change locally, then confirms it.
func (t *Tracker) ChangeStatus(ctx context.Context, id int64, status domain.Status) (domain.Delivery, error) {
	before, ok := t.store.Get(id)
	if !ok {
		return domain.Delivery{}, apperr.ErrNotFound
	}
	applied, err := t.store.ApplyStatusChange(id, status)
	if err != nil {
		return domain.Delivery{}, err
	}
	txn := t.begin(TxnStatus, before, applied)
	confirmed, err := t.backend.UpdateStatus(ctx, id, status)
	return t.finish(txn, confirmed, err)
}

// ChangeTime applies a time update locally, then confirms it. The backend is
// responsible for dispatching any customer notification.
func (t *Tracker) ChangeTime(ctx context.Context, id int64, u domain.TimeUpdate) (domain.Delivery, error) {
	before, ok := t.store.Get(id)
	if !ok {
		return domain.Delivery{}, apperr.ErrNotFound
	}
	res, err := t.store.ApplyTimeUpdate(id, u)
	if err != nil {
		return domain.Delivery{}, err
	}
	txn := t.begin(TxnTime, before, res.Delivery)
	confirmed, err := t.backend.UpdateTime(ctx, id, u)
	return t.finish(txn, confirmed, err)
}

// Txns returns a snapshot of every transaction in start order.
func (t *Tracker) Txns() []Txn {
	out := make([]Txn, 0, len(t.txns))
	for _, tx := range t.txns {
		out = append(out, *tx)
	}
	return out
}

// Pending returns the transactions still awaiting the backend.
func (t *Tracker) Pending() []Txn {
	var out []Txn
	for _, tx := range t.txns {
		if tx.State == TxnPending {
			out = append(out, *tx)
		}
	}
	return out
}

func (t *Tracker) begin(kind TxnKind, before, applied domain.Delivery) *Txn {
	txn := &Txn{
		ID:         len(t.txns) + 1,
		DeliveryID: before.ID,
		Kind:       kind,
		State:      TxnPending,
		Before:     before,
		Applied:    applied,
		StartedAt:  t.now(),
	}
	t.txns = append(t.txns, txn)
	return txn
}

func (t *Tracker) finish(txn *Txn, confirmed domain.Delivery, err error) (domain.Delivery, error) {
	txn.EndedAt = t.now()
	if err != nil {
		t.store.Upsert(txn.Before)
		txn.State = TxnFailed
		txn.Err = err
		t.logger.Warn("delivery update rolled back",
			logx.String("event", "delivery_update_rolled_back"),
			logx.Int64("delivery_id", txn.DeliveryID),
			logx.String("kind", string(txn.Kind)),
			logx.Err(err),
		)
		return domain.Delivery{}, fmt.Errorf("%s update of delivery %d: %w", txn.Kind, txn.DeliveryID, err)
	}
	if confirmed.ID != txn.DeliveryID {
		confirmed = txn.Applied
	}
	t.store.Upsert(confirmed)
	txn.State = TxnConfirmed
	return confirmed.Clone(), nil
}
