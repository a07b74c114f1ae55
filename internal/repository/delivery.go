package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/ports/deliverytx"
)

const deliveryColumns = `
    d.id, d.order_id, d.employee_id, d.status, d.delivery_address, d.phone_number,
    d.customer_note, d.estimated_delivery_time, d.actual_delivery_time,
    d.pickup_from_kitchen_time, d.delivery_fee, d.created_at, d.updated_at`

// DeliveryRepo represents delivery repository.
type DeliveryRepo struct {
	db *pgxpool.Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *DeliveryRepo) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// List returns deliveries matching the status, date range and employee
// filters of q, oldest first. Search, sort and paging are left to the caller.
func (r *DeliveryRepo) List(ctx context.Context, q domain.ListQuery) ([]domain.Delivery, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if q.Status != nil {
		add("d.status = $%d", string(*q.Status))
	}
	if q.From != nil {
		add("d.created_at >= $%d", *q.From)
	}
	if q.To != nil {
		add("d.created_at <= $%d", *q.To)
	}
	if q.EmployeeID != nil {
		add("d.employee_id = $%d", *q.EmployeeID)
	}

	sql := `SELECT ` + deliveryColumns + ` FROM deliveries d`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY d.created_at, d.id"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Delivery, 0)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetDetails returns a delivery with its order summary and assigned employee.
func (r *DeliveryRepo) GetDetails(ctx context.Context, id int64) (*domain.DeliveryDetails, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+deliveryColumns+`,
               d.customer_name, d.order_total,
               e.id, e.name, e.phone
        FROM deliveries d
        LEFT JOIN employees e ON e.id = d.employee_id
        WHERE d.id = $1
    `, id)

	var (
		det       domain.DeliveryDetails
		order     domain.OrderSummary
		empID     *int64
		empName   *string
		empPhone  *string
		scanInto  = deliveryScanTargets(&det.Delivery)
		extraScan = []any{&order.CustomerName, &order.Total, &empID, &empName, &empPhone}
	)
	if err := row.Scan(append(scanInto, extraScan...)...); err != nil {
		if IsNotFound(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get delivery %d: %w", id, err)
	}
	order.ID = det.OrderID
	det.Order = &order
	if empID != nil {
		det.Employee = &domain.EmployeeSummary{ID: *empID, Name: deref(empName), Phone: deref(empPhone)}
	}
	return &det, nil
}

// Create inserts a new delivery and sets its ID. A second delivery for the
// same order yields apperr.ErrConflict.
func (r *DeliveryRepo) Create(ctx context.Context, d *domain.Delivery, order domain.OrderSummary) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO deliveries (
            order_id, employee_id, status, delivery_address, phone_number, customer_note,
            customer_name, order_total, estimated_delivery_time, actual_delivery_time,
            pickup_from_kitchen_time, delivery_fee, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id
    `, d.OrderID, d.EmployeeID, string(d.Status), d.DeliveryAddress, d.PhoneNumber, d.CustomerNote,
		order.CustomerName, order.Total, d.EstimatedDeliveryTime, d.ActualDeliveryTime,
		d.PickupFromKitchenTime, d.DeliveryFee, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("insert delivery for order %q: %w", d.OrderID, err)
	}
	return nil
}

// CountOverdue counts open deliveries whose estimated time is before now.
func (r *DeliveryRepo) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM deliveries
        WHERE status IN ($1, $2, $3)
          AND estimated_delivery_time IS NOT NULL
          AND estimated_delivery_time < $4
    `, string(domain.StatusPending), string(domain.StatusPreparing), string(domain.StatusOutForDelivery), now).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count overdue deliveries: %w", err)
	}
	return n, nil
}

// MarkIntentPublished stamps an outbox row as handed to the notification collaborator.
func (r *DeliveryRepo) MarkIntentPublished(ctx context.Context, id string, at time.Time) error {
	if _, err := r.db.Exec(ctx, `UPDATE notification_outbox SET published_at = $2 WHERE id = $1`, id, at); err != nil {
		return fmt.Errorf("mark intent %s published: %w", id, err)
	}
	return nil
}

// PendingIntents returns up to limit unpublished outbox intents stored before
// the given time, oldest first.
func (r *DeliveryRepo) PendingIntents(ctx context.Context, before time.Time, limit int) ([]domain.NotificationIntent, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, delivery_id, message, channel
        FROM notification_outbox
        WHERE published_at IS NULL AND created_at < $1
        ORDER BY created_at, id
        LIMIT $2
    `, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending intents: %w", err)
	}
	defer rows.Close()

	var out []domain.NotificationIntent
	for rows.Next() {
		var in domain.NotificationIntent
		if err := rows.Scan(&in.ID, &in.DeliveryID, &in.Message, &in.Channel); err != nil {
			return nil, fmt.Errorf("scan intent: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// GetForUpdate locks and returns the delivery with id.
func (r *TxRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Delivery, error) {
	return r.getOne(ctx, `SELECT `+deliveryColumns+` FROM deliveries d WHERE d.id = $1 FOR UPDATE`, id)
}

// GetByOrderIDForUpdate locks and returns the delivery of an order.
func (r *TxRepo) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.Delivery, error) {
	return r.getOne(ctx, `SELECT `+deliveryColumns+` FROM deliveries d WHERE d.order_id = $1 FOR UPDATE`, orderID)
}

func (r *TxRepo) getOne(ctx context.Context, sql string, arg any) (*domain.Delivery, error) {
	d, err := scanDelivery(r.tx.QueryRow(ctx, sql, arg))
	if err != nil {
		if IsNotFound(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get delivery %v: %w", arg, err)
	}
	return &d, nil
}

// Update writes the mutable fields of d.
func (r *TxRepo) Update(ctx context.Context, d *domain.Delivery) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE deliveries
        SET employee_id              = $2,
            status                   = $3,
            estimated_delivery_time  = $4,
            actual_delivery_time     = $5,
            pickup_from_kitchen_time = $6,
            updated_at               = $7
        WHERE id = $1
    `, d.ID, d.EmployeeID, string(d.Status), d.EstimatedDeliveryTime, d.ActualDeliveryTime,
		d.PickupFromKitchenTime, d.UpdatedAt)
	if err != nil {
		if IsForeignKey(err) {
			return apperr.ErrInvalid
		}
		return fmt.Errorf("update delivery %d: %w", d.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// InsertStatusChange appends a row to the status history.
func (r *TxRepo) InsertStatusChange(ctx context.Context, deliveryID int64, from, to domain.Status, at time.Time) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO delivery_status_history (delivery_id, from_status, to_status, changed_at)
        VALUES ($1, $2, $3, $4)
    `, deliveryID, string(from), string(to), at)
	if err != nil {
		return fmt.Errorf("insert status change for delivery %d: %w", deliveryID, err)
	}
	return nil
}

// InsertTimeChange appends a row to the time change audit trail.
func (r *TxRepo) InsertTimeChange(ctx context.Context, c domain.TimeChange) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO delivery_time_changes (delivery_id, field, old_time, new_time, reason, changed_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, c.DeliveryID, string(c.Field), c.OldTime, c.NewTime, c.Reason, c.ChangedAt)
	if err != nil {
		return fmt.Errorf("insert time change for delivery %d: %w", c.DeliveryID, err)
	}
	return nil
}

// InsertIntent stores a notification intent in the outbox.
func (r *TxRepo) InsertIntent(ctx context.Context, in domain.NotificationIntent, at time.Time) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO notification_outbox (id, delivery_id, message, channel, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, in.ID, in.DeliveryID, in.Message, string(in.Channel), at)
	if err != nil {
		return fmt.Errorf("insert notification intent for delivery %d: %w", in.DeliveryID, err)
	}
	return nil
}

func deliveryScanTargets(d *domain.Delivery) []any {
	return []any{
		&d.ID, &d.OrderID, &d.EmployeeID, &d.Status, &d.DeliveryAddress, &d.PhoneNumber,
		&d.CustomerNote, &d.EstimatedDeliveryTime, &d.ActualDeliveryTime,
		&d.PickupFromKitchenTime, &d.DeliveryFee, &d.CreatedAt, &d.UpdatedAt,
	}
}

func scanDelivery(row pgx.Row) (domain.Delivery, error) {
	var d domain.Delivery
	if err := row.Scan(deliveryScanTargets(&d)...); err != nil {
		return domain.Delivery{}, err
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ deliverytx.Repository = (*TxRepo)(nil)
