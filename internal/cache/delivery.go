// Package cache keeps recently read delivery details in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/logx"
)

// Both keys of a delivery share a hash tag so the scripts stay in one slot.
const (
	detailsKeyFmt = "delivery:{%d}:details"
	versionKeyFmt = "delivery:{%d}:version"
)

// setScript stores the details unless an update newer than them was recorded.
var setScript = redis.NewScript(`
local v = redis.call('GET', KEYS[2])
if v and tonumber(v) > tonumber(ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// invalidateScript drops the details and raises the version fence.
var invalidateScript = redis.NewScript(`
redis.call('DEL', KEYS[1])
local v = redis.call('GET', KEYS[2])
if not v or tonumber(v) < tonumber(ARGV[1]) then
	redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
end
return 1
`)

// DeliveryCache is a best-effort read cache; failures are logged and reported as misses.
type DeliveryCache struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger logx.Logger
}

// NewDeliveryCache returns a cache over rdb with entries expiring after ttl.
func NewDeliveryCache(rdb redis.UniversalClient, ttl time.Duration, logger logx.Logger) *DeliveryCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DeliveryCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached details for id.
func (c *DeliveryCache) Get(ctx context.Context, id int64) (*domain.DeliveryDetails, bool) {
	raw, err := c.rdb.Get(ctx, detailsKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("delivery cache get failed", logx.Int64("delivery_id", id), logx.Err(err))
		}
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.Warn("delivery cache entry corrupt", logx.Int64("delivery_id", id), logx.Err(err))
		return nil, false
	}
	return e.toDomain(), true
}

// Set stores d until the ttl expires. It is skipped when d was read before
// the last invalidation of the same delivery.
func (c *DeliveryCache) Set(ctx context.Context, d *domain.DeliveryDetails) {
	raw, err := json.Marshal(fromDomain(d))
	if err != nil {
		c.logger.Warn("delivery cache encode failed", logx.Int64("delivery_id", d.ID), logx.Err(err))
		return
	}
	stored, err := setScript.Run(ctx, c.rdb,
		[]string{detailsKey(d.ID), versionKey(d.ID)},
		raw, version(d.UpdatedAt), c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		c.logger.Warn("delivery cache set failed", logx.Int64("delivery_id", d.ID), logx.Err(err))
		return
	}
	if stored == 0 {
		c.logger.Debug("delivery cache fill skipped: stale read", logx.Int64("delivery_id", d.ID))
	}
}

// Invalidate drops the entry for id. Fills carrying an UpdatedAt older than
// updatedAt are refused until the ttl expires.
func (c *DeliveryCache) Invalidate(ctx context.Context, id int64, updatedAt time.Time) {
	err := invalidateScript.Run(ctx, c.rdb,
		[]string{detailsKey(id), versionKey(id)},
		version(updatedAt), c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		c.logger.Warn("delivery cache invalidate failed", logx.Int64("delivery_id", id), logx.Err(err))
	}
}

// Nop is a cache that never holds anything.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, int64) (*domain.DeliveryDetails, bool) { return nil, false }

// Set does nothing.
func (Nop) Set(context.Context, *domain.DeliveryDetails) {}

// Invalidate does nothing.
func (Nop) Invalidate(context.Context, int64, time.Time) {}

func detailsKey(id int64) string { return fmt.Sprintf(detailsKeyFmt, id) }

func versionKey(id int64) string { return fmt.Sprintf(versionKeyFmt, id) }

// version matches the microsecond precision timestamps are stored with.
func version(t time.Time) int64 { return t.UnixMicro() }

type entry struct {
	ID                    int64      `json:"id"`
	OrderID               string     `json:"order_id"`
	EmployeeID            *int64     `json:"employee_id"`
	Status                string     `json:"status"`
	DeliveryAddress       string     `json:"delivery_address"`
	PhoneNumber           string     `json:"phone_number"`
	CustomerNote          string     `json:"customer_note"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time"`
	ActualDeliveryTime    *time.Time `json:"actual_delivery_time"`
	PickupFromKitchenTime *time.Time `json:"pickup_from_kitchen_time"`
	DeliveryFee           int64      `json:"delivery_fee"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`

	Order    *domain.OrderSummary    `json:"order,omitempty"`
	Employee *domain.EmployeeSummary `json:"employee,omitempty"`
}

func fromDomain(d *domain.DeliveryDetails) entry {
	return entry{
		ID:                    d.ID,
		OrderID:               d.OrderID,
		EmployeeID:            d.EmployeeID,
		Status:                string(d.Status),
		DeliveryAddress:       d.DeliveryAddress,
		PhoneNumber:           d.PhoneNumber,
		CustomerNote:          d.CustomerNote,
		EstimatedDeliveryTime: d.EstimatedDeliveryTime,
		ActualDeliveryTime:    d.ActualDeliveryTime,
		PickupFromKitchenTime: d.PickupFromKitchenTime,
		DeliveryFee:           d.DeliveryFee,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
		Order:                 d.Order,
		Employee:              d.Employee,
	}
}

func (e entry) toDomain() *domain.DeliveryDetails {
	return &domain.DeliveryDetails{
		Delivery: domain.Delivery{
			ID:                    e.ID,
			OrderID:               e.OrderID,
			EmployeeID:            e.EmployeeID,
			Status:                domain.Status(e.Status),
			DeliveryAddress:       e.DeliveryAddress,
			PhoneNumber:           e.PhoneNumber,
			CustomerNote:          e.CustomerNote,
			EstimatedDeliveryTime: e.EstimatedDeliveryTime,
			ActualDeliveryTime:    e.ActualDeliveryTime,
			PickupFromKitchenTime: e.PickupFromKitchenTime,
			DeliveryFee:           e.DeliveryFee,
			CreatedAt:             e.CreatedAt,
			UpdatedAt:             e.UpdatedAt,
		},
		Order:    e.Order,
		Employee: e.Employee,
	}
}
