package store

import (
	"cmp"
	"slices"
	"time"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/domain"
)

// DefaultSortField is used when a query names no sort field.
const DefaultSortField = "created_at"

type compareFunc func(a, b domain.Delivery) int

var comparators = map[string]compareFunc{
	"id":               func(a, b domain.Delivery) int { return cmp.Compare(a.ID, b.ID) },
	"order_id":         func(a, b domain.Delivery) int { return cmp.Compare(a.OrderID, b.OrderID) },
	"status":           func(a, b domain.Delivery) int { return cmp.Compare(a.Status, b.Status) },
	"delivery_address": func(a, b domain.Delivery) int { return cmp.Compare(a.DeliveryAddress, b.DeliveryAddress) },
	"phone_number":     func(a, b domain.Delivery) int { return cmp.Compare(a.PhoneNumber, b.PhoneNumber) },
	"delivery_fee":     func(a, b domain.Delivery) int { return cmp.Compare(a.DeliveryFee, b.DeliveryFee) },
	"created_at":       func(a, b domain.Delivery) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updated_at":       func(a, b domain.Delivery) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	"estimated_delivery_time": func(a, b domain.Delivery) int {
		return compareTimes(a.EstimatedDeliveryTime, b.EstimatedDeliveryTime)
	},
	"actual_delivery_time": func(a, b domain.Delivery) int {
		return compareTimes(a.ActualDeliveryTime, b.ActualDeliveryTime)
	},
	"pickup_from_kitchen_time": func(a, b domain.Delivery) int {
		return compareTimes(a.PickupFromKitchenTime, b.PickupFromKitchenTime)
	},
}

// SortFields returns the names SortBy accepts.
func SortFields() []string {
	out := make([]string, 0, len(comparators))
	for k := range comparators {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// SortBy returns a sorted copy of list. The sort is stable: equal keys keep
// their order in list. Date fields compare chronologically, id and fee
// numerically and everything else lexicographically.
func SortBy(list []domain.Delivery, field string, order domain.SortOrder) ([]domain.Delivery, error) {
	less, ok := comparators[field]
	if !ok {
		return nil, apperr.ErrInvalid
	}
	if order != domain.SortAsc && order != domain.SortDesc {
		return nil, apperr.ErrInvalid
	}
	out := slices.Clone(list)
	if order == domain.SortDesc {
		slices.SortStableFunc(out, func(a, b domain.Delivery) int { return less(b, a) })
	} else {
		slices.SortStableFunc(out, less)
	}
	return out, nil
}

// compareTimes orders nil before any time.
func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}
