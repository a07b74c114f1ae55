package store

import (
	"strconv"
	"strings"
	"time"

	"cafe-delivery-service/internal/domain"
)

// Predicate selects deliveries.
type Predicate func(domain.Delivery) bool

// ByStatus matches deliveries in status st.
func ByStatus(st domain.Status) Predicate {
	return func(d domain.Delivery) bool { return d.Status == st }
}

// ByDateRange matches deliveries created within [from, to]. Nil bounds are open.
func ByDateRange(from, to *time.Time) Predicate {
	return func(d domain.Delivery) bool {
		if from != nil && d.CreatedAt.Before(*from) {
			return false
		}
		if to != nil && d.CreatedAt.After(*to) {
			return false
		}
		return true
	}
}

// ByEmployee matches deliveries assigned to the driver id.
func ByEmployee(id int64) Predicate {
	return func(d domain.Delivery) bool { return d.EmployeeID != nil && *d.EmployeeID == id }
}

// Matching is a case-insensitive substring search over the id, order id,
// address, phone number and customer note.
func Matching(term string) Predicate {
	needle := strings.ToLower(strings.TrimSpace(term))
	return func(d domain.Delivery) bool {
		if needle == "" {
			return true
		}
		for _, hay := range []string{
			strconv.FormatInt(d.ID, 10), d.OrderID, d.DeliveryAddress, d.PhoneNumber, d.CustomerNote,
		} {
			if strings.Contains(strings.ToLower(hay), needle) {
				return true
			}
		}
		return false
	}
}

// And matches when every non-nil predicate matches.
func And(preds ...Predicate) Predicate {
	return func(d domain.Delivery) bool {
		for _, p := range preds {
			if p != nil && !p(d) {
				return false
			}
		}
		return true
	}
}

// FromQuery builds the predicate for the filters and search term of q.
func FromQuery(q domain.ListQuery) Predicate {
	preds := []Predicate{ByDateRange(q.From, q.To), Matching(q.Search)}
	if q.Status != nil {
		preds = append(preds, ByStatus(*q.Status))
	}
	if q.EmployeeID != nil {
		preds = append(preds, ByEmployee(*q.EmployeeID))
	}
	return And(preds...)
}
