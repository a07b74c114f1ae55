// Package store holds an in-memory set of deliveries and the list operations
// the back-office views run over it. A Store is owned by one caller and is not
// safe for concurrent use.
package store

import (
	"time"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/domain"
)

// Store is an ordered, in-memory delivery set.
type Store struct {
	items []domain.Delivery
	index map[int64]int
	now   func() time.Time
}

// New returns a Store holding copies of list in the given order.
// Later duplicates of an id replace the earlier record in place.
func New(list []domain.Delivery) *Store {
	s := &Store{
		items: make([]domain.Delivery, 0, len(list)),
		index: make(map[int64]int, len(list)),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, d := range list {
		s.Upsert(d)
	}
	return s
}

// WithClock replaces the clock used to stamp mutations.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Len returns the number of held deliveries.
func (s *Store) Len() int { return len(s.items) }

// All returns every delivery in insertion order.
func (s *Store) All() []domain.Delivery {
	return s.Filter(nil)
}

// Get returns the delivery with id.
func (s *Store) Get(id int64) (domain.Delivery, bool) {
	i, ok := s.index[id]
	if !ok {
		return domain.Delivery{}, false
	}
	return s.items[i].Clone(), true
}

// Filter returns the deliveries matching pred in insertion order.
// A nil predicate matches everything.
func (s *Store) Filter(pred Predicate) []domain.Delivery {
	out := make([]domain.Delivery, 0, len(s.items))
	for _, d := range s.items {
		if pred == nil || pred(d) {
			out = append(out, d.Clone())
		}
	}
	return out
}

// SortBy returns every delivery sorted by field.
func (s *Store) SortBy(field string, order domain.SortOrder) ([]domain.Delivery, error) {
	return SortBy(s.All(), field, order)
}

// Query filters, searches, sorts and paginates the held set.
func (s *Store) Query(q domain.ListQuery) (Page, error) {
	field, order := q.SortField, q.SortOrder
	if field == "" {
		field = DefaultSortField
	}
	if order == "" {
		order = domain.SortDesc
	}
	sorted, err := SortBy(s.Filter(FromQuery(q)), field, order)
	if err != nil {
		return Page{}, err
	}
	return Paginate(sorted, q.Page, q.PageSize), nil
}

// Upsert inserts d or replaces the record with the same id, keeping its position.
func (s *Store) Upsert(d domain.Delivery) {
	if i, ok := s.index[d.ID]; ok {
		s.items[i] = d.Clone()
		return
	}
	s.index[d.ID] = len(s.items)
	s.items = append(s.items, d.Clone())
}

// ApplyStatusChange validates and applies a status change to the held record.
// The record is left untouched when the transition is rejected.
func (s *Store) ApplyStatusChange(id int64, status domain.Status) (domain.Delivery, error) {
	i, ok := s.index[id]
	if !ok {
		return domain.Delivery{}, apperr.ErrNotFound
	}
	next, err := s.items[i].WithStatus(status, s.now())
	if err != nil {
		return domain.Delivery{}, err
	}
	s.items[i] = next
	return next.Clone(), nil
}

// ApplyTimeUpdate applies a time update to the held record.
// The record is left untouched when the update is rejected.
func (s *Store) ApplyTimeUpdate(id int64, u domain.TimeUpdate) (domain.TimeUpdateResult, error) {
	i, ok := s.index[id]
	if !ok {
		return domain.TimeUpdateResult{}, apperr.ErrNotFound
	}
	res, err := domain.ApplyTimeUpdate(s.items[i], u, s.now())
	if err != nil {
		return domain.TimeUpdateResult{}, err
	}
	s.items[i] = res.Delivery.Clone()
	return res, nil
}
