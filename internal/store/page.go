package store

import "cafe-delivery-service/internal/domain"

// Paging defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is one slice of a sorted listing.
type Page struct {
	Items      []domain.Delivery
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// Paginate cuts the 1-based page out of list. Out-of-range pages are empty.
func Paginate(list []domain.Delivery, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(list)
	p := Page{
		Items:      []domain.Delivery{},
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}
	// Compared before multiplying so a huge page cannot overflow start.
	if page > p.TotalPages {
		return p
	}
	start := (page - 1) * size
	end := min(start+size, total)
	p.Items = list[start:end]
	return p
}
