package domain

import "time"

// SortOrder is the direction of a list sort.
type SortOrder string

// List of sort orders.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListQuery holds the filters, search term and paging of a delivery listing.
type ListQuery struct {
	Status     *Status
	From       *time.Time
	To         *time.Time
	EmployeeID *int64
	Search     string
	SortField  string
	SortOrder  SortOrder
	Page       int
	PageSize   int
}
