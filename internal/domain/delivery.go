package domain

import (
	"strings"
	"time"

	"cafe-delivery-service/internal/apperr"
)

// Delivery is one delivery assignment tied to one order.
type Delivery struct {
	ID                    int64
	OrderID               string
	EmployeeID            *int64
	Status                Status
	DeliveryAddress       string
	PhoneNumber           string
	CustomerNote          string
	EstimatedDeliveryTime *time.Time
	ActualDeliveryTime    *time.Time
	PickupFromKitchenTime *time.Time
	DeliveryFee           int64 // minor units
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Validate checks the record-level invariants.
func (d Delivery) Validate() error {
	if strings.TrimSpace(d.DeliveryAddress) == "" {
		return apperr.ErrInvalid
	}
	if d.DeliveryFee < 0 {
		return apperr.ErrInvalid
	}
	if !d.Status.Valid() {
		return apperr.ErrInvalid
	}
	if (d.ActualDeliveryTime != nil) != (d.Status == StatusDelivered) {
		return apperr.ErrInvalid
	}
	return nil
}

// Clone returns a deep copy so callers never share time or id pointers.
func (d Delivery) Clone() Delivery {
	out := d
	out.EmployeeID = cloneInt64(d.EmployeeID)
	out.EstimatedDeliveryTime = cloneTime(d.EstimatedDeliveryTime)
	out.ActualDeliveryTime = cloneTime(d.ActualDeliveryTime)
	out.PickupFromKitchenTime = cloneTime(d.PickupFromKitchenTime)
	return out
}

// WithStatus validates the transition and returns the updated copy.
// Reaching delivered stamps the actual delivery time with now.
func (d Delivery) WithStatus(next Status, now time.Time) (Delivery, error) {
	if err := ValidateTransition(d.Status, next); err != nil {
		return Delivery{}, err
	}
	out := d.Clone()
	out.Status = next
	out.UpdatedAt = now
	switch next {
	case StatusDelivered:
		if out.ActualDeliveryTime == nil {
			t := now
			out.ActualDeliveryTime = &t
		}
	case StatusOutForDelivery:
		if out.PickupFromKitchenTime == nil {
			t := now
			out.PickupFromKitchenTime = &t
		}
	}
	return out, nil
}

// NewDelivery carries the data needed to open a delivery for an order.
type NewDelivery struct {
	OrderID         string
	DeliveryAddress string
	PhoneNumber     string
	CustomerNote    string
	DeliveryFee     int64
	CustomerName    string
	OrderTotal      int64
}

// Order returns the order summary carried with the new delivery.
func (n NewDelivery) Order() OrderSummary {
	return OrderSummary{
		ID:           strings.TrimSpace(n.OrderID),
		CustomerName: strings.TrimSpace(n.CustomerName),
		Total:        n.OrderTotal,
	}
}

// Build validates the input and returns a pending delivery created at now.
func (n NewDelivery) Build(now time.Time) (Delivery, error) {
	d := Delivery{
		OrderID:         strings.TrimSpace(n.OrderID),
		Status:          StatusPending,
		DeliveryAddress: strings.TrimSpace(n.DeliveryAddress),
		PhoneNumber:     strings.TrimSpace(n.PhoneNumber),
		CustomerNote:    strings.TrimSpace(n.CustomerNote),
		DeliveryFee:     n.DeliveryFee,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if d.OrderID == "" {
		return Delivery{}, apperr.ErrInvalid
	}
	if err := d.Validate(); err != nil {
		return Delivery{}, err
	}
	return d, nil
}

// OrderSummary is the order data returned alongside a delivery.
type OrderSummary struct {
	ID           string
	CustomerName string
	Total        int64
}

// EmployeeSummary is the assigned driver returned alongside a delivery.
type EmployeeSummary struct {
	ID    int64
	Name  string
	Phone string
}

// DeliveryDetails is a delivery with its nested order and employee.
type DeliveryDetails struct {
	Delivery
	Order    *OrderSummary
	Employee *EmployeeSummary
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
