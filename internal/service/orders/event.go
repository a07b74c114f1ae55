package orders

import (
	"time"

	"cafe-delivery-service/internal/domain"
)

// Event is a single order event
type Event struct {
	OrderID         string
	Status          string
	CreatedAt       time.Time
	DeliveryAddress string
	PhoneNumber     string
	CustomerNote    string
	CustomerName    string
	DeliveryFee     int64
	OrderTotal      int64
}

// NewDelivery returns the delivery the event asks to open.
func (e Event) NewDelivery() domain.NewDelivery {
	return domain.NewDelivery{
		OrderID:         e.OrderID,
		DeliveryAddress: e.DeliveryAddress,
		PhoneNumber:     e.PhoneNumber,
		CustomerNote:    e.CustomerNote,
		DeliveryFee:     e.DeliveryFee,
		CustomerName:    e.CustomerName,
		OrderTotal:      e.OrderTotal,
	}
}
