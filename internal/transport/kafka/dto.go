package kafka

import (
	"strings"
	"time"

	"cafe-delivery-service/internal/service/orders"
)

// EventDTO is the wire form of an order event
type EventDTO struct {
	OrderID         string    `json:"order_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	DeliveryAddress string    `json:"delivery_address"`
	PhoneNumber     string    `json:"phone_number"`
	CustomerNote    string    `json:"customer_note"`
	CustomerName    string    `json:"customer_name"`
	DeliveryFee     int64     `json:"delivery_fee"`
	Total           int64     `json:"total"`
}

// ToDomain converts EventDTO to orders.Event
func ToDomain(dto EventDTO) orders.Event {
	return orders.Event{
		OrderID:         strings.TrimSpace(dto.OrderID),
		Status:          strings.TrimSpace(dto.Status),
		CreatedAt:       dto.CreatedAt,
		DeliveryAddress: strings.TrimSpace(dto.DeliveryAddress),
		PhoneNumber:     strings.TrimSpace(dto.PhoneNumber),
		CustomerNote:    strings.TrimSpace(dto.CustomerNote),
		CustomerName:    strings.TrimSpace(dto.CustomerName),
		DeliveryFee:     dto.DeliveryFee,
		OrderTotal:      dto.Total,
	}
}
