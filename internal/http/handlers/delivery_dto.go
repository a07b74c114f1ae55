package handlers

import (
	"time"

	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/store"
)

type deliveryDTO struct {
	ID                    int64      `json:"id"`
	OrderID               string     `json:"orderId"`
	EmployeeID            *int64     `json:"employeeId"`
	Status                string     `json:"status"`
	DeliveryAddress       string     `json:"deliveryAddress"`
	PhoneNumber           string     `json:"phoneNumber"`
	CustomerNote          string     `json:"customerNote"`
	EstimatedDeliveryTime *time.Time `json:"estimatedDeliveryTime"`
	ActualDeliveryTime    *time.Time `json:"actualDeliveryTime"`
	PickupFromKitchenTime *time.Time `json:"pickupFromKitchenTime"`
	DeliveryFee           int64      `json:"deliveryFee"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

type orderDTO struct {
	ID           string `json:"id"`
	CustomerName string `json:"customerName"`
	Total        int64  `json:"total"`
}

type employeeDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type deliveryDetailsDTO struct {
	deliveryDTO
	Order    *orderDTO    `json:"order"`
	Employee *employeeDTO `json:"employee"`
}

type deliveryPageDTO struct {
	Items      []deliveryDTO `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending preparing out_for_delivery delivered cancelled"`
}

type updateTimeRequest struct {
	TimeType            string `json:"timeType" validate:"required,oneof=estimated actual"`
	NewTime             string `json:"newTime" validate:"required"`
	Reason              string `json:"reason" validate:"max=500"`
	NotifyCustomer      bool   `json:"notifyCustomer"`
	NotificationMessage string `json:"notificationMessage" validate:"max=500"`
	EmployeeID          *int64 `json:"employeeId" validate:"omitempty,gt=0"`
}

func (r updateTimeRequest) toModel() domain.TimeUpdate {
	return domain.TimeUpdate{
		Field:               domain.TimeField(r.TimeType),
		NewTime:             r.NewTime,
		Reason:              r.Reason,
		NotifyCustomer:      r.NotifyCustomer,
		NotificationMessage: r.NotificationMessage,
		EmployeeID:          r.EmployeeID,
	}
}

func deliveryToResponse(d domain.Delivery) deliveryDTO {
	return deliveryDTO{
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
	}
}

func detailsToResponse(d *domain.DeliveryDetails) deliveryDetailsDTO {
	out := deliveryDetailsDTO{deliveryDTO: deliveryToResponse(d.Delivery)}
	if d.Order != nil {
		out.Order = &orderDTO{ID: d.Order.ID, CustomerName: d.Order.CustomerName, Total: d.Order.Total}
	}
	if d.Employee != nil {
		out.Employee = &employeeDTO{ID: d.Employee.ID, Name: d.Employee.Name, Phone: d.Employee.Phone}
	}
	return out
}

func pageToResponse(p store.Page) deliveryPageDTO {
	items := make([]deliveryDTO, 0, len(p.Items))
	for _, d := range p.Items {
		items = append(items, deliveryToResponse(d))
	}
	return deliveryPageDTO{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}
