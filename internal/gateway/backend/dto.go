package backend

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

func (d deliveryDTO) toDomain() domain.Delivery {
	return domain.Delivery{
		ID:                    d.ID,
		OrderID:               d.OrderID,
		EmployeeID:            d.EmployeeID,
		Status:                domain.Status(d.Status),
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

type detailsDTO struct {
	deliveryDTO
	Order *struct {
		ID           string `json:"id"`
		CustomerName string `json:"customerName"`
		Total        int64  `json:"total"`
	} `json:"order"`
	Employee *struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"employee"`
}

func (d detailsDTO) toDomain() domain.DeliveryDetails {
	out := domain.DeliveryDetails{Delivery: d.deliveryDTO.toDomain()}
	if d.Order != nil {
		out.Order = &domain.OrderSummary{ID: d.Order.ID, CustomerName: d.Order.CustomerName, Total: d.Order.Total}
	}
	if d.Employee != nil {
		out.Employee = &domain.EmployeeSummary{ID: d.Employee.ID, Name: d.Employee.Name, Phone: d.Employee.Phone}
	}
	return out
}

type pageDTO struct {
	Items      []deliveryDTO `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}

func (p pageDTO) toPage() store.Page {
	items := make([]domain.Delivery, 0, len(p.Items))
	for _, d := range p.Items {
		items = append(items, d.toDomain())
	}
	return store.Page{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

type timeRequest struct {
	TimeType            string `json:"timeType"`
	NewTime             string `json:"newTime"`
	Reason              string `json:"reason,omitempty"`
	NotifyCustomer      bool   `json:"notifyCustomer"`
	NotificationMessage string `json:"notificationMessage,omitempty"`
	EmployeeID          *int64 `json:"employeeId,omitempty"`
}

func timeRequestFrom(u domain.TimeUpdate) timeRequest {
	return timeRequest{
		TimeType:            string(u.Field),
		NewTime:             u.NewTime,
		Reason:              u.Reason,
		NotifyCustomer:      u.NotifyCustomer,
		NotificationMessage: u.NotificationMessage,
		EmployeeID:          u.EmployeeID,
	}
}
