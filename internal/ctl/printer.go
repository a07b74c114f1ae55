package ctl

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/store"
)

type printer struct {
	w    io.Writer
	json bool
}

type deliveryView struct {
	ID                    int64      `json:"id"`
	OrderID               string     `json:"orderId"`
	EmployeeID            *int64     `json:"employeeId"`
	Status                string     `json:"status"`
	DeliveryAddress       string     `json:"deliveryAddress"`
	PhoneNumber           string     `json:"phoneNumber"`
	CustomerNote          string     `json:"customerNote"`
	EstimatedDeliveryTime *time.Time `json:"estimatedDeliveryTime"`
	ActualDeliveryTime    *time.Time `json:"actualDeliveryTime"`
	DeliveryFee           int64      `json:"deliveryFee"`
	CreatedAt             time.Time  `json:"createdAt"`
}

type orderView struct {
	ID           string `json:"id"`
	CustomerName string `json:"customerName"`
	Total        int64  `json:"total"`
}

type employeeView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type detailsView struct {
	deliveryView
	Order    *orderView    `json:"order"`
	Employee *employeeView `json:"employee"`
}

func viewOf(d domain.Delivery) deliveryView {
	return deliveryView{
		ID:                    d.ID,
		OrderID:               d.OrderID,
		EmployeeID:            d.EmployeeID,
		Status:                string(d.Status),
		DeliveryAddress:       d.DeliveryAddress,
		PhoneNumber:           d.PhoneNumber,
		CustomerNote:          d.CustomerNote,
		EstimatedDeliveryTime: d.EstimatedDeliveryTime,
		ActualDeliveryTime:    d.ActualDeliveryTime,
		DeliveryFee:           d.DeliveryFee,
		CreatedAt:             d.CreatedAt,
	}
}

func (p printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p printer) page(pg store.Page) error {
	if p.json {
		items := make([]deliveryView, 0, len(pg.Items))
		for _, d := range pg.Items {
			items = append(items, viewOf(d))
		}
		return p.encode(map[string]any{
			"items":      items,
			"page":       pg.Page,
			"pageSize":   pg.PageSize,
			"total":      pg.Total,
			"totalPages": pg.TotalPages,
		})
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tORDER\tSTATUS\tADDRESS\tESTIMATED\tACTUAL\tFEE")
	for _, d := range pg.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.OrderID, d.Status, d.DeliveryAddress,
			formatTime(d.EstimatedDeliveryTime), formatTime(d.ActualDeliveryTime), formatFee(d.DeliveryFee))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "page %d/%d, %d total\n", pg.Page, pg.TotalPages, pg.Total)
	return err
}

func (p printer) delivery(d domain.Delivery) error {
	if p.json {
		return p.encode(viewOf(d))
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 1, ' ', 0)
	writeDelivery(tw, d)
	return tw.Flush()
}

func (p printer) details(d *domain.DeliveryDetails) error {
	if p.json {
		out := detailsView{deliveryView: viewOf(d.Delivery)}
		if d.Order != nil {
			out.Order = &orderView{ID: d.Order.ID, CustomerName: d.Order.CustomerName, Total: d.Order.Total}
		}
		if d.Employee != nil {
			out.Employee = &employeeView{ID: d.Employee.ID, Name: d.Employee.Name, Phone: d.Employee.Phone}
		}
		return p.encode(out)
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 1, ' ', 0)
	writeDelivery(tw, d.Delivery)
	if d.Order != nil {
		fmt.Fprintf(tw, "customer:\t%s\n", d.Order.CustomerName)
		fmt.Fprintf(tw, "order total:\t%s\n", formatFee(d.Order.Total))
	}
	if d.Employee != nil {
		fmt.Fprintf(tw, "driver:\t%s (%s)\n", d.Employee.Name, d.Employee.Phone)
	}
	return tw.Flush()
}

func writeDelivery(w io.Writer, d domain.Delivery) {
	fmt.Fprintf(w, "id:\t%d\n", d.ID)
	fmt.Fprintf(w, "order:\t%s\n", d.OrderID)
	fmt.Fprintf(w, "status:\t%s\n", d.Status)
	fmt.Fprintf(w, "address:\t%s\n", d.DeliveryAddress)
	if d.PhoneNumber != "" {
		fmt.Fprintf(w, "phone:\t%s\n", d.PhoneNumber)
	}
	if d.CustomerNote != "" {
		fmt.Fprintf(w, "note:\t%s\n", d.CustomerNote)
	}
	fmt.Fprintf(w, "estimated:\t%s\n", formatTime(d.EstimatedDeliveryTime))
	fmt.Fprintf(w, "actual:\t%s\n", formatTime(d.ActualDeliveryTime))
	fmt.Fprintf(w, "fee:\t%s\n", formatFee(d.DeliveryFee))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// formatFee renders minor units with two decimals.
func formatFee(minor int64) string {
	sign := ""
	if minor < 0 {
		sign, minor = "-", -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
