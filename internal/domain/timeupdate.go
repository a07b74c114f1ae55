package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeField selects which delivery time a TimeUpdate changes.
type TimeField string

// List of updatable time fields.
const (
	TimeEstimated TimeField = "estimated"
	TimeActual    TimeField = "actual"
)

// Valid checks if the TimeField is known.
func (f TimeField) Valid() bool {
	return f == TimeEstimated || f == TimeActual
}

// TimeUpdate is a request to change the estimated or actual delivery time.
type TimeUpdate struct {
	Field               TimeField
	NewTime             string
	Reason              string
	NotifyCustomer      bool
	NotificationMessage string
	EmployeeID          *int64
	// Location reads a NewTime written without a zone; nil means UTC.
	Location *time.Location
}

// TimeChange is the audit record of an applied TimeUpdate.
type TimeChange struct {
	DeliveryID int64
	Field      TimeField
	OldTime    *time.Time
	NewTime    time.Time
	Reason     string
	ChangedAt  time.Time
}

// TimeUpdateResult is the outcome of ApplyTimeUpdate.
type TimeUpdateResult struct {
	Delivery Delivery
	Change   TimeChange
	Intent   *NotificationIntent
}

var timeLayouts = [...]string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTime accepts RFC3339 and the datetime-local forms used by browser inputs.
// Values without a zone are read as UTC.
func ParseTime(raw string) (time.Time, error) {
	return ParseTimeIn(raw, time.UTC)
}

// ParseTimeIn is ParseTime reading zoneless values in loc. The result is UTC.
func ParseTimeIn(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &InvalidTimeError{Value: raw, Reason: "empty"}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &InvalidTimeError{Value: raw, Reason: "unparsable"}
}

// ApplyTimeUpdate returns a copy of d with the requested time changed.
// Setting the actual time also moves the delivery to delivered; a cancelled
// delivery cannot receive an actual time.
func ApplyTimeUpdate(d Delivery, u TimeUpdate, now time.Time) (TimeUpdateResult, error) {
	if !u.Field.Valid() {
		return TimeUpdateResult{}, &InvalidTimeError{Value: string(u.Field), Reason: "unknown time field"}
	}
	t, err := ParseTimeIn(u.NewTime, u.Location)
	if err != nil {
		return TimeUpdateResult{}, err
	}
	if t.Before(d.CreatedAt) {
		return TimeUpdateResult{}, &InvalidTimeError{Value: u.NewTime, Reason: "precedes delivery creation"}
	}

	out := d.Clone()
	change := TimeChange{
		DeliveryID: d.ID,
		Field:      u.Field,
		NewTime:    t,
		Reason:     strings.TrimSpace(u.Reason),
		ChangedAt:  now,
	}

	switch u.Field {
	case TimeEstimated:
		change.OldTime = cloneTime(d.EstimatedDeliveryTime)
		out.EstimatedDeliveryTime = &t
	case TimeActual:
		if d.Status == StatusCancelled {
			return TimeUpdateResult{}, &InvalidTransitionError{Current: d.Status, Requested: StatusDelivered}
		}
		change.OldTime = cloneTime(d.ActualDeliveryTime)
		out.ActualDeliveryTime = &t
		out.Status = StatusDelivered
	}
	if u.EmployeeID != nil {
		out.EmployeeID = cloneInt64(u.EmployeeID)
	}
	out.UpdatedAt = now

	res := TimeUpdateResult{Delivery: out, Change: change}
	if u.NotifyCustomer {
		res.Intent = newTimeIntent(out, u, t)
	}
	return res, nil
}

func newTimeIntent(d Delivery, u TimeUpdate, t time.Time) *NotificationIntent {
	if u.Location != nil {
		t = t.In(u.Location)
	}
	msg := strings.TrimSpace(u.NotificationMessage)
	if msg == "" {
		switch u.Field {
		case TimeActual:
			msg = fmt.Sprintf("Your order %s was delivered at %s.", d.OrderID, t.Format("15:04"))
		default:
			msg = fmt.Sprintf("Your order %s is now expected at %s.", d.OrderID, t.Format("15:04"))
		}
	}
	return &NotificationIntent{
		ID:         uuid.NewString(),
		DeliveryID: d.ID,
		Message:    msg,
		Channel:    ChannelFor(d),
	}
}
