package domain

import "strings"

// Status is the lifecycle stage of a delivery.
type Status string

// List of delivery statuses.
const (
	StatusPending        Status = "pending"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// forwardOrder is the declared total order of the non-cancelled statuses.
var forwardOrder = [...]Status{
	StatusPending, StatusPreparing, StatusOutForDelivery, StatusDelivered,
}

// transitions lists the statuses reachable from each status.
var transitions = map[Status][]Status{
	StatusPending:        {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:      nil,
	StatusCancelled:      nil,
}

// ParseStatus normalizes s and reports whether it names a known status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Valid checks if the Status is known.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Rank returns the position of s in the forward sequence.
// Cancelled has no position and returns -1.
func (s Status) Rank() int {
	for i, v := range forwardOrder {
		if s == v {
			return i
		}
	}
	return -1
}

// Next returns the statuses reachable from s.
func (s Status) Next() []Status {
	out := make([]Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

// CanTransition reports whether moving from s to to is allowed.
func (s Status) CanTransition(to Status) bool {
	for _, v := range transitions[s] {
		if v == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an *InvalidTransitionError unless current may move to requested.
func ValidateTransition(current, requested Status) error {
	if !current.CanTransition(requested) {
		return &InvalidTransitionError{Current: current, Requested: requested}
	}
	return nil
}

// Statuses returns all known statuses in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled}
}
