package domain

import (
	"fmt"

	"cafe-delivery-service/internal/apperr"
)

// InvalidTransitionError reports a status change the lifecycle does not allow.
type InvalidTransitionError struct {
	Current   Status
	Requested Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.Current, e.Requested)
}

// Unwrap lets errors.Is match apperr.ErrConflict.
func (e *InvalidTransitionError) Unwrap() error { return apperr.ErrConflict }

// InvalidTimeError reports an unparsable or out-of-range delivery time.
type InvalidTimeError struct {
	Value  string
	Reason string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Value, e.Reason)
}

// Unwrap lets errors.Is match apperr.ErrInvalid.
func (e *InvalidTimeError) Unwrap() error { return apperr.ErrInvalid }
