package kafka

import "errors"

// PermanentError marks a message that fails the same way on every delivery.
// The consumer commits such messages instead of redelivering them.
type PermanentError struct {
	Reason string
	Err    error
}

func (e PermanentError) Error() string {
	switch {
	case e.Err == nil:
		return e.Reason
	case e.Reason == "":
		return e.Err.Error()
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err as a PermanentError. err may be nil.
func Permanent(reason string, err error) error {
	return PermanentError{Reason: reason, Err: err}
}

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var perm PermanentError
	return errors.As(err, &perm)
}
