package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound - a referenced guest or seat id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidStage - a lifecycle operation was attempted from a stage
	// that does not allow it.
	ErrInvalidStage = errors.New("operation not allowed in current stage")

	// ErrPhoneUnconfirmed - an unknown phone tried to self-register
	// without the explicit confirmation step.
	ErrPhoneUnconfirmed = errors.New("phone number not found, confirmation required before creating a record")
)

// ValidationError rejects a write before it happens, naming the field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CapacityError - a table cannot hold the requested party. When the
// shortfall is seen up front nothing has been mutated; when a seat is
// lost to a concurrent claim mid-assignment the guest keeps the seats
// already won (never more than declared) and the caller re-reads and
// retries.
type CapacityError struct {
	Area        string
	TableNumber int
	Requested   int
	Available   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("table %d in area %q has %d seats available, %d requested",
		e.TableNumber, e.Area, e.Available, e.Requested)
}

// IsCapacity reports whether err is (or wraps) a CapacityError.
func IsCapacity(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}
