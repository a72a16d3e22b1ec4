package appliance

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProperty is returned for a characteristic the accessory does not expose.
	ErrUnknownProperty = errors.New("unknown characteristic")

	// ErrReadOnly is returned when a controller writes a read-only characteristic.
	ErrReadOnly = errors.New("characteristic is read-only")

	// ErrEmptyName is returned by New when no display name is supplied.
	ErrEmptyName = errors.New("appliance name must not be empty")

	// ErrInvalidStatus is returned when a status sensor reports a state outside the enum.
	ErrInvalidStatus = errors.New("status sensor returned an unknown state")
)

// InvalidValueError reports a SET whose value lies outside the declared
// domain of the characteristic.
type InvalidValueError struct {
	Property string
	Value    any
	Want     string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %v (%T) for %s: want %s", e.Value, e.Value, e.Property, e.Want)
}

// IsInvalidValue reports whether err is, or wraps, an *InvalidValueError.
func IsInvalidValue(err error) bool {
	var ive *InvalidValueError
	return errors.As(err, &ive)
}
