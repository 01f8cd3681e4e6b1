package filter

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched through errors.Is against the typed errors below.
var (
	ErrUnknownFilter       = errors.New("unknown filter")
	ErrInvalidValue        = errors.New("invalid filter value")
	ErrInvalidRegistration = errors.New("invalid filter registration")
)

// UnknownFilterError is returned when a request names a filter that is not in
// the registry. The whole chain fails; no partially narrowed result is returned.
type UnknownFilterError struct {
	Name string
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("unknown filter %q", e.Name)
}

func (e *UnknownFilterError) Is(target error) bool {
	return target == ErrUnknownFilter
}

// InvalidValueError is returned by a filter function that cannot use the value
// it was given. When the function leaves Filter empty the chain returns a copy
// with Filter set to the request name.
type InvalidValueError struct {
	Filter string
	Value  Value
	Reason string
	Err    error
}

// NewInvalidValueError creates an InvalidValueError for value. Err may be nil.
func NewInvalidValueError(value Value, reason string, err error) *InvalidValueError {
	return &InvalidValueError{Value: value, Reason: reason, Err: err}
}

func (e *InvalidValueError) Error() string {
	msg := fmt.Sprintf("invalid value %v", e.Value)
	if e.Filter != "" {
		msg = fmt.Sprintf("invalid value %v for filter %q", e.Value, e.Filter)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

// RegistrationError reports a rejected registry entry.
type RegistrationError struct {
	Name   string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register filter %q: %s", e.Name, e.Reason)
}

func (e *RegistrationError) Is(target error) bool {
	return target == ErrInvalidRegistration
}
