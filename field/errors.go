package field

import (
	"errors"
	"fmt"
)

// Errors returned by field operations.
var (
	// ErrInvalidValue indicates a value violates a field's constraints.
	ErrInvalidValue = errors.New("invalid field value")

	// ErrDecode indicates a stored value could not be decoded.
	ErrDecode = errors.New("cannot decode stored value")
)

// InvalidValueError describes a constraint violation for a field.
type InvalidValueError struct {
	// Field is the field name (empty if the field is not yet bound).
	Field string
	// Value is the offending value.
	Value any
	// Reason describes the violated constraint.
	Reason string
}

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid field value %v: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid value %v for field %q: %s", e.Value, e.Field, e.Reason)
}

// Unwrap returns the sentinel the error wraps.
func (e *InvalidValueError) Unwrap() error {
	return ErrInvalidValue
}

// DecodeError describes a failure to decode a stored value.
type DecodeError struct {
	// Field is the field name.
	Field string
	// Stored is the stored form that failed to decode.
	Stored any
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding field %q from %v: %v", e.Field, e.Stored, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrDecode
}
