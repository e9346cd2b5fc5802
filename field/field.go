// Package field defines the declarative attribute descriptor used by
// fieldstone models.
//
// A Field describes one typed, named, constrained attribute: its default
// value, documentation, persistence scope, numeric bounds, allowed
// choices, and an optional on-disk codec. Fields are declared once and
// shared by every instance of the owning model schema; validation runs
// on every write, not only at construction.
package field

import (
	"fmt"
	"math"
	"time"
)

// Field describes one model attribute.
type Field struct {
	// Name is the attribute identifier. It is assigned when the field
	// is bound into a schema and is immutable afterwards.
	Name string

	// Type is the field's data type.
	Type Type

	// Default is the value an instance reports before any write.
	Default any

	// Description is human-readable documentation.
	Description string

	// Scope tags the field for persistence and UI binding.
	Scope Scope

	// Minimum for numeric types (nil means no minimum).
	Minimum *float64

	// Maximum for numeric types (nil means no maximum).
	Maximum *float64

	// Choices lists the legal values when non-empty. The slice may be
	// replaced after schema creation via SetChoices to support
	// dynamically discovered enumerations (e.g., installed themes).
	Choices []any

	// UIType is a presentation hint, opaque to the core.
	UIType string

	// Extra is an open extension bag for callers.
	Extra map[string]any

	// Codec converts between the in-memory value and its storable
	// form. Nil means the value is stored as-is.
	Codec Codec
}

// SetChoices replaces the field's allowed values. Intended for
// enumerations that are only known at runtime; the field's identity
// and name are unaffected.
func (f *Field) SetChoices(choices []any) {
	f.Choices = choices
}

// Validate checks whether a value is legal for this field.
// It returns an *InvalidValueError wrapping ErrInvalidValue on failure.
func (f *Field) Validate(value any) error {
	if err := f.validateType(value); err != nil {
		return err
	}

	if len(f.Choices) > 0 && !containsValue(f.Choices, value) {
		return &InvalidValueError{
			Field:  f.Name,
			Value:  value,
			Reason: fmt.Sprintf("must be one of %v", f.Choices),
		}
	}

	if f.Type == TypeInt || f.Type == TypeFloat {
		if err := f.validateRange(value); err != nil {
			return err
		}
	}

	return nil
}

// Encode converts a value to its storable form using the field's codec.
func (f *Field) Encode(value any) (any, error) {
	if f.Codec == nil {
		return value, nil
	}
	return f.Codec.Encode(value)
}

// Decode converts a storable form back to the in-memory value. For
// codec-less fields the stored form is coerced toward the field type,
// since JSON and TOML decoders hand back float64 for every number and
// []any for every list.
func (f *Field) Decode(stored any) (any, error) {
	if f.Codec != nil {
		return f.Codec.Decode(stored)
	}
	return f.coerce(stored), nil
}

// coerce nudges decoder-shaped values toward the field's declared
// type so the validated setter and change detection see canonical
// forms. Values that cannot be coerced are returned unchanged and
// left to Validate.
func (f *Field) coerce(v any) any {
	switch f.Type {
	case TypeInt:
		switch n := v.(type) {
		case float64:
			if n == math.Trunc(n) {
				return int(n)
			}
		case float32:
			if float64(n) == math.Trunc(float64(n)) {
				return int(n)
			}
		case int64:
			return int(n)
		}
	case TypeFloat:
		switch n := v.(type) {
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case float32:
			return float64(n)
		}
	case TypeList:
		if items, ok := v.([]any); ok {
			strs := make([]string, len(items))
			for i, item := range items {
				s, isStr := item.(string)
				if !isStr {
					return v
				}
				strs[i] = s
			}
			return strs
		}
	}
	return v
}

// validateType checks that the value matches the field's declared type.
func (f *Field) validateType(value any) error {
	switch f.Type {
	case TypeString:
		if _, ok := value.(string); !ok {
			return f.typeError("string", value)
		}
	case TypeInt:
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			// Valid
		default:
			return f.typeError("integer", value)
		}
	case TypeFloat:
		switch value.(type) {
		case float32, float64, int, int64:
			// Valid (integers are acceptable for float)
		default:
			return f.typeError("number", value)
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return f.typeError("boolean", value)
		}
	case TypeList:
		switch value.(type) {
		case []any, []string, []int, []int64, []float64:
			// Valid
		default:
			return f.typeError("list", value)
		}
	case TypeMap:
		if _, ok := value.(map[string]any); !ok {
			return f.typeError("map", value)
		}
	case TypeTime:
		if _, ok := value.(time.Time); !ok {
			return f.typeError("time", value)
		}
	case TypeEnum:
		// Membership is enforced by the choices check.
	}
	return nil
}

// validateRange checks a numeric value against the inclusive bounds.
func (f *Field) validateRange(value any) error {
	var v float64
	switch n := value.(type) {
	case int:
		v = float64(n)
	case int8:
		v = float64(n)
	case int16:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint:
		v = float64(n)
	case uint8:
		v = float64(n)
	case uint16:
		v = float64(n)
	case uint32:
		v = float64(n)
	case uint64:
		v = float64(n)
	case float32:
		v = float64(n)
	case float64:
		v = n
	default:
		return nil // Non-numeric, skip range check
	}

	if f.Minimum != nil && v < *f.Minimum {
		return &InvalidValueError{
			Field:  f.Name,
			Value:  value,
			Reason: fmt.Sprintf("less than minimum %v", *f.Minimum),
		}
	}
	if f.Maximum != nil && v > *f.Maximum {
		return &InvalidValueError{
			Field:  f.Name,
			Value:  value,
			Reason: fmt.Sprintf("greater than maximum %v", *f.Maximum),
		}
	}
	return nil
}

func (f *Field) typeError(expected string, value any) error {
	return &InvalidValueError{
		Field:  f.Name,
		Value:  value,
		Reason: fmt.Sprintf("expected %s, got %T", expected, value),
	}
}

// containsValue checks if a slice contains a value.
func containsValue(slice []any, value any) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}

// MinValue creates a pointer to a float64 for use as Minimum.
func MinValue(v float64) *float64 {
	return &v
}

// MaxValue creates a pointer to a float64 for use as Maximum.
func MaxValue(v float64) *float64 {
	return &v
}

// Type represents the data type of a field.
type Type uint8

const (
	// TypeString represents a string value.
	TypeString Type = iota
	// TypeInt represents an integer value.
	TypeInt
	// TypeFloat represents a floating-point value.
	TypeFloat
	// TypeBool represents a boolean value.
	TypeBool
	// TypeList represents a list value.
	TypeList
	// TypeMap represents a map/object value.
	TypeMap
	// TypeTime represents a timestamp.
	TypeTime
	// TypeEnum represents a value from a fixed set of choices.
	TypeEnum
)

// String returns the string representation of the type.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "integer"
	case TypeFloat:
		return "number"
	case TypeBool:
		return "boolean"
	case TypeList:
		return "list"
	case TypeMap:
		return "map"
	case TypeTime:
		return "time"
	case TypeEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Scope tags a field for persistence and UI binding. The flags are
// independent and combinable: a field may belong to the settings
// document, the workspace document, both, or neither.
type Scope uint8

const (
	// ScopeSetting marks a field persisted in the global settings
	// document, surviving across all sessions.
	ScopeSetting Scope = 1 << iota
	// ScopeWorkspace marks a field persisted in a workspace snapshot.
	ScopeWorkspace
	// ScopeBinding marks a field the UI should live-sync to.
	ScopeBinding

	// ScopeNone applies no tags.
	ScopeNone Scope = 0
)

// Has checks if the scope includes the given flag.
func (s Scope) Has(flag Scope) bool {
	return s&flag != 0
}

// String returns a string representation of the scope.
func (s Scope) String() string {
	if s == ScopeNone {
		return "none"
	}

	var tags []string
	if s.Has(ScopeSetting) {
		tags = append(tags, "setting")
	}
	if s.Has(ScopeWorkspace) {
		tags = append(tags, "workspace")
	}
	if s.Has(ScopeBinding) {
		tags = append(tags, "binding")
	}
	return fmt.Sprintf("%v", tags)
}
