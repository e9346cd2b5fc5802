package model

import (
	"fmt"
	"time"
)

// Typed getters. Each returns the field's current value (or default)
// converted to the requested Go type, or ErrTypeMismatch when the
// stored value has another type.

// GetString returns a string field value.
func (m *Model) GetString(name string) (string, error) {
	v, err := m.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", typeError(name, "string", v)
	}
	return s, nil
}

// GetInt returns an integer field value.
func (m *Model) GetInt(name string) (int, error) {
	v, err := m.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, typeError(name, "integer", v)
	}
}

// GetFloat returns a floating-point field value.
func (m *Model) GetFloat(name string) (float64, error) {
	v, err := m.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, typeError(name, "number", v)
	}
}

// GetBool returns a boolean field value.
func (m *Model) GetBool(name string) (bool, error) {
	v, err := m.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, typeError(name, "boolean", v)
	}
	return b, nil
}

// GetStringSlice returns a list field value as a string slice.
func (m *Model) GetStringSlice(name string) ([]string, error) {
	v, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	switch items := v.(type) {
	case []string:
		return items, nil
	case []any:
		result := make([]string, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, typeError(name, "[]string", v)
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, typeError(name, "[]string", v)
	}
}

// GetTime returns a timestamp field value.
func (m *Model) GetTime(name string) (time.Time, error) {
	v, err := m.Get(name)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, typeError(name, "time", v)
	}
	return t, nil
}

func typeError(name, expected string, v any) error {
	return fmt.Errorf("%w: field %q expected %s, got %T", ErrTypeMismatch, name, expected, v)
}
