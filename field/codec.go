package field

import (
	"fmt"
	"time"
)

// Codec converts between a field's in-memory value and its storable
// form. The storable form must be representable in the persistence
// document (bool, number, string, list, or map). The zero codec is
// identity: primitives are stored as-is.
type Codec interface {
	// Encode converts an in-memory value to its storable form.
	Encode(value any) (any, error)

	// Decode converts a storable form back to the in-memory value.
	Decode(stored any) (any, error)
}

// TimeCodec stores time.Time values as RFC 3339 strings.
type TimeCodec struct{}

// Encode converts a time.Time to an RFC 3339 string.
func (TimeCodec) Encode(value any) (any, error) {
	t, ok := value.(time.Time)
	if !ok {
		return nil, fmt.Errorf("expected time.Time, got %T", value)
	}
	return t.Format(time.RFC3339Nano), nil
}

// Decode parses an RFC 3339 string back into a time.Time.
func (TimeCodec) Decode(stored any) (any, error) {
	s, ok := stored.(string)
	if !ok {
		// Some decoders hand back time.Time directly (TOML, YAML).
		if t, isTime := stored.(time.Time); isTime {
			return t, nil
		}
		return nil, fmt.Errorf("expected string, got %T", stored)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}
