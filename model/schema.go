// Package model provides the observable model at the heart of
// fieldstone.
//
// A Schema aggregates field descriptors for one kind of model and is
// introspectable without an instance, so persistence and configuration
// UI code can discover a model's shape up front. A Model is one
// instance of a schema: a validated value store with change
// notification and dirty tracking.
package model

import (
	"fmt"

	"github.com/dmaier/fieldstone/field"
)

// Schema is an ordered collection of field descriptors for one model
// kind. Schemas are immutable after creation (with the documented
// exception of a field's choices) and shared by every instance.
type Schema struct {
	name   string
	fields map[string]*field.Field
	order  []string
}

// New creates a schema from the given fields. Field declaration order
// is preserved. Returns an error if a field has no name or a name is
// declared twice.
func New(name string, fields ...field.Field) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: make(map[string]*field.Field, len(fields)),
	}

	for _, f := range fields {
		if err := s.add(f); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// MustNew creates a schema and panics on error. Useful for declaring
// schemas at package init time.
func MustNew(name string, fields ...field.Field) *Schema {
	s, err := New(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Extend creates a new schema that inherits every field of base.
// A field with the same name as a base field replaces it in place,
// preserving the base's declaration order; new names are appended.
func Extend(base *Schema, name string, fields ...field.Field) (*Schema, error) {
	s := &Schema{
		name:   name,
		fields: make(map[string]*field.Field, len(base.fields)+len(fields)),
		order:  make([]string, len(base.order)),
	}

	copy(s.order, base.order)
	for fname, f := range base.fields {
		s.fields[fname] = f
	}

	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: in schema %q", ErrUnnamedField, name)
		}
		if _, exists := s.fields[f.Name]; exists {
			// Override keeps the ancestor's position.
			fc := f
			s.fields[f.Name] = &fc
			continue
		}
		if err := s.add(f); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// MustExtend extends a schema and panics on error.
func MustExtend(base *Schema, name string, fields ...field.Field) *Schema {
	s, err := Extend(base, name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// add copies a field to the heap and binds it under its name.
func (s *Schema) add(f field.Field) error {
	if f.Name == "" {
		return fmt.Errorf("%w: in schema %q", ErrUnnamedField, s.name)
	}
	if _, exists := s.fields[f.Name]; exists {
		return fmt.Errorf("%w: %s", ErrFieldAlreadyDeclared, f.Name)
	}

	fc := f // Copy to heap; the schema's copy is authoritative.
	s.fields[f.Name] = &fc
	s.order = append(s.order, f.Name)
	return nil
}

// Name returns the schema name, used as the `_type` marker in
// serialized snapshots.
func (s *Schema) Name() string {
	return s.name
}

// Field returns the descriptor for the given name, or nil if the
// schema does not declare it.
func (s *Schema) Field(name string) *field.Field {
	return s.fields[name]
}

// Has checks whether the schema declares a field.
func (s *Schema) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Fields returns all descriptors in declaration order.
func (s *Schema) Fields() []*field.Field {
	result := make([]*field.Field, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.fields[name])
	}
	return result
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	result := make([]string, len(s.order))
	copy(result, s.order)
	return result
}

// Scoped returns the descriptors carrying the given scope flag, in
// declaration order.
func (s *Schema) Scoped(scope field.Scope) []*field.Field {
	var result []*field.Field
	for _, name := range s.order {
		if f := s.fields[name]; f.Scope.Has(scope) {
			result = append(result, f)
		}
	}
	return result
}

// Len returns the number of declared fields.
func (s *Schema) Len() int {
	return len(s.order)
}

// Instantiate creates a new model instance of this schema. The
// instance starts clean, with every field at its declared default.
func (s *Schema) Instantiate() *Model {
	return &Model{
		schema: s,
		values: make(map[string]any, len(s.order)),
	}
}
