package model

import (
	"fmt"
	"reflect"
)

// snapshotVersion is embedded in ToMap output as `_version`.
const snapshotVersion = 1

// Reserved snapshot keys.
const (
	keyVersion = "_version"
	keyType    = "_type"
)

// Change describes one accepted write, delivered synchronously to
// every attached observer before the triggering Set returns.
type Change struct {
	// Field is the name of the changed field. For model-level Notify
	// calls this may name a derived property that is not a declared
	// field.
	Field string

	// OldValue is the value immediately prior to the write. Nil for
	// model-level Notify calls.
	OldValue any

	// NewValue is the accepted value.
	NewValue any

	// Model is the instance the change occurred on.
	Model *Model

	// Source identifies where the change came from ("set", "load",
	// "model").
	Source string
}

// Observer receives change notifications from a model. Observers are
// invoked synchronously, in attachment order, on the goroutine
// performing the write.
type Observer interface {
	Update(change Change)
}

// Model is one instance of a schema: a value store whose writes are
// validated, change-detected, observed, and dirty-tracked.
//
// A model is owned by a single goroutine (typically the UI event
// loop); it is not safe for concurrent mutation. An observer callback
// may itself write to the model; such re-entrant writes re-run the
// full validate/compare/store/notify sequence and it is the caller's
// responsibility not to build unbounded notification cycles.
type Model struct {
	schema    *Schema
	values    map[string]any
	observers []Observer
	dirty     bool
}

// Schema returns the schema this instance was created from.
func (m *Model) Schema() *Schema {
	return m.schema
}

// Get returns the current value of a field, or the field's default if
// it has never been written. Returns ErrFieldNotDeclared for unknown
// names.
func (m *Model) Get(name string) (any, error) {
	f := m.schema.Field(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotDeclared, name)
	}
	if v, ok := m.values[name]; ok {
		return v, nil
	}
	return f.Default, nil
}

// Set writes a value to a field. The write is validated first and
// aborted on failure with the value unchanged. Writing the current
// value is a no-op: no notification fires and the dirty flag is
// untouched. An accepted write stores the value, notifies every
// attached observer in attachment order, and marks the model dirty.
func (m *Model) Set(name string, value any) error {
	return m.set(name, value, "set")
}

func (m *Model) set(name string, value any, source string) error {
	f := m.schema.Field(name)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrFieldNotDeclared, name)
	}

	if err := f.Validate(value); err != nil {
		return err
	}

	old, _ := m.Get(name)
	if reflect.DeepEqual(old, value) {
		return nil
	}

	m.values[name] = value
	m.notifyAll(Change{
		Field:    name,
		OldValue: old,
		NewValue: value,
		Model:    m,
		Source:   source,
	})
	m.dirty = true
	return nil
}

// Attach registers an observer for every field on this model. The
// call is idempotent: attaching the same observer twice has no
// additional effect. A nil observer is rejected at attach time.
func (m *Model) Attach(o Observer) error {
	if o == nil {
		return ErrNilObserver
	}
	for _, existing := range m.observers {
		if sameObserver(existing, o) {
			return nil
		}
	}
	m.observers = append(m.observers, o)
	return nil
}

// Detach removes an observer. Idempotent; detaching an observer that
// was never attached is a no-op.
func (m *Model) Detach(o Observer) {
	for i, existing := range m.observers {
		if sameObserver(existing, o) {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// sameObserver reports whether two observers are the same attachment
// identity. Observers of uncomparable dynamic types (funcs, slices)
// are never identical; such observers cannot be deduplicated or
// detached individually, only cleared via Cleanup.
func sameObserver(a, b Observer) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Observers returns the number of attached observers.
func (m *Model) Observers() int {
	return len(m.observers)
}

// Notify delivers a model-level notification for a property that is
// not itself a declared field (e.g., a composite derived status). The
// same observer set receives it; the model's values and dirty flag
// are untouched.
func (m *Model) Notify(name string, value any) {
	m.notifyAll(Change{
		Field:    name,
		NewValue: value,
		Model:    m,
		Source:   "model",
	})
}

// notifyAll delivers a change to a snapshot of the observer list, so
// observers detached during delivery still receive this change and
// observers attached during delivery do not.
func (m *Model) notifyAll(change Change) {
	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	for _, o := range observers {
		o.Update(change)
	}
}

// Validate reports whether every field's current value passes that
// field's constraints. Returns the first violation encountered, in
// declaration order.
func (m *Model) Validate() error {
	for _, f := range m.schema.Fields() {
		v, err := m.Get(f.Name)
		if err != nil {
			return err
		}
		if err := f.Validate(v); err != nil {
			return err
		}
	}
	return nil
}

// IsDirty reports whether the model has unsaved changes.
func (m *Model) IsDirty() bool {
	return m.dirty
}

// MarkDirty flags the model as having unsaved changes.
func (m *Model) MarkDirty() {
	m.dirty = true
}

// ClearDirty resets the dirty flag. Called by the owner after a
// successful persist.
func (m *Model) ClearDirty() {
	m.dirty = false
}

// Cleanup detaches every observer. After cleanup the instance is
// inert: values may still be read and written, but no notification
// can reach any observer.
func (m *Model) Cleanup() {
	m.observers = nil
}

// ToMap produces a full-state snapshot of every declared field,
// unfiltered by scope, with `_version` and `_type` markers. Values
// are encoded through each field's codec.
func (m *Model) ToMap() (map[string]any, error) {
	result := make(map[string]any, m.schema.Len()+2)
	result[keyVersion] = snapshotVersion
	result[keyType] = m.schema.Name()

	for _, f := range m.schema.Fields() {
		v, err := m.Get(f.Name)
		if err != nil {
			return nil, err
		}
		stored, err := f.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("encoding field %q: %w", f.Name, err)
		}
		result[f.Name] = stored
	}

	return result, nil
}

// FromMap constructs a new instance of the schema and assigns every
// key in data that matches a declared field, through the normal
// validated setter path so invariants hold on load. The `_version`
// and `_type` markers and unknown keys are skipped.
func (s *Schema) FromMap(data map[string]any) (*Model, error) {
	m := s.Instantiate()

	// Apply in declaration order for deterministic notification order
	// once observers are attached to the result.
	for _, f := range s.Fields() {
		stored, ok := data[f.Name]
		if !ok {
			continue
		}
		v, err := f.Decode(stored)
		if err != nil {
			return nil, &decodeFieldError{field: f.Name, err: err}
		}
		if err := m.set(f.Name, v, "load"); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// decodeFieldError wraps a codec failure during FromMap.
type decodeFieldError struct {
	field string
	err   error
}

func (e *decodeFieldError) Error() string {
	return fmt.Sprintf("decoding field %q: %v", e.field, e.err)
}

func (e *decodeFieldError) Unwrap() error {
	return e.err
}
