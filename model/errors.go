package model

import "errors"

// Errors returned by schema and model operations.
var (
	// ErrFieldNotDeclared indicates the named field is not part of the
	// schema.
	ErrFieldNotDeclared = errors.New("field not declared")

	// ErrFieldAlreadyDeclared indicates a duplicate field name in a
	// schema declaration.
	ErrFieldAlreadyDeclared = errors.New("field already declared")

	// ErrUnnamedField indicates a field without a name was declared.
	ErrUnnamedField = errors.New("field has no name")

	// ErrNilObserver indicates Attach was called with a nil observer.
	ErrNilObserver = errors.New("observer is nil")

	// ErrTypeMismatch indicates a typed getter found a value of another
	// type.
	ErrTypeMismatch = errors.New("type mismatch")
)
