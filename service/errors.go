package service

import "errors"

// Errors returned by registry operations.
var (
	// ErrDuplicateService indicates a service name is already taken.
	ErrDuplicateService = errors.New("service already registered")

	// ErrNotInitialized indicates the service has not completed its
	// own initialization.
	ErrNotInitialized = errors.New("service not initialized")

	// ErrNilService indicates Register was called with a nil service.
	ErrNilService = errors.New("service is nil")

	// ErrUnnamedService indicates the service reports an empty name.
	ErrUnnamedService = errors.New("service has no name")
)
