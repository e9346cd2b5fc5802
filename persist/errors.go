package persist

import (
	"errors"
	"fmt"
)

// Errors returned by persistence operations.
var (
	// ErrDuplicateGroup indicates a group id was registered twice.
	ErrDuplicateGroup = errors.New("group already registered")

	// ErrGroupNotRegistered indicates the group id is unknown to the
	// manager.
	ErrGroupNotRegistered = errors.New("group not registered")

	// ErrEmptyGroup indicates an empty group id.
	ErrEmptyGroup = errors.New("group id is empty")

	// ErrReservedGroup indicates the group id collides with a reserved
	// document key.
	ErrReservedGroup = errors.New("group id is reserved")
)

// ParseError represents a malformed store document. Managers never
// surface it to callers; they log it and degrade to an empty
// document so the application starts with field defaults.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Err is the underlying decode error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing store %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
