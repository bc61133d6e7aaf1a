package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique-name collision.
	ErrDuplicate = errors.New("duplicate name")
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence indicates an underlying store failure.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError wraps a store failure under ErrPersistence while
// keeping the driver error in the chain, so the edge maps it to a 500
// without string matching.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
