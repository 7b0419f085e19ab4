package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all backend implementations.
var (
	// ErrNotFound is returned when a requested key does not exist in the
	// local store.
	ErrNotFound = errors.New("key not found")

	// ErrCorruptValue is returned when a persisted value exists but cannot
	// be decoded. Callers decide whether to fail or start from an empty
	// aggregate; the store never silently discards data.
	ErrCorruptValue = errors.New("corrupt persisted value")
)

// IsNotFoundError checks if the error is a "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError carries key and operation context for a failed store call.
type StoreError struct {
	Key       string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Operation, e.Key, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with key and operation context.
func NewStoreError(operation, key string, err error) *StoreError {
	return &StoreError{Key: key, Operation: operation, Err: err}
}
