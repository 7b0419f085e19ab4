package remote

import (
	"errors"
	"fmt"
)

// ErrNoRemote is returned when no remote base URL is configured. It is not
// a NetworkError: the sync queue treats it as an ordinary failure and keeps
// the action for a later configuration change.
var ErrNoRemote = errors.New("no remote configured")

// NetworkError wraps any transport-level failure of a remote call:
// connection refused, DNS failure, timeout, or a 5xx response. The sync
// queue's retry policy consumes this type; anything else is handed to the
// caller unchanged.
type NetworkError struct {
	Op  string // the remote operation, e.g. "save_progress"
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
