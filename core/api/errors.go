package api

import (
	"errors"
	"fmt"
)

// NetworkError wraps a transport-level failure: connection refused, timeout,
// cancelled context. The write it interrupted must be rolled back and is
// never retried automatically.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a 4xx/5xx rejection from the backend, carrying the best
// available message for the operator.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server rejected request (%d)", e.Status)
}

// IsNetwork reports whether err is (or wraps) a transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServer reports whether err is (or wraps) a backend rejection.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
