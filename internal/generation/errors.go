package generation

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a backend-missing resource. It is never retried.
var ErrNotFound = errors.New("document not found")

// ValidationError reports malformed input rejected before or by the backend.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "validation failed"
	}
	return "validation failed: " + e.Message
}

// TransportError reports a network-level failure reaching the backend.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "generation service unreachable: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError reports a non-404 HTTP failure from the backend.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generation service status %d", e.StatusCode)
	}
	return fmt.Sprintf("generation service status %d: %s", e.StatusCode, e.Message)
}

// RetryExhaustedError reports that all retry attempts for an operation failed.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// Retryable reports whether an error is worth retrying. A missing resource
// is final; every other failure may be transient.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNotFound)
}
