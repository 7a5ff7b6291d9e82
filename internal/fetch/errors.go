package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrTransient marks a fetch that kept failing transiently until the retry budget ran out.
	ErrTransient = errors.New("transient fetch failure")

	// ErrBodyTooLarge is returned when a tile body exceeds the configured maximum size.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrInvalidRequest is returned when a request cannot be built from the URL.
	ErrInvalidRequest = errors.New("invalid request")
)

// TransientError reports a fetch that exhausted its retries.
// It matches both ErrTransient and the last underlying cause with errors.Is.
type TransientError struct {
	// URL is the address that could not be fetched.
	URL string

	// Attempts is the number of requests issued, including the first one.
	Attempts int

	// StatusCode is the last HTTP status received, or 0 for transport errors.
	StatusCode int

	// Err is the last underlying cause.
	Err error
}

// Error implements error.
func (e *TransientError) Error() string {
	return fmt.Sprintf("%s after %d attempts: %s: %v", ErrTransient, e.Attempts, e.URL, e.Err)
}

// Unwrap returns ErrTransient and the last cause.
func (e *TransientError) Unwrap() []error {
	return []error{ErrTransient, e.Err}
}
