package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrMissingCredential = errors.New("no authentication token found")
	ErrSessionExpired    = errors.New("session expired")
	ErrRequestFailed     = errors.New("request failed")
)

// RequestError is a non-2xx answer other than a session-expiring 401.
// It matches ErrRequestFailed with errors.Is.
type RequestError struct {
	Op     string
	Status int
	// Message is the backend's explanation, if the body carried one.
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed with status %d", e.Op, e.Status)
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}
