package clients

import (
	"errors"
	"fmt"
)

// FailedToVerifyMessage is what the user sees for any non-2xx response
const FailedToVerifyMessage = "Failed to verify claim"

// APIError represents a non-2xx answer from the verification service
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("verification service error (status %d): %s", e.StatusCode, e.Message)
}

// NewAPIError creates a new API error carrying the user-facing failure message
func NewAPIError(statusCode int) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    FailedToVerifyMessage,
	}
}

// TransportError represents a request that never produced a usable response:
// the service was unreachable, timed out, or answered with a malformed body.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Cause)
	}
	return e.Op
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewTransportError creates a new transport error
func NewTransportError(op string, cause error) *TransportError {
	return &TransportError{
		Op:    op,
		Cause: cause,
	}
}

// IsAPIError checks if an error came from a non-2xx response
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsTransportError checks if an error is a transport-level failure
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// UserMessage returns the single human-readable line shown for a failed
// verification. Status failures collapse to FailedToVerifyMessage; anything
// else carries its own description.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
