package api

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the hackathon API client.
var (
	// ErrServerUnavailable is returned when the API server is not reachable.
	ErrServerUnavailable = errors.New("hackathon api unavailable")

	// ErrUnauthorized is returned when the bearer token is invalid, expired or missing.
	ErrUnauthorized = errors.New("unauthorized: invalid or expired session token")

	// ErrNotFound is returned when a requested resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrTimeout is returned when a request times out.
	ErrTimeout = errors.New("request timed out")

	// ErrDecode is returned when a 2xx response body cannot be parsed.
	ErrDecode = errors.New("malformed response body")

	// ErrNoToken is returned when an authenticated call is made without a token.
	ErrNoToken = errors.New("no session token")
)

// APIError wraps errors from the hackathon API with additional context.
type APIError struct {
	Operation  string // e.g. "team_profile", "send_chat"
	StatusCode int    // HTTP status code (0 if not an HTTP error)
	Message    string // server supplied error text, if any
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api: %s failed (HTTP %d): %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api: %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError.
func NewAPIError(operation string, statusCode int, err error) *APIError {
	return &APIError{
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsUnauthorized returns true if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsServerUnavailable returns true if the error indicates the server is unreachable.
func IsServerUnavailable(err error) bool {
	return errors.Is(err, ErrServerUnavailable)
}

// IsTimeout returns true if the error indicates a request timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// ServerMessage returns the error text the server attached to a failed
// response, or "" when there is none.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return strings.TrimSpace(apiErr.Message)
	}
	return ""
}

// statusError maps an HTTP status to a sentinel error.
func statusError(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status == 408 || status == 504:
		return ErrTimeout
	case status >= 500:
		return ErrServerUnavailable
	default:
		return fmt.Errorf("unexpected status %d", status)
	}
}
