package domain

import (
	"errors"
	"fmt"
	"net"
)

// Sentinel errors
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidURL indicates an invalid URL was provided
	ErrInvalidURL = errors.New("invalid URL")

	// ErrUnsupportedHost indicates the repository host is not a known git forge
	ErrUnsupportedHost = errors.New("unsupported repository host")

	// ErrRateLimited indicates rate limiting was encountered
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("timeout")

	// ErrEmptyResponse indicates the upstream service returned no body
	ErrEmptyResponse = errors.New("empty response from server")

	// ErrInvalidResponse indicates the upstream service returned malformed JSON
	ErrInvalidResponse = errors.New("invalid JSON response")

	// ErrWriteFailed indicates writing the result artifact failed
	ErrWriteFailed = errors.New("write failed")
)

// FetchError represents an unexpected HTTP status from an upstream service
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// RetryableError indicates an error that can be retried
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError wraps err so IsRetryable reports true for it
func NewRetryableError(err error) *RetryableError {
	return &RetryableError{Err: err}
}

// IsRetryable checks if an error should be retried.
// Transport failures, 5xx and 429 responses are retried; malformed
// responses and other statuses are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return true
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode == 429 || fetchErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// CloneError represents a failure to clone the requested repository
type CloneError struct {
	URL string
	Ref string
	Err error
}

func (e *CloneError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("failed to clone %s at %s: %v", e.URL, e.Ref, e.Err)
	}
	return fmt.Sprintf("failed to clone %s: %v", e.URL, e.Err)
}

func (e *CloneError) Unwrap() error {
	return e.Err
}

// NewCloneError creates a new CloneError
func NewCloneError(url, ref string, err error) *CloneError {
	return &CloneError{
		URL: url,
		Ref: ref,
		Err: err,
	}
}

// IsClientError reports whether err was caused by the caller's input
// rather than by the service itself.
func IsClientError(err error) bool {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return true
	}

	var cloneErr *CloneError
	if errors.As(err, &cloneErr) {
		return true
	}

	return errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrUnsupportedHost)
}
