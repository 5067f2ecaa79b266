package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSentinelErrors verifies sentinel errors are defined
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrInvalidURL", ErrInvalidURL, "invalid URL"},
		{"ErrUnsupportedHost", ErrUnsupportedHost, "unsupported repository host"},
		{"ErrRateLimited", ErrRateLimited, "rate limited"},
		{"ErrTimeout", ErrTimeout, "timeout"},
		{"ErrEmptyResponse", ErrEmptyResponse, "empty response"},
		{"ErrInvalidResponse", ErrInvalidResponse, "invalid JSON"},
		{"ErrWriteFailed", ErrWriteFailed, "write failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.Contains(t, tt.err.Error(), tt.check)
		})
	}
}

func TestFetchError(t *testing.T) {
	err := NewFetchError("http://svc/api", 404, nil)
	assert.Equal(t, "HTTP 404", err.Error())

	wrapped := NewFetchError("http://svc/api", 502, errors.New("bad gateway"))
	assert.Equal(t, "HTTP 502: bad gateway", wrapped.Error())
	assert.Equal(t, "bad gateway", errors.Unwrap(wrapped).Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"retryable wrapper", NewRetryableError(errors.New("conn reset")), true},
		{"wrapped retryable", fmt.Errorf("attempt: %w", NewRetryableError(errors.New("x"))), true},
		{"status 500", NewFetchError("u", 500, nil), true},
		{"status 503", NewFetchError("u", 503, nil), true},
		{"status 429", NewFetchError("u", 429, nil), true},
		{"status 404", NewFetchError("u", 404, nil), false},
		{"status 400", NewFetchError("u", 400, nil), false},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"rate limited", ErrRateLimited, true},
		{"timeout", fmt.Errorf("wrap: %w", ErrTimeout), true},
		{"empty response", ErrEmptyResponse, false},
		{"invalid response", ErrInvalidResponse, false},
		{"context canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("pattern_type", "invalid pattern type: foo")
	assert.Equal(t, "validation error for pattern_type: invalid pattern type: foo", err.Error())
}

func TestCloneError(t *testing.T) {
	cause := errors.New("repository not found")

	err := NewCloneError("https://github.com/a/b", "", cause)
	assert.Equal(t, "failed to clone https://github.com/a/b: repository not found", err.Error())
	assert.ErrorIs(t, err, cause)

	withRef := NewCloneError("https://github.com/a/b", "dev", cause)
	assert.Contains(t, withRef.Error(), "at dev")
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(NewValidationError("url", "required")))
	assert.True(t, IsClientError(NewCloneError("u", "", errors.New("x"))))
	assert.True(t, IsClientError(fmt.Errorf("parse: %w", ErrInvalidURL)))
	assert.True(t, IsClientError(fmt.Errorf("parse: %w", ErrUnsupportedHost)))
	assert.False(t, IsClientError(errors.New("disk full")))
	assert.False(t, IsClientError(fmt.Errorf("%w: disk full", ErrWriteFailed)))
}
