package client

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/quantmind-br/gitingest-go/internal/domain"
)

// Retrier runs an operation until it succeeds, fails permanently or runs
// out of attempts. The delay starts at InitialInterval and doubles after
// every failed attempt.
type Retrier struct {
	maxAttempts     int
	initialInterval time.Duration
	newTimer        func() backoff.Timer
}

// RetrierOptions contains options for creating a Retrier
type RetrierOptions struct {
	MaxAttempts     int
	InitialInterval time.Duration
	// NewTimer overrides the timer used between attempts; nil sleeps for real
	NewTimer func() backoff.Timer
}

// NewRetrier creates a new Retrier with the given options
func NewRetrier(opts RetrierOptions) *Retrier {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxRetries
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = DefaultInitialDelay
	}
	return &Retrier{
		maxAttempts:     opts.MaxAttempts,
		initialInterval: opts.InitialInterval,
		newTimer:        opts.NewTimer,
	}
}

// newBackoff creates a deterministic doubling backoff
func (r *Retrier) newBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = MaxRetryDelay
	b.Multiplier = 2.0
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.maxAttempts-1)), ctx)
}

// Retry executes operation until it succeeds. Errors for which
// domain.IsRetryable is false stop the loop immediately. notify, when
// non-nil, is called with every failed attempt number (1-based) and error.
func (r *Retrier) Retry(ctx context.Context, operation func() error, notify func(attempt int, err error)) error {
	var timer backoff.Timer
	if r.newTimer != nil {
		timer = r.newTimer()
	}

	attempt := 0
	return backoff.RetryNotifyWithTimer(func() error {
		attempt++
		err := operation()
		if err == nil {
			return nil
		}

		if notify != nil {
			notify(attempt, err)
		}

		if !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}

		return err
	}, r.newBackoff(ctx), nil, timer)
}
