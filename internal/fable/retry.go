package fable

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

const (
	defaultMaxRetries    = 3
	defaultRetryDelay    = 1 * time.Second
	defaultMaxRetryDelay = 30 * time.Second
	retryBackoffFactor   = 2
)

// RetryPolicy bounds how transient failures are retried.
type RetryPolicy struct {
	MaxRetries int // retries after the first attempt; 0 means no retry
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy retries three times with 1s, 2s, 4s delays.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: defaultMaxRetries,
		BaseDelay:  defaultRetryDelay,
		MaxDelay:   defaultMaxRetryDelay,
	}
}

// Delay returns the backoff before retry number attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			break
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Retry calls fn until it succeeds, returns a non-retryable error, or the
// policy is exhausted. Only TransportError and RateLimitError are retried.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := policy.Delay(attempt)
			var rateErr *RateLimitError
			if errors.As(lastErr, &rateErr) && rateErr.RetryAfter > delay {
				delay = rateErr.RetryAfter
				if policy.MaxDelay > 0 && delay > policy.MaxDelay {
					delay = policy.MaxDelay
				}
			}
			log.Printf("Fable client: retrying in %v (attempt %d/%d): %v", delay, attempt, policy.MaxRetries, lastErr)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}
	}

	return zero, fmt.Errorf("max retries exceeded: %w", lastErr)
}
