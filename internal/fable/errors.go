package fable

import (
	"errors"
	"fmt"
	"time"
)

// AuthError is returned for 401/403. It is never retried and aborts the whole run.
type AuthError struct {
	Path       string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("fable: authentication failed for %s: HTTP %d (refresh FABLE_AUTH_TOKEN)", e.Path, e.StatusCode)
}

// RateLimitError is returned for 429.
type RateLimitError struct {
	Path       string
	StatusCode int
	RetryAfter time.Duration // zero when the server did not say
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("fable: rate limited on %s: HTTP %d", e.Path, e.StatusCode)
}

// UpstreamError covers 5xx, unexpected statuses and unparseable bodies.
type UpstreamError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fable: upstream error on %s: %s", e.Path, e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("fable: upstream error on %s: HTTP %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("fable: upstream error on %s: HTTP %d: %s", e.Path, e.StatusCode, e.Message)
}

// TransportError wraps timeouts, resets and other failures below HTTP.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fable: request to %s failed: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PaginationExhaustedError means the page cap was reached while the endpoint
// still reported more data. Records yielded before it remain valid.
type PaginationExhaustedError struct {
	Path    string
	Pages   int
	Records int
}

func (e *PaginationExhaustedError) Error() string {
	return fmt.Sprintf("fable: stopped paginating %s after %d pages (%d records); results are partial", e.Path, e.Pages, e.Records)
}

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsRetryable reports whether err is transient: transport failures and rate limits.
func IsRetryable(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	var rateErr *RateLimitError
	return errors.As(err, &rateErr)
}

// IsNotFound reports whether err is an UpstreamError with status 404.
func IsNotFound(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr) && upstreamErr.StatusCode == 404
}
