// Package services provides external service integrations for the advertising, call tracking, CRM and chat platforms
package services

import (
	"errors"
	"fmt"
)

// Upstream error taxonomy. Transport failures and 5xx responses are
// retryable; throttling is retryable with backoff; delivery failures are
// logged by callers and never abort a batch.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	ErrDelivery            = errors.New("notification delivery failed")
)

// UpstreamError wraps a failed call to an external platform with enough
// context to replay it manually.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: http status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// newUpstreamError classifies an HTTP status into the retryable taxonomy.
func newUpstreamError(service string, statusCode int) *UpstreamError {
	kind := ErrUpstreamUnavailable
	if statusCode == 429 {
		kind = ErrUpstreamRateLimited
	}
	return &UpstreamError{
		Service:    service,
		StatusCode: statusCode,
		Err:        kind,
	}
}

// transportError wraps a network-level failure as an unavailable upstream.
func transportError(service string, err error) *UpstreamError {
	return &UpstreamError{
		Service: service,
		Err:     fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err),
	}
}

// IsRetryable reports whether the error is a transient upstream condition
// that a caller may retry with backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrUpstreamRateLimited)
}
