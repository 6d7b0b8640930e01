package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nitesh/trendpulse-api/internal/newsapi"
)

// DefaultRetryAfter is reported when the provider throttles without a hint.
const DefaultRetryAfter = "60"

// ErrUpstreamAuth means the provider rejected our API credential.
var ErrUpstreamAuth = errors.New("upstream authentication failed")

// RateLimitError means the provider throttled us.
type RateLimitError struct {
	RetryAfter string
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("upstream rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// Classify returns the error a client must see for an upstream failure, or nil
// when the failure should be masked with fallback content.
func Classify(err error) error {
	var uerr *newsapi.Error
	if !errors.As(err, &uerr) {
		return nil
	}
	switch uerr.StatusCode {
	case http.StatusTooManyRequests:
		retryAfter := uerr.RetryAfter
		if retryAfter == "" {
			retryAfter = DefaultRetryAfter
		}
		return &RateLimitError{RetryAfter: retryAfter, Err: err}
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrUpstreamAuth, err)
	}
	return nil
}

func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUpstreamAuth)
}
