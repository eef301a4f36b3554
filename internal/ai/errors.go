package ai

import (
	"errors"
	"fmt"
	"time"
)

// Typed provider failures. Each wraps the decoded *APIError so callers can
// match either the category or the raw status with errors.As.

type (
	// AuthError is a 401/403 from the provider.
	AuthError struct{ *APIError }
	// ModelNotFoundError is a 404 that names the model.
	ModelNotFoundError struct{ *APIError }
	BadRequestError    struct{ *APIError }
	// QuotaExceededError is a 402 or a billing complaint in the body.
	QuotaExceededError struct{ *APIError }
	ServerError        struct{ *APIError }
)

func (e *AuthError) Error() string          { return describe("authentication failed", e.APIError) }
func (e *ModelNotFoundError) Error() string { return describe("model not found", e.APIError) }
func (e *BadRequestError) Error() string    { return describe("bad request", e.APIError) }
func (e *QuotaExceededError) Error() string { return describe("quota exceeded", e.APIError) }
func (e *ServerError) Error() string        { return describe("provider error", e.APIError) }

func (e *AuthError) Unwrap() error          { return e.APIError }
func (e *ModelNotFoundError) Unwrap() error { return e.APIError }
func (e *BadRequestError) Unwrap() error    { return e.APIError }
func (e *QuotaExceededError) Unwrap() error { return e.APIError }
func (e *ServerError) Unwrap() error        { return e.APIError }

// RateLimitError is a 429. RetryAfter is zero when the provider sent no hint.
type RateLimitError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	label := "rate limited"
	if e.RetryAfter > 0 {
		label = fmt.Sprintf("rate limited: wait about %ds before retrying", int(e.RetryAfter.Seconds()))
	}
	return describe(label, e.APIError)
}

func (e *RateLimitError) Unwrap() error { return e.APIError }

// UnreachableError is a transport failure before any HTTP status arrived.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	switch {
	case e == nil:
		return "unreachable"
	case e.Host == "":
		return fmt.Sprintf("endpoint unreachable: %v", e.Err)
	default:
		return fmt.Sprintf("endpoint unreachable at %s: %v", e.Host, e.Err)
	}
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// IsCapacity reports whether err means the provider is refusing work for
// rate or quota reasons, as opposed to a bad request.
func IsCapacity(err error) bool {
	var rl *RateLimitError
	var q *QuotaExceededError
	return errors.As(err, &rl) || errors.As(err, &q)
}

func describe(label string, apiErr *APIError) string {
	if apiErr == nil {
		return label
	}
	return label + ": " + apiErr.Error()
}
