package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ErrRateLimit means the vendor throttled the request. RetryAfter is the
// vendor's hint, zero when it gave none.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrQuotaExhausted indicates the account behind the API key has run out of
// credit or quota. Retrying cannot succeed until an operator intervenes.
type ErrQuotaExhausted struct {
	Err error
}

func (e *ErrQuotaExhausted) Error() string {
	return fmt.Sprintf("LLM quota exhausted: %v", e.Err)
}

func (e *ErrQuotaExhausted) Unwrap() error { return e.Err }

// ErrInvalidResponse means the reply could not be used: not JSON, the
// wrong envelope, or a batch in which every item failed its check.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers transport failures and 5xx replies.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means the reply was cut off at MaxTokens before it
// became usable JSON.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// ErrRequestRejected means the vendor refused the request itself: a bad
// key, a missing permission, an unknown model or a malformed request. The
// same request will be refused again, so it is not retried.
type ErrRequestRejected struct {
	Status int
	Err    error
}

func (e *ErrRequestRejected) Error() string {
	return fmt.Sprintf("LLM request rejected (HTTP %d): %v", e.Status, e.Err)
}

func (e *ErrRequestRejected) Unwrap() error { return e.Err }

// mapHTTPStatus converts a vendor HTTP status into one of the typed errors.
// 408 and 409 are transient; every other 4xx except 402 and 429 is a
// configuration problem.
func mapHTTPStatus(status int, err error) error {
	switch {
	case status == http.StatusPaymentRequired:
		return &ErrQuotaExhausted{Err: err}
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	case status == http.StatusRequestTimeout, status == http.StatusConflict:
		return &ErrProviderUnavailable{Err: err}
	case status >= 400 && status < 500:
		return &ErrRequestRejected{Status: status, Err: err}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}
