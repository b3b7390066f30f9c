package bank

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/qbank/internal/llm"
)

var (
	// ErrNoContentAvailable means the domain has no items even after
	// generation was attempted.
	ErrNoContentAvailable = errors.New("no content available")

	// ErrRateLimited means the generator kept rate limiting after all retries.
	ErrRateLimited = errors.New("generator rate limited")

	// ErrQuotaExhausted means the generator account is out of credit or quota.
	ErrQuotaExhausted = errors.New("generator quota exhausted")

	// ErrMalformedOutput means generation repeatedly produced no valid items.
	ErrMalformedOutput = errors.New("malformed generator output")

	// ErrGeneratorUnavailable means the generator could not be reached.
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	ErrInvalidDomain = errors.New("invalid domain")
	ErrInvalidCount  = errors.New("invalid count")
	ErrItemNotFound  = errors.New("item not found")
)

// classify maps a provider error onto the bank sentinels, keeping the
// original error in the chain. Context errors pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var (
		rateErr    *llm.ErrRateLimit
		quotaErr   *llm.ErrQuotaExhausted
		invalidErr *llm.ErrInvalidResponse
		maxTokErr  *llm.ErrMaxTokensExceeded
	)
	switch {
	case errors.As(err, &quotaErr):
		return fmt.Errorf("%w: %w", ErrQuotaExhausted, err)
	case errors.As(err, &rateErr):
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case errors.As(err, &invalidErr), errors.As(err, &maxTokErr):
		return fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	default:
		return fmt.Errorf("%w: %w", ErrGeneratorUnavailable, err)
	}
}

// Codes for generation failures reported alongside served items.
const (
	CodeRateLimited          = "rate_limited"
	CodeQuotaExhausted       = "quota_exhausted"
	CodeGeneratorUnavailable = "generator_unavailable"
)

// GenerationError is the wire form of an absorbed generation failure.
type GenerationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// describeGeneration returns the wire form of err, or nil for a nil err.
// Malformed output counts as the generator being unavailable.
func describeGeneration(err error) *GenerationError {
	if err == nil {
		return nil
	}
	code := CodeGeneratorUnavailable
	switch {
	case errors.Is(err, ErrQuotaExhausted):
		code = CodeQuotaExhausted
	case errors.Is(err, ErrRateLimited):
		code = CodeRateLimited
	}
	return &GenerationError{Code: code, Message: err.Error()}
}

// isTerminal reports whether a generation error should stop all further
// generation within the current invocation.
func isTerminal(err error) bool {
	return err != nil && !errors.Is(err, ErrMalformedOutput)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
