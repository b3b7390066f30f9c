package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider asks the inner backend again after throttling, 5xx replies
// and transport errors, waiting with exponential backoff and ±20% jitter.
// A rate limit's RetryAfter hint replaces the computed wait.
//
// Quota exhaustion, rejected requests, truncated output and unusable
// replies are returned at once. The bank owns the fallback prompt for
// unusable replies.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	sleep  func(ctx context.Context, d time.Duration) error
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg, sleep: sleepCtx}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	for attempt := 0; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		switch {
		case err == nil:
			return resp, nil
		case !shouldRetry(err), attempt+1 >= attempts:
			return nil, err
		}
		if serr := r.sleep(ctx, r.backoff(attempt, err)); serr != nil {
			return nil, serr
		}
	}
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

// shouldRetry reports whether waiting and asking again can help.
func shouldRetry(err error) bool {
	var (
		quota    *ErrQuotaExhausted
		rejected *ErrRequestRejected
		maxTok   *ErrMaxTokensExceeded
		invalid  *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.As(err, &quota), errors.As(err, &rejected):
		return false
	case errors.As(err, &maxTok), errors.As(err, &invalid):
		return false
	default:
		return true
	}
}

// backoff returns the wait before attempt+1. Both the hinted and the
// computed wait are capped at MaxWait.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return r.capped(rl.RetryAfter)
	}
	base := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	wait := r.capped(time.Duration(base))
	return max(r.capped(jitter(wait, 0.2)), 0)
}

func (r *RetryProvider) capped(d time.Duration) time.Duration {
	if r.config.MaxWait > 0 && d > r.config.MaxWait {
		return r.config.MaxWait
	}
	return d
}

// jitter spreads d uniformly over [d*(1-frac), d*(1+frac)].
func jitter(d time.Duration, frac float64) time.Duration {
	return d + time.Duration(float64(d)*frac*(2*rand.Float64()-1))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
