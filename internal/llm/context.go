package llm

import (
	"context"
	"time"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// timeoutProvider bounds a single Generate call, retries included.
type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p so each Generate call runs under its own deadline.
// A non-positive timeout returns p unchanged.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &timeoutProvider{inner: p, timeout: timeout}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *timeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
