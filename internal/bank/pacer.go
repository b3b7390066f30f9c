package bank

import (
	"context"
	"sync"
	"time"
)

// pacer spaces sequential generation calls of one invocation. It is
// created per Sample or SeedToTarget call and never shared across them.
type pacer struct {
	mu      sync.Mutex
	spacing time.Duration
	last    time.Time
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

func newPacer(spacing time.Duration) *pacer {
	return &pacer{spacing: spacing, now: time.Now, sleep: sleepCtx}
}

// Wait blocks until at least spacing has passed since the previous call.
func (p *pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.spacing > 0 && !p.last.IsZero() {
		if d := p.spacing - p.now().Sub(p.last); d > 0 {
			if err := p.sleep(ctx, d); err != nil {
				return err
			}
		}
	}
	p.last = p.now()
	return nil
}

type pacerKey struct{}

func withPacer(ctx context.Context, p *pacer) context.Context {
	return context.WithValue(ctx, pacerKey{}, p)
}

// waitTurn waits on the invocation's pacer, if any.
func waitTurn(ctx context.Context) error {
	p, _ := ctx.Value(pacerKey{}).(*pacer)
	return p.Wait(ctx)
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
