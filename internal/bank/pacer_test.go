package bank

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qbank/internal/llm"
)

func TestPacer_SpacesCalls(t *testing.T) {
	clock := time.Unix(0, 0)
	var slept []time.Duration
	p := newPacer(1500 * time.Millisecond)
	p.now = func() time.Time { return clock }
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		clock = clock.Add(d)
		return nil
	}
	ctx := context.Background()

	require.NoError(t, p.Wait(ctx)) // first call never waits
	clock = clock.Add(500 * time.Millisecond)
	require.NoError(t, p.Wait(ctx))
	clock = clock.Add(2 * time.Second)
	require.NoError(t, p.Wait(ctx))

	assert.Equal(t, []time.Duration{time.Second}, slept)
}

func TestPacer_Cancelled(t *testing.T) {
	p := newPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Wait(ctx))
	cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}

func TestWaitTurn_NoPacer(t *testing.T) {
	assert.NoError(t, waitTurn(context.Background()))
}

// fakeClock is a manual clock shared by the pacer and a timedProvider.
type fakeClock struct {
	mu    sync.Mutex
	t     time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.t = c.t.Add(d)
	return nil
}

func (c *fakeClock) pacer(spacing time.Duration) *pacer {
	p := newPacer(spacing)
	p.now = c.Now
	p.sleep = c.Sleep
	return p
}

// timedProvider answers every call with five fresh choice items, taking
// latency on the fake clock, and records when each call started.
type timedProvider struct {
	clock   *fakeClock
	latency time.Duration
	starts  []time.Time
	serial  int
}

func (p *timedProvider) Generate(_ context.Context, _ llm.Request) (*llm.Response, error) {
	p.starts = append(p.starts, p.clock.Now())
	p.clock.Advance(p.latency)

	items := make([]any, 0, 5)
	for range 5 {
		p.serial++
		items = append(items, map[string]any{
			"question":       fmt.Sprintf("Paced question %d", p.serial),
			"options":        map[string]string{"A": "w", "B": "x", "C": "y", "D": "z"},
			"correct_option": "A",
			"explanation":    "w is right.",
		})
	}
	return &llm.Response{Content: llm.MockItems(items...).Content, Model: "timed"}, nil
}

func (p *timedProvider) ModelID() string { return "timed" }

func gaps(starts []time.Time) []time.Duration {
	var out []time.Duration
	for i := 1; i < len(starts); i++ {
		out = append(out, starts[i].Sub(starts[i-1]))
	}
	return out
}

func TestPacing_SampleAndSeedSpaceGeneratorCalls(t *testing.T) {
	const spacing = 1500 * time.Millisecond
	cfg := testConfig()
	cfg.MinCallSpacing = spacing

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	provider := &timedProvider{clock: clock, latency: 400 * time.Millisecond}
	gen := NewLLMGenerator(provider, cfg, nil)
	s := openTestStore(t)

	sampler := NewSampler(s, gen, cfg, nil)
	sampler.pace = clock.pacer
	seeder := NewSeeder(s, gen, cfg, nil)
	seeder.pace = clock.pacer

	res, err := sampler.Sample(context.Background(), KindMCQ, "Networking", 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 10)
	require.Len(t, provider.starts, 3, "one call per under-supplied tier")
	for i, g := range gaps(provider.starts) {
		assert.Equal(t, spacing, g, "gap before call %d", i+2)
	}
	// Each wait is the spacing minus the time the previous call took.
	assert.Equal(t, []time.Duration{1100 * time.Millisecond, 1100 * time.Millisecond}, clock.slept)

	// A new invocation starts with a fresh pacer: its first call does not wait.
	clock.Advance(10 * time.Millisecond)
	provider.starts = nil
	clock.slept = nil

	seeded, err := seeder.SeedToTarget(context.Background(), KindMCQ, "Security", 12)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, seeded.NewTotal, 12)
	require.Len(t, provider.starts, 3)
	for i, g := range gaps(provider.starts) {
		assert.Equal(t, spacing, g, "gap before call %d", i+2)
	}
	assert.Len(t, clock.slept, 2, "the first seed call is not held back by the sample run")
}
