package bank

import (
	"context"
	"fmt"
	"testing"

	"github.com/abhisek/qbank/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func domainCount(t *testing.T, s *store.Store, kind Kind, domain string) int {
	t.Helper()
	n, err := s.Items(kind.Collection).Count(context.Background(), store.ItemFilter{Domain: domain})
	require.NoError(t, err)
	return n
}

func TestSeedToTarget_Idempotent(t *testing.T) {
	s := openTestStore(t)
	gen := &fakeGenerator{}
	seeder := NewSeeder(s, gen, testConfig(), nil)
	ctx := context.Background()

	res, err := seeder.SeedToTarget(ctx, KindInterview, "Y", 25)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Generated: 25, NewTotal: 25, Target: 25}, res)
	assert.GreaterOrEqual(t, domainCount(t, s, KindInterview, "Y"), 25)

	calls := gen.callCount()
	res, err = seeder.SeedToTarget(ctx, KindInterview, "Y", 25)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Generated)
	assert.Equal(t, 25, res.NewTotal)
	assert.Equal(t, calls, gen.callCount(), "no generation when already at target")
}

func TestSeedToTarget_TopsUpInBatches(t *testing.T) {
	s := openTestStore(t)
	seedTier(t, s, KindMCQ, "Y", Medium, 950)
	gen := &fakeGenerator{}
	seeder := NewSeeder(s, gen, testConfig(), nil)

	res, err := seeder.SeedToTarget(context.Background(), KindMCQ, "Y", 1000)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Generated)
	assert.Equal(t, 1000, res.NewTotal)

	// 50 splits 15/20/15 and each tier fills in batches of at most 10.
	var sizes []int
	for _, c := range gen.calls {
		sizes = append(sizes, c.Count)
	}
	assert.Equal(t, []int{10, 5, 10, 10, 10, 5}, sizes)
}

func TestSeedToTarget_AlreadyAboveTarget(t *testing.T) {
	s := openTestStore(t)
	seedTier(t, s, KindMCQ, "Z", Easy, 12)
	gen := &fakeGenerator{}

	res, err := NewSeeder(s, gen, testConfig(), nil).SeedToTarget(context.Background(), KindMCQ, "Z", 10)
	require.NoError(t, err)
	assert.Equal(t, &SeedResult{Generated: 0, NewTotal: 12, Target: 10}, res)
	assert.Zero(t, gen.callCount())
}

func TestSeedToTarget_PartialProgressSurvivesFailure(t *testing.T) {
	s := openTestStore(t)
	gen := &fakeGenerator{script: map[int]fakeResult{
		3: {err: fmt.Errorf("%w: out of credit", ErrQuotaExhausted)},
	}}
	seeder := NewSeeder(s, gen, testConfig(), nil)

	// 30 splits 9/12/9: call 1 fills easy, call 2 is the first medium
	// batch, call 3 fails.
	res, err := seeder.SeedToTarget(context.Background(), KindMCQ, "Go", 30)
	require.ErrorIs(t, err, ErrQuotaExhausted)
	require.NotNil(t, res)
	assert.Equal(t, 19, res.Generated)
	assert.Equal(t, 19, res.NewTotal)
	assert.Equal(t, 19, domainCount(t, s, KindMCQ, "Go"))
	assert.Equal(t, 3, gen.callCount())
}

func TestSeedToTarget_MalformedBatchIsSkipped(t *testing.T) {
	s := openTestStore(t)
	gen := &fakeGenerator{script: map[int]fakeResult{
		1: {err: fmt.Errorf("%w: not JSON", ErrMalformedOutput)},
	}}
	seeder := NewSeeder(s, gen, testConfig(), nil)

	res, err := seeder.SeedToTarget(context.Background(), KindMCQ, "Go", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Generated)
	assert.Equal(t, 4, gen.callCount(), "the malformed batch is retried by the next batch")
}

func TestSeedToTarget_RepeatedEmptyBatchesEscalate(t *testing.T) {
	s := openTestStore(t)
	gen := &fakeGenerator{failAll: fmt.Errorf("%w: prose only", ErrMalformedOutput)}
	cfg := testConfig()
	cfg.MaxEmptyBatches = 3

	res, err := NewSeeder(s, gen, cfg, nil).SeedToTarget(context.Background(), KindMCQ, "Go", 10)
	require.ErrorIs(t, err, ErrMalformedOutput)
	assert.Equal(t, 0, res.Generated)
	assert.Equal(t, 3, gen.callCount())
}

func TestSeedToTarget_DuplicatesCountAsEmpty(t *testing.T) {
	s := openTestStore(t)
	same := []Candidate{
		choiceCandidate("What is a closure?", Easy),
		choiceCandidate("what is a closure?  ", Easy),
	}
	gen := &fakeGenerator{script: map[int]fakeResult{
		1: {cands: same}, 2: {cands: same}, 3: {cands: same}, 4: {cands: same},
	}}

	res, err := NewSeeder(s, gen, testConfig(), nil).SeedToTarget(context.Background(), KindMCQ, "JS", 10)
	require.ErrorIs(t, err, ErrMalformedOutput)
	assert.Equal(t, 1, res.Generated, "only the first copy is stored")
	assert.Equal(t, 4, gen.callCount())
}

func TestSeedToTarget_CancellationKeepsProgress(t *testing.T) {
	s := openTestStore(t)
	gen := &fakeGenerator{script: map[int]fakeResult{2: {err: context.Canceled}}}

	res, err := NewSeeder(s, gen, testConfig(), nil).SeedToTarget(context.Background(), KindMCQ, "Go", 20)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 6, res.Generated)
	assert.Equal(t, 6, res.NewTotal)
}

func TestSeedToTarget_InvalidInput(t *testing.T) {
	s := openTestStore(t)
	seeder := NewSeeder(s, &fakeGenerator{}, testConfig(), nil)
	ctx := context.Background()

	_, err := seeder.SeedToTarget(ctx, KindMCQ, "Go", -1)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = seeder.SeedToTarget(ctx, KindMCQ, "Go", DefaultConfig().MaxSeedTarget+1)
	assert.ErrorIs(t, err, ErrInvalidCount)

	_, err = seeder.SeedToTarget(ctx, KindMCQ, "Go<script>", 10)
	assert.ErrorIs(t, err, ErrInvalidDomain)
}

func TestSeedToTarget_NoGenerator(t *testing.T) {
	s := openTestStore(t)
	res, err := NewSeeder(s, nil, testConfig(), nil).SeedToTarget(context.Background(), KindMCQ, "Go", 5)
	require.ErrorIs(t, err, ErrGeneratorUnavailable)
	assert.Equal(t, 0, res.Generated)
}
