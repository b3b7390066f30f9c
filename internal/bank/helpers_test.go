package bank

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/qbank/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	s, err := store.Open(context.Background(), store.DriverSQLite, dsn)
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

// testConfig disables pacing so tests run instantly.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MinCallSpacing = 0
	return cfg
}

func choiceCandidate(question string, d Difficulty) Candidate {
	return Candidate{
		Difficulty:  d,
		Explanation: "B is correct.",
		Choice: &ChoiceBody{
			Question: question,
			Options:  Options{A: "one", B: "two", C: "three", D: "four"},
		},
		Answer: "B",
	}
}

// seedTier inserts n choice items directly into the store.
func seedTier(t *testing.T, s *store.Store, kind Kind, domain string, d Difficulty, n int) {
	t.Helper()
	base := time.Now()
	rows := make([]store.Item, n)
	for i := range rows {
		c := choiceCandidate(fmt.Sprintf("seeded %s %s #%d", domain, d, i), d)
		rec, err := c.toRecord(uuid.NewString(), domain, base.Add(time.Duration(i)))
		require.NoError(t, err)
		rows[i] = rec
	}
	res, err := s.Items(kind.Collection).InsertMany(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, n, res.Inserted)
}

// fakeResult overrides one scripted generator call.
type fakeResult struct {
	cands []Candidate
	err   error
}

// fakeGenerator returns fresh, valid choice candidates for every request.
// script overrides calls by 1-based call number; failAll fails every call.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   []GenerateInput
	serial  int
	script  map[int]fakeResult
	failAll error
}

func (f *fakeGenerator) Generate(_ context.Context, in GenerateInput) ([]Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, in)
	if f.failAll != nil {
		return nil, f.failAll
	}
	if r, ok := f.script[len(f.calls)]; ok {
		return r.cands, r.err
	}

	out := make([]Candidate, 0, in.Count)
	for i := 0; i < in.Count; i++ {
		f.serial++
		out = append(out, choiceCandidate(fmt.Sprintf("%s %s generated #%d", in.Domain, in.Difficulty, f.serial), in.Difficulty))
	}
	return out, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func countTiers(items []Item) map[Difficulty]int {
	out := map[Difficulty]int{}
	for _, it := range items {
		out[it.Difficulty]++
	}
	return out
}
