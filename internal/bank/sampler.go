package bank

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/abhisek/qbank/internal/logger"
	"github.com/abhisek/qbank/internal/store"
)

// SampleResult is the outcome of a sampling request.
type SampleResult struct {
	// Items is the shuffled sample, without answer keys.
	Items []Item `json:"items"`

	// Requested is the requested item count.
	Requested int `json:"requested"`

	// AvailableCount is the domain's total supply after generation.
	AvailableCount int `json:"available_count"`

	// GenerationErr is a generator failure absorbed while still serving
	// existing supply. Nil when generation was not needed or succeeded.
	GenerationErr error `json:"-"`

	// GenerationError carries GenerationErr as a code and message.
	GenerationError *GenerationError `json:"generation_error,omitempty"`
}

// Sampler serves difficulty-stratified random samples, generating and
// persisting new items when a tier is under-supplied.
type Sampler struct {
	repos  Repos
	refill *replenisher
	config Config
	log    *logger.Logger
	rand   func(n int) int
	pace   func(spacing time.Duration) *pacer
}

// NewSampler creates a Sampler. A nil gen disables generation; sampling then
// serves existing supply only.
func NewSampler(repos Repos, gen Generator, cfg Config, log *logger.Logger) *Sampler {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Sampler{
		repos:  repos,
		refill: &replenisher{repos: repos, gen: gen, config: cfg, log: log},
		config: cfg,
		log:    log,
		rand:   rand.IntN,
		pace:   newPacer,
	}
}

// Sample returns up to n items of kind from domain, 30/40/30 across tiers
// when supply allows, topped up from any tier otherwise. When the result is
// empty the error is the absorbed generation failure, or
// ErrNoContentAvailable.
func (s *Sampler) Sample(ctx context.Context, kind Kind, domain string, n int) (*SampleResult, error) {
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	if n < 1 || n > MaxSampleSize {
		return nil, fmt.Errorf("%w: count must be between 1 and %d, got %d", ErrInvalidCount, MaxSampleSize, n)
	}

	repo := s.repos.Items(kind.Collection)
	targets := SplitTiers(n)
	res := &SampleResult{Requested: n}
	log := s.log.With("kind", kind.Name, "domain", domain)

	// Generate tier deficits, one tier at a time.
	ctx = withPacer(ctx, s.pace(s.config.MinCallSpacing))
	for _, tier := range Tiers {
		have, err := repo.Count(ctx, store.ItemFilter{Domain: domain, Difficulty: string(tier)})
		if err != nil {
			return nil, fmt.Errorf("count %s tier: %w", tier, err)
		}
		deficit := targets[tier] - have
		if deficit <= 0 || s.refill.gen == nil || isTerminal(res.GenerationErr) {
			continue
		}
		_, err = s.refill.fill(ctx, kind, domain, tier, deficit)
		if err != nil {
			if isContextErr(err) {
				return nil, err
			}
			log.Warn("tier generation failed", "difficulty", tier, "deficit", deficit, "error", err)
			res.GenerationErr = err
		}
	}

	res.GenerationError = describeGeneration(res.GenerationErr)

	// Per-tier random-offset reads.
	var ids []string
	for _, tier := range Tiers {
		filter := store.ItemFilter{Domain: domain, Difficulty: string(tier)}
		have, err := repo.Count(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("count %s tier: %w", tier, err)
		}
		take := min(targets[tier], have)
		if take == 0 {
			continue
		}
		recs, err := repo.RangeRead(ctx, filter, s.rand(have-take+1), take, store.PublicFields)
		if err != nil {
			return nil, fmt.Errorf("read %s tier: %w", tier, err)
		}
		for _, rec := range recs {
			res.Items = append(res.Items, publicItem(kind, rec))
			ids = append(ids, rec.ID)
		}
	}

	// Top up from any tier, excluding what was already selected.
	for len(res.Items) < n {
		filter := store.ItemFilter{Domain: domain, ExcludeIDs: ids}
		rest, err := repo.Count(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("count top-up supply: %w", err)
		}
		take := min(n-len(res.Items), rest)
		if take == 0 {
			break
		}
		recs, err := repo.RangeRead(ctx, filter, s.rand(rest-take+1), take, store.PublicFields)
		if err != nil {
			return nil, fmt.Errorf("read top-up: %w", err)
		}
		if len(recs) == 0 {
			break
		}
		for _, rec := range recs {
			res.Items = append(res.Items, publicItem(kind, rec))
			ids = append(ids, rec.ID)
		}
	}

	rand.Shuffle(len(res.Items), func(i, j int) {
		res.Items[i], res.Items[j] = res.Items[j], res.Items[i]
	})

	total, err := repo.Count(ctx, store.ItemFilter{Domain: domain})
	if err != nil {
		return nil, fmt.Errorf("count domain: %w", err)
	}
	res.AvailableCount = total

	log.Debug("sampled", "requested", n, "returned", len(res.Items), "available", total)

	if len(res.Items) == 0 {
		if res.GenerationErr != nil {
			return res, res.GenerationErr
		}
		return res, ErrNoContentAvailable
	}
	return res, nil
}
