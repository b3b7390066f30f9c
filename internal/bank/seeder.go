package bank

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/qbank/internal/logger"
	"github.com/abhisek/qbank/internal/store"
)

// SeedResult reports the outcome of a seed run, including partial progress
// when the run stopped on an error.
type SeedResult struct {
	Generated int `json:"generated_count"`
	NewTotal  int `json:"new_total"`
	Target    int `json:"target_count"`
}

// Seeder grows a domain's inventory to a target size.
type Seeder struct {
	repos  Repos
	refill *replenisher
	config Config
	log    *logger.Logger
	pace   func(spacing time.Duration) *pacer
}

// NewSeeder creates a Seeder.
func NewSeeder(repos Repos, gen Generator, cfg Config, log *logger.Logger) *Seeder {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Seeder{
		repos:  repos,
		refill: &replenisher{repos: repos, gen: gen, config: cfg, log: log},
		config: cfg,
		log:    log,
		pace:   newPacer,
	}
}

// SeedToTarget generates items until domain holds at least target items.
// It is safe to re-run: each call computes the remaining deficit. Items
// inserted before a failure stay persisted and are reported in the result,
// which is non-nil whenever the inputs were valid.
func (s *Seeder) SeedToTarget(ctx context.Context, kind Kind, domain string, target int) (*SeedResult, error) {
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	if target < 0 || target > s.config.MaxSeedTarget {
		return nil, fmt.Errorf("%w: target must be between 0 and %d, got %d", ErrInvalidCount, s.config.MaxSeedTarget, target)
	}

	repo := s.repos.Items(kind.Collection)
	current, err := repo.Count(ctx, store.ItemFilter{Domain: domain})
	if err != nil {
		return nil, fmt.Errorf("count domain: %w", err)
	}
	res := &SeedResult{NewTotal: current, Target: target}

	deficit := max(0, target-current)
	if deficit == 0 {
		return res, nil
	}

	log := s.log.With("kind", kind.Name, "domain", domain)
	log.Info("seeding", "current", current, "target", target, "deficit", deficit)

	ctx = withPacer(ctx, s.pace(s.config.MinCallSpacing))
	split := SplitTiers(deficit)

	var runErr error
	for _, tier := range Tiers {
		n, err := s.refill.fill(ctx, kind, domain, tier, split[tier])
		res.Generated += n
		if err != nil {
			log.Warn("seeding stopped", "difficulty", tier, "generated", res.Generated, "error", err)
			runErr = err
			break
		}
	}

	// Recount detached from cancellation so a cancelled run still reports
	// its total, including rows from concurrent writers.
	total, err := repo.Count(context.WithoutCancel(ctx), store.ItemFilter{Domain: domain})
	if err != nil {
		total = current + res.Generated
	}
	res.NewTotal = total

	log.Info("seeded", "generated", res.Generated, "new_total", res.NewTotal)
	return res, runErr
}
