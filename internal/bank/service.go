package bank

import (
	"context"
	"fmt"

	"github.com/abhisek/qbank/internal/logger"
	"github.com/abhisek/qbank/internal/store"
)

// Service bundles the bank operations for the CLI and HTTP API.
type Service struct {
	repos   Repos
	sampler *Sampler
	seeder  *Seeder
	grader  *Grader
}

// NewService wires a Sampler, Seeder and Grader over the same repositories
// and generator. gen may be nil for a read-only bank.
func NewService(repos Repos, gen Generator, cfg Config, log *logger.Logger) *Service {
	return &Service{
		repos:   repos,
		sampler: NewSampler(repos, gen, cfg, log),
		seeder:  NewSeeder(repos, gen, cfg, log),
		grader:  NewGrader(repos),
	}
}

func (s *Service) Sample(ctx context.Context, kind Kind, domain string, n int) (*SampleResult, error) {
	return s.sampler.Sample(ctx, kind, domain, n)
}

func (s *Service) SeedToTarget(ctx context.Context, kind Kind, domain string, target int) (*SeedResult, error) {
	return s.seeder.SeedToTarget(ctx, kind, domain, target)
}

func (s *Service) Grade(ctx context.Context, kind Kind, id string, sub Submission) (*GradeResult, error) {
	return s.grader.Grade(ctx, kind, id, sub)
}

// Inventory is the per-tier supply of one domain.
type Inventory struct {
	Kind   string             `json:"kind"`
	Domain string             `json:"domain"`
	Tiers  map[Difficulty]int `json:"tiers"`
	Total  int                `json:"total"`
}

// Inventory counts domain's items per tier.
func (s *Service) Inventory(ctx context.Context, kind Kind, domain string) (*Inventory, error) {
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}
	repo := s.repos.Items(kind.Collection)
	inv := &Inventory{Kind: kind.Name, Domain: domain, Tiers: make(map[Difficulty]int, len(Tiers))}
	for _, tier := range Tiers {
		n, err := repo.Count(ctx, store.ItemFilter{Domain: domain, Difficulty: string(tier)})
		if err != nil {
			return nil, fmt.Errorf("count %s tier: %w", tier, err)
		}
		inv.Tiers[tier] = n
		inv.Total += n
	}
	return inv, nil
}

// Domains lists every domain of kind with its item total.
func (s *Service) Domains(ctx context.Context, kind Kind) ([]store.DomainCount, error) {
	out, err := s.repos.Items(kind.Collection).Domains(ctx)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	return out, nil
}
