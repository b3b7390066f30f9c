package bank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/qbank/internal/logger"
	"github.com/abhisek/qbank/internal/store"
	"github.com/google/uuid"
)

// Repos hands out item repositories by collection. *store.Store satisfies it.
type Repos interface {
	Items(c store.Collection) store.ItemRepo
}

// replenisher is the generate-validate-insert path shared by sampling and
// seeding.
type replenisher struct {
	repos  Repos
	gen    Generator
	config Config
	log    *logger.Logger
}

// fill generates and inserts items for one tier until need items were
// inserted. It returns the number inserted, which is retained even when an
// error is returned. Batches run sequentially.
func (r *replenisher) fill(ctx context.Context, kind Kind, domain string, tier Difficulty, need int) (int, error) {
	if need <= 0 {
		return 0, nil
	}
	if r.gen == nil {
		return 0, fmt.Errorf("%w: no generator configured", ErrGeneratorUnavailable)
	}
	repo := r.repos.Items(kind.Collection)

	recent, err := repo.RecentTexts(ctx, domain, r.config.RecentWindow)
	if err != nil {
		return 0, fmt.Errorf("load recent texts: %w", err)
	}
	known := newTextSet(recent)

	var (
		inserted      int
		emptyBatches  int
		lastMalformed error
	)
	for inserted < need {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}
		batch := min(r.config.BatchSize, need-inserted)

		cands, err := r.gen.Generate(ctx, GenerateInput{
			Kind:       kind,
			Domain:     domain,
			Difficulty: tier,
			Count:      batch,
			Avoid:      known.recent(r.config.MaxAvoidTexts),
		})
		switch {
		case err == nil:
		case errors.Is(err, ErrMalformedOutput):
			lastMalformed = err
			r.log.Warn("generation batch malformed",
				"kind", kind.Name, "domain", domain, "difficulty", tier, "error", err)
		default:
			return inserted, err
		}

		cands, dupes := known.filter(cands)
		if dupes > 0 {
			r.log.Debug("dropped duplicate candidates", "kind", kind.Name, "domain", domain, "count", dupes)
		}
		if len(cands) > batch {
			cands = cands[:batch]
		}

		n, err := r.insert(ctx, repo, kind, domain, cands)
		inserted += n
		if err != nil {
			return inserted, err
		}

		if n > 0 {
			emptyBatches = 0
			continue
		}
		emptyBatches++
		if emptyBatches >= r.config.MaxEmptyBatches {
			if lastMalformed != nil {
				return inserted, lastMalformed
			}
			return inserted, fmt.Errorf("%w: %d consecutive batches yielded no valid items", ErrMalformedOutput, emptyBatches)
		}
	}

	r.log.Info("replenished tier",
		"kind", kind.Name, "domain", domain, "difficulty", tier, "inserted", inserted)
	return inserted, nil
}

// insert persists candidates, each as one complete row.
func (r *replenisher) insert(ctx context.Context, repo store.ItemRepo, kind Kind, domain string, cands []Candidate) (int, error) {
	if len(cands) == 0 {
		return 0, nil
	}
	now := time.Now()
	rows := make([]store.Item, 0, len(cands))
	for i := range cands {
		rec, err := cands[i].toRecord(uuid.NewString(), domain, now.Add(time.Duration(i)))
		if err != nil {
			r.log.Warn("dropped unencodable candidate", "kind", kind.Name, "error", err)
			continue
		}
		rows = append(rows, rec)
	}

	res, err := repo.InsertMany(ctx, rows)
	if err != nil {
		return res.Inserted, fmt.Errorf("insert %s items: %w", kind.Name, err)
	}
	for _, f := range res.Failed {
		r.log.Warn("item insert failed", "kind", kind.Name, "id", f.ID, "error", f.Err)
	}
	return res.Inserted, nil
}
