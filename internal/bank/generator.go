package bank

import "context"

// GenerateInput holds everything needed to generate one batch.
type GenerateInput struct {
	Kind       Kind
	Domain     string
	Difficulty Difficulty

	// Count is the number of items requested.
	Count int

	// Avoid lists prompt texts already in the bank, oldest first.
	Avoid []string
}

// Generator produces candidate items for one batch.
type Generator interface {
	// Generate returns validated candidates, possibly fewer than requested.
	// Errors are classified into the bank sentinels; a batch whose output
	// could not be parsed at all returns ErrMalformedOutput.
	Generate(ctx context.Context, input GenerateInput) ([]Candidate, error)
}
