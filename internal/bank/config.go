package bank

import "time"

// MaxSampleSize bounds a single sampling request.
const MaxSampleSize = 100

// Config controls generation and replenishment.
type Config struct {
	// Validators is the ordered list of validators run on every candidate.
	// The first failure drops the candidate.
	Validators []Validator

	// MaxTokens is the token budget for one generation batch.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// BatchSize is the number of items requested per generation call.
	BatchSize int

	// MaxEmptyBatches is how many consecutive batches may yield no valid
	// items before replenishment gives up with ErrMalformedOutput.
	MaxEmptyBatches int

	// MinCallSpacing is the minimum delay between generation calls within
	// one invocation.
	MinCallSpacing time.Duration

	// MaxAvoidTexts is the number of known prompt texts listed in the
	// prompt for de-duplication.
	MaxAvoidTexts int

	// RecentWindow is how many of a domain's newest prompt texts are loaded
	// for de-duplication.
	RecentWindow int

	// MaxSeedTarget bounds a single seed request.
	MaxSeedTarget int
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&OptionsValidator{},
			&AnswerValidator{},
			&TestCaseValidator{},
		},
		MaxTokens:       8192,
		Temperature:     0.7,
		BatchSize:       10,
		MaxEmptyBatches: 3,
		MinCallSpacing:  1500 * time.Millisecond,
		MaxAvoidTexts:   30,
		RecentWindow:    500,
		MaxSeedTarget:   10000,
	}
}

// withDefaults fills zero values from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Validators == nil {
		c.Validators = d.Validators
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MaxEmptyBatches <= 0 {
		c.MaxEmptyBatches = d.MaxEmptyBatches
	}
	if c.MinCallSpacing < 0 {
		c.MinCallSpacing = 0
	}
	if c.MaxAvoidTexts <= 0 {
		c.MaxAvoidTexts = d.MaxAvoidTexts
	}
	if c.RecentWindow <= 0 {
		c.RecentWindow = d.RecentWindow
	}
	if c.MaxSeedTarget <= 0 {
		c.MaxSeedTarget = d.MaxSeedTarget
	}
	return c
}
