package bank

import "fmt"

// Validator checks a normalized candidate before it is persisted.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator (for error messages
	// and logging), e.g. "structural", "options", "answer".
	Name() string

	// Validate returns nil if the candidate passes, or a ValidationError
	// describing the first problem found.
	Validate(c *Candidate, kind Kind) *ValidationError
}

// ValidationError describes why a candidate failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// runValidators returns the first validation failure, if any.
func runValidators(validators []Validator, c *Candidate, kind Kind) *ValidationError {
	for _, v := range validators {
		if verr := v.Validate(c, kind); verr != nil {
			return verr
		}
	}
	return nil
}
