package bank

import (
	"fmt"
	"strings"
)

const (
	maxQuestionLen    = 1000
	maxTitleLen       = 200
	maxStatementLen   = 6000
	maxExplanationLen = 2000
	maxTestCases      = 20
)

// StructuralValidator checks that required fields are present and within
// length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(c *Candidate, kind Kind) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
	}

	if _, ok := ParseDifficulty(string(c.Difficulty)); !ok {
		return fail("difficulty must be Easy, Medium or Hard")
	}
	if len(c.Explanation) > maxExplanationLen {
		return fail(fmt.Sprintf("explanation exceeds %d characters", maxExplanationLen))
	}

	switch {
	case kind.choice:
		if c.Choice == nil {
			return fail("missing question content")
		}
		if c.Choice.Question == "" {
			return fail("question is empty")
		}
		if len(c.Choice.Question) > maxQuestionLen {
			return fail(fmt.Sprintf("question exceeds %d characters", maxQuestionLen))
		}
	default:
		if c.Coding == nil {
			return fail("missing problem content")
		}
		if c.Coding.Title == "" {
			return fail("title is empty")
		}
		if len(c.Coding.Title) > maxTitleLen {
			return fail(fmt.Sprintf("title exceeds %d characters", maxTitleLen))
		}
		if c.Coding.Statement == "" {
			return fail("statement is empty")
		}
		if len(c.Coding.Statement) > maxStatementLen {
			return fail(fmt.Sprintf("statement exceeds %d characters", maxStatementLen))
		}
		if c.Coding.InputFormat == "" || c.Coding.OutputFormat == "" {
			return fail("input and output formats are required")
		}
	}
	return nil
}

// OptionsValidator checks that choice items carry four distinct, non-empty
// options.
type OptionsValidator struct{}

func (v *OptionsValidator) Name() string { return "options" }

func (v *OptionsValidator) Validate(c *Candidate, kind Kind) *ValidationError {
	if !kind.choice || c.Choice == nil {
		return nil
	}
	seen := make(map[string]bool, 4)
	for i, text := range c.Choice.Options.list() {
		if text == "" {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("option %s is empty", labels[i]),
				Retryable: true,
			}
		}
		k := strings.ToLower(text)
		if seen[k] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("option %s duplicates another option", labels[i]),
				Retryable: true,
			}
		}
		seen[k] = true
	}
	return nil
}

// AnswerValidator checks that an answer key can be stored: a label A-D for
// choice items, one expected output per test input for coding items.
type AnswerValidator struct{}

func (v *AnswerValidator) Name() string { return "answer" }

func (v *AnswerValidator) Validate(c *Candidate, kind Kind) *ValidationError {
	if kind.choice {
		if c.Answer == "" || !strings.Contains("ABCD", c.Answer) || len(c.Answer) != 1 {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "no correct option label could be derived",
				Retryable: true,
			}
		}
		return nil
	}
	if c.Coding == nil || len(c.ExpectedOutputs) != len(c.Coding.TestInputs) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "expected outputs do not align with test inputs",
			Retryable: true,
		}
	}
	return nil
}

// TestCaseValidator checks the examples and hidden tests of coding items.
type TestCaseValidator struct{}

func (v *TestCaseValidator) Name() string { return "test-cases" }

func (v *TestCaseValidator) Validate(c *Candidate, kind Kind) *ValidationError {
	if kind.choice || c.Coding == nil {
		return nil
	}
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
	}
	if len(c.Coding.Examples) == 0 {
		return fail("at least one example is required")
	}
	for i, ex := range c.Coding.Examples {
		if ex.Input == "" && ex.Output == "" {
			return fail(fmt.Sprintf("example %d is empty", i+1))
		}
	}
	if len(c.Coding.TestInputs) == 0 {
		return fail("at least one test case is required")
	}
	if len(c.Coding.TestInputs) > maxTestCases {
		return fail(fmt.Sprintf("more than %d test cases", maxTestCases))
	}
	for i, out := range c.ExpectedOutputs {
		if strings.TrimSpace(out) == "" {
			return fail(fmt.Sprintf("test case %d has no expected output", i+1))
		}
	}
	return nil
}
