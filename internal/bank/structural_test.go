package bank

import (
	"strings"
	"testing"
)

func validCoding() *Candidate {
	return &Candidate{
		Difficulty: Medium,
		Coding: &CodingBody{
			Title:        "Sum",
			Statement:    "Print a+b.",
			InputFormat:  "a b",
			OutputFormat: "sum",
			Constraints:  []string{},
			Examples:     []Example{{Input: "1 2", Output: "3"}},
			TestInputs:   []string{"2 2"},
		},
		ExpectedOutputs: []string{"4"},
	}
}

func TestValidators(t *testing.T) {
	validators := DefaultConfig().Validators

	tests := []struct {
		name      string
		kind      Kind
		mutate    func(c *Candidate)
		validator string // empty means the candidate must pass
	}{
		{"valid mcq", KindMCQ, func(c *Candidate) {}, ""},
		{"empty question", KindMCQ, func(c *Candidate) { c.Choice.Question = "" }, "structural"},
		{"long question", KindMCQ, func(c *Candidate) { c.Choice.Question = strings.Repeat("x", maxQuestionLen+1) }, "structural"},
		{"bad difficulty", KindMCQ, func(c *Candidate) { c.Difficulty = "Expert" }, "structural"},
		{"long explanation", KindInterview, func(c *Candidate) { c.Explanation = strings.Repeat("x", maxExplanationLen+1) }, "structural"},
		{"empty option", KindMCQ, func(c *Candidate) { c.Choice.Options.C = "" }, "options"},
		{"duplicate option", KindInterview, func(c *Candidate) { c.Choice.Options.D = "ONE" }, "options"},
		{"missing answer", KindMCQ, func(c *Candidate) { c.Answer = "" }, "answer"},
		{"answer out of range", KindMCQ, func(c *Candidate) { c.Answer = "E" }, "answer"},
		{"multi-letter answer", KindMCQ, func(c *Candidate) { c.Answer = "AB" }, "answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := choiceCandidate("What is 2+2?", Easy)
			tt.mutate(&c)
			verr := runValidators(validators, &c, tt.kind)
			assertValidation(t, verr, tt.validator)
		})
	}
}

func TestValidators_Coding(t *testing.T) {
	validators := DefaultConfig().Validators

	tests := []struct {
		name      string
		mutate    func(c *Candidate)
		validator string
	}{
		{"valid", func(c *Candidate) {}, ""},
		{"no title", func(c *Candidate) { c.Coding.Title = "" }, "structural"},
		{"no statement", func(c *Candidate) { c.Coding.Statement = "" }, "structural"},
		{"no formats", func(c *Candidate) { c.Coding.InputFormat = "" }, "structural"},
		{"misaligned outputs", func(c *Candidate) { c.ExpectedOutputs = nil }, "answer"},
		{"no examples", func(c *Candidate) { c.Coding.Examples = nil }, "test-cases"},
		{"no tests", func(c *Candidate) { c.Coding.TestInputs = nil; c.ExpectedOutputs = nil }, "test-cases"},
		{"blank expected output", func(c *Candidate) { c.ExpectedOutputs = []string{"  "} }, "test-cases"},
		{"too many tests", func(c *Candidate) {
			c.Coding.TestInputs = make([]string, maxTestCases+1)
			c.ExpectedOutputs = make([]string, maxTestCases+1)
		}, "test-cases"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCoding()
			tt.mutate(c)
			assertValidation(t, runValidators(validators, c, KindCoding), tt.validator)
		})
	}
}

func assertValidation(t *testing.T, verr *ValidationError, want string) {
	t.Helper()
	if want == "" {
		if verr != nil {
			t.Fatalf("expected pass, got %v", verr)
		}
		return
	}
	if verr == nil {
		t.Fatalf("expected %s failure, got pass", want)
	}
	if verr.Validator != want {
		t.Fatalf("expected %s failure, got %v", want, verr)
	}
	if !verr.Retryable {
		t.Errorf("expected retryable error")
	}
}
