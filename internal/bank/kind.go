package bank

import (
	"fmt"
	"strings"

	"github.com/abhisek/qbank/internal/llm"
	"github.com/abhisek/qbank/internal/store"
)

// Kind describes one item kind: where its items live, how to ask the
// generator for them, and how to normalize what comes back.
type Kind struct {
	// Name is the kind identifier used by the CLI and HTTP API.
	Name string

	// Collection is the backing table.
	Collection store.Collection

	// Purpose tags LLM request events.
	Purpose string

	// Noun is the plural item noun used in prompts.
	Noun string

	// Schema is the structured output schema for one batch.
	Schema *llm.Schema

	system     string
	strictKeys string
	choice     bool
	parse      func(obj map[string]any, fallback Difficulty) *Candidate
}

var (
	KindMCQ = Kind{
		Name:       "mcq",
		Collection: store.CollectionMCQ,
		Purpose:    "mcq-gen",
		Noun:       "multiple-choice questions",
		Schema:     mcqBatchSchema,
		system:     fmt.Sprintf(choiceSystemPrompt, "questions"),
		strictKeys: `"question", "options" (an object with keys "A", "B", "C", "D"), "correct_option", "difficulty", "explanation"`,
		choice:     true,
		parse: func(obj map[string]any, fallback Difficulty) *Candidate {
			return parseChoice(obj, fallback, false)
		},
	}

	KindInterview = Kind{
		Name:       "interview",
		Collection: store.CollectionInterview,
		Purpose:    "interview-gen",
		Noun:       "interview questions",
		Schema:     interviewBatchSchema,
		system:     fmt.Sprintf(choiceSystemPrompt, "technical interview questions"),
		strictKeys: `"question", "options" (an object with keys "A", "B", "C", "D"), "correct_option", "topic", "difficulty", "explanation"`,
		choice:     true,
		parse: func(obj map[string]any, fallback Difficulty) *Candidate {
			return parseChoice(obj, fallback, true)
		},
	}

	KindCoding = Kind{
		Name:       "coding",
		Collection: store.CollectionCoding,
		Purpose:    "coding-gen",
		Noun:       "coding problems",
		Schema:     codingBatchSchema,
		system:     codingSystemPrompt,
		strictKeys: `"title", "statement", "input_format", "output_format", "constraints" (array of strings), "examples" (array of {"input", "output"}), "test_cases" (array of {"input", "expected_output"}), "difficulty", "explanation"`,
		parse:      parseCoding,
	}
)

// Kinds returns every supported kind.
func Kinds() []Kind {
	return []Kind{KindMCQ, KindInterview, KindCoding}
}

// LookupKind finds a kind by name, case-insensitively.
func LookupKind(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if strings.EqualFold(k.Name, name) {
			return k, true
		}
	}
	return Kind{}, false
}

// IsChoice reports whether items of this kind are answered by option label.
func (k Kind) IsChoice() bool {
	return k.choice
}
