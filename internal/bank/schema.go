package bank

import "github.com/abhisek/qbank/internal/llm"

var difficultyProperty = map[string]any{
	"type":        "string",
	"enum":        []any{"Easy", "Medium", "Hard"},
	"description": "The difficulty tier the item was written for",
}

func choiceItemSchema(withTopic bool) map[string]any {
	props := map[string]any{
		"question": map[string]any{
			"type":        "string",
			"description": "The question text, self-contained",
		},
		"options": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"A": map[string]any{"type": "string"},
				"B": map[string]any{"type": "string"},
				"C": map[string]any{"type": "string"},
				"D": map[string]any{"type": "string"},
			},
			"required":             []any{"A", "B", "C", "D"},
			"additionalProperties": false,
			"description":          "Exactly four distinct answer options labeled A-D",
		},
		"correct_option": map[string]any{
			"type":        "string",
			"enum":        []any{"A", "B", "C", "D"},
			"description": "Label of the single correct option",
		},
		"difficulty": difficultyProperty,
		"explanation": map[string]any{
			"type":        "string",
			"description": "Why the correct option is right, shown after grading",
		},
	}
	required := []any{"question", "options", "correct_option", "difficulty", "explanation"}
	if withTopic {
		props["topic"] = map[string]any{
			"type":        "string",
			"description": "Short sub-topic label within the domain",
		}
		required = append(required, "topic")
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

var codingItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":         map[string]any{"type": "string", "description": "Short problem title"},
		"statement":     map[string]any{"type": "string", "description": "Full problem statement"},
		"input_format":  map[string]any{"type": "string"},
		"output_format": map[string]any{"type": "string"},
		"constraints": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"examples": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"input":  map[string]any{"type": "string"},
					"output": map[string]any{"type": "string"},
				},
				"required":             []any{"input", "output"},
				"additionalProperties": false,
			},
			"description": "One to three worked examples shown to the solver",
		},
		"test_cases": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"input":           map[string]any{"type": "string"},
					"expected_output": map[string]any{"type": "string"},
				},
				"required":             []any{"input", "expected_output"},
				"additionalProperties": false,
			},
			"description": "Hidden test cases used for grading",
		},
		"difficulty":  difficultyProperty,
		"explanation": map[string]any{"type": "string", "description": "Outline of the intended solution"},
	},
	"required":             []any{"title", "statement", "input_format", "output_format", "constraints", "examples", "test_cases", "difficulty", "explanation"},
	"additionalProperties": false,
}

// anyKey requires at least one of the given keys on an item object. The
// normalizer accepts the same aliases.
func anyKey(keys ...string) map[string]any {
	alts := make([]any, len(keys))
	for i, k := range keys {
		alts[i] = map[string]any{
			"required":   []any{k},
			"properties": map[string]any{k: map[string]any{"type": "string", "minLength": 1}},
		}
	}
	return map[string]any{"type": "object", "anyOf": alts}
}

// Per-item checks applied to each element of a reply. They only reject
// items with nothing to normalize; difficulty spelling, option shape and
// answer format are left to the normalizer and validators.
var (
	choiceItemCheck = anyKey("question", "question_text", "questionText", "prompt", "text")
	codingItemCheck = anyKey("title", "name", "statement", "description", "problem_statement")
)

// batchSchema wraps an item schema in an object with an "items" array,
// since structured output modes require an object at the root.
func batchSchema(name, description string, item, check map[string]any) *llm.Schema {
	return &llm.Schema{
		Name:        name,
		Description: description,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"items": map[string]any{
					"type":  "array",
					"items": item,
				},
			},
			"required":             []any{"items"},
			"additionalProperties": false,
		},
		Batch: &llm.Batch{Key: "items", Item: check},
	}
}

var (
	mcqBatchSchema       = batchSchema("mcq-batch", "A batch of multiple-choice questions", choiceItemSchema(false), choiceItemCheck)
	interviewBatchSchema = batchSchema("interview-batch", "A batch of multiple-choice interview questions", choiceItemSchema(true), choiceItemCheck)
	codingBatchSchema    = batchSchema("coding-batch", "A batch of coding problems with hidden test cases", codingItemSchema, codingItemCheck)
)
