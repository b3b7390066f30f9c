package bank

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/qbank/internal/store"
)

// Item is an item as returned to callers. It never carries the answer key
// or the explanation.
type Item struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Domain     string          `json:"domain"`
	Difficulty Difficulty      `json:"difficulty"`
	Content    json.RawMessage `json:"content"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Options holds the four labeled choices of a choice item.
type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// Get returns the option text for label A-D.
func (o Options) Get(label string) string {
	switch label {
	case "A":
		return o.A
	case "B":
		return o.B
	case "C":
		return o.C
	case "D":
		return o.D
	}
	return ""
}

func (o Options) list() []string {
	return []string{o.A, o.B, o.C, o.D}
}

// ChoiceBody is the public content of an MCQ or interview item.
type ChoiceBody struct {
	Question string  `json:"question"`
	Options  Options `json:"options"`
	Topic    string  `json:"topic,omitempty"`
}

// ChoiceKey is the answer key of an MCQ or interview item.
type ChoiceKey struct {
	CorrectOption string `json:"correct_option"`
}

// Example is one worked input/output pair of a coding problem.
type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// CodingBody is the public content of a coding problem.
type CodingBody struct {
	Title        string    `json:"title"`
	Statement    string    `json:"statement"`
	InputFormat  string    `json:"input_format"`
	OutputFormat string    `json:"output_format"`
	Constraints  []string  `json:"constraints"`
	Examples     []Example `json:"examples"`
	TestInputs   []string  `json:"test_inputs"`
}

// CodingKey is the answer key of a coding problem, aligned with TestInputs.
type CodingKey struct {
	ExpectedOutputs []string `json:"expected_outputs"`
}

// Candidate is one normalized generator item awaiting validation and
// insertion. Exactly one of Choice and Coding is set.
type Candidate struct {
	Difficulty  Difficulty
	Explanation string

	Choice *ChoiceBody
	Answer string // correct option label for choice items

	Coding          *CodingBody
	ExpectedOutputs []string
}

// PromptText returns the text used for de-duplication.
func (c *Candidate) PromptText() string {
	switch {
	case c.Choice != nil:
		return c.Choice.Question
	case c.Coding != nil:
		return c.Coding.Title
	}
	return ""
}

// toRecord encodes c as a store row.
func (c *Candidate) toRecord(id, domain string, created time.Time) (store.Item, error) {
	var body, key any
	switch {
	case c.Choice != nil:
		body, key = c.Choice, ChoiceKey{CorrectOption: c.Answer}
	case c.Coding != nil:
		body, key = c.Coding, CodingKey{ExpectedOutputs: c.ExpectedOutputs}
	default:
		return store.Item{}, fmt.Errorf("candidate has no content")
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return store.Item{}, fmt.Errorf("encode body: %w", err)
	}
	keyJSON, err := json.Marshal(key)
	if err != nil {
		return store.Item{}, fmt.Errorf("encode answer key: %w", err)
	}
	return store.Item{
		ID:          id,
		Domain:      domain,
		Difficulty:  string(c.Difficulty),
		PromptText:  c.PromptText(),
		Body:        string(bodyJSON),
		AnswerKey:   string(keyJSON),
		Explanation: c.Explanation,
		CreatedAt:   created,
	}, nil
}

// publicItem converts a row read with store.PublicFields.
func publicItem(kind Kind, rec store.Item) Item {
	return Item{
		ID:         rec.ID,
		Kind:       kind.Name,
		Domain:     rec.Domain,
		Difficulty: coerceDifficulty(rec.Difficulty, Medium),
		Content:    json.RawMessage(rec.Body),
		CreatedAt:  rec.CreatedAt,
	}
}
