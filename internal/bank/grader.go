package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/qbank/internal/store"
)

// Submission is a caller's answer to one item. Choice items use Answer;
// coding items use Outputs, one per test input.
type Submission struct {
	Answer  string   `json:"answer,omitempty"`
	Outputs []string `json:"outputs,omitempty"`
}

// GradeResult is the verdict on a submission, revealing the answer.
type GradeResult struct {
	ItemID        string `json:"item_id"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Passed        int    `json:"passed,omitempty"`
	Total         int    `json:"total,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// Grader checks submissions against stored answer keys. It is the only
// caller-facing component that reads answer keys.
type Grader struct {
	repos Repos
}

func NewGrader(repos Repos) *Grader {
	return &Grader{repos: repos}
}

// Grade scores sub against item id of kind.
func (g *Grader) Grade(ctx context.Context, kind Kind, id string, sub Submission) (*GradeResult, error) {
	rec, err := g.repos.Items(kind.Collection).Get(ctx, id, store.AllFields)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrItemNotFound, kind.Name, id)
	}

	res := &GradeResult{ItemID: id, Explanation: rec.Explanation}
	if kind.choice {
		var key ChoiceKey
		if err := json.Unmarshal([]byte(rec.AnswerKey), &key); err != nil {
			return nil, fmt.Errorf("decode answer key: %w", err)
		}
		var body ChoiceBody
		if err := json.Unmarshal([]byte(rec.Body), &body); err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		res.CorrectAnswer = key.CorrectOption
		res.Correct = reconcileAnswer(sub.Answer, body.Options) == key.CorrectOption
		res.Total = 1
		if res.Correct {
			res.Passed = 1
		}
		return res, nil
	}

	var key CodingKey
	if err := json.Unmarshal([]byte(rec.AnswerKey), &key); err != nil {
		return nil, fmt.Errorf("decode answer key: %w", err)
	}
	res.Total = len(key.ExpectedOutputs)
	for i, want := range key.ExpectedOutputs {
		if i < len(sub.Outputs) && sameOutput(sub.Outputs[i], want) {
			res.Passed++
		}
	}
	res.Correct = res.Total > 0 && res.Passed == res.Total
	return res, nil
}

// sameOutput compares program outputs line by line, ignoring trailing
// whitespace on each line and trailing blank lines.
func sameOutput(got, want string) bool {
	return normalizeOutput(got) == normalizeOutput(want)
}

func normalizeOutput(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
