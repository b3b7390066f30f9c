package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var errNoJSON = errors.New("no JSON value found in generator output")

var fenceRe = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// wrapperKeys are object keys under which generators nest the item array.
var wrapperKeys = []string{"items", "questions", "problems", "data", "results"}

// extractObjects pulls candidate objects out of untrusted generator output.
// It accepts a bare array, a single object, or an object wrapping an array,
// optionally surrounded by prose or code fences.
func extractObjects(content []byte) ([]map[string]any, error) {
	text := strings.TrimSpace(string(content))

	// Unstructured responses may arrive as a JSON string.
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal([]byte(text), &s); err == nil {
			text = strings.TrimSpace(s)
		}
	}

	var v any
	if !decodeJSON(text, &v) && !decodeFenced(text, &v) && !decodeSpan(text, &v) {
		return nil, errNoJSON
	}

	objs := collectObjects(v)
	if len(objs) == 0 {
		return nil, fmt.Errorf("generator output holds no item objects")
	}
	return objs, nil
}

func decodeJSON(s string, v *any) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return json.Unmarshal([]byte(s), v) == nil
}

func decodeFenced(text string, v *any) bool {
	m := fenceRe.FindStringSubmatch(text)
	return m != nil && decodeJSON(m[1], v)
}

func decodeSpan(text string, v *any) bool {
	span, ok := outerJSONSpan(text)
	return ok && decodeJSON(span, v)
}

// outerJSONSpan returns the text from the first '[' or '{' to the last
// matching closer.
func outerJSONSpan(text string) (string, bool) {
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return "", false
	}
	closer := "]"
	if text[start] == '{' {
		closer = "}"
	}
	end := strings.LastIndex(text, closer)
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func collectObjects(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		var out []map[string]any
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]any:
		for _, k := range wrapperKeys {
			if arr, ok := t[k].([]any); ok {
				return collectObjects(arr)
			}
		}
		return []map[string]any{t}
	}
	return nil
}

// str returns the first non-empty string value among keys.
func str(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

// strList returns a string slice from the first array value among keys.
// A lone string becomes a one-element slice.
func strList(obj map[string]any, keys ...string) []string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case []any:
			out := make([]string, 0, len(v))
			for _, e := range v {
				switch s := e.(type) {
				case string:
					out = append(out, s)
				case float64, bool:
					out = append(out, fmt.Sprint(s))
				}
			}
			return out
		case string:
			if strings.TrimSpace(v) != "" {
				return []string{v}
			}
		}
	}
	return nil
}

var labels = []string{"A", "B", "C", "D"}

var labelPrefixRe = regexp.MustCompile(`^\(?([A-Da-d])[\).:\-]\s+`)

// parseChoice normalizes one MCQ or interview object.
func parseChoice(obj map[string]any, fallback Difficulty, withTopic bool) *Candidate {
	body := &ChoiceBody{
		Question: str(obj, "question", "question_text", "questionText", "prompt", "text"),
		Options:  mapOptions(obj),
	}
	if withTopic {
		body.Topic = str(obj, "topic", "category", "subtopic")
	}
	answer := str(obj, "correct_option", "correct_answer", "correctAnswer", "correctOption", "answer")
	return &Candidate{
		Difficulty:  coerceDifficulty(str(obj, "difficulty", "level"), fallback),
		Explanation: str(obj, "explanation", "rationale"),
		Choice:      body,
		Answer:      reconcileAnswer(answer, body.Options),
	}
}

// mapOptions maps the option shapes generators use onto A-D: an array,
// an object keyed by label, or option_a..option_d fields.
func mapOptions(obj map[string]any) Options {
	var texts [4]string

	raw := obj["options"]
	if raw == nil {
		raw = obj["choices"]
	}
	switch v := raw.(type) {
	case []any:
		if len(v) == 4 {
			for i, e := range v {
				switch o := e.(type) {
				case string:
					texts[i] = stripLabel(o)
				case map[string]any:
					texts[i] = str(o, "text", "option", "value")
				}
			}
		}
	case map[string]any:
		for i, l := range labels {
			texts[i] = stripLabel(str(v, l, strings.ToLower(l), "option_"+strings.ToLower(l)))
		}
	}

	for i, l := range labels {
		if texts[i] == "" {
			texts[i] = str(obj, "option_"+strings.ToLower(l), "option"+l, "option_"+l)
		}
	}
	return Options{A: texts[0], B: texts[1], C: texts[2], D: texts[3]}
}

func stripLabel(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(labelPrefixRe.ReplaceAllString(s, ""))
}

var answerLabelRe = regexp.MustCompile(`^\(?([A-Da-d])[\).:\-](?:\s|$)`)

var optionWordRe = regexp.MustCompile(`(?i)^option\s*\(?([a-d])\)?$`)

// reconcileAnswer turns a letter, "Option B", "B) text" or the literal
// option text into a label. Returns "" when no label can be derived.
func reconcileAnswer(answer string, opts Options) string {
	a := strings.TrimSpace(answer)
	if a == "" {
		return ""
	}
	if len(a) == 1 {
		if l := strings.ToUpper(a); strings.Contains("ABCD", l) {
			return l
		}
	}
	if m := optionWordRe.FindStringSubmatch(a); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := answerLabelRe.FindStringSubmatch(a); m != nil {
		return strings.ToUpper(m[1])
	}
	for i, text := range opts.list() {
		if text != "" && strings.EqualFold(strings.TrimSpace(text), a) {
			return labels[i]
		}
	}
	return ""
}

// parseCoding normalizes one coding problem object.
func parseCoding(obj map[string]any, fallback Difficulty) *Candidate {
	body := &CodingBody{
		Title:        str(obj, "title", "name"),
		Statement:    str(obj, "statement", "description", "problem_statement"),
		InputFormat:  str(obj, "input_format", "inputFormat"),
		OutputFormat: str(obj, "output_format", "outputFormat"),
		Constraints:  strList(obj, "constraints"),
	}
	if body.Constraints == nil {
		body.Constraints = []string{}
	}

	body.Examples = []Example{}
	if arr, ok := obj["examples"].([]any); ok {
		for _, e := range arr {
			if m, ok := e.(map[string]any); ok {
				body.Examples = append(body.Examples, Example{
					Input:  str(m, "input"),
					Output: str(m, "output", "expected_output"),
				})
			}
		}
	}

	var expected []string
	if arr, ok := obj["test_cases"].([]any); ok {
		for _, e := range arr {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			body.TestInputs = append(body.TestInputs, rawStr(m, "input"))
			expected = append(expected, rawStr(m, "expected_output", "output", "expected"))
		}
	} else {
		body.TestInputs = strList(obj, "test_inputs")
		expected = strList(obj, "expected_outputs")
	}

	return &Candidate{
		Difficulty:      coerceDifficulty(str(obj, "difficulty", "level"), fallback),
		Explanation:     str(obj, "explanation", "solution_outline"),
		Coding:          body,
		ExpectedOutputs: expected,
	}
}

// rawStr is str without trimming, for test data where whitespace matters
// inside the value.
func rawStr(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			return v
		case float64, bool:
			return fmt.Sprint(v)
		}
	}
	return ""
}
