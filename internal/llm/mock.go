package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// MockResponse is one scripted step of a MockProvider: either a reply
// body or an error.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockItems scripts a batch reply holding the given items under "items".
func MockItems(items ...any) MockResponse {
	b, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		return MockResponse{Err: err}
	}
	return MockResponse{Content: b}
}

// MockText scripts a free-text reply, such as prose from a model that
// ignored the output format.
func MockText(text string) MockResponse {
	return MockResponse{Content: json.RawMessage(text)}
}

// MockRateLimited scripts n consecutive 429s.
func MockRateLimited(n int, retryAfter time.Duration) []MockResponse {
	steps := make([]MockResponse, n)
	for i := range steps {
		steps[i] = MockResponse{Err: &ErrRateLimit{RetryAfter: retryAfter, Err: errors.New("429 too many requests")}}
	}
	return steps
}

// MockQuotaExhausted scripts an out-of-credit reply.
func MockQuotaExhausted() MockResponse {
	return MockResponse{Err: &ErrQuotaExhausted{Err: errors.New("insufficient_quota")}}
}

// MockUnavailable scripts a transport failure.
func MockUnavailable() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("connection refused")}}
}

// MockProvider is a scripted Provider for tests. Steps are consumed in
// order; once the script runs out the Repeat step is served, or
// ErrProviderUnavailable when none is set. Replies go through the same
// schema check as real vendors.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	repeat *MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

// Then appends steps to the script.
func (m *MockProvider) Then(steps ...MockResponse) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, steps...)
	return m
}

// Repeat sets the step served after the script is exhausted.
func (m *MockProvider) Repeat(step MockResponse) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repeat = &step
	return m
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	var step MockResponse
	switch {
	case len(m.script) > 0:
		step = m.script[0]
		m.script = m.script[1:]
	case m.repeat != nil:
		step = *m.repeat
	default:
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{Err: errors.New("mock script exhausted")}
	}
	m.mu.Unlock()

	if step.Err != nil {
		return nil, step.Err
	}
	resp, err := settle(req, step.Content, "end")
	if err != nil {
		return nil, err
	}
	resp.Usage = step.Usage
	resp.Model = "mock"
	return resp, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
