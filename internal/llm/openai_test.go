package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newChatProvider("test-key", server.URL+"/v1", "gpt-4o-mini", true)
}

// writeChatCompletion answers with a single choice carrying content.
func writeChatCompletion(w http.ResponseWriter, content, finish string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	})
}

func writeOpenAIError(w http.ResponseWriter, status int, typ, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"type": typ, "code": code, "message": message},
	})
}

func TestOpenAIProvider_BatchReply(t *testing.T) {
	var strict bool
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ResponseFormat struct {
				JSONSchema struct {
					Strict bool `json:"strict"`
				} `json:"json_schema"`
			} `json:"response_format"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		strict = body.ResponseFormat.JSONSchema.Strict
		writeChatCompletion(w, `{"items":[
			{"question":"What does CSS stand for?","difficulty":"Easy"},
			{"question":"What does the <nav> element mark up?","difficulty":"easy"}
		]}`, "stop")
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You write assessment items.",
		Messages:  []Message{{Role: RoleUser, Content: "Generate two items."}},
		Schema:    questionBatch(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strict {
		t.Fatal("expected strict schema mode against OpenAI")
	}
	if got := len(itemsOf(t, resp.Content)); got != 2 {
		t.Fatalf("a lower-case difficulty must not cost the item, got %d items", got)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
}

func TestOpenAIProvider_FreeText(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeChatCompletion(w, "```json\n[{\"question\":\"q\"}]\n```", "stop")
	})

	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "JSON only."}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != "```json\n[{\"question\":\"q\"}]\n```" {
		t.Fatalf("free text must be returned as-is, got %s", resp.Content)
	}
}

func TestOpenAIProvider_TruncatedBatch(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeChatCompletion(w, `{"items":[{"question":"What is a clos`, "length")
	})

	_, err := p.Generate(context.Background(), Request{Schema: questionBatch(), MaxTokens: 16})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		typ    string
		code   string
		check  func(error) bool
	}{
		{"rate limited", http.StatusTooManyRequests, "tokens", "rate_limit_exceeded", isType[*ErrRateLimit]},
		{"insufficient quota", http.StatusTooManyRequests, "insufficient_quota", "insufficient_quota", isType[*ErrQuotaExhausted]},
		{"payment required", http.StatusPaymentRequired, "billing", "", isType[*ErrQuotaExhausted]},
		{"bad key", http.StatusUnauthorized, "invalid_request_error", "invalid_api_key", isType[*ErrRequestRejected]},
		{"no access", http.StatusForbidden, "invalid_request_error", "", isType[*ErrRequestRejected]},
		{"unknown model", http.StatusNotFound, "invalid_request_error", "model_not_found", isType[*ErrRequestRejected]},
		{"server error", http.StatusInternalServerError, "server_error", "", isType[*ErrProviderUnavailable]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
				writeOpenAIError(w, tt.status, tt.typ, tt.code, tt.name)
			})
			_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}})
			if !tt.check(err) {
				t.Fatalf("unexpected mapping: %T (%v)", err, err)
			}
		})
	}
}

func TestOpenAIProvider_RejectedKeyIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeOpenAIError(w, http.StatusUnauthorized, "invalid_request_error", "invalid_api_key", "Incorrect API key provided")
	})
	cfg := retryConfig()
	cfg.MaxAttempts = 5

	_, err := WithRetry(p, cfg).Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}})
	if !isType[*ErrRequestRejected](err) {
		t.Fatalf("expected ErrRequestRejected, got: %T (%v)", err, err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected 1 HTTP call, got %d", n)
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o", BaseURL: "http://localhost:11434/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4o" || !p.strict {
		t.Fatalf("unexpected provider: model %q strict %v", p.ModelID(), p.strict)
	}
}
