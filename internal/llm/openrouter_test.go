package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNewOpenRouterProvider_Defaults(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "meta-llama/llama-3.1-8b-instruct"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "meta-llama/llama-3.1-8b-instruct" {
		t.Fatalf("model names pass through unmapped, got %q", p.ModelID())
	}
	if p.strict {
		t.Fatal("routed models get the schema as a hint, not strict mode")
	}
}

func TestOpenRouterProvider_SendsNonStrictSchema(t *testing.T) {
	var got struct {
		Model          string `json:"model"`
		ResponseFormat struct {
			JSONSchema struct {
				Name   string `json:"name"`
				Strict bool   `json:"strict"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeChatCompletion(w, `{"items":[{"question":"Which Go keyword starts a goroutine?","difficulty":"Easy"},{"difficulty":"Hard"}]}`, "stop")
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "mistralai/mistral-small",
		BaseURL: server.URL + "/api/v1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Write two Go questions."}},
		Schema:    questionBatch(),
		MaxTokens: 512,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Model != "mistralai/mistral-small" || got.ResponseFormat.JSONSchema.Name != "question-batch-test" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.ResponseFormat.JSONSchema.Strict {
		t.Fatal("expected strict to be off")
	}
	if len(resp.Dropped) != 1 || resp.Dropped[0].Index != 1 {
		t.Fatalf("expected the question-less item dropped, got %+v", resp.Dropped)
	}
}
