package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

var openaiModels = map[string]string{
	"gpt-4o":      "gpt-4o",
	"gpt-4o-mini": "gpt-4o-mini",
}

// OpenAIProvider talks to the Chat Completions API or any compatible
// endpoint reachable through BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string

	// strict turns on strict JSON schema mode. Compatible gateways often
	// reject it, so they send the schema as a non-strict hint.
	strict bool
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	return newChatProvider(cfg.APIKey, cfg.BaseURL, resolveModel(cfg.Model, openaiModels), true), nil
}

func newChatProvider(key, baseURL, model string, strict bool) *OpenAIProvider {
	cc := openai.DefaultConfig(key)
	if baseURL != "" {
		cc.BaseURL = baseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cc), model: model, strict: strict}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq, err := p.chatRequest(req)
	if err != nil {
		return nil, err
	}

	out, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(out.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("reply has no choices")}
	}

	choice := out.Choices[0]
	stop := "end"
	if choice.FinishReason == openai.FinishReasonLength {
		stop = "max_tokens"
	}
	resp, err := settle(req, json.RawMessage(choice.Message.Content), stop)
	if err != nil {
		return nil, err
	}
	resp.Model = out.Model
	resp.Usage = Usage{
		InputTokens:  out.Usage.PromptTokens,
		OutputTokens: out.Usage.CompletionTokens,
		TotalTokens:  out.Usage.TotalTokens,
	}
	return resp, nil
}

func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) chatRequest(req Request) (openai.ChatCompletionRequest, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            msgs,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema == nil {
		return chatReq, nil
	}

	def, err := json.Marshal(req.Schema.Definition)
	if err != nil {
		return chatReq, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
	}
	chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:        req.Schema.Name,
			Description: req.Schema.Description,
			Schema:      json.RawMessage(def),
			Strict:      p.strict,
		},
	}
	return chatReq, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		// An exhausted balance arrives as a 429 carrying this code.
		if code, _ := apiErr.Code.(string); code == "insufficient_quota" {
			return &ErrQuotaExhausted{Err: err}
		}
		return mapHTTPStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return mapHTTPStatus(reqErr.HTTPStatusCode, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
