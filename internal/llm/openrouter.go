package llm

import "fmt"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider routes through OpenRouter's OpenAI-compatible API.
// Many routed models do not honor strict schemas, so the schema is sent
// as a hint and the per-item check does the filtering.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenRouterBaseURL
	}
	return &OpenRouterProvider{OpenAIProvider: newChatProvider(cfg.APIKey, base, cfg.Model, false)}, nil
}
