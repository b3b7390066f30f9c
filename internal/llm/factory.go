package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/qbank/internal/logger"
	"github.com/abhisek/qbank/internal/store"
)

// generatorBackends builds the undecorated provider for each vendor.
var generatorBackends = map[string]func(context.Context, Config) (Provider, error){
	"anthropic": func(_ context.Context, c Config) (Provider, error) { return NewAnthropicProvider(c.Anthropic) },
	"openai":    func(_ context.Context, c Config) (Provider, error) { return NewOpenAIProvider(c.OpenAI) },
	"gemini":    func(ctx context.Context, c Config) (Provider, error) { return NewGeminiProvider(ctx, c.Gemini) },
	"openrouter": func(_ context.Context, c Config) (Provider, error) {
		return NewOpenRouterProvider(c.OpenRouter)
	},
}

// NewProvider builds the item generator backend named by cfg.Provider.
// Vendor backends come back as timeout(retry(logging(vendor))); the mock
// backend is returned bare with an empty script.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}

	build, ok := generatorBackends[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	base, err := build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, events, log)
	p = WithRetry(p, cfg.Retry)
	return WithTimeout(p, cfg.Timeout), nil
}

// NewProviderFromEnv is NewProvider over ConfigFromEnv, falling back to
// DiscoverConfig when the selected vendor has no key.
func NewProviderFromEnv(ctx context.Context, events store.EventRepo, log *logger.Logger) (Provider, error) {
	cfg := ConfigFromEnv()
	if cfg.Validate() != nil {
		if discovered, ok := DiscoverConfig(); ok {
			cfg = discovered
		}
	}
	return NewProvider(ctx, cfg, events, log)
}
