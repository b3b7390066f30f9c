package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config selects the item generator backend and tunes the decorators
// wrapped around it.
type Config struct {
	Provider string // anthropic, openai, gemini, openrouter or mock

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including its retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey, Model string
}

type OpenAIConfig struct {
	APIKey, Model string
	BaseURL       string // any OpenAI-compatible endpoint
}

type GeminiConfig struct {
	APIKey, Model string
}

type OpenRouterConfig struct {
	APIKey, Model string
	BaseURL       string // defaults to the public OpenRouter API
}

// RetryConfig shapes the exponential backoff of RetryProvider.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig uses Anthropic with five attempts backing off from 1s to 16s
// and a 90s budget per call.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 5,
			InitialWait: time.Second,
			MaxWait:     16 * time.Second,
			Multiplier:  2,
		},
		Timeout: 90 * time.Second,
	}
}

// vendor ties a provider name to its key and model fields.
type vendor struct {
	name   string
	apiKey func(*Config) *string
	model  func(*Config) *string
}

// vendors is also the discovery order.
var vendors = []vendor{
	{"gemini", func(c *Config) *string { return &c.Gemini.APIKey }, func(c *Config) *string { return &c.Gemini.Model }},
	{"openai", func(c *Config) *string { return &c.OpenAI.APIKey }, func(c *Config) *string { return &c.OpenAI.Model }},
	{"anthropic", func(c *Config) *string { return &c.Anthropic.APIKey }, func(c *Config) *string { return &c.Anthropic.Model }},
	{"openrouter", func(c *Config) *string { return &c.OpenRouter.APIKey }, func(c *Config) *string { return &c.OpenRouter.Model }},
}

func lookupVendor(name string) (vendor, bool) {
	for _, v := range vendors {
		if v.name == name {
			return v, true
		}
	}
	return vendor{}, false
}

// envName returns QBANK_<VENDOR>_<suffix>.
func (v vendor) envName(suffix string) string {
	return "QBANK_" + strings.ToUpper(v.name) + "_" + suffix
}

func setFromEnv(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

// ConfigFromEnv is DefaultConfig with QBANK_* overrides applied.
func ConfigFromEnv() Config {
	return ApplyEnv(DefaultConfig())
}

// ApplyEnv overrides cfg with QBANK_LLM_PROVIDER and the per-vendor
// QBANK_<VENDOR>_API_KEY / _MODEL variables, plus QBANK_OPENAI_BASE_URL.
func ApplyEnv(cfg Config) Config {
	setFromEnv(&cfg.Provider, "QBANK_LLM_PROVIDER")
	for _, v := range vendors {
		setFromEnv(v.apiKey(&cfg), v.envName("API_KEY"))
		setFromEnv(v.model(&cfg), v.envName("MODEL"))
	}
	setFromEnv(&cfg.OpenAI.BaseURL, "QBANK_OPENAI_BASE_URL")
	return cfg
}

// DiscoverConfig picks the first vendor whose conventional key variable
// (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY)
// is set.
func DiscoverConfig() (Config, bool) {
	for _, v := range vendors {
		key := os.Getenv(strings.ToUpper(v.name) + "_API_KEY")
		if key == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = v.name
		*v.apiKey(&cfg) = key
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected provider has an API key. The mock
// provider needs none.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	v, ok := lookupVendor(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if *v.apiKey(&c) == "" {
		return fmt.Errorf("%s is required for the %s provider", v.envName("API_KEY"), v.name)
	}
	return nil
}
