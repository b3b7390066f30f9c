// Package config loads qbank settings from defaults, an optional YAML file
// and QBANK_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/llm"
	"github.com/abhisek/qbank/internal/store"
)

// Config is the full application configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	DB     DBConfig     `yaml:"db"`
	Server ServerConfig `yaml:"server"`
	Bank   BankConfig   `yaml:"bank"`
	LLM    LLMConfig    `yaml:"llm"`
}

type LogConfig struct {
	Mode  string `yaml:"mode"` // "dev" or "prod"
	Level string `yaml:"level"`
}

type DBConfig struct {
	Driver string `yaml:"driver"`
	// DSN is a file path for sqlite or a connection URL for postgres.
	// Empty means the default sqlite path.
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// BankConfig holds the tunables of the sampler and seeder. Zero values
// fall back to bank defaults.
type BankConfig struct {
	BatchSize       int           `yaml:"batch_size"`
	MaxEmptyBatches int           `yaml:"max_empty_batches"`
	MinCallSpacing  time.Duration `yaml:"min_call_spacing"`
	MaxTokens       int           `yaml:"max_tokens"`
	Temperature     float64       `yaml:"temperature"`
	MaxSeedTarget   int           `yaml:"max_seed_target"`
}

// LLMConfig overrides the provider selection. API keys normally come from
// the environment; APIKey exists for local files only.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Mode: "dev", Level: "info"},
		DB:  DBConfig{Driver: store.DriverSQLite},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			RequestTimeout: 5 * time.Minute,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		if err := decode(f, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("QBANK_LOG_MODE"); v != "" {
		c.Log.Mode = v
	}
	if v := os.Getenv("QBANK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("QBANK_DB_DRIVER"); v != "" {
		c.DB.Driver = v
	}
	if v := os.Getenv("QBANK_DB"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("QBANK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("QBANK_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("QBANK_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QBANK_BATCH_SIZE: %w", err)
		}
		c.Bank.BatchSize = n
	}
	if v := os.Getenv("QBANK_MIN_CALL_SPACING"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("QBANK_MIN_CALL_SPACING: %w", err)
		}
		c.Bank.MinCallSpacing = d
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DB.Driver) {
	case "", store.DriverSQLite, "sqlite3", store.DriverPostgres, "postgresql", "pgx", "pg":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	switch c.Log.Mode {
	case "", "dev", "prod":
	default:
		return fmt.Errorf("log mode must be dev or prod, got %q", c.Log.Mode)
	}
	if c.Bank.BatchSize < 0 || c.Bank.MaxEmptyBatches < 0 || c.Bank.MaxTokens < 0 {
		return errors.New("bank settings must not be negative")
	}
	if c.Bank.Temperature < 0 || c.Bank.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Bank.Temperature)
	}
	return nil
}

// BankConfig returns bank settings with unset fields taken from
// bank.DefaultConfig.
func (c *Config) BankConfig() bank.Config {
	bc := bank.DefaultConfig()
	if c.Bank.BatchSize > 0 {
		bc.BatchSize = c.Bank.BatchSize
	}
	if c.Bank.MaxEmptyBatches > 0 {
		bc.MaxEmptyBatches = c.Bank.MaxEmptyBatches
	}
	if c.Bank.MinCallSpacing > 0 {
		bc.MinCallSpacing = c.Bank.MinCallSpacing
	}
	if c.Bank.MaxTokens > 0 {
		bc.MaxTokens = c.Bank.MaxTokens
	}
	if c.Bank.Temperature > 0 {
		bc.Temperature = c.Bank.Temperature
	}
	if c.Bank.MaxSeedTarget > 0 {
		bc.MaxSeedTarget = c.Bank.MaxSeedTarget
	}
	return bc
}

// LLMConfig layers the file overrides on llm defaults and then applies the
// QBANK_* LLM variables. When the result has no usable key, the standard
// provider key variables are checked.
func (c *Config) LLMConfig() llm.Config {
	lc := llm.DefaultConfig()
	if c.LLM.Provider != "" {
		lc.Provider = c.LLM.Provider
	}
	if c.LLM.Timeout > 0 {
		lc.Timeout = c.LLM.Timeout
	}
	if c.LLM.MaxAttempts > 0 {
		lc.Retry.MaxAttempts = c.LLM.MaxAttempts
	}

	switch lc.Provider {
	case "anthropic":
		setIf(&lc.Anthropic.Model, c.LLM.Model)
		setIf(&lc.Anthropic.APIKey, c.LLM.APIKey)
	case "openai":
		setIf(&lc.OpenAI.Model, c.LLM.Model)
		setIf(&lc.OpenAI.APIKey, c.LLM.APIKey)
		setIf(&lc.OpenAI.BaseURL, c.LLM.BaseURL)
	case "gemini":
		setIf(&lc.Gemini.Model, c.LLM.Model)
		setIf(&lc.Gemini.APIKey, c.LLM.APIKey)
	case "openrouter":
		setIf(&lc.OpenRouter.Model, c.LLM.Model)
		setIf(&lc.OpenRouter.APIKey, c.LLM.APIKey)
		setIf(&lc.OpenRouter.BaseURL, c.LLM.BaseURL)
	}

	lc = llm.ApplyEnv(lc)
	if lc.Validate() != nil {
		if discovered, ok := llm.DiscoverConfig(); ok {
			discovered.Timeout = lc.Timeout
			discovered.Retry = lc.Retry
			return discovered
		}
	}
	return lc
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
