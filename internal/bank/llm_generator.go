package bank

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/qbank/internal/llm"
	"github.com/abhisek/qbank/internal/logger"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// NewLLMGenerator creates a new LLMGenerator with the given provider and config.
func NewLLMGenerator(provider llm.Provider, cfg Config, log *logger.Logger) *LLMGenerator {
	if log == nil {
		log = logger.NewNop()
	}
	return &LLMGenerator{provider: provider, config: cfg.withDefaults(), log: log}
}

// Generate asks for one batch with structured output. If the output cannot
// be parsed it falls back once to a stricter JSON-only prompt without a
// schema before giving up on the batch.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) ([]Candidate, error) {
	ctx = llm.WithPurpose(ctx, input.Kind.Purpose)
	userMsg := buildUserMessage(input, g.config.MaxAvoidTexts)

	objs, err := g.call(ctx, llm.Request{
		System:      input.Kind.system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
		Schema:      input.Kind.Schema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if errors.Is(err, ErrMalformedOutput) {
		g.log.Debug("structured output unusable, retrying with strict prompt",
			"kind", input.Kind.Name, "domain", input.Domain, "difficulty", input.Difficulty, "error", err)
		objs, err = g.call(ctx, llm.Request{
			System:      strictSystemPrompt(input.Kind),
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: userMsg}},
			MaxTokens:   g.config.MaxTokens,
			Temperature: g.config.Temperature,
		})
	}
	if err != nil {
		return nil, err
	}

	cands := make([]Candidate, 0, len(objs))
	for _, obj := range objs {
		c := input.Kind.parse(obj, input.Difficulty)
		if verr := runValidators(g.config.Validators, c, input.Kind); verr != nil {
			g.log.Debug("dropped candidate", "kind", input.Kind.Name, "reason", verr.Error())
			continue
		}
		cands = append(cands, *c)
	}
	if rejected := len(objs) - len(cands); rejected > 0 {
		g.log.Debug("validation rejected candidates",
			"kind", input.Kind.Name, "domain", input.Domain, "rejected", rejected, "kept", len(cands))
	}
	return cands, nil
}

// call performs one paced provider call and extracts the item objects.
func (g *LLMGenerator) call(ctx context.Context, req llm.Request) ([]map[string]any, error) {
	if err := waitTurn(ctx); err != nil {
		return nil, err
	}
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, classify(err)
	}
	for _, d := range resp.Dropped {
		g.log.Debug("generator item failed shape check", "index", d.Index, "reason", d.Reason)
	}
	objs, err := extractObjects(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	return objs, nil
}
