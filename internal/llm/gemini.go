package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.0-pro",
}

// GeminiProvider talks to the Gemini API with a response schema for
// structured requests.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: resolveModel(cfg.Model, geminiModels)}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	contents := make([]*genai.Content, len(req.Messages))
	for i, m := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents[i] = genai.NewContentFromText(m.Content, role)
	}

	out, err := p.client.Models.GenerateContent(ctx, p.model, contents, geminiConfig(req))
	if err != nil {
		return nil, mapGeminiError(err)
	}

	stop := "end"
	if len(out.Candidates) > 0 && out.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		stop = "max_tokens"
	}
	resp, err := settle(req, json.RawMessage(out.Text()), stop)
	if err != nil {
		return nil, err
	}
	resp.Model = p.model
	if u := out.UsageMetadata; u != nil {
		resp.Usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return resp, nil
}

func (p *GeminiProvider) ModelID() string { return p.model }

func geminiConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = geminiSchema(req.Schema.Definition)
	}
	return cfg
}

// geminiSchema converts the JSON Schema subset used for item batches into
// Gemini's schema type. additionalProperties has no Gemini equivalent and is
// dropped; the required order doubles as the property order so items come
// back with their fields in a stable sequence.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{}
	if t, ok := def["type"].(string); ok {
		s.Type = geminiTypes[t]
		if s.Type == "" {
			s.Type = genai.TypeString
		}
	}
	s.Description, _ = def["description"].(string)

	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if sub, ok := v.(map[string]any); ok {
				s.Properties[name] = geminiSchema(sub)
			}
		}
	}
	s.Required = stringList(def["required"])
	if len(s.Required) > 0 && len(s.Required) == len(s.Properties) {
		s.PropertyOrdering = s.Required
	}
	s.Enum = stringList(def["enum"])

	if items, ok := def["items"].(map[string]any); ok {
		s.Items = geminiSchema(items)
	}
	if n, ok := def["minItems"].(int); ok {
		s.MinItems = genai.Ptr(int64(n))
	}
	if n, ok := def["maxItems"].(int); ok {
		s.MaxItems = genai.Ptr(int64(n))
	}
	return s
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

func stringList(v any) []string {
	raw, _ := v.([]any)
	var out []string
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// mapGeminiError classifies Gemini failures. The SDK returns APIError by
// value; quota and throttling both arrive as 429 RESOURCE_EXHAUSTED, and
// only a billing message marks the former.
func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Message)
		if apiErr.Code == 429 && strings.Contains(msg, "billing") {
			return &ErrQuotaExhausted{Err: err}
		}
		return mapHTTPStatus(apiErr.Code, err)
	}
	if strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
