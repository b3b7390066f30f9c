package llm

import (
	"context"
	"encoding/json"
)

// Provider produces one completion per call. Implementations translate a
// Request into a vendor API call and map vendor failures onto the typed
// errors in errors.go.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single-turn generation request.
type Request struct {
	System   string
	Messages []Message

	// Schema asks the vendor for structured output. Nil means free text,
	// which is returned as-is in Response.Content.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema describes the JSON the vendor should produce.
//
// Definition is sent to the vendor as the structured output contract. When
// Batch is set the reply is treated as a list of independent items and is
// checked item by item against Batch.Item rather than as one document, so a
// single bad item costs that item and not the whole reply.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
	Batch       *Batch
}

// Batch names the array holding the items and the minimal shape each item
// must have to be kept. Item is usually looser than the item schema inside
// Definition; the caller normalizes what survives.
type Batch struct {
	Key  string
	Item map[string]any
}

type Response struct {
	// Content holds the reply. For batch schemas it is rewritten to
	// {"<key>": [kept items...]}.
	Content json.RawMessage

	// Dropped lists the batch items that failed Batch.Item.
	Dropped []DroppedItem

	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// DroppedItem is one batch element rejected by the per-item check.
type DroppedItem struct {
	Index  int
	Reason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
