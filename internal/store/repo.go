package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int       // id > After
	Before int       // id < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Item is one persisted row of an item collection. Body and AnswerKey hold
// kind-specific JSON documents.
type Item struct {
	ID          string
	Domain      string
	Difficulty  string
	PromptText  string
	Body        string
	AnswerKey   string
	Explanation string
	CreatedAt   time.Time
}

// ItemFilter narrows item queries. Domain is matched case-sensitively;
// an empty Difficulty matches every tier.
type ItemFilter struct {
	Domain     string
	Difficulty string
	ExcludeIDs []string
}

// Projection is a column allowlist for item reads.
type Projection []string

var (
	// PublicFields never selects the answer key or the explanation.
	PublicFields = Projection{"id", "domain", "difficulty", "prompt_text", "body", "created_at"}
	// AllFields selects the full record. Only grading reads it.
	AllFields = Projection{"id", "domain", "difficulty", "prompt_text", "body", "answer_key", "explanation", "created_at"}
)

// InsertFailure reports one item that could not be inserted.
type InsertFailure struct {
	ID  string
	Err error
}

// InsertResult reports per-item outcomes of InsertMany.
type InsertResult struct {
	Inserted int
	Failed   []InsertFailure
}

// DomainCount is the item total of one domain.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// ItemRepo is an append-only, domain-partitioned item collection.
type ItemRepo interface {
	// Count returns the number of items matching filter.
	Count(ctx context.Context, filter ItemFilter) (int, error)

	// RangeRead returns up to limit items starting at offset, in a stable
	// (created_at, id) order, selecting only the projected columns.
	RangeRead(ctx context.Context, filter ItemFilter, offset, limit int, proj Projection) ([]Item, error)

	// InsertMany inserts each item as a single row. One bad item does not
	// prevent the others from being stored.
	InsertMany(ctx context.Context, items []Item) (InsertResult, error)

	// Get returns the item with id, or nil if none exists.
	Get(ctx context.Context, id string, proj Projection) (*Item, error)

	// RecentTexts returns the prompt texts of the newest items in domain.
	RecentTexts(ctx context.Context, domain string, limit int) ([]string, error)

	// Domains returns the item total of every domain, ordered by name.
	Domains(ctx context.Context) ([]DomainCount, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMPurposeUsage aggregates token usage per purpose.
type LLMPurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// LLMModelUsage aggregates token usage per model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one event, or nil if none exists.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
