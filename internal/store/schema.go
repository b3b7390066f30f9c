package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Collection names one item table.
type Collection string

const (
	CollectionMCQ       Collection = "mcq_questions"
	CollectionInterview Collection = "interview_questions"
	CollectionCoding    Collection = "coding_problems"
)

// Collections lists every item collection that Open migrates.
var Collections = []Collection{CollectionMCQ, CollectionInterview, CollectionCoding}

const llmEventsTable = "llm_request_events"

const textSize = 2147483647

// itemTable declares an item collection. All kinds share the column set;
// kind-specific fields live in the JSON body and answer_key columns.
func itemTable(c Collection) *schema.Table {
	cols := []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "domain", Type: field.TypeString, Size: 100},
		{Name: "difficulty", Type: field.TypeString, Size: 16},
		{Name: "prompt_text", Type: field.TypeString, Size: textSize},
		{Name: "body", Type: field.TypeString, Size: textSize},
		{Name: "answer_key", Type: field.TypeString, Size: textSize},
		{Name: "explanation", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "created_at", Type: field.TypeInt64},
	}
	return &schema.Table{
		Name:       string(c),
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
		Indexes: []*schema.Index{
			{Name: string(c) + "_domain_difficulty", Columns: []*schema.Column{cols[1], cols[2]}},
			{Name: string(c) + "_domain_created_at", Columns: []*schema.Column{cols[1], cols[7]}},
		},
	}
}

func llmEventTable() *schema.Table {
	cols := []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	}
	return &schema.Table{
		Name:       llmEventsTable,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{cols[4]}},
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{cols[1]}},
		},
	}
}

// tables returns the full schema in creation order.
func tables() []*schema.Table {
	out := make([]*schema.Table, 0, len(Collections)+1)
	for _, c := range Collections {
		out = append(out, itemTable(c))
	}
	return append(out, llmEventTable())
}

// migrate creates or upgrades all tables through ent's migration engine.
func (s *Store) migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables()...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
