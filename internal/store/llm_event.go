package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo. The auto-increment id orders events.
type eventRepo struct {
	db      *sql.DB
	dialect string
}

var llmEventColumns = []string{
	"id", "timestamp", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	query, args := entsql.Dialect(r.dialect).
		Insert(llmEventsTable).
		Columns(llmEventColumns[1:]...).
		Values(time.Now().UnixNano(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
			data.ErrorMessage, data.RequestBody, data.ResponseBody).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error) {
	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("id", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("id", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UnixNano()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UnixNano()))
	}

	b := entsql.Dialect(r.dialect)
	sel := b.Select(llmEventColumns...).
		From(b.Table(llmEventsTable)).
		OrderBy(entsql.Desc("id"))
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEventRecord
	for rows.Next() {
		rec, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(llmEventColumns...).
		From(b.Table(llmEventsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	rec, err := scanLLMEvent(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(
		"purpose",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_total"),
		entsql.As(entsql.Sum("output_tokens"), "output_total"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency"),
	).
		From(b.Table(llmEventsTable)).
		GroupBy("purpose").
		OrderBy("purpose").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []LLMPurposeUsage
	for rows.Next() {
		var (
			u   LLMPurposeUsage
			avg float64
		)
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		u.AvgLatencyMs = int(avg)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(
		"model",
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_total"),
		entsql.As(entsql.Sum("output_tokens"), "output_total"),
	).
		From(b.Table(llmEventsTable)).
		GroupBy("model").
		OrderBy("model").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("usage by model: %w", err)
	}
	defer rows.Close()

	var out []LLMModelUsage
	for rows.Next() {
		var u LLMModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanLLMEvent(rows *sql.Rows) (LLMEventRecord, error) {
	var (
		rec LLMEventRecord
		ts  int64
	)
	err := rows.Scan(&rec.ID, &ts, &rec.Provider, &rec.Model, &rec.Purpose,
		&rec.InputTokens, &rec.OutputTokens, &rec.LatencyMs, &rec.Success,
		&rec.ErrorMessage, &rec.RequestBody, &rec.ResponseBody)
	if err != nil {
		return LLMEventRecord{}, fmt.Errorf("scan LLM event: %w", err)
	}
	rec.Timestamp = time.Unix(0, ts)
	return rec, nil
}
