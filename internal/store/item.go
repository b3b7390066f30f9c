package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// itemRepo implements ItemRepo for one collection table using ent's SQL
// builder, so the same queries run on SQLite and Postgres.
type itemRepo struct {
	db      *sql.DB
	dialect string
	table   string
}

func (r *itemRepo) where(filter ItemFilter) *entsql.Predicate {
	preds := []*entsql.Predicate{entsql.EQ("domain", filter.Domain)}
	if filter.Difficulty != "" {
		preds = append(preds, entsql.EQ("difficulty", filter.Difficulty))
	}
	if len(filter.ExcludeIDs) > 0 {
		ids := make([]any, len(filter.ExcludeIDs))
		for i, id := range filter.ExcludeIDs {
			ids[i] = id
		}
		preds = append(preds, entsql.NotIn("id", ids...))
	}
	return entsql.And(preds...)
}

func (r *itemRepo) Count(ctx context.Context, filter ItemFilter) (int, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(entsql.Count("*")).
		From(b.Table(r.table)).
		Where(r.where(filter)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table, err)
	}
	return n, nil
}

func (r *itemRepo) RangeRead(ctx context.Context, filter ItemFilter, offset, limit int, proj Projection) ([]Item, error) {
	if limit <= 0 {
		return nil, nil
	}
	if len(proj) == 0 {
		proj = PublicFields
	}
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(proj...).
		From(b.Table(r.table)).
		Where(r.where(filter)).
		OrderBy("created_at", "id").
		Offset(offset).
		Limit(limit).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("range read %s: %w", r.table, err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows, proj)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *itemRepo) InsertMany(ctx context.Context, items []Item) (InsertResult, error) {
	var res InsertResult
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		created := it.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		query, args := entsql.Dialect(r.dialect).
			Insert(r.table).
			Columns(AllFields...).
			Values(it.ID, it.Domain, it.Difficulty, it.PromptText, it.Body, it.AnswerKey, it.Explanation, created.UnixNano()).
			Query()
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			res.Failed = append(res.Failed, InsertFailure{ID: it.ID, Err: err})
			continue
		}
		res.Inserted++
	}
	return res, nil
}

func (r *itemRepo) Get(ctx context.Context, id string, proj Projection) (*Item, error) {
	if len(proj) == 0 {
		proj = PublicFields
	}
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(proj...).
		From(b.Table(r.table)).
		Where(entsql.EQ("id", id)).
		Limit(1).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	it, err := scanItem(rows, proj)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", r.table, err)
	}
	return &it, nil
}

func (r *itemRepo) RecentTexts(ctx context.Context, domain string, limit int) ([]string, error) {
	b := entsql.Dialect(r.dialect)
	sel := b.Select("prompt_text").
		From(b.Table(r.table)).
		Where(entsql.EQ("domain", domain)).
		OrderBy(entsql.Desc("created_at"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recent texts %s: %w", r.table, err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		texts = append(texts, s)
	}
	return texts, rows.Err()
}

func (r *itemRepo) Domains(ctx context.Context) ([]DomainCount, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select("domain", entsql.As(entsql.Count("*"), "n")).
		From(b.Table(r.table)).
		GroupBy("domain").
		OrderBy("domain").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("domains %s: %w", r.table, err)
	}
	defer rows.Close()

	var out []DomainCount
	for rows.Next() {
		var dc DomainCount
		if err := rows.Scan(&dc.Domain, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.table, err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// scanItem scans one row whose columns follow proj.
func scanItem(rows *sql.Rows, proj Projection) (Item, error) {
	var (
		it      Item
		created int64
	)
	dest := make([]any, len(proj))
	for i, col := range proj {
		switch col {
		case "id":
			dest[i] = &it.ID
		case "domain":
			dest[i] = &it.Domain
		case "difficulty":
			dest[i] = &it.Difficulty
		case "prompt_text":
			dest[i] = &it.PromptText
		case "body":
			dest[i] = &it.Body
		case "answer_key":
			dest[i] = &it.AnswerKey
		case "explanation":
			dest[i] = &it.Explanation
		case "created_at":
			dest[i] = &created
		default:
			return Item{}, fmt.Errorf("unknown column %q", col)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return Item{}, err
	}
	if created != 0 {
		it.CreatedAt = time.Unix(0, created)
	}
	return it, nil
}
