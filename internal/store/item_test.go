package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(id, domain, difficulty, text string) Item {
	return Item{
		ID:          id,
		Domain:      domain,
		Difficulty:  difficulty,
		PromptText:  text,
		Body:        fmt.Sprintf(`{"question":%q}`, text),
		AnswerKey:   `{"correct_option":"B"}`,
		Explanation: "because",
	}
}

func seedItems(t *testing.T, repo ItemRepo, domain, difficulty string, n int) []Item {
	t.Helper()
	base := time.Now()
	items := make([]Item, n)
	for i := range items {
		items[i] = newItem(fmt.Sprintf("%s-%s-%03d", domain, difficulty, i), domain, difficulty,
			fmt.Sprintf("%s %s question %d", domain, difficulty, i))
		items[i].CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
	}
	res, err := repo.InsertMany(context.Background(), items)
	require.NoError(t, err)
	require.Equal(t, n, res.Inserted)
	require.Empty(t, res.Failed)
	return items
}

func TestItemRepo_Count(t *testing.T) {
	s := openTestStore(t)
	repo := s.Items(CollectionMCQ)
	ctx := context.Background()

	seedItems(t, repo, "Web Development", "Easy", 3)
	seedItems(t, repo, "Web Development", "Hard", 2)
	seedItems(t, repo, "web development", "Easy", 4)

	tests := []struct {
		name   string
		filter ItemFilter
		want   int
	}{
		{"domain", ItemFilter{Domain: "Web Development"}, 5},
		{"domain is case-sensitive", ItemFilter{Domain: "web development"}, 4},
		{"tier", ItemFilter{Domain: "Web Development", Difficulty: "Hard"}, 2},
		{"empty tier", ItemFilter{Domain: "Web Development", Difficulty: "Medium"}, 0},
		{"exclude", ItemFilter{Domain: "Web Development", ExcludeIDs: []string{"Web Development-Easy-000", "nope"}}, 4},
		{"unknown domain", ItemFilter{Domain: "Rust"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := repo.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestItemRepo_RangeRead(t *testing.T) {
	s := openTestStore(t)
	repo := s.Items(CollectionCoding)
	ctx := context.Background()
	items := seedItems(t, repo, "Algorithms", "Medium", 10)

	got, err := repo.RangeRead(ctx, ItemFilter{Domain: "Algorithms"}, 3, 4, PublicFields)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, it := range got {
		assert.Equal(t, items[3+i].ID, it.ID, "stable created_at order")
		assert.Equal(t, items[3+i].Body, it.Body)
		assert.Empty(t, it.AnswerKey, "public projection must not select the answer key")
		assert.Empty(t, it.Explanation)
		assert.False(t, it.CreatedAt.IsZero())
	}

	got, err = repo.RangeRead(ctx, ItemFilter{Domain: "Algorithms"}, 8, 5, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2, "read past the end is truncated")

	got, err = repo.RangeRead(ctx, ItemFilter{Domain: "Algorithms"}, 0, 0, PublicFields)
	require.NoError(t, err)
	assert.Empty(t, got)

	excluded := []string{items[0].ID, items[1].ID}
	got, err = repo.RangeRead(ctx, ItemFilter{Domain: "Algorithms", ExcludeIDs: excluded}, 0, 100, AllFields)
	require.NoError(t, err)
	require.Len(t, got, 8)
	assert.Equal(t, items[2].ID, got[0].ID)
	assert.Equal(t, `{"correct_option":"B"}`, got[0].AnswerKey)
	assert.Equal(t, "because", got[0].Explanation)
}

func TestItemRepo_InsertManyPartialFailure(t *testing.T) {
	s := openTestStore(t)
	repo := s.Items(CollectionInterview)
	ctx := context.Background()
	seedItems(t, repo, "Go", "Easy", 1)

	res, err := repo.InsertMany(ctx, []Item{
		newItem("fresh-1", "Go", "Medium", "What does defer do?"),
		newItem("Go-Easy-000", "Go", "Medium", "duplicate primary key"),
		newItem("fresh-2", "Go", "Hard", "Explain the memory model."),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "Go-Easy-000", res.Failed[0].ID)
	assert.Error(t, res.Failed[0].Err)

	n, err := repo.Count(ctx, ItemFilter{Domain: "Go"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestItemRepo_Get(t *testing.T) {
	s := openTestStore(t)
	repo := s.Items(CollectionMCQ)
	ctx := context.Background()
	seedItems(t, repo, "Go", "Easy", 2)

	it, err := repo.Get(ctx, "Go-Easy-001", AllFields)
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, "Go Easy question 1", it.PromptText)
	assert.Equal(t, `{"correct_option":"B"}`, it.AnswerKey)

	it, err = repo.Get(ctx, "Go-Easy-001", PublicFields)
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Empty(t, it.AnswerKey)

	it, err = repo.Get(ctx, "missing", AllFields)
	require.NoError(t, err)
	assert.Nil(t, it)
}

func TestItemRepo_RecentTextsAndDomains(t *testing.T) {
	s := openTestStore(t)
	repo := s.Items(CollectionMCQ)
	ctx := context.Background()
	seedItems(t, repo, "Go", "Easy", 5)
	seedItems(t, repo, "Data Science", "Hard", 2)

	texts, err := repo.RecentTexts(ctx, "Go", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go Easy question 4", "Go Easy question 3"}, texts)

	domains, err := repo.Domains(ctx)
	require.NoError(t, err)
	assert.Equal(t, []DomainCount{{Domain: "Data Science", Count: 2}, {Domain: "Go", Count: 5}}, domains)

	// Collections are isolated from each other.
	other, err := s.Items(CollectionCoding).Domains(ctx)
	require.NoError(t, err)
	assert.Empty(t, other)
}
