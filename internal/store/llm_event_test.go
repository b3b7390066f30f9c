package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepo_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "mcq-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: `{"q":1}`, ResponseBody: `{"a":1}`},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "mcq-gen", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true},
		{Provider: "anthropic", Model: "claude-haiku", Purpose: "coding-gen", InputTokens: 10, OutputTokens: 0, LatencyMs: 30, Success: false, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "coding-gen", all[0].Purpose, "newest first")
	assert.False(t, all[0].Success)
	assert.Equal(t, "rate limited", all[0].ErrorMessage)

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1, Before: all[0].ID})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, all[1].ID, limited[0].ID)

	future, err := repo.QueryLLMEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)

	first, err := repo.GetLLMEvent(ctx, all[2].ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, `{"q":1}`, first.RequestBody)
	assert.Equal(t, `{"a":1}`, first.ResponseBody)
	assert.WithinDuration(t, time.Now(), first.Timestamp, time.Minute)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEventRepo_Usage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []LLMRequestEventData{
		{Model: "gpt-4o-mini", Purpose: "mcq-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200},
		{Model: "gpt-4o-mini", Purpose: "mcq-gen", InputTokens: 300, OutputTokens: 150, LatencyMs: 400},
		{Model: "gemini-2.5-flash", Purpose: "coding-gen", InputTokens: 10, OutputTokens: 5, LatencyMs: 30},
	} {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LLMPurposeUsage{
		{Purpose: "coding-gen", Calls: 1, InputTokens: 10, OutputTokens: 5, AvgLatencyMs: 30},
		{Purpose: "mcq-gen", Calls: 2, InputTokens: 400, OutputTokens: 200, AvgLatencyMs: 300},
	}, byPurpose)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LLMModelUsage{
		{Model: "gemini-2.5-flash", Calls: 1, InputTokens: 10, OutputTokens: 5},
		{Model: "gpt-4o-mini", Calls: 2, InputTokens: 400, OutputTokens: 200},
	}, byModel)
}
