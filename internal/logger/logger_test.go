package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"api_key", "sk-123",
		"input_tokens", 42,
		"access_token", "abc",
		"domain", "Web Development",
		"dangling",
	})
	assert.Equal(t, []interface{}{
		"api_key", "[REDACTED]",
		"input_tokens", 42,
		"access_token", "[REDACTED]",
		"domain", "Web Development",
		"dangling",
	}, got)
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("kind", "mcq").Info("sampled", "count", 10, "secret", "x")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "mcq", fields["kind"])
	assert.Equal(t, int64(10), fields["count"])
	assert.Equal(t, "[REDACTED]", fields["secret"])
}

func TestNewLevels(t *testing.T) {
	l, err := New("prod", "warn")
	require.NoError(t, err)
	assert.False(t, l.SugaredLogger.Desugar().Core().Enabled(zap.InfoLevel))
	assert.True(t, l.SugaredLogger.Desugar().Core().Enabled(zap.WarnLevel))

	_, err = New("dev", "loud")
	assert.Error(t, err)

	NewNop().Info("discarded")
}
