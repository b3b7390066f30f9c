package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore opens a private in-memory SQLite database.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	s, err := Open(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	assert.NotNil(t, s.DB())
	assert.Equal(t, "sqlite3", s.Dialect())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "root@/qbank")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestOpen_FileDatabaseReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "qbank.db")

	s, err := Open(ctx, "", path)
	require.NoError(t, err)
	res, err := s.Items(CollectionMCQ).InsertMany(ctx, []Item{newItem("a", "Go", "Easy", "What is a goroutine?")})
	require.NoError(t, err)
	require.Equal(t, 1, res.Inserted)
	require.NoError(t, s.Close())

	// Migration must be idempotent against an existing schema.
	s, err = Open(ctx, "sqlite3", path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Items(CollectionMCQ).Count(ctx, ItemFilter{Domain: "Go"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is not checked here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		require.NoError(t, err, "PRAGMA %s", tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestTablesCreated(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"mcq_questions", "interview_questions", "coding_problems", "llm_request_events"} {
		var got string
		err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&got)
		require.NoError(t, err, "table %s", name)
	}
}

func TestDefaultDBPath(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "custom", "bank.db")
		t.Setenv("QBANK_DB", p)
		got, err := DefaultDBPath()
		require.NoError(t, err)
		assert.Equal(t, p, got)
		assert.DirExists(t, filepath.Dir(p))
	})

	t.Run("xdg data home", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("QBANK_DB", "")
		t.Setenv("XDG_DATA_HOME", dir)
		got, err := DefaultDBPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "qbank", "qbank.db"), got)
	})
}
