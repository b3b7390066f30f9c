package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store owns the database handle and hands out repositories over it.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
}

// Open connects to the database, applies driver tuning and runs
// auto-migration for every collection and the LLM event log.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	driver = normalizeDriver(driver)

	var sqlDriver, dia string
	switch driver {
	case DriverSQLite:
		sqlDriver, dia = "sqlite", dialect.SQLite
	case DriverPostgres:
		sqlDriver, dia = "pgx", dialect.Postgres
	default:
		return nil, fmt.Errorf("unsupported driver %q (expected sqlite or postgres)", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("empty dsn for driver %s", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite {
		// One connection: pragmas are per connection and in-memory
		// databases live only as long as their connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if driver == DriverSQLite {
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	s := &Store{db: db, drv: entsql.OpenDB(dia, db), dialect: dia}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name in use.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Items returns the repository for one item collection.
func (s *Store) Items(c Collection) ItemRepo {
	return &itemRepo{db: s.db, dialect: s.dialect, table: string(c)}
}

// EventRepo returns the LLM request event repository.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, dialect: s.dialect}
}

// applyPragmas configures SQLite for a single-writer workload.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func normalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pgx", "pg":
		return DriverPostgres
	default:
		return d
	}
}

// DefaultDBPath resolves the SQLite database file path in priority order:
// 1. QBANK_DB environment variable
// 2. $XDG_DATA_HOME/qbank/qbank.db
// 3. ~/.local/share/qbank/qbank.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QBANK_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "qbank", "qbank.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
