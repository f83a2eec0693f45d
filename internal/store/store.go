package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ── Store ──────────────────────────────────────────────────
// One Store wraps one relational database: a pooled connection handle plus
// the dialect for its driver. Created at startup, closed at shutdown.

// Config describes how to open a store.
type Config struct {
	Driver         string // "sqlite" | "postgres" | "mysql"
	DSN            string
	MaxOpenConns   int
	ReadOnlyStrict bool // reject non-read statements in RunReadOnly
}

// Store is a handle to the target database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	strict  bool
}

// Open connects to the configured database and verifies connectivity.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if cfg.Driver == "sqlite" {
		// WAL + busy timeout so a reader does not starve the ingest writer.
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = 4
	}
	if cfg.Driver == "sqlite" {
		// SQLite only supports one writer — a single connection prevents SQLITE_BUSY.
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return &Store{db: db, dialect: dialect, strict: cfg.ReadOnlyStrict}, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect returns the driver dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// DB exposes the underlying handle for tests and introspection queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Acquire hands out a dedicated connection from the pool. The caller must
// Close it on every exit path.
func (s *Store) Acquire(ctx context.Context) (*sql.Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}
