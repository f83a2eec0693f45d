package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ── Dialect ────────────────────────────────────────────────
// Per-driver behavior: placeholder syntax, identifier quoting, and catalog
// queries. Everything that differs between SQLite, Postgres, and MySQL
// lives here.

// ErrUnsafeIdent is returned for identifiers that cannot be safely quoted.
var ErrUnsafeIdent = fmt.Errorf("unsafe identifier")

// Querier is the subset of database/sql shared by *sql.DB, *sql.Conn (via
// wrappers), and *sql.Tx that dialect catalog probes need.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Dialect abstracts driver-specific SQL generation and catalog access.
type Dialect interface {
	// Name is the configuration name ("sqlite", "postgres", "mysql").
	Name() string

	// DriverName is the database/sql driver to open.
	DriverName() string

	// Placeholder returns the parameter marker for 1-based position i.
	Placeholder(i int) string

	// QuoteIdent quotes a caller-controlled table or column name. Names
	// containing the quote character are rejected with ErrUnsafeIdent.
	QuoteIdent(name string) (string, error)

	// TableExists probes the catalog for a table.
	TableExists(ctx context.Context, q Querier, table string) (bool, error)

	// PrimaryKeys returns the primary key columns of a table.
	PrimaryKeys(ctx context.Context, q Querier, table string) ([]string, error)

	// SupportsReadOnlyTx reports whether BeginTx honors TxOptions.ReadOnly.
	SupportsReadOnlyTx() bool
}

// DialectFor returns the dialect for a configured driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite":
		return sqliteDialect{}, nil
	case "postgres":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}

// quoteWith validates and wraps name in the given quote rune.
func quoteWith(name, quote string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnsafeIdent)
	}
	if strings.Contains(name, quote) {
		return "", fmt.Errorf("%w: %q contains %s", ErrUnsafeIdent, name, quote)
	}
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q contains NUL", ErrUnsafeIdent, name)
	}
	return quote + name + quote, nil
}

// ── SQLite ─────────────────────────────────────────────────

type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) QuoteIdent(name string) (string, error) {
	return quoteWith(name, `"`)
}

func (sqliteDialect) TableExists(ctx context.Context, q Querier, table string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("probe table %s: %w", table, err)
	}
	return n > 0, nil
}

func (d sqliteDialect) PrimaryKeys(ctx context.Context, q Querier, table string) ([]string, error) {
	quoted, err := d.QuoteIdent(table)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoted))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table_info: %w", err)
		}
		if pk > 0 {
			pks = append(pks, name)
		}
	}
	return pks, rows.Err()
}

func (sqliteDialect) SupportsReadOnlyTx() bool { return false }

// ── Postgres ───────────────────────────────────────────────

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) Placeholder(i int) string { return fmt.Sprintf("$%d", i) }

func (postgresDialect) QuoteIdent(name string) (string, error) {
	return quoteWith(name, `"`)
}

func (postgresDialect) TableExists(ctx context.Context, q Querier, table string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables
		 WHERE table_schema = current_schema() AND table_name = $1`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("probe table %s: %w", table, err)
	}
	return n > 0, nil
}

func (postgresDialect) PrimaryKeys(ctx context.Context, q Querier, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT kcu.column_name
		 FROM information_schema.table_constraints tc
		 JOIN information_schema.key_column_usage kcu
		   ON tc.constraint_name = kcu.constraint_name
		  AND tc.table_schema = kcu.table_schema
		 WHERE tc.constraint_type = 'PRIMARY KEY'
		   AND tc.table_schema = current_schema()
		   AND tc.table_name = $1
		 ORDER BY kcu.ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("primary keys %s: %w", table, err)
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan primary key: %w", err)
		}
		pks = append(pks, name)
	}
	return pks, rows.Err()
}

func (postgresDialect) SupportsReadOnlyTx() bool { return true }

// ── MySQL ──────────────────────────────────────────────────

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) Placeholder(int) string { return "?" }

func (mysqlDialect) QuoteIdent(name string) (string, error) {
	return quoteWith(name, "`")
}

func (mysqlDialect) TableExists(ctx context.Context, q Querier, table string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("probe table %s: %w", table, err)
	}
	return n > 0, nil
}

func (mysqlDialect) PrimaryKeys(ctx context.Context, q Querier, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE
		 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
		 ORDER BY ORDINAL_POSITION`, table)
	if err != nil {
		return nil, fmt.Errorf("primary keys %s: %w", table, err)
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan primary key: %w", err)
		}
		pks = append(pks, name)
	}
	return pks, rows.Err()
}

func (mysqlDialect) SupportsReadOnlyTx() bool { return true }
