package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ── Introspection ──────────────────────────────────────────
// Simple pass-through reads over catalog metadata: table list, columns,
// primary keys, row counts.

// SchemaInfo contains the database schema.
type SchemaInfo struct {
	Tables []TableInfo `json:"tables"`
}

// TableInfo describes one table.
type TableInfo struct {
	Name        string       `json:"name"`
	Columns     []ColumnInfo `json:"columns"`
	PrimaryKeys []string     `json:"primaryKeys,omitempty"`
}

// ColumnInfo describes one column.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ListTables returns the names of user tables.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var rows *sql.Rows
	var err error
	switch s.dialect.Name() {
	case "sqlite":
		rows, err = s.db.QueryContext(ctx,
			`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	case "postgres":
		rows, err = s.db.QueryContext(ctx,
			`SELECT table_name FROM information_schema.tables
			 WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name`)
	default: // mysql
		rows, err = s.db.QueryContext(ctx,
			`SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
			 WHERE TABLE_SCHEMA = DATABASE() ORDER BY TABLE_NAME`)
	}
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DescribeTable returns columns and primary keys for one table.
func (s *Store) DescribeTable(ctx context.Context, table string) (*TableInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	exists, err := s.dialect.TableExists(ctx, s.db, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("table %q does not exist", table)
	}

	info := &TableInfo{Name: table}
	switch s.dialect.Name() {
	case "sqlite":
		info.Columns, err = s.sqliteColumns(ctx, table)
	default:
		info.Columns, err = s.infoSchemaColumns(ctx, table)
	}
	if err != nil {
		return nil, err
	}

	info.PrimaryKeys, err = s.dialect.PrimaryKeys(ctx, s.db, table)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Introspect returns the full schema: every table with its columns and keys.
func (s *Store) Introspect(ctx context.Context) (*SchemaInfo, error) {
	names, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	schema := &SchemaInfo{}
	for _, name := range names {
		info, err := s.DescribeTable(ctx, name)
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, *info)
	}
	return schema, nil
}

// CountRows returns the row count of a table.
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	quoted, err := s.dialect.QuoteIdent(table)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *Store) sqliteColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	quoted, err := s.dialect.QuoteIdent(table)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoted))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table_info: %w", err)
		}
		cols = append(cols, ColumnInfo{Name: name, Type: colType})
	}
	return cols, rows.Err()
}

func (s *Store) infoSchemaColumns(ctx context.Context, table string) ([]ColumnInfo, error) {
	query := `SELECT COLUMN_NAME, DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS
	          WHERE TABLE_NAME = ? ORDER BY ORDINAL_POSITION`
	if s.dialect.Name() == "postgres" {
		query = `SELECT column_name, data_type FROM information_schema.columns
		         WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position`
	}
	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", table, err)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var ci ColumnInfo
		if err := rows.Scan(&ci.Name, &ci.Type); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, ci)
	}
	return cols, rows.Err()
}
