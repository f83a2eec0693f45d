package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"datadeck/internal/store"
	"datadeck/internal/tabular"
)

// ── Schema resolver ────────────────────────────────────────

// ensureTable makes sure the destination table exists, creating it from the
// sample record when absent: one TEXT column per field in field order, with a
// field named "id" (case-insensitive) promoted to primary key. Existing
// tables are left untouched; column drift against the incoming batch is not
// detected here and surfaces as per-row statement failures.
func ensureTable(ctx context.Context, tx *sql.Tx, d store.Dialect, table string, sample *tabular.Record) error {
	exists, err := d.TableExists(ctx, tx, table)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	quotedTable, err := d.QuoteIdent(table)
	if err != nil {
		return err
	}

	cols := make([]string, 0, sample.Len())
	for _, name := range sample.Columns() {
		quoted, err := d.QuoteIdent(name)
		if err != nil {
			return err
		}
		if strings.EqualFold(name, "id") {
			cols = append(cols, quoted+" TEXT PRIMARY KEY")
		} else {
			cols = append(cols, quoted+" TEXT")
		}
	}
	if len(cols) == 0 {
		return fmt.Errorf("cannot create table %s: record has no columns", table)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quotedTable, strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}
