package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"datadeck/internal/store"
	"datadeck/internal/tabular"
)

// ── Row classifier ─────────────────────────────────────────

// findExisting decides whether a record already exists in the target table.
// With a non-empty identifier the lookup is by exact equality on the id
// column; otherwise it is an AND of equality predicates across every column
// in the record (null columns match IS NULL). An empty record is always
// classified as new — a vacuous predicate would match every row.
func findExisting(ctx context.Context, tx *sql.Tx, d store.Dialect, table string, rec *tabular.Record) (bool, error) {
	if rec.Len() == 0 {
		return false, nil
	}

	quotedTable, err := d.QuoteIdent(table)
	if err != nil {
		return false, err
	}

	if idCol, idVal, ok := rec.IDColumn(); ok {
		quotedID, err := d.QuoteIdent(idCol)
		if err != nil {
			return false, err
		}
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = %s",
			quotedTable, quotedID, d.Placeholder(1))
		var n int
		if err := tx.QueryRowContext(ctx, query, idVal).Scan(&n); err != nil {
			return false, fmt.Errorf("lookup by id in %s: %w", table, err)
		}
		return n > 0, nil
	}

	// Whole-row duplicate check: equality across all fields present.
	preds := make([]string, 0, rec.Len())
	args := make([]any, 0, rec.Len())
	pos := 1
	for _, col := range rec.Columns() {
		quoted, err := d.QuoteIdent(col)
		if err != nil {
			return false, err
		}
		v, _ := rec.Lookup(col)
		if !v.Valid {
			preds = append(preds, quoted+" IS NULL")
			continue
		}
		preds = append(preds, fmt.Sprintf("%s = %s", quoted, d.Placeholder(pos)))
		args = append(args, v.String)
		pos++
	}

	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s",
		quotedTable, strings.Join(preds, " AND "))
	var n int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("lookup by row in %s: %w", table, err)
	}
	return n > 0, nil
}
