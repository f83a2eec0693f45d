package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"datadeck/internal/store"
	"datadeck/internal/tabular"
)

// ── Mutation executor ──────────────────────────────────────

// apply performs the classified action for one record: insert when new,
// update keyed by the identifier when existing, or skip when existing with
// no identifier (there is no safe key to target one row). Values are always
// bound as parameters; identifiers are always quoted.
func apply(ctx context.Context, tx *sql.Tx, d store.Dialect, table string, rec *tabular.Record, existing bool) (action, error) {
	if !existing {
		if err := insertRecord(ctx, tx, d, table, rec); err != nil {
			return 0, err
		}
		return actionCreated, nil
	}

	idCol, idVal, ok := rec.IDColumn()
	if !ok {
		return actionSkipped, nil
	}
	if err := updateRecord(ctx, tx, d, table, rec, idCol, idVal); err != nil {
		return 0, err
	}
	return actionUpdated, nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, d store.Dialect, table string, rec *tabular.Record) error {
	quotedTable, err := d.QuoteIdent(table)
	if err != nil {
		return err
	}

	cols := make([]string, 0, rec.Len())
	marks := make([]string, 0, rec.Len())
	for i, col := range rec.Columns() {
		quoted, err := d.QuoteIdent(col)
		if err != nil {
			return err
		}
		cols = append(cols, quoted)
		marks = append(marks, d.Placeholder(i+1))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quotedTable, strings.Join(cols, ", "), strings.Join(marks, ", "))
	if _, err := tx.ExecContext(ctx, query, rec.Values()...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func updateRecord(ctx context.Context, tx *sql.Tx, d store.Dialect, table string, rec *tabular.Record, idCol, idVal string) error {
	quotedTable, err := d.QuoteIdent(table)
	if err != nil {
		return err
	}
	quotedID, err := d.QuoteIdent(idCol)
	if err != nil {
		return err
	}

	sets := make([]string, 0, rec.Len())
	args := make([]any, 0, rec.Len())
	pos := 1
	for _, col := range rec.Columns() {
		if col == idCol {
			continue
		}
		quoted, err := d.QuoteIdent(col)
		if err != nil {
			return err
		}
		v, _ := rec.Lookup(col)
		sets = append(sets, fmt.Sprintf("%s = %s", quoted, d.Placeholder(pos)))
		args = append(args, v)
		pos++
	}
	if len(sets) == 0 {
		// Identifier-only record: the matched row already carries the id.
		return nil
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		quotedTable, strings.Join(sets, ", "), quotedID, d.Placeholder(pos))
	args = append(args, idVal)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}
