package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"datadeck/internal/store"
	"datadeck/internal/tabular"
)

// ── Ingestion coordinator ──────────────────────────────────
// Decodes raw tabular data, resolves the destination table, and upserts
// every record inside one transaction. The whole batch commits or none of
// it does.

// Engine runs ingestion batches against one store.
type Engine struct {
	store *store.Store
}

// NewEngine creates an Engine for the given store.
func NewEngine(st *store.Store) *Engine {
	return &Engine{store: st}
}

// Options adjusts decoding of the raw input.
type Options struct {
	Delimiter rune   // CSV delimiter, default comma
	NoHeader  bool   // synthesize col_N column names
	Encoding  string // input charset, default UTF-8
}

// Ingest decodes raw bytes into records and upserts them into the target
// table. The table name is the caller override when given, otherwise it is
// derived from fileName. Records are processed strictly in input order, so a
// later exact duplicate of an earlier row in the same batch sees the
// earlier insert. Returns a summary per table name.
func (e *Engine) Ingest(ctx context.Context, raw []byte, fileName, tableOverride string, opts Options) (map[string]Summary, error) {
	records, err := decode(raw, fileName, opts)
	if err != nil {
		return nil, err
	}

	table := tableOverride
	if table == "" {
		table = tabular.DeriveTableName(fileName)
	}
	if table == "" {
		return nil, fmt.Errorf("cannot derive table name from %q", fileName)
	}

	if len(records) == 0 {
		return map[string]Summary{table: {}}, nil
	}

	conn, err := e.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Printf("ingest: rollback failed: %v", rbErr)
		}
	}()

	dialect := e.store.Dialect()
	if err := ensureTable(ctx, tx, dialect, table, records[0]); err != nil {
		return nil, err
	}

	var summary Summary
	for i, rec := range records {
		existing, err := findExisting(ctx, tx, dialect, table, rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		act, err := apply(ctx, tx, dialect, table, rec, existing)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		summary.add(act)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return map[string]Summary{table: summary}, nil
}

// decode picks the decoder from the file extension: .xlsx workbooks go
// through excelize, everything else is delimited text.
func decode(raw []byte, fileName string, opts Options) ([]*tabular.Record, error) {
	if strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
		return tabular.DecodeExcel(raw)
	}
	d := opts.Delimiter
	if d == 0 && strings.EqualFold(filepath.Ext(fileName), ".tsv") {
		d = '\t'
	}
	return tabular.DecodeCSV(raw, tabular.DecodeOptions{
		Delimiter: d,
		NoHeader:  opts.NoHeader,
		Encoding:  opts.Encoding,
	})
}
