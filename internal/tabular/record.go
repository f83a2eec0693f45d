package tabular

import (
	"database/sql"
	"strings"
)

// ── Record ─────────────────────────────────────────────────
// Common intermediate data format for ingestion.
// Decoders emit Records, the ingest engine consumes them.

// Record is a single decoded row: an ordered mapping from column name to
// text value. Column order is preserved from the source; names are unique
// within a record. All values are text regardless of apparent shape — a
// sql.NullString with Valid=false marks a null cell.
type Record struct {
	cols []string
	vals map[string]sql.NullString
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{vals: make(map[string]sql.NullString)}
}

// Set assigns a non-null text value to a column, appending the column at the
// end of the order if it is new.
func (r *Record) Set(col, val string) {
	r.set(col, sql.NullString{String: val, Valid: true})
}

// SetNull assigns a null value to a column, appending it if new.
func (r *Record) SetNull(col string) {
	r.set(col, sql.NullString{})
}

func (r *Record) set(col string, v sql.NullString) {
	if _, ok := r.vals[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = v
}

// Lookup returns the value for a column and whether the column is present.
func (r *Record) Lookup(col string) (sql.NullString, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Columns returns the column names in source order.
func (r *Record) Columns() []string {
	return r.cols
}

// Len returns the number of columns in the record.
func (r *Record) Len() int {
	return len(r.cols)
}

// Values returns the values aligned to Columns order, ready for use as
// statement parameters.
func (r *Record) Values() []any {
	out := make([]any, len(r.cols))
	for i, c := range r.cols {
		out[i] = r.vals[c]
	}
	return out
}

// IDColumn returns the name of the identifier column (any column whose name
// case-insensitively equals "id") along with its non-empty value. ok is false
// when there is no such column or its value is null or empty.
func (r *Record) IDColumn() (col, val string, ok bool) {
	for _, c := range r.cols {
		if strings.EqualFold(c, "id") {
			v := r.vals[c]
			if v.Valid && v.String != "" {
				return c, v.String, true
			}
			return "", "", false
		}
	}
	return "", "", false
}
