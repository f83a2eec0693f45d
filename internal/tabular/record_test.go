package tabular_test

import (
	"database/sql"
	"testing"

	"datadeck/internal/tabular"
)

func TestRecord_OrderAndValues(t *testing.T) {
	rec := tabular.NewRecord()
	rec.Set("b", "2")
	rec.Set("a", "1")
	rec.SetNull("c")

	cols := rec.Columns()
	if len(cols) != 3 || cols[0] != "b" || cols[1] != "a" || cols[2] != "c" {
		t.Fatalf("expected insertion order [b a c], got %v", cols)
	}

	vals := rec.Values()
	if v := vals[1].(sql.NullString); !v.Valid || v.String != "1" {
		t.Errorf("expected a=1, got %+v", v)
	}
	if v := vals[2].(sql.NullString); v.Valid {
		t.Errorf("expected c null, got %+v", v)
	}
}

func TestRecord_SetOverwritesWithoutReorder(t *testing.T) {
	rec := tabular.NewRecord()
	rec.Set("a", "1")
	rec.Set("b", "2")
	rec.Set("a", "9")

	if rec.Len() != 2 {
		t.Fatalf("expected 2 columns, got %d", rec.Len())
	}
	if v, _ := rec.Lookup("a"); v.String != "9" {
		t.Errorf("expected a=9 after overwrite, got %q", v.String)
	}
	if cols := rec.Columns(); cols[0] != "a" {
		t.Errorf("expected a to keep first position, got %v", cols)
	}
}

func TestRecord_IDColumn(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *tabular.Record
		wantCol string
		wantVal string
		wantOK  bool
	}{
		{
			name: "lowercase id",
			build: func() *tabular.Record {
				r := tabular.NewRecord()
				r.Set("id", "42")
				r.Set("name", "x")
				return r
			},
			wantCol: "id", wantVal: "42", wantOK: true,
		},
		{
			name: "uppercase ID",
			build: func() *tabular.Record {
				r := tabular.NewRecord()
				r.Set("ID", "7")
				return r
			},
			wantCol: "ID", wantVal: "7", wantOK: true,
		},
		{
			name: "null id",
			build: func() *tabular.Record {
				r := tabular.NewRecord()
				r.SetNull("id")
				r.Set("name", "x")
				return r
			},
			wantOK: false,
		},
		{
			name: "no id column",
			build: func() *tabular.Record {
				r := tabular.NewRecord()
				r.Set("name", "x")
				return r
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, val, ok := tt.build().IDColumn()
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && (col != tt.wantCol || val != tt.wantVal) {
				t.Errorf("expected (%q, %q), got (%q, %q)", tt.wantCol, tt.wantVal, col, val)
			}
		})
	}
}

func TestDeriveTableName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Report.csv", "my_report"},
		{"sales-2024.tsv", "sales_2024"},
		{"UPPER.CSV", "upper"},
		{"/tmp/drop/Q1 (final).xlsx", "q1__final_"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := tabular.DeriveTableName(tt.in); got != tt.want {
			t.Errorf("DeriveTableName(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
