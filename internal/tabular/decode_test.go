package tabular_test

import (
	"testing"

	"datadeck/internal/tabular"
)

func TestDecodeCSV_HeaderAndOrder(t *testing.T) {
	data := []byte("name,city,age\nalice,lisbon,30\nbob,porto,25\n")
	records, err := tabular.DecodeCSV(data, tabular.DecodeOptions{})
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	cols := records[0].Columns()
	want := []string{"name", "city", "age"}
	for i, c := range want {
		if cols[i] != c {
			t.Errorf("column %d: expected %q, got %q", i, c, cols[i])
		}
	}

	v, ok := records[1].Lookup("city")
	if !ok || !v.Valid || v.String != "porto" {
		t.Errorf("expected city=porto, got %+v (present=%v)", v, ok)
	}
}

func TestDecodeCSV_StripsBOM(t *testing.T) {
	data := []byte("\xEF\xBB\xBFid,name\n1,alice\n")
	records, err := tabular.DecodeCSV(data, tabular.DecodeOptions{})
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if cols := records[0].Columns(); cols[0] != "id" {
		t.Errorf("expected first column %q, got %q", "id", cols[0])
	}
}

func TestDecodeCSV_EmptyInput(t *testing.T) {
	for _, data := range [][]byte{nil, []byte(""), []byte("a,b,c\n")} {
		records, err := tabular.DecodeCSV(data, tabular.DecodeOptions{})
		if err != nil {
			t.Fatalf("DecodeCSV(%q): %v", data, err)
		}
		if len(records) != 0 {
			t.Errorf("DecodeCSV(%q): expected 0 records, got %d", data, len(records))
		}
	}
}

func TestDecodeCSV_NullsAndPadding(t *testing.T) {
	data := []byte("a,b,c\nx,,z\nshort\n")
	records, err := tabular.DecodeCSV(data, tabular.DecodeOptions{})
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}

	// Empty cell decodes as null.
	if v, _ := records[0].Lookup("b"); v.Valid {
		t.Errorf("expected null for empty cell, got %q", v.String)
	}
	// Short row pads missing columns with nulls.
	if v, ok := records[1].Lookup("c"); !ok || v.Valid {
		t.Errorf("expected padded null for missing cell, got %+v (present=%v)", v, ok)
	}
}

func TestDecodeCSV_RowWiderThanHeader(t *testing.T) {
	data := []byte("a,b\n1,2,3\n")
	if _, err := tabular.DecodeCSV(data, tabular.DecodeOptions{}); err == nil {
		t.Fatal("expected error for row wider than header")
	}
}

func TestDecodeCSV_DuplicateHeader(t *testing.T) {
	data := []byte("a,b,a\n1,2,3\n")
	if _, err := tabular.DecodeCSV(data, tabular.DecodeOptions{}); err == nil {
		t.Fatal("expected error for duplicate header column")
	}
}

func TestDecodeCSV_NoHeader(t *testing.T) {
	data := []byte("1,alice\n2,bob\n")
	records, err := tabular.DecodeCSV(data, tabular.DecodeOptions{NoHeader: true})
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	cols := records[0].Columns()
	if cols[0] != "col_1" || cols[1] != "col_2" {
		t.Errorf("expected synthesized col_N names, got %v", cols)
	}
}

func TestDecodeCSV_Delimiter(t *testing.T) {
	data := []byte("a;b\n1;2\n")
	records, err := tabular.DecodeCSV(data, tabular.DecodeOptions{Delimiter: ';'})
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if v, _ := records[0].Lookup("b"); v.String != "2" {
		t.Errorf("expected b=2, got %q", v.String)
	}
}

func TestDecodeCSV_Latin1(t *testing.T) {
	// "café" with the é encoded as Latin-1 0xE9.
	data := []byte{'n', 'a', 'm', 'e', '\n', 'c', 'a', 'f', 0xE9, '\n'}
	records, err := tabular.DecodeCSV(data, tabular.DecodeOptions{Encoding: "latin-1"})
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	if v, _ := records[0].Lookup("name"); v.String != "café" {
		t.Errorf("expected café, got %q", v.String)
	}
}

func TestDecodeCSV_UnknownEncoding(t *testing.T) {
	if _, err := tabular.DecodeCSV([]byte("a\n1\n"), tabular.DecodeOptions{Encoding: "ebcdic"}); err == nil {
		t.Fatal("expected error for unsupported encoding")
	}
}
