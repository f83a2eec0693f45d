package store_test

import (
	"context"
	"testing"
)

func TestListTablesAndDescribe(t *testing.T) {
	st := openTestStore(t, true)
	seedPeople(t, st, 1)
	if _, err := st.DB().Exec(`CREATE TABLE orders (id TEXT PRIMARY KEY, total TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	ctx := context.Background()
	tables, err := st.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(tables) != 2 || tables[0] != "orders" || tables[1] != "people" {
		t.Fatalf("expected [orders people], got %v", tables)
	}

	info, err := st.DescribeTable(ctx, "people")
	if err != nil {
		t.Fatalf("DescribeTable: %v", err)
	}
	if len(info.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %v", info.Columns)
	}
	if len(info.PrimaryKeys) != 1 || info.PrimaryKeys[0] != "id" {
		t.Errorf("expected primary key [id], got %v", info.PrimaryKeys)
	}
}

func TestDescribeTable_Missing(t *testing.T) {
	st := openTestStore(t, true)

	if _, err := st.DescribeTable(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestCountRows(t *testing.T) {
	st := openTestStore(t, true)
	seedPeople(t, st, 4)

	n, err := st.CountRows(context.Background(), "people")
	if err != nil {
		t.Fatalf("CountRows: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 rows, got %d", n)
	}

	if _, err := st.CountRows(context.Background(), `evil"name`); err == nil {
		t.Fatal("expected error for unsafe table name")
	}
}
