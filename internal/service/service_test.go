package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"datadeck/internal/ingest"
	"datadeck/internal/service"
	"datadeck/internal/store"
)

func newTestService(t *testing.T) (*service.IngestService, *service.MockEmitter, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), store.Config{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	emitter := &service.MockEmitter{}
	return service.NewIngestService(ingest.NewEngine(st), emitter), emitter, st
}

func TestRunningGuard(t *testing.T) {
	var guard service.ExportedRunningGuard

	if !guard.TryLock("people") {
		t.Fatal("first TryLock should succeed")
	}
	if guard.TryLock("people") {
		t.Fatal("second TryLock for the same table should fail")
	}
	if !guard.TryLock("orders") {
		t.Fatal("TryLock for an unrelated table should succeed")
	}

	guard.Unlock("people")
	if !guard.TryLock("people") {
		t.Fatal("TryLock should succeed again after Unlock")
	}
	guard.Unlock("people")
	guard.Unlock("orders")
}

func TestRunningGuardWaitAll(t *testing.T) {
	var guard service.ExportedRunningGuard

	guard.TryLock("people")
	go func() {
		time.Sleep(20 * time.Millisecond)
		guard.Unlock("people")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	guard.WaitAll(ctx)
	if ctx.Err() != nil {
		t.Fatal("WaitAll should have returned before the timeout")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("WaitAll returned before the running ingestion finished")
	}
}

func TestRunningGuardWaitAllCancelled(t *testing.T) {
	var guard service.ExportedRunningGuard
	guard.TryLock("stuck")
	defer guard.Unlock("stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	guard.WaitAll(ctx) // must not deadlock
}

func TestIngestFile(t *testing.T) {
	svc, emitter, st := newTestService(t)
	ctx := context.Background()

	summaries, err := svc.IngestFile(ctx, []byte("id,name\n1,alice\n"), "people.csv", "", ingest.Options{})
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if sum := summaries["people"]; sum.Created != 1 {
		t.Fatalf("expected created=1, got %+v", sum)
	}
	if n, err := st.CountRows(ctx, "people"); err != nil || n != 1 {
		t.Fatalf("expected 1 row (err=%v), got %d", err, n)
	}

	runs := svc.Runs()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run log entry, got %d", len(runs))
	}
	run := runs[0]
	if run.ID == "" {
		t.Error("run ID should be set")
	}
	if run.Status != "success" {
		t.Errorf("expected status success, got %q", run.Status)
	}
	if run.Table != "people" {
		t.Errorf("expected table people, got %q", run.Table)
	}
	if run.FinishedAt.Before(run.StartedAt) {
		t.Error("FinishedAt precedes StartedAt")
	}

	if len(emitter.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(emitter.Events))
	}
	if emitter.Events[0].Event != "ingest:started" || emitter.Events[1].Event != "ingest:completed" {
		t.Errorf("unexpected event sequence: %v, %v", emitter.Events[0].Event, emitter.Events[1].Event)
	}
}

func TestIngestFileFailureRecorded(t *testing.T) {
	svc, emitter, _ := newTestService(t)

	// Two cells against a one-column header fails decoding.
	_, err := svc.IngestFile(context.Background(), []byte("a\n1,2\n"), "bad.csv", "", ingest.Options{})
	if err == nil {
		t.Fatal("expected error")
	}

	runs := svc.Runs()
	if len(runs) != 1 || runs[0].Status != "error" {
		t.Fatalf("expected one failed run, got %+v", runs)
	}
	if runs[0].Error == "" {
		t.Error("failed run should carry the error message")
	}
	if last := emitter.Events[len(emitter.Events)-1]; last.Event != "ingest:failed" {
		t.Errorf("expected ingest:failed event, got %q", last.Event)
	}
}

func TestIngestFileUnderivableName(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.IngestFile(context.Background(), []byte("id\n1\n"), ".csv", "", ingest.Options{})
	if err == nil {
		t.Fatal("expected error for underivable table name")
	}
	if len(svc.Runs()) != 0 {
		t.Error("no run should be recorded before the guard is taken")
	}
}
