package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"datadeck/internal/config"
	"datadeck/internal/service"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return cond()
}

func TestWatcherIngestsDroppedFile(t *testing.T) {
	svc, _, st := newTestService(t)
	dropDir := t.TempDir()

	w := service.NewWatcher(svc, []config.Watch{{Dir: dropDir}})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dropDir, "people.csv")
	if err := os.WriteFile(path, []byte("id,name\n1,alice\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	ok := waitFor(t, 5*time.Second, func() bool {
		n, err := st.CountRows(context.Background(), "people")
		return err == nil && n == 1
	})
	if !ok {
		t.Fatal("dropped file was not ingested")
	}
}

func TestWatcherSkipsUnchangedContent(t *testing.T) {
	svc, _, _ := newTestService(t)
	dropDir := t.TempDir()

	w := service.NewWatcher(svc, []config.Watch{{Dir: dropDir}})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dropDir, "orders.csv")
	content := []byte("id,total\n1,9.50\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if !waitFor(t, 5*time.Second, func() bool { return len(svc.Runs()) == 1 }) {
		t.Fatal("first drop was not ingested")
	}

	// Re-writing identical bytes must not trigger another run.
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}
	time.Sleep(1200 * time.Millisecond)
	if n := len(svc.Runs()); n != 1 {
		t.Fatalf("expected 1 run after unchanged rewrite, got %d", n)
	}
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	svc, _, _ := newTestService(t)
	dropDir := t.TempDir()

	w := service.NewWatcher(svc, []config.Watch{{Dir: dropDir}})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dropDir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	time.Sleep(1200 * time.Millisecond)
	if n := len(svc.Runs()); n != 0 {
		t.Fatalf("expected no runs for a .txt drop, got %d", n)
	}
}

func TestWatcherNoEntries(t *testing.T) {
	svc, _, _ := newTestService(t)
	w := service.NewWatcher(svc, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start with no entries: %v", err)
	}
	w.Stop()
}
