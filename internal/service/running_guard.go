package service

import (
	"context"
	"sync"
)

// ExportedRunningGuard is an exported alias so _test packages can test the guard.
type ExportedRunningGuard = runningTablesGuard

// ─────────────────────────────────────────────────────────────
// runningTablesGuard — prevents concurrent ingestion of one table
// ─────────────────────────────────────────────────────────────

// runningTablesGuard ensures only one ingestion batch runs at a time for a
// given table. Unrelated tables may ingest concurrently on their own
// connections.
type runningTablesGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock attempts to mark table as ingesting. Returns false if an ingestion
// for the table is already running.
func (g *runningTablesGuard) TryLock(table string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[table]; ok {
		return false
	}
	g.running[table] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock marks the table as no longer ingesting. Must be called after
// TryLock returns true.
func (g *runningTablesGuard) Unlock(table string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, table)
	g.wg.Done()
}

// WaitAll blocks until all running ingestions complete or ctx is cancelled.
func (g *runningTablesGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
