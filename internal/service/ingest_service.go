package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"datadeck/internal/ingest"
	"datadeck/internal/tabular"
)

// ─────────────────────────────────────────────────────────────
// IngestService — business logic around the ingestion engine
// ─────────────────────────────────────────────────────────────

// maxRunLog caps the in-memory run history.
const maxRunLog = 100

// RunLog is one recorded ingestion run.
type RunLog struct {
	ID         string                    `json:"id"`
	FileName   string                    `json:"fileName"`
	Table      string                    `json:"table"`
	StartedAt  time.Time                 `json:"startedAt"`
	FinishedAt time.Time                 `json:"finishedAt"`
	Status     string                    `json:"status"` // "success" | "error"
	Summaries  map[string]ingest.Summary `json:"summaries,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

// IngestService wraps the engine with a per-table running guard and a run
// log. All ingestion paths (MCP tool, CLI, file watcher, scheduler) go
// through it.
type IngestService struct {
	engine  *ingest.Engine
	emitter EventEmitter
	guard   runningTablesGuard

	mu   sync.Mutex
	runs []RunLog
}

// NewIngestService creates an IngestService ready for use.
func NewIngestService(engine *ingest.Engine, emitter EventEmitter) *IngestService {
	return &IngestService{engine: engine, emitter: emitter}
}

// IngestFile runs one ingestion batch. Concurrent ingestion of the same
// table is rejected; the caller may retry once the running batch finishes.
func (s *IngestService) IngestFile(ctx context.Context, raw []byte, fileName, tableOverride string, opts ingest.Options) (map[string]ingest.Summary, error) {
	table := tableOverride
	if table == "" {
		table = tabular.DeriveTableName(fileName)
	}
	if table == "" {
		return nil, fmt.Errorf("cannot derive table name from %q", fileName)
	}

	if !s.guard.TryLock(table) {
		return nil, fmt.Errorf("ingestion already running for table %q", table)
	}
	defer s.guard.Unlock(table)

	run := RunLog{
		ID:        uuid.New().String(),
		FileName:  fileName,
		Table:     table,
		StartedAt: time.Now(),
	}
	s.emitter.Emit(ctx, "ingest:started", map[string]string{"runId": run.ID, "table": table})

	summaries, err := s.engine.Ingest(ctx, raw, fileName, table, opts)
	run.FinishedAt = time.Now()
	if err != nil {
		run.Status = "error"
		run.Error = err.Error()
		s.record(run)
		s.emitter.Emit(ctx, "ingest:failed", map[string]string{"runId": run.ID, "table": table, "error": err.Error()})
		return nil, err
	}

	run.Status = "success"
	run.Summaries = summaries
	s.record(run)
	s.emitter.Emit(ctx, "ingest:completed", map[string]any{"runId": run.ID, "summaries": summaries})
	return summaries, nil
}

// Runs returns the recorded run history, most recent last.
func (s *IngestService) Runs() []RunLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunLog, len(s.runs))
	copy(out, s.runs)
	return out
}

// WaitRunning blocks until all running ingestions finish or ctx is
// cancelled. Used for graceful shutdown.
func (s *IngestService) WaitRunning(ctx context.Context) {
	s.guard.WaitAll(ctx)
}

func (s *IngestService) record(run RunLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	if len(s.runs) > maxRunLog {
		s.runs = s.runs[len(s.runs)-maxRunLog:]
	}
}
