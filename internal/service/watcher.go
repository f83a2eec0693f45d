package service

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/zeebo/xxh3"

	"datadeck/internal/config"
	"datadeck/internal/ingest"
)

// ─────────────────────────────────────────────────────────────
// Watcher — drop-directory ingestion (fsnotify + cron)
// ─────────────────────────────────────────────────────────────

// Watcher ingests files dropped into configured directories. A content
// fingerprint skips files that have not changed since their last run, so
// cron re-scans and editor save storms do not re-ingest identical data.
type Watcher struct {
	svc     *IngestService
	entries []config.Watch

	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron

	mu     sync.Mutex
	hashes map[string]uint64 // file path → xxh3 of last ingested content
}

// NewWatcher creates a Watcher over the configured watch entries.
func NewWatcher(svc *IngestService, entries []config.Watch) *Watcher {
	return &Watcher{svc: svc, entries: entries, hashes: make(map[string]uint64)}
}

// Start sets up directory watches and cron re-scans. It returns immediately;
// ingestion runs in the background until Stop.
func (w *Watcher) Start(ctx context.Context) error {
	if len(w.entries) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	dirToEntry := make(map[string]config.Watch)
	for _, e := range w.entries {
		dir, err := filepath.Abs(e.Dir)
		if err != nil {
			log.Printf("watch: bad dir %q: %v", e.Dir, err)
			continue
		}
		if err := watcher.Add(dir); err != nil {
			log.Printf("watch: cannot watch %q: %v", dir, err)
			continue
		}
		dirToEntry[dir] = e
	}

	// Cron re-scans for entries with a schedule.
	var scheduled int
	c := cron.New()
	for dir, e := range dirToEntry {
		if e.Schedule == "" {
			continue
		}
		d, entry := dir, e
		if _, err := c.AddFunc(e.Schedule, func() {
			log.Printf("watch cron: rescanning %q", d)
			w.scanDir(ctx, d, entry)
		}); err != nil {
			log.Printf("watch cron: invalid expression %q for %q: %v", e.Schedule, dir, err)
			continue
		}
		scheduled++
	}
	if scheduled > 0 {
		c.Start()
		w.cronSched = c
		log.Printf("watch cron: scheduled %d rescan(s)", scheduled)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.watchCancel = cancel

	go func() {
		timers := make(map[string]*time.Timer)
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				path, _ := filepath.Abs(event.Name)
				if !ingestableFile(path) {
					continue
				}
				entry, ok := dirToEntry[filepath.Dir(path)]
				if !ok {
					continue
				}
				if t, exists := timers[path]; exists {
					t.Stop()
				}
				p := path
				timers[path] = time.AfterFunc(500*time.Millisecond, func() {
					w.ingestPath(watchCtx, p, entry)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("watch: error: %v", err)
			}
		}
	}()

	log.Printf("watch: watching %d director(ies)", len(dirToEntry))
	return nil
}

// Stop tears down the watcher and scheduler.
func (w *Watcher) Stop() {
	if w.watchCancel != nil {
		w.watchCancel()
		w.watchCancel = nil
	}
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
	}
	if w.cronSched != nil {
		w.cronSched.Stop()
		w.cronSched = nil
	}
}

// scanDir ingests every ingestable file currently in dir.
func (w *Watcher) scanDir(ctx context.Context, dir string, entry config.Watch) {
	files, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("watch: read dir %q: %v", dir, err)
		return
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		path := filepath.Join(dir, f.Name())
		if ingestableFile(path) {
			w.ingestPath(ctx, path, entry)
		}
	}
}

func (w *Watcher) ingestPath(ctx context.Context, path string, entry config.Watch) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("watch: read %q: %v", path, err)
		return
	}

	sum := xxh3.Hash(raw)
	w.mu.Lock()
	unchanged := w.hashes[path] == sum
	w.mu.Unlock()
	if unchanged {
		return
	}

	fileName := filepath.Base(path)
	log.Printf("watch: ingesting %q", fileName)
	if _, err := w.svc.IngestFile(ctx, raw, fileName, entry.Table, ingest.Options{}); err != nil {
		log.Printf("watch: ingest %q failed: %v", fileName, err)
		return
	}

	w.mu.Lock()
	w.hashes[path] = sum
	w.mu.Unlock()
}

// ingestableFile reports whether the path looks like tabular input.
func ingestableFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".xlsx":
		return true
	}
	return false
}
