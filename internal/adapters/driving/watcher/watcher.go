// Package watcher ingests files dropped into an inbox directory.
//
// Every supported file that is created or written in the directory is
// registered and processed once it has stopped changing for the settle
// period. Files already ingested with the same size and modification
// time are skipped.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driving"
	"github.com/custodia-labs/docuchat/internal/logger"
)

// DefaultSettle is how long a file must stay unchanged before it is ingested.
const DefaultSettle = 2 * time.Second

// Result reports the outcome of one ingested file.
type Result struct {
	Path     string
	Document *domain.Document
	Chunks   int
	Err      error
}

// Config configures a Watcher.
type Config struct {
	// Dir is the inbox directory.
	Dir string

	// UserID owns every document created from the inbox.
	UserID string

	// Settle is the quiet period before a file is ingested.
	Settle time.Duration

	// OnResult is called after each ingestion attempt. Optional.
	OnResult func(Result)
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

// Watcher ingests new files from a directory.
type Watcher struct {
	ingest driving.IngestService
	cfg    Config

	mu      sync.Mutex
	pending map[string]*time.Timer
	done    map[string]fileStamp
}

// New creates a watcher for cfg.Dir.
func New(ingest driving.IngestService, cfg Config) (*Watcher, error) {
	if ingest == nil {
		return nil, fmt.Errorf("%w: ingest service is required", domain.ErrInvalidConfiguration)
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, cfg.Dir)
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}

	return &Watcher{
		ingest:  ingest,
		cfg:     cfg,
		pending: make(map[string]*time.Timer),
		done:    make(map[string]fileStamp),
	}, nil
}

// Run watches the directory until ctx is cancelled.
// Files present at startup are ingested too.
func (w *Watcher) Run(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	ready := make(chan string, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx, ready)
	}()
	defer func() {
		w.stopTimers()
		wg.Wait()
	}()

	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return fmt.Errorf("read watch directory: %w", err)
	}
	for _, e := range entries {
		if path, ok := w.candidate(fsnotify.Event{Name: filepath.Join(w.cfg.Dir, e.Name()), Op: fsnotify.Create}); ok {
			w.schedule(ctx, path, ready)
		}
	}

	logger.Info("Watching %s for new documents", w.cfg.Dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if path, ok := w.candidate(event); ok {
				w.schedule(ctx, path, ready)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// candidate reports whether event concerns a file that should be ingested.
func (w *Watcher) candidate(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return "", false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", false
	}
	if !domain.MediaTypeFromFilename(event.Name).IsValid() {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string, ready chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.cfg.Settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.cfg.Settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// worker ingests settled files one at a time.
func (w *Watcher) worker(ctx context.Context, ready <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-ready:
			w.ingestFile(ctx, path)
		}
	}
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		logger.Debug("Skipping %s: %v", path, err)
		return
	}
	stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}

	w.mu.Lock()
	prev, seen := w.done[path]
	w.mu.Unlock()
	if seen && prev.size == stamp.size && prev.modTime.Equal(stamp.modTime) {
		logger.Debug("Skipping %s: already ingested", path)
		return
	}

	result := Result{Path: path}
	doc, err := w.ingest.Register(ctx, w.cfg.UserID, path)
	if err == nil {
		result.Document = doc
		var processed *domain.ProcessResult
		processed, err = w.ingest.Process(ctx, doc.ID)
		if err == nil {
			result.Chunks = processed.Chunks
		}
	}
	result.Err = err

	switch {
	case err == nil:
		logger.Info("Ingested %s as %s (%d chunks)", path, doc.ID, result.Chunks)
	case errors.Is(err, context.Canceled):
		return
	default:
		logger.Error("Failed to ingest %s: %v", path, err)
	}

	// Failed files are not retried until they change.
	w.mu.Lock()
	w.done[path] = stamp
	w.mu.Unlock()

	if w.cfg.OnResult != nil {
		w.cfg.OnResult(result)
	}
}
