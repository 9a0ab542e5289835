package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig contains configuration for the source directory watcher.
type WatcherConfig struct {
	// Dir is the source directory to watch, including subdirectories.
	Dir string

	// Debounce is the quiet period after the last change before the
	// changed documents are re-ingested (default: 500ms).
	Debounce time.Duration

	// OnFlush, when set, is called after every re-ingestion with the batch
	// report and the IDs of removed documents.
	OnFlush func(report BatchReport, removed []string)
}

// Watcher re-ingests documents of a directory as they change on disk.
// Changes are collected until the directory has been quiet for the debounce
// interval, then every changed document is re-ingested in one batch and
// every deleted or renamed document is removed from the store.
type Watcher struct {
	pipeline *Pipeline
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   WatcherConfig
	debounce *Debouncer

	mu      sync.Mutex
	pending map[string]struct{}
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	flushMu   sync.Mutex
	closeOnce sync.Once
}

// NewWatcher creates a watcher feeding p.
func NewWatcher(p *Pipeline, cfg WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if p == nil {
		return nil, errors.New("ingestion: pipeline is required")
	}
	if cfg.Dir == "" {
		return nil, errors.New("ingestion: watch directory is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		pipeline: p,
		watcher:  fw,
		logger:   logger.With("component", "ingestion.watcher"),
		config:   cfg,
		debounce: NewDebouncer(cfg.Debounce),
		pending:  make(map[string]struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until ctx is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.addDirectory(w.config.Dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	w.logger.Info("source watcher started",
		"dir", w.config.Dir,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("source watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("source watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("source watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and cancels any pending re-ingestion.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()

	var err error
	w.closeOnce.Do(func() {
		close(w.stopCh)
		if running {
			<-w.doneCh
		}
		w.debounce.Stop()
		if cerr := w.watcher.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}
	})
	return err
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op == fsnotify.Chmod || isHidden(event.Name) {
		return
	}

	// New subdirectories are watched as they appear; files created inside
	// them before the watch is added are picked up by the next scheduled or
	// manual ingestion.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirectory(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !w.pipeline.accepts(event.Name) {
		return
	}

	w.logger.Debug("source change detected", "path", event.Name, "op", event.Op.String())

	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	w.mu.Unlock()

	w.debounce.Trigger(func() { w.flush(ctx) })
}

// flush re-ingests the pending paths that still exist and removes the rest.
func (w *Watcher) flush(ctx context.Context) {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	var (
		docs    []Document
		removed []string
	)
	for _, p := range paths {
		rel, err := filepath.Rel(w.config.Dir, p)
		if err != nil {
			w.logger.Warn("changed file outside source directory", "path", p, "error", err)
			continue
		}
		id := filepath.ToSlash(rel)

		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			if _, err := w.pipeline.Remove(ctx, id); err != nil {
				w.logger.Error("failed to remove document", "document_id", id, "error", err)
				continue
			}
			removed = append(removed, id)
			continue
		}
		docs = append(docs, readDocument(w.config.Dir, id))
	}

	var report BatchReport
	if len(docs) > 0 {
		report = w.pipeline.IngestBatch(ctx, docs)
	}

	w.logger.Info("source changes applied",
		"reingested", report.Documents,
		"failed", report.Failed,
		"removed", len(removed),
	)

	if w.config.OnFlush != nil {
		w.config.OnFlush(report, removed)
	}
}

// addDirectory watches dir and all its non-hidden subdirectories.
func (w *Watcher) addDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}

// Debouncer runs the most recently triggered callback once no trigger has
// arrived for the interval.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Trigger (re)arms the debouncer with callback.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.stopCh:
		return
	default:
	}

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}

		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
