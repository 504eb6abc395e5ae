package audit

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-runs a callback when any watched directory changes on disk.
// Rapid bursts (a model download touching hundreds of files) are
// debounced and collapse into a single trigger.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	log      *zap.Logger
	onSettle func(context.Context)
	pending  map[string]time.Time
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity for debugging and tests.
type WatcherStats struct {
	Events      int
	Triggers    int
	Errors      int
	LastEvent   string
	LastEventAt time.Time
}

// NewWatcher builds a watcher over dirs. Directories that do not exist
// yet are skipped with a debug log; they can be picked up by a later
// restart. A zero debounce means the 500ms default.
func NewWatcher(dirs []string, debounce time.Duration, onSettle func(context.Context), log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	w := &Watcher{
		fsw:      fsw,
		log:      log,
		onSettle: onSettle,
		pending:  make(map[string]time.Time),
		debounce: debounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			log.Debug("watch target not present, skipping", zap.String("dir", dir))
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			log.Warn("failed to watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		log.Debug("watching directory", zap.String("dir", dir))
	}

	return w, nil
}

// Watched lists the directories actually under watch.
func (w *Watcher) Watched() []string { return w.fsw.WatchList() }

// Start begins the event loop in a goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop halts the event loop and waits for it to drain.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.fsw.Close(); err != nil {
		w.log.Warn("error closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.processSettled(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Chmod-only events are noise (cp -p, editors touching modes).
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.log.Debug("filesystem event", zap.String("op", event.Op.String()), zap.String("path", event.Name))

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEvent = event.Name
	w.stats.LastEventAt = time.Now()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// processSettled fires one trigger when every pending event has been
// quiet past the debounce window.
func (w *Watcher) processSettled(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	now := time.Now()
	for _, at := range w.pending {
		if now.Sub(at) < w.debounce {
			w.mu.Unlock()
			return
		}
	}
	w.pending = make(map[string]time.Time)
	w.stats.Triggers++
	w.mu.Unlock()

	w.onSettle(ctx)
}

// Stats returns a snapshot of the watcher counters.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
