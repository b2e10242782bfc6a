// Package watch re-runs a function when any of a set of files changes
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rajesh-ms/learn-lego-programming/internal/utils"
)

// DefaultDebounce batches the several events a single save produces
const DefaultDebounce = 500 * time.Millisecond

// Func is called after the watched files settle
type Func func(ctx context.Context) error

// Stats tracks watcher activity
type Stats struct {
	Events        int
	Runs          int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher watches the parent directories of its files, since editors often
// replace a file instead of writing it in place
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	fn       Func

	mu    sync.RWMutex
	stats Stats
}

// New starts watching paths. Run must be called afterwards, or Close when
// it never will be.
func New(paths []string, debounce time.Duration, fn Func) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if fn == nil {
		return nil, fmt.Errorf("watch function cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	sorted := make([]string, 0, len(dirs))
	for dir := range dirs {
		sorted = append(sorted, dir)
	}
	sort.Strings(sorted)
	for _, dir := range sorted {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		utils.LogDebug("Watching directory: %s", dir)
	}

	return &Watcher{
		fsw:      fsw,
		files:    files,
		debounce: debounce,
		fn:       fn,
	}, nil
}

// Close releases the underlying watcher
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Stats returns a copy of the activity counters
func (w *Watcher) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// Run calls fn once per burst of changes until ctx ends, then closes the
// watcher. Errors from fn are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	utils.LogInfo("Watching %d files for changes (Ctrl+C to stop)", len(w.files))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			utils.LogVerbose("Watcher stopped")
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			utils.LogDebug("Watcher: %s %s", event.Op, event.Name)

			w.mu.Lock()
			w.stats.Events++
			w.stats.LastEventPath = filepath.Clean(event.Name)
			w.stats.LastEventTime = time.Now()
			w.mu.Unlock()

			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			utils.LogWarning("Watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-timer.C:
			w.trigger(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

func (w *Watcher) trigger(ctx context.Context) {
	utils.LogInfo("Change detected, re-running")
	err := w.fn(ctx)

	w.mu.Lock()
	w.stats.Runs++
	if err != nil {
		w.stats.Errors++
	}
	w.mu.Unlock()

	if err != nil {
		utils.LogError("Re-run failed: %v", err)
	}
}
