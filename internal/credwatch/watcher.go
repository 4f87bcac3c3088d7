// Package credwatch reloads credentials when the config file changes.
package credwatch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/wxnotify/pkg/log"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher monitors a single file via fsnotify and calls OnChange, debounced,
// after it is written or replaced. The parent directory is watched so that
// atomic renames are seen.
type Watcher struct {
	path     string
	onChange func()
	delay    time.Duration
	logger   log.Logger

	mu       sync.Mutex
	debounce *time.Timer
	stopped  bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before OnChange runs.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New returns a watcher for path. onChange runs on its own goroutine.
func New(path string, onChange func(), opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		delay:    DefaultDebounce,
		logger:   log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching and returns once the watch is registered. Watching
// stops when ctx is done; a pending callback is dropped.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go w.run(ctx, watcher)
	return nil
}

func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	defer w.stop()

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("credential watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, func() {
		w.logger.Debug("config file changed", log.String("path", w.path))
		w.onChange()
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	if w.debounce != nil {
		w.debounce.Stop()
	}
}
