package persist

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/dmdash/internal/logging"
)

const defaultDebounce = 100 * time.Millisecond

// ReloadFunc re-reads persisted state, typically store.Reload.
type ReloadFunc func(ctx context.Context) error

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Changed filters out events for content the process wrote itself.
	// When nil, every event triggers a reload.
	Changed func() bool
	// Debounce collapses the bursts of events editors produce for one save.
	Debounce time.Duration
	// Timeout bounds each reload call (default 10s).
	Timeout time.Duration
	Logger  *logging.Logger
}

// Watcher reloads the store when the views file changes on disk.
//
// The parent directory is watched rather than the file itself, since an
// atomic write replaces the file and a watch on the old inode would go
// quiet.
type Watcher struct {
	fsw    *fsnotify.Watcher
	path   string
	reload ReloadFunc
	opts   WatcherOptions
	logger *logging.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewWatcher creates a watcher for path. Call Start to begin watching.
func NewWatcher(path string, reload ReloadFunc, opts WatcherOptions) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &Watcher{
		fsw:    fsw,
		path:   abs,
		reload: reload,
		opts:   opts,
		logger: logging.OrNop(opts.Logger).WithComponent("watcher"),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops watching and waits for the loop to exit. Safe to call more
// than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.fsw.Close()
	})
	<-w.done
}

func (w *Watcher) watchLoop() {
	defer close(w.done)

	debounce := time.NewTimer(0)
	<-debounce.C
	pending := false

	for {
		select {
		case <-w.stopCh:
			debounce.Stop()
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			debounce.Reset(w.opts.Debounce)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			w.handleChange()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watch error", "path", w.path, "error", err.Error())
		}
	}
}

func (w *Watcher) handleChange() {
	if w.opts.Changed != nil && !w.opts.Changed() {
		w.logger.Debug("ignoring own write", "path", w.path)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.opts.Timeout)
	defer cancel()

	if err := w.reload(ctx); err != nil {
		w.logger.Warn("reload after external edit failed", "path", w.path, "error", err.Error())
		return
	}
	w.logger.Info("reloaded views after external edit", "path", w.path)
}
