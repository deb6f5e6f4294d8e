package persist

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/dmdash/internal/store"
)

func TestWatcher_ReloadsOnExternalEdit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "views.yaml")
	b := NewFileBackend(path)
	if _, err := b.CreateView(ctx, 1, store.ViewData{Key: "k", Title: "Mine"}); err != nil {
		t.Fatalf("CreateView: %v", err)
	}

	reloaded := make(chan struct{}, 4)
	w, err := NewWatcher(path, func(ctx context.Context) error {
		_, err := b.LoadViews(ctx, 1)
		reloaded <- struct{}{}
		return err
	}, WatcherOptions{Changed: b.Changed, Debounce: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.Start()
	defer w.Stop()

	// Another process edits the file.
	if _, err := NewFileBackend(path).CreateView(ctx, 1, store.ViewData{Key: "k2", Title: "Theirs"}); err != nil {
		t.Fatalf("CreateView: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not reload after external edit")
	}
}

func TestWatcher_IgnoresOwnWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "views.yaml")
	b := NewFileBackend(path)

	var calls atomic.Int32
	w, err := NewWatcher(path, func(context.Context) error {
		calls.Add(1)
		return nil
	}, WatcherOptions{Changed: b.Changed, Debounce: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.Start()
	defer w.Stop()

	if _, err := b.CreateView(ctx, 1, store.ViewData{Key: "k", Title: "Mine"}); err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("reload called %d times for own write, want 0", n)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "views.yaml")

	var calls atomic.Int32
	w, err := NewWatcher(path, func(context.Context) error {
		calls.Add(1)
		return nil
	}, WatcherOptions{Debounce: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.Start()

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("x: 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	w.Stop()
	w.Stop()

	if n := calls.Load(); n != 0 {
		t.Errorf("reload called %d times for unrelated file, want 0", n)
	}
}
