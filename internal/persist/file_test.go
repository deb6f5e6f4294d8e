package persist

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/filter"
	"github.com/Iron-Ham/dmdash/internal/store"
)

func TestFileBackend_MissingFileIsEmpty(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "nested", "views.yaml"))

	views, err := b.LoadViews(context.Background(), 1)
	if err != nil {
		t.Fatalf("LoadViews: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("views = %v, want none", views)
	}
}

func TestFileBackend_CRUD(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "views.yaml")
	b := NewFileBackend(path)

	in := store.ViewData{
		Key:         "k1",
		Title:       "Images",
		Editable:    true,
		Deletable:   true,
		Conjunction: filter.And,
		Filters:     []filter.Filter{{Column: "data.image", Operator: filter.OpMatches, Value: "*.png"}},
		Ordering:    []string{"-id"},
	}
	created, err := b.CreateView(ctx, 3, in)
	if err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	if created.ID == "" {
		t.Fatal("CreateView should assign an ID")
	}

	// A second backend on the same file sees the write.
	other := NewFileBackend(path)
	views, err := other.LoadViews(ctx, 3)
	if err != nil {
		t.Fatalf("LoadViews: %v", err)
	}
	if diff := cmp.Diff([]store.ViewData{created}, views); diff != "" {
		t.Errorf("views mismatch (-want +got):\n%s", diff)
	}

	// Views are scoped per project.
	if views, _ := b.LoadViews(ctx, 4); len(views) != 0 {
		t.Errorf("project 4 views = %v, want none", views)
	}

	created.Title = "PNG only"
	if err := b.UpdateView(ctx, 3, created); err != nil {
		t.Fatalf("UpdateView: %v", err)
	}
	views, _ = b.LoadViews(ctx, 3)
	if len(views) != 1 || views[0].Title != "PNG only" {
		t.Errorf("after update views = %+v", views)
	}

	err = b.UpdateView(ctx, 3, store.ViewData{ID: "missing"})
	if !errors.Is(err, errors.ErrViewNotFound) {
		t.Errorf("update missing err = %v, want ErrViewNotFound", err)
	}

	if err := b.DeleteView(ctx, 3, created); err != nil {
		t.Fatalf("DeleteView: %v", err)
	}
	if err := b.DeleteView(ctx, 3, created); err != nil {
		t.Errorf("deleting twice should be a no-op, got %v", err)
	}
	views, _ = b.LoadViews(ctx, 3)
	if len(views) != 0 {
		t.Errorf("after delete views = %v", views)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(raw), "version: 1") {
		t.Errorf("file should carry a version, got:\n%s", raw)
	}
}

func TestFileBackend_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yaml")
	if err := os.WriteFile(path, []byte("projects: [this is: not a map"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileBackend(path).LoadViews(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "parse views file") {
		t.Errorf("err = %v, want parse error", err)
	}
}

func TestFileBackend_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	b := NewFileBackend(filepath.Join(t.TempDir(), "views.yaml"))

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := b.CreateView(ctx, 1, store.ViewData{Key: string(rune('a' + i)), Title: "t"}); err != nil {
				t.Errorf("CreateView: %v", err)
			}
		}()
	}
	wg.Wait()

	views, err := b.LoadViews(ctx, 1)
	if err != nil {
		t.Fatalf("LoadViews: %v", err)
	}
	if len(views) != 10 {
		t.Errorf("len(views) = %d, want 10", len(views))
	}
}

func TestFileBackend_Changed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "views.yaml")
	b := NewFileBackend(path)

	if _, err := b.CreateView(ctx, 1, store.ViewData{Key: "k", Title: "Mine"}); err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	if b.Changed() {
		t.Error("own write should not count as a change")
	}

	if _, err := NewFileBackend(path).CreateView(ctx, 1, store.ViewData{Key: "k2", Title: "Theirs"}); err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	if !b.Changed() {
		t.Error("another writer's change should be detected")
	}

	if _, err := b.LoadViews(ctx, 1); err != nil {
		t.Fatalf("LoadViews: %v", err)
	}
	if b.Changed() {
		t.Error("reading the file should reset the change marker")
	}
}

func TestFileBackend_WithStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "views.yaml")

	s := store.New(store.Options{ProjectID: 1, Persister: NewFileBackend(path)})
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	v := s.Views().AddView(store.AddViewOptions{Title: "Backlog"})
	if err := v.SetTitle("Review"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}
	if err := v.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	// A fresh store over the same file sees both views.
	fresh := store.New(store.Options{ProjectID: 1, Persister: NewFileBackend(path)})
	defer fresh.Close()
	if err := fresh.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	var titles []string
	for _, v := range fresh.Views().All() {
		titles = append(titles, v.Title())
	}
	if diff := cmp.Diff([]string{store.DefaultViewTitle, "Review"}, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
}
