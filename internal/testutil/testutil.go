// Package testutil provides testing utilities for dmdash tests.
package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/dmdash/internal/fixture"
	"github.com/Iron-Ham/dmdash/internal/store"
)

// Persister is an in-memory store.Persister that records every call as a
// short string ("create <title>", "update <id> <title>", "delete <id>").
type Persister struct {
	mu     sync.Mutex
	views  map[int][]store.ViewData
	calls  []string
	nextID int

	// FailOn makes calls whose record starts with this prefix fail.
	FailOn string
}

// NewPersister creates a Persister seeded with views for projectID.
func NewPersister(projectID int, seed ...store.ViewData) *Persister {
	return &Persister{views: map[int][]store.ViewData{projectID: seed}}
}

func (p *Persister) record(call string) error {
	p.calls = append(p.calls, call)
	if p.FailOn != "" && strings.HasPrefix(call, p.FailOn) {
		return fmt.Errorf("persister refused %q", call)
	}
	return nil
}

// LoadViews implements store.Persister.
func (p *Persister) LoadViews(_ context.Context, projectID int) ([]store.ViewData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]store.ViewData(nil), p.views[projectID]...), nil
}

// CreateView implements store.Persister.
func (p *Persister) CreateView(_ context.Context, projectID int, v store.ViewData) (store.ViewData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.record("create " + v.Title); err != nil {
		return store.ViewData{}, err
	}
	p.nextID++
	v.ID = fmt.Sprintf("id-%d", p.nextID)
	p.views[projectID] = append(p.views[projectID], v)
	return v, nil
}

// UpdateView implements store.Persister.
func (p *Persister) UpdateView(_ context.Context, _ int, v store.ViewData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record(fmt.Sprintf("update %s %s", v.ID, v.Title))
}

// DeleteView implements store.Persister.
func (p *Persister) DeleteView(_ context.Context, _ int, v store.ViewData) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record("delete " + v.ID)
}

// Calls returns the recorded calls in order.
func (p *Persister) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// Reset forgets recorded calls.
func (p *Persister) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

// NewStore creates a loaded store for projectID over p. The store is closed
// when the test completes.
func NewStore(t *testing.T, projectID int, p *Persister, opts ...func(*store.Options)) *store.Store {
	t.Helper()

	o := store.Options{ProjectID: projectID, Persister: p, SidebarEnabled: true}
	for _, fn := range opts {
		fn(&o)
	}
	s := store.New(o)
	t.Cleanup(s.Close)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	s.Wait()
	return s
}

// FixtureServer starts the built-in fixture API and returns its URL. The
// server is closed when the test completes.
func FixtureServer(t *testing.T, opts fixture.Options) string {
	t.Helper()

	srv := httptest.NewServer(fixture.NewServer(fixture.Default(), opts).Routes())
	t.Cleanup(srv.Close)
	return srv.URL
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", name, err)
	}
	return path
}
