// Package store is the application store the dashboard reads from: the
// project, the task aggregates for the selected view, the view collection
// and the sidebar layout flags.
//
// The store is the single mutable source of truth. Every mutation goes
// through one of its methods, which update memory under a lock, publish an
// event on the bus after unlocking, and hand persistence to a background
// queue. Callers never wait on the persistence backend.
package store

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/event"
	"github.com/Iron-Ham/dmdash/internal/logging"
)

// Persister stores saved views. Implementations live in internal/persist.
type Persister interface {
	LoadViews(ctx context.Context, projectID int) ([]ViewData, error)
	// CreateView stores a new view and returns it with its ID assigned.
	CreateView(ctx context.Context, projectID int, v ViewData) (ViewData, error)
	UpdateView(ctx context.Context, projectID int, v ViewData) error
	DeleteView(ctx context.Context, projectID int, v ViewData) error
}

// Options configures a Store.
type Options struct {
	ProjectID      int
	Persister      Persister
	Bus            *event.Bus
	Logger         *logging.Logger
	SidebarEnabled bool
	SidebarVisible bool
	// Headers are sent with every API request made on behalf of the store.
	Headers http.Header
	// PersistTimeout bounds each persistence call (default 10s).
	PersistTimeout time.Duration
}

// Store is the shared application state container.
type Store struct {
	mu sync.RWMutex

	bus       *event.Bus
	logger    *logging.Logger
	persister Persister
	headers   http.Header

	project Project
	tasks   TaskStore
	views   *ViewCollection

	sidebarEnabled bool
	sidebarVisible bool

	queue *persistQueue
}

// New creates a Store with an empty view collection. Call Load to populate it.
func New(opts Options) *Store {
	bus := opts.Bus
	if bus == nil {
		bus = event.NewBus(opts.Logger)
	}
	timeout := opts.PersistTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &Store{
		bus:            bus,
		logger:         logging.OrNop(opts.Logger).WithComponent("store").WithProject(opts.ProjectID),
		persister:      opts.Persister,
		headers:        opts.Headers.Clone(),
		project:        Project{ID: opts.ProjectID},
		sidebarEnabled: opts.SidebarEnabled,
		sidebarVisible: opts.SidebarVisible,
	}
	if s.headers == nil {
		s.headers = http.Header{}
	}
	s.views = &ViewCollection{store: s}
	s.queue = newPersistQueue(s, timeout)
	return s
}

// Bus returns the event bus the store publishes on.
func (s *Store) Bus() *event.Bus { return s.bus }

// Views returns the view collection.
func (s *Store) Views() *ViewCollection { return s.views }

// Subscribe registers handler for every store event and returns a function
// that removes the subscription.
func (s *Store) Subscribe(handler event.Handler) (unsubscribe func()) {
	id := s.bus.SubscribeAll(handler)
	return func() { s.bus.Unsubscribe(id) }
}

// CommonHeaders returns a copy of the headers sent with API requests.
func (s *Store) CommonHeaders() http.Header {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.headers.Clone()
}

// Project returns a copy of the project fields.
func (s *Store) Project() Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project
}

// SetProject replaces the project fields. The project ID given at
// construction is kept when p.ID is zero.
func (s *Store) SetProject(p Project) {
	s.mu.Lock()
	if p.ID == 0 {
		p.ID = s.project.ID
	}
	s.project = p
	s.mu.Unlock()

	s.bus.Publish(event.NewProjectUpdatedEvent(p.ID))
}

// Tasks returns a copy of the task store.
func (s *Store) Tasks() TaskStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts := s.tasks
	ts.Tasks = append([]Task(nil), s.tasks.Tasks...)
	return ts
}

// SetTasks replaces the task store. Updates for a view other than the
// selected one are ignored, since they belong to a superseded request.
func (s *Store) SetTasks(ts TaskStore) {
	s.mu.Lock()
	if sel := s.views.selectedLocked(); sel != nil && ts.ViewKey != "" && ts.ViewKey != sel.data.Key {
		s.mu.Unlock()
		s.logger.Debug("dropping tasks for unselected view", "view_key", ts.ViewKey)
		return
	}
	s.tasks = ts
	s.mu.Unlock()

	s.bus.Publish(event.NewTasksUpdatedEvent(ts.ViewKey, len(ts.Tasks)))
}

// SidebarEnabled reports whether the filter sidebar may be shown.
func (s *Store) SidebarEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebarEnabled
}

// SidebarVisible reports whether the filter sidebar is currently shown.
func (s *Store) SidebarVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebarVisible
}

// SetSidebarVisible shows or hides the filter sidebar.
func (s *Store) SetSidebarVisible(visible bool) {
	s.mu.Lock()
	changed := s.sidebarVisible != visible
	s.sidebarVisible = visible
	enabled := s.sidebarEnabled
	s.mu.Unlock()

	if changed {
		s.bus.Publish(event.NewLayoutChangedEvent(enabled, visible))
	}
}

// ToggleSidebar flips sidebar visibility.
func (s *Store) ToggleSidebar() {
	s.SetSidebarVisible(!s.SidebarVisible())
}

// Load replaces the collection with the persisted views. When the backend
// has none, a default view is created. The previously selected key is kept
// if it still exists, and virtual views survive the reload.
func (s *Store) Load(ctx context.Context) error {
	var loaded []ViewData
	if s.persister != nil {
		var err error
		loaded, err = s.persister.LoadViews(ctx, s.Project().ID)
		if err != nil {
			s.logger.Error("failed to load views", "error", err.Error())
			return errors.NewStoreError("load views", err).WithRetryable(true)
		}
	}

	s.mu.Lock()
	count, selected, created := s.views.replaceLocked(loaded)
	s.mu.Unlock()

	if created != nil {
		s.queue.enqueue(opCreate, created.Key, *created)
	}
	s.logger.Info("views loaded", "count", count, "selected", selected)
	s.bus.Publish(event.NewViewsReloadedEvent(count, selected))
	return nil
}

// Reload re-reads persisted views after an external edit, waiting for
// queued writes first so the store does not load its own stale state.
func (s *Store) Reload(ctx context.Context) error {
	s.queue.wait()
	return s.Load(ctx)
}

// Wait blocks until all queued persistence operations have finished.
func (s *Store) Wait() { s.queue.wait() }

// Close drains the persistence queue and stops its worker.
func (s *Store) Close() { s.queue.close() }

func (s *Store) reportError(operation, key string, err error) {
	s.logger.Error("store operation failed", "operation", operation, "view_key", key, "error", err.Error())
	s.bus.Publish(event.NewStoreErrorEvent(operation, key, err))
}
