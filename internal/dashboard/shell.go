package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/dmdash/internal/api"
	"github.com/Iron-Ham/dmdash/internal/filter"
	"github.com/Iron-Ham/dmdash/internal/logging"
	"github.com/Iron-Ham/dmdash/internal/store"
)

// Remote is the part of the Data Manager API the dashboard reads.
// *api.Client implements it.
type Remote interface {
	BoxesFetcher
	ListTasks(ctx context.Context, q api.TaskQuery) (api.TaskPage, error)
	GetProject(ctx context.Context, projectID int) (store.Project, error)
}

// ShellOptions configures a Shell.
type ShellOptions struct {
	Store *store.Store
	// Remote may be nil, which leaves project fields, tasks and boxes as
	// the store holds them.
	Remote   Remote
	Timeout  time.Duration
	PageSize int
	Logger   *logging.Logger
}

// Layout is the shell's derived presentation state.
type Layout struct {
	SidebarEnabled bool
	SidebarVisible bool
	// Shrink narrows the tab area to make room for the filter sidebar.
	Shrink bool
}

// Shrink reports whether the shell runs in shrink mode: only when the
// sidebar is both enabled and visible.
func Shrink(sidebarEnabled, sidebarVisible bool) bool {
	return sidebarEnabled && sidebarVisible
}

// TasksMsg carries a loaded task page back into the update loop.
type TasksMsg struct {
	ViewKey string
	Gen     uint64
	Page    api.TaskPage
	Err     error
}

// ProjectMsg carries loaded project fields back into the update loop.
type ProjectMsg struct {
	Project store.Project
	Err     error
}

// Shell composes the tab bar, toolbar, filter sidebar and data grid. It
// owns the tab controller and the boxes effect and reads everything else
// from the store.
type Shell struct {
	store    *store.Store
	remote   Remote
	timeout  time.Duration
	pageSize int
	logger   *logging.Logger

	Tabs  *TabController
	Boxes *BoxesEffect

	tasksGen    uint64
	tasksCancel context.CancelFunc
}

// NewShell creates a shell over opts.Store.
func NewShell(opts ShellOptions) *Shell {
	logger := logging.OrNop(opts.Logger)
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var fetcher BoxesFetcher
	if opts.Remote != nil {
		fetcher = opts.Remote
	}
	return &Shell{
		store:    opts.Store,
		remote:   opts.Remote,
		timeout:  timeout,
		pageSize: opts.PageSize,
		logger:   logger.WithComponent("shell"),
		Tabs:     NewTabController(opts.Store, logger),
		Boxes:    NewBoxesEffect(fetcher, timeout, logger),
	}
}

// Store returns the store the shell reads.
func (s *Shell) Store() *store.Store { return s.store }

// Layout derives the layout flags from the store.
func (s *Shell) Layout() Layout {
	enabled := s.store.SidebarEnabled()
	visible := s.store.SidebarVisible()
	return Layout{
		SidebarEnabled: enabled,
		SidebarVisible: visible,
		Shrink:         Shrink(enabled, visible),
	}
}

// ToggleSidebar flips sidebar visibility when the sidebar is enabled.
func (s *Shell) ToggleSidebar() {
	if s.store.SidebarEnabled() {
		s.store.ToggleSidebar()
	}
}

// Summary computes the counters for the selected view.
func (s *Shell) Summary() Summary {
	return Compute(s.store.Project(), s.store.Tasks(), s.Boxes.Boxes())
}

// BoxesKey returns the fetch key for the selected view.
func (s *Shell) BoxesKey() (BoxesKey, bool) {
	v := s.store.Views().Selected()
	if v == nil {
		return BoxesKey{}, false
	}
	return BoxesKey{ViewID: v.MetricsID(), ProjectID: s.store.Project().ID}, true
}

// SyncBoxes starts a boxes fetch if the selected view or project changed.
func (s *Shell) SyncBoxes() tea.Cmd {
	key, ok := s.BoxesKey()
	if !ok {
		return nil
	}
	return s.Boxes.Sync(key, s.store.CommonHeaders())
}

// LoadProject fetches the project fields.
func (s *Shell) LoadProject() tea.Cmd {
	if s.remote == nil {
		return nil
	}
	remote, timeout := s.remote, s.timeout
	id := s.store.Project().ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		p, err := remote.GetProject(ctx, id)
		return ProjectMsg{Project: p, Err: err}
	}
}

// LoadTasks fetches the first page of tasks for the selected view,
// cancelling any earlier load.
func (s *Shell) LoadTasks() tea.Cmd {
	if s.remote == nil {
		return nil
	}
	v := s.store.Views().Selected()
	if v == nil {
		return nil
	}
	if s.tasksCancel != nil {
		s.tasksCancel()
	}
	s.tasksGen++

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.tasksCancel = cancel
	gen, remote := s.tasksGen, s.remote
	viewKey := v.Key()
	q := api.TaskQuery{
		ViewID:    v.MetricsID(),
		ProjectID: s.store.Project().ID,
		Page:      1,
		PageSize:  s.pageSize,
		Ordering:  v.Ordering(),
	}
	return func() tea.Msg {
		defer cancel()
		page, err := remote.ListTasks(ctx, q)
		return TasksMsg{ViewKey: viewKey, Gen: gen, Page: page, Err: err}
	}
}

// TasksLoading reports whether a task page load is in flight.
func (s *Shell) TasksLoading() bool { return s.tasksCancel != nil }

// Update applies the shell's own messages. It reports whether msg was one
// of them.
func (s *Shell) Update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case BoxesMsg:
		s.Boxes.Update(msg)
		return true, nil

	case TasksMsg:
		if msg.Gen != s.tasksGen {
			s.logger.Debug("dropping stale task page", "view_key", msg.ViewKey, "gen", msg.Gen)
			return true, nil
		}
		s.tasksCancel = nil
		if msg.Err != nil {
			s.logger.Warn("task load failed", "view_key", msg.ViewKey, "error", msg.Err.Error())
			return true, nil
		}
		s.store.SetTasks(msg.Page.TaskStore(msg.ViewKey))
		return true, nil

	case ProjectMsg:
		if msg.Err != nil {
			s.logger.Warn("project load failed", "error", msg.Err.Error())
			return true, nil
		}
		s.store.SetProject(msg.Project)
		// The project ID may have been corrected by the server.
		return true, s.SyncBoxes()
	}
	return false, nil
}

// VisibleTasks returns the loaded tasks that pass the selected view's
// filters, for the data grid.
func (s *Shell) VisibleTasks() []store.Task {
	tasks := s.store.Tasks().Tasks
	v := s.store.Views().Selected()
	if v == nil {
		return tasks
	}
	conj, filters := v.Filters()
	set, err := filter.Compile(conj, filters)
	if err != nil {
		s.logger.Debug("skipping invalid filters", "error", err.Error())
	}
	return filter.Apply(set, tasks)
}

// Stop cancels in-flight loads. Results that arrive afterwards are dropped.
func (s *Shell) Stop() {
	s.Boxes.Stop()
	if s.tasksCancel != nil {
		s.tasksCancel()
		s.tasksCancel = nil
	}
	s.tasksGen++
}
