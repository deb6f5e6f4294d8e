package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/dmdash/internal/dashboard"
	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/event"
	"github.com/Iron-Ham/dmdash/internal/filter"
	"github.com/Iron-Ham/dmdash/internal/logging"
	"github.com/Iron-Ham/dmdash/internal/store"
	"github.com/Iron-Ham/dmdash/internal/tui/keymap"
	"github.com/Iron-Ham/dmdash/internal/tui/view"
)

// ModelOptions configures a Model.
type ModelOptions struct {
	// SidebarWidth is the configured filter sidebar width.
	SidebarWidth int
	// Keymap defaults to keymap.DefaultKeymap().
	Keymap *keymap.Keymap
	Logger *logging.Logger
}

// Model is the bubbletea model for the dashboard. Tab and filter actions
// mutate the store; the model reacts to the events the store publishes,
// so changes made outside the UI (a reloaded views file) render the same
// way.
type Model struct {
	shell  *dashboard.Shell
	keymap *keymap.Keymap
	logger *logging.Logger

	mode    keymap.Mode
	input   textinput.Model
	spinner spinner.Model
	grid    *view.Grid

	// editKey is the view a rename or close prompt applies to.
	editKey string

	sidebarWidth int
	width        int
	height       int
	ready        bool
	quitting     bool

	flash    string
	flashErr bool
}

// NewModel creates a model over shell.
func NewModel(shell *dashboard.Shell, opts ModelOptions) Model {
	km := opts.Keymap
	if km == nil {
		km = keymap.DefaultKeymap()
	}

	ti := textinput.New()
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		shell:        shell,
		keymap:       km,
		logger:       logging.OrNop(opts.Logger).WithComponent("tui"),
		mode:         keymap.ModeNormal,
		input:        ti,
		spinner:      sp,
		grid:         view.NewGrid(),
		sidebarWidth: opts.SidebarWidth,
	}
	m.syncKeymap()
	m.refreshGrid()
	return m
}

// Init starts the project, task and boxes loads.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.shell.LoadProject(),
		m.shell.LoadTasks(),
		m.shell.SyncBoxes(),
		m.spinner.Tick,
	)
}

// Update handles messages and user input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case storeEventMsg:
		return m, m.handleEvent(msg.event)
	}

	if handled, cmd := m.shell.Update(msg); handled {
		m.refreshGrid()
		return m, cmd
	}
	return m, nil
}

// Mode returns the current input mode.
func (m Model) Mode() keymap.Mode { return m.mode }

// Flash returns the status line message and whether it is an error.
func (m Model) Flash() (string, bool) { return m.flash, m.flashErr }

func (m *Model) setInfo(msg string) {
	m.flash = msg
	m.flashErr = false
}

func (m *Model) setError(err error) {
	if err == nil {
		return
	}
	m.logger.Debug("action failed", "error", err.Error())
	m.flash = errorText(err)
	m.flashErr = true
}

// errorText prefers the short sentinel wording for errors that are safe to
// show, falling back to the full message.
func errorText(err error) string {
	switch {
	case errors.Is(err, errors.ErrActionUnavailable):
		return "That action is not available for this tab"
	case errors.Is(err, errors.ErrViewNotFound):
		return "The tab no longer exists"
	}
	return err.Error()
}

func (m *Model) clearFlash() {
	m.flash = ""
	m.flashErr = false
}

// handleEvent reacts to a store event and returns the loads it implies.
func (m *Model) handleEvent(e event.Event) tea.Cmd {
	switch e.EventType() {
	case event.TypeViewSelected, event.TypeViewsReloaded:
		m.syncKeymap()
		m.refreshGrid()
		m.grid.MoveCursor(-m.grid.Len())
		return tea.Batch(m.shell.LoadTasks(), m.shell.SyncBoxes())

	case event.TypeViewAdded:
		m.syncKeymap()
		if ve, ok := e.(event.ViewEvent); ok && ve.Reload {
			return m.shell.LoadTasks()
		}

	case event.TypeViewChanged:
		ve, _ := e.(event.ViewEvent)
		if ve.ViewKey != m.shell.Store().Views().SelectedKey() {
			return nil
		}
		m.refreshGrid()
		return m.shell.LoadTasks()

	case event.TypeViewRenamed, event.TypeViewDuplicated, event.TypeViewDeleted:
		m.syncKeymap()

	case event.TypeViewSaved:
		// Saving assigns the backend ID, which changes the boxes key.
		m.syncKeymap()
		return m.shell.SyncBoxes()

	case event.TypeTasksUpdated:
		m.refreshGrid()

	case event.TypeLayoutChanged:
		m.resize()

	case event.TypeStoreError:
		if se, ok := e.(event.StoreErrorEvent); ok {
			m.setError(fmt.Errorf("%s failed: %w", se.Operation, se.Err))
		}
	}
	return nil
}

// syncKeymap enables the tab bindings the active tab allows, so the help
// bar only offers available actions.
func (m *Model) syncKeymap() {
	active, ok := m.shell.Tabs.Active()
	for cmd, action := range map[keymap.Command]dashboard.Action{
		keymap.CmdRenameTab:    dashboard.ActionRename,
		keymap.CmdDuplicateTab: dashboard.ActionDuplicate,
		keymap.CmdCloseTab:     dashboard.ActionClose,
		keymap.CmdSaveTab:      dashboard.ActionSave,
	} {
		m.keymap.SetEnabled(keymap.ModeNormal, cmd, ok && active.Allows(action))
	}
	m.keymap.SetEnabled(keymap.ModeNormal, keymap.CmdToggleSidebar, m.shell.Layout().SidebarEnabled)
}

func (m *Model) refreshGrid() {
	var hidden []string
	if v := m.shell.Store().Views().Selected(); v != nil {
		hidden = v.Snapshot().HiddenColumns
	}
	m.grid.SetTasks(m.shell.VisibleTasks(), hidden)
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	d := CalculateLayout(m.width, m.height, m.sidebarWidth, m.shell.Layout().Shrink)
	m.grid.SetSize(d.GridWidth, d.GridHeight)
	m.input.Width = max(m.width-len(m.input.Prompt)-4, 10)
}

// selectedView returns the view behind the active tab.
func (m *Model) selectedView() (*store.View, bool) {
	v := m.shell.Store().Views().Selected()
	return v, v != nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case keymap.ModeRename:
		return m.handleRenameKey(msg)
	case keymap.ModeFilter:
		return m.handleFilterKey(msg)
	case keymap.ModeConfirm:
		return m.handleConfirmKey(msg)
	case keymap.ModeHelp:
		return m.handleHelpKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, ok := m.keymap.Lookup(msg, keymap.ModeNormal)
	if !ok {
		return m, nil
	}
	m.clearFlash()

	tabs := m.shell.Tabs
	active, hasActive := tabs.Active()

	switch cmd {
	case keymap.CmdQuit:
		return m.quit()

	case keymap.CmdNextTab:
		m.setError(tabs.SelectOffset(1))
	case keymap.CmdPrevTab:
		m.setError(tabs.SelectOffset(-1))
	case keymap.CmdJumpToTab:
		all := tabs.Tabs()
		if n := int(msg.String()[0] - '1'); n >= 0 && n < len(all) {
			m.setError(tabs.Select(all[n].Key))
		}

	case keymap.CmdAddTab:
		tabs.Add()
	case keymap.CmdAddScratch:
		tabs.AddScratch()
		m.setInfo("Scratch tab added; press s to save it")

	case keymap.CmdRenameTab:
		if !hasActive || !active.Allows(dashboard.ActionRename) {
			return m, nil
		}
		m.editKey = active.Key
		m.startInput(keymap.ModeRename, "Rename: ", active.Title, "tab title")

	case keymap.CmdDuplicateTab:
		if hasActive {
			m.setError(tabs.Duplicate(active.Key))
		}

	case keymap.CmdCloseTab:
		if !hasActive || !active.Allows(dashboard.ActionClose) {
			return m, nil
		}
		m.editKey = active.Key
		m.mode = keymap.ModeConfirm

	case keymap.CmdSaveTab:
		if hasActive {
			if err := tabs.Save(active.Key); err != nil {
				m.setError(err)
			} else {
				m.setInfo("Saved " + active.Title)
			}
		}

	case keymap.CmdToggleSidebar:
		m.shell.ToggleSidebar()

	case keymap.CmdAddFilter:
		m.startInput(keymap.ModeFilter, "Filter: ", "", view.FilterHelp)

	case keymap.CmdRemoveFilter:
		if v, ok := m.selectedView(); ok {
			if _, fs := v.Filters(); len(fs) > 0 {
				m.setError(v.RemoveFilter(len(fs) - 1))
			}
		}

	case keymap.CmdToggleConjunction:
		if v, ok := m.selectedView(); ok {
			conj, _ := v.Filters()
			next := filter.Or
			if conj == filter.Or {
				next = filter.And
			}
			m.setError(v.SetConjunction(next))
		}

	case keymap.CmdCycleOrdering:
		if v, ok := m.selectedView(); ok {
			m.setError(v.SetOrdering(view.NextOrdering(v.Ordering())))
		}

	case keymap.CmdRefresh:
		return m, tea.Batch(
			m.shell.LoadProject(),
			m.shell.LoadTasks(),
			m.shell.Boxes.Refresh(m.shell.Store().CommonHeaders()),
		)

	case keymap.CmdRowDown:
		m.grid.MoveCursor(1)
	case keymap.CmdRowUp:
		m.grid.MoveCursor(-1)

	case keymap.CmdToggleHelp:
		m.mode = keymap.ModeHelp
	}
	return m, nil
}

// startInput opens the prompt line. The cursor does not blink, so the
// focus command is not needed.
func (m *Model) startInput(mode keymap.Mode, prompt, value, placeholder string) {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.resize()
	_ = m.input.Focus()
}

func (m *Model) endInput() {
	m.mode = keymap.ModeNormal
	m.input.Blur()
	m.input.Reset()
	m.editKey = ""
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, _ := m.keymap.Lookup(msg, keymap.ModeRename)
	switch cmd {
	case keymap.CmdConfirm:
		title := strings.TrimSpace(m.input.Value())
		err := m.shell.Tabs.Rename(m.editKey, title)
		m.endInput()
		m.setError(err)
		return m, nil
	case keymap.CmdCancel:
		m.endInput()
		return m, nil
	}
	var c tea.Cmd
	m.input, c = m.input.Update(msg)
	return m, c
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, _ := m.keymap.Lookup(msg, keymap.ModeFilter)
	switch cmd {
	case keymap.CmdConfirm:
		f, err := view.ParseFilter(m.input.Value())
		if err != nil {
			// Keep the prompt open so the expression can be fixed.
			m.setError(err)
			return m, nil
		}
		m.endInput()
		if v, ok := m.selectedView(); ok {
			m.setError(v.AddFilter(f))
		}
		return m, nil
	case keymap.CmdCancel:
		m.endInput()
		return m, nil
	}
	var c tea.Cmd
	m.input, c = m.input.Update(msg)
	return m, c
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, ok := m.keymap.Lookup(msg, keymap.ModeConfirm)
	if !ok {
		return m, nil
	}
	key := m.editKey
	m.mode = keymap.ModeNormal
	m.editKey = ""
	if cmd == keymap.CmdConfirm {
		m.setError(m.shell.Tabs.Close(key))
	}
	return m, nil
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, ok := m.keymap.Lookup(msg, keymap.ModeHelp)
	if !ok {
		return m, nil
	}
	if cmd == keymap.CmdQuit {
		return m.quit()
	}
	m.mode = keymap.ModeNormal
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.shell.Stop()
	return m, tea.Quit
}
