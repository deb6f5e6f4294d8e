package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/dmdash/internal/filter"
	"github.com/Iron-Ham/dmdash/internal/tui/keymap"
	"github.com/Iron-Ham/dmdash/internal/tui/styles"
	"github.com/Iron-Ham/dmdash/internal/tui/view"
	"github.com/Iron-Ham/dmdash/internal/util"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	header := m.renderHeader()
	if m.mode == keymap.ModeHelp {
		return lipgloss.JoinVertical(lipgloss.Left, header, view.RenderHelpPanel(m.keymap, m.width))
	}

	layout := m.shell.Layout()
	dims := CalculateLayout(m.width, m.height, m.sidebarWidth, layout.Shrink)
	active, _ := m.shell.Tabs.Active()

	var (
		conj     filter.Conjunction
		filters  []filter.Filter
		ordering []string
	)
	if v, ok := m.selectedView(); ok {
		conj, filters = v.Filters()
		ordering = v.Ordering()
	}

	tabBar := view.RenderTabBar(view.TabBarState{
		Tabs:   m.shell.Tabs.Tabs(),
		Shrink: layout.Shrink,
		Width:  m.width - dims.SidebarWidth,
	})
	toolbar := view.RenderToolbar(view.ToolbarState{
		Active:         active,
		Ordering:       ordering,
		Conjunction:    conj,
		FilterCount:    len(filters),
		SidebarEnabled: layout.SidebarEnabled,
		SidebarVisible: layout.SidebarVisible,
		Width:          m.width,
	})
	summary := view.RenderSummary(view.SummaryState{
		Summary:      m.shell.Summary(),
		BoxesLoading: m.shell.Boxes.Loading(),
		Spinner:      m.spinner.View(),
		Width:        m.width,
	})

	grid := styles.GridBox.Width(dims.GridWidth).Render(m.grid.View(m.shell.TasksLoading()))
	main := grid
	if dims.SidebarWidth > 0 {
		sidebar := view.RenderSidebar(view.SidebarState{
			Conjunction: conj,
			Filters:     filters,
			Cursor:      len(filters) - 1,
			Width:       dims.SidebarWidth,
			Height:      lipgloss.Height(grid),
		})
		main = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, strings.Repeat(" ", PanelGap), grid)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		tabBar,
		toolbar,
		summary,
		main,
		m.grid.Footer(m.shell.Summary().TotalFoundTasks),
		m.renderStatusLine(),
		view.RenderHelpBar(m.keymap.ShortHelp(m.mode), m.width),
	)
}

func (m Model) renderHeader() string {
	p := m.shell.Store().Project()
	title := p.Title
	if title == "" {
		title = fmt.Sprintf("Project %d", p.ID)
	}
	line := styles.Title.Render("Data Manager") + styles.Muted.Render(" · ") + styles.Text.Render(util.Flatten(title))
	return util.TruncateANSI(line, m.width)
}

// renderStatusLine shows the active prompt, the close confirmation, or the
// last flash message.
func (m Model) renderStatusLine() string {
	switch m.mode {
	case keymap.ModeRename, keymap.ModeFilter:
		return styles.InputPrompt.Render(m.input.View())
	case keymap.ModeConfirm:
		title := m.editKey
		if v, ok := m.shell.Store().Views().Get(m.editKey); ok {
			title = v.Title()
		}
		return styles.Warning.Render(fmt.Sprintf("Close tab %q? [y/n]", title))
	}
	if m.flash == "" {
		return ""
	}
	if m.flashErr {
		return styles.ErrorMsg.Render(util.TruncateANSI(m.flash, m.width))
	}
	return styles.InfoMsg.Render(util.TruncateANSI(m.flash, m.width))
}
