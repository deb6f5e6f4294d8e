// Package view renders the dashboard's panels. Each renderer takes a plain
// state value and a width so it can be tested without a running program.
package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/dmdash/internal/dashboard"
	"github.com/Iron-Ham/dmdash/internal/tui/styles"
	"github.com/Iron-Ham/dmdash/internal/util"
)

// Tab title widths. In shrink mode the tab area gives up room to the
// filter sidebar, so titles are cut shorter.
const (
	TabTitleWidth       = 24
	ShrunkTabTitleWidth = 12
	// VirtualMarker prefixes tabs that have not been saved.
	VirtualMarker = "*"
	AddTabLabel   = "+"
)

// TabBarState holds what the tab bar needs to render.
type TabBarState struct {
	Tabs   []dashboard.Tab
	Shrink bool
	Width  int
}

// RenderTabBar draws the tabs in collection order followed by the add
// button. When the tabs overflow the width, the window scrolls so the
// active tab stays visible.
func RenderTabBar(state TabBarState) string {
	titleWidth := TabTitleWidth
	if state.Shrink {
		titleWidth = ShrunkTabTitleWidth
	}

	rendered := make([]string, 0, len(state.Tabs))
	active := 0
	for i, tab := range state.Tabs {
		rendered = append(rendered, renderTab(tab, titleWidth))
		if tab.Active {
			active = i
		}
	}
	add := styles.TabAdd.Render(AddTabLabel)

	if state.Width > 0 {
		rendered = fitTabs(rendered, active, state.Width-lipgloss.Width(add))
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, append(rendered, add)...)
	return styles.TabBar.Render(line)
}

func renderTab(tab dashboard.Tab, titleWidth int) string {
	title := util.TruncateANSI(util.Flatten(tab.Title), titleWidth)
	style := styles.TabInactive
	if tab.Active {
		style = styles.TabActive
	}
	if tab.Caps.Virtual {
		title = VirtualMarker + title
		style = style.Inherit(styles.TabVirtual)
	}
	return style.Render(title)
}

// fitTabs returns the widest run of tabs around active that fits width,
// marking cut-off sides with an ellipsis.
func fitTabs(tabs []string, active, width int) []string {
	total := 0
	for _, t := range tabs {
		total += lipgloss.Width(t)
	}
	if total <= width || len(tabs) == 0 {
		return tabs
	}

	more := styles.Muted.Render(util.Ellipsis)
	budget := width - 2*lipgloss.Width(more)
	lo, hi := active, active+1
	used := lipgloss.Width(tabs[active])
	for {
		grew := false
		if hi < len(tabs) && used+lipgloss.Width(tabs[hi]) <= budget {
			used += lipgloss.Width(tabs[hi])
			hi++
			grew = true
		}
		if lo > 0 && used+lipgloss.Width(tabs[lo-1]) <= budget {
			lo--
			used += lipgloss.Width(tabs[lo])
			grew = true
		}
		if !grew {
			break
		}
	}

	out := make([]string, 0, hi-lo+2)
	if lo > 0 {
		out = append(out, more)
	}
	out = append(out, tabs[lo:hi]...)
	if hi < len(tabs) {
		out = append(out, more)
	}
	return out
}

// TabTitles returns the plain titles as the tab bar shows them, for the
// one-shot summary output.
func TabTitles(tabs []dashboard.Tab) string {
	titles := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		title := tab.Title
		if tab.Caps.Virtual {
			title = VirtualMarker + title
		}
		if tab.Active {
			title = "[" + title + "]"
		}
		titles = append(titles, title)
	}
	return strings.Join(titles, " ")
}
