package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/dmdash/internal/filter"
	"github.com/Iron-Ham/dmdash/internal/tui/styles"
	"github.com/Iron-Ham/dmdash/internal/util"
)

// SidebarPadding is the horizontal space taken by the sidebar's border and
// padding.
const SidebarPadding = 4

// SidebarState holds what the filter sidebar needs to render.
type SidebarState struct {
	Conjunction filter.Conjunction
	Filters     []filter.Filter
	// Cursor is the highlighted filter, used by remove.
	Cursor int
	Width  int
	Height int
}

// RenderSidebar draws the selected view's filters.
func RenderSidebar(state SidebarState) string {
	inner := max(state.Width-SidebarPadding, 8)

	lines := []string{styles.SidebarTitle.Render("Filters")}
	if len(state.Filters) == 0 {
		lines = append(lines, styles.Muted.Render("No filters"), "", styles.Muted.Render("[+] add"))
	} else {
		lines = append(lines, styles.Muted.Render("match "+conjunctionLabel(state.Conjunction)))
		for i, f := range state.Filters {
			item := util.TruncateANSI(fmt.Sprintf("%d. %s", i+1, f.String()), inner)
			if i == state.Cursor {
				lines = append(lines, styles.SidebarItemActive.Render(util.Fit(item, inner)))
			} else {
				lines = append(lines, styles.SidebarItem.Render(item))
			}
		}
		lines = append(lines, "", styles.Muted.Render("[+] add  [-] remove  [c] and/or"))
	}

	style := styles.Sidebar.Width(inner)
	if state.Height > 2 {
		style = style.Height(state.Height - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// FilterHelp is shown as the placeholder of the add-filter prompt.
const FilterHelp = "column op value, e.g. data.image matches *.jpg"

// ParseFilter reads the add-filter prompt's "column operator value" text.
// The value may contain spaces; "empty" takes an optional true/false.
func ParseFilter(input string) (filter.Filter, error) {
	fields := strings.Fields(input)
	if len(fields) < 2 {
		return filter.Filter{}, fmt.Errorf("expected \"column operator value\"")
	}
	f := filter.Filter{
		Column:   fields[0],
		Operator: filter.Operator(fields[1]),
		Value:    strings.Join(fields[2:], " "),
	}
	if f.Operator == filter.OpEmpty && f.Value == "" {
		f.Value = "true"
	}
	if err := f.Validate(); err != nil {
		return filter.Filter{}, err
	}
	return f, nil
}

// SidebarWidth returns the sidebar's rendered width for inner width w.
func SidebarWidth(w int) int {
	return lipgloss.Width(styles.Sidebar.Width(max(w-SidebarPadding, 8)).Render(""))
}
