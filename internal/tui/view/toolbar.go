package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/dmdash/internal/dashboard"
	"github.com/Iron-Ham/dmdash/internal/filter"
	"github.com/Iron-Ham/dmdash/internal/tui/styles"
	"github.com/Iron-Ham/dmdash/internal/util"
)

// ToolbarState holds what the toolbar needs to render.
type ToolbarState struct {
	Active         dashboard.Tab
	Ordering       []string
	Conjunction    filter.Conjunction
	FilterCount    int
	SidebarEnabled bool
	SidebarVisible bool
	Width          int
}

// toolbarActions are shown in this order; unavailable ones are struck out.
var toolbarActions = []struct {
	action dashboard.Action
	label  string
}{
	{dashboard.ActionRename, "rename"},
	{dashboard.ActionDuplicate, "duplicate"},
	{dashboard.ActionClose, "close"},
	{dashboard.ActionSave, "save"},
}

// RenderToolbar draws the action buttons for the active tab followed by the
// ordering, conjunction and filter indicators.
func RenderToolbar(state ToolbarState) string {
	var parts []string
	for _, a := range toolbarActions {
		if state.Active.Allows(a.action) {
			parts = append(parts, styles.ToolbarButton.Render(a.label))
		} else {
			parts = append(parts, styles.ToolbarButtonDisabled.Render(a.label))
		}
	}

	parts = append(parts,
		styles.ToolbarLabel.Render("order:")+styles.Text.Render(OrderingLabel(state.Ordering)),
		styles.ToolbarLabel.Render(" match:")+styles.Text.Render(conjunctionLabel(state.Conjunction)),
	)

	if state.SidebarEnabled {
		label := fmt.Sprintf(" filters: %d", state.FilterCount)
		if state.SidebarVisible {
			label += " ▸"
		}
		parts = append(parts, styles.ToolbarLabel.Render(label))
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if state.Width > 0 {
		line = util.TruncateANSI(line, state.Width)
	}
	return line
}

// OrderingLabel renders an ordering like "-id" as "id ↓".
func OrderingLabel(ordering []string) string {
	if len(ordering) == 0 {
		return "default"
	}
	labels := make([]string, 0, len(ordering))
	for _, o := range ordering {
		if col, ok := strings.CutPrefix(o, "-"); ok {
			labels = append(labels, col+" ↓")
		} else {
			labels = append(labels, o+" ↑")
		}
	}
	return strings.Join(labels, ", ")
}

func conjunctionLabel(c filter.Conjunction) string {
	if c == filter.Or {
		return "any"
	}
	return "all"
}

// NextOrdering cycles the toolbar's ordering control through the sortable
// columns, ascending then descending, then back to the default order.
func NextOrdering(current []string) []string {
	cycle := [][]string{
		nil,
		{"id"}, {"-id"},
		{"annotations"}, {"-annotations"},
		{"predictions"}, {"-predictions"},
	}
	cur := strings.Join(current, ",")
	for i, o := range cycle {
		if strings.Join(o, ",") == cur {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[1]
}
