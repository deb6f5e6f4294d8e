// Package tui provides the terminal dashboard: a tab bar over the project's
// views, the toolbar and summary for the selected view, the optional filter
// sidebar and the data grid.
//
// This file contains layout constants and dimension calculations.
package tui

// Sidebar dimensions
const (
	// SidebarMinWidth is the narrowest filter sidebar.
	SidebarMinWidth = 20

	// SidebarMaxWidth is the widest filter sidebar.
	SidebarMaxWidth = 60

	// NarrowTerminalThreshold is the terminal width below which the sidebar
	// uses SidebarMinWidth regardless of configuration.
	NarrowTerminalThreshold = 80
)

// Layout offsets. These represent the rows and columns taken by fixed UI
// elements around the data grid.
const (
	// ChromeHeight is header (1) + tab bar with border (2) + toolbar (1) +
	// summary (1) + grid footer (1) + status line (1) + help bar (1).
	ChromeHeight = 8

	// GridBoxBorder is the border around the grid on each axis.
	GridBoxBorder = 2

	// PanelGap is the gap between the sidebar and the grid.
	PanelGap = 1

	// MinGridHeight keeps at least a header and a few rows visible.
	MinGridHeight = 3
)

// Dimensions is the computed size of the dashboard's resizable panels.
type Dimensions struct {
	// SidebarWidth is 0 when the sidebar is not shown.
	SidebarWidth int
	GridWidth    int
	GridHeight   int
}

// EffectiveSidebarWidth clamps the configured sidebar width, falling back
// to the minimum on narrow terminals.
func EffectiveSidebarWidth(configured, termWidth int) int {
	if termWidth < NarrowTerminalThreshold {
		return SidebarMinWidth
	}
	return min(max(configured, SidebarMinWidth), SidebarMaxWidth)
}

// CalculateLayout returns the panel sizes for a terminal of the given size.
// The sidebar takes room only in shrink mode.
func CalculateLayout(termWidth, termHeight, sidebarWidth int, shrink bool) Dimensions {
	d := Dimensions{}
	if shrink {
		d.SidebarWidth = EffectiveSidebarWidth(sidebarWidth, termWidth)
	}

	width := termWidth
	if d.SidebarWidth > 0 {
		width -= d.SidebarWidth + PanelGap
	}
	d.GridWidth = max(width-GridBoxBorder, 1)
	d.GridHeight = max(termHeight-ChromeHeight-GridBoxBorder, MinGridHeight)
	return d
}
