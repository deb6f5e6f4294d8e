// Package util provides small text helpers shared by the terminal views.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis is appended to text cut to fit a column.
const Ellipsis = "…"

// TruncateANSI cuts s to maxWidth visual columns, ending it with Ellipsis
// when anything was removed. Escape sequences and wide runes are measured
// the way the terminal draws them.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= ansi.StringWidth(Ellipsis) {
		return Ellipsis
	}
	return ansi.Truncate(s, maxWidth, Ellipsis)
}

// Fit truncates or right-pads s so it occupies exactly width columns.
func Fit(s string, width int) string {
	s = TruncateANSI(s, width)
	if gap := width - lipgloss.Width(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

// Flatten collapses runs of whitespace, including newlines, to single
// spaces so a value fits on one grid line.
func Flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
