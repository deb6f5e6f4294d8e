package view

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/Iron-Ham/dmdash/internal/tui/keymap"
	"github.com/Iron-Ham/dmdash/internal/tui/styles"
	"github.com/Iron-Ham/dmdash/internal/util"
)

// RenderHelpBar draws one "[key] desc" entry per binding on a single line.
func RenderHelpBar(bindings []key.Binding, width int) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, styles.HelpKey.Render("["+h.Key+"]")+" "+h.Desc)
	}
	line := strings.Join(parts, "  ")
	if width > 0 {
		line = util.TruncateANSI(line, width)
	}
	return styles.HelpBar.Render(line)
}

// RenderHelpPanel draws every normal-mode binding grouped by category.
func RenderHelpPanel(km *keymap.Keymap, width int) string {
	groups := km.ByCategory(keymap.ModeNormal)

	lines := []string{styles.Title.Render("Keys"), ""}
	for _, cat := range km.Categories(keymap.ModeNormal) {
		lines = append(lines, styles.Secondary.Bold(true).Render(cat))
		for _, b := range groups[cat] {
			h := b.Help()
			if h.Key == "" {
				continue
			}
			lines = append(lines, "  "+styles.HelpKey.Render(util.Fit(h.Key, 8))+" "+h.Desc)
		}
		lines = append(lines, "")
	}
	lines = append(lines, styles.Muted.Render("Press ? or esc to close"))

	return styles.GridBox.Width(max(width-2, 20)).Padding(0, 1).Render(strings.Join(lines, "\n"))
}
