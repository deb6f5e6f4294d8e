// Package keymap provides mode-aware key binding definitions and lookup for
// the dashboard. Bindings are declared per mode so the update loop maps a
// key to a Command instead of switching on raw key strings.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode represents the current input mode of the TUI.
type Mode string

const (
	ModeNormal  Mode = "normal"  // Navigating tabs and the grid
	ModeRename  Mode = "rename"  // Editing the active tab's title
	ModeFilter  Mode = "filter"  // Typing a new filter expression
	ModeConfirm Mode = "confirm" // Confirming a tab close
	ModeHelp    Mode = "help"    // Full help overlay
)

// Command represents a named action that can be triggered by a key binding.
type Command string

// Normal mode commands
const (
	// Tabs
	CmdNextTab      Command = "next_tab"
	CmdPrevTab      Command = "prev_tab"
	CmdJumpToTab    Command = "jump_to_tab" // 1-9 keys
	CmdAddTab       Command = "add_tab"
	CmdAddScratch   Command = "add_scratch_tab"
	CmdRenameTab    Command = "rename_tab"
	CmdDuplicateTab Command = "duplicate_tab"
	CmdCloseTab     Command = "close_tab"
	CmdSaveTab      Command = "save_tab"

	// Toolbar and sidebar
	CmdToggleSidebar     Command = "toggle_sidebar"
	CmdAddFilter         Command = "add_filter"
	CmdRemoveFilter      Command = "remove_filter"
	CmdToggleConjunction Command = "toggle_conjunction"
	CmdCycleOrdering     Command = "cycle_ordering"
	CmdRefresh           Command = "refresh"

	// Grid
	CmdRowDown Command = "row_down"
	CmdRowUp   Command = "row_up"

	CmdToggleHelp Command = "toggle_help"
	CmdQuit       Command = "quit"
)

// Text input and confirmation commands
const (
	CmdConfirm Command = "confirm"
	CmdCancel  Command = "cancel"
)

// Binding ties a bubbles key binding to a command.
type Binding struct {
	key.Binding

	Command Command
	// Category groups related bindings together in help display.
	Category string
}

// ModeBindings holds all key bindings for a specific mode.
type ModeBindings struct {
	Mode     Mode
	Bindings []Binding
}

// Lookup returns the command bound to msg in this mode. Disabled bindings
// never match.
func (mb *ModeBindings) Lookup(msg tea.KeyMsg) (Command, bool) {
	for _, b := range mb.Bindings {
		if key.Matches(msg, b.Binding) {
			return b.Command, true
		}
	}
	return "", false
}

// Keymap contains all key bindings organized by mode.
type Keymap struct {
	Name  string
	Modes map[Mode]*ModeBindings
}

// Lookup looks up the command for a key in a specific mode.
func (km *Keymap) Lookup(msg tea.KeyMsg, mode Mode) (Command, bool) {
	mb, ok := km.Modes[mode]
	if !ok {
		return "", false
	}
	return mb.Lookup(msg)
}

// SetEnabled enables or disables every binding for cmd in mode. The help
// bar hides disabled bindings.
func (km *Keymap) SetEnabled(mode Mode, cmd Command, enabled bool) {
	mb, ok := km.Modes[mode]
	if !ok {
		return
	}
	for i := range mb.Bindings {
		if mb.Bindings[i].Command == cmd {
			mb.Bindings[i].SetEnabled(enabled)
		}
	}
}

// ShortHelp returns one enabled binding per command, in declaration order,
// for the one-line help bar.
func (km *Keymap) ShortHelp(mode Mode) []key.Binding {
	mb, ok := km.Modes[mode]
	if !ok {
		return nil
	}
	seen := make(map[Command]bool)
	var out []key.Binding
	for _, b := range mb.Bindings {
		if !b.Enabled() || seen[b.Command] || b.Help().Key == "" {
			continue
		}
		seen[b.Command] = true
		out = append(out, b.Binding)
	}
	return out
}

// Categories returns the categories of a mode's bindings in first-seen order.
func (km *Keymap) Categories(mode Mode) []string {
	mb, ok := km.Modes[mode]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var categories []string
	for _, b := range mb.Bindings {
		if b.Category != "" && !seen[b.Category] {
			seen[b.Category] = true
			categories = append(categories, b.Category)
		}
	}
	return categories
}

// ByCategory returns a mode's bindings grouped by category, one per command.
func (km *Keymap) ByCategory(mode Mode) map[string][]key.Binding {
	mb, ok := km.Modes[mode]
	if !ok {
		return nil
	}
	seen := make(map[Command]bool)
	result := make(map[string][]key.Binding)
	for _, b := range mb.Bindings {
		if seen[b.Command] {
			continue
		}
		seen[b.Command] = true
		cat := b.Category
		if cat == "" {
			cat = "Other"
		}
		result[cat] = append(result[cat], b.Binding)
	}
	return result
}
