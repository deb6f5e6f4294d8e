package keymap

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDefaultKeymap_Lookup(t *testing.T) {
	km := DefaultKeymap()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		mode Mode
		want Command
		ok   bool
	}{
		{"tab moves right", tea.KeyMsg{Type: tea.KeyTab}, ModeNormal, CmdNextTab, true},
		{"shift+tab moves left", tea.KeyMsg{Type: tea.KeyShiftTab}, ModeNormal, CmdPrevTab, true},
		{"digit jumps", runes("3"), ModeNormal, CmdJumpToTab, true},
		{"add", runes("a"), ModeNormal, CmdAddTab, true},
		{"scratch is shifted add", runes("A"), ModeNormal, CmdAddScratch, true},
		{"ordering", runes("o"), ModeNormal, CmdCycleOrdering, true},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, ModeNormal, CmdQuit, true},
		{"unbound rune", runes("z"), ModeNormal, "", false},
		{"enter confirms rename", tea.KeyMsg{Type: tea.KeyEnter}, ModeRename, CmdConfirm, true},
		{"letters are text while renaming", runes("a"), ModeRename, "", false},
		{"esc cancels filter", tea.KeyMsg{Type: tea.KeyEsc}, ModeFilter, CmdCancel, true},
		{"y confirms close", runes("y"), ModeConfirm, CmdConfirm, true},
		{"n keeps tab", runes("n"), ModeConfirm, CmdCancel, true},
		{"unknown mode", runes("a"), Mode("bogus"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := km.Lookup(tt.msg, tt.mode)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Lookup(%q, %s) = (%q, %v), want (%q, %v)", tt.msg.String(), tt.mode, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestKeymap_SetEnabled(t *testing.T) {
	km := DefaultKeymap()

	km.SetEnabled(ModeNormal, CmdCloseTab, false)
	if _, ok := km.Lookup(runes("x"), ModeNormal); ok {
		t.Error("disabled binding should not match")
	}
	for _, b := range km.ShortHelp(ModeNormal) {
		if b.Help().Desc == "close" {
			t.Error("disabled binding should be hidden from help")
		}
	}

	km.SetEnabled(ModeNormal, CmdCloseTab, true)
	if cmd, ok := km.Lookup(runes("x"), ModeNormal); !ok || cmd != CmdCloseTab {
		t.Error("re-enabled binding should match")
	}
}

func TestKeymap_ShortHelpOnePerCommand(t *testing.T) {
	km := DefaultKeymap()

	seen := make(map[string]bool)
	for _, b := range km.ShortHelp(ModeNormal) {
		desc := b.Help().Desc
		if seen[desc] {
			t.Errorf("help entry %q listed twice", desc)
		}
		seen[desc] = true
	}
	if !seen["next tab"] || !seen["quit"] {
		t.Errorf("short help missing core entries: %v", seen)
	}
	if km.ShortHelp(Mode("bogus")) != nil {
		t.Error("unknown mode should have no help")
	}
}

func TestKeymap_Categories(t *testing.T) {
	km := DefaultKeymap()

	got := km.Categories(ModeNormal)
	want := []string{"Tabs", "Filters", "Grid", "Application"}
	if len(got) != len(want) {
		t.Fatalf("Categories() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	groups := km.ByCategory(ModeNormal)
	if n := len(groups["Grid"]); n != 3 {
		t.Errorf("Grid commands = %d, want 3", n)
	}
}
