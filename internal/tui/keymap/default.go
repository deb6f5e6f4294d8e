package keymap

import "github.com/charmbracelet/bubbles/key"

// DefaultKeymap returns the default dashboard key bindings.
func DefaultKeymap() *Keymap {
	return &Keymap{
		Name: "default",
		Modes: map[Mode]*ModeBindings{
			ModeNormal:  defaultNormalBindings(),
			ModeRename:  defaultInputBindings(ModeRename, "rename"),
			ModeFilter:  defaultInputBindings(ModeFilter, "add filter"),
			ModeConfirm: defaultConfirmBindings(),
			ModeHelp:    defaultHelpBindings(),
		},
	}
}

func bind(cmd Command, category string, keys []string, helpKey, desc string) Binding {
	return Binding{
		Binding:  key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc)),
		Command:  cmd,
		Category: category,
	}
}

func defaultNormalBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeNormal,
		Bindings: []Binding{
			bind(CmdNextTab, "Tabs", []string{"tab", "l", "right"}, "tab", "next tab"),
			bind(CmdPrevTab, "Tabs", []string{"shift+tab", "h", "left"}, "S-tab", "prev tab"),
			bind(CmdJumpToTab, "Tabs", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"}, "1-9", "jump to tab"),
			bind(CmdAddTab, "Tabs", []string{"a"}, "a", "add tab"),
			bind(CmdAddScratch, "Tabs", []string{"A"}, "A", "scratch tab"),
			bind(CmdRenameTab, "Tabs", []string{"r"}, "r", "rename"),
			bind(CmdDuplicateTab, "Tabs", []string{"d"}, "d", "duplicate"),
			bind(CmdCloseTab, "Tabs", []string{"x"}, "x", "close"),
			bind(CmdSaveTab, "Tabs", []string{"s"}, "s", "save"),

			bind(CmdToggleSidebar, "Filters", []string{"f"}, "f", "filters"),
			bind(CmdAddFilter, "Filters", []string{"+"}, "+", "add filter"),
			bind(CmdRemoveFilter, "Filters", []string{"-"}, "-", "remove filter"),
			bind(CmdToggleConjunction, "Filters", []string{"c"}, "c", "and/or"),
			bind(CmdCycleOrdering, "Filters", []string{"o"}, "o", "order"),

			bind(CmdRowDown, "Grid", []string{"j", "down"}, "j/k", "rows"),
			bind(CmdRowUp, "Grid", []string{"k", "up"}, "", ""),
			bind(CmdRefresh, "Grid", []string{"ctrl+r", "R"}, "R", "refresh"),

			bind(CmdToggleHelp, "Application", []string{"?"}, "?", "help"),
			bind(CmdQuit, "Application", []string{"q", "ctrl+c"}, "q", "quit"),
		},
	}
}

func defaultInputBindings(mode Mode, action string) *ModeBindings {
	return &ModeBindings{
		Mode: mode,
		Bindings: []Binding{
			bind(CmdConfirm, "Control", []string{"enter"}, "enter", action),
			bind(CmdCancel, "Control", []string{"esc", "ctrl+c"}, "esc", "cancel"),
		},
	}
}

func defaultConfirmBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeConfirm,
		Bindings: []Binding{
			bind(CmdConfirm, "Control", []string{"y", "Y", "enter"}, "y", "close tab"),
			bind(CmdCancel, "Control", []string{"n", "N", "esc", "ctrl+c"}, "n", "keep"),
		},
	}
}

func defaultHelpBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeHelp,
		Bindings: []Binding{
			bind(CmdToggleHelp, "Control", []string{"?", "esc", "q"}, "?", "close help"),
			bind(CmdQuit, "Control", []string{"ctrl+c"}, "ctrl+c", "quit"),
		},
	}
}
