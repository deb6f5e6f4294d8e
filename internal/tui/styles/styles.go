// Package styles holds the lipgloss palette and styles of the dashboard.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color
	WarningColor   lipgloss.Color
	ErrorColor     lipgloss.Color
	MutedColor     lipgloss.Color
	SurfaceColor   lipgloss.Color
	TextColor      lipgloss.Color
	BorderColor    lipgloss.Color
	VirtualColor   lipgloss.Color

	// Convenience styles for colors
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Text      lipgloss.Style

	Title lipgloss.Style

	// Tab bar
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	// TabVirtual is layered over the active or inactive style for unsaved tabs.
	TabVirtual lipgloss.Style
	TabAdd     lipgloss.Style
	TabBar     lipgloss.Style

	// Toolbar
	ToolbarButton         lipgloss.Style
	ToolbarButtonDisabled lipgloss.Style
	ToolbarLabel          lipgloss.Style

	// Filter sidebar
	Sidebar           lipgloss.Style
	SidebarTitle      lipgloss.Style
	SidebarItem       lipgloss.Style
	SidebarItemActive lipgloss.Style

	// Summary line
	SummaryLabel lipgloss.Style
	SummaryValue lipgloss.Style
	SyncBadge    lipgloss.Style

	// Data grid
	GridHeader   lipgloss.Style
	GridCell     lipgloss.Style
	GridSelected lipgloss.Style
	GridBox      lipgloss.Style

	// Help bar
	HelpBar lipgloss.Style
	HelpKey lipgloss.Style

	// Footer / status bar
	StatusBar lipgloss.Style
	ErrorMsg  lipgloss.Style
	InfoMsg   lipgloss.Style

	// Text prompts (rename, add filter)
	InputPrompt lipgloss.Style
	InputBox    lipgloss.Style
)

var activeTheme = ThemeDefault

func init() {
	apply(DefaultPalette())
}

// SetActiveTheme rebuilds every style from the named palette. Unknown names
// fall back to the default palette.
//
// Not safe for concurrent use; call it before the program starts.
func SetActiveTheme(name ThemeName) {
	if !IsValidTheme(string(name)) {
		name = ThemeDefault
	}
	activeTheme = name
	apply(GetPalette(name))
}

// ActiveTheme returns the theme the styles were last built from.
func ActiveTheme() ThemeName {
	return activeTheme
}

func apply(p *ColorPalette) {
	PrimaryColor = p.Primary
	SecondaryColor = p.Secondary
	WarningColor = p.Warning
	ErrorColor = p.Error
	MutedColor = p.Muted
	SurfaceColor = p.Surface
	TextColor = p.Text
	BorderColor = p.Border
	VirtualColor = p.Virtual

	Primary = lipgloss.NewStyle().Foreground(p.Primary)
	Secondary = lipgloss.NewStyle().Foreground(p.Secondary)
	Warning = lipgloss.NewStyle().Foreground(p.Warning)
	Error = lipgloss.NewStyle().Foreground(p.Error)
	Muted = lipgloss.NewStyle().Foreground(p.Muted)
	Text = lipgloss.NewStyle().Foreground(p.Text)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary)

	TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text).
		Background(p.Primary).
		Padding(0, 2)

	TabInactive = lipgloss.NewStyle().
		Foreground(p.Muted).
		Padding(0, 2)

	TabVirtual = lipgloss.NewStyle().
		Italic(true).
		Foreground(p.Virtual)

	TabAdd = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Secondary).
		Padding(0, 1)

	TabBar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(p.Border)

	ToolbarButton = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.Surface).
		Padding(0, 1).
		MarginRight(1)

	ToolbarButtonDisabled = lipgloss.NewStyle().
		Foreground(p.Muted).
		Padding(0, 1).
		MarginRight(1).
		Strikethrough(true)

	ToolbarLabel = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginRight(1)

	Sidebar = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)

	SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary).
		MarginBottom(1)

	SidebarItem = lipgloss.NewStyle().
		Foreground(p.Text)

	SidebarItemActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text).
		Background(p.Primary)

	SummaryLabel = lipgloss.NewStyle().
		Foreground(p.Muted)

	SummaryValue = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Secondary)

	SyncBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text).
		Background(p.Warning).
		Padding(0, 1)

	GridHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(p.Border)

	GridCell = lipgloss.NewStyle().
		Foreground(p.Text)

	GridSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text).
		Background(p.Surface)

	GridBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)

	HelpBar = lipgloss.NewStyle().
		Foreground(p.Muted)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Secondary)

	StatusBar = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.Surface).
		Padding(0, 1)

	ErrorMsg = lipgloss.NewStyle().
		Foreground(p.Error).
		Bold(true)

	InfoMsg = lipgloss.NewStyle().
		Foreground(p.Secondary)

	InputPrompt = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Bold(true)

	InputBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1)
}
