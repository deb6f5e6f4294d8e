package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault ThemeName = "default" // Purple/green dark theme
	ThemeNord    ThemeName = "nord"    // Cool blue-gray
	ThemeDracula ThemeName = "dracula"
	ThemeLight   ThemeName = "light" // For light terminal backgrounds
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{
		string(ThemeDefault),
		string(ThemeNord),
		string(ThemeDracula),
		string(ThemeLight),
	}
}

// IsValidTheme checks if a theme name is built in.
func IsValidTheme(name string) bool {
	return slices.Contains(BuiltinThemes(), name)
}

// ColorPalette defines the color scheme for a theme.
// All colors should meet WCAG AA contrast requirements (4.5:1 ratio).
type ColorPalette struct {
	// Primary accent color (active tab, titles)
	Primary lipgloss.Color
	// Secondary accent color (key hints, summary values)
	Secondary lipgloss.Color
	// Warning color (storage sync badge)
	Warning lipgloss.Color
	// Error color (failed loads and persists)
	Error lipgloss.Color
	// Muted color (inactive tabs, labels)
	Muted lipgloss.Color
	// Surface color (status bar background)
	Surface lipgloss.Color
	// Text color (primary text)
	Text lipgloss.Color
	// Border color (panel borders)
	Border lipgloss.Color
	// Virtual marks unsaved tabs
	Virtual lipgloss.Color
}

// DefaultPalette returns the default purple/green dark theme palette.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#A78BFA"), // Purple (violet-400)
		Secondary: lipgloss.Color("#10B981"), // Green
		Warning:   lipgloss.Color("#F59E0B"), // Amber
		Error:     lipgloss.Color("#F87171"), // Red (red-400)
		Muted:     lipgloss.Color("#9CA3AF"), // Gray
		Surface:   lipgloss.Color("#1F2937"), // Dark surface
		Text:      lipgloss.Color("#F9FAFB"), // Light text
		Border:    lipgloss.Color("#6B7280"), // Gray-500
		Virtual:   lipgloss.Color("#60A5FA"), // Blue
	}
}

// NordPalette returns the Nord palette.
func NordPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#88C0D0"),
		Secondary: lipgloss.Color("#A3BE8C"),
		Warning:   lipgloss.Color("#EBCB8B"),
		Error:     lipgloss.Color("#BF616A"),
		Muted:     lipgloss.Color("#D8DEE9"),
		Surface:   lipgloss.Color("#3B4252"),
		Text:      lipgloss.Color("#ECEFF4"),
		Border:    lipgloss.Color("#4C566A"),
		Virtual:   lipgloss.Color("#81A1C1"),
	}
}

// DraculaPalette returns the Dracula palette.
func DraculaPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#BD93F9"),
		Secondary: lipgloss.Color("#50FA7B"),
		Warning:   lipgloss.Color("#FFB86C"),
		Error:     lipgloss.Color("#FF5555"),
		Muted:     lipgloss.Color("#A0A8CD"),
		Surface:   lipgloss.Color("#44475A"),
		Text:      lipgloss.Color("#F8F8F2"),
		Border:    lipgloss.Color("#6272A4"),
		Virtual:   lipgloss.Color("#8BE9FD"),
	}
}

// LightPalette returns a palette for light terminal backgrounds.
func LightPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#6D28D9"), // Violet-700
		Secondary: lipgloss.Color("#047857"), // Emerald-700
		Warning:   lipgloss.Color("#B45309"), // Amber-700
		Error:     lipgloss.Color("#B91C1C"), // Red-700
		Muted:     lipgloss.Color("#4B5563"), // Gray-600
		Surface:   lipgloss.Color("#E5E7EB"), // Gray-200
		Text:      lipgloss.Color("#111827"), // Gray-900
		Border:    lipgloss.Color("#9CA3AF"), // Gray-400
		Virtual:   lipgloss.Color("#1D4ED8"), // Blue-700
	}
}

// GetPalette returns the color palette for the given theme name.
// Returns the default palette for unknown theme names.
func GetPalette(name ThemeName) *ColorPalette {
	switch name {
	case ThemeNord:
		return NordPalette()
	case ThemeDracula:
		return DraculaPalette()
	case ThemeLight:
		return LightPalette()
	default:
		return DefaultPalette()
	}
}
