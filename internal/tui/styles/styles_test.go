package styles

import (
	"testing"

	"github.com/Iron-Ham/dmdash/internal/config"
)

func TestBuiltinThemes_MatchConfig(t *testing.T) {
	want := config.ValidThemes()
	got := BuiltinThemes()
	if len(got) != len(want) {
		t.Fatalf("BuiltinThemes() = %v, config accepts %v", got, want)
	}
	for _, name := range want {
		if !IsValidTheme(name) {
			t.Errorf("config theme %q has no palette", name)
		}
	}
}

func TestGetPalette(t *testing.T) {
	for _, name := range BuiltinThemes() {
		p := GetPalette(ThemeName(name))
		colors := map[string]string{
			"Primary":   string(p.Primary),
			"Secondary": string(p.Secondary),
			"Warning":   string(p.Warning),
			"Error":     string(p.Error),
			"Muted":     string(p.Muted),
			"Surface":   string(p.Surface),
			"Text":      string(p.Text),
			"Border":    string(p.Border),
			"Virtual":   string(p.Virtual),
		}
		for field, c := range colors {
			if c == "" {
				t.Errorf("theme %s: %s color is empty", name, field)
			}
		}
	}

	if GetPalette("unknown").Primary != DefaultPalette().Primary {
		t.Error("unknown themes should use the default palette")
	}
}

func TestSetActiveTheme(t *testing.T) {
	t.Cleanup(func() { SetActiveTheme(ThemeDefault) })

	SetActiveTheme(ThemeNord)
	if ActiveTheme() != ThemeNord {
		t.Errorf("ActiveTheme() = %q, want nord", ActiveTheme())
	}
	if PrimaryColor != NordPalette().Primary {
		t.Errorf("PrimaryColor = %q, want nord primary", PrimaryColor)
	}
	if TabActive.GetBackground() != NordPalette().Primary {
		t.Error("TabActive should be rebuilt from the nord palette")
	}

	SetActiveTheme("neon")
	if ActiveTheme() != ThemeDefault {
		t.Errorf("ActiveTheme() = %q, want fallback to default", ActiveTheme())
	}
	if PrimaryColor != DefaultPalette().Primary {
		t.Error("unknown theme should restore the default palette")
	}
}
