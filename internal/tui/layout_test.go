package tui

import "testing"

func TestEffectiveSidebarWidth(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		termWidth  int
		want       int
	}{
		{"narrow terminal uses minimum", 40, 60, SidebarMinWidth},
		{"configured width kept", 32, 120, 32},
		{"too small is raised", 5, 120, SidebarMinWidth},
		{"too large is capped", 200, 300, SidebarMaxWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveSidebarWidth(tt.configured, tt.termWidth); got != tt.want {
				t.Errorf("EffectiveSidebarWidth(%d, %d) = %d, want %d", tt.configured, tt.termWidth, got, tt.want)
			}
		})
	}
}

func TestCalculateLayout(t *testing.T) {
	full := CalculateLayout(120, 40, 30, false)
	if full.SidebarWidth != 0 {
		t.Errorf("SidebarWidth = %d without shrink, want 0", full.SidebarWidth)
	}
	if full.GridWidth != 120-GridBoxBorder {
		t.Errorf("GridWidth = %d, want %d", full.GridWidth, 120-GridBoxBorder)
	}
	if full.GridHeight != 40-ChromeHeight-GridBoxBorder {
		t.Errorf("GridHeight = %d, want %d", full.GridHeight, 40-ChromeHeight-GridBoxBorder)
	}

	shrunk := CalculateLayout(120, 40, 30, true)
	if shrunk.SidebarWidth != 30 {
		t.Errorf("SidebarWidth = %d in shrink mode, want 30", shrunk.SidebarWidth)
	}
	if want := full.GridWidth - 30 - PanelGap; shrunk.GridWidth != want {
		t.Errorf("GridWidth = %d in shrink mode, want %d", shrunk.GridWidth, want)
	}

	tiny := CalculateLayout(10, 5, 30, true)
	if tiny.GridWidth < 1 || tiny.GridHeight < MinGridHeight {
		t.Errorf("tiny terminal layout = %+v, want positive minimums", tiny)
	}
}
