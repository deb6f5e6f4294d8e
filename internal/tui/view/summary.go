package view

import (
	"strconv"
	"strings"

	"github.com/Iron-Ham/dmdash/internal/dashboard"
	"github.com/Iron-Ham/dmdash/internal/tui/styles"
	"github.com/Iron-Ham/dmdash/internal/util"
)

// SummaryState holds what the summary line needs to render.
type SummaryState struct {
	Summary dashboard.Summary
	// BoxesLoading shows Spinner in place of the boxes count while a fetch
	// for a new key is in flight.
	BoxesLoading bool
	Spinner      string
	Width        int
}

// RenderSummary draws the sync badge (when a storage sync is running) and
// the four counters.
func RenderSummary(state SummaryState) string {
	s := state.Summary
	var parts []string
	if s.CloudSync {
		parts = append(parts, styles.SyncBadge.Render(dashboard.SyncLabel))
	}

	boxes := styles.SummaryValue.Render(strconv.Itoa(s.Boxes))
	if state.BoxesLoading && state.Spinner != "" {
		boxes = state.Spinner
	}
	parts = append(parts,
		field("Tasks", styles.SummaryValue.Render(strconv.Itoa(s.TotalFoundTasks))+styles.SummaryLabel.Render(" / ")+styles.SummaryValue.Render(strconv.Itoa(s.TotalTasks))),
		field("Annotations", styles.SummaryValue.Render(strconv.Itoa(s.TotalAnnotations))),
		field("Predictions", styles.SummaryValue.Render(strconv.Itoa(s.TotalPredictions))),
		field("Boxes", boxes),
	)

	line := strings.Join(parts, "  ")
	if state.Width > 0 {
		line = util.TruncateANSI(line, state.Width)
	}
	return line
}

func field(label, value string) string {
	return styles.SummaryLabel.Render(label+": ") + value
}
