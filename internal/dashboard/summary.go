// Package dashboard holds the dashboard's presentation logic, independent
// of how it is drawn: the summary counters, the keyed boxes fetch, the tab
// controller that turns user actions into store mutations, and the shell
// that composes them and derives the layout mode.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/dmdash/internal/store"
)

// SyncLabel is shown next to the counters while storage sync is configured.
const SyncLabel = "Storage sync"

// Summary is the counters shown next to the tabs. It is derived on every
// render and never stored.
type Summary struct {
	TotalTasks       int
	TotalFoundTasks  int
	TotalAnnotations int
	TotalPredictions int
	CloudSync        bool
	Boxes            int
}

// Compute builds the summary from the project, the selected view's task
// aggregates and the last known boxes count. Missing fields count as zero
// (or false); the total prefers task_count over task_number.
//
// TotalFoundTasks is a filtered count and is usually, but not necessarily,
// at most TotalTasks. Nothing here enforces that.
func Compute(p store.Project, ts store.TaskStore, boxes int) Summary {
	return Summary{
		TotalTasks:       firstInt(p.TaskCount, p.TaskNumber),
		TotalFoundTasks:  firstInt(ts.Total),
		TotalAnnotations: firstInt(ts.TotalAnnotations),
		TotalPredictions: firstInt(ts.TotalPredictions),
		CloudSync:        isSet(p.TargetSyncing) || isSet(p.SourceSyncing),
		Boxes:            boxes,
	}
}

func firstInt(vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func isSet(b *bool) bool { return b != nil && *b }

// Fields returns the counter labels in display order.
func (s Summary) Fields() []string {
	return []string{
		fmt.Sprintf("Tasks: %d / %d", s.TotalFoundTasks, s.TotalTasks),
		fmt.Sprintf("Annotations: %d", s.TotalAnnotations),
		fmt.Sprintf("Predictions: %d", s.TotalPredictions),
		fmt.Sprintf("Boxes: %d", s.Boxes),
	}
}

// String renders the summary as one line, prefixed with SyncLabel when
// cloud sync is on.
func (s Summary) String() string {
	line := strings.Join(s.Fields(), "  ")
	if s.CloudSync {
		return SyncLabel + "  " + line
	}
	return line
}
