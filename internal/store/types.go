package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Iron-Ham/dmdash/internal/filter"
)

// Capabilities controls which tab actions a view exposes.
type Capabilities struct {
	Editable  bool `yaml:"editable" json:"editable"`
	Deletable bool `yaml:"deletable" json:"deletable"`
	Virtual   bool `yaml:"-" json:"-"`
}

// ViewData is the persisted form of a view. Virtual views are never persisted.
type ViewData struct {
	Key           string             `yaml:"key" json:"key"`
	ID            string             `yaml:"id,omitempty" json:"id,omitempty"`
	Title         string             `yaml:"title" json:"title"`
	Editable      bool               `yaml:"editable" json:"editable"`
	Deletable     bool               `yaml:"deletable" json:"deletable"`
	Conjunction   filter.Conjunction `yaml:"conjunction,omitempty" json:"conjunction,omitempty"`
	Filters       []filter.Filter    `yaml:"filters,omitempty" json:"filters,omitempty"`
	Ordering      []string           `yaml:"ordering,omitempty" json:"ordering,omitempty"`
	HiddenColumns []string           `yaml:"hidden_columns,omitempty" json:"hidden_columns,omitempty"`
}

// Project holds the project fields the dashboard reads. Pointer fields are
// nil when the backend did not report them.
type Project struct {
	ID            int
	Title         string
	TaskCount     *int
	TaskNumber    *int
	TargetSyncing *bool
	SourceSyncing *bool
}

// Task is one row of the data grid.
type Task struct {
	ID          int            `json:"id" yaml:"id"`
	Data        map[string]any `json:"data" yaml:"data"`
	Annotations int            `json:"total_annotations" yaml:"annotations"`
	Predictions int            `json:"total_predictions" yaml:"predictions"`
	Completed   bool           `json:"is_labeled" yaml:"completed"`
}

// Field implements filter.Row.
func (t Task) Field(column string) (string, bool) {
	switch column {
	case "id":
		return strconv.Itoa(t.ID), true
	case "completed":
		return strconv.FormatBool(t.Completed), true
	case "annotations":
		return strconv.Itoa(t.Annotations), true
	case "predictions":
		return strconv.Itoa(t.Predictions), true
	}
	if key, ok := strings.CutPrefix(column, "data."); ok {
		v, present := t.Data[key]
		if !present || v == nil {
			return "", false
		}
		return fmt.Sprint(v), true
	}
	return "", false
}

// TaskStore holds the aggregate counts for the selected view. Pointer fields
// are nil until the first page for the view has loaded.
type TaskStore struct {
	ViewKey          string
	Total            *int
	TotalAnnotations *int
	TotalPredictions *int
	Tasks            []Task
	Loading          bool
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
