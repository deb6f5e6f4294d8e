// Package fixture serves a small in-memory Data Manager API from a YAML
// file. `dmdash serve` runs it for offline development, and the api and
// persist tests run it under httptest.
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/dmdash/internal/filter"
	"github.com/Iron-Ham/dmdash/internal/store"
)

// Data is the fixture file format.
type Data struct {
	Projects []Project `yaml:"projects"`
}

// Project is one project with its tasks and initially saved views.
type Project struct {
	ID            int    `yaml:"id"`
	Title         string `yaml:"title"`
	TaskCount     *int   `yaml:"task_count,omitempty"`
	TaskNumber    *int   `yaml:"task_number,omitempty"`
	TargetSyncing *bool  `yaml:"target_syncing,omitempty"`
	SourceSyncing *bool  `yaml:"source_syncing,omitempty"`
	Tasks         []Task `yaml:"tasks"`
	Views         []View `yaml:"views,omitempty"`
}

// Task is a task row plus the number of bounding boxes drawn on it.
type Task struct {
	store.Task `yaml:",inline"`
	Boxes      int `yaml:"boxes"`
}

// View is a saved view seeded into the fixture.
type View struct {
	ID          int                `yaml:"id"`
	Key         string             `yaml:"key"`
	Title       string             `yaml:"title"`
	Conjunction filter.Conjunction `yaml:"conjunction,omitempty"`
	Filters     []filter.Filter    `yaml:"filters,omitempty"`
	Ordering    []string           `yaml:"ordering,omitempty"`
}

// Load reads a fixture file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(raw)
}

// Parse decodes fixture YAML and checks project IDs are unique and positive.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	seen := make(map[int]bool)
	for _, p := range d.Projects {
		if p.ID <= 0 {
			return nil, fmt.Errorf("parse fixture: project %q has no positive id", p.Title)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("parse fixture: duplicate project id %d", p.ID)
		}
		seen[p.ID] = true
	}
	return &d, nil
}

// Default returns the built-in fixture: one project with a handful of
// image tasks and a single saved view.
func Default() *Data {
	task := func(id int, image string, ann, pred, boxes int) Task {
		return Task{
			Task: store.Task{
				ID:          id,
				Data:        map[string]any{"image": image},
				Annotations: ann,
				Predictions: pred,
				Completed:   ann > 0,
			},
			Boxes: boxes,
		}
	}
	return &Data{
		Projects: []Project{{
			ID:        1,
			Title:     "Street scenes",
			TaskCount: store.Int(6),
			Tasks: []Task{
				task(1, "s3://scenes/0001.jpg", 1, 1, 4),
				task(2, "s3://scenes/0002.jpg", 2, 0, 7),
				task(3, "s3://scenes/0003.png", 0, 1, 0),
				task(4, "s3://scenes/0004.jpg", 0, 0, 0),
				task(5, "s3://scenes/0005.png", 1, 0, 2),
				task(6, "s3://scenes/0006.jpg", 0, 0, 0),
			},
			Views: []View{{ID: 1, Key: "default", Title: "Default"}},
		}},
	}
}
