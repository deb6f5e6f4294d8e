package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Iron-Ham/dmdash/internal/store"
)

// projectPayload mirrors /api/projects/{id}. Every counter is optional.
type projectPayload struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	TaskCount     *int   `json:"task_count"`
	TaskNumber    *int   `json:"task_number"`
	TargetSyncing *bool  `json:"target_syncing"`
	SourceSyncing *bool  `json:"source_syncing"`
}

// GetProject fetches the project fields the summary reads.
func (c *Client) GetProject(ctx context.Context, projectID int) (store.Project, error) {
	var p projectPayload
	endpoint := c.endpoint(fmt.Sprintf("/api/projects/%d", projectID), nil)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &p); err != nil {
		return store.Project{}, err
	}
	if p.ID == 0 {
		p.ID = projectID
	}
	return store.Project{
		ID:            p.ID,
		Title:         p.Title,
		TaskCount:     p.TaskCount,
		TaskNumber:    p.TaskNumber,
		TargetSyncing: p.TargetSyncing,
		SourceSyncing: p.SourceSyncing,
	}, nil
}
