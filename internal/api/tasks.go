package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/store"
)

// TaskQuery selects one page of tasks for a view.
type TaskQuery struct {
	ViewID    string
	ProjectID int
	Page      int
	PageSize  int
	// Ordering is sent as a comma-separated list, "-" prefixed for descending.
	Ordering []string
}

func (q TaskQuery) values() url.Values {
	v := url.Values{}
	v.Set("view", q.ViewID)
	v.Set("project", strconv.Itoa(q.ProjectID))
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if len(q.Ordering) > 0 {
		v.Set("ordering", strings.Join(q.Ordering, ","))
	}
	return v
}

// TaskPage is the decoded /api/tasks response. Count fields are nil when
// the server omitted them.
type TaskPage struct {
	Tasks            []store.Task `json:"tasks"`
	Total            *int         `json:"total"`
	TotalAnnotations *int         `json:"total_annotations"`
	TotalPredictions *int         `json:"total_predictions"`
	Boxes            *int         `json:"boxes"`
}

// TaskStore converts the page into the store's aggregate form for viewKey.
func (p TaskPage) TaskStore(viewKey string) store.TaskStore {
	return store.TaskStore{
		ViewKey:          viewKey,
		Total:            p.Total,
		TotalAnnotations: p.TotalAnnotations,
		TotalPredictions: p.TotalPredictions,
		Tasks:            p.Tasks,
	}
}

// ListTasks fetches one page of tasks with their aggregate counts.
func (c *Client) ListTasks(ctx context.Context, q TaskQuery) (TaskPage, error) {
	var page TaskPage
	err := c.do(ctx, http.MethodGet, c.endpoint("/api/tasks", q.values()), nil, nil, &page)
	return page, err
}

// FetchBoxes reads the boxes metric for (viewID, projectID) from
// GET /api/tasks?view={viewID}&project={projectID}. headers are sent in
// addition to the client's own. A response without a boxes field is
// reported as ErrMalformedResponse.
func (c *Client) FetchBoxes(ctx context.Context, viewID string, projectID int, headers http.Header) (int, error) {
	q := TaskQuery{ViewID: viewID, ProjectID: projectID}
	endpoint := c.endpoint("/api/tasks", q.values())

	var body struct {
		Boxes *int `json:"boxes"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, headers, nil, &body); err != nil {
		return 0, err
	}
	if body.Boxes == nil {
		return 0, errors.NewFetchError("response has no boxes field", errors.ErrMalformedResponse).WithURL(endpoint)
	}
	return *body.Boxes, nil
}
