package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/filter"
	"github.com/Iron-Ham/dmdash/internal/store"
)

// ViewPayload is the wire form of a saved view under /api/dm/views. The
// server assigns ID; everything the dashboard owns travels in Data.
type ViewPayload struct {
	ID      int      `json:"id,omitempty"`
	Project int      `json:"project"`
	Data    ViewBody `json:"data"`
}

// ViewBody holds the view configuration.
type ViewBody struct {
	Key           string             `json:"key"`
	Title         string             `json:"title"`
	Editable      *bool              `json:"editable,omitempty"`
	Deletable     *bool              `json:"deletable,omitempty"`
	Conjunction   filter.Conjunction `json:"conjunction,omitempty"`
	Filters       []filter.Filter    `json:"filters,omitempty"`
	Ordering      []string           `json:"ordering,omitempty"`
	HiddenColumns []string           `json:"hiddenColumns,omitempty"`
}

// ToViewData converts the payload to the store form. Missing capability
// flags default to true, and a missing key falls back to the server ID.
func (p ViewPayload) ToViewData() store.ViewData {
	d := store.ViewData{
		Key:           p.Data.Key,
		Title:         p.Data.Title,
		Editable:      p.Data.Editable == nil || *p.Data.Editable,
		Deletable:     p.Data.Deletable == nil || *p.Data.Deletable,
		Conjunction:   p.Data.Conjunction,
		Filters:       p.Data.Filters,
		Ordering:      p.Data.Ordering,
		HiddenColumns: p.Data.HiddenColumns,
	}
	if p.ID != 0 {
		d.ID = strconv.Itoa(p.ID)
	}
	if d.Key == "" {
		d.Key = "view-" + d.ID
	}
	if d.Conjunction == "" {
		d.Conjunction = filter.And
	}
	return d
}

// PayloadFromViewData converts a store view into its wire form.
func PayloadFromViewData(projectID int, d store.ViewData) ViewPayload {
	p := ViewPayload{
		Project: projectID,
		Data: ViewBody{
			Key:           d.Key,
			Title:         d.Title,
			Editable:      store.Bool(d.Editable),
			Deletable:     store.Bool(d.Deletable),
			Conjunction:   d.Conjunction,
			Filters:       d.Filters,
			Ordering:      d.Ordering,
			HiddenColumns: d.HiddenColumns,
		},
	}
	if id, err := strconv.Atoi(d.ID); err == nil {
		p.ID = id
	}
	return p
}

func projectQuery(projectID int) url.Values {
	return url.Values{"project": {strconv.Itoa(projectID)}}
}

func viewPath(id string) (string, error) {
	if _, err := strconv.Atoi(id); err != nil {
		return "", errors.NewValidationError("view ID must be numeric").WithField("id").WithValue(id)
	}
	return "/api/dm/views/" + id, nil
}

// ListViews returns the project's saved views in server order.
func (c *Client) ListViews(ctx context.Context, projectID int) ([]store.ViewData, error) {
	var payloads []ViewPayload
	if err := c.do(ctx, http.MethodGet, c.endpoint("/api/dm/views", projectQuery(projectID)), nil, nil, &payloads); err != nil {
		return nil, err
	}
	views := make([]store.ViewData, 0, len(payloads))
	for _, p := range payloads {
		views = append(views, p.ToViewData())
	}
	return views, nil
}

// CreateView stores v and returns it with the server-assigned ID.
func (c *Client) CreateView(ctx context.Context, projectID int, v store.ViewData) (store.ViewData, error) {
	in := PayloadFromViewData(projectID, v)
	in.ID = 0

	var out ViewPayload
	if err := c.do(ctx, http.MethodPost, c.endpoint("/api/dm/views", projectQuery(projectID)), nil, in, &out); err != nil {
		return store.ViewData{}, err
	}
	if out.ID == 0 {
		return store.ViewData{}, errors.NewFetchError("created view has no id", errors.ErrMalformedResponse)
	}
	created := out.ToViewData()
	created.Key = v.Key
	return created, nil
}

// UpdateView replaces the stored configuration of v.
func (c *Client) UpdateView(ctx context.Context, projectID int, v store.ViewData) error {
	path, err := viewPath(v.ID)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, c.endpoint(path, projectQuery(projectID)), nil, PayloadFromViewData(projectID, v), nil)
}

// DeleteView removes v from the server.
func (c *Client) DeleteView(ctx context.Context, projectID int, v store.ViewData) error {
	path, err := viewPath(v.ID)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, c.endpoint(path, projectQuery(projectID)), nil, nil, nil)
}
