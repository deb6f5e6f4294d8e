package persist

import (
	"context"

	"github.com/Iron-Ham/dmdash/internal/api"
	"github.com/Iron-Ham/dmdash/internal/store"
)

// APIBackend stores views through the Data Manager API's /api/dm/views
// endpoints.
type APIBackend struct {
	client *api.Client
}

// NewAPIBackend creates a backend on top of client.
func NewAPIBackend(client *api.Client) *APIBackend {
	return &APIBackend{client: client}
}

// LoadViews implements store.Persister.
func (b *APIBackend) LoadViews(ctx context.Context, projectID int) ([]store.ViewData, error) {
	return b.client.ListViews(ctx, projectID)
}

// CreateView implements store.Persister.
func (b *APIBackend) CreateView(ctx context.Context, projectID int, v store.ViewData) (store.ViewData, error) {
	return b.client.CreateView(ctx, projectID, v)
}

// UpdateView implements store.Persister.
func (b *APIBackend) UpdateView(ctx context.Context, projectID int, v store.ViewData) error {
	return b.client.UpdateView(ctx, projectID, v)
}

// DeleteView implements store.Persister.
func (b *APIBackend) DeleteView(ctx context.Context, projectID int, v store.ViewData) error {
	return b.client.DeleteView(ctx, projectID, v)
}

var (
	_ store.Persister = (*FileBackend)(nil)
	_ store.Persister = (*APIBackend)(nil)
)
