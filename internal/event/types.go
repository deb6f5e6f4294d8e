// Package event defines the events the view store publishes so that the
// dashboard can re-render without the store knowing who is listening.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "view.selected", "tasks.updated")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// Event type names.
const (
	TypeViewAdded      = "view.added"
	TypeViewSelected   = "view.selected"
	TypeViewRenamed    = "view.renamed"
	TypeViewChanged    = "view.changed"
	TypeViewSaved      = "view.saved"
	TypeViewDuplicated = "view.duplicated"
	TypeViewDeleted    = "view.deleted"
	TypeViewsReloaded  = "views.reloaded"
	TypeTasksUpdated   = "tasks.updated"
	TypeProjectUpdated = "project.updated"
	TypeLayoutChanged  = "layout.changed"
	TypeStoreError     = "store.error"
)

// -----------------------------------------------------------------------------
// View Events
// -----------------------------------------------------------------------------

// ViewEvent is emitted for every mutation of a single view.
type ViewEvent struct {
	baseEvent
	ViewKey string
	Title   string
	// SourceKey is set on view.duplicated to the key that was cloned.
	SourceKey string
	// Reload is set on view.added when the caller asked for a task reload.
	Reload bool
}

// NewViewAddedEvent creates a view.added event.
func NewViewAddedEvent(key, title string, reload bool) ViewEvent {
	return ViewEvent{baseEvent: newBaseEvent(TypeViewAdded), ViewKey: key, Title: title, Reload: reload}
}

// NewViewSelectedEvent creates a view.selected event.
func NewViewSelectedEvent(key string) ViewEvent {
	return ViewEvent{baseEvent: newBaseEvent(TypeViewSelected), ViewKey: key}
}

// NewViewRenamedEvent creates a view.renamed event.
func NewViewRenamedEvent(key, title string) ViewEvent {
	return ViewEvent{baseEvent: newBaseEvent(TypeViewRenamed), ViewKey: key, Title: title}
}

// NewViewChangedEvent creates a view.changed event, emitted when a view's
// filters or ordering change.
func NewViewChangedEvent(key string) ViewEvent {
	return ViewEvent{baseEvent: newBaseEvent(TypeViewChanged), ViewKey: key}
}

// NewViewSavedEvent creates a view.saved event.
func NewViewSavedEvent(key, title string) ViewEvent {
	return ViewEvent{baseEvent: newBaseEvent(TypeViewSaved), ViewKey: key, Title: title}
}

// NewViewDuplicatedEvent creates a view.duplicated event.
func NewViewDuplicatedEvent(key, sourceKey, title string) ViewEvent {
	return ViewEvent{baseEvent: newBaseEvent(TypeViewDuplicated), ViewKey: key, SourceKey: sourceKey, Title: title}
}

// NewViewDeletedEvent creates a view.deleted event.
func NewViewDeletedEvent(key string) ViewEvent {
	return ViewEvent{baseEvent: newBaseEvent(TypeViewDeleted), ViewKey: key}
}

// ViewsReloadedEvent is emitted after the collection was replaced from storage.
type ViewsReloadedEvent struct {
	baseEvent
	Count       int
	SelectedKey string
}

// NewViewsReloadedEvent creates a views.reloaded event.
func NewViewsReloadedEvent(count int, selectedKey string) ViewsReloadedEvent {
	return ViewsReloadedEvent{baseEvent: newBaseEvent(TypeViewsReloaded), Count: count, SelectedKey: selectedKey}
}

// -----------------------------------------------------------------------------
// Project, Task and Layout Events
// -----------------------------------------------------------------------------

// TasksUpdatedEvent is emitted when the task store aggregates change.
type TasksUpdatedEvent struct {
	baseEvent
	ViewKey string
	Count   int
}

// NewTasksUpdatedEvent creates a tasks.updated event.
func NewTasksUpdatedEvent(viewKey string, count int) TasksUpdatedEvent {
	return TasksUpdatedEvent{baseEvent: newBaseEvent(TypeTasksUpdated), ViewKey: viewKey, Count: count}
}

// ProjectUpdatedEvent is emitted when project fields change.
type ProjectUpdatedEvent struct {
	baseEvent
	ProjectID int
}

// NewProjectUpdatedEvent creates a project.updated event.
func NewProjectUpdatedEvent(projectID int) ProjectUpdatedEvent {
	return ProjectUpdatedEvent{baseEvent: newBaseEvent(TypeProjectUpdated), ProjectID: projectID}
}

// LayoutChangedEvent is emitted when sidebar flags change.
type LayoutChangedEvent struct {
	baseEvent
	SidebarEnabled bool
	SidebarVisible bool
}

// NewLayoutChangedEvent creates a layout.changed event.
func NewLayoutChangedEvent(enabled, visible bool) LayoutChangedEvent {
	return LayoutChangedEvent{baseEvent: newBaseEvent(TypeLayoutChanged), SidebarEnabled: enabled, SidebarVisible: visible}
}

// StoreErrorEvent carries a persistence failure the store could not hide.
type StoreErrorEvent struct {
	baseEvent
	Operation string
	ViewKey   string
	Err       error
}

// NewStoreErrorEvent creates a store.error event.
func NewStoreErrorEvent(operation, viewKey string, err error) StoreErrorEvent {
	return StoreErrorEvent{baseEvent: newBaseEvent(TypeStoreError), Operation: operation, ViewKey: viewKey, Err: err}
}
