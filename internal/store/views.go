package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/event"
	"github.com/Iron-Ham/dmdash/internal/filter"
)

// DefaultViewTitle is the title of the view created for an empty project.
const DefaultViewTitle = "Default"

// ViewCollection owns the project's views. It is the only path through
// which a view is added, duplicated or deleted.
type ViewCollection struct {
	store    *Store
	views    []*View
	selected string
	tabSeq   int
}

// View is one tab of the dashboard.
type View struct {
	parent  *ViewCollection
	data    ViewData
	virtual bool
}

// AddViewOptions configures AddView.
type AddViewOptions struct {
	// Reload asks subscribers to refetch tasks for the new view.
	Reload bool
	// Virtual keeps the view in memory only until SaveVirtual is called.
	Virtual bool
	// Title overrides the generated "New Tab N" title.
	Title string
}

func newKey() string { return uuid.New().String() }

// All returns the views in tab order.
func (c *ViewCollection) All() []*View {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return slices.Clone(c.views)
}

// Len returns the number of views.
func (c *ViewCollection) Len() int {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return len(c.views)
}

// Get returns the view with the given key.
func (c *ViewCollection) Get(key string) (*View, bool) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	v := c.getLocked(key)
	return v, v != nil
}

// SelectedKey returns the selected view's key, or "" when nothing is selected.
func (c *ViewCollection) SelectedKey() string {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return c.selected
}

// Selected returns the selected view, or nil when the selected key does not
// match any view.
func (c *ViewCollection) Selected() *View {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return c.selectedLocked()
}

func (c *ViewCollection) selectedLocked() *View {
	return c.getLocked(c.selected)
}

func (c *ViewCollection) getLocked(key string) *View {
	for _, v := range c.views {
		if v.data.Key == key {
			return v
		}
	}
	return nil
}

func (c *ViewCollection) indexLocked(key string) int {
	return slices.IndexFunc(c.views, func(v *View) bool { return v.data.Key == key })
}

// AddView creates a new view at the end of the collection and selects it.
// Non-virtual views are persisted in the background.
func (c *ViewCollection) AddView(opts AddViewOptions) *View {
	s := c.store

	s.mu.Lock()
	c.tabSeq++
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = fmt.Sprintf("New Tab %d", c.tabSeq)
	}
	v := &View{
		parent:  c,
		virtual: opts.Virtual,
		data: ViewData{
			Key:         newKey(),
			Title:       title,
			Editable:    true,
			Deletable:   true,
			Conjunction: filter.And,
		},
	}
	c.views = append(c.views, v)
	c.selected = v.data.Key
	snapshot := v.data
	s.mu.Unlock()

	if !opts.Virtual {
		s.queue.enqueue(opCreate, snapshot.Key, snapshot)
	}
	s.logger.Info("view added", "view_key", snapshot.Key, "virtual", opts.Virtual, "reload", opts.Reload)
	s.bus.Publish(event.NewViewAddedEvent(snapshot.Key, snapshot.Title, opts.Reload))
	s.bus.Publish(event.NewViewSelectedEvent(snapshot.Key))
	return v
}

// SetSelected moves the selection to key.
func (c *ViewCollection) SetSelected(key string) error {
	s := c.store

	s.mu.Lock()
	if c.getLocked(key) == nil {
		s.mu.Unlock()
		return errors.NewNotFoundError("view", key)
	}
	changed := c.selected != key
	c.selected = key
	s.mu.Unlock()

	if changed {
		s.bus.Publish(event.NewViewSelectedEvent(key))
	}
	return nil
}

// DuplicateView clones v under a new key, inserts the clone right after v,
// selects it and persists it.
func (c *ViewCollection) DuplicateView(v *View) (*View, error) {
	s := c.store

	s.mu.Lock()
	idx := c.indexLocked(v.data.Key)
	if idx < 0 || v.parent != c {
		s.mu.Unlock()
		return nil, errors.NewStoreError("duplicate view", errors.ErrViewNotFound).WithViewKey(v.data.Key)
	}
	clone := &View{parent: c, data: cloneData(v.data)}
	clone.data.Key = newKey()
	clone.data.ID = ""
	clone.data.Title = v.data.Title + " (copy)"
	clone.data.Editable = true
	clone.data.Deletable = true
	c.views = slices.Insert(c.views, idx+1, clone)
	c.selected = clone.data.Key
	snapshot := clone.data
	sourceKey := v.data.Key
	s.mu.Unlock()

	s.queue.enqueue(opCreate, snapshot.Key, snapshot)
	s.logger.Info("view duplicated", "view_key", snapshot.Key, "source_key", sourceKey)
	s.bus.Publish(event.NewViewDuplicatedEvent(snapshot.Key, sourceKey, snapshot.Title))
	s.bus.Publish(event.NewViewSelectedEvent(snapshot.Key))
	return clone, nil
}

// DeleteView removes v. If v was selected, its left neighbour (or the new
// first view) becomes selected. Removing the last view creates a fresh
// default view so the collection is never empty.
func (c *ViewCollection) DeleteView(v *View) error {
	s := c.store

	s.mu.Lock()
	idx := c.indexLocked(v.data.Key)
	if idx < 0 || v.parent != c {
		s.mu.Unlock()
		return errors.NewStoreError("delete view", errors.ErrViewNotFound).WithViewKey(v.data.Key)
	}
	removed := v.data
	wasVirtual := v.virtual
	c.views = slices.Delete(c.views, idx, idx+1)

	var created *ViewData
	if len(c.views) == 0 {
		d := c.appendDefaultLocked()
		created = &d
	}
	selectionChanged := false
	if c.selected == removed.Key {
		c.selected = c.views[max(idx-1, 0)].data.Key
		selectionChanged = true
	}
	selected := c.selected
	s.mu.Unlock()

	if !wasVirtual {
		s.queue.enqueue(opDelete, removed.Key, removed)
	}
	if created != nil {
		s.queue.enqueue(opCreate, created.Key, *created)
	}
	s.logger.Info("view deleted", "view_key", removed.Key)
	s.bus.Publish(event.NewViewDeletedEvent(removed.Key))
	if selectionChanged {
		s.bus.Publish(event.NewViewSelectedEvent(selected))
	}
	return nil
}

func (c *ViewCollection) appendDefaultLocked() ViewData {
	v := &View{
		parent: c,
		data: ViewData{
			Key:         newKey(),
			Title:       DefaultViewTitle,
			Editable:    true,
			Deletable:   true,
			Conjunction: filter.And,
		},
	}
	c.views = append(c.views, v)
	return v.data
}

// replaceLocked swaps in loaded views, keeping virtual views and the
// selection where possible. It returns the view count, the selected key and
// the default view it had to create, if any.
func (c *ViewCollection) replaceLocked(loaded []ViewData) (int, string, *ViewData) {
	var virtual []*View
	for _, v := range c.views {
		if v.virtual {
			virtual = append(virtual, v)
		}
	}

	views := make([]*View, 0, len(loaded)+len(virtual))
	for _, d := range loaded {
		views = append(views, &View{parent: c, data: cloneData(d)})
	}
	views = append(views, virtual...)
	c.views = views

	var created *ViewData
	if len(c.views) == 0 {
		d := c.appendDefaultLocked()
		created = &d
	}
	if c.getLocked(c.selected) == nil {
		c.selected = c.views[0].data.Key
	}
	if n := len(c.views); n > c.tabSeq {
		c.tabSeq = n
	}
	return len(c.views), c.selected, created
}

// -----------------------------------------------------------------------------
// View
// -----------------------------------------------------------------------------

// Parent returns the collection that owns the view.
func (v *View) Parent() *ViewCollection { return v.parent }

func (v *View) rlock() func() {
	v.parent.store.mu.RLock()
	return v.parent.store.mu.RUnlock
}

// Key returns the stable identifier of the view.
func (v *View) Key() string {
	defer v.rlock()()
	return v.data.Key
}

// ID returns the backend identifier, empty until the view was first persisted.
func (v *View) ID() string {
	defer v.rlock()()
	return v.data.ID
}

// Title returns the display name.
func (v *View) Title() string {
	defer v.rlock()()
	return v.data.Title
}

// IsVirtual reports whether the view exists only in memory.
func (v *View) IsVirtual() bool {
	defer v.rlock()()
	return v.virtual
}

// Capabilities returns the actions the view exposes.
func (v *View) Capabilities() Capabilities {
	defer v.rlock()()
	return Capabilities{
		Editable:  v.data.Editable,
		Deletable: v.data.Deletable,
		Virtual:   v.virtual,
	}
}

// MetricsID is the identifier sent as ?view= to the tasks endpoint: the
// backend ID when the view was saved, else its key.
func (v *View) MetricsID() string {
	defer v.rlock()()
	if v.data.ID != "" {
		return v.data.ID
	}
	return v.data.Key
}

// Snapshot returns a copy of the view's persisted fields.
func (v *View) Snapshot() ViewData {
	defer v.rlock()()
	return cloneData(v.data)
}

// SetTitle renames the view in memory. It does not persist; call Save.
func (v *View) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.NewValidationError("title must not be empty").WithField("title")
	}

	s := v.parent.store
	s.mu.Lock()
	if v.data.Title == title {
		s.mu.Unlock()
		return nil
	}
	v.data.Title = title
	key := v.data.Key
	s.mu.Unlock()

	s.bus.Publish(event.NewViewRenamedEvent(key, title))
	return nil
}

// Save persists the view in the background. Saving a virtual view is a
// no-op; virtual views are persisted only through SaveVirtual.
func (v *View) Save() error {
	s := v.parent.store
	s.mu.RLock()
	if v.virtual {
		s.mu.RUnlock()
		return nil
	}
	if v.parent.getLocked(v.data.Key) != v {
		key := v.data.Key
		s.mu.RUnlock()
		return errors.NewStoreError("save view", errors.ErrViewNotFound).WithViewKey(key)
	}
	snapshot := cloneData(v.data)
	s.mu.RUnlock()

	s.queue.enqueue(opSave, snapshot.Key, snapshot)
	return nil
}

// SaveVirtual converts a virtual view into a saved one and persists it.
func (v *View) SaveVirtual() error {
	s := v.parent.store
	s.mu.Lock()
	if !v.virtual {
		key := v.data.Key
		s.mu.Unlock()
		return errors.NewStoreError("save virtual view", errors.ErrNotVirtual).WithViewKey(key)
	}
	v.virtual = false
	snapshot := cloneData(v.data)
	s.mu.Unlock()

	s.logger.Info("virtual view saved", "view_key", snapshot.Key)
	s.queue.enqueue(opCreate, snapshot.Key, snapshot)
	return nil
}

// Filters returns the view's filter conjunction and conditions.
func (v *View) Filters() (filter.Conjunction, []filter.Filter) {
	defer v.rlock()()
	return v.data.Conjunction, slices.Clone(v.data.Filters)
}

// Ordering returns the view's sort columns, "-" prefixed for descending.
func (v *View) Ordering() []string {
	defer v.rlock()()
	return slices.Clone(v.data.Ordering)
}

// AddFilter appends a validated filter and saves the view.
func (v *View) AddFilter(f filter.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return v.update(func(d *ViewData) error {
		d.Filters = append(d.Filters, f)
		return nil
	})
}

// RemoveFilter removes the filter at index i and saves the view.
func (v *View) RemoveFilter(i int) error {
	return v.update(func(d *ViewData) error {
		if i < 0 || i >= len(d.Filters) {
			return errors.NewValidationError("filter index out of range").WithField("filter").WithValue(i)
		}
		d.Filters = slices.Delete(d.Filters, i, i+1)
		return nil
	})
}

// SetConjunction sets how filters combine and saves the view.
func (v *View) SetConjunction(conj filter.Conjunction) error {
	if conj != filter.And && conj != filter.Or {
		return errors.NewValidationError("conjunction must be and/or").WithField("conjunction").WithValue(conj)
	}
	return v.update(func(d *ViewData) error {
		d.Conjunction = conj
		return nil
	})
}

// SetOrdering replaces the sort columns and saves the view.
func (v *View) SetOrdering(ordering []string) error {
	return v.update(func(d *ViewData) error {
		d.Ordering = slices.Clone(ordering)
		return nil
	})
}

func (v *View) update(mutate func(*ViewData) error) error {
	s := v.parent.store
	s.mu.Lock()
	if v.parent.getLocked(v.data.Key) != v {
		key := v.data.Key
		s.mu.Unlock()
		return errors.NewStoreError("update view", errors.ErrViewNotFound).WithViewKey(key)
	}
	if err := mutate(&v.data); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := cloneData(v.data)
	virtual := v.virtual
	s.mu.Unlock()

	s.bus.Publish(event.NewViewChangedEvent(snapshot.Key))
	if !virtual {
		s.queue.enqueue(opSave, snapshot.Key, snapshot)
	}
	return nil
}

func cloneData(d ViewData) ViewData {
	d.Filters = slices.Clone(d.Filters)
	d.Ordering = slices.Clone(d.Ordering)
	d.HiddenColumns = slices.Clone(d.HiddenColumns)
	return d
}
