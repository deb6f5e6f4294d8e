package dashboard

import (
	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/logging"
	"github.com/Iron-Ham/dmdash/internal/store"
)

// Action is a tab action a user can request.
type Action int

const (
	ActionAdd Action = iota
	ActionSelect
	ActionRename
	ActionDuplicate
	ActionClose
	ActionSave
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionSelect:
		return "select"
	case ActionRename:
		return "rename"
	case ActionDuplicate:
		return "duplicate"
	case ActionClose:
		return "close"
	case ActionSave:
		return "save"
	default:
		return "unknown"
	}
}

// Tab describes one rendered tab.
type Tab struct {
	Key    string
	Title  string
	Active bool
	Caps   store.Capabilities
}

// Allows reports whether the tab exposes action. Duplicate shares the
// Deletable capability with Close.
func (t Tab) Allows(a Action) bool {
	switch a {
	case ActionAdd, ActionSelect:
		return true
	case ActionRename:
		return t.Caps.Editable
	case ActionDuplicate, ActionClose:
		return t.Caps.Deletable
	case ActionSave:
		return t.Caps.Virtual
	default:
		return false
	}
}

// TabController maps the store's view collection to tabs and turns tab
// actions into store mutations. Every action checks the view's
// capabilities first; a disallowed action returns ErrActionUnavailable
// without touching the store.
type TabController struct {
	store  *store.Store
	logger *logging.Logger
}

// NewTabController creates a controller over s.
func NewTabController(s *store.Store, logger *logging.Logger) *TabController {
	return &TabController{
		store:  s,
		logger: logging.OrNop(logger).WithComponent("tabs"),
	}
}

// Tabs returns one tab per view in collection order.
func (c *TabController) Tabs() []Tab {
	views := c.store.Views()
	return tabsFor(views.All(), views.SelectedKey())
}

// tabsFor maps views to tabs. The tab whose key equals selected is active;
// when selected matches no view, no tab is.
func tabsFor(views []*store.View, selected string) []Tab {
	tabs := make([]Tab, 0, len(views))
	for _, v := range views {
		key := v.Key()
		tabs = append(tabs, Tab{
			Key:    key,
			Title:  v.Title(),
			Active: key == selected,
			Caps:   v.Capabilities(),
		})
	}
	return tabs
}

// Active returns the active tab.
func (c *TabController) Active() (Tab, bool) {
	for _, t := range c.Tabs() {
		if t.Active {
			return t, true
		}
	}
	return Tab{}, false
}

func (c *TabController) view(key string) (*store.View, error) {
	v, ok := c.store.Views().Get(key)
	if !ok {
		return nil, errors.NewNotFoundError("view", key)
	}
	return v, nil
}

func (c *TabController) guard(key string, a Action) (*store.View, error) {
	v, err := c.view(key)
	if err != nil {
		return nil, err
	}
	t := Tab{Key: key, Caps: v.Capabilities()}
	if !t.Allows(a) {
		c.logger.Debug("tab action unavailable", "view_key", key, "action", a.String())
		return nil, errors.NewStoreError(a.String()+" view", errors.ErrActionUnavailable).WithViewKey(key)
	}
	return v, nil
}

// Add creates a new tab without forcing a task reload and selects it.
func (c *TabController) Add() string {
	v := c.store.Views().AddView(store.AddViewOptions{Reload: false})
	return v.Key()
}

// AddScratch creates an unsaved (virtual) tab. It is kept in memory until
// Save is requested.
func (c *TabController) AddScratch() string {
	v := c.store.Views().AddView(store.AddViewOptions{Reload: false, Virtual: true})
	return v.Key()
}

// Select makes key the active tab.
func (c *TabController) Select(key string) error {
	return c.store.Views().SetSelected(key)
}

// SelectOffset moves the selection delta tabs left or right, wrapping
// around.
func (c *TabController) SelectOffset(delta int) error {
	tabs := c.Tabs()
	if len(tabs) == 0 {
		return nil
	}
	cur := 0
	for i, t := range tabs {
		if t.Active {
			cur = i
			break
		}
	}
	n := len(tabs)
	next := ((cur+delta)%n + n) % n
	return c.Select(tabs[next].Key)
}

// Rename sets the tab's title and then saves the view, once each.
func (c *TabController) Rename(key, title string) error {
	v, err := c.guard(key, ActionRename)
	if err != nil {
		return err
	}
	if err := v.SetTitle(title); err != nil {
		return err
	}
	return v.Save()
}

// Duplicate asks the owning collection to clone the tab's view.
func (c *TabController) Duplicate(key string) error {
	v, err := c.guard(key, ActionDuplicate)
	if err != nil {
		return err
	}
	_, err = v.Parent().DuplicateView(v)
	return err
}

// Close asks the owning collection to remove the tab's view.
func (c *TabController) Close(key string) error {
	v, err := c.guard(key, ActionClose)
	if err != nil {
		return err
	}
	return v.Parent().DeleteView(v)
}

// Save persists a virtual tab. Saved tabs have nothing to save.
func (c *TabController) Save(key string) error {
	v, err := c.guard(key, ActionSave)
	if err != nil {
		return err
	}
	return v.SaveVirtual()
}
