package dashboard

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/event"
	"github.com/Iron-Ham/dmdash/internal/store"
	"github.com/Iron-Ham/dmdash/internal/testutil"
)

func seedViews() []store.ViewData {
	return []store.ViewData{
		{Key: "locked", ID: "1", Title: "Default", Editable: false, Deletable: false},
		{Key: "open", ID: "2", Title: "Backlog", Editable: true, Deletable: true},
	}
}

func newController(t *testing.T, seed ...store.ViewData) (*TabController, *store.Store, *testutil.Persister) {
	t.Helper()
	p := testutil.NewPersister(1, seed...)
	s := testutil.NewStore(t, 1, p)
	p.Reset()
	return NewTabController(s, nil), s, p
}

func activeKeys(tabs []Tab) []string {
	var keys []string
	for _, tab := range tabs {
		if tab.Active {
			keys = append(keys, tab.Key)
		}
	}
	return keys
}

func TestTabs_OrderAndSingleActive(t *testing.T) {
	c, s, _ := newController(t, seedViews()...)

	check := func(wantActive string) {
		t.Helper()
		tabs := c.Tabs()
		if len(tabs) != s.Views().Len() {
			t.Fatalf("len(tabs) = %d, want %d", len(tabs), s.Views().Len())
		}
		if diff := cmp.Diff([]string{wantActive}, activeKeys(tabs)); diff != "" {
			t.Errorf("active tabs mismatch (-want +got):\n%s", diff)
		}
		if wantActive != s.Views().SelectedKey() {
			t.Errorf("active tab %q does not match selected key %q", wantActive, s.Views().SelectedKey())
		}
	}

	check("locked")
	if err := c.Select("open"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	check("open")

	key := c.Add()
	check(key)
	if err := c.Duplicate("open"); err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	check(s.Views().SelectedKey())
	if err := c.Close(s.Views().SelectedKey()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	check(s.Views().SelectedKey())

	var titles []string
	for _, tab := range c.Tabs() {
		titles = append(titles, tab.Title)
	}
	if diff := cmp.Diff([]string{"Default", "Backlog", "New Tab 3"}, titles); diff != "" {
		t.Errorf("tab order mismatch (-want +got):\n%s", diff)
	}
}

func TestTabs_ActiveFollowsSelection(t *testing.T) {
	c, s, _ := newController(t, seedViews()...)

	if err := s.Views().SetSelected("open"); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"open"}, activeKeys(c.Tabs())); diff != "" {
		t.Errorf("active tabs mismatch (-want +got):\n%s", diff)
	}
	tab, ok := c.Active()
	if !ok {
		t.Fatal("Active() should find the selected tab")
	}
	if tab.Title != "Backlog" || !tab.Caps.Deletable {
		t.Errorf("Active() = %+v", tab)
	}
}

func TestTab_Allows(t *testing.T) {
	tests := []struct {
		caps store.Capabilities
		want map[Action]bool
	}{
		{
			caps: store.Capabilities{},
			want: map[Action]bool{ActionAdd: true, ActionSelect: true, ActionRename: false, ActionDuplicate: false, ActionClose: false, ActionSave: false},
		},
		{
			caps: store.Capabilities{Editable: true, Deletable: true},
			want: map[Action]bool{ActionAdd: true, ActionSelect: true, ActionRename: true, ActionDuplicate: true, ActionClose: true, ActionSave: false},
		},
		{
			caps: store.Capabilities{Virtual: true},
			want: map[Action]bool{ActionRename: false, ActionDuplicate: false, ActionClose: false, ActionSave: true},
		},
	}

	for _, tt := range tests {
		tab := Tab{Caps: tt.caps}
		for action, want := range tt.want {
			if got := tab.Allows(action); got != want {
				t.Errorf("caps %+v: Allows(%s) = %v, want %v", tt.caps, action, got, want)
			}
		}
	}
}

func TestRename_SetTitleThenSaveOnce(t *testing.T) {
	c, s, p := newController(t, seedViews()...)

	var mu sync.Mutex
	var order []string
	s.Bus().Subscribe(event.TypeViewRenamed, func(e event.Event) {
		mu.Lock()
		order = append(order, "set-title")
		mu.Unlock()
	})
	s.Bus().Subscribe(event.TypeViewSaved, func(e event.Event) {
		mu.Lock()
		order = append(order, "saved")
		mu.Unlock()
	})

	if err := c.Rename("open", "Review"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"set-title", "saved"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"update 2 Review"}, p.Calls()); diff != "" {
		t.Errorf("persist calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRename_NotEditable(t *testing.T) {
	c, s, p := newController(t, seedViews()...)

	err := c.Rename("locked", "Nope")
	if !errors.Is(err, errors.ErrActionUnavailable) {
		t.Errorf("err = %v, want ErrActionUnavailable", err)
	}
	s.Wait()
	if v, _ := s.Views().Get("locked"); v.Title() != "Default" {
		t.Errorf("title changed to %q", v.Title())
	}
	if len(p.Calls()) != 0 {
		t.Errorf("no persist call expected, got %v", p.Calls())
	}
}

func TestRename_EmptyTitleDoesNotSave(t *testing.T) {
	c, s, p := newController(t, seedViews()...)

	if err := c.Rename("open", "  "); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	s.Wait()
	if len(p.Calls()) != 0 {
		t.Errorf("no persist call expected, got %v", p.Calls())
	}
}

func TestClose_NotDeletable(t *testing.T) {
	c, s, p := newController(t, seedViews()...)

	if err := c.Close("locked"); !errors.Is(err, errors.ErrActionUnavailable) {
		t.Errorf("err = %v, want ErrActionUnavailable", err)
	}
	s.Wait()
	if s.Views().Len() != 2 {
		t.Errorf("views = %d, want 2", s.Views().Len())
	}
	if len(p.Calls()) != 0 {
		t.Errorf("no delete call expected, got %v", p.Calls())
	}
}

func TestClose_Deletable(t *testing.T) {
	c, s, p := newController(t, seedViews()...)

	if err := c.Close("open"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	s.Wait()
	if diff := cmp.Diff([]string{"delete 2"}, p.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicate_GuardedByDeletable(t *testing.T) {
	c, s, p := newController(t, seedViews()...)

	if err := c.Duplicate("locked"); !errors.Is(err, errors.ErrActionUnavailable) {
		t.Errorf("err = %v, want ErrActionUnavailable", err)
	}
	if err := c.Duplicate("open"); err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	s.Wait()

	if s.Views().Len() != 3 {
		t.Errorf("views = %d, want 3", s.Views().Len())
	}
	if diff := cmp.Diff([]string{"create Backlog (copy)"}, p.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_VirtualOnly(t *testing.T) {
	c, s, p := newController(t, seedViews()...)

	if err := c.Save("open"); !errors.Is(err, errors.ErrActionUnavailable) {
		t.Errorf("saving a saved tab err = %v, want ErrActionUnavailable", err)
	}
	s.Wait()
	if len(p.Calls()) != 0 {
		t.Errorf("saving a non-virtual tab should not call the store, got %v", p.Calls())
	}

	key := c.AddScratch()
	s.Wait()
	if len(p.Calls()) != 0 {
		t.Errorf("scratch tab should not persist yet, got %v", p.Calls())
	}
	if err := c.Save(key); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Wait()
	if diff := cmp.Diff([]string{"create New Tab 3"}, p.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if v, _ := s.Views().Get(key); v.IsVirtual() {
		t.Error("view should be saved now")
	}
}

func TestAdd_DoesNotRequestReload(t *testing.T) {
	c, s, _ := newController(t, seedViews()...)

	var got event.ViewEvent
	s.Bus().Subscribe(event.TypeViewAdded, func(e event.Event) { got = e.(event.ViewEvent) })

	key := c.Add()
	if got.ViewKey != key {
		t.Fatalf("view.added key = %q, want %q", got.ViewKey, key)
	}
	if got.Reload {
		t.Error("Add should not request a reload")
	}
}

func TestSelect_UnknownKey(t *testing.T) {
	c, s, _ := newController(t, seedViews()...)

	if err := c.Select("nope"); !errors.Is(err, errors.ErrViewNotFound) {
		t.Errorf("err = %v, want ErrViewNotFound", err)
	}
	if s.Views().SelectedKey() != "locked" {
		t.Error("selection should not move")
	}
	if err := c.Close("nope"); !errors.Is(err, errors.ErrViewNotFound) {
		t.Errorf("Close err = %v, want ErrViewNotFound", err)
	}
}

func TestSelectOffset_Wraps(t *testing.T) {
	c, s, _ := newController(t, seedViews()...)

	if err := c.SelectOffset(-1); err != nil {
		t.Fatalf("SelectOffset: %v", err)
	}
	if got := s.Views().SelectedKey(); got != "open" {
		t.Errorf("selected = %q, want wrap to last", got)
	}
	if err := c.SelectOffset(1); err != nil {
		t.Fatalf("SelectOffset: %v", err)
	}
	if got := s.Views().SelectedKey(); got != "locked" {
		t.Errorf("selected = %q, want wrap to first", got)
	}
}

func TestTabsFor_ActiveKey(t *testing.T) {
	_, s, _ := newController(t, seedViews()...)
	views := s.Views().All()

	tests := []struct {
		name     string
		selected string
		want     []string
	}{
		{name: "matching key", selected: "open", want: []string{"open"}},
		{name: "unknown key", selected: "missing", want: nil},
		{name: "empty key", selected: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tabs := tabsFor(views, tt.selected)
			if len(tabs) != len(views) {
				t.Fatalf("len(tabs) = %d, want %d", len(tabs), len(views))
			}
			if diff := cmp.Diff(tt.want, activeKeys(tabs)); diff != "" {
				t.Errorf("active tabs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func onlyView() store.ViewData {
	return store.ViewData{Key: "only", ID: "5", Title: "Only", Editable: true, Deletable: true}
}

func TestDuplicate_OnlyTab(t *testing.T) {
	c, s, p := newController(t, onlyView())

	tab, ok := c.Active()
	if !ok || !tab.Allows(ActionDuplicate) || !tab.Allows(ActionClose) {
		t.Fatalf("only tab = %+v, want duplicate and close allowed", tab)
	}
	if err := c.Duplicate("only"); err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	s.Wait()

	if s.Views().Len() != 2 {
		t.Errorf("views = %d, want 2", s.Views().Len())
	}
	if diff := cmp.Diff([]string{"create Only (copy)"}, p.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestClose_OnlyTabLeavesDefault(t *testing.T) {
	c, s, p := newController(t, onlyView())

	if err := c.Close("only"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	s.Wait()

	tabs := c.Tabs()
	if len(tabs) != 1 || tabs[0].Title != "Default" || tabs[0].Key == "only" {
		t.Fatalf("tabs = %+v, want one fresh Default tab", tabs)
	}
	if !tabs[0].Active {
		t.Error("the Default tab should be active")
	}
	if diff := cmp.Diff([]string{"delete 5", "create Default"}, p.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}
