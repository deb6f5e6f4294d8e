package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/dmdash/internal/errors"
)

// fakeFetcher returns canned results per view ID and records calls.
type fakeFetcher struct {
	mu      sync.Mutex
	results map[string]int
	errs    map[string]error
	block   chan struct{}
	calls   []BoxesKey
	headers []http.Header
}

func (f *fakeFetcher) FetchBoxes(ctx context.Context, viewID string, projectID int, headers http.Header) (int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, BoxesKey{ViewID: viewID, ProjectID: projectID})
	f.headers = append(f.headers, headers)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return 0, errors.Join(errors.ErrCanceled, ctx.Err())
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[viewID]; err != nil {
		return 0, err
	}
	return f.results[viewID], nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func run(t *testing.T, cmd tea.Cmd) BoxesMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(BoxesMsg)
	if !ok {
		t.Fatal("command did not return BoxesMsg")
	}
	return msg
}

func TestBoxesEffect_FetchOncePerKey(t *testing.T) {
	f := &fakeFetcher{results: map[string]int{"1": 7}}
	e := NewBoxesEffect(f, time.Second, nil)
	key := BoxesKey{ViewID: "1", ProjectID: 3}

	cmd := e.Sync(key, http.Header{"Authorization": {"Token t"}})
	if cmd == nil {
		t.Fatal("first Sync should start a fetch")
	}
	if !e.Loading() {
		t.Error("effect should be loading")
	}
	msg := cmd().(BoxesMsg)
	if !e.Update(msg) {
		t.Fatal("current result should be applied")
	}
	if e.Boxes() != 7 {
		t.Errorf("Boxes() = %d, want 7", e.Boxes())
	}

	// Re-rendering with the same key must not refetch.
	for range 5 {
		if cmd := e.Sync(key, nil); cmd != nil {
			t.Fatal("Sync with an unchanged key should not fetch")
		}
	}
	if n := f.callCount(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
	if got := f.headers[0].Get("Authorization"); got != "Token t" {
		t.Errorf("Authorization = %q, want caller headers", got)
	}
}

func TestBoxesEffect_StaleResultDropped(t *testing.T) {
	f := &fakeFetcher{results: map[string]int{"a": 1, "b": 2}}
	e := NewBoxesEffect(f, time.Second, nil)

	cmdA := e.Sync(BoxesKey{ViewID: "a", ProjectID: 1}, nil)
	cmdB := e.Sync(BoxesKey{ViewID: "b", ProjectID: 1}, nil)

	// b finishes first, then the slow a arrives.
	msgB := cmdB().(BoxesMsg)
	msgA := cmdA().(BoxesMsg)

	if !e.Update(msgB) {
		t.Fatal("result for the current key should apply")
	}
	if e.Update(msgA) {
		t.Error("result for a previous key should be dropped")
	}
	if e.Boxes() != 2 {
		t.Errorf("Boxes() = %d, want 2", e.Boxes())
	}
}

func TestBoxesEffect_KeyChangeCancelsInFlight(t *testing.T) {
	f := &fakeFetcher{results: map[string]int{"a": 1, "b": 2}, block: make(chan struct{})}
	e := NewBoxesEffect(f, time.Second, nil)

	cmdA := e.Sync(BoxesKey{ViewID: "a", ProjectID: 1}, nil)
	done := make(chan BoxesMsg, 1)
	go func() { done <- cmdA().(BoxesMsg) }()

	// Wait until a's request is in flight, then switch views.
	deadline := time.Now().Add(time.Second)
	for f.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	_ = e.Sync(BoxesKey{ViewID: "b", ProjectID: 1}, nil)

	select {
	case msg := <-done:
		if !errors.Is(msg.Err, errors.ErrCanceled) {
			t.Errorf("in-flight fetch err = %v, want canceled", msg.Err)
		}
		if e.Update(msg) {
			t.Error("canceled result should be dropped")
		}
	case <-time.After(time.Second):
		t.Fatal("key change did not cancel the in-flight fetch")
	}
}

func TestBoxesEffect_ProjectChangeRefetches(t *testing.T) {
	f := &fakeFetcher{results: map[string]int{"v": 4}}
	e := NewBoxesEffect(f, time.Second, nil)

	e.Update(run(t, e.Sync(BoxesKey{ViewID: "v", ProjectID: 1}, nil)))
	if cmd := e.Sync(BoxesKey{ViewID: "v", ProjectID: 2}, nil); cmd == nil {
		t.Error("a project change should start a new fetch")
	}
}

func TestBoxesEffect_FailureKeepsLastValue(t *testing.T) {
	f := &fakeFetcher{
		results: map[string]int{"a": 5},
		errs:    map[string]error{"b": fmt.Errorf("connection refused")},
	}
	e := NewBoxesEffect(f, time.Second, nil)

	e.Update(run(t, e.Sync(BoxesKey{ViewID: "a"}, nil)))
	if e.Boxes() != 5 {
		t.Fatalf("Boxes() = %d, want 5", e.Boxes())
	}

	if !e.Update(run(t, e.Sync(BoxesKey{ViewID: "b"}, nil))) {
		t.Fatal("failed result for the current key is still applied")
	}
	if e.Boxes() != 5 {
		t.Errorf("Boxes() = %d, want last known 5", e.Boxes())
	}
	if e.Err() == nil {
		t.Error("Err() should report the failure")
	}
	if e.Loading() {
		t.Error("effect should not be loading after a result")
	}
}

func TestBoxesEffect_FailureBeforeFirstSuccessIsZero(t *testing.T) {
	f := &fakeFetcher{errs: map[string]error{"a": errors.ErrMalformedResponse}}
	e := NewBoxesEffect(f, time.Second, nil)

	e.Update(run(t, e.Sync(BoxesKey{ViewID: "a"}, nil)))
	if e.Boxes() != 0 {
		t.Errorf("Boxes() = %d, want 0", e.Boxes())
	}
}

func TestBoxesEffect_Timeout(t *testing.T) {
	f := &fakeFetcher{block: make(chan struct{})}
	e := NewBoxesEffect(f, 20*time.Millisecond, nil)

	start := time.Now()
	msg := run(t, e.Sync(BoxesKey{ViewID: "a"}, nil))
	if time.Since(start) > time.Second {
		t.Error("fetch should be bounded by the timeout")
	}
	if msg.Err == nil {
		t.Error("blocked fetch should fail")
	}
}

func TestBoxesEffect_StopDropsResults(t *testing.T) {
	f := &fakeFetcher{results: map[string]int{"a": 9}}
	e := NewBoxesEffect(f, time.Second, nil)

	cmd := e.Sync(BoxesKey{ViewID: "a"}, nil)
	e.Stop()
	if e.Update(cmd().(BoxesMsg)) {
		t.Error("results after Stop should be dropped")
	}
	if e.Boxes() != 0 {
		t.Errorf("Boxes() = %d, want 0", e.Boxes())
	}
	if cmd := e.Sync(BoxesKey{ViewID: "b"}, nil); cmd != nil {
		t.Error("a stopped effect should not fetch")
	}
}

func TestBoxesEffect_NilFetcher(t *testing.T) {
	e := NewBoxesEffect(nil, time.Second, nil)
	if cmd := e.Sync(BoxesKey{ViewID: "a", ProjectID: 1}, nil); cmd != nil {
		t.Error("no fetcher means no fetch")
	}
	if e.Boxes() != 0 {
		t.Errorf("Boxes() = %d, want 0", e.Boxes())
	}
}

func TestBoxesEffect_Refresh(t *testing.T) {
	f := &fakeFetcher{results: map[string]int{"a": 1}}
	e := NewBoxesEffect(f, time.Second, nil)

	if cmd := e.Refresh(nil); cmd != nil {
		t.Error("Refresh without a key should do nothing")
	}
	e.Update(run(t, e.Sync(BoxesKey{ViewID: "a"}, nil)))

	f.mu.Lock()
	f.results["a"] = 2
	f.mu.Unlock()

	e.Update(run(t, e.Refresh(nil)))
	if e.Boxes() != 2 {
		t.Errorf("Boxes() = %d, want refreshed 2", e.Boxes())
	}
}

func TestBoxesEffect_UnfetchableKeyStopsLoading(t *testing.T) {
	f := &fakeFetcher{results: map[string]int{"1": 3}, block: make(chan struct{})}
	e := NewBoxesEffect(f, time.Second, nil)

	cmd := e.Sync(BoxesKey{ViewID: "1", ProjectID: 1}, nil)
	done := make(chan BoxesMsg, 1)
	go func() { done <- cmd().(BoxesMsg) }()

	deadline := time.Now().Add(time.Second)
	for f.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if cmd := e.Sync(BoxesKey{ViewID: "", ProjectID: 1}, nil); cmd != nil {
		t.Error("an empty view ID should not start a fetch")
	}
	if e.Loading() {
		t.Error("Loading() should be false after switching to an unfetchable key")
	}

	select {
	case msg := <-done:
		if e.Update(msg) {
			t.Error("result for the previous key should be dropped")
		}
	case <-time.After(time.Second):
		t.Fatal("switching keys did not cancel the in-flight fetch")
	}
	if e.Boxes() != 0 {
		t.Errorf("Boxes() = %d, want 0", e.Boxes())
	}
}
