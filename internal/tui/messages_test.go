package tui

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/dmdash/internal/event"
)

func TestEventPump_ForwardsInOrder(t *testing.T) {
	var (
		mu   sync.Mutex
		got  []string
		done = make(chan struct{})
	)
	release := make(chan struct{})
	p := newEventPump(func(msg tea.Msg) {
		<-release
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg.(storeEventMsg).event.(event.ViewEvent).ViewKey)
		if len(got) == 3 {
			close(done)
		}
	})
	t.Cleanup(p.stop)

	// push must not block while the receiver is busy.
	for _, key := range []string{"a", "b", "c"} {
		p.push(event.NewViewSelectedEvent(key))
	}
	close(release)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("events were not forwarded")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("forwarded %v, want [a b c]", got)
	}
}

func TestEventPump_StopDropsPending(t *testing.T) {
	sent := make(chan struct{}, 10)
	p := newEventPump(func(tea.Msg) { sent <- struct{}{} })
	p.stop()

	p.push(event.NewViewSelectedEvent("late"))
	select {
	case <-sent:
		t.Error("events pushed after stop should be dropped")
	case <-time.After(50 * time.Millisecond):
	}
}
