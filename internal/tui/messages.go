package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/dmdash/internal/event"
)

// storeEventMsg carries a store event into the update loop.
type storeEventMsg struct {
	event event.Event
}

// eventPump forwards store events to the program in publish order.
// Events published from inside Update would deadlock a direct
// program.Send, so handlers only append to an unbounded queue and a
// separate goroutine does the sending.
type eventPump struct {
	send func(tea.Msg)

	mu      sync.Mutex
	cond    *sync.Cond
	pending []event.Event
	closed  bool
	done    chan struct{}
}

func newEventPump(send func(tea.Msg)) *eventPump {
	p := &eventPump{send: send, done: make(chan struct{})}
	p.cond = sync.NewCond(&p.mu)
	go p.run()
	return p
}

// push is the store subscription handler.
func (p *eventPump) push(e event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = append(p.pending, e)
	p.cond.Signal()
}

func (p *eventPump) run() {
	defer close(p.done)
	for {
		p.mu.Lock()
		for len(p.pending) == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		e := p.pending[0]
		p.pending = p.pending[1:]
		p.mu.Unlock()

		p.send(storeEventMsg{event: e})
	}
}

// stop drops queued events and waits for the forwarder to exit. It must
// not be called while the program is blocked on the update loop, since the
// forwarder may be inside send.
func (p *eventPump) stop() {
	p.mu.Lock()
	p.closed = true
	p.pending = nil
	p.cond.Broadcast()
	p.mu.Unlock()
	<-p.done
}
