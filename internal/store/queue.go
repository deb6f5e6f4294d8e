package store

import (
	"context"
	"sync"
	"time"

	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/event"
)

type opKind int

const (
	opCreate opKind = iota
	opSave
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opCreate:
		return "create view"
	case opSave:
		return "save view"
	case opDelete:
		return "delete view"
	default:
		return "unknown"
	}
}

type persistOp struct {
	kind opKind
	key  string
	data ViewData
}

// persistQueue runs persistence calls one at a time, in submission order, on
// a single worker goroutine. Backend IDs are tracked by view key so that an
// update or delete queued before the create finished still targets the
// right record.
type persistQueue struct {
	store   *Store
	timeout time.Duration

	mu      sync.Mutex
	cond    *sync.Cond
	pending []persistOp
	running bool
	closed  bool
	ids     map[string]string

	// inflight counts ops enqueued but not yet executed.
	inflight int
}

func newPersistQueue(s *Store, timeout time.Duration) *persistQueue {
	q := &persistQueue{
		store:   s,
		timeout: timeout,
		ids:     make(map[string]string),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *persistQueue) enqueue(kind opKind, key string, data ViewData) {
	if q.store.persister == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if data.ID != "" {
		q.ids[key] = data.ID
	}
	q.inflight++
	q.pending = append(q.pending, persistOp{kind: kind, key: key, data: data})
	if !q.running {
		q.running = true
		go q.run()
	}
	q.cond.Broadcast()
}

func (q *persistQueue) run() {
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 && q.closed {
			q.running = false
			q.mu.Unlock()
			return
		}
		op := q.pending[0]
		q.pending = q.pending[1:]
		if id, ok := q.ids[op.key]; ok {
			op.data.ID = id
		}
		q.mu.Unlock()

		q.execute(op)

		q.mu.Lock()
		q.inflight--
		q.cond.Broadcast()
		q.mu.Unlock()
	}
}

func (q *persistQueue) execute(op persistOp) {
	s := q.store
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	projectID := s.Project().ID
	var err error

	switch op.kind {
	case opCreate:
		var created ViewData
		created, err = s.persister.CreateView(ctx, projectID, op.data)
		if err == nil && created.ID != "" {
			q.mu.Lock()
			q.ids[op.key] = created.ID
			q.mu.Unlock()
			s.assignID(op.key, created.ID)
		}
	case opSave:
		if op.data.ID == "" {
			// Never created (e.g. a default view whose create failed); create now.
			var created ViewData
			created, err = s.persister.CreateView(ctx, projectID, op.data)
			if err == nil && created.ID != "" {
				q.mu.Lock()
				q.ids[op.key] = created.ID
				q.mu.Unlock()
				s.assignID(op.key, created.ID)
			}
		} else {
			err = s.persister.UpdateView(ctx, projectID, op.data)
		}
	case opDelete:
		if op.data.ID == "" {
			return
		}
		err = s.persister.DeleteView(ctx, projectID, op.data)
		q.mu.Lock()
		delete(q.ids, op.key)
		q.mu.Unlock()
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = errors.NewTimeoutError(op.kind.String(), q.timeout).WithCause(err)
		}
		s.reportError(op.kind.String(), op.key, errors.NewStoreError(op.kind.String(), errors.Join(errors.ErrPersistFailed, err)).WithViewKey(op.key))
		return
	}

	if op.kind != opDelete {
		s.bus.Publish(event.NewViewSavedEvent(op.key, op.data.Title))
	}
}

func (q *persistQueue) wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.inflight > 0 {
		q.cond.Wait()
	}
}

func (q *persistQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	for q.inflight > 0 {
		q.cond.Wait()
	}
	q.mu.Unlock()
}

// assignID records the backend ID on the view if it still exists.
func (s *Store) assignID(key, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v := s.views.getLocked(key); v != nil {
		v.data.ID = id
	}
}
