package dashboard

import (
	"context"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/logging"
)

// BoxesFetcher reads the boxes metric for a view. *api.Client implements it.
type BoxesFetcher interface {
	FetchBoxes(ctx context.Context, viewID string, projectID int, headers http.Header) (int, error)
}

// BoxesKey identifies one boxes fetch. A new fetch starts only when the key
// changes.
type BoxesKey struct {
	ViewID    string
	ProjectID int
}

// BoxesMsg carries a finished fetch back into the update loop.
type BoxesMsg struct {
	Key   BoxesKey
	Gen   uint64
	Boxes int
	Err   error
}

// BoxesEffect fetches the boxes count once per (view, project) key.
//
// Each fetch runs as a tea.Cmd bounded by a timeout. Changing the key or
// calling Stop cancels the request in flight, and a result is only applied
// when its key and generation still match, so a slow response for a
// previous view can never overwrite the current one. Failures keep the last
// known count.
//
// BoxesEffect is not safe for concurrent use; it belongs to the update loop.
type BoxesEffect struct {
	fetcher BoxesFetcher
	timeout time.Duration
	logger  *logging.Logger

	key     BoxesKey
	hasKey  bool
	gen     uint64
	cancel  context.CancelFunc
	boxes   int
	loading bool
	lastErr error
	stopped bool
}

// NewBoxesEffect creates an effect. A nil fetcher disables fetching and the
// count stays at 0.
func NewBoxesEffect(fetcher BoxesFetcher, timeout time.Duration, logger *logging.Logger) *BoxesEffect {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BoxesEffect{
		fetcher: fetcher,
		timeout: timeout,
		logger:  logging.OrNop(logger).WithComponent("boxes"),
	}
}

// Boxes returns the last successfully fetched count, or 0.
func (e *BoxesEffect) Boxes() int { return e.boxes }

// Loading reports whether a fetch is in flight.
func (e *BoxesEffect) Loading() bool { return e.loading }

// Err returns the error of the most recent completed fetch, if it failed.
func (e *BoxesEffect) Err() error { return e.lastErr }

// Key returns the key of the current or last fetch.
func (e *BoxesEffect) Key() (BoxesKey, bool) { return e.key, e.hasKey }

// Sync starts a fetch when key differs from the last one. It returns nil
// when nothing needs to happen.
func (e *BoxesEffect) Sync(key BoxesKey, headers http.Header) tea.Cmd {
	if e.hasKey && e.key == key {
		return nil
	}
	return e.start(key, headers)
}

// Refresh refetches for the current key.
func (e *BoxesEffect) Refresh(headers http.Header) tea.Cmd {
	if !e.hasKey {
		return nil
	}
	return e.start(e.key, headers)
}

func (e *BoxesEffect) start(key BoxesKey, headers http.Header) tea.Cmd {
	if e.stopped || e.fetcher == nil || key.ViewID == "" {
		e.cancelInFlight()
		e.gen++
		e.loading = false
		e.key, e.hasKey = key, true
		return nil
	}

	e.cancelInFlight()
	e.gen++
	e.key, e.hasKey = key, true
	e.loading = true

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	e.cancel = cancel

	gen := e.gen
	fetcher := e.fetcher
	headers = headers.Clone()
	e.logger.Debug("fetching boxes", "view_id", key.ViewID, "project_id", key.ProjectID, "gen", gen)

	return func() tea.Msg {
		defer cancel()
		n, err := fetcher.FetchBoxes(ctx, key.ViewID, key.ProjectID, headers)
		return BoxesMsg{Key: key, Gen: gen, Boxes: n, Err: err}
	}
}

// Update applies a finished fetch. It reports whether the message belonged
// to the current fetch; stale messages are dropped.
func (e *BoxesEffect) Update(msg BoxesMsg) bool {
	if e.stopped || msg.Gen != e.gen || msg.Key != e.key {
		e.logger.Debug("dropping stale boxes result",
			"view_id", msg.Key.ViewID,
			"project_id", msg.Key.ProjectID,
			"gen", msg.Gen,
			"current_gen", e.gen,
		)
		return false
	}

	e.loading = false
	e.cancel = nil
	if msg.Err != nil {
		e.lastErr = msg.Err
		level := e.logger.Warn
		if errors.Is(msg.Err, errors.ErrCanceled) {
			level = e.logger.Debug
		}
		level("boxes fetch failed, keeping last value",
			"view_id", msg.Key.ViewID,
			"project_id", msg.Key.ProjectID,
			"boxes", e.boxes,
			"error", msg.Err.Error(),
		)
		return true
	}

	e.lastErr = nil
	e.boxes = msg.Boxes
	return true
}

// Stop cancels any fetch in flight and ignores all later results.
func (e *BoxesEffect) Stop() {
	e.cancelInFlight()
	e.stopped = true
	e.gen++
	e.loading = false
}

func (e *BoxesEffect) cancelInFlight() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}
