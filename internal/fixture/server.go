package fixture

import (
	"cmp"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Iron-Ham/dmdash/internal/filter"
	"github.com/Iron-Ham/dmdash/internal/logging"
	"github.com/Iron-Ham/dmdash/internal/store"
)

// Options configures a Server.
type Options struct {
	// Token, when set, is required as "Authorization: Token <token>".
	Token string
	// Latency delays every response, for exercising client timeouts.
	Latency time.Duration
	Logger  *logging.Logger
}

// viewRecord is the stored form of a view, matching the API wire format.
type viewRecord struct {
	ID      int      `json:"id"`
	Project int      `json:"project"`
	Data    viewBody `json:"data"`
}

type viewBody struct {
	Key           string             `json:"key"`
	Title         string             `json:"title"`
	Editable      *bool              `json:"editable,omitempty"`
	Deletable     *bool              `json:"deletable,omitempty"`
	Conjunction   filter.Conjunction `json:"conjunction,omitempty"`
	Filters       []filter.Filter    `json:"filters,omitempty"`
	Ordering      []string           `json:"ordering,omitempty"`
	HiddenColumns []string           `json:"hiddenColumns,omitempty"`
}

type projectState struct {
	Project
	views []viewRecord
}

// Server holds fixture state behind the API routes. Views created through
// the API live only in memory.
type Server struct {
	opts   Options
	logger *logging.Logger

	mu         sync.Mutex
	projects   map[int]*projectState
	nextViewID int
}

// NewServer creates a Server over d.
func NewServer(d *Data, opts Options) *Server {
	s := &Server{
		opts:     opts,
		logger:   logging.OrNop(opts.Logger).WithComponent("fixture"),
		projects: make(map[int]*projectState),
	}
	for _, p := range d.Projects {
		ps := &projectState{Project: p}
		for _, v := range p.Views {
			ps.views = append(ps.views, viewRecord{
				ID:      v.ID,
				Project: p.ID,
				Data: viewBody{
					Key:         v.Key,
					Title:       v.Title,
					Conjunction: v.Conjunction,
					Filters:     v.Filters,
					Ordering:    v.Ordering,
				},
			})
			s.nextViewID = max(s.nextViewID, v.ID)
		}
		s.projects[p.ID] = ps
	}
	return s
}

// Routes returns the router serving the API.
//
//	srv := fixture.NewServer(fixture.Default(), fixture.Options{})
//	http.ListenAndServe(addr, srv.Routes())
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if s.opts.Latency > 0 {
		r.Use(s.delay)
	}
	if s.opts.Token != "" {
		r.Use(s.requireToken)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", s.handleTasks)
		r.Get("/projects/{id}", s.handleProject)

		r.Route("/dm/views", func(r chi.Router) {
			r.Get("/", s.handleListViews)
			r.Post("/", s.handleCreateView)
			r.Patch("/{id}", s.handleUpdateView)
			r.Delete("/{id}", s.handleDeleteView)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("fixture request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	want := "Token " + s.opts.Token
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != want {
			writeError(w, http.StatusUnauthorized, "authentication credentials were not provided")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// projectParam reads ?project= and returns its state.
func (s *Server) projectParam(w http.ResponseWriter, r *http.Request) (*projectState, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get("project"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "project must be an integer")
		return nil, false
	}
	p, ok := s.projects[id]
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return nil, false
	}
	return p, true
}

// -----------------------------------------------------------------------------
// Tasks and projects
// -----------------------------------------------------------------------------

type tasksResponse struct {
	Tasks            []store.Task `json:"tasks"`
	Total            int          `json:"total"`
	TotalAnnotations int          `json:"total_annotations"`
	TotalPredictions int          `json:"total_predictions"`
	Boxes            int          `json:"boxes"`
}

// handleTasks serves GET /api/tasks?view=&project=. The view is looked up
// by ID or key; unknown views see every task. Aggregates cover the
// filtered set, not just the returned page.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projectParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	rows := slices.Clone(p.Tasks)
	var ordering []string
	if v := p.findView(q.Get("view")); v != nil {
		set, _ := filter.Compile(v.Data.Conjunction, v.Data.Filters)
		rows = filter.Apply(set, rows)
		ordering = v.Data.Ordering
	}
	if o := q.Get("ordering"); o != "" {
		ordering = strings.Split(o, ",")
	}
	sortTasks(rows, ordering)

	resp := tasksResponse{Total: len(rows), Tasks: []store.Task{}}
	for _, t := range rows {
		resp.TotalAnnotations += t.Annotations
		resp.TotalPredictions += t.Predictions
		resp.Boxes += t.Boxes
	}

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	page = max(page, 1)
	if size <= 0 {
		size = len(rows)
	}
	start := min((page-1)*size, len(rows))
	end := min(start+size, len(rows))
	for _, t := range rows[start:end] {
		resp.Tasks = append(resp.Tasks, t.Task)
	}

	writeJSON(w, http.StatusOK, resp)
}

func sortTasks(rows []Task, ordering []string) {
	if len(ordering) == 0 {
		return
	}
	desc := strings.HasPrefix(ordering[0], "-")
	col := strings.TrimPrefix(ordering[0], "-")
	slices.SortStableFunc(rows, func(a, b Task) int {
		var c int
		switch col {
		case "annotations":
			c = cmp.Compare(a.Annotations, b.Annotations)
		case "predictions":
			c = cmp.Compare(a.Predictions, b.Predictions)
		default:
			c = cmp.Compare(a.ID, b.ID)
		}
		if desc {
			return -c
		}
		return c
	})
}

func (p *projectState) findView(ref string) *viewRecord {
	if ref == "" {
		return nil
	}
	for i := range p.views {
		v := &p.views[i]
		if strconv.Itoa(v.ID) == ref || v.Data.Key == ref {
			return v
		}
	}
	return nil
}

type projectResponse struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	TaskCount     *int   `json:"task_count,omitempty"`
	TaskNumber    *int   `json:"task_number,omitempty"`
	TargetSyncing *bool  `json:"target_syncing,omitempty"`
	SourceSyncing *bool  `json:"source_syncing,omitempty"`
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, projectResponse{
		ID:            p.ID,
		Title:         p.Title,
		TaskCount:     p.TaskCount,
		TaskNumber:    p.TaskNumber,
		TargetSyncing: p.TargetSyncing,
		SourceSyncing: p.SourceSyncing,
	})
}

// -----------------------------------------------------------------------------
// Views
// -----------------------------------------------------------------------------

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projectParam(w, r)
	if !ok {
		return
	}
	out := append([]viewRecord{}, p.views...)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var in viewRecord
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projectParam(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(in.Data.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	s.nextViewID++
	in.ID = s.nextViewID
	in.Project = p.ID
	p.views = append(p.views, in)
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) viewIndex(w http.ResponseWriter, r *http.Request, p *projectState) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	i := slices.IndexFunc(p.views, func(v viewRecord) bool { return v.ID == id })
	if i < 0 {
		writeError(w, http.StatusNotFound, "view not found")
		return 0, false
	}
	return i, true
}

func (s *Server) handleUpdateView(w http.ResponseWriter, r *http.Request) {
	var in viewRecord
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projectParam(w, r)
	if !ok {
		return
	}
	i, ok := s.viewIndex(w, r, p)
	if !ok {
		return
	}
	p.views[i].Data = in.Data
	writeJSON(w, http.StatusOK, p.views[i])
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projectParam(w, r)
	if !ok {
		return
	}
	i, ok := s.viewIndex(w, r, p)
	if !ok {
		return
	}
	p.views = slices.Delete(p.views, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}
