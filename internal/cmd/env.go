package cmd

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/Iron-Ham/dmdash/internal/api"
	"github.com/Iron-Ham/dmdash/internal/config"
	"github.com/Iron-Ham/dmdash/internal/dashboard"
	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/event"
	"github.com/Iron-Ham/dmdash/internal/logging"
	"github.com/Iron-Ham/dmdash/internal/persist"
	"github.com/Iron-Ham/dmdash/internal/store"
)

// loadConfig reads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger opens {ConfigDir}/debug.log, or discards logs when logging is
// disabled. Stderr is never used, since it would draw over the TUI.
func newLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	logger, err := logging.NewLogger(cfg.LogDir(), cfg.Logging.Level)
	if err != nil {
		return logging.NopLogger()
	}
	return logger
}

// env holds the components a command works with, built from configuration.
type env struct {
	cfg    *config.Config
	logger *logging.Logger
	// client is nil when api.base_url is empty.
	client *api.Client
	// file is nil for the api storage backend.
	file  *persist.FileBackend
	store *store.Store

	mu         sync.Mutex
	storeErrs  []error
	errorSubID string
}

// newEnv builds the API client, the persistence backend and a loaded store.
func newEnv(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*env, error) {
	e := &env{cfg: cfg, logger: logger}

	if cfg.API.RemoteEnabled() {
		client, err := api.NewClient(cfg.API.BaseURL,
			api.WithToken(cfg.API.AuthScheme, cfg.API.Token),
			api.WithTimeout(cfg.API.Timeout),
			api.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		e.client = client
	}

	var p store.Persister
	switch cfg.Storage.Backend {
	case config.BackendAPI:
		if e.client == nil {
			return nil, errors.Wrap(errors.ErrNoEndpoint, "storage.backend=api needs api.base_url")
		}
		p = persist.NewAPIBackend(e.client)
	default:
		e.file = persist.NewFileBackend(cfg.Storage.ResolveViewsFile())
		p = e.file
	}

	headers := http.Header{}
	if e.client != nil {
		headers = e.client.Headers()
	}
	e.store = store.New(store.Options{
		ProjectID:      cfg.Project.ID,
		Persister:      p,
		Logger:         logger,
		SidebarEnabled: cfg.TUI.SidebarEnabled,
		SidebarVisible: cfg.TUI.SidebarVisible,
		Headers:        headers,
		PersistTimeout: cfg.API.Timeout,
	})
	e.errorSubID = e.store.Bus().Subscribe(event.TypeStoreError, func(ev event.Event) {
		if se, ok := ev.(event.StoreErrorEvent); ok {
			e.mu.Lock()
			e.storeErrs = append(e.storeErrs, fmt.Errorf("%s: %w", se.Operation, se.Err))
			e.mu.Unlock()
		}
	})

	if err := e.store.Load(ctx); err != nil {
		e.store.Close()
		return nil, fmt.Errorf("failed to load views: %w", err)
	}
	return e, nil
}

// shell creates the dashboard shell over the store.
func (e *env) shell() *dashboard.Shell {
	var remote dashboard.Remote
	if e.client != nil {
		remote = e.client
	}
	return dashboard.NewShell(dashboard.ShellOptions{
		Store:    e.store,
		Remote:   remote,
		Timeout:  e.cfg.API.Timeout,
		PageSize: e.cfg.TUI.PageSize,
		Logger:   e.logger,
	})
}

// watch starts reloading the store when the views file changes. It returns
// nil when the file backend is not in use or watching is disabled.
func (e *env) watch() (*persist.Watcher, error) {
	if e.file == nil || !e.cfg.Storage.Watch {
		return nil, nil
	}
	w, err := persist.NewWatcher(e.file.Path(), e.store.Reload, persist.WatcherOptions{
		Changed: e.file.Changed,
		Timeout: e.cfg.API.Timeout,
		Logger:  e.logger,
	})
	if err != nil {
		return nil, err
	}
	w.Start()
	return w, nil
}

// flush waits for background persistence and returns the failures it
// reported.
func (e *env) flush() error {
	e.store.Wait()
	e.mu.Lock()
	defer e.mu.Unlock()
	err := errors.Join(e.storeErrs...)
	e.storeErrs = nil
	return err
}

// Close flushes pending writes and stops the store.
func (e *env) Close() error {
	err := e.flush()
	e.store.Bus().Unsubscribe(e.errorSubID)
	e.store.Close()
	return err
}

// resolveView finds a view by key, backend ID or title, in that order.
func resolveView(s *store.Store, ref string) (*store.View, error) {
	all := s.Views().All()
	for _, match := range []func(*store.View) bool{
		func(v *store.View) bool { return v.Key() == ref },
		func(v *store.View) bool { return v.ID() != "" && v.ID() == ref },
		func(v *store.View) bool { return v.Title() == ref },
	} {
		for _, v := range all {
			if match(v) {
				return v, nil
			}
		}
	}
	return nil, errors.NewNotFoundError("view", ref)
}
