// Package persist implements the store's view persistence backends: a local
// YAML file shared between dmdash processes, and the remote Data Manager
// API. It also provides a watcher that reloads the store when the file is
// edited outside the running process.
package persist

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/store"
)

const (
	fileVersion = 1

	// lockTimeout bounds how long a call waits for another process's lock.
	lockTimeout = 3 * time.Second
	lockRetry   = 50 * time.Millisecond
)

// fileData is the on-disk layout: views grouped by project ID.
type fileData struct {
	Version  int                  `yaml:"version"`
	Projects map[int]*fileProject `yaml:"projects"`
}

type fileProject struct {
	Views []store.ViewData `yaml:"views"`
}

// FileBackend stores views in a YAML file. Every call takes a
// cross-process lock on "<path>.lock" and rewrites the file atomically.
type FileBackend struct {
	path string
	lock *flock.Flock

	mu     sync.Mutex
	digest [sha256.Size]byte
}

// NewFileBackend creates a backend for path. The parent directory is
// created on first write.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the views file path.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create views directory: %w", err)
	}

	// The in-process mutex comes first: a Flock already held by this
	// process reports success to every caller.
	b.mu.Lock()
	defer b.mu.Unlock()

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := b.lock.TryLockContext(lockCtx, lockRetry)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("could not acquire lock on %s", b.path)
	}
	defer func() { _ = b.lock.Unlock() }()

	return fn()
}

// readLocked loads the file. A missing or empty file is an empty store.
func (b *FileBackend) readLocked() (*fileData, error) {
	d := &fileData{Version: fileVersion, Projects: make(map[int]*fileProject)}

	raw, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read views file: %w", err)
	}
	b.digest = sha256.Sum256(raw)
	if len(bytes.TrimSpace(raw)) == 0 {
		return d, nil
	}

	if err := yaml.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("parse views file: %w", err)
	}
	if d.Projects == nil {
		d.Projects = make(map[int]*fileProject)
	}
	return d, nil
}

func (b *FileBackend) writeLocked(d *fileData) error {
	d.Version = fileVersion
	raw, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal views: %w", err)
	}
	if err := atomic.WriteFile(b.path, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write views file: %w", err)
	}
	b.digest = sha256.Sum256(raw)
	return nil
}

func (d *fileData) project(id int) *fileProject {
	p, ok := d.Projects[id]
	if !ok {
		p = &fileProject{}
		d.Projects[id] = p
	}
	return p
}

// LoadViews implements store.Persister.
func (b *FileBackend) LoadViews(ctx context.Context, projectID int) ([]store.ViewData, error) {
	var out []store.ViewData
	err := b.withLock(ctx, func() error {
		d, err := b.readLocked()
		if err != nil {
			return err
		}
		if p, ok := d.Projects[projectID]; ok {
			out = slices.Clone(p.Views)
		}
		return nil
	})
	return out, err
}

// CreateView implements store.Persister. The view gets a fresh UUID as its ID.
func (b *FileBackend) CreateView(ctx context.Context, projectID int, v store.ViewData) (store.ViewData, error) {
	err := b.withLock(ctx, func() error {
		d, err := b.readLocked()
		if err != nil {
			return err
		}
		v.ID = uuid.New().String()
		p := d.project(projectID)
		p.Views = append(p.Views, v)
		return b.writeLocked(d)
	})
	if err != nil {
		return store.ViewData{}, err
	}
	return v, nil
}

// UpdateView implements store.Persister.
func (b *FileBackend) UpdateView(ctx context.Context, projectID int, v store.ViewData) error {
	return b.withLock(ctx, func() error {
		d, err := b.readLocked()
		if err != nil {
			return err
		}
		p := d.project(projectID)
		i := slices.IndexFunc(p.Views, func(x store.ViewData) bool { return x.ID == v.ID })
		if i < 0 {
			return errors.NewNotFoundError("view", v.ID)
		}
		p.Views[i] = v
		return b.writeLocked(d)
	})
}

// DeleteView implements store.Persister. Deleting a view that is already
// gone is not an error.
func (b *FileBackend) DeleteView(ctx context.Context, projectID int, v store.ViewData) error {
	return b.withLock(ctx, func() error {
		d, err := b.readLocked()
		if err != nil {
			return err
		}
		p := d.project(projectID)
		n := len(p.Views)
		p.Views = slices.DeleteFunc(p.Views, func(x store.ViewData) bool { return x.ID == v.ID })
		if len(p.Views) == n {
			return nil
		}
		return b.writeLocked(d)
	})
}

// Changed reports whether the file on disk differs from what this backend
// last read or wrote. The watcher uses it to ignore its own writes.
func (b *FileBackend) Changed() bool {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		return false
	}
	sum := sha256.Sum256(raw)

	b.mu.Lock()
	defer b.mu.Unlock()
	return sum != b.digest
}
