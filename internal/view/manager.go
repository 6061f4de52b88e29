package view

// manager.go tracks the live views of the web server.
//
// Each page load opens a view keyed by a random ID. Views are forgotten when
// the page unmounts them explicitly, or by the sweeper once they have been
// idle longer than the TTL (browsers do not reliably announce tab closes).

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/trendboard/internal/source"
	"github.com/google/uuid"
)

var (
	// ErrTooManyViews is returned when the live view limit is reached.
	ErrTooManyViews = errors.New("too many open views, please try again later")

	// ErrViewNotFound is returned for unknown or evicted view IDs.
	ErrViewNotFound = errors.New("view not found")
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultMaxViews = 1000
	DefaultTTL      = 30 * time.Minute
)

// Options configures a Manager.
type Options struct {
	MaxViews int
	TTL      time.Duration
	// FetchTimeout bounds each view's fetch. Zero means no timeout.
	FetchTimeout time.Duration
}

// Manager owns the set of live views.
type Manager struct {
	src  source.Source
	opts Options
	now  func() time.Time

	mu    sync.RWMutex
	views map[string]*View
}

// NewManager creates a Manager whose views all fetch from src.
func NewManager(src source.Source, opts Options) *Manager {
	if opts.MaxViews <= 0 {
		opts.MaxViews = DefaultMaxViews
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Manager{
		src:   src,
		opts:  opts,
		now:   time.Now,
		views: make(map[string]*View),
	}
}

// Open creates and mounts a new view. The fetch is detached from any request
// context; it ends when the view settles, is unmounted, or times out.
func (m *Manager) Open() (*View, error) {
	m.mu.Lock()
	if len(m.views) >= m.opts.MaxViews {
		m.mu.Unlock()
		m.Sweep()
		m.mu.Lock()
		if len(m.views) >= m.opts.MaxViews {
			m.mu.Unlock()
			return nil, ErrTooManyViews
		}
	}

	v := New(uuid.New().String())
	v.touch(m.now())
	m.views[v.ID] = v
	m.mu.Unlock()

	ctx := context.Background()
	if m.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.FetchTimeout)
		go func() {
			<-v.Done()
			cancel()
		}()
	}
	v.Mount(ctx, m.src)

	return v, nil
}

// Get returns a live view and marks it as recently used.
func (m *Manager) Get(id string) (*View, error) {
	m.mu.RLock()
	v, ok := m.views[id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	v.touch(m.now())
	return v, nil
}

// Close unmounts a view and forgets it.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	v, ok := m.views[id]
	delete(m.views, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	v.Unmount()
	return nil
}

// CloseAll unmounts every view. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	views := m.views
	m.views = make(map[string]*View)
	m.mu.Unlock()

	for _, v := range views {
		v.Unmount()
	}
}

// Len is the number of live views.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.views)
}

// Sweep unmounts views idle longer than the TTL and returns how many it removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.opts.TTL)

	var stale []*View
	m.mu.Lock()
	for id, v := range m.views {
		if v.idleSince().Before(cutoff) {
			stale = append(stale, v)
			delete(m.views, id)
		}
	}
	m.mu.Unlock()

	for _, v := range stale {
		v.Unmount()
	}
	return len(stale)
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	slog.Info("view sweeper started", "interval", interval, "ttl", m.opts.TTL)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("view sweeper stopped")
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Info("swept idle views", "removed", n, "live", m.Len())
			}
		}
	}
}
