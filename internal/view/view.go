// Package view owns the load sequence and UI state of one table view.
//
// A View is created per page activation. Mount starts exactly one fetch of
// the CSV source; the view then settles in PhaseSuccess or PhaseError and
// stays there. The only thing that changes afterwards is the set of
// expanded detail rows. Unmount cancels an in-flight fetch, and a fetch
// that completes after Unmount is discarded rather than applied.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/trendboard/internal/csvtable"
	"github.com/JonMunkholm/trendboard/internal/source"
)

var (
	// ErrNotReady is returned when toggling before the data has loaded.
	ErrNotReady = errors.New("view not ready: data has not loaded")

	// ErrUnmounted is returned by Wait when the view was unmounted before
	// its fetch settled.
	ErrUnmounted = errors.New("view unmounted")

	// ErrUnknownRow is returned when toggling a key no record carries.
	ErrUnknownRow = errors.New("unknown row")
)

// View is one activation of the table page.
type View struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	state    State
	active   bool
	cancel   context.CancelFunc
	lastSeen time.Time

	done     chan struct{}
	doneOnce sync.Once
}

// New creates an idle, active view.
func New(id string) *View {
	now := time.Now()
	return &View{
		ID:        id,
		CreatedAt: now,
		active:    true,
		lastSeen:  now,
		done:      make(chan struct{}),
	}
}

// Mount starts the single fetch for this view. It returns false if the view
// has already been mounted or was unmounted.
func (v *View) Mount(ctx context.Context, src source.Source) bool {
	v.mu.Lock()
	if !v.active || !v.state.begin() {
		v.mu.Unlock()
		return false
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.mu.Unlock()

	slog.Debug("view fetch started", "view_id", v.ID, "source", src.String())
	go v.run(fetchCtx, src)
	return true
}

func (v *View) run(ctx context.Context, src source.Source) {
	start := time.Now()
	text, err := src.Fetch(ctx)
	v.complete(text, err, time.Since(start))
}

// complete applies the fetch outcome unless the view is no longer active.
func (v *View) complete(text string, err error, elapsed time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	defer v.settle()

	if !v.active {
		slog.Debug("view fetch discarded after unmount", "view_id", v.ID)
		return
	}
	if v.cancel != nil {
		v.cancel()
	}

	if err != nil {
		v.state.fail(err.Error())
		slog.Warn("view fetch failed",
			"view_id", v.ID,
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
		)
		return
	}

	rows, report := csvtable.ParseWithReport(text)
	if report.UnterminatedQuote {
		slog.Warn("csv ended inside a quoted field", "view_id", v.ID, "rows", report.Rows)
	}
	v.state.succeed(rows)
	slog.Info("view loaded",
		"view_id", v.ID,
		"rows", report.Rows,
		"dropped_rows", report.Dropped,
		"records", len(v.state.Entries),
		"duration_ms", elapsed.Milliseconds(),
	)
}

func (v *View) settle() {
	v.doneOnce.Do(func() { close(v.done) })
}

// Unmount cancels any in-flight fetch and deactivates the view. Safe to call
// more than once.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.active {
		return
	}
	v.active = false
	if v.cancel != nil {
		v.cancel()
	}
	v.settle()
}

// Done is closed once the view settles or is unmounted.
func (v *View) Done() <-chan struct{} {
	return v.done
}

// Wait blocks until the view settles and returns its state.
func (v *View) Wait(ctx context.Context) (State, error) {
	select {
	case <-v.done:
	case <-ctx.Done():
		return v.Snapshot(), ctx.Err()
	}

	st := v.Snapshot()
	if !st.Phase.Terminal() {
		return st, ErrUnmounted
	}
	return st, nil
}

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

// Toggle flips the detail row for key and returns whether it is now open.
func (v *View) Toggle(key string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state.Phase != PhaseSuccess {
		return false, ErrNotReady
	}
	if _, ok := v.state.Entry(key); !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownRow, key)
	}
	return v.state.Expanded.Toggle(key), nil
}

func (v *View) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}
