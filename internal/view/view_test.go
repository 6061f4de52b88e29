package view

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JonMunkholm/trendboard/internal/csvtable"
	"github.com/JonMunkholm/trendboard/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

const sampleCSV = "name,stars,createdAt,currentStars,summary\n" +
	"foo/bar,42,2024-01-01,100,Some summary\n" +
	",1,2024-01-01,1,nameless\n" +
	"foo/bar,7,2023-05-05,9,\n"

// stubSource returns canned text, optionally blocking until released.
type stubSource struct {
	text    string
	err     error
	release chan struct{}
	calls   int
}

func (s *stubSource) Fetch(ctx context.Context) (string, error) {
	s.calls++
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.text, s.err
}

func (s *stubSource) String() string { return "stub" }

func waitSettled(t *testing.T, v *View) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := v.Wait(ctx)
	require.NoError(t, err)
	return st
}

func isActive(v *View) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

func TestView_LoadSuccess(t *testing.T) {
	src := &stubSource{text: sampleCSV}
	v := New("v1")
	assert.Equal(t, PhaseIdle, v.Snapshot().Phase)

	require.True(t, v.Mount(context.Background(), src))
	st := waitSettled(t, v)

	assert.Equal(t, PhaseSuccess, st.Phase)
	assert.Equal(t, []string{"name", "stars", "createdAt", "currentStars", "summary"}, st.Header)
	require.Len(t, st.Entries, 2)
	assert.Equal(t, Entry{
		Rank: 1,
		Key:  "0:foo/bar",
		Record: csvtable.Record{
			Name: "foo/bar", Stars: "42", CreatedAt: "2024-01-01",
			CurrentStars: "100", Summary: "Some summary",
		},
	}, st.Entries[0])
	assert.Equal(t, "1:foo/bar", st.Entries[1].Key)
	assert.Equal(t, 0, st.Expanded.Len())
}

func TestView_MountOnce(t *testing.T) {
	src := &stubSource{text: sampleCSV}
	v := New("v1")

	require.True(t, v.Mount(context.Background(), src))
	waitSettled(t, v)
	assert.False(t, v.Mount(context.Background(), src))
	assert.Equal(t, 1, src.calls)
}

func TestView_HTTP404(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	v := New("v404")
	v.Mount(context.Background(), source.NewHTTP(server.URL+"/results/result.csv", 0, 0))
	st := waitSettled(t, v)

	assert.Equal(t, PhaseError, st.Phase)
	assert.Contains(t, st.Err, "404")
	assert.Equal(t, "HTTP error! status: 404", st.Err)
}

func TestView_FetchErrorMessageVerbatim(t *testing.T) {
	v := New("verr")
	v.Mount(context.Background(), &stubSource{err: errors.New("dial tcp: connection refused")})
	st := waitSettled(t, v)

	assert.Equal(t, PhaseError, st.Phase)
	assert.Equal(t, "dial tcp: connection refused", st.Err)

	_, err := v.Toggle("0:foo/bar")
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestView_ToggleRoundTrip(t *testing.T) {
	v := New("vt")
	v.Mount(context.Background(), &stubSource{text: sampleCSV})
	waitSettled(t, v)

	before := v.Snapshot().ExpandedKeys()

	open, err := v.Toggle("0:foo/bar")
	require.NoError(t, err)
	assert.True(t, open)
	assert.True(t, v.Snapshot().Expanded.Has("0:foo/bar"))
	assert.False(t, v.Snapshot().Expanded.Has("1:foo/bar"), "duplicate names expand independently")

	open, err = v.Toggle("0:foo/bar")
	require.NoError(t, err)
	assert.False(t, open)
	assert.Equal(t, before, v.Snapshot().ExpandedKeys())
	assert.Equal(t, PhaseSuccess, v.Snapshot().Phase)
}

func TestView_ToggleUnknownRow(t *testing.T) {
	v := New("vu")
	v.Mount(context.Background(), &stubSource{text: sampleCSV})
	waitSettled(t, v)

	_, err := v.Toggle("9:nope/nope")
	assert.ErrorIs(t, err, ErrUnknownRow)
}

func TestView_ToggleWhileLoading(t *testing.T) {
	src := &stubSource{text: sampleCSV, release: make(chan struct{})}
	v := New("vl")
	v.Mount(context.Background(), src)

	assert.Equal(t, PhaseLoading, v.Snapshot().Phase)
	_, err := v.Toggle("0:foo/bar")
	assert.ErrorIs(t, err, ErrNotReady)

	close(src.release)
	waitSettled(t, v)
}

func TestView_UnmountCancelsFetch(t *testing.T) {
	src := &stubSource{text: sampleCSV, release: make(chan struct{})}
	v := New("vc")
	v.Mount(context.Background(), src)

	v.Unmount()
	v.Unmount()

	st, err := v.Wait(context.Background())
	assert.ErrorIs(t, err, ErrUnmounted)
	assert.Equal(t, PhaseLoading, st.Phase)
	assert.False(t, isActive(v))
	assert.False(t, v.Mount(context.Background(), src))
}

func TestView_LateCompletionDiscarded(t *testing.T) {
	v := New("vlate")
	v.Mount(context.Background(), &stubSource{release: make(chan struct{})})
	v.Unmount()

	// A completion racing the unmount must not touch the state.
	v.complete(sampleCSV, nil, 0)
	assert.Equal(t, PhaseLoading, v.Snapshot().Phase)
	assert.Empty(t, v.Snapshot().Entries)
}

func TestView_WaitContextDone(t *testing.T) {
	src := &stubSource{release: make(chan struct{})}
	v := New("vw")
	v.Mount(context.Background(), src)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := v.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	v.Unmount()
}

func TestExpandedSet(t *testing.T) {
	s := make(ExpandedSet)
	assert.True(t, s.Toggle("b"))
	assert.True(t, s.Toggle("a"))
	assert.Equal(t, []string{"a", "b"}, s.Keys())
	assert.False(t, s.Toggle("a"))
	assert.Equal(t, 1, s.Len())
}

func TestPhase(t *testing.T) {
	assert.Equal(t, "loading", PhaseLoading.String())
	assert.False(t, PhaseLoading.Terminal())
	assert.True(t, PhaseError.Terminal())
	b, err := PhaseSuccess.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "success", string(b))
}
