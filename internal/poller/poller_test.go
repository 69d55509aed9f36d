package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luki/hwtelemetry/internal/extract"
	"github.com/luki/hwtelemetry/internal/sensor"
	"github.com/luki/hwtelemetry/internal/sensor/sensortest"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

// scripted replays a fixed sequence of fetch results, repeating the last.
type scripted struct {
	mu    sync.Mutex
	steps []func() (*sensor.Node, error)
	calls int
}

func (s *scripted) Fetch(ctx context.Context) (*sensor.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := min(s.calls, len(s.steps)-1)
	s.calls++
	return s.steps[i]()
}

func ok(root *sensor.Node) func() (*sensor.Node, error) {
	return func() (*sensor.Node, error) { return root, nil }
}

func fail(err error) func() (*sensor.Node, error) {
	return func() (*sensor.Node, error) { return nil, err }
}

func TestInitialState(t *testing.T) {
	p := New(&scripted{steps: []func() (*sensor.Node, error){ok(nil)}}, extract.DefaultBuilder())
	assert.Nil(t, p.Snapshot())
	assert.False(t, p.Connected())
	assert.Equal(t, Disconnected, p.State())
}

func TestPollOnceStates(t *testing.T) {
	errDown := errors.New("connection refused")
	f := &scripted{steps: []func() (*sensor.Node, error){
		ok(sensortest.Desktop()),
		fail(errDown),
		ok(sensortest.Machine()),
	}}
	p := New(f, extract.DefaultBuilder())
	ctx := context.Background()

	require.NoError(t, p.PollOnce(ctx))
	assert.Equal(t, Connected, p.State())
	first := p.Snapshot()
	require.NotNil(t, first)

	err := p.PollOnce(ctx)
	assert.ErrorIs(t, err, errDown)
	assert.Equal(t, Disconnected, p.State())
	assert.False(t, p.Connected())
	assert.Same(t, first, p.Snapshot(), "last good snapshot is retained")

	require.NoError(t, p.PollOnce(ctx))
	assert.Equal(t, Degraded, p.State())
	assert.True(t, p.Connected())
}

func TestIdentitySurvivesFailure(t *testing.T) {
	// Cycle N fails, cycle N+1 succeeds with a tree where the GPU and
	// drives are no longer matched.
	partial := sensortest.Machine(
		sensortest.Hardware("Intel Core i7-10700K",
			sensortest.Group("Temperatures", "Core Average", "51 °C")),
	)
	f := &scripted{steps: []func() (*sensor.Node, error){
		ok(sensortest.Desktop()),
		fail(context.DeadlineExceeded),
		ok(partial),
	}}
	p := New(f, extract.DefaultBuilder())
	ctx := context.Background()

	require.NoError(t, p.PollOnce(ctx))
	before := p.Snapshot().Identity
	require.Error(t, p.PollOnce(ctx))
	require.NoError(t, p.PollOnce(ctx))

	after := p.Snapshot()
	assert.Equal(t, before, after.Identity)
	assert.Equal(t, "NVIDIA GeForce RTX 3060", after.Identity.GPUName)
	assert.True(t, after.Identity.HasDedicatedGPU)
	assert.False(t, after.GPU.Present)
	assert.Equal(t, 51.0, after.CPU.Temp.Or(0))
}

func TestFailureBeforeFirstSuccess(t *testing.T) {
	f := &scripted{steps: []func() (*sensor.Node, error){fail(ErrStatus)}}
	p := New(f, extract.DefaultBuilder())

	assert.ErrorIs(t, p.PollOnce(context.Background()), ErrStatus)
	assert.Nil(t, p.Snapshot())
	assert.False(t, p.Connected())
}

func TestOnPublish(t *testing.T) {
	f := &scripted{steps: []func() (*sensor.Node, error){
		ok(sensortest.Desktop()), fail(ErrDecode), ok(sensortest.Desktop()),
	}}
	p := New(f, extract.DefaultBuilder())

	var got []*snapshot.Snapshot
	p.OnPublish(func(s *snapshot.Snapshot) { got = append(got, s) })

	ctx := context.Background()
	_ = p.PollOnce(ctx)
	_ = p.PollOnce(ctx)
	_ = p.PollOnce(ctx)

	require.Len(t, got, 2)
	assert.Same(t, p.Snapshot(), got[1])
}

func TestRunStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	f := FetcherFunc(func(ctx context.Context) (*sensor.Node, error) {
		calls.Add(1)
		return sensortest.Desktop(), nil
	})
	p := New(f, extract.DefaultBuilder(), WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, Connected, p.State())
}

func TestRunSkipsFetchWhenCancelled(t *testing.T) {
	var calls atomic.Int32
	f := FetcherFunc(func(ctx context.Context) (*sensor.Node, error) {
		calls.Add(1)
		return nil, nil
	})
	p := New(f, extract.DefaultBuilder())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, p.Run(ctx))
	assert.Zero(t, calls.Load())
}

func TestHTTPFetcher(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sensortest.DesktopJSON))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/", time.Second, srv.Client())
	root, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/data.json", path)
	assert.Equal(t, "Sensor", root.Label())
	assert.Equal(t, 1, root.Len())
}

func TestHTTPFetcherErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "non-2xx status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusServiceUnavailable)
			},
			want: ErrStatus,
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>"))
			},
			want: ErrDecode,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			want: context.DeadlineExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			f := NewHTTPFetcher(srv.URL, 50*time.Millisecond, srv.Client())
			_, err := f.Fetch(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHTTPFetcherWrongShapeIsEmptyTree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1, 2, 3]`))
	}))
	defer srv.Close()

	p := New(NewHTTPFetcher(srv.URL, time.Second, srv.Client()), extract.DefaultBuilder())
	require.NoError(t, p.PollOnce(context.Background()))
	assert.Equal(t, Degraded, p.State())
	assert.Empty(t, p.Snapshot().Samples())
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "http://192.168.1.20:8085", BaseURL("192.168.1.20", 8085))
	assert.Equal(t, "http://[::1]:8085", BaseURL("::1", 8085))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "degraded", Degraded.String())
}
