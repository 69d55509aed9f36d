package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luki/hwtelemetry/internal/history"
	"github.com/luki/hwtelemetry/internal/logging"
	"github.com/luki/hwtelemetry/internal/poller"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

type fakeSource struct {
	snap  *snapshot.Snapshot
	state poller.State
}

func (f *fakeSource) Snapshot() *snapshot.Snapshot { return f.snap }
func (f *fakeSource) State() poller.State           { return f.state }

var captured = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func sample(temp float64) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		CPU:        snapshot.CPU{Temp: snapshot.Of(temp)},
		Identity:   snapshot.NewIdentity(),
		Missing:    []string{"gpu"},
		CapturedAt: captured,
	}
}

func newTestServer(t *testing.T, src Source, hist *history.Store) (*Server, *Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(logging.Discard())
	go hub.Run(ctx)
	return NewServer(":0", src, hist, hub, logging.Discard()), hub
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSnapshotBeforeFirstPoll(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{}, nil)
	rec := get(t, srv.Handler(), "/api/v1/snapshot")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSnapshot(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{snap: sample(48.5), state: poller.Degraded}, nil)
	rec := get(t, srv.Handler(), "/api/v1/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got snapshot.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	v, ok := got.CPU.Temp.Get()
	require.True(t, ok)
	assert.Equal(t, 48.5, v)
	assert.False(t, got.GPU.Temp.Valid())
	assert.Equal(t, snapshot.PlaceholderCPU, got.Identity.CPUName)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name      string
		src       *fakeSource
		connected bool
		state     string
		captured  bool
	}{
		{"before first poll", &fakeSource{}, false, "disconnected", false},
		{"degraded", &fakeSource{snap: sample(40), state: poller.Degraded}, true, "degraded", true},
		{"lost connection keeps last capture", &fakeSource{snap: sample(40), state: poller.Disconnected}, false, "disconnected", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.src, nil)
			rec := get(t, srv.Handler(), "/api/v1/status")
			require.Equal(t, http.StatusOK, rec.Code)

			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.connected, got["connected"])
			assert.Equal(t, tt.state, got["state"])
			_, has := got["captured_at"]
			assert.Equal(t, tt.captured, has)
		})
	}
}

func TestHistory(t *testing.T) {
	hist := history.NewStore(10)
	for i := range 5 {
		hist.Record("cpu.temp", float64(40+i), captured.Add(time.Duration(i)*time.Second))
	}
	srv, _ := newTestServer(t, &fakeSource{}, hist)
	h := srv.Handler()

	rec := get(t, h, "/api/v1/history?metric=cpu.temp&n=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var got historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "cpu.temp", got.Metric)
	assert.Equal(t, "CPU Temperature", got.Label)
	require.Len(t, got.Points, 3)
	assert.Equal(t, 42.0, got.Points[0].Value)
	assert.Equal(t, 44.0, got.Stats.Last)
	assert.Equal(t, 5, got.Stats.N)

	rec = get(t, h, "/api/v1/history?metric=cpu.temp")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Points, 5)
}

func TestHistoryErrors(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{}, history.NewStore(10))
	h := srv.Handler()

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/history").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/history?metric=bogus").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/v1/history?metric=gpu.temp").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/v1/history?metric=cpu.temp&n=0").Code)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{}, nil)
	rec := get(t, srv.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) snapshot.Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, kind)
	var s snapshot.Snapshot
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestStreamSendsLatestOnConnect(t *testing.T) {
	srv, _ := newTestServer(t, &fakeSource{snap: sample(55), state: poller.Connected}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	got := readSnapshot(t, conn)
	v, _ := got.CPU.Temp.Get()
	assert.Equal(t, 55.0, v)
}

func TestStreamBroadcast(t *testing.T) {
	srv, hub := newTestServer(t, &fakeSource{}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	a := dial(t, ts)
	b := dial(t, ts)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(sample(61))

	for _, conn := range []*websocket.Conn{a, b} {
		got := readSnapshot(t, conn)
		v, _ := got.CPU.Temp.Get()
		assert.Equal(t, 61.0, v)
	}
}

func TestStreamClientLeaves(t *testing.T) {
	srv, hub := newTestServer(t, &fakeSource{}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishAfterHubStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(logging.Discard())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	for range 32 {
		hub.Publish(sample(1))
	}
}
