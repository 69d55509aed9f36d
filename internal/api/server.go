package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/luki/hwtelemetry/internal/history"
	"github.com/luki/hwtelemetry/internal/poller"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

// Source is the live snapshot feed, satisfied by *poller.Poller.
type Source interface {
	Snapshot() *snapshot.Snapshot
	State() poller.State
}

type Server struct {
	addr     string
	src      Source
	hist     *history.Store
	hub      *Hub
	upgrader websocket.Upgrader
	log      *slog.Logger
	srv      *http.Server
}

// NewServer builds the API server. hist may be nil, in which case the
// history endpoint answers 404.
func NewServer(addr string, src Source, hist *history.Store, hub *Hub, log *slog.Logger) *Server {
	return &Server{
		addr: addr,
		src:  src,
		hist: hist,
		hub:  hub,
		log:  log,
		upgrader: websocket.Upgrader{
			// The stream is read-only.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/history", s.handleHistory)
	mux.HandleFunc("GET /api/v1/stream", s.handleStream)

	return mux
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting api server", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.src.Snapshot()
	if snap == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type statusResponse struct {
	Connected  bool       `json:"connected"`
	State      string     `json:"state"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
	Missing    []string   `json:"missing,omitempty"`
	Clients    int        `json:"stream_clients"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state := s.src.State()
	resp := statusResponse{
		Connected: state != poller.Disconnected,
		State:     state.String(),
		Clients:   s.hub.Clients(),
	}
	if snap := s.src.Snapshot(); snap != nil {
		t := snap.CapturedAt
		resp.CapturedAt = &t
		resp.Missing = snap.Missing
	}
	writeJSON(w, http.StatusOK, resp)
}

type historyResponse struct {
	Metric string          `json:"metric"`
	Label  string          `json:"label"`
	Points []history.Point `json:"points"`
	Stats  history.Stats   `json:"stats"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("metric")
	if key == "" {
		jsonError(w, http.StatusBadRequest, "metric is required")
		return
	}
	metric, ok := snapshot.Lookup(key)
	if !ok {
		jsonError(w, http.StatusNotFound, "unknown metric")
		return
	}

	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			jsonError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = v
	}

	if s.hist == nil {
		jsonError(w, http.StatusNotFound, "no history for metric")
		return
	}
	stats, ok := s.hist.Stats(key)
	if !ok {
		jsonError(w, http.StatusNotFound, "no history for metric")
		return
	}
	if n == 0 {
		n = stats.N
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Metric: key,
		Label:  metric.Label,
		Points: s.hist.Points(key, n),
		Stats:  stats,
	})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws: upgrade failed", "error", err)
		return
	}

	c := newClient(s.hub, conn)

	// New clients get the latest snapshot first.
	if snap := s.src.Snapshot(); snap != nil {
		if msg, err := json.Marshal(snap); err == nil {
			c.send <- msg
		}
	}

	if !s.hub.join(c) {
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()

	s.log.Info("ws: client connected", "remote_addr", conn.RemoteAddr())
}
