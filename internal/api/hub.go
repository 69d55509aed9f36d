// Package api serves the latest snapshot, connectivity status and
// per-metric history over HTTP, and streams every published snapshot to
// WebSocket clients.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/luki/hwtelemetry/internal/snapshot"
)

// Hub fans published snapshots out to connected stream clients.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	count atomic.Int32
	log   *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			close(c.send)
		}
		h.clients = nil
		h.count.Store(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = true
			h.count.Store(int32(len(h.clients)))
			h.log.Debug("ws: client registered", "remote_addr", c.conn.RemoteAddr(), "total_clients", len(h.clients))

		case c := <-h.unregister:
			h.drop(c)

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.log.Warn("ws: client channel full, dropping", "remote_addr", c.conn.RemoteAddr())
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int32(len(h.clients)))
	h.log.Debug("ws: client unregistered", "remote_addr", c.conn.RemoteAddr(), "total_clients", len(h.clients))
}

// Clients returns the number of connected stream clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish queues snap for every client. It never blocks; when the queue is
// full the snapshot is dropped for all clients.
func (h *Hub) Publish(snap *snapshot.Snapshot) {
	msg, err := json.Marshal(snap)
	if err != nil {
		h.log.Error("ws: failed to marshal snapshot", "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.log.Debug("ws: broadcast queue full, snapshot dropped")
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
