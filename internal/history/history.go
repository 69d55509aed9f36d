// Package history provides a ring-buffer based metric history tracker
// with per-metric min/peak/avg statistics.
package history

import (
	"math"
	"sync"
	"time"

	"github.com/luki/hwtelemetry/internal/snapshot"
)

// Point is a single data point in a metric history.
type Point struct {
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

// Buffer stores a ring buffer of readings for one metric.
type Buffer struct {
	Points []Point
	Max    int // capacity
	Min    float64
	Peak   float64
}

// NewBuffer creates a new history ring buffer with the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		Points: make([]Point, 0, capacity),
		Max:    capacity,
		Min:    math.MaxFloat64,
		Peak:   -math.MaxFloat64,
	}
}

// Push adds a new reading to the history.
func (b *Buffer) Push(v float64, t time.Time) {
	p := Point{Value: v, Time: t}
	if len(b.Points) >= b.Max {
		copy(b.Points, b.Points[1:])
		b.Points[len(b.Points)-1] = p
	} else {
		b.Points = append(b.Points, p)
	}

	if v < b.Min {
		b.Min = v
	}
	if v > b.Peak {
		b.Peak = v
	}
}

// Last returns the most recent value, or 0 if empty.
func (b *Buffer) Last() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	return b.Points[len(b.Points)-1].Value
}

// Avg returns the average across all stored points.
func (b *Buffer) Avg() float64 {
	if len(b.Points) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range b.Points {
		sum += p.Value
	}
	return sum / float64(len(b.Points))
}

// LastN returns the last n values (for chart rendering).
func (b *Buffer) LastN(n int) []float64 {
	if n <= 0 || len(b.Points) == 0 {
		return nil
	}
	start := max(len(b.Points)-n, 0)
	vals := make([]float64, 0, len(b.Points)-start)
	for _, p := range b.Points[start:] {
		vals = append(vals, p.Value)
	}
	return vals
}

// LastNPoints returns the last n Points (with timestamps).
func (b *Buffer) LastNPoints(n int) []Point {
	if n <= 0 || len(b.Points) == 0 {
		return nil
	}
	start := max(len(b.Points)-n, 0)
	out := make([]Point, len(b.Points[start:]))
	copy(out, b.Points[start:])
	return out
}

// Stats summarises a buffer.
type Stats struct {
	Last float64 `json:"last"`
	Min  float64 `json:"min"`
	Peak float64 `json:"peak"`
	Avg  float64 `json:"avg"`
	N    int     `json:"n"`
}

func (b *Buffer) stats() Stats {
	return Stats{Last: b.Last(), Min: b.Min, Peak: b.Peak, Avg: b.Avg(), N: len(b.Points)}
}

// Store manages histories for all metrics. It is safe for concurrent use;
// readers get copies.
type Store struct {
	mu       sync.RWMutex
	data     map[string]*Buffer
	order    []string
	capacity int
}

// NewStore creates a new store with the given per-metric capacity.
func NewStore(capacity int) *Store {
	return &Store{
		data:     make(map[string]*Buffer),
		capacity: capacity,
	}
}

// Record adds a reading for the given metric key.
func (s *Store) Record(key string, v float64, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(key, v, t)
}

func (s *Store) record(key string, v float64, t time.Time) {
	b, ok := s.data[key]
	if !ok {
		b = NewBuffer(s.capacity)
		s.data[key] = b
		s.order = append(s.order, key)
	}
	b.Push(v, t)
}

// RecordSnapshot records every present reading of snap at its capture
// time.
func (s *Store) RecordSnapshot(snap *snapshot.Snapshot) {
	samples := snap.Samples()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sm := range samples {
		s.record(sm.Metric, sm.Value, snap.CapturedAt)
	}
}

// Keys returns the recorded metric keys in first-seen order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Points returns up to the last n points of a metric.
func (s *Store) Points(key string, n int) []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.data[key]
	if b == nil {
		return nil
	}
	return b.LastNPoints(n)
}

// Stats returns the statistics of a metric.
func (s *Store) Stats(key string) (Stats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.data[key]
	if b == nil || len(b.Points) == 0 {
		return Stats{}, false
	}
	return b.stats(), true
}
