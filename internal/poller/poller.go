// Package poller owns the snapshot lifecycle: it fetches the sensor tree
// on an interval, builds a snapshot off to the side and publishes it with
// a single atomic swap. Readers never see a partially built snapshot.
package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/luki/hwtelemetry/internal/extract"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

// State is the connectivity state of the poller.
type State int32

const (
	// Disconnected: no fetch has succeeded yet, or the last one failed.
	Disconnected State = iota
	// Connected: the last fetch succeeded and every category was found.
	Connected
	// Degraded: the last fetch succeeded but the tree was empty or some
	// category was not detected. Still connected.
	Degraded
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Degraded:
		return "degraded"
	default:
		return "disconnected"
	}
}

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 5 * time.Second

// Poller fetches, classifies and publishes snapshots.
type Poller struct {
	fetcher  Fetcher
	builder  *extract.Builder
	interval time.Duration
	logger   *slog.Logger

	current atomic.Pointer[snapshot.Snapshot]
	state   atomic.Int32

	// cycle serialises poll cycles; identity is only touched under it.
	cycle    sync.Mutex
	identity snapshot.Identity

	subsMu sync.RWMutex
	subs   []func(*snapshot.Snapshot)
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the time between poll cycles.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a poller in the Disconnected state with no snapshot.
func New(f Fetcher, b *extract.Builder, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  f,
		builder:  b,
		interval: DefaultInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		identity: snapshot.NewIdentity(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Snapshot returns the latest published snapshot, or nil before the first
// successful poll. The returned value must not be modified.
func (p *Poller) Snapshot() *snapshot.Snapshot {
	return p.current.Load()
}

// Connected reports whether the last fetch succeeded.
func (p *Poller) Connected() bool {
	return p.State() != Disconnected
}

// State returns the current connectivity state.
func (p *Poller) State() State {
	return State(p.state.Load())
}

// OnPublish registers fn to be called with every published snapshot, on
// the polling goroutine. fn must not block.
func (p *Poller) OnPublish(fn func(*snapshot.Snapshot)) {
	p.subsMu.Lock()
	p.subs = append(p.subs, fn)
	p.subsMu.Unlock()
}

// PollOnce runs one fetch-and-classify cycle. On a fetch failure the
// poller moves to Disconnected, keeps the last snapshot and returns the
// error.
func (p *Poller) PollOnce(ctx context.Context) error {
	p.cycle.Lock()
	defer p.cycle.Unlock()

	root, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.transition(Disconnected, "error", err)
		return err
	}

	snap := p.builder.Build(root, p.identity)
	p.identity = snap.Identity
	p.current.Store(&snap)

	next := Connected
	if root.Empty() || !snap.Complete() {
		next = Degraded
	}
	p.transition(next, "missing", snap.Missing)
	p.publish(&snap)
	return nil
}

// Run polls until ctx is cancelled. The first cycle starts immediately.
// Fetch failures are not fatal; Run only returns when ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.PollOnce(ctx); err != nil {
		p.logger.Debug("poll failed", "error", err)
	}
}

func (p *Poller) transition(next State, args ...any) {
	prev := State(p.state.Swap(int32(next)))
	if prev == next {
		return
	}
	args = append([]any{"from", prev.String(), "to", next.String()}, args...)
	switch next {
	case Disconnected:
		p.logger.Warn("sensor source disconnected", args...)
	case Degraded:
		p.logger.Info("sensor source degraded", args...)
	default:
		p.logger.Info("sensor source connected", args[:4]...)
	}
}

func (p *Poller) publish(s *snapshot.Snapshot) {
	p.subsMu.RLock()
	subs := p.subs
	p.subsMu.RUnlock()
	for _, fn := range subs {
		fn(s)
	}
}
