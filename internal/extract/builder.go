package extract

import (
	"time"

	"github.com/luki/hwtelemetry/internal/detect"
	"github.com/luki/hwtelemetry/internal/sensor"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

// Builder runs one full classification pass over a sensor tree. It holds
// no state between passes; identity is threaded in by the caller.
type Builder struct {
	classifier *detect.Classifier
	limits     Limits
	now        func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the capture timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder returns a builder using the given classifier and limits.
func NewBuilder(c *detect.Classifier, lim Limits, opts ...Option) *Builder {
	b := &Builder{classifier: c, limits: lim, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// DefaultBuilder uses the stock rules and limits.
func DefaultBuilder(opts ...Option) *Builder {
	return NewBuilder(detect.Default(detect.DefaultTuning()), DefaultLimits(), opts...)
}

// Build detects every category in root, extracts its readings and
// returns a complete snapshot. prev is the identity of the last snapshot
// and is carried forward for categories not detected this time.
func (b *Builder) Build(root *sensor.Node, prev snapshot.Identity) snapshot.Snapshot {
	res := b.classifier.Classify(root)

	var s snapshot.Snapshot
	var seen snapshot.Detected

	if m, ok := res.Get(detect.CPU); ok {
		s.CPU = CPU(m.Node, b.limits)
		seen.CPU = m.Name
	}
	if m, ok := res.Get(detect.GPU); ok {
		s.GPU = GPU(m.Node)
		seen.GPU = m.Name
	}
	if m, ok := res.Get(detect.Memory); ok {
		s.Memory = Memory(m.Node)
	}
	if m, ok := res.Get(detect.Storage); ok {
		s.Storage = Storage(m.Node)
		seen.Storage = m.Name
	}
	if m, ok := res.Get(detect.Network); ok {
		s.Network = Network(m.Node)
		seen.Network = m.Name
	}
	if m, ok := res.Get(detect.Motherboard); ok {
		s.Motherboard, s.Fans = Board(m.Node, b.limits)
	}

	s.Identity = prev.Next(seen)
	if s.Storage.Device == "" {
		s.Storage.Device = s.Identity.StorageName
	}
	if s.Network.Interface == "" {
		s.Network.Interface = s.Identity.NetworkName
	}
	for _, c := range res.Missing() {
		s.Missing = append(s.Missing, string(c))
	}
	s.CapturedAt = b.now()
	return s
}
