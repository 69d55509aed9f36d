package store

import (
	"context"
	"log/slog"

	"github.com/luki/hwtelemetry/internal/snapshot"
)

// Recorder writes published snapshots to a DiskStore from its own
// goroutine so the poll cycle never waits on disk.
type Recorder struct {
	disk  *DiskStore
	queue chan *snapshot.Snapshot
	log   *slog.Logger
}

func NewRecorder(disk *DiskStore, log *slog.Logger) *Recorder {
	return &Recorder{
		disk:  disk,
		queue: make(chan *snapshot.Snapshot, 32),
		log:   log,
	}
}

// Enqueue hands snap to the writer. Snapshots are dropped while the queue
// is full.
func (r *Recorder) Enqueue(snap *snapshot.Snapshot) {
	select {
	case r.queue <- snap:
	default:
		r.log.Warn("recorder queue full, snapshot dropped", "captured_at", snap.CapturedAt)
	}
}

// Run writes queued snapshots until ctx is done, then drains what is
// left.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return nil
		case snap := <-r.queue:
			r.write(ctx, snap)
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case snap := <-r.queue:
			r.write(context.Background(), snap)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, snap *snapshot.Snapshot) {
	if err := r.disk.WriteSnapshot(ctx, snap); err != nil {
		r.log.Warn("record snapshot failed", "error", err)
	}
}
