package history

import (
	"testing"
	"time"

	"github.com/luki/hwtelemetry/internal/snapshot"
)

func TestHistory(t *testing.T) {
	h := NewBuffer(5)

	now := time.Now()
	for i := 0; i < 7; i++ {
		h.Push(float64(30+i), now.Add(time.Duration(i)*time.Second))
	}

	if len(h.Points) != 5 {
		t.Errorf("expected 5 points, got %d", len(h.Points))
	}

	if h.Last() != 36.0 {
		t.Errorf("Last(): got %f, want 36.0", h.Last())
	}

	if h.Min != 30.0 {
		t.Errorf("Min: got %f, want 30.0", h.Min)
	}

	if h.Peak != 36.0 {
		t.Errorf("Peak: got %f, want 36.0", h.Peak)
	}

	if h.Avg() != 34.0 {
		t.Errorf("Avg(): got %f, want 34.0", h.Avg())
	}

	vals := h.LastN(3)
	if len(vals) != 3 {
		t.Errorf("LastN(3): got %d values, want 3", len(vals))
	}
	if vals[0] != 34.0 {
		t.Errorf("LastN(3)[0]: got %f, want 34.0", vals[0])
	}
}

func TestLastNPoints(t *testing.T) {
	h := NewBuffer(100)
	base := time.Date(2026, 2, 21, 14, 0, 0, 0, time.Local)

	for i := 0; i < 120; i++ {
		h.Push(float64(30+i%10), base.Add(time.Duration(i)*time.Second))
	}

	pts := h.LastNPoints(5)
	if len(pts) != 5 {
		t.Fatalf("LastNPoints(5): got %d, want 5", len(pts))
	}

	for _, p := range pts {
		if p.Time.IsZero() {
			t.Error("expected non-zero timestamp")
		}
	}

	last := pts[len(pts)-1]
	if last.Time != base.Add(119*time.Second) {
		t.Errorf("last point time: got %v, want %v", last.Time, base.Add(119*time.Second))
	}
}

func TestEmptyBuffer(t *testing.T) {
	h := NewBuffer(0)
	if h.Max != 1 {
		t.Errorf("Max: got %d, want 1", h.Max)
	}
	if h.Last() != 0 || h.Avg() != 0 {
		t.Errorf("empty buffer: got last %f avg %f, want 0", h.Last(), h.Avg())
	}
	if h.LastN(3) != nil {
		t.Error("LastN on empty buffer should be nil")
	}
}

func TestRecordSnapshot(t *testing.T) {
	s := NewStore(600)
	at := time.Date(2026, 2, 21, 14, 0, 0, 0, time.UTC)

	s.RecordSnapshot(&snapshot.Snapshot{
		CPU:        snapshot.CPU{Temp: snapshot.Of(50)},
		Fans:       []float64{900},
		CapturedAt: at,
	})
	s.RecordSnapshot(&snapshot.Snapshot{
		CPU:        snapshot.CPU{Temp: snapshot.Of(54), Load: snapshot.Of(10)},
		CapturedAt: at.Add(5 * time.Second),
	})

	keys := s.Keys()
	want := []string{"cpu.temp", "fan.1", "cpu.load"}
	if len(keys) != len(want) {
		t.Fatalf("Keys(): got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d]: got %s, want %s", i, keys[i], want[i])
		}
	}

	st, ok := s.Stats("cpu.temp")
	if !ok {
		t.Fatal("Stats(cpu.temp): missing")
	}
	if st.Avg != 52 || st.Peak != 54 || st.Min != 50 || st.N != 2 {
		t.Errorf("Stats(cpu.temp): got %+v", st)
	}

	pts := s.Points("cpu.temp", 10)
	if len(pts) != 2 || !pts[1].Time.Equal(at.Add(5*time.Second)) {
		t.Errorf("Points(cpu.temp): got %+v", pts)
	}

	if _, ok := s.Stats("gpu.temp"); ok {
		t.Error("Stats(gpu.temp): expected missing")
	}
	if s.Points("gpu.temp", 10) != nil {
		t.Error("Points(gpu.temp): expected nil")
	}
}
