package monitor

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/hwtelemetry/internal/format"
	"github.com/luki/hwtelemetry/internal/history"
	"github.com/luki/hwtelemetry/internal/poller"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

type fakeSource struct {
	snap  *snapshot.Snapshot
	state poller.State
}

func (f fakeSource) Snapshot() *snapshot.Snapshot { return f.snap }
func (f fakeSource) State() poller.State           { return f.state }

func sample() *snapshot.Snapshot {
	id := snapshot.NewIdentity()
	id.CPUName = "AMD Ryzen 7 5800X"
	id.GPUName = "NVIDIA GeForce RTX 3070"
	id.HasDedicatedGPU = true
	return &snapshot.Snapshot{
		CPU: snapshot.CPU{
			Temp: snapshot.Of(48.5),
			Load: snapshot.Of(12.5),
		},
		GPU:        snapshot.GPU{Temp: snapshot.Of(40), Present: true},
		Identity:   id,
		CapturedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local),
	}
}

func update(m tea.Model, msg tea.Msg) tea.Model {
	m, _ = m.Update(msg)
	return m
}

func TestSnapshotMessage(t *testing.T) {
	var m tea.Model = New(fakeSource{}, history.NewStore(10), Options{})
	snap := sample()
	m = update(m, snapshotMsg{snap: snap, state: poller.Connected})

	got := m.(Model)
	if got.snap != snap {
		t.Errorf("snapshot not taken")
	}
	if got.state != poller.Connected {
		t.Errorf("state: got %v, want connected", got.state)
	}

	// A nil snapshot after a failure keeps the last one on screen.
	m = update(m, snapshotMsg{state: poller.Disconnected})
	if m.(Model).snap != snap {
		t.Errorf("last snapshot dropped on disconnect")
	}
}

func TestPageCycling(t *testing.T) {
	var m tea.Model = New(fakeSource{}, history.NewStore(10), Options{})
	m = update(m, snapshotMsg{snap: sample(), state: poller.Connected})

	n := len(format.Sources(sample().Identity))
	for range n {
		m = update(m, tea.KeyMsg{Type: tea.KeyRight})
	}
	if got := m.(Model).page; got != 0 {
		t.Errorf("page after full cycle: got %d, want 0", got)
	}
	m = update(m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.(Model).page; got != n-1 {
		t.Errorf("page after left: got %d, want %d", got, n-1)
	}
}

func TestPageClampedWhenGPUDisappears(t *testing.T) {
	var m tea.Model = New(fakeSource{}, history.NewStore(10), Options{})
	m = update(m, snapshotMsg{snap: sample(), state: poller.Connected})
	m = update(m, tea.KeyMsg{Type: tea.KeyLeft})

	noGPU := sample()
	noGPU.Identity.HasDedicatedGPU = false
	m = update(m, snapshotMsg{snap: noGPU, state: poller.Connected})

	want := len(format.Sources(noGPU.Identity)) - 1
	if got := m.(Model).page; got != want {
		t.Errorf("page: got %d, want %d", got, want)
	}
}

func TestPauseSkipsRead(t *testing.T) {
	var m tea.Model = New(fakeSource{}, history.NewStore(10), Options{})
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if !m.(Model).paused {
		t.Fatal("expected paused")
	}
	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected tick to be rescheduled")
	}
}

func TestViewDisconnectedBanner(t *testing.T) {
	var m tea.Model = New(fakeSource{}, history.NewStore(10), Options{Endpoint: "http://htpc:8085"})
	m = update(m, tea.WindowSizeMsg{Width: 140, Height: 100})
	m = update(m, snapshotMsg{state: poller.Disconnected})

	out := m.View()
	for _, want := range []string{"Unable to reach HTPC", "http://htpc:8085", "Waiting for sensor data"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewPanels(t *testing.T) {
	hist := history.NewStore(10)
	snap := sample()
	hist.RecordSnapshot(snap)

	var m tea.Model = New(fakeSource{}, hist, Options{Unit: format.Celsius, RecordDir: "/tmp/hwt"})
	m = update(m, tea.WindowSizeMsg{Width: 160, Height: 200})
	m = update(m, snapshotMsg{snap: snap, state: poller.Connected})

	out := m.View()
	for _, want := range []string{"HWTELEMETRY", "connected", "REC", "AMD Ryzen 7 5800X", "CPU Temperature", "48.5°C"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFmtDuration(t *testing.T) {
	if got := fmtDuration(65 * time.Second); got != "1m05s" {
		t.Errorf("got %q, want 1m05s", got)
	}
	if got := fmtDuration(time.Hour + 2*time.Minute + 3*time.Second); got != "1h02m03s" {
		t.Errorf("got %q, want 1h02m03s", got)
	}
}
