// Package snapshot defines the immutable record produced by one poll of
// the hardware monitor. Every optional value is a Reading: either a
// finite, plausible number or absent.
package snapshot

import "time"

// CPU readings.
type CPU struct {
	Temp  Reading `json:"temp_c"`
	Load  Reading `json:"load_pct"`
	Clock Reading `json:"clock_mhz"`
	Power Reading `json:"power_w"`
}

// GPU readings. Present reports whether a dedicated GPU was detected in
// this poll.
type GPU struct {
	Temp    Reading `json:"temp_c"`
	Load    Reading `json:"load_pct"`
	Present bool    `json:"present"`
}

// Memory readings in GB.
type Memory struct {
	Used  Reading `json:"used_gb"`
	Total Reading `json:"total_gb"`
}

// Percent returns used/total as a percentage.
func (m Memory) Percent() Reading {
	used, ok1 := m.Used.Get()
	total, ok2 := m.Total.Get()
	if !ok1 || !ok2 || total <= 0 {
		return Reading{}
	}
	return Of(used / total * 100)
}

// Storage readings for the primary drive.
type Storage struct {
	Used    Reading `json:"used_gb"`
	Total   Reading `json:"total_gb"`
	UsedPct Reading `json:"used_pct"`
	Temp    Reading `json:"temp_c"`
	Device  string  `json:"device"`
}

// Network readings in Mbps for the most active interface.
type Network struct {
	Upload    Reading `json:"upload_mbps"`
	Download  Reading `json:"download_mbps"`
	Interface string  `json:"interface"`
	Present   bool    `json:"present"`
}

// Motherboard temperature summary over the super I/O chip sensors.
type Motherboard struct {
	AvgTemp Reading `json:"avg_temp_c"`
	MaxTemp Reading `json:"max_temp_c"`
}

// Snapshot is one complete, immutable set of readings.
type Snapshot struct {
	CPU         CPU         `json:"cpu"`
	GPU         GPU         `json:"gpu"`
	Memory      Memory      `json:"memory"`
	Storage     Storage     `json:"storage"`
	Network     Network     `json:"network"`
	Motherboard Motherboard `json:"motherboard"`
	// Fans holds fan speeds in RPM in tree order. Treat as read-only.
	Fans []float64 `json:"fans"`

	Identity Identity `json:"identity"`
	// Missing lists the hardware categories not detected in this poll.
	Missing    []string  `json:"missing,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// Complete reports whether every hardware category was detected.
func (s *Snapshot) Complete() bool {
	return len(s.Missing) == 0
}
