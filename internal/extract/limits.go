// Package extract pulls normalised readings out of detected hardware
// nodes and assembles them into snapshots. Every reading is best-effort:
// a missing or implausible sensor leaves only that field absent.
package extract

import (
	"github.com/luki/hwtelemetry/internal/snapshot"
)

// Limits holds the adjustable plausibility bounds.
type Limits struct {
	// ClockFloor drops clock readings at or below it (bus and reference
	// clocks).
	ClockFloor float64 `yaml:"clock_floor_mhz"`
	// BoardMin and BoardMax bound accepted motherboard temperatures,
	// exclusive on both ends.
	BoardMin float64 `yaml:"board_min_c"`
	BoardMax float64 `yaml:"board_max_c"`
}

// DefaultLimits returns the stock bounds.
func DefaultLimits() Limits {
	return Limits{ClockFloor: 100, BoardMin: 20, BoardMax: 100}
}

// Sensor-group kinds that scope each lookup.
var (
	kindTemperature = []string{"temperature"}
	kindLoad        = []string{"load"}
	kindPower       = []string{"power"}
	kindData        = []string{"data"}
	kindThroughput  = []string{"throughput"}
	kindClock       = []string{"clock", "frequenc"}
	kindFan         = []string{"fan"}
)

func temperature(v float64, ok bool) snapshot.Reading {
	if !ok || v <= 0 || v >= 150 {
		return snapshot.Reading{}
	}
	return snapshot.Of(v)
}

func percent(v float64, ok bool) snapshot.Reading {
	if !ok || v < 0 || v > 100 {
		return snapshot.Reading{}
	}
	return snapshot.Of(v)
}

func nonNegative(v float64, ok bool) snapshot.Reading {
	if !ok || v < 0 {
		return snapshot.Reading{}
	}
	return snapshot.Of(v)
}
