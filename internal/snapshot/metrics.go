package snapshot

import (
	"strconv"
	"strings"
)

// Kind groups metrics that share a unit and display treatment.
type Kind int

const (
	KindTemperature Kind = iota
	KindPercent
	KindClock
	KindPower
	KindSize
	KindRate
	KindFan
)

// Metric describes one flattened series. Range is the display scale;
// High and Crit are warning thresholds, zero when the metric has none.
type Metric struct {
	Key      string
	Label    string
	Kind     Kind
	RangeMin float64
	RangeMax float64
	High     float64
	Crit     float64
}

// Catalog lists the fixed metrics in display order. Fans are appended at
// runtime as fan.1, fan.2, ...
var Catalog = []Metric{
	{Key: "cpu.temp", Label: "CPU Temperature", Kind: KindTemperature, RangeMin: 20, RangeMax: 100, High: 80, Crit: 95},
	{Key: "cpu.load", Label: "CPU Load", Kind: KindPercent, RangeMax: 100, High: 85, Crit: 95},
	{Key: "cpu.clock", Label: "CPU Clock", Kind: KindClock, RangeMax: 6000},
	{Key: "cpu.power", Label: "CPU Power", Kind: KindPower, RangeMax: 250},
	{Key: "gpu.temp", Label: "GPU Temperature", Kind: KindTemperature, RangeMin: 20, RangeMax: 100, High: 80, Crit: 90},
	{Key: "gpu.load", Label: "GPU Load", Kind: KindPercent, RangeMax: 100, High: 85, Crit: 95},
	{Key: "memory.used", Label: "Memory Used", Kind: KindSize, RangeMax: 64},
	{Key: "memory.total", Label: "Memory Total", Kind: KindSize, RangeMax: 64},
	{Key: "memory.pct", Label: "Memory Usage", Kind: KindPercent, RangeMax: 100, High: 80, Crit: 90},
	{Key: "storage.used", Label: "Storage Used", Kind: KindSize, RangeMax: 4000},
	{Key: "storage.total", Label: "Storage Total", Kind: KindSize, RangeMax: 4000},
	{Key: "storage.pct", Label: "Storage Usage", Kind: KindPercent, RangeMax: 100, High: 85, Crit: 95},
	{Key: "storage.temp", Label: "Storage Temperature", Kind: KindTemperature, RangeMin: 20, RangeMax: 80, High: 55, Crit: 70},
	{Key: "network.up", Label: "Upload", Kind: KindRate, RangeMax: 100},
	{Key: "network.down", Label: "Download", Kind: KindRate, RangeMax: 1000},
	{Key: "board.avg", Label: "Board Temperature", Kind: KindTemperature, RangeMin: 20, RangeMax: 100, High: 70, Crit: 85},
	{Key: "board.max", Label: "Board Peak", Kind: KindTemperature, RangeMin: 20, RangeMax: 100, High: 75, Crit: 90},
}

const fanPrefix = "fan."

// FanKey returns the metric key of the i-th fan, counting from zero.
func FanKey(i int) string {
	return fanPrefix + strconv.Itoa(i+1)
}

// Lookup returns the metric description for key, including fan keys.
func Lookup(key string) (Metric, bool) {
	for _, m := range Catalog {
		if m.Key == key {
			return m, true
		}
	}
	if n, ok := strings.CutPrefix(key, fanPrefix); ok {
		if _, err := strconv.Atoi(n); err == nil {
			return Metric{Key: key, Label: "Fan #" + n, Kind: KindFan, RangeMax: 3000}, true
		}
	}
	return Metric{}, false
}

// Sample is one flattened metric value.
type Sample struct {
	Metric string
	Value  float64
}

// Samples flattens the present readings of s in catalog order, followed
// by the fans.
func (s *Snapshot) Samples() []Sample {
	readings := []Reading{
		s.CPU.Temp, s.CPU.Load, s.CPU.Clock, s.CPU.Power,
		s.GPU.Temp, s.GPU.Load,
		s.Memory.Used, s.Memory.Total, s.Memory.Percent(),
		s.Storage.Used, s.Storage.Total, s.Storage.UsedPct, s.Storage.Temp,
		s.Network.Upload, s.Network.Download,
		s.Motherboard.AvgTemp, s.Motherboard.MaxTemp,
	}

	out := make([]Sample, 0, len(readings)+len(s.Fans))
	for i, r := range readings {
		if v, ok := r.Get(); ok {
			out = append(out, Sample{Metric: Catalog[i].Key, Value: v})
		}
	}
	for i, rpm := range s.Fans {
		out = append(out, Sample{Metric: FanKey(i), Value: rpm})
	}
	return out
}
