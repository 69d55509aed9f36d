package format

import (
	"fmt"

	"github.com/luki/hwtelemetry/internal/snapshot"
)

// Source names a display page.
type Source string

const (
	SystemOverview      Source = "System Overview"
	CPUPerformance      Source = "CPU Performance"
	GPUPerformance      Source = "GPU Performance"
	MemoryUsage         Source = "Memory Usage"
	StorageActivity     Source = "Storage Activity"
	NetworkActivity     Source = "Network Activity"
	TemperatureOverview Source = "Temperature Overview"
	FanMonitoring       Source = "Fan Monitoring"
	PowerConsumption    Source = "Power Consumption"
)

// Panel is the text of one display page: a headline, two detail lines
// and the metric key charted under it.
type Panel struct {
	Source Source
	Title  string
	Detail string
	Extra  string
	Metric string
}

// Sources lists the pages available for an identity. The GPU page only
// appears once a dedicated GPU has been seen.
func Sources(id snapshot.Identity) []Source {
	out := []Source{SystemOverview, CPUPerformance}
	if id.HasDedicatedGPU {
		out = append(out, GPUPerformance)
	}
	return append(out,
		MemoryUsage, StorageActivity, NetworkActivity,
		TemperatureOverview, FanMonitoring, PowerConsumption,
	)
}

// Render builds the panel for one source.
func (u Unit) Render(src Source, s *snapshot.Snapshot) Panel {
	p := Panel{Source: src}
	switch src {
	case SystemOverview:
		p.Title = fmt.Sprintf("CPU: %s (%s)", u.Temp(s.CPU.Temp), Percent(s.CPU.Load))
		p.Detail = "Power: " + Power(s.CPU.Power)
		p.Extra = Memory(s.Memory.Used, s.Memory.Total)
		p.Metric = "cpu.temp"

	case CPUPerformance:
		p.Title = "Temperature: " + u.Temp(s.CPU.Temp)
		p.Detail = "Load: " + Percent(s.CPU.Load)
		p.Extra = "Clock: " + Clock(s.CPU.Clock)
		p.Metric = "cpu.load"

	case GPUPerformance:
		if s.GPU.Temp.Valid() || s.GPU.Load.Valid() {
			p.Title = "Temperature: " + u.Temp(s.GPU.Temp)
			p.Detail = "Load: " + Percent(s.GPU.Load)
			p.Extra = s.Identity.GPUName
		} else {
			p.Title = "No Dedicated GPU"
			p.Detail = "Using Integrated Graphics"
			p.Extra = "Intel/AMD Integrated"
		}
		p.Metric = "gpu.temp"

	case MemoryUsage:
		p.Title = "Used: " + GB(s.Memory.Used)
		p.Detail = "Total: " + GB(s.Memory.Total)
		p.Extra = "Usage: " + Percent(s.Memory.Percent())
		p.Metric = "memory.pct"

	case StorageActivity:
		if s.Storage.Total.Valid() && s.Storage.Used.Valid() {
			p.Title = "Used: " + GB(s.Storage.Used)
			p.Detail = "Total: " + GB(s.Storage.Total)
			p.Extra = "Usage: " + Percent(s.Storage.UsedPct)
		} else {
			p.Title = "Usage: " + Percent(s.Storage.UsedPct)
			p.Detail = s.Storage.Device
			p.Extra = "Size calculation unavailable"
		}
		p.Metric = "storage.pct"

	case NetworkActivity:
		p.Title = "Download: " + Speed(s.Network.Download)
		p.Detail = "Upload: " + Speed(s.Network.Upload)
		p.Extra = s.Network.Interface
		p.Metric = "network.down"

	case TemperatureOverview:
		p.Title = "CPU: " + u.Temp(s.CPU.Temp)
		p.Detail = "Storage: " + u.Temp(s.Storage.Temp)
		p.Extra = "Motherboard: " + u.Temp(s.Motherboard.AvgTemp)
		p.Metric = "board.avg"

	case FanMonitoring:
		if len(s.Fans) > 0 {
			sum, peak := 0.0, s.Fans[0]
			for _, f := range s.Fans {
				sum += f
				peak = max(peak, f)
			}
			p.Title = fmt.Sprintf("Active Fans: %d", len(s.Fans))
			p.Detail = fmt.Sprintf("Average: %.0f RPM", sum/float64(len(s.Fans)))
			p.Extra = fmt.Sprintf("Maximum: %.0f RPM", peak)
		} else {
			p.Title = "No Fan Data"
			p.Detail = "Fans not detected"
			p.Extra = "Check LibreHardwareMonitor"
		}
		p.Metric = snapshot.FanKey(0)

	case PowerConsumption:
		if s.CPU.Power.Valid() {
			p.Title = "CPU Package: " + Power(s.CPU.Power)
			p.Detail = "Real-time Power Draw"
			p.Extra = s.Identity.CPUName
		} else {
			p.Title = "Power Monitoring"
			p.Detail = "No power sensors detected"
			p.Extra = "Requires compatible hardware"
		}
		p.Metric = "cpu.power"
	}
	return p
}
