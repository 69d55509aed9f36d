package extract

import (
	"github.com/luki/hwtelemetry/internal/sensor"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

var (
	cpuTempPatterns  = []string{"core average", "cpu package", "package", "tctl", "tdie"}
	cpuLoadPatterns  = []string{"cpu total", "total", "cpu usage", "processor usage"}
	cpuPowerPatterns = []string{"cpu package", "package power", "cpu power"}
)

// CPU reads temperature, load, power and the mean core clock.
func CPU(node *sensor.Node, lim Limits) snapshot.CPU {
	return snapshot.CPU{
		Temp:  temperature(sensor.FindIn(node, kindTemperature, cpuTempPatterns...)),
		Load:  percent(sensor.FindIn(node, kindLoad, cpuLoadPatterns...)),
		Clock: Clock(node, lim.ClockFloor),
		Power: nonNegative(sensor.FindIn(node, kindPower, cpuPowerPatterns...)),
	}
}

// Clock averages the per-core clocks found in the node's clock groups.
// Sensors named after the bus, and readings at or below floor, are
// ignored.
func Clock(node *sensor.Node, floor float64) snapshot.Reading {
	var sum float64
	var n int
	for _, group := range node.Children() {
		if !sensor.ContainsAny(group.Label(), kindClock) {
			continue
		}
		for _, s := range group.Children() {
			label := s.Label()
			if !sensor.ContainsAny(label, []string{"core", "cpu"}) || sensor.ContainsAny(label, []string{"bus"}) {
				continue
			}
			if v, ok := s.Number(); ok && v > floor {
				sum += v
				n++
			}
		}
	}
	if n == 0 {
		return snapshot.Reading{}
	}
	return snapshot.Of(sum / float64(n))
}
