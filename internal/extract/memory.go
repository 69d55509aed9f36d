package extract

import (
	"github.com/luki/hwtelemetry/internal/sensor"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

var (
	memoryUsedPatterns      = []string{"memory used", "used"}
	memoryAvailablePatterns = []string{"memory available", "available"}
)

// Memory reads used memory and derives the total as used + available.
func Memory(node *sensor.Node) snapshot.Memory {
	var m snapshot.Memory
	used, ok := sensor.FindIn(node, kindData, memoryUsedPatterns...)
	m.Used = nonNegative(used, ok)
	if !m.Used.Valid() {
		return m
	}
	if avail, ok := sensor.FindIn(node, kindData, memoryAvailablePatterns...); ok && avail >= 0 {
		m.Total = snapshot.Of(used + avail)
	}
	return m
}
