package extract

import (
	"strings"

	"github.com/luki/hwtelemetry/internal/sensor"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

var (
	uploadPatterns   = []string{"upload speed", "tx", "sent"}
	downloadPatterns = []string{"download speed", "rx", "received"}
)

// highRateMarkers tag a raw value already expressed in megabytes or
// megabits per second.
var highRateMarkers = []string{"MB/s", "Mbps"}

// Mbps converts a throughput reading to megabits per second using the
// unit text of its raw value string. Megabyte-tagged values are
// multiplied by 8; anything else is taken as KB/s and divided by 125.
func Mbps(v float64, raw string) float64 {
	for _, m := range highRateMarkers {
		if strings.Contains(raw, m) {
			return v * 8
		}
	}
	return v / 125
}

// Network reads upload and download rates of an interface in Mbps.
func Network(node *sensor.Node) snapshot.Network {
	return snapshot.Network{
		Upload:    rate(node, uploadPatterns),
		Download:  rate(node, downloadPatterns),
		Interface: node.Label(),
		Present:   true,
	}
}

func rate(node *sensor.Node, patterns []string) snapshot.Reading {
	hit, ok := sensor.LookupIn(node, kindThroughput, patterns...)
	if !ok {
		return snapshot.Reading{}
	}
	return nonNegative(Mbps(hit.Value, hit.Raw()), true)
}
