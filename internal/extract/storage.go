package extract

import (
	"regexp"
	"strconv"

	"github.com/luki/hwtelemetry/internal/sensor"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

var (
	storageUsedPatterns = []string{"used space", "usage"}
	storageTempPatterns = []string{"temperature"}
)

// sizePatterns are tried in order; TB sizes are converted to GB.
var sizePatterns = []struct {
	re    *regexp.Regexp
	scale float64
}{
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*TB`), 1000},
	{regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*GB`), 1},
}

// SizeFromName extracts a capacity in GB from a drive's display name,
// e.g. "Samsung 970 EVO 2TB" gives 2000.
func SizeFromName(name string) (float64, bool) {
	for _, p := range sizePatterns {
		m := p.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v <= 0 {
			continue
		}
		return v * p.scale, true
	}
	return 0, false
}

// Storage reads the used percentage and temperature of a drive. Total and
// used GB come from the size in the drive's name and stay absent when the
// name carries none.
func Storage(node *sensor.Node) snapshot.Storage {
	st := snapshot.Storage{
		UsedPct: percent(sensor.FindIn(node, kindLoad, storageUsedPatterns...)),
		Temp:    temperature(sensor.FindIn(node, kindTemperature, storageTempPatterns...)),
		Device:  node.Label(),
	}
	total, ok := SizeFromName(node.Label())
	if !ok {
		return st
	}
	st.Total = snapshot.Of(total)
	if pct, ok := st.UsedPct.Get(); ok {
		st.Used = snapshot.Of(pct / 100 * total)
	}
	return st
}
