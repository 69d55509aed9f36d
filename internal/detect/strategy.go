package detect

import (
	"github.com/luki/hwtelemetry/internal/sensor"
)

// First picks the first candidate in tree order.
type First struct{}

func (First) Pick(candidates []*sensor.Node) (*sensor.Node, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[0], true
}

// usedSpacePatterns locate a drive's used-space percentage.
var usedSpacePatterns = []string{"used space"}

// MostUsed picks, among candidates with a readable "used space" sensor,
// the one with the highest used percentage. The fullest drive stands in
// for the boot drive. Ties go to the earlier candidate.
type MostUsed struct{}

func (MostUsed) Pick(candidates []*sensor.Node) (*sensor.Node, bool) {
	var best *sensor.Node
	bestUsed := 0.0
	for _, c := range candidates {
		used, ok := sensor.Find(c, usedSpacePatterns...)
		if !ok {
			continue
		}
		if best == nil || used > bestUsed {
			best, bestUsed = c, used
		}
	}
	return best, best != nil
}

// MostActive ranks network interfaces by an activity score built from
// their raw upload, download and utilization readings and picks the
// busiest. With no active interface it falls back to the first
// Ethernet-labelled one (when PreferEthernet is set), then to the first
// candidate.
type MostActive struct {
	Weights        ActivityWeights
	PreferEthernet bool
}

// ActivityWeights scale each reading in the activity score. Only strictly
// positive readings contribute.
type ActivityWeights struct {
	Upload      float64 `yaml:"upload"`
	Download    float64 `yaml:"download"`
	Utilization float64 `yaml:"utilization"`
}

var (
	uploadRatePatterns   = []string{"upload speed"}
	downloadRatePatterns = []string{"download speed"}
	utilizationPatterns  = []string{"network utilization"}
)

// Score computes the activity score of one interface node.
func (w ActivityWeights) Score(iface *sensor.Node) float64 {
	score := 0.0
	if v, ok := sensor.Find(iface, uploadRatePatterns...); ok && v > 0 {
		score += w.Upload * v
	}
	if v, ok := sensor.Find(iface, downloadRatePatterns...); ok && v > 0 {
		score += w.Download * v
	}
	if v, ok := sensor.Find(iface, utilizationPatterns...); ok && v > 0 {
		score += w.Utilization * v
	}
	return score
}

func (s MostActive) Pick(candidates []*sensor.Node) (*sensor.Node, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	var best *sensor.Node
	bestScore := 0.0
	for _, c := range candidates {
		if score := s.Weights.Score(c); score > bestScore {
			best, bestScore = c, score
		}
	}
	if best != nil {
		return best, true
	}

	if s.PreferEthernet {
		for _, c := range candidates {
			if sensor.ContainsAny(c.Label(), []string{"ethernet"}) {
				return c, true
			}
		}
	}
	return candidates[0], true
}
