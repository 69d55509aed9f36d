package extract

import (
	"github.com/luki/hwtelemetry/internal/sensor"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

// superIOMarkers identify the monitoring chip nested under a board node.
var superIOMarkers = []string{"ite", "nct", "super i/o"}

// Board summarises motherboard temperatures and collects fan speeds from
// the board's super I/O chips. A board without a recognised chip is read
// from its own sensor groups. Temperatures outside the limits window and
// stopped fans are dropped.
func Board(node *sensor.Node, lim Limits) (snapshot.Motherboard, []float64) {
	sources := chips(node)
	if len(sources) == 0 {
		sources = []*sensor.Node{node}
	}

	var temps, fans []float64
	for _, src := range sources {
		for _, group := range src.Children() {
			label := group.Label()
			switch {
			case sensor.ContainsAny(label, kindTemperature):
				for _, s := range group.Children() {
					if v, ok := s.Number(); ok && v > lim.BoardMin && v < lim.BoardMax {
						temps = append(temps, v)
					}
				}
			case sensor.ContainsAny(label, kindFan):
				for _, s := range group.Children() {
					if v, ok := s.Number(); ok && v > 0 {
						fans = append(fans, v)
					}
				}
			}
		}
	}

	var mb snapshot.Motherboard
	if len(temps) > 0 {
		sum, peak := 0.0, temps[0]
		for _, t := range temps {
			sum += t
			peak = max(peak, t)
		}
		mb.AvgTemp = snapshot.Of(sum / float64(len(temps)))
		mb.MaxTemp = snapshot.Of(peak)
	}
	return mb, fans
}

func chips(board *sensor.Node) []*sensor.Node {
	var out []*sensor.Node
	for _, c := range board.Children() {
		if sensor.ContainsAny(c.Label(), superIOMarkers) {
			out = append(out, c)
		}
	}
	return out
}
