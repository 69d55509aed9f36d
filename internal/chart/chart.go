// Package chart provides sparkline rendering with color-coded metric
// thresholds, minute tick marks, timeline labels, and threshold scale bars.
package chart

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/hwtelemetry/internal/history"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

var sparkBlocks = []rune{'\u2581', '\u2582', '\u2583', '\u2584', '\u2585', '\u2586', '\u2587', '\u2588'}

// Thresholds are the warning levels of a metric.
type Thresholds struct {
	High, Crit       float64
	HasHigh, HasCrit bool
}

// ForMetric returns the thresholds of a catalog metric. A zero level
// means the metric has none.
func ForMetric(m snapshot.Metric) Thresholds {
	return Thresholds{High: m.High, Crit: m.Crit, HasHigh: m.High > 0, HasCrit: m.Crit > 0}
}

// Critical reports whether v is at or above the critical level.
func (t Thresholds) Critical(v float64) bool {
	return t.HasCrit && v >= t.Crit
}

// LevelColor returns the appropriate color for a value given thresholds.
func LevelColor(v float64, t Thresholds) lipgloss.Color {
	switch {
	case t.HasCrit && v >= t.Crit:
		return lipgloss.Color("196") // red
	case t.HasHigh && v >= t.High:
		return lipgloss.Color("208") // orange
	case t.HasHigh && v >= t.High*0.85:
		return lipgloss.Color("220") // yellow
	default:
		return lipgloss.Color("78") // soft green
	}
}

// RenderSparkline renders a sparkline chart with color-coded blocks and
// no timestamp ticks.
func RenderSparkline(values []float64, width int, rangeMin, rangeMax float64, t Thresholds) string {
	if width <= 0 {
		return ""
	}
	pts := make([]history.Point, len(values))
	for i, v := range values {
		pts[i] = history.Point{Value: v}
	}
	return RenderSparklinePoints(pts, width, rangeMin, rangeMax, t)
}

// RenderSparklinePoints renders a sparkline with minute tick marks on the
// timeline. A subtle pipe is drawn at each minute boundary.
func RenderSparklinePoints(points []history.Point, width int, rangeMin, rangeMax float64, t Thresholds) string {
	if width <= 0 {
		return ""
	}

	if len(points) == 0 {
		dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
		return dim.Render(strings.Repeat("\u254C", width))
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)
	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	for i := 0; i < padLen; i++ {
		sb.WriteString(dim.Render("\u254C"))
	}

	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	for i, p := range points {
		norm := (p.Value - rangeMin) / span
		norm = math.Max(0, math.Min(1, norm))

		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		if minuteTick(points, i) {
			sb.WriteString(tickStyle.Render("\u2502"))
		} else {
			ch := string(sparkBlocks[idx])
			style := lipgloss.NewStyle().Foreground(LevelColor(p.Value, t))
			if t.Critical(p.Value) {
				style = style.Bold(true)
			}
			sb.WriteString(style.Render(ch))
		}
	}

	return sb.String()
}

// RenderTimeline renders the time labels under the sparkline, showing
// HH:MM at each minute tick position.
func RenderTimeline(points []history.Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)

	line := make([]rune, width)
	for i := range line {
		line[i] = ' '
	}

	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	type tick struct {
		pos   int
		label string
	}
	var ticks []tick

	for i, p := range points {
		if minuteTick(points, i) {
			ticks = append(ticks, tick{pos: padLen + i, label: p.Time.Format("15:04")})
		}
	}

	lastEnd := -1
	for _, t := range ticks {
		start := t.pos - 2
		if start < 0 {
			start = 0
		}
		end := start + len(t.label)
		if end > width {
			continue
		}
		if start <= lastEnd+1 {
			continue
		}
		for j, ch := range t.label {
			line[start+j] = ch
		}
		lastEnd = end
	}

	result := string(line)
	return tickStyle.Render(result)
}

// minuteTick reports whether points[i] is the first sample of a new
// minute.
func minuteTick(points []history.Point, i int) bool {
	p := points[i]
	if p.Time.IsZero() {
		return false
	}
	if p.Time.Second() == 0 {
		return true
	}
	return i > 0 && !points[i-1].Time.IsZero() && p.Time.Minute() != points[i-1].Time.Minute()
}

// RenderThresholdScale renders a scale bar showing current position vs thresholds.
func RenderThresholdScale(current, rangeMin, rangeMax float64, t Thresholds, width int) string {
	if width <= 0 {
		return ""
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	bar := make([]rune, width)
	for i := range bar {
		bar[i] = '\u00B7'
	}

	highPos, critPos := -1, -1
	if t.HasHigh && t.High > rangeMin {
		highPos = int(float64(width-1) * (t.High - rangeMin) / span)
		if highPos >= 0 && highPos < width {
			bar[highPos] = '\u25AA'
		}
	}
	if t.HasCrit && t.Crit > rangeMin {
		critPos = int(float64(width-1) * (t.Crit - rangeMin) / span)
		if critPos >= 0 && critPos < width {
			bar[critPos] = '\u25AA'
		}
	}

	curPos := int(float64(width-1) * (current - rangeMin) / span)
	if curPos < 0 {
		curPos = 0
	}
	if curPos >= width {
		curPos = width - 1
	}

	var sb strings.Builder
	for i, ch := range bar {
		if i == curPos {
			style := lipgloss.NewStyle().Foreground(LevelColor(current, t)).Bold(true)
			sb.WriteString(style.Render("\u25C6"))
		} else if ch == '\u25AA' {
			if i == critPos {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("\u25AA"))
			} else if i == highPos {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render("\u25AA"))
			} else {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("\u25AA"))
			}
		} else {
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("236")).Render(string(ch)))
		}
	}

	return sb.String()
}

// RenderValue renders an already formatted value with the color of v.
func RenderValue(text string, v float64, t Thresholds) string {
	style := lipgloss.NewStyle().Foreground(LevelColor(v, t))
	if t.Critical(v) {
		style = style.Bold(true)
	}
	return style.Render(text)
}

// AutoRange pads the observed lo/peak of a series and widens the range to
// include the thresholds, so they stay visible on the scale.
func AutoRange(lo, peak float64, t Thresholds) (float64, float64) {
	rangeMin := math.Max(0, lo-5)
	rangeMax := peak + 5
	if t.HasCrit && t.Crit > rangeMax {
		rangeMax = t.Crit + 5
	}
	if t.HasHigh && t.High > rangeMax {
		rangeMax = t.High + 5
	}
	return rangeMin, rangeMax
}
