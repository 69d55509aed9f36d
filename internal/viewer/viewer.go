// Package viewer implements the recorded telemetry browser TUI with time
// scrubbing, day navigation and sparkline windows.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/luki/hwtelemetry/internal/chart"
	"github.com/luki/hwtelemetry/internal/format"
	"github.com/luki/hwtelemetry/internal/history"
	"github.com/luki/hwtelemetry/internal/snapshot"
	"github.com/luki/hwtelemetry/internal/store"
)

// ErrNoHistory is returned by Run when the database holds no readings.
var ErrNoHistory = errors.New("no recorded history")

// Loader reads recorded days.
type Loader interface {
	ListDays(ctx context.Context) ([]string, error)
	LoadDay(ctx context.Context, day string) ([]store.StoredReading, error)
}

// Run launches the history viewer TUI.
func Run(ctx context.Context, src Loader, unit format.Unit) error {
	days, err := src.ListDays(ctx)
	if err != nil {
		return fmt.Errorf("list days: %w", err)
	}
	if len(days) == 0 {
		return ErrNoHistory
	}

	p := tea.NewProgram(
		New(ctx, src, days, unit),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err = p.Run()
	return err
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorChipName = lipgloss.Color("147")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorWarn     = lipgloss.Color("220")
	colorCrit     = lipgloss.Color("196")
)

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the history viewer.
type Model struct {
	ctx     context.Context
	src     Loader
	unit    format.Unit
	days    []string // newest first
	dayIdx  int
	count   int      // rows loaded for the current day
	metrics []string // metric keys in catalog order
	cursor  int      // time cursor position
	scroll  int
	width   int
	height  int
	err     error

	timeSlots []time.Time
	series    map[string][]history.Point
}

// New creates a viewer positioned on the newest day.
func New(ctx context.Context, src Loader, days []string, unit format.Unit) Model {
	m := Model{
		ctx:  ctx,
		src:  src,
		unit: unit,
		days: days,
	}
	m.loadDay()
	return m
}

func (m *Model) loadDay() {
	readings, err := m.src.LoadDay(m.ctx, m.days[m.dayIdx])
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.count = len(readings)

	timeSet := make(map[int64]time.Time)
	series := make(map[string][]history.Point)

	for _, r := range readings {
		timeSet[r.Time.UnixMilli()] = r.Time
		series[r.Metric] = append(series[r.Metric], history.Point{Value: r.Value, Time: r.Time})
	}

	m.metrics = orderMetrics(series)

	times := make([]time.Time, 0, len(timeSet))
	for _, t := range timeSet {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	m.timeSlots = times

	for k, pts := range series {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
		series[k] = pts
	}
	m.series = series

	m.cursor = max(len(m.timeSlots)-1, 0)
	m.scroll = 0
}

// orderMetrics lists catalog metrics first, then fans, then unknown keys.
func orderMetrics(series map[string][]history.Point) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range snapshot.Catalog {
		if _, ok := series[c.Key]; ok {
			out = append(out, c.Key)
			seen[c.Key] = true
		}
	}
	var rest []string
	for k := range series {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		fi, fj := fanIndex(rest[i]), fanIndex(rest[j])
		if fi != fj {
			return fi < fj
		}
		return rest[i] < rest[j]
	})
	return append(out, rest...)
}

func fanIndex(key string) int {
	var n int
	if _, err := fmt.Sscanf(key, "fan.%d", &n); err != nil {
		return math.MaxInt
	}
	return n
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "left", "h":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right", "l":
			if m.cursor < len(m.timeSlots)-1 {
				m.cursor++
			}
		case "shift+left", "H":
			m.cursor = max(m.cursor-60, 0)
		case "shift+right", "L":
			m.cursor = max(min(m.cursor+60, len(m.timeSlots)-1), 0)
		case "home":
			m.cursor = 0
		case "end":
			m.cursor = max(len(m.timeSlots)-1, 0)

		case "[":
			if m.dayIdx < len(m.days)-1 {
				m.dayIdx++
				m.loadDay()
			}
		case "]":
			if m.dayIdx > 0 {
				m.dayIdx--
				m.loadDay()
			}

		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			m.scroll++
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Loading..."
	}

	contentWidth := max(m.width-2, 40)

	var sections []string

	sections = append(sections, m.renderTitle(contentWidth))

	if m.err != nil {
		errBox := lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("ERROR: %v", m.err))
		sections = append(sections, errBox)
	}

	if len(m.timeSlots) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(2, 0).
			Align(lipgloss.Center).
			Width(contentWidth).
			Render("No data for this day.")
		sections = append(sections, empty)
	} else {
		sections = append(sections, m.renderCursorInfo(contentWidth))
		sections = append(sections, m.renderPanels(contentWidth)...)
	}

	sections = append(sections, m.renderFooter(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	lines := strings.Split(content, "\n")
	visibleLines := max(m.height, 5)
	maxScroll := max(len(lines)-visibleLines, 0)
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}

	start := m.scroll
	end := min(start+visibleLines, len(lines))

	return strings.Join(lines[start:end], "\n")
}

func (m Model) renderTitle(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("HWTELEMETRY HISTORY")

	dayText := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true).
		Render(m.days[m.dayIdx])

	nav := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("  [ %d/%d ]", m.dayIdx+1, len(m.days)))

	dataInfo := ""
	if len(m.timeSlots) > 0 {
		first := m.timeSlots[0].Format("15:04:05")
		last := m.timeSlots[len(m.timeSlots)-1].Format("15:04:05")
		dataInfo = lipgloss.NewStyle().
			Foreground(colorDim).
			Render(fmt.Sprintf("  %s - %s  (%d readings, %d metrics)",
				first, last, m.count, len(m.metrics)))
	}

	right := dayText + nav + dataInfo

	gap := max(width-lipgloss.Width(logo)-lipgloss.Width(right)-4, 1)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

func (m Model) renderCursorInfo(width int) string {
	if m.cursor < 0 || m.cursor >= len(m.timeSlots) {
		return ""
	}

	ts := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true).
		Render(m.timeSlots[m.cursor].Format("15:04:05"))

	pos := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("  %d/%d", m.cursor+1, len(m.timeSlots)))

	scrubber := m.renderScrubber(max(width-30, 10))

	return lipgloss.NewStyle().
		Padding(0, 1).
		Render("  " + ts + pos + "  " + scrubber)
}

func (m Model) renderScrubber(width int) string {
	if len(m.timeSlots) == 0 || width <= 0 {
		return ""
	}

	pos := 0
	if len(m.timeSlots) > 1 {
		pos = m.cursor * (width - 1) / (len(m.timeSlots) - 1)
	}
	pos = min(pos, width-1)

	var sb strings.Builder
	dimS := lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	curS := lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	tickS := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	for i := range width {
		if i == pos {
			sb.WriteString(curS.Render("◆"))
			continue
		}
		slotIdx := 0
		if len(m.timeSlots) > 1 && width > 1 {
			slotIdx = i * (len(m.timeSlots) - 1) / (width - 1)
		}
		if slotIdx > 0 && slotIdx < len(m.timeSlots) &&
			m.timeSlots[slotIdx].Hour() != m.timeSlots[slotIdx-1].Hour() {
			sb.WriteString(tickS.Render("│"))
			continue
		}
		sb.WriteString(dimS.Render("─"))
	}

	return sb.String()
}

// group returns the panel heading for a metric key.
func group(key string) string {
	prefix, _, _ := strings.Cut(key, ".")
	switch prefix {
	case "cpu":
		return "CPU"
	case "gpu":
		return "GPU"
	case "memory":
		return "Memory"
	case "storage":
		return "Storage"
	case "network":
		return "Network"
	case "board":
		return "Motherboard"
	case "fan":
		return "Fans"
	}
	return "Other"
}

func (m Model) renderPanels(totalWidth int) []string {
	if m.cursor < 0 || m.cursor >= len(m.timeSlots) {
		return nil
	}

	cursorTime := m.timeSlots[m.cursor]

	innerWidth := max(totalWidth-4, 30)
	chartWidth := min(max(innerWidth-80, 15), 140)

	labelW := 16
	valueW := 12

	var order []string
	byGroup := make(map[string][]string)
	for _, key := range m.metrics {
		g := group(key)
		if _, ok := byGroup[g]; !ok {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], key)
	}

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	var panels []string

	for _, name := range order {
		var rows []string

		rows = append(rows, lipgloss.NewStyle().
			Bold(true).
			Foreground(colorChipName).
			Render(name))

		colLabel := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Width(labelW).Render("metric")
		colVal := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Width(valueW).Align(lipgloss.Right).Render("value")
		colHist := lipgloss.NewStyle().Foreground(lipgloss.Color("237")).Render(strings.Repeat(" ", max(chartWidth/2-3, 0)) + "history")
		rows = append(rows, colLabel+" "+colVal+"  "+colHist)
		rows = append(rows, lipgloss.NewStyle().
			Foreground(lipgloss.Color("237")).
			Render(strings.Repeat("─", innerWidth)))

		for _, key := range byGroup[name] {
			pts := m.series[key]
			if len(pts) == 0 {
				continue
			}
			metric, ok := snapshot.Lookup(key)
			if !ok {
				metric = snapshot.Metric{Key: key, Label: key}
			}
			th := chart.ForMetric(metric)

			cur := valueAt(pts, cursorTime)
			minV, maxV, avg := summarize(pts)
			rangeMin, rangeMax := chart.AutoRange(minV, maxV, th)

			window := sparkWindow(pts, m.cursor, chartWidth, m.timeSlots)

			label := lipgloss.NewStyle().
				Foreground(colorLabel).
				Bold(true).
				Width(labelW).
				Render(ansi.Truncate(metric.Label, labelW, "…"))

			value := lipgloss.NewStyle().
				Width(valueW).
				Align(lipgloss.Right).
				Render(chart.RenderValue(m.unit.Value(metric.Kind, cur), cur, th))

			spark := chart.RenderSparklinePoints(window, chartWidth, rangeMin, rangeMax, th)

			stats := dimS.Render(" avg") + valS.Render(fmt.Sprintf("%7.1f", avg)) +
				dimS.Render(" lo") + valS.Render(fmt.Sprintf("%7.1f", minV)) +
				dimS.Render(" pk") + valS.Render(fmt.Sprintf("%7.1f", maxV))

			var threshTags string
			if th.HasHigh {
				threshTags += " " + lipgloss.NewStyle().Foreground(colorWarn).Render(fmt.Sprintf("H:%.0f", th.High))
			}
			if th.HasCrit {
				threshTags += " " + lipgloss.NewStyle().Foreground(colorCrit).Render(fmt.Sprintf("C:%.0f", th.Crit))
			}

			rows = append(rows, label+" "+value+" "+frameL+spark+frameR+stats+threshTags)

			timeline := chart.RenderTimeline(window, chartWidth)
			if strings.TrimSpace(ansi.Strip(timeline)) != "" {
				rows = append(rows, strings.Repeat(" ", labelW+valueW+2)+" "+timeline)
			}
		}

		panels = append(panels, lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(totalWidth).
			Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	}

	return panels
}

func (m Model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	keyS := lipgloss.NewStyle().Foreground(colorLabel)

	keys := dimS.Render("q") + keyS.Render(":quit") +
		dimS.Render("  h/l") + keyS.Render(":scrub") +
		dimS.Render("  H/L") + keyS.Render(":skip 60") +
		dimS.Render("  home/end") + keyS.Render(":jump") +
		dimS.Render("  [/]") + keyS.Render(":day") +
		dimS.Render("  j/k") + keyS.Render(":scroll")

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(keys)
}

// ── Helpers ──────────────────────────────────────────────────────────

// valueAt returns the value of the point closest to t.
func valueAt(pts []history.Point, t time.Time) float64 {
	best := pts[0].Value
	bestDiff := absDuration(pts[0].Time.Sub(t))
	for _, p := range pts[1:] {
		diff := absDuration(p.Time.Sub(t))
		if diff < bestDiff {
			bestDiff = diff
			best = p.Value
		}
		if p.Time.After(t) && diff > bestDiff {
			break
		}
	}
	return best
}

func summarize(pts []history.Point) (lo, hi, avg float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
		avg += p.Value
	}
	return lo, hi, avg / float64(len(pts))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// sparkWindow returns up to width points of pts that fall on the time slots
// ending at the cursor.
func sparkWindow(pts []history.Point, cursorIdx, width int, timeSlots []time.Time) []history.Point {
	if len(pts) == 0 || len(timeSlots) == 0 {
		return nil
	}

	byTime := make(map[int64]float64, len(pts))
	for _, p := range pts {
		byTime[p.Time.UnixMilli()] = p.Value
	}

	var out []history.Point
	for i := width - 1; i >= 0; i-- {
		slot := cursorIdx - i
		if slot < 0 || slot >= len(timeSlots) {
			continue
		}
		t := timeSlots[slot]
		if v, ok := byTime[t.UnixMilli()]; ok {
			out = append(out, history.Point{Value: v, Time: t})
		}
	}
	return out
}
