// Package monitor implements the live hardware telemetry TUI using
// BubbleTea with display pages, real-time sparkline charts and
// color-coded thresholds.
package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/luki/hwtelemetry/internal/chart"
	"github.com/luki/hwtelemetry/internal/format"
	"github.com/luki/hwtelemetry/internal/history"
	"github.com/luki/hwtelemetry/internal/poller"
	"github.com/luki/hwtelemetry/internal/snapshot"
)

const refreshInterval = 1 * time.Second

// Source is the live snapshot feed.
type Source interface {
	Snapshot() *snapshot.Snapshot
	State() poller.State
}

// Options configures the monitor.
type Options struct {
	Unit format.Unit
	// Endpoint is shown in the connection banner.
	Endpoint string
	// RecordDir is shown next to the REC badge; empty when not recording.
	RecordDir string
}

// ── Messages ─────────────────────────────────────────────────────────

type tickMsg time.Time

type snapshotMsg struct {
	snap  *snapshot.Snapshot
	state poller.State
}

// ── Model ────────────────────────────────────────────────────────────

// Model is the BubbleTea model for the live monitor.
type Model struct {
	source    Source
	history   *history.Store
	opts      Options
	snap      *snapshot.Snapshot
	state     poller.State
	page      int
	width     int
	height    int
	scroll    int
	startTime time.Time
	paused    bool
}

// New creates the initial model for the live monitor. hist is the shared
// history store the poller records into.
func New(src Source, hist *history.Store, opts Options) Model {
	return Model{
		source:    src,
		history:   hist,
		opts:      opts,
		startTime: time.Now(),
	}
}

// ── Commands ─────────────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) readSource() tea.Msg {
	return snapshotMsg{snap: m.source.Snapshot(), state: m.source.State()}
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.readSource, tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
		case "down", "j":
			m.scroll++
		case "home":
			m.scroll = 0
		case "right", "l", "tab":
			m.page = (m.page + 1) % len(m.sources())
		case "left", "h", "shift+tab":
			n := len(m.sources())
			m.page = (m.page + n - 1) % n
		case " ", "p":
			m.paused = !m.paused
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		if m.paused {
			return m, tickCmd()
		}
		return m, tea.Batch(m.readSource, tickCmd())

	case snapshotMsg:
		m.state = msg.state
		if msg.snap != nil {
			m.snap = msg.snap
		}
		if n := len(m.sources()); m.page >= n {
			m.page = n - 1
		}
	}

	return m, nil
}

func (m Model) sources() []format.Source {
	id := snapshot.NewIdentity()
	if m.snap != nil {
		id = m.snap.Identity
	}
	return format.Sources(id)
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorChipName = lipgloss.Color("147")
	colorAdapter  = lipgloss.Color("243")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorOk       = lipgloss.Color("78")
	colorWarn     = lipgloss.Color("220")
	colorHigh     = lipgloss.Color("208")
	colorCrit     = lipgloss.Color("196")
	colorPaused   = lipgloss.Color("196")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := max(m.width-2, 40)

	var sections []string

	sections = append(sections, m.renderTitleBar(contentWidth))

	if m.state == poller.Disconnected {
		msg := "Unable to reach HTPC  │  Check LibreHardwareMonitor"
		if m.opts.Endpoint != "" {
			msg += " at " + m.opts.Endpoint
		}
		banner := lipgloss.NewStyle().
			Foreground(colorCrit).
			Bold(true).
			Width(contentWidth).
			Padding(0, 1).
			Render(" " + msg)
		sections = append(sections, banner)
	}

	if m.snap == nil {
		waiting := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for sensor data...")
		sections = append(sections, waiting)
	} else {
		sections = append(sections, m.renderTabs(contentWidth))
		sections = append(sections, m.renderPage(contentWidth))
		sections = append(sections, m.renderMetricPanels(contentWidth)...)
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

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("HWTELEMETRY")

	var statusParts []string

	uptime := lipgloss.NewStyle().
		Foreground(colorDim).
		Render(fmt.Sprintf("up %s", fmtDuration(time.Since(m.startTime))))
	statusParts = append(statusParts, uptime)

	if m.snap != nil {
		ts := lipgloss.NewStyle().
			Foreground(colorDim).
			Render(m.snap.CapturedAt.Format("15:04:05"))
		statusParts = append(statusParts, ts)
	}

	stateColor := colorOk
	switch m.state {
	case poller.Disconnected:
		stateColor = colorCrit
	case poller.Degraded:
		stateColor = colorWarn
	}
	statusParts = append(statusParts, lipgloss.NewStyle().Foreground(stateColor).Render(m.state.String()))

	if m.paused {
		p := lipgloss.NewStyle().
			Foreground(colorPaused).
			Bold(true).
			Render("PAUSED")
		statusParts = append(statusParts, p)
	}

	if m.opts.RecordDir != "" {
		rec := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render("REC") +
			lipgloss.NewStyle().
				Foreground(colorDim).
				Render(" "+m.opts.RecordDir)
		statusParts = append(statusParts, rec)
	}

	sep := lipgloss.NewStyle().Foreground(colorDim).Render(" │ ")
	right := strings.Join(statusParts, sep)

	gap := max(width-lipgloss.Width(logo)-lipgloss.Width(right)-4, 1)
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + filler + right)
}

func (m Model) renderTabs(width int) string {
	active := lipgloss.NewStyle().Bold(true).Foreground(colorTitleFg).Underline(true)
	idle := lipgloss.NewStyle().Foreground(colorAdapter)

	var tabs []string
	for i, src := range m.sources() {
		if i == m.page {
			tabs = append(tabs, active.Render(string(src)))
		} else {
			tabs = append(tabs, idle.Render(string(src)))
		}
	}
	line := strings.Join(tabs, lipgloss.NewStyle().Foreground(colorDim).Render(" · "))
	return lipgloss.NewStyle().Padding(0, 1).Render(ansi.Truncate(line, width-2, "…"))
}

func (m Model) renderPage(totalWidth int) string {
	srcs := m.sources()
	panel := m.opts.Unit.Render(srcs[m.page], m.snap)

	innerWidth := max(totalWidth-4, 30)
	title := lipgloss.NewStyle().Bold(true).Foreground(colorChipName).Render(panel.Title)
	detail := lipgloss.NewStyle().Foreground(colorLabel).Render(panel.Detail)
	extra := lipgloss.NewStyle().Foreground(colorAdapter).Render(panel.Extra)
	rows := []string{
		ansi.Truncate(title, innerWidth, "…"),
		ansi.Truncate(detail, innerWidth, "…"),
		ansi.Truncate(extra, innerWidth, "…"),
	}

	if metric, ok := snapshot.Lookup(panel.Metric); ok {
		if st, ok := m.history.Stats(metric.Key); ok {
			th := chart.ForMetric(metric)
			lo, hi := chart.AutoRange(st.Min, st.Peak, th)
			scaleW := min(innerWidth, 60)
			rows = append(rows, "",
				lipgloss.NewStyle().Foreground(colorDim).Render(metric.Label)+"  "+
					chart.RenderThresholdScale(st.Last, lo, hi, th, scaleW))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(totalWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// metricGroup is one panel of related series.
type metricGroup struct {
	prefix string
	name   func(*snapshot.Snapshot) string
}

var metricGroups = []metricGroup{
	{"cpu.", func(s *snapshot.Snapshot) string { return s.Identity.CPUName }},
	{"gpu.", func(s *snapshot.Snapshot) string { return s.Identity.GPUName }},
	{"memory.", func(*snapshot.Snapshot) string { return "Memory" }},
	{"storage.", func(s *snapshot.Snapshot) string { return s.Identity.StorageName }},
	{"network.", func(s *snapshot.Snapshot) string { return s.Identity.NetworkName }},
	{"board.", func(*snapshot.Snapshot) string { return "Motherboard" }},
	{"fan.", func(*snapshot.Snapshot) string { return "Fans" }},
}

func (m Model) renderMetricPanels(totalWidth int) []string {
	keys := m.history.Keys()

	innerWidth := max(totalWidth-4, 30)
	chartWidth := min(max(innerWidth-80, 15), 140)

	labelW := 20
	valueW := 12

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	var panels []string

	for _, g := range metricGroups {
		var rows []string
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(colorChipName).
			Render(ansi.Truncate(g.name(m.snap), innerWidth, "…"))
		rows = append(rows, header)

		var lastPts []history.Point

		for _, key := range keys {
			if !strings.HasPrefix(key, g.prefix) {
				continue
			}
			metric, ok := snapshot.Lookup(key)
			if !ok {
				continue
			}
			st, ok := m.history.Stats(key)
			if !ok {
				continue
			}
			th := chart.ForMetric(metric)
			rangeMin, rangeMax := chart.AutoRange(st.Min, st.Peak, th)

			label := lipgloss.NewStyle().
				Foreground(colorLabel).
				Width(labelW).
				Render(ansi.Truncate(metric.Label, labelW, "…"))

			value := lipgloss.NewStyle().
				Width(valueW).
				Align(lipgloss.Right).
				Render(chart.RenderValue(m.opts.Unit.Value(metric.Kind, st.Last), st.Last, th))

			pts := m.history.Points(key, chartWidth)
			lastPts = pts
			spark := chart.RenderSparklinePoints(pts, chartWidth, rangeMin, rangeMax, th)
			framedSpark := frameL + spark + frameR

			stats := dimS.Render(" avg") + valS.Render(fmt.Sprintf("%7.1f", st.Avg)) +
				dimS.Render(" lo") + valS.Render(fmt.Sprintf("%7.1f", st.Min)) +
				dimS.Render(" pk") + valS.Render(fmt.Sprintf("%7.1f", st.Peak))

			var threshTags string
			if th.HasHigh {
				threshTags += dimS.Render(" H") + lipgloss.NewStyle().Foreground(colorWarn).Render(fmt.Sprintf("%.0f", th.High))
			}
			if th.HasCrit {
				threshTags += dimS.Render(" C") + lipgloss.NewStyle().Foreground(colorCrit).Render(fmt.Sprintf("%.0f", th.Crit))
			}

			rows = append(rows, label+" "+value+" "+framedSpark+stats+threshTags)
		}

		if lastPts == nil {
			continue
		}
		timeline := chart.RenderTimeline(lastPts, chartWidth)
		if strings.TrimSpace(ansi.Strip(timeline)) != "" {
			pad := strings.Repeat(" ", labelW+valueW+2)
			rows = append(rows, pad+" "+timeline)
		}

		panel := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(totalWidth).
			Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

		panels = append(panels, panel)
	}

	return panels
}

func (m Model) renderFooter(width int) string {
	okS := lipgloss.NewStyle().Foreground(colorOk).Render("██")
	warnS := lipgloss.NewStyle().Foreground(colorWarn).Render("██")
	highS := lipgloss.NewStyle().Foreground(colorHigh).Render("██")
	critS := lipgloss.NewStyle().Foreground(colorCrit).Render("██")
	tickS := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Render("│")

	dimS := lipgloss.NewStyle().Foreground(colorDim)
	legend := okS + dimS.Render(" ok ") +
		warnS + dimS.Render(" warm ") +
		highS + dimS.Render(" high ") +
		critS + dimS.Render(" crit ") +
		tickS + dimS.Render(" 1min")

	keyS := lipgloss.NewStyle().Foreground(colorLabel)
	keys := dimS.Render("q") + keyS.Render(":quit") +
		dimS.Render("  h/l") + keyS.Render(":page") +
		dimS.Render("  j/k") + keyS.Render(":scroll") +
		dimS.Render("  p") + keyS.Render(":pause")

	gap := max(width-lipgloss.Width(legend)-lipgloss.Width(keys)-4, 1)
	filler := strings.Repeat(" ", gap)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + filler + keys)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
