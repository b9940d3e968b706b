// Package statsui provides the Bubble Tea run history interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/autogram/internal/model"
	"github.com/verte-zerg/autogram/internal/stats"
	"github.com/verte-zerg/autogram/internal/store"
)

const (
	tabOverview = iota
	tabRuns
	tabChars
)

const (
	plotHeight    = 10
	defaultWidth  = 80
	maxPlotWindow = 50
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea history UI.
type Model struct {
	store  *store.Store
	cfg    model.HistoryConfig
	window int

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	runTable  table.Model
	charTable table.Model

	detail     string
	showDetail bool

	width  int
	height int
}

// NewModel constructs a history UI model.
func NewModel(st *store.Store, cfg model.HistoryConfig, window int) *Model {
	m := &Model{
		store:     st,
		cfg:       cfg,
		window:    max(1, window),
		tabs:      []string{"Overview", "Runs", "Characters"},
		overview:  viewport.New(0, 0),
		runTable:  newTable(runColumns()),
		charTable: newTable(charColumns()),
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.showDetail {
			if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter {
				m.showDetail = false
			}
			return m, nil
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "c":
			m.cfg.ConvergedOnly = !m.cfg.ConvergedOnly
			m.refreshReport()
			return m, nil
		case "=":
			m.window = min(maxPlotWindow, m.window+1)
			m.renderOverview()
			return m, nil
		case "-":
			m.window = max(1, m.window-1)
			m.renderOverview()
			return m, nil
		case "enter":
			if m.activeTab == tabRuns {
				m.openDetail()
			}
			return m, nil
		}
		var cmd tea.Cmd
		switch m.activeTab {
		case tabRuns:
			m.runTable, cmd = m.runTable.Update(msg)
		case tabChars:
			m.charTable, cmd = m.charTable.Update(msg)
		default:
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.showDetail {
		box := modalStyle.Width(min(m.width-4, 100)).Render(m.detail)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderTabs()+"\n"+m.renderFilterSummary(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = max(1, lipgloss.Height(activeNavStyle.Render("X"))) + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range []*table.Model{&m.runTable, &m.charTable} {
		t.SetWidth(m.width)
		t.SetHeight(max(1, bodyHeight-1))
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	m.runTable.Blur()
	m.charTable.Blur()
	switch m.activeTab {
	case tabRuns:
		m.runTable.Focus()
	case tabChars:
		m.charTable.Focus()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load history.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.runTable.SetRows(runRows(report.Runs))
	m.charTable.SetRows(charRows(report.CharAggs))
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	m.overview.SetContent(renderOverview(m.report, m.window, width))
}

// openDetail shows the sentence and stored counts of the selected run.
func (m *Model) openDetail() {
	idx := m.runTable.Cursor()
	if idx < 0 || idx >= len(m.report.Runs) {
		return
	}
	// Rows are listed newest first.
	run := m.report.Runs[len(m.report.Runs)-1-idx]
	counts, err := m.store.GetRunCounts(context.Background(), run.RunID)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.detail = renderDetail(run, counts)
	m.showDetail = true
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFilterSummary() string {
	template := m.cfg.Template
	if template == "" {
		template = "any"
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Filters: template=%s  last=%s  converged-only=%t  window=%d", template, last, m.cfg.ConvergedOnly, m.window)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down  Window: -/=  Converged only: c  Quit: q"
	if m.activeTab == tabRuns {
		help = "Nav: left/right  Select: up/down  Details: enter  Converged only: c  Quit: q"
	}
	if m.errMsg != "" {
		return headerStyle.Render(help) + "\n" + errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody() string {
	switch {
	case m.activeTab == tabOverview:
		return m.overview.View()
	case len(m.report.Runs) == 0:
		return "No runs found."
	case m.activeTab == tabRuns:
		return m.runTable.View()
	default:
		return m.charTable.View()
	}
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Runs) == 0 {
		return "No runs found."
	}
	parts := []string{renderSummaryCards(report.Runs, width)}
	if len(report.Varying) > 0 {
		parts = append(parts, "Most varying: "+labels(report.Varying))
	}
	if len(report.Missed) > 0 {
		parts = append(parts, "Most often off: "+labels(report.Missed))
	}
	if len(report.Runs) > 1 {
		var buf bytes.Buffer
		series := []stats.Series{{Name: "Iterations", Values: stats.MovingAverage(report.IterationSeries(), window)}}
		if err := stats.PlotSeries(&buf, "Iterations per Run", series, stats.PlotWidthFor(width), plotHeight, true); err != nil {
			parts = append(parts, fmt.Sprintf("Failed to render plot: %v", err))
		} else {
			parts = append(parts, strings.TrimRight(buf.String(), "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderSummaryCards(runs []model.RunAggregate, width int) string {
	converged := 0
	best := -1
	var totalIter int64
	for _, r := range runs {
		totalIter += int64(r.Iterations)
		if r.Converged {
			converged++
			if best < 0 || r.Iterations < best {
				best = r.Iterations
			}
		}
	}
	bestLabel := "-"
	if best >= 0 {
		bestLabel = humanize.Comma(int64(best))
	}
	cards := []string{
		metricCard("Runs", strconv.Itoa(len(runs))),
		metricCard("Converged", strconv.Itoa(converged)),
		metricCard("Avg Iterations", humanize.Comma(totalIter/int64(len(runs)))),
		metricCard("Best Iterations", bestLabel),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderDetail(run model.RunAggregate, counts []model.SlotCount) string {
	result := "autogram"
	if !run.Converged {
		result = fmt.Sprintf("off by %d", run.Distance)
	}
	lines := []string{
		fmt.Sprintf("Run %d  %s  %s iterations  %s", run.RunID, run.EndedAt.Local().Format("2006-01-02 15:04"), humanize.Comma(int64(run.Iterations)), result),
		"",
		run.Sentence,
		"",
	}
	var parts []string
	for _, c := range counts {
		part := fmt.Sprintf("%s=%d", charLabel(c.Char), c.Count)
		if c.GuessError != 0 {
			part += fmt.Sprintf("(%+d)", c.GuessError)
		}
		parts = append(parts, part)
	}
	lines = append(lines, strings.Join(parts, " "), "", headerStyle.Render("esc: back"))
	return strings.Join(lines, "\n")
}
