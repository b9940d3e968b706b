// Package tui provides the Bubble Tea search progress interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/autogram/internal/autogram"
	"github.com/verte-zerg/autogram/internal/search"
)

// SearchFunc runs a search, reporting snapshots to progress until it ends.
type SearchFunc func(ctx context.Context, progress search.ProgressFunc) (search.Outcome, error)

type progressMsg search.Progress

type doneMsg struct {
	outcome search.Outcome
	err     error
}

// Model implements the Bubble Tea search UI.
type Model struct {
	model  *autogram.Model
	budget search.Budget
	cancel context.CancelFunc

	spinner spinner.Model
	bar     progress.Model

	width  int
	height int

	latest    search.Progress
	startedAt time.Time
	stopping  bool

	done    bool
	outcome search.Outcome
	err     error
}

var (
	settledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	offStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	foundStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	progressWidth = 40
)

// NewModel constructs a search UI for m. cancel stops the running search.
func NewModel(m *autogram.Model, budget search.Budget, cancel context.CancelFunc) *Model {
	return &Model{
		model:     m,
		budget:    budget,
		cancel:    cancel,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressWidth)),
		startedAt: time.Now(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(progressWidth, max(10, msg.Width-20))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.done {
				return m, tea.Quit
			}
			m.stopping = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case progressMsg:
		m.latest = search.Progress(msg)
		return m, nil
	case doneMsg:
		m.done = true
		m.outcome = msg.outcome
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	lines := []string{m.renderHeader()}
	if bar, ok := m.percent(); ok {
		lines = append(lines, m.bar.ViewAs(bar))
	}
	if strip := m.renderGuessError(); strip != "" {
		lines = append(lines, strip)
	}
	lines = append(lines, "")

	contentWidth := 0
	if m.width > 0 {
		contentWidth = max(1, int(float64(m.width)*0.70))
	}
	lines = append(lines, wrapStyledRunes(buildStyledRunes(m.sentence(), m.offChars()), contentWidth), "", m.renderFooter())
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHeader() string {
	title := " Searching"
	if m.latest.Seed != nil {
		title = fmt.Sprintf(" Searching (seed %d)", *m.latest.Seed)
	}
	switch {
	case m.done && m.outcome.Converged:
		return foundStyle.Render("Autogram found")
	case m.done && m.err != nil:
		return offStyle.Render("Search stopped: " + m.err.Error())
	case m.done:
		return offStyle.Render("Search stopped")
	case m.stopping:
		return m.spinner.View() + headerStyle.Render(" Stopping...")
	default:
		return m.spinner.View() + headerStyle.Render(title)
	}
}

func (m *Model) percent() (float64, bool) {
	switch {
	case m.budget.MaxIterations > 0:
		return min(1, float64(m.latest.Iterations)/float64(m.budget.MaxIterations)), true
	case m.budget.Timeout > 0:
		return min(1, float64(m.latest.Elapsed)/float64(m.budget.Timeout)), true
	default:
		return 0, false
	}
}

// renderGuessError shows every variable character with its current guess error.
func (m *Model) renderGuessError() string {
	errs := m.latest.GuessError
	if m.done {
		errs = m.outcome.GuessError
	}
	if len(errs) == 0 {
		return ""
	}
	parts := make([]string, len(errs))
	for v, d := range errs {
		label := string(m.model.VariableSlot(v).Char)
		if label == " " {
			label = "␣"
		}
		switch {
		case d == 0:
			parts[v] = settledStyle.Render(label)
		case d > 0:
			parts[v] = offStyle.Render(fmt.Sprintf("%s+%d", label, d))
		default:
			parts[v] = offStyle.Render(fmt.Sprintf("%s%d", label, d))
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderFooter() string {
	p := m.latest
	if m.done {
		p = search.Progress{
			Iterations: m.outcome.Iterations,
			Seen:       m.outcome.Seen,
			Randomized: m.outcome.Randomized,
			Distance:   m.outcome.Distance,
			Elapsed:    m.outcome.Elapsed,
		}
	}
	segments := []string{
		"Iterations " + humanize.Comma(int64(p.Iterations)),
		"Seen " + humanize.Comma(int64(p.Seen)),
		fmt.Sprintf("Randomized %d", p.Randomized),
		fmt.Sprintf("Off by %d", p.Distance),
		p.Elapsed.Round(time.Millisecond).String(),
	}
	if !m.done {
		segments = append(segments, "q to stop")
	}
	return footerStyle.Render(strings.Join(segments, " · "))
}

func (m *Model) sentence() string {
	if m.done {
		return m.outcome.Sentence
	}
	return m.latest.Sentence
}

// offChars returns the variable characters whose count is still wrong.
func (m *Model) offChars() map[rune]bool {
	errs := m.latest.GuessError
	if m.done {
		errs = m.outcome.GuessError
	}
	off := map[rune]bool{}
	for v, d := range errs {
		if d != 0 {
			off[m.model.VariableSlot(v).Char] = true
		}
	}
	return off
}
