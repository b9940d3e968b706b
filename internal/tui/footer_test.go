package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/autogram/internal/autogram"
	"github.com/verte-zerg/autogram/internal/search"
)

func lookModel(t *testing.T) *autogram.Model {
	t.Helper()
	m, err := autogram.Build(autogram.Options{
		Alphabet:     "abc, ",
		Template:     "Look {0}.",
		Conjunction:  " and ",
		PluralSuffix: "'s",
	})
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	return m
}

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{latest: search.Progress{
		Iterations: 12345,
		Seen:       12000,
		Randomized: 2,
		Distance:   5,
		Elapsed:    1500 * time.Millisecond,
	}}
	out := m.renderFooter()
	if !containsAll(out, []string{"Iterations 12,345", "Seen 12,000", "Randomized 2", "Off by 5", "1.5s", "q to stop"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}

	m.done = true
	m.outcome = search.Outcome{Iterations: 3, Seen: 3, Elapsed: time.Millisecond}
	out = m.renderFooter()
	if strings.Contains(out, "q to stop") || !strings.Contains(out, "Iterations 3") {
		t.Fatalf("unexpected final footer: %s", out)
	}
}

func TestRenderGuessError(t *testing.T) {
	m := NewModel(lookModel(t), search.Budget{}, nil)
	if got := m.renderGuessError(); got != "" {
		t.Fatalf("expected empty strip before progress, got %q", got)
	}
	m.latest.GuessError = []int{2, 0}
	out := m.renderGuessError()
	if !containsAll(out, []string{"␣+2", ","}) {
		t.Fatalf("strip missing expected segments: %s", out)
	}
	if off := m.offChars(); !off[' '] || off[','] {
		t.Fatalf("unexpected off chars %v", off)
	}
}

func TestPercentFollowsBudget(t *testing.T) {
	m := NewModel(lookModel(t), search.Budget{MaxIterations: 200}, nil)
	m.latest.Iterations = 50
	if p, ok := m.percent(); !ok || p != 0.25 {
		t.Fatalf("expected 0.25, got %v %v", p, ok)
	}
	m.budget = search.Budget{Timeout: time.Second}
	m.latest.Elapsed = 2 * time.Second
	if p, ok := m.percent(); !ok || p != 1 {
		t.Fatalf("expected capped percent, got %v %v", p, ok)
	}
	m.budget = search.Budget{}
	if _, ok := m.percent(); ok {
		t.Fatalf("expected no percent without a budget")
	}
}

func TestQuitCancelsSearch(t *testing.T) {
	cancelled := false
	m := NewModel(lookModel(t), search.Budget{}, func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !cancelled || !m.stopping {
		t.Fatalf("expected quit key to cancel the search")
	}
	if cmd != nil {
		t.Fatalf("expected the UI to wait for the search to end")
	}

	_, cmd = m.Update(doneMsg{outcome: search.Outcome{Sentence: "Look."}})
	if !m.done || cmd == nil {
		t.Fatalf("expected the UI to quit once the search ends")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit command")
	}
}

func TestViewShowsSentence(t *testing.T) {
	m := NewModel(lookModel(t), search.Budget{}, nil)
	m.Update(progressMsg(search.Progress{Sentence: "Look four a's.", GuessError: []int{0, 0}}))
	if out := m.View(); !strings.Contains(out, "Searching") {
		t.Fatalf("expected searching header, got %s", out)
	}
	m.Update(doneMsg{outcome: search.Outcome{Converged: true, Sentence: "Look four a's."}})
	out := m.View()
	if !containsAll(out, []string{"Autogram found", "Iterations 0"}) {
		t.Fatalf("unexpected final view: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
