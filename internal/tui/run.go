package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/autogram/internal/autogram"
	"github.com/verte-zerg/autogram/internal/search"
)

// Run shows the search UI while run executes. Quitting the UI cancels the search, and Run
// returns once the search has ended.
func Run(ctx context.Context, m *autogram.Model, budget search.Budget, run SearchFunc) (search.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ui := NewModel(m, budget, cancel)
	program := tea.NewProgram(ui, tea.WithAltScreen())

	finished := make(chan doneMsg, 1)
	go func() {
		out, err := run(ctx, func(p search.Progress) {
			program.Send(progressMsg(p))
		})
		finished <- doneMsg{outcome: out, err: err}
		program.Send(doneMsg{outcome: out, err: err})
	}()

	_, uiErr := program.Run()
	cancel()
	result := <-finished
	if uiErr != nil {
		return result.outcome, fmt.Errorf("failed to run search UI: %w", uiErr)
	}
	return result.outcome, result.err
}
