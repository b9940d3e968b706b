package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/autogram/internal/config"
	"github.com/verte-zerg/autogram/internal/model"
	"github.com/verte-zerg/autogram/internal/stats"
	"github.com/verte-zerg/autogram/internal/statsui"
	"github.com/verte-zerg/autogram/internal/store"
)

const defaultCurveWindow = 5

var (
	historySince     string
	historyLast      int
	historyConverged bool
	historySource    string
	historyWindow    int
	historyNoTUI     bool
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().BoolVar(&historyConverged, "converged", false, "only runs that found an autogram")
	cmd.Flags().StringVar(&historySource, "source", "", "only runs from solve or bench")
	cmd.Flags().IntVar(&historyWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&historyNoTUI, "no-tui", false, "print a plain report")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	applyIntConfig(cmd, "last", &historyLast, fileCfg.History.Last)
	template := ""
	if cmd.Flags().Changed("template") {
		template = modelTemplate
	}
	cfg, err := historyConfig(template, historySince, historyLast, historyConverged, historySource)
	if err != nil {
		return err
	}
	if historyWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("failed to close db")
		}
	}()

	if !historyNoTUI && term.IsTerminal(int(os.Stdout.Fd())) {
		program := tea.NewProgram(statsui.NewModel(st, cfg, historyWindow), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return err
	}
	return report.Render(cmd.OutOrStdout(), historyWindow, stats.TerminalWidth(), false)
}

func historyConfig(template, since string, last int, converged bool, source string) (model.HistoryConfig, error) {
	cfg := model.HistoryConfig{
		Template:      template,
		Last:          last,
		ConvergedOnly: converged,
		Source:        source,
	}
	if last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	switch source {
	case "", model.SourceSolve, model.SourceBench:
	default:
		return cfg, fmt.Errorf("--source must be %q or %q", model.SourceSolve, model.SourceBench)
	}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}
