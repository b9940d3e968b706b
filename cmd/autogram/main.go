// Package main provides the CLI entrypoint for autogram.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/autogram/internal/autogram"
	"github.com/verte-zerg/autogram/internal/config"
	"github.com/verte-zerg/autogram/internal/model"
	"github.com/verte-zerg/autogram/internal/search"
	"github.com/verte-zerg/autogram/internal/store"
	"github.com/verte-zerg/autogram/internal/tui"
)

const (
	defaultAlphabet    = "abcdefghijklmnopqrstuvwxyz"
	defaultTemplate    = "This sentence is an autogram and it contains {0}."
	defaultConjunction = " and lastly "
	defaultPlural      = "'s"
	defaultSeparator   = ", "
	defaultReportEvery = 10000
)

var (
	modelAlphabet    string
	modelTemplate    string
	modelConjunction string
	modelPlural      string
	modelForced      string
	modelSeparator   string

	solveSeed        uint64
	solveMaxIter     int
	solveTimeout     time.Duration
	solveReportEvery int
	solveWorkers     int
	solveNoTUI       bool
	solveNoSave      bool

	verbose bool

	fileCfg config.FileConfig
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "autogram",
		Short:             "Search for self-enumerating sentences",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setup,
		RunE:              runSolveCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&modelAlphabet, "alphabet", defaultAlphabet, "characters to count")
	pf.StringVar(&modelTemplate, "template", defaultTemplate, "sentence template with a single {0}")
	pf.StringVar(&modelConjunction, "conjunction", defaultConjunction, "text before the last list item")
	pf.StringVar(&modelPlural, "plural", defaultPlural, "suffix for plural glyph names")
	pf.StringVar(&modelForced, "forced", "", "characters listed even when absent from the template")
	pf.StringVar(&modelSeparator, "separator", defaultSeparator, "text between list items")
	pf.IntVar(&solveMaxIter, "max-iter", 0, "stop after N iterations (0 = unbounded)")
	pf.DurationVar(&solveTimeout, "timeout", 0, "stop after this long (0 = unbounded)")
	pf.IntVar(&solveWorkers, "workers", 1, "parallel searches with consecutive seeds (0 = one per CPU)")
	pf.BoolVar(&solveNoSave, "no-save", false, "do not store results")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.Flags().Uint64Var(&solveSeed, "seed", 0, "random seed (default: clock)")
	rootCmd.Flags().IntVar(&solveReportEvery, "report-every", defaultReportEvery, "iterations between progress reports")
	rootCmd.Flags().BoolVar(&solveNoTUI, "no-tui", false, "print progress as log lines")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newModelCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newBenchCmd())

	return rootCmd
}

// setup loads the config file, applies it to unchanged flags and configures logging.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	fileCfg, err = config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := setupLogging(fileCfg.Log.Level, verbose); err != nil {
		return err
	}

	s := fileCfg.Solve
	applyStringConfig(cmd, "alphabet", &modelAlphabet, s.Alphabet)
	applyStringConfig(cmd, "template", &modelTemplate, s.Template)
	applyStringConfig(cmd, "conjunction", &modelConjunction, s.Conjunction)
	applyStringConfig(cmd, "plural", &modelPlural, s.PluralSuffix)
	applyStringConfig(cmd, "forced", &modelForced, s.Forced)
	applyStringConfig(cmd, "separator", &modelSeparator, s.Separator)
	applyIntConfig(cmd, "max-iter", &solveMaxIter, s.MaxIter)
	applyIntConfig(cmd, "workers", &solveWorkers, s.Workers)
	applyIntConfig(cmd, "report-every", &solveReportEvery, s.ReportEvery)
	applyUint64Config(cmd, "seed", &solveSeed, s.Seed)
	timeout, err := s.TimeoutDuration()
	if err != nil {
		return err
	}
	applyDurationConfig(cmd, "timeout", &solveTimeout, timeout)
	return nil
}

func setupLogging(level *string, debug bool) error {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.InfoLevel)
	if level != nil {
		parsed, err := logrus.ParseLevel(*level)
		if err != nil {
			return fmt.Errorf("invalid log.level: %w", err)
		}
		logrus.SetLevel(parsed)
	}
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return nil
}

func buildModel() (*autogram.Model, error) {
	m, err := autogram.Build(modelOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}
	logrus.WithField("model", m.String()).Debug("model built")
	return m, nil
}

func modelOptions() autogram.Options {
	return autogram.Options{
		Alphabet:     modelAlphabet,
		Template:     modelTemplate,
		Conjunction:  modelConjunction,
		PluralSuffix: modelPlural,
		Forced:       modelForced,
		Separator:    modelSeparator,
	}
}

func budget() search.Budget {
	return search.Budget{
		MaxIterations: solveMaxIter,
		Timeout:       solveTimeout,
		ReportEvery:   solveReportEvery,
		Logger:        logrus.StandardLogger(),
	}
}

func runSolveCmd(cmd *cobra.Command, _ []string) error {
	if err := validateSolveFlags(); err != nil {
		return err
	}
	m, err := buildModel()
	if err != nil {
		return err
	}

	seeds := solveSeeds(cmd.Flags().Changed("seed") || fileCfg.Solve.Seed != nil, solveSeed, solveWorkers, time.Now())
	runSearch := func(ctx context.Context, progress search.ProgressFunc) (search.Outcome, error) {
		if len(seeds) > 1 {
			return search.Race(ctx, m, seeds, len(seeds), budget(), progress)
		}
		var seed *uint64
		if len(seeds) == 1 {
			seed = &seeds[0]
		}
		return search.Run(ctx, autogram.NewSolver(m, seed), budget(), progress)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var out search.Outcome
	if !solveNoTUI && term.IsTerminal(int(os.Stdout.Fd())) {
		out, err = tui.Run(ctx, m, budget(), runSearch)
	} else {
		out, err = runSearch(ctx, logProgress)
	}

	if !solveNoSave && out.Iterations > 0 {
		saveOutcomes(m, model.SourceSolve, []search.Outcome{out})
	}
	return reportOutcome(cmd, out, err)
}

func validateSolveFlags() error {
	if solveMaxIter < 0 {
		return fmt.Errorf("--max-iter must be >= 0")
	}
	if solveTimeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	if solveReportEvery < 0 {
		return fmt.Errorf("--report-every must be >= 0")
	}
	if solveWorkers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	return nil
}

// solveSeeds picks one seed per worker. Without an explicit seed a single worker uses the
// solver's clock seed, and several workers start from the current time.
func solveSeeds(explicit bool, seed uint64, workers int, now time.Time) []uint64 {
	if workers == 0 {
		workers = search.DefaultWorkers()
	}
	if !explicit {
		if workers <= 1 {
			return nil
		}
		seed = uint64(now.UnixNano())
	}
	seeds := make([]uint64, max(1, workers))
	for i := range seeds {
		seeds[i] = seed + uint64(i)
	}
	return seeds
}

func logProgress(p search.Progress) {
	entry := logrus.WithFields(logrus.Fields{
		"iterations": p.Iterations,
		"seen":       p.Seen,
		"distance":   p.Distance,
		"elapsed":    p.Elapsed.Round(time.Millisecond),
	})
	if p.Done {
		entry.Debug("search ended")
		return
	}
	entry.Info("searching")
}

func reportOutcome(cmd *cobra.Command, out search.Outcome, err error) error {
	switch {
	case err == nil:
		if _, werr := fmt.Fprintln(cmd.OutOrStdout(), out.Sentence); werr != nil {
			return fmt.Errorf("failed to write output: %w", werr)
		}
		logrus.WithFields(logrus.Fields{
			"iterations": out.Iterations,
			"elapsed":    out.Elapsed.Round(time.Millisecond),
		}).Info("autogram found")
		return nil
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("search cancelled after %d iterations", out.Iterations)
	case out.Sentence != "":
		logrus.WithFields(logrus.Fields{
			"iterations": out.Iterations,
			"distance":   out.Distance,
			"closest":    out.Sentence,
		}).Warn("no autogram found")
	}
	return err
}

// saveOutcomes stores finished searches. Failures are logged, not returned.
func saveOutcomes(m *autogram.Model, source string, outcomes []search.Outcome) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logrus.WithError(err).Warn("failed to open db")
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("failed to close db")
		}
	}()
	for _, out := range outcomes {
		if _, err := st.InsertRun(context.Background(), runRecord(m, source, out), slotCounts(m, out)); err != nil {
			logrus.WithError(err).Warn("failed to save run")
			return
		}
	}
}

func runRecord(m *autogram.Model, source string, out search.Outcome) model.RunRecord {
	opts := m.Options()
	return model.RunRecord{
		StartedAt:    out.StartedAt,
		EndedAt:      out.StartedAt.Add(out.Elapsed),
		Source:       source,
		Alphabet:     opts.Alphabet,
		Template:     opts.Template,
		Conjunction:  opts.Conjunction,
		PluralSuffix: opts.PluralSuffix,
		Forced:       opts.Forced,
		Separator:    opts.Separator,
		Seed:         out.Seed,
		Iterations:   out.Iterations,
		Seen:         out.Seen,
		Randomized:   out.Randomized,
		Reordered:    out.Reordered,
		Distance:     out.Distance,
		Converged:    out.Converged,
		Sentence:     out.Sentence,
		DurationMs:   out.Elapsed.Milliseconds(),
	}
}

// slotCounts pairs the final counts of an outcome with the model's slots.
func slotCounts(m *autogram.Model, out search.Outcome) []model.SlotCount {
	slots := m.Slots()
	if len(out.Counts) != len(slots) {
		return nil
	}
	counts := make([]model.SlotCount, len(slots))
	for i, slot := range slots {
		counts[i] = model.SlotCount{
			Char:     string(slot.Char),
			Count:    out.Counts[i],
			Variable: slot.Variable,
		}
		if slot.Variable && slot.VariableIndex < len(out.GuessError) {
			counts[i].GuessError = out.GuessError[slot.VariableIndex]
		}
	}
	return counts
}

func newModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "model",
		Short: "Print the slot table of the configured model",
		Args:  cobra.NoArgs,
		RunE:  runModelCmd,
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate(config.IsYAML(path))), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyUint64Config(cmd *cobra.Command, name string, target, value *uint64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target, value *time.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate(yaml bool) string {
	if yaml {
		return fmt.Sprintf(`# autogram configuration
# Uncomment a value to enable it. CLI flags override config values.

solve:
  # alphabet: %q
  # template: %q
  # conjunction: %q
  # plural: %q
  # forced: ""
  # separator: %q
  # seed: 1
  # max-iter: 0
  # timeout: "10m"
  # report-every: %d
  # workers: 1
history:
  # last: 20
bench:
  # seeds: %d
  # templates: %q
log:
  # level: "info"
`,
			defaultAlphabet, defaultTemplate, defaultConjunction, defaultPlural, defaultSeparator,
			defaultReportEvery, defaultBenchSeeds, config.DefaultTemplatesPath(),
		)
	}
	return fmt.Sprintf(`# autogram configuration
# Uncomment a value to enable it. CLI flags override config values.

[solve]
# alphabet = %q       # Characters to count
# template = %q       # Sentence template with a single {0}
# conjunction = %q    # Text before the last list item
# plural = %q         # Suffix for plural glyph names
# forced = ""         # Characters listed even when absent from the template
# separator = %q      # Text between list items
# seed = 1            # Random seed (default: clock)
# max-iter = 0        # Stop after N iterations (0 = unbounded)
# timeout = "10m"     # Stop after this long (0 = unbounded)
# report-every = %d   # Iterations between progress reports
# workers = 1         # Parallel searches (0 = one per CPU)

[history]
# last = 20           # Limit to last N runs

[bench]
# seeds = %d          # Seeds per template
# templates = %q      # Template list, one per line

[log]
# level = "info"      # panic, fatal, error, warn, info, debug or trace
`,
		defaultAlphabet, defaultTemplate, defaultConjunction, defaultPlural, defaultSeparator,
		defaultReportEvery, defaultBenchSeeds, config.DefaultTemplatesPath(),
	)
}
