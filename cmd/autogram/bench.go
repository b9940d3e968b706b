package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/autogram/internal/autogram"
	"github.com/verte-zerg/autogram/internal/config"
	"github.com/verte-zerg/autogram/internal/model"
	"github.com/verte-zerg/autogram/internal/search"
	"github.com/verte-zerg/autogram/internal/stats"
	"github.com/verte-zerg/autogram/internal/templates"
)

const (
	defaultBenchSeeds   = 5
	defaultBenchMaxIter = 1_000_000
)

var (
	benchTemplates string
	benchSeeds     int
	benchBaseSeed  uint64
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Solve a template list with several seeds and compare iterations",
		Args:  cobra.NoArgs,
		RunE:  runBenchCmd,
	}
	cmd.Flags().StringVar(&benchTemplates, "templates", "", "template list, one per line (default: config dir templates.txt)")
	cmd.Flags().IntVar(&benchSeeds, "seeds", defaultBenchSeeds, "seeds per template")
	cmd.Flags().Uint64Var(&benchBaseSeed, "base-seed", 1, "first seed; later seeds count up")
	return cmd
}

func runBenchCmd(cmd *cobra.Command, _ []string) error {
	applyIntConfig(cmd, "seeds", &benchSeeds, fileCfg.Bench.Seeds)
	applyStringConfig(cmd, "templates", &benchTemplates, fileCfg.Bench.Templates)
	if benchSeeds <= 0 {
		return fmt.Errorf("--seeds must be > 0")
	}
	if err := validateSolveFlags(); err != nil {
		return err
	}
	if solveMaxIter == 0 && solveTimeout == 0 {
		solveMaxIter = defaultBenchMaxIter
	}

	list, err := benchTemplateList(benchTemplates)
	if err != nil {
		return err
	}
	seeds := make([]uint64, benchSeeds)
	for i := range seeds {
		seeds[i] = benchBaseSeed + uint64(i)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b := budget()
	b.ReportEvery = 0
	var records []model.RunRecord
	for _, tpl := range list {
		opts := modelOptions()
		opts.Template = tpl
		m, err := autogram.Build(opts)
		if err != nil {
			logrus.WithError(err).WithField("template", tpl).Warn("skipping template")
			continue
		}
		log := logrus.WithField("template", tpl)
		log.WithField("seeds", len(seeds)).Info("benchmarking")
		outcomes, err := search.Bench(ctx, m, seeds, solveWorkers, b)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			return fmt.Errorf("failed to bench %q: %w", tpl, err)
		}
		if !solveNoSave {
			saveOutcomes(m, model.SourceBench, outcomes)
		}
		for _, out := range outcomes {
			records = append(records, runRecord(m, model.SourceBench, out))
		}
	}
	return stats.RenderBenchTable(cmd.OutOrStdout(), records)
}

// benchTemplateList loads the template file, or falls back to the configured template when no
// file was named and the default one does not exist.
func benchTemplateList(path string) ([]string, error) {
	keep := templates.HasSinglePlaceholder(autogram.Placeholder)
	if path != "" {
		list, err := templates.LoadTemplates(path, keep)
		if err != nil {
			return nil, fmt.Errorf("failed to load templates: %w", err)
		}
		return list, nil
	}
	list, err := templates.LoadTemplates(config.DefaultTemplatesPath(), keep)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return []string{modelTemplate}, nil
}
