package stats

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/autogram/internal/model"
	"github.com/verte-zerg/autogram/internal/store"
)

const reportTopChars = 5

// Report contains precomputed data for history rendering.
type Report struct {
	Runs     []model.RunAggregate
	CharAggs []model.CharAggregate
	Varying  []string
	Missed   []string
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list runs: %w", err)
	}
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	aggs, err := st.ListCharAggregatesForRuns(ctx, ids)
	if err != nil {
		return Report{}, fmt.Errorf("failed to aggregate counts: %w", err)
	}
	return Report{
		Runs:     runs,
		CharAggs: aggs,
		Varying:  TopVaryingChars(aggs, reportTopChars),
		Missed:   SelectMissedChars(aggs, reportTopChars),
	}, nil
}

// IterationSeries returns the iteration count of every run, oldest first.
func (r Report) IterationSeries() []float64 {
	out := make([]float64, len(r.Runs))
	for i, run := range r.Runs {
		out[i] = float64(run.Iterations)
	}
	return out
}

// Render prints the whole report as plain text.
func (r Report) Render(w io.Writer, window, width int, useColor bool) error {
	if err := RenderSummary(w, r.Runs); err != nil {
		return err
	}
	if len(r.Runs) == 0 {
		return nil
	}
	if err := RenderRunTable(w, r.Runs); err != nil {
		return err
	}
	if err := RenderCharTable(w, r.CharAggs); err != nil {
		return err
	}
	if len(r.Varying) > 0 {
		if _, err := fmt.Fprintf(w, "Most varying: %s\n", labels(r.Varying)); err != nil {
			return err
		}
	}
	if len(r.Missed) > 0 {
		if _, err := fmt.Fprintf(w, "Most often off: %s\n", labels(r.Missed)); err != nil {
			return err
		}
	}
	if len(r.Runs) < 2 {
		return nil
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return PlotSeries(w, "Iterations per Run", []Series{
		{Name: "Iterations", Values: MovingAverage(r.IterationSeries(), window)},
	}, PlotWidthFor(width), defaultPlotHeight, useColor)
}

func labels(chars []string) string {
	out := make([]string, len(chars))
	for i, ch := range chars {
		out[i] = charLabel(ch)
	}
	return strings.Join(out, " ")
}
