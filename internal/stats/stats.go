// Package stats contains run statistics and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/autogram/internal/autogram"
	"github.com/verte-zerg/autogram/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[max(0, min(last, idx))])
	}
	return b.String()
}

// GuessErrorStrip renders the guess error of every variable slot, e.g. "e+2 r-1 s=".
func GuessErrorStrip(m *autogram.Model, guessError []int) string {
	parts := make([]string, 0, len(guessError))
	for v, d := range guessError {
		label := charLabel(string(m.VariableSlot(v).Char))
		switch {
		case d == 0:
			parts = append(parts, label+"=")
		case d > 0:
			parts = append(parts, fmt.Sprintf("%s+%d", label, d))
		default:
			parts = append(parts, fmt.Sprintf("%s%d", label, d))
		}
	}
	return strings.Join(parts, " ")
}

// RenderSummary prints a summary of runs.
func RenderSummary(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	converged := 0
	best := -1
	var totalIter int64
	var totalMs int64
	for _, r := range runs {
		totalIter += int64(r.Iterations)
		totalMs += r.DurationMs
		if !r.Converged {
			continue
		}
		converged++
		if best < 0 || r.Iterations < best {
			best = r.Iterations
		}
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d (%d converged)", len(runs), converged),
		fmt.Sprintf("Avg iterations: %s", humanize.Comma(totalIter/int64(len(runs)))),
	}
	if best >= 0 {
		lines = append(lines, fmt.Sprintf("Best iterations: %s", humanize.Comma(int64(best))))
	}
	lines = append(lines, fmt.Sprintf("Total search time: %s", time.Duration(totalMs)*time.Millisecond), "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderRunTable prints one row per run.
func RenderRunTable(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	table := newTable(w, []string{"ID", "Ended", "Seed", "Iterations", "Result", "Sentence"}, map[int]bool{0: true, 3: true})
	for _, r := range runs {
		table.Append([]string{
			strconv.FormatInt(r.RunID, 10),
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			seedLabel(r.Seed),
			humanize.Comma(int64(r.Iterations)),
			resultLabel(r.Converged, r.Distance),
			r.Sentence,
		})
	}
	table.Render()
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCharTable prints per-character aggregates.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character counts found.")
		return err
	}
	rows := make([]model.CharAggregate, len(aggs))
	copy(rows, aggs)
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Char < rows[j].Char
	})
	if _, err := fmt.Fprintln(w, "Per-Character Counts"); err != nil {
		return err
	}
	table := newTable(w, []string{"Char", "Runs", "Avg", "Min", "Max", "Off"}, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true})
	for _, agg := range rows {
		avg := 0.0
		if agg.Runs > 0 {
			avg = float64(agg.CountSum) / float64(agg.Runs)
		}
		table.Append([]string{
			charLabel(agg.Char),
			strconv.Itoa(agg.Runs),
			fmt.Sprintf("%.1f", avg),
			strconv.Itoa(agg.MinCount),
			strconv.Itoa(agg.MaxCount),
			strconv.Itoa(agg.Misses),
		})
	}
	table.Render()
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderModelTable prints the slots of a model.
func RenderModelTable(w io.Writer, m *autogram.Model) error {
	table := newTable(w, []string{"Char", "Kind", "Baseline", "Minimum", "Var Baseline"}, map[int]bool{2: true, 3: true, 4: true})
	for _, s := range m.Slots() {
		kind := "invariant"
		varBaseline := "-"
		if s.Variable {
			kind = fmt.Sprintf("variable #%d", s.VariableIndex)
			varBaseline = strconv.Itoa(s.VariableBaseline)
		}
		table.Append([]string{
			charLabel(string(s.Char)),
			kind,
			strconv.Itoa(s.Baseline),
			strconv.Itoa(s.Minimum),
			varBaseline,
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%d variable", m.VariableCount()), "", "", ""})
	table.Render()
	return nil
}

// RenderBenchTable prints iteration statistics per template.
func RenderBenchTable(w io.Writer, runs []model.RunRecord) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No bench runs.")
		return err
	}
	var order []string
	byTemplate := map[string][]model.RunRecord{}
	for _, r := range runs {
		if _, ok := byTemplate[r.Template]; !ok {
			order = append(order, r.Template)
		}
		byTemplate[r.Template] = append(byTemplate[r.Template], r)
	}
	table := newTable(w, []string{"Template", "Seeds", "Converged", "Min", "Median", "Max", "Avg Time"}, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true})
	for _, tpl := range order {
		group := byTemplate[tpl]
		var iters []int
		var totalMs int64
		for _, r := range group {
			totalMs += r.DurationMs
			if r.Converged {
				iters = append(iters, r.Iterations)
			}
		}
		minIt, medIt, maxIt := "-", "-", "-"
		if len(iters) > 0 {
			sort.Ints(iters)
			minIt = humanize.Comma(int64(iters[0]))
			medIt = humanize.Comma(int64(iters[len(iters)/2]))
			maxIt = humanize.Comma(int64(iters[len(iters)-1]))
		}
		avg := time.Duration(totalMs/int64(len(group))) * time.Millisecond
		table.Append([]string{
			tpl,
			strconv.Itoa(len(group)),
			strconv.Itoa(len(iters)),
			minIt,
			medIt,
			maxIt,
			avg.String(),
		})
	}
	table.Render()
	return nil
}

func seedLabel(seed *uint64) string {
	if seed == nil {
		return "-"
	}
	return strconv.FormatUint(*seed, 10)
}

func resultLabel(converged bool, distance int) string {
	if converged {
		return "autogram"
	}
	return fmt.Sprintf("off by %d", distance)
}
