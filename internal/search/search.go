// Package search drives autogram solvers under iteration and time budgets.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/autogram/internal/autogram"
)

// ErrBudgetExhausted reports a search stopped by its iteration or time budget.
var ErrBudgetExhausted = errors.New("search budget exhausted")

// cancelCheckEvery is how many steps run between context checks.
const cancelCheckEvery = 1024

// Budget bounds a search.
type Budget struct {
	// MaxIterations stops the search after this many steps. Zero means unbounded.
	MaxIterations int
	// Timeout stops the search after this long. Zero means unbounded.
	Timeout time.Duration
	// ReportEvery is the number of steps between progress reports. Zero disables periodic
	// reports; a final report is always sent.
	ReportEvery int
	// Logger receives debug events. Nil discards them.
	Logger logrus.FieldLogger
}

// Progress is a snapshot of a running search.
type Progress struct {
	Seed       *uint64
	Iterations int
	Seen       int
	Randomized int
	Reordered  int
	Distance   int
	GuessError []int
	Proposed   []int
	Sentence   string
	Elapsed    time.Duration
	Done       bool
}

// ProgressFunc receives progress snapshots. It runs on the search goroutine.
type ProgressFunc func(Progress)

// Outcome summarizes a finished search.
type Outcome struct {
	Seed       *uint64
	Converged  bool
	Iterations int
	Seen       int
	Randomized int
	Reordered  int
	Counts     []int
	GuessError []int
	Distance   int
	Sentence   string
	StartedAt  time.Time
	Elapsed    time.Duration
}

// Run advances s until it converges, fails, or the budget runs out. The returned Outcome is
// filled in every case; the error is nil only on convergence.
func Run(ctx context.Context, s *autogram.Solver, budget Budget, progress ProgressFunc) (Outcome, error) {
	log := budget.logger().WithField("seed", seedField(s.Seed()))
	parent := ctx
	if budget.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget.Timeout)
		defer cancel()
	}

	started := time.Now()
	var randomized, reordered int
	report := func(done bool) {
		if progress == nil {
			return
		}
		progress(Progress{
			Seed:       s.Seed(),
			Iterations: s.Iterations(),
			Seen:       s.SeenCount(),
			Randomized: randomized,
			Reordered:  reordered,
			Distance:   s.Distance(),
			GuessError: s.GuessError(),
			Proposed:   s.Proposed(),
			Sentence:   s.Sentence(),
			Elapsed:    time.Since(started),
			Done:       done,
		})
	}
	finish := func(err error) (Outcome, error) {
		report(true)
		out := Outcome{
			Seed:       s.Seed(),
			Converged:  s.Converged(),
			Iterations: s.Iterations(),
			Seen:       s.SeenCount(),
			Randomized: randomized,
			Reordered:  reordered,
			Counts:     s.Counts(),
			GuessError: s.GuessError(),
			Distance:   s.Distance(),
			Sentence:   s.Sentence(),
			StartedAt:  started,
			Elapsed:    time.Since(started),
		}
		log.WithFields(logrus.Fields{
			"iterations": out.Iterations,
			"converged":  out.Converged,
			"elapsed":    out.Elapsed,
		}).Debug("search finished")
		return out, err
	}

	log.WithField("variables", s.Model().VariableCount()).Debug("search started")
	for i := 0; ; i++ {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
					return finish(fmt.Errorf("%w: timeout %s", ErrBudgetExhausted, budget.Timeout))
				}
				return finish(err)
			}
		}
		if budget.MaxIterations > 0 && s.Iterations() >= budget.MaxIterations {
			return finish(fmt.Errorf("%w: %d iterations", ErrBudgetExhausted, budget.MaxIterations))
		}

		step, err := s.Advance()
		if err != nil {
			return finish(fmt.Errorf("failed to advance search: %w", err))
		}
		if step.Randomized {
			randomized++
		}
		if step.Reordered {
			reordered++
			log.WithField("iteration", s.Iterations()).Debug("reordered proposal")
		}
		if step.Success {
			return finish(nil)
		}
		if budget.ReportEvery > 0 && s.Iterations()%budget.ReportEvery == 0 {
			report(false)
		}
	}
}

func (b Budget) logger() logrus.FieldLogger {
	if b.Logger != nil {
		return b.Logger
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	return discard
}

func seedField(seed *uint64) any {
	if seed == nil {
		return "clock"
	}
	return *seed
}
