package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/autogram/internal/autogram"
)

// Race searches m once per seed on up to workers goroutines and returns the first converged
// outcome. The remaining searches are cancelled once one converges. When none converges the
// outcome with the smallest distance is returned with ErrBudgetExhausted. progress, when set,
// receives the reports of the first seed's search.
func Race(ctx context.Context, m *autogram.Model, seeds []uint64, workers int, budget Budget, progress ProgressFunc) (Outcome, error) {
	if len(seeds) == 0 {
		return Outcome{}, fmt.Errorf("race needs at least one seed")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		winner  *Outcome
		closest *Outcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(workers, len(seeds)))
	for i, seed := range seeds {
		seed := seed
		var report ProgressFunc
		if i == 0 {
			report = progress
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			out, err := Run(gctx, autogram.NewSolver(m, &seed), budget, report)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				if winner == nil {
					winner = &out
					cancel()
				}
				return nil
			case errors.Is(err, context.Canceled):
				return nil
			case isSearchLimit(err):
				if closest == nil || out.Distance < closest.Distance {
					closest = &out
				}
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}
	if winner != nil {
		return *winner, nil
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if closest == nil {
		return Outcome{}, ErrBudgetExhausted
	}
	return *closest, fmt.Errorf("%w: no seed of %d converged", ErrBudgetExhausted, len(seeds))
}

// Bench searches m once per seed and returns every outcome in seed order. Searches that end
// without converging are reported, not treated as errors.
func Bench(ctx context.Context, m *autogram.Model, seeds []uint64, workers int, budget Budget) ([]Outcome, error) {
	outcomes := make([]Outcome, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(workers, len(seeds)))
	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			out, err := Run(gctx, autogram.NewSolver(m, &seed), budget, nil)
			outcomes[i] = out
			if err != nil && !isSearchLimit(err) {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func isSearchLimit(err error) bool {
	return errors.Is(err, ErrBudgetExhausted) ||
		errors.Is(err, autogram.ErrSearchExhausted) ||
		errors.Is(err, autogram.ErrCountOutOfRange)
}

// DefaultWorkers is the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

func workerCount(workers, jobs int) int {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return max(1, min(workers, jobs))
}
