package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/autogram/internal/autogram"
	"github.com/verte-zerg/autogram/internal/verify"
)

func lookModel(t *testing.T) *autogram.Model {
	t.Helper()
	m, err := autogram.Build(autogram.Options{
		Alphabet:     "abc, ",
		Template:     "Look {0}.",
		Conjunction:  " and ",
		PluralSuffix: "'s",
	})
	require.NoError(t, err)
	return m
}

func vowelModel(t *testing.T) *autogram.Model {
	t.Helper()
	m, err := autogram.Build(autogram.Options{
		Alphabet:     "aeiou",
		Template:     "Vowels here: {0}.",
		Conjunction:  " and ",
		PluralSuffix: "'s",
	})
	require.NoError(t, err)
	return m
}

func seed(v uint64) *uint64 {
	return &v
}

func TestRunConverges(t *testing.T) {
	var reports []Progress
	out, err := Run(context.Background(), autogram.NewSolver(lookModel(t), seed(1)), Budget{ReportEvery: 1}, func(p Progress) {
		reports = append(reports, p)
	})
	require.NoError(t, err)

	assert.True(t, out.Converged)
	assert.Equal(t, 3, out.Iterations)
	assert.Equal(t, 3, out.Seen)
	assert.Equal(t, 0, out.Distance)
	assert.Equal(t, "Look four a's, three c's, nine spaces and two commas.", out.Sentence)
	assert.Equal(t, uint64(1), *out.Seed)

	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	assert.True(t, last.Done)
	assert.Equal(t, 3, last.Iterations)
	for _, p := range reports[:len(reports)-1] {
		assert.False(t, p.Done)
	}
}

func TestRunIterationBudget(t *testing.T) {
	out, err := Run(context.Background(), autogram.NewSolver(vowelModel(t), seed(1)), Budget{MaxIterations: 1}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBudgetExhausted))
	assert.False(t, out.Converged)
	assert.Equal(t, 1, out.Iterations)
	assert.NotEmpty(t, out.Sentence)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Run(ctx, autogram.NewSolver(vowelModel(t), seed(1)), Budget{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, out.Iterations)
}

func TestRunTimeoutIsBudget(t *testing.T) {
	m, err := autogram.Build(autogram.Options{
		Alphabet:     "abcdefghijklmnopqrstuvwxyz",
		Template:     "This sentence is an autogram and it contains {0}.",
		Conjunction:  " and lastly ",
		PluralSuffix: "'s",
	})
	require.NoError(t, err)

	_, err = Run(context.Background(), autogram.NewSolver(m, seed(5)), Budget{Timeout: time.Nanosecond}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBudgetExhausted))
}

func TestRunLogs(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	_, err := Run(context.Background(), autogram.NewSolver(lookModel(t), seed(1)), Budget{Logger: logger}, nil)
	require.NoError(t, err)

	entries := hook.AllEntries()
	require.GreaterOrEqual(t, len(entries), 2)
	assert.Equal(t, "search started", entries[0].Message)
	last := hook.LastEntry()
	assert.Equal(t, "search finished", last.Message)
	assert.Equal(t, true, last.Data["converged"])
	assert.Equal(t, uint64(1), last.Data["seed"])
}

func TestRaceReturnsConvergedSentence(t *testing.T) {
	m := vowelModel(t)
	out, err := Race(context.Background(), m, []uint64{1, 2, 3, 4}, 2, Budget{MaxIterations: 200000}, nil)
	require.NoError(t, err)

	assert.True(t, out.Converged)
	require.NotNil(t, out.Seed)
	assert.True(t, verify.IsAutogram(out.Sentence, "'s"), out.Sentence)
}

func TestRaceReportsFirstSeed(t *testing.T) {
	var reports []Progress
	out, err := Race(context.Background(), lookModel(t), []uint64{9, 3}, 1, Budget{ReportEvery: 1}, func(p Progress) {
		reports = append(reports, p)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(9), *out.Seed)

	require.NotEmpty(t, reports)
	for _, p := range reports {
		require.NotNil(t, p.Seed)
		assert.Equal(t, uint64(9), *p.Seed)
	}
	assert.True(t, reports[len(reports)-1].Done)
}

func TestRaceWithoutConvergence(t *testing.T) {
	m := vowelModel(t)
	out, err := Race(context.Background(), m, []uint64{1, 2}, 2, Budget{MaxIterations: 1}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBudgetExhausted))
	assert.False(t, out.Converged)
	assert.Equal(t, 1, out.Iterations)
}

func TestRaceNeedsSeeds(t *testing.T) {
	_, err := Race(context.Background(), vowelModel(t), nil, 1, Budget{}, nil)
	require.Error(t, err)
}

func TestBenchKeepsSeedOrder(t *testing.T) {
	m := lookModel(t)
	seeds := []uint64{9, 3, 7}
	outcomes, err := Bench(context.Background(), m, seeds, 3, Budget{MaxIterations: 1000})
	require.NoError(t, err)

	require.Len(t, outcomes, len(seeds))
	for i, out := range outcomes {
		assert.Equal(t, seeds[i], *out.Seed)
		assert.True(t, out.Converged)
		assert.Equal(t, 3, out.Iterations)
	}
}

func TestWorkerCount(t *testing.T) {
	assert.Equal(t, 2, workerCount(2, 10))
	assert.Equal(t, 3, workerCount(8, 3))
	assert.Equal(t, 1, workerCount(1, 0))
	assert.GreaterOrEqual(t, workerCount(0, 100), 1)
}
