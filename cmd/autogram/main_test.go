package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/autogram/internal/autogram"
	"github.com/verte-zerg/autogram/internal/config"
	"github.com/verte-zerg/autogram/internal/model"
	"github.com/verte-zerg/autogram/internal/search"
	"github.com/verte-zerg/autogram/internal/verify"
)

const sallows = "This sentence employs two a's, two c's, two d's, twenty-eight e's, five f's, three g's, " +
	"eight h's, eleven i's, three l's, two m's, thirteen n's, nine o's, two p's, five r's, " +
	"twenty-five s's, twenty-three t's, six v's, ten w's, two x's, five y's, and one z."

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

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

func TestSolveCommand(t *testing.T) {
	out, err := runCLI(t, "--alphabet", "abc, ", "--template", "Look {0}.", "--conjunction", " and ", "--seed", "1", "--no-tui")
	require.NoError(t, err)
	assert.Equal(t, "Look four a's, three c's, nine spaces and two commas.\n", out)
}

func TestSolveCommandRejectsBadTemplate(t *testing.T) {
	_, err := runCLI(t, "--template", "no placeholder", "--no-tui", "--no-save")
	require.Error(t, err)
	assert.ErrorIs(t, err, autogram.ErrConfig)
}

func TestVerifyCommand(t *testing.T) {
	out, err := runCLI(t, "verify", sallows)
	require.NoError(t, err)
	assert.Contains(t, out, "Autogram")

	out, err = runCLI(t, "verify", "This sentence has three a's.")
	require.Error(t, err)
	assert.Contains(t, out, "'a': stated 3, actual 2")
}

func TestModelCommand(t *testing.T) {
	out, err := runCLI(t, "model", "--alphabet", "abc, ", "--template", "Look {0}.", "--conjunction", " and ")
	require.NoError(t, err)
	assert.Contains(t, out, "autogram model: 4 slots, 2 variable")
	assert.Contains(t, out, "variable #1")
}

func TestBenchCommand(t *testing.T) {
	list := filepath.Join(t.TempDir(), "templates.txt")
	require.NoError(t, os.WriteFile(list, []byte("# bench\nLook {0}.\nbroken template\n"), 0o644))

	out, err := runCLI(t, "bench", "--alphabet", "abc, ", "--conjunction", " and ", "--templates", list, "--seeds", "2", "--no-save")
	require.NoError(t, err)
	assert.Contains(t, out, "Look {0}.")
	assert.NotContains(t, out, "broken template")
}

func TestSolveSeeds(t *testing.T) {
	now := time.Unix(0, 500)
	assert.Nil(t, solveSeeds(false, 0, 1, now))
	assert.Equal(t, []uint64{7}, solveSeeds(true, 7, 1, now))
	assert.Equal(t, []uint64{7, 8, 9}, solveSeeds(true, 7, 3, now))
	assert.Equal(t, []uint64{500, 501}, solveSeeds(false, 0, 2, now))
	assert.Len(t, solveSeeds(true, 1, 0, now), search.DefaultWorkers())
}

func TestSlotCounts(t *testing.T) {
	m := lookModel(t)
	counts := slotCounts(m, search.Outcome{Counts: []int{4, 3, 10, 2}, GuessError: []int{1, 0}})
	assert.Equal(t, []model.SlotCount{
		{Char: "a", Count: 4},
		{Char: "c", Count: 3},
		{Char: " ", Count: 10, Variable: true, GuessError: 1},
		{Char: ",", Count: 2, Variable: true},
	}, counts)
	assert.Nil(t, slotCounts(m, search.Outcome{}))
}

func TestRunRecord(t *testing.T) {
	seed := uint64(3)
	start := time.Unix(100, 0)
	rec := runRecord(lookModel(t), model.SourceBench, search.Outcome{
		Seed:       &seed,
		Converged:  true,
		Iterations: 3,
		Sentence:   "Look.",
		StartedAt:  start,
		Elapsed:    1500 * time.Millisecond,
	})
	assert.Equal(t, model.SourceBench, rec.Source)
	assert.Equal(t, "Look {0}.", rec.Template)
	assert.Equal(t, ", ", rec.Separator)
	assert.Equal(t, start.Add(1500*time.Millisecond), rec.EndedAt)
	assert.Equal(t, int64(1500), rec.DurationMs)
	assert.Equal(t, &seed, rec.Seed)
}

func TestHistoryConfig(t *testing.T) {
	cfg, err := historyConfig("Look {0}.", "2024-03-01", 5, true, model.SourceSolve)
	require.NoError(t, err)
	require.NotNil(t, cfg.Since)
	assert.Equal(t, 2024, cfg.Since.Year())
	assert.Equal(t, 5, cfg.Last)
	assert.True(t, cfg.ConvergedOnly)

	_, err = historyConfig("", "yesterday", 0, false, "")
	assert.Error(t, err)
	_, err = historyConfig("", "", 0, false, "cron")
	assert.Error(t, err)
	_, err = historyConfig("", "", -1, false, "")
	assert.Error(t, err)
}

func TestWriteVerifyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeVerifyReport(&buf, verify.Report{}))
	assert.Equal(t, "No character counts stated.\n", buf.String())

	buf.Reset()
	require.NoError(t, writeVerifyReport(&buf, verify.Report{
		Stated:     map[rune]int{'a': 3},
		Mismatches: []verify.Mismatch{{Char: 'a', Stated: 3, Actual: 2}, {Char: ' ', Actual: 4, Missing: true}},
	}))
	assert.Equal(t, "'a': stated 3, actual 2\n' ': not stated, actual 4\n", buf.String())
}

func TestDefaultConfigTemplatesDecode(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"config.toml", "config.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(defaultConfigTemplate(config.IsYAML(path))), 0o644))
		cfg, err := config.LoadConfig(path)
		require.NoError(t, err, name)
		assert.Nil(t, cfg.Solve.Alphabet, name)
	}
}

func TestBenchTemplateListFallsBack(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	modelTemplate = "Fallback {0}."
	list, err := benchTemplateList("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fallback {0}."}, list)

	_, err = benchTemplateList(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestMinimumCounts(t *testing.T) {
	m := lookModel(t)
	assert.Equal(t, []int{4, 3, 5, 1}, minimumCounts(m))
}
