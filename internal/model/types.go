// Package model defines shared data structures.
package model

import "time"

// Config defines solve settings.
type Config struct {
	Alphabet      string
	Template      string
	Conjunction   string
	PluralSuffix  string
	Forced        string
	Separator     string
	Seed          *uint64
	MaxIterations int
	Timeout       time.Duration
	ReportEvery   int
	Workers       int
}

// HistoryConfig defines filters for history output.
type HistoryConfig struct {
	Template      string
	Since         *time.Time
	Last          int
	ConvergedOnly bool
	Source        string
}

// Run sources.
const (
	SourceSolve = "solve"
	SourceBench = "bench"
)

// RunRecord captures a finished search.
type RunRecord struct {
	StartedAt    time.Time
	EndedAt      time.Time
	Source       string
	Alphabet     string
	Template     string
	Conjunction  string
	PluralSuffix string
	Forced       string
	Separator    string
	Seed         *uint64
	Iterations   int
	Seen         int
	Randomized   int
	Reordered    int
	Distance     int
	Converged    bool
	Sentence     string
	DurationMs   int64
}

// SlotCount stores the final count of one tracked character for a run.
type SlotCount struct {
	Char       string
	Count      int
	Variable   bool
	GuessError int
}

// RunAggregate summarizes a run for listing.
type RunAggregate struct {
	RunID      int64
	EndedAt    time.Time
	Source     string
	Template   string
	Seed       *uint64
	Iterations int
	Converged  bool
	Distance   int
	Sentence   string
	DurationMs int64
}

// CharAggregate aggregates the final counts of one character across runs.
type CharAggregate struct {
	Char     string
	Runs     int
	CountSum int
	MinCount int
	MaxCount int
	Misses   int
}
