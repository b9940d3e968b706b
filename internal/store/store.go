// Package store handles SQLite persistence of search runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/autogram/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			source TEXT NOT NULL,
			alphabet TEXT NOT NULL,
			template TEXT NOT NULL,
			conjunction TEXT NOT NULL,
			plural_suffix TEXT NOT NULL,
			forced TEXT NOT NULL,
			separator TEXT NOT NULL,
			seed INTEGER,
			iterations INTEGER NOT NULL,
			seen INTEGER NOT NULL,
			randomized INTEGER NOT NULL,
			reordered INTEGER NOT NULL,
			distance INTEGER NOT NULL,
			converged INTEGER NOT NULL,
			sentence TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_counts (
			run_id INTEGER NOT NULL,
			char TEXT NOT NULL,
			count INTEGER NOT NULL,
			variable INTEGER NOT NULL,
			guess_error INTEGER NOT NULL,
			PRIMARY KEY (run_id, char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_template ON runs(template);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished run and its per-character counts.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord, counts []model.SlotCount) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	var seed sql.NullInt64
	if run.Seed != nil {
		seed = sql.NullInt64{Int64: int64(*run.Seed), Valid: true}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, ended_at, source, alphabet, template, conjunction, plural_suffix, forced, separator, seed, iterations, seen, randomized, reordered, distance, converged, sentence, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.EndedAt.UTC().Format(time.RFC3339Nano),
		run.Source,
		run.Alphabet,
		run.Template,
		run.Conjunction,
		run.PluralSuffix,
		run.Forced,
		run.Separator,
		seed,
		run.Iterations,
		run.Seen,
		run.Randomized,
		run.Reordered,
		run.Distance,
		run.Converged,
		run.Sentence,
		run.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(counts) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO run_counts (run_id, char, count, variable, guess_error) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, c := range counts {
			if _, err = stmt.ExecContext(ctx, id, c.Char, c.Count, c.Variable, c.GuessError); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListRuns returns run summaries filtered by cfg, oldest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Template != "" {
		clauses = append(clauses, "template = ?")
		args = append(args, cfg.Template)
	}
	if cfg.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, cfg.Source)
	}
	if cfg.ConvergedOnly {
		clauses = append(clauses, "converged = 1")
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, source, template, seed, iterations, converged, distance, sentence, duration_ms
		FROM runs
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunAggregate
	for rows.Next() {
		var agg model.RunAggregate
		var endedAt string
		var seed sql.NullInt64
		if err := rows.Scan(&agg.RunID, &endedAt, &agg.Source, &agg.Template, &seed, &agg.Iterations, &agg.Converged, &agg.Distance, &agg.Sentence, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		if seed.Valid {
			v := uint64(seed.Int64)
			agg.Seed = &v
		}
		runs = append(runs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	return runs, nil
}

// GetRunCounts returns the stored per-character counts of one run in insertion order.
func (s *Store) GetRunCounts(ctx context.Context, runID int64) ([]model.SlotCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT char, count, variable, guess_error FROM run_counts WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var counts []model.SlotCount
	for rows.Next() {
		var c model.SlotCount
		if err := rows.Scan(&c.Char, &c.Count, &c.Variable, &c.GuessError); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// ListCharAggregatesForRuns aggregates per-character counts across runs.
func (s *Store) ListCharAggregatesForRuns(ctx context.Context, runIDs []int64) ([]model.CharAggregate, error) {
	if len(runIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(runIDs))
	args := make([]any, len(runIDs))
	for i, id := range runIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT char, COUNT(*) AS runs, SUM(count) AS count_sum,
		MIN(count) AS min_count, MAX(count) AS max_count,
		SUM(CASE WHEN guess_error != 0 THEN 1 ELSE 0 END) AS misses
		FROM run_counts
		WHERE run_id IN (%s)
		GROUP BY char
		ORDER BY char`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Runs, &agg.CountSum, &agg.MinCount, &agg.MaxCount, &agg.Misses); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
