// Package store handles SQLite persistence of drill passes.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/mnemo/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for pass data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	st := &Store{db: db}
	if err := st.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return st, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS passes (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			category TEXT NOT NULL,
			range_from INTEGER NOT NULL,
			range_to INTEGER NOT NULL,
			learning INTEGER NOT NULL,
			replay TEXT NOT NULL,
			budget_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS pass_entries (
			pass_id TEXT NOT NULL REFERENCES passes(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			item_index INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			answer TEXT NOT NULL,
			time_ms INTEGER NOT NULL,
			shown INTEGER NOT NULL,
			PRIMARY KEY (pass_id, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_passes_ended_at ON passes(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_pass_entries_item ON pass_entries(item_index);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertPass stores a completed pass and its entries. A pass without an ID
// gets a random UUID. The stored ID is returned.
func (s *Store) InsertPass(ctx context.Context, rec model.PassRecord) (id string, err error) {
	id = rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO passes (id, started_at, ended_at, category, range_from, range_to, learning, replay, budget_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.Category,
		rec.From,
		rec.To,
		boolToInt(rec.Learning),
		string(rec.Replay),
		rec.BudgetMs,
	)
	if err != nil {
		return "", err
	}

	if len(rec.Entries) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO pass_entries (pass_id, seq, item_index, prompt, answer, time_ms, shown)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for seq, e := range rec.Entries {
			if _, err = stmt.ExecContext(ctx, id, seq, e.Item.Index, e.Item.Prompt, e.Item.Answer,
				e.TimeSpent.Milliseconds(), boolToInt(e.Shown)); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListPasses returns pass aggregates filtered by stats config, oldest first.
// Learning passes are excluded.
func (s *Store) ListPasses(ctx context.Context, cfg model.StatsConfig) ([]model.PassAggregate, error) {
	clauses := []string{"p.learning = 0"}
	args := []any{model.SlowThreshold.Milliseconds()}
	if cfg.Category != "" {
		clauses = append(clauses, "p.category = ?")
		args = append(args, cfg.Category)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "p.ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT p.id, p.ended_at, p.category, p.replay,
			COUNT(e.seq),
			COALESCE(SUM(e.shown), 0),
			COALESCE(SUM(CASE WHEN e.time_ms > ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(e.time_ms), 0),
			COALESCE(SUM(CASE WHEN e.shown = 0 THEN e.time_ms ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN e.shown = 0 THEN 1 ELSE 0 END), 0)
		FROM passes p
		LEFT JOIN pass_entries e ON e.pass_id = p.id
		WHERE %s
		GROUP BY p.id
		ORDER BY p.ended_at ASC`, strings.Join(clauses, " AND "))
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

	var passes []model.PassAggregate
	for rows.Next() {
		var agg model.PassAggregate
		var endedAt, replay string
		if err := rows.Scan(&agg.PassID, &endedAt, &agg.Category, &replay, &agg.Items, &agg.Shown,
			&agg.Slow, &agg.TimeSumMs, &agg.UnshownSumMs, &agg.UnshownCount); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		agg.Replay = model.ReplayKind(replay)
		passes = append(passes, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return passes, nil
}

// ListPromptAggregates aggregates entries per deck item across the given passes.
func (s *Store) ListPromptAggregates(ctx context.Context, passIDs []string) ([]model.PromptAggregate, error) {
	if len(passIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(passIDs))
	args := make([]any, 0, len(passIDs)+1)
	args = append(args, model.SlowThreshold.Milliseconds())
	for i, id := range passIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	query := fmt.Sprintf(`SELECT p.category, e.item_index, MIN(e.prompt), COUNT(*), SUM(e.shown),
			SUM(CASE WHEN e.time_ms > ? THEN 1 ELSE 0 END), SUM(e.time_ms)
		FROM pass_entries e
		JOIN passes p ON p.id = e.pass_id
		WHERE e.pass_id IN (%s)
		GROUP BY p.category, e.item_index`, strings.Join(placeholders, ","))
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

	var result []model.PromptAggregate
	for rows.Next() {
		var agg model.PromptAggregate
		if err := rows.Scan(&agg.Category, &agg.Index, &agg.Prompt, &agg.Attempts, &agg.Shown, &agg.Slow, &agg.TimeSumMs); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetPassEntries returns the entries of one pass in recording order.
func (s *Store) GetPassEntries(ctx context.Context, passID string) ([]model.ResultEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_index, prompt, answer, time_ms, shown
		 FROM pass_entries
		 WHERE pass_id = ?
		 ORDER BY seq ASC`, passID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.ResultEntry
	for rows.Next() {
		var e model.ResultEntry
		var ms int64
		var shown int
		if err := rows.Scan(&e.Item.Index, &e.Item.Prompt, &e.Item.Answer, &ms, &shown); err != nil {
			return nil, err
		}
		e.TimeSpent = time.Duration(ms) * time.Millisecond
		e.Shown = shown != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
