// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/kanadraw/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const settingGroups = "groups"

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for practice history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
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
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			group_keys TEXT NOT NULL,
			stage_length INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id),
			created_at TEXT NOT NULL,
			char TEXT NOT NULL,
			script TEXT NOT NULL,
			prompt TEXT NOT NULL,
			hint INTEGER NOT NULL,
			stage INTEGER NOT NULL,
			score REAL NOT NULL,
			precision REAL NOT NULL,
			recall REAL NOT NULL,
			correct INTEGER NOT NULL,
			drawn_px INTEGER NOT NULL,
			target_px INTEGER NOT NULL,
			draw_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_session ON attempts(session_id);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_char ON attempts(char);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_created_at ON attempts(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// StartSession records the start of a practice run.
func (s *Store) StartSession(ctx context.Context, ps model.PracticeSession) error {
	if ps.ID == "" {
		return fmt.Errorf("session id is empty")
	}
	started := formatTime(ps.StartedAt)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, group_keys, stage_length) VALUES (?, ?, ?, ?, ?)`,
		ps.ID, started, started, strings.Join(ps.Groups, ","), ps.StageLength,
	)
	return err
}

// InsertAttempt stores one scored drawing and moves the session end forward.
func (s *Store) InsertAttempt(ctx context.Context, a model.Attempt) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	created := formatTime(a.CreatedAt)
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (session_id, created_at, char, script, prompt, hint, stage, score, precision, recall, correct, drawn_px, target_px, draw_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID, created, a.Char, a.Script, a.Prompt, boolInt(a.Hint), a.Stage,
		a.Score, a.Precision, a.Recall, boolInt(a.Correct), a.DrawnPx, a.TargetPx, a.DrawMs,
	); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE sessions SET ended_at = ? WHERE id = ?`, created, a.SessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("unknown session %q", a.SessionID)
	}
	return tx.Commit()
}

// SaveGroups remembers the selected character groups.
func (s *Store) SaveGroups(ctx context.Context, groups []string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		settingGroups, strings.Join(groups, ","),
	)
	return err
}

// LoadGroups returns the saved group selection, or nil when none was saved.
func (s *Store) LoadGroups(ctx context.Context) ([]string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingGroups).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var groups []string
	for _, g := range strings.Split(value, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

// GetWeakChars aggregates attempts over the most recent sessions.
func (s *Store) GetWeakChars(ctx context.Context, window int, script string) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT session_id FROM attempts
		WHERE (? = '' OR script = ?)
		GROUP BY session_id
		ORDER BY MAX(created_at) DESC
		LIMIT ?
	)
	SELECT a.char, COUNT(*), SUM(a.correct), SUM(a.score), SUM(a.precision), SUM(a.recall)
	FROM attempts a
	JOIN recent_sessions r ON r.session_id = a.session_id
	WHERE (? = '' OR a.script = ?)
	GROUP BY a.char`

	rows, err := s.db.QueryContext(ctx, query, script, script, window, script, script)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanCharAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Script != "" {
		clauses = append(clauses, "script = ?")
		args = append(args, cfg.Script)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT session_id, MAX(created_at) AS ended_at, COUNT(*), SUM(correct), SUM(score)
		FROM attempts
		WHERE %s
		GROUP BY session_id
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
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

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Attempts, &agg.Correct, &agg.ScoreSum); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListCharAggregatesForSessions aggregates per-character attempts across sessions.
func (s *Store) ListCharAggregatesForSessions(ctx context.Context, sessionIDs []string, script string) ([]model.CharAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(sessionIDs)+2)
	for _, id := range sessionIDs {
		args = append(args, id)
	}
	args = append(args, script, script)
	query := fmt.Sprintf(`SELECT char, COUNT(*), SUM(correct), SUM(score), SUM(precision), SUM(recall)
		FROM attempts
		WHERE session_id IN (%s) AND (? = '' OR script = ?)
		GROUP BY char`, placeholders(len(sessionIDs)))
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
	return scanCharAggregates(rows)
}

// ListCharStatsForSessions returns per-session aggregates for selected characters.
func (s *Store) ListCharStatsForSessions(ctx context.Context, sessionIDs []string, chars []string) (map[string]map[string]model.CharAggregate, error) {
	if len(sessionIDs) == 0 || len(chars) == 0 {
		return map[string]map[string]model.CharAggregate{}, nil
	}
	args := make([]any, 0, len(sessionIDs)+len(chars))
	for _, id := range sessionIDs {
		args = append(args, id)
	}
	for _, ch := range chars {
		args = append(args, ch)
	}

	query := fmt.Sprintf(`SELECT session_id, char, COUNT(*), SUM(correct), SUM(score), SUM(precision), SUM(recall)
		FROM attempts
		WHERE session_id IN (%s) AND char IN (%s)
		GROUP BY session_id, char`, placeholders(len(sessionIDs)), placeholders(len(chars)))

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

	result := map[string]map[string]model.CharAggregate{}
	for rows.Next() {
		var sessionID string
		var agg model.CharAggregate
		if err := rows.Scan(&sessionID, &agg.Char, &agg.Attempts, &agg.Correct, &agg.ScoreSum, &agg.PrecisionSum, &agg.RecallSum); err != nil {
			return nil, err
		}
		if _, ok := result[sessionID]; !ok {
			result[sessionID] = map[string]model.CharAggregate{}
		}
		result[sessionID][agg.Char] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanCharAggregates(rows *sql.Rows) ([]model.CharAggregate, error) {
	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Attempts, &agg.Correct, &agg.ScoreSum, &agg.PrecisionSum, &agg.RecallSum); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
