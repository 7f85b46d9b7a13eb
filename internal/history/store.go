package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound reports a merge ID with no history row.
var ErrNotFound = errors.New("merge not found")

const recordColumns = `id, video_path, subtitle_path, language, output_path, status,
        failure_kind, message, exit_code, started_at, finished_at`

// Begin records a running merge.
func (s *Store) Begin(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("history record requires an id")
	}
	started := rec.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO merges (
            id, video_path, subtitle_path, language, output_path, status, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.VideoPath,
		rec.SubtitlePath,
		rec.Language,
		rec.OutputPath,
		StatusRunning,
		formatTime(started),
	)
	if err != nil {
		return fmt.Errorf("insert merge %s: %w", rec.ID, err)
	}
	return nil
}

// Finish stores the outcome of a running merge.
func (s *Store) Finish(ctx context.Context, id string, done Completion) error {
	finished := done.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	var exitCode any
	if done.ExitCode >= 0 {
		exitCode = done.ExitCode
	}
	res, err := s.execWithRetry(
		ctx,
		`UPDATE merges
         SET status = ?, output_path = COALESCE(NULLIF(?, ''), output_path),
             failure_kind = ?, message = ?, exit_code = ?, finished_at = ?
         WHERE id = ?`,
		done.Status,
		done.OutputPath,
		nullableString(done.FailureKind),
		nullableString(done.Message),
		exitCode,
		formatTime(finished),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish merge %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Get returns one merge record.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+recordColumns+` FROM merges WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get merge %s: %w", id, err)
	}
	return rec, nil
}

// List returns the most recent merges first, optionally filtered by status.
// A limit <= 0 returns every row.
func (s *Store) List(ctx context.Context, limit int, statuses ...Status) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM merges`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY started_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list merges: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan merge: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Stats returns a count of merges grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM merges GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Clear removes every finished merge and reports how many rows were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM merges WHERE status != ?`, StatusRunning)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

// FailInterrupted marks merges left running by a previous process as failed.
func (s *Store) FailInterrupted(ctx context.Context, reason string) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE merges SET status = ?, failure_kind = ?, message = ?, finished_at = ?
         WHERE status = ?`,
		StatusFailed,
		"interrupted",
		reason,
		formatTime(time.Now()),
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted merges: %w", err)
	}
	return res.RowsAffected()
}
