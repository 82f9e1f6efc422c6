// Package jobstore persists per-page, per-stage job status in an embedded
// SQLite database. The filesystem artifact remains the idempotency key for
// resume decisions; the store is the queryable record of what happened to
// each page, including failure messages that would otherwise only live in
// logs.
package jobstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/bol-annotator/constants"
)

const schema = `
CREATE TABLE IF NOT EXISTS page_jobs (
	stem       TEXT NOT NULL,
	stage      TEXT NOT NULL,
	status     TEXT NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (stem, stage)
);`

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the store at path and ensures the schema exists.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init job store schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// Record upserts the status of one (page, stage) pair. A nil store is a
// no-op so stages can run without persistence wired.
func (s *Store) Record(ctx context.Context, stem, stage string, status constants.JobStatus, errMsg string) error {
	if s == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_jobs (stem, stage, status, error, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (stem, stage) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			updated_at = excluded.updated_at`,
		stem, stage, string(status), errMsg, time.Now().UTC())
	if err != nil {
		// Bookkeeping must never fail a page.
		s.logger.Warn("jobstore.record_failed", "stem", stem, "stage", stage, "error", err)
	}
	return err
}

// Status returns the recorded status for one (page, stage) pair, or
// JobStatusQueued when the pair has never been recorded.
func (s *Store) Status(ctx context.Context, stem, stage string) (constants.JobStatus, error) {
	if s == nil {
		return constants.JobStatusQueued, nil
	}
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM page_jobs WHERE stem = ? AND stage = ?`, stem, stage).Scan(&status)
	if err == sql.ErrNoRows {
		return constants.JobStatusQueued, nil
	}
	if err != nil {
		return "", fmt.Errorf("query job status: %w", err)
	}
	return constants.JobStatus(status), nil
}

// FailedPages lists the stems that failed a given stage, for post-run
// inspection.
func (s *Store) FailedPages(ctx context.Context, stage string) ([]string, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT stem FROM page_jobs WHERE stage = ? AND status = ? ORDER BY stem`,
		stage, string(constants.JobStatusFailed))
	if err != nil {
		return nil, fmt.Errorf("query failed pages: %w", err)
	}
	defer rows.Close()

	var stems []string
	for rows.Next() {
		var stem string
		if err := rows.Scan(&stem); err != nil {
			return nil, err
		}
		stems = append(stems, stem)
	}
	return stems, rows.Err()
}
