package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobseeker/internal/model"
)

var (
	_ model.SeenStore   = (*SQLiteStore)(nil)
	_ model.RunRecorder = (*SQLiteStore)(nil)
)

// SQLiteStore keeps the two things the client persists: the job IDs already
// notified by the watch loop, and the history of task runs. Job records
// themselves live only in memory.
type SQLiteStore struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS seen_jobs (
		job_id     INTEGER PRIMARY KEY,
		first_seen INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS task_runs (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		state       TEXT NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		started_at  INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS task_runs_started_at ON task_runs (started_at)`,
	`CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	// Databases written before the meta table existed were seeded if they
	// hold any seen job.
	`INSERT OR IGNORE INTO meta (key, value)
		SELECT 'seeded', '1' WHERE EXISTS (SELECT 1 FROM seen_jobs)`,
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// The watch loop and TUI goroutines share one connection; SQLite
	// serialises writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// HasSeen returns true if the given job ID has already been recorded.
func (s *SQLiteStore) HasSeen(jobID int) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM seen_jobs WHERE job_id = ?", jobID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seen status for job %d: %w", jobID, err)
	}
	return true, nil
}

// MarkSeen records a job ID as seen. If it already exists the call is a no-op.
func (s *SQLiteStore) MarkSeen(jobID int) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO seen_jobs (job_id, first_seen) VALUES (?, ?)", jobID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("marking job %d as seen: %w", jobID, err)
	}
	return nil
}

// Seeded returns true once MarkSeeded has been called on this database.
func (s *SQLiteStore) Seeded() (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM meta WHERE key = 'seeded'").Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking seeded marker: %w", err)
	}
	return true, nil
}

// MarkSeeded records that the first watch cycle has completed.
func (s *SQLiteStore) MarkSeeded() error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO meta (key, value) VALUES ('seeded', ?)", time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("marking store as seeded: %w", err)
	}
	return nil
}

// Prune deletes seen-job entries whose ID is not in keep. Jobs stay on the
// board until the user marks them, so an entry is only stale once the
// backend stops returning its job.
func (s *SQLiteStore) Prune(keep []int) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("pruning seen jobs: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT job_id FROM seen_jobs")
	if err != nil {
		return 0, fmt.Errorf("listing seen jobs: %w", err)
	}
	kept := make(map[int]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}
	var stale []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning seen job: %w", err)
		}
		if !kept[id] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("listing seen jobs: %w", err)
	}

	for _, id := range stale {
		if _, err := tx.Exec("DELETE FROM seen_jobs WHERE job_id = ?", id); err != nil {
			return 0, fmt.Errorf("forgetting job %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("pruning seen jobs: %w", err)
	}
	return int64(len(stale)), nil
}

// RecordRun stores a finished task run.
func (s *SQLiteStore) RecordRun(run model.TaskRun) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO task_runs (id, kind, state, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, string(run.State), run.Error,
		run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("recording %s run %s: %w", run.Kind, run.ID, err)
	}
	return nil
}

// ListRuns returns the most recent task runs, newest first. An empty kind
// lists every kind.
func (s *SQLiteStore) ListRuns(kind string, limit int) ([]model.TaskRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, kind, state, error, started_at, finished_at FROM task_runs
		 WHERE ? = '' OR kind = ?
		 ORDER BY started_at DESC LIMIT ?`,
		kind, kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing task runs: %w", err)
	}
	defer rows.Close()

	var runs []model.TaskRun
	for rows.Next() {
		var (
			run             model.TaskRun
			state           string
			started, ending int64
		)
		if err := rows.Scan(&run.ID, &run.Kind, &state, &run.Error, &started, &ending); err != nil {
			return nil, fmt.Errorf("scanning task run: %w", err)
		}
		run.State = model.TaskState(state)
		run.StartedAt = time.Unix(0, started)
		run.FinishedAt = time.Unix(0, ending)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
