package jobs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	submitted_at INTEGER NOT NULL,
	context      TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_jobs_submitted_at ON jobs(submitted_at);
`

// SQLiteStore is a durable Store backing. Job metadata survives a process
// restart; futures do not, so restored jobs resolve by timeout.
type SQLiteStore struct {
	db *sql.DB

	// futures are process-local and keyed alongside the rows.
	mem *MemoryStore
}

// NewSQLiteStore opens (creating if needed) the job database at dbPath
// and initializes the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout must be set before anything else touches the file.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure database: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, mem: NewMemoryStore()}, nil
}

// Put stores or replaces the job row and keeps the future in memory.
func (s *SQLiteStore) Put(job Job) error {
	if job.ID == "" {
		return fmt.Errorf("job id is required")
	}
	contextJSON, err := json.Marshal(job.Context)
	if err != nil {
		return fmt.Errorf("marshal job context: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO jobs (id, submitted_at, context) VALUES (?, ?, ?)`,
		job.ID, job.SubmittedAt.UnixMilli(), string(contextJSON),
	)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", job.ID, err)
	}
	return s.mem.Put(job)
}

// Get returns the job with the given id, attaching its in-memory future
// when one exists.
func (s *SQLiteStore) Get(id string) (Job, bool, error) {
	row := s.db.QueryRow(`SELECT id, submitted_at, context FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return Job{}, false, nil
	}
	if err != nil {
		return Job{}, false, fmt.Errorf("query job %s: %w", id, err)
	}
	s.attachFuture(&job)
	return job, true, nil
}

// Delete removes the job row and its in-memory future.
func (s *SQLiteStore) Delete(id string) error {
	if _, err := s.db.Exec(`DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	return s.mem.Delete(id)
}

// List returns all tracked jobs ordered by submission time.
func (s *SQLiteStore) List() ([]Job, error) {
	rows, err := s.db.Query(`SELECT id, submitted_at, context FROM jobs ORDER BY submitted_at`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		s.attachFuture(&job)
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job rows: %w", err)
	}
	return out, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) attachFuture(job *Job) {
	if mem, ok, _ := s.mem.Get(job.ID); ok {
		job.Future = mem.Future
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (Job, error) {
	var (
		job         Job
		submittedMs int64
		contextJSON string
	)
	if err := r.Scan(&job.ID, &submittedMs, &contextJSON); err != nil {
		return Job{}, err
	}
	job.SubmittedAt = time.UnixMilli(submittedMs)
	if err := json.Unmarshal([]byte(contextJSON), &job.Context); err != nil {
		return Job{}, fmt.Errorf("unmarshal job context: %w", err)
	}
	return job, nil
}
