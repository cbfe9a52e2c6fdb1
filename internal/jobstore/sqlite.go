package jobstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"framecast/internal/config"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS job_status (
    job_id     TEXT PRIMARY KEY,
    document   TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

// SQLiteStore persists status documents as single rows replaced wholesale.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite initializes or connects to the status database.
func OpenSQLite(cfg *config.Config) (*SQLiteStore, error) {
	dbPath := filepath.Join(cfg.Paths.JobsDir, "status.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Put replaces the job's status document row.
func (s *SQLiteStore) Put(ctx context.Context, doc Document) error {
	if err := validateJobID(doc.JobID); err != nil {
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode status document: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO job_status (job_id, document, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(job_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		doc.JobID,
		string(body),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert status document: %w", err)
	}
	return nil
}

// Get reads the job's status document; ok is false for unknown ids.
func (s *SQLiteStore) Get(ctx context.Context, jobID string) (Document, bool, error) {
	if err := validateJobID(jobID); err != nil {
		return Document{}, false, err
	}

	var body string
	row := s.db.QueryRowContext(ctx, `SELECT document FROM job_status WHERE job_id = ?`, jobID)
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("get status document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Document{}, false, fmt.Errorf("decode status document: %w", err)
	}
	return doc, true, nil
}

// List returns every stored status document ordered by last update.
func (s *SQLiteStore) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM job_status ORDER BY updated_at`)
	if err != nil {
		return nil, fmt.Errorf("list status documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var doc Document
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("decode status document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
