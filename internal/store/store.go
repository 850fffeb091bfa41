// Package store persists all application entities in a single SQLite
// database. Nested values (rows, tags, recipients, score detail) are kept as
// JSON columns; everything queryable carries its own column and index.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store manages the application database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open creates or opens the database at path. ":memory:" is supported for
// tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent request handling.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dbPath: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// Ping verifies the database is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		picture TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

	CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		columns_json TEXT NOT NULL,
		numeric_columns_json TEXT NOT NULL,
		period_column TEXT,
		rows_json TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_datasets_user ON datasets(user_id, created_at);

	CREATE TABLE IF NOT EXISTS metrics_records (
		id TEXT PRIMARY KEY,
		dataset_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		result_json TEXT NOT NULL,
		computed_at DATETIME NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_metrics_dataset ON metrics_records(dataset_id, user_id);

	CREATE TABLE IF NOT EXISTS insights (
		id TEXT PRIMARY KEY,
		dataset_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		content_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_insights_dataset ON insights(dataset_id, user_id);

	CREATE TABLE IF NOT EXISTS narratives (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		dataset_id TEXT NOT NULL,
		narrative_type TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		highlights_json TEXT NOT NULL,
		custom_context TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_narratives_user ON narratives(user_id, created_at);

	CREATE TABLE IF NOT EXISTS updates (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		content TEXT NOT NULL,
		tags_json TEXT NOT NULL,
		images_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_updates_user ON updates(user_id, created_at);

	CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		company TEXT,
		role TEXT,
		tags_json TEXT NOT NULL,
		notes TEXT,
		emails_sent INTEGER NOT NULL DEFAULT 0,
		last_contacted DATETIME,
		created_at DATETIME NOT NULL,
		UNIQUE(user_id, email)
	);
	CREATE INDEX IF NOT EXISTS idx_contacts_user ON contacts(user_id, created_at);

	CREATE TABLE IF NOT EXISTS email_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		narrative_id TEXT,
		recipients_json TEXT NOT NULL,
		sent_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_email_logs_user ON email_logs(user_id, sent_at);
	`
	_, err := s.db.Exec(schema)
	return err
}
