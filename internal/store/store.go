// Package store persists catalog edits, soft deletions, per-question work
// state, chapter analyses, and LLM request events in a local SQLite file.
// Each record is a whole JSON document written through on every mutation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/priyam/econcoach/internal/exam"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite connection and provides the document repositories.
type Store struct {
	db *sql.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS custom_questions (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS deleted_questions (
		id TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS question_state (
		question_id TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chapter_analyses (
		chapter TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS llm_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// EffectiveCatalog loads the edited and deleted sets and reconciles them
// with the embedded base catalog.
func (s *Store) EffectiveCatalog(ctx context.Context) ([]exam.Question, error) {
	edited, err := s.ListEdited(ctx)
	if err != nil {
		return nil, err
	}
	deleted, err := s.DeletedIDs(ctx)
	if err != nil {
		return nil, err
	}
	return exam.EffectiveCatalog(exam.BaseCatalog(), edited, deleted), nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ECONCOACH_DB environment variable
// 2. $XDG_DATA_HOME/econcoach/econcoach.db
// 3. ~/.local/share/econcoach/econcoach.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ECONCOACH_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "econcoach", "econcoach.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
