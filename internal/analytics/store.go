// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analytics persists answered questions in SQLite and computes
// usage reports over them.
package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one logged question with its handling outcome.
type Record struct {
	ID             int64             `json:"id" yaml:"id"`
	Question       string            `json:"question" yaml:"question"`
	UserID         string            `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	SessionID      string            `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Timestamp      time.Time         `json:"timestamp" yaml:"timestamp"`
	ResponseTimeMS int64             `json:"response_time_ms" yaml:"response_time_ms"`
	ToolsCalled    []string          `json:"tools_called,omitempty" yaml:"tools_called,omitempty"`
	ResponseLength int               `json:"response_length" yaml:"response_length"`
	Success        bool              `json:"success" yaml:"success"`
	ErrorMessage   string            `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Store manages the analytics SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the analytics database at dbPath and
// bootstraps the schema.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			user_id TEXT,
			session_id TEXT,
			timestamp TEXT NOT NULL,
			response_time_ms INTEGER,
			tools_called TEXT,
			response_length INTEGER,
			success INTEGER NOT NULL DEFAULT 1,
			error_message TEXT,
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_timestamp ON questions(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_user_id ON questions(user_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Log appends one record and returns its id. A zero Timestamp is set to
// the current time. Records are never updated or deleted afterwards.
func (s *Store) Log(ctx context.Context, r Record) (int64, error) {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	toolsJSON, _ := json.Marshal(r.ToolsCalled)
	metaJSON, _ := json.Marshal(r.Metadata)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO questions
			(question, user_id, session_id, timestamp, response_time_ms,
			 tools_called, response_length, success, error_message, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Question, r.UserID, r.SessionID,
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.ResponseTimeMS, string(toolsJSON), r.ResponseLength,
		boolToInt(r.Success), r.ErrorMessage, string(metaJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

// QueryOptions narrow a Questions listing.
type QueryOptions struct {
	// Limit caps the number of rows (default 50).
	Limit int
	// Offset skips rows for paging.
	Offset int
	// UserID restricts to one user when non-empty.
	UserID string
	// Since restricts to records at or after this time when non-zero.
	Since time.Time
}

// Questions lists logged records, newest first.
func (s *Store) Questions(ctx context.Context, opts QueryOptions) ([]Record, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, question, user_id, session_id, timestamp, response_time_ms,
			tools_called, response_length, success, error_message, metadata
		FROM questions WHERE 1=1`
	var args []any
	if opts.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, opts.UserID)
	}
	if !opts.Since.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, opts.Since.UTC().Format(time.RFC3339Nano))
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying questions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r         Record
			ts        string
			userID    sql.NullString
			sessionID sql.NullString
			toolsJSON sql.NullString
			errMsg    sql.NullString
			metaJSON  sql.NullString
			success   int
		)
		err := rows.Scan(&r.ID, &r.Question, &userID, &sessionID, &ts,
			&r.ResponseTimeMS, &toolsJSON, &r.ResponseLength, &success, &errMsg, &metaJSON)
		if err != nil {
			return nil, fmt.Errorf("scanning question row: %w", err)
		}
		r.UserID = userID.String
		r.SessionID = sessionID.String
		r.ErrorMessage = errMsg.String
		r.Success = success != 0
		if t, parseErr := time.Parse(time.RFC3339Nano, ts); parseErr == nil {
			r.Timestamp = t
		}
		if toolsJSON.String != "" {
			json.Unmarshal([]byte(toolsJSON.String), &r.ToolsCalled)
		}
		if metaJSON.String != "" && metaJSON.String != "null" {
			json.Unmarshal([]byte(metaJSON.String), &r.Metadata)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
