package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS detections (
    id               TEXT PRIMARY KEY,
    text_sha256      TEXT NOT NULL,
    excerpt          TEXT NOT NULL,
    extra_heuristics INTEGER NOT NULL,
    label            TEXT NOT NULL,
    ai_probability   REAL NOT NULL,
    result           TEXT NOT NULL,
    created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_detections_created_at ON detections (created_at);
`

// Fixed-width UTC timestamps so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite stores detections in an embedded SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases and write ordering consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Save inserts r, assigning an id and timestamp when missing.
func (s *SQLite) Save(ctx context.Context, r *Record) error {
	prepare(r)
	resultJSON, err := json.Marshal(r.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO detections(id, text_sha256, excerpt, extra_heuristics, label, ai_probability, result, created_at)
		 VALUES(?,?,?,?,?,?,?,?)`,
		r.ID.String(), r.TextSHA256, r.Excerpt, r.ExtraHeuristics,
		string(r.Result.Label), r.Result.AIProbability, string(resultJSON),
		r.CreatedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert detection: %w", err)
	}
	return nil
}

// Get retrieves a detection by id.
func (s *SQLite) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+detectionColumns+` FROM detections WHERE id = ?`,
		id.String(),
	)
	r, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get detection: %w", err)
	}
	return r, nil
}

// List returns the newest detections first.
func (s *SQLite) List(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+detectionColumns+` FROM detections ORDER BY created_at DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list detections: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (*Record, error) {
	var (
		r          Record
		id         string
		resultJSON string
		createdAt  string
	)
	if err := row.Scan(&id, &r.TextSHA256, &r.Excerpt, &r.ExtraHeuristics, &resultJSON, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id: %w", err)
	}
	if r.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &r.Result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &r, nil
}
