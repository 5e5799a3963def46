// Package oplog is the append-only operation history store. Every
// dispatcher invocation writes exactly one row, success or failure;
// rows are never updated or deleted (retention is out of scope).
package oplog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // SQLite driver
)

// resultLimit caps stored result text. Counted in runes so a truncated
// row never ends mid-sequence on non-ASCII output.
const resultLimit = 1000

const schemaDDL = `
CREATE TABLE IF NOT EXISTS operations (
	id TEXT PRIMARY KEY,
	timestamp TEXT NOT NULL,
	tool TEXT NOT NULL,
	parameters TEXT,
	result TEXT,
	success INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_operations_timestamp ON operations(timestamp DESC);
`

// Record is one logged operation.
type Record struct {
	ID         string
	Timestamp  time.Time
	Tool       string
	Parameters string // serialized invocation parameters
	Result     string
	Success    bool
	DurationMS int64
}

// Store wraps the operations database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the operation log at path and
// enforces WAL journal mode and a 5-second busy timeout.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode on %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout on %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection. Safe to call multiple times.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Append inserts one operation row. A zero ID gets a generated UUID; a
// zero timestamp gets the current time. Result text is truncated to the
// store limit.
func (s *Store) Append(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO operations (id, timestamp, tool, parameters, result, success, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Timestamp.Format(time.RFC3339Nano),
		rec.Tool,
		rec.Parameters,
		truncateRunes(rec.Result, resultLimit),
		boolToInt(rec.Success),
		rec.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("append operation: %w", err)
	}
	return nil
}

// QueryOpts filters Recent results.
type QueryOpts struct {
	// Tool restricts rows to a single tool name.
	Tool string

	// Since restricts rows to timestamps at or after this time.
	Since *time.Time

	// Limit restricts the number of rows (0 means 20).
	Limit int
}

// Recent returns the newest operations matching opts, newest first.
func (s *Store) Recent(ctx context.Context, opts QueryOpts) ([]Record, error) {
	query, args := buildQuery(opts)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec     Record
			ts      string
			success int
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Tool, &rec.Parameters, &rec.Result, &success, &rec.DurationMS); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		rec.Timestamp = parsed
		rec.Success = success != 0
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return out, nil
}

// Count returns the total number of logged operations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count operations: %w", err)
	}
	return n, nil
}

func buildQuery(opts QueryOpts) (string, []any) {
	query := `SELECT id, timestamp, tool, parameters, result, success, duration_ms FROM operations WHERE 1=1`
	var args []any

	if opts.Tool != "" {
		query += " AND tool = ?"
		args = append(args, opts.Tool)
	}
	if opts.Since != nil {
		query += " AND timestamp >= ?"
		args = append(args, opts.Since.Format(time.RFC3339Nano))
	}

	query += " ORDER BY timestamp DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	return query, args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
