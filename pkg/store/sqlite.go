package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/arbor/pkg/errors"
)

// SQLiteStore keeps runs in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	paths      TEXT NOT NULL,
	failed     INTEGER NOT NULL,
	config     BLOB,
	results    BLOB
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at DESC);
`

// NewSQLiteStore opens or creates the database at path. Use ":memory:"
// for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases alive between calls.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, r *Run) error {
	if err := validateRun(r); err != nil {
		return err
	}
	paths, err := json.Marshal(r.Paths)
	if err != nil {
		return fmt.Errorf("encode paths: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, paths, failed, config, results)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			paths = excluded.paths,
			failed = excluded.failed,
			config = excluded.config,
			results = excluded.results
	`, r.ID, r.CreatedAt.UnixMilli(), string(paths), r.Failed, []byte(r.Config), []byte(r.Results))
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, paths, failed, config, results FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, paths, failed, config, results FROM runs
		ORDER BY created_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r       Run
		created int64
		paths   string
		config  []byte
		results []byte
	)
	if err := sc.Scan(&r.ID, &created, &paths, &r.Failed, &config, &results); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(paths), &r.Paths); err != nil {
		return nil, fmt.Errorf("decode paths of %s: %w", r.ID, err)
	}
	r.CreatedAt = time.UnixMilli(created).UTC()
	r.Config = config
	r.Results = results
	return &r, nil
}
