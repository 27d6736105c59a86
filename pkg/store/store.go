// Package store persists stats runs.
//
// A [Run] is one invocation of the stats runner: the files it read, the
// configuration it used, and the JSON encoded results. Backends implement
// [Store]:
//
//   - [MemoryStore] keeps runs in process memory.
//   - [SQLiteStore] keeps runs in a local SQLite database.
//   - [MongoStore] keeps runs in a MongoDB collection.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/arbor/pkg/errors"
)

// ErrNotFound is returned by GetRun for an unknown id.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "run not found")

// Run is a stored stats run.
type Run struct {
	ID        string          `json:"id" bson:"_id"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Paths     []string        `json:"paths" bson:"paths"`
	Failed    int             `json:"failed" bson:"failed"`
	Config    json.RawMessage `json:"config" bson:"config"`
	Results   json.RawMessage `json:"results" bson:"results"`
}

// NewRun returns a run with a fresh id and the current time.
func NewRun(paths []string, config, results json.RawMessage) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Paths:     paths,
		Config:    config,
		Results:   results,
	}
}

// Store persists runs.
type Store interface {
	// SaveRun inserts r or replaces the run with the same id.
	SaveRun(ctx context.Context, r *Run) error
	// GetRun returns the run with id, or an error matching ErrNotFound's
	// code.
	GetRun(ctx context.Context, id string) (*Run, error)
	// ListRuns returns up to limit runs, newest first. A limit of zero or
	// less returns every run.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	Close() error
}

func validateRun(r *Run) error {
	if r == nil || r.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "run id is required")
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "run id %q", r.ID)
	}
	return nil
}

func notFound(id string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "run %s", id)
}
