package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/arbor/pkg/errors"
)

// exercise runs the behaviour every backend shares.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var runs []*Run
	for i := range 3 {
		r := NewRun([]string{"a.swc", "b.swc"}, json.RawMessage(`{"neurite":{}}`), json.RawMessage(`{"a":{}}`))
		r.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		r.Failed = i
		if err := s.SaveRun(ctx, r); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
		runs = append(runs, r)
	}

	got, err := s.GetRun(ctx, runs[1].ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if diff := cmp.Diff(runs[1], got); diff != "" {
		t.Errorf("GetRun mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.GetRun(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("GetRun(unknown) err = %v, want NOT_FOUND", err)
	}

	list, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	var ids []string
	for _, r := range list {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{runs[2].ID, runs[1].ID}, ids); diff != "" {
		t.Errorf("ListRuns order mismatch (-want +got):\n%s", diff)
	}

	runs[0].Failed = 7
	if err := s.SaveRun(ctx, runs[0]); err != nil {
		t.Fatalf("SaveRun(replace): %v", err)
	}
	all, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListRuns(0) = %d runs, want 3", len(all))
	}
	if all[2].Failed != 7 {
		t.Errorf("replaced run Failed = %d, want 7", all[2].Failed)
	}

	if err := s.SaveRun(ctx, &Run{ID: "not-a-uuid"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("SaveRun(bad id) err = %v, want INVALID_INPUT", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	exercise(t, s)
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRun([]string{"x.swc"}, nil, json.RawMessage(`{}`))
	if err := s.SaveRun(ctx, r); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.GetRun(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
	if !got.CreatedAt.Equal(r.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, r.CreatedAt)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("ARBOR_MONGO_URI")
	if uri == "" {
		t.Skip("ARBOR_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "arbor_test", Collection: "runs_" + time.Now().Format("150405")})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		s.Close()
	}()
	exercise(t, s)
}

func TestNewRun(t *testing.T) {
	a := NewRun(nil, nil, nil)
	b := NewRun(nil, nil, nil)
	if a.ID == b.ID {
		t.Error("run ids collide")
	}
	if err := validateRun(a); err != nil {
		t.Errorf("validateRun: %v", err)
	}
	if a.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt not UTC: %v", a.CreatedAt)
	}
}
