package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/features"
	"github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/morph"
	"github.com/matzehuels/arbor/pkg/observability"
	"github.com/matzehuels/arbor/pkg/store"
)

// Failure records a file the runner could not process.
type Failure struct {
	Path string
	Err  error
}

// Report is the outcome of a [Runner]: results of the files that loaded,
// in input order, and the files that did not.
type Report struct {
	Results  []*Result
	Failures []Failure
	// RunID is the id of the stored run, empty without a store.
	RunID string
}

// JSON returns the results encoded as by [WriteJSON], without indentation.
func (r *Report) JSON() (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, r.Results); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Compact(&out, buf.Bytes()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Runner extracts stats from many files in parallel.
//
// Whole results are cached under the morphology fingerprint and a hash of
// the configuration. When Store is set, each run is saved after
// extraction, retrying transient store errors with Backoff.
type Runner struct {
	Config Config
	// Workers bounds parallelism; zero uses GOMAXPROCS.
	Workers int
	Logger  *log.Logger
	// Getter evaluates features; nil uses an uncached getter.
	Getter *features.Getter
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Store  store.Store
	// Options apply to every loaded morphology.
	Options []morph.Option
	Backoff cache.Backoff
}

// NewRunner returns a runner for cfg after validating it.
func NewRunner(cfg Config, logger *log.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{Config: cfg, Logger: logger, Backoff: cache.DefaultBackoff}, nil
}

// Run extracts the configured stats from every path. A file that fails to
// load or extract is logged and reported in Failures; only context
// cancellation and store errors fail the run.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	results := make([]*Result, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.File(gctx, path)
			if err != nil {
				r.logger().Error("Failed to extract stats", "file", path, "err", err)
				errs[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{}
	for i, res := range results {
		if errs[i] != nil {
			rep.Failures = append(rep.Failures, Failure{Path: paths[i], Err: errs[i]})
			continue
		}
		rep.Results = append(rep.Results, res)
	}

	if r.Store != nil {
		id, err := r.save(ctx, paths, rep)
		if err != nil {
			return nil, err
		}
		rep.RunID = id
	}
	return rep, nil
}

// File loads one morphology and extracts its stats, consulting the result
// cache first.
func (r *Runner) File(ctx context.Context, path string) (*Result, error) {
	m, err := io.LoadMorphology(ctx, path, r.Options...)
	if err != nil {
		return nil, err
	}
	return r.Extract(ctx, m)
}

// Extract computes the stats of m through the result cache.
func (r *Runner) Extract(ctx context.Context, m *morph.Morphology) (*Result, error) {
	key, err := r.key(m)
	if err != nil {
		return nil, err
	}
	c := r.cache()
	if data, hit, cerr := c.Get(ctx, key); cerr == nil && hit {
		var rec record
		if json.Unmarshal(data, &rec) == nil {
			observability.Cache().OnCacheHit(ctx, "stats")
			r.logger().Debug("Stats cache hit", "morphology", m.Name)
			return rec.result(), nil
		}
	} else if cerr != nil {
		r.logger().Warn("Stats cache read failed", "err", cerr)
	}
	observability.Cache().OnCacheMiss(ctx, "stats")

	res, err := Extract(ctx, r.Getter, m, r.Config)
	if err != nil {
		return nil, err
	}
	if data, merr := json.Marshal(res.toRecord()); merr == nil {
		if serr := c.Set(ctx, key, data, r.TTL); serr == nil {
			observability.Cache().OnCacheSet(ctx, "stats", len(data))
		} else {
			r.logger().Warn("Stats cache write failed", "err", serr)
		}
	}
	return res, nil
}

func (r *Runner) key(m *morph.Morphology) (string, error) {
	h, err := cache.HashJSON(r.Config)
	if err != nil {
		return "", err
	}
	keyer := r.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if m.ProcessSubtrees() {
		h += "+subtrees"
	}
	return keyer.StatsKey(m.Fingerprint(), h), nil
}

func (r *Runner) save(ctx context.Context, paths []string, rep *Report) (string, error) {
	cfg, err := json.Marshal(r.Config)
	if err != nil {
		return "", err
	}
	results, err := rep.JSON()
	if err != nil {
		return "", err
	}
	run := store.NewRun(paths, cfg, results)
	run.Failed = len(rep.Failures)

	err = r.Backoff.Retry(ctx, func() error {
		err := r.Store.SaveRun(ctx, run)
		if err == nil || errors.Is(err, errors.ErrCodeInvalidInput) {
			return err
		}
		return cache.Retryable(err)
	})
	if err != nil {
		return "", err
	}
	r.logger().Info("Saved run", "id", run.ID, "files", len(paths), "failed", run.Failed)
	return run.ID, nil
}

func (r *Runner) cache() cache.Cache {
	if r.Cache == nil {
		return cache.NewNullCache()
	}
	return r.Cache
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(discard{})
	}
	return r.Logger
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
