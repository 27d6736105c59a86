package check

import (
	"bytes"
	"context"
	"encoding/json"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/morph"
)

// Status values of a [Summary].
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// Outcome is the result of one check on one file.
type Outcome struct {
	Title string
	Result
}

// FileSummary collects the outcomes for one file. All is false when any
// check failed or the file could not be read.
type FileSummary struct {
	Path     string
	Outcomes []Outcome
	All      bool
	Err      error
}

// MarshalJSON writes {"<title>": bool, ..., "ALL": bool} in check order.
func (f FileSummary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, o := range f.Outcomes {
		writeKey(&buf, o.Title)
		buf.WriteString(boolJSON(o.Status))
		buf.WriteByte(',')
	}
	writeKey(&buf, "ALL")
	buf.WriteString(boolJSON(f.All))
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary is the report of a [Runner]: per-file outcomes in input order
// and an overall status.
type Summary struct {
	Files  []FileSummary
	Status string
}

// MarshalJSON writes {"files": {"<path>": {...}}, "STATUS": "PASS"}.
func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"files":{`)
	for i, f := range s.Files {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, f.Path)
		b, err := f.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteString(`},"STATUS":`)
	b, err := json.Marshal(s.Status)
	if err != nil {
		return nil, err
	}
	buf.Write(b)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) {
	b, _ := json.Marshal(key)
	buf.Write(b)
	buf.WriteByte(':')
}

func boolJSON(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Runner runs configured checks over files. Files are checked in parallel;
// a file that fails to load fails on its own without stopping the others.
type Runner struct {
	Config Config
	// Workers bounds parallelism; zero uses GOMAXPROCS.
	Workers int
	Logger  *log.Logger
	// Options apply to every morphology built for morphology checks.
	Options []morph.Option
}

// NewRunner returns a runner for cfg after validating it.
func NewRunner(cfg Config, logger *log.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{Config: cfg, Logger: logger}, nil
}

// Run checks every path and returns the summary. Only context
// cancellation is returned as an error; check failures are part of the
// summary.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	files := make([]FileSummary, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			files[i] = r.CheckFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Summary{Files: files, Status: StatusPass}
	for _, f := range files {
		if !f.All {
			s.Status = StatusFail
		}
	}
	return s, nil
}

// CheckFile runs the configured checks on one file. Structural checks run
// on the raw table even when the morphology cannot be built.
func (r *Runner) CheckFile(path string) FileSummary {
	logger := r.logger().With("file", path)
	f := FileSummary{Path: path, All: true}

	points, err := io.ReadPoints(path)
	if err != nil {
		logger.Error("Failed to load data, skipping checks", "err", err)
		return FileSummary{Path: path, Err: err}
	}

	for _, name := range r.Config.Checks.Structural {
		chk, _ := Lookup(GroupStructural, name)
		res, err := chk.RunStructural(points, r.Config.Options[name])
		f.add(logger, chk, res, err)
	}

	if len(r.Config.Checks.Morphology) == 0 {
		return f
	}
	m, err := io.BuildMorphology(path, points, r.Options...)
	if err != nil {
		logger.Error("Failed to build morphology", "err", err)
		f.All = false
		f.Err = err
		return f
	}
	for _, name := range r.Config.Checks.Morphology {
		chk, _ := Lookup(GroupMorphology, name)
		res, err := chk.RunMorphology(m, r.Config.Options[name])
		f.add(logger, chk, res, err)
	}
	return f
}

func (f *FileSummary) add(logger *log.Logger, chk *Check, res Result, err error) {
	if err != nil {
		logger.Error("Check failed", "check", chk.Name, "err", err)
		res = Result{Info: []string{err.Error()}}
	}
	f.Outcomes = append(f.Outcomes, Outcome{Title: chk.Title(), Result: res})
	f.All = f.All && res.Status
	if res.Status {
		logger.Debug("PASS", "check", chk.Title())
	} else {
		logger.Warn("FAIL", "check", chk.Title(), "ids", len(res.Info))
	}
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
