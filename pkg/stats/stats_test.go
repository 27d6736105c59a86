package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/features"
	"github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/store"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

// cellSWC: basal dendrite with sections of length 3, 2 and 4, and an axon
// with one section of length 5. Every radius is 0.5.
const cellSWC = `# test cell
1 1 0 0 0 1 -1
2 3 0 1 0 0.5 1
3 3 0 4 0 0.5 2
4 3 0 4 2 0.5 3
5 3 0 4 -4 0.5 3
6 2 0 -1 0 0.5 1
7 2 0 -6 0 0.5 6
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func f(x float64) *features.Value {
	v := features.Scalar(x)
	return &v
}

func TestModeEval(t *testing.T) {
	xs := features.Sequence([]float64{4, 1, 3, 2})
	empty := features.Sequence(nil)

	tests := []struct {
		mode Mode
		in   features.Value
		want *features.Value
	}{
		{ModeMin, xs, f(1)},
		{ModeMax, xs, f(4)},
		{ModeMedian, xs, f(2.5)},
		{ModeMedian, features.Sequence([]float64{3, 1, 2}), f(2)},
		{ModeMean, xs, f(2.5)},
		{ModeStd, xs, f(math.Sqrt(1.25))},
		{ModeTotal, xs, f(10)},
		{ModeTotal, empty, f(0)},
		{ModeMax, empty, nil},
		{ModeMean, features.Scalar(7), f(7)},
		{ModeRaw, xs, &xs},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := tt.mode.Eval(tt.in)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Eval = %v, want %v", got, tt.want)
			}
			if got == nil {
				return
			}
			if diff := cmp.Diff(tt.want.Floats(), got.Floats(), approx); diff != "" {
				t.Errorf("Eval mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStatName(t *testing.T) {
	tests := []struct {
		mode    Mode
		feature string
		want    string
	}{
		{ModeMax, "section_lengths", "max_section_length"},
		{ModeRaw, "section_lengths", "section_length"},
		{ModeMean, "soma_radius", "mean_soma_radius"},
		{ModeTotal, "total_length", "total_total_length"},
		{ModeStd, "trunk_origin_radii", "std_trunk_origin_radii"},
	}
	for _, tt := range tests {
		if got := StatName(tt.mode, tt.feature); got != tt.want {
			t.Errorf("StatName(%s, %s) = %q, want %q", tt.mode, tt.feature, got, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", DefaultConfig(), true},
		{"full", FullConfig(), true},
		{"morphology only", Config{Morphology: map[string][]Mode{"soma_radius": {ModeRaw}}}, true},
		{"neurite feature at morphology level", Config{Morphology: map[string][]Mode{"total_length": {ModeTotal}}}, true},
		{"empty", Config{}, false},
		{"missing neurite_type", Config{Neurite: map[string][]Mode{"section_lengths": {ModeMax}}}, false},
		{"bad type", Config{
			Neurite:     map[string][]Mode{"section_lengths": {ModeMax}},
			NeuriteType: []string{"DENDRITE"},
		}, false},
		{"unknown feature", Config{
			Neurite:     map[string][]Mode{"section_colors": {ModeMax}},
			NeuriteType: []string{"ALL"},
		}, false},
		{"morphology feature as neurite", Config{
			Neurite:     map[string][]Mode{"soma_radius": {ModeMax}},
			NeuriteType: []string{"ALL"},
		}, false},
		{"bad mode", Config{Morphology: map[string][]Mode{"soma_radius": {"mode"}}}, false},
		{"no modes", Config{Morphology: map[string][]Mode{"soma_radius": {}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Validate = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "stats.yaml", `
neurite:
  section_lengths: [max, raw]
morphology:
  soma_radius: [mean]
neurite_type: [AXON]
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := Config{
		Neurite:     map[string][]Mode{"section_lengths": {ModeMax, ModeRaw}},
		Morphology:  map[string][]Mode{"soma_radius": {ModeMean}},
		NeuriteType: []string{"AXON"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	bad := writeFile(t, dir, "bad.toml", "neurite_type = [\"AXON\"]\n[neurite]\nsection_lengths = [\"max\"]\n[morphology]\nsoma_radius = [\"median\", \"mode\"]\n")
	if _, err := LoadConfig(bad); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("LoadConfig(bad) = %v, want INVALID_CONFIG", err)
	}
}

func loadCell(t *testing.T) *Result {
	t.Helper()
	path := writeFile(t, t.TempDir(), "cell.swc", cellSWC)
	m, err := io.LoadMorphology(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadMorphology: %v", err)
	}
	res, err := Extract(context.Background(), nil, m, DefaultConfig())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return res
}

func TestExtract(t *testing.T) {
	res := loadCell(t)
	if res.Name != "cell" {
		t.Errorf("Name = %q, want cell", res.Name)
	}

	var types []string
	for _, ts := range res.Neurite {
		types = append(types, ts.Type)
	}
	if diff := cmp.Diff([]string{"axon", "apical_dendrite", "basal_dendrite", "all"}, types); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, e := range res.Neurite[0].Stats {
		names = append(names, e.Name)
	}
	wantNames := []string{"max_section_branch_order", "max_section_length", "total_section_length", "total_section_volume"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("stat names mismatch (-want +got):\n%s", diff)
	}

	area := math.Pi * 0.25
	tests := []struct {
		typ  int
		stat string
		want *features.Value
	}{
		{0, "max_section_length", f(5)},
		{0, "total_section_length", f(5)},
		{0, "total_section_volume", f(5 * area)},
		{0, "max_section_branch_order", f(0)},
		{1, "max_section_length", nil},
		{1, "total_section_length", f(0)},
		{2, "max_section_length", f(4)},
		{2, "total_section_length", f(9)},
		{2, "max_section_branch_order", f(1)},
		{3, "total_section_length", f(14)},
		{3, "total_section_volume", f(14 * area)},
	}
	for _, tt := range tests {
		got, ok := res.Neurite[tt.typ].Stats.Get(tt.stat)
		if !ok {
			t.Errorf("%s: %s missing", res.Neurite[tt.typ].Type, tt.stat)
			continue
		}
		if (got == nil) != (tt.want == nil) {
			t.Errorf("%s %s = %v, want %v", res.Neurite[tt.typ].Type, tt.stat, got, tt.want)
			continue
		}
		if got != nil && math.Abs(got.Float()-tt.want.Float()) > 1e-9 {
			t.Errorf("%s %s = %v, want %v", res.Neurite[tt.typ].Type, tt.stat, got.Float(), tt.want.Float())
		}
	}

	soma, ok := res.Morphology.Get("mean_soma_radius")
	if !ok || soma == nil || soma.Float() != 1 {
		t.Errorf("mean_soma_radius = %v", soma)
	}
}

func TestWriteJSON(t *testing.T) {
	res := &Result{
		Name: "cell",
		Neurite: []TypeStats{
			{Type: "axon", Stats: Stats{{Name: "max_section_length", Value: f(5)}, {Name: "mean_x", Value: nil}}},
		},
		Morphology: Stats{{Name: "mean_soma_radius", Value: f(1)}},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, []*Result{res}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, buf.Bytes()); err != nil {
		t.Fatal(err)
	}
	want := `{"cell":{"axon":{"max_section_length":5,"mean_x":null},"mean_soma_radius":1}}`
	if compact.String() != want {
		t.Errorf("WriteJSON = %s, want %s", compact.String(), want)
	}
}

func TestWriteCSV(t *testing.T) {
	seq := features.Sequence([]float64{1, 2.5})
	results := []*Result{
		{
			Name:       "a",
			Neurite:    []TypeStats{{Type: "all", Stats: Stats{{Name: "section_length", Value: &seq}}}},
			Morphology: Stats{{Name: "mean_soma_radius", Value: f(1)}},
		},
		{
			Name:       "b",
			Neurite:    []TypeStats{{Type: "all", Stats: Stats{{Name: "section_length", Value: f(3)}}}},
			Morphology: Stats{{Name: "mean_soma_radius", Value: nil}},
		},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, results); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "name,all:section_length,mean_soma_radius\na,1 2.5,1\nb,3,\n"
	if buf.String() != want {
		t.Errorf("WriteCSV =\n%s\nwant\n%s", buf.String(), want)
	}

	results[1].Morphology = nil
	if err := WriteCSV(&bytes.Buffer{}, results); err == nil {
		t.Error("WriteCSV with mismatched columns: want error")
	}
}

type countingCache struct {
	cache.Cache
	sets atomic.Int32
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets.Add(1)
	return c.Cache.Set(ctx, key, data, ttl)
}

func TestRunner(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	good := writeFile(t, dir, "cell.swc", cellSWC)
	broken := writeFile(t, dir, "broken.swc", "1 1 0 0 0 1 -1\n2 3 1 0 0 1 7\n")
	missing := filepath.Join(dir, "missing.swc")

	r, err := NewRunner(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	c := &countingCache{Cache: cache.NewMemoryCache(0)}
	r.Cache = c
	r.Store = store.NewMemoryStore()
	r.Workers = 2

	rep, err := r.Run(ctx, []string{good, broken, missing, good})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(rep.Results))
	}
	var failed []string
	for _, f := range rep.Failures {
		failed = append(failed, filepath.Base(f.Path))
	}
	if diff := cmp.Diff([]string{"broken.swc", "missing.swc"}, failed); diff != "" {
		t.Errorf("failures mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(rep.Failures[0].Err, errors.ErrCodeMissingParent) {
		t.Errorf("broken error = %v, want MISSING_PARENT", rep.Failures[0].Err)
	}
	first, _ := json.Marshal(rep.Results[0])
	second, _ := json.Marshal(rep.Results[1])
	if !bytes.Equal(first, second) {
		t.Errorf("results differ:\n%s\n%s", first, second)
	}

	run, err := r.Store.GetRun(ctx, rep.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Failed != 2 || len(run.Paths) != 4 {
		t.Errorf("run = %d failed, %d paths; want 2, 4", run.Failed, len(run.Paths))
	}
	if !strings.HasPrefix(string(run.Results), `{"cell":{"axon":`) {
		t.Errorf("run results = %s", run.Results)
	}

	// A second run is served from the result cache.
	sets := c.sets.Load()
	if _, err := r.Run(ctx, []string{good}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.sets.Load(); got != sets {
		t.Errorf("cache sets = %d after cached run, want %d", got, sets)
	}
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{Config: DefaultConfig()}
	if _, err := r.Run(ctx, []string{"a.swc"}); err == nil {
		t.Error("Run with canceled context: want error")
	}
}
