package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/features"
	mio "github.com/matzehuels/arbor/pkg/io"
)

// cellSWC: a basal dendrite of three sections (lengths 3, 2, 4) and an
// axon of one section (length 5).
const cellSWC = `1 1 0 0 0 1 -1
2 3 0 1 0 0.5 1
3 3 0 4 0 0.5 2
4 3 0 4 2 0.5 3
5 3 0 4 -4 0.5 3
6 2 0 -1 0 0.5 1
7 2 0 -6 0 0.5 6
`

func writeCell(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(cellSWC), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testContext() context.Context {
	return withLogger(context.Background(), newLogger(&bytes.Buffer{}, LogInfo))
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		output, flag string
		want         string
		wantErr      bool
	}{
		{"", "json", "json", false},
		{"", "csv", "csv", false},
		{"", "xml", "", true},
		{"out.CSV", "json", "csv", false},
		{"out.json", "csv", "json", false},
		{"out.txt", "json", "", true},
	}
	for _, tt := range tests {
		got, err := outputFormat(tt.output, tt.flag)
		if (err != nil) != tt.wantErr {
			t.Errorf("outputFormat(%q, %q) error = %v, wantErr %v", tt.output, tt.flag, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("outputFormat(%q, %q) = %q, want %q", tt.output, tt.flag, got, tt.want)
		}
	}
}

func TestStatsConfig(t *testing.T) {
	if _, err := statsConfig(statsOpts{config: "x.yaml", full: true}); err == nil {
		t.Error("--config with --full should fail")
	}
	cfg, err := statsConfig(statsOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.NeuriteType) == 0 {
		t.Error("default config has no neurite types")
	}
	full, err := statsConfig(statsOpts{full: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(full.Neurite) <= len(cfg.Neurite) {
		t.Errorf("full config has %d neurite features, default %d", len(full.Neurite), len(cfg.Neurite))
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	st, err := openStore(ctx, "")
	if err != nil || st != nil {
		t.Errorf(`openStore("") = %v, %v; want nil, nil`, st, err)
	}

	st, err = openStore(ctx, "memory")
	if err != nil {
		t.Fatal(err)
	}
	st.Close()

	st, err = openStore(ctx, "sqlite:"+filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	st.Close()

	_, err = openStore(ctx, "ftp://runs")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown store error = %v, want INVALID_INPUT", err)
	}
}

func TestParseParamValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"2.5", 2.5},
		{"1,2, 3", []float64{1, 2, 3}},
		{"a,b", "a,b"},
		{"uylings", "uylings"},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, parseParamValue(tt.in)); diff != "" {
			t.Errorf("parseParamValue(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestFeatureOptions(t *testing.T) {
	opts, err := featureOptions("axon", "", []string{"step_size=2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 2 {
		t.Errorf("got %d options, want 2", len(opts))
	}
	if _, err := featureOptions("", "", []string{"nonsense"}); err == nil {
		t.Error("param without '=' should fail")
	}
	if _, err := featureOptions("dendrite", "", nil); err == nil {
		t.Error("unknown neurite type should fail")
	}
}

func TestRunGet(t *testing.T) {
	dir := t.TempDir()
	a := writeCell(t, dir, "a.swc")
	b := writeCell(t, dir, "b.swc")
	ctx := testContext()

	tests := []struct {
		name       string
		feature    string
		neurite    string
		population bool
		want       string
	}{
		{"per file", "number_of_sections", "", false, "a\t4\nb\t4\n"},
		{"axon only", "total_length", "axon", false, "a\t5\nb\t5\n"},
		{"population", "number_of_neurites", "", true, "Population\t[2 2]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := featureOptions(tt.neurite, "", nil)
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			if err := runGet(ctx, &buf, tt.feature, []string{a, b}, opts, false, tt.population); err != nil {
				t.Fatalf("runGet: %v", err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}

	err := runGet(ctx, &bytes.Buffer{}, "no_such_feature", []string{a}, nil, false, false)
	if !errors.Is(err, errors.ErrCodeNeuroM) {
		t.Errorf("unknown feature error = %v, want NEUROM_ERROR", err)
	}
	err = runGet(ctx, &bytes.Buffer{}, "total_length", []string{a, b}, nil, false, true)
	if !errors.Is(err, errors.ErrCodeNeuroM) {
		t.Errorf("neurite feature on population error = %v, want NEUROM_ERROR", err)
	}
}

func TestRunStats(t *testing.T) {
	dir := t.TempDir()
	writeCell(t, dir, "cell.swc")
	ctx := testContext()
	c := New(&bytes.Buffer{}, LogInfo)

	var buf bytes.Buffer
	opts := statsOpts{format: "json", cache: cacheFlags{noCache: true}}
	if err := c.runStats(ctx, &buf, []string{dir}, opts); err != nil {
		t.Fatalf("runStats: %v", err)
	}
	for _, want := range []string{`"cell"`, `"axon"`, `"basal_dendrite"`, `"max_section_length"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("json output missing %s:\n%s", want, buf.String())
		}
	}

	out := filepath.Join(t.TempDir(), "stats.csv")
	opts.output = out
	if err := c.runStats(ctx, &bytes.Buffer{}, []string{dir}, opts); err != nil {
		t.Fatalf("runStats csv: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "name,axon:") {
		t.Errorf("csv header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestRunStatsAllFailed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.swc")
	if err := os.WriteFile(path, []byte("1 1 0 0 0 1 -1\n2 3 0 1 0 1 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(&bytes.Buffer{}, LogInfo)
	err := c.runStats(testContext(), &bytes.Buffer{}, []string{path}, statsOpts{format: "json", cache: cacheFlags{noCache: true}})
	if err == nil || !strings.Contains(err.Error(), "all 1 files failed") {
		t.Errorf("runStats error = %v, want all files failed", err)
	}
}

func TestRunSoma(t *testing.T) {
	path := writeCell(t, t.TempDir(), "cell.swc")

	var buf bytes.Buffer
	if err := runSoma(testContext(), &buf, []string{path}); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"cell", "single_point", "1.000", "0.00 0.00 0.00"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("soma table missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRunDendrogramDOT(t *testing.T) {
	dir := t.TempDir()
	path := writeCell(t, dir, "cell.swc")

	if err := runDendrogram(testContext(), path, dendrogramOpts{format: "dot"}); err != nil {
		t.Fatalf("runDendrogram: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "cell.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), `digraph "cell"`) {
		t.Errorf("dot output = %q", string(data))
	}

	if err := runDendrogram(testContext(), path, dendrogramOpts{format: "gif"}); err == nil {
		t.Error("unknown format should fail")
	}
	if err := runDendrogram(testContext(), path, dendrogramOpts{format: "dot", neuriteType: "spine"}); err == nil {
		t.Error("unknown neurite type should fail")
	}
}

func TestFilterFeatures(t *testing.T) {
	pop := filterFeatures(features.Default.List(), "population")
	if len(pop) == 0 {
		t.Fatal("no population features")
	}
	for _, f := range pop {
		if f.Scope != features.ScopePopulation {
			t.Errorf("%s has scope %s", f.Name, f.Scope)
		}
	}
	if got := filterFeatures(features.Default.List(), ""); len(got) != len(features.Default.List()) {
		t.Errorf("empty scope kept %d features", len(got))
	}
}

func TestFeatureListModel(t *testing.T) {
	f, ok := features.Default.Lookup(features.ScopeNeurite, "total_length")
	if !ok {
		t.Fatal("total_length not registered")
	}
	g, _ := features.Default.Lookup(features.ScopeNeurite, "number_of_sections")

	m, err := mio.LoadMorphology(context.Background(), writeCell(t, t.TempDir(), "cell.swc"))
	if err != nil {
		t.Fatal(err)
	}

	var model tea.Model = NewFeatureListModel([]*features.Feature{f, g}, m)
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})

	fl := model.(FeatureListModel)
	if fl.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", fl.Cursor)
	}
	if got := fl.values["total_length"]; got != "14" {
		t.Errorf("total_length value = %q, want 14", got)
	}
	if view := fl.View(); !strings.Contains(view, "Features of cell") {
		t.Errorf("view missing title:\n%s", view)
	}

	_, cmd := fl.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestRootCommand(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"features", "--scope", "population"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("features: %v", err)
	}
	if !strings.Contains(out.String(), "sholl_frequency") {
		t.Errorf("features output missing sholl_frequency:\n%s", out.String())
	}

	out.Reset()
	root.SetArgs([]string{"check", "--list"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("check --list: %v", err)
	}
	if !strings.Contains(out.String(), "has_axon") {
		t.Errorf("check list missing has_axon:\n%s", out.String())
	}
}
