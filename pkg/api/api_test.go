package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/features"
	"github.com/matzehuels/arbor/pkg/observability"
	obsprom "github.com/matzehuels/arbor/pkg/observability/prometheus"
	"github.com/matzehuels/arbor/pkg/store"
)

// cellSWC: basal dendrite with sections of length 3, 2 and 4, and an axon
// of length 5.
const cellSWC = `1 1 0 0 0 1 -1
2 3 0 1 0 0.5 1
3 3 0 4 0 0.5 2
4 3 0 4 2 0.5 3
5 3 0 4 -4 0.5 3
6 2 0 -1 0 0.5 1
7 2 0 -6 0 0.5 6
`

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(features.NewGetter(cache.NewMemoryCache(0)), nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, contentType, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func upload(t *testing.T, ts *httptest.Server) Summary {
	t.Helper()
	resp, body := do(t, http.MethodPost, ts.URL+"/morphologies?name=cell", "text/plain", cellSWC)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", resp.StatusCode, body)
	}
	var sum Summary
	if err := json.Unmarshal(body, &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	return sum
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"status": "ok"`)) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}
}

func TestListFeatures(t *testing.T) {
	_, ts := newTestServer(t)
	_, body := do(t, http.MethodGet, ts.URL+"/features?scope=neurite", "", "")
	var list []FeatureInfo
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) == 0 {
		t.Fatal("no neurite features listed")
	}
	found := false
	for _, f := range list {
		if f.Scope != "neurite" {
			t.Errorf("feature %s has scope %s", f.Name, f.Scope)
		}
		found = found || f.Name == "section_lengths"
	}
	if !found {
		t.Error("section_lengths not listed")
	}
}

func TestUpload(t *testing.T) {
	_, ts := newTestServer(t)
	sum := upload(t, ts)

	if sum.ID == "" || sum.Name != "cell" || sum.Sections != 4 {
		t.Errorf("summary = %+v", sum)
	}
	want := []NeuriteInfo{
		{Type: "basal_dendrite", Sections: 3, Length: 9},
		{Type: "axon", Sections: 1, Length: 5},
	}
	if diff := cmp.Diff(want, sum.Neurites); diff != "" {
		t.Errorf("neurites mismatch (-want +got):\n%s", diff)
	}
	if sum.Soma.Radius != 1 {
		t.Errorf("soma radius = %v, want 1", sum.Soma.Radius)
	}

	resp, body := do(t, http.MethodGet, ts.URL+"/morphologies", "", "")
	var list []Summary
	if err := json.Unmarshal(body, &list); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list = %d %s", resp.StatusCode, body)
	}
	if len(list) != 1 || list[0].ID != sum.ID {
		t.Errorf("list = %+v", list)
	}
}

func TestUploadJSON(t *testing.T) {
	_, ts := newTestServer(t)
	body := `{"name": "tiny", "points": [
		{"id": 1, "type": 1, "x": 0, "y": 0, "z": 0, "radius": 1, "parent": -1},
		{"id": 2, "type": 2, "x": 1, "y": 0, "z": 0, "radius": 0.5, "parent": 1},
		{"id": 3, "type": 2, "x": 4, "y": 0, "z": 0, "radius": 0.5, "parent": 2}
	]}`
	resp, data := do(t, http.MethodPost, ts.URL+"/morphologies", "application/json", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var sum Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Name != "tiny" || sum.Sections != 1 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestUploadErrors(t *testing.T) {
	_, ts := newTestServer(t)
	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   string
	}{
		{"missing parent", "", "1 1 0 0 0 1 -1\n2 3 1 0 0 1 9\n", http.StatusUnprocessableEntity, "MISSING_PARENT"},
		{"bad swc", "", "1 1 0 0\n", http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad format", "?format=h5", "x", http.StatusBadRequest, "UNSUPPORTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, ts.URL+"/morphologies"+tt.query, "text/plain", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			var e ErrorResponse
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatal(err)
			}
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
		})
	}
}

func TestGetFeature(t *testing.T) {
	_, ts := newTestServer(t)
	id := upload(t, ts).ID

	tests := []struct {
		name   string
		path   string
		status int
		want   []float64
	}{
		{"total length", "/features/total_length", http.StatusOK, []float64{14}},
		{"axon", "/features/total_length?neurite_type=axon", http.StatusOK, []float64{5}},
		{"section lengths", "/features/section_lengths?neurite_type=basal_dendrite", http.StatusOK, []float64{3, 2, 4}},
		{"section type", "/features/number_of_sections?section_type=axon", http.StatusOK, []float64{1}},
		{"unknown feature", "/features/colour", http.StatusNotFound, nil},
		{"bad type", "/features/total_length?neurite_type=tail", http.StatusBadRequest, nil},
		{"morphology feature on neurites", "/features/soma_radius?section_type=axon", http.StatusUnprocessableEntity, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodGet, ts.URL+"/morphologies/"+id+tt.path, "", "")
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			if tt.want == nil {
				return
			}
			var res FeatureResult
			if err := json.Unmarshal(body, &res); err != nil {
				t.Fatal(err)
			}
			got := res.Value.Floats()
			if len(got) != len(tt.want) {
				t.Fatalf("value = %v, want %v", got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("value = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestMorphologyNotFound(t *testing.T) {
	_, ts := newTestServer(t)
	for _, path := range []string{"/morphologies/nope", "/morphologies/nope/features/total_length", "/morphologies/nope/dendrogram.svg"} {
		resp, _ := do(t, http.MethodGet, ts.URL+path, "", "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, resp.StatusCode)
		}
	}
}

func TestDeleteMorphology(t *testing.T) {
	_, ts := newTestServer(t)
	id := upload(t, ts).ID
	if resp, _ := do(t, http.MethodDelete, ts.URL+"/morphologies/"+id, "", ""); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete = %d", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodGet, ts.URL+"/morphologies/"+id, "", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodDelete, ts.URL+"/morphologies/"+id, "", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", resp.StatusCode)
	}
}

func TestDendrogram(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering")
	}
	_, ts := newTestServer(t)
	id := upload(t, ts).ID
	resp, body := do(t, http.MethodGet, ts.URL+"/morphologies/"+id+"/dendrogram.svg?detailed=true", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Contains(body, []byte("<svg")) {
		t.Errorf("body is not SVG: %.200s", body)
	}

	resp, _ = do(t, http.MethodGet, ts.URL+"/morphologies/"+id+"/dendrogram.svg?scale=-1", "", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative scale = %d, want 400", resp.StatusCode)
	}
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	s := NewServer(nil, nil)
	st := store.NewMemoryStore()
	s.Store = st
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	run := store.NewRun([]string{"a.swc"}, json.RawMessage(`{}`), json.RawMessage(`{"a":{}}`))
	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	resp, body := do(t, http.MethodGet, ts.URL+"/runs/"+run.ID, "", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(run.ID)) {
		t.Errorf("get run = %d %s", resp.StatusCode, body)
	}
	resp, _ = do(t, http.MethodGet, ts.URL+"/runs/"+"00000000-0000-0000-0000-000000000000", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing run = %d, want 404", resp.StatusCode)
	}
	resp, body = do(t, http.MethodGet, ts.URL+"/runs?limit=5", "", "")
	var runs []*store.Run
	if err := json.Unmarshal(body, &runs); err != nil || resp.StatusCode != http.StatusOK || len(runs) != 1 {
		t.Errorf("list runs = %d %s", resp.StatusCode, body)
	}
}

func TestMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	reg := prometheus.NewRegistry()
	obsprom.New(reg).Install()

	s := NewServer(nil, nil)
	s.Gatherer = reg
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	id := upload(t, ts).ID
	do(t, http.MethodGet, ts.URL+"/morphologies/"+id+"/features/total_length", "", "")

	resp, body := do(t, http.MethodGet, ts.URL+"/metrics", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics = %d", resp.StatusCode)
	}
	if !bytes.Contains(body, []byte(`arbor_features_evaluations_total{feature="total_length"`)) {
		t.Errorf("feature counter missing:\n%s", body)
	}
}
