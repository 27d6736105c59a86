package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/arbor/pkg/buildinfo"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/features"
	mio "github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/morph"
	"github.com/matzehuels/arbor/pkg/render"
)

// ===== Response types =====

// FeatureInfo describes one registered feature.
type FeatureInfo struct {
	Name  string `json:"name"`
	Scope string `json:"scope"`
	Shape string `json:"shape"`
	Doc   string `json:"doc"`
}

// SomaInfo summarizes a soma.
type SomaInfo struct {
	Kind   string     `json:"kind"`
	Center [3]float64 `json:"center"`
	Radius float64    `json:"radius"`
}

// NeuriteInfo summarizes one neurite.
type NeuriteInfo struct {
	Type     string  `json:"type"`
	Sections int     `json:"sections"`
	Length   float64 `json:"length"`
}

// Summary describes an uploaded morphology.
type Summary struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Fingerprint string            `json:"fingerprint"`
	Soma        SomaInfo          `json:"soma"`
	Sections    int               `json:"sections"`
	Neurites    []NeuriteInfo     `json:"neurites"`
	Diagnostics morph.Diagnostics `json:"diagnostics"`
}

// FeatureResult is the value of one feature query.
type FeatureResult struct {
	ID      string         `json:"id"`
	Feature string         `json:"feature"`
	Value   features.Value `json:"value"`
}

func summarize(id string, m *morph.Morphology) Summary {
	soma := m.Soma()
	sum := Summary{
		ID:          id,
		Name:        m.Name,
		Fingerprint: m.Fingerprint(),
		Soma:        SomaInfo{Kind: soma.Kind().String(), Center: soma.Center(), Radius: soma.Radius()},
		Sections:    len(m.Sections()),
		Neurites:    []NeuriteInfo{},
		Diagnostics: m.Diagnostics(),
	}
	for _, n := range m.Neurites() {
		count := 0
		for range n.Sections() {
			count++
		}
		sum.Neurites = append(sum.Neurites, NeuriteInfo{Type: n.Type().String(), Sections: count, Length: n.Length()})
	}
	return sum
}

// ===== Handlers =====

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
}

func (s *Server) listFeatures(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	out := []FeatureInfo{}
	for _, f := range s.registry().List() {
		if scope != "" && f.Scope.String() != scope {
			continue
		}
		out = append(out, FeatureInfo{Name: f.Name, Scope: f.Scope.String(), Shape: f.Shape.String(), Doc: f.Doc})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		writeError(w, s.Logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = formatFromContentType(r.Header.Get("Content-Type"))
	}
	name := q.Get("name")

	var points []morph.Point
	switch format {
	case "swc":
		points, err = mio.ReadSWC(bytes.NewReader(body))
	case "json":
		var fileName string
		fileName, points, err = mio.ReadJSON(bytes.NewReader(body))
		if name == "" {
			name = fileName
		}
	default:
		err = errors.New(errors.ErrCodeUnsupported, "unsupported format %q (want swc or json)", format)
	}
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	if name == "" {
		name = "morphology"
	}

	m, err := mio.BuildMorphology(name+"."+format, points, s.Options...)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	id := uuid.NewString()
	s.add(id, m)
	s.Logger.Info("Uploaded morphology", "id", id, "name", m.Name, "sections", len(m.Sections()))
	writeJSON(w, http.StatusCreated, summarize(id, m))
}

func formatFromContentType(ct string) string {
	switch {
	case strings.HasPrefix(ct, "application/json"):
		return "json"
	default:
		return "swc"
	}
}

func (s *Server) listMorphologies(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, summarize(id, s.morphs[id]))
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) morphology(w http.ResponseWriter, r *http.Request) (string, *morph.Morphology, bool) {
	id := chi.URLParam(r, "id")
	m, ok := s.lookup(id)
	if !ok {
		writeError(w, s.Logger, errors.New(errors.ErrCodeNotFound, "morphology %q not found", id))
	}
	return id, m, ok
}

func (s *Server) getMorphology(w http.ResponseWriter, r *http.Request) {
	id, m, ok := s.morphology(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summarize(id, m))
}

func (s *Server) deleteMorphology(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.remove(id) {
		writeError(w, s.Logger, errors.New(errors.ErrCodeNotFound, "morphology %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getFeature(w http.ResponseWriter, r *http.Request) {
	id, m, ok := s.morphology(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	if !s.registry().Has(name) {
		writeError(w, s.Logger, errors.New(errors.ErrCodeNotFound, "unknown feature %q", name))
		return
	}

	opts, target, err := featureQuery(r, m)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	v, err := s.Getter.Get(r.Context(), name, target, opts...)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, FeatureResult{ID: id, Feature: name, Value: v})
}

// featureQuery parses neurite_type, section_type and numeric or boolean
// feature parameters from the query string. A section_type query
// evaluates the feature on the morphology's neurites.
func featureQuery(r *http.Request, m *morph.Morphology) ([]features.Option, any, error) {
	var opts []features.Option
	var target any = m
	for key, vals := range r.URL.Query() {
		val := vals[len(vals)-1]
		switch key {
		case "neurite_type":
			t, err := morph.ParseNeuriteType(val)
			if err != nil {
				return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "neurite_type")
			}
			opts = append(opts, features.WithNeuriteType(t))
		case "section_type":
			t, err := morph.ParseNeuriteType(val)
			if err != nil {
				return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "section_type")
			}
			opts = append(opts, features.WithSectionType(t))
			target = m.Neurites()
		default:
			opts = append(opts, features.WithParam(key, parseParam(val)))
		}
	}
	if _, isNeurites := target.([]*morph.Neurite); isNeurites && r.URL.Query().Has("neurite_type") {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "neurite_type and section_type are exclusive")
	}
	return opts, target, nil
}

func parseParam(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if strings.Contains(s, ",") {
		var fs []float64
		for _, part := range strings.Split(s, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return s
			}
			fs = append(fs, f)
		}
		return fs
	}
	return s
}

func (s *Server) dendrogram(w http.ResponseWriter, r *http.Request) {
	_, m, ok := s.morphology(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	opts := render.Options{Detailed: q.Get("detailed") == "true"}
	if t := q.Get("neurite_type"); t != "" {
		nt, err := morph.ParseNeuriteType(t)
		if err != nil {
			writeError(w, s.Logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "neurite_type"))
			return
		}
		opts.NeuriteType = nt
	}
	if sc := q.Get("scale"); sc != "" {
		f, err := strconv.ParseFloat(sc, 64)
		if err != nil || f < 0 {
			writeError(w, s.Logger, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", sc))
			return
		}
		opts.Scale = f
	}

	svg, err := render.RenderSVG(r.Context(), render.ToDOT(m, opts))
	if err != nil {
		writeError(w, s.Logger, errors.Wrap(errors.ErrCodeInternal, err, "render dendrogram"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, s.Logger, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", l))
			return
		}
		limit = n
	}
	runs, err := s.Store.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// ===== Encoding =====

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusOf maps error codes to HTTP statuses.
func statusOf(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidFeature, errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeMissingParent, errors.ErrCodeInvalidSoma, errors.ErrCodeInvalidRawData,
		errors.ErrCodeNeuroM:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type logger interface {
	Error(msg any, keyvals ...any)
}

func writeError(w http.ResponseWriter, l logger, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		l.Error("Request failed", "err", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: string(errors.GetCode(err))})
}
