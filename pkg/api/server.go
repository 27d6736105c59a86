// Package api serves morphology analysis over HTTP.
//
// Clients upload a morphology (SWC or the JSON point format), then query
// features and dendrograms for it by id:
//
//	POST /morphologies?format=swc&name=cell      -> 201 {"id": "...", ...}
//	GET  /morphologies/{id}/features/total_length?neurite_type=axon
//	GET  /morphologies/{id}/dendrogram.svg
//
// Uploaded morphologies live in memory for the life of the server. Feature
// values go through a [features.Getter], so a shared cache backend serves
// repeated queries. Stored stats runs are readable under /runs when a
// [store.Store] is configured.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/arbor/pkg/features"
	"github.com/matzehuels/arbor/pkg/morph"
	"github.com/matzehuels/arbor/pkg/store"
)

// MaxUploadBytes bounds the size of an uploaded morphology.
const MaxUploadBytes = 32 << 20

// Server holds uploaded morphologies and serves the HTTP API.
type Server struct {
	Getter *features.Getter
	Logger *log.Logger
	// Store serves /runs; nil disables the routes.
	Store store.Store
	// Gatherer serves /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
	// Options apply to every uploaded morphology.
	Options []morph.Option
	// Timeout bounds each request; zero means no limit.
	Timeout time.Duration

	mu     sync.RWMutex
	morphs map[string]*morph.Morphology
	order  []string
}

// NewServer returns a server evaluating features through g.
func NewServer(g *features.Getter, logger *log.Logger) *Server {
	if g == nil {
		g = features.NewGetter(nil)
	}
	if logger == nil {
		logger = log.New(discard{})
	}
	return &Server{Getter: g, Logger: logger, morphs: make(map[string]*morph.Morphology)}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	if s.Timeout > 0 {
		r.Use(middleware.Timeout(s.Timeout))
	}

	r.Get("/healthz", s.health)
	r.Get("/features", s.listFeatures)

	r.Route("/morphologies", func(r chi.Router) {
		r.Get("/", s.listMorphologies)
		r.Post("/", s.upload)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getMorphology)
			r.Delete("/", s.deleteMorphology)
			r.Get("/features/{name}", s.getFeature)
			r.Get("/dendrogram.svg", s.dendrogram)
		})
	})

	if s.Store != nil {
		r.Get("/runs", s.listRuns)
		r.Get("/runs/{id}", s.getRun)
	}
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) registry() *features.Registry {
	if s.Getter.Registry != nil {
		return s.Getter.Registry
	}
	return features.Default
}

func (s *Server) add(id string, m *morph.Morphology) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.morphs[id] = m
	s.order = append(s.order, id)
}

func (s *Server) lookup(id string) (*morph.Morphology, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.morphs[id]
	return m, ok
}

func (s *Server) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.morphs[id]; !ok {
		return false
	}
	delete(s.morphs, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
