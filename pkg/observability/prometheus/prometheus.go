// Package prometheus implements the observability hooks with Prometheus
// collectors.
package prometheus

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/arbor/pkg/observability"
)

const namespace = "arbor"

// Hooks records build, feature and cache events as Prometheus metrics.
type Hooks struct {
	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	sections     prometheus.Histogram

	features        *prometheus.CounterVec
	featureDuration *prometheus.HistogramVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "loads_total",
			Help:      "Morphology loads by status",
		}, []string{"status"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "load_duration_seconds",
			Help:      "Time to read and build one morphology",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		sections: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "sections",
			Help:      "Sections per loaded morphology",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 10),
		}),
		features: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "evaluations_total",
			Help:      "Feature evaluations by feature, target and status",
		}, []string{"feature", "target", "status"}),
		featureDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "features",
			Name:      "duration_seconds",
			Help:      "Feature evaluation latency",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"feature", "target"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses and writes by key type",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),
	}
	reg.MustRegister(h.loads, h.loadDuration, h.sections, h.features, h.featureDuration, h.cacheEvents, h.cacheBytes)
	return h
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *Hooks) OnLoadStart(context.Context, string) {}

func (h *Hooks) OnLoadComplete(_ context.Context, _ string, sections int, d time.Duration, err error) {
	h.loads.WithLabelValues(status(err)).Inc()
	h.loadDuration.Observe(d.Seconds())
	if err == nil {
		h.sections.Observe(float64(sections))
	}
}

func (h *Hooks) OnFeatureStart(context.Context, string, string) {}

func (h *Hooks) OnFeatureComplete(_ context.Context, name, target string, d time.Duration, err error) {
	h.features.WithLabelValues(name, target, status(err)).Inc()
	h.featureDuration.WithLabelValues(name, target).Observe(d.Seconds())
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// Install registers h as the build, feature and cache hooks.
func (h *Hooks) Install() {
	observability.SetBuildHooks(h)
	observability.SetFeatureHooks(h)
	observability.SetCacheHooks(h)
}

var (
	_ observability.BuildHooks   = (*Hooks)(nil)
	_ observability.FeatureHooks = (*Hooks)(nil)
	_ observability.CacheHooks   = (*Hooks)(nil)
)
