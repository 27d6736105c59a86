// Package observability provides hooks for metrics and tracing.
//
// Libraries in this module emit events through small hook interfaces; the
// application registers an implementation at startup. The defaults do
// nothing, so library code never depends on a metrics backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    hooks := prometheus.New(promclient.DefaultRegisterer)
//	    observability.SetBuildHooks(hooks)
//	    observability.SetFeatureHooks(hooks)
//	    observability.SetCacheHooks(hooks)
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnLoadStart(ctx, path)
//	m, err := load(path)
//	observability.Build().OnLoadComplete(ctx, path, sections, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives morphology loading events.
type BuildHooks interface {
	OnLoadStart(ctx context.Context, path string)
	OnLoadComplete(ctx context.Context, path string, sections int, duration time.Duration, err error)
}

// =============================================================================
// Feature Hooks
// =============================================================================

// FeatureHooks receives feature evaluation events. target is the kind of
// object the feature ran on: neurite, morphology or population.
type FeatureHooks interface {
	OnFeatureStart(ctx context.Context, name, target string)
	OnFeatureComplete(ctx context.Context, name, target string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives cache events. keyType is "feature" or "stats".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuildHooks ignores every event.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnLoadStart(context.Context, string) {}
func (NoopBuildHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
}

// NoopFeatureHooks ignores every event.
type NoopFeatureHooks struct{}

func (NoopFeatureHooks) OnFeatureStart(context.Context, string, string) {}
func (NoopFeatureHooks) OnFeatureComplete(context.Context, string, string, time.Duration, error) {
}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	buildHooks   BuildHooks   = NoopBuildHooks{}
	featureHooks FeatureHooks = NoopFeatureHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetBuildHooks registers build hooks. A nil h is ignored.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetFeatureHooks registers feature hooks. A nil h is ignored.
func SetFeatureHooks(h FeatureHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		featureHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Feature returns the registered feature hooks.
func Feature() FeatureHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return featureHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores the no-op hooks. Tests use it to isolate registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	featureHooks = NoopFeatureHooks{}
	cacheHooks = NoopCacheHooks{}
}
