package features

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/morph"
	"github.com/matzehuels/arbor/pkg/observability"
)

// Getter evaluates features through a registry and caches morphology
// results. Entries are keyed by the registry namespace and the morphology
// fingerprint, so a changed point table never hits an old entry and
// registries may share one cache.
type Getter struct {
	Registry *Registry
	Cache    cache.Cache
	Keyer    cache.Keyer
	// TTL of cached values; zero never expires.
	TTL time.Duration
}

// NewGetter returns a getter over the default registry. A nil c disables
// caching.
func NewGetter(c cache.Cache) *Getter {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Getter{Registry: Default, Cache: c, Keyer: cache.NewDefaultKeyer()}
}

// Get is [Registry.Get] with caching for *morph.Morphology targets and
// feature hooks for every target.
func (g *Getter) Get(ctx context.Context, name string, target any, opts ...Option) (v Value, err error) {
	kind := targetKind(target)
	hooks := observability.Feature()
	hooks.OnFeatureStart(ctx, name, kind)
	start := time.Now()
	defer func() { hooks.OnFeatureComplete(ctx, name, kind, time.Since(start), err) }()

	m, ok := target.(*morph.Morphology)
	if !ok {
		return g.registry().Get(name, target, opts...)
	}

	key := g.key(m, name, newOptions(opts))
	if data, hit, cerr := g.Cache.Get(ctx, key); cerr == nil && hit {
		var cached Value
		if json.Unmarshal(data, &cached) == nil {
			observability.Cache().OnCacheHit(ctx, "feature")
			return cached, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "feature")

	v, err = g.registry().Get(name, m, opts...)
	if err != nil {
		return Value{}, err
	}
	if data, merr := json.Marshal(v); merr == nil {
		if g.Cache.Set(ctx, key, data, g.TTL) == nil {
			observability.Cache().OnCacheSet(ctx, "feature", len(data))
		}
	}
	return v, nil
}

// Clear drops every cached value when the backend supports it.
func (g *Getter) Clear(ctx context.Context) error {
	return cache.Clear(ctx, g.Cache)
}

func (g *Getter) registry() *Registry {
	if g.Registry == nil {
		return Default
	}
	return g.Registry
}

func (g *Getter) key(m *morph.Morphology, name string, o *Options) string {
	keyer := g.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	target := "morphology"
	if m.ProcessSubtrees() {
		target = "morphology+subtrees"
	}
	return keyer.FeatureKey(m.Fingerprint(), name, cache.FeatureKeyOpts{
		Registry:    g.registry().Namespace(),
		Target:      target,
		NeuriteType: o.NeuriteType.String(),
		SectionType: o.SectionType.String(),
		Params:      o.params,
	})
}

func targetKind(target any) string {
	switch target.(type) {
	case *morph.Neurite, []*morph.Neurite:
		return "neurite"
	case *morph.Morphology:
		return "morphology"
	case []*morph.Morphology, *morph.Population:
		return "population"
	default:
		return "unknown"
	}
}
