package features

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/morph"
)

// Scope is the kind of object a feature is computed on.
type Scope int

const (
	ScopeNeurite Scope = iota
	ScopeMorphology
	ScopePopulation
)

var scopeNames = [...]string{"neurite", "morphology", "population"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return "unknown"
}

// NeuriteFunc computes a feature over the sections of a neurite view. The
// view is already restricted to the requested section type.
type NeuriteFunc func(v *morph.SubtreeView, o *Options) (Value, error)

// MorphologyFunc computes a feature over a whole morphology.
type MorphologyFunc func(m *morph.Morphology, o *Options) (Value, error)

// PopulationFunc computes a feature over all members of a population.
type PopulationFunc func(ms []*morph.Morphology, o *Options) (Value, error)

// Feature is a registered feature.
type Feature struct {
	Name  string
	Scope Scope
	Shape Shape
	Doc   string

	neurite    NeuriteFunc
	morphology MorphologyFunc
	population PopulationFunc
}

// Registry maps feature names to implementations, one table per
// scope. A name may exist in several scopes.
type Registry struct {
	mu        sync.RWMutex
	namespace string
	features  [3]map[string]*Feature
}

// NewRegistry returns an empty registry with a unique namespace. Cached
// values of distinct registries never collide, even in a shared cache.
func NewRegistry() *Registry {
	return NewNamedRegistry("registry-" + uuid.NewString())
}

// NewNamedRegistry returns an empty registry with the given namespace. Use a
// stable name to reuse cached values across processes; two registries with
// the same name must compute the same values.
func NewNamedRegistry(namespace string) *Registry {
	r := &Registry{namespace: namespace}
	for i := range r.features {
		r.features[i] = make(map[string]*Feature)
	}
	return r
}

// Namespace identifies the registry in cache keys.
func (r *Registry) Namespace() string {
	return r.namespace
}

// Default holds the built-in features.
var Default = NewNamedRegistry("default")

func (r *Registry) register(f *Feature) error {
	if err := errors.ValidateFeatureName(f.Name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ns := r.features[f.Scope]
	if _, dup := ns[f.Name]; dup {
		return errors.NeuroMError("%s feature %q is already registered", f.Scope, f.Name)
	}
	ns[f.Name] = f
	return nil
}

// RegisterNeurite adds a neurite feature.
func (r *Registry) RegisterNeurite(name string, shape Shape, doc string, fn NeuriteFunc) error {
	return r.register(&Feature{Name: name, Scope: ScopeNeurite, Shape: shape, Doc: doc, neurite: fn})
}

// RegisterMorphology adds a morphology feature.
func (r *Registry) RegisterMorphology(name string, shape Shape, doc string, fn MorphologyFunc) error {
	return r.register(&Feature{Name: name, Scope: ScopeMorphology, Shape: shape, Doc: doc, morphology: fn})
}

// RegisterPopulation adds a population feature.
func (r *Registry) RegisterPopulation(name string, shape Shape, doc string, fn PopulationFunc) error {
	return r.register(&Feature{Name: name, Scope: ScopePopulation, Shape: shape, Doc: doc, population: fn})
}

// Lookup returns the feature registered under name in scope.
func (r *Registry) Lookup(scope Scope, name string) (*Feature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.features[scope][name]
	return f, ok
}

// Has reports whether name is registered in any scope.
func (r *Registry) Has(name string) bool {
	for s := range r.features {
		if _, ok := r.Lookup(Scope(s), name); ok {
			return true
		}
	}
	return false
}

// List returns every feature ordered by scope, then name.
func (r *Registry) List() []*Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Feature
	for _, ns := range r.features {
		names := make([]string, 0, len(ns))
		for n := range ns {
			names = append(names, n)
		}
		slices.Sort(names)
		for _, n := range names {
			out = append(out, ns[n])
		}
	}
	return out
}

// mustRegister panics on registration errors of built-ins.
func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}
