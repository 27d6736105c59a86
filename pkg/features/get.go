package features

import (
	"fmt"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/morph"
)

// Get evaluates a feature of the default registry.
func Get(name string, target any, opts ...Option) (Value, error) {
	return Default.Get(name, target, opts...)
}

// Get evaluates feature name on target.
//
// Target is a *morph.Neurite, []*morph.Neurite, *morph.Morphology,
// []*morph.Morphology or *morph.Population. Resolution:
//
//   - Neurites use the neurite namespace. Results of several neurites are
//     combined: scalars summed, sequences concatenated.
//   - A morphology uses its own namespace first. Otherwise the neurite
//     feature runs on every neurite matching the neurite type and the
//     results are combined.
//   - A population uses its own namespace first. Otherwise a morphology
//     feature runs on each member; scalar results are collected into a
//     sequence and sequences concatenated. Neurite features are not
//     valid on a population.
//
// WithNeuriteType on a neurite target and WithSectionType on a
// morphology or population target fail with NEUROM_ERROR, as does an
// unknown name or an unsupported target. Get never mutates target.
func (r *Registry) Get(name string, target any, opts ...Option) (Value, error) {
	o := newOptions(opts)
	switch t := target.(type) {
	case *morph.Neurite:
		if o.neuriteTypeSet {
			return Value{}, errors.NeuroMError("neurite_type is not valid for a neurite; use section_type")
		}
		return r.getNeurites(name, []*morph.Neurite{t}, o)
	case []*morph.Neurite:
		if o.neuriteTypeSet {
			return Value{}, errors.NeuroMError("neurite_type is not valid for neurites; use section_type")
		}
		return r.getNeurites(name, t, o)
	case *morph.Morphology:
		if o.sectionTypeSet {
			return Value{}, errors.NeuroMError("section_type is not valid for a morphology; use neurite_type")
		}
		return r.getMorphology(name, t, o)
	case []*morph.Morphology:
		if o.sectionTypeSet {
			return Value{}, errors.NeuroMError("section_type is not valid for a population; use neurite_type")
		}
		return r.getPopulation(name, t, o)
	case *morph.Population:
		if o.sectionTypeSet {
			return Value{}, errors.NeuroMError("section_type is not valid for a population; use neurite_type")
		}
		if err := r.checkPopulationName(name); err != nil {
			return Value{}, err
		}
		ms, err := t.Morphologies()
		if err != nil {
			return Value{}, fmt.Errorf("population %s: %w", t.Name, err)
		}
		return r.getPopulation(name, ms, o)
	case nil:
		return Value{}, errors.NeuroMError("feature %q: nil target", name)
	default:
		return Value{}, errors.NeuroMError("feature %q: unsupported target %T", name, target)
	}
}

func (r *Registry) getNeurites(name string, ns []*morph.Neurite, o *Options) (Value, error) {
	f, ok := r.Lookup(ScopeNeurite, name)
	if !ok {
		return Value{}, errors.NeuroMError("%q is not a neurite feature", name)
	}
	vals := make([]Value, 0, len(ns))
	for _, n := range ns {
		v, err := f.evalNeurite(n, o.SectionType, o)
		if err != nil {
			return Value{}, err
		}
		vals = append(vals, v)
	}
	return Combine(f.Shape, vals)
}

func (r *Registry) getMorphology(name string, m *morph.Morphology, o *Options) (Value, error) {
	if f, ok := r.Lookup(ScopeMorphology, name); ok {
		v, err := f.morphology(m, o)
		if err != nil {
			return Value{}, err
		}
		return f.checkShape(v)
	}

	f, ok := r.Lookup(ScopeNeurite, name)
	if !ok {
		return Value{}, errors.NeuroMError("%q is not a morphology or neurite feature", name)
	}
	var vals []Value
	for n := range morph.IterNeurites(m, morph.NeuriteIsType(o.NeuriteType)) {
		v, err := f.evalNeurite(n, sectionTypeFor(n, o.NeuriteType), o)
		if err != nil {
			return Value{}, err
		}
		vals = append(vals, v)
	}
	return Combine(f.Shape, vals)
}

// checkPopulationName accepts population and morphology features. Neurite
// features have no meaning on a raw population.
func (r *Registry) checkPopulationName(name string) error {
	if _, ok := r.Lookup(ScopePopulation, name); ok {
		return nil
	}
	if _, ok := r.Lookup(ScopeMorphology, name); ok {
		return nil
	}
	if _, ok := r.Lookup(ScopeNeurite, name); ok {
		return errors.NeuroMError("%q is a neurite feature; not valid on a population", name)
	}
	return errors.NeuroMError("%q is not a population or morphology feature", name)
}

func (r *Registry) getPopulation(name string, ms []*morph.Morphology, o *Options) (Value, error) {
	if f, ok := r.Lookup(ScopePopulation, name); ok {
		v, err := f.population(ms, o)
		if err != nil {
			return Value{}, err
		}
		return f.checkShape(v)
	}
	if err := r.checkPopulationName(name); err != nil {
		return Value{}, err
	}
	f, _ := r.Lookup(ScopeMorphology, name)
	vals := make([]Value, 0, len(ms))
	for _, m := range ms {
		v, err := f.morphology(m, o)
		if err == nil {
			v, err = f.checkShape(v)
		}
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", m.Name, err)
		}
		vals = append(vals, v)
	}
	return collect(vals), nil
}

// sectionTypeFor is the section restriction applied to a neurite selected
// by neurite type t: the matching subtrees when subtree processing is on,
// the whole neurite otherwise.
func sectionTypeFor(n *morph.Neurite, t morph.NeuriteType) morph.NeuriteType {
	if n.ProcessSubtrees() {
		return t
	}
	return morph.TypeAll
}

// evalNeurite runs a neurite feature on the part of n selected by t.
// With subtree processing t picks the homogeneous subtrees of that type;
// without it t selects n as a whole by its root type.
func (f *Feature) evalNeurite(n *morph.Neurite, t morph.NeuriteType, o *Options) (Value, error) {
	var view *morph.SubtreeView
	switch {
	case t == morph.TypeAll:
		view = morph.NewSubtreeView(n, morph.TypeAll)
	case n.ProcessSubtrees():
		view = morph.NewSubtreeView(n, t)
		if view.Empty() {
			return Zero(f.Shape), nil
		}
	case n.Matches(t):
		view = morph.NewSubtreeView(n, morph.TypeAll)
	default:
		return Zero(f.Shape), nil
	}
	v, err := f.neurite(view, o.withSectionType(t))
	if err != nil {
		return Value{}, err
	}
	return f.checkShape(v)
}

func (f *Feature) checkShape(v Value) (Value, error) {
	if v.Shape() != f.Shape {
		return Value{}, errors.NeuroMError("feature %q returned a %s, registered as %s", f.Name, v.Shape(), f.Shape)
	}
	return v, nil
}
