package morph

import (
	"fmt"
	"iter"
	"sync"
)

// Loader builds a morphology from a path.
type Loader func(path string) (*Morphology, error)

// Population is an ordered collection of morphologies. Members are either
// resident or resolved from a path when first accessed.
type Population struct {
	Name string

	members      []*member
	loader       Loader
	cache        bool
	ignoreErrors bool

	mu              sync.Mutex
	processSubtrees *bool
	diags           Diagnostics
}

type member struct {
	path string

	once  sync.Once
	morph *Morphology
	err   error
}

// PopulationOption configures a lazily loaded population.
type PopulationOption func(*Population)

// WithCache keeps loaded members in memory. Without it every access
// reloads the member.
func WithCache(enabled bool) PopulationOption {
	return func(p *Population) { p.cache = enabled }
}

// WithIgnoreErrors skips members that fail to load instead of failing the
// iteration. Skipped members are recorded as diagnostics.
func WithIgnoreErrors(enabled bool) PopulationOption {
	return func(p *Population) { p.ignoreErrors = enabled }
}

// WithName sets the population name.
func WithName(name string) PopulationOption {
	return func(p *Population) { p.Name = name }
}

// NewPopulation returns a population of resident morphologies.
func NewPopulation(morphs ...*Morphology) *Population {
	p := &Population{Name: "Population", cache: true}
	for _, m := range morphs {
		mb := &member{path: m.Name, morph: m}
		mb.once.Do(func() {})
		p.members = append(p.members, mb)
	}
	return p
}

// LoadPopulation returns a population whose members are loaded from paths
// by load when accessed.
func LoadPopulation(paths []string, load Loader, opts ...PopulationOption) *Population {
	p := &Population{Name: "Population", loader: load, cache: true}
	for _, opt := range opts {
		opt(p)
	}
	for _, path := range paths {
		p.members = append(p.members, &member{path: path})
	}
	return p
}

// Len returns the number of members, including members not yet loaded.
func (p *Population) Len() int { return len(p.members) }

// Paths returns the member paths, or names for resident members.
func (p *Population) Paths() []string {
	out := make([]string, len(p.members))
	for i, m := range p.members {
		out[i] = m.path
	}
	return out
}

// At returns member i, loading it if necessary.
func (p *Population) At(i int) (*Morphology, error) {
	if i < 0 || i >= len(p.members) {
		return nil, fmt.Errorf("population index %d out of range [0, %d)", i, len(p.members))
	}
	mb := p.members[i]
	var m *Morphology
	var err error
	if p.cache || p.loader == nil {
		mb.once.Do(func() { mb.morph, mb.err = p.loader(mb.path) })
		m, err = mb.morph, mb.err
	} else {
		m, err = p.loader(mb.path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", mb.path, err)
	}
	p.mu.Lock()
	mode := p.processSubtrees
	p.mu.Unlock()
	if mode != nil {
		m = m.withProcessSubtrees(*mode)
	}
	return m, nil
}

// All yields the members in order. A member that fails to load ends the
// iteration with its error, unless the population ignores errors, in
// which case the member is skipped and recorded as a diagnostic.
func (p *Population) All() iter.Seq2[*Morphology, error] {
	return func(yield func(*Morphology, error) bool) {
		for i := range p.members {
			m, err := p.At(i)
			if err != nil {
				if p.ignoreErrors {
					p.mu.Lock()
					p.diags.add(LevelWarning, DiagPopulationLoadError, i, "%v", err)
					p.mu.Unlock()
					continue
				}
				yield(nil, err)
				return
			}
			if !yield(m, nil) {
				return
			}
		}
	}
}

// Morphologies loads and returns every member.
func (p *Population) Morphologies() ([]*Morphology, error) {
	var out []*Morphology
	for m, err := range p.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Neurites returns the neurites of every member in member order.
func (p *Population) Neurites() ([]*Neurite, error) {
	ms, err := p.Morphologies()
	if err != nil {
		return nil, err
	}
	var out []*Neurite
	for _, m := range ms {
		out = append(out, m.neurites...)
	}
	return out, nil
}

// SetProcessSubtrees sets the subtree mode members are accessed with.
// Members whose own mode differs are returned as views sharing their
// sections; the member morphologies themselves are not modified.
func (p *Population) SetProcessSubtrees(enabled bool) {
	p.mu.Lock()
	p.processSubtrees = &enabled
	p.mu.Unlock()
}

// Diagnostics returns the findings recorded while loading members.
func (p *Population) Diagnostics() Diagnostics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append(Diagnostics(nil), p.diags...)
}
