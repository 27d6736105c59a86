package features

import (
	"fmt"
	"maps"
	"strconv"

	"github.com/matzehuels/arbor/pkg/morph"
)

// Options are the keyword arguments of a feature call.
type Options struct {
	// NeuriteType selects neurites on morphology and population targets.
	NeuriteType morph.NeuriteType
	// SectionType selects sections on neurite targets.
	SectionType morph.NeuriteType

	params         map[string]any
	neuriteTypeSet bool
	sectionTypeSet bool
}

// Option sets a feature option.
type Option func(*Options)

// WithNeuriteType restricts morphology and population targets to
// neurites of type t. It is invalid on neurite targets.
func WithNeuriteType(t morph.NeuriteType) Option {
	return func(o *Options) {
		o.NeuriteType = t
		o.neuriteTypeSet = true
	}
}

// WithSectionType restricts neurite targets to sections of type t. It is
// invalid on morphology and population targets.
func WithSectionType(t morph.NeuriteType) Option {
	return func(o *Options) {
		o.SectionType = t
		o.sectionTypeSet = true
	}
}

// WithParam passes a feature specific parameter such as step_size.
func WithParam(name string, v any) Option {
	return func(o *Options) {
		if o.params == nil {
			o.params = make(map[string]any)
		}
		o.params[name] = v
	}
}

func newOptions(opts []Option) *Options {
	o := &Options{NeuriteType: morph.TypeAll, SectionType: morph.TypeAll}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Params returns a copy of the feature parameters.
func (o *Options) Params() map[string]any { return maps.Clone(o.params) }

// Float returns parameter name as a float, or def when it is unset or
// not numeric.
func (o *Options) Float(name string, def float64) float64 {
	switch v := o.params[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// Floats returns parameter name as a float slice, or nil.
func (o *Options) Floats(name string) []float64 {
	switch v := o.params[name].(type) {
	case []float64:
		return v
	case []any:
		out := make([]float64, 0, len(v))
		for _, x := range v {
			switch n := x.(type) {
			case float64:
				out = append(out, n)
			case int:
				out = append(out, float64(n))
			case int64:
				out = append(out, float64(n))
			}
		}
		return out
	}
	return nil
}

// Bool returns parameter name as a bool, or def.
func (o *Options) Bool(name string, def bool) bool {
	if v, ok := o.params[name].(bool); ok {
		return v
	}
	return def
}

// withSectionType returns a copy of o with the section type replaced.
func (o *Options) withSectionType(t morph.NeuriteType) *Options {
	c := *o
	c.SectionType = t
	return &c
}

func (o *Options) String() string {
	return fmt.Sprintf("neurite_type=%s section_type=%s params=%v", o.NeuriteType, o.SectionType, o.params)
}
