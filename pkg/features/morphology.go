package features

import (
	"math"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/morph"
	"github.com/matzehuels/arbor/pkg/morphmath"
)

// neuriteViews returns the non-empty views of the neurites of m selected
// by t, in neurite order.
func neuriteViews(m *morph.Morphology, t morph.NeuriteType) []*morph.SubtreeView {
	var out []*morph.SubtreeView
	for n := range morph.IterNeurites(m, morph.NeuriteIsType(t)) {
		v := morph.NewSubtreeView(n, sectionTypeFor(n, t))
		if v.Empty() {
			continue
		}
		out = append(out, v)
	}
	return out
}

func viewRoots(m *morph.Morphology, t morph.NeuriteType) []*morph.Section {
	var out []*morph.Section
	for _, v := range neuriteViews(m, t) {
		out = append(out, v.Roots()...)
	}
	return out
}

// =============================================================================
// Sholl analysis
// =============================================================================

// maxShollBins bounds the number of radii generated from step_size.
const maxShollBins = 1 << 20

// arange returns start, start+step, ... below stop.
func arange(start, stop, step float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) {
		return nil, errors.NeuroMError("step_size must be positive, got %g", step)
	}
	count := math.Ceil((stop - start) / step)
	if math.IsNaN(count) || count > maxShollBins {
		return nil, errors.NeuroMError("step_size %g gives more than %d sholl bins", step, maxShollBins)
	}
	n := int(count)
	out := make([]float64, 0, max(n, 0))
	for i := range max(n, 0) {
		out = append(out, start+float64(i)*step)
	}
	return out, nil
}

// maxPointDistance returns the largest distance from c to any section
// point of the selected neurites, and false when there are none.
func maxPointDistance(m *morph.Morphology, t morph.NeuriteType, c morphmath.Vector) (float64, bool) {
	var best float64
	found := false
	for _, v := range neuriteViews(m, t) {
		for s := range v.Sections(morph.PreOrder) {
			for _, p := range s.Points {
				best = max(best, morphmath.Distance(c, p.Pos()))
				found = true
			}
		}
	}
	return best, found
}

// shollCrossings counts, per radius, the segments of the selected
// neurites whose ends lie on either side of the sphere around the soma
// center. A neurite bending back across a sphere counts each time.
func shollCrossings(m *morph.Morphology, t morph.NeuriteType, radii []float64) []float64 {
	c := m.Soma().Center()
	counts := make([]float64, len(radii))
	for _, v := range neuriteViews(m, t) {
		for s := range v.Sections(morph.PreOrder) {
			for seg := range s.Segments() {
				d0 := squaredDistance(c, seg.A.Pos())
				d1 := squaredDistance(c, seg.B.Pos())
				for i, r := range radii {
					r2 := r * r
					if (d0 <= r2 && r2 <= d1) || (d1 <= r2 && r2 <= d0) {
						counts[i]++
					}
				}
			}
		}
	}
	return counts
}

func squaredDistance(a, b morphmath.Vector) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}

func requireSomaCenter(m *morph.Morphology, feature string) error {
	if !m.Soma().HasCenter() {
		return errors.NeuroMError("%s: morphology %q has no soma center", feature, m.Name)
	}
	return nil
}

func shollFrequency(m *morph.Morphology, o *Options) (Value, error) {
	if err := requireSomaCenter(m, "sholl_frequency"); err != nil {
		return Value{}, err
	}
	bins := o.Floats("bins")
	if bins == nil {
		far, ok := maxPointDistance(m, o.NeuriteType, m.Soma().Center())
		if !ok {
			return Sequence(nil), nil
		}
		r := m.Soma().Radius()
		var err error
		if bins, err = arange(r, r+far, o.Float("step_size", 10)); err != nil {
			return Value{}, err
		}
	}
	return Sequence(shollCrossings(m, o.NeuriteType, bins)), nil
}

// populationShollFrequency uses common bins from the smallest soma radius
// out to the farthest point of any member and sums the member counts.
func populationShollFrequency(ms []*morph.Morphology, o *Options) (Value, error) {
	for _, m := range ms {
		if err := requireSomaCenter(m, "sholl_frequency"); err != nil {
			return Value{}, err
		}
	}
	bins := o.Floats("bins")
	if bins == nil {
		var far float64
		found := false
		minSoma := math.Inf(1)
		for _, m := range ms {
			if d, ok := maxPointDistance(m, o.NeuriteType, m.Soma().Center()); ok {
				far = max(far, d)
				found = true
			}
			minSoma = min(minSoma, m.Soma().Radius())
		}
		if !found {
			return Sequence(nil), nil
		}
		var err error
		if bins, err = arange(minSoma, minSoma+far, o.Float("step_size", 10)); err != nil {
			return Value{}, err
		}
	}
	sum := make([]float64, len(bins))
	for _, m := range ms {
		for i, c := range shollCrossings(m, o.NeuriteType, bins) {
			sum[i] += c
		}
	}
	return Sequence(sum), nil
}

// =============================================================================
// Registration
// =============================================================================

func init() {
	r := Default

	mustRegister(r.RegisterMorphology("soma_radius", ShapeScalar,
		"Radius of the soma.", func(m *morph.Morphology, _ *Options) (Value, error) {
			return Scalar(m.Soma().Radius()), nil
		}))
	mustRegister(r.RegisterMorphology("soma_surface_area", ShapeScalar,
		"Surface area of a sphere with the soma radius.", func(m *morph.Morphology, _ *Options) (Value, error) {
			return Scalar(m.Soma().Area()), nil
		}))
	mustRegister(r.RegisterMorphology("number_of_neurites", ShapeScalar,
		"Number of neurites of the requested type.", func(m *morph.Morphology, o *Options) (Value, error) {
			return Scalar(float64(len(neuriteViews(m, o.NeuriteType)))), nil
		}))
	mustRegister(r.RegisterMorphology("trunk_origin_radii", ShapeSequence,
		"Radius of the first point of each trunk.", func(m *morph.Morphology, o *Options) (Value, error) {
			out := []float64{}
			for _, s := range viewRoots(m, o.NeuriteType) {
				out = append(out, s.First().Radius)
			}
			return Sequence(out), nil
		}))
	mustRegister(r.RegisterMorphology("trunk_section_lengths", ShapeSequence,
		"Length of each trunk section.", func(m *morph.Morphology, o *Options) (Value, error) {
			out := []float64{}
			for _, s := range viewRoots(m, o.NeuriteType) {
				out = append(out, s.Length())
			}
			return Sequence(out), nil
		}))
	mustRegister(r.RegisterMorphology("section_radial_distances", ShapeSequence,
		"Distance from the soma center to the end of each section.", func(m *morph.Morphology, o *Options) (Value, error) {
			c := m.Soma().Center()
			out := []float64{}
			for _, v := range neuriteViews(m, o.NeuriteType) {
				for s := range v.Sections(morph.PreOrder) {
					out = append(out, morphmath.Distance(c, s.Last().Pos()))
				}
			}
			return Sequence(out), nil
		}))
	mustRegister(r.RegisterMorphology("max_radial_distance", ShapeScalar,
		"Largest distance from the soma center to a terminal section end.", func(m *morph.Morphology, o *Options) (Value, error) {
			c := m.Soma().Center()
			var best float64
			for _, v := range neuriteViews(m, o.NeuriteType) {
				best = max(best, maxLeafDistance(v, c))
			}
			return Scalar(best), nil
		}))
	mustRegister(r.RegisterMorphology("sholl_frequency", ShapeSequence,
		"Segment crossings of spheres around the soma center, every step_size from the soma surface.",
		shollFrequency))

	mustRegister(r.RegisterPopulation("sholl_frequency", ShapeSequence,
		"Sholl frequency summed over all members on common bins.", populationShollFrequency))
}
