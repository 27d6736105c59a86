package check

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/morph"
	"github.com/matzehuels/arbor/pkg/morphmath"
)

func countType(m *morph.Morphology, t morph.NeuriteType) int {
	n := 0
	for _, x := range m.Neurites() {
		if x.Type() == t {
			n++
		}
	}
	return n
}

func hasType(t morph.NeuriteType) MorphologyFunc {
	return func(m *morph.Morphology, a Args) (Result, error) {
		return Result{Status: countType(m, t) >= a.Int("min_number")}, nil
	}
}

// sectionsWithChildren fails every section whose child count satisfies
// bad.
func sectionsWithChildren(bad func(n int) bool) MorphologyFunc {
	return func(m *morph.Morphology, _ Args) (Result, error) {
		var info []string
		for _, s := range m.Sections() {
			if bad(s.NumChildren()) {
				info = append(info, strconv.Itoa(s.ID))
			}
		}
		return failing(info), nil
	}
}

func axisIndex(name string) (int, error) {
	switch name {
	case "x", "X":
		return 0, nil
	case "y", "Y":
		return 1, nil
	case "z", "Z":
		return 2, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "axis must be x, y or z, got %q", name)
}

func init() {
	one := Param{Name: "min_number", Default: 1}
	threshold := Param{Name: "threshold", Default: 0.0}

	morphology("has_axon", "At least one neurite is an axon.",
		func(m *morph.Morphology, _ Args) (Result, error) {
			return Result{Status: countType(m, morph.TypeAxon) > 0}, nil
		})
	morphology("has_basal_dendrite", "At least min_number neurites are basal dendrites.",
		hasType(morph.TypeBasalDendrite), one)
	morphology("has_apical_dendrite", "At least min_number neurites are apical dendrites.",
		hasType(morph.TypeApicalDendrite), one)

	morphology("has_all_nonzero_segment_lengths", "Every segment is longer than threshold.",
		func(m *morph.Morphology, a Args) (Result, error) {
			var info []string
			for _, s := range m.Sections() {
				i := 0
				for seg := range s.Segments() {
					if seg.Length() <= a.Float("threshold") {
						info = append(info, fmt.Sprintf("%d:%d", s.ID, i))
					}
					i++
				}
			}
			return failing(info), nil
		}, threshold)

	morphology("has_all_nonzero_section_lengths", "Every section is longer than threshold.",
		func(m *morph.Morphology, a Args) (Result, error) {
			var info []string
			for _, s := range m.Sections() {
				if s.Length() <= a.Float("threshold") {
					info = append(info, strconv.Itoa(s.ID))
				}
			}
			return failing(info), nil
		}, threshold)

	morphology("has_all_nonzero_neurite_radii", "Every neurite point has a radius above threshold.",
		func(m *morph.Morphology, a Args) (Result, error) {
			var info []string
			for _, s := range m.Sections() {
				for i, p := range s.Points {
					if p.Radius <= a.Float("threshold") {
						info = append(info, fmt.Sprintf("%d:%d", s.ID, i))
					}
				}
			}
			return failing(info), nil
		}, threshold)

	morphology("has_nonzero_soma_radius", "The soma radius is above threshold.",
		func(m *morph.Morphology, a Args) (Result, error) {
			return Result{Status: m.Soma().Radius() > a.Float("threshold")}, nil
		}, threshold)

	morphology("has_no_jumps", "No segment moves more than max_distance along axis. The first segment of each neurite is skipped.",
		func(m *morph.Morphology, a Args) (Result, error) {
			axis, err := axisIndex(a.String("axis"))
			if err != nil {
				return Result{}, err
			}
			var info []string
			for _, n := range m.Neurites() {
				first := true
				for s := range n.Sections() {
					for seg := range s.Segments() {
						if first {
							first = false
							continue
						}
						if math.Abs(seg.A.Pos()[axis]-seg.B.Pos()[axis]) > a.Float("max_distance") {
							info = append(info, strconv.Itoa(s.ID))
						}
					}
				}
			}
			return failing(info), nil
		}, Param{Name: "max_distance", Default: 30.0}, Param{Name: "axis", Default: "z"})

	morphology("has_no_root_node_jumps", "Every neurite starts within radius_multiplier soma radii of the soma center.",
		func(m *morph.Morphology, a Args) (Result, error) {
			limit := a.Float("radius_multiplier") * m.Soma().Radius()
			var info []string
			for _, n := range m.Neurites() {
				if morphmath.Distance(n.Root().First().Pos(), m.Soma().Center()) > limit {
					info = append(info, strconv.Itoa(n.Root().ID))
				}
			}
			return failing(info), nil
		}, Param{Name: "radius_multiplier", Default: 2.0})

	morphology("has_no_fat_ends", "No leaf ends with a radius multiple_of_mean times the mean of its final points.",
		func(m *morph.Morphology, a Args) (Result, error) {
			k := max(a.Int("final_point_count"), 1)
			var info []string
			for _, s := range m.Sections() {
				if !s.IsLeaf() {
					continue
				}
				tail := s.Points[1:]
				if len(tail) > k {
					tail = tail[len(tail)-k:]
				}
				var mean float64
				for _, p := range tail {
					mean += p.Radius
				}
				mean /= float64(len(tail))
				if mean*a.Float("multiple_of_mean") <= s.Last().Radius {
					info = append(info, strconv.Itoa(s.ID))
				}
			}
			return failing(info), nil
		}, Param{Name: "multiple_of_mean", Default: 2.0}, Param{Name: "final_point_count", Default: 5})

	morphology("has_no_narrow_start", "No neurite starts narrower than frac times its second point.",
		func(m *morph.Morphology, a Args) (Result, error) {
			var info []string
			for _, n := range m.Neurites() {
				pts := n.Root().Points
				if len(pts) > 1 && pts[0].Radius < a.Float("frac")*pts[1].Radius {
					info = append(info, strconv.Itoa(n.Root().ID))
				}
			}
			return failing(info), nil
		}, Param{Name: "frac", Default: 0.9})

	morphology("has_multifurcation", "No section has more than three children.",
		sectionsWithChildren(func(n int) bool { return n > 3 }))
	morphology("has_unifurcation", "No section has exactly one child.",
		sectionsWithChildren(func(n int) bool { return n == 1 }))
	morphology("has_no_single_children", "No section has exactly one child.",
		sectionsWithChildren(func(n int) bool { return n == 1 }))
}
