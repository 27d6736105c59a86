package features

import (
	"iter"
	"math"

	"github.com/matzehuels/arbor/pkg/morph"
	"github.com/matzehuels/arbor/pkg/morphmath"
)

// =============================================================================
// Section selection
// =============================================================================

// sections yields the sections of v selected by t. Forks whose children
// differ in type are dropped from fork and bifurcation traversals of a
// typed view: inside one subtree they do not branch.
func sections(v *morph.SubtreeView, t morph.Traversal) iter.Seq[*morph.Section] {
	seq := v.Sections(t)
	if v.Type() == morph.TypeAll || (t != morph.ForkPoints && t != morph.BifurcationPoints) {
		return seq
	}
	return homogeneous(seq)
}

// bifurcations yields the homogeneous bifurcation points of v. Angle and
// asymmetry features never use heterogeneous forks.
func bifurcations(v *morph.SubtreeView) iter.Seq[*morph.Section] {
	return homogeneous(v.Sections(morph.BifurcationPoints))
}

func homogeneous(seq iter.Seq[*morph.Section]) iter.Seq[*morph.Section] {
	return func(yield func(*morph.Section) bool) {
		for s := range seq {
			if !s.IsHomogeneousPoint() {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}

func countOf(seq iter.Seq[*morph.Section]) Value {
	n := 0
	for range seq {
		n++
	}
	return Scalar(float64(n))
}

func mapSections(seq iter.Seq[*morph.Section], fn func(*morph.Section) float64) Value {
	out := []float64{}
	for s := range seq {
		out = append(out, fn(s))
	}
	return Sequence(out)
}

func sumSections(seq iter.Seq[*morph.Section], fn func(*morph.Section) float64) Value {
	var sum float64
	for s := range seq {
		sum += fn(s)
	}
	return Scalar(sum)
}

func segments(v *morph.SubtreeView) iter.Seq[morph.Segment] {
	return func(yield func(morph.Segment) bool) {
		for s := range v.Sections(morph.PreOrder) {
			for seg := range s.Segments() {
				if !yield(seg) {
					return
				}
			}
		}
	}
}

// origin is the first point of the neurite root. Radial distances of
// neurite features are measured from it.
func origin(v *morph.SubtreeView) morphmath.Vector {
	return v.Neurite().Root().First().Pos()
}

// =============================================================================
// Bifurcation geometry
// =============================================================================

// firstMoved returns the first point of s after its start that is not at
// the start position, or the second point when all coincide.
func firstMoved(s *morph.Section) morphmath.Vector {
	p0 := s.First().Pos()
	for _, p := range s.Points[1:] {
		if p.Pos() != p0 {
			return p.Pos()
		}
	}
	return s.Points[1].Pos()
}

func localBifurcationAngle(s *morph.Section) float64 {
	c := s.Children()
	return morphmath.AngleThreePoints(firstMoved(c[0]), s.Last().Pos(), firstMoved(c[1]))
}

func remoteBifurcationAngle(s *morph.Section) float64 {
	c := s.Children()
	return morphmath.AngleThreePoints(c[0].Last().Pos(), s.Last().Pos(), c[1].Last().Pos())
}

// partitionAsymmetry compares the section counts n and m of the two child
// subtrees as |n-m| / (n+m). The Uylings variant divides by n+m-2 and is
// 0 when both children are leaves.
func partitionAsymmetry(s *morph.Section, uylings bool) float64 {
	c := s.Children()
	n, m := subtreeSize(c[0]), subtreeSize(c[1])
	d := n + m
	if uylings {
		if d <= 2 {
			return 0
		}
		d -= 2
	}
	return math.Abs(float64(n-m)) / float64(d)
}

func subtreeSize(s *morph.Section) int {
	n := 0
	for range s.PreOrder() {
		n++
	}
	return n
}

// =============================================================================
// Registration
// =============================================================================

func init() {
	r := Default

	count := func(t morph.Traversal) NeuriteFunc {
		return func(v *morph.SubtreeView, _ *Options) (Value, error) {
			return countOf(sections(v, t)), nil
		}
	}
	perSection := func(fn func(*morph.Section) float64) NeuriteFunc {
		return func(v *morph.SubtreeView, _ *Options) (Value, error) {
			return mapSections(sections(v, morph.PreOrder), fn), nil
		}
	}
	total := func(fn func(*morph.Section) float64) NeuriteFunc {
		return func(v *morph.SubtreeView, _ *Options) (Value, error) {
			return sumSections(sections(v, morph.PreOrder), fn), nil
		}
	}
	perBifurcation := func(fn func(*morph.Section) float64) NeuriteFunc {
		return func(v *morph.SubtreeView, _ *Options) (Value, error) {
			return mapSections(bifurcations(v), fn), nil
		}
	}

	mustRegister(r.RegisterNeurite("number_of_sections", ShapeScalar,
		"Number of sections.", count(morph.PreOrder)))
	mustRegister(r.RegisterNeurite("number_of_bifurcations", ShapeScalar,
		"Number of sections with exactly two children.", count(morph.BifurcationPoints)))
	mustRegister(r.RegisterNeurite("number_of_forking_points", ShapeScalar,
		"Number of sections with two or more children.", count(morph.ForkPoints)))
	mustRegister(r.RegisterNeurite("number_of_leaves", ShapeScalar,
		"Number of terminal sections.", count(morph.Leaves)))
	mustRegister(r.RegisterNeurite("number_of_segments", ShapeScalar,
		"Number of segments.", func(v *morph.SubtreeView, _ *Options) (Value, error) {
			n := 0
			for range segments(v) {
				n++
			}
			return Scalar(float64(n)), nil
		}))

	mustRegister(r.RegisterNeurite("total_length", ShapeScalar,
		"Summed section lengths.", total((*morph.Section).Length)))
	mustRegister(r.RegisterNeurite("total_area", ShapeScalar,
		"Summed lateral area of all segments.", total((*morph.Section).Area)))
	mustRegister(r.RegisterNeurite("total_volume", ShapeScalar,
		"Summed volume of all segments.", total((*morph.Section).Volume)))

	mustRegister(r.RegisterNeurite("section_lengths", ShapeSequence,
		"Path length of each section.", perSection((*morph.Section).Length)))
	mustRegister(r.RegisterNeurite("section_areas", ShapeSequence,
		"Lateral area of each section.", perSection((*morph.Section).Area)))
	mustRegister(r.RegisterNeurite("section_volumes", ShapeSequence,
		"Volume of each section.", perSection((*morph.Section).Volume)))
	mustRegister(r.RegisterNeurite("section_branch_orders", ShapeSequence,
		"Number of ancestor sections of each section.", perSection(func(s *morph.Section) float64 {
			return float64(s.BranchOrder())
		})))
	mustRegister(r.RegisterNeurite("section_path_distances", ShapeSequence,
		"Path length from the neurite start to the end of each section.", perSection((*morph.Section).PathLength)))
	mustRegister(r.RegisterNeurite("section_radial_distances", ShapeSequence,
		"Distance from the neurite start to the end of each section.",
		func(v *morph.SubtreeView, _ *Options) (Value, error) {
			o := origin(v)
			return mapSections(sections(v, morph.PreOrder), func(s *morph.Section) float64 {
				return morphmath.Distance(o, s.Last().Pos())
			}), nil
		}))
	mustRegister(r.RegisterNeurite("max_radial_distance", ShapeScalar,
		"Largest distance from the neurite start to a terminal section end.",
		func(v *morph.SubtreeView, _ *Options) (Value, error) {
			return Scalar(maxLeafDistance(v, origin(v))), nil
		}))

	mustRegister(r.RegisterNeurite("segment_lengths", ShapeSequence,
		"Length of each segment.", func(v *morph.SubtreeView, _ *Options) (Value, error) {
			out := []float64{}
			for seg := range segments(v) {
				out = append(out, seg.Length())
			}
			return Sequence(out), nil
		}))
	mustRegister(r.RegisterNeurite("segment_radii", ShapeSequence,
		"Mean radius of each segment.", func(v *morph.SubtreeView, _ *Options) (Value, error) {
			out := []float64{}
			for seg := range segments(v) {
				out = append(out, seg.Radius())
			}
			return Sequence(out), nil
		}))

	mustRegister(r.RegisterNeurite("local_bifurcation_angles", ShapeSequence,
		"Opening angle between the first segments of both children of each bifurcation.",
		perBifurcation(localBifurcationAngle)))
	mustRegister(r.RegisterNeurite("remote_bifurcation_angles", ShapeSequence,
		"Opening angle between the end points of both children of each bifurcation.",
		perBifurcation(remoteBifurcationAngle)))
	mustRegister(r.RegisterNeurite("partition_asymmetry", ShapeSequence,
		"Partition asymmetry of the child subtrees of each bifurcation; param uylings.",
		func(v *morph.SubtreeView, o *Options) (Value, error) {
			uylings := o.Bool("uylings", false)
			return mapSections(bifurcations(v), func(s *morph.Section) float64 {
				return partitionAsymmetry(s, uylings)
			}), nil
		}))
}

func maxLeafDistance(v *morph.SubtreeView, o morphmath.Vector) float64 {
	var best float64
	for s := range sections(v, morph.Leaves) {
		best = max(best, morphmath.Distance(o, s.Last().Pos()))
	}
	return best
}
