package morph

import "github.com/matzehuels/arbor/pkg/morphmath"

// noSection marks the absent parent of a root section.
const noSection = -1

// Section is a run of points between two boundary points. Sections live in
// the arena of the [Tree] that built them and refer to their parent and
// children by index.
type Section struct {
	// ID is the index of the section in its tree, assigned in depth-first
	// pre-order over the neurites in file order.
	ID int
	// Type is the neurite type of the section's own points.
	Type NeuriteType
	// Points holds at least one point; non-root sections start with a copy
	// of the parent's last point.
	Points []Point

	parent   int
	children []int
	tree     *Tree
}

// Parent returns the parent section, or nil for a root section.
func (s *Section) Parent() *Section {
	if s.parent == noSection {
		return nil
	}
	return s.tree.sections[s.parent]
}

// Children returns the child sections in file order.
func (s *Section) Children() []*Section {
	out := make([]*Section, len(s.children))
	for i, c := range s.children {
		out[i] = s.tree.sections[c]
	}
	return out
}

// NumChildren returns the number of child sections.
func (s *Section) NumChildren() int { return len(s.children) }

// IsRoot reports whether s is attached to the soma or to nothing.
func (s *Section) IsRoot() bool { return s.parent == noSection }

// IsLeaf reports whether s has no children.
func (s *Section) IsLeaf() bool { return len(s.children) == 0 }

// IsForkingPoint reports whether s ends in two or more children.
func (s *Section) IsForkingPoint() bool { return len(s.children) > 1 }

// IsBifurcationPoint reports whether s ends in exactly two children.
func (s *Section) IsBifurcationPoint() bool { return len(s.children) == 2 }

// IsUnifurcation reports whether s has exactly one child.
func (s *Section) IsUnifurcation() bool { return len(s.children) == 1 }

// IsHomogeneousPoint reports whether every child of s has the type of s.
// Leaves are homogeneous.
func (s *Section) IsHomogeneousPoint() bool {
	for _, c := range s.children {
		if s.tree.sections[c].Type != s.Type {
			return false
		}
	}
	return true
}

// Positions returns the point positions.
func (s *Section) Positions() []morphmath.Vector {
	out := make([]morphmath.Vector, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Pos()
	}
	return out
}

// Length returns the path length along the section points.
func (s *Section) Length() float64 {
	return morphmath.PathLength(s.Positions())
}

// Area returns the summed lateral area of the section segments.
func (s *Section) Area() float64 {
	var a float64
	for seg := range s.Segments() {
		a += seg.Area()
	}
	return a
}

// Volume returns the summed volume of the section segments.
func (s *Section) Volume() float64 {
	var v float64
	for seg := range s.Segments() {
		v += seg.Volume()
	}
	return v
}

// First returns the first point.
func (s *Section) First() Point { return s.Points[0] }

// Last returns the last point.
func (s *Section) Last() Point { return s.Points[len(s.Points)-1] }

// BranchOrder returns the number of ancestors of s.
func (s *Section) BranchOrder() int {
	n := 0
	for p := s.Parent(); p != nil; p = p.Parent() {
		n++
	}
	return n
}

// PathLength returns the length from the start of the neurite to the end
// of s.
func (s *Section) PathLength() float64 {
	var l float64
	for u := range s.Upstream() {
		l += u.Length()
	}
	return l
}
