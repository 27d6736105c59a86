package morph

import "iter"

// Node is anything rooted at one or more sections: a [Section], a
// [Neurite], a [Morphology] or a [SubtreeView].
type Node interface {
	Roots() []*Section
}

// Roots implements [Node] for a single section subtree.
func (s *Section) Roots() []*Section { return []*Section{s} }

// Traversal selects which sections of a tree an iterator yields.
type Traversal int

const (
	// PreOrder yields every section, parents before children.
	PreOrder Traversal = iota
	// PostOrder yields every section, children before parents.
	PostOrder
	// Leaves yields sections without children.
	Leaves
	// ForkPoints yields sections with two or more children.
	ForkPoints
	// BifurcationPoints yields sections with exactly two children.
	BifurcationPoints
)

var traversalNames = [...]string{"preorder", "postorder", "leaves", "fork_points", "bifurcation_points"}

func (t Traversal) String() string {
	if int(t) < len(traversalNames) {
		return traversalNames[t]
	}
	return "unknown"
}

// SectionFilter selects sections.
type SectionFilter func(*Section) bool

// NeuriteFilter selects neurites.
type NeuriteFilter func(*Neurite) bool

// IsType returns a filter matching sections of any of types. TypeAll
// matches everything; no types also matches everything.
func IsType(types ...NeuriteType) SectionFilter {
	if len(types) == 0 {
		return nil
	}
	ts := Types(types)
	return func(s *Section) bool { return ts.Contains(s.Type) }
}

// NeuriteIsType returns a filter using [Neurite.Matches].
func NeuriteIsType(t NeuriteType) NeuriteFilter {
	return func(n *Neurite) bool { return n.Matches(t) }
}

// PreOrder yields s and its descendants, parents before children.
func (s *Section) PreOrder() iter.Seq[*Section] {
	return func(yield func(*Section) bool) {
		stack := []*Section{s}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(cur) {
				return
			}
			for i := len(cur.children) - 1; i >= 0; i-- {
				stack = append(stack, cur.tree.sections[cur.children[i]])
			}
		}
	}
}

// PostOrder yields s and its descendants, children before parents.
func (s *Section) PostOrder() iter.Seq[*Section] {
	return func(yield func(*Section) bool) {
		type frame struct {
			s    *Section
			next int
		}
		stack := []frame{{s: s}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(top.s.children) {
				child := top.s.tree.sections[top.s.children[top.next]]
				top.next++
				stack = append(stack, frame{s: child})
				continue
			}
			done := top.s
			stack = stack[:len(stack)-1]
			if !yield(done) {
				return
			}
		}
	}
}

// Upstream yields s, its parent, and so on up to the root section.
func (s *Section) Upstream() iter.Seq[*Section] {
	return func(yield func(*Section) bool) {
		for cur := s; cur != nil; cur = cur.Parent() {
			if !yield(cur) {
				return
			}
		}
	}
}

// Leaves yields the leaf sections below s in pre-order.
func (s *Section) Leaves() iter.Seq[*Section] {
	return s.filtered((*Section).IsLeaf)
}

// ForkPoints yields the sections below s with two or more children.
func (s *Section) ForkPoints() iter.Seq[*Section] {
	return s.filtered((*Section).IsForkingPoint)
}

// BifurcationPoints yields the sections below s with exactly two children.
func (s *Section) BifurcationPoints() iter.Seq[*Section] {
	return s.filtered((*Section).IsBifurcationPoint)
}

// Walk yields the sections below s selected by t.
func (s *Section) Walk(t Traversal) iter.Seq[*Section] {
	switch t {
	case PostOrder:
		return s.PostOrder()
	case Leaves:
		return s.Leaves()
	case ForkPoints:
		return s.ForkPoints()
	case BifurcationPoints:
		return s.BifurcationPoints()
	default:
		return s.PreOrder()
	}
}

func (s *Section) filtered(keep SectionFilter) iter.Seq[*Section] {
	return func(yield func(*Section) bool) {
		for x := range s.PreOrder() {
			if keep(x) && !yield(x) {
				return
			}
		}
	}
}

// Segments yields consecutive point pairs of s.
func (s *Section) Segments() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for i := 1; i < len(s.Points); i++ {
			if !yield(Segment{A: s.Points[i-1], B: s.Points[i]}) {
				return
			}
		}
	}
}

// IterSections yields the sections of every root of n, selected by t and
// then by filter. A nil filter keeps everything.
func IterSections(n Node, t Traversal, filter SectionFilter) iter.Seq[*Section] {
	return func(yield func(*Section) bool) {
		for _, r := range n.Roots() {
			for s := range r.Walk(t) {
				if filter != nil && !filter(s) {
					continue
				}
				if !yield(s) {
					return
				}
			}
		}
	}
}

// IterNeurites yields the neurites of m accepted by filter, in file order.
func IterNeurites(m *Morphology, filter NeuriteFilter) iter.Seq[*Neurite] {
	return func(yield func(*Neurite) bool) {
		for _, n := range m.neurites {
			if filter != nil && !filter(n) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

// IterPoints yields every point below the roots of n in pre-order. The
// junction copy that starts a non-root section is skipped, so each
// physical point appears once.
func IterPoints(n Node) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for _, r := range n.Roots() {
			for s := range r.PreOrder() {
				pts := s.Points
				if s != r {
					pts = pts[1:]
				}
				for _, p := range pts {
					if !yield(p) {
						return
					}
				}
			}
		}
	}
}

// IterSegments yields every segment below the roots of n. Segments of a
// root section start at its first point; those of other sections start
// at the junction copy, so the segment across each junction appears once.
func IterSegments(n Node) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for s := range IterSections(n, PreOrder, nil) {
			for seg := range s.Segments() {
				if !yield(seg) {
					return
				}
			}
		}
	}
}

// IterTriplets yields consecutive point triples below the roots of n. A
// section with a parent borrows the parent's second to last point so the
// angle at the junction is included; a root section with fewer than three
// points yields nothing.
func IterTriplets(n Node) iter.Seq[Triplet] {
	return func(yield func(Triplet) bool) {
		for s := range IterSections(n, PreOrder, nil) {
			pts := s.Points
			if p := s.Parent(); p != nil && len(p.Points) >= 2 {
				pts = append([]Point{p.Points[len(p.Points)-2]}, pts...)
			}
			for i := 2; i < len(pts); i++ {
				if !yield(Triplet{pts[i-2], pts[i-1], pts[i]}) {
					return
				}
			}
		}
	}
}
