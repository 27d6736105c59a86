package morph

import "iter"

// Neurite is one section tree extending from the soma. It references the
// root section of its morphology's arena and never copies sections.
type Neurite struct {
	root            *Section
	subtreeTypes    Types
	processSubtrees bool
}

func newNeurite(root *Section, processSubtrees bool) *Neurite {
	n := &Neurite{root: root, processSubtrees: processSubtrees}
	for _, r := range HomogeneousRoots(root) {
		if !n.subtreeTypes.containsExact(r.Type) {
			n.subtreeTypes = append(n.subtreeTypes, r.Type)
		}
	}
	return n
}

func (ts Types) containsExact(t NeuriteType) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// Root returns the root section.
func (n *Neurite) Root() *Section { return n.root }

// Roots implements [Node].
func (n *Neurite) Roots() []*Section { return []*Section{n.root} }

// Type returns the type of the root section.
func (n *Neurite) Type() NeuriteType { return n.root.Type }

// SubtreeTypes returns the types of the homogeneous subtrees in pre-order
// of their roots, without repeats.
func (n *Neurite) SubtreeTypes() Types { return append(Types(nil), n.subtreeTypes...) }

// IsHeterogeneous reports whether the neurite holds more than one type.
func (n *Neurite) IsHeterogeneous() bool { return len(n.subtreeTypes) > 1 }

// ProcessSubtrees reports whether type filters select subtrees instead of
// whole neurites.
func (n *Neurite) ProcessSubtrees() bool { return n.processSubtrees }

// Matches reports whether the neurite is selected by t. Without subtree
// processing only the root type counts; with it any subtree type does.
func (n *Neurite) Matches(t NeuriteType) bool {
	if t == TypeAll {
		return true
	}
	if n.processSubtrees {
		return n.subtreeTypes.Contains(t)
	}
	return n.root.Type == t
}

// Sections returns the sections in pre-order.
func (n *Neurite) Sections() iter.Seq[*Section] { return n.root.PreOrder() }

// Points returns the neurite points without junction duplicates.
func (n *Neurite) Points() iter.Seq[Point] { return IterPoints(n) }

// Length returns the total length of the neurite.
func (n *Neurite) Length() float64 {
	var l float64
	for s := range n.Sections() {
		l += s.Length()
	}
	return l
}
