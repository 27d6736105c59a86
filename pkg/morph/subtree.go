package morph

import "iter"

// HomogeneousRoots returns root and every section below it whose type
// differs from its parent's, in pre-order. Each returned section starts a
// maximal homogeneous subtree.
func HomogeneousRoots(root *Section) []*Section {
	var out []*Section
	for s := range root.PreOrder() {
		if s == root || s.Parent().Type != s.Type {
			out = append(out, s)
		}
	}
	return out
}

// SubtreeView restricts a neurite to the homogeneous subtrees of one
// type. It is a filter over the original sections; nothing is copied.
type SubtreeView struct {
	neurite *Neurite
	typ     NeuriteType
	roots   []*Section
}

// NewSubtreeView returns the view of n restricted to t. With TypeAll the
// view is the whole neurite.
func NewSubtreeView(n *Neurite, t NeuriteType) *SubtreeView {
	v := &SubtreeView{neurite: n, typ: t}
	if t == TypeAll {
		v.roots = []*Section{n.root}
		return v
	}
	for _, r := range HomogeneousRoots(n.root) {
		if r.Type == t {
			v.roots = append(v.roots, r)
		}
	}
	return v
}

// Neurite returns the underlying neurite.
func (v *SubtreeView) Neurite() *Neurite { return v.neurite }

// Type returns the type the view is restricted to.
func (v *SubtreeView) Type() NeuriteType { return v.typ }

// Roots returns the virtual roots: the first section of each matching
// subtree. It implements [Node], but traversing the view as a Node visits
// whole descendants; use [SubtreeView.Sections] to stay within the type.
func (v *SubtreeView) Roots() []*Section { return append([]*Section(nil), v.roots...) }

// Empty reports whether no subtree of the requested type exists.
func (v *SubtreeView) Empty() bool { return len(v.roots) == 0 }

// Sections yields the sections of the matching subtrees selected by t.
// Sections below a further type change are excluded, even when the type
// changes back further down.
func (v *SubtreeView) Sections(t Traversal) iter.Seq[*Section] {
	return func(yield func(*Section) bool) {
		for _, r := range v.roots {
			for s := range r.Walk(t) {
				if v.typ != TypeAll && subtreeRoot(s) != r {
					continue
				}
				if !yield(s) {
					return
				}
			}
		}
	}
}

// subtreeRoot returns the first section of the homogeneous subtree that
// contains s.
func subtreeRoot(s *Section) *Section {
	for p := s.Parent(); p != nil && p.Type == s.Type; p = s.Parent() {
		s = p
	}
	return s
}
