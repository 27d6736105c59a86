// Package morph provides the morphology data model: the soma, the section
// tree built from a raw point table, and the Neurite, Morphology and
// Population containers with their traversal iterators.
//
// # Overview
//
// A reconstruction arrives as a flat table of [Point] records, each with a
// parent pointer. [BuildSections] turns that table into a forest of
// [Section] values stored in an arena (sections refer to each other by
// index, never by owning pointers), classifies the soma, and returns
// per-build [Diagnostics]. [NewMorphology] wraps the result:
//
//	m, err := morph.NewMorphology("cell", points)
//	if err != nil {
//	    // errors.IsMissingParent(err), errors.IsSoma(err), ...
//	}
//	for _, n := range m.Neurites() {
//	    fmt.Println(n.Type(), n.Root().ID)
//	}
//
// # Sections
//
// A section is a maximal run of points between two boundary points: a
// root (parent is the soma or absent), a forking point, a leaf, or a
// change of neurite type. The first point of every non-root section is a
// copy of its parent's last point so geometric measures stay continuous
// across the junction. Sections with a single child (unifurcations) are
// kept as they are and reported as diagnostics.
//
// # Traversal
//
// Iterators are Go range-over-func sequences ([iter.Seq]). They are pull
// based: stopping a range loop early is always safe, and ranging again
// restarts from the beginning.
//
//	for s := range morph.IterSections(m, morph.PreOrder, morph.IsType(morph.TypeAxon)) {
//	    ...
//	}
//
// # Heterogeneous neurites
//
// A neurite whose subtree changes type (for example an axon sprouting
// from a basal dendrite) is heterogeneous. With subtree processing
// enabled, type filters select the maximal homogeneous subtrees of the
// requested type ([SubtreeView]) instead of whole neurites. The tree
// itself is never modified.
//
// # Concurrency
//
// A Morphology is read-only after construction and may be traversed from
// several goroutines at once. Morphology.SetProcessSubtrees is the only
// mutator and must not race with traversals. Populations never call it on
// their members.
package morph
