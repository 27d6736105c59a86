package morph

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"iter"
	"math"
)

// Morphology is a soma plus the neurites rooted at it.
type Morphology struct {
	// Name is a display name, usually the file base name.
	Name string

	tree            *Tree
	neurites        []*Neurite
	processSubtrees bool
	fingerprint     string
}

// NewMorphology builds a morphology from a raw point table. Construction
// errors are those of [BuildSections]; no partial morphology is returned.
func NewMorphology(name string, points []Point, opts ...Option) (*Morphology, error) {
	o := newOptions(opts)
	tree, err := BuildSections(points, opts...)
	if err != nil {
		return nil, err
	}

	m := &Morphology{
		Name:            name,
		tree:            tree,
		processSubtrees: o.processSubtrees,
		fingerprint:     fingerprint(points),
	}
	for _, r := range tree.Roots() {
		n := newNeurite(r, o.processSubtrees)
		if n.IsHeterogeneous() && !n.subtreeTypes.Equal(AxonCarryingDendrite) {
			tree.diags.add(LevelWarning, DiagUnexpectedSubtrees, r.ID,
				"neurite rooted at section %d has subtree types %s", r.ID, n.subtreeTypes)
		}
		m.neurites = append(m.neurites, n)
	}
	return m, nil
}

// Soma returns the soma. It is never nil; a morphology without soma
// points has a soma whose HasCenter is false.
func (m *Morphology) Soma() *Soma { return m.tree.soma }

// Neurites returns the neurites in file order.
func (m *Morphology) Neurites() []*Neurite { return append([]*Neurite(nil), m.neurites...) }

// Roots implements [Node].
func (m *Morphology) Roots() []*Section { return m.tree.Roots() }

// Sections returns every section in id order.
func (m *Morphology) Sections() []*Section { return m.tree.Sections() }

// Section returns the section with the given id, or nil.
func (m *Morphology) Section(id int) *Section { return m.tree.Section(id) }

// Points returns all neurite points without junction duplicates.
func (m *Morphology) Points() iter.Seq[Point] { return IterPoints(m) }

// Diagnostics returns the findings of the build.
func (m *Morphology) Diagnostics() Diagnostics { return m.tree.diags }

// ProcessSubtrees reports whether heterogeneous subtree processing is on.
func (m *Morphology) ProcessSubtrees() bool { return m.processSubtrees }

// SetProcessSubtrees switches subtree processing for the morphology and
// its neurites. It must not be called concurrently with traversals.
func (m *Morphology) SetProcessSubtrees(enabled bool) {
	m.processSubtrees = enabled
	for _, n := range m.neurites {
		n.processSubtrees = enabled
	}
}

// withProcessSubtrees returns m with the given subtree mode. A differing
// mode yields a new Morphology sharing the section arena; m is unchanged.
func (m *Morphology) withProcessSubtrees(enabled bool) *Morphology {
	if m.processSubtrees == enabled {
		return m
	}
	c := &Morphology{
		Name:            m.Name,
		tree:            m.tree,
		processSubtrees: enabled,
		fingerprint:     m.fingerprint,
	}
	for _, n := range m.neurites {
		c.neurites = append(c.neurites, &Neurite{root: n.root, subtreeTypes: n.subtreeTypes, processSubtrees: enabled})
	}
	return c
}

// Fingerprint returns a hex digest of the point table the morphology was
// built from. Equal tables give equal fingerprints.
func (m *Morphology) Fingerprint() string { return m.fingerprint }

func fingerprint(points []Point) string {
	h := sha256.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	for _, p := range points {
		put(math.Float64bits(p.X))
		put(math.Float64bits(p.Y))
		put(math.Float64bits(p.Z))
		put(math.Float64bits(p.Radius))
		put(uint64(p.Type))
		put(uint64(int64(p.ID)))
		put(uint64(int64(p.ParentID)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
