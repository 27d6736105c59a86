package morph

import (
	"github.com/matzehuels/arbor/pkg/errors"
)

// Tree is the section arena built from one point table.
type Tree struct {
	sections []*Section
	roots    []int
	soma     *Soma
	diags    Diagnostics
}

// Sections returns every section in id order.
func (t *Tree) Sections() []*Section { return append([]*Section(nil), t.sections...) }

// Section returns the section with the given id, or nil.
func (t *Tree) Section(id int) *Section {
	if id < 0 || id >= len(t.sections) {
		return nil
	}
	return t.sections[id]
}

// Roots returns the root sections in file order.
func (t *Tree) Roots() []*Section {
	out := make([]*Section, len(t.roots))
	for i, r := range t.roots {
		out[i] = t.sections[r]
	}
	return out
}

// Soma returns the soma.
func (t *Tree) Soma() *Soma { return t.soma }

// Diagnostics returns the findings of the build.
func (t *Tree) Diagnostics() Diagnostics { return t.diags }

// Option configures morphology construction.
type Option func(*options)

type options struct {
	somaCheck       SomaCheck
	processSubtrees bool
}

// WithSomaCheck runs check on the soma points before classification.
func WithSomaCheck(check SomaCheck) Option {
	return func(o *options) { o.somaCheck = check }
}

// WithProcessSubtrees enables heterogeneous subtree processing.
func WithProcessSubtrees(enabled bool) Option {
	return func(o *options) { o.processSubtrees = enabled }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// builder holds the adjacency of one point table.
type builder struct {
	points   []Point
	index    map[int]int // point id -> position in points
	children [][]int     // position -> child positions, file order
	tree     *Tree
	visited  int
}

// BuildSections reconstructs the section forest and the soma from points.
//
// Points of type soma go to [BuildSoma]; every other point is placed in
// a section. A point closes its section when it has no children, more
// than one child, or a single child of another type. Each child of a
// closing point starts a new section whose first point duplicates the
// closing point.
//
// BuildSections fails without building anything when a parent id resolves
// to no point (MISSING_PARENT), when ids repeat or points cannot be
// reached from any root (INVALID_RAW_DATA), or when the soma is unusable
// (INVALID_SOMA). Non-monotonic ids are accepted.
func BuildSections(points []Point, opts ...Option) (*Tree, error) {
	o := newOptions(opts)
	b := &builder{
		points:   points,
		index:    make(map[int]int, len(points)),
		children: make([][]int, len(points)),
		tree:     &Tree{},
	}

	for i, p := range points {
		if _, dup := b.index[p.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidRawData, "duplicate point id %d", p.ID)
		}
		b.index[p.ID] = i
	}
	for _, p := range points {
		if p.ParentID < 0 {
			continue
		}
		if _, ok := b.index[p.ParentID]; !ok {
			return nil, errors.MissingParent(p.ID, p.ParentID)
		}
	}

	var somaPoints []Point
	var roots []int
	neuritePoints := 0
	for i, p := range points {
		if p.Type == TypeSoma {
			somaPoints = append(somaPoints, p)
			continue
		}
		neuritePoints++
		if p.ParentID < 0 {
			roots = append(roots, i)
			continue
		}
		parent := b.index[p.ParentID]
		if points[parent].Type == TypeSoma {
			roots = append(roots, i)
			continue
		}
		b.children[parent] = append(b.children[parent], i)
	}

	if len(somaPoints) == 0 {
		b.tree.soma = undefinedSoma()
		b.tree.diags.add(LevelWarning, DiagNoSoma, -1, "morphology has no soma points")
	} else {
		soma, err := BuildSoma(somaPoints, o.somaCheck)
		if err != nil {
			return nil, err
		}
		b.tree.soma = soma
	}

	for _, r := range roots {
		b.tree.roots = append(b.tree.roots, b.buildNeurite(r))
	}

	if b.visited != neuritePoints {
		return nil, errors.New(errors.ErrCodeInvalidRawData,
			"%d points are not reachable from any root (cycle in parent ids)", neuritePoints-b.visited)
	}
	return b.tree, nil
}

// pending is a section waiting to be built.
type pending struct {
	start  int // point position of the first own point
	parent int // parent section id or noSection
}

// buildNeurite builds every section below root in depth-first pre-order
// and returns the id of the root section.
func (b *builder) buildNeurite(root int) int {
	rootID := len(b.tree.sections)
	stack := []pending{{start: root, parent: noSection}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		s, end := b.buildSection(cur)
		kids := b.children[end]
		// push in reverse so the first child is built next
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, pending{start: kids[i], parent: s.ID})
		}
	}
	return rootID
}

// buildSection walks from p.start until a boundary point and appends the
// section to the arena. It returns the section and the position of its
// last point.
func (b *builder) buildSection(p pending) (*Section, int) {
	s := &Section{
		ID:     len(b.tree.sections),
		Type:   b.points[p.start].Type,
		parent: p.parent,
		tree:   b.tree,
	}
	if p.parent != noSection {
		parent := b.tree.sections[p.parent]
		s.Points = append(s.Points, parent.Last())
		parent.children = append(parent.children, s.ID)
	}

	cur := p.start
	for {
		s.Points = append(s.Points, b.points[cur])
		b.visited++
		kids := b.children[cur]
		if len(kids) != 1 || b.points[kids[0]].Type != s.Type {
			break
		}
		cur = kids[0]
	}

	b.tree.sections = append(b.tree.sections, s)

	if len(s.Points) == 1 {
		b.tree.diags.add(LevelWarning, DiagSinglePointSection, s.ID,
			"section %d has a single point (id %d)", s.ID, s.Points[0].ID)
	}
	if len(b.children[cur]) == 1 {
		b.tree.diags.add(LevelInfo, DiagUnifurcation, s.ID,
			"section %d has a single child", s.ID)
	}
	return s, cur
}
