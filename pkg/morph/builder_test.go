package morph

import (
	stderrors "errors"
	"testing"

	"github.com/matzehuels/arbor/pkg/errors"
)

func TestBuildSectionsScenarioB(t *testing.T) {
	m := mustMorphology(t, scenarioB)

	neurites := m.Neurites()
	if len(neurites) != 2 {
		t.Fatalf("got %d neurites, want 2", len(neurites))
	}

	tests := []struct {
		typ      NeuriteType
		rootID   int
		sections int
		leafIDs  []int
	}{
		{TypeBasalDendrite, 6, 3, []int{2, 3}},
		{TypeAxon, 8, 3, []int{4, 5}},
	}
	for i, tt := range tests {
		n := neurites[i]
		if n.Type() != tt.typ {
			t.Errorf("neurite %d type = %v, want %v", i, n.Type(), tt.typ)
		}
		if got := n.Root().First().ID; got != tt.rootID {
			t.Errorf("neurite %d root point = %d, want %d", i, got, tt.rootID)
		}
		count := 0
		for range n.Sections() {
			count++
		}
		if count != tt.sections {
			t.Errorf("neurite %d has %d sections, want %d", i, count, tt.sections)
		}
		var leaves []int
		for s := range n.Root().Leaves() {
			leaves = append(leaves, s.Last().ID)
		}
		if !equalInts(leaves, tt.leafIDs) {
			t.Errorf("neurite %d leaves = %v, want %v", i, leaves, tt.leafIDs)
		}
	}

	if m.Soma().Kind() != SomaSinglePoint || m.Soma().Radius() != 1 {
		t.Errorf("soma = %v r=%v", m.Soma().Kind(), m.Soma().Radius())
	}
}

func TestBuildSectionsContinuity(t *testing.T) {
	m := mustMorphology(t, mixedRows)
	for _, s := range m.Sections() {
		p := s.Parent()
		if p == nil {
			continue
		}
		if s.First().Pos() != p.Last().Pos() {
			t.Errorf("section %d starts at %v, parent %d ends at %v",
				s.ID, s.First().Pos(), p.ID, p.Last().Pos())
		}
		if len(s.Points) < 2 {
			t.Errorf("non-root section %d has %d points", s.ID, len(s.Points))
		}
	}
}

func TestBuildSectionsSimpleFork(t *testing.T) {
	// root with two children that end immediately: 1 root + 2 leaves
	rows := [][7]float64{
		{1, 1, 0, 0, 0, 1, -1},
		{2, 3, 0, 1, 0, 1, 1},
		{3, 3, 1, 2, 0, 1, 2},
		{4, 3, -1, 2, 0, 1, 2},
	}
	m := mustMorphology(t, rows)
	if got := len(m.Sections()); got != 3 {
		t.Fatalf("got %d sections, want 3", got)
	}
	root := m.Neurites()[0].Root()
	if !root.IsBifurcationPoint() {
		t.Error("root should be a bifurcation point")
	}
	if len(root.Points) != 1 {
		t.Errorf("root section has %d points, want 1", len(root.Points))
	}
	if len(m.Diagnostics().ByCode(DiagSinglePointSection)) != 1 {
		t.Errorf("diagnostics = %v, want one single point section", m.Diagnostics())
	}
}

func TestBuildSectionsMissingParent(t *testing.T) {
	tests := []struct {
		name       string
		rows       [][7]float64
		wantParent int
	}{
		{
			name: "neurite point",
			rows: [][7]float64{
				{1, 1, 0, 0, 0, 1, -1},
				{2, 3, 0, 1, 0, 1, 1},
				{3, 3, 0, 2, 0, 1, 42},
			},
			wantParent: 42,
		},
		{
			name: "soma point",
			rows: [][7]float64{
				{1, 1, 0, 0, 0, 1, -1},
				{2, 1, 0, 0.5, 0, 1, 99},
				{3, 1, 0, -0.5, 0, 1, 1},
				{4, 2, 0, 1, 0, 0.5, 1},
				{5, 2, 0, 2, 0, 0.5, 4},
			},
			wantParent: 99,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := BuildSections(pointsFromRows(tt.rows))
			if !errors.IsMissingParent(err) {
				t.Fatalf("error = %v, want MISSING_PARENT", err)
			}
			var mp *errors.MissingParentError
			if !stderrors.As(err, &mp) || mp.ParentID != tt.wantParent {
				t.Errorf("cause = %v, want parent %d", mp, tt.wantParent)
			}
			if tree != nil {
				t.Errorf("tree = %v, want nil", tree)
			}
		})
	}
}

func TestBuildSectionsRawDataErrors(t *testing.T) {
	tests := []struct {
		name string
		rows [][7]float64
	}{
		{
			name: "duplicate id",
			rows: [][7]float64{
				{1, 1, 0, 0, 0, 1, -1},
				{2, 3, 0, 1, 0, 1, 1},
				{2, 3, 0, 2, 0, 1, 1},
			},
		},
		{
			name: "cycle",
			rows: [][7]float64{
				{1, 1, 0, 0, 0, 1, -1},
				{2, 3, 0, 1, 0, 1, 1},
				{3, 3, 0, 2, 0, 1, 4},
				{4, 3, 0, 3, 0, 1, 3},
			},
		},
		{
			name: "self parent",
			rows: [][7]float64{
				{1, 1, 0, 0, 0, 1, -1},
				{2, 3, 0, 1, 0, 1, 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildSections(pointsFromRows(tt.rows))
			if !errors.Is(err, errors.ErrCodeInvalidRawData) {
				t.Errorf("error = %v, want INVALID_RAW_DATA", err)
			}
		})
	}
}

func TestBuildSectionsUnifurcation(t *testing.T) {
	// the type change at point 3 closes the apical section
	rows := [][7]float64{
		{1, 1, 0, 0, 0, 1, -1},
		{2, 4, 0, 1, 0, 1, 1},
		{3, 4, 0, 2, 0, 1, 2},
		{4, 2, 0, 3, 0, 1, 3},
		{5, 2, 0, 4, 0, 1, 4},
	}
	m := mustMorphology(t, rows)
	secs := m.Sections()
	if len(secs) != 2 {
		t.Fatalf("got %d sections, want 2", len(secs))
	}
	if !secs[0].IsUnifurcation() {
		t.Error("section 0 should be a unifurcation")
	}
	if secs[0].Type != TypeApicalDendrite || secs[1].Type != TypeAxon {
		t.Errorf("types = %v, %v", secs[0].Type, secs[1].Type)
	}
	if got := len(secs[1].Points); got != 3 {
		t.Errorf("axon section has %d points, want 3", got)
	}
	if len(m.Diagnostics().ByCode(DiagUnifurcation)) != 1 {
		t.Errorf("diagnostics = %v", m.Diagnostics())
	}
	if len(m.Diagnostics().ByCode(DiagUnexpectedSubtrees)) != 1 {
		t.Errorf("apical carrying axon should be reported: %v", m.Diagnostics())
	}
}

func TestBuildSectionsNoSoma(t *testing.T) {
	rows := [][7]float64{
		{1, 3, 0, 0, 0, 1, -1},
		{2, 3, 0, 1, 0, 1, 1},
	}
	m := mustMorphology(t, rows)
	if m.Soma().HasCenter() {
		t.Error("soma without points should have no center")
	}
	if len(m.Diagnostics().ByCode(DiagNoSoma)) != 1 {
		t.Errorf("diagnostics = %v", m.Diagnostics())
	}
	if len(m.Neurites()) != 1 {
		t.Errorf("got %d neurites", len(m.Neurites()))
	}
}

func TestBuildSectionsNonMonotonicIDs(t *testing.T) {
	rows := [][7]float64{
		{10, 1, 0, 0, 0, 1, -1},
		{5, 3, 0, 1, 0, 1, 10},
		{3, 3, 0, 2, 0, 1, 5},
	}
	m := mustMorphology(t, rows)
	if got := len(m.Sections()); got != 1 {
		t.Errorf("got %d sections, want 1", got)
	}
}

func TestBuildSectionsPreOrderIDs(t *testing.T) {
	m := mustMorphology(t, mixedRows)
	secs := m.Sections()
	if len(secs) != 19 {
		t.Fatalf("got %d sections, want 19", len(secs))
	}
	for i, s := range secs {
		if s.ID != i {
			t.Errorf("section at %d has id %d", i, s.ID)
		}
	}
	if got := sectionIDs(m.Neurites()[1].Sections()); !equalInts(got, []int{5, 6, 7, 8, 9, 10, 11, 12, 13}) {
		t.Errorf("neurite 1 sections = %v", got)
	}
}
