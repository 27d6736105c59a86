package morph

import "testing"

// rows are SWC records: id, type, x, y, z, radius, parent.
func pointsFromRows(rows [][7]float64) []Point {
	out := make([]Point, len(rows))
	for i, r := range rows {
		out[i] = Point{
			ID:       int(r[0]),
			Type:     TypeFromCode(int(r[1])),
			X:        r[2],
			Y:        r[3],
			Z:        r[4],
			Radius:   r[5],
			ParentID: int(r[6]),
		}
	}
	return out
}

// scenarioB is a one point soma with a basal dendrite rooted at point 6
// and an axon rooted at point 8, each forking once.
var scenarioB = [][7]float64{
	{1, 1, 0, 0, 0, 1, -1},
	{6, 3, 0, 0, 0, 1, 1},
	{7, 3, 0, 5, 0, 1, 6},
	{2, 3, -5, 5, 0, 0, 7},
	{3, 3, 6, 5, 0, 0, 7},
	{8, 2, 0, 0, 0, 1, 1},
	{9, 2, 0, -4, 0, 1, 8},
	{4, 2, 6, -4, 0, 0, 9},
	{5, 2, -5, -4, 0, 0, 9},
}

// mixedRows holds three neurites: a basal dendrite (sections 0-4), a
// basal dendrite carrying an axon (basal 5-8, axon 9-13) and an apical
// dendrite (14-18).
var mixedRows = [][7]float64{
	{1, 1, 0, 0, 0, 0.5, -1},
	{2, 3, -1, 0, 0, 0.1, 1},
	{3, 3, -2, 0, 0, 0.1, 2},
	{4, 3, -3, 0, 0, 0.1, 3},
	{5, 3, -3, 0, 1, 0.1, 4},
	{6, 3, -3, 0, -1, 0.1, 4},
	{7, 3, -2, 1, 0, 0.1, 3},
	{8, 3, 0, 1, 0, 0.1, 1},
	{9, 3, 1, 2, 0, 0.1, 8},
	{10, 3, 1, 4, 0, 0.1, 9},
	{11, 3, 1, 4, 1, 0.1, 10},
	{12, 3, 1, 4, -1, 0.1, 10},
	{13, 2, 2, 3, 0, 0.1, 9},
	{14, 2, 2, 4, 0, 0.1, 13},
	{15, 2, 3, 3, 0, 0.1, 13},
	{16, 2, 3, 3, 1, 0.1, 15},
	{17, 2, 3, 3, -1, 0.1, 15},
	{18, 4, 0, -1, 0, 0.1, 1},
	{19, 4, 0, -2, 0, 0.1, 18},
	{20, 4, 0, -3, 0, 0.1, 19},
	{21, 4, 0, -3, 1, 0.1, 20},
	{22, 4, 0, -3, -1, 0.1, 20},
	{23, 4, 1, -2, 0, 0.1, 19},
}

func mustMorphology(t *testing.T, rows [][7]float64, opts ...Option) *Morphology {
	t.Helper()
	m, err := NewMorphology("test", pointsFromRows(rows), opts...)
	if err != nil {
		t.Fatalf("NewMorphology() error: %v", err)
	}
	return m
}

func sectionIDs(seq func(func(*Section) bool)) []int {
	var ids []int
	for s := range seq {
		ids = append(ids, s.ID)
	}
	return ids
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
