package check

import (
	"strconv"

	"github.com/matzehuels/arbor/pkg/morph"
)

func isNeuritePoint(p morph.Point) bool {
	switch p.Type {
	case morph.TypeAxon, morph.TypeBasalDendrite, morph.TypeApicalDendrite:
		return true
	}
	return false
}

func init() {
	structural("has_sequential_ids", "Ids increase by exactly one from row to row.",
		func(points []morph.Point, _ Args) (Result, error) {
			var bad []string
			for i := 1; i < len(points); i++ {
				if points[i].ID-points[i-1].ID != 1 {
					bad = append(bad, strconv.Itoa(points[i].ID))
				}
			}
			return failing(bad), nil
		})

	structural("has_increasing_ids", "Ids strictly increase from row to row.",
		func(points []morph.Point, _ Args) (Result, error) {
			var bad []string
			for i := 1; i < len(points); i++ {
				if points[i].ID <= points[i-1].ID {
					bad = append(bad, strconv.Itoa(points[i].ID))
				}
			}
			return failing(bad), nil
		})

	structural("has_soma_points", "At least one point has the soma type.",
		func(points []morph.Point, _ Args) (Result, error) {
			for _, p := range points {
				if p.Type == morph.TypeSoma {
					return Pass, nil
				}
			}
			return Result{}, nil
		})

	structural("has_all_finite_radius_neurites", "No neurite point has a zero radius.",
		func(points []morph.Point, _ Args) (Result, error) {
			var bad []string
			for _, p := range points {
				if isNeuritePoint(p) && p.Radius == 0 {
					bad = append(bad, strconv.Itoa(p.ID))
				}
			}
			return failing(bad), nil
		})

	structural("has_all_finite_length_segments", "No neurite point sits on its neurite parent.",
		func(points []morph.Point, _ Args) (Result, error) {
			byID := make(map[int]morph.Point, len(points))
			for _, p := range points {
				byID[p.ID] = p
			}
			var bad []string
			for _, p := range points {
				parent, ok := byID[p.ParentID]
				if !ok || !isNeuritePoint(p) || !isNeuritePoint(parent) {
					continue
				}
				if p.Pos() == parent.Pos() {
					bad = append(bad, strconv.Itoa(parent.ID)+":"+strconv.Itoa(p.ID))
				}
			}
			return failing(bad), nil
		})

	structural("no_missing_parents", "Every parent id refers to a point of the table.",
		func(points []morph.Point, _ Args) (Result, error) {
			ids := make(map[int]bool, len(points))
			for _, p := range points {
				ids[p.ID] = true
			}
			var bad []string
			for _, p := range points {
				if p.ParentID != morph.NoParent && !ids[p.ParentID] {
					bad = append(bad, strconv.Itoa(p.ID))
				}
			}
			return failing(bad), nil
		})
}
