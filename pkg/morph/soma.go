package morph

import (
	"math"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/morphmath"
)

// SomaKind is the shape variant a soma was classified as.
type SomaKind int

const (
	// SomaUndefined is the soma of a morphology without soma points.
	SomaUndefined SomaKind = iota
	// SomaSinglePoint is a sphere around one point.
	SomaSinglePoint
	// SomaThreePoint is a center point plus two outer points.
	SomaThreePoint
	// SomaCylinders is the NeuroMorpho three point convention: two
	// cylinders stacked along one axis, symmetric about the center.
	SomaCylinders
	// SomaContour is a contour of more than three points.
	SomaContour
)

var somaKindNames = [...]string{"undefined", "single_point", "three_point", "cylinders", "contour"}

func (k SomaKind) String() string {
	if int(k) < len(somaKindNames) {
		return somaKindNames[k]
	}
	return "unknown"
}

// somaTol is the absolute tolerance of the NeuroMorpho shape test.
const somaTol = 1e-6

// Soma is the cell body collapsed to a center and a radius.
type Soma struct {
	kind   SomaKind
	points []Point
	center morphmath.Vector
	radius float64
}

// SomaCheck validates raw soma points before classification.
type SomaCheck func(points []Point) error

// BuildSoma classifies points and derives the soma center and radius.
//
// One point yields a sphere, three points a center with two outer points
// (or the NeuroMorpho cylinder pair when the outer points are symmetric
// about the center along one axis and all radii are equal), and more than
// three points a contour. Zero or two points fail with an INVALID_SOMA
// error. check, if not nil, runs first.
func BuildSoma(points []Point, check SomaCheck) (*Soma, error) {
	if len(points) == 0 {
		return nil, errors.SomaError("soma has no points")
	}
	if check != nil {
		if err := check(points); err != nil {
			return nil, err
		}
	}

	s := &Soma{points: append([]Point(nil), points...)}
	switch n := len(points); {
	case n == 1:
		s.kind = SomaSinglePoint
		s.center = points[0].Pos()
		s.radius = points[0].Radius
	case n == 2:
		return nil, errors.SomaError("soma with 2 points is not supported")
	case n == 3:
		s.buildThreePoint()
	default:
		s.kind = SomaContour
		pos := make([]morphmath.Vector, n)
		for i, p := range points {
			pos[i] = p.Pos()
		}
		s.center = morphmath.Mean(pos)
		var sum float64
		for _, v := range pos {
			sum += morphmath.Distance(s.center, v)
		}
		s.radius = sum / float64(n)
	}
	return s, nil
}

func (s *Soma) buildThreePoint() {
	p0, p1, p2 := s.points[0], s.points[1], s.points[2]
	c := p0.Pos()
	s.center = c
	d1, d2 := p1.Pos().Sub(c), p2.Pos().Sub(c)

	if isCylinderSoma(p0, p1, p2, d1, d2) {
		s.kind = SomaCylinders
		h := morphmath.Distance(p1.Pos(), p2.Pos())
		area := 2 * math.Pi * p0.Radius * h
		s.radius = math.Sqrt(area / (4 * math.Pi))
		return
	}

	s.kind = SomaThreePoint
	s.radius = (d1.Norm() + d2.Norm()) / 2
}

func isCylinderSoma(p0, p1, p2 Point, d1, d2 morphmath.Vector) bool {
	r := p0.Radius
	if r <= 0 || math.Abs(p1.Radius-r) > somaTol || math.Abs(p2.Radius-r) > somaTol {
		return false
	}
	if !d1.Add(d2).IsZero(somaTol) {
		return false
	}
	return morphmath.Axis(d1, somaTol) != -1
}

// undefinedSoma is the soma of a morphology without soma points.
func undefinedSoma() *Soma {
	return &Soma{kind: SomaUndefined}
}

// Kind returns the shape variant.
func (s *Soma) Kind() SomaKind { return s.kind }

// Points returns a copy of the soma points.
func (s *Soma) Points() []Point { return append([]Point(nil), s.points...) }

// Center returns the soma center. It is the zero vector when HasCenter is
// false.
func (s *Soma) Center() morphmath.Vector { return s.center }

// Radius returns the soma radius.
func (s *Soma) Radius() float64 { return s.radius }

// HasCenter reports whether the soma was built from at least one point.
func (s *Soma) HasCenter() bool { return s.kind != SomaUndefined }

// Area returns the surface area of the sphere with the soma radius.
func (s *Soma) Area() float64 { return morphmath.SphereArea(s.radius) }

// Volume returns the volume of the sphere with the soma radius.
func (s *Soma) Volume() float64 { return morphmath.SphereVolume(s.radius) }

// SWCSomaCheck rejects contour somata in which two points share a parent.
// SWC contours are chains; a repeated parent means the soma bifurcates.
func SWCSomaCheck(points []Point) error {
	if len(points) <= 3 {
		return nil
	}
	seen := make(map[int]bool, len(points))
	for _, p := range points {
		if p.ParentID == NoParent {
			continue
		}
		if seen[p.ParentID] {
			return errors.SomaError("bifurcating soma at point %d", p.ParentID)
		}
		seen[p.ParentID] = true
	}
	return nil
}
