package morph

import "github.com/matzehuels/arbor/pkg/morphmath"

// NoParent is the parent id of a point attached to nothing.
const NoParent = -1

// Point is one row of the raw point table. ID and ParentID only serve to
// reconstruct the tree; the geometry is X, Y, Z and Radius.
type Point struct {
	X, Y, Z  float64
	Radius   float64
	Type     NeuriteType
	ID       int
	ParentID int
}

// Pos returns the point position.
func (p Point) Pos() morphmath.Vector {
	return morphmath.Vector{p.X, p.Y, p.Z}
}

// Segment is a pair of consecutive points.
type Segment struct {
	A, B Point
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return morphmath.SegmentLength(s.A.Pos(), s.B.Pos())
}

// Radius returns the mean radius of the segment.
func (s Segment) Radius() float64 {
	return morphmath.SegmentRadius(s.A.Radius, s.B.Radius)
}

// Area returns the lateral area of the segment frustum.
func (s Segment) Area() float64 {
	return morphmath.SegmentArea(s.A.Pos(), s.A.Radius, s.B.Pos(), s.B.Radius)
}

// Volume returns the volume of the segment frustum.
func (s Segment) Volume() float64 {
	return morphmath.SegmentVolume(s.A.Pos(), s.A.Radius, s.B.Pos(), s.B.Radius)
}

// Triplet is three consecutive points.
type Triplet [3]Point

// Angle returns the angle at the middle point.
func (t Triplet) Angle() float64 {
	return morphmath.AngleThreePoints(t[0].Pos(), t[1].Pos(), t[2].Pos())
}
