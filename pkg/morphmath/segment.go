package morphmath

import "math"

// SegmentLength returns the distance between the segment end points.
func SegmentLength(a, b Vector) float64 {
	return Distance(a, b)
}

// SegmentRadius returns the mean radius of a segment.
func SegmentRadius(r0, r1 float64) float64 {
	return (r0 + r1) / 2
}

// SegmentArea returns the lateral surface area of the frustum spanned by a
// segment.
func SegmentArea(a Vector, r0 float64, b Vector, r1 float64) float64 {
	h := Distance(a, b)
	slant := math.Hypot(h, r0-r1)
	return math.Pi * (r0 + r1) * slant
}

// SegmentVolume returns the volume of the frustum spanned by a segment.
func SegmentVolume(a Vector, r0 float64, b Vector, r1 float64) float64 {
	h := Distance(a, b)
	return math.Pi * h * (r0*r0 + r0*r1 + r1*r1) / 3
}

// SegmentTaperRate returns the radius change per unit length of a segment,
// or 0 for a zero-length segment.
func SegmentTaperRate(a Vector, r0 float64, b Vector, r1 float64) float64 {
	h := Distance(a, b)
	if h == 0 {
		return 0
	}
	return math.Abs(r1-r0) / h
}

// PathLength returns the length of the polyline through ps.
func PathLength(ps []Vector) float64 {
	var total float64
	for i := 1; i < len(ps); i++ {
		total += Distance(ps[i-1], ps[i])
	}
	return total
}

// SphereArea returns the surface area of a sphere of radius r.
func SphereArea(r float64) float64 {
	return 4 * math.Pi * r * r
}

// SphereVolume returns the volume of a sphere of radius r.
func SphereVolume(r float64) float64 {
	return 4 * math.Pi * r * r * r / 3
}
