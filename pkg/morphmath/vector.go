package morphmath

import "math"

// Vector is a point or direction in 3D space.
type Vector [3]float64

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns v - o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Scale returns v * s.
func (v Vector) Scale(s float64) Vector {
	return Vector{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the dot product of v and o.
func (v Vector) Dot(o Vector) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// Cross returns the cross product v × o.
func (v Vector) Cross(o Vector) Vector {
	return Vector{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// IsZero reports whether every component of v is within tol of zero.
func (v Vector) IsZero(tol float64) bool {
	return math.Abs(v[0]) <= tol && math.Abs(v[1]) <= tol && math.Abs(v[2]) <= tol
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vector) float64 {
	return a.Sub(b).Norm()
}

// Mean returns the component-wise mean of vs. An empty input yields the
// zero vector.
func Mean(vs []Vector) Vector {
	var sum Vector
	if len(vs) == 0 {
		return sum
	}
	for _, v := range vs {
		sum = sum.Add(v)
	}
	return sum.Scale(1 / float64(len(vs)))
}

// Angle returns the angle in radians between a and b. If either vector has
// zero length the angle is 0.
func Angle(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	c := a.Dot(b) / (na * nb)
	// rounding can push c slightly outside [-1, 1]
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c)
}

// AngleThreePoints returns the angle at p1 formed by p0-p1-p2.
func AngleThreePoints(p0, p1, p2 Vector) float64 {
	return Angle(p0.Sub(p1), p2.Sub(p1))
}

// Axis returns the index of the single non-zero component of v, or -1 when
// v is zero or spans more than one axis. Components within tol of zero are
// treated as zero.
func Axis(v Vector, tol float64) int {
	axis := -1
	for i, c := range v {
		if math.Abs(c) <= tol {
			continue
		}
		if axis != -1 {
			return -1
		}
		axis = i
	}
	return axis
}

// Polar returns the elevation and azimuth of v in radians. Elevation is
// measured from the XZ plane towards +Y, azimuth in the XZ plane from +X
// towards +Z.
func Polar(v Vector) (elevation, azimuth float64) {
	n := v.Norm()
	if n == 0 {
		return 0, 0
	}
	return math.Asin(v[1] / n), math.Atan2(v[2], v[0])
}
