// Package morphmath provides the geometry primitives used by morphology
// analysis: 3D vectors, distances, angles and the per-segment measures
// (length, lateral area, volume, taper) that features are built from.
//
// All functions are pure and operate on values; nothing in this package
// knows about sections or trees.
//
// # Vectors
//
// [Vector] is a fixed 3-element array so it can be compared with == and
// used as a map key:
//
//	a := morphmath.Vector{0, 0, 0}
//	b := morphmath.Vector{3, 4, 0}
//	morphmath.Distance(a, b) // 5
//
// # Segments
//
// A segment is a pair of consecutive points with radii. Its surface and
// volume are those of a truncated cone ("frustum") between the two points:
//
//	morphmath.SegmentArea(a, 1, b, 0.5)
//	morphmath.SegmentVolume(a, 1, b, 0.5)
//
// # Angles
//
// [Angle] returns the angle between two vectors in radians, in [0, π].
// [AngleThreePoints] returns the angle at the middle point of a triplet.
package morphmath
