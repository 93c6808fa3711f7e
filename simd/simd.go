// Package simd implements the 8-wide vector types used by the ADS's wide
// ray/cone-AABB and ray/cone-triangle intersectors.
//
// This is a plain [8]float32 with scalar-loop methods rather than a
// platform-intrinsics backend: an honest, portable rendering of a
// SIMD-lane "wide" type. Real vectorization would need platform
// intrinsics or compiler auto-vectorization hints; the traversal code
// is written against this type's interface so an assembly-backed
// implementation is a drop-in replacement.
package simd

// Lanes is the width of one wide vector (matches bvh8w_node.hpp's
// aabbs_per_node = 8).
const Lanes = 8

// F8 is 8 packed float32 lanes.
type F8 [Lanes]float32

// Splat returns a wide vector with all lanes set to x.
func Splat(x float32) F8 {
	var r F8
	for i := range r {
		r[i] = x
	}
	return r
}

// Add returns a+b lanewise.
func (a F8) Add(b F8) F8 {
	var r F8
	for i := range r {
		r[i] = a[i] + b[i]
	}
	return r
}

// Sub returns a-b lanewise.
func (a F8) Sub(b F8) F8 {
	var r F8
	for i := range r {
		r[i] = a[i] - b[i]
	}
	return r
}

// Mul returns a*b lanewise.
func (a F8) Mul(b F8) F8 {
	var r F8
	for i := range r {
		r[i] = a[i] * b[i]
	}
	return r
}

// Min returns the lanewise minimum of a and b.
func (a F8) Min(b F8) F8 {
	var r F8
	for i := range r {
		if a[i] < b[i] {
			r[i] = a[i]
		} else {
			r[i] = b[i]
		}
	}
	return r
}

// Max returns the lanewise maximum of a and b.
func (a F8) Max(b F8) F8 {
	var r F8
	for i := range r {
		if a[i] > b[i] {
			r[i] = a[i]
		} else {
			r[i] = b[i]
		}
	}
	return r
}

// Fma returns a*b+c lanewise.
func (a F8) Fma(b, c F8) F8 {
	var r F8
	for i := range r {
		r[i] = a[i]*b[i] + c[i]
	}
	return r
}

// Mask is an 8-lane boolean mask produced by wide comparisons.
type Mask [Lanes]bool

// Le returns a lanewise a<=b mask.
func (a F8) Le(b F8) Mask {
	var m Mask
	for i := range m {
		m[i] = a[i] <= b[i]
	}
	return m
}

// And returns the lanewise logical AND of two masks.
func (m Mask) And(o Mask) Mask {
	var r Mask
	for i := range r {
		r[i] = m[i] && o[i]
	}
	return r
}

// Any reports whether any lane of m is set.
func (m Mask) Any() bool {
	for _, b := range m {
		if b {
			return true
		}
	}
	return false
}

// Vec3 is three F8s: eight packed 3D points or directions, one per lane.
type Vec3 struct {
	X, Y, Z F8
}

// Broadcast returns a wide Vec3 with every lane set to (x, y, z).
func Broadcast(x, y, z float32) Vec3 {
	return Vec3{X: Splat(x), Y: Splat(y), Z: Splat(z)}
}

// Sub returns v-w lanewise.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{X: v.X.Sub(w.X), Y: v.Y.Sub(w.Y), Z: v.Z.Sub(w.Z)}
}

// Dot returns the lanewise dot product of v and w.
func (v Vec3) Dot(w Vec3) F8 {
	return v.X.Mul(w.X).Add(v.Y.Mul(w.Y)).Add(v.Z.Mul(w.Z))
}

// Cross returns the lanewise cross product v×w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: v.Y.Mul(w.Z).Sub(v.Z.Mul(w.Y)),
		Y: v.Z.Mul(w.X).Sub(v.X.Mul(w.Z)),
		Z: v.X.Mul(w.Y).Sub(v.Y.Mul(w.X)),
	}
}

// PadCount rounds n up to the next multiple of Lanes, so that a slice
// of that length can always be loaded as a whole number of F8
// registers without a bounds check.
func PadCount(n int) int {
	if r := n % Lanes; r != 0 {
		return n + (Lanes - r)
	}
	return n
}
