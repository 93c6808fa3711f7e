package quantity

import "math"

// Vec3 is a 3-component length vector (a world-space position or a
// direction scaled by a length).
type Vec3 struct {
	X, Y, Z Length
}

// Add returns v+w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v-w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v scaled by the dimensionless factor s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * Length(s), v.Y * Length(s), v.Z * Length(s)} }

// Dot returns v·w.
func (v Vec3) Dot(w Vec3) float64 {
	return float64(v.X*w.X + v.Y*w.Y + v.Z*w.Z)
}

// Cross returns v×w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() Length { return Length(math.Sqrt(v.Dot(v))) }

// Vec2 is a 2-component length vector, used for cross-sectional
// (transverse) coordinates.
type Vec2 struct {
	X, Y Length
}

// Add returns v+w.
func (v Vec2) Add(w Vec2) Vec2 { return Vec2{v.X + w.X, v.Y + w.Y} }

// Sub returns v-w.
func (v Vec2) Sub(w Vec2) Vec2 { return Vec2{v.X - w.X, v.Y - w.Y} }

// Scale returns v scaled by the dimensionless factor s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * Length(s), v.Y * Length(s)} }

// Unit3 is a unit-length direction. The zero value is not a valid
// direction; construct with NewUnit3 or Unit3FromVec3.
type Unit3 struct {
	X, Y, Z float64
}

// NewUnit3 normalizes (x,y,z) into a unit vector. Panics if the input is
// the zero vector — callers are expected to never normalize a
// degenerate direction, consistent with the "no allocation on the hot
// path, assume valid input" posture for invariant-protected inner-loop
// helpers.
func NewUnit3(x, y, z float64) Unit3 {
	l := math.Sqrt(x*x + y*y + z*z)
	if l == 0 {
		panic("quantity: NewUnit3 of zero vector")
	}
	return Unit3{x / l, y / l, z / l}
}

// Unit3FromVec3 normalizes a length-valued vector into a direction.
func Unit3FromVec3(v Vec3) Unit3 { return NewUnit3(float64(v.X), float64(v.Y), float64(v.Z)) }

// Vec3 returns u as a dimensionless Vec3 (length 1, in metres — callers
// scale it by whatever length they need).
func (u Unit3) Vec3() Vec3 { return Vec3{Length(u.X), Length(u.Y), Length(u.Z)} }

// Dot returns u·w.
func (u Unit3) Dot(w Unit3) float64 { return u.X*w.X + u.Y*w.Y + u.Z*w.Z }

// Cross returns the (unnormalized, but unit since u⊥w in all call
// sites) cross product of two orthogonal unit vectors.
func (u Unit3) Cross(w Unit3) Unit3 {
	return Unit3{
		u.Y*w.Z - u.Z*w.Y,
		u.Z*w.X - u.X*w.Z,
		u.X*w.Y - u.Y*w.X,
	}
}

// Neg returns -u.
func (u Unit3) Neg() Unit3 { return Unit3{-u.X, -u.Y, -u.Z} }

// Frame is a right-handed orthonormal basis (x,y,z), z usually the
// surface normal or propagation direction.
type Frame struct {
	X, Y, Z Unit3
}

// BuildOrthogonalFrame constructs an arbitrary orthonormal frame whose
// Z axis is n, using the Duff et al. branchless construction.
func BuildOrthogonalFrame(n Unit3) Frame {
	sign := math.Copysign(1, n.Z)
	a := -1 / (sign + n.Z)
	b := n.X * n.Y * a
	x := Unit3{1 + sign*n.X*n.X*a, sign * b, -sign * n.X}
	y := Unit3{b, sign + n.Y*n.Y*a, -n.Y}
	return Frame{X: x, Y: y, Z: n}
}

// ToLocal projects a world-space vector into the frame's local basis.
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{
		Length(v.Dot(f.X.Vec3())),
		Length(v.Dot(f.Y.Vec3())),
		Length(v.Dot(f.Z.Vec3())),
	}
}

// ToWorld maps a local-frame vector back into world space. It is the
// exact inverse of ToLocal for orthonormal frames: ToWorld(ToLocal(v))
// == v up to floating-point tolerance.
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.X.Vec3().Scale(float64(v.X)).
		Add(f.Y.Vec3().Scale(float64(v.Y))).
		Add(f.Z.Vec3().Scale(float64(v.Z)))
}
