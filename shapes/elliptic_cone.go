package shapes

import (
	"math"

	"github.com/sixy6e/wavetrace/quantity"
)

// EllipticCone quantifies the geometry of a beam's elliptical cone of
// propagation, including the degenerate cases where it collapses to an
// (infinite) cylinder or to a bare ray.
//
// Grounded on original_source/include/wt/math/shapes/elliptic_cone.hpp.
// Invariants: TanAlpha>=0, X0>=0, 0<=Eccentricity<1, and the tangent is
// orthogonal to the central ray's direction.
type EllipticCone struct {
	R       Ray
	Tangent quantity.Unit3

	x0       quantity.Length
	tanAlpha float64

	oneOverE float64 // sqrt(1-e^2): minor/major axis ratio
	e        float64 // 1/oneOverE: major/minor axis ratio

	zApex quantity.Length // precomputed apex z, -inf for the ray case
}

// NewEllipticCone constructs a non-degenerate elliptic cone. tanAlpha is
// the tan of the half-opening angle, eccentricity in [0,1), x0 the
// initial major-axis length at the origin.
func NewEllipticCone(r Ray, tangent quantity.Unit3, tanAlpha, eccentricity float64, x0 quantity.Length) EllipticCone {
	if tanAlpha < 0 || x0 < 0 {
		panic("shapes: elliptic cone requires tanAlpha>=0, x0>=0")
	}
	if eccentricity < 0 || eccentricity >= 1 {
		panic("shapes: elliptic cone requires 0<=eccentricity<1")
	}
	oneOverE := math.Sqrt(math.Max(0, 1-eccentricity*eccentricity))
	c := EllipticCone{
		R: r, Tangent: tangent,
		x0: x0, tanAlpha: tanAlpha,
		oneOverE: oneOverE,
	}
	if oneOverE > 0 {
		c.e = 1 / oneOverE
	} else {
		c.e = math.Inf(1)
	}
	c.zApex = apexZ(x0, tanAlpha)
	return c
}

// NewRayCone constructs a degenerate elliptic cone that is exactly a
// ray: tanAlpha=0, x0=0.
func NewRayCone(r Ray) EllipticCone {
	return NewEllipticCone(r, quantity.BuildOrthogonalFrame(r.D).X, 0, 0, 0)
}

func apexZ(x0 quantity.Length, tanAlpha float64) quantity.Length {
	if x0 != 0 || tanAlpha != 0 {
		return -x0 / quantity.Length(tanAlpha)
	}
	return quantity.Length(math.Inf(-1))
}

// IsRay reports whether the cone is the degenerate ray case (tan α = 0
// and x0 = 0).
func (c EllipticCone) IsRay() bool { return c.tanAlpha == 0 && c.x0 == 0 }

// IsFrustum reports whether the cone has a fixed cross-section (tan α =
// 0, x0 > 0): an elliptical cylinder.
func (c EllipticCone) IsFrustum() bool { return c.tanAlpha == 0 && c.x0 > 0 }

// X0 returns the initial major-axis half-length at the cone's origin.
func (c EllipticCone) X0() quantity.Length { return c.x0 }

// TanAlpha returns the tan of the cone's half-opening angle.
func (c EllipticCone) TanAlpha() float64 { return c.tanAlpha }

// ZApex returns the precomputed z position of the cone's apex,
// -inf for the ray case.
func (c EllipticCone) ZApex() quantity.Length { return c.zApex }

// E returns the major/minor axis ratio 1/sqrt(1-ecc^2); +Inf for a
// perfectly degenerate (flat) cone.
func (c EllipticCone) E() float64 { return c.e }

// Frame returns the cone's local frame: X = tangent (major axis), Y =
// bitangent (minor axis), Z = propagation direction.
func (c EllipticCone) Frame() quantity.Frame {
	return quantity.Frame{X: c.Tangent, Y: c.R.D.Cross(c.Tangent), Z: c.R.D}
}

// Axes returns the major and minor axis half-lengths of the cone's
// cross-section after propagating a distance z.
func (c EllipticCone) Axes(z quantity.Length) quantity.Vec2 {
	r := quantity.Length(c.tanAlpha)*z + c.x0
	return quantity.Vec2{X: r, Y: r * quantity.Length(c.oneOverE)}
}

// Contains reports whether the cone's closed interior contains p,
// restricted to the z-range rng.
func (c EllipticCone) Contains(p quantity.Vec3, rng quantity.Range) bool {
	local := c.Frame().ToLocal(p.Sub(c.R.O))
	return c.containsLocal(local, rng)
}

func (c EllipticCone) containsLocal(p quantity.Vec3, rng quantity.Range) bool {
	if !rng.Contains(p.Z) || p.Z < c.zApex {
		return false
	}
	ztx := quantity.Length(c.tanAlpha)*p.Z + c.x0
	lhs := float64(p.X*p.X) + float64(c.e*c.e)*float64(p.Y*p.Y)
	return lhs <= float64(ztx*ztx)
}

// ContainsRayMeanPoint reports whether the cone contains the point at
// distance d along its own central ray — true for any d>=0, including
// when the cone degenerates to a ray, and false for d<0.
func (c EllipticCone) ContainsRayMeanPoint(d quantity.Length) bool {
	if d < 0 {
		return false
	}
	return c.Contains(c.R.Propagate(d), quantity.FullRange())
}

// Project maps a world-space point onto the cone's cross-section at
// propagation distance z, in the cone's local 2D frame.
func (c EllipticCone) Project(p quantity.Vec3, z quantity.Length) quantity.Vec2 {
	local := c.Frame().ToLocal(p.Sub(c.R.O))
	return c.projectLocal(local, z)
}

func (c EllipticCone) projectLocal(p quantity.Vec3, z quantity.Length) quantity.Vec2 {
	xy := quantity.Vec2{X: p.X, Y: p.Y}
	if c.x0 == 0 && c.tanAlpha == 0 {
		return xy
	}
	z0 := p.Z
	num := float64(quantity.Length(c.tanAlpha)*z + c.x0)
	den := math.Abs(float64(quantity.Length(c.tanAlpha)*z0 + c.x0))
	scale := num / den
	return xy.Scale(scale)
}

// Offset translates the cone's origin by the given displacement.
func (c *EllipticCone) Offset(d quantity.Vec3) { c.R.O = c.R.O.Add(d) }

// SetX0 updates the initial major-axis length, recomputing the apex.
func (c *EllipticCone) SetX0(x0 quantity.Length) {
	c.x0 = x0
	c.zApex = apexZ(x0, c.tanAlpha)
}
