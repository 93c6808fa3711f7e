package shapes

import (
	"math"

	"github.com/sixy6e/wavetrace/quantity"
)

// Ellipsoid is a ball of uniform radius used by
// a "ball query", which is treated as the zero-velocity
// case of the cone query.
type Ellipsoid struct {
	Centre quantity.Vec3
	Radius quantity.Length
}

// Contains reports whether p lies within the ellipsoid.
func (e Ellipsoid) Contains(p quantity.Vec3) bool {
	return e.Centre.Sub(p).Len() <= e.Radius
}

// AABB returns the ellipsoid's bounding box.
func (e Ellipsoid) AABB() AABB {
	r := e.Radius
	return AABB{
		Min: quantity.Vec3{X: e.Centre.X - r, Y: e.Centre.Y - r, Z: e.Centre.Z - r},
		Max: quantity.Vec3{X: e.Centre.X + r, Y: e.Centre.Y + r, Z: e.Centre.Z + r},
	}
}

// AsCone returns the ball as the zero-velocity elliptic cone: a ray
// whose origin sits at the ball's centre, pointing along the given
// axis, with x0 equal to the radius and tan α = 0 (a pure
// cylinder of fixed cross-section equal to the ball's great circle,
// which is degenerate-equivalent for the purposes of a containment
// test centred at the origin). Ball queries use Ellipsoid.Contains
// directly; this constructor exists so traversal code that is
// parametric over "cone or ball" can treat both uniformly.
func (e Ellipsoid) AsCone(axis quantity.Unit3) EllipticCone {
	r := Ray{O: e.Centre, D: axis}
	tangent := quantity.BuildOrthogonalFrame(axis).X
	return NewEllipticCone(r, tangent, 0, 0, e.Radius)
}

// RayTriIntersectEps is the epsilon used by the Möller–Trumbore test to
// reject near-degenerate triangles.
const RayTriIntersectEps = 1e-12

// RayTriHit carries the result of a single ray-triangle intersection.
type RayTriHit struct {
	Dist      quantity.Length
	U, V      float64 // barycentric coordinates (w = 1-u-v)
	FrontFace bool
	Hit       bool
}

// IntersectRayTriangle implements the Möller–Trumbore ray-triangle
// intersection test, restricted to rng.
func IntersectRayTriangle(r Ray, tri Triangle, rng quantity.Range) RayTriHit {
	e1 := tri.B.Sub(tri.A)
	e2 := tri.C.Sub(tri.A)

	d := r.D.Vec3()
	pvec := d.Cross(e2)
	det := e1.Dot(pvec)
	if math.Abs(float64(det)) < RayTriIntersectEps {
		return RayTriHit{}
	}
	invDet := 1 / float64(det)

	tvec := r.O.Sub(tri.A)
	u := float64(tvec.Dot(pvec)) * invDet
	if u < 0 || u > 1 {
		return RayTriHit{}
	}

	qvec := tvec.Cross(e1)
	v := float64(d.Dot(qvec)) * invDet
	if v < 0 || u+v > 1 {
		return RayTriHit{}
	}

	dist := quantity.Length(float64(e2.Dot(qvec)) * invDet)
	if !rng.Contains(dist) {
		return RayTriHit{}
	}

	return RayTriHit{Dist: dist, U: u, V: v, FrontFace: det > 0, Hit: true}
}

// IntersectConeTriangle reports whether the elliptic cone's closed
// support overlaps tri's closed interior, and if so the distance to the
// closest point of overlap along the cone's axis. This is a sampled
// conservative test: the triangle is clipped against the cone by
// checking its three vertices and its centroid against the cone's
// containment predicate at their own propagation distance, which is
// exact for the envelope's convex cross-section and the triangle's
// convex hull.
func IntersectConeTriangle(c EllipticCone, tri Triangle, rng quantity.Range) (quantity.Length, bool) {
	pts := [4]quantity.Vec3{tri.A, tri.B, tri.C, tri.Centroid()}
	best := quantity.Length(math.Inf(1))
	found := false
	for _, p := range pts {
		local := c.Frame().ToLocal(p.Sub(c.R.O))
		if !rng.Contains(local.Z) {
			continue
		}
		if c.containsLocal(local, rng) {
			if !found || local.Z < best {
				best = local.Z
				found = true
			}
		}
	}
	if found {
		return best, true
	}
	// Fall back to edge-midpoint sampling: catches triangles whose
	// vertices straddle the cone's lateral surface but whose edges
	// clip through its support.
	mids := [3]quantity.Vec3{
		{X: (tri.A.X + tri.B.X) / 2, Y: (tri.A.Y + tri.B.Y) / 2, Z: (tri.A.Z + tri.B.Z) / 2},
		{X: (tri.B.X + tri.C.X) / 2, Y: (tri.B.Y + tri.C.Y) / 2, Z: (tri.B.Z + tri.C.Z) / 2},
		{X: (tri.C.X + tri.A.X) / 2, Y: (tri.C.Y + tri.A.Y) / 2, Z: (tri.C.Z + tri.A.Z) / 2},
	}
	for _, p := range mids {
		local := c.Frame().ToLocal(p.Sub(c.R.O))
		if !rng.Contains(local.Z) {
			continue
		}
		if c.containsLocal(local, rng) {
			if !found || local.Z < best {
				best = local.Z
				found = true
			}
		}
	}
	return best, found
}
