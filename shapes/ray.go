// Package shapes implements the geometric primitives the ADS builds over
// and tests against: triangles, axis-aligned bounding boxes, rays,
// ellipsoids, and elliptic cones (degenerate-to-ray beams).
package shapes

import "github.com/sixy6e/wavetrace/quantity"

// Ray is a half-infinite line: an origin and a unit propagation
// direction.
type Ray struct {
	O quantity.Vec3
	D quantity.Unit3
}

// Propagate returns the point reached after advancing distance d along
// the ray.
func (r Ray) Propagate(d quantity.Length) quantity.Vec3 {
	return r.O.Add(r.D.Vec3().Scale(float64(d)))
}

// Triangle is a single triangle with a face normal, shape back-reference,
// and up to three adjacent-edge ids (NoEdge sentinel for "no
// edge", matching the arena+index reformulation of the source's raw
// tri1/tri2 pointers — see DESIGN.md).
type Triangle struct {
	A, B, C quantity.Vec3
	N       quantity.Unit3

	ShapeID      uint32
	ShapeLocalID uint32

	// EdgeAB, EdgeBC, EdgeCA index into an edge.Database's arena; NoEdge
	// (math.MaxUint32) marks "no registered edge for this side".
	EdgeAB, EdgeBC, EdgeCA uint32
}

// NoEdge is the sentinel "no edge" sonar-style back-reference id.
const NoEdge uint32 = ^uint32(0)

// Degenerate reports whether the triangle has zero area (colinear or
// coincident vertices). Degenerate triangles are accepted by the ADS
// but contribute zero to area sampling.
func (t Triangle) Degenerate() bool {
	return t.Area() <= 0
}

// Area returns the triangle's surface area.
func (t Triangle) Area() quantity.Length2 {
	e1 := t.B.Sub(t.A)
	e2 := t.C.Sub(t.A)
	return quantity.Length2(e1.Cross(e2).Len()) / 2
}

// Centroid returns the triangle's centroid, used by the BVH builder for
// SAH partitioning and by projection/containment round-trips.
func (t Triangle) Centroid() quantity.Vec3 {
	return quantity.Vec3{
		X: (t.A.X + t.B.X + t.C.X) / 3,
		Y: (t.A.Y + t.B.Y + t.C.Y) / 3,
		Z: (t.A.Z + t.B.Z + t.C.Z) / 3,
	}
}

// AABB returns the triangle's tight bounding box.
func (t Triangle) AABB() AABB {
	b := EmptyAABB()
	b.ExpandPoint(t.A)
	b.ExpandPoint(t.B)
	b.ExpandPoint(t.C)
	return b
}
