// Package edge implements the silhouette-edge database: for every
// triangle edge shared by two triangles, the wedge opening angle and
// oriented tangent/normal pairs used by FSD's UTD wedge diffraction.
package edge

import (
	"math"

	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

// NoEdge mirrors shapes.NoEdge: the "no adjacent edge" sentinel.
const NoEdge = shapes.NoEdge

// Edge is a shared triangle edge parameterized as a wedge: two face
// normals and two in-plane tangents (oriented into the wedge so its
// opening angle α∈(0,2π) is well-defined), the wedge angle itself, and
// back-references to the (at most two) adjacent triangles.
//
// Grounded on original_source/include/wt/interaction/fsd/utd.hpp's
// wedge-angle use.
type Edge struct {
	A, B quantity.Vec3 // endpoints
	T    quantity.Unit3 // unit tangent, B-A normalized

	N1, N2 quantity.Unit3 // face normals of the two adjacent triangles
	O1, O2 quantity.Unit3 // in-plane tangents, oriented into the wedge

	Alpha quantity.Angle // wedge opening angle, in (0, 2π)

	// IOR is a placeholder refractive-index field, unused until a
	// dielectric-wedge model is added; exact dielectric-wedge diffraction
	// is out of scope beyond UTD's perfectly-conducting coefficients.
	IOR float64

	Tri1, Tri2     uint32 // index into the global triangle array
	HasTri2        bool   // false for boundary edges (second triangle missing)
}

// Database is an indexed arena of edges plus the per-triangle
// edge-to-triangle back-references used by cone-query edge collection.
type Database struct {
	Edges []Edge
}

type edgeKey struct {
	ax, ay, az int64
	bx, by, bz int64
}

// quantizeVec3 rounds a vertex to an integer grid so that two triangles'
// shared-edge endpoints, which should be bit-identical in a
// deduplicated mesh, hash identically even after minor floating-point
// drift from import-time scaling.
func quantizeVec3(v quantity.Vec3) (int64, int64, int64) {
	const scale = 1e6
	return int64(math.Round(float64(v.X) * scale)),
		int64(math.Round(float64(v.Y) * scale)),
		int64(math.Round(float64(v.Z) * scale))
}

func makeKey(p, q quantity.Vec3) edgeKey {
	px, py, pz := quantizeVec3(p)
	qx, qy, qz := quantizeVec3(q)
	if px > qx || (px == qx && (py > qy || (py == qy && pz > qz))) {
		px, py, pz, qx, qy, qz = qx, qy, qz, px, py, pz
	}
	return edgeKey{px, py, pz, qx, qy, qz}
}

// Build finds, for every triangle edge, the (at most one) neighboring
// triangle that shares it, computes the wedge angle, and registers the
// edge id in both triangles' edge fields. It mutates tris in place to
// install EdgeAB/EdgeBC/EdgeCA.
func Build(tris []shapes.Triangle) *Database {
	type pending struct {
		triIdx   int
		edgeSlot int // 0=AB, 1=BC, 2=CA
		p, q     quantity.Vec3
	}

	buckets := make(map[edgeKey][]pending)
	for i, t := range tris {
		edges := [3]struct {
			p, q quantity.Vec3
			slot int
		}{
			{t.A, t.B, 0},
			{t.B, t.C, 1},
			{t.C, t.A, 2},
		}
		for _, e := range edges {
			k := makeKey(e.p, e.q)
			buckets[k] = append(buckets[k], pending{triIdx: i, edgeSlot: e.slot, p: e.p, q: e.q})
		}
	}

	db := &Database{}
	for _, group := range buckets {
		if len(group) == 0 {
			continue
		}
		first := group[0]
		tri1 := tris[first.triIdx]
		n1 := tri1.N
		o1 := orientedTangent(tri1, first.edgeSlot)

		e := Edge{
			A: first.p, B: first.q,
			T:    quantity.Unit3FromVec3(first.q.Sub(first.p)),
			N1:   n1, O1: o1,
			Tri1: uint32(first.triIdx),
		}

		if len(group) >= 2 {
			second := group[1]
			tri2 := tris[second.triIdx]
			e.N2 = tri2.N
			e.O2 = orientedTangent(tri2, second.edgeSlot)
			e.Tri2 = uint32(second.triIdx)
			e.HasTri2 = true
			e.Alpha = wedgeAngle(e.N1, e.O1, e.N2, e.O2)
		} else {
			// boundary edge: treat as a flat half-plane (alpha = pi)
			e.Alpha = quantity.Angle(math.Pi)
		}

		idx := uint32(len(db.Edges))
		db.Edges = append(db.Edges, e)

		installEdgeRef(&tris[first.triIdx], first.edgeSlot, idx)
		if len(group) >= 2 {
			installEdgeRef(&tris[group[1].triIdx], group[1].edgeSlot, idx)
		}
	}
	return db
}

// orientedTangent returns the in-plane direction, orthogonal to the
// edge, pointing from the edge into the triangle's interior — "into the
// wedge".
func orientedTangent(t shapes.Triangle, slot int) quantity.Unit3 {
	var p, q, opposite quantity.Vec3
	switch slot {
	case 0:
		p, q, opposite = t.A, t.B, t.C
	case 1:
		p, q, opposite = t.B, t.C, t.A
	default:
		p, q, opposite = t.C, t.A, t.B
	}
	edgeDir := quantity.Unit3FromVec3(q.Sub(p))
	toOpposite := opposite.Sub(p)
	// project out the edge-parallel component
	comp := toOpposite.Dot(edgeDir.Vec3())
	perp := toOpposite.Sub(edgeDir.Vec3().Scale(comp))
	return quantity.Unit3FromVec3(perp)
}

// wedgeAngle computes the opening angle between the two triangles'
// in-plane tangents, measured through the wedge's exterior (the
// supplement of the dihedral angle between the two faces), so that a
// flat plate (two coplanar, oppositely-wound triangles) yields alpha=pi.
func wedgeAngle(n1 quantity.Unit3, o1 quantity.Unit3, n2 quantity.Unit3, o2 quantity.Unit3) quantity.Angle {
	cosTheta := o1.Dot(o2)
	if cosTheta > 1 {
		cosTheta = 1
	}
	if cosTheta < -1 {
		cosTheta = -1
	}
	theta := math.Acos(cosTheta)
	// the wedge's opening angle is measured going around the exterior,
	// i.e. 2π minus the interior angle between the two tangents; a flat
	// plate has opposite tangents (theta=pi) and so gives alpha=pi.
	// Coincident tangents (theta=0, the two faces folded onto each
	// other) are also mapped to alpha=pi rather than 2π.
	alpha := 2*math.Pi - theta
	if alpha > 2*math.Pi {
		alpha = 2 * math.Pi
	}
	if theta == 0 {
		alpha = math.Pi
	}
	return quantity.Angle(alpha)
}

func installEdgeRef(t *shapes.Triangle, slot int, idx uint32) {
	switch slot {
	case 0:
		t.EdgeAB = idx
	case 1:
		t.EdgeBC = idx
	default:
		t.EdgeCA = idx
	}
}
