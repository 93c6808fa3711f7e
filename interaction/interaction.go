// Package interaction describes a beam's intersection geometry against
// a surface, an edge, or empty space (volumetric escape): barycentric
// interpolation, the geometric/shading frames, the beam footprint, and
// the self-intersection-avoiding ray origin offset every vertex of the
// traversal driver needs before it can re-launch a beam.
package interaction

import (
	"math"

	"github.com/sixy6e/wavetrace/edge"
	"github.com/sixy6e/wavetrace/mesh"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

// Dir2 is a unit direction within a surface's 2D tangent plane.
type Dir2 struct{ X, Y float64 }

func (d Dir2) scale(l quantity.Length) quantity.Vec2 {
	return quantity.Vec2{X: l * quantity.Length(d.X), Y: l * quantity.Length(d.Y)}
}

// Footprint is the 2D footprint of a beam-surface intersection, spanned
// in the geometric tangent frame and centred on the intersection point.
type Footprint struct {
	X      Dir2 // direction of the major axis
	La, Lb quantity.Length
}

// A returns the major-axis extent vector.
func (f Footprint) A() quantity.Vec2 { return f.X.scale(f.La) }

// Y returns the footprint's minor-axis direction, orthogonal to X.
func (f Footprint) Y() Dir2 { return Dir2{X: -f.X.Y, Y: f.X.X} }

// B returns the minor-axis extent vector.
func (f Footprint) B() quantity.Vec2 { return f.Y().scale(f.Lb) }

// Barycentric is a triangle-local coordinate pair (the third weight is
// implied, 1-U-V).
type Barycentric struct {
	U, V float64
}

// Point evaluates the barycentric coordinate against a triangle's
// vertices.
func (bc Barycentric) Point(t shapes.Triangle) quantity.Vec3 {
	w := 1 - bc.U - bc.V
	return quantity.Vec3{
		X: quantity.Length(w)*t.A.X + quantity.Length(bc.U)*t.B.X + quantity.Length(bc.V)*t.C.X,
		Y: quantity.Length(w)*t.A.Y + quantity.Length(bc.U)*t.B.Y + quantity.Length(bc.V)*t.C.Y,
		Z: quantity.Length(w)*t.A.Z + quantity.Length(bc.U)*t.B.Z + quantity.Length(bc.V)*t.C.Z,
	}
}

// Surface describes a beam-surface intersection: centre point,
// barycentric coordinates, footprint, and the geometric/shading frames.
//
// Grounded on original_source/include/wt/interaction/intersection.hpp's
// intersection_surface_t and src/interaction/intersection.cpp.
type Surface struct {
	WP   quantity.Vec3
	Bary Barycentric

	TriIdx       uint32
	ShapeID      uint32
	HasShape     bool
	Footprint    Footprint

	Geo     quantity.Frame
	Shading quantity.Frame
}

// NewSurface builds a surface interaction from a resolved triangle hit.
// shadingNormal lets a normal-mapping BSDF perturb the shading frame
// away from the geometric one; pass tri.N to use the geometric normal
// unperturbed.
func NewSurface(tri shapes.Triangle, triIdx uint32, bary Barycentric, wp quantity.Vec3, shadingNormal quantity.Unit3, footprint Footprint) Surface {
	geo := mesh.TangentFrame(tri)
	shading := quantity.BuildOrthogonalFrame(shadingNormal)
	return Surface{
		WP: wp, Bary: bary,
		TriIdx: triIdx, ShapeID: tri.ShapeID, HasShape: true,
		Footprint: footprint,
		Geo:       geo,
		Shading:   shading,
	}
}

// Ng returns the geometric normal.
func (s Surface) Ng() quantity.Unit3 { return s.Geo.Z }

// Ns returns the shading normal.
func (s Surface) Ns() quantity.Unit3 { return s.Shading.Z }

// SDirection returns the s-polarization direction (normal to the plane
// of incidence) for an incident or outgoing direction w, oriented so the
// sp-frame is identical whether w points into or out of the surface.
func (s Surface) SDirection(w quantity.Unit3) quantity.Unit3 {
	crs := w.Cross(s.Shading.Z)
	l2 := crs.Dot(crs)
	var ret quantity.Unit3
	if l2 < 1e-14 {
		ret = s.Shading.X
	} else {
		ret = quantity.Unit3FromVec3(crs.Vec3())
	}
	if w.Dot(s.Shading.Z) < 0 {
		return ret.Neg()
	}
	return ret
}

// SPFrame builds the sp-frame for direction w: T is the s-polarization
// direction, B the p-polarization direction (in the plane of
// incidence), N is w itself.
func (s Surface) SPFrame(w quantity.Unit3) quantity.Frame {
	sDir := s.SDirection(w)
	p := quantity.Unit3FromVec3(sDir.Cross(w).Vec3())
	if w.Dot(s.Shading.Z) < 0 {
		p = p.Neg()
	}
	return quantity.Frame{X: sDir, Y: p, Z: w}
}

// selfIntersectionEpsilons are the fixed coefficients of the
// triangle-extent self-intersection error bound, adapted from NVIDIA's
// "Solving Self-Intersection Artifacts in DirectX Raytracing".
const (
	errC0 = 3e-6
	errC1 = 5e-6
	errC2 = 3e-6
)

func absVec(v quantity.Vec3) quantity.Vec3 {
	return quantity.Vec3{X: quantity.Length(math.Abs(float64(v.X))), Y: quantity.Length(math.Abs(float64(v.Y))), Z: quantity.Length(math.Abs(float64(v.Z)))}
}

func maxElem(v quantity.Vec3) quantity.Length {
	m := v.X
	if v.Y > m {
		m = v.Y
	}
	if v.Z > m {
		m = v.Z
	}
	return m
}

func triangleFPError(a, b, c, rayOrigin quantity.Vec3) quantity.Vec3 {
	v0 := absVec(a)
	e1 := absVec(b.Sub(a))
	e2 := absVec(c.Sub(a))
	extents := e1.Add(e2).Add(absVec(e1.Sub(e2)))
	extent := maxElem(extents)

	objErr := v0.Scale(float64(errC0 + errC2)).Add(quantity.Vec3{X: errC1 * extent, Y: errC1 * extent, Z: errC1 * extent})
	wrldErr := absVec(rayOrigin).Scale(errC1 + errC2)
	return objErr.Add(wrldErr)
}

// OffsetedRayOrigin computes a re-launch origin for ray, offset along
// the geometric normal by a magnitude bounding the triangle's
// floating-point reconstruction error, avoiding self-intersection
// against the same triangle.
func (s Surface) OffsetedRayOrigin(ray shapes.Ray, tri shapes.Triangle) quantity.Vec3 {
	fpErr := triangleFPError(tri.A, tri.B, tri.C, ray.O)
	ng := s.Ng().Vec3()
	offsetDist := fpErr.Dot(absVec(ng))
	offset := ng.Scale(float64(offsetDist))
	if ray.D.Vec3().Dot(offset) >= 0 {
		return ray.O.Add(offset)
	}
	return ray.O.Sub(offset)
}

// Edge describes a beam-edge (silhouette wedge) intersection.
type Edge struct {
	E  *edge.Edge
	WP quantity.Vec3
}

// SHFrame builds the UTD "soft"/"hard" diffraction frame for direction
// w: T ("soft", beta) lies in the plane containing the edge and w, B
// ("hard", phi) is orthogonal to that plane.
func (e Edge) SHFrame(w quantity.Unit3) quantity.Frame {
	phi := quantity.Unit3FromVec3(w.Cross(e.E.T).Vec3())
	beta := quantity.Unit3FromVec3(phi.Cross(w).Vec3())
	return quantity.Frame{X: beta, Y: phi, Z: w}
}

// OffsetedRayOrigin computes a re-launch origin for ray, offset away
// from the wedge by the larger of its two adjacent triangles' floating-
// point error bound. tris is the global triangle arena the edge's Tri1/
// Tri2 indices reference.
func (e Edge) OffsetedRayOrigin(ray shapes.Ray, tris []shapes.Triangle) quantity.Vec3 {
	var dir quantity.Unit3
	if !e.E.HasTri2 {
		dir = e.E.O1.Neg()
	} else {
		v := e.E.O1.Vec3().Add(e.E.O2.Vec3())
		if v.Dot(v) > 1e-14 {
			dir = quantity.Unit3FromVec3(v).Neg()
		} else {
			dir = e.E.O2.Neg()
		}
	}

	t1 := tris[e.E.Tri1]
	fpErr1 := triangleFPError(t1.A, t1.B, t1.C, ray.O)
	d := fpErr1.Dot(absVec(e.E.O1.Vec3()))
	if e.E.HasTri2 {
		t2 := tris[e.E.Tri2]
		fpErr2 := triangleFPError(t2.A, t2.B, t2.C, ray.O)
		d2 := fpErr2.Dot(absVec(e.E.O2.Vec3()))
		if d2 > d {
			d = d2
		}
	}

	return ray.O.Add(dir.Vec3().Scale(float64(d)))
}

// Volumetric describes a beam that escaped into empty space (no
// surface or edge hit within range).
type Volumetric struct {
	WP quantity.Vec3
}

// OffsetedRayOrigin is a no-op for a volumetric intersection: there is
// no surface to self-intersect against.
func (v Volumetric) OffsetedRayOrigin(ray shapes.Ray) quantity.Vec3 { return ray.O }
