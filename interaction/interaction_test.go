package interaction

import (
	"testing"

	"github.com/sixy6e/wavetrace/edge"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

func flatTriangle() shapes.Triangle {
	return shapes.Triangle{
		A: quantity.Vec3{X: 0, Y: 0, Z: 0},
		B: quantity.Vec3{X: 1, Y: 0, Z: 0},
		C: quantity.Vec3{X: 0, Y: 1, Z: 0},
		N: quantity.NewUnit3(0, 0, 1),
	}
}

func TestBarycentricPointReproducesVertices(t *testing.T) {
	tri := flatTriangle()
	cases := []struct {
		bc   Barycentric
		want quantity.Vec3
	}{
		{Barycentric{0, 0}, tri.A},
		{Barycentric{1, 0}, tri.B},
		{Barycentric{0, 1}, tri.C},
	}
	for _, c := range cases {
		got := c.bc.Point(tri)
		if got != c.want {
			t.Fatalf("Point(%v) = %v, want %v", c.bc, got, c.want)
		}
	}
}

func TestSurfaceSDirectionOrientationInvariant(t *testing.T) {
	tri := flatTriangle()
	wp := quantity.Vec3{X: 0.25, Y: 0.25, Z: 0}
	s := NewSurface(tri, 0, Barycentric{0.25, 0.25}, wp, tri.N, Footprint{})

	wIn := quantity.NewUnit3(0.3, 0, -1)
	wOut := quantity.NewUnit3(0.3, 0, 1)

	sIn := s.SDirection(wIn)
	sOut := s.SDirection(wOut)
	if sIn != sOut {
		t.Fatalf("expected the s-direction to agree for incoming and outgoing rays through the same point: %v vs %v", sIn, sOut)
	}
}

func TestSurfaceOffsetMovesAlongNormal(t *testing.T) {
	tri := flatTriangle()
	s := NewSurface(tri, 0, Barycentric{0.2, 0.2}, tri.Centroid(), tri.N, Footprint{})
	ray := shapes.Ray{O: tri.Centroid().Add(quantity.Vec3{Z: 1}), D: quantity.NewUnit3(0, 0, -1)}

	off := s.OffsetedRayOrigin(ray, tri)
	if off.X != ray.O.X || off.Y != ray.O.Y {
		t.Fatalf("expected the offset to only move along Z, got %v from %v", off, ray.O)
	}
}

func TestVolumetricOffsetIsNoOp(t *testing.T) {
	ray := shapes.Ray{O: quantity.Vec3{X: 1, Y: 2, Z: 3}, D: quantity.NewUnit3(0, 0, 1)}
	v := Volumetric{WP: ray.O}
	if got := v.OffsetedRayOrigin(ray); got != ray.O {
		t.Fatalf("expected a no-op offset, got %v", got)
	}
}

func TestEdgeOffsetMovesAwayFromWedge(t *testing.T) {
	tris := []shapes.Triangle{flatTriangle(), flatTriangle()}
	db := edge.Build(tris)
	if len(db.Edges) == 0 {
		t.Fatal("expected at least one edge from a single triangle")
	}
	e := Edge{E: &db.Edges[0]}
	ray := shapes.Ray{O: e.E.A, D: quantity.NewUnit3(0, 0, 1)}

	off := e.OffsetedRayOrigin(ray, tris)
	if off == ray.O {
		t.Fatal("expected the edge offset to move the origin away from the wedge")
	}
}
