package shapes

import (
	"testing"

	"github.com/sixy6e/wavetrace/quantity"
)

func testTriangle() Triangle {
	return Triangle{
		A: quantity.Vec3{X: -1, Y: -1, Z: 0},
		B: quantity.Vec3{X: 1, Y: -1, Z: 0},
		C: quantity.Vec3{X: 0, Y: 1, Z: 0},
		N: quantity.NewUnit3(0, 0, 1),
	}
}

func TestIntersectRayTriangleHitsCentroid(t *testing.T) {
	tri := testTriangle()
	c := tri.Centroid()
	r := Ray{O: quantity.Vec3{X: c.X, Y: c.Y, Z: -10}, D: quantity.NewUnit3(0, 0, 1)}
	hit := IntersectRayTriangle(r, tri, quantity.FullRange())
	if !hit.Hit {
		t.Fatalf("expected a hit through the centroid")
	}
	if hit.Dist != 10 {
		t.Errorf("got dist %v, want 10", hit.Dist)
	}
}

func TestIntersectRayTriangleMiss(t *testing.T) {
	tri := testTriangle()
	r := Ray{O: quantity.Vec3{X: 100, Y: 100, Z: -10}, D: quantity.NewUnit3(0, 0, 1)}
	hit := IntersectRayTriangle(r, tri, quantity.FullRange())
	if hit.Hit {
		t.Errorf("expected a miss")
	}
}

func TestDegenerateTriangleZeroArea(t *testing.T) {
	tri := Triangle{
		A: quantity.Vec3{X: 0, Y: 0, Z: 0},
		B: quantity.Vec3{X: 1, Y: 0, Z: 0},
		C: quantity.Vec3{X: 2, Y: 0, Z: 0},
	}
	if !tri.Degenerate() {
		t.Errorf("colinear triangle should be degenerate")
	}
}

func TestIntersectConeTriangleContainsCentroid(t *testing.T) {
	tri := testTriangle()
	r := Ray{O: quantity.Vec3{X: 0, Y: 0, Z: -10}, D: quantity.NewUnit3(0, 0, 1)}
	tangent := quantity.BuildOrthogonalFrame(r.D).X
	c := NewEllipticCone(r, tangent, 0.5, 0, 0.1)
	dist, ok := IntersectConeTriangle(c, tri, quantity.FullRange())
	if !ok {
		t.Fatalf("expected cone to intersect triangle")
	}
	if dist <= 0 {
		t.Errorf("expected positive distance, got %v", dist)
	}
}
