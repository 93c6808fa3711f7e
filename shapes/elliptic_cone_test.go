package shapes

import (
	"math"
	"testing"

	"github.com/sixy6e/wavetrace/quantity"
)

func straightRay() Ray {
	return Ray{O: quantity.Vec3{}, D: quantity.NewUnit3(0, 0, 1)}
}

func TestEllipticConeContainsMeanRay(t *testing.T) {
	r := straightRay()
	tangent := quantity.BuildOrthogonalFrame(r.D).X
	c := NewEllipticCone(r, tangent, 0.1, 0.3, 0.01)

	for _, d := range []quantity.Length{0, 1, 10, 1000} {
		if !c.ContainsRayMeanPoint(d) {
			t.Errorf("non-degenerate cone should contain mean ray at d=%v", d)
		}
	}
}

func TestDegenerateRayCone(t *testing.T) {
	r := straightRay()
	c := NewRayCone(r)
	if !c.IsRay() {
		t.Fatalf("expected IsRay() == true")
	}
	if c.ZApex() != quantity.Length(math.Inf(-1)) {
		t.Errorf("expected -inf apex for ray cone, got %v", c.ZApex())
	}
	// A ray cone only "contains" its own axis at d=0 in the strict
	// sense of having zero cross-section; the axis point itself
	// still satisfies the inequality (0<=0) for any d.
	if !c.ContainsRayMeanPoint(0) {
		t.Errorf("ray cone should contain its own origin")
	}
}

func TestEllipticConeAxesMonotonic(t *testing.T) {
	r := straightRay()
	tangent := quantity.BuildOrthogonalFrame(r.D).X
	c := NewEllipticCone(r, tangent, 0.2, 0, 0.5)
	a0 := c.Axes(0)
	a1 := c.Axes(10)
	if a1.X <= a0.X {
		t.Errorf("axes should grow with propagation distance: a0=%v a1=%v", a0, a1)
	}
}

func TestAABBIntersectRay(t *testing.T) {
	box := AABB{Min: quantity.Vec3{X: -1, Y: -1, Z: -1}, Max: quantity.Vec3{X: 1, Y: 1, Z: 1}}
	r := Ray{O: quantity.Vec3{Z: -5}, D: quantity.NewUnit3(0, 0, 1)}
	tmin, tmax, hit := box.IntersectRay(r, quantity.FullRange())
	if !hit {
		t.Fatalf("expected hit")
	}
	if tmin != 4 || tmax != 6 {
		t.Errorf("got tmin=%v tmax=%v, want 4,6", tmin, tmax)
	}
}

func TestAABBSurfaceAreaFinite(t *testing.T) {
	box := EmptyAABB()
	box.ExpandPoint(quantity.Vec3{X: 0, Y: 0, Z: 0})
	box.ExpandPoint(quantity.Vec3{X: 2, Y: 3, Z: 4})
	want := quantity.Length2(2 * (2*3 + 3*4 + 4*2))
	if box.SurfaceArea() != want {
		t.Errorf("got %v want %v", box.SurfaceArea(), want)
	}
}
