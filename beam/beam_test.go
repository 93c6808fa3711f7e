package beam

import (
	"math"
	"testing"

	"github.com/sixy6e/wavetrace/ads"
	"github.com/sixy6e/wavetrace/mesh"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestWavefrontRoundTrip(t *testing.T) {
	w := NewWavefront(
		quantity.Vec2{X: 2, Y: 1},
		Dir2{X: 1, Y: 0},
		quantity.Vec2{X: 3, Y: -1},
	)
	p := quantity.Vec2{X: 4.5, Y: -2.25}

	c := w.ToCanonical(p)
	back := w.FromCanonical(c)

	if !approxEqual(float64(back.X), float64(p.X), 1e-9) || !approxEqual(float64(back.Y), float64(p.Y), 1e-9) {
		t.Fatalf("round trip failed: got %+v, want %+v", back, p)
	}
}

func TestWavefrontDiracPDF(t *testing.T) {
	w := NewWavefront(quantity.Vec2{X: 0, Y: 0}, Dir2{X: 1, Y: 0}, quantity.Vec2{X: 1, Y: 2})

	if !w.IsDirac() {
		t.Fatal("expected a zero-sigma wavefront to be Dirac")
	}
	if got := w.PDF(quantity.Vec2{X: 1, Y: 2}); !math.IsInf(got, 1) {
		t.Fatalf("expected +Inf PDF at the mean, got %v", got)
	}
	if got := w.PDF(quantity.Vec2{X: 1, Y: 3}); got != 0 {
		t.Fatalf("expected 0 PDF away from the mean, got %v", got)
	}
}

func TestWavefrontNonDiracPDFPeaksAtMean(t *testing.T) {
	w := NewWavefront(quantity.Vec2{X: 1, Y: 1}, Dir2{X: 1, Y: 0}, quantity.Vec2{})
	peak := w.PDF(quantity.Vec2{})
	off := w.PDF(quantity.Vec2{X: 1, Y: 0})
	if !(peak > off) {
		t.Fatalf("expected density to peak at the mean: peak=%v off=%v", peak, off)
	}
}

func testEnvelope() shapes.EllipticCone {
	r := shapes.Ray{O: quantity.Vec3{}, D: quantity.NewUnit3(0, 0, 1)}
	return shapes.NewEllipticCone(r, quantity.NewUnit3(1, 0, 0), 0.05, 0, 0.01)
}

func TestBeamIsRayForZeroOpening(t *testing.T) {
	r := shapes.Ray{O: quantity.Vec3{}, D: quantity.NewUnit3(0, 0, 1)}
	b := Beam{Envelope: shapes.NewRayCone(r), K: quantity.Wavenumber(1e7)}
	if !b.IsRay() {
		t.Fatal("expected a zero tan-alpha, zero x0 envelope to be a ray beam")
	}
}

func TestBeamFootprintGrowsWithDistance(t *testing.T) {
	b := Beam{Envelope: testEnvelope(), K: quantity.Wavenumber(1e7)}
	near := b.Footprint(1)
	far := b.Footprint(100)
	if !(far.X > near.X) {
		t.Fatalf("expected footprint to widen with distance: near=%v far=%v", near.X, far.X)
	}
}

func TestBeamStdDevMatchesFootprintScale(t *testing.T) {
	b := Beam{Envelope: testEnvelope(), K: quantity.Wavenumber(1e7)}
	dist := quantity.Length(10)
	fp := b.Footprint(dist)
	sd := b.StdDev(dist)
	if !approxEqual(float64(sd.X), float64(fp.X)/BeamCrossSectionEnvelope, 1e-12) {
		t.Fatalf("std dev should be the footprint scaled by 1/%v", BeamCrossSectionEnvelope)
	}
}

func TestCalculateMinBallisticDistanceZeroAtOrigin(t *testing.T) {
	env := testEnvelope()
	d := calculateMinBallisticDistance(env, env.R)
	if d != 0 {
		t.Fatalf("expected zero min ballistic distance when the ray is the envelope's own mean ray, got %v", d)
	}
}

func TestCalculateMinBallisticDistancePositiveOffAxis(t *testing.T) {
	env := testEnvelope()
	offsetRay := shapes.Ray{O: quantity.Vec3{X: 10, Y: 0, Z: 0}, D: quantity.NewUnit3(0, 0, 1)}
	d := calculateMinBallisticDistance(env, offsetRay)
	if d <= 0 {
		t.Fatalf("expected a positive min ballistic distance for a ray far off the envelope's axis, got %v", d)
	}
}

func TestMaxBallisticDistanceGrowsThenEscapes(t *testing.T) {
	lambda := quantity.Length(500e-9)
	d0 := maxBallisticDistance(lambda, 0, 0)
	d1 := maxBallisticDistance(lambda, 1, 0)
	if !(d1 > d0) {
		t.Fatalf("expected the ballistic budget to grow across segments: d0=%v d1=%v", d0, d1)
	}
	dEscape := maxBallisticDistance(lambda, maxBallisticSegments, 0)
	if !math.IsInf(float64(dEscape), 1) {
		t.Fatalf("expected +Inf once the segment budget is exhausted, got %v", dEscape)
	}
}

func unitTriangle(offset float64) shapes.Triangle {
	n := quantity.NewUnit3(0, 0, 1)
	ox := quantity.Length(offset)
	return shapes.Triangle{
		A: quantity.Vec3{X: ox - 5, Y: -5, Z: 50},
		B: quantity.Vec3{X: ox + 5, Y: -5, Z: 50},
		C: quantity.Vec3{X: ox, Y: 5, Z: 50},
		N: n,
	}
}

func buildTestBVH(t *testing.T) *ads.BVH {
	t.Helper()
	bvh, err := ads.Build([]*mesh.Shape{{Triangles: []shapes.Triangle{unitTriangle(0)}}}, nil, ads.BuildOptions{DetectEdges: true})
	if err != nil {
		t.Fatalf("ads.Build: %v", err)
	}
	return bvh
}

func TestTraverseForceRayTracingHitsPlate(t *testing.T) {
	bvh := buildTestBVH(t)
	r := shapes.Ray{O: quantity.Vec3{X: 0, Y: 0, Z: 0}, D: quantity.NewUnit3(0, 0, 1)}
	env := shapes.NewEllipticCone(r, quantity.NewUnit3(1, 0, 0), 0.2, 0, 1)

	res := Traverse(bvh, env, 500e-9, 100, Options{ForceRayTracing: true}, nil)
	if !res.Found {
		t.Fatal("expected the forced ray trace to find the plate")
	}
}

func TestTraverseRayBeamFindsHit(t *testing.T) {
	bvh := buildTestBVH(t)
	r := shapes.Ray{O: quantity.Vec3{X: 0, Y: 0, Z: 0}, D: quantity.NewUnit3(0, 0, 1)}
	env := shapes.NewRayCone(r)

	res := Traverse(bvh, env, 500e-9, 100, Options{}, nil)
	if !res.Found || !res.Ballistic {
		t.Fatalf("expected a ray-degenerate beam to resolve ballistically: found=%v ballistic=%v", res.Found, res.Ballistic)
	}
}

func TestTraverseAccumulateEdgesPopulatesWedgeHit(t *testing.T) {
	bvh := buildTestBVH(t)
	r := shapes.Ray{O: quantity.Vec3{X: 0, Y: 0, Z: 0}, D: quantity.NewUnit3(0, 0, 1)}
	env := shapes.NewEllipticCone(r, quantity.NewUnit3(1, 0, 0), 0.2, 0, 1)

	res := Traverse(bvh, env, 500e-9, 100, Options{AccumulateEdges: true}, nil)
	if !res.Found {
		t.Fatal("expected the diffusive traversal to find the plate")
	}
	if !res.HasWedgeHit {
		t.Fatal("expected HasWedgeHit: the hit triangle's boundary edges are populated")
	}
}

func TestTraverseMissesEmptyRegion(t *testing.T) {
	bvh := buildTestBVH(t)
	r := shapes.Ray{O: quantity.Vec3{X: 1000, Y: 1000, Z: 0}, D: quantity.NewUnit3(0, 0, 1)}
	env := shapes.NewEllipticCone(r, quantity.NewUnit3(1, 0, 0), 0.01, 0, 0.1)

	res := Traverse(bvh, env, 500e-9, 40, Options{}, nil)
	if res.Found {
		t.Fatal("expected no hit far from the plate")
	}
}

func TestTraverseShadowAgreesWithForcedRayTrace(t *testing.T) {
	bvh := buildTestBVH(t)
	r := shapes.Ray{O: quantity.Vec3{X: 0, Y: 0, Z: 0}, D: quantity.NewUnit3(0, 0, 1)}
	env := shapes.NewEllipticCone(r, quantity.NewUnit3(1, 0, 0), 0.2, 0, 1)

	res := Traverse(bvh, env, 500e-9, 100, Options{ForceRayTracing: true}, nil)
	shadow := TraverseShadow(bvh, env, 500e-9, 100, Options{ForceRayTracing: true}, nil)
	if res.Found != shadow.Shadow {
		t.Fatalf("forced ray trace and shadow trace disagree: hit=%v shadow=%v", res.Found, shadow.Shadow)
	}
}

func TestTraverseShadowEscapesEmptyRegion(t *testing.T) {
	bvh := buildTestBVH(t)
	r := shapes.Ray{O: quantity.Vec3{X: 1000, Y: 1000, Z: 0}, D: quantity.NewUnit3(0, 0, 1)}
	env := shapes.NewEllipticCone(r, quantity.NewUnit3(1, 0, 0), 0.01, 0, 0.1)

	res := TraverseShadow(bvh, env, 500e-9, 40, Options{}, nil)
	if res.Shadow {
		t.Fatal("expected no shadow hit far from the plate")
	}
}
