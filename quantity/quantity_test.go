package quantity

import "testing"

func TestFrameRoundTrip(t *testing.T) {
	cases := []Unit3{
		NewUnit3(0, 0, 1),
		NewUnit3(1, 0, 0),
		NewUnit3(0.2, 0.6, 0.77),
	}
	for _, n := range cases {
		f := BuildOrthogonalFrame(n)
		v := Vec3{X: 1.3, Y: -2.1, Z: 0.4}
		got := f.ToWorld(f.ToLocal(v))
		if diff := got.Sub(v).Len(); diff > 1e-9 {
			t.Errorf("round trip mismatch for n=%v: got %v want %v (diff %v)", n, got, v, diff)
		}
	}
}

func TestBuildOrthogonalFrameIsOrthonormal(t *testing.T) {
	n := NewUnit3(0.1, 0.9, 0.3)
	f := BuildOrthogonalFrame(n)
	if d := f.X.Dot(f.Y); d > 1e-9 || d < -1e-9 {
		t.Errorf("x.y = %v, want 0", d)
	}
	if d := f.X.Dot(f.Z); d > 1e-9 || d < -1e-9 {
		t.Errorf("x.z = %v, want 0", d)
	}
	if d := f.Y.Dot(f.Z); d > 1e-9 || d < -1e-9 {
		t.Errorf("y.z = %v, want 0", d)
	}
}

func TestRangeIntersect(t *testing.T) {
	a := Range{Min: 0, Max: 10}
	b := Range{Min: 5, Max: 20}
	got := a.Intersect(b)
	if got.Min != 5 || got.Max != 10 {
		t.Errorf("got %+v, want {5 10}", got)
	}
}

func TestWavelengthToWavenumber(t *testing.T) {
	k := WavelengthToWavenumber(500e-9)
	if k <= 0 {
		t.Errorf("expected positive wavenumber, got %v", k)
	}
	if WavelengthToWavenumber(0) != 0 {
		t.Errorf("expected 0 for non-positive wavelength")
	}
}
