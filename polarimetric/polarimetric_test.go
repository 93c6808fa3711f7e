package polarimetric

import (
	"math"
	"testing"

	"github.com/sixy6e/wavetrace/quantity"
)

func approxEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestUnpolarizedHasZeroDegreeOfPolarization(t *testing.T) {
	s := Unpolarized(5)
	if s.DegreeOfPolarization() != 0 {
		t.Fatalf("expected DoP 0 for an unpolarized state, got %v", s.DegreeOfPolarization())
	}
	if !s.IsUnpolarized() {
		t.Fatal("expected IsUnpolarized to be true")
	}
}

func TestLinearlyPolarized0DegFullyPolarized(t *testing.T) {
	s := LinearlyPolarized0Deg(2)
	if !approxEqual(s.DegreeOfPolarization(), 1, 1e-12) {
		t.Fatalf("expected DoP 1, got %v", s.DegreeOfPolarization())
	}
	if !approxEqual(s.DegreeOfLinearPolarization(), 1, 1e-12) {
		t.Fatalf("expected full linear polarization, got %v", s.DegreeOfLinearPolarization())
	}
}

func TestCircularlyPolarizedHandedness(t *testing.T) {
	rh := CircularlyPolarized(true, 1)
	lh := CircularlyPolarized(false, 1)
	if !rh.IsCircularlyPolarizedRHS() {
		t.Fatal("expected right-handed circular state to report RHS")
	}
	if lh.IsCircularlyPolarizedRHS() {
		t.Fatal("expected left-handed circular state to not report RHS")
	}
}

func TestFlipHandnessNegatesUAndV(t *testing.T) {
	s := Stokes{I: 1, Q: 0.2, U: 0.3, V: 0.4}
	f := s.FlipHandness()
	if f.I != s.I || f.Q != s.Q || f.U != -s.U || f.V != -s.V {
		t.Fatalf("FlipHandness changed I/Q or failed to negate U/V: %+v -> %+v", s, f)
	}
}

func TestReorientRoundTrip(t *testing.T) {
	s := LinearlyPolarized(quantity.Angle(0.37), 1.5)
	a := quantity.BuildOrthogonalFrame(quantity.NewUnit3(0, 0, 1))
	b := quantity.Frame{
		X: quantity.NewUnit3(1, 1, 0),
		Y: quantity.NewUnit3(-1, 1, 0),
		Z: a.Z,
	}

	toB := s.Reorient(a, b)
	back := toB.Reorient(b, a)

	if !approxEqual(back.I, s.I, 1e-9) || !approxEqual(back.Q, s.Q, 1e-9) ||
		!approxEqual(back.U, s.U, 1e-9) || !approxEqual(back.V, s.V, 1e-9) {
		t.Fatalf("round trip failed: got %+v, want %+v", back, s)
	}
}

func TestMuellerIdentityIsNoOp(t *testing.T) {
	s := Stokes{I: 1, Q: 0.5, U: -0.2, V: 0.1}
	out := Identity().Apply(s)
	if out != s {
		t.Fatalf("Identity().Apply changed the Stokes vector: %+v -> %+v", s, out)
	}
}

func TestMuellerDepolarizerReducesPolarization(t *testing.T) {
	s := LinearlyPolarized0Deg(1)
	out := Depolarizer(1, 0.5).Apply(s)
	if !(out.PolarizedIntensity() < s.PolarizedIntensity()) {
		t.Fatalf("expected the depolarizer to reduce polarized intensity: before=%v after=%v", s.PolarizedIntensity(), out.PolarizedIntensity())
	}
	if !(out.Intensity() >= out.PolarizedIntensity()) {
		t.Fatalf("violated intensity >= polarized_intensity invariant: %+v", out)
	}
}

func TestMuellerComposeMatchesSequentialApply(t *testing.T) {
	s := LinearlyPolarized45Deg(1)
	m := Rotator(0.3)
	n := Depolarizer(1, 0.2)

	composed := m.Compose(n).Apply(s)
	sequential := m.Apply(n.Apply(s))

	if !approxEqual(composed.I, sequential.I, 1e-9) || !approxEqual(composed.Q, sequential.Q, 1e-9) ||
		!approxEqual(composed.U, sequential.U, 1e-9) || !approxEqual(composed.V, sequential.V, 1e-9) {
		t.Fatalf("Compose disagreed with sequential application: %+v vs %+v", composed, sequential)
	}
}

func TestLinearPolarizerBlocksOrthogonalState(t *testing.T) {
	s := LinearlyPolarized0Deg(1)
	out := LinearPolarizer(math.Pi / 2).Apply(s)
	if !approxEqual(out.Intensity(), 0, 1e-9) {
		t.Fatalf("expected a crossed polarizer to block the beam, got intensity %v", out.Intensity())
	}
}

func TestLinearPolarizerPassesAlignedState(t *testing.T) {
	s := LinearlyPolarized0Deg(1)
	out := LinearPolarizer(0).Apply(s)
	if !approxEqual(out.Intensity(), 1, 1e-9) {
		t.Fatalf("expected an aligned polarizer to pass the beam through, got intensity %v", out.Intensity())
	}
}
