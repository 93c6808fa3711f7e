package bitmap

import (
	"math"
	"testing"

	"github.com/sixy6e/wavetrace/polarimetric"
)

func TestLinearClamps(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-1, 0},
		{0.5, 0.5},
		{2, 1},
	}
	for _, c := range cases {
		if got := (Linear{}).Apply(c.in); got != c.want {
			t.Errorf("Linear.Apply(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestGammaIdentityAtOne(t *testing.T) {
	g := Gamma{Gamma: 1}
	if got := g.Apply(0.3); math.Abs(got-0.3) > 1e-12 {
		t.Fatalf("Gamma{1}.Apply(0.3) = %v, want 0.3", got)
	}
}

func TestSRGBMonotonic(t *testing.T) {
	s := SRGB{}
	prev := -1.0
	for _, v := range []float64{0, 0.001, 0.01, 0.1, 0.5, 1} {
		got := s.Apply(v)
		if got < prev {
			t.Fatalf("SRGB.Apply is not monotonic at %v: got %v after %v", v, got, prev)
		}
		prev = got
	}
}

func TestDBMapsRangeToUnitInterval(t *testing.T) {
	d := DB{Min: -20, Max: 0}
	if got := d.Apply(0); got != 0 {
		t.Fatalf("DB.Apply(0) = %v, want 0 (zero intensity floors to 0dB-mapped 0)", got)
	}
	if got := d.Apply(1); got != 1 {
		t.Fatalf("DB.Apply(1) = %v, want 1 (0dB maps to Max)", got)
	}
}

func TestSelectModePicksComponent(t *testing.T) {
	s := polarimetric.Stokes{I: 1, Q: 0.5, U: -0.25, V: 0.1}
	if got := Intensity(ModeSelect, "Q", s); got != 0.5 {
		t.Fatalf("Intensity(select,Q) = %v, want 0.5", got)
	}
	if got := Intensity(ModeNormal, "Q", s); got != s.I {
		t.Fatalf("Intensity(normal,_) = %v, want total intensity %v", got, s.I)
	}
}

func TestSelectModeDefaultsForMonochromeVsPolychrome(t *testing.T) {
	if SelectMode(1) != ModeColourmap {
		t.Fatal("SelectMode(1) should default to colourmap for monochromatic output")
	}
	if SelectMode(3) != ModeNormal {
		t.Fatal("SelectMode(3) should default to normal for polychromatic output")
	}
}
