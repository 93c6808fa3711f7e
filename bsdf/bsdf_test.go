package bsdf

import (
	"math"
	"testing"

	"github.com/sixy6e/wavetrace/quantity"
)

type constSpectrumReal float64

func (c constSpectrumReal) Eval(quantity.Wavenumber) float64 { return float64(c) }

type constSpectrumComplex complex128

func (c constSpectrumComplex) Eval(quantity.Wavenumber) complex128 { return complex128(c) }

// sequenceSampler replays a fixed sequence of uniforms, looping once
// exhausted; deterministic enough for table-driven sampling tests.
type sequenceSampler struct {
	vals []float64
	i    int
}

func (s *sequenceSampler) next() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}
func (s *sequenceSampler) Float64() float64         { return s.next() }
func (s *sequenceSampler) Vec2() (float64, float64) { return s.next(), s.next() }

func dielectricSPM(iorReal float64) *SurfaceSPM {
	return &SurfaceSPM{
		ExtIOR:  constSpectrumReal(1),
		IOR:     constSpectrumComplex(complex(iorReal, 0)),
		Profile: Dirac{},
	}
}

func TestDiracIsDeltaOnly(t *testing.T) {
	var p SurfaceProfile = Dirac{}
	if !p.IsDeltaOnly(1) {
		t.Fatal("expected Dirac to report delta-only")
	}
	if p.PSD(quantity.Unit3{Z: 1}, quantity.Unit3{Z: 1}, TextureQuery{}) != 0 {
		t.Fatal("expected Dirac PSD to be zero")
	}
}

func TestGaussianIsNotDeltaOnlyWhenRough(t *testing.T) {
	g := Gaussian{Sigma2: 1e6}
	if g.IsDeltaOnly(1) {
		t.Fatal("expected a rough Gaussian profile to not be delta-only")
	}
	if g.IsDeltaOnly(0) {
		t.Fatal("")
	}
	smooth := Gaussian{Sigma2: 0}
	if !smooth.IsDeltaOnly(1) {
		t.Fatal("expected Sigma2=0 Gaussian profile to be delta-only")
	}
}

func TestGaussianPSDPeaksAtSpecularDirection(t *testing.T) {
	g := Gaussian{Sigma2: 1e4}
	wi := quantity.Unit3{X: 0.1, Y: 0, Z: math.Sqrt(1 - 0.01)}
	wo := quantity.Unit3{X: -wi.X, Y: -wi.Y, Z: wi.Z}
	q := TextureQuery{K: quantity.Wavenumber(1e7)}

	specular := g.PSD(wi, wo, q)
	offAxis := g.PSD(wi, quantity.Unit3{X: 0.5, Y: 0.3, Z: math.Sqrt(1 - 0.25 - 0.09)}, q)

	if !(specular > offAxis) {
		t.Fatalf("expected the specular direction to carry more PSD power: specular=%v offAxis=%v", specular, offAxis)
	}
}

func TestGaussianSampleRoundTripsThroughPDF(t *testing.T) {
	g := Gaussian{Sigma2: 1e4}
	wi := quantity.Unit3{X: 0, Y: 0, Z: 1}
	q := TextureQuery{K: quantity.Wavenumber(1e7)}
	sampler := &sequenceSampler{vals: []float64{0.3, 0.6}}

	s := g.Sample(wi, q, sampler)
	if s.PDF <= 0 {
		t.Fatalf("expected a positive sampling density, got %v", s.PDF)
	}
	pdf := g.PDF(wi, s.Wo, q)
	if !approxEqual(pdf, s.PDF, 1e-6) {
		t.Fatalf("Sample and PDF disagree: sample pdf=%v, PDF()=%v", s.PDF, pdf)
	}
}

func approxEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestSurfaceSPMSmoothDielectricIsSpecularOnly(t *testing.T) {
	b := dielectricSPM(1.5)
	q := Query{K: quantity.Wavenumber(1e7), Lobe: Mask(LobeSpecular).With(LobeScattered)}

	wi := quantity.Unit3{X: 0, Y: 0, Z: 1}
	sampler := &sequenceSampler{vals: []float64{0.01, 0.99, 0.5, 0.5}}

	s, ok := b.Sample(wi, q, sampler)
	if !ok {
		t.Fatal("expected a sample from a smooth dielectric interface")
	}
	if s.Lobe != LobeSpecular {
		t.Fatalf("expected the specular lobe on a Dirac profile, got %v", s.Lobe)
	}
	if !s.Discrete {
		t.Fatal("expected a discrete (delta) sample")
	}
}

func TestSurfaceSPMFIsZeroOnDiracProfile(t *testing.T) {
	b := dielectricSPM(1.5)
	q := Query{K: quantity.Wavenumber(1e7), Lobe: Mask(LobeScattered)}
	wi := quantity.Unit3{X: 0, Y: 0, Z: 1}
	wo := quantity.Unit3{X: 0, Y: 0, Z: 1}

	m := b.F(wi, wo, q)
	if m.M[0][0] != 0 {
		t.Fatalf("expected a delta-only profile to contribute nothing to the finite-density f(), got %+v", m)
	}
}

func TestSurfaceSPMRoughProfileScattersBeyondSpecular(t *testing.T) {
	b := &SurfaceSPM{
		ExtIOR:  constSpectrumReal(1),
		IOR:     constSpectrumComplex(complex(1.5, 0)),
		Profile: Gaussian{Sigma2: 1e4},
	}
	q := Query{K: quantity.Wavenumber(1e4), Lobe: Mask(LobeScattered)}

	wi := quantity.Unit3{X: 0.1, Y: 0, Z: math.Sqrt(1 - 0.01)}
	wo := quantity.Unit3{X: -0.1, Y: 0, Z: math.Sqrt(1 - 0.01)}

	m := b.F(wi, wo, q)
	if m.M[0][0] <= 0 {
		t.Fatalf("expected nonzero scattered response for a rough dielectric, got %+v", m)
	}
}

func TestSurfaceSPMRejectsLobesItCannotOffer(t *testing.T) {
	b := dielectricSPM(1.5)
	q := Query{K: quantity.Wavenumber(1e7), Lobe: Mask(LobeDiffractionEdge)}
	wi := quantity.Unit3{X: 0, Y: 0, Z: 1}
	sampler := &sequenceSampler{vals: []float64{0.5}}

	_, ok := b.Sample(wi, q, sampler)
	if ok {
		t.Fatal("expected no sample when the caller offers neither specular nor scattered lobes")
	}
}
