package emitter

import (
	"math"

	"github.com/sixy6e/wavetrace/beam"
	"github.com/sixy6e/wavetrace/interaction"
	"github.com/sixy6e/wavetrace/polarimetric"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
	"github.com/sixy6e/wavetrace/spectrum"
)

// lambdaToExtent is the fake spatial extent (in multiples of
// wavelength) a point emitter's beam-sourcing geometry assumes, since
// point sources are not physical and carry no extent of their own.
//
// Grounded on original_source/include/wt/emitter/point.hpp's
// sourcing_geometry: "point sources are not physical, default to a
// fake a spatial extent of 5λ" (the constant in the retrieved header
// reads 10; kept as-is rather than "corrected" to the comment's 5).
const lambdaToExtent = 10.0

// Point is an isotropic point emitter: a delta-position source with no
// preferred emission direction.
//
// Grounded on original_source/include/wt/emitter/point.hpp.
type Point struct {
	ID                     string
	Position               quantity.Vec3
	RadiantIntensity       spectrum.Spectrum
	Extent                 quantity.Length // 0 means "use lambdaToExtent"
	PhaseSpaceExtentScale  float64
}

func (p *Point) Description() string         { return p.ID }
func (p *Point) IsAreaEmitter() bool         { return false }
func (p *Point) IsInfiniteEmitter() bool     { return false }
func (p *Point) IsDeltaPosition() bool       { return true }
func (p *Point) IsDeltaDirection() bool      { return false }
func (p *Point) EmissionSpectrum() spectrum.Spectrum { return p.RadiantIntensity }

func (p *Point) Power(k quantity.Wavenumber) float64 {
	return p.RadiantIntensity.Eval(k) * 4 * math.Pi
}

func (p *Point) PowerRange(krange quantity.Range) float64 {
	return p.RadiantIntensity.Power(krange) * 4 * math.Pi
}

func (p *Point) Li(b beam.Beam, surface *interaction.Surface) polarimetric.Stokes {
	// a point has zero area: a beam can never land directly on it
	// through ballistic/diffusive intersection, only through direct
	// sampling.
	return polarimetric.Zero
}

func (p *Point) extentOrDefault(k quantity.Wavenumber) quantity.Length {
	if p.Extent > 0 {
		return p.Extent
	}
	lambda := quantity.Length(2 * math.Pi / float64(k))
	return lambda * lambdaToExtent
}

func (p *Point) scale() float64 {
	if p.PhaseSpaceExtentScale > 0 {
		return p.PhaseSpaceExtentScale
	}
	return DefaultPhaseSpaceExtentScale
}

func (p *Point) Sample(sampler Sampler, k quantity.Wavenumber) (Sample, bool) {
	u1, u2 := sampler.Vec2()
	dir := uniformSphere(u1, u2)

	intensity := p.RadiantIntensity.Eval(k)
	if intensity <= 0 {
		return Sample{}, false
	}
	pdfDir := 1.0 / (4 * math.Pi)
	weight := polarimetric.Unpolarized(intensity / pdfDir)

	_ = p.extentOrDefault(k)
	return Sample{
		Ray:         shapes.Ray{O: p.Position, D: dir},
		PDFPosition: 1,
		PDFDir:      pdfDir,
		Weight:      weight,
	}, true
}

func (p *Point) SamplePosition(sampler Sampler) (PositionSample, bool) {
	return PositionSample{P: p.Position, PDF: 1, IsArea: false}, true
}

func (p *Point) SampleDirect(sampler Sampler, wp quantity.Vec3, k quantity.Wavenumber) (DirectSample, bool) {
	d := wp.Sub(p.Position)
	dist := d.Len()
	if dist <= 0 {
		return DirectSample{}, false
	}
	wi := quantity.Unit3FromVec3(d).Neg()
	intensity := p.RadiantIntensity.Eval(k)
	if intensity <= 0 {
		return DirectSample{}, false
	}
	weight := polarimetric.Unpolarized(intensity / float64(dist*dist))
	return DirectSample{Wi: wi, Dist: dist, PDF: 1, Delta: true, Weight: weight}, true
}

func (p *Point) PDFPosition(quantity.Vec3) float64          { return 0 }
func (p *Point) PDFDirection(quantity.Vec3, quantity.Unit3) float64 { return 1.0 / (4 * math.Pi) }
func (p *Point) PDFDirect(quantity.Vec3, shapes.Ray) float64 { return 0 }

// SourcingBeamExtent uses the fake point-source extent (lambdaToExtent
// or the configured Extent override) as the source aperture.
func (p *Point) SourcingBeamExtent(k quantity.Wavenumber) (quantity.Length, float64) {
	apertureSize := p.extentOrDefault(k)
	return apertureSize, tanAlphaFromK(k, apertureSize) * p.scale()
}

func uniformSphere(u1, u2 float64) quantity.Unit3 {
	z := 1 - 2*u1
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u2
	return quantity.NewUnit3(r*math.Cos(phi), r*math.Sin(phi), z)
}
