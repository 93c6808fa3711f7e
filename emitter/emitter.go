// Package emitter implements the scene's light sources: beam sourcing
// (position and direct sampling), area/solid-angle PDFs, and the
// emission spectrum every emitter exposes.
//
// Grounded on original_source/include/wt/emitter/emitter.hpp (the
// closed emitter_t interface: power, Li, sample/sample_position/
// sample_direct, pdf_position/pdf_direction/pdf_direct), area.hpp,
// point.hpp, and directional.hpp.
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

// Sampler is the minimal randomness source an emitter needs:
// bsdf.Sampler's interface, repeated here to avoid a cyclic import
// between emitter and bsdf (neither needs the other's domain types).
type Sampler interface {
	Float64() float64
	Vec2() (float64, float64)
}

// PositionSample is a sampled phase-space position on an emitter: a
// world point (or, for an infinite emitter, a point on the bounding
// sphere) with its surface normal and the area sampling density there.
type PositionSample struct {
	P      quantity.Vec3
	N      quantity.Unit3
	PDF    float64 // area (or discrete) density
	IsArea bool
}

// Sample is a sampled emission ray: a full beam-sourcing phase-space
// point (position and direction) plus its importance weight — the
// Stokes-valued spectral radiant flux already divided by the sampling
// density.
type Sample struct {
	Ray         shapes.Ray
	PDFPosition float64
	PDFDir      float64
	Weight      polarimetric.Stokes
}

// DirectSample is a direct (shadow-ray) connection sample from a world
// point toward the emitter.
type DirectSample struct {
	Wi     quantity.Unit3
	Dist   quantity.Length
	PDF    float64 // solid-angle density
	Delta  bool
	Weight polarimetric.Stokes
}

// Emitter is the closed set of light-source variants, modeled as an
// interface with one concrete type per concern rather than a
// tagged-union.
type Emitter interface {
	Description() string
	IsAreaEmitter() bool
	IsInfiniteEmitter() bool
	IsDeltaPosition() bool
	IsDeltaDirection() bool

	EmissionSpectrum() spectrum.Spectrum
	Power(k quantity.Wavenumber) float64
	PowerRange(krange quantity.Range) float64

	// Li integrates a detector beam over the emitter, returning the
	// Stokes-valued spectral radiant flux it contributes. surface is the
	// resolved surface hit the beam terminated at, non-nil only for area
	// emitters bound to a mesh (nil for point/directional/infinite
	// emitters, which never terminate a beam on a surface).
	Li(b beam.Beam, surface *interaction.Surface) polarimetric.Stokes

	Sample(sampler Sampler, k quantity.Wavenumber) (Sample, bool)
	SamplePosition(sampler Sampler) (PositionSample, bool)
	SampleDirect(sampler Sampler, wp quantity.Vec3, k quantity.Wavenumber) (DirectSample, bool)

	PDFPosition(p quantity.Vec3) float64
	PDFDirection(p quantity.Vec3, dir quantity.Unit3) float64
	PDFDirect(wp quantity.Vec3, r shapes.Ray) float64

	// SourcingBeamExtent returns the elliptic-cone envelope's initial
	// aperture size and opening half-angle tangent for a beam launched
	// from a Sample drawn at wavenumber k, mirroring
	// sensor.Sensor.SourcingBeamExtent's role on the emitter side.
	SourcingBeamExtent(k quantity.Wavenumber) (apertureSize quantity.Length, tanAlpha float64)
}

// DefaultPhaseSpaceExtentScale is the multiplicative factor applied as
// final_tan_α = tan_α_from_k · scale. Every emitter in this package
// stores its own scale and applies it when it builds the elliptic-cone
// envelope of a sampled emission beam.
const DefaultPhaseSpaceExtentScale = 1.0

// tanAlphaFromK returns the diffraction-limited opening half-angle of a
// beam of wavenumber k launched from an aperture of characteristic size
// apertureSize — the emitter analogue of beam/wavefront.go's Gaussian
// envelope, before the phase-space-extent scale is applied.
func tanAlphaFromK(k quantity.Wavenumber, apertureSize quantity.Length) float64 {
	if apertureSize <= 0 || k <= 0 {
		return 0
	}
	lambda := 2 * math.Pi / float64(k)
	return lambda / float64(apertureSize)
}
