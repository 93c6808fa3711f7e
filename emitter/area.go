package emitter

import (
	"math"

	"github.com/sixy6e/wavetrace/beam"
	"github.com/sixy6e/wavetrace/interaction"
	"github.com/sixy6e/wavetrace/mesh"
	"github.com/sixy6e/wavetrace/polarimetric"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
	"github.com/sixy6e/wavetrace/spectrum"
)

// Area is a diffuse (Lambertian) area emitter bound to a shape: it
// samples a position proportional to the shape's triangle-area
// distribution (which sums to the shape's surface area) and a
// cosine-weighted direction from the shading hemisphere at that point.
//
// Grounded on original_source/src/emitter/area.cpp (Li, sample,
// sample_direct, sample_position, pdf_direction, pdf_direct).
type Area struct {
	ID      string
	Shape   *mesh.Shape
	Radiance spectrum.Spectrum
	TwoSided bool

	PhaseSpaceExtentScale float64

	cdf       []quantity.Length2
	totalArea quantity.Length2
	built     bool
}

func (a *Area) build() {
	if a.built {
		return
	}
	a.built = true
	a.cdf = make([]quantity.Length2, len(a.Shape.Triangles))
	var acc quantity.Length2
	for i, t := range a.Shape.Triangles {
		if !t.Degenerate() {
			acc += t.Area()
		}
		a.cdf[i] = acc
	}
	a.totalArea = acc
}

func (a *Area) Description() string         { return a.ID }
func (a *Area) IsAreaEmitter() bool         { return true }
func (a *Area) IsInfiniteEmitter() bool     { return false }
func (a *Area) IsDeltaPosition() bool       { return false }
func (a *Area) IsDeltaDirection() bool      { return false }
func (a *Area) EmissionSpectrum() spectrum.Spectrum { return a.Radiance }

func (a *Area) Power(k quantity.Wavenumber) float64 {
	a.build()
	scale := math.Pi
	if a.TwoSided {
		scale *= 2
	}
	return a.Radiance.Eval(k) * float64(a.totalArea) * scale
}

func (a *Area) PowerRange(krange quantity.Range) float64 {
	a.build()
	scale := math.Pi
	if a.TwoSided {
		scale *= 2
	}
	return a.Radiance.Power(krange) * float64(a.totalArea) * scale
}

// Li integrates a detection beam landing on the emitter's surface,
// returning zero if the beam strikes the emitter's back face (unless
// two-sided) or if surface is nil (the beam did not actually terminate
// on this emitter's mesh).
func (a *Area) Li(b beam.Beam, surface *interaction.Surface) polarimetric.Stokes {
	if surface == nil {
		return polarimetric.Zero
	}
	dn := -b.Dir().Dot(surface.Ng())
	if dn <= 0 && !a.TwoSided {
		return polarimetric.Zero
	}
	return polarimetric.Unpolarized(a.Radiance.Eval(b.K))
}

func (a *Area) samplePositionOnMesh(sampler Sampler) (shapes.Triangle, quantity.Vec3, quantity.Unit3, float64) {
	a.build()
	u := sampler.Float64()
	if a.totalArea <= 0 || len(a.cdf) == 0 {
		return shapes.Triangle{}, quantity.Vec3{}, quantity.Unit3{}, 0
	}
	target := quantity.Length2(u) * a.totalArea
	lo, hi := 0, len(a.cdf)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if a.cdf[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	tri := a.Shape.Triangles[lo]
	u1, u2 := sampler.Vec2()
	su1 := math.Sqrt(u1)
	b0 := 1 - su1
	b1 := u2 * su1
	p := tri.A.Scale(b0).Add(tri.B.Scale(b1)).Add(tri.C.Scale(1 - b0 - b1))
	pdf := 1.0 / float64(a.totalArea)
	return tri, p, tri.N, pdf
}

func cosineHemisphere(u1, u2 float64) (quantity.Unit3, float64) {
	d := concentricDisk(u1, u2)
	z := math.Sqrt(math.Max(0, 1-float64(d.X*d.X+d.Y*d.Y)))
	return quantity.NewUnit3(float64(d.X), float64(d.Y), z), z / math.Pi
}

func (a *Area) Sample(sampler Sampler, k quantity.Wavenumber) (Sample, bool) {
	tri, p, _, ppd := a.samplePositionOnMesh(sampler)
	if ppd <= 0 {
		return Sample{}, false
	}
	frame := mesh.TangentFrame(tri)
	u1, u2 := sampler.Vec2()
	localD, dpd := cosineHemisphere(u1, u2)
	d := quantity.Unit3FromVec3(frame.ToWorld(localD.Vec3()))

	radiance := a.Radiance.Eval(k)
	if radiance <= 0 || dpd <= 0 {
		return Sample{}, false
	}
	weight := polarimetric.Unpolarized(radiance / (ppd * dpd))
	return Sample{
		Ray:         shapes.Ray{O: p, D: d},
		PDFPosition: ppd,
		PDFDir:      dpd,
		Weight:      weight,
	}, true
}

func (a *Area) SamplePosition(sampler Sampler) (PositionSample, bool) {
	_, p, ng, ppd := a.samplePositionOnMesh(sampler)
	if ppd <= 0 {
		return PositionSample{}, false
	}
	return PositionSample{P: p, N: ng, PDF: ppd, IsArea: true}, true
}

func (a *Area) SampleDirect(sampler Sampler, wp quantity.Vec3, k quantity.Wavenumber) (DirectSample, bool) {
	_, p, ng, ppd := a.samplePositionOnMesh(sampler)
	if ppd <= 0 {
		return DirectSample{}, false
	}
	d := wp.Sub(p)
	dist := d.Len()
	if dist <= 0 {
		return DirectSample{}, false
	}
	wi := quantity.Unit3FromVec3(d).Neg()
	dn := -wi.Dot(ng)
	if dn <= 0 && !a.TwoSided {
		return DirectSample{}, false
	}
	solidAnglePD := ppd * float64(dist*dist) / math.Abs(dn)
	radiance := a.Radiance.Eval(k)
	if radiance <= 0 {
		return DirectSample{}, false
	}
	weight := polarimetric.Unpolarized(radiance / solidAnglePD)
	return DirectSample{Wi: wi, Dist: dist, PDF: solidAnglePD, Weight: weight}, true
}

func (a *Area) PDFPosition(quantity.Vec3) float64 {
	a.build()
	if a.totalArea <= 0 {
		return 0
	}
	return 1.0 / float64(a.totalArea)
}

func (a *Area) PDFDirection(p quantity.Vec3, dir quantity.Unit3) float64 {
	// cos-weighted hemisphere pdf needs the local normal; callers use
	// the surface-aware overload via interaction.Surface in the
	// integrator, this narrow-interface fallback assumes a
	// world-up-aligned shading frame is unavailable and returns the
	// isotropic density.
	return 1.0 / (2 * math.Pi)
}

func (a *Area) PDFDirect(wp quantity.Vec3, r shapes.Ray) float64 {
	a.build()
	if a.totalArea <= 0 {
		return 0
	}
	return 1.0 / float64(a.totalArea)
}

func (a *Area) scale() float64 {
	if a.PhaseSpaceExtentScale > 0 {
		return a.PhaseSpaceExtentScale
	}
	return DefaultPhaseSpaceExtentScale
}

// SourcingBeamExtent uses the shape's characteristic size (the square
// root of its total triangle area) as the source aperture.
func (a *Area) SourcingBeamExtent(k quantity.Wavenumber) (quantity.Length, float64) {
	a.build()
	apertureSize := quantity.Length(math.Sqrt(float64(a.totalArea)))
	return apertureSize, tanAlphaFromK(k, apertureSize) * a.scale()
}
