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

// Directional is an infinite emitter irradiating the whole scene from a
// fixed direction (e.g. the sun), with a narrow solid-angle extent at
// the target rather than a perfect delta direction.
//
// Grounded on
// original_source/include/wt/emitter/directional.hpp: the world-AABB-
// derived target disc (set_world_aabb) is reproduced as an explicit
// WorldRadius field set by BindWorldAABB, since this package has no
// scene-lifecycle "bind to world bounds" callback of its own.
type Directional struct {
	ID                    string
	DirToEmitter          quantity.Unit3 // direction *toward* the emitter
	Irradiance            spectrum.Spectrum
	SolidAngleAtTarget    float64 // steradians
	PhaseSpaceExtentScale float64

	WorldCentre quantity.Vec3
	WorldRadius quantity.Length
	WorldFar    quantity.Length
}

// BindWorldAABB installs the scene's world bounding box, deriving the
// target disc radius/area and far-plane distance the source's rays
// must originate beyond, mirroring directional_t::set_world_aabb.
func (d *Directional) BindWorldAABB(box shapes.AABB) {
	d.WorldCentre = box.Centroid()
	ext := box.Max.Sub(box.Min).Scale(0.5)
	r := quantity.Length(math.Sqrt(float64(ext.X*ext.X + ext.Y*ext.Y + ext.Z*ext.Z)))
	d.WorldRadius = r
	d.WorldFar = 1.01 * r
}

func (d *Directional) Description() string     { return d.ID }
func (d *Directional) IsAreaEmitter() bool     { return false }
func (d *Directional) IsInfiniteEmitter() bool { return true }
func (d *Directional) IsDeltaPosition() bool   { return false }
func (d *Directional) IsDeltaDirection() bool {
	return d.SolidAngleAtTarget <= 0
}
func (d *Directional) EmissionSpectrum() spectrum.Spectrum { return d.Irradiance }

func (d *Directional) targetArea() quantity.Length2 {
	return quantity.Length2(math.Pi * float64(d.WorldRadius*d.WorldRadius))
}

func (d *Directional) Power(k quantity.Wavenumber) float64 {
	return d.Irradiance.Eval(k) * float64(d.targetArea())
}

func (d *Directional) PowerRange(krange quantity.Range) float64 {
	return d.Irradiance.Power(krange) * float64(d.targetArea())
}

func (d *Directional) Li(beam.Beam, *interaction.Surface) polarimetric.Stokes {
	return polarimetric.Zero
}

func (d *Directional) tanAlphaAtTarget() float64 {
	if d.SolidAngleAtTarget <= 0 {
		return 0
	}
	cosHalf := 1 - d.SolidAngleAtTarget/(2*math.Pi)
	if cosHalf > 1 {
		cosHalf = 1
	}
	if cosHalf < -1 {
		cosHalf = -1
	}
	return math.Tan(math.Acos(cosHalf))
}

func (d *Directional) frame() quantity.Frame { return quantity.BuildOrthogonalFrame(d.DirToEmitter) }

func (d *Directional) Sample(sampler Sampler, k quantity.Wavenumber) (Sample, bool) {
	u1, u2 := sampler.Vec2()
	f := d.frame()
	diskP := concentricDisk(u1, u2).Scale(float64(d.WorldRadius))
	targetPoint := d.WorldCentre.Add(f.ToWorld(quantity.Vec3{X: diskP.X, Y: diskP.Y, Z: 0}))
	origin := targetPoint.Add(d.DirToEmitter.Vec3().Scale(float64(d.WorldFar)))

	irr := d.Irradiance.Eval(k)
	if irr <= 0 {
		return Sample{}, false
	}
	pdfPos := 1.0 / float64(d.targetArea())
	weight := polarimetric.Unpolarized(irr / pdfPos)
	return Sample{
		Ray:         shapes.Ray{O: origin, D: d.DirToEmitter.Neg()},
		PDFPosition: pdfPos,
		PDFDir:      1,
		Weight:      weight,
	}, true
}

func (d *Directional) SamplePosition(sampler Sampler) (PositionSample, bool) {
	u1, u2 := sampler.Vec2()
	f := d.frame()
	diskP := concentricDisk(u1, u2).Scale(float64(d.WorldRadius))
	p := d.WorldCentre.Add(f.ToWorld(quantity.Vec3{X: diskP.X, Y: diskP.Y, Z: 0})).Add(d.DirToEmitter.Vec3().Scale(float64(d.WorldFar)))
	return PositionSample{P: p, N: d.DirToEmitter.Neg(), PDF: 1.0 / float64(d.targetArea()), IsArea: true}, true
}

func (d *Directional) SampleDirect(sampler Sampler, wp quantity.Vec3, k quantity.Wavenumber) (DirectSample, bool) {
	irr := d.Irradiance.Eval(k)
	if irr <= 0 {
		return DirectSample{}, false
	}
	weight := polarimetric.Unpolarized(irr)
	return DirectSample{
		Wi:     d.DirToEmitter,
		Dist:   quantity.Inf,
		PDF:    1,
		Delta:  d.IsDeltaDirection(),
		Weight: weight,
	}, true
}

func (d *Directional) PDFPosition(quantity.Vec3) float64 { return 1.0 / float64(d.targetArea()) }
func (d *Directional) PDFDirection(quantity.Vec3, quantity.Unit3) float64 { return 1 }
func (d *Directional) PDFDirect(quantity.Vec3, shapes.Ray) float64        { return 1 }

// SourcingBeamExtent uses the world-AABB-derived target disc as the
// source aperture and tanAlphaAtTarget as the opening half-angle,
// falling back to a diffraction-limited angle, scaled by
// PhaseSpaceExtentScale, when SolidAngleAtTarget is unset (a true
// delta-direction source).
func (d *Directional) SourcingBeamExtent(k quantity.Wavenumber) (quantity.Length, float64) {
	apertureSize := quantity.Length(math.Sqrt(float64(d.targetArea())))
	if tan := d.tanAlphaAtTarget(); tan > 0 {
		return apertureSize, tan
	}
	scale := d.PhaseSpaceExtentScale
	if scale <= 0 {
		scale = DefaultPhaseSpaceExtentScale
	}
	return apertureSize, tanAlphaFromK(k, apertureSize) * scale
}

func concentricDisk(u1, u2 float64) quantity.Vec2 {
	ox, oy := 2*u1-1, 2*u2-1
	if ox == 0 && oy == 0 {
		return quantity.Vec2{}
	}
	var r, theta float64
	if math.Abs(ox) > math.Abs(oy) {
		r = ox
		theta = (math.Pi / 4) * (oy / ox)
	} else {
		r = oy
		theta = math.Pi/2 - (math.Pi/4)*(ox/oy)
	}
	return quantity.Vec2{X: quantity.Length(r * math.Cos(theta)), Y: quantity.Length(r * math.Sin(theta))}
}
