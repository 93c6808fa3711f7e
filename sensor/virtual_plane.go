package sensor

import (
	"math"

	"github.com/sixy6e/wavetrace/beam"
	"github.com/sixy6e/wavetrace/polarimetric"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
	"github.com/sixy6e/wavetrace/spectrum"
)

// VirtualPlane is a two-dimensional virtual-plane sensor: a plane
// positioned in space whose front face (per its normal) records
// incident energy directly — not a camera, no film-backed imaging
// projection. Useful for signal-coverage simulations.
//
// Grounded on
// original_source/include/wt/sensor/sensor/virtual_plane_sensor.hpp
// (frame/origin/extent/element_extent, position_for_element,
// element_for_position, importance, Se) and
// src/sensor/virtual_plane_sensor.cpp.
type VirtualPlane struct {
	ID string

	Frame      quantity.Frame // Z is the plane's front-facing normal
	Origin     quantity.Vec3  // plane corner, not centre
	ExtentX    quantity.Length
	ExtentY    quantity.Length

	Width, Height         uint32
	BlockSize             uint32
	SamplesPerElement     uint32
	RayTraceOnlyFlag      bool
	RequestedTanAlpha     float64 // 0 means "derive from minimum-uncertainty beam"

	Sensitivity spectrum.Spectrum

	blockCols, blockRows int
}

func (v *VirtualPlane) elementExtent() quantity.Vec2 {
	return quantity.Vec2{
		X: v.ExtentX / quantity.Length(v.Width),
		Y: v.ExtentY / quantity.Length(v.Height),
	}
}

func (v *VirtualPlane) area() quantity.Length2 {
	return quantity.Length2(float64(v.ExtentX) * float64(v.ExtentY))
}

func (v *VirtualPlane) blocksInit() {
	if v.blockCols != 0 {
		return
	}
	bs := v.BlockSize
	if bs == 0 {
		bs = 32
	}
	v.blockCols = int((v.Width + bs - 1) / bs)
	v.blockRows = int((v.Height + bs - 1) / bs)
}

func (v *VirtualPlane) Description() string    { return v.ID }
func (v *VirtualPlane) IsPolarimetric() bool   { return false }
func (v *VirtualPlane) IsDeltaPosition() bool  { return false }
func (v *VirtualPlane) IsDeltaDirection() bool { return false }
func (v *VirtualPlane) RayTraceOnly() bool     { return v.RayTraceOnlyFlag }
func (v *VirtualPlane) SensitivitySpectrum() spectrum.Spectrum { return v.Sensitivity }

// sourcingTanAlpha derives the diffuse-beam opening half-angle tangent
// from the sensor-element footprint's spatial standard deviation when
// RequestedTanAlpha is unset, mirroring
// virtual_plane_sensor_t::sourcing_geometry's "minimum-uncertainty-beam"
// fallback (spatial stddev of a quarter element extent, scaled by the
// beam package's cross-section envelope factor).
func (v *VirtualPlane) sourcingTanAlpha(k quantity.Wavenumber) float64 {
	if v.RequestedTanAlpha > 0 {
		return v.RequestedTanAlpha
	}
	e := v.elementExtent()
	initialSpatialExtent := (e.X + e.Y) / 2 * quantity.Length(0.25*beam.BeamCrossSectionEnvelope)
	lambda := quantity.Length(2 * math.Pi / float64(k))
	if initialSpatialExtent <= 0 {
		return 0
	}
	return float64(lambda / initialSpatialExtent)
}

func (v *VirtualPlane) SourcingBeamExtent(k quantity.Wavenumber) (quantity.Length, float64) {
	e := v.elementExtent()
	initialSpatialExtent := (e.X + e.Y) / 2 * quantity.Length(0.25*beam.BeamCrossSectionEnvelope)
	return initialSpatialExtent, v.sourcingTanAlpha(k)
}

func (v *VirtualPlane) Resolution() (uint32, uint32, uint32) { return v.Width, v.Height, 1 }

func (v *VirtualPlane) TotalSensorBlocks() int {
	v.blocksInit()
	return v.blockCols * v.blockRows
}

func (v *VirtualPlane) CreateSensorFilm() *FilmStorage {
	return NewFilmStorage(v.Width, v.Height, 1)
}

func (v *VirtualPlane) AcquireSensorBlock(storage *FilmStorage, blockID int) *Block {
	v.blocksInit()
	bs := v.BlockSize
	if bs == 0 {
		bs = 32
	}
	bx, by := spiral2D(blockID, v.blockCols, v.blockRows)
	w := bs
	if uint32(bx+1)*bs > v.Width {
		w = v.Width - uint32(bx)*bs
	}
	h := bs
	if uint32(by+1)*bs > v.Height {
		h = v.Height - uint32(by)*bs
	}
	storage.acquireRef()
	return &Block{X0: uint32(bx) * bs, Y0: uint32(by) * bs, Z0: 0, W: w, H: h, D: 1, storage: storage}
}

func (v *VirtualPlane) ReleaseSensorBlock(storage *FilmStorage, block *Block) { storage.releaseRef() }

func (v *VirtualPlane) Splat(block *Block, element Element, sample polarimetric.Stokes, k quantity.Wavenumber) {
	block.storage.Splat(element, sample)
}

func (v *VirtualPlane) SplatDirect(storage *FilmStorage, element Element, sample polarimetric.Stokes, k quantity.Wavenumber) {
	storage.SplatDirect(element, sample)
}

// positionForElement returns the world position of a sensor element,
// grounded on virtual_plane_sensor_t::position_for_element.
func (v *VirtualPlane) positionForElement(e Element) quantity.Vec3 {
	ee := v.elementExtent()
	lx := (float64(e.X) + e.OffX + 0.5) * float64(ee.X)
	ly := (float64(e.Y) + e.OffY + 0.5) * float64(ee.Y)
	return v.Origin.Add(v.Frame.X.Vec3().Scale(lx)).Add(v.Frame.Y.Vec3().Scale(ly))
}

// elementForPosition is the inverse of positionForElement, grounded on
// virtual_plane_sensor_t::element_for_position.
func (v *VirtualPlane) elementForPosition(wp quantity.Vec3) Element {
	sp := wp.Sub(v.Origin)
	ee := v.elementExtent()
	fx := float64(quantity.Length(sp.Dot(v.Frame.X.Vec3())) / ee.X)
	fy := float64(quantity.Length(sp.Dot(v.Frame.Y.Vec3())) / ee.Y)
	ex, ey := uint32(fx), uint32(fy)
	return Element{X: ex, Y: ey, Z: 0, OffX: fx - float64(ex) - 0.5, OffY: fy - float64(ey) - 0.5}
}

// importance returns the sensor's unit-flux importance density (the
// sensor's pdf_position integrates to area⁻¹, matching importance_t's
// "total importance flux is unity" convention).
func (v *VirtualPlane) importance() float64 {
	a := v.area()
	if a <= 0 {
		return 0
	}
	return 1 / (math.Pi * float64(a))
}

func (v *VirtualPlane) Sample(sampler Sampler, element Element, k quantity.Wavenumber) (Sample, bool) {
	p := v.positionForElement(element)
	u1, u2 := sampler.Vec2()
	localD, dpd := cosineHemisphereLocal(u1, u2)
	d := quantity.Unit3FromVec3(v.Frame.ToWorld(localD.Vec3()))
	if dpd <= 0 {
		return Sample{}, false
	}
	imp := v.importance()
	if imp <= 0 {
		return Sample{}, false
	}
	ppd := 1 / float64(v.area())
	weight := polarimetric.Unpolarized(imp / (ppd * dpd))
	return Sample{Ray: shapes.Ray{O: p, D: d}, PDFPosition: ppd, PDFDir: dpd, Weight: weight}, true
}

func (v *VirtualPlane) SampleDirect(sampler Sampler, wp quantity.Vec3, k quantity.Wavenumber) (DirectSample, bool) {
	p := v.positionForElement(v.elementForPosition(wp))
	d := wp.Sub(p)
	dist := d.Len()
	if dist <= 0 {
		return DirectSample{}, false
	}
	wi := quantity.Unit3FromVec3(d).Neg()
	dn := -wi.Dot(v.Frame.Z)
	if dn <= 0 {
		return DirectSample{}, false
	}
	ppd := 1 / float64(v.area())
	solidAnglePD := ppd * float64(dist*dist) / dn
	imp := v.importance()
	if imp <= 0 {
		return DirectSample{}, false
	}
	return DirectSample{
		Element: v.elementForPosition(wp),
		Wi:      wi,
		Dist:    dist,
		PDF:     solidAnglePD,
		Weight:  polarimetric.Unpolarized(imp / solidAnglePD),
	}, true
}

// Si makes a direct connection to an incident beam, grounded on
// virtual_plane_sensor_t::Si: W·max(0, cos θ) of the beam's direction
// against the plane's front-facing normal.
func (v *VirtualPlane) Si(b beam.Beam, rng quantity.Range) (DirectSample, bool) {
	dn := math.Max(0, b.Dir().Dot(v.Frame.Z))
	if dn <= 0 {
		return DirectSample{}, false
	}
	imp := v.importance()
	return DirectSample{
		Wi:     b.Dir().Neg(),
		Dist:   rng.Max,
		PDF:    1,
		Weight: polarimetric.Unpolarized(imp * dn),
	}, true
}

func (v *VirtualPlane) PDFPosition(quantity.Vec3) float64 {
	a := v.area()
	if a <= 0 {
		return 0
	}
	return 1 / float64(a)
}

func (v *VirtualPlane) PDFDirection(quantity.Vec3, quantity.Unit3) float64 { return 1 / math.Pi }

func cosineHemisphereLocal(u1, u2 float64) (quantity.Unit3, float64) {
	ox, oy := 2*u1-1, 2*u2-1
	var r, theta float64
	if ox == 0 && oy == 0 {
		r, theta = 0, 0
	} else if math.Abs(ox) > math.Abs(oy) {
		r = ox
		theta = (math.Pi / 4) * (oy / ox)
	} else {
		r = oy
		theta = math.Pi/2 - (math.Pi/4)*(ox/oy)
	}
	dx, dy := r*math.Cos(theta), r*math.Sin(theta)
	z := math.Sqrt(math.Max(0, 1-dx*dx-dy*dy))
	return quantity.NewUnit3(dx, dy, z), z / math.Pi
}
