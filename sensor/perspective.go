package sensor

import (
	"math"

	"github.com/sixy6e/wavetrace/beam"
	"github.com/sixy6e/wavetrace/polarimetric"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
	"github.com/sixy6e/wavetrace/spectrum"
)

// Perspective is a film-backed pinhole-camera sensor: eye position,
// view direction, up vector, and a vertical field of view.
//
// Grounded on original_source/src/sensor/perspective.cpp's loader
// (eye/dir/up/fov/fov_axis/ray_trace_only/phase_space_extent_scale
// attribute set) and
// include/wt/sensor/sensor/film_backed_sensor.hpp for the block/
// spiral-tile mechanics shared by every film-backed sensor.
type Perspective struct {
	ID string

	Eye       quantity.Vec3
	ViewDir   quantity.Unit3
	Up        quantity.Unit3
	FovY      quantity.Angle

	Width, Height         uint32
	BlockSize             uint32
	SamplesPerElement     uint32
	RayTraceOnlyFlag      bool
	PhaseSpaceExtentScale float64

	Sensitivity spectrum.Spectrum

	blockCols, blockRows int
}

func (p *Perspective) blocksInit() {
	if p.blockCols != 0 {
		return
	}
	bs := p.BlockSize
	if bs == 0 {
		bs = 32
	}
	p.blockCols = int((p.Width + bs - 1) / bs)
	p.blockRows = int((p.Height + bs - 1) / bs)
}

func (p *Perspective) Description() string     { return p.ID }
func (p *Perspective) IsPolarimetric() bool    { return true }
func (p *Perspective) IsDeltaPosition() bool   { return true }
func (p *Perspective) IsDeltaDirection() bool  { return false }
func (p *Perspective) RayTraceOnly() bool      { return p.RayTraceOnlyFlag }
func (p *Perspective) SensitivitySpectrum() spectrum.Spectrum { return p.Sensitivity }

func (p *Perspective) scale() float64 {
	if p.PhaseSpaceExtentScale > 0 {
		return p.PhaseSpaceExtentScale
	}
	return 1.0
}

func (p *Perspective) SourcingBeamExtent(k quantity.Wavenumber) (quantity.Length, float64) {
	lambda := quantity.Length(2 * math.Pi / float64(k))
	tanHalfFov := math.Tan(float64(p.FovY) / 2)
	pixelAngularExtent := 2 * tanHalfFov / float64(p.Height)
	apertureSize := lambda / quantity.Length(pixelAngularExtent)
	return apertureSize, p.scale() * pixelAngularExtent
}

func (p *Perspective) Resolution() (uint32, uint32, uint32) { return p.Width, p.Height, 1 }

func (p *Perspective) TotalSensorBlocks() int {
	p.blocksInit()
	return p.blockCols * p.blockRows
}

func (p *Perspective) CreateSensorFilm() *FilmStorage {
	return NewFilmStorage(p.Width, p.Height, 1)
}

func (p *Perspective) AcquireSensorBlock(storage *FilmStorage, blockID int) *Block {
	p.blocksInit()
	bs := p.BlockSize
	if bs == 0 {
		bs = 32
	}
	bx, by := spiral2D(blockID, p.blockCols, p.blockRows)
	w := bs
	if uint32(bx+1)*bs > p.Width {
		w = p.Width - uint32(bx)*bs
	}
	h := bs
	if uint32(by+1)*bs > p.Height {
		h = p.Height - uint32(by)*bs
	}
	storage.acquireRef()
	return &Block{X0: uint32(bx) * bs, Y0: uint32(by) * bs, Z0: 0, W: w, H: h, D: 1, storage: storage}
}

func (p *Perspective) ReleaseSensorBlock(storage *FilmStorage, block *Block) {
	storage.releaseRef()
}

func (p *Perspective) Splat(block *Block, element Element, sample polarimetric.Stokes, k quantity.Wavenumber) {
	block.storage.Splat(element, sample)
}

func (p *Perspective) SplatDirect(storage *FilmStorage, element Element, sample polarimetric.Stokes, k quantity.Wavenumber) {
	storage.SplatDirect(element, sample)
}

// frame builds the camera's left-handed (right, up, forward) basis.
func (p *Perspective) frame() quantity.Frame {
	z := p.ViewDir
	x := quantity.Unit3FromVec3(z.Cross(p.Up).Vec3())
	y := x.Cross(z)
	return quantity.Frame{X: x, Y: y, Z: z}
}

func (p *Perspective) rayForElement(e Element) shapes.Ray {
	f := p.frame()
	aspect := float64(p.Width) / float64(p.Height)
	tanHalfFov := math.Tan(float64(p.FovY) / 2)

	u := (float64(e.X)+e.OffX+0.5)/float64(p.Width)*2 - 1
	v := 1 - (float64(e.Y)+e.OffY+0.5)/float64(p.Height)*2

	localDir := quantity.Vec3{
		X: quantity.Length(u * aspect * tanHalfFov),
		Y: quantity.Length(v * tanHalfFov),
		Z: 1,
	}
	d := quantity.Unit3FromVec3(f.ToWorld(localDir))
	return shapes.Ray{O: p.Eye, D: d}
}

func (p *Perspective) Sample(sampler Sampler, element Element, k quantity.Wavenumber) (Sample, bool) {
	r := p.rayForElement(element)
	return Sample{
		Ray:         r,
		PDFPosition: 1,
		PDFDir:      1,
		Weight:      polarimetric.Unpolarized(1),
	}, true
}

func (p *Perspective) SampleDirect(sampler Sampler, wp quantity.Vec3, k quantity.Wavenumber) (DirectSample, bool) {
	d := wp.Sub(p.Eye)
	dist := d.Len()
	if dist <= 0 {
		return DirectSample{}, false
	}
	wi := quantity.Unit3FromVec3(d)
	f := p.frame()
	local := f.ToLocal(d)
	if local.Z <= 0 {
		return DirectSample{}, false
	}
	aspect := float64(p.Width) / float64(p.Height)
	tanHalfFov := math.Tan(float64(p.FovY) / 2)
	u := float64(local.X/local.Z) / (aspect * tanHalfFov)
	v := float64(local.Y/local.Z) / tanHalfFov
	if u < -1 || u > 1 || v < -1 || v > 1 {
		return DirectSample{}, false
	}
	px := (u + 1) / 2 * float64(p.Width)
	py := (1 - v) / 2 * float64(p.Height)
	elem := Element{X: uint32(px), Y: uint32(py), Z: 0}
	return DirectSample{
		Element: elem,
		Wi:      wi.Neg(),
		Dist:    dist,
		PDF:     1,
		Weight:  polarimetric.Unpolarized(1 / float64(dist*dist)),
	}, true
}

func (p *Perspective) Si(b beam.Beam, rng quantity.Range) (DirectSample, bool) {
	// the sensor's pinhole has zero area: a traced beam connects to it
	// only via direct sampling (SampleDirect), never via intersection.
	return DirectSample{}, false
}

func (p *Perspective) PDFPosition(quantity.Vec3) float64 { return 1 }
func (p *Perspective) PDFDirection(p0 quantity.Vec3, dir quantity.Unit3) float64 { return 1 }
