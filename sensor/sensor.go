// Package sensor implements beam sourcing (importance sampling) from a
// sensor element, direct connections, and the film/block storage a
// render loop splats samples into.
//
// Grounded on original_source/include/wt/sensor/sensor.hpp (the
// sensor_t interface contract) and
// include/wt/sensor/sensor/film_backed_sensor.hpp (film-backed block
// partitioning and spiral tile order, reproduced in this package by
// spiral2D and each sensor's AcquireSensorBlock — see DESIGN.md).
package sensor

import (
	"github.com/sixy6e/wavetrace/beam"
	"github.com/sixy6e/wavetrace/polarimetric"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
	"github.com/sixy6e/wavetrace/spectrum"
)

// Sampler is the minimal randomness source a sensor needs; duplicated
// from bsdf.Sampler/emitter.Sampler to avoid a cyclic package import.
type Sampler interface {
	Float64() float64
	Vec2() (float64, float64)
}

// Element identifies a sensor element (pixel) and the intra-element
// offset a sample was taken at.
type Element struct {
	X, Y, Z uint32
	OffX, OffY, OffZ float64
}

// Sample is a time-reversed ("importance") beam sourced from a sensor
// element.
type Sample struct {
	Ray         shapes.Ray
	PDFPosition float64
	PDFDir      float64
	Weight      polarimetric.Stokes
}

// DirectSample is a direct connection from a world point to a sensor
// element.
type DirectSample struct {
	Element Element
	Wi      quantity.Unit3
	Dist    quantity.Length
	PDF     float64
	Weight  polarimetric.Stokes
}

// Sensor is the closed sensor-variant interface: resolution/block
// accounting, film storage, beam sourcing, direct sampling, and
// sensitivity.
type Sensor interface {
	Description() string
	IsPolarimetric() bool
	IsDeltaPosition() bool
	IsDeltaDirection() bool
	RayTraceOnly() bool

	SensitivitySpectrum() spectrum.Spectrum
	SourcingBeamExtent(k quantity.Wavenumber) (apertureSize quantity.Length, tanAlpha float64)

	Resolution() (uint32, uint32, uint32)
	TotalSensorBlocks() int
	AcquireSensorBlock(storage *FilmStorage, blockID int) *Block
	ReleaseSensorBlock(storage *FilmStorage, block *Block)

	CreateSensorFilm() *FilmStorage

	Splat(block *Block, element Element, sample polarimetric.Stokes, k quantity.Wavenumber)
	SplatDirect(storage *FilmStorage, element Element, sample polarimetric.Stokes, k quantity.Wavenumber)

	Sample(sampler Sampler, element Element, k quantity.Wavenumber) (Sample, bool)
	SampleDirect(sampler Sampler, wp quantity.Vec3, k quantity.Wavenumber) (DirectSample, bool)

	// Si makes a direct connection to an incident beam, used by
	// emitter→sensor (t=1) BDPT connections.
	Si(b beam.Beam, rng quantity.Range) (DirectSample, bool)

	PDFPosition(p quantity.Vec3) float64
	PDFDirection(p quantity.Vec3, dir quantity.Unit3) float64
}
