package integrator

import (
	"github.com/sixy6e/wavetrace/emitter"
	"github.com/sixy6e/wavetrace/polarimetric"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/sensor"
	"github.com/sixy6e/wavetrace/shapes"
)

// Options is the bidirectional path tracer's per-instance configuration:
// MIS on/off, FSD on/off, Russian Roulette on/off, and sensor-/emitter-
// direct connection toggles, mirroring plt_bdpt_t::options_t's fields
// (max_depth, MIS, FSD, RR, sensor_direct, emitter_direct).
type Options struct {
	MaxDepth     int
	MIS          bool
	FSD          bool
	RR           bool
	SensorDirect bool
	EmitterDirect bool
}

// EmitterSourceSample is the emitter-side, per-sample draw the scene
// assembles: which emitter and wavenumber were chosen, the source beam
// sampled from it, and the reciprocal of the spectral sampling density
// — original_source/src/integrator/plt_bdpt.cpp's
// sample_emitter_and_spectrum_and_source_beam, a scene-level routine
// this package only consumes through the narrow Scene interface below
// (building it is scene's responsibility, not integrator's).
type EmitterSourceSample struct {
	Emitter      emitter.Emitter
	Ray          shapes.Ray
	K            quantity.Wavenumber
	ApertureSize quantity.Length
	TanAlpha     float64
	Weight       polarimetric.Stokes

	// ReciprocalSpectralPDF is 1/k_density in plt_bdpt.cpp's naming:
	// the reciprocal sampling density of having chosen this wavenumber,
	// already accounting for discrete-vs-continuous spectra.
	ReciprocalSpectralPDF float64
}

// Scene is the narrow slice of scene-level state a BDPT sample needs
// beyond the acceleration structure already in Context: drawing the
// joint emitter/spectrum/source-beam sample, and the full emitter list
// connectSubpaths needs to resolve an area-emitter-bound shape's
// radiance or test against the scene's infinite emitters.
type Scene interface {
	SampleEmitterAndSpectrumAndSourceBeam(sampler PathSampler, sensorObj sensor.Sensor) EmitterSourceSample
	Emitters() []emitter.Emitter
}

// Integrate renders samplesPerElement samples of one sensor element,
// per original_source/src/integrator/plt_bdpt.cpp's integrate(): draw a
// spectral/emitter sample and a sensor sample, grow both subpaths,
// connect every valid (s,t) split, weight by MIS (or the uniform
// fallback), and splat to the running block estimate or directly to
// the film for t=1 connections.
func Integrate(
	ctx *Context,
	opts Options,
	sc Scene,
	sensorObj sensor.Sensor,
	storage *sensor.FilmStorage,
	block *sensor.Block,
	element sensor.Element,
	samplesPerElement uint32,
	sampler PathSampler,
	arena *Arena,
) {
	for sample := uint32(0); sample < samplesPerElement; sample++ {
		es := sc.SampleEmitterAndSpectrumAndSourceBeam(sampler, sensorObj)
		k := es.K

		sensorSample, ok := sensorObj.Sample(sampler, element, k)
		if !ok {
			continue
		}

		arena.Reset()

		sensorAperture, sensorTanAlpha := sensorObj.SourcingBeamExtent(k)
		sensorOrigin := Vertex{
			Kind:          KindOrigin,
			P:             sensorSample.Ray.O,
			Delta:         sensorObj.IsDeltaPosition(),
			SensorElement: element,
			Throughput:    sensorSample.Weight,
		}
		generateSubpath(ctx, &arena.Sensor, sensorOrigin, sensorSample.Ray, k,
			sensorAperture, sensorTanAlpha, sensorSample.Weight, opts.MaxDepth, sampler)

		emitterOrigin := Vertex{
			Kind:       KindOrigin,
			P:          es.Ray.O,
			Delta:      es.Emitter != nil && es.Emitter.IsDeltaPosition(),
			Throughput: es.Weight,
		}
		generateSubpath(ctx, &arena.Emitter, emitterOrigin, es.Ray, k,
			es.ApertureSize, es.TanAlpha, es.Weight, opts.MaxDepth, sampler)

		var accum polarimetric.Stokes
		emitters := sc.Emitters()

		nT := len(arena.Sensor.Vertices)
		nS := len(arena.Emitter.Vertices)
		for t := 0; t <= nT; t++ {
			for s := 0; s <= nS; s++ {
				depth := t + s - 2
				if (t == 1 && s == 1) || depth < 0 {
					continue
				}
				if !opts.EmitterDirect && s == 1 {
					continue
				}
				if !opts.SensorDirect && t == 1 {
					continue
				}
				if depth > opts.MaxDepth {
					break
				}

				ret, ok := connectSubpaths(ctx, &arena.Sensor, &arena.Emitter, s, t, emitters, sensorObj, sampler, k)
				if !ok || ret.L.I <= 0 {
					continue
				}

				var mis float64
				if opts.MIS {
					mis = miSWeight(&arena.Sensor, &arena.Emitter, s, t) * es.ReciprocalSpectralPDF
				} else {
					mis = es.ReciprocalSpectralPDF / float64(s+t+1)
				}
				if mis <= 0 {
					continue
				}

				fluxSample := ret.L.Scale(mis)
				if t > 1 {
					accum = accum.Add(fluxSample)
				} else {
					sensorObj.SplatDirect(storage, ret.Element, fluxSample, k)
				}
			}
		}

		sensorObj.Splat(block, element, accum, k)
	}
}
