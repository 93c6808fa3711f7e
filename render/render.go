// Package render drives the per-sensor block render loop: a
// spiral-ordered tile scheduler fanned out over a worker pool, a
// cooperative cancellation flag, a tev-protocol previewer, and a
// crash-recovery film checkpoint.
//
// Grounded on original_source/src/renderer/renderer.cpp's block-loop
// shape (acquire a block, run the integrator over every element in it,
// release, repeat until the scheduler is out of blocks or the
// terminate flag is set) and built on alitto/pond (one Submit per unit
// of work, StopAndWait draining the pool on return).
package render

import (
	"log"
	"sync/atomic"

	"github.com/alitto/pond"

	"github.com/sixy6e/wavetrace/integrator"
	"github.com/sixy6e/wavetrace/sampler"
	"github.com/sixy6e/wavetrace/sensor"
	"github.com/sixy6e/wavetrace/stats"
)

// TerminateFlag is the cooperative cancellation switch. Workers check
// it before starting each block: once it is set, blocks not yet started
// are skipped, while a block already in progress renders all of its
// samples to completion. It is not checked between samples.
type TerminateFlag struct {
	v int32
}

// Set requests termination; workers observe it at their next check
// point rather than being interrupted mid-sample.
func (t *TerminateFlag) Set() { atomic.StoreInt32(&t.v, 1) }

// IsSet reports whether termination has been requested.
func (t *TerminateFlag) IsSet() bool { return atomic.LoadInt32(&t.v) != 0 }

// Progress is notified as blocks complete, the render loop's half of
// the progress-callback thread; f may be nil.
type Progress func(sensorIndex int, blocksDone, blocksTotal int)

// Options configures one Run call: the worker pool size, the
// integrator's per-instance toggles, an optional preview sink, an
// optional statistics sink, and an optional progress callback.
type Options struct {
	Workers       int
	Integrator    integrator.Options
	Preview       *TevPreviewer
	PreviewSensor string
	Stats         *stats.Counters
	Progress      Progress
}

// Result pairs a rendered sensor's film with the Sensor that produced
// it, the unit a Scheduler hands back to the CLI layer for bitmap
// export.
type Result struct {
	Sensor            sensor.Sensor
	SamplesPerElement uint32
	Storage           *sensor.FilmStorage
}

// Scheduler drives the render loop: one pond worker pool, fanning out
// every sensor's blocks in the spiral tile order sensor.Perspective's
// own AcquireSensorBlock already encodes (see sensor/film.go's
// spiral2D), owning the TerminateFlag workers check before each block.
type Scheduler struct {
	Options Options
	Term    TerminateFlag
}

// NewScheduler returns a Scheduler configured with opts.
func NewScheduler(opts Options) *Scheduler {
	return &Scheduler{Options: opts}
}

// Run renders every sensor in sensors against ctx, fanning each
// sensor's blocks out over a pond worker pool in spiral tile order,
// and returns one Result (sensor, sample count, film) per sensor.
//
// sc is the narrow slice of scene state the integrator consumes
// (integrator.Scene); samplesPerElement[i] is the number of samples
// rendered per element of sensors[i], one entry per sensor.
func (sched *Scheduler) Run(
	ctx *integrator.Context,
	sc integrator.Scene,
	sensors []sensor.Sensor,
	samplesPerElement []uint32,
) []Result {
	opts := sched.Options
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	pool := pond.New(workers, 0, pond.MinWorkers(workers))
	defer pool.StopAndWait()

	results := make([]Result, len(sensors))

	for i, sensorObj := range sensors {
		spp := samplesPerElement[i]
		storage := sensorObj.CreateSensorFilm()
		results[i] = Result{Sensor: sensorObj, SamplesPerElement: spp, Storage: storage}

		total := sensorObj.TotalSensorBlocks()
		var done int32
		sensorIndex := i

		for blockID := 0; blockID < total; blockID++ {
			id := blockID
			pool.Submit(func() {
				if sched.Term.IsSet() {
					return
				}
				renderBlock(ctx, opts, sc, sensorObj, storage, id, spp)
				n := atomic.AddInt32(&done, 1)
				if opts.Progress != nil {
					opts.Progress(sensorIndex, int(n), total)
				}
				if opts.Preview != nil && sensorObj.Description() == opts.PreviewSensor {
					frac := float64(n) / float64(total)
					if err := opts.Preview.Update(sensorObj.Description(), storage, frac); err != nil {
						log.Println("preview update failed:", err)
					}
				}
			})
		}
	}

	return results
}

// renderBlock acquires one sensor block, runs the BDPT integrator over
// every element it contains, and releases it. Each tile is owned by
// exactly one worker for the duration of its rendering, so splats to
// the tile's backing buffer are unsynchronized.
func renderBlock(
	ctx *integrator.Context,
	opts Options,
	sc integrator.Scene,
	sensorObj sensor.Sensor,
	storage *sensor.FilmStorage,
	blockID int,
	spp uint32,
) {
	block := sensorObj.AcquireSensorBlock(storage, blockID)
	defer sensorObj.ReleaseSensorBlock(storage, block)

	var arena integrator.Arena
	for z := block.Z0; z < block.Z0+block.D; z++ {
		for y := block.Y0; y < block.Y0+block.H; y++ {
			for x := block.X0; x < block.X0+block.W; x++ {
				element := sensor.Element{X: x, Y: y, Z: z}
				seed := uint64(x)<<32 ^ uint64(y)<<16 ^ uint64(z) ^ uint64(blockID)<<48
				samp := sampler.New(seed, 0)

				integrator.Integrate(ctx, opts.Integrator, sc, sensorObj, storage, block, element, spp, samp, &arena)

				if opts.Stats != nil {
					opts.Stats.Record("blocks-rendered", 1)
				}
			}
		}
	}
}
