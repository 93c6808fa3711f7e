// Package scene assembles a complete wave tracer scene from an XML-like
// scene file: materials, emitters, sensors, and shapes, wired into the
// acceleration structure and the narrow integrator.Scene interface the
// bidirectional path tracer consumes.
//
// Grounded on original_source/src/scene/loader/bootstrap.hpp (the
// overall two-pass construction: declare named resources, then resolve
// references) and xml/loader.cpp (the <scene> element roster).
package scene

import (
	"fmt"

	"github.com/alitto/pond"

	"github.com/sixy6e/wavetrace/ads"
	"github.com/sixy6e/wavetrace/beam"
	"github.com/sixy6e/wavetrace/emitter"
	"github.com/sixy6e/wavetrace/integrator"
	"github.com/sixy6e/wavetrace/mesh"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/scene/loader"
	"github.com/sixy6e/wavetrace/sensor"
	"github.com/sixy6e/wavetrace/shapes"
	"github.com/sixy6e/wavetrace/spectrum"
)

// Scene is a fully built, ready-to-render scene: the acceleration
// structure and mesh store the integrator traverses, every emitter and
// sensor declared in the scene file, and the integrator options the
// scene file's top-level <integrator> element configured.
type Scene struct {
	Options integrator.Options

	Sensors           []sensor.Sensor
	SamplesPerElement []uint32 // parallel to Sensors

	emitters []emitter.Emitter
	shapes   []*mesh.Shape

	BVH   *ads.BVH
	Store *mesh.Store

	// maxDistance bounds escaping-ray/beam traversal at the world
	// bounding box diagonal (scaled up so rays that originate outside
	// the box, e.g. from a distant directional emitter, still reach
	// it): original_source/src/scene/scene.hpp derives the same far
	// plane from the scene AABB rather than a user-set parameter.
	maxDistance     quantity.Length
	forceRayTracing bool
	accumulateEdges bool
}

// Emitters implements integrator.Scene.
func (s *Scene) Emitters() []emitter.Emitter { return s.emitters }

// IntegratorContext builds the Context every Integrate call over this
// scene shares.
func (s *Scene) IntegratorContext() *integrator.Context {
	return &integrator.Context{
		BVH:           s.BVH,
		Store:         s.Store,
		MaxDistance:   s.maxDistance,
		FSD:           s.Options.FSD,
		RR:            s.Options.RR,
		TraversalOpts: beam.Options{ForceRayTracing: s.forceRayTracing, AccumulateEdges: s.accumulateEdges},
	}
}

// SampleEmitterAndSpectrumAndSourceBeam implements integrator.Scene: it
// picks an emitter uniformly, draws a wavenumber from the product of
// that emitter's emission spectrum and the sensor's sensitivity
// spectrum (an importance-sampling-friendly joint distribution), and
// sources a beam from the chosen emitter at that wavenumber.
//
// Grounded on original_source/src/integrator/plt_bdpt.cpp's
// sample_emitter_and_spectrum_and_source_beam; the header defining its
// exact emitter-selection weighting (uniform vs. power-proportional)
// wasn't retrieved, so uniform selection is used, matching the
// "resolve Open Questions, record the decision" instruction — see
// DESIGN.md.
func (s *Scene) SampleEmitterAndSpectrumAndSourceBeam(sampler integrator.PathSampler, sensorObj sensor.Sensor) integrator.EmitterSourceSample {
	n := len(s.emitters)
	if n == 0 {
		return integrator.EmitterSourceSample{}
	}
	idx := int(sampler.Float64() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	em := s.emitters[idx]
	pdfSelect := 1.0 / float64(n)

	joint := spectrum.Product(em.EmissionSpectrum(), sensorObj.SensitivitySpectrum())
	dist, _ := joint.Distribution()
	k, pdfK := dist.Sample(sampler.Float64())
	if pdfK <= 0 {
		return integrator.EmitterSourceSample{}
	}

	es, ok := em.Sample(sampler, k)
	if !ok {
		return integrator.EmitterSourceSample{}
	}
	apertureSize, tanAlpha := em.SourcingBeamExtent(k)

	return integrator.EmitterSourceSample{
		Emitter:               em,
		Ray:                   es.Ray,
		K:                     k,
		ApertureSize:          apertureSize,
		TanAlpha:              tanAlpha,
		Weight:                es.Weight,
		ReciprocalSpectralPDF: 1.0 / (pdfSelect * pdfK),
	}
}

// integratorOptionsParams decodes the top-level <integrator> element,
// grounded on original_source/src/integrator/plt_bdpt.cpp's
// options_t fields (max_depth, mis, fsd, rr, sensor_direct,
// emitter_direct).
type integratorOptionsParams struct {
	MaxDepth      int  `scene:"name=max_depth,default=8"`
	MIS           bool `scene:"name=mis,default=true"`
	FSD           bool `scene:"name=fsd,default=true"`
	RR            bool `scene:"name=rr,default=true"`
	SensorDirect  bool `scene:"name=sensor_direct,default=true"`
	EmitterDirect bool `scene:"name=emitter_direct,default=true"`
}

// rendererParams decodes the top-level <renderer> element: force_ray_tracing
// skips the diffusive segments of the traversal driver and forces pure
// ray tracing for the whole scene. The remaining fields configure the
// acceleration structure build and its default cone-query tuning; see
// ads.BuildOptions for what each one does.
type rendererParams struct {
	ForceRayTracing bool `scene:"name=force_ray_tracing,default=false"`

	DetectEdges         bool    `scene:"name=detect_edges,default=true"`
	AccumulateEdges     bool    `scene:"name=accumulate_edges,default=false"`
	AccumulateTriangles bool    `scene:"name=accumulate_triangles,default=false"`
	ZSearchRangeScale   float64 `scene:"name=z_search_range_scale,default=1.0"`
	AdditionalADSStats  bool    `scene:"name=additional_ads_stats,default=false"`
}

// Build constructs every resource declared under the already parsed
// root <scene> node into a ready-to-render Scene. assets resolves
// external mesh files and may be nil when the scene references none;
// pool is handed to ads.Build.
func Build(root *loader.Node, assets *AssetStore, pool *pond.WorkerPool) (*Scene, error) {
	if root == nil || root.Name != "scene" {
		return nil, ErrNoRoot
	}

	materials, err := NewMaterials(root)
	if err != nil {
		return nil, err
	}

	var opts integratorOptionsParams
	if in := root.Find("integrator"); in != nil {
		if err := loader.Decode(in, &opts); err != nil {
			return nil, err
		}
	} else {
		opts = integratorOptionsParams{MaxDepth: 8, MIS: true, FSD: true, RR: true, SensorDirect: true, EmitterDirect: true}
	}

	renderOpts := rendererParams{DetectEdges: true, ZSearchRangeScale: ads.DefaultZSearchRangeScale}
	if rn := root.Find("renderer"); rn != nil {
		if err := loader.Decode(rn, &renderOpts); err != nil {
			return nil, err
		}
	}

	shapeNodes := root.FindAll("shape")
	if len(shapeNodes) == 0 {
		return nil, ErrNoShapes
	}

	var meshShapes []*mesh.Shape
	// areaEmitterShapeIdx/node track which shape index a deferred area
	// emitter binds to, since Area needs the *mesh.Shape only after
	// mesh.NewStore has assigned its final ID.
	var areaEmitters []*emitter.Area
	var areaEmitterShapeIdx []int

	for i, sn := range shapeNodes {
		var sp shapeParams
		if err := loader.Decode(sn, &sp); err != nil {
			return nil, err
		}
		tris, err := buildTriangles(sp, assets)
		if err != nil {
			return nil, err
		}
		bsdfMat, ok := materials.Lookup(sp.Material)
		if !ok {
			return nil, fmt.Errorf("%w: shape references material %q", ErrUnknownMaterial, sp.Material)
		}
		sh := &mesh.Shape{Triangles: tris, BSDF: bsdfMat}
		meshShapes = append(meshShapes, sh)

		id, _ := sn.Attr("name")
		if id == "" {
			id = fmt.Sprintf("shape%d", i)
		}
		ae, err := buildAreaEmitter(sn, id)
		if err != nil {
			return nil, err
		}
		if ae != nil {
			ae.Shape = sh
			areaEmitters = append(areaEmitters, ae)
			areaEmitterShapeIdx = append(areaEmitterShapeIdx, i)
		}
	}

	store := mesh.NewStore(meshShapes)
	for i, shapeIdx := range areaEmitterShapeIdx {
		sh := meshShapes[shapeIdx]
		sh.HasAreaEmitter = true
		sh.AreaEmitterIdx = i
	}

	bvh, err := ads.Build(meshShapes, pool, ads.BuildOptions{
		DetectEdges:         renderOpts.DetectEdges,
		AccumulateTriangles: renderOpts.AccumulateTriangles,
		AccumulateEdges:     renderOpts.AccumulateEdges,
		ZSearchRangeScale:   renderOpts.ZSearchRangeScale,
		AdditionalADSStats:  renderOpts.AdditionalADSStats,
	})
	if err != nil {
		return nil, err
	}

	emitters := make([]emitter.Emitter, 0, len(areaEmitters))
	for _, ae := range areaEmitters {
		emitters = append(emitters, ae)
	}
	for _, en := range root.FindAll("emitter") {
		em, err := buildEmitter(en)
		if err != nil {
			return nil, err
		}
		emitters = append(emitters, em)
	}
	if len(emitters) == 0 {
		return nil, fmt.Errorf("%w: scene declares no emitters", ErrNoShapes)
	}

	worldBox := shapes.EmptyAABB()
	for _, t := range store.Triangles {
		worldBox.ExpandPoint(t.A)
		worldBox.ExpandPoint(t.B)
		worldBox.ExpandPoint(t.C)
	}
	bindWorldAABB(emitters, worldBox)
	maxDistance := worldBox.Max.Sub(worldBox.Min).Len() * 4

	sensorNodes := root.FindAll("sensor")
	if len(sensorNodes) == 0 {
		return nil, ErrNoSensors
	}
	var sensors []sensor.Sensor
	var spp []uint32
	for _, sn := range sensorNodes {
		snsr, samplesPerElement, err := buildSensor(sn)
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, snsr)
		spp = append(spp, samplesPerElement)
	}

	return &Scene{
		Options: integrator.Options{
			MaxDepth:      opts.MaxDepth,
			MIS:           opts.MIS,
			FSD:           opts.FSD,
			RR:            opts.RR,
			SensorDirect:  opts.SensorDirect,
			EmitterDirect: opts.EmitterDirect,
		},
		Sensors:           sensors,
		SamplesPerElement: spp,
		emitters:          emitters,
		shapes:            meshShapes,
		BVH:               bvh,
		Store:             store,
		maxDistance:       maxDistance,
		forceRayTracing:   renderOpts.ForceRayTracing,
		accumulateEdges:   renderOpts.AccumulateEdges,
	}, nil
}
