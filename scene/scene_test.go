package scene

import (
	"strings"
	"testing"

	"github.com/sixy6e/wavetrace/scene/loader"
)

type fixedSampler struct {
	vals []float64
	i    int
}

func (s *fixedSampler) next() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}
func (s *fixedSampler) Float64() float64         { return s.next() }
func (s *fixedSampler) Vec2() (float64, float64) { return s.next(), s.next() }

const testScene = `<scene>
	<integrator max_depth="4" mis="true" fsd="false" rr="true"/>
	<material name="floor_mat" ior="1.5"/>
	<material name="lamp_mat" ior="1.5"/>
	<shape type="rect" name="floor" material="floor_mat" p0="-1,-1,0" p1="1,-1,0" p2="1,1,0" p3="-1,1,0"/>
	<shape type="rect" name="lamp" material="lamp_mat" p0="-1,-1,2" p1="1,-1,2" p2="1,1,2" p3="-1,1,2">
		<emitter type="area" radiance="10"/>
	</shape>
	<emitter type="point" name="bulb" position="0,0,1" intensity="2"/>
	<sensor type="perspective" name="cam" eye="0,0,5" dir="0,0,-1" up="0,1,0" width="64" height="64" samples_per_element="8"/>
</scene>`

func buildTestScene(t *testing.T) *Scene {
	t.Helper()
	root, err := loader.Parse(strings.NewReader(testScene), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sc, err := Build(root, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return sc
}

func TestBuildAssemblesEmittersAndSensors(t *testing.T) {
	sc := buildTestScene(t)

	if len(sc.Emitters()) != 2 {
		t.Fatalf("len(Emitters()) = %d, want 2 (one area emitter, one point emitter)", len(sc.Emitters()))
	}
	if len(sc.Sensors) != 1 {
		t.Fatalf("len(Sensors) = %d, want 1", len(sc.Sensors))
	}
	if sc.SamplesPerElement[0] != 8 {
		t.Fatalf("SamplesPerElement[0] = %d, want 8", sc.SamplesPerElement[0])
	}
	if sc.Options.MaxDepth != 4 || sc.Options.FSD {
		t.Fatalf("Options = %+v, want MaxDepth=4, FSD=false", sc.Options)
	}
	if sc.BVH == nil || sc.Store == nil {
		t.Fatal("expected a built BVH and mesh store")
	}
}

func TestIntegratorContextCarriesMaxDistanceAndTraversalOpts(t *testing.T) {
	sc := buildTestScene(t)
	ctx := sc.IntegratorContext()

	if ctx.MaxDistance <= 0 {
		t.Fatalf("MaxDistance = %v, want > 0 (derived from the scene's bounding box)", ctx.MaxDistance)
	}
	if ctx.TraversalOpts.ForceRayTracing {
		t.Fatalf("TraversalOpts.ForceRayTracing = true, want false (no <renderer> element in the fixture)")
	}
	if ctx.FSD != sc.Options.FSD || ctx.RR != sc.Options.RR {
		t.Fatalf("Context FSD/RR = %v/%v, want Scene.Options FSD/RR = %v/%v", ctx.FSD, ctx.RR, sc.Options.FSD, sc.Options.RR)
	}
}

func TestBuildParsesRendererForceRayTracing(t *testing.T) {
	src := `<scene>
		<renderer force_ray_tracing="true"/>
		<material name="m" ior="1.5"/>
		<shape type="rect" material="m" p0="-1,-1,0" p1="1,-1,0" p2="1,1,0" p3="-1,1,0">
			<emitter type="area" radiance="10"/>
		</shape>
		<sensor type="perspective" name="cam" eye="0,0,5" dir="0,0,-1" up="0,1,0" width="4" height="4"/>
	</scene>`
	root, err := loader.Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sc, err := Build(root, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !sc.IntegratorContext().TraversalOpts.ForceRayTracing {
		t.Fatal("ForceRayTracing = false, want true per the <renderer> element")
	}
}

func TestBuildWiresRendererADSOptions(t *testing.T) {
	src := `<scene>
		<renderer detect_edges="false" accumulate_triangles="true" accumulate_edges="true" z_search_range_scale="2.5" additional_ads_stats="true"/>
		<material name="m" ior="1.5"/>
		<shape type="rect" material="m" p0="-1,-1,0" p1="1,-1,0" p2="1,1,0" p3="-1,1,0">
			<emitter type="area" radiance="10"/>
		</shape>
		<sensor type="perspective" name="cam" eye="0,0,5" dir="0,0,-1" up="0,1,0" width="4" height="4"/>
	</scene>`
	root, err := loader.Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sc, err := Build(root, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sc.BVH.Edges != nil {
		t.Fatal("BVH.Edges should be nil: detect_edges=\"false\"")
	}
	if !sc.BVH.Options.AccumulateTriangles {
		t.Fatal("BVH.Options.AccumulateTriangles = false, want true")
	}
	if sc.BVH.Options.ZSearchRangeScale != 2.5 {
		t.Fatalf("BVH.Options.ZSearchRangeScale = %v, want 2.5", sc.BVH.Options.ZSearchRangeScale)
	}
	if sc.BVH.Stats.TotalArea <= 0 {
		t.Fatal("Stats.TotalArea should be populated: additional_ads_stats=\"true\"")
	}
	if !sc.IntegratorContext().TraversalOpts.AccumulateEdges {
		t.Fatal("TraversalOpts.AccumulateEdges = false, want true")
	}
}

func TestBuildDefaultRendererOptionsDetectEdges(t *testing.T) {
	sc := buildTestScene(t)
	if sc.BVH.Edges == nil {
		t.Fatal("BVH.Edges should be populated by default (detect_edges defaults to true)")
	}
	if sc.BVH.Stats.TotalArea != 0 {
		t.Fatal("Stats.TotalArea should stay unpopulated by default (additional_ads_stats defaults to false)")
	}
}

func TestBuildRejectsUnknownMaterialReference(t *testing.T) {
	src := `<scene>
		<shape type="rect" material="missing" p0="0,0,0" p1="1,0,0" p2="1,1,0" p3="0,1,0"/>
		<emitter type="point" position="0,0,1" intensity="1"/>
		<sensor eye="0,0,5" dir="0,0,-1" up="0,1,0"/>
	</scene>`
	root, err := loader.Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Build(root, nil, nil); err == nil {
		t.Fatal("expected an error for a shape referencing an undeclared material")
	}
}

func TestBuildRejectsNoShapes(t *testing.T) {
	src := `<scene><emitter type="point" position="0,0,0" intensity="1"/><sensor eye="0,0,1" dir="0,0,-1" up="0,1,0"/></scene>`
	root, err := loader.Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Build(root, nil, nil); err == nil {
		t.Fatal("expected an error for a scene with no shapes")
	}
}

func TestSampleEmitterAndSpectrumAndSourceBeamReturnsWeightedSample(t *testing.T) {
	sc := buildTestScene(t)
	sampler := &fixedSampler{vals: []float64{0.1, 0.5, 0.5, 0.5}}

	es := sc.SampleEmitterAndSpectrumAndSourceBeam(sampler, sc.Sensors[0])
	if es.Emitter == nil {
		t.Fatal("expected a non-nil sampled emitter")
	}
	if es.ReciprocalSpectralPDF <= 0 {
		t.Fatalf("ReciprocalSpectralPDF = %v, want > 0", es.ReciprocalSpectralPDF)
	}
	if es.ApertureSize <= 0 {
		t.Fatalf("ApertureSize = %v, want > 0", es.ApertureSize)
	}
}
