package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/sixy6e/wavetrace/scene"
	"github.com/sixy6e/wavetrace/scene/loader"
)

func TestTerminateFlagSetIsSet(t *testing.T) {
	var term TerminateFlag
	if term.IsSet() {
		t.Fatal("a fresh TerminateFlag must start unset")
	}
	term.Set()
	if !term.IsSet() {
		t.Fatal("Set() must make IsSet() report true")
	}
}

const renderTestScene = `<scene>
	<integrator max_depth="2" mis="true"/>
	<material name="wall" ior="1.5"/>
	<shape type="rect" name="floor" material="wall" p0="-1,-1,0" p1="1,-1,0" p2="1,1,0" p3="-1,1,0">
		<emitter type="area" radiance="5"/>
	</shape>
	<sensor type="perspective" name="cam" eye="0,0,3" dir="0,0,-1" up="0,1,0" width="4" height="4" block_size="2" samples_per_element="1"/>
</scene>`

func buildRenderTestScene(t *testing.T) *scene.Scene {
	t.Helper()
	root, err := loader.Parse(strings.NewReader(renderTestScene), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sc, err := scene.Build(root, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return sc
}

func TestSchedulerRunRendersEveryBlock(t *testing.T) {
	sc := buildRenderTestScene(t)
	ctx := sc.IntegratorContext()

	sched := NewScheduler(Options{Workers: 2, Integrator: sc.Options})
	results := sched.Run(ctx, sc, sc.Sensors, sc.SamplesPerElement)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	r := results[0]
	w, h, _ := r.Sensor.Resolution()
	if r.Storage.W != w || r.Storage.H != h {
		t.Fatalf("Storage resolution = (%d,%d), want (%d,%d)", r.Storage.W, r.Storage.H, w, h)
	}
}

func TestSchedulerRunHonorsTerminateFlag(t *testing.T) {
	sc := buildRenderTestScene(t)
	ctx := sc.IntegratorContext()

	sched := NewScheduler(Options{Workers: 1, Integrator: sc.Options})
	sched.Term.Set()

	// Rendering with termination already requested must still return one
	// Result per sensor (films are allocated up front), just with no
	// blocks actually rendered into them.
	results := sched.Run(ctx, sc, sc.Sensors, sc.SamplesPerElement)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1 even when terminated before rendering", len(results))
	}
}

func TestSchedulerRunIsConcurrencySafe(t *testing.T) {
	sc := buildRenderTestScene(t)
	ctx := sc.IntegratorContext()
	sched := NewScheduler(Options{Workers: 4, Integrator: sc.Options})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx, sc, sc.Sensors, sc.SamplesPerElement)
	}()
	wg.Wait()
}
