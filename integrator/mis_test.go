package integrator

import "testing"

func TestMiSWeightDegenerateOneOneExcluded(t *testing.T) {
	// A two-vertex combined path (s+t=2) has three raw splits
	// (0,2) (1,1) (2,0); (1,1) is always excluded, leaving two.
	sp := &Path{Vertices: make([]Vertex, 2)}
	ep := &Path{Vertices: make([]Vertex, 2)}

	got := miSWeight(sp, ep, 0, 2)
	want := 0.5
	if got != want {
		t.Fatalf("miSWeight(s=0,t=2) = %v, want %v", got, want)
	}
}

func TestMiSWeightSkipsDeltaOriginStrategies(t *testing.T) {
	sp := &Path{Vertices: []Vertex{{Delta: true}, {}}}
	ep := &Path{Vertices: []Vertex{{}, {}}}

	// total path length 2: splits (0,2) (1,1)[excluded] (2,0).
	// (2,0) requires emitterPath.Vertices[1] (non-delta, ok) with 0
	// sensor vertices: valid.
	// (0,2) requires sensorPath.Vertices[1] from the t'=2 side is fine
	// too (no delta check applies to sp=0). Both remaining strategies
	// survive since the delta vertex sits at sensor index 0, never
	// selected as a t'-1 endpoint by either remaining split.
	got := miSWeight(sp, ep, 0, 2)
	if got != 0.5 {
		t.Fatalf("miSWeight = %v, want 0.5", got)
	}
}

func TestMiSWeightAllStrategiesBlockedReturnsZero(t *testing.T) {
	sp := &Path{Vertices: []Vertex{{Delta: true}}}
	ep := &Path{Vertices: []Vertex{{Delta: true}}}

	// total path length 1: splits (0,1) and (1,0); both reinterpret a
	// vertex that was actually sampled from a delta distribution, so
	// neither is a reachable strategy.
	got := miSWeight(sp, ep, 0, 1)
	if got != 0 {
		t.Fatalf("miSWeight = %v, want 0 (all strategies delta-blocked)", got)
	}
}

func TestSensorOrEmitterDeltaBlocksOutOfRangeIsSafe(t *testing.T) {
	sp := &Path{Vertices: []Vertex{{}}}
	ep := &Path{Vertices: []Vertex{{}}}

	if sensorOrEmitterDeltaBlocks(sp, ep, 5, 5) {
		t.Fatal("out-of-range (sp,tp) must not be treated as delta-blocked")
	}
}
