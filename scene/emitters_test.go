package scene

import (
	"strings"
	"testing"

	"github.com/sixy6e/wavetrace/emitter"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/scene/loader"
	"github.com/sixy6e/wavetrace/shapes"
)

func parseOne(t *testing.T, src string) *loader.Node {
	t.Helper()
	root, err := loader.Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return root
}

func TestBuildEmitterPoint(t *testing.T) {
	n := parseOne(t, `<emitter type="point" name="bulb" position="1,2,3" intensity="5"/>`)
	em, err := buildEmitter(n)
	if err != nil {
		t.Fatalf("buildEmitter: %v", err)
	}
	p, ok := em.(*emitter.Point)
	if !ok {
		t.Fatalf("got %T, want *emitter.Point", em)
	}
	if p.Position.X != 1 || p.Position.Y != 2 || p.Position.Z != 3 {
		t.Fatalf("Position = %+v, want (1,2,3)", p.Position)
	}
}

func TestBuildEmitterDirectional(t *testing.T) {
	n := parseOne(t, `<emitter type="directional" name="sky" direction="0,0,1" irradiance="2"/>`)
	em, err := buildEmitter(n)
	if err != nil {
		t.Fatalf("buildEmitter: %v", err)
	}
	if _, ok := em.(*emitter.Directional); !ok {
		t.Fatalf("got %T, want *emitter.Directional", em)
	}
}

func TestBuildEmitterSolar(t *testing.T) {
	n := parseOne(t, `<emitter type="solar" name="sun" time="2026-06-21T12:00:00Z" latitude="-0.6" longitude="2.6"/>`)
	em, err := buildEmitter(n)
	if err != nil {
		t.Fatalf("buildEmitter: %v", err)
	}
	s, ok := em.(*emitter.Solar)
	if !ok {
		t.Fatalf("got %T, want *emitter.Solar", em)
	}
	// Resolve must have run: DirToEmitter is a valid unit vector.
	l := s.DirToEmitter.Dot(s.DirToEmitter)
	if diff := l - 1; diff < -1e-6 || diff > 1e-6 {
		t.Fatalf("DirToEmitter not unit length: |d|^2 = %v", l)
	}
}

func TestBuildEmitterSolarRejectsMalformedTime(t *testing.T) {
	n := parseOne(t, `<emitter type="solar" name="sun" time="not-a-time" latitude="0" longitude="0"/>`)
	if _, err := buildEmitter(n); err == nil {
		t.Fatal("expected an error for a malformed solar timestamp")
	}
}

func TestBuildEmitterUnknownType(t *testing.T) {
	n := parseOne(t, `<emitter type="spotlight"/>`)
	if _, err := buildEmitter(n); err == nil {
		t.Fatal("expected an error for an unrecognized emitter type")
	}
}

func TestBuildAreaEmitterAbsent(t *testing.T) {
	n := parseOne(t, `<shape type="rect" material="m"/>`)
	ae, err := buildAreaEmitter(n, "floor")
	if err != nil {
		t.Fatalf("buildAreaEmitter: %v", err)
	}
	if ae != nil {
		t.Fatal("expected a nil area emitter for a shape with no nested <emitter>")
	}
}

func TestBuildAreaEmitterPresent(t *testing.T) {
	n := parseOne(t, `<shape type="rect" material="m"><emitter type="area" radiance="3" two_sided="true"/></shape>`)
	ae, err := buildAreaEmitter(n, "lamp")
	if err != nil {
		t.Fatalf("buildAreaEmitter: %v", err)
	}
	if ae == nil {
		t.Fatal("expected a non-nil area emitter")
	}
	if !ae.TwoSided {
		t.Fatal("expected TwoSided = true")
	}
}

func TestBindWorldAABBSetsDirectionalRadius(t *testing.T) {
	d := &emitter.Directional{}
	s := &emitter.Solar{}
	box := shapes.AABB{
		Min: quantity.Vec3{X: -1, Y: -1, Z: -1},
		Max: quantity.Vec3{X: 1, Y: 1, Z: 1},
	}
	bindWorldAABB([]emitter.Emitter{d, s}, box)
	if d.WorldRadius <= 0 {
		t.Fatal("expected Directional.WorldRadius to be set")
	}
	if s.WorldRadius <= 0 {
		t.Fatal("expected Solar.WorldRadius to be set through embedding")
	}
}
