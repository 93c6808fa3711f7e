package loader

import (
	"strings"
	"testing"

	"github.com/sixy6e/wavetrace/quantity"
)

type perspectiveParams struct {
	Name   string         `scene:"name=name"`
	Eye    quantity.Vec3  `scene:"name=eye"`
	Dir    quantity.Unit3 `scene:"name=dir"`
	FovY   quantity.Angle `scene:"name=fov,default=60"`
	Width  uint32         `scene:"name=width,default=1920"`
	Ray    bool           `scene:"name=ray_trace_only,default=false"`
	hidden string
}

func TestDecodeFillsTaggedFields(t *testing.T) {
	src := `<sensor name="cam" eye="0,0,1" dir="0,0,-1" width="64"/>`
	root, err := Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var p perspectiveParams
	if err := Decode(root, &p); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Name != "cam" {
		t.Fatalf("Name = %q, want cam", p.Name)
	}
	if p.Eye.Z != 1 {
		t.Fatalf("Eye.Z = %v, want 1", p.Eye.Z)
	}
	if p.Dir.Z != -1 {
		t.Fatalf("Dir.Z = %v, want -1", p.Dir.Z)
	}
	if p.Width != 64 {
		t.Fatalf("Width = %v, want 64", p.Width)
	}
}

func TestDecodeAppliesDefaultsWhenAttributeAbsent(t *testing.T) {
	src := `<sensor name="cam" eye="0,0,0" dir="0,0,-1"/>`
	root, err := Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var p perspectiveParams
	if err := Decode(root, &p); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.Width != 1920 {
		t.Fatalf("Width = %v, want default 1920", p.Width)
	}
	if p.Ray {
		t.Fatal("Ray = true, want default false")
	}
}

func TestDecodeFovConvertsDegreesToRadians(t *testing.T) {
	src := `<sensor name="cam" eye="0,0,0" dir="0,0,-1" fov="90"/>`
	root, err := Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var p perspectiveParams
	if err := Decode(root, &p); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := quantity.Angle(1.5707963267948966)
	diff := float64(p.FovY - want)
	if diff < -1e-9 || diff > 1e-9 {
		t.Fatalf("FovY = %v, want %v", p.FovY, want)
	}
}

func TestDecodeMalformedVec3Errors(t *testing.T) {
	src := `<sensor name="cam" eye="not,a,vec3" dir="0,0,-1"/>`
	root, err := Parse(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var p perspectiveParams
	if err := Decode(root, &p); err == nil {
		t.Fatal("expected an error decoding a malformed vec3")
	}
}
