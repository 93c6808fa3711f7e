package scene

import (
	"testing"

	"github.com/sixy6e/wavetrace/sensor"
)

func TestBuildSensorPerspective(t *testing.T) {
	n := parseOne(t, `<sensor type="perspective" name="cam" eye="0,0,5" dir="0,0,-1" up="0,1,0" width="320" height="240" samples_per_element="4"/>`)
	s, spp, err := buildSensor(n)
	if err != nil {
		t.Fatalf("buildSensor: %v", err)
	}
	if spp != 4 {
		t.Fatalf("samplesPerElement = %d, want 4", spp)
	}
	p, ok := s.(*sensor.Perspective)
	if !ok {
		t.Fatalf("got %T, want *sensor.Perspective", s)
	}
	w, h, d := p.Resolution()
	if w != 320 || h != 240 || d != 1 {
		t.Fatalf("Resolution = (%d,%d,%d), want (320,240,1)", w, h, d)
	}
}

func TestBuildSensorDefaultsType(t *testing.T) {
	n := parseOne(t, `<sensor name="cam" eye="0,0,5" dir="0,0,-1" up="0,1,0"/>`)
	if _, _, err := buildSensor(n); err != nil {
		t.Fatalf("buildSensor with no explicit type should default to perspective: %v", err)
	}
}

func TestBuildSensorUnknownType(t *testing.T) {
	n := parseOne(t, `<sensor type="spherical"/>`)
	if _, _, err := buildSensor(n); err == nil {
		t.Fatal("expected an error for an unrecognized sensor type")
	}
}
