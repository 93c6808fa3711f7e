package scene

import (
	"fmt"

	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/scene/loader"
	"github.com/sixy6e/wavetrace/sensor"
	"github.com/sixy6e/wavetrace/spectrum"
)

// perspectiveParams decodes a <sensor type="perspective">, grounded on
// original_source/src/sensor/perspective.cpp's loader (eye/dir/up/fov/
// width/height/block_size/samples_per_element/ray_trace_only attribute
// set).
type perspectiveParams struct {
	Name              string         `scene:"name=name"`
	Eye               quantity.Vec3  `scene:"name=eye"`
	Dir               quantity.Unit3 `scene:"name=dir"`
	Up                quantity.Unit3 `scene:"name=up"`
	FovY              quantity.Angle `scene:"name=fov,default=60"`
	Width             uint32         `scene:"name=width,default=1280"`
	Height            uint32         `scene:"name=height,default=720"`
	BlockSize         uint32         `scene:"name=block_size,default=32"`
	SamplesPerElement uint32         `scene:"name=samples_per_element,default=16"`
	RayTraceOnly      bool           `scene:"name=ray_trace_only,default=false"`
	Sensitivity       float64        `scene:"name=sensitivity,default=1"`
}

// buildSensor decodes one top-level <sensor> element into a concrete
// sensor.Sensor. Perspective is the only variant built here; the
// rest of the roster (orthographic, spherical, irradiance-meter) is
// left for a future constructor — the narrow Sensor interface means
// adding one is additive, not a rework.
func buildSensor(n *loader.Node) (sensor.Sensor, uint32, error) {
	typ, _ := n.Attr("type")
	switch typ {
	case "perspective", "":
		var p perspectiveParams
		if err := loader.Decode(n, &p); err != nil {
			return nil, 0, err
		}
		return &sensor.Perspective{
			ID:                p.Name,
			Eye:               p.Eye,
			ViewDir:           p.Dir,
			Up:                p.Up,
			FovY:              p.FovY,
			Width:             p.Width,
			Height:            p.Height,
			BlockSize:         p.BlockSize,
			SamplesPerElement: p.SamplesPerElement,
			RayTraceOnlyFlag:  p.RayTraceOnly,
			Sensitivity:       spectrum.Constant{Value: p.Sensitivity},
		}, p.SamplesPerElement, nil
	default:
		return nil, 0, fmt.Errorf("%w: <sensor type=%q>", ErrUnknownElement, typ)
	}
}
