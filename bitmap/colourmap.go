package bitmap

import "math"

// RGB is a tonemapped display colour, each component in [0,1].
type RGB struct {
	R, G, B float64
}

// Colourmap maps a scalar in [0,1] to a display colour, used by
// ModeColourmap.
type Colourmap func(v float64) RGB

// Greyscale maps v straight to R=G=B=v, the degenerate colourmap used
// when no named map is requested.
func Greyscale(v float64) RGB { return RGB{v, v, v} }

// Viridis is a small fixed-stop approximation of matplotlib's viridis
// map, linearly interpolated between control points — enough for a
// render preview without pulling in a plotting/colour library.
func Viridis(v float64) RGB {
	stops := []RGB{
		{0.267, 0.005, 0.329},
		{0.283, 0.141, 0.458},
		{0.254, 0.265, 0.530},
		{0.207, 0.372, 0.553},
		{0.164, 0.471, 0.558},
		{0.128, 0.567, 0.551},
		{0.135, 0.659, 0.518},
		{0.267, 0.749, 0.441},
		{0.478, 0.821, 0.318},
		{0.741, 0.873, 0.150},
		{0.993, 0.906, 0.144},
	}
	return lerpStops(stops, v)
}

// Inferno is a small fixed-stop approximation of matplotlib's inferno
// map, same rationale as Viridis.
func Inferno(v float64) RGB {
	stops := []RGB{
		{0.001, 0.000, 0.014},
		{0.117, 0.042, 0.259},
		{0.317, 0.047, 0.392},
		{0.514, 0.072, 0.370},
		{0.698, 0.163, 0.289},
		{0.851, 0.295, 0.171},
		{0.952, 0.470, 0.039},
		{0.987, 0.678, 0.113},
		{0.964, 0.895, 0.369},
	}
	return lerpStops(stops, v)
}

func lerpStops(stops []RGB, v float64) RGB {
	v = clamp01(v)
	n := len(stops)
	pos := v * float64(n-1)
	i := int(math.Floor(pos))
	if i >= n-1 {
		return stops[n-1]
	}
	t := pos - float64(i)
	a, b := stops[i], stops[i+1]
	return RGB{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

// ByName resolves a colourmap by name; unrecognized names fall back to
// Greyscale rather than erroring, so a bad colourmap name degrades the
// preview instead of aborting the render.
func ByName(name string) Colourmap {
	switch name {
	case "viridis":
		return Viridis
	case "inferno":
		return Inferno
	default:
		return Greyscale
	}
}
