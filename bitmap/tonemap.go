// Package bitmap writes a sensor's film to disk: tonemap operators
// that map a Stokes sample down to displayable intensity, and PNG/VFS
// writers for the tonemapped result.
//
// OpenEXR (or other HDR-image) export is out of scope here: no
// available library for it is in use (golang.org/x/image appears only
// as an indirect dependency, never directly imported), so this package
// writes tonemapped PNG previews only — the lossless/HDR persistence
// need is covered instead by render.FilmCheckpoint's TileDB array. See
// DESIGN.md.
package bitmap

import (
	"math"

	"github.com/sixy6e/wavetrace/polarimetric"
)

// Operator maps a scalar intensity to a single displayable value in
// [0,1]. Concrete operators: linear, gamma(γ), sRGB, dB(min..max),
// function(expr).
type Operator interface {
	Apply(intensity float64) float64
}

// Linear is the identity operator, clamped to [0,1].
type Linear struct{}

func (Linear) Apply(i float64) float64 { return clamp01(i) }

// Gamma applies i^(1/γ), clamped to [0,1] before and after.
type Gamma struct {
	Gamma float64
}

func (g Gamma) Apply(i float64) float64 {
	i = clamp01(i)
	if g.Gamma <= 0 {
		return i
	}
	return math.Pow(i, 1/g.Gamma)
}

// SRGB applies the IEC 61966-2-1 sRGB OETF.
type SRGB struct{}

func (SRGB) Apply(i float64) float64 {
	i = clamp01(i)
	if i <= 0.0031308 {
		return 12.92 * i
	}
	return 1.055*math.Pow(i, 1/2.4) - 0.055
}

// DB maps intensity onto a decibel scale between Min and Max — useful
// for the many orders-of-magnitude dynamic range a wave-optics render
// can produce.
type DB struct {
	Min, Max float64
}

func (d DB) Apply(i float64) float64 {
	if i <= 0 {
		return 0
	}
	db := 10 * math.Log10(i)
	if d.Max <= d.Min {
		return clamp01(db)
	}
	return clamp01((db - d.Min) / (d.Max - d.Min))
}

// Function wraps an arbitrary Go func as a "function(expr)" operator.
// A runtime-parsed expression string would need an expression-
// evaluation library, and none is in use here — a Go closure is the
// stand-in, taking the same (intensity) -> (0,1) shape the other
// operators do.
type Function struct {
	Expr func(i float64) float64
}

func (f Function) Apply(i float64) float64 {
	if f.Expr == nil {
		return clamp01(i)
	}
	return clamp01(f.Expr(i))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Mode selects how a Stokes sample is reduced to a scalar intensity
// before Operator.Apply: select, normal, or colourmap(name). Selection
// defaults to colourmap for monochromatic output and normal for
// polychromatic — see SelectMode.
type Mode int

const (
	// ModeSelect reads a single named Stokes component (I by default).
	ModeSelect Mode = iota
	// ModeNormal uses the Stokes vector's total (unpolarized+polarized)
	// intensity.
	ModeNormal
	// ModeColourmap maps a scalar intensity through a named colour
	// lookup table instead of a single greyscale value.
	ModeColourmap
)

// SelectMode returns the default mode for a given channel count:
// colourmap for a single-channel (monochromatic) film, normal
// otherwise.
func SelectMode(channels int) Mode {
	if channels == 1 {
		return ModeColourmap
	}
	return ModeNormal
}

// Intensity reduces a Stokes sample to the scalar an Operator consumes.
// channel names one of "I","Q","U","V" and is only consulted in
// ModeSelect; every other mode reads the total intensity (the I
// component).
func Intensity(mode Mode, channel string, s polarimetric.Stokes) float64 {
	if mode == ModeSelect {
		switch channel {
		case "Q":
			return s.Q
		case "U":
			return s.U
		case "V":
			return s.V
		default:
			return s.I
		}
	}
	return s.Intensity()
}
