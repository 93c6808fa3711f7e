// Package quantity implements the dimensional scalar and vector algebra
// used throughout the tracer: lengths, angles, wavenumbers, and the
// ranges and unit vectors built from them.
//
// Go has no template-based unit-of-measure system, so quantities are
// modeled as named float64 types carrying only the operations that make
// physical sense for them, rather than a generic units library.
package quantity

import "math"

// Length is a length in metres.
type Length float64

// Angle is an angle in radians.
type Angle float64

// Wavenumber is an angular wavenumber (k = 2π/λ) in radians per metre.
type Wavenumber float64

// Length2 is an area in square metres.
type Length2 float64

// Inf is the positive-infinity sentinel used for unbounded ranges.
const Inf = Length(math.MaxFloat64)

// Range is a closed interval [Min, Max] of lengths along a ray or
// cone's propagation axis; it is empty only when Min > Max.
type Range struct {
	Min, Max Length
}

// FullRange is the canonical [0, +inf) range used by default queries.
func FullRange() Range { return Range{Min: 0, Max: Inf} }

// Empty reports whether r contains no point.
func (r Range) Empty() bool { return r.Min > r.Max }

// Contains reports whether d lies within r.
func (r Range) Contains(d Length) bool { return d >= r.Min && d <= r.Max }

// Intersect returns the range that is within both r and o.
func (r Range) Intersect(o Range) Range {
	out := Range{Min: max(r.Min, o.Min), Max: min(r.Max, o.Max)}
	return out
}

func max(a, b Length) Length {
	if a > b {
		return a
	}
	return b
}

func min(a, b Length) Length {
	if a < b {
		return a
	}
	return b
}

// WavelengthToWavenumber converts a vacuum wavelength (in metres) to an
// angular wavenumber.
func WavelengthToWavenumber(lambda Length) Wavenumber {
	if lambda <= 0 {
		return 0
	}
	return Wavenumber(2 * math.Pi / float64(lambda))
}
