// Package beam implements the beam envelope and its transverse Gaussian
// wavefront, and the hybrid ballistic/diffusive traversal driver that
// propagates a beam through the ADS.
package beam

import (
	"math"

	"github.com/sixy6e/wavetrace/quantity"
)

// Dir2 is a unit direction in a beam's transverse (cross-section) plane.
type Dir2 struct{ X, Y float64 }

func (d Dir2) perp() Dir2 { return Dir2{X: -d.Y, Y: d.X} }

func dot2(d Dir2, v quantity.Vec2) quantity.Length {
	return quantity.Length(d.X)*v.X + quantity.Length(d.Y)*v.Y
}

func scale2(d Dir2, l quantity.Length) quantity.Vec2 {
	return quantity.Vec2{X: l * quantity.Length(d.X), Y: l * quantity.Length(d.Y)}
}

// Point2 is a dimensionless point in a wavefront's canonical (standard
// normal) coordinates.
type Point2 struct{ X, Y float64 }

// Wavefront is a 2D Gaussian amplitude profile over a beam's transverse
// plane: a mean, two per-axis standard deviations, and the direction its
// first axis aligns with. Correctly handles the singular Dirac case
// where either standard deviation is zero.
//
// Grounded on original_source/include/wt/math/distribution/gaussian2d.hpp.
type Wavefront struct {
	Mu    quantity.Vec2
	Sigma quantity.Vec2
	X     Dir2
}

// NewWavefront constructs a wavefront with the given standard
// deviations, local x-axis direction, and mean.
func NewWavefront(sigma quantity.Vec2, x Dir2, mu quantity.Vec2) Wavefront {
	return Wavefront{Mu: mu, Sigma: sigma, X: x}
}

// IsDirac reports whether the wavefront has degenerated to a delta
// function along either axis.
func (w Wavefront) IsDirac() bool { return w.Sigma.X == 0 || w.Sigma.Y == 0 }

// ToCanonical maps a transverse-plane point into the wavefront's
// canonical (zero-mean, unit-variance) coordinates.
func (w Wavefront) ToCanonical(v quantity.Vec2) Point2 {
	d := v.Sub(w.Mu)
	px := dot2(w.X, d)
	py := dot2(w.X.perp(), d)
	if w.IsDirac() {
		cx, cy := 0.0, 0.0
		if px != 0 {
			cx = math.Inf(1)
		}
		if py != 0 {
			cy = math.Inf(1)
		}
		return Point2{X: cx, Y: cy}
	}
	return Point2{X: float64(px / w.Sigma.X), Y: float64(py / w.Sigma.Y)}
}

// FromCanonical is the inverse of ToCanonical for a non-Dirac wavefront:
// FromCanonical(ToCanonical(p)) == p up to floating-point tolerance.
func (w Wavefront) FromCanonical(p Point2) quantity.Vec2 {
	major := scale2(w.X, w.Sigma.X*quantity.Length(p.X))
	minor := scale2(w.X.perp(), w.Sigma.Y*quantity.Length(p.Y))
	return major.Add(minor).Add(w.Mu)
}

// PDF evaluates the wavefront's probability density at v. For a Dirac
// wavefront, PDF is +Inf at the mean and 0 elsewhere.
func (w Wavefront) PDF(v quantity.Vec2) float64 {
	if w.IsDirac() {
		if v == w.Mu {
			return math.Inf(1)
		}
		return 0
	}
	c := w.ToCanonical(v)
	norm := 1 / (2 * math.Pi * float64(w.Sigma.X) * float64(w.Sigma.Y))
	return norm * math.Exp(-(c.X*c.X+c.Y*c.Y)/2)
}
