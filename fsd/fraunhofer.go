package fsd

import (
	"math"
	"math/cmplx"

	"github.com/sixy6e/wavetrace/quantity"
)

// Edge parametrizes one silhouette segment of a Fraunhofer aperture:
// its 2D vector and midpoint in the beam's cross-section plane, and
// the two pre-integrated beam-amplitude coefficients used by the
// α1/α2 diffraction-lobe functions.
//
// Grounded on
// original_source/include/wt/interaction/fsd/fraunhofer/fsd.hpp's
// edge_t.
type Edge struct {
	E, V quantity.Vec2 // edge vector, midpoint (beam cross-section plane)
	Ab   complex128
	Iab2 complex128
}

// tangent returns e.m(): the edge vector rotated 90°, premultiplied by
// wavenumber by the caller (the aperture builder folds k into E/V
// before constructing edges, matching the source's convention of
// storing wavenumber-premultiplied quantities).
func (e Edge) tangent() quantity.Vec2 {
	return quantity.Vec2{X: e.E.Y, Y: -e.E.X}
}

// xi applies the edge's Ξ matrix (columns E, tangent) to a direction ξ.
func (e Edge) xi(xiv quantity.Vec2) quantity.Vec2 {
	t := e.tangent()
	return quantity.Vec2{
		X: quantity.Length(float64(xiv.X)*float64(e.E.X) + float64(xiv.Y)*float64(e.E.Y)),
		Y: quantity.Length(float64(xiv.X)*float64(t.X) + float64(xiv.Y)*float64(t.Y)),
	}
}

const (
	pa1      = 0.0049361075794549872500
	pa2      = 0.21899789398059305541
	p0Sigma  = 0.288675134594813 / 4
	chiConst = 0.830092714835359
)

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(x) / x
}

func alpha1(x, y float64) float64 {
	if x == 0 {
		return 0
	}
	return (1 / (2 * math.Pi)) * y / (x * (x*x + y*y)) * (math.Cos(x/2) - sinc(x/2))
}

func alpha2(x, y float64) float64 {
	if x == 0 {
		return 0
	}
	return (1 / (2 * math.Pi)) * y / (x*x + y*y) * sinc(x / 2)
}

// chiE is the masking function for the diffracted edge lobes.
func chiE(xi quantity.Vec2) float64 {
	xi2 := float64(xi.X*xi.X + xi.Y*xi.Y)
	t := 1 + chiConst*xi2
	t2 := t * t
	t3 := t2 * t
	return math.Max(0, 1-(3/t2-2/t3))
}

// chi0 is the masking function for the 0th-order lobe.
func chi0(xi quantity.Vec2) float64 {
	x := float64(xi.X) / p0Sigma
	y := float64(xi.Y) / p0Sigma
	return math.Exp(-0.5 * (x*x + y*y))
}

// Psi evaluates the complex diffraction amplitude of one edge at
// direction xi (excludes the 0th-order lobe).
func (e Edge) Psi(xiv quantity.Vec2) complex128 {
	z := e.xi(xiv)
	a1 := e.Ab * complex(alpha1(float64(z.X), float64(z.Y)), 0)
	a2 := e.Iab2 * complex(alpha2(float64(z.X), float64(z.Y)), 0)

	ee2 := float64(e.E.X*e.E.X + e.E.Y*e.E.Y)
	vxi := float64(e.V.X)*float64(xiv.X) + float64(e.V.Y)*float64(xiv.Y)
	return cmplx.Rect(ee2, -vxi) * (a1 + a2)
}

// psi2 approximates |Ψ|² for one edge at direction xi (excludes the
// 0th-order lobe).
func (e Edge) psi2(xiv quantity.Vec2) float64 {
	z := e.xi(xiv)
	a1 := e.Ab * complex(alpha1(float64(z.X), float64(z.Y)), 0)
	a2 := e.Iab2 * complex(alpha2(float64(z.X), float64(z.Y)), 0)
	ee2 := float64(e.E.X*e.E.X + e.E.Y*e.E.Y)
	return sqr(ee2) * cmplx.Abs(a1+a2)*cmplx.Abs(a1+a2)
}

// Pj approximates the scattered power in a single-edge aperture,
// χₑ×(|α1|²+|α2|²), ignoring the negligible cross term.
func (e Edge) Pj() float64 {
	ee2 := float64(e.E.X*e.E.X + e.E.Y*e.E.Y)
	a1 := cmplx.Abs(e.Ab)
	a2 := cmplx.Abs(e.Iab2)
	return sqr(ee2) * (pa1*a1*a1 + pa2*a2*a2)
}

// Aperture is an aggregated Fraunhofer diffraction aperture: a set of
// silhouette edges plus the precomputed sampling weights and 0th-order
// lobe strength.
//
// Grounded on
// original_source/include/wt/interaction/fsd/fraunhofer/fsd.hpp's
// fsd_aperture_t.
type Aperture struct {
	Edges []Edge
	K     quantity.Wavenumber

	EdgePDFs []float64
	P0       float64
	P0PDF    float64
	Psi02    float64
	RecpI    float64
}

func (a *Aperture) SingleEdge() bool { return len(a.Edges) == 1 }

// ASFUnclamped evaluates the free-space-diffraction angular scattering
// function using only the edge terms; unstable near xi=0 — callers use
// ASF, which adds the clamped 0th-order lobe.
func (a *Aperture) ASFUnclamped(xi quantity.Vec2) float64 {
	var amp complex128
	for _, e := range a.Edges {
		amp += e.Psi(xi)
	}
	m := cmplx.Abs(amp)
	return m * m
}

// ASF evaluates the full angular scattering function, |Ψ|² over the
// edge sum plus the masked 0th-order lobe.
func (a *Aperture) ASF(xi quantity.Vec2) float64 {
	return a.ASFUnclamped(xi)*chiE(xi) + a.Psi02*chi0(xi)
}

// SamplingDensity approximates |Ψ|² via the per-edge psi2 sum (cheaper
// than ASF's coherent-sum magnitude, used for importance sampling).
func (a *Aperture) SamplingDensity(xi quantity.Vec2) float64 {
	var diffracted float64
	for _, e := range a.Edges {
		diffracted += e.psi2(xi)
	}
	return diffracted*chiE(xi) + a.P0*(1/(2*math.Pi))/sqr(p0Sigma)*chi0(xi)
}

// P0Power returns the power contained in the 0th-order lobe.
func (a *Aperture) P0Power() float64 { return 2 * math.Pi * sqr(p0Sigma) * a.Psi02 }
