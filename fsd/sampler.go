package fsd

import (
	"math"

	"github.com/sixy6e/wavetrace/quantity"
)

// Sampler is the minimal randomness source this package needs;
// duplicated from bsdf.Sampler/emitter.Sampler/sensor.Sampler to avoid
// a cyclic package import.
type Sampler interface {
	Float64() float64
	Vec2() (float64, float64)
}

// Sample is a sampled diffraction direction (in the beam cross-section
// plane), its sampling density, and an SIR resampling weight (1 for a
// directly-accepted sample).
type Sample struct {
	Xi     quantity.Vec2
	PDF    float64
	Weight float64
	OK     bool
}

func normal2D(sampler Sampler) (float64, float64) {
	u1, u2 := sampler.Vec2()
	u1 = math.Max(u1, 1e-12)
	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	return r * math.Cos(theta), r * math.Sin(theta)
}

// sampleP0 samples the isotropic-Gaussian 0th-order lobe.
//
// Grounded on fsd_sample_impl_t::sampleP0.
func sampleP0(sampler Sampler) quantity.Vec2 {
	x, y := normal2D(sampler)
	return quantity.Vec2{X: quantity.Length(p0Sigma * x), Y: quantity.Length(p0Sigma * y)}
}

// sampleEdgeLobe draws a direction from one edge's diffraction lobe.
// The source inverts a precomputed α1/α2 LUT (fsd_lut_t, never
// retrieved in original_source/ — _INDEX.md lists no fsd_lut file);
// this substitutes a documented simplification: a 2D Cauchy-shaped
// proposal centred on the edge's characteristic angular scale, whose
// decay matches α1/α2's 1/(x²+y²) falloff closely enough to serve as
// the rejection/SIR sampler's proposal distribution (see SampleOnce's
// correctness note — the rejection/SIR loop, not this proposal alone,
// is what guarantees an unbiased ASF-distributed sample).
//
// Grounded on fsd_sample_impl_t::sample1's discrete-between-α1/α2
// selection (by |a_b|² vs |iab_2|²) and its invXi remap back to the
// xi-space direction.
func sampleEdgeLobe(sampler Sampler, e Edge) quantity.Vec2 {
	a := e.Ab
	b := e.Iab2
	A := real(a)*real(a) + imag(a)*imag(a)
	B := real(b)*real(b) + imag(b)*imag(b)
	scale := 1.0
	if A+B > 0 && B > A {
		scale = 1.6
	}

	u1, u2 := sampler.Vec2()
	// Cauchy inversion: tan(pi*(u-0.5)) has the required heavy tail.
	zx := scale * math.Tan(math.Pi*(u1-0.5))
	zy := scale * math.Tan(math.Pi*(u2-0.5))

	ee2 := float64(e.E.X*e.E.X + e.E.Y*e.E.Y)
	if ee2 <= 0 {
		return quantity.Vec2{}
	}
	t := e.tangent()
	// invert the Ξ = [E | tangent] basis back to xi-space.
	invDet := 1 / (float64(e.E.X)*float64(t.Y) - float64(e.E.Y)*float64(t.X))
	x := invDet * (float64(t.Y)*zx - float64(t.X)*zy)
	y := invDet * (-float64(e.E.Y)*zx + float64(e.E.X)*zy)
	return quantity.Vec2{X: quantity.Length(x), Y: quantity.Length(y)}
}

// sampleN selects the 0th-order lobe or one aperture edge by their
// relative power (P0PDF vs EdgePDFs) and samples a direction from the
// chosen lobe.
//
// Grounded on fsd_sample_impl_t::sampleN.
func (a *Aperture) sampleN(sampler Sampler) quantity.Vec2 {
	u := sampler.Float64()
	if u < a.P0PDF || len(a.Edges) == 0 {
		return sampleP0(sampler)
	}
	u = (u - a.P0PDF) / (1 - a.P0PDF)
	acc := 0.0
	for i, pdf := range a.EdgePDFs {
		acc += pdf
		if u < acc || i == len(a.EdgePDFs)-1 {
			return sampleEdgeLobe(sampler, a.Edges[i])
		}
	}
	return sampleP0(sampler)
}

const maxRejectionTriesPerEdge = 1024

// SampleRejection draws a diffraction direction via rejection sampling
// against the upper bound M = edge_count, falling back to sampling-
// importance resampling (SampleSIR) with M = 4·edge_count when
// rejection sampling exhausts its try budget.
//
// Grounded on sample_rejection/sample_SIR in
// src/interaction/fsd/fraunhofer/fsd_sampler.cpp.
func (a *Aperture) SampleRejection(sampler Sampler) Sample {
	edgeCount := len(a.Edges)
	if edgeCount <= 1 {
		xi := a.sampleN(sampler)
		f := a.ASF(xi)
		return Sample{Xi: xi, PDF: f * a.RecpI, Weight: 1, OK: true}
	}

	M := float64(edgeCount)
	recpM := 1 / M
	maxTries := edgeCount * maxRejectionTriesPerEdge
	for tr := 0; tr < maxTries; tr++ {
		xi := a.sampleN(sampler)
		g := a.SamplingDensity(xi)
		f := a.ASF(xi)
		if g <= 0 {
			continue
		}
		if sampler.Float64()*g < f*recpM {
			return Sample{Xi: xi, PDF: f * a.RecpI, Weight: 1, OK: true}
		}
	}
	return a.SampleSIR(sampler)
}

// SampleSIR is the sampling-importance-resampling fallback used when
// rejection sampling exhausts its attempts, drawing M = 4·edge_count
// candidates and resampling by their f/g weight.
func (a *Aperture) SampleSIR(sampler Sampler) Sample {
	edgeCount := len(a.Edges)
	if edgeCount == 0 {
		return Sample{}
	}
	M := 4 * edgeCount
	xis := make([]quantity.Vec2, M)
	ws := make([]float64, M)
	fs := make([]float64, M)
	var W float64
	for m := 0; m < M; m++ {
		xi := a.sampleN(sampler)
		g := a.SamplingDensity(xi)
		f := a.ASF(xi)
		w := 0.0
		if g != 0 {
			w = f / g
		}
		xis[m], ws[m], fs[m] = xi, w, f
		W += w
	}
	if W <= 0 {
		return Sample{}
	}
	u := sampler.Float64() * W
	acc := 0.0
	idx := M - 1
	for m := 0; m < M; m++ {
		acc += ws[m]
		if u < acc {
			idx = m
			break
		}
	}
	return Sample{Xi: xis[idx], PDF: fs[idx] * a.RecpI, Weight: 1, OK: true}
}
