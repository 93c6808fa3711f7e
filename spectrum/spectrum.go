// Package spectrum implements wavenumber-indexed spectral curves: the
// piecewise-linear and discrete distributions materials, emitters, and
// sensors are built from, their sampling PDFs, and a TileDB-array-backed
// spectral database for loading named curves off disk.
//
// Grounded on original_source/include/wt/spectrum/colourspace/RGB/RGB.hpp:
// a spectrum is, at minimum, a wavenumber -> value curve exposing a
// mean value, a power integral over a wavenumber range, and a sampling
// distribution (mean_value, mean_spectrum, f, resolution, is_constant,
// needs_interaction_footprint, distribution, power).
package spectrum

import (
	"math"
	"sort"

	"github.com/sixy6e/wavetrace/quantity"
)

// Spectrum is the minimal interface every spectral curve in the system
// exposes, matching the texture/spectrum subsystem's consumer contract.
type Spectrum interface {
	// Eval evaluates the curve at wavenumber k.
	Eval(k quantity.Wavenumber) float64
	// MeanValue returns a single representative value of the curve
	// (used where a scalar stand-in for a full spectral evaluation is
	// acceptable, e.g. BSDF roughness texture lookups).
	MeanValue() float64
	// Power integrates the curve over a wavenumber range.
	Power(krange quantity.Range) float64
	// IsConstant reports whether the curve is wavelength-independent.
	IsConstant() bool
	// NeedsInteractionFootprint reports whether evaluating this curve
	// needs the beam's surface footprint (a textured, as opposed to a
	// uniform, spectrum never does).
	NeedsInteractionFootprint() bool
	// Distribution returns a sampling distribution over this curve's
	// support plus the reciprocal of its total integral, used to divide
	// out the spectral importance weight.
	Distribution() (Distribution, float64)
}

// Constant is a spectrum with the same value at every wavenumber.
type Constant struct {
	Value float64
}

func (c Constant) Eval(quantity.Wavenumber) float64 { return c.Value }
func (c Constant) MeanValue() float64               { return c.Value }
func (c Constant) Power(krange quantity.Range) float64 {
	return c.Value * float64(krange.Max-krange.Min)
}
func (c Constant) IsConstant() bool               { return true }
func (c Constant) NeedsInteractionFootprint() bool { return false }
func (c Constant) Distribution() (Distribution, float64) {
	return uniformDistribution{}, reciprocal(c.Power(unitRange))
}

// PiecewiseLinear is a spectrum sampled at a sorted set of wavenumber
// nodes and linearly interpolated between them; outside its support it
// holds its end values (V[0] below the first node, V[n-1] above the
// last).
type PiecewiseLinear struct {
	K []quantity.Wavenumber
	V []float64
}

func (p *PiecewiseLinear) Eval(k quantity.Wavenumber) float64 {
	n := len(p.K)
	if n == 0 {
		return 0
	}
	if k <= p.K[0] {
		return p.V[0]
	}
	if k >= p.K[n-1] {
		return p.V[n-1]
	}
	i := sort.Search(n, func(i int) bool { return p.K[i] >= k })
	k0, k1 := p.K[i-1], p.K[i]
	v0, v1 := p.V[i-1], p.V[i]
	t := float64((k - k0)) / float64(k1-k0)
	return v0 + t*(v1-v0)
}

func (p *PiecewiseLinear) MeanValue() float64 {
	if len(p.V) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.V {
		sum += v
	}
	return sum / float64(len(p.V))
}

func (p *PiecewiseLinear) Power(krange quantity.Range) float64 {
	var total float64
	for i := 0; i+1 < len(p.K); i++ {
		k0, k1 := p.K[i], p.K[i+1]
		seg := quantity.Range{Min: k0, Max: k1}.Intersect(krange)
		if seg.Empty() || seg.Max <= seg.Min {
			continue
		}
		v0, v1 := p.V[i], p.V[i+1]
		// trapezoid over the overlapped sub-segment, re-interpolating
		// the endpoint values linearly.
		t0 := float64(seg.Min-k0) / float64(k1-k0)
		t1 := float64(seg.Max-k0) / float64(k1-k0)
		va := v0 + t0*(v1-v0)
		vb := v0 + t1*(v1-v0)
		total += 0.5 * (va + vb) * float64(seg.Max-seg.Min)
	}
	return total
}

func (p *PiecewiseLinear) IsConstant() bool               { return len(p.V) <= 1 }
func (p *PiecewiseLinear) NeedsInteractionFootprint() bool { return false }

func (p *PiecewiseLinear) Distribution() (Distribution, float64) {
	if len(p.K) < 2 {
		return uniformDistribution{}, 1
	}
	total := p.Power(quantity.Range{Min: p.K[0], Max: p.K[len(p.K)-1]})
	return &piecewiseDistribution{p: p}, reciprocal(total)
}

func reciprocal(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return 1 / x
}

// Product returns the pointwise product spectrum a*b, evaluated
// lazily. Used to build the per-emitter emission*sensitivity product
// spectrum a sample draws its wavelength from.
func Product(a, b Spectrum) Spectrum { return productSpectrum{a, b} }

type productSpectrum struct{ a, b Spectrum }

func (p productSpectrum) Eval(k quantity.Wavenumber) float64 { return p.a.Eval(k) * p.b.Eval(k) }
func (p productSpectrum) MeanValue() float64                 { return p.a.MeanValue() * p.b.MeanValue() }
func (p productSpectrum) Power(krange quantity.Range) float64 {
	return integrateProduct(p.a, p.b, krange, 64)
}
func (p productSpectrum) IsConstant() bool { return p.a.IsConstant() && p.b.IsConstant() }
func (p productSpectrum) NeedsInteractionFootprint() bool {
	return p.a.NeedsInteractionFootprint() || p.b.NeedsInteractionFootprint()
}
func (p productSpectrum) Distribution() (Distribution, float64) {
	total := p.Power(unitRange)
	return &sampledDistribution{s: p, krange: unitRange, bins: 256}, reciprocal(total)
}

// unitRange is the default visible-light wavenumber range used when a
// product spectrum's own support isn't otherwise known: 380nm-750nm
// converted to angular wavenumber.
var unitRange = quantity.Range{
	Min: quantity.WavelengthToWavenumber(750e-9),
	Max: quantity.WavelengthToWavenumber(380e-9),
}

func integrateProduct(a, b Spectrum, krange quantity.Range, n int) float64 {
	if krange.Empty() || n <= 0 {
		return 0
	}
	lo, hi := krange.Min, krange.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	step := (hi - lo) / quantity.Wavenumber(n)
	var sum float64
	for i := 0; i < n; i++ {
		k := lo + step*quantity.Wavenumber(i)+step/2
		sum += a.Eval(k) * b.Eval(k)
	}
	return sum * float64(step)
}

// Distribution is a 1D sampling distribution over a spectral support:
// inverse-CDF sampling plus its density at any point.
type Distribution interface {
	Sample(u float64) (quantity.Wavenumber, float64)
	PDF(k quantity.Wavenumber) float64
}

type uniformDistribution struct{}

func (uniformDistribution) Sample(u float64) (quantity.Wavenumber, float64) {
	k := unitRange.Min + quantity.Wavenumber(u)*(unitRange.Max-unitRange.Min)
	return k, uniformDistribution{}.PDF(k)
}
func (uniformDistribution) PDF(quantity.Wavenumber) float64 {
	span := float64(unitRange.Max - unitRange.Min)
	if span <= 0 {
		return 0
	}
	return 1 / span
}

// piecewiseDistribution samples proportional to a PiecewiseLinear
// curve's magnitude via per-segment trapezoid weights.
type piecewiseDistribution struct {
	p     *PiecewiseLinear
	built bool
	cdf   []float64
	total float64
}

func (d *piecewiseDistribution) build() {
	if d.built {
		return
	}
	d.built = true
	n := len(d.p.K)
	d.cdf = make([]float64, max0(n-1, 0))
	var acc float64
	for i := 0; i+1 < n; i++ {
		seg := 0.5 * (d.p.V[i] + d.p.V[i+1]) * float64(d.p.K[i+1]-d.p.K[i])
		if seg < 0 {
			seg = 0
		}
		acc += seg
		d.cdf[i] = acc
	}
	d.total = acc
}

func max0(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (d *piecewiseDistribution) Sample(u float64) (quantity.Wavenumber, float64) {
	d.build()
	if d.total <= 0 || len(d.cdf) == 0 {
		k := d.p.K[0]
		return k, d.PDF(k)
	}
	target := u * d.total
	i := sort.SearchFloat64s(d.cdf, target)
	if i >= len(d.cdf) {
		i = len(d.cdf) - 1
	}
	prev := 0.0
	if i > 0 {
		prev = d.cdf[i-1]
	}
	segFrac := 0.0
	segTotal := d.cdf[i] - prev
	if segTotal > 0 {
		segFrac = (target - prev) / segTotal
	}
	k := d.p.K[i] + quantity.Wavenumber(segFrac)*(d.p.K[i+1]-d.p.K[i])
	return k, d.PDF(k)
}

func (d *piecewiseDistribution) PDF(k quantity.Wavenumber) float64 {
	d.build()
	if d.total <= 0 {
		return 0
	}
	return d.p.Eval(k) / d.total
}

// sampledDistribution samples a generic Spectrum by discretizing it
// into a fixed bin count over krange — used for product spectra whose
// analytic CDF isn't available.
type sampledDistribution struct {
	s      Spectrum
	krange quantity.Range
	bins   int
	built  bool
	cdf    []float64
	total  float64
}

func (d *sampledDistribution) build() {
	if d.built {
		return
	}
	d.built = true
	d.cdf = make([]float64, d.bins)
	step := (d.krange.Max - d.krange.Min) / quantity.Wavenumber(d.bins)
	var acc float64
	for i := 0; i < d.bins; i++ {
		k := d.krange.Min + step*quantity.Wavenumber(i) + step/2
		acc += math.Max(0, d.s.Eval(k))
		d.cdf[i] = acc
	}
	d.total = acc
}

func (d *sampledDistribution) Sample(u float64) (quantity.Wavenumber, float64) {
	d.build()
	if d.total <= 0 {
		return d.krange.Min, 0
	}
	target := u * d.total
	i := sort.SearchFloat64s(d.cdf, target)
	if i >= d.bins {
		i = d.bins - 1
	}
	step := (d.krange.Max - d.krange.Min) / quantity.Wavenumber(d.bins)
	k := d.krange.Min + step*quantity.Wavenumber(i) + step/2
	return k, d.PDF(k)
}

func (d *sampledDistribution) PDF(k quantity.Wavenumber) float64 {
	d.build()
	if d.total <= 0 {
		return 0
	}
	step := (d.krange.Max - d.krange.Min) / quantity.Wavenumber(d.bins)
	return math.Max(0, d.s.Eval(k)) / d.total / float64(step)
}
