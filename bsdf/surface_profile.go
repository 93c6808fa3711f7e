package bsdf

import (
	"math"

	"github.com/sixy6e/wavetrace/quantity"
)

// epsNumeric is the small-value cutoff used throughout this package to
// guard divisions and truncate near-zero densities, standing in for the
// float epsilon constant the ported source reaches for.
const epsNumeric = 1e-6

// TextureQuery carries whatever spatially-varying state a surface
// profile needs to evaluate at an intersection. No texture system
// exists yet, so this carries only the wavenumber; a future texture
// package would extend it with UV/footprint fields.
type TextureQuery struct {
	K quantity.Wavenumber
}

// Sampler is the minimal randomness source a surface profile or BSDF
// needs: one uniform float in [0,1) and one uniform pair in [0,1)^2.
type Sampler interface {
	Float64() float64
	Vec2() (float64, float64)
}

// ProfileSample is the result of sampling a scattered direction from a
// surface profile, in the local shading frame (wi.z, wo.z > 0 on the
// same side of the surface).
type ProfileSample struct {
	Wo     quantity.Unit3
	PDF    float64
	PSD    float64
	Weight float64
}

// SurfaceProfile is a microscale surface statistic: how much of the
// incident power of a beam is scattered into a specular lobe versus a
// diffuse lobe described by a power spectral density (PSD), and how to
// sample and evaluate that diffuse lobe's direction.
//
// Grounded on
// original_source/include/wt/interaction/surface_profile/{dirac,
// gaussian}.hpp.
type SurfaceProfile interface {
	Variance(q TextureQuery) float64
	RMSRoughness(q TextureQuery) float64
	Alpha(wi, wo quantity.Unit3, q TextureQuery) float64
	AlphaSelf(wi quantity.Unit3, q TextureQuery) float64
	IsDeltaOnly(k quantity.Wavenumber) bool
	NeedsInteractionFootprint() bool
	PSD(wi, wo quantity.Unit3, q TextureQuery) float64
	Sample(wi quantity.Unit3, q TextureQuery, sampler Sampler) ProfileSample
	PDF(wi, wo quantity.Unit3, q TextureQuery) float64
}

// Dirac is a perfectly smooth surface profile: all scattered power sits
// in the specular term, the PSD is identically zero, and the profile
// cannot be sampled as a finite-density lobe.
//
// Grounded on
// original_source/include/wt/interaction/surface_profile/dirac.hpp.
type Dirac struct{}

func (Dirac) Variance(TextureQuery) float64                      { return 0 }
func (Dirac) RMSRoughness(TextureQuery) float64                  { return 0 }
func (Dirac) Alpha(_, _ quantity.Unit3, _ TextureQuery) float64  { return 1 }
func (Dirac) AlphaSelf(_ quantity.Unit3, _ TextureQuery) float64 { return 1 }
func (Dirac) IsDeltaOnly(quantity.Wavenumber) bool               { return true }
func (Dirac) NeedsInteractionFootprint() bool                    { return false }
func (Dirac) PSD(_, _ quantity.Unit3, _ TextureQuery) float64    { return 0 }

// Sample must never be called on a delta-only profile: callers are
// expected to check IsDeltaOnly and route to the specular lobe instead.
func (Dirac) Sample(quantity.Unit3, TextureQuery, Sampler) ProfileSample {
	panic("bsdf: Sample called on a delta-only (Dirac) surface profile")
}

func (Dirac) PDF(_, _ quantity.Unit3, _ TextureQuery) float64 { return 0 }

// Gaussian is a surface profile with Gaussian statistics: the scattered
// power spectral density is a 2D Gaussian in spatial frequency, sampled
// by a truncated Box-Mueller transform.
//
// Sigma2 is the surface's spatial-frequency variance (metres^-2).
// The original profile is parametrized by a roughness or RMS-height
// texture; no texture package exists yet, so Sigma2 is carried as a
// plain constant here rather than queried per-intersection.
//
// Grounded on
// original_source/include/wt/interaction/surface_profile/gaussian.hpp.
type Gaussian struct {
	Sigma2 float64
}

func (g Gaussian) Variance(TextureQuery) float64        { return g.Sigma2 }
func (g Gaussian) RMSRoughness(TextureQuery) float64    { return math.Sqrt(g.Sigma2) }
func (g Gaussian) IsDeltaOnly(quantity.Wavenumber) bool { return g.Sigma2 == 0 }
func (g Gaussian) NeedsInteractionFootprint() bool      { return false }

func (g Gaussian) sigma2Norm(k quantity.Wavenumber) float64 {
	return 1 / (1 - math.Exp(-float64(k)*float64(k)/2/g.Sigma2))
}

// alphaConst is the profile's dimensionless fractal scale, alpha =
// sigma2 expressed in mm^-2 units (following the ported source's choice
// of millimetre as the reference length for this dimensionless term).
func (g Gaussian) alphaConst() float64 { return g.Sigma2 * 1e-6 }

func (g Gaussian) Alpha(wi, wo quantity.Unit3, q TextureQuery) float64 {
	ktilde := float64(q.K) * 1e-3
	a := math.Pow((math.Abs(wi.Z)+math.Abs(wo.Z))*ktilde, 2) * g.alphaConst()
	return math.Exp(-a)
}

func (g Gaussian) AlphaSelf(wi quantity.Unit3, q TextureQuery) float64 {
	return g.Alpha(wi, wi, q)
}

func (g Gaussian) psdFromZ2(z2 float64, k quantity.Wavenumber) float64 {
	e := math.Exp(-z2 / 2 / g.Sigma2)
	if e <= epsNumeric {
		return 0
	}
	return g.sigma2Norm(k) * (1 / (2 * math.Pi) / g.Sigma2) * float64(k) * float64(k) * e
}

func (g Gaussian) PSD(wi, wo quantity.Unit3, q TextureQuery) float64 {
	zx := float64(q.K) * (wi.X + wo.X)
	zy := float64(q.K) * (wi.Y + wo.Y)
	return g.psdFromZ2(zx*zx+zy*zy, q.K)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sampleBoxMullerTruncated draws a 2D offset from mean via a truncated
// Box-Mueller transform with variance sigma2, returning the sampled
// point and its sampling density.
func sampleBoxMullerTruncated(sx, sy, meanX, meanY, sigma2 float64) (px, py, pdf float64) {
	meanLen2 := meanX*meanX + meanY*meanY
	l := math.Sqrt(math.Min(1, meanLen2))
	coso := math.Sqrt(math.Max(0, 1-meanLen2))
	var phiI float64
	if meanX != 0 || meanY != 0 {
		phiI = math.Atan2(meanY, meanX)
	}

	s := math.Exp(-0.5 * (1 + l) * (1 + l) / sigma2)
	x := (1-s)*math.Max(epsNumeric, sx) + s
	r := math.Sqrt(-2 * sigma2 * math.Log(x))

	var maxPhi float64
	if r < epsNumeric || l < epsNumeric {
		maxPhi = math.Pi
	} else {
		c := clamp((r*r+l*l-1)/(2*r*l), -1, 1)
		maxPhi = math.Max(1e-2, math.Acos(c))
	}

	phi := phiI + math.Pi + maxPhi*(2*sy-1)
	px = r*math.Cos(phi) + meanX
	py = r*math.Sin(phi) + meanY
	pdf = 0.5 * x / (maxPhi * sigma2) * coso
	return
}

func boxMullerTruncatedPDF(wox, woy, meanX, meanY, sigma2 float64) float64 {
	meanLen2 := meanX*meanX + meanY*meanY
	l := math.Sqrt(math.Min(1, meanLen2))
	coso := math.Sqrt(math.Max(0, 1-meanLen2))

	dx, dy := wox-meanX, woy-meanY
	r2 := dx*dx + dy*dy
	x := math.Exp(-0.5 * r2 / sigma2)
	r := math.Sqrt(r2)

	var maxPhi float64
	if r < epsNumeric || l < epsNumeric {
		maxPhi = math.Pi
	} else {
		c := clamp((r*r+l*l-1)/(2*r*l), -1, 1)
		maxPhi = math.Max(1e-2, math.Acos(c))
	}

	return 0.5 * x / (maxPhi * sigma2) * coso
}

func (g Gaussian) Sample(wi quantity.Unit3, q TextureQuery, sampler Sampler) ProfileSample {
	k := float64(q.K)
	s2 := g.Sigma2 / (k * k)
	meanX, meanY := -wi.X, -wi.Y

	sx, sy := sampler.Vec2()
	wox, woy, pdf := sampleBoxMullerTruncated(sx, sy, meanX, meanY, s2)

	zx := k * (wox - meanX)
	zy := k * (woy - meanY)
	psd := g.psdFromZ2(zx*zx+zy*zy, q.K)

	l2 := wox*wox + woy*woy
	woz := math.Sqrt(math.Max(0, 1-l2))
	if wi.Z < 0 {
		woz = -woz
	}

	weight := 0.0
	if pdf > 0 {
		weight = psd / pdf
	}
	return ProfileSample{
		Wo:     quantity.Unit3{X: wox, Y: woy, Z: woz},
		PDF:    pdf,
		PSD:    psd,
		Weight: weight,
	}
}

func (g Gaussian) PDF(wi, wo quantity.Unit3, q TextureQuery) float64 {
	k := float64(q.K)
	s2 := g.Sigma2 / (k * k)
	meanX, meanY := -wi.X, -wi.Y
	return boxMullerTruncatedPDF(wo.X, wo.Y, meanX, meanY, s2)
}
