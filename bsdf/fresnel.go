package bsdf

import (
	"math"
	"math/cmplx"

	"github.com/sixy6e/wavetrace/polarimetric"
	"github.com/sixy6e/wavetrace/quantity"
)

// FresnelResult is the amplitude and energy Fresnel response of an
// interface with relative complex refractive index eta (n2/n1) at
// incidence angle cosThetaI, in the s/p polarization basis.
//
// No Fresnel or Mueller-operator header was present in the retrieved
// original source, only its consumer (surface_spm.cpp); this is built
// directly against the standard Fresnel equations.
type FresnelResult struct {
	Rs, Rp    complex128
	Ts, Tp    float64
	CosThetaT complex128
}

func snellCosThetaT(eta complex128, cosThetaI float64) complex128 {
	sin2ThetaI := complex(1-cosThetaI*cosThetaI, 0)
	sin2ThetaT := sin2ThetaI / (eta * eta)
	return cmplx.Sqrt(1 - sin2ThetaT)
}

// Fresnel evaluates the reflection/transmission response of an
// interface of relative index eta at incidence cosThetaI (>= 0).
func Fresnel(eta complex128, cosThetaI float64) FresnelResult {
	cosThetaT := snellCosThetaT(eta, cosThetaI)
	ci := complex(cosThetaI, 0)

	rs := (ci - eta*cosThetaT) / (ci + eta*cosThetaT)
	rp := (eta*ci - cosThetaT) / (eta*ci + cosThetaT)

	as, ap := cmplx.Abs(rs), cmplx.Abs(rp)
	return FresnelResult{
		Rs: rs, Rp: rp,
		Ts:        1 - as*as,
		Tp:        1 - ap*ap,
		CosThetaT: cosThetaT,
	}
}

// iorHasTransmission reports whether the relative index eta is
// transparent enough to admit a transmitted lobe: a near-total-
// extinction (metal-like) interface only reflects.
func iorHasTransmission(eta complex128) bool {
	im := imag(eta)
	mag := cmplx.Abs(eta)
	return im*im/(mag*mag) <= 1e-2
}

// reflect mirrors wi about the shading normal (local frame z axis).
func reflect(wi quantity.Unit3) quantity.Unit3 {
	return quantity.Unit3{X: -wi.X, Y: -wi.Y, Z: wi.Z}
}

// refractDirection refracts wi through an interface of relative real
// index eta, falling back to a mirror reflection on total internal
// reflection. The direction calculation uses only the real part of
// eta: an absorbing medium's complex index still has a well-defined
// refraction angle in the usual thin-film approximation.
func refractDirection(wi quantity.Unit3, etaReal float64) quantity.Unit3 {
	cosThetaI := wi.Z
	rel := etaReal
	if cosThetaI < 0 {
		rel = 1 / etaReal
	}
	sin2ThetaI := math.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := sin2ThetaI / (rel * rel)
	if sin2ThetaT >= 1 {
		return reflect(wi)
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	if cosThetaI > 0 {
		cosThetaT = -cosThetaT
	}
	scale := -1 / rel
	return quantity.Unit3{X: scale * wi.X, Y: scale * wi.Y, Z: cosThetaT}
}

// flipWo maps a transmitted direction across the refraction interface
// scale, clamping to grazing incidence when the scaled direction would
// leave the unit disc (total internal reflection's geometric limit).
func flipWo(wo quantity.Unit3, etaReal float64) quantity.Unit3 {
	scale := etaReal
	if wo.Z <= 0 {
		scale = 1 / etaReal
	}
	x, y := wo.X*scale, wo.Y*scale
	l2 := x*x + y*y
	if l2 > 1 {
		return quantity.Unit3{X: 1, Y: 0, Z: 0}
	}
	z := math.Sqrt(math.Max(0, 1-l2))
	if wo.Z > 0 {
		z = -z
	}
	return quantity.Unit3{X: x, Y: y, Z: z}
}

// fresnelMuellerReflection converts an s/p amplitude Fresnel response
// into the Mueller operator for reflection, in a frame whose Q axis is
// aligned with the s polarization.
func fresnelMuellerReflection(f FresnelResult) polarimetric.Mueller {
	as2, ap2 := cmplx.Abs(f.Rs)*cmplx.Abs(f.Rs), cmplx.Abs(f.Rp)*cmplx.Abs(f.Rp)
	cross := f.Rs * cmplx.Conj(f.Rp)
	var m polarimetric.Mueller
	m.M[0][0] = 0.5 * (as2 + ap2)
	m.M[0][1] = 0.5 * (as2 - ap2)
	m.M[1][0] = m.M[0][1]
	m.M[1][1] = m.M[0][0]
	m.M[2][2] = real(cross)
	m.M[2][3] = imag(cross)
	m.M[3][2] = -imag(cross)
	m.M[3][3] = real(cross)
	return m
}

// fresnelMuellerTransmission is an energy-only Mueller operator for
// transmission: the source never shipped a full polarimetric
// transmission operator (only surface_spm.cpp, its consumer, was
// retrieved), so this carries the intensity transmittance Ts/Tp on the
// diagonal and their geometric mean as a depolarizing cross term,
// rather than a phase-accurate amplitude construction.
func fresnelMuellerTransmission(f FresnelResult) polarimetric.Mueller {
	cross := math.Sqrt(math.Max(0, f.Ts*f.Tp))
	return polarimetric.Mueller{M: [4][4]float64{
		{0.5 * (f.Ts + f.Tp), 0.5 * (f.Ts - f.Tp), 0, 0},
		{0.5 * (f.Ts - f.Tp), 0.5 * (f.Ts + f.Tp), 0, 0},
		{0, 0, cross, 0},
		{0, 0, 0, cross},
	}}
}
