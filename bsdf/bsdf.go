package bsdf

import (
	"math"

	"github.com/sixy6e/wavetrace/polarimetric"
	"github.com/sixy6e/wavetrace/quantity"
)

// TransportMode distinguishes light-transport direction for the
// refraction-Jacobian correction a bidirectional integrator needs.
type TransportMode uint8

const (
	TransportForward TransportMode = iota
	TransportBackward
)

// Query carries the per-evaluation state a BSDF needs beyond the two
// directions: the wavenumber, which lobes the caller is willing to
// accept, and the transport direction.
type Query struct {
	K         quantity.Wavenumber
	Lobe      Mask
	Transport TransportMode
}

// Sample is the result of importance-sampling a BSDF: the scattered
// direction, its sampling density, the relative index of refraction
// crossed (1 for reflection), which lobe was chosen, and the
// already-divided-by-pdf weighted Mueller operator.
type Sample struct {
	Wo           quantity.Unit3
	PDF          float64
	Discrete     bool
	Eta          complex128
	Lobe         LobeKind
	WeightedBSDF polarimetric.Mueller
}

// BSDF is a bidirectional scattering distribution function: it
// evaluates, samples, and reports the sampling density of a surface
// interaction as a polarimetric (Mueller-operator-valued) response.
type BSDF interface {
	F(wi, wo quantity.Unit3, q Query) polarimetric.Mueller
	Sample(wi quantity.Unit3, q Query, sampler Sampler) (Sample, bool)
	PDF(wi, wo quantity.Unit3, q Query) float64
	IsDeltaOnly(k quantity.Wavenumber) bool
	NeedsInteractionFootprint() bool
}

// SpectrumReal and SpectrumComplex are the minimal wavenumber-indexed
// spectra a BSDF needs (real attenuation scales, complex index of
// refraction). The spectrum package supplies concrete implementations;
// bsdf only depends on these narrow interfaces to avoid a cyclic
// import.
type SpectrumReal interface {
	Eval(k quantity.Wavenumber) float64
}

type SpectrumComplex interface {
	Eval(k quantity.Wavenumber) complex128
}

// SurfaceSPM is a surface scattering-profile-modulated BSDF: a Fresnel
// interface whose reflected (and, for transparent interfaces,
// transmitted) power splits between an ideal specular lobe and a
// diffuse lobe governed by a SurfaceProfile's power spectral density.
//
// Grounded on original_source/src/bsdf/surface_spm.cpp (f, sample, pdf).
type SurfaceSPM struct {
	ExtIOR            SpectrumReal
	IOR               SpectrumComplex
	Profile           SurfaceProfile
	ReflectionScale   SpectrumReal
	TransmissionScale SpectrumReal
}

func (b *SurfaceSPM) eta(k quantity.Wavenumber) complex128 {
	n2 := b.IOR.Eval(k)
	if b.ExtIOR == nil {
		return n2
	}
	n1 := b.ExtIOR.Eval(k)
	return n2 / complex(n1, 0)
}

func (b *SurfaceSPM) reflectivityScale(k quantity.Wavenumber) float64 {
	if b.ReflectionScale == nil {
		return 1
	}
	return b.ReflectionScale.Eval(k)
}

func (b *SurfaceSPM) transmissivityScale(k quantity.Wavenumber) float64 {
	if b.TransmissionScale == nil {
		return 1
	}
	return b.TransmissionScale.Eval(k)
}

func (b *SurfaceSPM) IsDeltaOnly(k quantity.Wavenumber) bool { return b.Profile.IsDeltaOnly(k) }
func (b *SurfaceSPM) NeedsInteractionFootprint() bool        { return b.Profile.NeedsInteractionFootprint() }

func halfVector(wi, wo quantity.Unit3) (quantity.Unit3, bool) {
	hx, hy, hz := wi.X+wo.X, wi.Y+wo.Y, wi.Z+wo.Z
	if wi.Z < 0 {
		hx, hy, hz = -hx, -hy, -hz
	}
	if hx == 0 && hy == 0 && hz == 0 {
		return quantity.Unit3{}, false
	}
	return quantity.NewUnit3(hx, hy, hz), true
}

func (b *SurfaceSPM) F(wi, wo quantity.Unit3, q Query) polarimetric.Mueller {
	tq := TextureQuery{K: q.K}
	isScatter := q.Lobe.Has(LobeScattered) && !b.Profile.IsDeltaOnly(q.K)
	isReflection := wi.Z*wo.Z >= 0

	eta12 := b.eta(q.K)
	hasTransmission := iorHasTransmission(eta12)

	if wi.Z == 0 || wo.Z == 0 || !isScatter || (!isReflection && !hasTransmission) {
		return polarimetric.Mueller{}
	}

	absWo := wo
	if !isReflection {
		absWo = flipWo(wo, real(eta12))
	}
	alpha := b.Profile.Alpha(wi, absWo, tq)

	j := 1.0
	if !isReflection && q.Transport == TransportBackward {
		relEta := real(eta12)
		if wi.Z < 0 {
			relEta = 1 / relEta
		}
		j = relEta * relEta
	}

	scale := b.reflectivityScale(q.K)
	if !isReflection {
		scale = b.transmissivityScale(q.K)
	}

	m, ok := halfVector(wi, absWo)
	if !ok {
		return polarimetric.Mueller{}
	}
	cosThetaI := math.Abs(wi.Dot(m))
	fr := Fresnel(eta12, cosThetaI)

	var F polarimetric.Mueller
	if isReflection {
		F = fresnelMuellerReflection(fr)
	} else {
		F = fresnelMuellerTransmission(fr)
	}

	psd := b.Profile.PSD(wi, absWo, tq)
	factor := (1 - alpha) * j * math.Abs(wo.Z) * psd * scale
	return F.Scale(factor)
}

func (b *SurfaceSPM) Sample(wi quantity.Unit3, q Query, sampler Sampler) (Sample, bool) {
	tq := TextureQuery{K: q.K}
	alpha := b.Profile.AlphaSelf(wi, tq)
	hasSpecular := q.Lobe.Has(LobeSpecular) && alpha > 0
	hasScatter := q.Lobe.Has(LobeScattered) && alpha < 1

	eta12 := b.eta(q.K)
	hasTransmission := iorHasTransmission(eta12)

	if wi.Z == 0 || (!hasSpecular && !hasScatter) {
		return Sample{}, false
	}

	pdf := 1.0
	isSpecular := hasSpecular
	if hasSpecular && hasScatter {
		pdfSpecular := alpha
		isSpecular = pdfSpecular == 1 || sampler.Float64() < pdfSpecular
		if isSpecular {
			pdf = pdfSpecular
		} else {
			pdf = 1 - pdfSpecular
		}
	}

	cosThetaI := math.Abs(wi.Z)
	fr := Fresnel(eta12, cosThetaI)
	pdfTransmission := (fr.Ts + fr.Tp) / 2

	j := 1.0
	isReflection := true
	if hasTransmission {
		isReflection = sampler.Float64() >= pdfTransmission
		if isReflection {
			pdf *= 1 - pdfTransmission
		} else {
			pdf *= pdfTransmission
		}
	}
	if !isReflection && q.Transport == TransportBackward {
		j = real(eta12) * real(eta12)
	}

	scale := b.reflectivityScale(q.K)
	if !isReflection {
		scale = b.transmissivityScale(q.K)
	}
	if scale == 0 || (!isReflection && !hasTransmission) {
		return Sample{}, false
	}

	if isSpecular {
		var wo quantity.Unit3
		eta := complex(1.0, 0)
		var F polarimetric.Mueller
		if isReflection {
			wo = reflect(wi)
			F = fresnelMuellerReflection(fr)
		} else {
			wo = refractDirection(wi, real(eta12))
			eta = eta12
			F = fresnelMuellerTransmission(fr)
		}
		weighted := F.Scale(alpha * j * scale / pdf)
		return Sample{Wo: wo, PDF: pdf, Discrete: true, Eta: eta, Lobe: LobeSpecular, WeightedBSDF: weighted}, true
	}

	ps := b.Profile.Sample(wi, tq, sampler)
	wo := ps.Wo
	if !isReflection {
		wo = flipWo(ps.Wo, real(eta12))
	}

	var F polarimetric.Mueller
	if m, ok := halfVector(wi, ps.Wo); ok {
		cosI := math.Abs(wi.Dot(m))
		frm := Fresnel(eta12, cosI)
		if isReflection {
			F = fresnelMuellerReflection(frm)
		} else {
			F = fresnelMuellerTransmission(frm)
		}
	}

	pdf *= ps.PDF
	eta := complex(1.0, 0)
	if !isReflection {
		eta = eta12
	}
	if pdf <= 0 {
		return Sample{}, false
	}
	weighted := F.Scale((1 - alpha) * j * math.Abs(wo.Z) * ps.PSD * scale / pdf)
	return Sample{Wo: wo, PDF: pdf, Discrete: false, Eta: eta, Lobe: LobeScattered, WeightedBSDF: weighted}, true
}

func (b *SurfaceSPM) PDF(wi, wo quantity.Unit3, q Query) float64 {
	tq := TextureQuery{K: q.K}
	isScatter := q.Lobe.Has(LobeScattered)
	isReflection := wi.Z*wo.Z >= 0

	eta12 := b.eta(q.K)
	hasTransmission := iorHasTransmission(eta12)

	if wi.Z == 0 || wo.Z == 0 || !isScatter || (!isReflection && !hasTransmission) {
		return 0
	}

	absWo := wo
	if !isReflection {
		absWo = flipWo(wo, real(eta12))
	}
	alpha := b.Profile.AlphaSelf(wi, tq)

	pdfSpecular := 0.0
	if q.Lobe.Has(LobeSpecular) {
		pdfSpecular = alpha
	}

	cosThetaI := math.Abs(wi.Z)
	fr := Fresnel(eta12, cosThetaI)
	pdfTransmission := (fr.Ts + fr.Tp) / 2
	transFactor := 1 - pdfTransmission
	if !isReflection {
		transFactor = pdfTransmission
	}

	return (1 - pdfSpecular) * b.Profile.PDF(wi, absWo, tq) * transFactor
}
