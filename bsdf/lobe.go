// Package bsdf implements scatter-lobe sampling and evaluation: the
// surface statistical profile (Dirac, Gaussian), the PSD-driven
// microfacet BSDF built on top of it, and the lobe-kind bitset naming
// the scatter-lobe kinds. The integrator's choice between surface
// scatter and edge diffraction at a hit does not weigh the lobes by
// power: it takes edge diffraction with probability 1/2 when the hit
// has both a material and diffracting edges, and always when it has
// edges but no material.
package bsdf

// LobeKind is one bit of the closed set of scatter-lobe kinds a BSDF or
// an FSD sampler can propose: a capability-set bitmask in place of deep
// virtual dispatch, since the scatter-lobe taxonomy is closed and known
// up front.
type LobeKind uint8

const (
	LobeSpecular LobeKind = 1 << iota
	LobeScattered
	LobeDiffractionEdge
	LobeDiffractionAperture
)

// Mask is a bitset over LobeKind.
type Mask uint8

// Has reports whether the mask contains kind.
func (m Mask) Has(kind LobeKind) bool { return m&Mask(kind) != 0 }

// With returns the mask with kind added.
func (m Mask) With(kind LobeKind) Mask { return m | Mask(kind) }

// IsDeltaOnly reports whether the mask contains only the specular lobe,
// i.e. the BSDF/profile cannot be sampled by a finite-density scheme.
func (m Mask) IsDeltaOnly() bool { return m == Mask(LobeSpecular) }
