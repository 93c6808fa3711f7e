package scene

import (
	"fmt"

	"github.com/sixy6e/wavetrace/bsdf"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/scene/loader"
	"github.com/sixy6e/wavetrace/spectrum"
)

// constComplex is a wavenumber-independent complex spectrum — the
// materials database's stand-in for a full complex-spectrum texture,
// the same minimal shape bsdf's own tests use (bsdf/bsdf_test.go's
// constSpectrumComplex) since no complex-valued spectrum type is
// exposed by the spectrum package.
type constComplex complex128

func (c constComplex) Eval(quantity.Wavenumber) complex128 { return complex128(c) }

// materialParams is the attribute set a <material> element decodes
// into, grounded on original_source/src/bsdf/surface_spm.cpp's loader
// (ior, ext_ior, ior_k, alpha, reflectance, transmittance attributes).
type materialParams struct {
	Name              string  `scene:"name=name"`
	IOR               float64 `scene:"name=ior,default=1.5"`
	IORImag           float64 `scene:"name=ior_k,default=0"`
	ExtIOR            float64 `scene:"name=ext_ior,default=1"`
	Sigma2            float64 `scene:"name=alpha,default=0"`
	ReflectionScale   float64 `scene:"name=reflectance,default=1"`
	TransmissionScale float64 `scene:"name=transmittance,default=1"`
}

// Materials is the scene-wide materials database: a name-keyed lookup
// of BSDFs, decoded once from every top-level <material> element and
// referenced by <shape material="...">.
//
// Grounded on original_source/src/scene/loader/bootstrap.hpp's
// named-reference resolution pattern (materials, spectra, and emitters
// are declared once and referenced by name from shapes).
type Materials struct {
	byName map[string]bsdf.BSDF
}

// NewMaterials builds a Materials database from every <material>
// child of the scene root.
func NewMaterials(root *loader.Node) (*Materials, error) {
	m := &Materials{byName: map[string]bsdf.BSDF{}}
	for _, n := range root.FindAll("material") {
		var p materialParams
		if err := loader.Decode(n, &p); err != nil {
			return nil, err
		}
		if p.Name == "" {
			return nil, fmt.Errorf("%w: <material> missing name attribute", ErrMalformedElement)
		}
		var profile bsdf.SurfaceProfile
		if p.Sigma2 <= 0 {
			profile = bsdf.Dirac{}
		} else {
			profile = bsdf.Gaussian{Sigma2: p.Sigma2}
		}
		m.byName[p.Name] = &bsdf.SurfaceSPM{
			ExtIOR:            spectrum.Constant{Value: p.ExtIOR},
			IOR:               constComplex(complex(p.IOR, p.IORImag)),
			Profile:           profile,
			ReflectionScale:   spectrum.Constant{Value: p.ReflectionScale},
			TransmissionScale: spectrum.Constant{Value: p.TransmissionScale},
		}
	}
	return m, nil
}

// Lookup returns the named material's BSDF.
func (m *Materials) Lookup(name string) (bsdf.BSDF, bool) {
	b, ok := m.byName[name]
	return b, ok
}
