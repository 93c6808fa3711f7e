package integrator

import (
	"math/cmplx"

	edgedb "github.com/sixy6e/wavetrace/edge"
	"github.com/sixy6e/wavetrace/fsd"
	"github.com/sixy6e/wavetrace/polarimetric"
	"github.com/sixy6e/wavetrace/shapes"
)

// triangleWedges returns the UTD wedges available at a hit triangle's
// edge slots, skipping slots with no recorded adjacency (shapes.NoEdge).
// Each edge is wrapped as a wedge with its two face normals and opening
// angle.
func triangleWedges(edges *edgedb.Database, tri shapes.Triangle) []fsd.Wedge {
	if edges == nil {
		return nil
	}
	var out []fsd.Wedge
	for _, idx := range [3]uint32{tri.EdgeAB, tri.EdgeBC, tri.EdgeCA} {
		if idx == shapes.NoEdge || int(idx) >= len(edges.Edges) {
			continue
		}
		e := edges.Edges[idx]
		nbf := e.N2
		if !e.HasTri2 {
			nbf = e.N1
		}
		out = append(out, fsd.Wedge{
			V:         e.A.Add(e.B).Scale(0.5),
			L:         e.B.Sub(e.A).Len(),
			Nff:       e.N1,
			Tff:       e.O1,
			Nbf:       nbf,
			Alpha:     e.Alpha,
			Eta:       e.IOR,
			EdgeIndex: idx,
		})
	}
	return out
}

// utdAttenuation turns a wedge's soft/hard diffraction coefficients into
// a scalar Mueller operator (an isotropic intensity attenuator) and the
// probability density (per unit solid angle, folded into the a±
// geometric spreading factor already baked into Ds/Dh) of having
// sampled this diffracted direction.
//
// Full amplitude-coherent polarimetric UTD transport (rotating the
// incident Stokes vector into the wedge's soft/hard frame, applying
// distinct Ds/Dh gains per axis, rotating back out) needs a Mueller
// consumer that was never retrieved past fsd/common.hpp's UTD_ret_t
// definition; this attenuates total intensity by the coefficients'
// average power and leaves polarization state unrotated, a documented
// simplification — see DESIGN.md.
func utdAttenuation(r fsd.Result) (polarimetric.Mueller, float64) {
	is := cmplx.Abs(r.Ds)
	ih := cmplx.Abs(r.Dh)
	avg := (is*is + ih*ih) / 2
	if avg <= 0 {
		return polarimetric.Mueller{}, 0
	}
	return polarimetric.Attenuator(avg), avg
}
