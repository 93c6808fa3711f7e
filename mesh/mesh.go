// Package mesh implements the mesh store, a flattened triangle array in
// which every triangle keeps its own copy of its vertex positions
// (vertices are not deduplicated), and the SIMD-ready vectorized
// triangle arrays the ADS builds from it.
package mesh

import (
	"github.com/sixy6e/wavetrace/bsdf"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
	"github.com/sixy6e/wavetrace/simd"
)

// Shape is one mesh's worth of triangles, all sharing a BSDF and an
// optional area emitter (bound later by scene.Build —
// the shape→area_emitter→shape cycle in the source is reproduced as an
// explicit post-construction bind step instead).
type Shape struct {
	ID        uint32
	Triangles []shapes.Triangle
	BSDF      bsdf.BSDF

	// HasAreaEmitter is set by scene.Build once the
	// shape's area emitter has been constructed and bound.
	HasAreaEmitter bool
	AreaEmitterIdx int
}

// Store owns the flattened, shape-tagged global triangle array that the
// ADS builder consumes and reorders.
type Store struct {
	Shapes    []*Shape
	Triangles []shapes.Triangle
}

// NewStore flattens every shape's triangles into one global array with
// stable (shape_id, shape_local_id) back-references
// step 1.
func NewStore(shapesIn []*Shape) *Store {
	s := &Store{Shapes: shapesIn}
	for i, sh := range shapesIn {
		sh.ID = uint32(i)
		for j, t := range sh.Triangles {
			t.ShapeID = sh.ID
			t.ShapeLocalID = uint32(j)
			t.EdgeAB, t.EdgeBC, t.EdgeCA = shapes.NoEdge, shapes.NoEdge, shapes.NoEdge
			s.Triangles = append(s.Triangles, t)
		}
	}
	return s
}

// TangentFrame returns the triangle's shading tangent frame: Z is the
// face normal, X is the normalized first edge projected orthogonal to
// Z (a stable, cheap tangent basis used when no UV-derived tangent is
// available).
func TangentFrame(t shapes.Triangle) quantity.Frame {
	e1 := t.B.Sub(t.A)
	// Gram-Schmidt e1 against the normal.
	d := e1.Dot(t.N.Vec3())
	tang := e1.Sub(t.N.Vec3().Scale(d))
	x := quantity.Unit3FromVec3(tang)
	return quantity.Frame{X: x, Y: t.N.Cross(x), Z: t.N}
}

// Wide holds the SIMD-ready, Lanes-padded triangle arrays (nine length
// arrays for the vertex coordinates, three dimensionless arrays for the
// face normal), built once at ADS-construction time
// step 5.
type Wide struct {
	N int // unpadded triangle count

	Ax, Ay, Az []float32
	Bx, By, Bz []float32
	Cx, Cy, Cz []float32
	Nx, Ny, Nz []float32
}

// BuildWide copies the reordered global triangle array into the padded
// SIMD layout.
func BuildWide(tris []shapes.Triangle) *Wide {
	n := len(tris)
	padded := simd.PadCount(n)
	w := &Wide{
		N:  n,
		Ax: make([]float32, padded), Ay: make([]float32, padded), Az: make([]float32, padded),
		Bx: make([]float32, padded), By: make([]float32, padded), Bz: make([]float32, padded),
		Cx: make([]float32, padded), Cy: make([]float32, padded), Cz: make([]float32, padded),
		Nx: make([]float32, padded), Ny: make([]float32, padded), Nz: make([]float32, padded),
	}
	for i, t := range tris {
		w.Ax[i], w.Ay[i], w.Az[i] = float32(t.A.X), float32(t.A.Y), float32(t.A.Z)
		w.Bx[i], w.By[i], w.Bz[i] = float32(t.B.X), float32(t.B.Y), float32(t.B.Z)
		w.Cx[i], w.Cy[i], w.Cz[i] = float32(t.C.X), float32(t.C.Y), float32(t.C.Z)
		w.Nx[i], w.Ny[i], w.Nz[i] = float32(t.N.X), float32(t.N.Y), float32(t.N.Z)
	}
	// Padding lanes are left as zero triangles; intersectors mask
	// padding lanes out via the triangle count.
	return w
}

// LoadTri8 loads eight triangles (indices [base, base+8)) from the wide
// arrays into simd.Vec3 lanes for the wide ray/cone-triangle
// intersectors.
func (w *Wide) LoadTri8(base int) (a, b, c, n simd.Vec3) {
	for i := 0; i < simd.Lanes; i++ {
		a.X[i], a.Y[i], a.Z[i] = w.Ax[base+i], w.Ay[base+i], w.Az[base+i]
		b.X[i], b.Y[i], b.Z[i] = w.Bx[base+i], w.By[base+i], w.Bz[base+i]
		c.X[i], c.Y[i], c.Z[i] = w.Cx[base+i], w.Cy[base+i], w.Cz[base+i]
		n.X[i], n.Y[i], n.Z[i] = w.Nx[base+i], w.Ny[base+i], w.Nz[base+i]
	}
	return
}
