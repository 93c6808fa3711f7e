package integrator

import (
	"testing"

	edgedb "github.com/sixy6e/wavetrace/edge"
	"github.com/sixy6e/wavetrace/fsd"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

func TestTriangleWedgesSkipsNoEdgeSlots(t *testing.T) {
	db := &edgedb.Database{Edges: []edgedb.Edge{
		{A: quantity.Vec3{X: 0}, B: quantity.Vec3{X: 1}, Alpha: 1},
	}}
	tri := shapes.Triangle{EdgeAB: 0, EdgeBC: shapes.NoEdge, EdgeCA: shapes.NoEdge}

	got := triangleWedges(db, tri)
	if len(got) != 1 {
		t.Fatalf("expected 1 wedge, got %d", len(got))
	}
}

func TestTriangleWedgesNilDatabase(t *testing.T) {
	tri := shapes.Triangle{EdgeAB: 0, EdgeBC: shapes.NoEdge, EdgeCA: shapes.NoEdge}
	if got := triangleWedges(nil, tri); got != nil {
		t.Fatalf("expected nil wedges for a nil database, got %v", got)
	}
}

func TestTriangleWedgesOutOfRangeIndexSkipped(t *testing.T) {
	db := &edgedb.Database{Edges: []edgedb.Edge{}}
	tri := shapes.Triangle{EdgeAB: 5, EdgeBC: shapes.NoEdge, EdgeCA: shapes.NoEdge}
	if got := triangleWedges(db, tri); got != nil {
		t.Fatalf("expected no wedges for an out-of-range edge index, got %v", got)
	}
}

func TestUtdAttenuationZeroCoefficientsYieldZeroDensity(t *testing.T) {
	_, pd := utdAttenuation(fsd.Result{Ds: 0, Dh: 0})
	if pd != 0 {
		t.Fatalf("pd = %v, want 0 for zero diffraction coefficients", pd)
	}
}

func TestUtdAttenuationPositiveCoefficientsAttenuate(t *testing.T) {
	op, pd := utdAttenuation(fsd.Result{Ds: complex(1, 0), Dh: complex(1, 0)})
	if pd <= 0 {
		t.Fatalf("pd = %v, want > 0", pd)
	}
	if op.M[0][0] != pd {
		t.Fatalf("attenuator diagonal = %v, want %v", op.M[0][0], pd)
	}
}
