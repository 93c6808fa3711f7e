package ads

import (
	"testing"

	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

func TestTotalTriangleAreaSkipsDegenerate(t *testing.T) {
	tris := []shapes.Triangle{
		unitTriangle(0),
		{A: quantity.Vec3{}, B: quantity.Vec3{}, C: quantity.Vec3{}},
	}
	got := TotalTriangleArea(tris)
	want := tris[0].Area()
	if got != want {
		t.Fatalf("TotalTriangleArea = %v, want %v (degenerate triangle contributes 0)", got, want)
	}
}

func TestBoundingBoxUnion(t *testing.T) {
	b1 := shapes.EmptyAABB()
	b1.ExpandPoint(quantity.Vec3{X: 0, Y: 0, Z: 0})
	b1.ExpandPoint(quantity.Vec3{X: 1, Y: 1, Z: 1})

	b2 := shapes.EmptyAABB()
	b2.ExpandPoint(quantity.Vec3{X: -2, Y: -2, Z: -2})
	b2.ExpandPoint(quantity.Vec3{X: -1, Y: -1, Z: -1})

	union := BoundingBoxUnion([]shapes.AABB{b1, b2})
	if union.Min.X != -2 || union.Max.X != 1 {
		t.Fatalf("BoundingBoxUnion = %+v, want X spanning [-2,1]", union)
	}
}

func TestBuildPopulatesAggregateStats(t *testing.T) {
	bvh, err := Build(gridShapes(3), nil, BuildOptions{AdditionalADSStats: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if bvh.Stats.TotalArea <= 0 {
		t.Fatalf("Stats.TotalArea = %v, want > 0", bvh.Stats.TotalArea)
	}
	if bvh.Stats.WorldBox.Max.X <= bvh.Stats.WorldBox.Min.X {
		t.Fatalf("Stats.WorldBox = %+v, want a non-degenerate box", bvh.Stats.WorldBox)
	}
}
