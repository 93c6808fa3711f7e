package ads

import (
	"github.com/samber/lo"

	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

// TotalTriangleArea sums a triangle slice's area, skipping degenerate
// triangles, via an lo.Map-then-lo.Sum over a derived slice rather than
// a hand-rolled accumulator loop.
func TotalTriangleArea(tris []shapes.Triangle) quantity.Length2 {
	areas := lo.Map(tris, func(t shapes.Triangle, _ int) quantity.Length2 {
		if t.Degenerate() {
			return 0
		}
		return t.Area()
	})
	return lo.Sum(areas)
}

// BoundingBoxUnion folds a slice of per-shape AABBs into one box
// spanning all of them, used by Stats reporting to describe the
// scene's overall extent without re-walking every triangle.
func BoundingBoxUnion(boxes []shapes.AABB) shapes.AABB {
	return lo.Reduce(boxes, func(acc shapes.AABB, b shapes.AABB, _ int) shapes.AABB {
		acc.ExpandAABB(b)
		return acc
	}, shapes.EmptyAABB())
}
