package ads

import (
	"math"

	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

// maxStackDepth bounds the explicit traversal stack; the 8-wide fan-out
// means a tree holding the entire triangle budget of ErrTooManyTriangles
// never exceeds this depth by a wide margin.
const maxStackDepth = 64

// QueryStats accumulates six intersection-test counters: ray-interior/
// ray-leaf node visits, cone-interior/cone-leaf/cone-subtree-harvest
// node visits, and ball node visits. A nil
// *QueryStats disables counting entirely, so hot-path callers that don't
// need the diagnostic can skip the bookkeeping.
type QueryStats struct {
	RayInteriorTests    int
	RayLeafTests        int
	ConeInteriorTests   int
	ConeLeafTests       int
	ConeSubtreeHarvests int
	BallTests           int
}

// Hit is a single resolved ray-triangle intersection.
type Hit struct {
	Dist      quantity.Length
	TriIdx    uint32
	U, V      float64
	FrontFace bool
}

func laneAABB(n *Node, lane int) shapes.AABB {
	return shapes.AABB{
		Min: quantity.Vec3{X: quantity.Length(n.Min.X[lane]), Y: quantity.Length(n.Min.Y[lane]), Z: quantity.Length(n.Min.Z[lane])},
		Max: quantity.Vec3{X: quantity.Length(n.Max.X[lane]), Y: quantity.Length(n.Max.Y[lane]), Z: quantity.Length(n.Max.Z[lane])},
	}
}

// Intersect finds the closest ray-triangle hit within rng, descending the
// BVH with an explicit stack. ignoreShape, when hasIgnore
// is set, excludes one shape's triangles from consideration — the
// self-intersection guard a beam re-launched from a surface needs.
func (b *BVH) Intersect(r shapes.Ray, rng quantity.Range, ignoreShape uint32, hasIgnore bool, stats *QueryStats) (Hit, bool) {
	var stack [maxStackDepth]int32
	stack[0] = encodeChildPtr(RootIndex)
	sp := 1

	var best Hit
	found := false
	curRange := rng

	for sp > 0 {
		sp--
		ptr := stack[sp]
		node := &b.Nodes[ChildNodePtr(ptr)]
		if stats != nil {
			stats.RayInteriorTests++
		}

		for lane := 0; lane < AABBsPerNode; lane++ {
			child := node.Child[lane]
			if IsPtrEmpty(child) {
				continue
			}
			aabb := laneAABB(node, lane)
			if _, _, ok := aabb.IntersectRay(r, curRange); !ok {
				continue
			}

			if IsPtrLeaf(child) {
				if stats != nil {
					stats.RayLeafTests++
				}
				leaf := b.Leaves[LeafNodePtr(child)]
				for i := leaf.TrisPtr; i < leaf.TrisPtr+leaf.Count; i++ {
					tri := b.Tris[i]
					if hasIgnore && tri.ShapeID == ignoreShape {
						continue
					}
					hit := shapes.IntersectRayTriangle(r, tri, curRange)
					if hit.Hit {
						found = true
						best = Hit{Dist: hit.Dist, TriIdx: i, U: hit.U, V: hit.V, FrontFace: hit.FrontFace}
						curRange.Max = hit.Dist
					}
				}
				continue
			}

			if sp < maxStackDepth {
				stack[sp] = child
				sp++
			}
		}
	}
	return best, found
}

// Shadow reports whether any triangle occludes the ray within rng,
// without resolving the closest hit — the visibility test BDPT connects
// with.
func (b *BVH) Shadow(r shapes.Ray, rng quantity.Range, ignoreShape uint32, hasIgnore bool, stats *QueryStats) bool {
	var stack [maxStackDepth]int32
	stack[0] = encodeChildPtr(RootIndex)
	sp := 1

	for sp > 0 {
		sp--
		ptr := stack[sp]
		node := &b.Nodes[ChildNodePtr(ptr)]
		if stats != nil {
			stats.RayInteriorTests++
		}

		for lane := 0; lane < AABBsPerNode; lane++ {
			child := node.Child[lane]
			if IsPtrEmpty(child) {
				continue
			}
			aabb := laneAABB(node, lane)
			if _, _, ok := aabb.IntersectRay(r, rng); !ok {
				continue
			}

			if IsPtrLeaf(child) {
				if stats != nil {
					stats.RayLeafTests++
				}
				leaf := b.Leaves[LeafNodePtr(child)]
				for i := leaf.TrisPtr; i < leaf.TrisPtr+leaf.Count; i++ {
					tri := b.Tris[i]
					if hasIgnore && tri.ShapeID == ignoreShape {
						continue
					}
					if shapes.IntersectRayTriangle(r, tri, rng).Hit {
						return true
					}
				}
				continue
			}

			if sp < maxStackDepth {
				stack[sp] = child
				sp++
			}
		}
	}
	return false
}

func aabbCorners(b shapes.AABB) [8]quantity.Vec3 {
	return [8]quantity.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}, {X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z}, {X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z}, {X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z}, {X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

// coneOverlapsAABB is a sampled, conservative cone-AABB overlap test in
// the style of shapes.IntersectConeTriangle: rather than an exact
// elliptic-cone/box clip, it tests the box's corners against the cone's
// containment predicate, then falls back to checking whether the
// cone's cross-section at the box's centroid depth falls near the box.
func coneOverlapsAABB(cone shapes.EllipticCone, aabb shapes.AABB, rng quantity.Range) bool {
	for _, p := range aabbCorners(aabb) {
		if cone.Contains(p, rng) {
			return true
		}
	}
	local := cone.Frame().ToLocal(aabb.Centroid().Sub(cone.R.O))
	if !rng.Contains(local.Z) {
		return false
	}
	axes := cone.Axes(local.Z)
	half := aabb.Max.Sub(aabb.Min).Scale(0.5)
	reach := half.Len()
	return math.Abs(float64(local.X)) <= float64(axes.X)+float64(reach) &&
		math.Abs(float64(local.Y)) <= float64(axes.Y)+float64(reach)
}

// aabbFullyInsideCone reports whether every corner of aabb lies within
// the cone, letting the traversal harvest a whole subtree's triangle
// range without testing its triangles individually.
func aabbFullyInsideCone(cone shapes.EllipticCone, aabb shapes.AABB, rng quantity.Range) bool {
	for _, p := range aabbCorners(aabb) {
		if !cone.Contains(p, rng) {
			return false
		}
	}
	return true
}

func harvestRange(start, count uint32, visit func(uint32) bool) bool {
	for i := start; i < start+count; i++ {
		if !visit(i) {
			return false
		}
	}
	return true
}

// harvestRangeCone harvests a whole subtree range already known to lie
// entirely inside the cone (no per-triangle containment test needed);
// the distance handed to visit is the cone-local z of the triangle's
// centroid, an approximation that is exact enough for the z-search-band
// bookkeeping the traversal driver does with it.
func (b *BVH) harvestRangeCone(start, count uint32, cone shapes.EllipticCone, visit func(triIdx uint32, dist quantity.Length) bool) bool {
	for i := start; i < start+count; i++ {
		tri := b.Tris[i]
		local := cone.Frame().ToLocal(tri.Centroid().Sub(cone.R.O))
		if !visit(i, local.Z) {
			return false
		}
	}
	return true
}

func (b *BVH) harvestLeafCone(leaf Leaf, cone shapes.EllipticCone, rng quantity.Range, visit func(triIdx uint32, dist quantity.Length) bool) bool {
	for i := leaf.TrisPtr; i < leaf.TrisPtr+leaf.Count; i++ {
		tri := b.Tris[i]
		if d, ok := shapes.IntersectConeTriangle(cone, tri, rng); ok {
			if !visit(i, d) {
				return false
			}
		}
	}
	return true
}

// IntersectCone visits every triangle whose closed support overlaps the
// cone within rng, the diffusive traversal's analogue of Intersect: interior
// nodes entirely inside the cone harvest their whole contiguous triangle
// range (using the node's stored subtree range) without descending
// further, while partially-overlapping nodes recurse and leaves are
// tested triangle by triangle. visit receives each candidate triangle's
// approximate propagation distance along the cone's axis, and returning
// false stops the walk early — the same early-exit idiom Shadow/
// ShadowCone use for occlusion, and the one the traversal driver uses to
// find the closest diffusive hit without harvesting the whole cone.
func (b *BVH) IntersectCone(cone shapes.EllipticCone, rng quantity.Range, visit func(triIdx uint32, dist quantity.Length) bool, stats *QueryStats) {
	var stack [maxStackDepth]int32
	stack[0] = encodeChildPtr(RootIndex)
	sp := 1

	// Unless AccumulateTriangles opts out, the query's closest distance
	// tightens rng.Max to a window around it as candidates are visited
	// (rng is captured by the narrowed visit closure below, so every
	// subsequent overlap/harvest call in this walk sees the latest
	// window), per BuildOptions.ZSearchRangeScale.
	v := visit
	if !b.Options.AccumulateTriangles {
		scale := b.Options.ZSearchRangeScale
		if scale <= 0 {
			scale = DefaultZSearchRangeScale
		}
		v = func(triIdx uint32, dist quantity.Length) bool {
			ok := visit(triIdx, dist)
			window := dist + quantity.Length(scale)*cone.Axes(dist).X
			if window < rng.Max {
				rng.Max = window
			}
			return ok
		}
	}

	for sp > 0 {
		sp--
		ptr := stack[sp]
		node := &b.Nodes[ChildNodePtr(ptr)]
		if stats != nil {
			stats.ConeInteriorTests++
		}

		for lane := 0; lane < AABBsPerNode; lane++ {
			child := node.Child[lane]
			if IsPtrEmpty(child) {
				continue
			}
			aabb := laneAABB(node, lane)
			if !coneOverlapsAABB(cone, aabb, rng) {
				continue
			}

			if IsPtrLeaf(child) {
				if stats != nil {
					stats.ConeLeafTests++
				}
				leaf := b.Leaves[LeafNodePtr(child)]
				if !b.harvestLeafCone(leaf, cone, rng, v) {
					return
				}
				continue
			}

			if aabbFullyInsideCone(cone, aabb, rng) {
				if stats != nil {
					stats.ConeSubtreeHarvests++
				}
				childNode := &b.Nodes[ChildNodePtr(child)]
				if !b.harvestRangeCone(childNode.TrisStart, childNode.TrisCount, cone, v) {
					return
				}
				continue
			}

			if sp < maxStackDepth {
				stack[sp] = child
				sp++
			}
		}
	}
}

// ShadowCone reports whether any triangle occludes the cone within rng —
// the beam-traversal analogue of Shadow.
func (b *BVH) ShadowCone(cone shapes.EllipticCone, rng quantity.Range, stats *QueryStats) bool {
	hit := false
	b.IntersectCone(cone, rng, func(uint32, quantity.Length) bool {
		hit = true
		return false
	}, stats)
	return hit
}

func sqDistAxis(c, lo, hi quantity.Length) quantity.Length2 {
	if c < lo {
		d := lo - c
		return quantity.Length2(d * d)
	}
	if c > hi {
		d := c - hi
		return quantity.Length2(d * d)
	}
	return 0
}

func aabbOverlapsBall(aabb shapes.AABB, ball shapes.Ellipsoid) bool {
	d2 := sqDistAxis(ball.Centre.X, aabb.Min.X, aabb.Max.X) +
		sqDistAxis(ball.Centre.Y, aabb.Min.Y, aabb.Max.Y) +
		sqDistAxis(ball.Centre.Z, aabb.Min.Z, aabb.Max.Z)
	return d2 <= quantity.Length2(ball.Radius*ball.Radius)
}

func aabbFullyInsideBall(aabb shapes.AABB, ball shapes.Ellipsoid) bool {
	for _, p := range aabbCorners(aabb) {
		if ball.Centre.Sub(p).Len() > ball.Radius {
			return false
		}
	}
	return true
}

func triOverlapsBall(tri shapes.Triangle, ball shapes.Ellipsoid) bool {
	return ball.Contains(tri.A) || ball.Contains(tri.B) || ball.Contains(tri.C) || ball.Contains(tri.Centroid())
}

func (b *BVH) harvestLeafBall(leaf Leaf, ball shapes.Ellipsoid, visit func(uint32) bool) bool {
	for i := leaf.TrisPtr; i < leaf.TrisPtr+leaf.Count; i++ {
		tri := b.Tris[i]
		if triOverlapsBall(tri, ball) {
			if !visit(i) {
				return false
			}
		}
	}
	return true
}

// QueryBall visits the triangles overlapping the ball, treating it as
// the zero-velocity degenerate case of a cone query, but
// tested directly against the sphere rather than routed through
// EllipticCone machinery. A leaf triangle counts as overlapping when one
// of its three vertices or its centroid lies inside the ball; a triangle
// that meets the ball only along an edge or through its interior is not
// visited.
func (b *BVH) QueryBall(ball shapes.Ellipsoid, visit func(triIdx uint32) bool, stats *QueryStats) {
	var stack [maxStackDepth]int32
	stack[0] = encodeChildPtr(RootIndex)
	sp := 1

	for sp > 0 {
		sp--
		ptr := stack[sp]
		node := &b.Nodes[ChildNodePtr(ptr)]
		if stats != nil {
			stats.BallTests++
		}

		for lane := 0; lane < AABBsPerNode; lane++ {
			child := node.Child[lane]
			if IsPtrEmpty(child) {
				continue
			}
			aabb := laneAABB(node, lane)
			if !aabbOverlapsBall(aabb, ball) {
				continue
			}

			if IsPtrLeaf(child) {
				leaf := b.Leaves[LeafNodePtr(child)]
				if !b.harvestLeafBall(leaf, ball, visit) {
					return
				}
				continue
			}

			if aabbFullyInsideBall(aabb, ball) {
				childNode := &b.Nodes[ChildNodePtr(child)]
				if !harvestRange(childNode.TrisStart, childNode.TrisCount, visit) {
					return
				}
				continue
			}

			if sp < maxStackDepth {
				stack[sp] = child
				sp++
			}
		}
	}
}
