package beam

import (
	"math"

	"github.com/sixy6e/wavetrace/ads"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

// ballisticScale slightly over-extends each ballistic segment's query
// range so the ballistic and diffusive segments are guaranteed to
// overlap at the handoff distance, avoiding a missed sliver of distance
// between the two query kinds.
const ballisticScale = 1.001

const (
	maxBallisticSegments      = 16
	ballisticSegmentLambdas   = 8
	maxBallisticSegmentLambdas = 1 << 16
	// scaleSelfIntrsDist pads min_ballistic_distance for numerical
	// safety, the same margin the traversal driver's ballistic-distance
	// budget always applies to the self-intersection distance.
	scaleSelfIntrsDist = 1.05
)

// calculateMinBallisticDistance returns the distance, measured past the
// ray's own origin, over which the envelope does not yet contain the
// mean ray — computed in closed form from the eccentricity-adjusted
// local coordinates of the ray origin relative to the envelope frame.
func calculateMinBallisticDistance(envelope shapes.EllipticCone, ray shapes.Ray) quantity.Length {
	if ray.O != envelope.R.O {
		local := envelope.Frame().ToLocal(ray.O.Sub(envelope.R.O))
		rlx := local.X
		rly := local.Y * quantity.Length(envelope.E())
		rlz := local.Z

		radial := quantity.Length(math.Hypot(float64(rlx), float64(rly)))
		distToRayInclusion := (radial-envelope.X0())/quantity.Length(envelope.TanAlpha()) - rlz

		return maxLength(0, maxLength(-rlz, distToRayInclusion))
	}
	return 0
}

func maxLength(a, b quantity.Length) quantity.Length {
	if a > b {
		return a
	}
	return b
}

// maxBallisticDistance computes the budget of the ballistic segment at
// index segment: 8·2^(2·segment+1) wavelengths, quadrupling with each
// segment, capped at 2^16 wavelengths; past maxBallisticSegments it
// returns +Inf so the caller gives up.
func maxBallisticDistance(lambda quantity.Length, segment uint32, minBallisticDistance quantity.Length) quantity.Length {
	minDist := minBallisticDistance * scaleSelfIntrsDist

	shift := 2*segment + 1
	b := uint64(ballisticSegmentLambdas)
	if shift < 63 {
		b = ballisticSegmentLambdas << shift
	} else {
		b = maxBallisticSegmentLambdas
	}
	if b > maxBallisticSegmentLambdas {
		b = maxBallisticSegmentLambdas
	}

	if segment >= maxBallisticSegments {
		return quantity.Inf
	}
	return minDist + lambda*quantity.Length(b)
}

// hasEdges reports whether any of tri's three edge slots carry recorded
// adjacency data.
func hasEdges(tri shapes.Triangle) bool {
	return tri.EdgeAB != shapes.NoEdge || tri.EdgeBC != shapes.NoEdge || tri.EdgeCA != shapes.NoEdge
}

// Options controls the traversal driver's behavior.
type Options struct {
	// ForceRayTracing skips the diffusive (cone) segments entirely,
	// reducing the driver to a single ray closest-hit query
	// (config option renderer.force_ray_tracing).
	ForceRayTracing bool

	// AccumulateEdges has IntersectCone's candidate scan also track the
	// closest triangle carrying edge adjacency data (Result.WedgeHit),
	// separately from the single closest hit, so a diffraction lookup
	// isn't limited to whichever triangle the ray happened to hit first.
	AccumulateEdges bool

	IgnoreShape    uint32
	HasIgnoreShape bool
}

// Result carries a traversal driver outcome.
type Result struct {
	// Origin is the beam's real origin, possibly offset for
	// self-intersection avoidance by the caller before invoking Traverse.
	Origin quantity.Vec3

	Hit                     ads.Hit
	Found                   bool
	IntersectionRegionDepth quantity.Length
	Ballistic               bool

	// WedgeHit is the closest cone-query candidate carrying edge
	// adjacency data, tracked separately from Hit when opts.AccumulateEdges
	// is set so a diffraction lookup isn't limited to whichever triangle
	// happened to be the single closest hit.
	WedgeHit    ads.Hit
	HasWedgeHit bool
}

// ShadowResult carries a shadow-traversal outcome.
type ShadowResult struct {
	Shadow    bool
	Ballistic bool
}

// Traverse runs the hybrid ballistic/diffusive traversal driver: short
// ray segments near the envelope's origin, attempting to resume cone
// (diffusive) propagation once the envelope contains the mean ray with
// enough margin for a cone query to be meaningful.
func Traverse(bvh *ads.BVH, envelope shapes.EllipticCone, lambda quantity.Length, distance quantity.Length, opts Options, stats *ads.QueryStats) Result {
	ray := envelope.R

	if opts.ForceRayTracing || envelope.IsRay() {
		hit, found := bvh.Intersect(ray, quantity.Range{Min: 0, Max: distance}, opts.IgnoreShape, opts.HasIgnoreShape, stats)
		return Result{Origin: ray.O, Hit: hit, Found: found, Ballistic: true}
	}

	minBallisticDistance := calculateMinBallisticDistance(envelope, ray)

	dist := quantity.Length(0)
	for seg := uint32(0); ; seg++ {
		ballisticDist := maxBallisticDistance(lambda, seg, minBallisticDistance)
		upper := dist + ballisticDist*ballisticScale
		if distance < upper {
			upper = distance
		}
		hit, found := bvh.Intersect(ray, quantity.Range{Min: dist, Max: upper}, opts.IgnoreShape, opts.HasIgnoreShape, stats)
		if found {
			return Result{Origin: ray.O, Hit: hit, Found: true, Ballistic: true}
		}

		dist += ballisticDist
		if math.IsInf(float64(ballisticDist), 1) || dist >= distance {
			return Result{Origin: ray.O, Ballistic: true}
		}

		minDfProg := envelope.Axes(dist).X / 2

		var best, bestEdge ads.Hit
		bestDist := quantity.Length(math.Inf(1))
		bestEdgeDist := quantity.Length(math.Inf(1))
		foundCone, foundEdge := false, false
		trackEdges := opts.AccumulateEdges && bvh.Edges != nil
		bvh.IntersectCone(envelope, quantity.Range{Min: dist, Max: distance}, func(tri uint32, d quantity.Length) bool {
			if !foundCone || d < bestDist {
				bestDist = d
				best = ads.Hit{Dist: d, TriIdx: tri}
				foundCone = true
			}
			if trackEdges && hasEdges(bvh.Tri(tri)) && (!foundEdge || d < bestEdgeDist) {
				bestEdgeDist = d
				bestEdge = ads.Hit{Dist: d, TriIdx: tri}
				foundEdge = true
			}
			return true
		}, stats)

		if !foundCone || bestDist-dist >= minDfProg {
			depth := quantity.Length(0)
			if foundCone {
				depth = MajorAxisToZScale * envelope.Axes(bestDist).X
			}
			return Result{
				Origin:                  envelope.R.O,
				Hit:                     best,
				Found:                   foundCone,
				IntersectionRegionDepth: depth,
				WedgeHit:                bestEdge,
				HasWedgeHit:             foundEdge,
			}
		}

		// too close to the frontier to be useful; keep tracing
		// ballistically.
	}
}

// TraverseShadow runs the shadow-driver analogue of Traverse: ballistic
// ray-shadow segments interleaved with cone-shadow queries, terminating
// on the first confirmed hit or once the frontier reaches distance.
func TraverseShadow(bvh *ads.BVH, envelope shapes.EllipticCone, lambda quantity.Length, distance quantity.Length, opts Options, stats *ads.QueryStats) ShadowResult {
	ray := envelope.R

	if opts.ForceRayTracing || envelope.IsRay() {
		return ShadowResult{
			Shadow:    bvh.Shadow(ray, quantity.Range{Min: 0, Max: distance}, opts.IgnoreShape, opts.HasIgnoreShape, stats),
			Ballistic: true,
		}
	}

	minBallisticDistance := calculateMinBallisticDistance(envelope, ray)

	dist := quantity.Length(0)
	for seg := uint32(0); ; seg++ {
		ballisticDist := maxBallisticDistance(lambda, seg, minBallisticDistance)
		upper := (dist + ballisticDist) * ballisticScale
		if bvh.Shadow(ray, quantity.Range{Min: dist, Max: upper}, opts.IgnoreShape, opts.HasIgnoreShape, stats) {
			return ShadowResult{Shadow: true, Ballistic: true}
		}

		dist += ballisticDist
		if dist >= distance {
			return ShadowResult{Shadow: false, Ballistic: true}
		}

		minDfProg := envelope.Axes(dist).X
		shortUpper := dist + minDfProg
		if shortUpper > distance {
			shortUpper = distance
		}
		if bvh.ShadowCone(envelope, quantity.Range{Min: dist, Max: shortUpper}, stats) {
			return ShadowResult{Shadow: true, Ballistic: false}
		}

		if dist+minDfProg >= distance {
			return ShadowResult{Shadow: false, Ballistic: false}
		}

		if bvh.ShadowCone(envelope, quantity.Range{Min: dist, Max: distance}, stats) {
			return ShadowResult{Shadow: true, Ballistic: false}
		}
		return ShadowResult{Shadow: false, Ballistic: false}
	}
}
