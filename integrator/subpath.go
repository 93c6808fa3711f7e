package integrator

import (
	"math"

	"github.com/sixy6e/wavetrace/ads"
	"github.com/sixy6e/wavetrace/beam"
	"github.com/sixy6e/wavetrace/bsdf"
	"github.com/sixy6e/wavetrace/interaction"
	"github.com/sixy6e/wavetrace/mesh"
	"github.com/sixy6e/wavetrace/polarimetric"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

// PathSampler is the randomness source subpath generation draws BSDF
// and Russian-roulette decisions from; satisfied by *sampler.Sampler.
type PathSampler interface {
	Float64() float64
	Vec2() (float64, float64)
}

// Context bundles the read-only, shared-by-reference scene resources a
// subpath generator needs: the acceleration structure, the triangle/
// shape/material database, and the traversal driver's behavior knobs.
//
// Grounded on plt_bdpt.cpp's integrator_context_t usage (ctx.scene,
// ctx.sensor, ctx.film_surface) — the header defining that type was
// never retrieved, so this is a from-scratch aggregate shaped by its
// call sites, not a reconstruction of unseen C++.
type Context struct {
	BVH   *ads.BVH
	Store *mesh.Store

	TraversalOpts beam.Options
	FSD           bool
	RR            bool
	MaxDistance   quantity.Length // scene's far-plane distance for escaping subpaths

	Stats *ads.QueryStats
}

// rrMinDepth is the subpath depth past which Russian Roulette starts
// culling low-throughput paths.
const rrMinDepth = 3

// rrThroughput returns a scalar proxy for a Stokes throughput's
// magnitude, used as the Russian Roulette survival probability's basis.
func rrThroughput(s polarimetric.Stokes) float64 {
	return math.Abs(s.I)
}

// generateSubpath grows a subpath from a seed beam and starting
// throughput, terminating on escape, max depth, or Russian Roulette.
func generateSubpath(
	ctx *Context,
	path *Path,
	originVertex Vertex,
	seed shapes.Ray,
	k quantity.Wavenumber,
	apertureSize quantity.Length,
	tanAlpha float64,
	throughput polarimetric.Stokes,
	maxDepth int,
	sampler PathSampler,
) {
	path.push(originVertex)
	if rrThroughput(throughput) <= 0 {
		return
	}

	envelope := shapes.NewEllipticCone(seed, quantity.BuildOrthogonalFrame(seed.D).X, tanAlpha, 0, apertureSize)
	lambda := quantity.Length(2 * math.Pi / float64(k))

	for depth := 0; depth < maxDepth; depth++ {
		result := beam.Traverse(ctx.BVH, envelope, lambda, ctx.MaxDistance, ctx.TraversalOpts, ctx.Stats)
		if !result.Found {
			path.push(Vertex{Kind: KindVolumetric, P: result.Origin.Add(envelope.R.D.Vec3().Scale(float64(ctx.MaxDistance)))})
			return
		}

		tri := ctx.Store.Triangles[result.Hit.TriIdx]
		bary := interaction.Barycentric{U: result.Hit.U, V: result.Hit.V}
		wp := bary.Point(tri)
		footprint := interaction.Footprint{X: interaction.Dir2{X: 1}, La: envelope.Axes(result.Hit.Dist).X, Lb: envelope.Axes(result.Hit.Dist).Y}
		surf := interaction.NewSurface(tri, result.Hit.TriIdx, bary, wp, tri.N, footprint)

		var shapeBSDF bsdf.BSDF
		var hasShape bool
		if tri.ShapeID < uint32(len(ctx.Store.Shapes)) {
			shapeBSDF = ctx.Store.Shapes[tri.ShapeID].BSDF
			hasShape = true
		}

		wi := envelope.R.D.Neg()

		wedges := triangleWedges(ctx.BVH.Edges, tri)
		if len(wedges) == 0 && result.HasWedgeHit {
			wedges = triangleWedges(ctx.BVH.Edges, ctx.Store.Triangles[result.WedgeHit.TriIdx])
		}
		useFSD := ctx.FSD && len(wedges) > 0 && (shapeBSDF == nil || sampler.Float64() < 0.5)

		var vtx Vertex
		vtx.Kind = KindSurface
		vtx.P = surf.WP
		vtx.Ng = surf.Ng()
		vtx.Surface = &surf
		vtx.ShapeID = tri.ShapeID
		vtx.HasShape = hasShape
		vtx.BSDF = shapeBSDF
		vtx.InBeam = beam.Beam{Envelope: envelope, K: k}
		vtx.Throughput = throughput

		if useFSD {
			w := wedges[uint32nHelper(sampler, len(wedges))]
			ro := result.Hit.Dist
			utd := w.UTD(k, wi, wi.Neg(), ro)
			op, pd := utdAttenuation(utd)
			if pd <= 0 {
				return
			}
			vtx.PDFFwd = pd / float64(len(wedges))
			throughput = op.Apply(throughput).Scale(1 / vtx.PDFFwd)
			vtx.Throughput = throughput
			path.push(vtx)

			survive, q := russianRoulette(ctx, depth, throughput, sampler)
			if !survive {
				return
			}
			throughput = throughput.Scale(1 / q)

			seedDir := wi.Neg()
			seed = shapes.Ray{O: surf.OffsetedRayOrigin(shapes.Ray{O: surf.WP, D: seedDir}, tri), D: seedDir}
			envelope = shapes.NewEllipticCone(seed, quantity.BuildOrthogonalFrame(seed.D).X, tanAlpha, 0, apertureSize)
			continue
		}

		if shapeBSDF == nil {
			path.push(vtx)
			return
		}

		localWi := surf.Shading.ToLocal(wi.Vec3())
		wiLocal := quantity.Unit3FromVec3(localWi)
		bs, ok := shapeBSDF.Sample(wiLocal, bsdf.Query{K: k, Lobe: bsdf.Mask(bsdf.LobeSpecular).With(bsdf.LobeScattered)}, sampler)
		if !ok {
			path.push(vtx)
			return
		}
		vtx.PDFFwd = bs.PDF
		vtx.Delta = bs.Discrete
		throughput = bs.WeightedBSDF.Apply(throughput)
		vtx.Throughput = throughput
		path.push(vtx)

		survive, q := russianRoulette(ctx, depth, throughput, sampler)
		if !survive {
			return
		}
		throughput = throughput.Scale(1 / q)

		woWorld := quantity.Unit3FromVec3(surf.Shading.ToWorld(bs.Wo.Vec3()))
		seed = shapes.Ray{O: surf.OffsetedRayOrigin(shapes.Ray{O: surf.WP, D: woWorld}, tri), D: woWorld}
		envelope = shapes.NewEllipticCone(seed, quantity.BuildOrthogonalFrame(seed.D).X, tanAlpha, 0, apertureSize)
	}
}

// russianRoulette applies Russian Roulette termination past rrMinDepth,
// returning whether the path survives and the survival probability the
// caller must divide the throughput by.
func russianRoulette(ctx *Context, depth int, throughput polarimetric.Stokes, sampler PathSampler) (bool, float64) {
	if !ctx.RR || depth < rrMinDepth {
		return true, 1
	}
	q := math.Min(0.95, rrThroughput(throughput))
	if q <= 0 {
		return false, 1
	}
	if sampler.Float64() >= q {
		return false, 1
	}
	return true, q
}

// uint32nHelper picks a uniform index in [0,n) from a PathSampler — a free
// function since PathSampler (unlike *sampler.Sampler) doesn't carry
// Uint32n itself.
func uint32nHelper(sampler PathSampler, n int) int {
	if n <= 0 {
		return 0
	}
	return int(sampler.Float64() * float64(n))
}
