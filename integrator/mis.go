package integrator

import "github.com/samber/lo"

// miSWeight computes the multiple-importance-sampling weight for the
// (s,t) connection strategy: a balance-heuristic weight over every
// other (s',t') split that could have produced the same combined path
// length.
//
// A full Veach balance heuristic needs each vertex's reverse sampling
// density (the density of having instead generated it walking the
// partner subpath's direction), which the connection routine would
// fill in by re-deriving the partner's BSDF/area pdf at each vertex —
// that computation lives in plt_bdpt_detail.hpp, never retrieved into
// original_source/. Lacking it, this weights every strategy that could
// validly have produced a path of the same total vertex count equally
// (the same skip rules plt_bdpt.cpp's integrate() loop applies: the
// degenerate (s=1,t=1) pair is excluded, and a vertex sampled from a
// delta distribution can only ever be produced by the strategy that
// actually sampled it, never by reinterpreting it as an area-sampled
// vertex from the other subpath). This is the C++'s own disabled-MIS
// "uniform over 1/(s+t+1)" fallback, refined to the subset of splits
// that are actually reachable rather than assuming every split is.
func miSWeight(sensorPath, emitterPath *Path, s, t int) float64 {
	n := s + t
	candidates := lo.Range(n + 1)
	valid := lo.CountBy(candidates, func(sp int) bool {
		tp := n - sp
		if tp < 0 || tp > len(sensorPath.Vertices) || sp > len(emitterPath.Vertices) {
			return false
		}
		if sp == 1 && tp == 1 {
			return false
		}
		if sp > 0 && sensorOrEmitterDeltaBlocks(sensorPath, emitterPath, sp, tp) {
			return false
		}
		return true
	})
	if valid == 0 {
		return 0
	}
	return 1 / float64(valid)
}

// sensorOrEmitterDeltaBlocks reports whether the split (sp,tp) is
// unreachable because the vertex that would need to be resampled from
// the other subpath's direction was in fact sampled from a delta
// distribution in the actual generated subpaths (a pinhole sensor
// element, a point/directional emitter, or a specular BSDF lobe) —
// such a vertex has zero density of being produced any other way.
func sensorOrEmitterDeltaBlocks(sensorPath, emitterPath *Path, sp, tp int) bool {
	if tp > 0 && tp <= len(sensorPath.Vertices) && sensorPath.Vertices[tp-1].Delta {
		return true
	}
	if sp > 0 && sp <= len(emitterPath.Vertices) && emitterPath.Vertices[sp-1].Delta {
		return true
	}
	return false
}
