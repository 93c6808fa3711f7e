package ads

// BuildOptions configures Build's edge-finding pass and the
// acceleration structure's default cone-query tuning.
type BuildOptions struct {
	// DetectEdges runs the edge-finding pass (edge.Build), populating
	// BVH.Edges with the silhouette-edge database FSD wedge diffraction
	// consumes. Skipping it saves the pass's cost when no diffraction
	// model needs wedge data.
	DetectEdges bool

	// AccumulateTriangles disables IntersectCone's z-search-range
	// narrowing below, so every candidate in the query's full range is
	// visited rather than only those within the tightening window
	// around the closest hit found so far.
	AccumulateTriangles bool

	// AccumulateEdges is the scene-level counterpart threaded into
	// beam.Options.AccumulateEdges: whether a beam's wedge lookup
	// considers candidates beyond the single closest-hit triangle.
	// Nothing in this package reads this field; whether BVH.Edges gets
	// populated at all is decided by DetectEdges alone.
	AccumulateEdges bool

	// ZSearchRangeScale sets the z-depth window IntersectCone narrows
	// accepted triangles to as the query's closest distance tightens:
	// [d_min, d_min + ZSearchRangeScale*cone.Axes(d_min).X]. Zero uses
	// DefaultZSearchRangeScale.
	ZSearchRangeScale float64

	// AdditionalADSStats enables Stats.TotalArea and Stats.WorldBox,
	// which need an extra pass over every triangle beyond what Build
	// already computes for the SAH cost and node-occupancy counters.
	AdditionalADSStats bool
}

// DefaultZSearchRangeScale is used in place of a zero
// BuildOptions.ZSearchRangeScale.
const DefaultZSearchRangeScale = 1.0
