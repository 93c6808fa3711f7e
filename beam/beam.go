package beam

import (
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

// BeamCrossSectionEnvelope is the number of standard deviations the
// beam's geometric footprint (the elliptic-cone cross-section) is taken
// to represent. gaussian_wavefront_t ships this as a named constant in a
// header that never made it into the retrieved source tree, so 2 std
// devs — a ~95% confidence envelope, a conventional choice for a beam
// footprint — is used here; see DESIGN.md.
const BeamCrossSectionEnvelope = 2.0

// MajorAxisToZScale is the ratio between a beam's major-axis footprint
// extent and the assumed extent along its direction of propagation, used
// to build the 3D footprint box from the 2D cross-section axes.
const MajorAxisToZScale = 2.0

// Beam is a propagating optical field: a cone-shaped geometric support
// (the envelope) and a wavenumber. The transverse Gaussian wavefront is
// derived on demand at a given propagation distance, not stored, since
// it varies continuously with distance.
//
// Grounded on original_source/include/wt/beam/beam_generic.hpp.
type Beam struct {
	Envelope shapes.EllipticCone
	K        quantity.Wavenumber
}

// Dir returns the beam's mean propagation direction.
func (b Beam) Dir() quantity.Unit3 { return b.Envelope.R.D }

// Origin returns the beam's origin.
func (b Beam) Origin() quantity.Vec3 { return b.Envelope.R.O }

// MeanRay returns the beam's central ray.
func (b Beam) MeanRay() shapes.Ray { return b.Envelope.R }

// Frame returns the beam's local frame (X major axis, Y minor axis, Z
// propagation direction).
func (b Beam) Frame() quantity.Frame { return b.Envelope.Frame() }

// IsRay reports whether the beam has degenerated to a bare ray.
func (b Beam) IsRay() bool { return b.Envelope.IsRay() }

// FromInfinity reports whether the beam originates at an unbounded
// distance (a directional source), signaled by a non-finite origin
// coordinate.
func (b Beam) FromInfinity() bool {
	o := b.Origin()
	return isInf(o.X) || isInf(o.Y) || isInf(o.Z)
}

func isInf(l quantity.Length) bool {
	f := float64(l)
	return f > 1e300 || f < -1e300
}

// Footprint returns the beam's 3D spatial footprint at propagation
// distance dist, in the beam's local frame: the cross-section's major
// and minor axis half-extents, plus an assumed extent along the
// propagation axis scaled from the major axis.
func (b Beam) Footprint(dist quantity.Length) quantity.Vec3 {
	a := b.Envelope.Axes(dist)
	return quantity.Vec3{X: a.X, Y: a.Y, Z: MajorAxisToZScale * a.X}
}

// StdDev returns the beam's spatial standard deviation along its local
// x, y, z axes at propagation distance dist.
func (b Beam) StdDev(dist quantity.Length) quantity.Vec3 {
	f := b.Footprint(dist)
	return quantity.Vec3{
		X: f.X / BeamCrossSectionEnvelope,
		Y: f.Y / BeamCrossSectionEnvelope,
		Z: f.Z / BeamCrossSectionEnvelope,
	}
}

// Wavefront returns the beam's transverse Gaussian wavefront, in local
// frame, at propagation distance dist.
func (b Beam) Wavefront(dist quantity.Length) Wavefront {
	sd := b.StdDev(dist)
	return NewWavefront(quantity.Vec2{X: sd.X, Y: sd.Y}, Dir2{X: 1, Y: 0}, quantity.Vec2{})
}

// Project maps a world-space point onto the beam's cross-section at
// propagation distance beamDist.
func (b Beam) Project(p quantity.Vec3, beamDist quantity.Length) quantity.Vec2 {
	return b.Envelope.Project(p, beamDist)
}
