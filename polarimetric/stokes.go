// Package polarimetric implements Stokes-vector light states and the
// Mueller operators that transport them through scattering, diffraction,
// and free-space propagation interactions.
package polarimetric

import (
	"math"

	"github.com/sixy6e/wavetrace/quantity"
)

// Stokes is a four-component real Stokes parameters vector (I, Q, U, V):
// total intensity and three polarization components. "Intensity" is
// used in the generalized radiometric sense — the quantity this carries
// (importance, flux, radiance, ...) depends on context.
//
// Grounded on
// original_source/include/wt/interaction/polarimetric/stokes.hpp.
type Stokes struct {
	I, Q, U, V float64
}

// Zero is the zero Stokes vector.
var Zero = Stokes{}

// Unpolarized returns a fully unpolarized Stokes vector of intensity i.
func Unpolarized(i float64) Stokes { return Stokes{I: i} }

// LinearlyPolarized returns a Stokes vector linearly polarized at angle
// lpAngle (radians, measured the same way the reference frame's
// polarization angle convention does) with intensity i.
func LinearlyPolarized(lpAngle quantity.Angle, i float64) Stokes {
	a := float64(lpAngle)
	return Stokes{I: i, Q: i * math.Cos(2*a), U: i * math.Sin(2*a), V: 0}
}

// LinearlyPolarized0Deg, LinearlyPolarized45Deg, LinearlyPolarized90Deg,
// LinearlyPolarized135Deg are the axis-aligned linear polarization
// states of intensity i.
func LinearlyPolarized0Deg(i float64) Stokes   { return Stokes{I: i, Q: i} }
func LinearlyPolarized45Deg(i float64) Stokes  { return Stokes{I: i, U: i} }
func LinearlyPolarized90Deg(i float64) Stokes  { return Stokes{I: i, Q: -i} }
func LinearlyPolarized135Deg(i float64) Stokes { return Stokes{I: i, U: -i} }

// CircularlyPolarized returns a right- (rhc true) or left-handed
// circularly polarized Stokes vector of intensity i.
func CircularlyPolarized(rhc bool, i float64) Stokes {
	if rhc {
		return Stokes{I: i, V: i}
	}
	return Stokes{I: i, V: -i}
}

// PolarizationState returns the (Q, U, V) polarization sub-vector.
func (s Stokes) PolarizationState() quantity.Vec3 {
	return quantity.Vec3{X: quantity.Length(s.Q), Y: quantity.Length(s.U), Z: quantity.Length(s.V)}
}

// IsUnpolarized reports whether the Stokes vector carries no
// polarization component at all.
func (s Stokes) IsUnpolarized() bool { return s.Q == 0 && s.U == 0 && s.V == 0 }

// Intensity returns the total intensity (the I component).
func (s Stokes) Intensity() float64 { return s.I }

// PolarizedIntensity returns the intensity of the polarized part.
func (s Stokes) PolarizedIntensity() float64 {
	return math.Sqrt(s.Q*s.Q + s.U*s.U + s.V*s.V)
}

// UnpolarizedIntensity returns the intensity of the randomly polarized
// part, clamped to zero.
func (s Stokes) UnpolarizedIntensity() float64 {
	return math.Max(0, s.Intensity()-s.PolarizedIntensity())
}

// LinearlyPolarizedIntensity returns the intensity of the
// linearly-polarized part.
func (s Stokes) LinearlyPolarizedIntensity() float64 {
	return math.Hypot(s.Q, s.U)
}

// CircularlyPolarizedIntensity returns the intensity of the
// circularly-polarized part.
func (s Stokes) CircularlyPolarizedIntensity() float64 { return math.Abs(s.V) }

// DegreeOfPolarization, DegreeOfLinearPolarization, and
// DegreeOfCircularPolarization return the respective fraction of total
// intensity that is polarized; 0 when the total intensity is zero.
func (s Stokes) DegreeOfPolarization() float64 {
	if s.I <= 0 {
		return 0
	}
	return s.PolarizedIntensity() / s.I
}

func (s Stokes) DegreeOfLinearPolarization() float64 {
	if s.I <= 0 {
		return 0
	}
	return s.LinearlyPolarizedIntensity() / s.I
}

func (s Stokes) DegreeOfCircularPolarization() float64 {
	if s.I <= 0 {
		return 0
	}
	return s.CircularlyPolarizedIntensity() / s.I
}

// LinearPolarizationAngle returns the orientation angle of the
// linearly-polarized part.
func (s Stokes) LinearPolarizationAngle() quantity.Angle {
	return quantity.Angle(0.5 * math.Atan2(s.U/s.I, s.Q/s.I))
}

// IsCircularlyPolarizedRHS reports whether the circularly-polarized
// part is right-hand polarized.
func (s Stokes) IsCircularlyPolarizedRHS() bool { return s.V > 0 }

// FlipHandness returns the Stokes vector with its frame handness
// flipped: U and V negate.
func (s Stokes) FlipHandness() Stokes { return Stokes{I: s.I, Q: s.Q, U: -s.U, V: -s.V} }

// Add returns s+o.
func (s Stokes) Add(o Stokes) Stokes {
	return Stokes{I: s.I + o.I, Q: s.Q + o.Q, U: s.U + o.U, V: s.V + o.V}
}

// Scale returns s scaled by the dimensionless factor f.
func (s Stokes) Scale(f float64) Stokes {
	return Stokes{I: s.I * f, Q: s.Q * f, U: s.U * f, V: s.V * f}
}

// rotation2 returns the 2x2 rotation matrix (as its two columns) that
// rotates the unit direction u onto the unit direction v.
func rotation2(ux, uy, vx, vy float64) (m00, m01, m10, m11 float64) {
	c := ux*vx + uy*vy
	s := ux*vy - uy*vx
	return c, -s, s, c
}

// Reorient reorients s, expressed against currentFrame, to align with
// newFrame: both frames must share the same propagation axis Z (up to
// sign). Linear Stokes components (Q, U) rotate at twice the frame's
// rotation angle, so the alignment rotation is applied to them twice.
// Reorienting to a frame with flipped handness negates U and V.
func (s Stokes) Reorient(currentFrame, newFrame quantity.Frame) Stokes {
	tou := currentFrame.ToLocal(newFrame.X.Vec3())
	tov := currentFrame.ToLocal(newFrame.Y.Vec3())

	m00, m01, m10, m11 := rotation2(1, 0, float64(tou.X), float64(tou.Y))

	q1 := m00*s.Q + m01*s.U
	u1 := m10*s.Q + m11*s.U
	q2 := m00*q1 + m01*u1
	u2 := m10*q1 + m11*u1
	out := Stokes{I: s.I, Q: q2, U: u2, V: s.V}

	// single application of the rotation to the local Y axis detects a
	// handness flip between the two frames.
	vx, vy := m01, m11
	if vx*float64(tov.X)+vy*float64(tov.Y) < 0 {
		return out.FlipHandness()
	}
	return out
}
