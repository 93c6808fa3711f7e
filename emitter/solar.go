package emitter

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/spectrum"
)

// Solar is a Directional variant whose direction-toward-emitter is
// derived from a date/time and a geographic observer position instead
// of being supplied directly, using soniakeys/meeus for the apparent
// solar position. Modeled directly on the Directional variant's shape,
// using meeus's own worked Example13 date/position usage for the
// Time/julian/coord call sequence.
type Solar struct {
	Directional

	When      time.Time
	Latitude  quantity.Angle // radians, +north
	Longitude quantity.Angle // radians, +east
}

// Resolve computes the apparent solar direction at When/Latitude/
// Longitude and stores it as the embedded Directional's
// DirToEmitter, so every Directional method (Sample, SampleDirect,
// BindWorldAABB, ...) works unchanged once Resolve has run.
func (s *Solar) Resolve() {
	jd := julian.TimeToJD(s.When)
	ra, dec := solar.ApparentEquatorial(jd)

	eq := coord.Equatorial{RA: ra, Dec: dec}
	g := globe.Coord{
		Lat: unit.Angle(s.Latitude),
		Lon: unit.Angle(s.Longitude),
	}
	azimuth, altitude := eq.EqToHz(g, jd)

	// horizontal (azimuth measured from south, altitude above horizon)
	// to a world-frame unit vector: z is up, x is east, y is north,
	// matching the right-handed convention quantity.BuildOrthogonalFrame
	// assumes for its own frame construction.
	alt := altitude.Rad()
	az := azimuth.Rad()
	x := math.Cos(alt) * math.Sin(az)
	y := -math.Cos(alt) * math.Cos(az)
	z := math.Sin(alt)

	s.DirToEmitter = quantity.NewUnit3(x, y, z)
}

// NewSolar builds a Solar emitter with the sun's angular size as seen
// from Earth (~0.53° diameter) as its default solid-angle extent,
// already resolved against When/Latitude/Longitude.
func NewSolar(id string, when time.Time, lat, lon quantity.Angle, irradiance spectrum.Spectrum) *Solar {
	const sunAngularRadius = 0.00465 // radians, ~0.266°
	solidAngle := 2 * math.Pi * (1 - math.Cos(sunAngularRadius))
	s := &Solar{
		Directional: Directional{
			ID:                 id,
			Irradiance:         irradiance,
			SolidAngleAtTarget: solidAngle,
		},
		When:      when,
		Latitude:  lat,
		Longitude: lon,
	}
	s.Resolve()
	return s
}
