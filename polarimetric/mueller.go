package polarimetric

import "math"

// Mueller is a real 4x4 linear operator acting on Stokes vectors,
// encoding a polarimetric interaction (reflection, scattering,
// diffraction, or free-space propagation).
//
// No dedicated Mueller-operator header was present in the retrieved
// original source (only its consumer, stokes_parameters_t, was); this
// is implemented directly against the Stokes vector's linear-algebra
// needs, following the row-major 4x4 convention M·S standard to Mueller
// calculus.
type Mueller struct {
	M [4][4]float64
}

// Identity returns the Mueller operator that leaves every Stokes vector
// unchanged.
func Identity() Mueller {
	var m Mueller
	for i := 0; i < 4; i++ {
		m.M[i][i] = 1
	}
	return m
}

// Depolarizer returns the Mueller operator that scales the total
// intensity by t and retains only a fraction (1-d) of the incoming
// polarization (d in [0,1] is the depolarization factor).
func Depolarizer(t, d float64) Mueller {
	var m Mueller
	m.M[0][0] = t
	k := t * (1 - d)
	m.M[1][1], m.M[2][2], m.M[3][3] = k, k, k
	return m
}

// Attenuator returns the Mueller operator that scales intensity and
// polarization uniformly by t (a non-polarizing attenuation or gain).
func Attenuator(t float64) Mueller {
	var m Mueller
	for i := 0; i < 4; i++ {
		m.M[i][i] = t
	}
	return m
}

// LinearPolarizer returns the Mueller operator of an ideal linear
// polarizer whose transmission axis sits at angleRad from the frame's Q
// axis.
func LinearPolarizer(angleRad float64) Mueller {
	c2 := math.Cos(2 * angleRad)
	s2 := math.Sin(2 * angleRad)
	return Mueller{M: [4][4]float64{
		{0.5, 0.5 * c2, 0.5 * s2, 0},
		{0.5 * c2, 0.5 * c2 * c2, 0.5 * c2 * s2, 0},
		{0.5 * s2, 0.5 * c2 * s2, 0.5 * s2 * s2, 0},
		{0, 0, 0, 0},
	}}
}

// Rotator returns the Mueller operator that rotates the Q/U plane by
// angleRad about the propagation axis, leaving I and V unchanged.
func Rotator(angleRad float64) Mueller {
	c2 := math.Cos(2 * angleRad)
	s2 := math.Sin(2 * angleRad)
	return Mueller{M: [4][4]float64{
		{1, 0, 0, 0},
		{0, c2, s2, 0},
		{0, -s2, c2, 0},
		{0, 0, 0, 1},
	}}
}

// Apply transports a Stokes vector through the operator: M·S.
func (m Mueller) Apply(s Stokes) Stokes {
	v := [4]float64{s.I, s.Q, s.U, s.V}
	var out [4]float64
	for i := 0; i < 4; i++ {
		out[i] = m.M[i][0]*v[0] + m.M[i][1]*v[1] + m.M[i][2]*v[2] + m.M[i][3]*v[3]
	}
	return Stokes{I: out[0], Q: out[1], U: out[2], V: out[3]}
}

// Compose returns the operator equivalent to applying n first, then m:
// for any Stokes vector S, m.Compose(n).Apply(S) == m.Apply(n.Apply(S)).
func (m Mueller) Compose(n Mueller) Mueller {
	var out Mueller
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m.M[i][k] * n.M[k][j]
			}
			out.M[i][j] = sum
		}
	}
	return out
}

// Scale returns the operator with every entry scaled by f.
func (m Mueller) Scale(f float64) Mueller {
	var out Mueller
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out.M[i][j] = m.M[i][j] * f
		}
	}
	return out
}
