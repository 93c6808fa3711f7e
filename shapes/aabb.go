package shapes

import (
	"math"

	"github.com/sixy6e/wavetrace/quantity"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max quantity.Vec3
}

// EmptyAABB returns a box with Min=+inf and Max=-inf, ready to be grown
// via ExpandPoint/ExpandAABB.
func EmptyAABB() AABB {
	inf := quantity.Length(math.Inf(1))
	return AABB{
		Min: quantity.Vec3{X: inf, Y: inf, Z: inf},
		Max: quantity.Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

// ExpandPoint grows the box to contain p.
func (b *AABB) ExpandPoint(p quantity.Vec3) {
	b.Min.X = minL(b.Min.X, p.X)
	b.Min.Y = minL(b.Min.Y, p.Y)
	b.Min.Z = minL(b.Min.Z, p.Z)
	b.Max.X = maxL(b.Max.X, p.X)
	b.Max.Y = maxL(b.Max.Y, p.Y)
	b.Max.Z = maxL(b.Max.Z, p.Z)
}

// ExpandAABB grows the box to contain o.
func (b *AABB) ExpandAABB(o AABB) {
	b.ExpandPoint(o.Min)
	b.ExpandPoint(o.Max)
}

// Centroid returns the box's geometric center.
func (b AABB) Centroid() quantity.Vec3 {
	return quantity.Vec3{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// SurfaceArea returns the box's surface area, used by the SAH builder's
// cost function.
func (b AABB) SurfaceArea() quantity.Length2 {
	d := b.Max.Sub(b.Min)
	if d.X < 0 || d.Y < 0 || d.Z < 0 {
		return 0
	}
	return quantity.Length2(2 * (float64(d.X*d.Y) + float64(d.Y*d.Z) + float64(d.Z*d.X)))
}

// Contains reports whether p lies within the box.
func (b AABB) Contains(p quantity.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectRay returns the [tmin,tmax] entry/exit distances of the ray's
// slab test against b, and whether the ray hits the box at all within
// the supplied search range.
func (b AABB) IntersectRay(r Ray, rng quantity.Range) (quantity.Length, quantity.Length, bool) {
	tmin, tmax := float64(rng.Min), float64(rng.Max)

	axes := [3][3]float64{
		{float64(b.Min.X), float64(b.Max.X), r.D.X},
		{float64(b.Min.Y), float64(b.Max.Y), r.D.Y},
		{float64(b.Min.Z), float64(b.Max.Z), r.D.Z},
	}
	origin := [3]float64{float64(r.O.X), float64(r.O.Y), float64(r.O.Z)}

	for i, ax := range axes {
		lo, hi, d := ax[0], ax[1], ax[2]
		if d == 0 {
			if origin[i] < lo || origin[i] > hi {
				return 0, 0, false
			}
			continue
		}
		invD := 1 / d
		t0 := (lo - origin[i]) * invD
		t1 := (hi - origin[i]) * invD
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return 0, 0, false
		}
	}
	return quantity.Length(tmin), quantity.Length(tmax), true
}

func minL(a, b quantity.Length) quantity.Length {
	if a < b {
		return a
	}
	return b
}

func maxL(a, b quantity.Length) quantity.Length {
	if a > b {
		return a
	}
	return b
}
