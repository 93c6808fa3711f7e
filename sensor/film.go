package sensor

import (
	"math"
	"sync"

	"github.com/sixy6e/wavetrace/polarimetric"
)

// pixel accumulates a Stokes-valued sample sum and a sample count, the
// in-memory analogue of the original's per-element accumulator.
type pixel struct {
	sum   polarimetric.Stokes
	count uint64
}

// FilmStorage is the thread-safe render target a Sensor writes into:
// splats within a tile are unsynchronized because each tile has a
// single owning worker for its lifetime, but SplatDirect synchronizes
// per-element since it is reachable concurrently from any worker.
//
// Grounded on
// original_source/include/wt/sensor/sensor/film_backed_sensor.hpp's
// film_t and the thread-safety contract documented on sensor_t::
// splat_direct.
type FilmStorage struct {
	W, H, D uint32

	mu     []sync.Mutex
	pixels []pixel

	refcount int32
	refmu    sync.Mutex
}

// NewFilmStorage allocates a zeroed film of the given resolution, with
// one mutex per element for SplatDirect's synchronized path.
func NewFilmStorage(w, h, d uint32) *FilmStorage {
	n := int(w) * int(h) * int(d)
	return &FilmStorage{
		W: w, H: h, D: d,
		mu:     make([]sync.Mutex, n),
		pixels: make([]pixel, n),
	}
}

func (f *FilmStorage) index(e Element) int {
	return int(e.Z)*int(f.W)*int(f.H) + int(e.Y)*int(f.W) + int(e.X)
}

// Splat accumulates a sample from the tile's owning worker; callers
// must guarantee no other goroutine touches this element concurrently
// (true for ordinary, non-direct splats within an owned block).
func (f *FilmStorage) Splat(e Element, s polarimetric.Stokes) {
	i := f.index(e)
	if i < 0 || i >= len(f.pixels) {
		return
	}
	f.pixels[i].sum = f.pixels[i].sum.Add(s)
	f.pixels[i].count++
}

// SplatDirect accumulates a sample from any worker thread, guarded by
// a per-element mutex since the Stokes accumulator can't be updated
// with a single atomic add.
func (f *FilmStorage) SplatDirect(e Element, s polarimetric.Stokes) {
	i := f.index(e)
	if i < 0 || i >= len(f.pixels) {
		return
	}
	f.mu[i].Lock()
	f.pixels[i].sum = f.pixels[i].sum.Add(s)
	f.pixels[i].count++
	f.mu[i].Unlock()
}

// Mean returns the running mean Stokes value at element e, or the zero
// Stokes vector if no samples have landed there yet. The running sum
// only ever grows, so this is safe to read at any point during
// rendering for a partial preview.
func (f *FilmStorage) Mean(e Element) polarimetric.Stokes {
	i := f.index(e)
	if i < 0 || i >= len(f.pixels) {
		return polarimetric.Zero
	}
	c := f.pixels[i].count
	if c == 0 {
		return polarimetric.Zero
	}
	return f.pixels[i].sum.Scale(1 / float64(c))
}

// acquireRef/releaseRef track outstanding block handles for debug
// assertions, making it possible to check independently that every
// acquired block is released on all exit paths.
func (f *FilmStorage) acquireRef() { f.refmu.Lock(); f.refcount++; f.refmu.Unlock() }
func (f *FilmStorage) releaseRef() { f.refmu.Lock(); f.refcount--; f.refmu.Unlock() }

// OutstandingBlocks returns the number of currently-acquired, not-yet-
// released blocks.
func (f *FilmStorage) OutstandingBlocks() int32 {
	f.refmu.Lock()
	defer f.refmu.Unlock()
	return f.refcount
}

// Block is an owning handle to one tile's worth of film elements,
// released exactly once via Sensor.ReleaseSensorBlock.
type Block struct {
	X0, Y0, Z0 uint32
	W, H, D    uint32
	storage    *FilmStorage
}

// spiral2D returns the block coordinate visited at step n within a
// canvas of blockCols×blockRows blocks, in center-outward spiral order.
//
// Grounded on
// original_source/include/wt/sensor/sensor/film_backed_sensor.hpp's
// detail::spiral2d.
func spiral2D(n int, cols, rows int) (int, int) {
	spiralLength := cols
	if rows < spiralLength {
		spiralLength = rows
	}
	spiralElements := spiralLength * spiralLength
	cx, cy := (cols-1)/2, rows/2

	if n < spiralElements {
		r := int(math.Floor((math.Sqrt(float64(n))-1)/2) + 1.5)
		p := 4 * r * (r - 1)
		en := 2 * r
		a := 0
		if n != 0 {
			a = (n - p) % (8 * r)
			if a < 0 {
				a += 8 * r
			}
		}
		face := 0
		if n != 0 {
			face = int(math.Floor(float64(a)/float64(en) + 0.5))
		}
		var px, py int
		switch face {
		case 0:
			px, py = a-r, -r
		case 1:
			px, py = r, (a%en)-r
		case 2:
			px, py = r-(a%en), r
		case 3:
			px, py = -r, r-(a%en)
		}
		return px + cx, py + cy
	}

	maxDim := 0 // 0 = x is the longer axis
	if rows > cols {
		maxDim = 1
	}
	var spiralMin, spiralMax int
	if maxDim == 0 {
		spiralMin = cy - (rows-1)/2
		spiralMax = cy + rows/2
	} else {
		spiralMin = cx - (cols-1)/2
		spiralMax = cx + cols/2
	}
	idx := n - spiralElements
	row := idx / spiralLength
	var x int
	if row%2 == 1 {
		x = idx % spiralLength
	} else {
		x = spiralLength - 1 - idx%spiralLength
	}
	var y int
	if row%2 == 1 {
		y = spiralMax + row/2 + 1
	} else {
		y = spiralMin - row/2 - 1
	}
	dim := cols
	if maxDim == 1 {
		dim = rows
	}
	y = ((y % dim) + dim) % dim

	if maxDim == 0 {
		return x, y
	}
	return y, x
}
