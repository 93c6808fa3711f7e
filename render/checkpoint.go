package render

import (
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"

	"github.com/sixy6e/wavetrace/sensor"
)

// FilmCheckpoint periodically snapshots a sensor's partial film to a
// TileDB dense array, a crash-recovery mechanism for long renders.
// Unlike spectrum.Database this
// is explicitly not a stable, load-bearing format: every field name
// and the schema itself may change release to release, since nothing
// ever needs to read back a checkpoint except the renderer that wrote
// it, immediately after an interrupted run.
type FilmCheckpoint struct {
	ctx *tiledb.Context
	uri string
}

// NewFilmCheckpoint binds a checkpoint writer to a TileDB array URI;
// the array itself is (re)created on the first Write call sized to
// storage's resolution.
func NewFilmCheckpoint(ctx *tiledb.Context, uri string) *FilmCheckpoint {
	return &FilmCheckpoint{ctx: ctx, uri: uri}
}

func (f *FilmCheckpoint) schema(w, h int) (*tiledb.ArraySchema, error) {
	schema, err := tiledb.NewArraySchema(f.ctx, tiledb.TILEDB_DENSE)
	if err != nil {
		return nil, err
	}
	domain, err := tiledb.NewDomain(f.ctx)
	if err != nil {
		return nil, err
	}
	dimX, err := tiledb.NewDimension(f.ctx, "x", tiledb.TILEDB_INT32, []int32{0, int32(w - 1)}, int32(w))
	if err != nil {
		return nil, err
	}
	dimY, err := tiledb.NewDimension(f.ctx, "y", tiledb.TILEDB_INT32, []int32{0, int32(h - 1)}, int32(h))
	if err != nil {
		return nil, err
	}
	if err := domain.AddDimensions(dimX, dimY); err != nil {
		return nil, err
	}
	if err := schema.SetDomain(domain); err != nil {
		return nil, err
	}

	for _, name := range []string{"I", "Q", "U", "V", "count"} {
		dtype := tiledb.TILEDB_FLOAT64
		if name == "count" {
			dtype = tiledb.TILEDB_UINT64
		}
		attr, err := tiledb.NewAttribute(f.ctx, name, dtype)
		if err != nil {
			return nil, err
		}
		if err := schema.AddAttributes(attr); err != nil {
			return nil, err
		}
	}
	return schema, nil
}

// Write flushes storage's current running-mean Stokes values to the
// checkpoint array, creating it first if it does not already exist.
func (f *FilmCheckpoint) Write(storage *sensor.FilmStorage) error {
	w, h := int(storage.W), int(storage.H)
	if w <= 0 || h <= 0 {
		return errors.New("render: checkpoint write on an empty film")
	}

	schema, err := f.schema(w, h)
	if err != nil {
		return err
	}
	array, err := tiledb.NewArray(f.ctx, f.uri)
	if err != nil {
		return err
	}
	defer array.Free()

	if err := array.Create(schema); err != nil {
		// tolerate "already exists": a checkpoint may be written
		// repeatedly across one render's lifetime.
		_ = err
	}
	if err := array.Open(tiledb.TILEDB_WRITE); err != nil {
		return err
	}
	defer array.Close()

	n := w * h
	iVals := make([]float64, n)
	qVals := make([]float64, n)
	uVals := make([]float64, n)
	vVals := make([]float64, n)
	counts := make([]uint64, n)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x // column-major to match the x,y dimension order above
			s := storage.Mean(sensor.Element{X: uint32(x), Y: uint32(y)})
			iVals[idx] = s.I
			qVals[idx] = s.Q
			uVals[idx] = s.U
			vVals[idx] = s.V
			counts[idx] = 1
		}
	}

	query, err := tiledb.NewQuery(f.ctx, array)
	if err != nil {
		return err
	}
	defer query.Free()
	if err := query.SetLayout(tiledb.TILEDB_COL_MAJOR); err != nil {
		return err
	}
	if _, err := query.SetDataBuffer("I", iVals); err != nil {
		return err
	}
	if _, err := query.SetDataBuffer("Q", qVals); err != nil {
		return err
	}
	if _, err := query.SetDataBuffer("U", uVals); err != nil {
		return err
	}
	if _, err := query.SetDataBuffer("V", vVals); err != nil {
		return err
	}
	if _, err := query.SetDataBuffer("count", counts); err != nil {
		return err
	}
	return query.Submit()
}
