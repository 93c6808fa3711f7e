package spectrum

import (
	"errors"
	"fmt"
	"sort"

	tiledb "github.com/TileDB-Inc/TileDB-Go"

	"github.com/sixy6e/wavetrace/quantity"
)

// ErrCreateSpectrumTdb and ErrWriteSpectrumTdb are the sentinel errors
// joined with the underlying cause via errors.Join for the spectral
// database's array lifecycle operations.
var (
	ErrCreateSpectrumTdb = errors.New("error creating spectrum tiledb array")
	ErrWriteSpectrumTdb  = errors.New("error writing spectrum tiledb array")
	ErrReadSpectrumTdb   = errors.New("error reading spectrum tiledb array")
	ErrSpectrumNotFound  = errors.New("spectrum not found in database")
)

// curveRow is one named spectral curve's row, dense-indexed by
// wavenumber sample: one row per named material/emitter/sensor curve.
type curveRow struct {
	K []float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=9)"`
	V []float64 `tiledb:"dtype=float64,ftype=attr" filters:"zstd(level=9)"`
}

// Database is a TileDB-array-backed store of named spectral curves —
// keyed by material/emitter/sensor name, loaded once at scene-build
// time and shared read-only thereafter, the same immutable-after-build
// lifecycle the ADS and scene follow.
type Database struct {
	ctx     *tiledb.Context
	uri     string
	cache   map[string]*PiecewiseLinear
	order   []string
}

// OpenDatabase opens (without creating) a TileDB group of 1D dense
// arrays at uri, one array per curve name.
func OpenDatabase(ctx *tiledb.Context, uri string) *Database {
	return &Database{ctx: ctx, uri: uri, cache: make(map[string]*PiecewiseLinear)}
}

func (d *Database) arrayURI(name string) string {
	return fmt.Sprintf("%s/%s", d.uri, name)
}

// Load fetches a named curve, reading it from the backing TileDB array
// on first use and caching the decoded PiecewiseLinear for subsequent
// lookups (materials frequently share a spectrum, e.g. a common IOR
// curve).
func (d *Database) Load(name string) (*PiecewiseLinear, error) {
	if cur, ok := d.cache[name]; ok {
		return cur, nil
	}

	array, err := arrayOpen(d.ctx, d.arrayURI(name), tiledb.TILEDB_READ)
	if err != nil {
		return nil, errors.Join(ErrReadSpectrumTdb, ErrSpectrumNotFound, err)
	}
	defer array.Close()
	defer array.Free()

	row, err := readCurveRow(d.ctx, array)
	if err != nil {
		return nil, errors.Join(ErrReadSpectrumTdb, err)
	}

	curve := &PiecewiseLinear{K: make([]quantity.Wavenumber, len(row.K)), V: row.V}
	for i, k := range row.K {
		curve.K[i] = quantity.Wavenumber(k)
	}
	d.cache[name] = curve
	d.order = append(d.order, name)
	sort.Strings(d.order)
	return curve, nil
}

// Store writes a named curve to its backing TileDB array, creating the
// array's schema on first write (a schema-then-create-then-write
// lifecycle).
func (d *Database) Store(name string, curve *PiecewiseLinear) error {
	uri := d.arrayURI(name)

	schema, err := curveSchema(d.ctx, len(curve.K))
	if err != nil {
		return errors.Join(ErrCreateSpectrumTdb, err)
	}
	array, err := tiledb.NewArray(d.ctx, uri)
	if err != nil {
		return errors.Join(ErrCreateSpectrumTdb, err)
	}
	defer array.Free()

	if err := array.Create(schema); err != nil {
		// tolerate "already exists" — curves may be re-stored across
		// scene reloads in the same database.
		_ = err
	}

	if err := array.Open(tiledb.TILEDB_WRITE); err != nil {
		return errors.Join(ErrWriteSpectrumTdb, err)
	}
	defer array.Close()

	row := curveRow{K: make([]float64, len(curve.K)), V: curve.V}
	for i, k := range curve.K {
		row.K[i] = float64(k)
	}
	if err := writeCurveRow(d.ctx, array, row); err != nil {
		return errors.Join(ErrWriteSpectrumTdb, err)
	}

	d.cache[name] = curve
	return nil
}

// arrayOpen opens an existing TileDB array in the given query mode,
// freeing the array handle if Open fails.
func arrayOpen(ctx *tiledb.Context, uri string, mode tiledb.QueryType) (*tiledb.Array, error) {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := array.Open(mode); err != nil {
		array.Free()
		return nil, err
	}
	return array, nil
}

func curveSchema(ctx *tiledb.Context, n int) (*tiledb.ArraySchema, error) {
	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_DENSE)
	if err != nil {
		return nil, err
	}

	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return nil, err
	}
	dim, err := tiledb.NewDimension(ctx, "sample", tiledb.TILEDB_INT32, []int32{0, int32(n - 1)}, int32(n))
	if err != nil {
		return nil, err
	}
	if err := domain.AddDimensions(dim); err != nil {
		return nil, err
	}
	if err := schema.SetDomain(domain); err != nil {
		return nil, err
	}

	for _, name := range []string{"K", "V"} {
		attr, err := tiledb.NewAttribute(ctx, name, tiledb.TILEDB_FLOAT64)
		if err != nil {
			return nil, err
		}
		filterList, err := tiledb.NewFilterList(ctx)
		if err != nil {
			return nil, err
		}
		zstd, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
		if err != nil {
			return nil, err
		}
		if err := zstd.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, int32(9)); err != nil {
			return nil, err
		}
		if err := filterList.AddFilter(zstd); err != nil {
			return nil, err
		}
		if err := attr.SetFilterList(filterList); err != nil {
			return nil, err
		}
		if err := schema.AddAttributes(attr); err != nil {
			return nil, err
		}
	}
	return schema, nil
}

// curveLengthMetadataKey stores the curve's sample count as array
// metadata via array.PutMetadata/GetMetadata, used instead of a
// NonEmptyDomain probe so a reader only needs one round-trip to size
// its buffers.
const curveLengthMetadataKey = "curve_length"

func writeCurveRow(ctx *tiledb.Context, array *tiledb.Array, row curveRow) error {
	if err := array.PutMetadata(curveLengthMetadataKey, int32(len(row.K))); err != nil {
		return err
	}

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return err
	}
	defer query.Free()
	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return err
	}
	if _, err := query.SetDataBuffer("K", row.K); err != nil {
		return err
	}
	if _, err := query.SetDataBuffer("V", row.V); err != nil {
		return err
	}
	return query.Submit()
}

func readCurveRow(ctx *tiledb.Context, array *tiledb.Array) (curveRow, error) {
	_, _, mdVal, err := array.GetMetadata(curveLengthMetadataKey)
	if err != nil {
		return curveRow{}, err
	}
	n, ok := mdVal.(int32)
	if !ok || n <= 0 {
		return curveRow{}, ErrSpectrumNotFound
	}

	row := curveRow{K: make([]float64, n), V: make([]float64, n)}
	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return curveRow{}, err
	}
	defer query.Free()
	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return curveRow{}, err
	}
	if _, err := query.SetDataBuffer("K", row.K); err != nil {
		return curveRow{}, err
	}
	if _, err := query.SetDataBuffer("V", row.V); err != nil {
		return curveRow{}, err
	}
	if err := query.Submit(); err != nil {
		return curveRow{}, err
	}
	return row, nil
}
