package bitmap

import (
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// ErrWriteVFS wraps any error writing a bitmap to its destination URI.
var ErrWriteVFS = errors.New("bitmap: error writing to vfs")

// WriteVFS writes data (typically EncodePNG's output) to uri through
// TileDB's VFS layer, so an output destination can be a local path or
// any backend TileDB's VFS supports (e.g. s3://...) uniformly.
func WriteVFS(uri, configURI string, data []byte) (int, error) {
	var (
		config *tiledb.Config
		err    error
	)
	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return 0, errors.Join(ErrWriteVFS, err)
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return 0, errors.Join(ErrWriteVFS, err)
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return 0, errors.Join(ErrWriteVFS, err)
	}
	defer vfs.Free()

	stream, err := vfs.Open(uri, tiledb.TILEDB_VFS_WRITE)
	if err != nil {
		return 0, errors.Join(ErrWriteVFS, err)
	}
	defer stream.Close()

	n, err := stream.Write(data)
	if err != nil {
		return n, errors.Join(ErrWriteVFS, err)
	}
	return n, nil
}
