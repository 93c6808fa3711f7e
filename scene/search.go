package scene

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// AssetStore resolves and reads scene assets (meshes, spectra) through
// TileDB's VFS, so a scene file can reference local paths or object-store
// URIs uniformly: trawl walks a VFS tree for matching basenames, ReadAll
// reads a single URI fully into memory.
type AssetStore struct {
	config *tiledb.Config
	ctx    *tiledb.Context
	vfs    *tiledb.VFS
}

// NewAssetStore opens a TileDB VFS rooted at no particular URI (VFS
// operations take a URI per call); configURI, if non-empty, loads a TileDB
// config file instead of the default in-process config.
func NewAssetStore(configURI string) (*AssetStore, error) {
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
		return nil, fmt.Errorf("scene: tiledb config: %w", err)
	}

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		config.Free()
		return nil, fmt.Errorf("scene: tiledb context: %w", err)
	}

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		ctx.Free()
		config.Free()
		return nil, fmt.Errorf("scene: tiledb vfs: %w", err)
	}

	return &AssetStore{config: config, ctx: ctx, vfs: vfs}, nil
}

// Close releases the underlying TileDB handles.
func (a *AssetStore) Close() {
	a.vfs.Free()
	a.ctx.Free()
	a.config.Free()
}

// trawl recursively walks uri for files whose basename matches pattern,
// returning VFS errors to the caller instead of panicking.
func trawl(vfs *tiledb.VFS, pattern, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return items, err
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			return items, err
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items, err = trawl(vfs, pattern, dir, items)
		if err != nil {
			return items, err
		}
	}

	return items, nil
}

// Find recursively searches root for files whose basename matches pattern
// (e.g. "*.obj").
func (a *AssetStore) Find(root, pattern string) ([]string, error) {
	return trawl(a.vfs, pattern, root, nil)
}

// ReadAll opens uri and reads it fully into memory, following
// GenericStream's in-memory branch (reader.go): scene assets (meshes,
// spectral curves) are small enough that the streamed, seekable path
// file.go uses for multi-gigabyte sonar logs isn't warranted here.
func (a *AssetStore) ReadAll(uri string) ([]byte, error) {
	handler, err := a.vfs.Open(uri, tiledb.TILEDB_VFS_READ)
	if err != nil {
		return nil, fmt.Errorf("scene: opening asset %q: %w", uri, err)
	}
	defer handler.Close()

	size, err := a.vfs.FileSize(uri)
	if err != nil {
		return nil, fmt.Errorf("scene: stat asset %q: %w", uri, err)
	}

	buf := make([]byte, size)
	if err := binary.Read(handler, binary.BigEndian, &buf); err != nil {
		return nil, fmt.Errorf("scene: reading asset %q: %w", uri, err)
	}
	return buf, nil
}

// Reader opens uri as a seekable in-memory reader, for callers (the OBJ
// mesh parser) that want bufio.Scanner/io.Reader rather than a raw []byte.
func (a *AssetStore) Reader(uri string) (*bytes.Reader, error) {
	buf, err := a.ReadAll(uri)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(buf), nil
}
