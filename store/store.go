// Package store resolves a tile address to a readable stream of PNG bytes
// from a local directory tree. It is the Go equivalent of osymandias's
// diskcache.c: a pure, side-effect-free (beyond opening a file handle)
// mapping from (z,x,y) to a path, performing no caching of its own.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/osymandias-go/slippymap/tile"
)

// ErrNotFound is returned for every failure mode the store can hit:
// an out-of-range address, a missing file, or an I/O error opening it.
// spec.md §4.A collapses all three into one outcome because the decoder
// (and everything above it) only distinguishes success from failure.
var ErrNotFound = errors.New("store: tile not found")

// Store resolves a tile address to a byte stream of PNG data.
type Store interface {
	// Open returns a reader for the PNG bytes at addr, or ErrNotFound. The
	// caller owns the returned ReadCloser and must Close it.
	Open(addr tile.Address) (io.ReadCloser, error)
}

// PathFunc maps a tile address to a file path under a store's root. The
// default, DefaultPathFunc, lays tiles out as "{z}/{x}/{y}.png" — the
// template is configuration, not part of the store's contract (spec.md §6).
type PathFunc func(root string, addr tile.Address) string

// DefaultPathFunc is the z/x/y.png layout used when no PathFunc is supplied.
func DefaultPathFunc(root string, addr tile.Address) string {
	return filepath.Join(root,
		fmt.Sprintf("%d", addr.Z),
		fmt.Sprintf("%d", addr.X),
		fmt.Sprintf("%d.png", addr.Y))
}

// FileStore is a Store backed by a directory tree on the local filesystem.
type FileStore struct {
	root string
	path PathFunc
}

// NewFileStore creates a FileStore rooted at root, laying out tiles
// according to path. A nil path uses DefaultPathFunc.
func NewFileStore(root string, path PathFunc) *FileStore {
	if path == nil {
		path = DefaultPathFunc
	}
	return &FileStore{root: root, path: path}
}

// Open implements Store. An address outside [0, 2^z) is rejected before any
// filesystem access; everything else a file open can fail with (missing
// file, permission error, I/O error) collapses to ErrNotFound.
func (s *FileStore) Open(addr tile.Address) (io.ReadCloser, error) {
	if !addr.Valid() {
		return nil, ErrNotFound
	}

	f, err := os.Open(s.path(s.root, addr))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, addr, err)
	}
	return f, nil
}
