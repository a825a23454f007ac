// Package tile defines the coordinate system shared by every stage of the
// tile delivery pipeline: the store, the decoder, the worker pool and the
// cache all speak in terms of tile.Address.
package tile

import "fmt"

// MaxZoom is the coarsest-to-finest zoom ceiling the pipeline supports.
// Zoom 0 is the single root tile covering the whole world.
const MaxZoom = 19

// Size is the pixel width and height of every tile, in both directions.
const Size = 256

// Address identifies one tile: zoom level Z and indices X, Y with
// 0 <= X, Y < 2^Z.
type Address struct {
	Z uint32
	X uint32
	Y uint32
}

// Width returns 2^Z, the number of tiles along one edge at this zoom level.
func (a Address) Width() uint32 {
	return uint32(1) << a.Z
}

// Valid reports whether the address is within [0, MaxZoom] and its X, Y
// indices fall inside the tile grid for its zoom level.
func (a Address) Valid() bool {
	if a.Z > MaxZoom {
		return false
	}
	w := a.Width()
	return a.X < w && a.Y < w
}

// Key packs X and Y into a single 64-bit value, suitable for hashing or
// equality comparison of addresses known to share a zoom level.
func (a Address) Key() uint64 {
	return uint64(a.X)<<32 | uint64(a.Y)
}

// Ascend returns the unique ancestor one zoom level coarser that
// geometrically contains a, and true, provided a.Z > 0. At a.Z == 0 it
// returns the zero value and false: the root has no ancestor.
func (a Address) Ascend() (Address, bool) {
	if a.Z == 0 {
		return Address{}, false
	}
	return Address{Z: a.Z - 1, X: a.X >> 1, Y: a.Y >> 1}, true
}

func (a Address) String() string {
	return fmt.Sprintf("%d/%d/%d", a.Z, a.X, a.Y)
}
