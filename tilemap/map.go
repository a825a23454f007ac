// Package tilemap tracks the viewport's map state — center latitude and
// longitude, zoom level, and screen size — and the pan/zoom math that
// derives a visible tile range from it. It holds no tile data of its own:
// fetching, decoding and caching belong to store, decode, bitmapcache and
// texturecache; tilemap only knows where on the globe the viewport is
// pointed.
package tilemap

import (
	"math"

	"github.com/osymandias-go/slippymap/tile"
)

// TileSize is the size of map tiles in pixels.
const TileSize = tile.Size

// MaxZoomLevel is the maximum zoom level supported.
const MaxZoomLevel = tile.MaxZoom

// TileRange is the inclusive range of tile indices needed to cover the
// viewport at one zoom level.
type TileRange struct {
	MinX, MaxX int
	MinY, MaxY int
}

// TileMap holds the viewport's view state: where the map is centered, how
// far zoomed in, and how big the screen is.
type TileMap struct {
	CenterLat    float64
	CenterLon    float64
	Zoom         int
	ScreenWidth  int
	ScreenHeight int
}

// New creates a TileMap centered at (lat, lon) at the given zoom level.
func New(screenWidth, screenHeight int, lat, lon float64, zoom int) *TileMap {
	return &TileMap{
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
		CenterLat:    lat,
		CenterLon:    lon,
		Zoom:         zoom,
	}
}

// CalculateVisibleTileRange determines which tiles are needed for the
// current view, along with the viewport center expressed in fractional
// tile coordinates at the current zoom.
func (tm *TileMap) CalculateVisibleTileRange() (TileRange, float64, float64) {
	centerXTileF, centerYTileF := LatLonToTileFloat(tm.CenterLat, tm.CenterLon, tm.Zoom)

	topLeftXTileF := centerXTileF - float64(tm.ScreenWidth)/2.0/TileSize
	topLeftYTileF := centerYTileF - float64(tm.ScreenHeight)/2.0/TileSize
	bottomRightXTileF := centerXTileF + float64(tm.ScreenWidth)/2.0/TileSize
	bottomRightYTileF := centerYTileF + float64(tm.ScreenHeight)/2.0/TileSize

	minTileX := int(math.Floor(topLeftXTileF))
	minTileY := int(math.Floor(topLeftYTileF))
	maxTileX := int(math.Floor(bottomRightXTileF))
	maxTileY := int(math.Floor(bottomRightYTileF))

	maxCoord := 1 << tm.Zoom
	return TileRange{
		MinX: max(0, minTileX),
		MaxX: min(maxCoord-1, maxTileX),
		MinY: max(0, minTileY),
		MaxY: min(maxCoord-1, maxTileY),
	}, centerXTileF, centerYTileF
}

// VisibleAddresses enumerates every tile.Address the current viewport needs,
// the tile picker's contract named in spec.md §6 ("addresses (z,x,y) are
// enumerated each frame; each is passed to the cache lookup").
func (tm *TileMap) VisibleAddresses() []tile.Address {
	r, _, _ := tm.CalculateVisibleTileRange()
	addrs := make([]tile.Address, 0, (r.MaxX-r.MinX+1)*(r.MaxY-r.MinY+1))
	for ty := r.MinY; ty <= r.MaxY; ty++ {
		for tx := r.MinX; tx <= r.MaxX; tx++ {
			addrs = append(addrs, tile.Address{Z: uint32(tm.Zoom), X: uint32(tx), Y: uint32(ty)})
		}
	}
	return addrs
}

// ScreenPosition returns the top-left screen pixel coordinates at which a
// tile-unit position at the current zoom should be drawn, given the
// viewport center already expressed in fractional tile coordinates (as
// returned by CalculateVisibleTileRange) to avoid recomputing it per tile.
// tx, ty need not be integers: a coarser ancestor tile's corner, rescaled to
// the current zoom's tile units, lands on a fractional position.
func (tm *TileMap) ScreenPosition(tx, ty float64, centerXTileF, centerYTileF float64) (x, y float64) {
	x = float64(tm.ScreenWidth)/2 - (centerXTileF-tx)*TileSize
	y = float64(tm.ScreenHeight)/2 - (centerYTileF-ty)*TileSize
	return x, y
}

// LatLonToTileFloat converts WGS84 coordinates to fractional tile
// coordinates.
func LatLonToTileFloat(lat, lon float64, zoom int) (x, y float64) {
	latRad := lat * math.Pi / 180.0
	n := math.Pow(2.0, float64(zoom))
	x = (lon + 180.0) / 360.0 * n
	latRad = math.Max(math.Min(latRad, 1.48442), -1.48442)
	y = (1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n
	return x, y
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
