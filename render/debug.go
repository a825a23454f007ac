package render

import (
	"fmt"

	"github.com/osymandias-go/slippymap/cache"
	"github.com/osymandias-go/slippymap/tilemap"
)

// formatStats renders the cache statistics SPEC_FULL.md §12 adds as an
// observability surface (original_source's framerate.c had no distilled-spec
// equivalent) into the debug overlay's text.
func formatStats(view *tilemap.TileMap, bitmaps, textures cache.Stats) string {
	return fmt.Sprintf(
		"zoom %d  center %.5f,%.5f\nbitmaps %d/%d  textures %d/%d\nF3 toggles this overlay",
		view.Zoom, view.CenterLat, view.CenterLon,
		bitmaps.Used, bitmaps.Capacity,
		textures.Used, textures.Capacity,
	)
}
