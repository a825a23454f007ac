// Package texturecache holds GPU-resident texture handles, keyed the same
// way the bitmap cache is, and implements the render-thread resolution walk
// of spec.md §4.D.4: for each visible tile address, prefer an existing
// texture, but replace it with a freshly uploaded one whenever the bitmap
// cache holds something at a strictly finer zoom. It is the Go translation
// of the texture half of osymandias's cache.c/bitmap_cache.c pairing, reusing
// cache.Cache exactly as bitmapcache does, with *ebiten.Image standing in for
// the GPU handle, matching goliath's own TileImageCache storing
// *ebiten.Image per tile.
package texturecache

import (
	"context"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/osymandias-go/slippymap/bitmapcache"
	"github.com/osymandias-go/slippymap/cache"
	"github.com/osymandias-go/slippymap/decode"
	"github.com/osymandias-go/slippymap/tile"
)

// Bounds are a tile's world-space corners, in tile units at the address's
// own zoom: (X, Y) to (X+1, Y+1). Callers scale by 2^zoom themselves when
// relating bounds from different zooms, the same convention goliath's
// tilemap package uses for its own center/pan/zoom math.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func addrBounds(addr tile.Address) Bounds {
	return Bounds{
		MinX: float64(addr.X),
		MinY: float64(addr.Y),
		MaxX: float64(addr.X + 1),
		MaxY: float64(addr.Y + 1),
	}
}

// texture is the cache entry: an opaque GPU handle plus the world-space
// corners it was uploaded for.
type texture struct {
	img    *ebiten.Image
	bounds Bounds
}

// Cache is the texture cache. It is touched only from the render thread and
// takes no lock of its own (spec.md §5: "the texture cache is touched only
// by the render thread and requires no locking"); the bitmap cache's own
// mutex, held for the duration of Resolve's bitmap search and upload, is
// what protects the cross-cache interaction.
type Cache struct {
	c       *cache.Cache[texture]
	bitmaps *bitmapcache.Cache
	upload  func(*decode.Bitmap) *ebiten.Image
}

// Config bundles the dependencies a Cache needs.
type Config struct {
	Capacity int
	Bitmaps  *bitmapcache.Cache

	// Upload produces the GPU handle for a decoded bitmap. Defaults to
	// uploadReal (ebiten.NewImageFromImage). Tests that have no graphics
	// context available substitute a fake here.
	Upload func(*decode.Bitmap) *ebiten.Image
}

// New builds a texture cache of the given capacity, backed by bitmaps for
// its bitmap-to-texture uploads.
func New(cfg Config) *Cache {
	upload := cfg.Upload
	if upload == nil {
		upload = uploadReal
	}
	return &Cache{
		c: cache.New[texture](cfg.Capacity, func(texture) {
			// No-op: Go's GC reclaims *ebiten.Image once nothing holds a
			// reference to it. goliath's own TileImageCache never disposes
			// its *ebiten.Image values either.
		}),
		bitmaps: cfg.Bitmaps,
		upload:  upload,
	}
}

// Resolve implements spec.md §4.D.4's texture-cache resolution walk for one
// visible tile address. It returns the best texture currently available —
// possibly an ancestor's — and the address it was uploaded for. A bitmap
// cache miss at addr triggers the usual bitmapcache procurement side effect
// (enqueuing a worker job), exactly as if the render thread had called
// bitmapcache.Cache.Lookup directly.
func (c *Cache) Resolve(ctx context.Context, addr tile.Address) (img *ebiten.Image, out tile.Address, bounds Bounds, ok bool) {
	tex, texOut, texFound := c.c.Search(addr)

	var upgraded bool
	c.bitmaps.WithLock(func() {
		bmp, bmpOut, bmpFound := c.bitmaps.LookupLocked(ctx, addr)
		if !bmpFound {
			return
		}
		// A strictly better match than whatever texture (if any) we already
		// have: upload and install it while still holding the bitmap-cache
		// mutex, so the bitmap cannot be evicted out from under the upload.
		if texFound && bmpOut.Z <= texOut.Z {
			return
		}

		b := addrBounds(bmpOut)
		newImg := c.upload(bmp)
		c.c.Insert(bmpOut, texture{img: newImg, bounds: b})

		img, out, bounds, upgraded = newImg, bmpOut, b, true
	})

	if upgraded {
		return img, out, bounds, true
	}
	if texFound {
		return tex.img, texOut, tex.bounds, true
	}
	return nil, tile.Address{}, Bounds{}, false
}

// uploadReal stands in for the real GPU upload: ebiten.NewImageFromImage
// copies the pixel buffer into a new GPU-backed image, matching how
// goliath's own tile loader produces the *ebiten.Image it caches.
func uploadReal(bmp *decode.Bitmap) *ebiten.Image {
	img := image.NewRGBA(image.Rect(0, 0, bmp.Width, bmp.Height))
	for y := 0; y < bmp.Height; y++ {
		srcRow := bmp.Pix[y*bmp.Width*3 : (y+1)*bmp.Width*3]
		dstRow := img.Pix[y*img.Stride : y*img.Stride+bmp.Width*4]
		for x := 0; x < bmp.Width; x++ {
			dstRow[x*4+0] = srcRow[x*3+0]
			dstRow[x*4+1] = srcRow[x*3+1]
			dstRow[x*4+2] = srcRow[x*3+2]
			dstRow[x*4+3] = 0xff
		}
	}
	return ebiten.NewImageFromImage(img)
}

// Stats exposes the underlying cache's live-node accounting.
func (c *Cache) Stats() cache.Stats {
	return c.c.Stats()
}

// Close releases the underlying cache's resources. It does not touch the
// bitmap cache, which the caller owns independently.
func (c *Cache) Close() {
	c.c.Close()
}
