// Package decode transforms PNG tile bytes into a fixed-size 256x256 8-bit
// RGB pixel buffer. It is the Go translation of osymandias's pngloader.c,
// minus the thread-local libpng arena (that was an allocator optimization,
// not part of the contract — SPEC_FULL.md §9 / spec.md Design Notes says the
// decoder may allocate per call as long as it stays reentrant).
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// ErrWrongSize is returned when a PNG decodes successfully but is not
// exactly tile.Size x tile.Size pixels.
var ErrWrongSize = errors.New("decode: tile is not 256x256")

// Bitmap is a decoded tile: densely packed row-major 8-bit RGB, top-down,
// tile.Size*tile.Size*3 bytes. It normalizes every PNG color type (palette,
// grayscale with or without alpha, sub-8-bit depths) to plain RGB with no
// alpha channel, matching spec.md §4.B and §6's wire-format contract.
type Bitmap struct {
	Width, Height int
	Pix           []byte // len == Width*Height*3
}

const tileSize = 256

// Decode parses a PNG byte stream and returns its normalized RGB pixels.
// The input must begin with the PNG signature and decode to exactly
// 256x256; anything else is a DecodeError (malformed stream, wrong
// dimensions) reported through a plain Go error. Decode carries no
// process-wide state and is safe to call concurrently from many workers.
func Decode(data []byte) (*Bitmap, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	b := img.Bounds()
	if b.Dx() != tileSize || b.Dy() != tileSize {
		return nil, fmt.Errorf("%w: got %dx%d", ErrWrongSize, b.Dx(), b.Dy())
	}

	return &Bitmap{
		Width:  tileSize,
		Height: tileSize,
		Pix:    toRGB(img, b),
	}, nil
}

// toRGB normalizes any image.Image color model to packed 8-bit RGB rows,
// stripping alpha and upsampling palette/grayscale/sub-8-bit sources the way
// png.Decode's color.Model conversions already do internally — draw.Draw
// with draw.Src onto a non-premultiplied *image.NRGBA forces exactly that
// conversion, which is the standard-library equivalent of pngloader.c's
// png_set_palette_to_rgb / png_set_expand_gray_1_2_4_to_8 /
// png_set_strip_alpha chain.
func toRGB(img image.Image, b image.Rectangle) []byte {
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	pix := make([]byte, b.Dx()*b.Dy()*3)
	for y := 0; y < b.Dy(); y++ {
		srcRow := rgba.Pix[y*rgba.Stride : y*rgba.Stride+b.Dx()*4]
		dstRow := pix[y*b.Dx()*3 : (y+1)*b.Dx()*3]
		for x := 0; x < b.Dx(); x++ {
			dstRow[x*3+0] = srcRow[x*4+0]
			dstRow[x*3+1] = srcRow[x*4+1]
			dstRow[x*3+2] = srcRow[x*4+2]
		}
	}
	return pix
}
