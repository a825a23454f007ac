// Package render is the thin render-thread collaborator named in
// SPEC_FULL.md §11: an ebiten.Game that owns the paint loop, the tile
// picker, and pan/zoom input, and calls into the bitmap/texture cache
// pipeline once per visible address every frame. It is deliberately small —
// the interface onto the pipeline, not a feature of its own — following
// goliath's own Goliath.Update/Draw/Layout shape, stripped of every concern
// (vector editing, layers, KML styling) the pipeline itself doesn't own.
package render

import (
	"context"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/osymandias-go/slippymap/bitmapcache"
	"github.com/osymandias-go/slippymap/config"
	"github.com/osymandias-go/slippymap/store"
	"github.com/osymandias-go/slippymap/texturecache"
	"github.com/osymandias-go/slippymap/tile"
	"github.com/osymandias-go/slippymap/tilemap"
)

// backgroundColor fills the area behind tiles that have no texture at all
// yet, not even from an ancestor — the "blank background underneath" spec.md
// §7 names as the worst-case, never-a-crash degradation.
var backgroundColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}

// Game wires the tile delivery pipeline to an ebiten run loop.
type Game struct {
	view     *tilemap.TileMap
	bitmaps  *bitmapcache.Cache
	textures *texturecache.Cache
	repaint  *RepaintSignal

	debug bool

	dragging   bool
	lastMouseX int
	lastMouseY int
}

// New builds a Game backed by a fresh bitmap/texture cache pair, reading a
// tile store through cfg's configured pipeline sizing.
func New(cfg *config.Config, st store.Store, screenWidth, screenHeight int, centerLat, centerLon float64, zoom int) *Game {
	repaint := NewRepaintSignal()

	bitmaps := bitmapcache.New(bitmapcache.Config{
		Capacity:        cfg.BitmapCache.Capacity,
		NumWorkers:      cfg.Workers.NumWorkers,
		QueueCapacity:   cfg.Workers.QueueCapacity,
		Store:           st,
		RepaintNotifier: repaint,
	})

	textures := texturecache.New(texturecache.Config{
		Capacity: cfg.TextureCache.Capacity,
		Bitmaps:  bitmaps,
	})

	return &Game{
		view:     tilemap.New(screenWidth, screenHeight, centerLat, centerLon, zoom),
		bitmaps:  bitmaps,
		textures: textures,
		repaint:  repaint,
	}
}

// Close shuts down the worker pool and releases cache resources.
func (g *Game) Close() {
	g.textures.Close()
	g.bitmaps.Close()
}

// Update handles pan/zoom input and drains the repaint signal. ebiten calls
// Draw every frame regardless, so draining the signal here exists only to
// give the game loop a place to hook frame-accurate repaint accounting
// (Drain's result is currently discarded), not to gate drawing itself —
// the render thread never blocks waiting on it, per spec.md §5.
func (g *Game) Update() error {
	g.repaint.Drain()

	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug = !g.debug
	}

	g.handlePan()
	g.handleZoom()

	return nil
}

func (g *Game) handlePan() {
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowLeft):
		g.view.Pan(tilemap.PanLeft)
	case ebiten.IsKeyPressed(ebiten.KeyArrowRight):
		g.view.Pan(tilemap.PanRight)
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp):
		g.view.Pan(tilemap.PanUp)
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown):
		g.view.Pan(tilemap.PanDown)
	}

	dragging := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) ||
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	mouseX, mouseY := ebiten.CursorPosition()

	switch {
	case dragging && !g.dragging:
		g.dragging = true
		g.lastMouseX, g.lastMouseY = mouseX, mouseY

	case dragging && g.dragging:
		// PanBy's dx/dy are screen-pixel deltas applied to the current
		// center, so only the delta since the last frame is passed —
		// passing the delta from drag start every frame would re-apply
		// the whole drag distance on top of whatever panning already
		// happened in between.
		g.view.PanBy(float64(mouseX-g.lastMouseX), float64(mouseY-g.lastMouseY))
		g.lastMouseX, g.lastMouseY = mouseX, mouseY

	default:
		g.dragging = false
	}
}

func (g *Game) handleZoom() {
	_, scrollY := ebiten.Wheel()
	if scrollY != 0 {
		mouseX, mouseY := ebiten.CursorPosition()
		g.view.ZoomAtPoint(scrollY > 0, float64(mouseX), float64(mouseY))
	}

	// +/- step the zoom level around the current center, independent of the
	// cursor, for keyboard-only navigation: the scroll wheel already covers
	// cursor-anchored zoom via ZoomAtPoint above.
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.view.ZoomIn()
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.view.ZoomOut()
	}
}

// Draw resolves and paints every currently visible tile address, falling
// back to the background color where not even an ancestor texture exists
// yet. Each distinct texture (an exact tile or a shared coarser ancestor) is
// uploaded to the screen at most once per frame even when several visible
// addresses resolve to the same ancestor.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	_, centerX, centerY := g.view.CalculateVisibleTileRange()
	scale := float64(uint(1) << uint(g.view.Zoom))

	drawn := make(map[tile.Address]bool)
	ctx := context.Background()

	for _, addr := range g.view.VisibleAddresses() {
		img, out, bounds, ok := g.textures.Resolve(ctx, addr)
		if !ok || drawn[out] {
			continue
		}
		drawn[out] = true

		levelScale := scale / float64(uint(1)<<uint(out.Z))
		x0, y0 := g.view.ScreenPosition(bounds.MinX*levelScale, bounds.MinY*levelScale, centerX, centerY)
		size := (bounds.MaxX - bounds.MinX) * levelScale * tilemap.TileSize

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(size/tilemap.TileSize, size/tilemap.TileSize)
		op.GeoM.Translate(x0, y0)
		screen.DrawImage(img, op)
	}

	if g.debug {
		g.drawDebugOverlay(screen)
	}
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image) {
	bs := g.bitmaps.Stats()
	ts := g.textures.Stats()
	ebitenutil.DebugPrint(screen, formatStats(g.view, bs, ts))
}

// Layout resizes the viewport to match the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.view.ScreenWidth = outsideWidth
	g.view.ScreenHeight = outsideHeight
	return outsideWidth, outsideHeight
}
