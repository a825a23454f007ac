// Command slippymap runs the tile delivery pipeline's demo viewer: a single
// ebiten window that pans and zooms over tiles read from a local on-disk
// store, through the bitmap and texture cache pipeline.
package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/osymandias-go/slippymap/config"
	"github.com/osymandias-go/slippymap/render"
	"github.com/osymandias-go/slippymap/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st := store.NewFileStore(cfg.Store.Root, nil)

	const screenWidth, screenHeight = 1024, 768
	g := render.New(cfg, st, screenWidth, screenHeight, 39.8283, -98.5795, 5)
	defer g.Close()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("slippymap")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
