package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsWidget shows the current FPS and TPS. The text is redrawn about every
// half second onto its own image.
type fpsWidget struct {
	img     *ebiten.Image
	elapsed float64
}

func (w *fpsWidget) draw(screen *ebiten.Image, dt float64, x, y int) {
	if w.img == nil {
		// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
		w.img = ebiten.NewImage(100, 32)
		w.elapsed = 0.5
	}
	w.elapsed += dt
	if w.elapsed >= 0.5 {
		w.elapsed = 0
		w.img.Clear()
		w.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(w.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(w.img, op)
}

func (g *Game) drawFPS(screen *ebiten.Image) {
	g.fps.draw(screen, float64(tickSeconds(g.tps)), int(g.win.Width)-104, 4)
}
