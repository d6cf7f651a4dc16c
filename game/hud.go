package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/phanxgames/zammi"
	"github.com/phanxgames/zammi/catch"
	"github.com/phanxgames/zammi/landmark"
)

var appleColors = map[catch.Kind]color.Color{
	catch.Yellow: color.RGBA{250, 220, 40, 255},
	catch.Green:  color.RGBA{80, 200, 80, 255},
	catch.Red:    color.RGBA{220, 40, 40, 255},
}

func (g *Game) drawChallenge(screen *ebiten.Image) {
	r := g.run
	if f, ok := g.source.(landmark.Framer); ok {
		drawFitted(screen, g.view.camera.set(f.Frame()))
	} else {
		screen.Fill(colorPanel)
	}

	if w := r.catchWorld(); w != nil {
		g.drawCatch(screen, w)
	} else {
		g.drawPoseHUD(screen)
	}

	if r.banner > 0 {
		g.drawBanner(screen, "SUCCESS!", r.bannerScale, colorSuccess)
	}
}

// drawPoseHUD draws the target, the live skeleton, similarity readouts and
// the progress bar.
func (g *Game) drawPoseHUD(screen *ebiten.Image) {
	r := g.run
	if r.sil != nil {
		h := g.win.Height * 0.8
		w := h * float64(r.sil.Bounds().Dx()) / float64(r.sil.Bounds().Dy())
		drawCentered(screen, r.sil, zammi.Vec2{X: g.win.Width / 2, Y: g.win.Height / 2}, w, h)
	}
	drawSkeleton(screen, r.target, g.win, colorTarget)
	drawSkeleton(screen, r.live, g.win, colorLive)

	res := r.last
	x, y := 24.0, 24.0
	drawText(screen, r.ch.Name(), g.view.hud, x, y, colorText, text.AlignStart)
	y += sizeHUD * 1.4
	if res.Stages > 1 {
		drawText(screen, fmt.Sprintf("Stage %d/%d", res.Stage+1, res.Stages), g.view.hud, x, y, colorText, text.AlignStart)
		y += sizeHUD * 1.4
	}
	drawText(screen, fmt.Sprintf("Similarity: %.0f%%", res.Score*100), g.view.hud, x, y, colorText, text.AlignStart)
	y += sizeHUD * 1.4
	drawText(screen, fmt.Sprintf("Need: %.0f%%", res.Threshold*100), g.view.hud, x, y, colorText, text.AlignStart)
	y += sizeHUD * 1.4
	drawText(screen, fmt.Sprintf("Hold: %d/%d", res.Streak, res.Required), g.view.hud, x, y, colorText, text.AlignStart)

	g.drawProgress(screen, r.shown, res.Threshold)
}

// drawProgress draws a bar filled to value with a mark at threshold.
func (g *Game) drawProgress(screen *ebiten.Image, value, threshold float64) {
	bar := zammi.Rect{
		X:      g.win.Width * 0.2,
		Y:      g.win.Height - 60,
		Width:  g.win.Width * 0.6,
		Height: 24,
	}
	fillRect(screen, bar, colorBar)
	fill := bar
	fill.Width = bar.Width * zammi.Clamp(value, 0, 1)
	clr := colorFail
	if value >= threshold {
		clr = colorSuccess
	}
	fillRect(screen, fill, clr)
	strokeRect(screen, bar, 2, colorBorder)
	tx := bar.X + bar.Width*threshold
	line(screen, zammi.Vec2{X: tx, Y: bar.Y - 6}, zammi.Vec2{X: tx, Y: bar.Y + bar.Height + 6}, 3, colorText)
}

// drawCatch draws the apple world letterboxed into the window.
func (g *Game) drawCatch(screen *ebiten.Image, w *catch.World) {
	rules := w.Rules()
	scale := min(g.win.Width/rules.Screen.Width, g.win.Height/rules.Screen.Height)
	off := zammi.Vec2{
		X: (g.win.Width - rules.Screen.Width*scale) / 2,
		Y: (g.win.Height - rules.Screen.Height*scale) / 2,
	}
	toScreen := func(r zammi.Rect) zammi.Rect {
		return zammi.Rect{X: off.X + r.X*scale, Y: off.Y + r.Y*scale, Width: r.Width * scale, Height: r.Height * scale}
	}
	strokeRect(screen, toScreen(zammi.Rect{Width: rules.Screen.Width, Height: rules.Screen.Height}), 2, colorBorder)

	for _, a := range w.Apples() {
		r := toScreen(a.Rect())
		fillCircle(screen, r.Center(), r.Width/2, appleColors[a.Kind])
	}
	basket := toScreen(w.Basket())
	fillRect(screen, basket, color.RGBA{140, 90, 40, 255})
	strokeRect(screen, basket, 2, colorBorder)

	x, y := off.X+16, off.Y+16
	drawText(screen, fmt.Sprintf("Score: %d/%d", w.Score(), rules.Goal), g.view.hud, x, y, colorText, text.AlignStart)
	drawText(screen, fmt.Sprintf("Miss: %d/%d", w.Misses(), rules.MaxMisses), g.view.hud, x, y+sizeHUD*1.4, colorText, text.AlignStart)
	if _, ok := g.run.ch.(*catch.Challenge).Hand(); !ok {
		drawText(screen, "Move Hand to Control", g.view.hud, g.win.Width/2, off.Y+16, colorText, text.AlignCenter)
	}

	if !w.Over() {
		return
	}
	if w.Won() {
		g.drawBanner(screen, "Victory!", 1, colorSuccess)
		return
	}
	g.drawBanner(screen, "Game Over!", 1, colorFail)
	drawText(screen, "R to retry, Esc to leave", g.view.hud, g.win.Width/2, g.win.Height/2+sizeBanner, colorText, text.AlignCenter)
}

// drawBanner draws large centered text scaled about the window center.
func (g *Game) drawBanner(screen *ebiten.Image, s string, scale float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(g.win.Width/2, g.win.Height/2)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, g.view.banner, op)
}
