package game

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/phanxgames/zammi"
)

// Draw renders the current mode, then the debug overlay, then flushes
// queued screenshots.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.view == nil {
		v, err := newView()
		if err != nil {
			g.log.Error("view init failed", "err", err)
			return
		}
		g.view = v
	}
	switch g.mode {
	case ModeExplore:
		g.drawScene(screen)
		g.drawDialogue(screen)
	case ModeChallenge:
		g.drawChallenge(screen)
	case ModeCutscene:
		drawFitted(screen, g.view.video.set(g.cut.frame))
	case ModeEnded:
		screen.Fill(colorPanel)
		drawText(screen, "The End", g.view.banner, g.win.Width/2, g.win.Height/2-sizeBanner, colorText, text.AlignCenter)
	}
	if g.debug.Enabled {
		g.drawDebug(screen)
	}
	if g.debug.FPS {
		g.drawFPS(screen)
	}
	g.flushScreenshots(screen)
}

func (g *Game) drawScene(screen *ebiten.Image) {
	s := g.scene
	if bg := s.Art.Background; len(bg) > 0 {
		drawFitted(screen, bg[s.BackgroundFrame()%len(bg)])
	} else {
		screen.Fill(colorGround)
	}

	p := s.Player
	if frames := s.Art.Player; len(frames) > 0 {
		drawCentered(screen, frames[p.Frame()%len(frames)], p.Center, p.Size.X, p.Size.Y)
	} else {
		b := p.Bounds()
		fillRect(screen, b, colorPlayerBox)
		strokeRect(screen, b, 2, colorBorder)
	}
}

// drawDialogue draws the active dialogue in the bottom third of the window.
func (g *Game) drawDialogue(screen *ebiten.Image) {
	d := g.scene.Current()
	if d == nil {
		return
	}
	r := d.Region(g.win)
	if d == g.shown {
		r.Y += g.slide
	}
	page := d.Page()

	var img *ebiten.Image
	if page.Image != "" && g.assets != nil {
		var err error
		if img, err = g.assets.Image(page.Image); err != nil {
			g.log.Debug("dialogue image", "image", page.Image, "err", err)
		}
	}
	if img != nil {
		drawCentered(screen, img, r.Center(), r.Width, r.Height)
	} else {
		fillRect(screen, r, colorPanel)
		strokeRect(screen, r, 3, colorBorder)
	}

	const pad = 24
	drawText(screen, page.Text, g.view.body, r.X+pad, r.Y+pad, colorText, text.AlignStart)
	if n := d.PageCount(); n > 1 {
		drawText(screen, pageLabel(d), g.view.body, r.X+r.Width-pad, r.Y+r.Height-pad-sizeBody, colorText, text.AlignEnd)
	}
}

func pageLabel(d *zammi.Dialogue) string {
	return fmt.Sprintf("%d/%d", d.PageIndex()+1, d.PageCount())
}
