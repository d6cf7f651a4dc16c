package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/zammi"
)

// Ruler spacing in screen pixels.
const (
	rulerTick  = 50
	rulerLabel = 100
)

var (
	colorRuler   = color.RGBA{255, 255, 255, 160}
	colorZone    = color.RGBA{0, 200, 255, 200}
	colorZoneHit = color.RGBA{255, 80, 80, 230}
	colorProbe   = color.RGBA{255, 0, 255, 255}
)

// drawDebug draws zone markers, the detection point, rulers and a state
// readout. Nothing here affects game state.
func (g *Game) drawDebug(screen *ebiten.Image) {
	if g.debug.Ruler {
		g.drawRuler(screen)
	}
	if g.mode == ModeExplore {
		g.drawZones(screen)
	}
	ebitenutil.DebugPrintAt(screen, g.debugText(), 8, int(g.win.Height/2))
}

func (g *Game) drawRuler(screen *ebiten.Image) {
	w, h := g.win.Width, g.win.Height
	for x := 0.0; x <= w; x += rulerTick {
		size := 6.0
		if int(x)%rulerLabel == 0 {
			size = 12
			ebitenutil.DebugPrintAt(screen, fmt.Sprint(int(x)), int(x)+2, 12)
		}
		line(screen, zammi.Vec2{X: x}, zammi.Vec2{X: x, Y: size}, 1, colorRuler)
	}
	for y := 0.0; y <= h; y += rulerTick {
		size := 6.0
		if int(y)%rulerLabel == 0 {
			size = 12
			ebitenutil.DebugPrintAt(screen, fmt.Sprint(int(y)), 14, int(y)-8)
		}
		line(screen, zammi.Vec2{Y: y}, zammi.Vec2{X: size, Y: y}, 1, colorRuler)
	}
}

func (g *Game) drawZones(screen *ebiten.Image) {
	s := g.scene
	for _, z := range s.Zones.Zones() {
		clr := colorZone
		if z.Collided() {
			clr = colorZoneHit
		}
		strokeCircle(screen, z.Center, z.Radius, 1, clr)
		fillCircle(screen, z.Center, z.MarkerRadius, clr)
	}
	strokeRect(screen, s.Player.Bounds(), 1, colorRuler)
	fillCircle(screen, s.Player.Center, 3, colorRuler)
	fillCircle(screen, s.DetectionPoint(), 5, colorProbe)
}

// debugText describes the mode, the player and every zone.
func (g *Game) debugText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode=%s tick=%d\n", g.mode, g.ticks)
	switch g.mode {
	case ModeExplore:
		s := g.scene
		p := s.Player
		fmt.Fprintf(&b, "scene=%s center=(%.0f,%.0f) frame=%d frozen=%v\n",
			s.Spec.ID, p.Center.X, p.Center.Y, p.Frame(), p.Frozen)
		for _, ev := range s.Events() {
			z := ev.Zone
			fmt.Fprintf(&b, "zone %s dist=%.1f r=%.0f collided=%v completed=%v hidden=%v\n",
				z.ID, ev.Distance, z.Radius, ev.Collided, z.Completed(), z.Hidden())
		}
	case ModeChallenge:
		res := g.run.last
		fmt.Fprintf(&b, "challenge=%s status=%s stage=%d/%d score=%.3f streak=%d/%d\n",
			g.run.ch.Name(), res.Status, res.Stage+1, res.Stages, res.Score, res.Streak, res.Required)
		for _, m := range res.Similarity.Points {
			if m.Missing {
				fmt.Fprintf(&b, "%s missing\n", m.ID)
				continue
			}
			fmt.Fprintf(&b, "%s dx=%.0fpx dy=%.0fpx sim=%.2f w=%.0f\n",
				m.ID, m.DiffX*g.win.Width, m.DiffY*g.win.Height, m.Similarity, m.Weight)
		}
	case ModeCutscene:
		fmt.Fprintf(&b, "video=%s frames=%d\n", g.cut.path, g.cut.frames)
	}
	return b.String()
}
