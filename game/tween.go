package game

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/zammi"
)

// TweenGroup animates up to 2 float64 fields simultaneously. Create one via
// the convenience constructors and call Update(dt) each frame; the group
// writes values straight into the target fields.
//
// There is no global animation manager. The game owns its tweens and
// updates them itself.
type TweenGroup struct {
	tweens   [2]*gween.Tween
	count    int
	fields   [2]*float64
	duration float32
	Done     bool
}

// Update advances all tweens by dt seconds and writes values to the target
// fields.
func (g *TweenGroup) Update(dt float32) {
	if g == nil || g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// Finish jumps every field to its end value.
func (g *TweenGroup) Finish() {
	if g == nil || g.Done {
		return
	}
	for i := 0; i < g.count; i++ {
		val, _ := g.tweens[i].Set(g.duration)
		*g.fields[i] = float64(val)
	}
	g.Done = true
}

// TweenValue animates *field to the target value over duration seconds.
func TweenValue(field *float64, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, duration: duration}
	g.tweens[0] = gween.New(float32(*field), float32(to), duration, fn)
	g.fields[0] = field
	return g
}

// TweenPoint animates p toward the target position over duration seconds.
func TweenPoint(p *zammi.Vec2, to zammi.Vec2, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, duration: duration}
	g.tweens[0] = gween.New(float32(p.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(p.Y), float32(to.Y), duration, fn)
	g.fields[0] = &p.X
	g.fields[1] = &p.Y
	return g
}
