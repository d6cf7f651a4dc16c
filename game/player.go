package game

import (
	"time"

	"github.com/phanxgames/zammi"
)

// Edge reports which horizontal window edge the player reached.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
)

// Player is the walking sprite. Position is the sprite center.
type Player struct {
	Center zammi.Vec2
	Size   zammi.Vec2
	Speed  float64

	Vertical bool
	ClampY   *Point

	// Frozen disables movement.
	Frozen bool

	walk   *Animation
	moving bool
}

func newPlayer(spec PlayerSpec, move MovementSpec, frames int) *Player {
	p := &Player{
		Center:   spec.Spawn.Vec(),
		Size:     DefaultPlayerSize,
		Speed:    spec.Speed,
		Vertical: move.Vertical,
		ClampY:   move.ClampY,
	}
	if spec.Size != nil {
		p.Size = spec.Size.Vec()
	}
	if p.Speed <= 0 {
		p.Speed = DefaultSpeed
	}
	ms := spec.FrameMS
	if ms <= 0 {
		ms = DefaultFrameMS
	}
	p.walk = UniformAnimation(frames, ms)
	return p
}

// Frame returns the walk frame to draw.
func (p *Player) Frame() int { return p.walk.Index() }

// Moving reports whether the player moved on the last update.
func (p *Player) Moving() bool { return p.moving }

// Bounds returns the sprite rectangle.
func (p *Player) Bounds() zammi.Rect {
	return zammi.Rect{
		X:      p.Center.X - p.Size.X/2,
		Y:      p.Center.Y - p.Size.Y/2,
		Width:  p.Size.X,
		Height: p.Size.Y,
	}
}

// DetectionPoint returns the point tested against trigger zones.
func (p *Player) DetectionPoint(offset zammi.Vec2) zammi.Vec2 {
	return p.Center.Add(offset)
}

// Update moves the player one step from held input. The sprite center is
// clamped to the window horizontally; reaching either limit is reported so
// the scene can exit. The walk animation only runs while moving.
func (p *Player) Update(in InputState, dt time.Duration, win zammi.Size) Edge {
	p.moving = false
	if !p.Frozen {
		if in.Held(ActionLeft) {
			p.Center.X -= p.Speed
			p.moving = true
		}
		if in.Held(ActionRight) {
			p.Center.X += p.Speed
			p.moving = true
		}
		if p.Vertical {
			if in.Held(ActionUp) {
				p.Center.Y -= p.Speed
				p.moving = true
			}
			if in.Held(ActionDown) {
				p.Center.Y += p.Speed
				p.moving = true
			}
		}
	}
	if p.moving {
		p.walk.Update(dt)
	} else {
		p.walk.Reset()
	}

	if p.ClampY != nil {
		p.Center.Y = zammi.Clamp(p.Center.Y, p.ClampY[0], p.ClampY[1])
	}
	p.Center.X = zammi.Clamp(p.Center.X, 0, win.Width)
	switch {
	case !p.moving:
		return EdgeNone
	case p.Center.X <= 0:
		return EdgeLeft
	case p.Center.X >= win.Width:
		return EdgeRight
	}
	return EdgeNone
}
