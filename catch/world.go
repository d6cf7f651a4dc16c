// Package catch implements the apple catcher minigame: apples fall from the
// top of the screen and the player moves a basket with their hand to catch
// them. Apples are entities in a donburi world; catches and misses are
// published as donburi events.
package catch

import (
	"fmt"
	"math/rand/v2"

	"github.com/phanxgames/zammi"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// Kind identifies an apple's color and point value.
type Kind int

const (
	Yellow Kind = iota
	Green
	Red
)

// Points returns the score awarded for catching an apple of kind k.
func (k Kind) Points() int {
	switch k {
	case Red:
		return 3
	case Green:
		return 2
	}
	return 1
}

func (k Kind) String() string {
	switch k {
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	case Red:
		return "red"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// AppleData is the component carried by every falling apple.
type AppleData struct {
	Kind  Kind
	Speed float64 // pixels per step
	Size  float64
}

var (
	// Apple marks an entity as a falling apple.
	Apple = donburi.NewComponentType[AppleData]()
	// Position is the center of an entity in screen pixels.
	Position = donburi.NewComponentType[zammi.Vec2]()
)

// CaughtEvent is published when an apple lands in the basket.
type CaughtEvent struct {
	Kind  Kind
	Score int // score after the catch
}

// MissedEvent is published when an apple falls past the bottom edge.
type MissedEvent struct {
	Kind   Kind
	Misses int // misses after this one
}

var (
	Caught = events.NewEventType[CaughtEvent]()
	Missed = events.NewEventType[MissedEvent]()
)

// Rules tune the minigame.
type Rules struct {
	Screen zammi.Size

	AppleSize float64
	MinSpeed  int
	MaxSpeed  int

	// RedChance and GreenChance are cumulative thresholds on a uniform
	// draw; anything above GreenChance is yellow.
	RedChance   float64
	GreenChance float64

	BasketWidth  float64
	BasketHeight float64
	BasketLift   float64 // distance from the bottom edge to the basket base

	SpawnDelay    float64 // frames between spawns at the start
	MinSpawnDelay float64
	SpawnDecay    float64 // delay reduction per spawn

	Goal      int
	MaxMisses int
}

// DefaultRules returns the stock 800x600 configuration.
func DefaultRules() Rules {
	return Rules{
		Screen:        zammi.Size{Width: 800, Height: 600},
		AppleSize:     20,
		MinSpeed:      2,
		MaxSpeed:      5,
		RedChance:     0.1,
		GreenChance:   0.4,
		BasketWidth:   80,
		BasketHeight:  40,
		BasketLift:    80,
		SpawnDelay:    40,
		MinSpawnDelay: 20,
		SpawnDecay:    0.1,
		Goal:          15,
		MaxMisses:     3,
	}
}

func (r Rules) validate() error {
	switch {
	case r.Screen.Width <= 0 || r.Screen.Height <= 0:
		return fmt.Errorf("catch: screen %vx%v", r.Screen.Width, r.Screen.Height)
	case r.AppleSize <= 0 || r.AppleSize*2 > r.Screen.Width:
		return fmt.Errorf("catch: apple size %v", r.AppleSize)
	case r.MinSpeed <= 0 || r.MaxSpeed < r.MinSpeed:
		return fmt.Errorf("catch: speed range %d..%d", r.MinSpeed, r.MaxSpeed)
	case r.BasketWidth <= 0 || r.BasketWidth > r.Screen.Width:
		return fmt.Errorf("catch: basket width %v", r.BasketWidth)
	case r.SpawnDelay <= 0 || r.MinSpawnDelay > r.SpawnDelay:
		return fmt.Errorf("catch: spawn delay %v (floor %v)", r.SpawnDelay, r.MinSpawnDelay)
	case r.Goal <= 0 || r.MaxMisses <= 0:
		return fmt.Errorf("catch: goal %d, max misses %d", r.Goal, r.MaxMisses)
	}
	return nil
}

// ApplePos is a read-only view of one apple for rendering.
type ApplePos struct {
	Kind   Kind
	Center zammi.Vec2
	Size   float64
}

// Rect returns the apple's bounding square.
func (a ApplePos) Rect() zammi.Rect {
	return zammi.Rect{X: a.Center.X - a.Size/2, Y: a.Center.Y - a.Size/2, Width: a.Size, Height: a.Size}
}

// World holds one round of the minigame.
type World struct {
	rules Rules
	ecs   donburi.World
	rng   *rand.Rand

	apples *donburi.Query

	basketX     float64
	spawnTimer  float64
	spawnDelay  float64
	score       int
	misses      int
	over        bool
	won         bool
	frames      int
	pendingDrop []donburi.Entity

	caughtFns []func(CaughtEvent)
	missedFns []func(MissedEvent)
}

// NewWorld creates a world. The seed makes apple placement reproducible.
func NewWorld(rules Rules, seed uint64) (*World, error) {
	if err := rules.validate(); err != nil {
		return nil, err
	}
	w := &World{
		rules:  rules,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		apples: donburi.NewQuery(filter.Contains(Apple, Position)),
	}
	w.Reset()
	return w, nil
}

// Reset clears all apples and counters and recenters the basket.
func (w *World) Reset() {
	w.ecs = donburi.NewWorld()
	Caught.Subscribe(w.ecs, w.onCaught)
	Missed.Subscribe(w.ecs, w.onMissed)
	w.basketX = w.rules.Screen.Width / 2
	w.spawnTimer = 0
	w.spawnDelay = w.rules.SpawnDelay
	w.score = 0
	w.misses = 0
	w.over = false
	w.won = false
	w.frames = 0
}

// OnCaught registers fn to observe catches. Observers survive Reset.
func (w *World) OnCaught(fn func(CaughtEvent)) {
	w.caughtFns = append(w.caughtFns, fn)
}

// OnMissed registers fn to observe misses. Observers survive Reset.
func (w *World) OnMissed(fn func(MissedEvent)) {
	w.missedFns = append(w.missedFns, fn)
}

func (w *World) onCaught(_ donburi.World, e CaughtEvent) {
	if e.Score >= w.rules.Goal {
		w.over, w.won = true, true
	}
	for _, fn := range w.caughtFns {
		fn(e)
	}
}

func (w *World) onMissed(_ donburi.World, e MissedEvent) {
	if e.Misses >= w.rules.MaxMisses && !w.won {
		w.over = true
	}
	for _, fn := range w.missedFns {
		fn(e)
	}
}

func (w *World) Rules() Rules { return w.rules }

func (w *World) Score() int { return w.score }

func (w *World) Misses() int { return w.misses }

// Over reports whether the round has ended.
func (w *World) Over() bool { return w.over }

// Won reports whether the round ended by reaching the goal.
func (w *World) Won() bool { return w.won }

// SpawnDelay returns the current number of frames between spawns.
func (w *World) SpawnDelay() float64 { return w.spawnDelay }

// Frames returns the number of steps played this round.
func (w *World) Frames() int { return w.frames }

// Basket returns the basket rectangle; its base sits BasketLift pixels above
// the bottom edge.
func (w *World) Basket() zammi.Rect {
	base := w.rules.Screen.Height - w.rules.BasketLift
	return zammi.Rect{
		X:      w.basketX - w.rules.BasketWidth/2,
		Y:      base - w.rules.BasketHeight,
		Width:  w.rules.BasketWidth,
		Height: w.rules.BasketHeight,
	}
}

// MoveBasket centers the basket on screen x, keeping it fully on screen.
func (w *World) MoveBasket(x float64) {
	half := w.rules.BasketWidth / 2
	w.basketX = zammi.Clamp(x, half, w.rules.Screen.Width-half)
}

// Apples returns the apples currently falling.
func (w *World) Apples() []ApplePos {
	out := make([]ApplePos, 0, w.apples.Count(w.ecs))
	w.apples.Each(w.ecs, func(e *donburi.Entry) {
		a := Apple.Get(e)
		out = append(out, ApplePos{Kind: a.Kind, Center: *Position.Get(e), Size: a.Size})
	})
	return out
}

// Spawn drops a random apple just above the top edge.
func (w *World) Spawn() {
	size := w.rules.AppleSize
	lo := int(size)
	hi := int(w.rules.Screen.Width - size)
	x := float64(lo + w.rng.IntN(hi-lo+1))
	speed := float64(w.rules.MinSpeed + w.rng.IntN(w.rules.MaxSpeed-w.rules.MinSpeed+1))

	kind := Yellow
	switch r := w.rng.Float64(); {
	case r < w.rules.RedChance:
		kind = Red
	case r < w.rules.GreenChance:
		kind = Green
	}
	w.spawnAt(zammi.Vec2{X: x, Y: -size}, kind, speed)
}

func (w *World) spawnAt(at zammi.Vec2, kind Kind, speed float64) donburi.Entity {
	ent := w.ecs.Create(Apple, Position)
	e := w.ecs.Entry(ent)
	Apple.SetValue(e, AppleData{Kind: kind, Speed: speed, Size: w.rules.AppleSize})
	Position.SetValue(e, at)
	return ent
}

// Step advances the round by one frame. It does nothing once the round is
// over.
func (w *World) Step() {
	if w.over {
		return
	}
	w.frames++

	w.spawnTimer++
	if w.spawnTimer >= w.spawnDelay {
		w.Spawn()
		w.spawnTimer = 0
		if w.spawnDelay > w.rules.MinSpawnDelay {
			w.spawnDelay = max(w.spawnDelay-w.rules.SpawnDecay, w.rules.MinSpawnDelay)
		}
	}

	basket := w.Basket()
	floor := w.rules.Screen.Height
	w.pendingDrop = w.pendingDrop[:0]
	w.apples.Each(w.ecs, func(e *donburi.Entry) {
		a := Apple.Get(e)
		pos := Position.Get(e)
		pos.Y += a.Speed

		view := ApplePos{Kind: a.Kind, Center: *pos, Size: a.Size}
		switch {
		case view.Rect().Intersects(basket):
			w.score += a.Kind.Points()
			Caught.Publish(w.ecs, CaughtEvent{Kind: a.Kind, Score: w.score})
		case pos.Y > floor+a.Size:
			w.misses++
			Missed.Publish(w.ecs, MissedEvent{Kind: a.Kind, Misses: w.misses})
		default:
			return
		}
		w.pendingDrop = append(w.pendingDrop, e.Entity())
	})
	for _, ent := range w.pendingDrop {
		w.ecs.Remove(ent)
	}
	Caught.ProcessEvents(w.ecs)
	Missed.ProcessEvents(w.ecs)
}
