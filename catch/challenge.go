package catch

import (
	"math/rand/v2"

	"github.com/phanxgames/zammi"
)

// Kind under which the apple catcher registers with a ChallengeFactory.
const KindCatch = "catch"

// Challenge adapts a World to zammi.Challenge. The basket follows the
// player's wrist; the challenge succeeds when the round is won and fails
// when it is lost. A lost round restarts on an input with Restart set.
type Challenge struct {
	name   string
	world  *World
	status zammi.Status
	handX  float64
	hasHnd bool
	last   zammi.StepResult
}

var _ zammi.Challenge = (*Challenge)(nil)

// NewChallenge returns an idle apple catcher.
func NewChallenge(name string, rules Rules, seed uint64) (*Challenge, error) {
	w, err := NewWorld(rules, seed)
	if err != nil {
		return nil, err
	}
	c := &Challenge{name: name, world: w}
	c.last = c.snapshot()
	return c, nil
}

func (c *Challenge) Name() string { return c.name }

func (c *Challenge) Status() zammi.Status { return c.status }

// World exposes the round for rendering.
func (c *Challenge) World() *World { return c.world }

// Hand returns the last screen x the basket was steered to and whether a
// hand has been seen this round.
func (c *Challenge) Hand() (float64, bool) { return c.handX, c.hasHnd }

// Last returns the result of the most recent Step.
func (c *Challenge) Last() zammi.StepResult { return c.last }

func (c *Challenge) Begin() {
	c.world.Reset()
	c.status = zammi.StatusActive
	c.hasHnd = false
	c.last = c.snapshot()
}

func (c *Challenge) Step(in zammi.ChallengeInput) zammi.StepResult {
	if c.status == zammi.StatusFailed && in.Restart && c.world.Over() {
		c.Begin()
	}
	if c.status != zammi.StatusActive {
		c.last = c.snapshot()
		return c.last
	}

	if x, ok := HandX(in.Keypoints, c.world.rules.Screen.Width); ok {
		c.handX, c.hasHnd = x, true
		c.world.MoveBasket(x)
	}
	c.world.Step()
	if c.world.Over() {
		if c.world.Won() {
			c.status = zammi.StatusSucceeded
		} else {
			c.status = zammi.StatusFailed
		}
	}
	c.last = c.snapshot()
	return c.last
}

func (c *Challenge) Abort() {
	if c.status.Resolved() {
		return
	}
	c.status = zammi.StatusFailed
	c.last = c.snapshot()
}

// snapshot reports progress as points toward the goal. Streak carries the
// score and Required the goal so a generic progress bar can render it.
func (c *Challenge) snapshot() zammi.StepResult {
	goal := c.world.rules.Goal
	return zammi.StepResult{
		Status:    c.status,
		Stages:    1,
		Score:     min(float64(c.world.score)/float64(goal), 1),
		Threshold: 1,
		Streak:    c.world.score,
		Required:  goal,
	}
}

// HandX returns the screen x of the player's hand, preferring the right
// wrist. Keypoint X is already in display (mirrored) space.
func HandX(k zammi.Keypoints, width float64) (float64, bool) {
	for _, id := range []zammi.KeypointID{zammi.KeypointRightWrist, zammi.KeypointLeftWrist} {
		if p, ok := k[id]; ok {
			return p.X * width, true
		}
	}
	return 0, false
}

// Register adds the apple catcher to f under KindCatch. Recognized params:
// goal, misses, width, height, seed. A zero seed draws a random one.
func Register(f *zammi.ChallengeFactory) {
	f.Register(KindCatch, func(spec zammi.ChallengeSpec, _ *zammi.PoseStore) (zammi.Challenge, error) {
		rules := DefaultRules()
		rules.Goal = int(spec.Param("goal", float64(rules.Goal)))
		rules.MaxMisses = int(spec.Param("misses", float64(rules.MaxMisses)))
		rules.Screen.Width = spec.Param("width", rules.Screen.Width)
		rules.Screen.Height = spec.Param("height", rules.Screen.Height)
		seed := uint64(spec.Param("seed", 0))
		if seed == 0 {
			seed = rand.Uint64()
		}
		return NewChallenge(spec.Name, rules, seed)
	})
}
