package zammi

import (
	"fmt"
	"math"
	"sort"
)

// GestureFrame is the pixel frame the built-in gesture rules are tuned for.
var GestureFrame = Size{Width: 640, Height: 480}

// GestureRule reports whether a landmark set, converted to pixels of frame,
// shows the gesture.
type GestureRule func(k Keypoints, frame Size) bool

var gestureRules = map[string]GestureRule{
	"hands_up":       handsUp,
	"hand_on_head":   handOnHead,
	"hands_at_chest": handsAtChest,
	"hand_at_face":   handAtFace,
	"hands_at_side":  handsAtSide,
}

// GestureRules returns the names of the built-in gesture rules in sorted
// order.
func GestureRules() []string {
	names := make([]string, 0, len(gestureRules))
	for n := range gestureRules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupGesture returns a built-in rule by name.
func LookupGesture(name string) (GestureRule, bool) {
	r, ok := gestureRules[name]
	return r, ok
}

type armPixels struct {
	nose, lw, rw, ls, rs, lh, rh Vec2
	shoulderY                    float64
}

func armsOf(k Keypoints, frame Size, extra ...KeypointID) (armPixels, bool) {
	need := append([]KeypointID{KeypointLeftWrist, KeypointRightWrist, KeypointLeftShoulder, KeypointRightShoulder}, extra...)
	if !k.Has(need...) {
		return armPixels{}, false
	}
	a := armPixels{
		lw: k[KeypointLeftWrist].Pixel(frame),
		rw: k[KeypointRightWrist].Pixel(frame),
		ls: k[KeypointLeftShoulder].Pixel(frame),
		rs: k[KeypointRightShoulder].Pixel(frame),
	}
	if n, ok := k[KeypointNose]; ok {
		a.nose = n.Pixel(frame)
	}
	if h, ok := k[KeypointLeftHip]; ok {
		a.lh = h.Pixel(frame)
	}
	if h, ok := k[KeypointRightHip]; ok {
		a.rh = h.Pixel(frame)
	}
	a.shoulderY = (a.ls.Y + a.rs.Y) / 2
	return a, true
}

// Both wrists above the shoulder line.
func handsUp(k Keypoints, frame Size) bool {
	a, ok := armsOf(k, frame)
	return ok && a.lw.Y < a.shoulderY && a.rw.Y < a.shoulderY
}

// At least one wrist above the shoulder line.
func handOnHead(k Keypoints, frame Size) bool {
	a, ok := armsOf(k, frame, KeypointNose)
	return ok && (a.lw.Y < a.shoulderY || a.rw.Y < a.shoulderY)
}

// Both wrists no more than 100px above the shoulder line.
func handsAtChest(k Keypoints, frame Size) bool {
	a, ok := armsOf(k, frame)
	return ok && a.lw.Y > a.shoulderY-100 && a.rw.Y > a.shoulderY-100
}

// One wrist near the nose or the shoulder line.
func handAtFace(k Keypoints, frame Size) bool {
	a, ok := armsOf(k, frame, KeypointNose)
	if !ok {
		return false
	}
	return math.Abs(a.lw.Y-a.nose.Y) < 150 || math.Abs(a.rw.Y-a.nose.Y) < 150 ||
		math.Abs(a.lw.Y-a.shoulderY) < 100 || math.Abs(a.rw.Y-a.shoulderY) < 100
}

// Both wrists horizontally within 80px of their shoulders.
func handsAtSide(k Keypoints, frame Size) bool {
	a, ok := armsOf(k, frame, KeypointLeftHip, KeypointRightHip)
	return ok && math.Abs(a.lw.X-a.ls.X) < 80 && math.Abs(a.rw.X-a.rs.X) < 80
}

// GestureChallenge succeeds once a rule holds for Required consecutive
// frames. It reports a score of 1 on matching frames and 0 otherwise.
type GestureChallenge struct {
	name  string
	rule  GestureRule
	frame Size

	status Status
	streak Streak
}

var _ Challenge = (*GestureChallenge)(nil)

// NewGestureChallenge returns a challenge for the named built-in rule.
func NewGestureChallenge(name, rule string, required int) (*GestureChallenge, error) {
	r, ok := LookupGesture(rule)
	if !ok {
		return nil, fmt.Errorf("zammi: challenge %q: unknown gesture %q", name, rule)
	}
	return &GestureChallenge{
		name:   name,
		rule:   r,
		frame:  GestureFrame,
		streak: Streak{Required: required},
	}, nil
}

func (g *GestureChallenge) Name() string   { return g.name }
func (g *GestureChallenge) Status() Status { return g.status }

func (g *GestureChallenge) Begin() {
	g.streak.Reset()
	g.status = StatusActive
}

func (g *GestureChallenge) Step(in ChallengeInput) StepResult {
	res := StepResult{
		Status:    g.status,
		Stages:    1,
		Threshold: 1,
		Required:  max(g.streak.Required, 1),
	}
	if g.status != StatusActive {
		res.Streak = g.streak.Count()
		return res
	}
	hit := in.Keypoints != nil && g.rule(in.Keypoints, g.frame)
	if hit {
		res.Score = 1
	}
	if g.streak.Observe(hit) {
		g.status = StatusSucceeded
	}
	res.Status = g.status
	res.Streak = g.streak.Count()
	return res
}

func (g *GestureChallenge) Abort() {
	if !g.status.Resolved() {
		g.status = StatusFailed
	}
}
