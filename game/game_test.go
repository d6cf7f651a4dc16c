package game

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/zammi"
	"github.com/phanxgames/zammi/landmark"
)

const testStory = `
start: lobby
scenes:
  - id: lobby
    player:
      spawn: [100, 400]
    exits:
      right: floor1
    zones:
      - id: sign
        center: [300, 500]
        policy: rearmable
        dialogue: hello
    dialogues:
      - id: hello
        pages:
          - text: Welcome
          - text: Go right
        on_finish: video:intro.mp4
  - id: floor1
    player:
      spawn: [100, 400]
    exits:
      left: lobby
      right: end
    zones:
      - id: pose
        center: [300, 500]
        challenge:
          kind: pose
          name: first floor
          stages:
            - pose: strong_action
              required: 3
            - pose: CompareHearts
              required: 2
        on_complete:
          teleport: [620, 290]
          dialogue: done
          freeze: true
    dialogues:
      - id: done
        pages:
          - text: Well done
  - id: orchard
    player:
      spawn: [100, 400]
    zones:
      - id: apples
        center: [300, 500]
        challenge:
          kind: catch
          name: orchard
          params:
            misses: 1
            seed: 4
`

type fakeVideo struct {
	frames int
	read   int
	closed bool
}

func (v *fakeVideo) Next() (image.Image, error) {
	if v.read >= v.frames {
		return nil, io.EOF
	}
	v.read++
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (v *fakeVideo) FPS() float64 { return 60 }

func (v *fakeVideo) Close() error {
	v.closed = true
	return nil
}

type errSource struct {
	err    error
	closed bool
}

func (s *errSource) Poll() (zammi.Keypoints, error) { return nil, s.err }
func (s *errSource) Close() error {
	s.closed = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPoses(t *testing.T) *zammi.PoseStore {
	t.Helper()
	poses, err := zammi.NewPoseStore(zammi.ReferenceWindow, zammi.DefaultPoses()...)
	if err != nil {
		t.Fatal(err)
	}
	poses.SetMirrored(true)
	return poses
}

func newTestGame(t *testing.T, start string, opts Options) *Game {
	t.Helper()
	story, err := ParseStory([]byte(testStory), "")
	if err != nil {
		t.Fatal(err)
	}
	if start != "" {
		story.Start = start
	}
	if opts.Poses == nil {
		opts.Poses = testPoses(t)
	}
	opts.Story = story
	opts.Factory = NewFactory(opts.Poses)
	opts.Logger = quietLogger()
	opts.TPS = 60
	g, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func tick(t *testing.T, g *Game, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := g.Update(); err != nil {
			t.Fatalf("update %d: %v", g.Ticks(), err)
		}
	}
}

// tickUntil updates until cond holds, failing after limit updates.
func tickUntil(t *testing.T, g *Game, limit int, cond func() bool) {
	t.Helper()
	for i := 0; i < limit; i++ {
		if cond() {
			return
		}
		tick(t, g, 1)
	}
	if !cond() {
		t.Fatalf("condition not met after %d updates", limit)
	}
}

// walk holds a direction for frames updates and releases it.
func walk(t *testing.T, g *Game, a Action, frames int) {
	t.Helper()
	g.Input().InjectKeyHold(a, frames)
	tick(t, g, frames+1)
}

func TestGameStartsInExplore(t *testing.T) {
	g := newTestGame(t, "", Options{})
	if g.Mode() != ModeExplore {
		t.Errorf("mode = %v, want explore", g.Mode())
	}
	if g.Scene().Spec.ID != "lobby" {
		t.Errorf("scene = %q, want lobby", g.Scene().Spec.ID)
	}
	if w, h := g.Layout(1, 1); w != 1280 || h != 720 {
		t.Errorf("layout = %dx%d, want 1280x720", w, h)
	}
}

func TestGameUnknownStart(t *testing.T) {
	story, _ := ParseStory([]byte(testStory), "")
	story.Start = "attic"
	if _, err := New(Options{Story: story, Logger: quietLogger()}); err == nil {
		t.Error("expected error for unknown start scene")
	}
}

func TestGameDialogueZone(t *testing.T) {
	video := &fakeVideo{frames: 3}
	var opened string
	g := newTestGame(t, "", Options{OpenVideo: func(path string) (VideoStream, error) {
		opened = path
		return video, nil
	}})
	s := g.Scene()
	hello := s.Dialogue("hello")

	// 40 steps of 5 px put the detection point on the zone edge.
	walk(t, g, ActionRight, 40)
	if s.Player.Center.X != 300 {
		t.Fatalf("player x = %v, want 300", s.Player.Center.X)
	}
	if s.Current() != hello || !hello.Visible() {
		t.Fatal("dialogue not shown inside zone")
	}

	// Clicks outside the box are ignored.
	g.Input().InjectClick(640, 100, MouseButtonLeft)
	tick(t, g, 2)
	if hello.PageIndex() != 0 {
		t.Fatalf("page = %d after click outside box, want 0", hello.PageIndex())
	}

	g.Input().InjectClick(640, 600, MouseButtonLeft)
	tick(t, g, 2)
	if hello.PageIndex() != 1 {
		t.Fatalf("page = %d, want 1", hello.PageIndex())
	}
	g.Input().InjectClick(640, 600, MouseButtonLeft)
	tick(t, g, 2)
	if g.Mode() != ModeCutscene {
		t.Fatalf("mode = %v, want cutscene", g.Mode())
	}
	if opened != "intro.mp4" {
		t.Errorf("opened %q, want intro.mp4", opened)
	}

	tickUntil(t, g, 10, func() bool { return g.Mode() == ModeExplore })
	if video.read != 3 || !video.closed {
		t.Errorf("video read=%d closed=%v, want 3/true", video.read, video.closed)
	}

	// Dismissed while standing in the zone: stays hidden.
	tick(t, g, 5)
	if hello.Visible() || !s.Zones.Zone("sign").Hidden() {
		t.Error("dialogue reappeared before leaving the zone")
	}

	// Leave and come back: shown again from the first page.
	walk(t, g, ActionLeft, 10)
	if hello.Visible() {
		t.Error("dialogue visible outside zone")
	}
	walk(t, g, ActionRight, 10)
	if !hello.Visible() || hello.PageIndex() != 0 {
		t.Errorf("visible=%v page=%d after re-entry, want true/0", hello.Visible(), hello.PageIndex())
	}
}

func TestGameDialogueHidesOnExit(t *testing.T) {
	g := newTestGame(t, "", Options{})
	hello := g.Scene().Dialogue("hello")
	walk(t, g, ActionRight, 40)
	g.Input().InjectClick(640, 600, MouseButtonLeft)
	tick(t, g, 2)
	walk(t, g, ActionLeft, 10)
	if hello.Visible() {
		t.Fatal("dialogue visible after leaving")
	}
	walk(t, g, ActionRight, 10)
	if hello.PageIndex() != 0 {
		t.Errorf("page = %d after re-entry, want 0", hello.PageIndex())
	}
}

func TestGameDialogueSlidesIn(t *testing.T) {
	g := newTestGame(t, "", Options{})
	walk(t, g, ActionRight, 40)
	if g.shown != g.Scene().Dialogue("hello") {
		t.Fatal("slide not started for the shown dialogue")
	}
	if g.slide <= 0 {
		t.Fatalf("slide = %v right after showing, want > 0", g.slide)
	}
	tick(t, g, 20)
	if math.Abs(g.slide) > 1e-6 {
		t.Errorf("slide = %v after settling, want 0", g.slide)
	}
}

func TestGameCutsceneSkip(t *testing.T) {
	video := &fakeVideo{frames: 100}
	g := newTestGame(t, "", Options{OpenVideo: func(string) (VideoStream, error) { return video, nil }})
	walk(t, g, ActionRight, 40)
	for i := 0; i < 2; i++ {
		g.Input().InjectClick(640, 600, MouseButtonLeft)
		tick(t, g, 2)
	}
	tick(t, g, 3)
	g.Input().InjectKeyTap(ActionBack)
	tick(t, g, 1)
	if g.Mode() != ModeExplore || !video.closed {
		t.Errorf("mode=%v closed=%v, want explore/true", g.Mode(), video.closed)
	}
	if video.read >= 100 {
		t.Errorf("read %d frames, want skip before the end", video.read)
	}
}

func TestGameNoVideoOpener(t *testing.T) {
	g := newTestGame(t, "", Options{})
	walk(t, g, ActionRight, 40)
	for i := 0; i < 2; i++ {
		g.Input().InjectClick(640, 600, MouseButtonLeft)
		tick(t, g, 2)
	}
	if g.Mode() != ModeExplore {
		t.Errorf("mode = %v, want explore without an opener", g.Mode())
	}
}

func TestGamePoseChallengeChain(t *testing.T) {
	poses := testPoses(t)
	g := newTestGame(t, "floor1", Options{Poses: poses})
	s := g.Scene()

	g.Input().InjectKeyHold(ActionRight, 40)
	tick(t, g, 40)
	if g.Mode() != ModeChallenge {
		t.Fatalf("mode = %v, want challenge", g.Mode())
	}
	if g.Challenge().Name() != "first floor" {
		t.Errorf("challenge = %q", g.Challenge().Name())
	}

	first, _ := poses.Target("strong_action")
	g.InjectKeypoints(first, 3)
	tick(t, g, 3)
	res := g.LastResult()
	if !res.Advanced || res.Score != 1 {
		t.Fatalf("after first stage: %+v", res)
	}

	// The banner pauses stepping.
	g.InjectKeypoints(nil, 1)
	tick(t, g, BannerTicks-1)
	if len(g.injectedPoses) != 1 {
		t.Fatal("landmarks consumed during banner")
	}
	tick(t, g, 1)
	g.injectedPoses = nil

	second, _ := poses.Target("CompareHearts")
	g.InjectKeypoints(second, 2)
	tick(t, g, 2)
	if g.LastResult().Status != zammi.StatusSucceeded {
		t.Fatalf("status = %v, want succeeded", g.LastResult().Status)
	}
	if g.Mode() != ModeChallenge {
		t.Fatal("left challenge before the banner ended")
	}
	tick(t, g, BannerTicks)
	if g.Mode() != ModeExplore {
		t.Fatalf("mode = %v, want explore", g.Mode())
	}
	zone := s.Zones.Zone("pose")
	if !zone.Completed() {
		t.Error("zone not completed")
	}

	// Glide to the teleport target.
	tick(t, g, 40)
	if d := s.Player.Center.Dist(zammi.Vec2{X: 620, Y: 290}); d > 0.01 {
		t.Errorf("player at %+v, want (620, 290)", s.Player.Center)
	}

	// Frozen until the completion dialogue is paged.
	done := s.Dialogue("done")
	if !s.Player.Frozen || s.Current() != done {
		t.Fatalf("frozen=%v current=%v", s.Player.Frozen, s.Current())
	}
	walk(t, g, ActionRight, 5)
	if s.Player.Center.X != 620 {
		t.Errorf("frozen player moved to %v", s.Player.Center.X)
	}
	g.Input().InjectKeyTap(ActionAdvance)
	tick(t, g, 2)
	if s.Player.Frozen || done.Visible() {
		t.Errorf("frozen=%v visible=%v after finishing dialogue", s.Player.Frozen, done.Visible())
	}

	// Completed zones never fire again.
	s.Player.Center = zammi.Vec2{X: 100, Y: 400}
	walk(t, g, ActionRight, 40)
	if g.Mode() != ModeExplore {
		t.Error("completed zone fired again")
	}
}

func TestGameRightClickAdvancesCompletionDialogueOnly(t *testing.T) {
	g := newTestGame(t, "", Options{})
	walk(t, g, ActionRight, 40)
	hello := g.Scene().Dialogue("hello")
	g.Input().InjectClick(640, 600, MouseButtonRight)
	g.Input().InjectKeyTap(ActionAdvance)
	tick(t, g, 3)
	if hello.PageIndex() != 0 {
		t.Errorf("zone dialogue paged by right click or space: page %d", hello.PageIndex())
	}
}

func TestGameChallengeAbortRearms(t *testing.T) {
	g := newTestGame(t, "floor1", Options{})
	g.Input().InjectKeyHold(ActionRight, 40)
	tick(t, g, 40)
	if g.Mode() != ModeChallenge {
		t.Fatalf("mode = %v, want challenge", g.Mode())
	}
	ch := g.Challenge()
	g.Input().InjectKeyTap(ActionBack)
	tick(t, g, 3)
	if g.Mode() != ModeExplore || ch.Status() != zammi.StatusFailed {
		t.Fatalf("mode=%v status=%v, want explore/failed", g.Mode(), ch.Status())
	}
	zone := g.Scene().Zones.Zone("pose")
	if zone.Fired() || zone.Completed() {
		t.Error("aborted zone not rearmed")
	}

	// Standing still does not retrigger; leaving and re-entering does.
	tick(t, g, 5)
	if g.Mode() != ModeExplore {
		t.Fatal("zone refired without leaving")
	}
	walk(t, g, ActionLeft, 10)
	g.Input().InjectKeyHold(ActionRight, 10)
	tickUntil(t, g, 11, func() bool { return g.Mode() == ModeChallenge })
}

func TestGameSourceEOFAbortsChallenge(t *testing.T) {
	src := &errSource{err: io.EOF}
	g := newTestGame(t, "floor1", Options{Source: src})
	g.Input().InjectKeyHold(ActionRight, 40)
	tick(t, g, 41)
	if g.Mode() != ModeExplore {
		t.Errorf("mode = %v, want explore after source EOF", g.Mode())
	}
}

func TestGameCameraDegrades(t *testing.T) {
	src := &errSource{err: zammi.ErrDeviceUnavailable}
	g := newTestGame(t, "floor1", Options{Source: src})
	g.Input().InjectKeyHold(ActionRight, 40)
	tick(t, g, 42)
	if g.Mode() != ModeChallenge {
		t.Fatalf("mode = %v, want challenge", g.Mode())
	}
	if _, ok := g.source.(*landmark.PlaceholderSource); !ok {
		t.Errorf("source = %T, want placeholder", g.source)
	}
	if !src.closed {
		t.Error("failed source not closed")
	}
	if err := g.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestGameCatchLoseRestartLeave(t *testing.T) {
	g := newTestGame(t, "orchard", Options{})
	g.Input().InjectKeyHold(ActionRight, 40)
	tick(t, g, 40)
	if g.Mode() != ModeChallenge || g.run.catchWorld() == nil {
		t.Fatalf("mode = %v, want catch challenge", g.Mode())
	}
	// No hand: the first apple falls past the basket.
	tickUntil(t, g, 1500, func() bool { return g.Challenge().Status() == zammi.StatusFailed })
	if !g.run.catchWorld().Over() {
		t.Fatal("round not over")
	}

	g.Input().InjectKeyTap(ActionRestart)
	tick(t, g, 1)
	if g.Challenge().Status() != zammi.StatusActive || g.run.catchWorld().Misses() != 0 {
		t.Fatalf("status=%v misses=%d after restart", g.Challenge().Status(), g.run.catchWorld().Misses())
	}

	tick(t, g, 1)
	g.Input().InjectKeyTap(ActionBack)
	tick(t, g, 1)
	if g.Mode() != ModeExplore {
		t.Errorf("mode = %v, want explore", g.Mode())
	}
}

func TestGameExitsAndEnd(t *testing.T) {
	g := newTestGame(t, "floor1", Options{})
	g.Scene().Player.Center.X = 1270
	walk(t, g, ActionRight, 2)
	if g.Mode() != ModeEnded {
		t.Fatalf("mode = %v, want ended", g.Mode())
	}
	g.Input().InjectClick(10, 10, MouseButtonLeft)
	tick(t, g, 1)
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("err = %v, want termination", err)
	}
}

func TestGameExitLeft(t *testing.T) {
	g := newTestGame(t, "floor1", Options{})
	g.Scene().Player.Center.X = 5
	walk(t, g, ActionLeft, 1)
	if g.Scene().Spec.ID != "lobby" {
		t.Errorf("scene = %q, want lobby", g.Scene().Spec.ID)
	}
}

func TestGameBlockedEdge(t *testing.T) {
	g := newTestGame(t, "", Options{})
	g.Scene().Player.Center.X = 5
	walk(t, g, ActionLeft, 3)
	if g.Scene().Spec.ID != "lobby" || g.Scene().Player.Center.X != 0 {
		t.Errorf("scene=%q x=%v, want lobby/0", g.Scene().Spec.ID, g.Scene().Player.Center.X)
	}
}

func TestGameEscapeQuits(t *testing.T) {
	g := newTestGame(t, "", Options{})
	g.Input().InjectKeyTap(ActionBack)
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("err = %v, want termination", err)
	}
}

func TestGameDebugToggle(t *testing.T) {
	g := newTestGame(t, "", Options{})
	g.Input().InjectKeyTap(ActionDebug)
	tick(t, g, 2)
	if !g.debug.Enabled {
		t.Error("debug not enabled")
	}
	if txt := g.debugText(); txt == "" {
		t.Error("empty debug text")
	}
}

func TestTickDuration(t *testing.T) {
	if d := tickDuration(60); d.Seconds()*60 < 0.999 {
		t.Errorf("tickDuration(60) = %v", d)
	}
	if s := tickSeconds(60); math.Abs(float64(s)-1.0/60) > 1e-6 {
		t.Errorf("tickSeconds(60) = %v", s)
	}
}
