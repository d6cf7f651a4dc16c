// Package game runs the story on Ebitengine. A single Game drives one
// Update/Draw loop and switches between explore, challenge and cutscene
// modes; nothing here blocks or nests a second loop.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/zammi"
	zlog "github.com/phanxgames/zammi/internal/log"
)

// Mode is the top-level state of the loop.
type Mode int

const (
	ModeExplore Mode = iota
	ModeChallenge
	ModeCutscene
	ModeEnded
)

func (m Mode) String() string {
	switch m {
	case ModeExplore:
		return "explore"
	case ModeChallenge:
		return "challenge"
	case ModeCutscene:
		return "cutscene"
	case ModeEnded:
		return "ended"
	}
	return "unknown"
}

// DebugOptions controls the developer overlay.
type DebugOptions struct {
	Enabled bool
	Ruler   bool
	FPS     bool
}

// Options configures a Game.
type Options struct {
	Story   *Story
	Factory *zammi.ChallengeFactory
	Poses   *zammi.PoseStore
	Source  zammi.KeypointSource

	// Assets loads scene images. Nil runs without art, as tests do.
	Assets *Assets
	// OpenVideo opens cutscenes. Nil skips them.
	OpenVideo VideoOpener

	Logger *slog.Logger

	// Window is the logical screen size; zero uses zammi.ReferenceWindow.
	Window zammi.Size
	TPS    int

	// Live reads the real keyboard and mouse.
	Live bool

	Debug         DebugOptions
	ScreenshotDir string
}

// Game implements ebiten.Game.
type Game struct {
	story     *Story
	factory   *zammi.ChallengeFactory
	poses     *zammi.PoseStore
	source    zammi.KeypointSource
	assets    *Assets
	openVideo VideoOpener
	log       *slog.Logger

	win zammi.Size
	tps int

	input *Input
	mode  Mode
	scene *Scene
	run   *challengeRun
	cut   *cutscene
	glide *TweenGroup

	// The shown dialogue slides up from below the window by slide pixels.
	shown      *zammi.Dialogue
	slide      float64
	slideTween *TweenGroup

	injectedPoses []zammi.Keypoints
	runner        *TestRunner

	debug           DebugOptions
	screenshotDir   string
	screenshotQueue []string

	ticks int
	quit  bool
	view  *view
	fps   fpsWidget
}

// New creates a game and loads the start scene, so missing art fails here.
// The story should already have passed Validate.
func New(opts Options) (*Game, error) {
	if opts.Story == nil {
		return nil, errors.New("game: no story")
	}
	if opts.Factory == nil {
		opts.Factory = zammi.NewChallengeFactory(opts.Poses)
	}
	if opts.Window.Width <= 0 || opts.Window.Height <= 0 {
		opts.Window = zammi.ReferenceWindow
	}
	if opts.TPS <= 0 {
		opts.TPS = ebiten.DefaultTPS
	}
	if opts.Logger == nil {
		opts.Logger = zlog.L()
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = "screenshots"
	}
	g := &Game{
		story:         opts.Story,
		factory:       opts.Factory,
		poses:         opts.Poses,
		source:        opts.Source,
		assets:        opts.Assets,
		openVideo:     opts.OpenVideo,
		log:           opts.Logger,
		win:           opts.Window,
		tps:           opts.TPS,
		input:         NewInput(opts.Live),
		debug:         opts.Debug,
		screenshotDir: opts.ScreenshotDir,
	}
	if err := g.enterScene(opts.Story.Start); err != nil {
		return nil, err
	}
	return g, nil
}

// Mode returns the current mode.
func (g *Game) Mode() Mode { return g.mode }

// Scene returns the current scene.
func (g *Game) Scene() *Scene { return g.scene }

// Input returns the input reader, for injecting events.
func (g *Game) Input() *Input { return g.input }

// Challenge returns the running challenge, or nil outside challenge mode.
func (g *Game) Challenge() zammi.Challenge {
	if g.run == nil {
		return nil
	}
	return g.run.ch
}

// LastResult returns the running challenge's latest step.
func (g *Game) LastResult() zammi.StepResult {
	if g.run == nil {
		return zammi.StepResult{}
	}
	return g.run.last
}

// Ticks returns the number of updates run.
func (g *Game) Ticks() int { return g.ticks }

// InjectKeypoints feeds k to the next frames polls of the challenge instead
// of the live source.
func (g *Game) InjectKeypoints(k zammi.Keypoints, frames int) {
	for i := 0; i < max(frames, 1); i++ {
		g.injectedPoses = append(g.injectedPoses, k)
	}
}

// pending reports whether injected input is still queued.
func (g *Game) pending() bool {
	return g.input.Pending() || len(g.injectedPoses) > 0
}

// SetTestRunner attaches a scripted runner. Its step runs at the start of
// every Update.
func (g *Game) SetTestRunner(r *TestRunner) {
	g.runner = r
}

// Close releases the keypoint source and any open cutscene.
func (g *Game) Close() error {
	var errs []error
	if g.cut != nil {
		errs = append(errs, g.cut.close())
		g.cut = nil
	}
	if g.source != nil {
		errs = append(errs, g.source.Close())
		g.source = nil
	}
	return errors.Join(errs...)
}

// Quit ends the loop on the next Update.
func (g *Game) Quit() { g.quit = true }

// Update advances the game by one tick. It returns ebiten.Termination when
// the player quits.
func (g *Game) Update() error {
	if g.runner != nil {
		g.runner.step(g)
	}
	in := g.input.Poll()
	g.ticks++

	if in.Pressed(ActionDebug) {
		g.debug.Enabled = !g.debug.Enabled
	}
	if in.Pressed(ActionScreenshot) {
		g.Screenshot(g.mode.String())
	}

	var err error
	switch g.mode {
	case ModeExplore:
		err = g.updateExplore(in)
	case ModeChallenge:
		err = g.updateChallenge(in)
	case ModeCutscene:
		err = g.updateCutscene(in)
	case ModeEnded:
		if in.Pressed(ActionBack) || in.Click != nil {
			g.quit = true
		}
	}
	if err != nil {
		return err
	}
	if g.mode == ModeExplore {
		g.slideDialogue()
	}
	if g.quit {
		g.log.Info("quit", "ticks", g.ticks)
		return ebiten.Termination
	}
	return nil
}

// slideDialogue starts the slide-in when a different dialogue comes up.
func (g *Game) slideDialogue() {
	d := g.scene.Current()
	if d != g.shown {
		g.shown = d
		g.slideTween = nil
		if d != nil {
			g.slide = d.Region(g.win).Height
			g.slideTween = TweenValue(&g.slide, 0, 0.25, ease.OutQuad)
		}
	}
	g.slideTween.Update(tickSeconds(g.tps))
}

// Layout fixes the logical screen to the configured window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.win.Width), int(g.win.Height)
}

func (g *Game) updateExplore(in InputState) error {
	s := g.scene
	dt := tickDuration(g.tps)
	s.animate(dt)

	if g.glide != nil {
		g.glide.Update(tickSeconds(g.tps))
		if !g.glide.Done {
			return nil
		}
		g.glide = nil
	}

	if in.Pressed(ActionBack) {
		g.quit = true
		return nil
	}

	if d := s.Current(); d != nil {
		if step := g.dialogueStep(d, in); step == zammi.DialogueFinished {
			g.log.Info("dialogue finished", "dialogue", d.ID)
			if err := g.runFinish(s.finished(d)); err != nil {
				return err
			}
			if g.mode != ModeExplore || g.scene != s {
				return nil
			}
		}
	}

	edge := s.Player.Update(in, dt, g.win)
	if b := s.updateZones(); b != nil {
		g.log.Info("zone fired", "zone", b.zone.ID)
		return g.startChallenge(b)
	}

	var next string
	switch edge {
	case EdgeLeft:
		next = s.Spec.Exits.Left
	case EdgeRight:
		next = s.Spec.Exits.Right
	}
	if next != "" {
		return g.enterScene(next)
	}
	return nil
}

// dialogueStep applies this frame's input to d. A left click pages any
// dialogue from inside its box; a right click or Space pages only a
// completion dialogue.
func (g *Game) dialogueStep(d *zammi.Dialogue, in InputState) zammi.DialogueStep {
	completion := d == g.scene.active
	if c := in.Click; c != nil {
		switch {
		case c.Button == MouseButtonLeft:
			return d.Click(c.Pos, g.win)
		case c.Button == MouseButtonRight && completion:
			return d.Advance()
		}
	}
	if completion && in.Pressed(ActionAdvance) {
		return d.Advance()
	}
	return zammi.DialogueIgnored
}

func (g *Game) runFinish(action string) error {
	kind, arg, err := parseFinish(action)
	if err != nil {
		return err
	}
	switch kind {
	case finishVideo:
		return g.playCutscene(arg)
	case finishScene:
		return g.enterScene(arg)
	}
	return nil
}

func (g *Game) playCutscene(path string) error {
	if g.openVideo == nil {
		g.log.Debug("cutscenes disabled", "video", path)
		return nil
	}
	full := g.story.Resolve(path)
	v, err := g.openVideo(full)
	if err != nil {
		return fmt.Errorf("game: cutscene: %w", err)
	}
	g.cut = newCutscene(full, v)
	g.mode = ModeCutscene
	g.log.Info("cutscene started", "video", full, "fps", v.FPS())
	return nil
}

func (g *Game) updateCutscene(in InputState) error {
	if in.Pressed(ActionBack) {
		g.endCutscene("skipped")
		return nil
	}
	ok, err := g.cut.update(tickDuration(g.tps))
	if err != nil {
		g.log.Warn("cutscene read failed", "video", g.cut.path, "err", err)
	}
	if !ok {
		g.endCutscene("finished")
	}
	return nil
}

func (g *Game) endCutscene(how string) {
	if err := g.cut.close(); err != nil {
		g.log.Debug("close video", "err", err)
	}
	g.log.Info("cutscene "+how, "video", g.cut.path, "frames", g.cut.frames)
	g.cut = nil
	g.mode = ModeExplore
}

// enterScene replaces the current scene. ExitEnd ends the game.
func (g *Game) enterScene(id string) error {
	if id == ExitEnd {
		g.mode = ModeEnded
		g.log.Info("story ended")
		return nil
	}
	spec, ok := g.story.Scene(id)
	if !ok {
		return fmt.Errorf("game: unknown scene %q", id)
	}
	var art *Art
	if g.assets != nil {
		a, err := g.assets.SceneArt(spec)
		if err != nil {
			return fmt.Errorf("game: scene %q: %w", id, err)
		}
		art = a
	}
	sc, err := NewScene(spec, art)
	if err != nil {
		return err
	}
	g.scene = sc
	g.glide = nil
	g.mode = ModeExplore
	g.log.Info("scene entered", "scene", id)
	return nil
}

func tickDuration(tps int) time.Duration {
	return time.Second / time.Duration(tps)
}

func tickSeconds(tps int) float32 {
	return 1 / float32(tps)
}
