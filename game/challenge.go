package game

import (
	"errors"
	"image"
	"io"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/zammi"
	"github.com/phanxgames/zammi/catch"
	"github.com/phanxgames/zammi/landmark"
)

// BannerTicks is how long the success banner stays up before the next
// stage starts or the challenge closes: 1.5 s at 60 TPS.
const BannerTicks = 90

// challengeRun is the state of challenge mode.
type challengeRun struct {
	ch      zammi.Challenge
	binding *zoneBinding

	last zammi.StepResult
	live zammi.Keypoints
	// target is the current stage's pose in normalized coordinates; nil for
	// challenges without a reference pose.
	target zammi.Keypoints
	pose   string
	sil    *ebiten.Image

	banner      int
	bannerScale float64
	bannerTween *TweenGroup

	// shown trails last.Score for the progress bar.
	shown      float64
	shownTween *TweenGroup

	ticks int
}

func (r *challengeRun) succeeded() bool {
	return r.ch.Status() == zammi.StatusSucceeded
}

// startChallenge builds the zone's challenge and switches to challenge mode.
func (g *Game) startChallenge(b *zoneBinding) error {
	ch, err := g.factory.Build(*b.spec.Challenge)
	if err != nil {
		return err
	}
	ch.Begin()
	g.run = &challengeRun{ch: ch, binding: b}
	if w := g.run.catchWorld(); w != nil {
		w.OnCaught(func(e catch.CaughtEvent) {
			g.log.Debug("apple caught", "kind", e.Kind, "score", e.Score)
		})
		w.OnMissed(func(e catch.MissedEvent) {
			g.log.Debug("apple missed", "kind", e.Kind, "misses", e.Misses)
		})
	}
	g.refreshTarget()
	g.mode = ModeChallenge
	g.log.Info("challenge started", "zone", b.zone.ID, "challenge", ch.Name(), "kind", b.spec.Challenge.Kind)
	return nil
}

// refreshTarget loads the reference pose and silhouette for the current
// stage of a pose challenge.
func (g *Game) refreshTarget() {
	r := g.run
	pc, ok := r.ch.(*zammi.PoseChallenge)
	if !ok {
		r.target, r.pose, r.sil = nil, "", nil
		return
	}
	st := pc.Stage()
	if st.Pose == nil || st.Pose.Name == r.pose {
		return
	}
	r.pose = st.Pose.Name
	win, mirrored := zammi.ReferenceWindow, true
	if g.poses != nil {
		win, mirrored = g.poses.Window(), g.poses.Mirrored()
	}
	r.target = st.Pose.Normalized(win, mirrored)
	r.sil = nil
	if g.assets == nil {
		return
	}
	if p := g.story.PoseImage(r.pose); p != "" {
		img, err := g.assets.Image(p)
		if err != nil {
			g.log.Warn("pose image unavailable", "pose", r.pose, "err", err)
			return
		}
		r.sil = img
	}
}

// pollKeypoints returns this tick's landmarks, preferring injected ones.
func (g *Game) pollKeypoints() (zammi.Keypoints, error) {
	if len(g.injectedPoses) > 0 {
		k := g.injectedPoses[0]
		g.injectedPoses = g.injectedPoses[1:]
		return k, nil
	}
	if g.source == nil {
		return nil, nil
	}
	k, err := g.source.Poll()
	if errors.Is(err, zammi.ErrDeviceUnavailable) {
		g.log.Warn("camera unavailable, using placeholder", "err", err)
		g.degradeSource()
		return nil, nil
	}
	return k, err
}

func (g *Game) degradeSource() {
	var frame image.Image
	if f, ok := g.source.(landmark.Framer); ok {
		frame = f.Frame()
	}
	if g.source != nil {
		if err := g.source.Close(); err != nil {
			g.log.Debug("close source", "err", err)
		}
	}
	g.source = landmark.NewPlaceholderSource(frame)
}

func (g *Game) updateChallenge(in InputState) error {
	r := g.run
	r.ticks++
	r.bannerTween.Update(tickSeconds(g.tps))
	r.shownTween.Update(tickSeconds(g.tps))

	if in.Pressed(ActionBack) {
		r.ch.Abort()
		g.endChallenge()
		return nil
	}

	if r.banner > 0 {
		r.banner--
		if r.banner == 0 {
			if r.succeeded() {
				g.endChallenge()
				return nil
			}
			g.refreshTarget()
		}
		return nil
	}

	k, err := g.pollKeypoints()
	if errors.Is(err, io.EOF) {
		g.log.Info("keypoint source ended", "challenge", r.ch.Name())
		r.ch.Abort()
		g.endChallenge()
		return nil
	}
	if err != nil {
		g.log.Debug("keypoint poll failed", "err", err)
		k = nil
	}
	r.live = k

	prev := r.last.Status
	res := r.ch.Step(zammi.ChallengeInput{Keypoints: k, Restart: in.Pressed(ActionRestart)})
	r.last = res
	if res.Score != r.shown {
		r.shownTween = TweenValue(&r.shown, res.Score, 0.15, ease.OutQuad)
	}

	switch {
	case res.Advanced:
		g.log.Info("challenge stage passed", "challenge", r.ch.Name(), "stage", res.Stage, "stages", res.Stages)
		g.showBanner()
	case res.Status == zammi.StatusSucceeded:
		g.log.Info("challenge succeeded", "challenge", r.ch.Name())
		g.showBanner()
	case res.Status == zammi.StatusFailed && prev != zammi.StatusFailed:
		g.log.Info("challenge failed", "challenge", r.ch.Name())
	case res.Status == zammi.StatusActive && prev == zammi.StatusFailed:
		g.log.Info("challenge restarted", "challenge", r.ch.Name())
	}
	return nil
}

func (g *Game) showBanner() {
	r := g.run
	r.banner = BannerTicks
	r.bannerScale = 0.5
	r.bannerTween = TweenValue(&r.bannerScale, 1, 0.3, ease.OutBack)
}

// endChallenge applies the result to the zone and returns to explore mode.
// A failed or aborted challenge rearms its zone so re-entering retries it.
func (g *Game) endChallenge() {
	r := g.run
	g.run = nil
	g.mode = ModeExplore
	if !r.succeeded() {
		r.binding.zone.Rearm()
		g.log.Info("challenge left", "zone", r.binding.zone.ID, "status", r.ch.Status())
		return
	}
	if to := g.scene.complete(r.binding); to != nil {
		g.glide = TweenPoint(&g.scene.Player.Center, *to, 0.4, ease.InOutQuad)
	}
	g.log.Info("zone completed", "zone", r.binding.zone.ID)
}

// catchWorld returns the apple world when the running challenge is the
// catcher.
func (r *challengeRun) catchWorld() *catch.World {
	if c, ok := r.ch.(*catch.Challenge); ok {
		return c.World()
	}
	return nil
}
