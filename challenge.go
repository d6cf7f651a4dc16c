package zammi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Status is the lifecycle state of a challenge.
type Status int

const (
	StatusIdle Status = iota
	StatusActive
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusActive:
		return "active"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Resolved reports whether the challenge has reached a terminal state.
func (s Status) Resolved() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// ChallengeInput is the per-frame input handed to a challenge.
type ChallengeInput struct {
	// Keypoints is the live landmark set; nil when no body was detected.
	Keypoints Keypoints

	// Restart asks a finished minigame to start over. Challenges without a
	// restart notion ignore it.
	Restart bool
}

// StepResult reports a challenge's state after one Step.
type StepResult struct {
	Status Status
	Stage  int // zero-based index of the stage being evaluated
	Stages int

	// Score is the metric compared against Threshold this step.
	Score     float64
	Threshold float64

	Streak   int
	Required int

	// Advanced is set on the step that completed a non-final stage.
	Advanced bool

	// Similarity carries per-landmark detail for pose challenges.
	Similarity SimilarityResult
}

// Challenge is a mini-game that consumes one input per frame until it
// succeeds or is aborted.
type Challenge interface {
	Name() string
	// Begin (re)starts the challenge from its first stage.
	Begin()
	Step(in ChallengeInput) StepResult
	Status() Status
	// Abort fails an unresolved challenge. It has no effect once resolved.
	Abort()
}

// Default per-stage thresholds: the opening pose is strict and follow-up
// poses in a chain are lenient.
const (
	DefaultFirstThreshold = 0.50
	DefaultChainThreshold = 0.25
)

// DefaultThreshold returns the threshold used for the stage at index i when
// none is configured.
func DefaultThreshold(i int) float64 {
	if i == 0 {
		return DefaultFirstThreshold
	}
	return DefaultChainThreshold
}

// Stage is one pose of a chained challenge.
type Stage struct {
	Pose      *PoseConfig
	Threshold float64
	Required  int // consecutive frames at or above Threshold
}

// PoseChallenge matches the player against a chain of poses. Each stage
// succeeds after Required consecutive frames scoring at least Threshold;
// the challenge succeeds after the last stage.
type PoseChallenge struct {
	name   string
	scorer Scorer
	stages []Stage

	status Status
	index  int
	streak Streak
	last   StepResult
}

var _ Challenge = (*PoseChallenge)(nil)

// NewPoseChallenge builds a challenge over the given stages.
func NewPoseChallenge(name string, scorer Scorer, stages ...Stage) (*PoseChallenge, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("zammi: challenge %q has no stages", name)
	}
	for i, st := range stages {
		if st.Pose == nil {
			return nil, fmt.Errorf("zammi: challenge %q stage %d has no pose", name, i)
		}
		if st.Threshold < 0 || st.Threshold > 1 {
			return nil, fmt.Errorf("zammi: challenge %q stage %d threshold %v outside [0, 1]", name, i, st.Threshold)
		}
	}
	c := &PoseChallenge{name: name, scorer: scorer, stages: stages}
	c.reset()
	c.status = StatusIdle
	return c, nil
}

func (c *PoseChallenge) Name() string { return c.name }

func (c *PoseChallenge) Status() Status { return c.status }

// StageIndex returns the index of the stage being evaluated.
func (c *PoseChallenge) StageIndex() int { return c.index }

// Stage returns the stage being evaluated.
func (c *PoseChallenge) Stage() Stage { return c.stages[c.index] }

// Stages returns the number of stages in the chain.
func (c *PoseChallenge) Stages() int { return len(c.stages) }

// Last returns the result of the most recent Step.
func (c *PoseChallenge) Last() StepResult { return c.last }

func (c *PoseChallenge) Begin() {
	c.reset()
	c.status = StatusActive
}

func (c *PoseChallenge) reset() {
	c.index = 0
	c.streak = Streak{Required: c.stages[0].Required}
	c.last = c.snapshot()
}

func (c *PoseChallenge) snapshot() StepResult {
	st := c.stages[c.index]
	return StepResult{
		Status:    c.status,
		Stage:     c.index,
		Stages:    len(c.stages),
		Threshold: st.Threshold,
		Streak:    c.streak.Count(),
		Required:  max(st.Required, 1),
	}
}

// Step scores one frame against the current stage. Frames delivered while
// the challenge is not active leave it unchanged.
func (c *PoseChallenge) Step(in ChallengeInput) StepResult {
	if c.status != StatusActive {
		c.last = c.snapshot()
		return c.last
	}
	st := c.stages[c.index]
	sim := c.scorer.Evaluate(in.Keypoints, st.Pose)
	done := c.streak.Observe(sim.Score >= st.Threshold)

	res := c.snapshot()
	res.Score = sim.Score
	res.Similarity = sim
	if done {
		if c.index+1 < len(c.stages) {
			c.index++
			c.streak = Streak{Required: c.stages[c.index].Required}
			res.Advanced = true
		} else {
			c.status = StatusSucceeded
			res.Status = c.status
		}
	}
	c.last = res
	return res
}

func (c *PoseChallenge) Abort() {
	if c.status.Resolved() {
		return
	}
	c.status = StatusFailed
	c.last = c.snapshot()
}

// RunOptions tune RunChallenge.
type RunOptions struct {
	// MaxFrames bounds the number of polled frames. Zero means unbounded.
	MaxFrames int

	// Interval paces polling. Zero polls as fast as the source delivers.
	Interval time.Duration

	// OnStep observes every step result.
	OnStep func(StepResult)
}

// RunChallenge drives ch with frames from src until it resolves. Source
// exhaustion (io.EOF), the frame bound and context cancellation abort the
// challenge. The context error is returned on cancellation; other Poll
// errors abort and are returned wrapped.
func RunChallenge(ctx context.Context, ch Challenge, src KeypointSource, opts RunOptions) (StepResult, error) {
	ch.Begin()
	var ticker *time.Ticker
	if opts.Interval > 0 {
		ticker = time.NewTicker(opts.Interval)
		defer ticker.Stop()
	}

	var last StepResult
	for frame := 0; opts.MaxFrames == 0 || frame < opts.MaxFrames; frame++ {
		if err := ctx.Err(); err != nil {
			ch.Abort()
			last.Status = ch.Status()
			return last, err
		}
		kps, err := src.Poll()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			ch.Abort()
			last.Status = ch.Status()
			return last, fmt.Errorf("zammi: run %s: %w", ch.Name(), err)
		}
		last = ch.Step(ChallengeInput{Keypoints: kps})
		if opts.OnStep != nil {
			opts.OnStep(last)
		}
		if last.Status.Resolved() {
			return last, nil
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
	}
	ch.Abort()
	last.Status = ch.Status()
	return last, nil
}
