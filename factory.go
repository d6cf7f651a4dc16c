package zammi

import (
	"fmt"
	"sort"
)

// Built-in challenge kinds.
const (
	KindPose    = "pose"
	KindGesture = "gesture"
)

// StageSpec configures one stage of a pose challenge.
type StageSpec struct {
	Pose      string   `yaml:"pose"`
	Threshold *float64 `yaml:"threshold,omitempty"` // nil means DefaultThreshold
	Required  int      `yaml:"required,omitempty"`
}

// ChallengeSpec is the configuration-side description of a challenge.
type ChallengeSpec struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`

	// Pose challenges.
	Stages []StageSpec `yaml:"stages,omitempty"`

	// Gesture challenges.
	Gesture  string `yaml:"gesture,omitempty"`
	Required int    `yaml:"required,omitempty"`

	// Params carries kind-specific numeric settings.
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Param returns Params[key], or def when unset.
func (s ChallengeSpec) Param(key string, def float64) float64 {
	if v, ok := s.Params[key]; ok {
		return v
	}
	return def
}

// Constructor builds a challenge from a ChallengeSpec.
type Constructor func(spec ChallengeSpec, poses *PoseStore) (Challenge, error)

// ChallengeFactory maps challenge kinds to constructors.
type ChallengeFactory struct {
	poses *PoseStore
	ctors map[string]Constructor
}

// NewChallengeFactory returns a factory with the pose and gesture kinds
// registered.
func NewChallengeFactory(poses *PoseStore) *ChallengeFactory {
	f := &ChallengeFactory{poses: poses, ctors: make(map[string]Constructor)}
	f.Register(KindPose, newPoseChallengeFromSpec)
	f.Register(KindGesture, newGestureChallengeFromSpec)
	return f
}

// Register adds or replaces the constructor for kind.
func (f *ChallengeFactory) Register(kind string, ctor Constructor) {
	f.ctors[kind] = ctor
}

// Kinds returns the registered kinds in sorted order.
func (f *ChallengeFactory) Kinds() []string {
	kinds := make([]string, 0, len(f.ctors))
	for k := range f.ctors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build constructs the challenge described by spec.
func (f *ChallengeFactory) Build(spec ChallengeSpec) (Challenge, error) {
	ctor, ok := f.ctors[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChallenge, spec.Kind)
	}
	return ctor(spec, f.poses)
}

func newPoseChallengeFromSpec(spec ChallengeSpec, poses *PoseStore) (Challenge, error) {
	if poses == nil {
		return nil, fmt.Errorf("zammi: challenge %q: no pose store", spec.Name)
	}
	stages := make([]Stage, 0, len(spec.Stages))
	for i, ss := range spec.Stages {
		p, err := poses.Pose(ss.Pose)
		if err != nil {
			return nil, fmt.Errorf("zammi: challenge %q stage %d: %w", spec.Name, i, err)
		}
		th := DefaultThreshold(i)
		if ss.Threshold != nil {
			th = *ss.Threshold
		}
		req := ss.Required
		if req == 0 {
			req = spec.Required
		}
		stages = append(stages, Stage{Pose: p, Threshold: th, Required: req})
	}
	return NewPoseChallenge(spec.Name, poses.Scorer(), stages...)
}

func newGestureChallengeFromSpec(spec ChallengeSpec, _ *PoseStore) (Challenge, error) {
	return NewGestureChallenge(spec.Name, spec.Gesture, spec.Required)
}
