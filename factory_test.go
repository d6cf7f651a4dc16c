package zammi

import (
	"errors"
	"reflect"
	"testing"
)

func TestFactoryBuildPose(t *testing.T) {
	f := NewChallengeFactory(testStore(t))
	strict := 0.6
	ch, err := f.Build(ChallengeSpec{
		Kind:     KindPose,
		Name:     "floor1",
		Required: 3,
		Stages: []StageSpec{
			{Pose: "strong_action"},
			{Pose: "CompareHearts", Threshold: &strict, Required: 5},
			{Pose: "RiseHighWithTwoHand"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	pc, ok := ch.(*PoseChallenge)
	if !ok {
		t.Fatalf("Build returned %T, want *PoseChallenge", ch)
	}
	if pc.Name() != "floor1" || pc.Stages() != 3 {
		t.Fatalf("name=%q stages=%d", pc.Name(), pc.Stages())
	}
	want := []Stage{
		{Threshold: DefaultFirstThreshold, Required: 3},
		{Threshold: 0.6, Required: 5},
		{Threshold: DefaultChainThreshold, Required: 3},
	}
	for i, w := range want {
		got := pc.stages[i]
		if got.Threshold != w.Threshold || got.Required != w.Required {
			t.Errorf("stage %d: threshold=%v required=%d, want %v/%d", i, got.Threshold, got.Required, w.Threshold, w.Required)
		}
	}
	if !pc.scorer.Mirrored {
		t.Error("factory scorer should follow the store's mirroring")
	}
}

func TestFactoryBuildGesture(t *testing.T) {
	f := NewChallengeFactory(nil)
	ch, err := f.Build(ChallengeSpec{Kind: KindGesture, Name: "giraffe", Gesture: "hands_up", Required: 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(*GestureChallenge); !ok {
		t.Errorf("Build returned %T, want *GestureChallenge", ch)
	}
}

func TestFactoryErrors(t *testing.T) {
	f := NewChallengeFactory(testStore(t))
	tests := []struct {
		name string
		spec ChallengeSpec
		is   error
	}{
		{"unknown kind", ChallengeSpec{Kind: "dance"}, ErrUnknownChallenge},
		{"unknown pose", ChallengeSpec{Kind: KindPose, Stages: []StageSpec{{Pose: "moonwalk"}}}, ErrPoseNotFound},
		{"no stages", ChallengeSpec{Kind: KindPose}, nil},
		{"unknown gesture", ChallengeSpec{Kind: KindGesture, Gesture: "flap"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Build(tt.spec)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("got %v, want %v", err, tt.is)
			}
		})
	}
}

type stubChallenge struct{ status Status }

func (s *stubChallenge) Name() string                   { return "stub" }
func (s *stubChallenge) Begin()                         { s.status = StatusActive }
func (s *stubChallenge) Step(ChallengeInput) StepResult { return StepResult{Status: s.status} }
func (s *stubChallenge) Status() Status                 { return s.status }
func (s *stubChallenge) Abort()                         { s.status = StatusFailed }

func TestFactoryRegister(t *testing.T) {
	f := NewChallengeFactory(nil)
	var gotSpec ChallengeSpec
	f.Register("stub", func(spec ChallengeSpec, _ *PoseStore) (Challenge, error) {
		gotSpec = spec
		return &stubChallenge{}, nil
	})
	if want := []string{"gesture", "pose", "stub"}; !reflect.DeepEqual(f.Kinds(), want) {
		t.Errorf("Kinds = %v, want %v", f.Kinds(), want)
	}
	spec := ChallengeSpec{Kind: "stub", Params: map[string]float64{"goal": 15}}
	if _, err := f.Build(spec); err != nil {
		t.Fatal(err)
	}
	if gotSpec.Param("goal", 0) != 15 || gotSpec.Param("misses", 3) != 3 {
		t.Errorf("params not passed through: %+v", gotSpec.Params)
	}
}
