package zammi

import (
	"reflect"
	"testing"
)

// body builds a landmark set from pixel positions in GestureFrame.
func body(px map[KeypointID]Vec2) Keypoints {
	k := make(Keypoints, len(px))
	for id, p := range px {
		k[id] = Keypoint{X: p.X / GestureFrame.Width, Y: p.Y / GestureFrame.Height}
	}
	return k
}

func standing(lw, rw Vec2) Keypoints {
	return body(map[KeypointID]Vec2{
		KeypointNose:          {320, 120},
		KeypointLeftShoulder:  {260, 200},
		KeypointRightShoulder: {380, 200},
		KeypointLeftHip:       {280, 340},
		KeypointRightHip:      {360, 340},
		KeypointLeftWrist:     lw,
		KeypointRightWrist:    rw,
	})
}

func TestGestureRules(t *testing.T) {
	up := standing(Vec2{250, 60}, Vec2{390, 60})
	oneUp := standing(Vec2{250, 60}, Vec2{420, 330})
	down := standing(Vec2{255, 330}, Vec2{385, 330})
	wide := standing(Vec2{100, 330}, Vec2{560, 330})

	tests := []struct {
		rule string
		k    Keypoints
		want bool
	}{
		{"hands_up", up, true},
		{"hands_up", oneUp, false},
		{"hand_on_head", oneUp, true},
		{"hand_on_head", down, false},
		{"hands_at_chest", down, true},
		{"hands_at_chest", up, false},
		{"hand_at_face", oneUp, true},
		{"hand_at_face", wide, false},
		{"hands_at_side", down, true},
		{"hands_at_side", wide, false},
		{"hands_up", Keypoints{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			rule, ok := LookupGesture(tt.rule)
			if !ok {
				t.Fatalf("rule %q missing", tt.rule)
			}
			if got := rule(tt.k, GestureFrame); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGestureRulesNames(t *testing.T) {
	want := []string{"hand_at_face", "hand_on_head", "hands_at_chest", "hands_at_side", "hands_up"}
	if got := GestureRules(); !reflect.DeepEqual(got, want) {
		t.Errorf("GestureRules = %v, want %v", got, want)
	}
}

func TestGestureChallengeStreak(t *testing.T) {
	g, err := NewGestureChallenge("giraffe", "hands_up", 8)
	if err != nil {
		t.Fatal(err)
	}
	up := standing(Vec2{250, 60}, Vec2{390, 60})
	down := standing(Vec2{255, 330}, Vec2{385, 330})

	g.Begin()
	for i := 0; i < 7; i++ {
		g.Step(ChallengeInput{Keypoints: up})
	}
	if res := g.Step(ChallengeInput{Keypoints: down}); res.Streak != 0 || res.Score != 0 {
		t.Fatalf("dip: %+v", res)
	}
	var res StepResult
	for i := 0; i < 8; i++ {
		res = g.Step(ChallengeInput{Keypoints: up})
		if i < 7 && res.Status != StatusActive {
			t.Fatalf("frame %d: %v", i, res.Status)
		}
	}
	if res.Status != StatusSucceeded {
		t.Errorf("status = %v, want succeeded", res.Status)
	}
}

func TestGestureChallengeUnknownRule(t *testing.T) {
	if _, err := NewGestureChallenge("x", "moonwalk", 1); err == nil {
		t.Error("expected error")
	}
}
