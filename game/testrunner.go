package game

import (
	"encoding/json"
	"errors"
	"fmt"
)

// testStep is one action of a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Button string  `json:"button,omitempty"` // "left" (default) or "right"
	Key    string  `json:"key,omitempty"`    // action name, e.g. "right"
	Pose   string  `json:"pose,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected input, landmarks and screenshots across
// frames for automated playthroughs. Attach to a Game via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script. Unknown actions, keys and
// buttons are rejected here rather than mid-run.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if err := st.check(); err != nil {
			return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

func (st testStep) check() error {
	switch st.Action {
	case "screenshot", "wait":
	case "click":
		if _, err := parseButton(st.Button); err != nil {
			return err
		}
	case "key":
		if _, ok := ParseAction(st.Key); !ok {
			return fmt.Errorf("unknown key %q", st.Key)
		}
	case "pose":
		if st.Pose == "" {
			return errors.New("pose step without pose")
		}
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

func parseButton(s string) (MouseButton, error) {
	switch s {
	case "", "left":
		return MouseButtonLeft, nil
	case "right":
		return MouseButtonRight, nil
	}
	return 0, fmt.Errorf("unknown button %q", s)
}

// Done reports whether every step has run.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame. Called from Game.Update.
func (r *TestRunner) step(g *Game) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if g.pending() {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		g.Screenshot(st.Label)
	case "click":
		b, _ := parseButton(st.Button)
		g.input.InjectClick(st.X, st.Y, b)
	case "key":
		a, _ := ParseAction(st.Key)
		g.input.InjectKeyHold(a, st.Frames)
	case "pose":
		// Landmarks drain only in challenge mode, so the runner holds
		// here until a challenge has consumed them.
		if g.poses == nil {
			g.log.Warn("test script pose without pose store", "pose", st.Pose)
			break
		}
		k, err := g.poses.Target(st.Pose)
		if err != nil {
			g.log.Warn("test script pose", "pose", st.Pose, "err", err)
			break
		}
		g.InjectKeypoints(k, st.Frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && !g.pending() {
		r.done = true
	}
}
