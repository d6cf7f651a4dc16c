package game

import "time"

// Animation cycles frame indices using per-frame durations. It holds no
// images; callers index their own frame slices with Index.
type Animation struct {
	delays  []time.Duration
	index   int
	elapsed time.Duration
}

// NewAnimation returns an animation over len(delays) frames. Non-positive
// delays fall back to DefaultFrameMS.
func NewAnimation(delays ...time.Duration) *Animation {
	d := make([]time.Duration, len(delays))
	for i, v := range delays {
		if v <= 0 {
			v = DefaultFrameMS * time.Millisecond
		}
		d[i] = v
	}
	return &Animation{delays: d}
}

// UniformAnimation returns an animation of n frames lasting frameMS each.
func UniformAnimation(n, frameMS int) *Animation {
	d := make([]time.Duration, n)
	for i := range d {
		d[i] = time.Duration(frameMS) * time.Millisecond
	}
	return NewAnimation(d...)
}

// Update advances the clock by dt and reports whether the frame changed.
// The timer restarts from zero on each frame change.
func (a *Animation) Update(dt time.Duration) bool {
	if a == nil || len(a.delays) < 2 {
		return false
	}
	a.elapsed += dt
	if a.elapsed < a.delays[a.index] {
		return false
	}
	a.elapsed = 0
	a.index = (a.index + 1) % len(a.delays)
	return true
}

// Index returns the current frame.
func (a *Animation) Index() int {
	if a == nil {
		return 0
	}
	return a.index
}

// Len returns the number of frames.
func (a *Animation) Len() int {
	if a == nil {
		return 0
	}
	return len(a.delays)
}

// Reset rewinds to the first frame.
func (a *Animation) Reset() {
	if a == nil {
		return
	}
	a.index = 0
	a.elapsed = 0
}
