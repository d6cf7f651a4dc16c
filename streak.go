package zammi

// Streak counts consecutive matching evaluations. Any miss resets the count
// to zero.
type Streak struct {
	Required int
	count    int
}

// NewStreak returns a streak that completes after required consecutive hits.
// Values below one are treated as one.
func NewStreak(required int) *Streak {
	return &Streak{Required: max(required, 1)}
}

// Observe records one evaluation and reports whether the streak is complete.
func (s *Streak) Observe(hit bool) bool {
	if !hit {
		s.count = 0
		return false
	}
	s.count++
	return s.Complete()
}

// Complete reports whether the required run has been reached.
func (s *Streak) Complete() bool {
	return s.count >= max(s.Required, 1)
}

// Count returns the current run length.
func (s *Streak) Count() int {
	return s.count
}

// Progress returns the run as a fraction of the requirement, capped at 1.
func (s *Streak) Progress() float64 {
	req := max(s.Required, 1)
	return min(float64(s.count)/float64(req), 1)
}

// Reset zeroes the run.
func (s *Streak) Reset() {
	s.count = 0
}
