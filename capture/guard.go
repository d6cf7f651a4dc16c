package capture

import (
	"errors"
	"fmt"

	"github.com/phanxgames/zammi"
)

// ErrFrameSkipped reports a single failed read that stays below the failure
// bound. Callers drop the frame and try again next tick.
var ErrFrameSkipped = errors.New("capture: frame skipped")

// DefaultMaxFailures is the number of consecutive failed reads tolerated
// before a device is declared unavailable.
const DefaultMaxFailures = 30

// FailureGuard counts consecutive read failures. Once Max is reached it
// trips and stays tripped until Reset.
type FailureGuard struct {
	Max         int
	consecutive int
	tripped     bool
}

// NewFailureGuard returns a guard with the given bound; values below one use
// DefaultMaxFailures.
func NewFailureGuard(limit int) *FailureGuard {
	if limit < 1 {
		limit = DefaultMaxFailures
	}
	return &FailureGuard{Max: limit}
}

// Observe records the outcome of one read. It returns nil on success,
// ErrFrameSkipped for a tolerated failure and zammi.ErrDeviceUnavailable once
// the bound is reached.
func (g *FailureGuard) Observe(err error) error {
	if g.tripped {
		return zammi.ErrDeviceUnavailable
	}
	if err == nil {
		g.consecutive = 0
		return nil
	}
	g.consecutive++
	if g.consecutive >= g.Max {
		g.tripped = true
		return fmt.Errorf("%w: %d consecutive read failures: %v", zammi.ErrDeviceUnavailable, g.consecutive, err)
	}
	return fmt.Errorf("%w: %v", ErrFrameSkipped, err)
}

// Tripped reports whether the bound was reached.
func (g *FailureGuard) Tripped() bool { return g.tripped }

// Failures returns the current run of failed reads.
func (g *FailureGuard) Failures() int { return g.consecutive }

// Reset clears the failure count and the tripped state.
func (g *FailureGuard) Reset() {
	g.consecutive = 0
	g.tripped = false
}
