package zammi

import "fmt"

// ZonePolicy selects how a zone re-fires.
type ZonePolicy int

const (
	// PolicyOneShot zones fire on the first entry only. Challenge zones use
	// it.
	PolicyOneShot ZonePolicy = iota

	// PolicyRearmable zones fire on every entry and are visible while
	// occupied unless dismissed. Exiting re-arms them. Dialogue zones use
	// it.
	PolicyRearmable
)

func (p ZonePolicy) String() string {
	switch p {
	case PolicyOneShot:
		return "oneshot"
	case PolicyRearmable:
		return "rearmable"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParseZonePolicy maps a configuration string to a policy.
func ParseZonePolicy(s string) (ZonePolicy, error) {
	switch s {
	case "oneshot", "one_shot", "":
		return PolicyOneShot, nil
	case "rearmable", "dialogue":
		return PolicyRearmable, nil
	}
	return 0, fmt.Errorf("zammi: unknown zone policy %q", s)
}

// Default zone radii in scene pixels.
const (
	DefaultTriggerRadius = 40.0
	DefaultMarkerRadius  = 10.0
)

// Zone is a circular trigger area in scene pixel space.
type Zone struct {
	ID           string
	Center       Vec2
	Radius       float64
	MarkerRadius float64
	Policy       ZonePolicy

	prevCollided bool
	fired        bool
	completed    bool
	manualHidden bool
}

// NewZone returns a zone with the default radii.
func NewZone(id string, center Vec2, policy ZonePolicy) *Zone {
	return &Zone{
		ID:           id,
		Center:       center,
		Radius:       DefaultTriggerRadius,
		MarkerRadius: DefaultMarkerRadius,
		Policy:       policy,
	}
}

// ZoneEvent is the outcome of one zone update.
type ZoneEvent struct {
	Zone     *Zone
	Distance float64
	Collided bool

	// Entered and Exited mark the frame the detection point crossed the
	// trigger radius.
	Entered bool
	Exited  bool

	// Fired is set when the zone's action should run this frame.
	Fired bool

	// Visible reports whether a rearmable zone's content should be shown.
	Visible bool
}

// Update advances the zone with the current detection point. Firing only
// happens on a rising edge of the collision state.
func (z *Zone) Update(point Vec2) ZoneEvent {
	d := point.Dist(z.Center)
	ev := ZoneEvent{Zone: z, Distance: d, Collided: d <= z.Radius}
	ev.Entered = ev.Collided && !z.prevCollided
	ev.Exited = !ev.Collided && z.prevCollided
	z.prevCollided = ev.Collided

	switch z.Policy {
	case PolicyOneShot:
		if ev.Entered && !z.fired && !z.completed {
			z.fired = true
			ev.Fired = true
		}
	case PolicyRearmable:
		if ev.Exited {
			z.manualHidden = false
		}
		ev.Fired = ev.Entered && !z.manualHidden
		ev.Visible = ev.Collided && !z.manualHidden
	}
	return ev
}

// Complete marks a one-shot zone's action as done. It never fires again.
func (z *Zone) Complete() {
	z.completed = true
	z.fired = true
}

// Completed reports whether Complete was called.
func (z *Zone) Completed() bool { return z.completed }

// Fired reports whether a one-shot zone has fired.
func (z *Zone) Fired() bool { return z.fired }

// Rearm lets a one-shot zone fire again on the next entry, for actions that
// ended without success. It has no effect on completed zones.
func (z *Zone) Rearm() {
	if !z.completed {
		z.fired = false
	}
}

// Dismiss hides a rearmable zone until the detection point leaves it.
func (z *Zone) Dismiss() {
	z.manualHidden = true
}

// Hidden reports whether the zone was dismissed and not yet exited.
func (z *Zone) Hidden() bool { return z.manualHidden }

// Collided reports the collision state from the last update.
func (z *Zone) Collided() bool { return z.prevCollided }

// Reset returns the zone to its initial state.
func (z *Zone) Reset() {
	z.prevCollided = false
	z.fired = false
	z.completed = false
	z.manualHidden = false
}

// ZoneSet is an ordered collection of zones updated together.
type ZoneSet struct {
	zones  []*Zone
	events []ZoneEvent
}

// NewZoneSet returns a set over the given zones. IDs must be unique.
func NewZoneSet(zones ...*Zone) (*ZoneSet, error) {
	seen := make(map[string]bool, len(zones))
	for _, z := range zones {
		if seen[z.ID] {
			return nil, fmt.Errorf("zammi: duplicate zone %q", z.ID)
		}
		if z.Radius <= 0 {
			return nil, fmt.Errorf("zammi: zone %q: radius must be positive", z.ID)
		}
		seen[z.ID] = true
	}
	return &ZoneSet{zones: zones}, nil
}

// Update advances every zone in order. The returned slice is reused by the
// next call.
func (s *ZoneSet) Update(point Vec2) []ZoneEvent {
	s.events = s.events[:0]
	for _, z := range s.zones {
		s.events = append(s.events, z.Update(point))
	}
	return s.events
}

// Zone returns the zone with the given ID, or nil.
func (s *ZoneSet) Zone(id string) *Zone {
	for _, z := range s.zones {
		if z.ID == id {
			return z
		}
	}
	return nil
}

// Zones returns the zones in update order. The slice must not be mutated.
func (s *ZoneSet) Zones() []*Zone {
	return s.zones
}

// Reset resets every zone.
func (s *ZoneSet) Reset() {
	for _, z := range s.zones {
		z.Reset()
	}
}
