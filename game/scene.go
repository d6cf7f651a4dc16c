package game

import (
	"fmt"
	"time"

	"github.com/phanxgames/zammi"
)

// zoneBinding ties a trigger zone to the content it drives.
type zoneBinding struct {
	zone *zammi.Zone
	spec *ZoneSpec
	// dialogue is shown while the player stands in a rearmable zone.
	dialogue *zammi.Dialogue
}

// Scene is the runtime state of one room: player, zones and dialogues.
type Scene struct {
	Spec   *SceneSpec
	Player *Player
	Zones  *zammi.ZoneSet
	Art    *Art

	bindings  []*zoneBinding
	dialogues map[string]*zammi.Dialogue
	owner     map[*zammi.Dialogue]*zoneBinding

	// active is a dialogue opened by a challenge completion. It stays up
	// until paged through.
	active   *zammi.Dialogue
	freezeOn *zammi.Dialogue

	background *Animation
	events     []zammi.ZoneEvent
}

// NewScene builds runtime state for spec. art may be nil in headless use.
func NewScene(spec *SceneSpec, art *Art) (*Scene, error) {
	if art == nil {
		art = &Art{}
	}
	s := &Scene{
		Spec:       spec,
		Art:        art,
		Player:     newPlayer(spec.Player, spec.Movement, len(art.Player)),
		dialogues:  make(map[string]*zammi.Dialogue, len(spec.Dialogues)),
		owner:      make(map[*zammi.Dialogue]*zoneBinding),
		background: NewAnimation(art.BackgroundDelays...),
	}
	for _, ds := range spec.Dialogues {
		d := zammi.NewDialogue(ds.ID, ds.Pages...)
		d.OnFinish = ds.OnFinish
		s.dialogues[ds.ID] = d
	}

	zones := make([]*zammi.Zone, 0, len(spec.Zones))
	for i := range spec.Zones {
		zs := &spec.Zones[i]
		policy, err := zammi.ParseZonePolicy(zs.Policy)
		if err != nil {
			return nil, fmt.Errorf("game: zone %q: %w", zs.ID, err)
		}
		z := zammi.NewZone(zs.ID, zs.Center.Vec(), policy)
		if zs.Radius > 0 {
			z.Radius = zs.Radius
		}
		if zs.MarkerRadius > 0 {
			z.MarkerRadius = zs.MarkerRadius
		}
		b := &zoneBinding{zone: z, spec: zs}
		if zs.Dialogue != "" {
			b.dialogue = s.dialogues[zs.Dialogue]
			if b.dialogue == nil {
				return nil, fmt.Errorf("game: zone %q: unknown dialogue %q", zs.ID, zs.Dialogue)
			}
			s.owner[b.dialogue] = b
		}
		zones = append(zones, z)
		s.bindings = append(s.bindings, b)
	}
	set, err := zammi.NewZoneSet(zones...)
	if err != nil {
		return nil, err
	}
	s.Zones = set
	return s, nil
}

// Dialogue returns the named dialogue.
func (s *Scene) Dialogue(id string) *zammi.Dialogue { return s.dialogues[id] }

// Events returns the zone events of the last update.
func (s *Scene) Events() []zammi.ZoneEvent { return s.events }

// BackgroundFrame returns the background frame to draw.
func (s *Scene) BackgroundFrame() int { return s.background.Index() }

// DetectionPoint returns the player's zone probe.
func (s *Scene) DetectionPoint() zammi.Vec2 {
	return s.Player.DetectionPoint(s.Spec.Offset())
}

func (s *Scene) animate(dt time.Duration) {
	s.background.Update(dt)
}

// updateZones runs every zone against the detection point, shows and hides
// zone dialogues, and returns the binding whose challenge should start.
func (s *Scene) updateZones() *zoneBinding {
	s.events = s.Zones.Update(s.DetectionPoint())
	var start *zoneBinding
	for i, ev := range s.events {
		b := s.bindings[i]
		if d := b.dialogue; d != nil {
			switch {
			case ev.Visible && !d.Visible():
				d.Show()
			case !ev.Visible && d.Visible():
				d.Hide()
			}
			if ev.Exited {
				d.Rewind()
			}
		}
		if ev.Fired && b.spec.Challenge != nil && start == nil {
			start = b
		}
	}
	return start
}

// Current returns the dialogue that receives input: a completion dialogue
// first, then any visible zone dialogue.
func (s *Scene) Current() *zammi.Dialogue {
	if s.active != nil && s.active.Visible() {
		return s.active
	}
	for _, b := range s.bindings {
		if b.dialogue != nil && b.dialogue.Visible() {
			return b.dialogue
		}
	}
	return nil
}

// open shows a completion dialogue from the first page.
func (s *Scene) open(id string, freeze bool) {
	d := s.dialogues[id]
	if d == nil {
		return
	}
	d.Rewind()
	d.Show()
	s.active = d
	if freeze {
		s.freezeOn = d
		s.Player.Frozen = true
	}
}

// finished handles a dialogue that was paged past its end and returns its
// on_finish action.
func (s *Scene) finished(d *zammi.Dialogue) string {
	if b := s.owner[d]; b != nil {
		b.zone.Dismiss()
	}
	if s.active == d {
		s.active = nil
	}
	if s.freezeOn == d {
		s.freezeOn = nil
		s.Player.Frozen = false
	}
	return d.OnFinish
}

// complete marks a challenge zone done and runs its completion actions.
// The teleport target is returned so the caller can animate it.
func (s *Scene) complete(b *zoneBinding) (teleport *zammi.Vec2) {
	b.zone.Complete()
	c := b.spec.OnComplete
	if c == nil {
		return nil
	}
	if c.Dialogue != "" {
		s.open(c.Dialogue, c.Freeze)
	}
	if c.Teleport != nil {
		v := c.Teleport.Vec()
		return &v
	}
	return nil
}
