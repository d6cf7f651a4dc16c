package zammi

import (
	"fmt"
	"sort"
)

// DefaultTolerance is the per-axis tolerance in pixels used when neither the
// pose nor a keypoint override sets one.
const DefaultTolerance = 50.0

// PoseConfig is a named target configuration of keypoints in pixel space of
// the store's reference window. It is read-only once loaded.
type PoseConfig struct {
	Name        string
	Title       string
	Description string

	// Tolerance is the default per-axis tolerance in pixels. Zero means
	// DefaultTolerance.
	Tolerance float64

	// HeadTolerance and WristTolerance override Tolerance for the nose and
	// both wrists. Zero means unset.
	HeadTolerance  float64
	WristTolerance float64

	// Overrides holds per-keypoint tolerances and wins over every other
	// setting.
	Overrides map[KeypointID]float64

	// KeyPoints carry double weight in the aggregate similarity.
	KeyPoints []KeypointID

	// Landmarks maps keypoint ids to target pixel coordinates.
	Landmarks map[KeypointID]Vec2
}

// ToleranceFor resolves the pixel tolerance for one keypoint: per-keypoint
// override, then head/wrist tolerance, then the pose default, then
// DefaultTolerance.
func (p *PoseConfig) ToleranceFor(id KeypointID) float64 {
	if t, ok := p.Overrides[id]; ok {
		return t
	}
	switch id {
	case KeypointNose:
		if p.HeadTolerance > 0 {
			return p.HeadTolerance
		}
	case KeypointLeftWrist, KeypointRightWrist:
		if p.WristTolerance > 0 {
			return p.WristTolerance
		}
	}
	return p.baseTolerance()
}

func (p *PoseConfig) baseTolerance() float64 {
	if p.Tolerance > 0 {
		return p.Tolerance
	}
	return DefaultTolerance
}

// IsKeyPoint reports whether id is in the pose's key set.
func (p *PoseConfig) IsKeyPoint(id KeypointID) bool {
	for _, k := range p.KeyPoints {
		if k == id {
			return true
		}
	}
	return false
}

// Normalized converts the pixel landmarks to [0, 1] space for the window.
// With mirrored set the X axis is flipped (x = 1 - x_px/width) to match a
// camera feed that is displayed mirrored.
func (p *PoseConfig) Normalized(win Size, mirrored bool) Keypoints {
	out := make(Keypoints, len(p.Landmarks))
	for id, px := range p.Landmarks {
		x := px.X / win.Width
		if mirrored {
			x = 1 - x
		}
		out[id] = Keypoint{X: x, Y: px.Y / win.Height}
	}
	return out
}

// Scaled returns a copy of the pose with every tolerance multiplied by f.
func (p *PoseConfig) Scaled(f float64) *PoseConfig {
	cp := *p
	cp.Tolerance = p.baseTolerance() * f
	cp.HeadTolerance = p.HeadTolerance * f
	cp.WristTolerance = p.WristTolerance * f
	if p.Overrides != nil {
		cp.Overrides = make(map[KeypointID]float64, len(p.Overrides))
		for id, t := range p.Overrides {
			cp.Overrides[id] = t * f
		}
	}
	return &cp
}

func (p *PoseConfig) validate() error {
	if len(p.Landmarks) == 0 {
		return fmt.Errorf("pose %q: no landmarks", p.Name)
	}
	if p.Tolerance < 0 || p.HeadTolerance < 0 || p.WristTolerance < 0 {
		return fmt.Errorf("pose %q: negative tolerance", p.Name)
	}
	for id, t := range p.Overrides {
		if !id.Valid() {
			return fmt.Errorf("pose %q: tolerance for invalid keypoint %d", p.Name, id)
		}
		if t <= 0 {
			return fmt.Errorf("pose %q: tolerance for %s must be positive, got %v", p.Name, id, t)
		}
	}
	for id := range p.Landmarks {
		if !id.Valid() {
			return fmt.Errorf("pose %q: invalid landmark %d", p.Name, id)
		}
	}
	for _, id := range p.KeyPoints {
		if _, ok := p.Landmarks[id]; !ok {
			return fmt.Errorf("pose %q: key point %s has no landmark", p.Name, id)
		}
	}
	return nil
}

// PoseStore holds the pose table for one reference window. It is built once
// at startup and only read afterwards.
type PoseStore struct {
	window   Size
	mirrored bool
	poses    map[string]*PoseConfig
}

// NewPoseStore validates the poses and returns a mirrored store for the
// reference window.
func NewPoseStore(window Size, poses ...*PoseConfig) (*PoseStore, error) {
	if window.Width <= 0 || window.Height <= 0 {
		return nil, fmt.Errorf("zammi: invalid pose window %vx%v", window.Width, window.Height)
	}
	s := &PoseStore{
		window:   window,
		mirrored: true,
		poses:    make(map[string]*PoseConfig, len(poses)),
	}
	for _, p := range poses {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("zammi: %w", err)
		}
		if _, dup := s.poses[p.Name]; dup {
			return nil, fmt.Errorf("zammi: duplicate pose %q", p.Name)
		}
		s.poses[p.Name] = p
	}
	return s, nil
}

// SetMirrored selects whether targets are flipped horizontally. Stores are
// mirrored by default because the camera feed is shown mirrored.
func (s *PoseStore) SetMirrored(mirrored bool) {
	s.mirrored = mirrored
}

// Mirrored reports whether targets are flipped horizontally.
func (s *PoseStore) Mirrored() bool {
	return s.mirrored
}

// Window returns the reference window the pixel coordinates belong to.
func (s *PoseStore) Window() Size {
	return s.window
}

// Len returns the number of poses.
func (s *PoseStore) Len() int {
	return len(s.poses)
}

// Names returns the pose names in sorted order.
func (s *PoseStore) Names() []string {
	names := make([]string, 0, len(s.poses))
	for n := range s.poses {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Pose returns the named pose or ErrPoseNotFound.
func (s *PoseStore) Pose(name string) (*PoseConfig, error) {
	p, ok := s.poses[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPoseNotFound, name)
	}
	return p, nil
}

// Tolerance returns the pixel tolerance for a keypoint of the named pose.
func (s *PoseStore) Tolerance(name string, id KeypointID) (float64, error) {
	p, err := s.Pose(name)
	if err != nil {
		return 0, err
	}
	return p.ToleranceFor(id), nil
}

// KeyPoints returns the weighted keypoints of the named pose.
func (s *PoseStore) KeyPoints(name string) ([]KeypointID, error) {
	p, err := s.Pose(name)
	if err != nil {
		return nil, err
	}
	out := make([]KeypointID, len(p.KeyPoints))
	copy(out, p.KeyPoints)
	return out, nil
}

// Target returns the named pose in normalized space, mirrored when the
// store is.
func (s *PoseStore) Target(name string) (Keypoints, error) {
	p, err := s.Pose(name)
	if err != nil {
		return nil, err
	}
	return p.Normalized(s.window, s.mirrored), nil
}

// Scorer returns a scorer configured for the store's window and mirroring.
func (s *PoseStore) Scorer() Scorer {
	return Scorer{Window: s.window, Mirrored: s.mirrored}
}

// DefaultPoses returns the pose table the game ships with, authored against
// ReferenceWindow.
func DefaultPoses() []*PoseConfig {
	return []*PoseConfig{
		{
			Name:           "strong_action",
			Title:          "Strong Action",
			Description:    "Both hands raised to show strength",
			Tolerance:      50,
			HeadTolerance:  50,
			WristTolerance: 50,
			KeyPoints:      []KeypointID{KeypointLeftWrist, KeypointRightWrist},
			Landmarks: map[KeypointID]Vec2{
				KeypointNose:          {700, 280},
				KeypointLeftShoulder:  {560, 410},
				KeypointRightShoulder: {800, 410},
				KeypointLeftElbow:     {450, 370},
				KeypointRightElbow:    {970, 340},
				KeypointLeftWrist:     {550, 230},
				KeypointRightWrist:    {850, 230},
			},
		},
		{
			Name:        "RaiseHighWithOneHand",
			Title:       "Raise High With One Hand",
			Description: "One hand raised high",
			Tolerance:   50,
			KeyPoints:   []KeypointID{KeypointLeftWrist},
			Landmarks: map[KeypointID]Vec2{
				KeypointNose:          {680, 270},
				KeypointLeftShoulder:  {600, 360},
				KeypointRightShoulder: {780, 360},
				KeypointLeftElbow:     {490, 480},
				KeypointRightElbow:    {820, 250},
				KeypointLeftWrist:     {580, 550},
				KeypointRightWrist:    {820, 70},
			},
		},
		{
			Name:           "RiseHighWithTwoHand",
			Title:          "Rise High With Two Hands",
			Description:    "Both hands high above the head",
			Tolerance:      50,
			HeadTolerance:  50,
			WristTolerance: 50,
			KeyPoints:      []KeypointID{KeypointLeftWrist, KeypointRightWrist},
			Landmarks: map[KeypointID]Vec2{
				KeypointNose:          {705, 250},
				KeypointLeftShoulder:  {560, 410},
				KeypointRightShoulder: {800, 410},
				KeypointLeftElbow:     {550, 250},
				KeypointRightElbow:    {830, 250},
				KeypointLeftWrist:     {550, 50},
				KeypointRightWrist:    {830, 50},
			},
		},
		{
			Name:        "CompareHearts",
			Title:       "Compare Hearts",
			Description: "Both hands form a heart above the head",
			Tolerance:   50,
			KeyPoints:   []KeypointID{KeypointLeftWrist, KeypointRightWrist},
			Landmarks: map[KeypointID]Vec2{
				KeypointNose:          {700, 280},
				KeypointLeftShoulder:  {560, 410},
				KeypointRightShoulder: {800, 410},
				KeypointLeftElbow:     {480, 250},
				KeypointRightElbow:    {930, 250},
				KeypointLeftWrist:     {670, 150},
				KeypointRightWrist:    {705, 150},
			},
		},
	}
}
