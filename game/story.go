package game

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phanxgames/zammi"
)

// Defaults applied to scene fields left empty in the story file.
var (
	DefaultDetectionOffset = zammi.Vec2{X: -40, Y: 100}
	DefaultPlayerSize      = zammi.Vec2{X: 120, Y: 160}
)

const (
	DefaultSpeed   = 5.0
	DefaultFrameMS = 100
)

// Point is an [x, y] pair in story files.
type Point [2]float64

// Vec converts p to a zammi.Vec2.
func (p Point) Vec() zammi.Vec2 { return zammi.Vec2{X: p[0], Y: p[1]} }

// Story is the data-driven description of every scene in the game.
type Story struct {
	Start string `yaml:"start"`

	// PoseImages is a directory holding <pose>.png silhouettes shown during
	// pose challenges. Empty disables silhouettes.
	PoseImages string `yaml:"pose_images"`

	Scenes []SceneSpec `yaml:"scenes"`

	// Dir resolves relative asset paths. It is the story file's directory
	// unless set otherwise.
	Dir string `yaml:"-"`
}

// BackgroundSpec selects one of three background sources. Exactly one of
// Image, Frames or GIF may be set; none gives a flat fill.
type BackgroundSpec struct {
	Image   string `yaml:"image"`
	Frames  string `yaml:"frames"` // glob, sorted by name
	GIF     string `yaml:"gif"`
	FrameMS int    `yaml:"frame_ms"`
}

// PlayerSpec configures the player sprite.
type PlayerSpec struct {
	Frames  string  `yaml:"frames"` // glob of walk frames; empty draws a box
	FrameMS int     `yaml:"frame_ms"`
	Spawn   Point   `yaml:"spawn"` // sprite center
	Size    *Point  `yaml:"size"`
	Speed   float64 `yaml:"speed"`
}

// MovementSpec limits player movement.
type MovementSpec struct {
	Vertical bool `yaml:"vertical"`
	// ClampY bounds the sprite center vertically when set.
	ClampY *Point `yaml:"clamp_y"`
}

// ExitEnd as an exit target ends the game.
const ExitEnd = "end"

// ExitSpec names the scene entered when the player walks off an edge.
// An empty side blocks the edge.
type ExitSpec struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

// CompleteSpec runs when a challenge zone's challenge succeeds.
type CompleteSpec struct {
	Teleport *Point `yaml:"teleport"`
	Dialogue string `yaml:"dialogue"`
	// Freeze stops player movement until Dialogue is finished.
	Freeze bool `yaml:"freeze"`
}

// ZoneSpec declares a trigger zone.
type ZoneSpec struct {
	ID           string  `yaml:"id"`
	Center       Point   `yaml:"center"`
	Radius       float64 `yaml:"radius"`
	MarkerRadius float64 `yaml:"marker_radius"`
	Policy       string  `yaml:"policy"`

	// Dialogue is shown while the player stands in a rearmable zone.
	Dialogue string `yaml:"dialogue"`

	// Challenge starts when the player enters a one-shot zone.
	Challenge  *zammi.ChallengeSpec `yaml:"challenge"`
	OnComplete *CompleteSpec        `yaml:"on_complete"`
}

// DialogueSpec declares a dialogue. OnFinish is "video:<path>" to play a
// cutscene or "scene:<id>" to change scene after the last page.
type DialogueSpec struct {
	ID       string               `yaml:"id"`
	Pages    []zammi.DialoguePage `yaml:"pages"`
	OnFinish string               `yaml:"on_finish"`
}

// SceneSpec declares one room.
type SceneSpec struct {
	ID              string         `yaml:"id"`
	Background      BackgroundSpec `yaml:"background"`
	Player          PlayerSpec     `yaml:"player"`
	Movement        MovementSpec   `yaml:"movement"`
	DetectionOffset *Point         `yaml:"detection_offset"`
	Exits           ExitSpec       `yaml:"exits"`
	Zones           []ZoneSpec     `yaml:"zones"`
	Dialogues       []DialogueSpec `yaml:"dialogues"`
}

// Offset returns the detection offset, defaulting to DefaultDetectionOffset.
func (s *SceneSpec) Offset() zammi.Vec2 {
	if s.DetectionOffset == nil {
		return DefaultDetectionOffset
	}
	return s.DetectionOffset.Vec()
}

func (s *SceneSpec) dialogue(id string) *DialogueSpec {
	for i := range s.Dialogues {
		if s.Dialogues[i].ID == id {
			return &s.Dialogues[i]
		}
	}
	return nil
}

// Finish actions.
const (
	finishVideo = "video"
	finishScene = "scene"
)

func parseFinish(s string) (kind, arg string, err error) {
	if s == "" {
		return "", "", nil
	}
	kind, arg, ok := strings.Cut(s, ":")
	if !ok || arg == "" || (kind != finishVideo && kind != finishScene) {
		return "", "", fmt.Errorf("bad on_finish %q", s)
	}
	return kind, arg, nil
}

// LoadStory reads and parses a story file. Relative asset paths resolve
// against the file's directory.
func LoadStory(path string) (*Story, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, zammi.MissingAsset("story", path)
	}
	if err != nil {
		return nil, fmt.Errorf("game: read story: %w", err)
	}
	return ParseStory(data, filepath.Dir(path))
}

// ParseStory parses story YAML. dir resolves relative asset paths.
func ParseStory(data []byte, dir string) (*Story, error) {
	var s Story
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("game: parse story: %w", err)
	}
	s.Dir = dir
	if s.Start == "" && len(s.Scenes) > 0 {
		s.Start = s.Scenes[0].ID
	}
	return &s, nil
}

// Resolve returns path relative to the story directory.
func (s *Story) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || s.Dir == "" {
		return path
	}
	return filepath.Join(s.Dir, path)
}

// Scene returns the scene with the given id.
func (s *Story) Scene(id string) (*SceneSpec, bool) {
	for i := range s.Scenes {
		if s.Scenes[i].ID == id {
			return &s.Scenes[i], true
		}
	}
	return nil, false
}

// PoseImage returns the story-relative silhouette path for a pose, or ""
// when silhouettes are disabled.
func (s *Story) PoseImage(pose string) string {
	if s.PoseImages == "" {
		return ""
	}
	return filepath.Join(s.PoseImages, pose+".png")
}

// Validate checks references and asset files before the game starts. Every
// challenge is built once through f so unknown poses and kinds surface
// here.
func (s *Story) Validate(f *zammi.ChallengeFactory) error {
	if len(s.Scenes) == 0 {
		return errors.New("game: story has no scenes")
	}
	seen := make(map[string]bool, len(s.Scenes))
	for _, sc := range s.Scenes {
		if sc.ID == "" {
			return errors.New("game: scene without id")
		}
		if seen[sc.ID] {
			return fmt.Errorf("game: duplicate scene %q", sc.ID)
		}
		seen[sc.ID] = true
	}
	if !seen[s.Start] {
		return fmt.Errorf("game: start scene %q not found", s.Start)
	}
	for i := range s.Scenes {
		if err := s.validateScene(&s.Scenes[i], seen, f); err != nil {
			return fmt.Errorf("game: scene %q: %w", s.Scenes[i].ID, err)
		}
	}
	return nil
}

func (s *Story) validateScene(sc *SceneSpec, scenes map[string]bool, f *zammi.ChallengeFactory) error {
	bg := sc.Background
	set := 0
	for _, p := range []string{bg.Image, bg.Frames, bg.GIF} {
		if p != "" {
			set++
		}
	}
	if set > 1 {
		return errors.New("background: image, frames and gif are exclusive")
	}
	if err := s.checkFile("background", bg.Image); err != nil {
		return err
	}
	if err := s.checkFile("background", bg.GIF); err != nil {
		return err
	}
	if err := s.checkGlob("background", bg.Frames); err != nil {
		return err
	}
	if err := s.checkGlob("player", sc.Player.Frames); err != nil {
		return err
	}
	for _, id := range []string{sc.Exits.Left, sc.Exits.Right} {
		if id != "" && id != ExitEnd && !scenes[id] {
			return fmt.Errorf("exit to unknown scene %q", id)
		}
	}

	for _, d := range sc.Dialogues {
		for _, p := range d.Pages {
			if err := s.checkFile("dialogue", p.Image); err != nil {
				return err
			}
		}
		kind, arg, err := parseFinish(d.OnFinish)
		if err != nil {
			return fmt.Errorf("dialogue %q: %w", d.ID, err)
		}
		switch kind {
		case finishVideo:
			if err := s.checkFile("video", arg); err != nil {
				return err
			}
		case finishScene:
			if !scenes[arg] {
				return fmt.Errorf("dialogue %q: unknown scene %q", d.ID, arg)
			}
		}
	}

	ids := make(map[string]bool, len(sc.Zones))
	for _, z := range sc.Zones {
		if ids[z.ID] {
			return fmt.Errorf("duplicate zone %q", z.ID)
		}
		ids[z.ID] = true
		policy, err := zammi.ParseZonePolicy(z.Policy)
		if err != nil {
			return fmt.Errorf("zone %q: %w", z.ID, err)
		}
		if z.Dialogue != "" && sc.dialogue(z.Dialogue) == nil {
			return fmt.Errorf("zone %q: unknown dialogue %q", z.ID, z.Dialogue)
		}
		if z.Challenge != nil {
			if policy != zammi.PolicyOneShot {
				return fmt.Errorf("zone %q: challenges need a one-shot zone", z.ID)
			}
			if _, err := f.Build(*z.Challenge); err != nil {
				return fmt.Errorf("zone %q: %w", z.ID, err)
			}
			for _, st := range z.Challenge.Stages {
				if err := s.checkFile("pose image", s.PoseImage(st.Pose)); err != nil {
					return err
				}
			}
		}
		if c := z.OnComplete; c != nil && c.Dialogue != "" && sc.dialogue(c.Dialogue) == nil {
			return fmt.Errorf("zone %q: unknown completion dialogue %q", z.ID, c.Dialogue)
		}
	}
	return nil
}

// checkFile reports a missing file as zammi.ErrAssetNotFound.
func (s *Story) checkFile(kind, path string) error {
	if path == "" {
		return nil
	}
	full := s.Resolve(path)
	if _, err := os.Stat(full); err != nil {
		return zammi.MissingAsset(kind, full)
	}
	return nil
}

func (s *Story) checkGlob(kind, pattern string) error {
	if pattern == "" {
		return nil
	}
	matches, err := filepath.Glob(s.Resolve(pattern))
	if err != nil {
		return fmt.Errorf("%s glob %q: %w", kind, pattern, err)
	}
	if len(matches) == 0 {
		return zammi.MissingAsset(kind, s.Resolve(pattern))
	}
	return nil
}
