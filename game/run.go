package game

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/zammi"
	"github.com/phanxgames/zammi/capture"
	"github.com/phanxgames/zammi/catch"
	"github.com/phanxgames/zammi/internal/config"
	zlog "github.com/phanxgames/zammi/internal/log"
	"github.com/phanxgames/zammi/landmark"
)

// assetPath resolves a settings path against the assets directory.
func assetPath(s *config.Settings, p string) string {
	if p == "" || filepath.IsAbs(p) || s.Paths.Assets == "" {
		return p
	}
	return filepath.Join(s.Paths.Assets, p)
}

// LoadPoses reads the configured pose table. An empty path selects the
// built-in poses; a named file that is missing is ErrAssetNotFound.
func LoadPoses(s *config.Settings, log *slog.Logger) (*zammi.PoseStore, error) {
	var (
		poses *zammi.PoseStore
		err   error
	)
	if s.Paths.Poses == "" {
		log.Info("no pose file configured, using built-in poses")
		poses, err = zammi.NewPoseStore(zammi.ReferenceWindow, zammi.DefaultPoses()...)
	} else {
		poses, err = zammi.LoadPoseFile(assetPath(s, s.Paths.Poses))
	}
	if err != nil {
		return nil, err
	}
	poses.SetMirrored(s.Camera.Mirror)
	return poses, nil
}

// NewFactory returns a challenge factory with every built-in kind.
func NewFactory(poses *zammi.PoseStore) *zammi.ChallengeFactory {
	f := zammi.NewChallengeFactory(poses)
	catch.Register(f)
	return f
}

// OpenSource opens the configured landmark source. A camera that cannot be
// opened is logged and replaced by a placeholder.
func OpenSource(s *config.Settings, log *slog.Logger) (zammi.KeypointSource, error) {
	yolo := landmark.DefaultYOLOConfig()
	yolo.ModelPath = assetPath(s, s.Detector.Model)
	yolo.ConfidenceThresh = float32(s.Detector.Confidence)
	yolo.InputWidth = s.Detector.InputSize
	yolo.InputHeight = s.Detector.InputSize

	src, err := landmark.Open(landmark.Config{
		Backend: s.Detector.Backend,
		Camera: capture.CameraConfig{
			Device:      s.Camera.Device,
			Width:       s.Camera.Width,
			Height:      s.Camera.Height,
			Mirror:      s.Camera.Mirror,
			MaxFailures: s.Camera.MaxFailures,
		},
		YOLO: yolo,
	})
	if errors.Is(err, zammi.ErrDeviceUnavailable) && src != nil {
		log.Warn("camera unavailable, challenges will show a placeholder", "err", err)
		return src, nil
	}
	return src, err
}

// LoadScriptFile reads the configured test script. It returns nil when none
// is set.
func LoadScriptFile(s *config.Settings) (*TestRunner, error) {
	if s.Paths.TestScript == "" {
		return nil, nil
	}
	path := assetPath(s, s.Paths.TestScript)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, zammi.MissingAsset("test script", path)
	}
	if err != nil {
		return nil, fmt.Errorf("game: test script: %w", err)
	}
	return LoadTestScript(data)
}

func openVideo(path string) (VideoStream, error) {
	v, err := capture.OpenVideo(path)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Run loads everything the settings name, validates it and runs the game
// until the window closes or the player quits.
func Run(s *config.Settings) error {
	log, session := zlog.NewSession(nil)
	log.Info("starting", "title", s.Window.Title, "session", session)

	poses, err := LoadPoses(s, log)
	if err != nil {
		return err
	}
	factory := NewFactory(poses)

	story, err := LoadStory(assetPath(s, s.Paths.Story))
	if err != nil {
		return err
	}
	if err := story.Validate(factory); err != nil {
		return err
	}

	src, err := OpenSource(s, log)
	if err != nil {
		return err
	}

	g, err := New(Options{
		Story:         story,
		Factory:       factory,
		Poses:         poses,
		Source:        src,
		Assets:        NewAssets(story),
		OpenVideo:     openVideo,
		Logger:        log,
		Window:        zammi.Size{Width: float64(s.Window.Width), Height: float64(s.Window.Height)},
		TPS:           s.Window.TPS,
		Live:          true,
		Debug:         DebugOptions{Enabled: s.Debug.Enabled, Ruler: s.Debug.Ruler, FPS: s.Debug.FPS},
		ScreenshotDir: assetPath(s, s.Paths.Screenshots),
	})
	if err != nil {
		src.Close()
		return err
	}
	defer func() {
		if err := g.Close(); err != nil {
			log.Warn("close source", "err", err)
		}
	}()

	runner, err := LoadScriptFile(s)
	if err != nil {
		return err
	}
	if runner != nil {
		g.SetTestRunner(runner)
		log.Info("test script attached", "path", assetPath(s, s.Paths.TestScript))
	}

	ebiten.SetWindowTitle(s.Window.Title)
	ebiten.SetWindowSize(s.Window.Width, s.Window.Height)
	ebiten.SetTPS(s.Window.TPS)
	ebiten.SetFullscreen(s.Window.Fullscreen)
	if err := ebiten.RunGame(g); err != nil {
		return err
	}
	log.Info("stopped", "ticks", g.Ticks())
	return nil
}
