// Package config loads game settings from an INI file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// EnvPrefix starts every override variable. ZAMMI_CAMERA_MAX_FAILURES sets
// max_failures in [camera].
const EnvPrefix = "ZAMMI_"

// Window configures the game window.
type Window struct {
	Title      string `ini:"title"`
	Width      int    `ini:"width"`
	Height     int    `ini:"height"`
	TPS        int    `ini:"tps"`
	Fullscreen bool   `ini:"fullscreen"`
}

// Camera configures the capture device.
type Camera struct {
	Device      int  `ini:"device"`
	Width       int  `ini:"width"`
	Height      int  `ini:"height"`
	Mirror      bool `ini:"mirror"`
	MaxFailures int  `ini:"max_failures"`
}

// Detector configures the landmark backend.
type Detector struct {
	// Backend is "yolo" for the ONNX pose model or "none" for a source that
	// never sees a body.
	Backend    string  `ini:"backend"`
	Model      string  `ini:"model"`
	InputSize  int     `ini:"input_size"`
	Confidence float64 `ini:"confidence"`
}

// Paths locates data files.
type Paths struct {
	Assets      string `ini:"assets"`
	Story       string `ini:"story"`
	Poses       string `ini:"poses"`
	Screenshots string `ini:"screenshots"`
	TestScript  string `ini:"test_script"`
}

// Log configures logging.
type Log struct {
	Level string `ini:"level"`
}

// Debug toggles the developer overlays.
type Debug struct {
	Enabled bool `ini:"enabled"`
	Ruler   bool `ini:"ruler"`
	FPS     bool `ini:"fps"`
}

// Settings is the full runtime configuration.
type Settings struct {
	Window   Window   `ini:"window"`
	Camera   Camera   `ini:"camera"`
	Detector Detector `ini:"detector"`
	Paths    Paths    `ini:"paths"`
	Log      Log      `ini:"log"`
	Debug    Debug    `ini:"debug"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Window: Window{Title: "Zammi", Width: 1280, Height: 720, TPS: 60},
		Camera: Camera{Width: 1280, Height: 720, Mirror: true, MaxFailures: 30},
		Detector: Detector{
			Backend:    "yolo",
			Model:      "models/yolov8n-pose.onnx",
			InputSize:  640,
			Confidence: 0.5,
		},
		Paths: Paths{
			Assets:      "assets",
			Story:       "story.yaml",
			Poses:       "poses.yaml",
			Screenshots: "screenshots",
		},
		Log:   Log{Level: "info"},
		Debug: Debug{Ruler: true},
	}
}

var loadOptions = ini.LoadOptions{
	Loose:                   true,
	Insensitive:             true,
	SkipUnrecognizableLines: true,
}

// Load reads settings from path over the defaults and then applies
// ZAMMI_* overrides from the process environment. A missing file leaves the
// defaults in place.
func Load(path string) (*Settings, error) {
	return load(path, os.Environ())
}

// Parse reads settings from INI data and the given KEY=VALUE environment.
func Parse(data []byte, environ []string) (*Settings, error) {
	return load(data, environ)
}

func load(source any, environ []string) (*Settings, error) {
	f, err := ini.LoadSources(loadOptions, source)
	if err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	ApplyEnv(f, environ)

	s := Default()
	if err := f.MapTo(s); err != nil {
		return nil, fmt.Errorf("config: map: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ApplyEnv copies ZAMMI_<SECTION>_<KEY> variables into f.
func ApplyEnv(f *ini.File, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		section, key, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_")
		if !ok || key == "" {
			continue
		}
		f.Section(section).Key(key).SetValue(value)
	}
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: env file %s: %w", path, err)
	}
	return nil
}

// Validate checks sizes and counts.
func (s *Settings) Validate() error {
	switch {
	case s.Window.Width <= 0 || s.Window.Height <= 0:
		return fmt.Errorf("config: window size %dx%d", s.Window.Width, s.Window.Height)
	case s.Window.TPS <= 0:
		return fmt.Errorf("config: window tps %d", s.Window.TPS)
	case s.Camera.Width <= 0 || s.Camera.Height <= 0:
		return fmt.Errorf("config: camera size %dx%d", s.Camera.Width, s.Camera.Height)
	case s.Camera.MaxFailures <= 0:
		return fmt.Errorf("config: camera max_failures %d", s.Camera.MaxFailures)
	case s.Detector.Confidence < 0 || s.Detector.Confidence > 1:
		return fmt.Errorf("config: detector confidence %v", s.Detector.Confidence)
	case s.Detector.InputSize <= 0:
		return fmt.Errorf("config: detector input_size %d", s.Detector.InputSize)
	}
	switch s.Detector.Backend {
	case "yolo", "none":
	default:
		return fmt.Errorf("config: unknown detector backend %q", s.Detector.Backend)
	}
	return nil
}
