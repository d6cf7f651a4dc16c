package landmark

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/phanxgames/zammi"
	"github.com/phanxgames/zammi/capture"
)

// Framer is implemented by sources that can show the frame their last
// keypoints came from.
type Framer interface {
	Frame() image.Image
}

// CameraSource runs a detector over camera frames.
type CameraSource struct {
	cam *capture.Camera
	det Detector

	frame image.Image
}

var (
	_ zammi.KeypointSource = (*CameraSource)(nil)
	_ Framer               = (*CameraSource)(nil)
)

// NewCameraSource takes ownership of cam and det.
func NewCameraSource(cam *capture.Camera, det Detector) *CameraSource {
	return &CameraSource{cam: cam, det: det}
}

// Poll reads one frame and detects landmarks in it. A skipped frame yields
// no body and no error; a camera past its failure bound returns
// zammi.ErrDeviceUnavailable.
func (s *CameraSource) Poll() (zammi.Keypoints, error) {
	mat, err := s.cam.ReadMat()
	if errors.Is(err, capture.ErrFrameSkipped) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if img, err := s.cam.Image(); err == nil {
		s.frame = img
	}
	kps, err := s.det.Detect(mat)
	if err != nil {
		return nil, fmt.Errorf("landmark: detect: %w", err)
	}
	return kps, nil
}

// Frame returns the most recent camera frame.
func (s *CameraSource) Frame() image.Image { return s.frame }

// Close releases the detector and the camera.
func (s *CameraSource) Close() error {
	return errors.Join(s.det.Close(), s.cam.Close())
}

// PlaceholderSource never sees a body. It stands in for a missing or failed
// camera and shows a fixed frame.
type PlaceholderSource struct {
	frame image.Image
}

var (
	_ zammi.KeypointSource = (*PlaceholderSource)(nil)
	_ Framer               = (*PlaceholderSource)(nil)
)

// NewPlaceholderSource returns a source showing frame, which may be nil.
func NewPlaceholderSource(frame image.Image) *PlaceholderSource {
	return &PlaceholderSource{frame: frame}
}

func (s *PlaceholderSource) Poll() (zammi.Keypoints, error) { return nil, nil }
func (s *PlaceholderSource) Frame() image.Image            { return s.frame }
func (s *PlaceholderSource) Close() error                  { return nil }

// ScriptedSource replays a fixed sequence of landmark sets. After the last
// one it returns io.EOF, or starts over when Loop is set.
type ScriptedSource struct {
	Loop bool

	frames []zammi.Keypoints
	pos    int
}

var _ zammi.KeypointSource = (*ScriptedSource)(nil)

// NewScriptedSource returns a source replaying frames.
func NewScriptedSource(frames ...zammi.Keypoints) *ScriptedSource {
	return &ScriptedSource{frames: frames}
}

// Hold appends n copies of k.
func (s *ScriptedSource) Hold(k zammi.Keypoints, n int) *ScriptedSource {
	for i := 0; i < n; i++ {
		s.frames = append(s.frames, k)
	}
	return s
}

func (s *ScriptedSource) Poll() (zammi.Keypoints, error) {
	if s.pos >= len(s.frames) {
		if !s.Loop || len(s.frames) == 0 {
			return nil, io.EOF
		}
		s.pos = 0
	}
	k := s.frames[s.pos]
	s.pos++
	return k, nil
}

// Remaining returns the number of frames left before the end of the script.
func (s *ScriptedSource) Remaining() int {
	return len(s.frames) - s.pos
}

func (s *ScriptedSource) Close() error { return nil }

// Config selects and configures a live source.
type Config struct {
	// Backend is "yolo" or "none".
	Backend string
	Camera  capture.CameraConfig
	YOLO    YOLOConfig
}

// Open builds the configured source. When the camera cannot be opened the
// returned source is a placeholder and the error wraps
// zammi.ErrDeviceUnavailable so the caller can log the degradation. Missing
// model files are returned as errors without a source.
func Open(cfg Config) (zammi.KeypointSource, error) {
	if cfg.Backend == "none" {
		return placeholder(cfg.Camera), nil
	}
	det, err := NewYOLO(cfg.YOLO)
	if err != nil {
		return nil, err
	}
	cam, err := capture.OpenCamera(cfg.Camera)
	if err != nil {
		det.Close()
		return placeholder(cfg.Camera), err
	}
	return NewCameraSource(cam, det), nil
}

func placeholder(cfg capture.CameraConfig) *PlaceholderSource {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = 640, 480
	}
	img, _ := capture.Placeholder(w, h)
	return NewPlaceholderSource(img)
}
