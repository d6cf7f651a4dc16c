// Package capture reads camera and video frames through OpenCV.
package capture

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/phanxgames/zammi"
)

var errEmptyFrame = errors.New("capture: empty frame")

// CameraConfig configures a capture device.
type CameraConfig struct {
	Device int
	Width  int
	Height int

	// Mirror flips frames horizontally so the feed behaves like a mirror.
	Mirror bool

	MaxFailures int
}

// Camera is an opened capture device. Frames are read into an internal Mat
// that stays valid until the next read. It is not safe for concurrent use.
type Camera struct {
	cfg   CameraConfig
	cap   *gocv.VideoCapture
	frame gocv.Mat
	guard *FailureGuard
}

// OpenCamera opens the configured device. A device that cannot be opened
// reports zammi.ErrDeviceUnavailable.
func OpenCamera(cfg CameraConfig) (*Camera, error) {
	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: camera %d: %v", zammi.ErrDeviceUnavailable, cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: camera %d not opened", zammi.ErrDeviceUnavailable, cfg.Device)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	return &Camera{
		cfg:   cfg,
		cap:   vc,
		frame: gocv.NewMat(),
		guard: NewFailureGuard(cfg.MaxFailures),
	}, nil
}

// ReadMat reads the next frame, mirrored when configured. Single failed
// reads return ErrFrameSkipped; once the failure bound is reached every
// call returns zammi.ErrDeviceUnavailable.
func (c *Camera) ReadMat() (*gocv.Mat, error) {
	var readErr error
	if ok := c.cap.Read(&c.frame); !ok || c.frame.Empty() {
		readErr = errEmptyFrame
	}
	if err := c.guard.Observe(readErr); err != nil {
		return nil, err
	}
	if c.cfg.Mirror {
		gocv.Flip(c.frame, &c.frame, 1)
	}
	return &c.frame, nil
}

// Image converts the most recent frame to an RGBA image.
func (c *Camera) Image() (image.Image, error) {
	if c.frame.Empty() {
		return nil, errEmptyFrame
	}
	return c.frame.ToImage()
}

// Degraded reports whether the failure bound was reached.
func (c *Camera) Degraded() bool {
	return c.guard.Tripped()
}

// Close releases the device.
func (c *Camera) Close() error {
	err := c.cap.Close()
	c.frame.Close()
	return err
}
