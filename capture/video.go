package capture

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"

	"gocv.io/x/gocv"

	"github.com/phanxgames/zammi"
)

// DefaultVideoFPS is used when a file does not report its frame rate.
const DefaultVideoFPS = 30.0

// Video decodes a video file frame by frame.
type Video struct {
	path  string
	cap   *gocv.VideoCapture
	frame gocv.Mat
	fps   float64
}

// OpenVideo opens a video file. A missing file reports
// zammi.ErrAssetNotFound.
func OpenVideo(path string) (*Video, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, zammi.MissingAsset("video", path)
	}
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open video %s: %w", path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("capture: open video %s: not opened", path)
	}
	fps := vc.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = DefaultVideoFPS
	}
	return &Video{path: path, cap: vc, frame: gocv.NewMat(), fps: fps}, nil
}

// Path returns the file the video was opened from.
func (v *Video) Path() string { return v.path }

// FPS returns the file's frame rate.
func (v *Video) FPS() float64 { return v.fps }

// Next decodes the next frame. It returns io.EOF at the end of the stream.
func (v *Video) Next() (image.Image, error) {
	if ok := v.cap.Read(&v.frame); !ok || v.frame.Empty() {
		return nil, io.EOF
	}
	return v.frame.ToImage()
}

// Close releases the decoder.
func (v *Video) Close() error {
	err := v.cap.Close()
	v.frame.Close()
	return err
}
