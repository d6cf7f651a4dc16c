package game

import (
	"errors"
	"image"
	"io"
	"time"
)

// VideoStream yields decoded video frames. *capture.Video implements it.
type VideoStream interface {
	Next() (image.Image, error)
	FPS() float64
	Close() error
}

// VideoOpener opens a cutscene by resolved path.
type VideoOpener func(path string) (VideoStream, error)

// cutscene paces a video stream to its own frame rate inside the fixed
// tick loop.
type cutscene struct {
	path    string
	video   VideoStream
	frame   image.Image
	elapsed time.Duration
	period  time.Duration
	frames  int
	done    bool
}

func newCutscene(path string, v VideoStream) *cutscene {
	fps := v.FPS()
	if fps <= 0 {
		fps = 30
	}
	return &cutscene{
		path:   path,
		video:  v,
		period: time.Duration(float64(time.Second) / fps),
	}
}

// update reads every frame due after dt. The first call shows the first
// frame and starts the clock. It reports false once the stream has ended or
// failed.
func (c *cutscene) update(dt time.Duration) (bool, error) {
	if c.done {
		return false, nil
	}
	if c.frame == nil {
		return c.next()
	}
	c.elapsed += dt
	for c.elapsed >= c.period {
		c.elapsed -= c.period
		if ok, err := c.next(); !ok {
			return false, err
		}
	}
	return true, nil
}

func (c *cutscene) next() (bool, error) {
	img, err := c.video.Next()
	if err != nil {
		c.done = true
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	c.frame = img
	c.frames++
	return true, nil
}

func (c *cutscene) close() error {
	c.done = true
	return c.video.Close()
}
