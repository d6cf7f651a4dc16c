package game

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/phanxgames/zammi"
)

// Art holds the decoded images for one scene. Empty slices draw
// placeholders.
type Art struct {
	Background       []*ebiten.Image
	BackgroundDelays []time.Duration
	Player           []*ebiten.Image
}

// Assets loads and caches images for a story. All paths are resolved
// against the story directory.
type Assets struct {
	story  *Story
	images map[string]*ebiten.Image
}

// NewAssets returns a loader for story.
func NewAssets(story *Story) *Assets {
	return &Assets{story: story, images: make(map[string]*ebiten.Image)}
}

// Image loads a single still image. Results are cached by resolved path.
func (a *Assets) Image(path string) (*ebiten.Image, error) {
	return a.load(a.story.Resolve(path))
}

func (a *Assets) load(full string) (*ebiten.Image, error) {
	if img, ok := a.images[full]; ok {
		return img, nil
	}
	src, err := decodeImage(full)
	if err != nil {
		return nil, err
	}
	img := ebiten.NewImageFromImage(src)
	a.images[full] = img
	return img, nil
}

// SceneArt loads the background and player frames a scene needs.
func (a *Assets) SceneArt(sc *SceneSpec) (*Art, error) {
	art := &Art{}
	bg := sc.Background
	ms := bg.FrameMS
	if ms <= 0 {
		ms = DefaultFrameMS
	}
	switch {
	case bg.Image != "":
		img, err := a.Image(bg.Image)
		if err != nil {
			return nil, err
		}
		art.Background = []*ebiten.Image{img}
	case bg.Frames != "":
		frames, err := a.sequence(bg.Frames)
		if err != nil {
			return nil, err
		}
		art.Background = frames
		for range frames {
			art.BackgroundDelays = append(art.BackgroundDelays, time.Duration(ms)*time.Millisecond)
		}
	case bg.GIF != "":
		frames, delays, err := decodeGIF(a.story.Resolve(bg.GIF))
		if err != nil {
			return nil, err
		}
		for _, f := range frames {
			art.Background = append(art.Background, ebiten.NewImageFromImage(f))
		}
		art.BackgroundDelays = delays
	}
	if sc.Player.Frames != "" {
		frames, err := a.sequence(sc.Player.Frames)
		if err != nil {
			return nil, err
		}
		art.Player = frames
	}
	return art, nil
}

// sequence loads every file matching pattern in name order.
func (a *Assets) sequence(pattern string) ([]*ebiten.Image, error) {
	full := a.story.Resolve(pattern)
	matches, err := filepath.Glob(full)
	if err != nil {
		return nil, fmt.Errorf("game: glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, zammi.MissingAsset("image sequence", full)
	}
	sort.Strings(matches)
	out := make([]*ebiten.Image, 0, len(matches))
	for _, m := range matches {
		img, err := a.load(m)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func decodeImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, zammi.MissingAsset("image", path)
	}
	if err != nil {
		return nil, fmt.Errorf("game: read %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("game: decode %s: %w", path, err)
	}
	return img, nil
}

// decodeGIF returns fully composed frames and their delays. GIF delays are
// in hundredths of a second; a zero delay plays at DefaultFrameMS.
func decodeGIF(path string) ([]image.Image, []time.Duration, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, zammi.MissingAsset("gif", path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("game: read %s: %w", path, err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("game: decode %s: %w", path, err)
	}
	return composeGIF(g)
}

func composeGIF(g *gif.GIF) ([]image.Image, []time.Duration, error) {
	if len(g.Image) == 0 {
		return nil, nil, errors.New("game: gif has no frames")
	}
	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	frames := make([]image.Image, len(g.Image))
	delays := make([]time.Duration, len(g.Image))
	for i, p := range g.Image {
		draw.Draw(canvas, p.Bounds(), p, p.Bounds().Min, draw.Over)
		frame := image.NewRGBA(canvas.Bounds())
		copy(frame.Pix, canvas.Pix)
		frames[i] = frame

		ms := DefaultFrameMS
		if i < len(g.Delay) && g.Delay[i] > 0 {
			ms = g.Delay[i] * 10
		}
		delays[i] = time.Duration(ms) * time.Millisecond

		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalBackground {
			draw.Draw(canvas, p.Bounds(), image.Transparent, image.Point{}, draw.Src)
		}
	}
	return frames, delays, nil
}

var fontSource *text.GoTextFaceSource

// Face returns a Go Regular face at the given size.
func Face(size float64) (*text.GoTextFace, error) {
	if fontSource == nil {
		src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			return nil, fmt.Errorf("game: load font: %w", err)
		}
		fontSource = src
	}
	return &text.GoTextFace{Source: fontSource, Size: size}, nil
}
