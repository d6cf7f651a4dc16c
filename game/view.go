package game

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/zammi"
)

// Palette.
var (
	colorText      = color.White
	colorShadow    = color.RGBA{0, 0, 0, 200}
	colorPanel     = color.RGBA{20, 20, 30, 220}
	colorBorder    = color.RGBA{230, 230, 230, 255}
	colorTarget    = color.RGBA{230, 40, 40, 255}
	colorLive      = color.RGBA{250, 220, 40, 255}
	colorSuccess   = color.RGBA{60, 220, 90, 255}
	colorFail      = color.RGBA{230, 60, 60, 255}
	colorBar       = color.RGBA{70, 70, 80, 255}
	colorGround    = color.RGBA{60, 90, 120, 255}
	colorPlayerBox = color.RGBA{240, 160, 60, 255}
)

// Text sizes.
const (
	sizeBody   = 28
	sizeHUD    = 32
	sizeBanner = 72
)

// view holds draw-only state: faces and reusable textures.
type view struct {
	body, hud, banner *text.GoTextFace

	camera texture
	video  texture
}

func newView() (*view, error) {
	v := &view{}
	var err error
	if v.body, err = Face(sizeBody); err != nil {
		return nil, err
	}
	if v.hud, err = Face(sizeHUD); err != nil {
		return nil, err
	}
	if v.banner, err = Face(sizeBanner); err != nil {
		return nil, err
	}
	return v, nil
}

// texture uploads decoded frames into one reused ebiten image.
type texture struct {
	img  *ebiten.Image
	rgba *image.RGBA
	src  image.Image
}

// set uploads src unless it is the frame already on the texture.
func (t *texture) set(src image.Image) *ebiten.Image {
	if src == nil {
		return nil
	}
	if src == t.src && t.img != nil {
		return t.img
	}
	b := src.Bounds()
	if t.img == nil || t.rgba.Bounds().Dx() != b.Dx() || t.rgba.Bounds().Dy() != b.Dy() {
		if t.img != nil {
			t.img.Deallocate()
		}
		t.img = ebiten.NewImage(b.Dx(), b.Dy())
		t.rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	draw.Draw(t.rgba, t.rgba.Bounds(), src, b.Min, draw.Src)
	t.img.WritePixels(t.rgba.Pix)
	t.src = src
	return t.img
}

// drawFitted draws img scaled to cover dst exactly.
func drawFitted(dst, img *ebiten.Image) {
	if img == nil {
		return
	}
	sw, sh := img.Bounds().Dx(), img.Bounds().Dy()
	dw, dh := dst.Bounds().Dx(), dst.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(dw)/float64(sw), float64(dh)/float64(sh))
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}

// drawCentered draws img with its center at c.
func drawCentered(dst, img *ebiten.Image, c zammi.Vec2, w, h float64) {
	if img == nil {
		return
	}
	sw, sh := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w/sw, h/sh)
	op.GeoM.Translate(c.X-w/2, c.Y-h/2)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}

// drawText draws s with a one pixel drop shadow. align is text.AlignStart,
// text.AlignCenter or text.AlignEnd along x.
func drawText(dst *ebiten.Image, s string, face *text.GoTextFace, x, y float64, clr color.Color, align text.Align) {
	op := &text.DrawOptions{}
	op.PrimaryAlign = align
	op.LineSpacing = face.Size * 1.3
	op.GeoM.Translate(x+2, y+2)
	op.ColorScale.ScaleWithColor(colorShadow)
	text.Draw(dst, s, face, op)

	op.GeoM.Reset()
	op.GeoM.Translate(x, y)
	op.ColorScale.Reset()
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, face, op)
}

func fillRect(dst *ebiten.Image, r zammi.Rect, clr color.Color) {
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), clr, false)
}

func strokeRect(dst *ebiten.Image, r zammi.Rect, width float32, clr color.Color) {
	vector.StrokeRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), width, clr, false)
}

func strokeCircle(dst *ebiten.Image, c zammi.Vec2, r float64, width float32, clr color.Color) {
	vector.StrokeCircle(dst, float32(c.X), float32(c.Y), float32(r), width, clr, true)
}

func fillCircle(dst *ebiten.Image, c zammi.Vec2, r float64, clr color.Color) {
	vector.DrawFilledCircle(dst, float32(c.X), float32(c.Y), float32(r), clr, true)
}

func line(dst *ebiten.Image, a, b zammi.Vec2, width float32, clr color.Color) {
	vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, clr, true)
}

// drawSkeleton draws bones and joints of k scaled to the screen.
func drawSkeleton(dst *ebiten.Image, k zammi.Keypoints, win zammi.Size, clr color.Color) {
	if k == nil {
		return
	}
	for _, b := range zammi.BodyBones {
		p, ok1 := k[b.From]
		q, ok2 := k[b.To]
		if ok1 && ok2 {
			line(dst, p.Pixel(win), q.Pixel(win), 4, clr)
		}
	}
	for _, p := range k {
		fillCircle(dst, p.Pixel(win), 7, clr)
	}
}
