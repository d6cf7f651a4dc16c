package capture

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// PlaceholderText is drawn on the frame shown when no camera is available.
const PlaceholderText = "Camera Not Available"

// Placeholder renders a black frame of the given size with PlaceholderText
// roughly centered.
func Placeholder(width, height int) (image.Image, error) {
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
	defer mat.Close()

	const scale, thickness = 1.0, 2
	size := gocv.GetTextSize(PlaceholderText, gocv.FontHersheySimplex, scale, thickness)
	at := image.Pt((width-size.X)/2, (height+size.Y)/2)
	gocv.PutText(&mat, PlaceholderText, at, gocv.FontHersheySimplex, scale, color.RGBA{255, 255, 255, 255}, thickness)
	return mat.ToImage()
}
