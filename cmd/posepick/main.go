// Posepick previews pose tables over a reference image.
//
// Each pose is drawn in reference-window pixels: landmarks as dots, the
// body skeleton, and a circle per landmark showing its tolerance. Key
// points are drawn larger. Use the arrow keys to cycle poses; click to print
// the pixel coordinate under the cursor, ready to paste into a pose file.
//
//	posepick -poses assets/poses.yaml -image assets/poses/strong_action.png
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/zammi"
)

const gridStep = 100

var (
	colorGrid      = color.RGBA{60, 60, 70, 255}
	colorBone      = color.RGBA{255, 220, 0, 255}
	colorPoint     = color.RGBA{255, 60, 60, 255}
	colorTolerance = color.RGBA{80, 200, 255, 140}
)

type picker struct {
	poses *zammi.PoseStore
	names []string
	index int
	bg    *ebiten.Image
	win   zammi.Size
}

func (p *picker) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	n := len(p.names)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) || inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		p.index = (p.index + 1) % n
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) || inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		p.index = (p.index + n - 1) % n
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		fmt.Printf("[%d, %d]\n", x, y)
	}
	return nil
}

func (p *picker) Draw(screen *ebiten.Image) {
	if p.bg != nil {
		op := &ebiten.DrawImageOptions{}
		b := p.bg.Bounds()
		op.GeoM.Scale(p.win.Width/float64(b.Dx()), p.win.Height/float64(b.Dy()))
		screen.DrawImage(p.bg, op)
	}
	for x := 0.0; x <= p.win.Width; x += gridStep {
		vector.StrokeLine(screen, float32(x), 0, float32(x), float32(p.win.Height), 1, colorGrid, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprint(int(x)), int(x)+2, 2)
	}
	for y := 0.0; y <= p.win.Height; y += gridStep {
		vector.StrokeLine(screen, 0, float32(y), float32(p.win.Width), float32(y), 1, colorGrid, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprint(int(y)), 2, int(y)+2)
	}

	pose, err := p.poses.Pose(p.names[p.index])
	if err != nil {
		return
	}
	for _, b := range zammi.BodyBones {
		from, ok1 := pose.Landmarks[b.From]
		to, ok2 := pose.Landmarks[b.To]
		if ok1 && ok2 {
			vector.StrokeLine(screen, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), 3, colorBone, true)
		}
	}
	for id, pt := range pose.Landmarks {
		vector.StrokeCircle(screen, float32(pt.X), float32(pt.Y), float32(pose.ToleranceFor(id)), 1, colorTolerance, true)
		r := float32(5)
		if pose.IsKeyPoint(id) {
			r = 9
		}
		vector.DrawFilledCircle(screen, float32(pt.X), float32(pt.Y), r, colorPoint, true)
		ebitenutil.DebugPrintAt(screen, id.String(), int(pt.X)+10, int(pt.Y)-6)
	}

	title := pose.Name
	if pose.Title != "" {
		title = fmt.Sprintf("%s (%s)", pose.Title, pose.Name)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d/%d %s  tolerance=%.0f",
		p.index+1, len(p.names), title, pose.ToleranceFor(zammi.KeypointLeftElbow)), 8, int(p.win.Height)-20)
}

func (p *picker) Layout(_, _ int) (int, int) {
	return int(p.win.Width), int(p.win.Height)
}

func main() {
	posesPath := flag.String("poses", "assets/poses.yaml", "pose file (yaml or json)")
	imagePath := flag.String("image", "", "reference image drawn behind the pose")
	flag.Parse()

	poses, err := zammi.LoadPoseFile(*posesPath)
	if errors.Is(err, zammi.ErrAssetNotFound) {
		log.Printf("%s not found, showing built-in poses", *posesPath)
		poses, err = zammi.NewPoseStore(zammi.ReferenceWindow, zammi.DefaultPoses()...)
	}
	if err != nil {
		log.Fatal(err)
	}

	p := &picker{poses: poses, names: poses.Names(), win: poses.Window()}
	if len(p.names) == 0 {
		log.Fatal("no poses")
	}
	if *imagePath != "" {
		img, _, err := ebitenutil.NewImageFromFile(*imagePath)
		if err != nil {
			log.Fatal(err)
		}
		p.bg = img
	}

	ebiten.SetWindowTitle("Posepick")
	ebiten.SetWindowSize(int(p.win.Width), int(p.win.Height))
	if err := ebiten.RunGame(p); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
