package landmark

import (
	"image"
	"testing"

	"github.com/phanxgames/zammi"
)

// poseTensor builds a channel-major output for the given anchors.
type poseTensor struct {
	anchors int
	data    []float32
}

func newPoseTensor(anchors int) *poseTensor {
	return &poseTensor{anchors: anchors, data: make([]float32, poseChannels*anchors)}
}

func (p *poseTensor) set(channel, anchor int, v float32) {
	p.data[channel*p.anchors+anchor] = v
}

func (p *poseTensor) person(anchor int, score float32, kp func(k int) (x, y, conf float32)) {
	p.set(poseBoxValues, anchor, score)
	for k := 0; k < cocoKeypoints; k++ {
		x, y, c := kp(k)
		base := poseBoxValues + 1 + k*3
		p.set(base, anchor, x)
		p.set(base+1, anchor, y)
		p.set(base+2, anchor, c)
	}
}

func TestParsePoseOutputPicksBestPerson(t *testing.T) {
	in := image.Pt(640, 640)
	tensor := newPoseTensor(4)
	tensor.person(1, 0.6, func(k int) (float32, float32, float32) { return 10, 10, 0.9 })
	tensor.person(3, 0.9, func(k int) (float32, float32, float32) {
		return float32(32 * (k + 1)), float32(16 * (k + 1)), 0.9
	})

	kps := ParsePoseOutput(tensor.data, tensor.anchors, in, 0.5, 0.3)
	if kps == nil {
		t.Fatal("no person found")
	}
	wrist, ok := kps[zammi.KeypointRightWrist]
	if !ok {
		t.Fatal("right wrist missing")
	}
	// COCO index 10 is the right wrist.
	if !near(wrist.X, 32*11/640.0) || !near(wrist.Y, 16*11/640.0) {
		t.Errorf("right wrist = (%v, %v)", wrist.X, wrist.Y)
	}
	if _, ok := kps[zammi.KeypointID(1)]; ok {
		t.Error("eye landmarks should be dropped")
	}
	if len(kps) != 13 {
		t.Errorf("landmarks = %d, want 13", len(kps))
	}
}

func TestParsePoseOutputThresholds(t *testing.T) {
	in := image.Pt(640, 640)
	tensor := newPoseTensor(2)
	tensor.person(0, 0.4, func(int) (float32, float32, float32) { return 1, 1, 1 })
	if kps := ParsePoseOutput(tensor.data, 2, in, 0.5, 0.3); kps != nil {
		t.Errorf("low person score: got %d landmarks, want nil", len(kps))
	}

	tensor.person(1, 0.8, func(k int) (float32, float32, float32) {
		if k == 9 {
			return 100, 100, 0.1
		}
		return 100, 100, 0.8
	})
	kps := ParsePoseOutput(tensor.data, 2, in, 0.5, 0.3)
	if kps == nil {
		t.Fatal("expected a person")
	}
	if _, ok := kps[zammi.KeypointLeftWrist]; ok {
		t.Error("low-confidence left wrist should be omitted")
	}
	if kps[zammi.KeypointNose].Visibility < 0.79 {
		t.Errorf("visibility = %v", kps[zammi.KeypointNose].Visibility)
	}
}

func TestParsePoseOutputBadInput(t *testing.T) {
	in := image.Pt(640, 640)
	if ParsePoseOutput(nil, 10, in, 0.5, 0.3) != nil {
		t.Error("short data should yield nil")
	}
	if ParsePoseOutput(make([]float32, poseChannels), 0, in, 0.5, 0.3) != nil {
		t.Error("zero anchors should yield nil")
	}
	if ParsePoseOutput(make([]float32, poseChannels), 1, image.Point{}, 0.5, 0.3) != nil {
		t.Error("zero input size should yield nil")
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}
