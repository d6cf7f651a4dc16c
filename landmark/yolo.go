// Package landmark provides keypoint sources: an ONNX pose model fed by a
// camera, a placeholder for machines without one, and scripted sources for
// tests.
package landmark

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"gocv.io/x/gocv"

	"github.com/phanxgames/zammi"
)

// Detector finds body landmarks in a BGR frame.
type Detector interface {
	// Detect returns nil keypoints when no person is found.
	Detect(frame *gocv.Mat) (zammi.Keypoints, error)
	Close() error
}

// YOLOv8-pose output layout: per anchor 4 box values, one person score and
// 17 COCO keypoints of (x, y, confidence).
const (
	poseBoxValues    = 4
	cocoKeypoints    = 17
	poseChannels     = poseBoxValues + 1 + cocoKeypoints*3
	defaultInputSize = 640
)

// cocoToBody maps COCO keypoint order onto the landmark ids used by pose
// tables. Face points other than the nose are dropped.
var cocoToBody = [cocoKeypoints]zammi.KeypointID{
	0:  zammi.KeypointNose,
	1:  -1,
	2:  -1,
	3:  -1,
	4:  -1,
	5:  zammi.KeypointLeftShoulder,
	6:  zammi.KeypointRightShoulder,
	7:  zammi.KeypointLeftElbow,
	8:  zammi.KeypointRightElbow,
	9:  zammi.KeypointLeftWrist,
	10: zammi.KeypointRightWrist,
	11: zammi.KeypointLeftHip,
	12: zammi.KeypointRightHip,
	13: zammi.KeypointLeftKnee,
	14: zammi.KeypointRightKnee,
	15: zammi.KeypointLeftAnkle,
	16: zammi.KeypointRightAnkle,
}

// YOLOConfig holds pose detector configuration.
type YOLOConfig struct {
	ModelPath        string
	ConfidenceThresh float32
	// KeypointThresh drops individual landmarks with a lower confidence.
	KeypointThresh float32
	InputWidth     int
	InputHeight    int
}

// DefaultYOLOConfig returns defaults for yolov8n-pose.
func DefaultYOLOConfig() YOLOConfig {
	return YOLOConfig{
		ModelPath:        "models/yolov8n-pose.onnx",
		ConfidenceThresh: 0.5,
		KeypointThresh:   0.3,
		InputWidth:       defaultInputSize,
		InputHeight:      defaultInputSize,
	}
}

// YOLODetector runs a YOLOv8-pose ONNX model through the OpenCV DNN module.
type YOLODetector struct {
	net       gocv.Net
	config    YOLOConfig
	inputSize image.Point
}

var _ Detector = (*YOLODetector)(nil)

// NewYOLO loads the model. A missing file reports zammi.ErrAssetNotFound.
func NewYOLO(cfg YOLOConfig) (*YOLODetector, error) {
	if _, err := os.Stat(cfg.ModelPath); errors.Is(err, fs.ErrNotExist) {
		return nil, zammi.MissingAsset("model", cfg.ModelPath)
	}
	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		cfg.InputWidth, cfg.InputHeight = defaultInputSize, defaultInputSize
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("landmark: failed to load pose model from %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLODetector{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Detect returns the landmarks of the most confident person in frame,
// normalized to the frame size.
func (d *YOLODetector) Detect(frame *gocv.Mat) (zammi.Keypoints, error) {
	if frame == nil || frame.Empty() {
		return nil, errors.New("landmark: empty frame")
	}

	blob := gocv.BlobFromImage(*frame, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	// Output shape [1, 56, N]; the Mat reports it as 56 rows by N columns
	// once the batch dimension is dropped.
	sizes := output.Size()
	if len(sizes) != 3 || sizes[1] != poseChannels {
		return nil, fmt.Errorf("landmark: unexpected pose output shape %v", sizes)
	}
	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("landmark: read pose output: %w", err)
	}
	return ParsePoseOutput(data, sizes[2], d.inputSize, d.config.ConfidenceThresh, d.config.KeypointThresh), nil
}

// ParsePoseOutput decodes a channel-major YOLOv8-pose tensor with the given
// number of anchors and returns the landmarks of the best-scoring person
// above minScore, normalized by the network input size. Landmarks below
// minKeypoint confidence are omitted. It returns nil when nobody qualifies.
func ParsePoseOutput(data []float32, anchors int, input image.Point, minScore, minKeypoint float32) zammi.Keypoints {
	if anchors <= 0 || len(data) < poseChannels*anchors || input.X <= 0 || input.Y <= 0 {
		return nil
	}
	at := func(channel, anchor int) float32 {
		return data[channel*anchors+anchor]
	}

	best, bestScore := -1, minScore
	for i := 0; i < anchors; i++ {
		if s := at(poseBoxValues, i); s >= bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return nil
	}

	kps := make(zammi.Keypoints, cocoKeypoints)
	for k := 0; k < cocoKeypoints; k++ {
		id := cocoToBody[k]
		if id < 0 {
			continue
		}
		base := poseBoxValues + 1 + k*3
		conf := at(base+2, best)
		if conf < minKeypoint {
			continue
		}
		kps[id] = zammi.Keypoint{
			X:          float64(at(base, best)) / float64(input.X),
			Y:          float64(at(base+1, best)) / float64(input.Y),
			Visibility: float64(conf),
		}
	}
	return kps
}

// Close releases the network.
func (d *YOLODetector) Close() error {
	return d.net.Close()
}
