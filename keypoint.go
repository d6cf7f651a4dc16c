package zammi

import "fmt"

// KeypointID identifies a body landmark. Values follow the 33-point
// MediaPipe pose layout so pose tables stay compatible with common
// landmark backends.
type KeypointID int

const (
	KeypointNose          KeypointID = 0
	KeypointLeftShoulder  KeypointID = 11
	KeypointRightShoulder KeypointID = 12
	KeypointLeftElbow     KeypointID = 13
	KeypointRightElbow    KeypointID = 14
	KeypointLeftWrist     KeypointID = 15
	KeypointRightWrist    KeypointID = 16
	KeypointLeftHip       KeypointID = 23
	KeypointRightHip      KeypointID = 24
	KeypointLeftKnee      KeypointID = 25
	KeypointRightKnee     KeypointID = 26
	KeypointLeftAnkle     KeypointID = 27
	KeypointRightAnkle    KeypointID = 28

	// KeypointCount is the size of the landmark layout.
	KeypointCount = 33
)

var keypointNames = map[KeypointID]string{
	KeypointNose:          "nose",
	KeypointLeftShoulder:  "left_shoulder",
	KeypointRightShoulder: "right_shoulder",
	KeypointLeftElbow:     "left_elbow",
	KeypointRightElbow:    "right_elbow",
	KeypointLeftWrist:     "left_wrist",
	KeypointRightWrist:    "right_wrist",
	KeypointLeftHip:       "left_hip",
	KeypointRightHip:      "right_hip",
	KeypointLeftKnee:      "left_knee",
	KeypointRightKnee:     "right_knee",
	KeypointLeftAnkle:     "left_ankle",
	KeypointRightAnkle:    "right_ankle",
}

// String returns the landmark name, or its index for unnamed landmarks.
func (id KeypointID) String() string {
	if n, ok := keypointNames[id]; ok {
		return n
	}
	return fmt.Sprintf("keypoint_%d", int(id))
}

// Valid reports whether id lies inside the landmark layout.
func (id KeypointID) Valid() bool {
	return id >= 0 && id < KeypointCount
}

// UpperBody is the fixed subset compared by the scorer. Torso and leg points
// are ignored for matching even when present.
var UpperBody = []KeypointID{
	KeypointNose,
	KeypointLeftShoulder, KeypointRightShoulder,
	KeypointLeftElbow, KeypointRightElbow,
	KeypointLeftWrist, KeypointRightWrist,
}

// Bone is a pair of landmarks drawn as a skeleton segment.
type Bone struct {
	From, To KeypointID
}

// BodyBones is the skeleton drawn over camera frames and pose previews
// (head to shoulders, torso, arms, legs; no face or hand detail).
var BodyBones = []Bone{
	{KeypointNose, KeypointLeftShoulder},
	{KeypointNose, KeypointRightShoulder},
	{KeypointLeftShoulder, KeypointRightShoulder},
	{KeypointLeftShoulder, KeypointLeftHip},
	{KeypointRightShoulder, KeypointRightHip},
	{KeypointLeftHip, KeypointRightHip},
	{KeypointLeftShoulder, KeypointLeftElbow},
	{KeypointLeftElbow, KeypointLeftWrist},
	{KeypointRightShoulder, KeypointRightElbow},
	{KeypointRightElbow, KeypointRightWrist},
	{KeypointLeftHip, KeypointLeftKnee},
	{KeypointLeftKnee, KeypointLeftAnkle},
	{KeypointRightHip, KeypointRightKnee},
	{KeypointRightKnee, KeypointRightAnkle},
}

// Keypoint is one landmark with X/Y normalized to [0, 1] of the frame.
// Z and Visibility are passed through from the backend when available.
type Keypoint struct {
	X, Y       float64
	Z          float64
	Visibility float64
}

// Pixel converts the normalized position into pixel space for the window.
func (k Keypoint) Pixel(win Size) Vec2 {
	return Vec2{k.X * win.Width, k.Y * win.Height}
}

// Keypoints is the landmark set of one frame. A nil map means no body was
// detected in the frame.
type Keypoints map[KeypointID]Keypoint

// Has reports whether every id is present.
func (k Keypoints) Has(ids ...KeypointID) bool {
	for _, id := range ids {
		if _, ok := k[id]; !ok {
			return false
		}
	}
	return true
}

// KeypointSource supplies one landmark set per call. Poll blocks for at most
// one frame of capture and inference. It returns a nil set with a nil error
// when the frame holds no body.
type KeypointSource interface {
	Poll() (Keypoints, error)
	Close() error
}
