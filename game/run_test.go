package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/phanxgames/zammi"
	"github.com/phanxgames/zammi/internal/config"
	"github.com/phanxgames/zammi/landmark"
)

func TestAssetPath(t *testing.T) {
	s := config.Default()
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"story.yaml", filepath.Join("assets", "story.yaml")},
		{"/abs/story.yaml", "/abs/story.yaml"},
	}
	for _, tt := range tests {
		if got := assetPath(s, tt.in); got != tt.want {
			t.Errorf("assetPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	s.Paths.Assets = ""
	if got := assetPath(s, "story.yaml"); got != "story.yaml" {
		t.Errorf("without assets dir got %q", got)
	}
}

func TestLoadPoses(t *testing.T) {
	dir := t.TempDir()
	s := config.Default()
	s.Paths.Assets = dir

	s.Paths.Poses = ""
	poses, err := LoadPoses(s, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if poses.Len() != len(zammi.DefaultPoses()) || !poses.Mirrored() {
		t.Errorf("built-in store: len=%d mirrored=%v", poses.Len(), poses.Mirrored())
	}

	s.Paths.Poses = "poses.yaml"
	if _, err := LoadPoses(s, quietLogger()); !errors.Is(err, zammi.ErrAssetNotFound) {
		t.Fatalf("missing file: got %v, want ErrAssetNotFound", err)
	}

	data := []byte(`
poses:
  wave:
    key_points: [16]
    landmarks:
      0: [640, 200]
      16: [900, 100]
`)
	if err := os.WriteFile(filepath.Join(dir, "poses.yaml"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	s.Camera.Mirror = false
	poses, err = LoadPoses(s, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if poses.Mirrored() {
		t.Error("mirroring should follow camera.mirror")
	}
	if _, err := poses.Pose("wave"); err != nil {
		t.Errorf("Pose(wave): %v", err)
	}
}

func TestLoadScriptFile(t *testing.T) {
	dir := t.TempDir()
	s := config.Default()
	s.Paths.Assets = dir

	s.Paths.TestScript = ""
	r, err := LoadScriptFile(s)
	if r != nil || err != nil {
		t.Fatalf("no script: got %v, %v; want nil, nil", r, err)
	}

	s.Paths.TestScript = filepath.Join("scripts", "smoke.json")
	if _, err := LoadScriptFile(s); !errors.Is(err, zammi.ErrAssetNotFound) {
		t.Fatalf("missing script: got %v, want ErrAssetNotFound", err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "scripts"), 0o755); err != nil {
		t.Fatal(err)
	}
	script := []byte(`{"steps": [{"action": "wait", "frames": 2}]}`)
	if err := os.WriteFile(filepath.Join(dir, "scripts", "smoke.json"), script, 0o644); err != nil {
		t.Fatal(err)
	}
	r, err = LoadScriptFile(s)
	if err != nil {
		t.Fatalf("script under assets: %v", err)
	}
	if r == nil || r.Done() {
		t.Errorf("runner = %v, want one pending step", r)
	}
}

func TestOpenSourceWithoutDetector(t *testing.T) {
	s := config.Default()
	s.Detector.Backend = "none"
	src, err := OpenSource(s, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	if _, ok := src.(*landmark.PlaceholderSource); !ok {
		t.Fatalf("got %T, want *landmark.PlaceholderSource", src)
	}
	k, err := src.Poll()
	if k != nil || err != nil {
		t.Errorf("Poll = %v, %v; want nil, nil", k, err)
	}
}

func TestNewFactoryKinds(t *testing.T) {
	kinds := NewFactory(testPoses(t)).Kinds()
	want := map[string]bool{zammi.KindPose: true, zammi.KindGesture: true, "catch": true}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v", kinds)
	}
	for _, k := range kinds {
		if !want[k] {
			t.Errorf("unexpected kind %q", k)
		}
	}
}
