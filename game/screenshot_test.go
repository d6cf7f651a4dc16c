package game

import "testing"

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "unlabeled"},
		{"   ", "unlabeled"},
		{"floor-1", "floor-1"},
		{"pose v2.0", "pose_v2.0"},
		{"a/b\\c", "a_b_c"},
		{" padded ", "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := sanitizeLabel(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnpremultiply(t *testing.T) {
	pixels := []byte{
		255, 0, 0, 255, // opaque red
		64, 32, 0, 128, // half alpha
		0, 0, 0, 0, // transparent
	}
	img := unpremultiply(pixels, 3, 1)
	tests := []struct {
		x          int
		r, g, b, a uint8
	}{
		{0, 255, 0, 0, 255},
		{1, 127, 63, 0, 128},
		{2, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		c := img.NRGBAAt(tt.x, 0)
		if c.R != tt.r || c.G != tt.g || c.B != tt.b || c.A != tt.a {
			t.Errorf("pixel %d = %v, want (%d,%d,%d,%d)", tt.x, c, tt.r, tt.g, tt.b, tt.a)
		}
	}
}

func TestScreenshotQueues(t *testing.T) {
	g := newTestGame(t, "lobby", Options{})
	g.Screenshot("a")
	g.Input().InjectKeyTap(ActionScreenshot)
	tick(t, g, 1)
	if len(g.screenshotQueue) != 2 || g.screenshotQueue[1] != ModeExplore.String() {
		t.Errorf("queue = %v", g.screenshotQueue)
	}
}
