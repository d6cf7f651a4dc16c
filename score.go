package zammi

import "math"

// Key points weigh twice as much as the rest of the compared landmarks.
const (
	keyPointWeight  = 2.0
	basePointWeight = 1.0
)

// PointMatch is the per-landmark diagnostic of one comparison.
type PointMatch struct {
	ID         KeypointID
	Missing    bool    // landmark absent from the live set
	DiffX      float64 // absolute normalized difference
	DiffY      float64
	TolX       float64 // normalized tolerance
	TolY       float64
	Similarity float64
	Weight     float64
}

// SimilarityResult is the outcome of comparing a live landmark set with a
// pose. Score lies in [0, 1].
type SimilarityResult struct {
	Score  float64
	Points []PointMatch
}

// Scorer compares live landmarks against pose configurations. It holds no
// state between calls; the zero value uses ReferenceWindow without
// mirroring.
type Scorer struct {
	Window   Size
	Mirrored bool

	// Compare lists the landmarks taken into account. Nil means UpperBody.
	Compare []KeypointID
}

func (s Scorer) window() Size {
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return ReferenceWindow
	}
	return s.Window
}

func (s Scorer) compared() []KeypointID {
	if s.Compare == nil {
		return UpperBody
	}
	return s.Compare
}

// Score returns the weighted similarity of live against pose.
func (s Scorer) Score(live Keypoints, pose *PoseConfig) float64 {
	return s.Evaluate(live, pose).Score
}

// Evaluate compares live against pose and reports per-landmark detail.
// A nil live set or a nil pose yields a zero score. Compared landmarks that
// the pose does not define are skipped; landmarks the pose defines but the
// live set lacks score zero at their full weight.
func (s Scorer) Evaluate(live Keypoints, pose *PoseConfig) SimilarityResult {
	if live == nil || pose == nil {
		return SimilarityResult{}
	}
	win := s.window()
	target := pose.Normalized(win, s.Mirrored)

	var res SimilarityResult
	var weighted, total float64
	for _, id := range s.compared() {
		want, ok := target[id]
		if !ok {
			continue
		}
		pm := PointMatch{ID: id, Weight: basePointWeight}
		if pose.IsKeyPoint(id) {
			pm.Weight = keyPointWeight
		}
		tol := pose.ToleranceFor(id)
		pm.TolX = tol / win.Width
		pm.TolY = tol / win.Height

		got, ok := live[id]
		if !ok {
			pm.Missing = true
		} else {
			pm.DiffX = math.Abs(got.X - want.X)
			pm.DiffY = math.Abs(got.Y - want.Y)
			pm.Similarity = pointSimilarity(pm.DiffX, pm.DiffY, pm.TolX, pm.TolY)
		}
		weighted += pm.Similarity * pm.Weight
		total += pm.Weight
		res.Points = append(res.Points, pm)
	}
	if total > 0 {
		res.Score = weighted / total
	}
	return res
}

// pointSimilarity is 1 when both differences are inside tolerance and
// otherwise falls off linearly with the mean relative overage of the axes.
func pointSimilarity(dx, dy, tx, ty float64) float64 {
	if dx <= tx && dy <= ty {
		return 1
	}
	over := (overage(dx, tx) + overage(dy, ty)) / 2
	return math.Max(0, 1-over)
}

func overage(diff, tol float64) float64 {
	if tol <= 0 {
		return 0
	}
	return math.Max(0, diff-tol) / tol
}
