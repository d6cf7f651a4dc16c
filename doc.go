// Package zammi is the rule core of a small 2D pose-challenge game built on
// [Ebitengine].
//
// The package holds the parts of the game that do not touch a window or a
// camera: body keypoints, the pose table, the similarity scorer, challenge
// state machines, trigger zones and dialogue paging. Rendering lives in
// zammi/game, devices in zammi/capture and zammi/landmark, and the apple
// catcher in zammi/catch.
//
// # Poses and scoring
//
// A [PoseConfig] stores target landmarks in pixels of a 1280x720 reference
// window. A [PoseStore] turns them into normalized, mirrored targets and a
// [Scorer] compares live [Keypoints] against them:
//
//	store, err := zammi.NewPoseStore(zammi.ReferenceWindow, zammi.DefaultPoses()...)
//	pose, err := store.Pose("strong_action")
//	score := store.Scorer().Score(live, pose)
//
// Each compared landmark scores 1 inside its per-axis tolerance box and
// falls off linearly outside it. Key points count twice.
//
// Pose tables can also be loaded from YAML or JSON with [LoadPoseFile].
//
// # Challenges
//
// Every mini-game implements [Challenge]. A [PoseChallenge] holds a chain of
// [Stage] values and succeeds after each stage held its threshold for a
// streak of frames; a [GestureChallenge] does the same for a rule such as
// "hands_up". Challenges are built from configuration by a
// [ChallengeFactory], and [RunChallenge] drives one without a window:
//
//	f := zammi.NewChallengeFactory(store)
//	ch, err := f.Build(zammi.ChallengeSpec{
//		Kind: zammi.KindPose, Name: "floor1",
//		Stages: []zammi.StageSpec{{Pose: "strong_action"}, {Pose: "CompareHearts"}},
//	})
//	res, err := zammi.RunChallenge(ctx, ch, source, zammi.RunOptions{})
//
// # Zones and dialogue
//
// A [Zone] fires on the frame a detection point enters its radius. One-shot
// zones start challenges; rearmable zones show a [Dialogue] and stay hidden
// after a dismissal until the player walks out.
//
// [Ebitengine]: https://ebitengine.org
package zammi
