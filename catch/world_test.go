package catch

import (
	"reflect"
	"testing"

	"github.com/phanxgames/zammi"
	"github.com/yohamta/donburi"
)

func newTestWorld(t *testing.T, rules Rules) *World {
	t.Helper()
	w, err := NewWorld(rules, 7)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestKindPoints(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Red, 3},
		{Green, 2},
		{Yellow, 1},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Points(); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBasketPlacement(t *testing.T) {
	w := newTestWorld(t, DefaultRules())
	want := zammi.Rect{X: 360, Y: 480, Width: 80, Height: 40}
	if got := w.Basket(); got != want {
		t.Fatalf("Basket = %+v, want %+v", got, want)
	}

	tests := []struct {
		hand, want float64
	}{
		{100, 100},
		{10, 40},
		{790, 760},
	}
	for _, tt := range tests {
		w.MoveBasket(tt.hand)
		if got := w.Basket().Center().X; got != tt.want {
			t.Errorf("MoveBasket(%v): center %v, want %v", tt.hand, got, tt.want)
		}
	}
}

func TestCatchScores(t *testing.T) {
	w := newTestWorld(t, DefaultRules())
	var caught []CaughtEvent
	w.OnCaught(func(e CaughtEvent) { caught = append(caught, e) })

	// Basket spans y 480..520; after one step the apple's square reaches it.
	w.spawnAt(zammi.Vec2{X: 400, Y: 470}, Red, 5)
	w.Step()

	if w.Score() != 3 {
		t.Errorf("score = %d, want 3", w.Score())
	}
	if len(w.Apples()) != 0 {
		t.Errorf("caught apple still falling: %+v", w.Apples())
	}
	if want := []CaughtEvent{{Kind: Red, Score: 3}}; !reflect.DeepEqual(caught, want) {
		t.Errorf("events = %+v, want %+v", caught, want)
	}
}

func TestApplePassesBesideBasket(t *testing.T) {
	w := newTestWorld(t, DefaultRules())
	w.spawnAt(zammi.Vec2{X: 100, Y: 470}, Yellow, 5)
	w.Step()
	if w.Score() != 0 || w.Misses() != 0 {
		t.Fatalf("score=%d misses=%d, want 0/0", w.Score(), w.Misses())
	}
	if got := w.Apples(); len(got) != 1 || got[0].Center.Y != 475 {
		t.Errorf("apples = %+v, want one at y=475", got)
	}
}

func TestMissesEndRound(t *testing.T) {
	w := newTestWorld(t, DefaultRules())
	var missed []int
	w.OnMissed(func(e MissedEvent) { missed = append(missed, e.Misses) })

	// Off screen once y > height + size (620).
	for i := 0; i < 3; i++ {
		w.spawnAt(zammi.Vec2{X: 100 + float64(i)*30, Y: 619}, Green, 2)
	}
	w.Step()

	if !w.Over() || w.Won() {
		t.Fatalf("over=%v won=%v, want lost", w.Over(), w.Won())
	}
	if !reflect.DeepEqual(missed, []int{1, 2, 3}) {
		t.Errorf("missed events = %v", missed)
	}

	frames := w.Frames()
	w.Step()
	if w.Frames() != frames {
		t.Error("Step after game over advanced the round")
	}
}

func TestGoalWinsRound(t *testing.T) {
	rules := DefaultRules()
	rules.Goal = 5
	w := newTestWorld(t, rules)
	w.spawnAt(zammi.Vec2{X: 390, Y: 470}, Red, 5)
	w.spawnAt(zammi.Vec2{X: 410, Y: 470}, Green, 5)
	w.Step()
	if !w.Over() || !w.Won() || w.Score() != 5 {
		t.Errorf("over=%v won=%v score=%d", w.Over(), w.Won(), w.Score())
	}
}

func TestSpawnDelayDecays(t *testing.T) {
	rules := DefaultRules()
	rules.SpawnDecay = 15
	w := newTestWorld(t, rules)

	want := []float64{25, 20, 20}
	for i, d := range want {
		for len(w.Apples()) <= i {
			w.Step()
		}
		if got := w.SpawnDelay(); got != d {
			t.Errorf("after spawn %d: delay %v, want %v", i+1, got, d)
		}
	}
	if got := w.Frames(); got != 40+25+20 {
		t.Errorf("frames = %d, want %d", got, 40+25+20)
	}
}

func TestDefaultSpawnCadence(t *testing.T) {
	w := newTestWorld(t, DefaultRules())
	for i := 0; i < 39; i++ {
		w.Step()
	}
	if n := len(w.Apples()); n != 0 {
		t.Fatalf("%d apples before frame 40", n)
	}
	w.Step()
	if n := len(w.Apples()); n != 1 {
		t.Fatalf("%d apples at frame 40, want 1", n)
	}
	if got := w.SpawnDelay(); got < 39.89 || got > 39.91 {
		t.Errorf("delay = %v, want 39.9", got)
	}
}

func TestSpawnRanges(t *testing.T) {
	w := newTestWorld(t, DefaultRules())
	counts := map[Kind]int{}
	for i := 0; i < 2000; i++ {
		w.Spawn()
	}
	for _, a := range w.Apples() {
		counts[a.Kind]++
		if a.Center.X < 20 || a.Center.X > 780 {
			t.Fatalf("x = %v outside [20, 780]", a.Center.X)
		}
		if a.Center.Y != -20 {
			t.Fatalf("y = %v, want -20", a.Center.Y)
		}
	}
	w.apples.Each(w.ecs, func(e *donburi.Entry) {
		if s := Apple.Get(e).Speed; s < 2 || s > 5 || s != float64(int(s)) {
			t.Fatalf("speed = %v", s)
		}
	})
	// 10% red, 30% green, 60% yellow with generous bounds.
	if counts[Red] < 120 || counts[Red] > 280 {
		t.Errorf("red = %d of 2000", counts[Red])
	}
	if counts[Yellow] < 1050 || counts[Yellow] > 1350 {
		t.Errorf("yellow = %d of 2000", counts[Yellow])
	}
}

func TestSeedReproducible(t *testing.T) {
	a := newTestWorld(t, DefaultRules())
	b := newTestWorld(t, DefaultRules())
	for i := 0; i < 20; i++ {
		a.Spawn()
		b.Spawn()
	}
	if !reflect.DeepEqual(a.Apples(), b.Apples()) {
		t.Error("same seed produced different apples")
	}
}

func TestResetKeepsObservers(t *testing.T) {
	w := newTestWorld(t, DefaultRules())
	n := 0
	w.OnCaught(func(CaughtEvent) { n++ })
	w.spawnAt(zammi.Vec2{X: 400, Y: 470}, Yellow, 5)
	w.Step()
	w.Reset()
	if w.Score() != 0 || len(w.Apples()) != 0 || w.SpawnDelay() != 40 {
		t.Fatalf("reset: score=%d apples=%d delay=%v", w.Score(), len(w.Apples()), w.SpawnDelay())
	}
	w.spawnAt(zammi.Vec2{X: 400, Y: 470}, Yellow, 5)
	w.Step()
	if n != 2 {
		t.Errorf("observer calls = %d, want 2", n)
	}
}

func TestRulesValidation(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Rules)
	}{
		{"zero screen", func(r *Rules) { r.Screen = zammi.Size{} }},
		{"speed range", func(r *Rules) { r.MaxSpeed = 1 }},
		{"wide basket", func(r *Rules) { r.BasketWidth = 900 }},
		{"floor above delay", func(r *Rules) { r.MinSpawnDelay = 50 }},
		{"no goal", func(r *Rules) { r.Goal = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRules()
			tt.edit(&r)
			if _, err := NewWorld(r, 1); err == nil {
				t.Error("expected error")
			}
		})
	}
}
