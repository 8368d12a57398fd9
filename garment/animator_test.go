package garment

import (
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestAnimatorRectTweenCompletes(t *testing.T) {
	seed := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	a := NewAnimator(seed)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a.Tick(base)
	goal := Rect{X: 50, Y: 60, Width: 200, Height: 240}
	a.SetGoal(goal, 0)

	// The goal is adopted on this tick; the tween runs on the ticks after it.
	a.Tick(base.Add(8 * time.Millisecond))
	a.Tick(base.Add(16 * time.Millisecond))
	mid := a.Target().Rect
	if mid.X <= seed.X || mid.X >= goal.X {
		t.Errorf("mid-tween X %v should be strictly between %v and %v", mid.X, seed.X, goal.X)
	}

	a.Tick(base.Add(60 * time.Millisecond))
	got := a.Target().Rect
	if got != goal {
		t.Errorf("after the tween duration the rect should sit at the goal: got %+v", got)
	}
}

func TestAnimatorVisibilitySpringConverges(t *testing.T) {
	a := NewAnimator(Rect{Width: 100, Height: 100})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a.Tick(base)
	a.SetGoal(Rect{Width: 100, Height: 100}, 1.0)

	var vis float64
	for i := 1; i <= 250; i++ {
		a.Tick(base.Add(time.Duration(i) * 8 * time.Millisecond))
		vis = a.Target().Visibility
	}
	if !scalar.EqualWithinAbs(vis, 1.0, 1e-2) {
		t.Errorf("visibility %v, want spring convergence to 1.0", vis)
	}
}

func TestAnimatorSmallVisibilityChangeAppliesDirectly(t *testing.T) {
	a := NewAnimator(Rect{Width: 100, Height: 100})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Drive visibility to 1 first.
	a.Tick(base)
	a.SetGoal(Rect{Width: 100, Height: 100}, 1.0)
	for i := 1; i <= 250; i++ {
		a.Tick(base.Add(time.Duration(i) * 8 * time.Millisecond))
	}

	// A change of 0.08 is under the spring threshold and lands immediately.
	a.SetGoal(Rect{Width: 100, Height: 100}, 0.92)
	a.Tick(base.Add(3 * time.Second))
	if got := a.Target().Visibility; got != 0.92 {
		t.Errorf("visibility %v, want direct set to 0.92", got)
	}
}

func TestAnimatorLatestGoalWins(t *testing.T) {
	a := NewAnimator(Rect{})
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a.Tick(base)
	a.SetGoal(Rect{X: 10}, 0)
	a.SetGoal(Rect{X: 99}, 0)

	a.Tick(base.Add(time.Second))
	a.Tick(base.Add(2 * time.Second))
	if got := a.Target().Rect.X; got != 99 {
		t.Errorf("X %v, want the most recently published goal 99", got)
	}
}

func TestAnimatorStartsHidden(t *testing.T) {
	a := NewAnimator(Rect{X: 5, Y: 6, Width: 7, Height: 8})
	tgt := a.Target()
	if tgt.Visibility != 0 {
		t.Errorf("visibility %v, want 0 before any pose", tgt.Visibility)
	}
	if (tgt.Rect != Rect{X: 5, Y: 6, Width: 7, Height: 8}) {
		t.Errorf("rect %+v, want seed", tgt.Rect)
	}
}
