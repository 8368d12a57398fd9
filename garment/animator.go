package garment

import (
	"sync/atomic"
	"time"
)

const (
	// rectTweenDuration is how long the rect channels take to reach a new goal.
	rectTweenDuration = 30 * time.Millisecond

	// Visibility uses a critically-snappy spring so fade in/out feels physical
	// rather than linear. Small goal changes are applied directly.
	visibilitySpringStiffness = 120.0
	visibilitySpringDamping   = 25.0
	visibilitySpringThreshold = 0.1

	// maxTickSeconds caps the spring integration step after a stall so the
	// simulation cannot blow up.
	maxTickSeconds = 0.1
)

// RenderTarget is the continuously animated overlay state: the on-screen
// rectangle plus a visibility scale where 0 is hidden and 1 fully shown.
type RenderTarget struct {
	Rect       Rect
	Visibility float64
}

// goal is one smoothed target handed to the animator by the pose path.
type goal struct {
	rect       Rect
	visibility float64
}

// Animator tweens the render target toward the most recent smoothed goal,
// independently of pose-frame arrival. Goals are published from the pose
// path with SetGoal; Tick must be driven from exactly one animation loop,
// which is the sole writer of the render target. Readers take consistent
// snapshots via Target.
type Animator struct {
	pending atomic.Pointer[goal]

	// Everything below is owned by the Tick loop.
	active      *goal
	current     RenderTarget
	tweenFrom   Rect
	tweenStart  time.Time
	springOn    bool
	springVel   float64
	lastTick    time.Time
	snapshot    atomic.Pointer[RenderTarget]
	initialized bool
}

// NewAnimator starts with the seed rectangle fully hidden, matching a session
// that has not yet seen a wearer.
func NewAnimator(seed Rect) *Animator {
	a := &Animator{
		current: RenderTarget{Rect: seed, Visibility: 0},
	}
	a.publish()
	return a
}

// SetGoal hands the animator a new target. Safe to call concurrently with
// Tick; the latest goal wins and intermediate ones are skipped.
func (a *Animator) SetGoal(rect Rect, visibility float64) {
	a.pending.Store(&goal{rect: rect, visibility: visibility})
}

// Target returns the current render target snapshot.
func (a *Animator) Target() RenderTarget {
	return *a.snapshot.Load()
}

// Tick advances the animation to now. It adopts any newly published goal,
// tweens the rect channels, integrates the visibility spring, and publishes
// the updated render target.
func (a *Animator) Tick(now time.Time) {
	dt := 0.0
	if a.initialized {
		dt = now.Sub(a.lastTick).Seconds()
		if dt < 0 {
			dt = 0
		}
		if dt > maxTickSeconds {
			dt = maxTickSeconds
		}
	}
	a.lastTick = now
	a.initialized = true

	if g := a.pending.Load(); g != nil && g != a.active {
		a.adopt(g, now)
	}

	if a.active != nil {
		a.tweenRect(now)
		a.stepVisibility(dt)
	}
	a.publish()
}

func (a *Animator) adopt(g *goal, now time.Time) {
	a.active = g
	a.tweenFrom = a.current.Rect
	a.tweenStart = now

	if diff := g.visibility - a.current.Visibility; diff > visibilitySpringThreshold || diff < -visibilitySpringThreshold {
		a.springOn = true
	} else {
		a.current.Visibility = g.visibility
		a.springOn = false
		a.springVel = 0
	}
}

func (a *Animator) tweenRect(now time.Time) {
	p := 1.0
	if d := now.Sub(a.tweenStart); d < rectTweenDuration {
		p = float64(d) / float64(rectTweenDuration)
	}
	a.current.Rect = Rect{
		X:      lerp(a.tweenFrom.X, a.active.rect.X, p),
		Y:      lerp(a.tweenFrom.Y, a.active.rect.Y, p),
		Width:  lerp(a.tweenFrom.Width, a.active.rect.Width, p),
		Height: lerp(a.tweenFrom.Height, a.active.rect.Height, p),
	}
}

// stepVisibility integrates the spring with semi-implicit Euler. When both
// displacement and velocity are negligible the spring snaps to the goal and
// disengages.
func (a *Animator) stepVisibility(dt float64) {
	if !a.springOn || dt <= 0 {
		return
	}
	target := a.active.visibility
	accel := visibilitySpringStiffness*(target-a.current.Visibility) - visibilitySpringDamping*a.springVel
	a.springVel += accel * dt
	a.current.Visibility += a.springVel * dt

	if abs(target-a.current.Visibility) < 1e-3 && abs(a.springVel) < 1e-3 {
		a.current.Visibility = target
		a.springVel = 0
		a.springOn = false
	}
	a.current.Visibility = clamp(a.current.Visibility, 0, 1)
}

func (a *Animator) publish() {
	snap := a.current
	a.snapshot.Store(&snap)
}

func lerp(from, to, p float64) float64 {
	return from + (to-from)*p
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
