package facegraph

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween eases a float64 property from one value to another over time, writing the result into Target on every
// Update. It's used for camera orbits, expression blends and other scripted parameter changes.
type Tween struct {
	Target     *float64
	FinishMode FinishMode
	OnFinish   func()

	tween    *gween.Tween
	begin    float64
	duration float64
	elapsed  float64
	reverse  bool
	finished bool
}

// NewTween returns a Tween easing *target from begin to end over duration seconds. A nil easing function means linear.
func NewTween(target *float64, begin, end, duration float64, easing ease.TweenFunc) *Tween {

	if easing == nil {
		easing = ease.Linear
	}

	return &Tween{
		Target:     target,
		FinishMode: FinishModeStop,
		tween:      gween.New(float32(begin), float32(end), float32(duration), easing),
		begin:      begin,
		duration:   duration,
	}

}

// Update advances the Tween by dt seconds and writes the eased value to Target. It returns true once a Tween in
// FinishModeStop has reached its end.
func (tween *Tween) Update(dt float64) bool {

	if tween.finished {
		return true
	}

	if tween.reverse {
		tween.elapsed -= dt
	} else {
		tween.elapsed += dt
	}

	value, _ := tween.tween.Set(float32(tween.elapsed))

	done := tween.elapsed >= tween.duration
	if tween.reverse {
		done = tween.elapsed <= 0
	}

	if tween.Target != nil {
		*tween.Target = float64(value)
	}

	if !done {
		return false
	}

	switch tween.FinishMode {
	case FinishModeLoop:
		tween.elapsed = 0
		if tween.OnFinish != nil {
			tween.OnFinish()
		}
	case FinishModePingPong:
		tween.elapsed = clamp(tween.elapsed, 0, tween.duration)
		if tween.reverse && tween.OnFinish != nil {
			tween.OnFinish()
		}
		tween.reverse = !tween.reverse
	default:
		tween.finished = true
		if tween.OnFinish != nil {
			tween.OnFinish()
		}
	}

	return tween.finished

}

// Reset rewinds the Tween to its beginning.
func (tween *Tween) Reset() {
	tween.tween.Set(0)
	tween.elapsed = 0
	tween.reverse = false
	tween.finished = false
	if tween.Target != nil {
		*tween.Target = tween.begin
	}
}

// Finished returns true once a FinishModeStop Tween has completed.
func (tween *Tween) Finished() bool {
	return tween.finished
}
