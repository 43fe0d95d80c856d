package ui

import (
	"math"
)

// AnimState eases the lyric viewport between active lines.
type AnimState struct {
	TransitionProgress float64
	ScrollPosition     float64
	TargetScrollY      float64
	PrevScrollY        float64
}

// Snap jumps to target without easing, used after a seek or a new timeline.
func (a *AnimState) Snap(target float64) {
	a.TransitionProgress = 1
	a.ScrollPosition = target
	a.TargetScrollY = target
	a.PrevScrollY = target
}

func (a *AnimState) Update(newLine bool, transitionTicks int) {
	if transitionTicks <= 0 {
		transitionTicks = 8
	}

	if newLine {
		a.TransitionProgress = 0
		a.PrevScrollY = a.ScrollPosition
	}

	if a.TransitionProgress < 1.0 {
		a.TransitionProgress += 1.0 / float64(transitionTicks)
		if a.TransitionProgress > 1.0 {
			a.TransitionProgress = 1.0
		}
	}

	a.ScrollPosition = lerp(a.PrevScrollY, a.TargetScrollY, easeOutCubic(a.TransitionProgress))
}

func (a *AnimState) Settled() bool {
	return a.TransitionProgress >= 1
}

func easeOutCubic(t float64) float64 {
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return 0
	}
	return 1 - math.Pow(1-t, 3)
}

func lerp(a float64, b float64, t float64) float64 {
	return a + (b-a)*t
}
