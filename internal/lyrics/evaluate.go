package lyrics

import (
	"math"
	"sort"
)

const (
	// fading starts once this share of the gap to the next line has elapsed
	fadeStart = 0.85
	fadeSpan  = 1 - fadeStart

	settledOpacity = 1.0
	fadedOpacity   = 0.6
	settledScale   = 1.10
	fadedScale     = 1.05
	settledBlur    = 0.0
	fadedBlur      = 2.0
)

type LineState int

const (
	Past LineState = iota
	Active
	Upcoming
)

func (s LineState) String() string {
	switch s {
	case Past:
		return "past"
	case Active:
		return "active"
	case Upcoming:
		return "upcoming"
	default:
		return "unknown"
	}
}

// Evaluation is the result of querying a timeline at one instant.
type Evaluation struct {
	// ActiveIndex is -1 when no line has started yet or the timeline is empty.
	ActiveIndex int
	// Progress is the clamped share of the gap to the next line that has elapsed.
	// It stays 0 when there is no active line or the active line is the last one.
	Progress float64
	// FadeFactor runs 0 to 1 across the final 15% of the active line.
	FadeFactor float64
	HasNext    bool
}

// Transition holds the visual values for the active line. Units are left to
// the renderer: opacity is 0..1, scale is a multiplier, blur is a radius.
type Transition struct {
	Opacity float64
	Scale   float64
	Blur    float64
}

// ActiveIndex returns the index of the last line whose time is at or before
// positionSeconds, or -1. Lines must be sorted by time.
func ActiveIndex(lines []Line, positionSeconds float64) int {
	if len(lines) == 0 || math.IsNaN(positionSeconds) {
		return -1
	}

	firstAfter := sort.Search(len(lines), func(i int) bool {
		return lines[i].TimeSeconds > positionSeconds
	})

	return firstAfter - 1
}

// Evaluate is pure: it keeps no state between calls.
func Evaluate(lines []Line, positionSeconds float64) Evaluation {
	return evaluateAt(lines, ActiveIndex(lines, positionSeconds), positionSeconds)
}

func evaluateAt(lines []Line, idx int, positionSeconds float64) Evaluation {
	ev := Evaluation{ActiveIndex: idx}

	if idx < 0 || idx+1 >= len(lines) {
		return ev
	}

	ev.HasNext = true
	ev.Progress, ev.FadeFactor = FadeProgress(lines[idx].TimeSeconds, lines[idx+1].TimeSeconds, positionSeconds)

	return ev
}

// FadeProgress computes the progress through a line spanning start..end and
// the resulting fade factor. A non-positive span counts as fully elapsed.
func FadeProgress(start float64, end float64, positionSeconds float64) (progress float64, fade float64) {
	duration := end - start
	if duration <= 0 {
		progress = 1
	} else {
		progress = clamp((positionSeconds-start)/duration, 0, 1)
	}

	if progress > fadeStart {
		fade = clamp((progress-fadeStart)/fadeSpan, 0, 1)
	}

	return progress, fade
}

func (e Evaluation) StateOf(index int) LineState {
	switch {
	case index < e.ActiveIndex:
		return Past
	case index == e.ActiveIndex:
		return Active
	default:
		return Upcoming
	}
}

func (e Evaluation) Fading() bool {
	return e.FadeFactor > 0
}

func (e Evaluation) Transition() Transition {
	f := e.FadeFactor
	return Transition{
		Opacity: lerp(settledOpacity, fadedOpacity, f),
		Scale:   lerp(settledScale, fadedScale, f),
		Blur:    lerp(settledBlur, fadedBlur, f),
	}
}

func lerp(a float64, b float64, t float64) float64 {
	return a + (b-a)*t
}

func clamp(val float64, min float64, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
