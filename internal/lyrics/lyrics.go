package lyrics

import (
	"github.com/google/uuid"
)

// Line is one timed lyric entry. Text may be empty, which marks a pause in vocals.
type Line struct {
	ID          string
	TimeSeconds float64
	Text        string
}

// Timeline is the parsed, time-sorted sequence of lines for one track.
// It is never modified after Parse returns it.
type Timeline struct {
	id    string
	lines []Line
}

func newTimeline(lines []Line) *Timeline {
	return &Timeline{
		id:    uuid.NewString(),
		lines: lines,
	}
}

// ID identifies this parse. Two parses of the same text get different ids.
func (t *Timeline) ID() string {
	if t == nil {
		return ""
	}
	return t.id
}

// Lines returns a copy of the sorted lines.
func (t *Timeline) Lines() []Line {
	if t == nil || len(t.lines) == 0 {
		return nil
	}
	out := make([]Line, len(t.lines))
	copy(out, t.lines)
	return out
}

func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.lines)
}

func (t *Timeline) IsEmpty() bool {
	return t.Len() == 0
}

func (t *Timeline) At(i int) (Line, bool) {
	if t == nil || i < 0 || i >= len(t.lines) {
		return Line{}, false
	}
	return t.lines[i], true
}

// Duration is the timestamp of the last line, or 0 for an empty timeline.
func (t *Timeline) Duration() float64 {
	if t.IsEmpty() {
		return 0
	}
	return t.lines[len(t.lines)-1].TimeSeconds
}

// SeekTarget returns the playback position that makes line i active.
func (t *Timeline) SeekTarget(i int) (float64, bool) {
	line, ok := t.At(i)
	if !ok {
		return 0, false
	}
	return line.TimeSeconds, true
}

func (t *Timeline) Evaluate(positionSeconds float64) Evaluation {
	if t == nil {
		return Evaluate(nil, positionSeconds)
	}
	return Evaluate(t.lines, positionSeconds)
}
