package lyrics

import (
	"math"
	"math/rand"
	"testing"
)

func TestCursor_ForwardPlayback(t *testing.T) {
	lines := linesAt(1, 2, 3)
	c := NewCursor()

	steps := []struct {
		pos         float64
		wantIndex   int
		wantChanged bool
	}{
		{0, -1, true},
		{0.5, -1, false},
		{1, 0, true},
		{1.9, 0, false},
		{2.1, 1, true},
		{3.5, 2, true},
		{4, 2, false},
	}

	for _, s := range steps {
		idx, changed := c.Seek(lines, s.pos)
		if idx != s.wantIndex || changed != s.wantChanged {
			t.Fatalf("Seek(%v) = %d, %v; want %d, %v", s.pos, idx, changed, s.wantIndex, s.wantChanged)
		}
	}
}

func TestCursor_SeekJumps(t *testing.T) {
	lines := linesAt(0, 5, 10, 15, 20)
	c := NewCursor()

	for _, pos := range []float64{18, 2, 12, 0, 25, 7, -1, math.NaN(), 14.99} {
		got, _ := c.Seek(lines, pos)
		if want := ActiveIndex(lines, pos); got != want {
			t.Fatalf("Seek(%v) = %d, want %d", pos, got, want)
		}
	}
}

func TestCursor_MatchesActiveIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	lines := Parse("[00:00.50]a\n[00:01.00]b\n[00:01.00]c\n[00:03.25]\n[00:08.00]d\n[00:08.01]e").Lines()
	c := NewCursor()

	pos := -1.0
	for i := 0; i < 5000; i++ {
		if rng.Intn(20) == 0 {
			pos = rng.Float64()*12 - 2
		} else {
			pos += rng.Float64() * 0.1
		}
		got, _ := c.Seek(lines, pos)
		if want := ActiveIndex(lines, pos); got != want {
			t.Fatalf("step %d: Seek(%v) = %d, want %d", i, pos, got, want)
		}
	}
}

func TestCursor_ResetAndTimelineSwap(t *testing.T) {
	c := NewCursor()
	long := linesAt(0, 1, 2, 3, 4, 5)
	short := linesAt(10)

	if idx, _ := c.Seek(long, 4.5); idx != 4 {
		t.Fatalf("Seek(long, 4.5) = %d, want 4", idx)
	}

	// a stale hint beyond the new timeline must not be trusted
	if idx, changed := c.Seek(short, 4.5); idx != -1 || !changed {
		t.Fatalf("Seek(short, 4.5) = %d, %v; want -1, true", idx, changed)
	}

	c.Reset()
	if c.Index() != -1 {
		t.Fatalf("Index() after Reset = %d, want -1", c.Index())
	}
	if _, changed := c.Seek(short, 0); !changed {
		t.Fatal("first Seek after Reset should report a change")
	}
}

func TestTimeline_Follow(t *testing.T) {
	tl := Parse("[00:00.00]a\n[00:10.00]b")
	c := NewCursor()

	ev, changed := tl.Follow(c, 8.6)
	if !changed || ev.ActiveIndex != 0 {
		t.Fatalf("Follow(8.6) = %+v, %v", ev, changed)
	}
	if want := tl.Evaluate(8.6); ev != want {
		t.Fatalf("Follow(8.6) = %+v, Evaluate = %+v", ev, want)
	}

	ev, changed = tl.Follow(c, 11)
	if !changed || ev.ActiveIndex != 1 || ev.Fading() {
		t.Fatalf("Follow(11) = %+v, %v", ev, changed)
	}

	var empty *Timeline
	ev, _ = empty.Follow(NewCursor(), 3)
	if ev.ActiveIndex != -1 {
		t.Fatalf("Follow on nil timeline = %+v", ev)
	}
}
