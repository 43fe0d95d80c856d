package clock

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

var ErrNotPlaying = errors.New("no playback position available")

// Clock reports the current playback position in seconds.
type Clock interface {
	Position() (float64, error)
}

// Wall advances with real time from a starting offset. It can be paused and
// moved, which makes it the clock for following a file without a player.
type Wall struct {
	mu      sync.Mutex
	now     func() time.Time
	base    float64
	since   time.Time
	playing bool
}

func NewWall(start float64) *Wall {
	return newWall(start, time.Now)
}

func newWall(start float64, now func() time.Time) *Wall {
	if start < 0 {
		start = 0
	}
	return &Wall{
		now:     now,
		base:    start,
		since:   now(),
		playing: true,
	}
}

func (w *Wall) Position() (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.position(), nil
}

func (w *Wall) position() float64 {
	if !w.playing {
		return w.base
	}
	return w.base + w.now().Sub(w.since).Seconds()
}

// Seek moves to seconds, clamped at 0.
func (w *Wall) Seek(seconds float64) {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.base = seconds
	w.since = w.now()
}

// SeekBy moves relative to the current position.
func (w *Wall) SeekBy(delta float64) {
	w.mu.Lock()
	target := w.position() + delta
	w.mu.Unlock()

	w.Seek(target)
}

func (w *Wall) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.playing {
		return
	}
	w.base = w.position()
	w.playing = false
}

func (w *Wall) Resume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.playing {
		return
	}
	w.since = w.now()
	w.playing = true
}

// Toggle flips between paused and playing and returns the new state.
func (w *Wall) Toggle() bool {
	if w.Playing() {
		w.Pause()
		return false
	}
	w.Resume()
	return true
}

func (w *Wall) Playing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.playing
}

// Poller is satisfied by *player.Service.
type Poller interface {
	Poll() (float64, error)
}

// MPRIS reads the position from a media player on the session bus.
type MPRIS struct {
	player Poller
}

func NewMPRIS(p Poller) *MPRIS {
	return &MPRIS{player: p}
}

func (m *MPRIS) Position() (float64, error) {
	if m == nil || m.player == nil {
		return 0, ErrNotPlaying
	}

	pos, err := m.player.Poll()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNotPlaying, err)
	}

	return pos, nil
}
