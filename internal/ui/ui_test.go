package ui

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xiliourt/Lyrical-Sync/internal/clock"
	"github.com/xiliourt/Lyrical-Sync/internal/colors"
	"github.com/xiliourt/Lyrical-Sync/internal/lyrics"
	"github.com/xiliourt/Lyrical-Sync/internal/player"
	"github.com/xiliourt/Lyrical-Sync/internal/track"
)

const song = "[00:00.00]first\n[00:10.00]second\n[00:20.00]third\n[00:30.00]"

type fakeClock struct {
	pos float64
	err error
}

func (f *fakeClock) Position() (float64, error) { return f.pos, f.err }

func newTestModel(c clock.Clock, tl *lyrics.Timeline) Model {
	m := NewModel(ModelConfig{
		Clock:        c,
		Timeline:     tl,
		Track:        &track.Info{Title: "Song", Artist: "Band", DurationSeconds: 40},
		PollInterval: 50 * time.Millisecond,
	})
	m.width = 60
	m.height = 20
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel_EvaluatesImmediately(t *testing.T) {
	m := newTestModel(&fakeClock{pos: 12}, lyrics.Parse(song))

	if got := m.Evaluation().ActiveIndex; got != 1 {
		t.Fatalf("ActiveIndex = %d, want 1", got)
	}
	if m.animState.ScrollPosition != 1 {
		t.Fatalf("ScrollPosition = %v, want snapped to 1", m.animState.ScrollPosition)
	}
}

func TestTick_FollowsClock(t *testing.T) {
	fc := &fakeClock{pos: 5}
	m := newTestModel(fc, lyrics.Parse(song))

	fc.pos = 19
	m, cmd := update(t, m, TickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}

	ev := m.Evaluation()
	if ev.ActiveIndex != 1 || !ev.Fading() {
		t.Fatalf("evaluation at 19 = %+v, want line 1 fading", ev)
	}
	if m.animState.TargetScrollY != 1 {
		t.Fatalf("TargetScrollY = %v, want 1", m.animState.TargetScrollY)
	}
	if m.animState.Settled() {
		t.Fatal("scroll should be easing right after a line change")
	}

	for i := 0; i < m.transitionTicks(); i++ {
		m, _ = update(t, m, TickMsg(time.Now()))
	}
	if !m.animState.Settled() || m.animState.ScrollPosition != 1 {
		t.Fatalf("scroll did not settle: %+v", m.animState)
	}
}

func TestTick_ClockError(t *testing.T) {
	fc := &fakeClock{pos: 12}
	m := newTestModel(fc, lyrics.Parse(song))

	fc.err = clock.ErrNotPlaying
	m, _ = update(t, m, TickMsg(time.Now()))

	if m.Evaluation().ActiveIndex != 1 {
		t.Fatal("a clock error should keep the last evaluation")
	}
	if !strings.Contains(m.statusText(), "waiting for player") {
		t.Fatalf("status = %q", m.statusText())
	}
}

func TestKeys_SyncOffset(t *testing.T) {
	m := newTestModel(&fakeClock{pos: 9.95}, lyrics.Parse(song))
	if m.Evaluation().ActiveIndex != 0 {
		t.Fatalf("ActiveIndex = %d, want 0", m.Evaluation().ActiveIndex)
	}

	m, _ = update(t, m, key("up"))
	if math.Abs(m.SyncOffset()-0.1) > 1e-9 {
		t.Fatalf("SyncOffset = %v, want 0.1", m.SyncOffset())
	}
	if m.Evaluation().ActiveIndex != 1 {
		t.Fatalf("offset should move evaluation forward, got %d", m.Evaluation().ActiveIndex)
	}

	m, _ = update(t, m, key("down"))
	m, _ = update(t, m, key("down"))
	if math.Abs(m.SyncOffset()+0.1) > 1e-9 {
		t.Fatalf("SyncOffset = %v, want -0.1", m.SyncOffset())
	}

	m, _ = update(t, m, key("0"))
	if m.SyncOffset() != 0 {
		t.Fatalf("SyncOffset after reset = %v", m.SyncOffset())
	}
}

func TestKeys_WallClockTransport(t *testing.T) {
	wall := clock.NewWall(12)
	m := newTestModel(wall, lyrics.Parse(song))

	m, _ = update(t, m, key(" "))
	if !m.Paused() {
		t.Fatal("space should pause the wall clock")
	}

	m, _ = update(t, m, key("enter"))
	if pos, _ := wall.Position(); pos != 10 {
		t.Fatalf("enter should seek to the active line start, position = %v", pos)
	}

	m, _ = update(t, m, key("left"))
	if pos, _ := wall.Position(); pos != 5 {
		t.Fatalf("left should rewind 5s, position = %v", pos)
	}
	if m.Evaluation().ActiveIndex != 0 {
		t.Fatalf("ActiveIndex after rewind = %d, want 0", m.Evaluation().ActiveIndex)
	}

	m, _ = update(t, m, key("right"))
	m, _ = update(t, m, key("right"))
	if pos, _ := wall.Position(); pos != 15 {
		t.Fatalf("position = %v, want 15", pos)
	}

	// with an offset, enter keeps the same line active
	m, _ = update(t, m, key("up"))
	m, _ = update(t, m, key("enter"))
	if pos, _ := wall.Position(); math.Abs(pos-9.9) > 1e-9 {
		t.Fatalf("position = %v, want 9.9", pos)
	}
	if m.Evaluation().ActiveIndex != 1 {
		t.Fatalf("ActiveIndex = %d, want 1", m.Evaluation().ActiveIndex)
	}
}

func TestKeys_TransportIgnoredForPlayerClock(t *testing.T) {
	fc := &fakeClock{pos: 12}
	m := newTestModel(fc, lyrics.Parse(song))

	m, _ = update(t, m, key(" "))
	m, _ = update(t, m, key("left"))
	if m.Paused() || fc.pos != 12 {
		t.Fatal("transport keys must not affect an external clock")
	}
}

func TestKeys_Quit(t *testing.T) {
	m := newTestModel(&fakeClock{}, lyrics.Parse(song))

	m, cmd := update(t, m, key("q"))
	if !m.IsQuitting() || cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should return tea.Quit")
	}
	if m.View() != "" {
		t.Fatal("view should be empty once quitting")
	}
}

func TestTimelineLoaded(t *testing.T) {
	fc := &fakeClock{pos: 25}
	m := newTestModel(fc, nil)

	if !strings.Contains(plain(m.View()), "waiting for lyrics") {
		t.Fatal("missing timeline should show the waiting notice")
	}

	tl := lyrics.Parse(song)
	m, _ = update(t, m, TimelineLoadedMsg{Timeline: tl})
	if m.Timeline() != tl || m.Evaluation().ActiveIndex != 2 {
		t.Fatalf("timeline not applied: active %d", m.Evaluation().ActiveIndex)
	}
	if m.animState.ScrollPosition != 2 {
		t.Fatalf("scroll should snap to the new active line, got %v", m.animState.ScrollPosition)
	}

	m, _ = update(t, m, TimelineLoadedMsg{Err: errors.New("permission denied")})
	if !m.Timeline().IsEmpty() || m.Evaluation().ActiveIndex != -1 {
		t.Fatal("failed reload should degrade to an empty timeline")
	}
	view := plain(m.View())
	if !strings.Contains(view, "no synced lyrics available") || !strings.Contains(view, "permission denied") {
		t.Fatalf("view missing empty notice:\n%s", view)
	}
}

func TestPlayerEvents(t *testing.T) {
	fc := &fakeClock{pos: 3}
	m := newTestModel(fc, lyrics.Parse(song))

	next := &track.Info{Title: "Other", Artist: "Act"}
	m, _ = update(t, m, PlayerEventMsg{Event: player.EventData{Type: player.EventTrackChanged, Track: next}})
	if m.Track() != next {
		t.Fatal("track change should update the header track")
	}

	fc.pos = 31
	m, _ = update(t, m, PlayerEventMsg{Event: player.EventData{Type: player.EventSeeked, PositionSeconds: 31}})
	if m.Evaluation().ActiveIndex != 3 || m.animState.ScrollPosition != 3 {
		t.Fatalf("seek should re-evaluate and snap, got %d / %v", m.Evaluation().ActiveIndex, m.animState.ScrollPosition)
	}
}

func TestPlayerEvents_TrackChangeReloadsPalette(t *testing.T) {
	cover := &colors.Palette{Primary: "#ff0000", Accent: "#00ff00", Secondary: "#0000ff", Dim: "#444444"}

	var asked *track.Info
	m := NewModel(ModelConfig{
		Clock:    &fakeClock{pos: 3},
		Timeline: lyrics.Parse(song),
		Artwork: func(info *track.Info) *colors.Palette {
			asked = info
			return cover
		},
	})

	next := &track.Info{Title: "Other", Artist: "Act", ArtworkURL: "file:///covers/other.png"}
	m, cmd := update(t, m, PlayerEventMsg{Event: player.EventData{Type: player.EventTrackChanged, Track: next}})
	if cmd == nil {
		t.Fatal("track change should load the new artwork")
	}

	var got *PaletteMsg
	for _, msg := range drain(cmd) {
		if pm, ok := msg.(PaletteMsg); ok {
			got = &pm
		}
	}
	if got == nil || asked != next {
		t.Fatalf("palette not requested for the new track: %v %v", got, asked)
	}

	m, _ = update(t, m, *got)
	if m.Palette() != cover {
		t.Fatal("palette message should replace the palette")
	}

	m, _ = update(t, m, PaletteMsg{})
	if m.Palette() != cover {
		t.Fatal("an empty palette message should keep the current palette")
	}
}

func TestPlayerEvents_NoArtworkLoader(t *testing.T) {
	m := newTestModel(&fakeClock{pos: 3}, lyrics.Parse(song))
	before := m.Palette()

	m, cmd := update(t, m, PlayerEventMsg{Event: player.EventData{Type: player.EventTrackChanged, Track: &track.Info{Title: "A", Artist: "B"}}})
	if cmd != nil {
		t.Fatal("no command expected without a player or artwork loader")
	}
	if m.Palette() != before {
		t.Fatal("palette should not change")
	}
}

// drain runs cmd and flattens batches into their messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, drain(c)...)
	}
	return out
}

func TestView_Lyrics(t *testing.T) {
	m := newTestModel(&fakeClock{pos: 12}, lyrics.Parse(song))
	view := plain(m.View())

	for _, want := range []string{"Band - Song", "second", "first", "third", "0:12", "0:40", "line 2/4"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if got := strings.Count(view, "\n") + 1; got != 20 {
		t.Errorf("view height = %d, want 20", got)
	}
}

func TestView_BeforeFirstLine(t *testing.T) {
	m := newTestModel(&fakeClock{pos: -1}, lyrics.Parse("[00:05.00]hello"))
	view := plain(m.View())

	if !strings.Contains(view, waitingGlyph) || !strings.Contains(view, "hello") {
		t.Fatalf("view before the first line:\n%s", view)
	}
}

func TestView_PauseLineAndHiddenHeader(t *testing.T) {
	m := newTestModel(&fakeClock{pos: 35}, lyrics.Parse(song))
	m, _ = update(t, m, key("i"))

	view := plain(m.View())
	if strings.Contains(view, "Band - Song") {
		t.Fatal("header should be hidden")
	}
	if !strings.Contains(view, pauseGlyph) {
		t.Fatalf("empty line should render as a pause glyph:\n%s", view)
	}
}

// plain drops ANSI escapes so assertions do not depend on the colour profile.
func plain(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEscape = false
		case !inEscape:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestAnimState(t *testing.T) {
	var a AnimState
	a.Snap(0)
	a.TargetScrollY = 4
	a.Update(true, 4)

	if a.ScrollPosition <= 0 || a.ScrollPosition >= 4 {
		t.Fatalf("ScrollPosition after one tick = %v", a.ScrollPosition)
	}

	prev := a.ScrollPosition
	for i := 0; i < 3; i++ {
		a.Update(false, 4)
		if a.ScrollPosition < prev {
			t.Fatal("easing must not move backwards")
		}
		prev = a.ScrollPosition
	}
	if !a.Settled() || a.ScrollPosition != 4 {
		t.Fatalf("not settled: %+v", a)
	}
}

func TestActiveStyle(t *testing.T) {
	r := NewTextRenderer(newTestModel(&fakeClock{}, nil).palette, 80)

	settled := r.ActiveStyle(lyrics.Evaluation{ActiveIndex: 0}.Transition())
	if !settled.GetBold() || settled.GetFaint() {
		t.Fatal("settled active line should be bold and sharp")
	}

	faded := r.ActiveStyle(lyrics.Evaluation{ActiveIndex: 0, FadeFactor: 1}.Transition())
	if faded.GetBold() || !faded.GetFaint() {
		t.Fatal("fully faded line should lose weight and go faint")
	}
	if settled.GetForeground() == faded.GetForeground() {
		t.Fatal("fading should change the colour")
	}
}
