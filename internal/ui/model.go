package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xiliourt/Lyrical-Sync/internal/clock"
	"github.com/xiliourt/Lyrical-Sync/internal/colors"
	"github.com/xiliourt/Lyrical-Sync/internal/config"
	"github.com/xiliourt/Lyrical-Sync/internal/lyrics"
	"github.com/xiliourt/Lyrical-Sync/internal/player"
	"github.com/xiliourt/Lyrical-Sync/internal/track"
)

const (
	seekStep        = 5.0
	syncOffsetStep  = 0.1
	scrollEaseTime  = 400 * time.Millisecond
	defaultHeight   = 24
	defaultWidth    = 80
	lyricRowSpacing = 2
)

type TickMsg time.Time

// TimelineLoadedMsg delivers freshly parsed lyrics, typically from the file watcher.
type TimelineLoadedMsg struct {
	Timeline *lyrics.Timeline
	Err      error
}

type PlayerEventMsg struct {
	Event player.EventData
}

// PaletteMsg carries colours extracted from a new track's artwork.
type PaletteMsg struct {
	Palette *colors.Palette
}

// controllable clocks accept transport keys; others ignore them.
type controllable interface {
	Toggle() bool
	Seek(seconds float64)
	SeekBy(delta float64)
	Playing() bool
}

type Model struct {
	clock        clock.Clock
	player       *player.Service
	pollInterval time.Duration
	syncOffset   float64
	hideHeader   bool
	palette      *colors.Palette
	artwork      func(*track.Info) *colors.Palette

	track    *track.Info
	timeline *lyrics.Timeline
	cursor   *lyrics.Cursor
	eval     lyrics.Evaluation
	position float64

	err       error
	clockErr  error
	quitting  bool
	width     int
	height    int
	animState AnimState
}

type ModelConfig struct {
	Clock  clock.Clock
	Player *player.Service
	// Timeline nil means lyrics have not arrived yet.
	Timeline     *lyrics.Timeline
	Track        *track.Info
	SyncOffset   float64
	HideHeader   bool
	PollInterval time.Duration
	Palette      *colors.Palette
	// Artwork, when set, picks a palette for each new player track.
	Artwork func(*track.Info) *colors.Palette
	Err     error
}

func NewModel(cfg ModelConfig) Model {
	m := Model{
		clock:        cfg.Clock,
		player:       cfg.Player,
		pollInterval: cfg.PollInterval,
		syncOffset:   cfg.SyncOffset,
		hideHeader:   cfg.HideHeader,
		palette:      cfg.Palette,
		artwork:      cfg.Artwork,
		track:        cfg.Track,
		timeline:     cfg.Timeline,
		cursor:       lyrics.NewCursor(),
		err:          cfg.Err,
		eval:         lyrics.Evaluation{ActiveIndex: -1},
	}

	if m.pollInterval <= 0 {
		m.pollInterval = config.DefaultPollInterval
	}
	if m.palette == nil {
		m.palette = colors.DefaultPalette()
	}

	m.sample()
	m.animState.Snap(float64(m.eval.ActiveIndex))

	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.listenForPlayerEvents(),
	)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.pollInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) listenForPlayerEvents() tea.Cmd {
	if m.player == nil {
		return nil
	}

	return func() tea.Msg {
		event, ok := <-m.player.Events()
		if !ok {
			return nil
		}
		return PlayerEventMsg{Event: event}
	}
}

func (m Model) loadPalette(info *track.Info) tea.Cmd {
	if m.artwork == nil {
		return nil
	}

	pick := m.artwork
	return func() tea.Msg {
		return PaletteMsg{Palette: pick(info)}
	}
}

func (m Model) transitionTicks() int {
	ticks := int(scrollEaseTime / m.pollInterval)
	if ticks < 1 {
		return 1
	}
	return ticks
}

// sample reads the clock and re-evaluates the timeline. It reports whether
// the active line changed.
func (m *Model) sample() bool {
	if m.clock == nil {
		return false
	}

	pos, err := m.clock.Position()
	if err != nil {
		m.clockErr = err
		return false
	}
	m.clockErr = nil
	m.position = pos

	ev, changed := m.timeline.Follow(m.cursor, pos+m.syncOffset)
	m.eval = ev
	if changed {
		m.animState.TargetScrollY = float64(ev.ActiveIndex)
	}

	return changed
}

func (m *Model) setTimeline(tl *lyrics.Timeline) {
	m.timeline = tl
	m.cursor.Reset()
	m.sample()
	m.animState.Snap(float64(m.eval.ActiveIndex))
}

func (m Model) Width() int                    { return m.width }
func (m Model) Height() int                   { return m.height }
func (m Model) Track() *track.Info            { return m.track }
func (m Model) Timeline() *lyrics.Timeline    { return m.timeline }
func (m Model) Evaluation() lyrics.Evaluation { return m.eval }
func (m Model) Position() float64             { return m.position }
func (m Model) SyncOffset() float64           { return m.syncOffset }
func (m Model) HideHeader() bool              { return m.hideHeader }
func (m Model) Err() error                    { return m.err }
func (m Model) Palette() *colors.Palette      { return m.palette }
func (m Model) IsQuitting() bool              { return m.quitting }

// Paused is true only for clocks the follower controls.
func (m Model) Paused() bool {
	c, ok := m.clock.(controllable)
	return ok && !c.Playing()
}

func (m *Model) Stop() {
	if m.player != nil {
		m.player.Stop()
	}
}
