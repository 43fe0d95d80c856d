package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/xiliourt/Lyrical-Sync/internal/lyrics"
	"github.com/xiliourt/Lyrical-Sync/internal/player"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case PlayerEventMsg:
		return m.handlePlayerEvent(msg.Event)

	case TimelineLoadedMsg:
		return m.handleTimelineLoaded(msg)

	case PaletteMsg:
		if msg.Palette != nil {
			m.palette = msg.Palette
		}
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		m.Stop()
		return m, tea.Quit

	case "up", "k", "+", "=":
		m.syncOffset += syncOffsetStep
	case "down", "j", "-":
		m.syncOffset -= syncOffsetStep
	case "0":
		m.syncOffset = 0

	case " ", "space", "p":
		if c, ok := m.clock.(controllable); ok {
			c.Toggle()
		}
	case "left", "h":
		m.seekBy(-seekStep)
	case "right", "l":
		m.seekBy(seekStep)
	case "enter":
		m.seekToActiveLine()

	case "tab", "i":
		m.hideHeader = !m.hideHeader
		return m, nil

	default:
		return m, nil
	}

	if m.sample() {
		m.animState.Update(true, m.transitionTicks())
	}

	return m, nil
}

func (m *Model) seekBy(delta float64) {
	c, ok := m.clock.(controllable)
	if !ok {
		return
	}
	c.SeekBy(delta)
}

// seekToActiveLine rewinds to the start of the current line, accounting for
// the sync offset so that line stays active.
func (m *Model) seekToActiveLine() {
	c, ok := m.clock.(controllable)
	if !ok {
		return
	}

	target, ok := m.timeline.SeekTarget(m.eval.ActiveIndex)
	if !ok {
		return
	}

	c.Seek(target - m.syncOffset)
}

func (m Model) handlePlayerEvent(event player.EventData) (tea.Model, tea.Cmd) {
	next := m.listenForPlayerEvents()

	switch event.Type {
	case player.EventTrackChanged:
		if event.Track != nil && event.Track.IsValid() {
			log.Info().Str("track", event.Track.Label()).Msg("player track changed")
			m.track = event.Track
			if cmd := m.loadPalette(event.Track); cmd != nil {
				next = tea.Batch(next, cmd)
			}
		}

	case player.EventSeeked:
		m.sample()
		m.animState.Snap(float64(m.eval.ActiveIndex))

	case player.EventPlaybackStateChanged:
		log.Debug().Bool("playing", event.Playing).Msg("playback state changed")
	}

	return m, next
}

func (m Model) handleTimelineLoaded(msg TimelineLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		log.Warn().Err(msg.Err).Msg("lyrics reload failed, continuing without lyrics")
		m.err = msg.Err
		m.setTimeline(lyrics.Parse(""))
		return m, nil
	}

	log.Info().Str("timeline", msg.Timeline.ID()).Int("lines", msg.Timeline.Len()).Msg("lyrics loaded")
	m.err = nil
	m.setTimeline(msg.Timeline)

	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	lineChanged := m.sample()
	m.animState.Update(lineChanged, m.transitionTicks())

	return m, m.tickCmd()
}
