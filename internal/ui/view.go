package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xiliourt/Lyrical-Sync/internal/colors"
	"github.com/xiliourt/Lyrical-Sync/internal/lyrics"
)

const (
	contextLines = 2
	waitingGlyph = "♪"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	height := m.height
	if width == 0 {
		width = defaultWidth
	}
	if height == 0 {
		height = defaultHeight
	}

	var lines []string
	if !m.hideHeader {
		lines = append(lines, m.renderHeader(width)...)
	}

	bodyHeight := height - len(lines)
	switch {
	case m.timeline == nil:
		lines = append(lines, m.renderNotice("waiting for lyrics", bodyHeight, width)...)
	case m.timeline.IsEmpty():
		notice := "no synced lyrics available"
		if m.err != nil {
			notice += " (" + m.err.Error() + ")"
		}
		lines = append(lines, m.renderNotice(notice, bodyHeight, width)...)
	default:
		lines = append(lines, m.renderLyrics(bodyHeight, width)...)
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderHeader(width int) []string {
	title := "lyrical"
	if label := m.track.Label(); label != "" {
		title = label
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Dim))

	lines := []string{
		"",
		"  " + colors.RenderGradientText(title, m.palette.Gradient, true),
		"  " + dimStyle.Render(m.statusText()),
	}

	if bar := m.renderProgress(width); bar != "" {
		lines = append(lines, "", bar)
	}

	return append(lines, "")
}

func (m Model) statusText() string {
	var parts []string

	switch {
	case m.clockErr != nil:
		parts = append(parts, "waiting for player")
	case m.Paused():
		parts = append(parts, "paused")
	default:
		parts = append(parts, "playing")
	}

	if m.syncOffset != 0 {
		parts = append(parts, fmt.Sprintf("offset %+.1fs", m.syncOffset))
	}

	if m.timeline != nil && !m.timeline.IsEmpty() && m.eval.ActiveIndex >= 0 {
		parts = append(parts, fmt.Sprintf("line %d/%d", m.eval.ActiveIndex+1, m.timeline.Len()))
	}

	return strings.Join(parts, " · ")
}

func (m Model) totalSeconds() float64 {
	if m.track != nil && m.track.DurationSeconds > 0 {
		return m.track.DurationSeconds
	}
	return m.timeline.Duration()
}

func (m Model) renderProgress(width int) string {
	total := m.totalSeconds()
	if total <= 0 {
		return ""
	}

	barWidth := width - 20
	if barWidth < 20 {
		barWidth = 20
	}

	progress := m.position / total
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0 {
		progress = 0
	}

	filledWidth := int(float64(barWidth) * progress)

	var bar strings.Builder

	filledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Primary))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Dim)).Faint(true)
	knobStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Accent))

	for i := 0; i < barWidth; i++ {
		if i < filledWidth {
			bar.WriteString(filledStyle.Render("━"))
		} else if i == filledWidth {
			bar.WriteString(knobStyle.Render("●"))
		} else {
			bar.WriteString(emptyStyle.Render("─"))
		}
	}

	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Dim))

	return fmt.Sprintf("  %s  %s  %s",
		timeStyle.Render(lyrics.FormatDuration(m.position)),
		bar.String(),
		timeStyle.Render(lyrics.FormatDuration(total)))
}

type placedLyric struct {
	index int
	rows  []string
}

func (m Model) renderLyrics(height int, width int) []string {
	output := make([]string, height)
	if height <= 0 {
		return output
	}

	renderer := NewTextRenderer(m.palette, width)
	active := m.eval.ActiveIndex

	var placed []placedLyric
	for idx := active - contextLines - 1; idx <= active+contextLines+1; idx++ {
		switch {
		case idx == -1 && active == -1:
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Dim))
			placed = append(placed, placedLyric{index: idx, rows: renderer.Render(waitingGlyph, style)})
			continue
		case idx < 0 || idx >= m.timeline.Len():
			continue
		}

		line, _ := m.timeline.At(idx)

		var style lipgloss.Style
		if state := m.eval.StateOf(idx); state == lyrics.Active {
			style = renderer.ActiveStyle(m.eval.Transition())
		} else {
			style = renderer.ContextStyle(state, absInt(idx-active))
		}

		placed = append(placed, placedLyric{index: idx, rows: renderer.Render(line.Text, style)})
	}

	anchor := 0
	for i, p := range placed {
		if p.index == active {
			anchor = i
			break
		}
	}

	positions := make([]int, len(placed))
	positions[anchor] = (height - len(placed[anchor].rows)) / 2

	y := positions[anchor]
	for i := anchor - 1; i >= 0; i-- {
		y -= len(placed[i].rows) + lyricRowSpacing
		positions[i] = y
	}
	y = positions[anchor] + len(placed[anchor].rows) + lyricRowSpacing
	for i := anchor + 1; i < len(placed); i++ {
		positions[i] = y
		y += len(placed[i].rows) + lyricRowSpacing
	}

	// while easing, content trails one slot behind the new active line
	lag := float64(active) - m.animState.ScrollPosition
	lag = math.Max(-1, math.Min(1, lag))
	shift := int(math.Round(lag * float64(len(placed[anchor].rows)+lyricRowSpacing)))

	for i, p := range placed {
		for j, row := range p.rows {
			at := positions[i] + shift + j
			if at >= 0 && at < height {
				output[at] = row
			}
		}
	}

	return output
}

func (m Model) renderNotice(text string, height int, width int) []string {
	lines := make([]string, 0, height)

	for i := 0; i < height/2-1; i++ {
		lines = append(lines, "")
	}

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.palette.Dim)).
		Italic(true)
	lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(text)))

	return lines
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
