package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xiliourt/Lyrical-Sync/internal/colors"
	"github.com/xiliourt/Lyrical-Sync/internal/lyrics"
)

const (
	pauseGlyph       = "···"
	boldScaleCutoff  = 1.075
	faintBlurCutoff  = 1.0
	pastOpacity      = 0.35
	nearOpacity      = 0.55
	farOpacityStep   = 0.1
	minContextOpaque = 0.25
)

// TextRenderer turns lyric lines into styled, centered terminal rows.
// The terminal cannot scale or blur, so the active line's transition maps
// onto colour, weight and faintness instead.
type TextRenderer struct {
	palette     *colors.Palette
	screenWidth int
}

func NewTextRenderer(palette *colors.Palette, screenWidth int) *TextRenderer {
	return &TextRenderer{
		palette:     palette,
		screenWidth: screenWidth,
	}
}

// ActiveStyle maps a transition to a lipgloss style.
func (r *TextRenderer) ActiveStyle(tr lyrics.Transition) lipgloss.Style {
	fg := colors.Fade(r.palette.Primary, r.palette.Background, tr.Opacity)

	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(fg)).
		Bold(tr.Scale >= boldScaleCutoff).
		Faint(tr.Blur >= faintBlurCutoff)
}

// ContextStyle styles a non-active line by its state and distance from the
// active one.
func (r *TextRenderer) ContextStyle(state lyrics.LineState, distance int) lipgloss.Style {
	if distance < 1 {
		distance = 1
	}

	if state == lyrics.Past {
		fg := colors.Fade(r.palette.Dim, r.palette.Background, pastOpacity)
		return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
	}

	opacity := nearOpacity - float64(distance-1)*farOpacityStep
	if opacity < minContextOpaque {
		opacity = minContextOpaque
	}
	fg := colors.Fade(r.palette.Secondary, r.palette.Background, opacity)

	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

// Render wraps text to the screen width and centers each row.
func (r *TextRenderer) Render(text string, style lipgloss.Style) []string {
	if text == "" {
		text = pauseGlyph
	}

	width := r.screenWidth - 8
	if width < 10 {
		width = 10
	}

	block := style.Width(width).Align(lipgloss.Center).Render(text)
	rows := strings.Split(block, "\n")

	for i, row := range rows {
		rows[i] = lipgloss.PlaceHorizontal(r.screenWidth, lipgloss.Center, row)
	}

	return rows
}
