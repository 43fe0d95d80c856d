package colors

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

type Palette struct {
	Primary    string
	Secondary  string
	Accent     string
	Dim        string
	Background string
	Gradient   []string
}

func DefaultPalette() *Palette {
	return &Palette{
		Primary:    "#8BA4E8",
		Secondary:  "#E8A4C8",
		Accent:     "#B8A8E8",
		Dim:        "#6272A4",
		Background: "#1E1E2E",
		Gradient:   GenerateGradient("#8BA4E8", "#E8A4C8", 20),
	}
}

// parse falls back to white for anything that is not #RRGGBB or #RGB.
func parse(hex string) colorful.Color {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return c
}

// BlendColors interpolates in HCL so the midpoints keep their brightness.
func BlendColors(hex1 string, hex2 string, t float64) string {
	t = clamp(t, 0, 1)
	return parse(hex1).BlendHcl(parse(hex2), t).Clamped().Hex()
}

// Fade mixes fg towards bg. Opacity 1 leaves fg untouched, 0 yields bg.
func Fade(fg string, bg string, opacity float64) string {
	return BlendColors(bg, fg, opacity)
}

func GenerateGradient(startHex string, endHex string, steps int) []string {
	if steps < 2 {
		steps = 2
	}

	gradient := make([]string, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		gradient[i] = BlendColors(startHex, endHex, t)
	}

	return gradient
}

func HexToRGB(hex string) (int, int, int) {
	r, g, b := parse(hex).RGB255()
	return int(r), int(g), int(b)
}

func RGBToHex(r int, g int, b int) string {
	c := colorful.Color{
		R: float64(clampInt(r, 0, 255)) / 255,
		G: float64(clampInt(g, 0, 255)) / 255,
		B: float64(clampInt(b, 0, 255)) / 255,
	}
	return c.Hex()
}

func RenderGradientText(text string, gradient []string, bold bool) string {
	if len(text) == 0 {
		return ""
	}
	if len(gradient) == 0 {
		return text
	}

	runes := []rune(text)
	var result strings.Builder

	for i, r := range runes {
		colorIdx := 0
		if len(runes) > 1 {
			colorIdx = i * (len(gradient) - 1) / (len(runes) - 1)
		}
		if colorIdx >= len(gradient) {
			colorIdx = len(gradient) - 1
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradient[colorIdx]))
		if bold {
			style = style.Bold(true)
		}
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}

func clampInt(val int, min int, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
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
