package artwork

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog/log"

	"github.com/xiliourt/Lyrical-Sync/internal/colors"
	"github.com/xiliourt/Lyrical-Sync/internal/track"
)

// ErrRemote is returned for http(s) artwork. Only local covers are read.
var ErrRemote = errors.New("remote artwork is not supported")

const (
	gradientSteps = 20
	// covers are shrunk to this before clustering
	maxSampleSide = 256
)

// cover file names tried next to a lyrics file, after "<name>.<ext>"
var coverNames = []string{"cover", "folder", "front", "album"}

var coverExts = []string{".jpg", ".jpeg", ".png"}

// Load decodes a cover from a file:// URL or a plain path.
func Load(ref string) (image.Image, error) {
	if ref == "" {
		return nil, errors.New("empty artwork reference")
	}

	path := ref
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid artwork url: %w", err)
		}
		if u.Scheme != "file" {
			return nil, fmt.Errorf("%w: %s", ErrRemote, u.Scheme)
		}
		path = u.Path
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artwork file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork image: %w", err)
	}

	return img, nil
}

// FindCover looks for an image beside the lyrics file, preferring one that
// shares its name. It returns "" when there is none.
func FindCover(lyricsPath string) string {
	if lyricsPath == "" {
		return ""
	}

	dir := filepath.Dir(lyricsPath)
	base := filepath.Base(lyricsPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	names := append([]string{stem}, coverNames...)
	for _, name := range names {
		for _, ext := range coverExts {
			candidate := filepath.Join(dir, name+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}

	return ""
}

// PaletteFor picks the palette for a track: the player's local artwork
// first, then a cover next to the lyrics file, then the default.
func PaletteFor(info *track.Info, lyricsPath string) *colors.Palette {
	var refs []string
	if info != nil && info.ArtworkURL != "" {
		refs = append(refs, info.ArtworkURL)
	}
	if cover := FindCover(lyricsPath); cover != "" {
		refs = append(refs, cover)
	}

	for _, ref := range refs {
		img, err := Load(ref)
		if err != nil {
			log.Debug().Err(err).Str("artwork", ref).Msg("skipping artwork")
			continue
		}
		log.Debug().Str("artwork", ref).Msg("palette from artwork")
		return ExtractPalette(img)
	}

	return colors.DefaultPalette()
}

type scoredColor struct {
	hex        string
	sat        float64
	brightness float64
	score      float64
}

// ExtractPalette clusters the cover's colours and keeps the three most
// vivid ones that are bright enough to read on a dark terminal.
func ExtractPalette(img image.Image) *colors.Palette {
	if img == nil {
		return colors.DefaultPalette()
	}

	b := img.Bounds()
	if b.Dx() > maxSampleSide || b.Dy() > maxSampleSide {
		img = resize.Thumbnail(maxSampleSide, maxSampleSide, img, resize.Bilinear)
	}

	items, err := prominentcolor.KmeansWithAll(5, img, prominentcolor.ArgumentDefault, prominentcolor.DefaultSize, nil)
	if err != nil || len(items) < 3 {
		return colors.DefaultPalette()
	}

	scored := make([]scoredColor, len(items))
	for i, item := range items {
		r := float64(item.Color.R) / 255
		g := float64(item.Color.G) / 255
		bl := float64(item.Color.B) / 255

		hi := math.Max(math.Max(r, g), bl)
		lo := math.Min(math.Min(r, g), bl)

		sat := 0.0
		if hi > 0 {
			sat = (hi - lo) / hi
		}

		scored[i] = scoredColor{
			hex:        boostColor(int(item.Color.R), int(item.Color.G), int(item.Color.B), hi),
			sat:        sat,
			brightness: hi,
			score:      sat * (1 - math.Abs(hi-0.6)),
		}
	}

	primary, ok := pick(scored, 0.3, 0.2)
	if !ok {
		return colors.DefaultPalette()
	}
	secondary, _ := pick(scored, 0.3, 0.15, primary.hex)
	accent, _ := pick(scored, 0.25, 0.1, primary.hex, secondary.hex)

	chosen := []string{primary.hex}
	for _, c := range []scoredColor{secondary, accent} {
		if c.hex != "" {
			chosen = append(chosen, c.hex)
		}
	}
	for len(chosen) < 3 {
		chosen = append(chosen, colors.BlendColors(chosen[0], "#FFFFFF", 0.3*float64(len(chosen))))
	}

	// brightest leads; the dimmest pairs with it for the title gradient
	sort.SliceStable(chosen, func(i, j int) bool {
		return luma(chosen[i]) > luma(chosen[j])
	})

	palette := colors.DefaultPalette()
	palette.Primary = chosen[0]
	palette.Accent = chosen[1]
	palette.Secondary = chosen[2]
	palette.Gradient = colors.GenerateGradient(palette.Primary, palette.Secondary, gradientSteps)

	return palette
}

// pick returns the best scoring colour above the thresholds that is not in skip.
func pick(scored []scoredColor, minBrightness float64, minSat float64, skip ...string) (scoredColor, bool) {
	best := scoredColor{score: -1}
	found := false

outer:
	for _, c := range scored {
		for _, s := range skip {
			if c.hex == s {
				continue outer
			}
		}
		if c.brightness > minBrightness && c.sat > minSat && c.score > best.score {
			best = c
			found = true
		}
	}

	if !found {
		return scoredColor{}, false
	}
	return best, true
}

// boostColor lifts dark colours and mutes near-white ones.
func boostColor(r, g, b int, brightness float64) string {
	if brightness < 0.4 {
		factor := 2.5
		if brightness > 0 {
			factor = math.Min(2.5, 0.4/brightness)
		}
		r = int(float64(r) * factor)
		g = int(float64(g) * factor)
		b = int(float64(b) * factor)
	}

	if brightness > 0.85 {
		avg := float64(r+g+b) / 3
		r = int(avg + (float64(r)-avg)*0.7)
		g = int(avg + (float64(g)-avg)*0.7)
		b = int(avg + (float64(b)-avg)*0.7)
	}

	return colors.RGBToHex(r, g, b)
}

func luma(hex string) float64 {
	r, g, b := colors.HexToRGB(hex)
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}
