package track

import (
	"path/filepath"
	"strings"
)

type Info struct {
	Title           string
	Artist          string
	Album           string
	DurationSeconds float64
	TrackID         string
	// ArtworkURL is the player's mpris:artUrl, often a file:// URL.
	ArtworkURL string
}

// FromPath names a track after its lyrics file when no player metadata exists.
func FromPath(path string) *Info {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	// "Artist - Title.lrc" is the usual naming
	if artist, title, ok := strings.Cut(name, " - "); ok {
		return &Info{Title: strings.TrimSpace(title), Artist: strings.TrimSpace(artist)}
	}

	return &Info{Title: name}
}

func (t *Info) IsValid() bool {
	if t == nil {
		return false
	}
	return t.Title != "" && t.Artist != ""
}

func (t *Info) IsSameTrack(other *Info) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.TrackID != "" && other.TrackID != "" {
		return t.TrackID == other.TrackID
	}
	return t.Title == other.Title && t.Artist == other.Artist
}

func (t *Info) Label() string {
	if t == nil {
		return ""
	}
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}
