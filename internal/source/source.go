package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.senan.xyz/taglib"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// taglib exposes unsynchronised lyrics frames (ID3 USLT, Vorbis LYRICS) under this key
const lyricsTag = "LYRICS"

var ErrNoLyrics = errors.New("no lyrics found")

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".mp4":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
	".aiff": true,
	".wma":  true,
}

// Load returns the raw lyrics text for path: the file itself for .lrc and
// other text files, or the embedded lyrics tag for audio files.
func Load(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty lyrics path")
	}

	if IsAudio(path) {
		return ReadEmbedded(path)
	}

	return ReadText(path)
}

func IsAudio(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read lyrics file %s: %w", path, err)
	}

	text, err := Decode(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode lyrics file %s: %w", path, err)
	}

	return text, nil
}

// Decode turns file bytes into text. UTF-16 input is recognised by its byte
// order mark; anything else is read as UTF-8 with the mark removed.
func Decode(data []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func ReadEmbedded(path string) (string, error) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return "", fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	for _, value := range tags[lyricsTag] {
		if strings.TrimSpace(value) != "" {
			return value, nil
		}
	}

	return "", fmt.Errorf("%s: %w", path, ErrNoLyrics)
}
