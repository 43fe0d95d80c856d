package lyrics

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// minutes, seconds and an optional fraction after '.' or ':'
var timeTagPattern = regexp.MustCompile(`\[(\d{1,2}):(\d{1,2})(?:[.:](\d{1,3}))?\]`)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Parse converts raw LRC text into a timeline. It never fails: lines without a
// valid time tag are dropped, and empty input gives an empty timeline.
func Parse(raw string) *Timeline {
	if raw == "" {
		return newTimeline(nil)
	}

	physical := strings.Split(lineBreaks.Replace(raw), "\n")
	result := make([]Line, 0, len(physical))
	nextID := 0

	for _, line := range physical {
		trimmed := trimLine(line)
		if trimmed == "" {
			continue
		}

		tags := timeTagPattern.FindAllStringSubmatch(trimmed, -1)
		if len(tags) == 0 {
			continue
		}

		text := trimLine(timeTagPattern.ReplaceAllString(trimmed, ""))

		for _, tag := range tags {
			result = append(result, Line{
				ID:          fmt.Sprintf("line-%d", nextID),
				TimeSeconds: tagSeconds(tag[1], tag[2], tag[3]),
				Text:        text,
			})
			nextID++
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TimeSeconds < result[j].TimeSeconds
	})

	return newTimeline(result)
}

// ParseOptional treats a nil source the same as an empty one.
func ParseOptional(raw *string) *Timeline {
	if raw == nil {
		return newTimeline(nil)
	}
	return Parse(*raw)
}

// ParseReader reads r to the end and parses the result. A nil reader gives an
// empty timeline; only read errors are returned.
func ParseReader(r io.Reader) (*Timeline, error) {
	if r == nil {
		return newTimeline(nil), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read lyrics: %w", err)
	}
	return Parse(string(data)), nil
}

// tagSeconds applies the fraction rule: the digits are right-padded to three
// and read as milliseconds, so ".5" is 500ms rather than 50ms.
func tagSeconds(minutesPart, secondsPart, fractionPart string) float64 {
	minutes, _ := strconv.Atoi(minutesPart)
	seconds, _ := strconv.Atoi(secondsPart)

	millis := 0
	if fractionPart != "" {
		padded := fractionPart + strings.Repeat("0", 3-len(fractionPart))
		millis, _ = strconv.Atoi(padded)
	}

	return float64(minutes*60+seconds) + float64(millis)/1000
}

func trimLine(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
