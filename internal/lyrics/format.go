package lyrics

import (
	"fmt"
	"math"
)

// FormatDuration renders seconds as "M:SS" for transport displays. Seconds are
// truncated, minutes are unbounded, and invalid input shows as "0:00".
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	minutes := math.Floor(seconds / 60)
	secs := int(math.Mod(seconds, 60))
	return fmt.Sprintf("%.0f:%02d", minutes, secs)
}

// FormatTimestamp renders seconds as "M:SS.cc".
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00.00"
	}
	minutes := math.Floor(seconds / 60)
	secs := seconds - minutes*60
	// keep "0:59.999" from printing as "0:60.00"
	secs = math.Floor(secs*100+1e-6) / 100
	return fmt.Sprintf("%.0f:%05.2f", minutes, secs)
}
