package timecode

import (
	"fmt"
	"math"
)

// Unready is displayed while the media duration is not yet known.
const Unready = "0:0:00"

// ScrubMax is the upper bound of the normalized scrub range.
const ScrubMax = 100

// ToSeconds maps a scrub position in [0,100] onto an absolute time for the
// given duration.
func ToSeconds(scrub, duration float64) float64 {
	return (scrub / ScrubMax) * duration
}

// ToScrub maps an absolute time back into the scrub range, clamped to
// [0,100]. An unready duration yields 0.
func ToScrub(seconds, duration float64) float64 {
	if !Ready(duration) || math.IsNaN(seconds) {
		return 0
	}
	scrub := (seconds / duration) * ScrubMax
	switch {
	case scrub < 0:
		return 0
	case scrub > ScrubMax:
		return ScrubMax
	default:
		return scrub
	}
}

// ToDisplay renders seconds as minutes:seconds:hundredths. Minutes and seconds
// are unpadded; hundredths are zero-padded to two digits. Values are floored,
// never rounded. Negative or non-finite input renders as Unready.
func ToDisplay(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return Unready
	}
	minutes := math.Floor(seconds / 60)
	secs := math.Floor(math.Mod(seconds, 60))
	hundredths := math.Floor(math.Mod(seconds, 1) * 100)
	return fmt.Sprintf("%d:%d:%02d", int64(minutes), int64(secs), int64(hundredths))
}

// Display renders the slider label for a scrub position. It returns Unready
// when the duration is not usable.
func Display(scrub, duration float64) string {
	if !Ready(duration) || math.IsNaN(scrub) {
		return Unready
	}
	return ToDisplay(ToSeconds(scrub, duration))
}

// Ready reports whether duration is a usable media length.
func Ready(duration float64) bool {
	return duration > 0 && !math.IsNaN(duration) && !math.IsInf(duration, 0)
}
