// Package progress turns engine progress fractions into a percent and an ETA.
package progress

import (
	"fmt"
	"math"
	"time"
)

// Unknown is rendered when no ETA can be derived yet.
const Unknown = "unknown"

// Snapshot is the derived view of one progress observation.
type Snapshot struct {
	Percent    int     `json:"percent"`
	ETASeconds float64 `json:"eta_seconds"`
	ETAKnown   bool    `json:"eta_known"`
	ETADisplay string  `json:"eta_display"`
}

// Tracker measures wall-clock elapsed time within a single step. Each step
// restarts the tracker, so multi-step jobs report per-step progress.
type Tracker struct {
	started time.Time
	last    Snapshot
}

// Start resets the tracker for a new step.
func (t *Tracker) Start(now time.Time) {
	t.started = now
	t.last = Snapshot{ETADisplay: Unknown}
}

// Observe records fraction at now and returns the derived snapshot. Fractions
// outside [0,1] are clamped; NaN counts as zero.
func (t *Tracker) Observe(fraction float64, now time.Time) Snapshot {
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	elapsed := now.Sub(t.started).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	eta, known := EstimateETA(elapsed, fraction)
	t.last = Snapshot{
		Percent:    int(math.Round(fraction * 100)),
		ETASeconds: eta,
		ETAKnown:   known,
		ETADisplay: FormatETA(eta, known),
	}
	return t.last
}

// Last returns the most recent snapshot.
func (t *Tracker) Last() Snapshot {
	if t.last.ETADisplay == "" {
		return Snapshot{ETADisplay: Unknown}
	}
	return t.last
}

// EstimateETA projects the remaining seconds from elapsed seconds and the
// completed fraction. It reports false when fraction is not positive.
func EstimateETA(elapsed, fraction float64) (float64, bool) {
	if fraction <= 0 || math.IsNaN(fraction) || math.IsNaN(elapsed) {
		return 0, false
	}
	eta := elapsed/fraction - elapsed
	if eta < 0 {
		eta = 0
	}
	return eta, true
}

// FormatETA renders seconds in a single whole unit: hours from 3600s, minutes
// from 60s, otherwise seconds. Values are floored.
func FormatETA(seconds float64, known bool) string {
	if !known || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return Unknown
	}
	switch {
	case seconds >= 3600:
		return fmt.Sprintf("%dh", int64(math.Floor(seconds/3600)))
	case seconds >= 60:
		return fmt.Sprintf("%dm", int64(math.Floor(seconds/60)))
	default:
		return fmt.Sprintf("%ds", int64(math.Floor(seconds)))
	}
}
