package ffmpeg

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"splicer/internal/engine"
)

var durationPattern = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// progressMeter converts "-progress pipe:1" key/value lines into progress
// events. Without an expected duration it falls back to the first
// "Duration:" header ffmpeg prints on stderr.
type progressMeter struct {
	mu       sync.Mutex
	expected float64
	fallback float64
	position time.Duration
	last     float64
	finished bool
}

func newProgressMeter(expected float64) *progressMeter {
	if math.IsNaN(expected) || expected < 0 {
		expected = 0
	}
	return &progressMeter{expected: expected, last: -1}
}

// Consume handles one stdout line and reports an event when the progress
// fraction moved.
func (m *progressMeter) Consume(line string) (engine.Event, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return engine.Event{}, false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	m.mu.Lock()
	defer m.mu.Unlock()
	switch key {
	case "out_time_us", "out_time_ms":
		// ffmpeg reports microseconds under both keys.
		micros, err := strconv.ParseInt(value, 10, 64)
		if err != nil || micros < 0 {
			return engine.Event{}, false
		}
		m.position = time.Duration(micros) * time.Microsecond
		return m.emitLocked(m.fractionLocked())
	case "out_time":
		if position, ok := parseClock(value); ok {
			m.position = position
			return m.emitLocked(m.fractionLocked())
		}
	case "progress":
		if value == "end" {
			m.finished = true
			return m.emitLocked(1)
		}
	}
	return engine.Event{}, false
}

// ObserveStderr records the input duration header when present.
func (m *progressMeter) ObserveStderr(line string) {
	match := durationPattern.FindStringSubmatch(line)
	if match == nil {
		return
	}
	position, ok := parseClock(match[1] + ":" + match[2] + ":" + match[3])
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fallback == 0 {
		m.fallback = position.Seconds()
	}
}

// Finish reports a final full-progress event unless one was already sent.
func (m *progressMeter) Finish() (engine.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finished && m.last >= 1 {
		return engine.Event{}, false
	}
	m.finished = true
	return m.emitLocked(1)
}

func (m *progressMeter) fractionLocked() float64 {
	total := m.expected
	if total <= 0 {
		total = m.fallback
	}
	if total <= 0 {
		return -1
	}
	fraction := m.position.Seconds() / total
	if fraction > 1 {
		fraction = 1
	}
	if fraction < 0 {
		fraction = 0
	}
	return fraction
}

func (m *progressMeter) emitLocked(fraction float64) (engine.Event, bool) {
	if fraction < 0 || fraction == m.last {
		return engine.Event{}, false
	}
	m.last = fraction
	return engine.Progress(fraction, m.position), true
}

// parseClock parses HH:MM:SS(.fraction).
func parseClock(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "-") {
		return 0, false
	}
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	total := float64(hours*3600+minutes*60) + seconds
	return time.Duration(total * float64(time.Second)), true
}
