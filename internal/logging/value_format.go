package logging

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// Float attributes measured in media seconds or as a 0..1 progress fraction.
// Matching uses the last segment of a grouped key.
var (
	secondsKeys  = map[string]bool{"duration": true, "cut_seconds": true, "base_duration": true}
	fractionKeys = map[string]bool{"fraction": true}
)

func leafKey(key string) string {
	return key[strings.LastIndexByte(key, '.')+1:]
}

// headerText renders a value folded into the console header. It is never quoted.
func headerText(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindAny {
		return anyText(v.Any())
	}
	return v.String()
}

// fieldText renders the value of one indented console attribute line.
func fieldText(key string, v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindFloat64:
		return floatText(key, v.Float64())
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindAny:
		return quoteIfNeeded(anyText(v.Any()))
	default:
		return quoteIfNeeded(v.String())
	}
}

func floatText(key string, f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	leaf := leafKey(key)
	switch {
	case secondsKeys[leaf]:
		return strconv.FormatFloat(f, 'f', 3, 64) + "s"
	case fractionKeys[leaf]:
		return strconv.FormatFloat(f*100, 'f', 1, 64) + "%"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// roundedFloat trims seconds to milliseconds and fractions to four places
// for the JSON log. Other keys pass through.
func roundedFloat(key string, f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	leaf := leafKey(key)
	switch {
	case secondsKeys[leaf]:
		return math.Round(f*1000) / 1000
	case fractionKeys[leaf]:
		return math.Round(f*10000) / 10000
	default:
		return f
	}
}

func anyText(value any) string {
	if err, ok := value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(value)
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
