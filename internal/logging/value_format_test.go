package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"
)

func TestFieldTextMediaValues(t *testing.T) {
	tests := []struct {
		key   string
		value slog.Value
		want  string
	}{
		{"cut_seconds", slog.Float64Value(12.5), "12.500s"},
		{"duration", slog.Float64Value(3), "3.000s"},
		{"spec.cut_seconds", slog.Float64Value(0.0004), "0.000s"},
		{"fraction", slog.Float64Value(0.4567), "45.7%"},
		{"fraction", slog.Float64Value(math.NaN()), "NaN"},
		{"ratio", slog.Float64Value(1.25), "1.25"},
		{"took", slog.DurationValue(1234567891 * time.Nanosecond), "1.235s"},
		{"step", slog.IntValue(2), "2"},
		{"replaces_output", slog.BoolValue(true), "true"},
		{"generation", slog.Uint64Value(7), "7"},
		{"line", slog.StringValue("Invalid data"), `"Invalid data"`},
		{"name", slog.StringValue(""), `""`},
		{"error", slog.AnyValue(errors.New("exit status 1")), `"exit status 1"`},
	}
	for _, tt := range tests {
		if got := fieldText(tt.key, tt.value); got != tt.want {
			t.Errorf("fieldText(%q, %v) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestHeaderTextIsUnquoted(t *testing.T) {
	if got := headerText(slog.StringValue("compress step")); got != "compress step" {
		t.Fatalf("headerText = %q", got)
	}
	if got := headerText(slog.AnyValue(errors.New("boom"))); got != "boom" {
		t.Fatalf("headerText(error) = %q", got)
	}
}

func TestJSONHandlerRoundsMediaValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl, false))
	logger.Info("step progress",
		slog.Float64("fraction", 0.123456),
		slog.Float64("ratio", 0.123456),
		slog.Duration("took", 1500*time.Millisecond),
		slog.Group("spec", slog.Float64("cut_seconds", 12.34567)),
	)

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if entry["fraction"] != 0.1235 {
		t.Fatalf("fraction = %v", entry["fraction"])
	}
	if entry["ratio"] != 0.123456 {
		t.Fatalf("ratio = %v", entry["ratio"])
	}
	if entry["took"] != 1.5 {
		t.Fatalf("took = %v", entry["took"])
	}
	spec, _ := entry["spec"].(map[string]any)
	if spec["cut_seconds"] != 12.346 {
		t.Fatalf("spec.cut_seconds = %v", entry["spec"])
	}
	if entry["level"] != "info" || entry["msg"] != "step progress" {
		t.Fatalf("unexpected header fields: %v", entry)
	}
	ts, _ := entry["ts"].(string)
	if _, err := time.Parse(jsonTimestampLayout, ts); err != nil {
		t.Fatalf("ts %q does not parse: %v", ts, err)
	}
	if _, ok := entry["time"]; ok {
		t.Fatal("time key should be renamed to ts")
	}
}
