package progress

import (
	"math"
	"testing"
	"time"
)

func TestTrackerGoldenETA(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var tracker Tracker
	tracker.Start(start)

	snap := tracker.Observe(0.25, start.Add(10*time.Second))
	if !snap.ETAKnown || snap.ETASeconds != 30 {
		t.Fatalf("expected eta 30s, got %+v", snap)
	}
	if snap.Percent != 25 {
		t.Fatalf("expected percent 25, got %d", snap.Percent)
	}
	if snap.ETADisplay != "30s" {
		t.Fatalf("expected display 30s, got %q", snap.ETADisplay)
	}
}

func TestTrackerZeroFractionIsUnknown(t *testing.T) {
	start := time.Now()
	var tracker Tracker
	tracker.Start(start)
	snap := tracker.Observe(0, start.Add(5*time.Second))
	if snap.ETAKnown {
		t.Fatalf("expected unknown eta, got %+v", snap)
	}
	if snap.ETADisplay != Unknown {
		t.Fatalf("expected %q, got %q", Unknown, snap.ETADisplay)
	}
	if snap.Percent != 0 {
		t.Fatalf("expected percent 0, got %d", snap.Percent)
	}
}

func TestTrackerStartResetsElapsed(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var tracker Tracker
	tracker.Start(start)
	tracker.Observe(0.9, start.Add(90*time.Second))

	next := start.Add(100 * time.Second)
	tracker.Start(next)
	if got := tracker.Last(); got.ETAKnown || got.Percent != 0 {
		t.Fatalf("expected reset snapshot, got %+v", got)
	}
	snap := tracker.Observe(0.5, next.Add(4*time.Second))
	if snap.ETASeconds != 4 {
		t.Fatalf("expected eta 4s after restart, got %v", snap.ETASeconds)
	}
}

func TestTrackerClampsFraction(t *testing.T) {
	start := time.Now()
	var tracker Tracker
	tracker.Start(start)
	if snap := tracker.Observe(1.7, start.Add(time.Second)); snap.Percent != 100 || snap.ETASeconds != 0 {
		t.Fatalf("expected clamp to 100%%, got %+v", snap)
	}
	if snap := tracker.Observe(-0.5, start.Add(time.Second)); snap.Percent != 0 || snap.ETAKnown {
		t.Fatalf("expected clamp to 0%%, got %+v", snap)
	}
	if snap := tracker.Observe(math.NaN(), start.Add(time.Second)); snap.ETAKnown {
		t.Fatalf("expected NaN to be unknown, got %+v", snap)
	}
}

func TestPercentRounds(t *testing.T) {
	start := time.Now()
	var tracker Tracker
	tracker.Start(start)
	if snap := tracker.Observe(0.426, start); snap.Percent != 43 {
		t.Fatalf("expected 43, got %d", snap.Percent)
	}
	if snap := tracker.Observe(0.424, start); snap.Percent != 42 {
		t.Fatalf("expected 42, got %d", snap.Percent)
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		seconds float64
		known   bool
		want    string
	}{
		{0, false, "unknown"},
		{12, false, "unknown"},
		{0, true, "0s"},
		{59.9, true, "59s"},
		{60, true, "1m"},
		{119.9, true, "1m"},
		{3599, true, "59m"},
		{3600, true, "1h"},
		{7300, true, "2h"},
		{-1, true, "unknown"},
		{math.Inf(1), true, "unknown"},
	}
	for _, tt := range tests {
		if got := FormatETA(tt.seconds, tt.known); got != tt.want {
			t.Fatalf("FormatETA(%v, %v) = %q, want %q", tt.seconds, tt.known, got, tt.want)
		}
	}
}
