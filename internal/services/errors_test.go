package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"splicer/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrStepFailure, "pipeline", "concat", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrStepFailure) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"pipeline", "concat", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestMarker(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"plain", errors.New("plain"), nil},
		{"invalid input", services.Wrap(services.ErrInvalidInput, "validate", "", "missing base", nil), services.ErrInvalidInput},
		{"step beats external tool", services.Wrap(services.ErrStepFailure, "pipeline", "trim", "exit 1", services.ErrExternalTool), services.ErrStepFailure},
		{"wrapped twice", fmt.Errorf("outer: %w", services.Wrap(services.ErrNotFound, "artifact", "resolve", "part1.mp4", nil)), services.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Marker(tt.err); got != tt.want {
				t.Fatalf("Marker() = %v, want %v", got, tt.want)
			}
		})
	}
}
