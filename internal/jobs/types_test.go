package jobs

import (
	"errors"
	"testing"
	"time"

	"splicer/internal/pipeline"
	"splicer/internal/services"
)

func TestStateTransitionsGate(t *testing.T) {
	tests := []struct {
		state    State
		accepts  bool
		terminal bool
	}{
		{StateIdle, true, false},
		{StateBuilding, false, false},
		{StateRunning, false, false},
		{StateFinalizing, false, false},
		{StateSucceeded, true, true},
		{StateFailed, true, true},
	}
	for _, tt := range tests {
		if got := tt.state.AcceptsSubmit(); got != tt.accepts {
			t.Errorf("%s.AcceptsSubmit() = %v", tt.state, got)
		}
		if got := tt.state.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v", tt.state, got)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{services.Wrap(services.ErrInvalidInput, "jobs", "validate", "x", nil), ErrorInvalidInput},
		{services.Wrap(services.ErrEngineLoad, "ffmpeg", "load", "x", nil), ErrorEngineLoad},
		{services.Wrap(services.ErrStepFailure, "trim", "exec", "x", nil), ErrorStepFailure},
		{services.Wrap(services.ErrNotFound, "artifact", "resolve", "x", nil), ErrorNotFound},
		{services.Wrap(services.ErrDuplicateName, "artifact", "adopt", "x", nil), ErrorDuplicateName},
		{errors.New("unclassified"), ErrorStepFailure},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestJobHelpers(t *testing.T) {
	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	job := Job{
		CreatedAt: created,
		Steps:     []pipeline.Step{{Kind: pipeline.StepTrim}, {Kind: pipeline.StepConcat}},
		StepIndex: 1,
	}
	if job.StepCount() != 2 {
		t.Fatalf("StepCount = %d", job.StepCount())
	}
	if step, ok := job.CurrentStep(); !ok || step.Kind != pipeline.StepConcat {
		t.Fatalf("CurrentStep = %+v %v", step, ok)
	}
	if got := job.Elapsed(created.Add(90 * time.Second)); got != 90*time.Second {
		t.Fatalf("Elapsed running = %v", got)
	}
	job.FinishedAt = created.Add(time.Minute)
	if got := job.Elapsed(created.Add(time.Hour)); got != time.Minute {
		t.Fatalf("Elapsed finished = %v", got)
	}
	if _, ok := (Job{StepIndex: 0}).CurrentStep(); ok {
		t.Fatal("empty job has no current step")
	}
}
