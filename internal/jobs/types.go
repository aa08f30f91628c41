package jobs

import (
	"errors"
	"time"

	"splicer/internal/pipeline"
	"splicer/internal/progress"
	"splicer/internal/services"
)

// ErrJobActive is returned by Submit while a job is still in flight.
var ErrJobActive = errors.New("a job is already active")

// State is a position in the job lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateBuilding   State = "building"
	StateRunning    State = "running"
	StateFinalizing State = "finalizing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transitions happen without a new
// Submit or Reset.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// AcceptsSubmit reports whether a new job may replace the current one.
func (s State) AcceptsSubmit() bool {
	return s == StateIdle || s.Terminal()
}

// ErrorKind classifies a job failure.
type ErrorKind string

const (
	ErrorInvalidInput  ErrorKind = "invalid_input"
	ErrorEngineLoad    ErrorKind = "engine_load_failure"
	ErrorStepFailure   ErrorKind = "step_failure"
	ErrorNotFound      ErrorKind = "not_found"
	ErrorDuplicateName ErrorKind = "duplicate_name"
)

// ErrorInfo describes why a job failed.
type ErrorInfo struct {
	Kind    ErrorKind
	Message string
	// Step is the 1-based index of the failing step, 0 when the failure is
	// not tied to a step.
	Step int
}

// ResultInfo describes the downloadable output of a succeeded job.
type ResultInfo struct {
	Name     string
	MIMEType string
	Size     int64
}

// MediaHandle is a user-selected input clip. The manager never modifies it.
type MediaHandle struct {
	Name string
	Data []byte
	// Duration in seconds; 0 when unknown.
	Duration float64
}

func (h *MediaHandle) present() bool {
	return h != nil && len(h.Data) > 0
}

func (h *MediaHandle) duration() float64 {
	if h == nil {
		return 0
	}
	return h.Duration
}

// Request is the user intent behind a job.
type Request struct {
	Kind   pipeline.Kind
	Spec   pipeline.TranscodeSpec
	Base   *MediaHandle
	Target *MediaHandle
}

// Job is a snapshot of the current job. Snapshots are values; Steps is shared
// between snapshots and never modified.
type Job struct {
	ID         string
	Generation uint64
	Kind       pipeline.Kind
	Spec       pipeline.TranscodeSpec
	Steps      []pipeline.Step
	State      State
	// StepIndex is the 0-based index of the step running or last run.
	StepIndex  int
	Progress   progress.Snapshot
	Result     *ResultInfo
	Error      *ErrorInfo
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// StepCount returns the number of steps in the pipeline.
func (j Job) StepCount() int {
	return len(j.Steps)
}

// CurrentStep returns the step at StepIndex, if any.
func (j Job) CurrentStep() (pipeline.Step, bool) {
	if j.StepIndex < 0 || j.StepIndex >= len(j.Steps) {
		return pipeline.Step{}, false
	}
	return j.Steps[j.StepIndex], true
}

// Elapsed returns the time from creation to finish, or to now while running.
func (j Job) Elapsed(now time.Time) time.Duration {
	if j.CreatedAt.IsZero() {
		return 0
	}
	end := j.FinishedAt
	if end.IsZero() {
		end = now
	}
	return end.Sub(j.CreatedAt)
}

// Classify maps an error onto the job error kind it reports as. Errors with no
// recognised marker are step failures.
func Classify(err error) ErrorKind {
	switch services.Marker(err) {
	case services.ErrInvalidInput:
		return ErrorInvalidInput
	case services.ErrEngineLoad:
		return ErrorEngineLoad
	case services.ErrNotFound:
		return ErrorNotFound
	case services.ErrDuplicateName:
		return ErrorDuplicateName
	default:
		return ErrorStepFailure
	}
}
