// Package engine defines the contract between the job orchestrator and a
// media-processing backend.
//
// An Engine owns a private namespace of named files. The orchestrator writes
// inputs into it, runs one Operation at a time and reads the final output
// back. Exec reports progress as a typed event stream that always ends with
// a single EventDone before the channel is closed. Callers must drain the
// channel until it closes.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"splicer/internal/pipeline"
)

// Engine is the capability set the orchestrator consumes.
type Engine interface {
	// Load prepares the engine. It must succeed before any other call and is
	// safe to call repeatedly.
	Load(ctx context.Context) error
	WriteArtifact(ctx context.Context, name string, data []byte) error
	Exec(ctx context.Context, op Operation) (<-chan Event, error)
	ReadArtifact(ctx context.Context, name string) ([]byte, error)
	DeleteArtifact(ctx context.Context, name string) error
}

// Operation is one argv-like instruction for the engine.
type Operation struct {
	Kind             pipeline.StepKind
	Inputs           []string
	Output           string
	Start            float64
	End              float64
	Quality          int
	Resolution       string
	ExpectedDuration float64
}

// FromStep converts a pipeline step into an engine operation.
func FromStep(step pipeline.Step) Operation {
	return Operation{
		Kind:             step.Kind,
		Inputs:           append([]string(nil), step.Inputs...),
		Output:           step.Output,
		Start:            step.Params.Start,
		End:              step.Params.End,
		Quality:          step.Params.Quality,
		Resolution:       step.Params.Resolution,
		ExpectedDuration: step.Params.ExpectedDuration,
	}
}

func (op Operation) String() string {
	return fmt.Sprintf("%s [%s] -> %s", op.Kind, strings.Join(op.Inputs, ","), op.Output)
}

// EventType discriminates Event payloads.
type EventType string

const (
	EventProgress EventType = "progress"
	EventLog      EventType = "log"
	EventDone     EventType = "done"
)

// Event is one message on an Exec stream.
type Event struct {
	Type EventType
	// Fraction of the operation completed, in [0,1]. Set for EventProgress.
	Fraction float64
	// EngineTime is the media position the engine has reached.
	EngineTime time.Duration
	// Line carries engine diagnostics for EventLog.
	Line string
	// Err is nil on success. Set only for EventDone.
	Err error
}

// Progress builds a progress event.
func Progress(fraction float64, engineTime time.Duration) Event {
	return Event{Type: EventProgress, Fraction: fraction, EngineTime: engineTime}
}

// Log builds a diagnostic event.
func Log(line string) Event {
	return Event{Type: EventLog, Line: line}
}

// Done builds the terminal event.
func Done(err error) Event {
	return Event{Type: EventDone, Err: err}
}
