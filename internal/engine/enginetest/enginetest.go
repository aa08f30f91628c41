// Package enginetest provides a scripted in-memory engine.Engine for tests.
package enginetest

import (
	"context"
	"fmt"
	"sync"

	"splicer/internal/engine"
	"splicer/internal/services"
)

// Script controls how the fake answers an Exec for one output name.
type Script struct {
	// Progress fractions emitted before the terminal event.
	Progress []float64
	// Err fails the operation.
	Err error
	// Output is written to the namespace on success. Defaults to the
	// operation description.
	Output []byte
	// Hold, when set, delays the terminal event until it is closed or the
	// operation context ends.
	Hold <-chan struct{}
}

// Engine is a fake engine. The zero value is not usable; call New.
type Engine struct {
	mu        sync.Mutex
	files     map[string][]byte
	scripts   map[string]Script
	ops       []engine.Operation
	loadErr   error
	loadCalls int
	loaded    bool
	started   chan engine.Operation
	writeHold <-chan struct{}
	writing   chan string
	written   chan string
}

// New returns an empty fake engine.
func New() *Engine {
	return &Engine{
		files:   make(map[string][]byte),
		scripts: make(map[string]Script),
		started: make(chan engine.Operation, 16),
		writing: make(chan string, 16),
		written: make(chan string, 16),
	}
}

// HoldWrites makes WriteArtifact block until release is closed, ignoring
// the caller's context like the ffmpeg workspace does.
func (e *Engine) HoldWrites(release <-chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writeHold = release
}

// Writing delivers each artifact name as WriteArtifact begins.
func (e *Engine) Writing() <-chan string {
	return e.writing
}

// Written delivers each artifact name once its bytes are stored.
func (e *Engine) Written() <-chan string {
	return e.written
}

// FailLoad makes Load return err until cleared with nil.
func (e *Engine) FailLoad(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadErr = err
}

// On registers the behaviour for operations producing output.
func (e *Engine) On(output string, script Script) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scripts[output] = script
}

// Started delivers each operation as Exec begins it.
func (e *Engine) Started() <-chan engine.Operation {
	return e.started
}

// Operations returns the operations executed so far.
func (e *Engine) Operations() []engine.Operation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.Operation(nil), e.ops...)
}

// LoadCalls reports how many times Load ran.
func (e *Engine) LoadCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadCalls
}

// Files returns the names currently in the namespace.
func (e *Engine) Files() map[string][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string][]byte, len(e.files))
	for name, data := range e.files {
		out[name] = data
	}
	return out
}

func (e *Engine) Load(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadCalls++
	if e.loadErr != nil {
		return services.Wrap(services.ErrEngineLoad, "enginetest", "load", "scripted failure", e.loadErr)
	}
	e.loaded = true
	return nil
}

func (e *Engine) WriteArtifact(_ context.Context, name string, data []byte) error {
	e.mu.Lock()
	hold := e.writeHold
	e.mu.Unlock()
	select {
	case e.writing <- name:
	default:
	}
	if hold != nil {
		<-hold
	}

	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return services.Wrap(services.ErrEngineLoad, "enginetest", "write", "engine not loaded", nil)
	}
	e.files[name] = append([]byte(nil), data...)
	e.mu.Unlock()
	select {
	case e.written <- name:
	default:
	}
	return nil
}

func (e *Engine) ReadArtifact(_ context.Context, name string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	data, ok := e.files[name]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "enginetest", "read", name, nil)
	}
	return append([]byte(nil), data...), nil
}

func (e *Engine) DeleteArtifact(_ context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.files, name)
	return nil
}

func (e *Engine) Exec(ctx context.Context, op engine.Operation) (<-chan engine.Event, error) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return nil, services.Wrap(services.ErrEngineLoad, "enginetest", "exec", "engine not loaded", nil)
	}
	for _, input := range op.Inputs {
		if _, ok := e.files[input]; !ok {
			e.mu.Unlock()
			return nil, services.Wrap(services.ErrNotFound, "enginetest", "exec", fmt.Sprintf("input %q missing", input), nil)
		}
	}
	e.ops = append(e.ops, op)
	script := e.scripts[op.Output]
	e.mu.Unlock()

	select {
	case e.started <- op:
	default:
	}

	events := make(chan engine.Event, len(script.Progress)+1)
	go func() {
		defer close(events)
		for _, fraction := range script.Progress {
			events <- engine.Progress(fraction, 0)
		}
		if script.Hold != nil {
			select {
			case <-script.Hold:
			case <-ctx.Done():
				events <- engine.Done(ctx.Err())
				return
			}
		}
		if script.Err != nil {
			events <- engine.Done(services.Wrap(services.ErrStepFailure, "enginetest", string(op.Kind), "scripted failure", script.Err))
			return
		}
		output := script.Output
		if output == nil {
			output = []byte(op.String())
		}
		e.mu.Lock()
		e.files[op.Output] = output
		e.mu.Unlock()
		events <- engine.Done(nil)
	}()
	return events, nil
}

var _ engine.Engine = (*Engine)(nil)
