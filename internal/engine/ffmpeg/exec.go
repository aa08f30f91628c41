package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"splicer/internal/engine"
	"splicer/internal/logging"
	"splicer/internal/pipeline"
	"splicer/internal/services"
)

const (
	eventBuffer   = 64
	stderrTailLen = 12
)

// Exec runs op and streams its events. Exec blocks until no other operation
// is running or ctx ends.
func (e *Engine) Exec(ctx context.Context, op engine.Operation) (<-chan engine.Event, error) {
	if err := e.requireLoaded(); err != nil {
		return nil, err
	}
	if err := e.validateOperation(op); err != nil {
		return nil, err
	}
	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	args, cleanup, err := e.buildArgs(op)
	if err != nil {
		<-e.slot
		return nil, err
	}

	events := make(chan engine.Event, eventBuffer)
	go func() {
		defer close(events)
		defer func() { <-e.slot }()
		defer cleanup()
		err := e.run(ctx, op, args, events)
		events <- engine.Done(err)
	}()
	return events, nil
}

func (e *Engine) validateOperation(op engine.Operation) error {
	if err := validateName(op.Output); err != nil {
		return err
	}
	if len(op.Inputs) == 0 {
		return services.Wrap(services.ErrInvalidInput, "engine", string(op.Kind), "operation has no inputs", nil)
	}
	for _, input := range op.Inputs {
		if err := validateName(input); err != nil {
			return err
		}
		if input == op.Output {
			return services.Wrap(services.ErrInvalidInput, "engine", string(op.Kind), fmt.Sprintf("output %q overwrites an input", op.Output), nil)
		}
	}
	switch op.Kind {
	case pipeline.StepTrim, pipeline.StepTranscode:
		if len(op.Inputs) != 1 {
			return services.Wrap(services.ErrInvalidInput, "engine", string(op.Kind), fmt.Sprintf("expected 1 input, got %d", len(op.Inputs)), nil)
		}
	case pipeline.StepConcat:
	default:
		return services.Wrap(services.ErrInvalidInput, "engine", string(op.Kind), "unsupported operation", nil)
	}
	if op.Kind == pipeline.StepTrim && op.End < op.Start {
		return services.Wrap(services.ErrInvalidInput, "engine", "trim", fmt.Sprintf("end %.3f before start %.3f", op.End, op.Start), nil)
	}
	if op.Kind == pipeline.StepTranscode && (op.Quality <= 0 || strings.TrimSpace(op.Resolution) == "") {
		return services.Wrap(services.ErrInvalidInput, "engine", "transcode", "quality and resolution are required", nil)
	}
	return nil
}

// buildArgs renders the ffmpeg argv for op. Paths are relative to the
// workspace, which becomes the process working directory.
func (e *Engine) buildArgs(op engine.Operation) ([]string, func(), error) {
	args := []string{"-hide_banner", "-nostdin", "-y", "-progress", "pipe:1", "-nostats"}
	cleanup := func() {}
	switch op.Kind {
	case pipeline.StepTrim:
		args = append(args,
			"-i", op.Inputs[0],
			"-ss", formatSeconds(op.Start),
			"-to", formatSeconds(op.End),
			"-c", "copy",
			op.Output,
		)
	case pipeline.StepConcat:
		listName := ".concat-" + uuid.NewString() + ".txt"
		listPath := filepath.Join(e.workDir, listName)
		if err := os.WriteFile(listPath, []byte(concatList(op.Inputs)), 0o600); err != nil {
			return nil, nil, fmt.Errorf("write concat list: %w", err)
		}
		cleanup = func() { _ = os.Remove(listPath) }
		args = append(args,
			"-f", "concat",
			"-safe", "0",
			"-i", listName,
			"-c", "copy",
			op.Output,
		)
	case pipeline.StepTranscode:
		args = append(args,
			"-i", op.Inputs[0],
			"-vcodec", e.videoCodec,
			"-crf", strconv.Itoa(op.Quality),
			"-preset", e.preset,
			"-s", op.Resolution,
			op.Output,
		)
	}
	return args, cleanup, nil
}

func (e *Engine) run(ctx context.Context, op engine.Operation, args []string, events chan<- engine.Event) error {
	logger := logging.WithContext(ctx, e.logger).With(logging.String("operation", string(op.Kind)))
	cmd := commandContext(ctx, e.binary, args...) //nolint:gosec
	cmd.Dir = e.workDir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	logger.Debug("ffmpeg starting", logging.String("args", strings.Join(args, " ")))
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrStepFailure, "engine", string(op.Kind), "start ffmpeg", err)
	}

	emit := func(ev engine.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	meter := newProgressMeter(op.ExpectedDuration)
	tail := newLineTail(stderrTailLen)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanLines(stdout, func(line string) {
			if ev, ok := meter.Consume(line); ok {
				emit(ev)
			}
		})
	}()
	go func() {
		defer wg.Done()
		scanLines(stderr, func(line string) {
			meter.ObserveStderr(line)
			tail.Add(line)
			emit(engine.Log(line))
		})
	}()
	wg.Wait()
	waitErr := cmd.Wait()

	if waitErr != nil || ctx.Err() != nil {
		_ = os.Remove(filepath.Join(e.workDir, op.Output))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s canceled: %w", op.Kind, ctxErr)
		}
		message := tail.Last()
		if message == "" {
			message = "ffmpeg exited with an error"
		}
		logger.Warn("ffmpeg failed",
			logging.Error(waitErr),
			logging.String("stderr_tail", tail.Joined()),
		)
		return services.Wrap(services.ErrStepFailure, "engine", string(op.Kind), message, waitErr)
	}
	if _, err := os.Stat(filepath.Join(e.workDir, op.Output)); err != nil {
		return services.Wrap(services.ErrStepFailure, "engine", string(op.Kind), "ffmpeg produced no output", err)
	}
	if ev, ok := meter.Finish(); ok {
		emit(ev)
	}
	logger.Debug("ffmpeg finished", logging.String("output", op.Output))
	return nil
}

func scanLines(r io.Reader, fn func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanCRLF)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fn(line)
	}
	// Drain so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

// scanCRLF splits on either '\n' or '\r'; ffmpeg rewrites status lines with
// carriage returns.
func scanCRLF(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// concatList renders a concat demuxer script. Single quotes in names are
// escaped the way the demuxer expects.
func concatList(inputs []string) string {
	var b strings.Builder
	for _, input := range inputs {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(input, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

type lineTail struct {
	mu    sync.Mutex
	limit int
	lines []string
}

func newLineTail(limit int) *lineTail {
	return &lineTail{limit: limit}
}

func (t *lineTail) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = append(t.lines, line)
	if len(t.lines) > t.limit {
		t.lines = t.lines[len(t.lines)-t.limit:]
	}
}

func (t *lineTail) Last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.lines) == 0 {
		return ""
	}
	return t.lines[len(t.lines)-1]
}

func (t *lineTail) Joined() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.lines, " | ")
}
