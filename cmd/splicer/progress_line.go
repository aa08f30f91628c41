package main

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"splicer/internal/jobs"
	"splicer/internal/logging"
)

// progressReporter renders job snapshots as a live status line on terminals
// or as sampled plain lines otherwise. It is also the log writer, so log
// records clear the live line before printing and redraw it after.
type progressReporter struct {
	mu      sync.Mutex
	out     io.Writer
	live    bool
	line    string
	lastKey string
	sampler *logging.ProgressSampler
}

func newProgressReporter(out io.Writer, live bool) *progressReporter {
	return &progressReporter{
		out:     out,
		live:    live,
		sampler: logging.NewProgressSampler(0),
	}
}

func (p *progressReporter) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live && p.line != "" {
		fmt.Fprint(p.out, ansiClearLine)
	}
	n, err := p.out.Write(b)
	if p.live && p.line != "" {
		fmt.Fprint(p.out, p.line)
	}
	return n, err
}

// Update renders job.
func (p *progressReporter) Update(job jobs.Job) {
	text := formatProgress(job, time.Now())
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live {
		p.line = text
		fmt.Fprint(p.out, ansiClearLine+text)
		return
	}
	key := string(job.State) + "/" + strconv.Itoa(job.StepIndex)
	if key != p.lastKey {
		p.lastKey = key
		p.sampler.Reset()
		p.sampler.ShouldLog(float64(job.Progress.Percent), key)
		fmt.Fprintln(p.out, text)
		return
	}
	if job.State == jobs.StateRunning && p.sampler.ShouldLog(float64(job.Progress.Percent), key) {
		fmt.Fprintln(p.out, text)
	}
}

// Finish ends the live line.
func (p *progressReporter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live && p.line != "" {
		fmt.Fprintln(p.out)
	}
	p.line = ""
}

func formatProgress(job jobs.Job, now time.Time) string {
	switch job.State {
	case jobs.StateBuilding:
		return fmt.Sprintf("Preparing %s job", job.Kind)
	case jobs.StateRunning:
		label := "step"
		if step, ok := job.CurrentStep(); ok {
			label = string(step.Kind)
		}
		return fmt.Sprintf("Step %d/%d %s · %d%% · ETA %s",
			job.StepIndex+1, job.StepCount(), label, job.Progress.Percent, job.Progress.ETADisplay)
	case jobs.StateFinalizing:
		return "Finalizing output"
	case jobs.StateSucceeded:
		return fmt.Sprintf("Finished in %s", job.Elapsed(now).Round(time.Second))
	case jobs.StateFailed:
		if job.Error != nil {
			return fmt.Sprintf("Failed at step %d: %s", job.Error.Step, job.Error.Message)
		}
		return "Failed"
	default:
		return string(job.State)
	}
}
