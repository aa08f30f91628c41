package jobs

import (
	"context"
	"strings"

	"splicer/internal/artifact"
	"splicer/internal/logging"
	"splicer/internal/metrics"
)

// fail releases everything the job holds and moves it to failed. step is
// the 1-based failing step or 0.
func (m *Manager) fail(ctx context.Context, gen uint64, store *artifact.Store, cause error, step int) {
	logger := logging.WithContext(ctx, m.logger)

	if err := store.ReleaseAll(context.WithoutCancel(ctx)); err != nil {
		logging.WarnWithContext(logger, "failed job artifacts not released", "release_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale files remain in the engine workspace"),
		)
	}

	info := &ErrorInfo{Kind: Classify(cause), Message: failureMessage(cause), Step: step}
	finished := m.now()
	var job Job
	if !m.update(gen, func(j *Job) {
		j.State = StateFailed
		j.Error = info
		j.Result = nil
		j.FinishedAt = finished
		job = *j
	}) {
		return
	}

	metrics.JobsFinished.WithLabelValues(metricKind(job.Kind), string(StateFailed)).Inc()
	metrics.JobDuration.WithLabelValues(metricKind(job.Kind)).Observe(job.Elapsed(finished).Seconds())

	attrs := []logging.Attr{
		logging.String("error_kind", string(info.Kind)),
		logging.Error(cause),
		logging.Alert("job_failure"),
	}
	if step > 0 {
		attrs = append(attrs, logging.Int("step", step))
	}
	if info.Kind == ErrorInvalidInput {
		logger.Warn("job rejected by validation", logging.Args(append(attrs,
			logging.String(logging.FieldEventType, "job_invalid"),
			logging.String(logging.FieldErrorHint, "fix the request and submit again"),
			logging.String(logging.FieldImpact, "job did not start"),
		)...)...)
		return
	}
	logging.ErrorWithContext(logger, "job failed", "job_failed", append(attrs,
		logging.String(logging.FieldErrorHint, hintFor(info.Kind)),
	)...)
	m.notifyFailed(ctx, job, cause)
}

func failureMessage(err error) string {
	if err == nil {
		return "failed without error detail"
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return "failed without error detail"
}

func hintFor(kind ErrorKind) string {
	switch kind {
	case ErrorEngineLoad:
		return "run splicer check to verify ffmpeg and the workspace"
	case ErrorStepFailure:
		return "inputs may use incompatible codecs; inspect the engine output"
	default:
		return "submit the job again"
	}
}
