package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"splicer/internal/artifact"
	"splicer/internal/engine"
	"splicer/internal/logging"
	"splicer/internal/metrics"
	"splicer/internal/pipeline"
	"splicer/internal/progress"
	"splicer/internal/services"
)

// errStale marks a run whose generation was abandoned by Reset.
var errStale = errors.New("job generation abandoned")

func (m *Manager) run(ctx context.Context, cancel context.CancelFunc, gen uint64, req Request, steps []pipeline.Step, store *artifact.Store) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	defer cancel()

	metrics.JobActive.Set(1)
	defer metrics.JobActive.Set(0)

	logger := logging.WithContext(ctx, m.logger)
	defer func() {
		if m.isCurrent(gen) {
			return
		}
		if err := store.ReleaseAll(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("abandoned job artifacts not released", logging.Error(err))
		}
		logger.Debug("abandoned run exited")
	}()

	if !m.isCurrent(gen) {
		return
	}

	if err := m.ensureLoaded(ctx); err != nil {
		m.fail(ctx, gen, store, err, 0)
		return
	}

	if err := m.checkWorkspace(ctx); err != nil {
		m.fail(ctx, gen, store, err, 0)
		return
	}

	if err := registerInputs(ctx, store, req); err != nil {
		m.fail(ctx, gen, store, err, 0)
		return
	}

	started := m.now()
	if !m.update(gen, func(j *Job) {
		j.State = StateRunning
		j.StartedAt = started
		j.StepIndex = 0
	}) {
		return
	}
	logger.Info("job running", logging.Int("steps", len(steps)), logging.String(logging.FieldEventType, "job_running"))

	sampler := logging.NewProgressSampler(5)
	for i, step := range steps {
		last := i == len(steps)-1
		if err := m.runStep(ctx, gen, store, sampler, i, step, last); err != nil {
			if errors.Is(err, errStale) {
				return
			}
			m.fail(ctx, gen, store, err, i+1)
			return
		}
	}

	m.finalize(ctx, gen, store, steps[len(steps)-1].Output)
}

func registerInputs(ctx context.Context, store *artifact.Store, req Request) error {
	if err := store.Register(ctx, pipeline.BaseName, req.Base.Data, artifact.RoleInput); err != nil {
		return err
	}
	if req.Kind == pipeline.KindStitch {
		if err := store.Register(ctx, pipeline.TargetName, req.Target.Data, artifact.RoleInput); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) checkWorkspace(ctx context.Context) error {
	if m.workspaceCheck == nil {
		return nil
	}
	if err := m.workspaceCheck(ctx); err != nil {
		if services.Marker(err) == nil {
			err = services.Wrap(services.ErrEngineLoad, "jobs", "check workspace", "", err)
		}
		return err
	}
	return nil
}

// ensureLoaded loads the engine once per manager. A failed load is retried
// by the next job.
func (m *Manager) ensureLoaded(ctx context.Context) error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	if m.loaded {
		return nil
	}
	if err := m.engine.Load(ctx); err != nil {
		if services.Marker(err) == nil {
			err = services.Wrap(services.ErrEngineLoad, "jobs", "load engine", "", err)
		}
		return err
	}
	m.loaded = true
	m.logger.Info("engine ready", logging.String(logging.FieldEventType, "engine_loaded"))
	return nil
}

func (m *Manager) runStep(ctx context.Context, gen uint64, store *artifact.Store, sampler *logging.ProgressSampler, index int, step pipeline.Step, last bool) error {
	stageCtx := services.WithStage(ctx, string(step.Kind))
	logger := logging.WithContext(stageCtx, m.logger)

	for _, input := range step.Inputs {
		if !store.Ready(input) {
			return services.Wrap(services.ErrNotFound, string(step.Kind), "check inputs", fmt.Sprintf("input %q is not ready", input), nil)
		}
	}
	if store.Has(step.Output) {
		return services.Wrap(services.ErrDuplicateName, string(step.Kind), "check output", fmt.Sprintf("output %q already exists", step.Output), nil)
	}

	var tracker progress.Tracker
	tracker.Start(m.now())
	if !m.update(gen, func(j *Job) {
		j.StepIndex = index
		j.Progress = tracker.Last()
	}) {
		return errStale
	}
	logger.Info("step started",
		logging.Int("step", index+1),
		logging.String("operation", step.String()),
		logging.String(logging.FieldEventType, "step_started"),
	)

	stepStarted := time.Now()
	events, err := m.engine.Exec(stageCtx, engine.FromStep(step))
	if err != nil {
		metrics.StepDuration.WithLabelValues(string(step.Kind), "error").Observe(time.Since(stepStarted).Seconds())
		if services.Marker(err) == nil {
			err = services.Wrap(services.ErrStepFailure, string(step.Kind), "exec", "", err)
		}
		return err
	}

	var (
		doneErr error
		done    bool
	)
	for event := range events {
		switch event.Type {
		case engine.EventProgress:
			snapshot := tracker.Observe(event.Fraction, m.now())
			if !m.update(gen, func(j *Job) { j.Progress = snapshot }) {
				continue
			}
			if sampler.ShouldLog(float64(snapshot.Percent), fmt.Sprintf("%d:%s", index, step.Kind)) {
				logger.Info("step progress",
					logging.Int("percent", snapshot.Percent),
					logging.Float64("fraction", event.Fraction),
					logging.String("eta", snapshot.ETADisplay),
				)
			}
		case engine.EventLog:
			logger.Debug("engine output", logging.String("line", event.Line))
		case engine.EventDone:
			doneErr = event.Err
			done = true
		}
	}

	result := "success"
	if !done {
		doneErr = services.Wrap(services.ErrStepFailure, string(step.Kind), "exec", "engine ended the step without a result", nil)
	}
	if doneErr != nil {
		result = "failure"
	}
	metrics.StepDuration.WithLabelValues(string(step.Kind), result).Observe(time.Since(stepStarted).Seconds())

	if doneErr == nil {
		role := artifact.RoleIntermediate
		if last {
			role = artifact.RoleOutput
		}
		if err := store.Adopt(step.Output, role, 0); err != nil {
			return err
		}
	}

	if !m.isCurrent(gen) {
		return errStale
	}
	if doneErr != nil {
		if services.Marker(doneErr) == nil {
			doneErr = services.Wrap(services.ErrStepFailure, string(step.Kind), "exec", "", doneErr)
		}
		return doneErr
	}

	logger.Info("step completed",
		logging.Int("step", index+1),
		logging.Duration("took", time.Since(stepStarted)),
		logging.String(logging.FieldEventType, "step_completed"),
	)
	return nil
}

func (m *Manager) finalize(ctx context.Context, gen uint64, store *artifact.Store, output string) {
	logger := logging.WithContext(ctx, m.logger)
	if !m.update(gen, func(j *Job) { j.State = StateFinalizing }) {
		return
	}

	data, err := store.Resolve(ctx, output)
	if err != nil {
		m.fail(ctx, gen, store, err, 0)
		return
	}
	if err := store.ReleaseExcept(context.WithoutCancel(ctx), output); err != nil {
		logging.WarnWithContext(logger, "intermediate artifacts not released", "release_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale files remain in the engine workspace"),
		)
	}

	result := &ResultInfo{Name: output, MIMEType: pipeline.MIMEType, Size: int64(len(data))}
	finished := m.now()
	var job Job
	if !m.update(gen, func(j *Job) {
		j.State = StateSucceeded
		j.Result = result
		j.Error = nil
		j.Progress = progress.Snapshot{Percent: 100, ETAKnown: true, ETADisplay: progress.FormatETA(0, true)}
		j.FinishedAt = finished
		job = *j
	}) {
		return
	}

	elapsed := job.Elapsed(finished)
	metrics.JobsFinished.WithLabelValues(metricKind(job.Kind), string(StateSucceeded)).Inc()
	metrics.JobDuration.WithLabelValues(metricKind(job.Kind)).Observe(elapsed.Seconds())
	logger.Info("job succeeded",
		logging.String("output", output),
		logging.Int64("size_bytes", result.Size),
		logging.Duration("elapsed", elapsed),
		logging.String(logging.FieldEventType, "job_succeeded"),
	)
	m.notifySucceeded(ctx, job)
}
