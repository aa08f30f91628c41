package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"splicer/internal/artifact"
	"splicer/internal/engine"
	"splicer/internal/logging"
	"splicer/internal/metrics"
	"splicer/internal/notifications"
	"splicer/internal/pipeline"
	"splicer/internal/progress"
	"splicer/internal/services"
)

// Manager coordinates a single job at a time against one engine.
type Manager struct {
	engine   engine.Engine
	logger   *slog.Logger
	notifier notifications.Service
	now      func() time.Time

	// workspaceCheck runs before each job writes its inputs.
	workspaceCheck func(context.Context) error

	// runMu serialises background runs so an abandoned run finishes before
	// the next one touches the namespace.
	runMu sync.Mutex

	loadMu sync.Mutex
	loaded bool

	mu         sync.Mutex
	job        Job
	generation uint64
	cancel     context.CancelFunc
	store      *artifact.Store
	changed    chan struct{}
	subs       map[uint64]*subscriber
	nextSub    uint64
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithNotifier sends job outcomes to svc.
func WithNotifier(svc notifications.Service) Option {
	return func(m *Manager) {
		m.notifier = svc
	}
}

// WithWorkspaceCheck installs a check run after the engine loads and before a
// job writes its inputs. An error without a marker fails the job as an engine
// load failure.
func WithWorkspaceCheck(check func(context.Context) error) Option {
	return func(m *Manager) {
		m.workspaceCheck = check
	}
}

// WithClock overrides the time source used for timestamps and ETA.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager constructs an idle manager over eng.
func NewManager(eng engine.Engine, opts ...Option) *Manager {
	m := &Manager{
		engine:  eng,
		logger:  logging.NewNop(),
		now:     time.Now,
		changed: make(chan struct{}),
		subs:    make(map[uint64]*subscriber),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "jobs")
	m.job = idleJob(0)
	return m
}

func idleJob(generation uint64) Job {
	return Job{
		Generation: generation,
		State:      StateIdle,
		Progress:   progress.Snapshot{ETADisplay: progress.Unknown},
	}
}

// Current returns a snapshot of the current job.
func (m *Manager) Current() Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.job
}

// Submit starts a new job. It fails with ErrJobActive while another job is
// in flight, leaving that job untouched. A request that fails validation is
// refused the same way: no job starts and the previous job, including a
// finished output, stays current.
func (m *Manager) Submit(ctx context.Context, req Request) (Job, error) {
	kindLabel := metricKind(req.Kind)

	m.mu.Lock()
	if !m.job.State.AcceptsSubmit() {
		current := m.job
		m.mu.Unlock()
		metrics.JobsRejected.WithLabelValues(kindLabel, "busy").Inc()
		m.logger.Info("submission rejected",
			logging.String("active_job", current.ID),
			logging.String("active_state", string(current.State)),
			logging.String(logging.FieldEventType, "job_rejected"),
		)
		return current, fmt.Errorf("%w: job %s is %s", ErrJobActive, current.ID, current.State)
	}

	steps, err := m.build(req)
	if err != nil {
		current := m.job
		m.mu.Unlock()
		metrics.JobsRejected.WithLabelValues(kindLabel, "invalid").Inc()
		logging.WarnWithContext(m.logger, "job rejected by validation", "job_invalid",
			logging.String("kind", string(req.Kind)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the request and submit again"),
			logging.String(logging.FieldImpact, "job did not start"),
		)
		return current, err
	}

	previous := m.store
	m.generation++
	gen := m.generation
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	store := artifact.NewStore(m.engine)
	m.cancel = cancel
	m.store = store
	m.job = Job{
		ID:         uuid.NewString(),
		Generation: gen,
		Kind:       req.Kind,
		Spec:       req.Spec,
		Steps:      steps,
		State:      StateBuilding,
		StepIndex:  0,
		Progress:   progress.Snapshot{ETADisplay: progress.Unknown},
		CreatedAt:  m.now(),
	}
	job := m.job
	m.publishLocked()
	m.mu.Unlock()

	metrics.JobsSubmitted.WithLabelValues(kindLabel).Inc()
	logger := logging.WithContext(services.WithJobID(ctx, job.ID), m.logger)
	submitted := []logging.Attr{
		logging.String("kind", string(req.Kind)),
		logging.Uint64("generation", gen),
		logging.Bool("replaces_output", previous != nil),
		logging.String(logging.FieldEventType, "job_submitted"),
	}
	if req.Kind == pipeline.KindStitch {
		submitted = append(submitted, logging.Float64("cut_seconds", req.Spec.CutSeconds))
	}
	logger.Info("job submitted", logging.Args(submitted...)...)
	for i, step := range steps {
		logger.Debug("pipeline step planned", logging.Int("step", i+1), logging.String("operation", step.String()))
	}

	if previous != nil {
		if err := previous.ReleaseAll(context.WithoutCancel(ctx)); err != nil {
			logging.WarnWithContext(logger, "previous job artifacts not released", "release_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "stale files remain in the engine workspace"),
			)
		}
	}

	go m.run(services.WithJobID(runCtx, job.ID), cancel, gen, req, steps, store)
	return job, nil
}

func (m *Manager) build(req Request) ([]pipeline.Step, error) {
	if !req.Base.present() {
		return nil, services.Wrap(services.ErrInvalidInput, "jobs", "validate", "base file is required", nil)
	}
	if req.Kind == pipeline.KindStitch && !req.Target.present() {
		return nil, services.Wrap(services.ErrInvalidInput, "jobs", "validate", "target file is required for stitch", nil)
	}
	return pipeline.Build(req.Kind, req.Base.duration(), req.Target.duration(), req.Spec)
}

// Reset abandons the current job from any state and returns to idle. Events
// from the abandoned run are discarded and all of its artifacts, including a
// finished output, are released.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	previous := m.job
	m.generation++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	store := m.store
	m.store = nil
	m.job = idleJob(m.generation)
	m.publishLocked()
	m.mu.Unlock()

	if previous.State != StateIdle && !previous.State.Terminal() {
		metrics.JobsFinished.WithLabelValues(metricKind(previous.Kind), "canceled").Inc()
	}
	if previous.ID != "" {
		logging.WithContext(services.WithJobID(ctx, previous.ID), m.logger).Info("job reset",
			logging.String("previous_state", string(previous.State)),
			logging.String(logging.FieldEventType, "job_reset"),
		)
	}
	if store == nil {
		return nil
	}
	if err := store.ReleaseAll(ctx); err != nil {
		return fmt.Errorf("release job artifacts: %w", err)
	}
	return nil
}

// Result returns the output bytes of a succeeded job.
func (m *Manager) Result(ctx context.Context) ([]byte, ResultInfo, error) {
	m.mu.Lock()
	job := m.job
	store := m.store
	m.mu.Unlock()

	if job.State != StateSucceeded || job.Result == nil || store == nil {
		return nil, ResultInfo{}, services.Wrap(services.ErrNotFound, "jobs", "result", "no finished output is available", nil)
	}
	data, err := store.Resolve(ctx, job.Result.Name)
	if err != nil {
		return nil, ResultInfo{}, err
	}
	return data, *job.Result, nil
}

// Artifacts lists the artifacts the current job holds.
func (m *Manager) Artifacts() []artifact.Artifact {
	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store == nil {
		return nil
	}
	return store.List()
}

func metricKind(kind pipeline.Kind) string {
	if kind == "" {
		return "unknown"
	}
	return string(kind)
}
