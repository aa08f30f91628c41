package jobs

import (
	"context"
	"errors"

	"splicer/internal/logging"
	"splicer/internal/notifications"
)

func summarize(job Job) notifications.JobSummary {
	summary := notifications.JobSummary{
		ID:       job.ID,
		Kind:     string(job.Kind),
		Duration: job.Elapsed(job.FinishedAt),
	}
	if job.Result != nil {
		summary.Output = job.Result.Name
		summary.Size = job.Result.Size
	}
	if job.Error != nil {
		summary.Step = job.Error.Step
	}
	return summary
}

func (m *Manager) notifySucceeded(ctx context.Context, job Job) {
	if m.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := m.notifier.NotifyJobSucceeded(ctx, summarize(job)); err != nil {
		m.logNotifyError(ctx, err)
	}
}

func (m *Manager) notifyFailed(ctx context.Context, job Job, cause error) {
	if m.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := m.notifier.NotifyJobFailed(ctx, summarize(job), cause); err != nil {
		m.logNotifyError(ctx, err)
	}
}

func (m *Manager) logNotifyError(ctx context.Context, err error) {
	logger := logging.WithContext(ctx, m.logger)
	if errors.Is(err, context.Canceled) {
		logger.Debug("shutting down, notification not sent")
		return
	}
	logging.WarnWithContext(logger, "job notification failed", "notify_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
		logging.String(logging.FieldImpact, "no push notification for this job"),
	)
}
