package jobs

import (
	"context"
	"sync"

	"splicer/internal/metrics"
	"splicer/internal/services"
)

type subscriber struct {
	ch   chan Job
	once sync.Once
}

// update applies fn to the live job when gen is still current and publishes
// the result. It reports false for an abandoned generation.
func (m *Manager) update(gen uint64, fn func(*Job)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return false
	}
	fn(&m.job)
	m.publishLocked()
	return true
}

func (m *Manager) isCurrent(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen == m.generation
}

// publishLocked wakes waiters and fans the snapshot out to subscribers.
// Subscribers that fall behind lose their oldest snapshot.
func (m *Manager) publishLocked() {
	close(m.changed)
	m.changed = make(chan struct{})

	snapshot := m.job
	metrics.JobProgressPercent.Set(float64(snapshot.Progress.Percent))
	for _, sub := range m.subs {
		select {
		case sub.ch <- snapshot:
			continue
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- snapshot:
		default:
		}
	}
}

// Subscribe returns a channel of job snapshots starting with the current
// one. The returned function unsubscribes and closes the channel.
func (m *Manager) Subscribe(buffer int) (<-chan Job, func()) {
	if buffer < 1 {
		buffer = 1
	}
	sub := &subscriber{ch: make(chan Job, buffer)}

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = sub
	sub.ch <- m.job
	m.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Wait blocks until the job with id reaches a terminal state. It fails with
// a not-found error when id is no longer the current job.
func (m *Manager) Wait(ctx context.Context, id string) (Job, error) {
	for {
		m.mu.Lock()
		job := m.job
		changed := m.changed
		m.mu.Unlock()

		if job.ID != id {
			return job, services.Wrap(services.ErrNotFound, "jobs", "wait", "job "+id+" is no longer current", nil)
		}
		if job.State.Terminal() {
			return job, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return job, ctx.Err()
		}
	}
}
