package pool

import (
	"log/slog"
	"time"
)

// runWorker is the loop every worker goroutine executes: drain the queue,
// run what it finds, and when the queue is observed empty, park on the
// monitor until new work, a shutdown, or this worker's stop flag wakes
// it. The monitor lock is touched only around the park; steady-state
// fetching goes through the queue's own lock.
func (p *Pool) runWorker(w *worker) {
	defer close(w.done)
	p.log.Debug("worker started", slog.Int("worker_id", w.id))

	for {
		// Fetching: drain without touching the monitor.
		for {
			t, ok := p.queue.TryPop()
			if !ok {
				break
			}
			p.runTask(t, w.id)
			if w.stop.Load() {
				p.log.Debug("worker exiting", slog.Int("worker_id", w.id))
				return
			}
		}

		// Waiting: park until woken, re-checking the queue and all
		// shutdown conditions on every wake. Spurious wakes loop back
		// into the wait.
		p.mu.Lock()
		p.setIdle(1)
		p.drained.Broadcast()

		var next *task
		for {
			if t, ok := p.queue.TryPop(); ok {
				next = t
				break
			}
			if w.stop.Load() || p.done.Load() || p.stopped.Load() {
				p.setIdle(-1)
				p.mu.Unlock()
				p.log.Debug("worker exiting", slog.Int("worker_id", w.id))
				return
			}
			p.wake.Wait()
		}
		p.setIdle(-1)
		p.mu.Unlock()

		p.runTask(next, w.id)
		if w.stop.Load() {
			p.log.Debug("worker exiting", slog.Int("worker_id", w.id))
			return
		}
	}
}

// runTask executes one dequeued unit with no lock held, so a slow or
// blocking callable cannot stall the queue or the other workers.
func (p *Pool) runTask(t *task, workerID int) {
	if p.limiter != nil {
		if err := p.limiter.Wait(p.ctx); err != nil {
			// Forced stop cancelled the wait before the task started.
			t.abort(err)
			return
		}
	}

	if p.beforeTask != nil {
		p.beforeTask(workerID)
	}

	start := time.Now()
	err := t.run(workerID)

	if p.afterTask != nil {
		p.afterTask(workerID, err)
	}

	if p.metrics != nil {
		p.metrics.ObserveTaskLatency(p.name, time.Since(start).Seconds())
		if err != nil {
			p.metrics.RecordTaskFailed(p.name)
		} else {
			p.metrics.RecordTaskCompleted(p.name)
		}
		p.metrics.SetQueueSize(p.name, p.queue.Len())
	}
}

// setIdle adjusts the idle counter while the monitor lock is held and
// mirrors the value into the metrics gauge.
func (p *Pool) setIdle(delta int64) {
	n := p.nIdle.Add(delta)
	if p.metrics != nil {
		p.metrics.SetIdleWorkers(p.name, int(n))
	}
}
