package pool

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/tpool-go/tpool/internal/taskq"
)

// Pool is a resizable worker pool. A fixed set of workers drains a
// shared FIFO queue of submitted task units; idle workers park on a
// condition variable until new work, a resize, or a shutdown wakes them.
//
// Submit may be called from any number of goroutines. Resize, Stop, and
// Close form a single-writer surface: callers must serialize them among
// themselves (one logical owner); interleaving them concurrently is
// undefined. Once stopped, a pool is permanently retired and cannot be
// resized or reused.
type Pool struct {
	name string
	log  *slog.Logger

	queue *taskq.Queue[*task]

	// mu is the monitor: it guards the worker slots and the idle/wake
	// protocol. Queue traffic uses the queue's own lock so long bursts
	// of submissions never contend with wake bookkeeping.
	mu      sync.Mutex
	wake    *sync.Cond // workers park here waiting for work
	drained *sync.Cond // Wait callers park here

	workers []*worker

	nIdle   atomic.Int64
	done    atomic.Bool // graceful shutdown requested
	stopped atomic.Bool // forced shutdown requested

	// ctx is cancelled on forced stop so workers blocked in the rate
	// limiter give up instead of delaying the join.
	ctx    context.Context
	cancel context.CancelFunc

	limiter    *rate.Limiter
	metrics    *Metrics
	beforeTask func(workerID int)
	afterTask  func(workerID int, err error)
}

// worker is one slot in the pool: the goroutine's identifying index, the
// stop flag shared between the controller and the goroutine's closure,
// and the channel closed when the loop exits. After a shrink the
// controller drops its reference and the goroutine finishes on its own
// schedule, holding everything it needs through its closure.
type worker struct {
	id   int
	stop *atomic.Bool
	done chan struct{}
}

// New creates a pool and grows it to the configured worker count
// (default: runtime.GOMAXPROCS(0); zero is valid and yields a pool that
// queues work until resized up).
func New(opts ...Option) *Pool {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Pool{
		name:       cfg.name,
		log:        cfg.logger.With(slog.String("pool", cfg.name)),
		queue:      taskq.New[*task](),
		limiter:    cfg.limiter,
		metrics:    cfg.metrics,
		beforeTask: cfg.beforeTask,
		afterTask:  cfg.afterTask,
	}
	p.wake = sync.NewCond(&p.mu)
	p.drained = sync.NewCond(&p.mu)
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.Resize(cfg.workers)
	return p
}

// Resize changes the number of workers to n. Growing spawns new workers
// with fresh stop flags; existing workers are untouched. Shrinking flags
// the workers beyond the new size, wakes everyone so idle victims notice
// immediately, and detaches the removed slots: a victim mid-task finishes
// that task on its own schedule and is never joined.
//
// Resize is a no-op once the pool has been stopped. Callers must
// serialize Resize and Stop among themselves.
func (p *Pool) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if p.retired() {
		return
	}

	p.mu.Lock()
	cur := len(p.workers)
	if n >= cur {
		for i := cur; i < n; i++ {
			w := &worker{
				id:   i,
				stop: &atomic.Bool{},
				done: make(chan struct{}),
			}
			p.workers = append(p.workers, w)
			go p.runWorker(w)
		}
	} else {
		for _, w := range p.workers[n:] {
			w.stop.Store(true)
		}
		p.workers = p.workers[:n]
		p.wake.Broadcast()
		p.drained.Broadcast()
	}
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.SetWorkerCount(p.name, n)
	}
	p.log.Debug("pool resized", slog.Int("from", cur), slog.Int("to", n))
}

// Stop permanently retires the pool and blocks until every tracked
// worker has exited. With finish=true queued units run to completion
// first; with finish=false queued units are discarded and their futures
// resolve with ErrTaskAborted. Stop is idempotent per mode. Workers
// detached by an earlier shrink are not joined.
func (p *Pool) Stop(finish bool) {
	if finish {
		if p.done.Load() || p.stopped.Load() {
			return
		}
		p.done.Store(true)
		p.log.Info("pool stopping", slog.Bool("finish", true))
	} else {
		if p.stopped.Load() {
			return
		}
		p.stopped.Store(true)
		p.log.Info("pool stopping", slog.Bool("finish", false))

		p.mu.Lock()
		for _, w := range p.workers {
			w.stop.Store(true)
		}
		p.mu.Unlock()

		p.abortPending()
		p.cancel()
	}

	p.mu.Lock()
	workers := p.workers
	p.workers = nil
	p.wake.Broadcast()
	p.mu.Unlock()

	for _, w := range workers {
		<-w.done
	}
	p.cancel()

	// A submit that raced the shutdown flags may have slipped a unit in
	// after the workers drained; its future must not hang.
	if n := p.abortPending(); n > 0 {
		p.log.Debug("aborted late submissions", slog.Int("count", n))
	}

	p.mu.Lock()
	p.drained.Broadcast()
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.SetWorkerCount(p.name, 0)
		p.metrics.SetIdleWorkers(p.name, 0)
	}
	p.log.Info("pool stopped", slog.Int("workers_joined", len(workers)))
}

// Close gracefully stops the pool, running all queued work first. It
// implements io.Closer so a pool composes with defer.
func (p *Pool) Close() error {
	p.Stop(true)
	return nil
}

// Wait blocks until the task queue is empty and every tracked worker is
// idle, then returns with the pool still alive and usable. It returns
// immediately on a stopped pool.
func (p *Pool) Wait() {
	p.mu.Lock()
	for !(p.queue.Empty() && int(p.nIdle.Load()) >= len(p.workers)) {
		p.drained.Wait()
	}
	p.mu.Unlock()
}

// ClearQueue discards every pending, unexecuted unit. Their futures
// resolve with ErrTaskAborted. Units already picked up by a worker are
// unaffected.
func (p *Pool) ClearQueue() {
	n := p.abortPending()

	// Emptying the queue can be exactly what a Wait caller is blocked on.
	p.mu.Lock()
	p.drained.Broadcast()
	p.mu.Unlock()

	p.log.Debug("queue cleared", slog.Int("discarded", n))
}

// Size returns the current worker count. The value is a snapshot and
// immediately stale under concurrent resize.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// NIdle returns the number of workers currently parked waiting for
// work. Snapshot only; intended for monitoring.
func (p *Pool) NIdle() int {
	return int(p.nIdle.Load())
}

// QueueLen returns the number of pending, unexecuted units. Snapshot
// only.
func (p *Pool) QueueLen() int {
	return p.queue.Len()
}

// Name returns the pool's name as used in logs and metric labels.
func (p *Pool) Name() string {
	return p.name
}

// retired reports whether either shutdown mode has been requested.
func (p *Pool) retired() bool {
	return p.stopped.Load() || p.done.Load()
}

// enqueue pushes a unit and wakes exactly one waiting worker. The signal
// is sent under the monitor lock so it cannot slip between a worker's
// empty-queue check and its wait.
func (p *Pool) enqueue(t *task) {
	p.queue.Push(t)

	if p.metrics != nil {
		p.metrics.RecordTaskSubmitted(p.name)
		p.metrics.SetQueueSize(p.name, p.queue.Len())
	}

	p.mu.Lock()
	p.wake.Signal()
	p.mu.Unlock()
}

// abortPending drains the queue and resolves the futures of the removed
// units with ErrTaskAborted, so no caller is left blocking on a unit
// that will never run.
func (p *Pool) abortPending() int {
	drained := p.queue.Drain()
	for _, t := range drained {
		t.abort(ErrTaskAborted)
	}

	if p.metrics != nil {
		if len(drained) > 0 {
			p.metrics.RecordTasksAborted(p.name, len(drained))
		}
		p.metrics.SetQueueSize(p.name, 0)
	}
	return len(drained)
}
