// Package pool provides a resizable worker pool that executes
// dynamically submitted callables and delivers their results through
// future-style handles.
//
// The primary type is Pool: a set of workers draining a shared FIFO
// queue. Submissions are type-erased at the queue level, so one pool
// runs heterogeneous callables with arbitrary result types; each
// callable receives the index of the worker executing it.
//
// # Basic Usage
//
//	p := pool.New(pool.WithWorkers(4))
//	defer p.Close()
//
//	future, err := pool.Submit(p, func(workerID int) (int, error) {
//	    return workerID * 2, nil
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	value, ranOn, err := future.Get()
//
// # Lifecycle
//
// A pool is resizable while it is running: Resize(n) grows by spawning
// workers or shrinks by flagging the excess workers to stop after their
// current task (they are detached, never joined). Stop retires the pool
// permanently: Stop(true) lets queued work drain first, Stop(false)
// discards queued work, resolving its futures with ErrTaskAborted.
// Close is Stop(true) behind io.Closer. Wait blocks until the queue is
// empty and every worker is idle without retiring anything.
//
// Submit is safe from any number of goroutines. Resize and Stop require
// a single logical owner: interleaving them concurrently with each
// other is undefined.
//
// # Failure Semantics
//
// A callable that returns an error or panics fails only its own future;
// panics are recovered with a stack trace. A queued unit discarded by
// Stop(false) or ClearQueue resolves its future with ErrTaskAborted, so
// no caller ever blocks forever on a task that will not run.
//
// # Observability
//
// WithLogger attaches an slog.Logger for lifecycle events, WithMetrics
// attaches Prometheus instruments (per-pool-name counters, gauges, and
// a latency histogram), and WithBeforeTask/WithAfterTask register
// per-task hooks. WithRateLimit caps task start throughput with a token
// bucket.
package pool
