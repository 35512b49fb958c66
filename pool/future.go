package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Result carries everything a completed task unit produces: the value,
// the index of the worker that ran it, and the execution error if any.
type Result[R any] struct {
	Value    R
	WorkerID int
	Err      error
}

// Future is a one-shot handle to the result of a submitted callable.
// It is resolved exactly once, by the worker that runs the unit or by
// the pool when the unit is discarded, and every accessor observes the
// same result afterwards. A Future is safe for concurrent use by any
// number of goroutines.
type Future[R any] struct {
	once  sync.Once
	ready atomic.Bool
	done  chan struct{}
	res   Result[R]
}

func newFuture[R any]() *Future[R] {
	return &Future[R]{done: make(chan struct{})}
}

// resolve stores the result and releases every current and future
// waiter. Only the first call takes effect.
func (f *Future[R]) resolve(res Result[R]) {
	f.once.Do(func() {
		f.res = res
		f.ready.Store(true)
		close(f.done)
	})
}

// Get blocks until the unit has completed and returns its value, the
// index of the worker that executed it, and its error.
//
// Returns:
//   - The callable's return value (zero value on error).
//   - The worker index the callable observed.
//   - The callable's error, a recovered panic, or ErrTaskAborted if the
//     unit was discarded before running.
//
// Example:
//
//	value, workerID, err := future.Get()
//	if err != nil {
//	    log.Printf("task failed on worker %d: %v", workerID, err)
//	}
func (f *Future[R]) Get() (R, int, error) {
	<-f.done
	return f.res.Value, f.res.WorkerID, f.res.Err
}

// GetWithContext blocks like Get but gives up when ctx is done,
// returning ctx.Err(). An expired wait does not consume the result;
// a later Get still retrieves it.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, int, error) {
	select {
	case <-f.done:
		return f.res.Value, f.res.WorkerID, f.res.Err
	case <-ctx.Done():
		var zero R
		return zero, 0, ctx.Err()
	}
}

// GetWithTimeout blocks like Get for at most d, returning
// context.DeadlineExceeded if the unit has not completed in time.
func (f *Future[R]) GetWithTimeout(d time.Duration) (R, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return f.GetWithContext(ctx)
}

// TryGet returns the result without blocking. The final bool reports
// whether the unit has completed; when it is false the other return
// values are zero.
func (f *Future[R]) TryGet() (R, int, error, bool) {
	if !f.ready.Load() {
		var zero R
		return zero, 0, nil, false
	}
	return f.res.Value, f.res.WorkerID, f.res.Err, true
}

// Done returns a channel that is closed when the unit has completed,
// for use in select statements.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the result is available without blocking.
func (f *Future[R]) IsReady() bool {
	return f.ready.Load()
}
