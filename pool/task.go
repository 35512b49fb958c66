package pool

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrPoolStopped is returned by Submit and SubmitAndForget once
	// either shutdown mode has been requested on the pool.
	ErrPoolStopped = errors.New("pool: pool is stopped")

	// ErrTaskAborted resolves the future of a queued unit that was
	// discarded by Stop(false) or ClearQueue before a worker ran it.
	ErrTaskAborted = errors.New("pool: task aborted before execution")

	// ErrNilTask is returned when a nil callable is submitted.
	ErrNilTask = errors.New("pool: nil task")
)

// task is the type-erased unit the queue and the workers traffic in.
// The generic result type lives only inside the two closures, so one
// pool runs callables with arbitrary result types. Exactly one of run
// or abort is invoked per unit.
type task struct {
	run   func(workerID int) error
	abort func(err error)
}

// Submit enqueues fn for execution and returns a Future for its result.
// fn receives the index of the worker that runs it. Submit is a free
// function because methods cannot introduce type parameters.
//
// Parameters:
//   - p: The pool to run the callable on.
//   - fn: The callable. It must not be nil.
//
// Returns:
//   - A Future resolved when the callable completes, panics, or is
//     discarded during shutdown.
//   - ErrNilTask if fn is nil, ErrPoolStopped if the pool has been
//     stopped.
//
// Example:
//
//	future, err := pool.Submit(p, func(workerID int) (int, error) {
//	    return workerID * 2, nil
//	})
func Submit[R any](p *Pool, fn func(workerID int) (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	if p.retired() {
		return nil, ErrPoolStopped
	}

	f := newFuture[R]()
	p.enqueue(&task{
		run: func(workerID int) error {
			value, err := invoke(fn, workerID)
			f.resolve(Result[R]{Value: value, WorkerID: workerID, Err: err})
			return err
		},
		abort: func(err error) {
			f.resolve(Result[R]{Err: err})
		},
	})
	return f, nil
}

// SubmitAndForget enqueues fn without a result handle. Errors and
// recovered panics are dropped; the worker always survives. Returns
// ErrNilTask or ErrPoolStopped under the same conditions as Submit.
func SubmitAndForget(p *Pool, fn func(workerID int)) error {
	if fn == nil {
		return ErrNilTask
	}
	if p.retired() {
		return ErrPoolStopped
	}

	p.enqueue(&task{
		run: func(workerID int) error {
			_, err := invoke(func(id int) (struct{}, error) {
				fn(id)
				return struct{}{}, nil
			}, workerID)
			return err
		},
		abort: func(error) {},
	})
	return nil
}

// invoke executes a callable with panic recovery. A panic is converted
// to an error carrying the stack trace so it fails only its own unit
// instead of crashing the worker.
func invoke[R any](fn func(workerID int) (R, error), workerID int) (value R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("worker panic: %v\nstack trace:\n%s", r, buf[:n])
		}
	}()
	return fn(workerID)
}
