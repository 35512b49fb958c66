// Package taskq provides the mutex-guarded FIFO queue that backs the
// worker pool. The queue has its own lock, separate from the pool's
// monitor, so high-frequency push/pop traffic never contends with the
// pool's wake and idle bookkeeping.
package taskq

import "sync"

// Queue is a thread-safe FIFO of task units. Push and TryPop are
// non-blocking; callers that need to wait for work coordinate outside
// the queue.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends a unit to the back of the queue. It always succeeds.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

// TryPop removes and returns the front unit. It returns false without
// blocking when the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	v := q.items[0]
	q.items[0] = zero // release the reference for the GC
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return v, true
}

// Empty reports whether the queue currently holds no units.
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Len returns the number of queued units. The value is a snapshot and
// may be stale by the time the caller observes it.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain removes every queued unit in FIFO order and returns them,
// leaving the queue empty. None of the units are executed; the caller
// decides what happens to them.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	drained := q.items
	q.items = nil
	return drained
}
