package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStop_ForcedAbortsPendingFutures(t *testing.T) {
	// No workers, so every submitted unit stays queued.
	p := New(WithWorkers(0))

	var futures []*Future[int]
	for range 5 {
		f, err := Submit(p, func(int) (int, error) { return 1, nil })
		require.NoError(t, err)
		futures = append(futures, f)
	}
	require.Equal(t, 5, p.QueueLen())

	p.Stop(false)

	for _, f := range futures {
		_, _, err := f.GetWithTimeout(time.Second)
		assert.ErrorIs(t, err, ErrTaskAborted, "discarded unit must fail its future, not hang")
	}
	assert.Equal(t, 0, p.QueueLen())
	assert.Equal(t, 0, p.Size())
}

func TestStop_GracefulRunsQueuedWork(t *testing.T) {
	p := New(WithWorkers(2))

	var count atomic.Int64
	var futures []*Future[int]
	for i := range 20 {
		f, err := Submit(p, func(int) (int, error) {
			time.Sleep(2 * time.Millisecond)
			count.Add(1)
			return i, nil
		})
		require.NoError(t, err)
		futures = append(futures, f)
	}

	p.Stop(true)

	assert.EqualValues(t, 20, count.Load())
	for i, f := range futures {
		v, _, err := f.Get()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 0, p.Size())
}

func TestStop_Idempotent(t *testing.T) {
	t.Run("forced twice", func(t *testing.T) {
		p := New(WithWorkers(2))
		p.Stop(false)
		p.Stop(false) // must not block or panic
		assert.Equal(t, 0, p.Size())
	})

	t.Run("graceful twice", func(t *testing.T) {
		p := New(WithWorkers(2))
		p.Stop(true)
		p.Stop(true)
		assert.Equal(t, 0, p.Size())
	})

	t.Run("graceful after forced is a no-op", func(t *testing.T) {
		p := New(WithWorkers(2))
		p.Stop(false)
		p.Stop(true)
		assert.Equal(t, 0, p.Size())
	})
}

func TestClose_IsGracefulStop(t *testing.T) {
	p := New(WithWorkers(1))

	var ran atomic.Bool
	_, err := Submit(p, func(int) (int, error) {
		ran.Store(true)
		return 0, nil
	})
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, ran.Load())
	assert.Equal(t, 0, p.Size())

	_, err = Submit(p, func(int) (int, error) { return 0, nil })
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestResize(t *testing.T) {
	t.Run("grow then shrink", func(t *testing.T) {
		p := New(WithWorkers(0))
		defer p.Close()

		p.Resize(5)
		assert.Equal(t, 5, p.Size())

		p.Resize(2)
		assert.Equal(t, 2, p.Size())

		// The pool must remain fully usable after shrinking.
		f, err := Submit(p, func(int) (int, error) { return 7, nil })
		require.NoError(t, err)
		v, _, err := f.GetWithTimeout(2 * time.Second)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("negative clamps to zero", func(t *testing.T) {
		p := New(WithWorkers(2))
		defer p.Close()

		p.Resize(-3)
		assert.Equal(t, 0, p.Size())
	})

	t.Run("no-op after stop", func(t *testing.T) {
		p := New(WithWorkers(1))
		p.Stop(false)

		p.Resize(4)
		assert.Equal(t, 0, p.Size())
	})

	t.Run("shrink mid-task lets the victim finish", func(t *testing.T) {
		p := New(WithWorkers(1))
		defer p.Close()

		release := make(chan struct{})
		f, err := Submit(p, func(int) (int, error) {
			<-release
			return 13, nil
		})
		require.NoError(t, err)

		// Give the worker time to pick the task up, then detach it.
		time.Sleep(20 * time.Millisecond)
		p.Resize(0)
		assert.Equal(t, 0, p.Size())

		close(release)
		v, _, err := f.GetWithTimeout(2 * time.Second)
		require.NoError(t, err)
		assert.Equal(t, 13, v, "a detached worker still completes its in-flight task")
	})
}

func TestZeroWorkerPool(t *testing.T) {
	p := New(WithWorkers(0))
	defer p.Close()

	assert.Equal(t, 0, p.Size())
	assert.Equal(t, 0, p.NIdle())

	var futures []*Future[int]
	for i := range 3 {
		f, err := Submit(p, func(int) (int, error) { return i, nil })
		require.NoError(t, err)
		futures = append(futures, f)
	}

	// Nothing may complete while there are no workers.
	for _, f := range futures {
		_, _, err := f.GetWithTimeout(50 * time.Millisecond)
		assert.Error(t, err, "no task should complete with zero workers")
	}
	assert.Equal(t, 3, p.QueueLen())

	p.Resize(1)
	for i, f := range futures {
		v, _, err := f.GetWithTimeout(2 * time.Second)
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}

func TestClearQueue(t *testing.T) {
	p := New(WithWorkers(0))
	defer p.Close()

	var futures []*Future[int]
	for range 4 {
		f, err := Submit(p, func(int) (int, error) { return 0, nil })
		require.NoError(t, err)
		futures = append(futures, f)
	}

	p.ClearQueue()

	assert.Equal(t, 0, p.QueueLen())
	for _, f := range futures {
		_, _, err := f.GetWithTimeout(time.Second)
		assert.ErrorIs(t, err, ErrTaskAborted)
	}

	// The pool is still alive and accepts new work.
	p.Resize(1)
	f, err := Submit(p, func(int) (int, error) { return 5, nil })
	require.NoError(t, err)
	v, _, err := f.GetWithTimeout(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestWait(t *testing.T) {
	t.Run("returns immediately on an idle pool", func(t *testing.T) {
		p := New(WithWorkers(2))
		defer p.Close()

		// Allow the workers to park first.
		waitForIdle(t, p, 2)

		done := make(chan struct{})
		go func() {
			p.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Wait should return promptly on an idle pool")
		}
	})

	t.Run("blocks until queued work drains", func(t *testing.T) {
		p := New(WithWorkers(2))
		defer p.Close()

		var count atomic.Int64
		for range 10 {
			require.NoError(t, SubmitAndForget(p, func(int) {
				time.Sleep(10 * time.Millisecond)
				count.Add(1)
			}))
		}

		p.Wait()

		assert.EqualValues(t, 10, count.Load())
		assert.Equal(t, 0, p.QueueLen())
		assert.Equal(t, p.Size(), p.NIdle())
	})

	t.Run("pool remains usable after Wait", func(t *testing.T) {
		p := New(WithWorkers(1))
		defer p.Close()

		require.NoError(t, SubmitAndForget(p, func(int) {}))
		p.Wait()

		f, err := Submit(p, func(int) (int, error) { return 2, nil })
		require.NoError(t, err)
		v, _, err := f.GetWithTimeout(2 * time.Second)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("returns after stop", func(t *testing.T) {
		p := New(WithWorkers(2))
		p.Stop(true)

		done := make(chan struct{})
		go func() {
			p.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Wait should return on a stopped pool")
		}
	})
}

func TestNIdle(t *testing.T) {
	p := New(WithWorkers(3))
	defer p.Close()

	waitForIdle(t, p, 3)
	assert.Equal(t, 3, p.NIdle())

	block := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, SubmitAndForget(p, func(int) {
		wg.Done()
		<-block
	}))
	wg.Wait()

	assert.Equal(t, 2, p.NIdle())
	close(block)

	waitForIdle(t, p, 3)
}

// waitForIdle polls until n workers are parked, failing the test after a
// generous deadline. Idle transitions are asynchronous to Submit/Resize
// returns, so tests must not assert them immediately.
func waitForIdle(t *testing.T, p *Pool, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.NIdle() == n && p.QueueLen() == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("workers never went idle: idle=%d queued=%d", p.NIdle(), p.QueueLen())
}
