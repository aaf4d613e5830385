package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startedPool(t *testing.T, workers, queueSize int) *Pool {
	t.Helper()
	p := NewPool(workers, queueSize, zap.NewNop())
	p.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	})
	return p
}

func TestPool_RunsTask(t *testing.T) {
	p := startedPool(t, 2, 4)

	done := make(chan struct{})
	handle, err := p.Submit("test", func(ctx context.Context) error {
		close(done)
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, handle.Await(ctx))

	<-done
	assert.Equal(t, StatusDone, handle.Status())
	assert.NoError(t, handle.Err())
}

func TestPool_TaskError(t *testing.T) {
	p := startedPool(t, 1, 1)

	wantErr := errors.New("boom")
	handle, err := p.Submit("failing", func(ctx context.Context) error {
		return wantErr
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.ErrorIs(t, handle.Await(ctx), wantErr)
	assert.Equal(t, StatusFailed, handle.Status())
}

func TestPool_PanicBecomesError(t *testing.T) {
	p := startedPool(t, 1, 1)

	handle, err := p.Submit("panicking", func(ctx context.Context) error {
		panic("kaboom")
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = handle.Await(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
	assert.Equal(t, StatusFailed, handle.Status())
}

func TestPool_QueueFull(t *testing.T) {
	p := startedPool(t, 1, 1)

	block := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	_, err := p.Submit("blocker", func(ctx context.Context) error {
		defer wg.Done()
		<-block
		return nil
	})
	require.NoError(t, err)

	// Fill the queue, then the next submit must be rejected.
	filled := false
	for i := 0; i < 3; i++ {
		if _, err := p.Submit("filler", func(ctx context.Context) error { return nil }); err != nil {
			assert.ErrorIs(t, err, ErrQueueFull)
			filled = true
			break
		}
	}
	assert.True(t, filled)

	close(block)
	wg.Wait()
}

func TestPool_CancelQueuedTask(t *testing.T) {
	p := startedPool(t, 1, 2)

	block := make(chan struct{})
	_, err := p.Submit("blocker", func(ctx context.Context) error {
		<-block
		return nil
	})
	require.NoError(t, err)

	handle, err := p.Submit("queued", func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	handle.Cancel()

	// Unblock the worker so it dequeues the cancelled task.
	close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.ErrorIs(t, handle.Await(ctx), context.Canceled)
	assert.Equal(t, StatusCancelled, handle.Status())
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := NewPool(1, 1, zap.NewNop())
	p.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))

	_, err := p.Submit("late", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPool_ConcurrentSubmitAndShutdown(t *testing.T) {
	// Submits racing a Shutdown must resolve to a handle or a sentinel
	// error, never a send on the closed queue.
	for i := 0; i < 50; i++ {
		p := NewPool(2, 2, zap.NewNop())
		p.Start(context.Background())

		var wg sync.WaitGroup
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				handle, err := p.Submit("racing", func(ctx context.Context) error {
					return nil
				})
				if err != nil {
					assert.True(t, errors.Is(err, ErrPoolClosed) || errors.Is(err, ErrQueueFull), err.Error())
					return
				}
				assert.NotNil(t, handle)
			}()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		require.NoError(t, p.Shutdown(ctx))
		cancel()
		wg.Wait()
	}
}

func TestPool_ContextCancelFailsQueued(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(1, 4, zap.NewNop())
	p.Start(ctx)

	block := make(chan struct{})
	defer close(block)
	_, err := p.Submit("blocker", func(taskCtx context.Context) error {
		<-block
		return nil
	})
	require.NoError(t, err)

	handle, err := p.Submit("queued", func(taskCtx context.Context) error {
		return nil
	})
	require.NoError(t, err)

	// Cancelling the pool context must fail the queued handle even though
	// the only worker is still busy.
	cancel()

	awaitCtx, awaitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer awaitCancel()
	assert.ErrorIs(t, handle.Await(awaitCtx), context.Canceled)
	assert.Equal(t, StatusCancelled, handle.Status())

	// New submits are rejected once the context is gone.
	assert.Eventually(t, func() bool {
		_, err := p.Submit("late", func(taskCtx context.Context) error { return nil })
		return errors.Is(err, ErrPoolClosed)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPool_ShutdownDrainsInFlight(t *testing.T) {
	p := NewPool(2, 4, zap.NewNop())
	p.Start(context.Background())

	var mu sync.Mutex
	completed := 0
	for i := 0; i < 4; i++ {
		_, err := p.Submit("work", func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			completed++
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 4, completed)
}
