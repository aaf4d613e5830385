package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrQueueFull is returned by Submit when the bounded queue is at capacity.
	ErrQueueFull = errors.New("worker: queue full")
	// ErrPoolClosed is returned by Submit after Shutdown.
	ErrPoolClosed = errors.New("worker: pool closed")
)

// Task is one unit of background work. The context is cancelled when the
// task handle or the whole pool is cancelled.
type Task func(ctx context.Context) error

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Handle tracks one submitted task.
type Handle struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status Status
	err    error
}

// Await blocks until the task finishes or ctx expires.
func (h *Handle) Await(ctx context.Context) error {
	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel requests cancellation. A queued task is skipped; a running task
// sees its context cancelled.
func (h *Handle) Cancel() {
	h.cancel()
}

func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Handle) setStatus(s Status) {
	h.mu.Lock()
	h.status = s
	h.mu.Unlock()
}

func (h *Handle) finish(s Status, err error) {
	h.mu.Lock()
	h.status = s
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

type queued struct {
	handle *Handle
	task   Task
}

// Pool runs submitted tasks on a fixed number of workers over a bounded
// queue, replacing unbounded goroutine fan-out.
type Pool struct {
	workers int
	queue   chan queued
	logger  *zap.Logger

	group *errgroup.Group

	mu     sync.Mutex
	closed bool
}

func NewPool(workers, queueSize int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		workers: workers,
		queue:   make(chan queued, queueSize),
		logger:  logger,
	}
}

// Start launches the workers. They run until Shutdown closes the queue or
// ctx is cancelled. On cancellation the pool stops accepting tasks and
// fails every still-queued handle so no Await blocks forever.
func (p *Pool) Start(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	p.group = g
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case item, ok := <-p.queue:
					if !ok {
						return nil
					}
					p.run(item)
				}
			}
		})
	}
	go func() {
		<-gctx.Done()
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		p.failPending(gctx.Err())
	}()
	p.logger.Info("Worker pool started",
		zap.Int("workers", p.workers),
		zap.Int("queue_size", cap(p.queue)),
	)
}

// Submit enqueues a task without blocking. The caller may Await or Cancel
// via the returned handle, or drop it for fire-and-forget work.
// The closed-check and the enqueue happen under one mutex hold so a
// concurrent Shutdown cannot close the queue between them.
func (p *Pool) Submit(name string, task Task) (*Handle, error) {
	ctx, cancel := context.WithCancel(context.Background())
	handle := &Handle{
		name:   name,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		status: StatusQueued,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		cancel()
		return nil, ErrPoolClosed
	}

	select {
	case p.queue <- queued{handle: handle, task: task}:
		return handle, nil
	default:
		cancel()
		return nil, ErrQueueFull
	}
}

// failPending finishes every handle still sitting in the queue. Callers
// must have marked the pool closed first, so the queue cannot grow while
// draining.
func (p *Pool) failPending(cause error) {
	for {
		select {
		case item, ok := <-p.queue:
			if !ok {
				return
			}
			item.handle.finish(StatusCancelled, cause)
		default:
			return
		}
	}
}

// Shutdown stops accepting tasks and waits for in-flight work to drain or
// ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	if p.group == nil {
		return nil
	}

	waited := make(chan error, 1)
	go func() {
		waited <- p.group.Wait()
	}()
	select {
	case err := <-waited:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) run(item queued) {
	handle := item.handle

	select {
	case <-handle.ctx.Done():
		handle.finish(StatusCancelled, context.Canceled)
		return
	default:
	}

	handle.setStatus(StatusRunning)

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		return item.task(handle.ctx)
	}()

	switch {
	case err == nil:
		handle.finish(StatusDone, nil)
	case errors.Is(err, context.Canceled):
		handle.finish(StatusCancelled, err)
	default:
		p.logger.Error("Background task failed",
			zap.String("task", handle.name),
			zap.Error(err),
		)
		handle.finish(StatusFailed, err)
	}
}
