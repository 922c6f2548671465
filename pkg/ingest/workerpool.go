package ingest

import (
	"context"
	"sync"
)

// Job is a unit of work submitted to the WorkerPool.
// It returns an error to indicate failure; callers may treat errors as they see fit.
type Job func(ctx context.Context) error

// WorkerPool runs jobs using a fixed number of goroutines.
// The Ingester uses it to analyse sentences and look words up in parallel.
type WorkerPool struct {
	jobs    chan Job
	done    chan struct{}
	wg      sync.WaitGroup
	workers int

	// mu is held for reading by senders so Close never closes jobs under them.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewWorkerPool creates a new worker pool with the specified number of workers
// and job queue capacity.
func NewWorkerPool(workers, queue int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &WorkerPool{
		jobs:    make(chan Job, queue),
		done:    make(chan struct{}),
		workers: workers,
	}
}

// Start begins the worker goroutines. Workers run until ctx is done or the
// pool is closed and its queue drained.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					// Jobs report failures through their own channels.
					_ = job(ctx)
				}
			}
		}()
	}
}

// Submit enqueues a job, blocking while the queue is full. Returns
// ErrPoolClosed if the pool is closed first.
func (p *WorkerPool) Submit(job Job) error {
	return p.SubmitCtx(context.Background(), job)
}

// SubmitCtx is Submit that also gives up when ctx is done.
func (p *WorkerPool) SubmitCtx(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new jobs and waits for workers to finish the queue.
func (p *WorkerPool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

// ErrPoolClosed is returned if a Submit is attempted after Close.
var ErrPoolClosed = &PoolError{"worker pool closed"}

// PoolError provides a simple typed error for pool operations.
type PoolError struct{ msg string }

func (e *PoolError) Error() string { return e.msg }
