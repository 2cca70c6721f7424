// Package worker provides the bounded concurrency primitives used to run
// external link probes: a fixed-size task pool with streaming results and
// a per-host politeness limiter.
package worker

import (
	"context"
	"sync"
)

// Task is one unit of work executed by the pool
type Task[T any] func(ctx context.Context) T

// Pool executes tasks on a fixed number of workers and streams results as
// they complete. Completion order is whatever finishes first; consumers
// must not assume input order.
type Pool[T any] struct {
	workers    int
	tasks      chan Task[T]
	results    chan T
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	finishOnce sync.Once
}

// NewPool creates a pool of the given size. The pool stops accepting and
// executing work when ctx is cancelled; in-flight tasks see the
// cancellation through their own ctx argument.
func NewPool[T any](ctx context.Context, workers int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}

	poolCtx, cancel := context.WithCancel(ctx)

	return &Pool[T]{
		workers:    workers,
		tasks:      make(chan Task[T], workers*2),
		results:    make(chan T, workers*2),
		ctx:        poolCtx,
		cancelFunc: cancel,
	}
}

// Start launches the workers
func (p *Pool[T]) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			result := task(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a task. Returns false when the pool is shutting down and
// the task was not accepted.
func (p *Pool[T]) Submit(task Task[T]) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.tasks <- task:
		return true
	}
}

// Finish signals that no more tasks will be submitted. The results channel
// closes once every accepted task has completed, so callers range over
// Results until it closes. The pool's derived context is released once the
// workers are done.
func (p *Pool[T]) Finish() {
	p.finishOnce.Do(func() {
		close(p.tasks)
		go func() {
			p.wg.Wait()
			close(p.results)
			p.cancelFunc()
		}()
	})
}

// Results streams task results in completion order
func (p *Pool[T]) Results() <-chan T {
	return p.results
}

// Shutdown cancels outstanding work. Accepted tasks may be abandoned;
// results already delivered remain valid.
func (p *Pool[T]) Shutdown() {
	p.cancelFunc()
}
