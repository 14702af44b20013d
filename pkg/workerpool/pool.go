// Package workerpool implements the bounded worker pool (C3): a dispatcher
// fans items out round-robin to a fixed set of workers, each bounded by a
// per-task timeout, with cooperative cancellation throughout.
package workerpool

import (
	"context"
	"time"

	"github.com/nostrtools/eventdeleter/internal/logger"
)

// Task processes one item. Its error is logged, never fatal: the worker
// serves the next item regardless of outcome (§4.3).
type Task[T any] func(ctx context.Context, item T) error

// Pool fans items from a single source out to NumWorkers workers, round-
// robin, over per-worker channels of capacity one. A worker whose channel is
// full back-pressures the dispatcher, and therefore the source.
type Pool[T any] struct {
	NumWorkers    int
	PerTaskTimeout time.Duration
	Task          Task[T]
}

// New builds a Pool. numWorkers is clamped to at least 1.
func New[T any](numWorkers int, perTaskTimeout time.Duration, task Task[T]) *Pool[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool[T]{NumWorkers: numWorkers, PerTaskTimeout: perTaskTimeout, Task: task}
}

// Run starts the dispatcher and all workers, feeding them from source, and
// blocks until source closes and every worker has drained and exited (or ctx
// is cancelled and drain completes). It is the single call sites need: there
// is no separate start/stop.
func (p *Pool[T]) Run(ctx context.Context, source <-chan T) {
	channels := make([]chan T, p.NumWorkers)
	for i := range channels {
		channels[i] = make(chan T, 1)
	}

	done := make(chan struct{})
	for i, ch := range channels {
		go func(id int, ch <-chan T) {
			p.runWorker(ctx, id, ch)
			done <- struct{}{}
		}(i, ch)
	}

	p.dispatch(ctx, source, channels)

	for range channels {
		<-done
	}
}

// dispatch awaits (cancellation, item) and hands each item to the next
// worker in cyclic order, closing every worker channel once the source
// closes or the pool is cancelled.
func (p *Pool[T]) dispatch(ctx context.Context, source <-chan T, channels []chan T) {
	defer func() {
		for _, ch := range channels {
			close(ch)
		}
	}()

	next := 0
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-source:
			if !ok {
				return
			}
			select {
			case channels[next] <- item:
			case <-ctx.Done():
				return
			}
			next = (next + 1) % len(channels)
		}
	}
}

// runWorker serves items from its private channel until it closes, running
// each under PerTaskTimeout. Task errors and timeouts are logged and never
// stop the worker.
func (p *Pool[T]) runWorker(ctx context.Context, id int, ch <-chan T) {
	for item := range ch {
		p.runTask(ctx, id, item)
	}
}

func (p *Pool[T]) runTask(ctx context.Context, id int, item T) {
	taskCtx := ctx
	var cancel context.CancelFunc
	if p.PerTaskTimeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, p.PerTaskTimeout)
		defer cancel()
	}

	if err := p.Task(taskCtx, item); err != nil {
		logger.Debug("worker task failed", "worker", id, "error", err)
	}
}
