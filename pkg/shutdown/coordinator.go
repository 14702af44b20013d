// Package shutdown implements the shutdown coordinator (C7): a single cancel
// token shared by every long-running task, a signal watcher that fires it on
// SIGINT/SIGTERM, and a tracker that reports when every task has drained.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nostrtools/eventdeleter/internal/logger"
)

// Coordinator owns the process-wide cancel token and tracks outstanding
// tasks so Wait can report "every task has exited".
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Coordinator derived from parent.
func New(parent context.Context) *Coordinator {
	ctx, cancel := context.WithCancel(parent)
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context is the shared cancel token every long-running task selects on.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Go runs fn in a tracked goroutine; Wait does not return until it does.
func (c *Coordinator) Go(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// Cancel fires the shared cancel token. Safe to call more than once.
func (c *Coordinator) Cancel() {
	c.cancel()
}

// Wait blocks until every goroutine started via Go has returned.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// WatchSignals starts a goroutine that cancels the coordinator on the first
// SIGINT or SIGTERM. It is not itself a tracked task: by the time it fires,
// its only remaining job is Cancel, which does not need draining.
func (c *Coordinator) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("shutdown signal received, initiating graceful drain", "signal", sig.String())
			signal.Stop(sigCh)
			c.Cancel()
		case <-c.ctx.Done():
			signal.Stop(sigCh)
		}
	}()
}
