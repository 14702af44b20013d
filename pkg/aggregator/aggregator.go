// Package aggregator implements the deletion aggregator (C5): a single
// in-memory buffer, flushed by size or by a periodic tick, that drives the
// relay commander (C1) and, regardless of its outcome, acknowledges every
// item it held.
package aggregator

import (
	"context"
	"time"

	"github.com/nostrtools/eventdeleter/internal/logger"
	"github.com/nostrtools/eventdeleter/pkg/metrics"
	"github.com/nostrtools/eventdeleter/pkg/model"
)

// Commander is the capability the aggregator drives on each flush.
type Commander interface {
	ExecuteDelete(ctx context.Context, requests []model.DeleteRequest, dryRun bool) error
}

// Config configures one Aggregator run.
type Config struct {
	BatchSize   int
	FlushPeriod time.Duration
	DryRun      bool
}

// Aggregator buffers DeleteRequests and flushes them to a Commander, either
// when the buffer reaches BatchSize or when FlushPeriod elapses, whichever
// comes first. It is single-threaded by construction: Run owns the buffer
// for its entire lifetime, so no locking is needed.
type Aggregator struct {
	commander Commander
	cfg       Config
	metrics   metrics.Recorder
}

// New builds an Aggregator around the given Commander.
func New(commander Commander, cfg Config) *Aggregator {
	return &Aggregator{commander: commander, cfg: cfg, metrics: metrics.Disabled}
}

// WithMetrics attaches a Recorder, replacing the default no-op one. Returns
// the Aggregator for chaining.
func (a *Aggregator) WithMetrics(recorder metrics.Recorder) *Aggregator {
	if recorder != nil {
		a.metrics = recorder
	}
	return a
}

// Run reads DeleteRequests from source until it closes, flushing along the
// way, then performs one final flush before returning. If ackSink is
// non-nil, every flushed item is sent to it, in enqueue order, regardless of
// whether the Commander call succeeded — acknowledgement means "dequeued and
// attempted", not "deleted" (§4.5). Run closes ackSink (if non-nil) and
// ackSinkDone (if non-nil) immediately before returning: ackSinkDone signals
// that no more sends are coming, and closing ackSink is what actually lets a
// `range`-based ack consumer exit once it has drained everything flushed.
//
// Cancellation does not cut Run short: once ctx fires, Run stops watching
// the flush ticker and instead drains source to its close, flushing full
// batches along the way, so every DeleteRequest already in flight is
// accounted for in a flush rather than dropped (§8 property 2).
func (a *Aggregator) Run(ctx context.Context, source <-chan model.DeleteRequest, ackSink chan<- model.DeleteRequest, ackSinkDone chan<- struct{}) {
	if ackSinkDone != nil {
		defer close(ackSinkDone)
	}
	if ackSink != nil {
		defer close(ackSink)
	}

	batchSize := a.cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	var buffer []model.DeleteRequest

	flushPeriod := a.cfg.FlushPeriod
	if flushPeriod <= 0 {
		flushPeriod = time.Second
	}
	ticker := time.NewTicker(flushPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			for req := range source {
				buffer = append(buffer, req)
				if len(buffer) >= batchSize {
					a.flush(&buffer, ackSink)
				}
			}
			a.flush(&buffer, ackSink)
			return

		case <-ticker.C:
			a.flush(&buffer, ackSink)

		case req, ok := <-source:
			if !ok {
				a.flush(&buffer, ackSink)
				return
			}
			buffer = append(buffer, req)
			if len(buffer) >= batchSize {
				a.flush(&buffer, ackSink)
			}
		}
	}
}

// flush takes a snapshot of *buffer, clears it, executes the deletion, and
// acknowledges every item in the snapshot in order, independent of the
// deletion's outcome. The deletion call runs against context.Background(),
// not the loop's ctx: cancellation during a blocking external-deletion call
// is not meant to interrupt it (§4.7) — a flush that starts is allowed to
// finish even when triggered by shutdown. The send to ackSink is a plain
// blocking send: Run never closes ackSink until after its last flush, so the
// ack consumer is always still draining on the other end.
func (a *Aggregator) flush(buffer *[]model.DeleteRequest, ackSink chan<- model.DeleteRequest) {
	if len(*buffer) == 0 {
		return
	}

	batch := *buffer
	*buffer = nil

	a.metrics.BatchFlushed(len(batch))

	err := a.commander.ExecuteDelete(context.Background(), batch, a.cfg.DryRun)
	a.metrics.DeletionCommandResult(err == nil)
	if err != nil {
		logger.Warn("execute_delete failed for batch", "size", len(batch), "error", err)
	}

	if ackSink == nil {
		return
	}
	for _, req := range batch {
		ackSink <- req
	}
}
