// Package validationworker implements the validation worker (C4): it adapts
// the Validator (C2) into the Task shape the worker pool (C3) expects,
// emitting at most one DeleteRequest per event onto a shared channel.
package validationworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nostrtools/eventdeleter/internal/logger"
	"github.com/nostrtools/eventdeleter/pkg/metrics"
	"github.com/nostrtools/eventdeleter/pkg/model"
	"github.com/nostrtools/eventdeleter/pkg/validator"
)

// ErrSinkDropped is returned when a Reject verdict cannot be delivered
// because the delete-request channel's receiver (the aggregator, C5) is
// gone (§7: SinkDropped).
var ErrSinkDropped = errors.New("validationworker: delete-request sink is closed")

// Worker wraps a Validator and a validation-specific timeout into a
// workerpool.Task[*model.Event].
type Worker struct {
	Validator         validator.Validator
	ValidationTimeout time.Duration
	Sink              chan<- model.DeleteRequest
	// SinkDone is closed by the aggregator once it stops reading from Sink
	// (final flush complete). A Task still trying to send at that point
	// fails with ErrSinkDropped instead of blocking forever.
	SinkDone <-chan struct{}
	metrics  metrics.Recorder
}

// New builds a Worker. sink is the shared delete-request channel C5 reads
// from; sinkDone is closed by C5 when it stops receiving.
func New(v validator.Validator, validationTimeout time.Duration, sink chan<- model.DeleteRequest, sinkDone <-chan struct{}) *Worker {
	return &Worker{Validator: v, ValidationTimeout: validationTimeout, Sink: sink, SinkDone: sinkDone, metrics: metrics.Disabled}
}

// WithMetrics attaches a Recorder, replacing the default no-op one.
func (w *Worker) WithMetrics(recorder metrics.Recorder) *Worker {
	if recorder != nil {
		w.metrics = recorder
	}
	return w
}

// Task runs one event through the validator under the configured validation
// timeout, in addition to whatever outer per-task timeout the pool applies
// (§4.4). On Reject, the DeleteRequest is sent to Sink; on Accept, nothing
// is sent. Errors and timeouts are returned so the pool logs them, but they
// never propagate past this one event.
func (w *Worker) Task(ctx context.Context, event *model.Event) error {
	taskCtx := ctx
	var cancel context.CancelFunc
	if w.ValidationTimeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, w.ValidationTimeout)
		defer cancel()
	}

	verdict, err := w.Validator.Validate(taskCtx, event)
	if err != nil {
		return fmt.Errorf("validate event %s: %w", event.ID, err)
	}
	if taskCtx.Err() != nil {
		return fmt.Errorf("validate event %s: %w", event.ID, taskCtx.Err())
	}
	if !verdict.Rejected {
		w.metrics.EventValidated("accept")
		return nil
	}
	w.metrics.EventValidated("reject")
	w.metrics.DeleteRequestEmitted(verdict.Request.Kind.String())

	select {
	case w.Sink <- verdict.Request:
		logger.Debug("event rejected", "event_id", event.ID, "kind", verdict.Request.Kind)
		return nil
	case <-w.SinkDone:
		return ErrSinkDropped
	case <-ctx.Done():
		return ctx.Err()
	}
}
