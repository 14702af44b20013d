package vanishstream

import (
	"context"
	"time"

	"github.com/nostrtools/eventdeleter/internal/logger"
	"github.com/nostrtools/eventdeleter/pkg/metrics"
	"github.com/nostrtools/eventdeleter/pkg/model"
)

// blockDuration is the fixed XREAD block window (§4.6.1); cancellation is
// observed within this period.
const blockDuration = 5 * time.Second

// Consumer runs the reader task and the ack task (C6): two cooperating
// tasks sharing a stream cursor only through CursorStore, never through
// in-memory state.
type Consumer struct {
	Stream      StreamClient
	CursorStore CursorStore
	Sink        chan<- model.DeleteRequest
	metrics     metrics.Recorder
}

// NewConsumer builds a Consumer. sink is where parsed Vanish requests are
// sent; it is typically the aggregator's delete-request channel.
func NewConsumer(stream StreamClient, cursorStore CursorStore, sink chan<- model.DeleteRequest) *Consumer {
	return &Consumer{Stream: stream, CursorStore: cursorStore, Sink: sink, metrics: metrics.Disabled}
}

// WithMetrics attaches a Recorder, replacing the default no-op one.
func (c *Consumer) WithMetrics(recorder metrics.Recorder) *Consumer {
	if recorder != nil {
		c.metrics = recorder
	}
	return c
}

// RunReader loops reading new stream entries until ctx is cancelled. It
// tracks lastID only in memory; persistence is the ack task's job.
func (c *Consumer) RunReader(ctx context.Context) {
	lastID, err := c.CursorStore.Load(ctx)
	if err != nil {
		logger.Warn("vanish reader: failed to load cursor, starting from zero", "error", err)
		lastID = initialCursor
	}

	for {
		if ctx.Err() != nil {
			return
		}

		entries, err := c.Stream.ReadBlocking(ctx, lastID, blockDuration)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("vanish reader: XREAD failed, retrying", "error", err)
			continue
		}

		for _, entry := range entries {
			if entry.ID == lastID {
				continue
			}

			req, err := ParseVanish(entry)
			if err != nil {
				c.metrics.VanishEntryParsed(true)
				logger.Warn("vanish reader: skipping unparseable entry", "entry_id", entry.ID, "error", err)
				continue
			}
			c.metrics.VanishEntryParsed(false)

			select {
			case c.Sink <- req:
			case <-ctx.Done():
				return
			}
			lastID = entry.ID
		}
	}
}

// RunAckTask persists the cursor strictly in response to acks of type
// Vanish. It writes the *previous* confirmed id, not the incoming one: on
// ack(id), it persists last_persisted_id before updating it to id. Recovery
// therefore replays the most recently acknowledged entry, which is safe
// because deletion by author is idempotent (§4.6.2).
//
// RunAckTask exits only when acks closes, never directly on ctx
// cancellation: the aggregator's final flush after shutdown sends its last
// batch of acks on this same channel, and this loop must still be there to
// receive them. Closing acks is the aggregator's job (via Aggregator.Run);
// ctx here is used only for the CursorStore calls.
func (c *Consumer) RunAckTask(ctx context.Context, acks <-chan model.DeleteRequest) {
	lastPersisted, err := c.CursorStore.Load(ctx)
	if err != nil {
		logger.Warn("vanish ack task: failed to load cursor", "error", err)
		lastPersisted = initialCursor
	}

	for ack := range acks {
		if ack.Kind != model.KindVanish {
			continue
		}
		if ack.StreamEntryID > lastPersisted {
			if err := c.CursorStore.Save(ctx, lastPersisted); err != nil {
				logger.Warn("vanish ack task: failed to persist cursor", "error", err)
			}
			c.metrics.CursorAdvanced()
			lastPersisted = ack.StreamEntryID
		}
	}
}
