package vanishstream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nostrtools/eventdeleter/pkg/model"
)

type fakeCursorStore struct {
	mu      sync.Mutex
	value   string
	history []string
}

func newFakeCursorStore() *fakeCursorStore {
	return &fakeCursorStore{value: initialCursor}
}

func (s *fakeCursorStore) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}

func (s *fakeCursorStore) Save(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = id
	s.history = append(s.history, id)
	return nil
}

func (s *fakeCursorStore) snapshot() (string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, append([]string(nil), s.history...)
}

// fakeStreamClient replays a fixed batch of entries once, then blocks until
// ctx is cancelled.
type fakeStreamClient struct {
	mu      sync.Mutex
	batches [][]StreamEntry
	calls   []string
}

func (c *fakeStreamClient) ReadBlocking(ctx context.Context, lastID string, block time.Duration) ([]StreamEntry, error) {
	c.mu.Lock()
	c.calls = append(c.calls, lastID)
	var batch []StreamEntry
	if len(c.batches) > 0 {
		batch = c.batches[0]
		c.batches = c.batches[1:]
	}
	c.mu.Unlock()

	if batch != nil {
		return batch, nil
	}

	<-ctx.Done()
	return nil, ctx.Err()
}

// S5: replay ordering — the reader delivers Vanish requests to the sink in
// stream order.
func TestConsumer_ReaderDeliversInStreamOrder(t *testing.T) {
	stream := &fakeStreamClient{
		batches: [][]StreamEntry{
			{
				{ID: "1-0", Fields: map[string]any{"pubkey": "pkA"}},
				{ID: "2-0", Fields: map[string]any{"pubkey": "pkB"}},
				{ID: "3-0", Fields: map[string]any{"pubkey": "pkC"}},
			},
		},
	}
	cursor := newFakeCursorStore()
	sink := make(chan model.DeleteRequest, 10)
	c := NewConsumer(stream, cursor, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.RunReader(ctx)

	var got []model.DeleteRequest
	for i := 0; i < 3; i++ {
		select {
		case req := <-sink:
			got = append(got, req)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for entry %d", i)
		}
	}

	wantOrder := []string{"1-0", "2-0", "3-0"}
	for i, req := range got {
		if req.StreamEntryID != wantOrder[i] {
			t.Errorf("entry %d StreamEntryID = %s, want %s", i, req.StreamEntryID, wantOrder[i])
		}
	}
}

func TestConsumer_AckTaskPersistsPreviousID(t *testing.T) {
	cursor := newFakeCursorStore()
	acks := make(chan model.DeleteRequest, 10)
	c := NewConsumer(&fakeStreamClient{}, cursor, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.RunAckTask(ctx, acks)
		close(done)
	}()

	acks <- model.Vanish("1-0", "pkA", nil)
	acks <- model.Vanish("2-0", "pkB", nil)
	time.Sleep(50 * time.Millisecond)

	value, history := cursor.snapshot()
	if value != "1-0" {
		t.Errorf("persisted cursor = %s, want 1-0 (the id confirmed before the latest ack)", value)
	}
	// The value *written to storage* on each ack is the previous
	// confirmed id, not the incoming one.
	if len(history) != 2 || history[0] != "0-0" || history[1] != "1-0" {
		t.Errorf("persisted history = %v, want [0-0 1-0]", history)
	}

	close(acks)
	<-done
}

func TestConsumer_AckTaskIgnoresNonVanishAcks(t *testing.T) {
	cursor := newFakeCursorStore()
	acks := make(chan model.DeleteRequest, 10)
	c := NewConsumer(&fakeStreamClient{}, cursor, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.RunAckTask(ctx, acks)

	acks <- model.ReplyCopy("e1")
	acks <- model.ForbiddenName("pkA")
	time.Sleep(50 * time.Millisecond)

	value, history := cursor.snapshot()
	if value != initialCursor || len(history) != 0 {
		t.Errorf("non-vanish acks must not move the cursor, got value=%s history=%v", value, history)
	}
}

// S6: a malformed entry is skipped without advancing past it, and without
// crashing the reader.
func TestConsumer_ReaderSkipsUnparseableEntryWithoutCrashing(t *testing.T) {
	stream := &fakeStreamClient{
		batches: [][]StreamEntry{
			{
				{ID: "1-0", Fields: map[string]any{}}, // missing pubkey
				{ID: "2-0", Fields: map[string]any{"pubkey": "pkA"}},
			},
		},
	}
	cursor := newFakeCursorStore()
	sink := make(chan model.DeleteRequest, 10)
	c := NewConsumer(stream, cursor, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.RunReader(ctx)

	select {
	case req := <-sink:
		if req.StreamEntryID != "2-0" {
			t.Errorf("got StreamEntryID = %s, want 2-0 (the bad entry must be skipped, not delivered)", req.StreamEntryID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out: reader must continue past the unparseable entry")
	}

	select {
	case extra := <-sink:
		t.Fatalf("did not expect a second delivery, got %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}
