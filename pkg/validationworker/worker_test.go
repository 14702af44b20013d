package validationworker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/nostrtools/eventdeleter/pkg/model"
	"github.com/nostrtools/eventdeleter/pkg/validator"
)

type fakeValidator struct {
	verdict validator.Verdict
	err     error
	delay   time.Duration
}

func (f *fakeValidator) Validate(ctx context.Context, event *model.Event) (validator.Verdict, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return validator.Verdict{}, ctx.Err()
		}
	}
	return f.verdict, f.err
}

func TestTask_AcceptSendsNothing(t *testing.T) {
	sink := make(chan model.DeleteRequest, 1)
	w := New(&fakeValidator{verdict: validator.Accept}, time.Second, sink, make(chan struct{}))

	if err := w.Task(context.Background(), &nostr.Event{ID: "e1"}); err != nil {
		t.Fatalf("Task() error = %v", err)
	}
	select {
	case req := <-sink:
		t.Fatalf("expected no DeleteRequest on accept, got %+v", req)
	default:
	}
}

func TestTask_RejectSendsDeleteRequest(t *testing.T) {
	sink := make(chan model.DeleteRequest, 1)
	want := model.ReplyCopy("e1")
	w := New(&fakeValidator{verdict: validator.Reject(want)}, time.Second, sink, make(chan struct{}))

	if err := w.Task(context.Background(), &nostr.Event{ID: "e1"}); err != nil {
		t.Fatalf("Task() error = %v", err)
	}
	select {
	case got := <-sink:
		if !got.Equal(want) {
			t.Errorf("sink got %+v, want %+v", got, want)
		}
	default:
		t.Fatal("expected a DeleteRequest on the sink")
	}
}

func TestTask_ValidatorErrorPropagates(t *testing.T) {
	wantErr := errors.New("relay down")
	sink := make(chan model.DeleteRequest, 1)
	w := New(&fakeValidator{err: wantErr}, time.Second, sink, make(chan struct{}))

	err := w.Task(context.Background(), &nostr.Event{ID: "e1"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Task() error = %v, want wrapping %v", err, wantErr)
	}
}

func TestTask_ValidationTimeoutFails(t *testing.T) {
	sink := make(chan model.DeleteRequest, 1)
	w := New(&fakeValidator{delay: 50 * time.Millisecond}, 5*time.Millisecond, sink, make(chan struct{}))

	if err := w.Task(context.Background(), &nostr.Event{ID: "e1"}); err == nil {
		t.Fatal("expected an error from a validator that outlives the validation timeout")
	}
}

func TestTask_SinkDroppedFailsTask(t *testing.T) {
	sink := make(chan model.DeleteRequest) // unbuffered, nobody reads
	sinkDone := make(chan struct{})
	close(sinkDone)

	w := New(&fakeValidator{verdict: validator.Reject(model.ReplyCopy("e1"))}, time.Second, sink, sinkDone)

	err := w.Task(context.Background(), &nostr.Event{ID: "e1"})
	if !errors.Is(err, ErrSinkDropped) {
		t.Fatalf("Task() error = %v, want ErrSinkDropped", err)
	}
}
