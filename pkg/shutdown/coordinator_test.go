package shutdown

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestCoordinator_WaitReturnsOnlyAfterAllTasksExit(t *testing.T) {
	c := New(context.Background())

	var done int32
	release := make(chan struct{})

	for i := 0; i < 3; i++ {
		c.Go(func() {
			<-release
			atomic.AddInt32(&done, 1)
		})
	}

	waitReturned := make(chan struct{})
	go func() {
		c.Wait()
		close(waitReturned)
	}()

	select {
	case <-waitReturned:
		t.Fatal("Wait returned before any task exited")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)

	select {
	case <-waitReturned:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after all tasks exited")
	}

	if atomic.LoadInt32(&done) != 3 {
		t.Errorf("done = %d, want 3", done)
	}
}

func TestCoordinator_CancelPropagatesToContext(t *testing.T) {
	c := New(context.Background())

	select {
	case <-c.Context().Done():
		t.Fatal("context already done before Cancel")
	default:
	}

	c.Cancel()

	select {
	case <-c.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context not done after Cancel")
	}
}

func TestCoordinator_CancelIsIdempotent(t *testing.T) {
	c := New(context.Background())
	c.Cancel()
	c.Cancel() // must not panic
}
