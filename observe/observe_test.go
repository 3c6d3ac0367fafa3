package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNormalizeDefaults(t *testing.T) {
	e := Event{}
	e.Normalize()
	if e.Kind != KindCustom {
		t.Fatalf("expected custom kind, got %q", e.Kind)
	}
	if e.Status != StatusCompleted {
		t.Fatalf("expected completed status, got %q", e.Status)
	}
	if e.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
	if e.Attributes == nil {
		t.Fatalf("expected attributes map to be set")
	}
}

func TestTaskEventFailure(t *testing.T) {
	e := TaskEvent("task.join", "t1", "w1", errors.New("specialty mismatch"))
	if e.Status != StatusFailed {
		t.Fatalf("expected failed status, got %q", e.Status)
	}
	if e.Error != "specialty mismatch" {
		t.Fatalf("unexpected error text %q", e.Error)
	}
	if e.TaskID != "t1" || e.WorkerID != "w1" {
		t.Fatalf("unexpected ids: %+v", e)
	}
}

func TestMultiSinkStopsOnError(t *testing.T) {
	calls := 0
	failing := SinkFunc(func(ctx context.Context, event Event) error {
		calls++
		return errors.New("boom")
	})
	after := SinkFunc(func(ctx context.Context, event Event) error {
		calls++
		return nil
	})
	sink := NewMultiSink(failing, after)
	if err := sink.Emit(context.Background(), Event{}); err == nil {
		t.Fatalf("expected error from multi sink")
	}
	if calls != 1 {
		t.Fatalf("expected emit to stop after failure, got %d calls", calls)
	}
}

func TestAsyncSinkDeliversAndDrops(t *testing.T) {
	var mu sync.Mutex
	seen := []Event{}
	slow := SinkFunc(func(ctx context.Context, event Event) error {
		mu.Lock()
		seen = append(seen, event)
		mu.Unlock()
		return nil
	})
	sink := NewAsyncSink(slow, 4)
	defer sink.Close()

	for i := 0; i < 3; i++ {
		if err := sink.Emit(context.Background(), TaskEvent("task.publish", "t1", "", nil)); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 3 delivered events, got %d", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
