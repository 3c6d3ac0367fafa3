package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/secondlabor/laborhub/observe"
	auditstore "github.com/secondlabor/laborhub/observe/store"
)

func TestStore_SaveListAndMetrics(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()
	inputs := []observe.Event{
		observe.TaskEvent("task.publish", "t1", "w1", nil),
		observe.TaskEvent("task.join", "t1", "w2", nil),
		observe.TaskEvent("task.update", "t1", "w2", nil),
		observe.DeliveryEvent("t1", "sess-1", 128, nil),
		observe.DeliveryEvent("t2", "", 0, errors.New("empty content")),
		observe.OAuthEvent("oauth.exchange", "oauth-code", nil),
	}
	for i := range inputs {
		inputs[i].Timestamp = now.Add(time.Duration(i) * time.Millisecond)
		if err := store.SaveEvent(ctx, inputs[i]); err != nil {
			t.Fatalf("save event: %v", err)
		}
	}

	events, err := store.ListEventsByTask(ctx, "t1", auditstore.ListQuery{Limit: 20})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events for task t1, got %d", len(events))
	}
	if events[0].Name != "task.publish" || events[3].Name != "task.deliver" {
		t.Fatalf("unexpected event ordering: %v, %v", events[0].Name, events[3].Name)
	}

	byWorker, err := store.ListEventsByWorker(ctx, "w2", auditstore.ListQuery{})
	if err != nil {
		t.Fatalf("list by worker: %v", err)
	}
	if len(byWorker) != 2 {
		t.Fatalf("expected 2 events for worker w2, got %d", len(byWorker))
	}

	metrics, err := store.AggregateMetrics(ctx, auditstore.MetricsQuery{})
	if err != nil {
		t.Fatalf("aggregate metrics: %v", err)
	}
	if metrics.TasksPublished != 1 || metrics.TasksJoined != 1 || metrics.UpdatesPosted != 1 {
		t.Fatalf("unexpected task metrics: %+v", metrics)
	}
	if metrics.TasksDelivered != 1 || metrics.DeliveryFailures != 1 || metrics.TokenExchanges != 1 {
		t.Fatalf("unexpected delivery/oauth metrics: %+v", metrics)
	}
}

func TestStore_SinceFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	old := observe.TaskEvent("task.publish", "t1", "", nil)
	old.Timestamp = time.Now().UTC().Add(-time.Hour)
	recent := observe.TaskEvent("task.publish", "t2", "", nil)
	for _, e := range []observe.Event{old, recent} {
		if err := store.SaveEvent(ctx, e); err != nil {
			t.Fatalf("save event: %v", err)
		}
	}

	since := time.Now().UTC().Add(-time.Minute)
	metrics, err := store.AggregateMetrics(ctx, auditstore.MetricsQuery{Since: &since})
	if err != nil {
		t.Fatalf("aggregate metrics: %v", err)
	}
	if metrics.TasksPublished != 1 {
		t.Fatalf("expected since filter to exclude old event, got %+v", metrics)
	}
}
