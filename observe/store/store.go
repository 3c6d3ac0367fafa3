// Package store defines persistence for observe events so operators can
// inspect a task's audit trail and service-level counters after the fact.
package store

import (
	"context"
	"time"

	"github.com/secondlabor/laborhub/observe"
)

type ListQuery struct {
	Limit  int
	Offset int
}

type MetricsQuery struct {
	Since *time.Time
}

type MetricsSummary struct {
	TasksPublished   int64 `json:"tasksPublished"`
	TasksJoined      int64 `json:"tasksJoined"`
	UpdatesPosted    int64 `json:"updatesPosted"`
	TasksDelivered   int64 `json:"tasksDelivered"`
	DeliveryFailures int64 `json:"deliveryFailures"`
	TokenExchanges   int64 `json:"tokenExchanges"`
	TokenRefreshes   int64 `json:"tokenRefreshes"`
}

type Store interface {
	SaveEvent(ctx context.Context, event observe.Event) error
	ListEventsByTask(ctx context.Context, taskID string, query ListQuery) ([]observe.Event, error)
	ListEventsByWorker(ctx context.Context, workerID string, query ListQuery) ([]observe.Event, error)
	AggregateMetrics(ctx context.Context, query MetricsQuery) (MetricsSummary, error)
	Close() error
}
