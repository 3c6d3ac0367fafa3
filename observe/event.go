// Package observe defines the event model used to audit task lifecycle
// transitions, token operations, and upstream calls, plus the sinks that
// carry those events to logs, OpenTelemetry, or the trace store.
package observe

import "time"

type Kind string

type Status string

const (
	KindTask     Kind = "task"
	KindWorker   Kind = "worker"
	KindOAuth    Kind = "oauth"
	KindGateway  Kind = "gateway"
	KindDelivery Kind = "delivery"
	KindCustom   Kind = "custom"
)

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Event struct {
	ID         string         `json:"id,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	TaskID     string         `json:"taskId,omitempty"`
	WorkerID   string         `json:"workerId,omitempty"`
	SessionID  string         `json:"sessionId,omitempty"`
	Kind       Kind           `json:"kind"`
	Status     Status         `json:"status,omitempty"`
	Name       string         `json:"name,omitempty"`
	Message    string         `json:"message,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"durationMs,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

func (e *Event) Normalize() {
	if e == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Kind == "" {
		e.Kind = KindCustom
	}
	if e.Status == "" {
		e.Status = StatusCompleted
	}
	if e.Attributes == nil {
		e.Attributes = map[string]any{}
	}
}
