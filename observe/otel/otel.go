// Package otel bridges observe.Sink to OpenTelemetry tracing so task
// transitions, token operations, and upstream calls appear as spans in
// any OpenTelemetry-compatible backend.
package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/secondlabor/laborhub/observe"
)

const instrumentationName = "github.com/secondlabor/laborhub"

// Sink implements observe.Sink by emitting OpenTelemetry spans.
type Sink struct {
	tracer trace.Tracer
}

// NewSink creates an OTel sink using the given TracerProvider. If tp is
// nil, a noop tracer provider is used.
func NewSink(tp trace.TracerProvider) *Sink {
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return &Sink{
		tracer: tp.Tracer(instrumentationName),
	}
}

// Emit converts an observe.Event into an OTel span.
func (s *Sink) Emit(_ context.Context, event observe.Event) error {
	event.Normalize()

	startTime := event.Timestamp
	_, span := s.tracer.Start(context.Background(), spanNameFor(event), trace.WithTimestamp(startTime))

	attrs := []attribute.KeyValue{
		attribute.String("labor.event.kind", string(event.Kind)),
		attribute.String("labor.event.status", string(event.Status)),
	}
	if event.TaskID != "" {
		attrs = append(attrs, attribute.String("labor.task.id", event.TaskID))
	}
	if event.WorkerID != "" {
		attrs = append(attrs, attribute.String("labor.worker.id", event.WorkerID))
	}
	if event.SessionID != "" {
		attrs = append(attrs, attribute.String("labor.session.id", event.SessionID))
	}
	if event.Name != "" {
		attrs = append(attrs, attribute.String("labor.event.name", event.Name))
	}
	if event.Message != "" {
		attrs = append(attrs, attribute.String("labor.message", truncate(event.Message, 1024)))
	}
	if event.DurationMs > 0 {
		attrs = append(attrs, attribute.Int64("labor.duration_ms", event.DurationMs))
	}
	for k, v := range event.Attributes {
		attrs = append(attrs, attribute.String("labor.attr."+k, fmt.Sprintf("%v", v)))
	}
	span.SetAttributes(attrs...)

	if event.Status == observe.StatusFailed {
		span.SetStatus(codes.Error, event.Error)
		if event.Error != "" {
			span.RecordError(fmt.Errorf("%s", event.Error))
		}
	} else if event.Status == observe.StatusCompleted {
		span.SetStatus(codes.Ok, "")
	}

	endTime := startTime
	if event.DurationMs > 0 {
		endTime = startTime.Add(time.Duration(event.DurationMs) * time.Millisecond)
	}
	span.End(trace.WithTimestamp(endTime))
	return nil
}

func spanNameFor(event observe.Event) string {
	if event.Name != "" {
		return "labor." + event.Name
	}
	switch event.Kind {
	case observe.KindTask:
		return "labor.task"
	case observe.KindWorker:
		return "labor.worker"
	case observe.KindOAuth:
		return "labor.oauth"
	case observe.KindGateway:
		return "labor.gateway"
	case observe.KindDelivery:
		return "labor.delivery"
	default:
		return "labor.event"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
