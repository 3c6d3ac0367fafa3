package observe

// Constructors for the event shapes emitted by the service. Names are
// stable strings ("task.publish", "oauth.exchange", ...) so sinks and the
// trace store can aggregate on them.

func TaskEvent(name, taskID, workerID string, err error) Event {
	e := Event{
		Kind:     KindTask,
		Name:     name,
		TaskID:   taskID,
		WorkerID: workerID,
		Status:   StatusCompleted,
	}
	if err != nil {
		e.Status = StatusFailed
		e.Error = err.Error()
	}
	e.Normalize()
	return e
}

func DeliveryEvent(taskID, sessionID string, contentLen int, err error) Event {
	e := Event{
		Kind:      KindDelivery,
		Name:      "task.deliver",
		TaskID:    taskID,
		SessionID: sessionID,
		Status:    StatusCompleted,
		Attributes: map[string]any{
			"contentLength": contentLen,
		},
	}
	if err != nil {
		e.Status = StatusFailed
		e.Error = err.Error()
	}
	e.Normalize()
	return e
}

func OAuthEvent(name, source string, err error) Event {
	e := Event{
		Kind:   KindOAuth,
		Name:   name,
		Status: StatusCompleted,
		Attributes: map[string]any{
			"source": source,
		},
	}
	if err != nil {
		e.Status = StatusFailed
		e.Error = err.Error()
	}
	e.Normalize()
	return e
}

func GatewayEvent(name string, status int, durationMs int64, err error) Event {
	e := Event{
		Kind:       KindGateway,
		Name:       name,
		Status:     StatusCompleted,
		DurationMs: durationMs,
		Attributes: map[string]any{
			"httpStatus": status,
		},
	}
	if err != nil {
		e.Status = StatusFailed
		e.Error = err.Error()
	}
	e.Normalize()
	return e
}
