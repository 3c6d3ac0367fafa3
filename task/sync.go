package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/secondlabor/laborhub/types"
)

// Sync event types recorded in a task's audit trail. Each corresponds
// to one note created on the platform.
const (
	EventTaskCreated   = "task_created"
	EventWorkerJoined  = "worker_joined"
	EventTaskUpdate    = "task_update"
	EventTaskDelivered = "task_delivered"
)

// syncTransition mirrors a transition to the notes service and, only on
// success, appends the sync event to the task. Callers must not persist
// the task when this returns an error.
func (e *Engine) syncTransition(ctx context.Context, t *types.Task, eventType string, w *types.Worker, extra string) error {
	title, content := noteFor(eventType, *t, w, extra)
	noteID, err := e.notes.AddNote(ctx, title, content)
	if err != nil {
		return fmt.Errorf("sync %s: %w", eventType, err)
	}
	t.Sync.Events = append(t.Sync.Events, types.SyncEvent{
		EventType: eventType,
		NoteID:    noteID,
		Title:     title,
		At:        e.now(),
	})
	return nil
}

func noteFor(eventType string, t types.Task, w *types.Worker, extra string) (title, content string) {
	workerName := ""
	if w != nil {
		workerName = w.Name
	}
	switch eventType {
	case EventTaskCreated:
		title = fmt.Sprintf("Task published: %s", t.Title)
		lines := []string{
			fmt.Sprintf("Labor type: %s", t.LaborTypeName),
			fmt.Sprintf("Description: %s", t.Description),
		}
		if t.RequesterAI != "" {
			lines = append(lines, fmt.Sprintf("Requested by: %s", t.RequesterAI))
		}
		if t.Budget != "" {
			lines = append(lines, fmt.Sprintf("Budget: %s", t.Budget))
		}
		if t.Deadline != "" {
			lines = append(lines, fmt.Sprintf("Deadline: %s", t.Deadline))
		}
		content = strings.Join(lines, "\n")
	case EventWorkerJoined:
		title = fmt.Sprintf("Worker joined: %s", t.Title)
		content = fmt.Sprintf("%s joined the task (%s). Status: %s.", workerName, t.LaborTypeName, t.Status)
	case EventTaskUpdate:
		title = fmt.Sprintf("Task update: %s", t.Title)
		content = fmt.Sprintf("%s: %s", workerName, extra)
	case EventTaskDelivered:
		title = fmt.Sprintf("Task delivered: %s", t.Title)
		body := ""
		if t.Delivery != nil {
			body = t.Delivery.Content
		}
		content = fmt.Sprintf("Delivered by %s.\n\n%s", workerName, body)
	default:
		title = fmt.Sprintf("Task event: %s", t.Title)
		content = extra
	}
	return title, content
}
