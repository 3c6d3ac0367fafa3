// Package task owns the task lifecycle: publish, join, update, deliver.
// Every transition is mirrored to the platform notes service before the
// mutated collection is persisted; a failed note call aborts the whole
// transition.
package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/secondlabor/laborhub/apperr"
	"github.com/secondlabor/laborhub/config"
	"github.com/secondlabor/laborhub/gateway"
	"github.com/secondlabor/laborhub/observe"
	"github.com/secondlabor/laborhub/prompt"
	"github.com/secondlabor/laborhub/store"
	"github.com/secondlabor/laborhub/types"
)

const (
	deliveryMode   = "ai-generated"
	deliveryEngine = "second-me"
)

// NoteSink mirrors a task transition to the platform notes service and
// returns the created note id.
type NoteSink interface {
	AddNote(ctx context.Context, title, content string) (string, error)
}

// Generator produces delivery content from a prompt, optionally resuming
// an earlier chat session.
type Generator interface {
	ChatStream(ctx context.Context, req gateway.ChatRequest) (gateway.ChatResult, error)
}

type Engine struct {
	store   store.Store
	notes   NoteSink
	chat    Generator
	catalog *config.Catalog
	sink    observe.Sink
	now     func() time.Time
}

type Option func(*Engine)

func WithSink(sink observe.Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(st store.Store, notes NoteSink, chat Generator, catalog *config.Catalog, opts ...Option) *Engine {
	e := &Engine{
		store:   st,
		notes:   notes,
		chat:    chat,
		catalog: catalog,
		sink:    observe.NoopSink{},
		now:     func() time.Time { return time.Now().UTC() },
	}
	if e.catalog == nil {
		e.catalog = config.DefaultCatalog()
	}
	prompt.RegisterBuiltins()
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type PublishRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	LaborType   string `json:"laborType"`
	RequesterAI string `json:"requesterAi"`
	Budget      string `json:"budget"`
	Deadline    string `json:"deadline"`
}

// Publish creates a task in status OPEN. The labor type is resolved
// against the catalog by id or display name; unmatched input becomes a
// custom labor type with no specialty constraint.
func (e *Engine) Publish(ctx context.Context, req PublishRequest) (types.Task, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	laborInput := strings.TrimSpace(req.LaborType)
	if title == "" {
		return types.Task{}, apperr.Validation("title is required")
	}
	if description == "" {
		return types.Task{}, apperr.Validation("description is required")
	}
	if laborInput == "" {
		return types.Task{}, apperr.Validation("laborType is required")
	}

	labor := e.catalog.Resolve(laborInput)
	now := e.now()
	t := types.Task{
		ID:            uuid.NewString(),
		Title:         title,
		Description:   description,
		LaborType:     labor.ID,
		LaborTypeName: labor.Name,
		RequesterAI:   strings.TrimSpace(req.RequesterAI),
		Budget:        strings.TrimSpace(req.Budget),
		Deadline:      strings.TrimSpace(req.Deadline),
		Status:        types.StatusOpen,
		Participants:  []string{},
		Updates:       []types.TaskUpdate{},
		Sync:          types.SyncState{Events: []types.SyncEvent{}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := e.syncTransition(ctx, &t, EventTaskCreated, nil, ""); err != nil {
		e.emit(ctx, observe.TaskEvent("task.publish", t.ID, "", err))
		return types.Task{}, err
	}

	col, err := e.store.Load(ctx)
	if err != nil {
		return types.Task{}, fmt.Errorf("load collection: %w", err)
	}
	col.Tasks = append(col.Tasks, t)
	if err := e.store.Save(ctx, col); err != nil {
		return types.Task{}, fmt.Errorf("persist collection: %w", err)
	}
	e.emit(ctx, observe.TaskEvent("task.publish", t.ID, "", nil))
	return t, nil
}

// Join adds a worker to a task's participants. Re-joining is a no-op
// that returns the task unchanged. The first join moves an OPEN task to
// IN_PROGRESS.
func (e *Engine) Join(ctx context.Context, taskID, workerID string) (types.Task, error) {
	col, err := e.store.Load(ctx)
	if err != nil {
		return types.Task{}, fmt.Errorf("load collection: %w", err)
	}
	t := col.FindTask(strings.TrimSpace(taskID))
	if t == nil {
		return types.Task{}, apperr.Validation("unknown task id %q", taskID)
	}
	w := col.FindWorker(strings.TrimSpace(workerID))
	if w == nil {
		return types.Task{}, apperr.Validation("unknown worker id %q", workerID)
	}
	if t.HasParticipant(w.ID) {
		return *t, nil
	}
	if !w.HasSpecialty(t.LaborType) {
		err := apperr.State("worker %s does not cover labor type %s", w.Name, t.LaborType)
		e.emit(ctx, observe.TaskEvent("task.join", t.ID, w.ID, err))
		return types.Task{}, err
	}

	t.Participants = append(t.Participants, w.ID)
	if t.Status.CanAdvanceTo(types.StatusInProgress) {
		t.Status = types.StatusInProgress
	}
	t.UpdatedAt = e.now()

	if err := e.syncTransition(ctx, t, EventWorkerJoined, w, ""); err != nil {
		e.emit(ctx, observe.TaskEvent("task.join", t.ID, w.ID, err))
		return types.Task{}, err
	}
	if err := e.store.Save(ctx, col); err != nil {
		return types.Task{}, fmt.Errorf("persist collection: %w", err)
	}
	e.emit(ctx, observe.TaskEvent("task.join", t.ID, w.ID, nil))
	return *t, nil
}

// AppendUpdate records a progress note from a participant. Status is
// unchanged.
func (e *Engine) AppendUpdate(ctx context.Context, taskID, workerID, message string) (types.Task, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return types.Task{}, apperr.Validation("update message is required")
	}
	col, err := e.store.Load(ctx)
	if err != nil {
		return types.Task{}, fmt.Errorf("load collection: %w", err)
	}
	t := col.FindTask(strings.TrimSpace(taskID))
	if t == nil {
		return types.Task{}, apperr.Validation("unknown task id %q", taskID)
	}
	w := col.FindWorker(strings.TrimSpace(workerID))
	if w == nil {
		return types.Task{}, apperr.Validation("unknown worker id %q", workerID)
	}
	if !t.HasParticipant(w.ID) {
		return types.Task{}, apperr.State("worker %s has not joined this task", w.Name)
	}

	now := e.now()
	t.Updates = append(t.Updates, types.TaskUpdate{
		ID:       uuid.NewString(),
		WorkerID: w.ID,
		Message:  message,
		At:       now,
	})
	t.UpdatedAt = now

	if err := e.syncTransition(ctx, t, EventTaskUpdate, w, message); err != nil {
		e.emit(ctx, observe.TaskEvent("task.update", t.ID, w.ID, err))
		return types.Task{}, err
	}
	if err := e.store.Save(ctx, col); err != nil {
		return types.Task{}, fmt.Errorf("persist collection: %w", err)
	}
	e.emit(ctx, observe.TaskEvent("task.update", t.ID, w.ID, nil))
	return *t, nil
}

// Deliver generates the final output for a task through the chat
// surface and records it. The caller must be a participant or the
// original requester. The chat session id is carried forward so a later
// re-delivery resumes the same conversation.
func (e *Engine) Deliver(ctx context.Context, taskID, workerID string) (types.Task, error) {
	col, err := e.store.Load(ctx)
	if err != nil {
		return types.Task{}, fmt.Errorf("load collection: %w", err)
	}
	t := col.FindTask(strings.TrimSpace(taskID))
	if t == nil {
		return types.Task{}, apperr.Validation("unknown task id %q", taskID)
	}
	w := col.FindWorker(strings.TrimSpace(workerID))
	if w == nil {
		return types.Task{}, apperr.Validation("unknown worker id %q", workerID)
	}
	if !t.HasParticipant(w.ID) && !isRequester(*t, *w) {
		return types.Task{}, apperr.State("worker %s has no standing to deliver this task", w.Name)
	}

	message, err := buildDeliveryMessage(&col, *t)
	if err != nil {
		return types.Task{}, fmt.Errorf("build delivery prompt: %w", err)
	}
	result, err := e.chat.ChatStream(ctx, gateway.ChatRequest{
		Message:      message,
		SystemPrompt: prompt.SystemFor(t.LaborType),
		SessionID:    t.Sync.SecondMeSessionID,
	})
	if err != nil {
		e.emit(ctx, observe.DeliveryEvent(t.ID, t.Sync.SecondMeSessionID, 0, err))
		return types.Task{}, err
	}
	content := strings.TrimSpace(result.Content)
	if content == "" {
		err := apperr.Upstream(nil, "delivery generation returned empty content")
		e.emit(ctx, observe.DeliveryEvent(t.ID, result.SessionID, 0, err))
		return types.Task{}, err
	}

	now := e.now()
	t.Delivery = &types.Delivery{
		Mode:      deliveryMode,
		Engine:    deliveryEngine,
		Content:   content,
		SessionID: result.SessionID,
		CreatedAt: now,
	}
	if result.SessionID != "" {
		t.Sync.SecondMeSessionID = result.SessionID
	}
	if t.Status.CanAdvanceTo(types.StatusDelivered) {
		t.Status = types.StatusDelivered
	}
	t.UpdatedAt = now

	if err := e.syncTransition(ctx, t, EventTaskDelivered, w, ""); err != nil {
		e.emit(ctx, observe.DeliveryEvent(t.ID, result.SessionID, len(content), err))
		return types.Task{}, err
	}
	if err := e.store.Save(ctx, col); err != nil {
		return types.Task{}, fmt.Errorf("persist collection: %w", err)
	}
	e.emit(ctx, observe.DeliveryEvent(t.ID, result.SessionID, len(content), nil))
	return *t, nil
}

func (e *Engine) Get(ctx context.Context, taskID string) (types.Task, error) {
	col, err := e.store.Load(ctx)
	if err != nil {
		return types.Task{}, fmt.Errorf("load collection: %w", err)
	}
	t := col.FindTask(strings.TrimSpace(taskID))
	if t == nil {
		return types.Task{}, apperr.Validation("unknown task id %q", taskID)
	}
	return *t, nil
}

func (e *Engine) List(ctx context.Context) ([]types.Task, error) {
	col, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load collection: %w", err)
	}
	if col.Tasks == nil {
		return []types.Task{}, nil
	}
	return col.Tasks, nil
}

func isRequester(t types.Task, w types.Worker) bool {
	return t.RequesterAI != "" && strings.EqualFold(t.RequesterAI, w.Name)
}

func (e *Engine) emit(ctx context.Context, event observe.Event) {
	if e.sink == nil {
		return
	}
	_ = e.sink.Emit(ctx, event)
}
