package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/secondlabor/laborhub/apperr"
	"github.com/secondlabor/laborhub/gateway"
	"github.com/secondlabor/laborhub/types"
)

type memStore struct {
	mu    sync.Mutex
	col   types.Collection
	saves int
}

func (m *memStore) Load(ctx context.Context) (types.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyCollection(m.col), nil
}

func (m *memStore) Save(ctx context.Context, col types.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.col = copyCollection(col)
	m.saves++
	return nil
}

func (m *memStore) Close() error { return nil }

func copyCollection(col types.Collection) types.Collection {
	raw, err := json.Marshal(col)
	if err != nil {
		panic(err)
	}
	var out types.Collection
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}

type noteCall struct {
	Title   string
	Content string
}

type fakeNotes struct {
	calls []noteCall
	err   error
}

func (f *fakeNotes) AddNote(ctx context.Context, title, content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, noteCall{Title: title, Content: content})
	return fmt.Sprintf("note-%d", len(f.calls)), nil
}

type fakeChat struct {
	reqs   []gateway.ChatRequest
	result gateway.ChatResult
	err    error
}

func (f *fakeChat) ChatStream(ctx context.Context, req gateway.ChatRequest) (gateway.ChatResult, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return gateway.ChatResult{}, f.err
	}
	return f.result, nil
}

func seedWorker(st *memStore, id, name string, specialties ...string) {
	if specialties == nil {
		specialties = []string{}
	}
	st.col.Workers = append(st.col.Workers, types.Worker{
		ID:           id,
		SecondUserID: "su-" + id,
		Name:         name,
		Specialties:  specialties,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	})
}

func newTestEngine() (*Engine, *memStore, *fakeNotes, *fakeChat) {
	st := &memStore{}
	notes := &fakeNotes{}
	chat := &fakeChat{result: gateway.ChatResult{Content: "final deliverable", SessionID: "sess-9"}}
	eng := NewEngine(st, notes, chat, nil)
	return eng, st, notes, chat
}

func TestPublishRoundTrip(t *testing.T) {
	eng, _, notes, _ := newTestEngine()
	ctx := context.Background()

	created, err := eng.Publish(ctx, PublishRequest{
		Title:       "Retouch catalog shots",
		Description: "Clean up 12 product photos.",
		LaborType:   "Studio Retouch",
		RequesterAI: "orchestrator",
		Budget:      "40 credits",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if created.Status != types.StatusOpen {
		t.Fatalf("expected OPEN, got %s", created.Status)
	}
	if created.LaborType != "studio-retouch" || created.LaborTypeName != "Studio Retouch" {
		t.Fatalf("labor type not resolved: %q / %q", created.LaborType, created.LaborTypeName)
	}
	if len(created.Sync.Events) != 1 || created.Sync.Events[0].EventType != EventTaskCreated {
		t.Fatalf("expected one task_created sync event, got %+v", created.Sync.Events)
	}
	if created.Sync.Events[0].NoteID == "" {
		t.Fatalf("sync event missing note id")
	}
	if len(notes.calls) != 1 {
		t.Fatalf("expected one note call, got %d", len(notes.calls))
	}

	list, err := eng.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 task, got %d", len(list))
	}
	got := list[0]
	if got.ID != created.ID || got.LaborTypeName != created.LaborTypeName || got.Status != created.Status {
		t.Fatalf("round-trip mismatch: %+v vs %+v", got, created)
	}
}

func TestPublishValidation(t *testing.T) {
	eng, st, notes, _ := newTestEngine()
	ctx := context.Background()

	cases := []PublishRequest{
		{Description: "d", LaborType: "translation"},
		{Title: "t", LaborType: "translation"},
		{Title: "t", Description: "d"},
		{Title: "  ", Description: "d", LaborType: "translation"},
	}
	for _, req := range cases {
		_, err := eng.Publish(ctx, req)
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Status != 400 {
			t.Fatalf("expected 400 validation error for %+v, got %v", req, err)
		}
	}
	if len(notes.calls) != 0 || st.saves != 0 {
		t.Fatalf("validation failures must not sync or persist")
	}
}

func TestPublishSyncFailureAbortsPersist(t *testing.T) {
	eng, st, notes, _ := newTestEngine()
	notes.err = errors.New("note service down")
	ctx := context.Background()

	_, err := eng.Publish(ctx, PublishRequest{Title: "t", Description: "d", LaborType: "translation"})
	if err == nil {
		t.Fatalf("expected sync failure to surface")
	}
	if st.saves != 0 {
		t.Fatalf("task must not persist after failed sync")
	}
	list, err := eng.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty task list, got %d", len(list))
	}
}

func TestPublishSynthesizesCustomLaborType(t *testing.T) {
	eng, _, _, _ := newTestEngine()

	created, err := eng.Publish(context.Background(), PublishRequest{
		Title:       "Sprite sheet",
		Description: "16x16 character walk cycle.",
		LaborType:   "pixel art",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if created.LaborType != "custom:pixel-art" {
		t.Fatalf("expected custom labor id, got %q", created.LaborType)
	}
	if created.LaborTypeName != "Pixel Art" {
		t.Fatalf("expected titled name, got %q", created.LaborTypeName)
	}
}

func TestJoinTransitionsAndIsIdempotent(t *testing.T) {
	eng, st, notes, _ := newTestEngine()
	seedWorker(st, "w1", "lexi", "studio-retouch")
	ctx := context.Background()

	created, err := eng.Publish(ctx, PublishRequest{Title: "t", Description: "d", LaborType: "studio-retouch"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	joined, err := eng.Join(ctx, created.ID, "w1")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Status != types.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS after first join, got %s", joined.Status)
	}
	if len(joined.Participants) != 1 || joined.Participants[0] != "w1" {
		t.Fatalf("unexpected participants %v", joined.Participants)
	}
	if len(joined.Sync.Events) != 2 || joined.Sync.Events[1].EventType != EventWorkerJoined {
		t.Fatalf("expected worker_joined sync event, got %+v", joined.Sync.Events)
	}

	notesBefore := len(notes.calls)
	again, err := eng.Join(ctx, created.ID, "w1")
	if err != nil {
		t.Fatalf("re-join: %v", err)
	}
	if len(again.Participants) != 1 || len(again.Sync.Events) != 2 || again.Status != joined.Status {
		t.Fatalf("re-join must be a no-op, got %+v", again)
	}
	if len(notes.calls) != notesBefore {
		t.Fatalf("re-join must not fire a sync event")
	}
}

func TestJoinSpecialtyGate(t *testing.T) {
	eng, st, _, _ := newTestEngine()
	seedWorker(st, "w1", "lexi", "studio-retouch")
	ctx := context.Background()

	retouch, err := eng.Publish(ctx, PublishRequest{Title: "t", Description: "d", LaborType: "copy-editing"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	_, err = eng.Join(ctx, retouch.ID, "w1")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Status != 400 {
		t.Fatalf("expected specialty mismatch to be a 400 state error, got %v", err)
	}

	custom, err := eng.Publish(ctx, PublishRequest{Title: "t", Description: "d", LaborType: "pixel art"})
	if err != nil {
		t.Fatalf("publish custom: %v", err)
	}
	joined, err := eng.Join(ctx, custom.ID, "w1")
	if err != nil {
		t.Fatalf("custom labor types must accept any worker: %v", err)
	}
	if joined.Status != types.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", joined.Status)
	}
}

func TestAppendUpdateRequiresParticipation(t *testing.T) {
	eng, st, _, _ := newTestEngine()
	seedWorker(st, "w1", "lexi", "translation")
	seedWorker(st, "w2", "remy", "translation")
	ctx := context.Background()

	created, err := eng.Publish(ctx, PublishRequest{Title: "t", Description: "d", LaborType: "translation"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := eng.Join(ctx, created.ID, "w1"); err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err = eng.AppendUpdate(ctx, created.ID, "w2", "half done")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Status != 400 {
		t.Fatalf("expected non-participant update to fail, got %v", err)
	}

	updated, err := eng.AppendUpdate(ctx, created.ID, "w1", "half done")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Updates) != 1 || updated.Updates[0].Message != "half done" {
		t.Fatalf("update not recorded: %+v", updated.Updates)
	}
	if updated.Status != types.StatusInProgress {
		t.Fatalf("updates must not change status, got %s", updated.Status)
	}
	if updated.Sync.Events[len(updated.Sync.Events)-1].EventType != EventTaskUpdate {
		t.Fatalf("expected task_update sync event, got %+v", updated.Sync.Events)
	}

	_, err = eng.AppendUpdate(ctx, created.ID, "w1", "   ")
	if !errors.As(err, &appErr) || appErr.Status != 400 {
		t.Fatalf("expected empty message to fail validation, got %v", err)
	}
}

func TestDeliverRecordsDeliveryAndCarriesSession(t *testing.T) {
	eng, st, _, chat := newTestEngine()
	seedWorker(st, "w1", "lexi", "translation")
	ctx := context.Background()

	created, err := eng.Publish(ctx, PublishRequest{
		Title:       "Translate launch post",
		Description: "Translate the announcement to French.",
		LaborType:   "translation",
		Budget:      "40 credits",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := eng.Join(ctx, created.ID, "w1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := eng.AppendUpdate(ctx, created.ID, "w1", "glossary agreed"); err != nil {
		t.Fatalf("update: %v", err)
	}

	delivered, err := eng.Deliver(ctx, created.ID, "w1")
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.Status != types.StatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", delivered.Status)
	}
	if delivered.Delivery == nil || delivered.Delivery.Content != "final deliverable" {
		t.Fatalf("delivery not recorded: %+v", delivered.Delivery)
	}
	if delivered.Delivery.Mode != deliveryMode || delivered.Delivery.Engine != deliveryEngine {
		t.Fatalf("unexpected delivery provenance: %+v", delivered.Delivery)
	}
	if delivered.Sync.SecondMeSessionID != "sess-9" {
		t.Fatalf("session id not carried forward: %q", delivered.Sync.SecondMeSessionID)
	}
	if delivered.Sync.Events[len(delivered.Sync.Events)-1].EventType != EventTaskDelivered {
		t.Fatalf("expected task_delivered sync event, got %+v", delivered.Sync.Events)
	}

	if len(chat.reqs) != 1 {
		t.Fatalf("expected one chat call, got %d", len(chat.reqs))
	}
	first := chat.reqs[0]
	if first.SessionID != "" {
		t.Fatalf("first delivery must start a fresh session, got %q", first.SessionID)
	}
	for _, want := range []string{"Translate launch post", "Translation", "40 credits", "lexi", "glossary agreed"} {
		if !strings.Contains(first.Message, want) {
			t.Fatalf("prompt missing %q:\n%s", want, first.Message)
		}
	}
	if first.SystemPrompt == "" {
		t.Fatalf("expected a system prompt for the labor type")
	}

	// Re-delivery resumes the recorded session.
	if _, err := eng.Deliver(ctx, created.ID, "w1"); err != nil {
		t.Fatalf("second deliver: %v", err)
	}
	if chat.reqs[1].SessionID != "sess-9" {
		t.Fatalf("expected session continuity, got %q", chat.reqs[1].SessionID)
	}
}

func TestDeliverEmptyContentLeavesTaskUntouched(t *testing.T) {
	eng, st, _, chat := newTestEngine()
	seedWorker(st, "w1", "lexi", "translation")
	chat.result = gateway.ChatResult{Content: "   "}
	ctx := context.Background()

	created, err := eng.Publish(ctx, PublishRequest{Title: "t", Description: "d", LaborType: "translation"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := eng.Join(ctx, created.ID, "w1"); err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err = eng.Deliver(ctx, created.ID, "w1")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Status != 502 {
		t.Fatalf("expected 502 upstream error, got %v", err)
	}

	got, err := eng.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != types.StatusInProgress {
		t.Fatalf("failed delivery must not change status, got %s", got.Status)
	}
	if got.Delivery != nil {
		t.Fatalf("failed delivery must not record content: %+v", got.Delivery)
	}
}

func TestDeliverStanding(t *testing.T) {
	eng, st, _, _ := newTestEngine()
	seedWorker(st, "w1", "lexi", "translation")
	seedWorker(st, "w2", "Orchestrator")
	seedWorker(st, "w3", "bystander")
	ctx := context.Background()

	created, err := eng.Publish(ctx, PublishRequest{
		Title:       "t",
		Description: "d",
		LaborType:   "translation",
		RequesterAI: "orchestrator",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := eng.Join(ctx, created.ID, "w1"); err != nil {
		t.Fatalf("join: %v", err)
	}

	_, err = eng.Deliver(ctx, created.ID, "w3")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Status != 400 {
		t.Fatalf("expected standing check to fail, got %v", err)
	}

	// The original requester may deliver without joining.
	if _, err := eng.Deliver(ctx, created.ID, "w2"); err != nil {
		t.Fatalf("requester delivery: %v", err)
	}
}
