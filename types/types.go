package types

import (
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task. Transitions only move
// forward: OPEN -> IN_PROGRESS -> DELIVERED.
type TaskStatus string

const (
	StatusOpen       TaskStatus = "OPEN"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDelivered  TaskStatus = "DELIVERED"
)

// CanAdvanceTo reports whether the status may move to next without
// regressing.
func (s TaskStatus) CanAdvanceTo(next TaskStatus) bool {
	return s.rank() < next.rank()
}

func (s TaskStatus) rank() int {
	switch s {
	case StatusOpen:
		return 1
	case StatusInProgress:
		return 2
	case StatusDelivered:
		return 3
	default:
		return 0
	}
}

// CustomLaborPrefix marks labor types synthesized from free-form input
// rather than resolved against the catalog. Custom types place no
// specialty constraint on joining workers.
const CustomLaborPrefix = "custom:"

func IsCustomLaborType(id string) bool {
	return strings.HasPrefix(id, CustomLaborPrefix)
}

// MaxSpecialties bounds a worker's specialty set.
const MaxSpecialties = 12

type Worker struct {
	ID           string    `json:"id"`
	SecondUserID string    `json:"secondUserId"`
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	Specialties  []string  `json:"specialties"`
	Persona      string    `json:"persona,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasSpecialty reports whether the worker's specialty set covers the
// given labor type id. Custom labor types are unconstrained.
func (w Worker) HasSpecialty(laborType string) bool {
	if IsCustomLaborType(laborType) {
		return true
	}
	for _, s := range w.Specialties {
		if s == laborType {
			return true
		}
	}
	return false
}

type TaskUpdate struct {
	ID       string    `json:"id"`
	WorkerID string    `json:"workerId"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

type Delivery struct {
	Mode      string    `json:"mode"`
	Engine    string    `json:"engine"`
	Content   string    `json:"content"`
	SessionID string    `json:"sessionId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SyncEvent records one task-state transition mirrored to the upstream
// notes service. NoteID is the identifier returned by that call; a
// transition without a successful note call is never persisted.
type SyncEvent struct {
	EventType string    `json:"eventType"`
	NoteID    string    `json:"noteId"`
	Title     string    `json:"title"`
	At        time.Time `json:"at"`
}

type SyncState struct {
	Events            []SyncEvent `json:"events"`
	SecondMeSessionID string      `json:"secondMeSessionId,omitempty"`
}

type Task struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	LaborType     string       `json:"laborType"`
	LaborTypeName string       `json:"laborTypeName"`
	RequesterAI   string       `json:"requesterAi,omitempty"`
	Budget        string       `json:"budget,omitempty"`
	Deadline      string       `json:"deadline,omitempty"`
	Status        TaskStatus   `json:"status"`
	Participants  []string     `json:"participants"`
	Updates       []TaskUpdate `json:"updates"`
	Delivery      *Delivery    `json:"delivery"`
	Sync          SyncState    `json:"sync"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// HasParticipant reports whether the worker id already joined the task.
func (t Task) HasParticipant(workerID string) bool {
	for _, id := range t.Participants {
		if id == workerID {
			return true
		}
	}
	return false
}

// LaborType is one entry of the known labor catalog.
type LaborType struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Collection is the whole persisted document. Stores load and save it
// wholesale; there is no partial-document update primitive, so the last
// writer's snapshot wins on concurrent mutation.
type Collection struct {
	Workers []Worker `json:"workers"`
	Tasks   []Task   `json:"tasks"`
}

// FindTask returns a pointer into the collection's task slice, or nil.
func (c *Collection) FindTask(id string) *Task {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return &c.Tasks[i]
		}
	}
	return nil
}

// FindWorker returns a pointer into the collection's worker slice, or nil.
func (c *Collection) FindWorker(id string) *Worker {
	for i := range c.Workers {
		if c.Workers[i].ID == id {
			return &c.Workers[i]
		}
	}
	return nil
}

// FindWorkerBySecondUser resolves a worker by its upstream platform user id.
func (c *Collection) FindWorkerBySecondUser(secondUserID string) *Worker {
	for i := range c.Workers {
		if c.Workers[i].SecondUserID == secondUserID {
			return &c.Workers[i]
		}
	}
	return nil
}
