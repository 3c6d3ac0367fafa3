package httpapi

import (
	"net/http"
	"strings"

	"github.com/secondlabor/laborhub/apperr"
	"github.com/secondlabor/laborhub/observe"
	auditstore "github.com/secondlabor/laborhub/observe/store"
	"github.com/secondlabor/laborhub/task"
)

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tasks, err := s.cfg.Engine.List(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	case http.MethodPost:
		var req task.PublishRequest
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		created, err := s.cfg.Engine.Publish(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		writeMethodNotAllowed(w)
	}
}

// handleTaskSubresources routes /api/v1/tasks/{id}[/{action}].
func (s *Server) handleTaskSubresources(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/tasks/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeErr(w, apperr.Validation("task id is required"))
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		t, err := s.cfg.Engine.Get(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	case "join":
		s.handleTaskJoin(w, r, id)
	case "updates":
		s.handleTaskUpdate(w, r, id)
	case "deliver":
		s.handleTaskDeliver(w, r, id)
	case "events":
		s.handleTaskEvents(w, r, id)
	default:
		writeErr(w, apperr.Validation("unsupported task endpoint %q", action))
	}
}

func (s *Server) handleTaskJoin(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	me, err := s.cfg.Workers.EnsureFromSession(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	t, err := s.cfg.Engine.Join(r.Context(), id, me.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	me, err := s.cfg.Workers.EnsureFromSession(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	t, err := s.cfg.Engine.AppendUpdate(r.Context(), id, me.ID, req.Message)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskDeliver(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	me, err := s.cfg.Workers.EnsureFromSession(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	t, err := s.cfg.Engine.Deliver(r.Context(), id, me.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskEvents(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	if s.cfg.Audit == nil {
		writeJSON(w, http.StatusOK, []observe.Event{})
		return
	}
	events, err := s.cfg.Audit.ListEventsByTask(r.Context(), id, auditstore.ListQuery{})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
