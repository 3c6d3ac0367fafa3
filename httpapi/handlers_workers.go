package httpapi

import (
	"net/http"

	auditstore "github.com/secondlabor/laborhub/observe/store"
	"github.com/secondlabor/laborhub/worker"
)

func (s *Server) handleWorkerMe(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		me, err := s.cfg.Workers.EnsureFromSession(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, me)
	case http.MethodPatch:
		var req worker.PatchRequest
		if err := decodeBody(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		me, err := s.cfg.Workers.Patch(r.Context(), req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, me)
	default:
		writeMethodNotAllowed(w)
	}
}

func (s *Server) handleLaborTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Catalog.Entries())
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	if s.cfg.Audit == nil {
		writeJSON(w, http.StatusOK, auditstore.MetricsSummary{})
		return
	}
	metrics, err := s.cfg.Audit.AggregateMetrics(r.Context(), auditstore.MetricsQuery{})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
