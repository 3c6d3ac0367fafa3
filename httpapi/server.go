// Package httpapi exposes the coordination service over HTTP. Handlers
// are thin: they bind the request session, decode the payload, call the
// owning service, and serialize the result.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/secondlabor/laborhub/apperr"
	"github.com/secondlabor/laborhub/authctx"
	"github.com/secondlabor/laborhub/config"
	"github.com/secondlabor/laborhub/gateway"
	"github.com/secondlabor/laborhub/oauth"
	"github.com/secondlabor/laborhub/observe"
	auditstore "github.com/secondlabor/laborhub/observe/store"
	"github.com/secondlabor/laborhub/task"
	"github.com/secondlabor/laborhub/worker"
)

type Config struct {
	Addr    string
	Engine  *task.Engine
	Workers *worker.Service
	OAuth   *oauth.Service
	Catalog *config.Catalog
	Audit   auditstore.Store
	Sink    observe.Sink
}

type Server struct {
	cfg  Config
	mux  *http.ServeMux
	http *http.Server
	once sync.Once
}

func NewServer(cfg Config) *Server {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:8090"
	}
	if cfg.Catalog == nil {
		cfg.Catalog = config.DefaultCatalog()
	}
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
	}
	s.registerRoutes()
	s.http = &http.Server{Addr: cfg.Addr, Handler: s.Handler()}
	return s
}

// Handler returns the routing handler with the session-binding
// middleware applied. Every request carries its own immutable cookie
// snapshot; concurrent requests never observe each other's tokens.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := authctx.FromRequest(r)
		ctx := authctx.WithSession(r.Context(), session)
		s.mux.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("server is nil")
	}
	errCh := make(chan error, 1)
	go func() {
		err := s.http.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		log.Println("shutdown signal received, gracefully stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			log.Printf("http shutdown error: %v", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	var outErr error
	s.once.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		outErr = s.http.Shutdown(shutdownCtx)
	})
	return outErr
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/v1/oauth/authorize-url", s.handleAuthorizeURL)
	s.mux.HandleFunc("/api/v1/oauth/exchange", s.handleExchange)
	s.mux.HandleFunc("/api/v1/oauth/refresh", s.handleRefresh)
	s.mux.HandleFunc("/api/v1/oauth/token", s.handleManualToken)

	s.mux.HandleFunc("/api/v1/workers/me", s.handleWorkerMe)
	s.mux.HandleFunc("/api/v1/labor-types", s.handleLaborTypes)

	s.mux.HandleFunc("/api/v1/tasks", s.handleTasks)
	s.mux.HandleFunc("/api/v1/tasks/", s.handleTaskSubresources)

	s.mux.HandleFunc("/api/v1/metrics/summary", s.handleMetrics)
	s.mux.HandleFunc("/api/v1/healthz", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, &apperr.Error{
		Status:  http.StatusMethodNotAllowed,
		Message: "method not allowed",
	})
}

func (s *Server) emit(ctx context.Context, event observe.Event) {
	if s.cfg.Sink == nil {
		return
	}
	_ = s.cfg.Sink.Emit(ctx, event)
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Validation("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeErr maps the error taxonomy to a response. Structured errors are
// serialized as {code, message, details}; upstream failures become 502
// with the upstream status and body as details; anything else is logged
// and reported as a bare 500.
func writeErr(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, appErr)
		return
	}
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		writeJSON(w, http.StatusBadGateway, apperr.Upstream(map[string]any{
			"upstreamStatus": gwErr.Status,
			"upstreamBody":   upstreamBody(gwErr),
		}, "upstream call failed"))
		return
	}
	log.Printf("internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, &apperr.Error{
		Status:  http.StatusInternalServerError,
		Message: "internal error",
	})
}

func upstreamBody(e *gateway.Error) any {
	if e.Body != nil {
		return e.Body
	}
	raw := e.Raw
	if len(raw) > 1000 {
		raw = raw[:1000]
	}
	return raw
}
