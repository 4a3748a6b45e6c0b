// Package httpapi exposes the chat pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/chat"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

// ChatService is the pipeline surface the API serves.
type ChatService interface {
	Answer(ctx context.Context, query, sessionID string) (chat.Result, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

// ReadinessProbe reports whether the service can answer queries.
type ReadinessProbe interface {
	IsReady(ctx context.Context) bool
}

// Server routes chat requests to the pipeline.
type Server struct {
	service ChatService
	ready   ReadinessProbe
	metrics http.Handler
	logger  *slog.Logger
	router  chi.Router
}

// NewServer builds the HTTP surface. metricsHandler may be nil to
// disable the /metrics endpoint.
func NewServer(service ChatService, ready ReadinessProbe, metricsHandler http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		service: service,
		ready:   ready,
		metrics: metricsHandler,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/chat/clear", s.handleClear)
	})

	s.router = r
	return s
}

// Handler returns the routed handler for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Answer     string `json:"answer"`
	Intent     string `json:"intent"`
	ChunksUsed int    `json:"chunks_used"`
	SessionID  string `json:"session_id"`
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	result, err := s.service.Answer(r.Context(), req.Query, req.SessionID)
	if err != nil {
		s.writeFault(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Answer:     result.Answer,
		Intent:     result.Intent,
		ChunksUsed: result.ChunksUsed,
		SessionID:  req.SessionID,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.service.ClearHistory(r.Context(), req.SessionID); err != nil {
		s.writeFault(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil && !s.ready.IsReady(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeFault maps the error taxonomy onto HTTP status codes. Internal
// detail stays in the log; the client sees a generic message.
func (s *Server) writeFault(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, context.Canceled):
		status = 499 // client closed request
		msg = "request canceled"
	case fault.IsKind(err, fault.KindNotReady):
		status = http.StatusServiceUnavailable
		msg = "knowledge base is not ready"
	}
	s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
