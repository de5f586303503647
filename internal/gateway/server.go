// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway is the HTTP surface of the gateway: a chat endpoint that
// drives the question pipeline, analytics endpoints over the question log,
// and the MCP protocol mount.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/pride-gateway/internal/analytics"
	"github.com/pdiddy/pride-gateway/internal/mcp"
	"github.com/pdiddy/pride-gateway/internal/notify"
	"github.com/pdiddy/pride-gateway/internal/pipeline"
	"github.com/pdiddy/pride-gateway/pkg/types"
)

// Server wires the pipeline, analytics store, and notifier behind HTTP
// handlers. Analytics and Notifier are optional; a nil store disables
// question logging, a nil notifier disables webhooks.
type Server struct {
	Pipeline  *pipeline.Pipeline
	Analytics *analytics.Store
	Notifier  *notify.Notifier
	MCP       *mcp.Server
	Version   string
	Cfg       types.ServerConfig
}

type chatRequest struct {
	Question  string `json:"question"`
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Response       string   `json:"response"`
	Intent         string   `json:"intent"`
	ToolsCalled    []string `json:"tools_called"`
	ResponseTimeMS int64    `json:"response_time_ms"`
	SessionID      string   `json:"session_id"`
	Success        bool     `json:"success"`
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/questions", s.handleQuestions)
	mux.HandleFunc("/api/analytics", s.handleAnalytics)
	mux.HandleFunc("/api/health", s.handleHealth)
	if s.MCP != nil {
		mux.Handle("/mcp/", s.MCP)
		mux.Handle("/mcp", s.MCP)
	}
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully with a
// ten second drain window.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Cfg.Host, s.Cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("gateway listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down gateway: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("gateway server: %w", err)
		}
		return nil
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		httpError(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	result := s.Pipeline.Run(r.Context(), req.Question)

	s.record(r.Context(), req, result)

	writeJSON(w, http.StatusOK, chatResponse{
		Response:       result.FinalResponse,
		Intent:         result.Intent,
		ToolsCalled:    result.ToolsCalled,
		ResponseTimeMS: result.Duration.Milliseconds(),
		SessionID:      req.SessionID,
		Success:        result.Success,
	})
}

// record logs the question to analytics and fires the webhook. Both are
// best-effort: failures are logged, never surfaced to the client.
func (s *Server) record(ctx context.Context, req chatRequest, result types.PipelineResult) {
	if s.Analytics != nil {
		rec := analytics.Record{
			Question:       req.Question,
			UserID:         req.UserID,
			SessionID:      req.SessionID,
			Timestamp:      time.Now().UTC(),
			ResponseTimeMS: result.Duration.Milliseconds(),
			ToolsCalled:    result.ToolsCalled,
			ResponseLength: len(result.FinalResponse),
			Success:        result.Success,
			ErrorMessage:   result.ErrorMessage,
		}
		if _, err := s.Analytics.Log(ctx, rec); err != nil {
			log.Printf("logging question: %v", err)
		}
	}
	if s.Notifier != nil {
		if _, err := s.Notifier.Question(ctx, req.Question, req.UserID, result.Duration.Milliseconds(), result.Success); err != nil {
			log.Printf("question webhook: %v", err)
		}
	}
}

// handleQuestions serves the question log: GET queries it, POST stores a
// record directly (for clients that run the pipeline elsewhere).
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if s.Analytics == nil {
		httpError(w, http.StatusServiceUnavailable, "analytics disabled")
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.listQuestions(w, r)
	case http.MethodPost:
		s.storeQuestion(w, r)
	default:
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := analytics.QueryOptions{UserID: q.Get("user_id")}
	if v := q.Get("limit"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &opts.Limit); err != nil {
			httpError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &opts.Offset); err != nil {
			httpError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpError(w, http.StatusBadRequest, "since must be YYYY-MM-DD")
			return
		}
		opts.Since = since
	}

	records, err := s.Analytics.Questions(r.Context(), opts)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "querying questions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": records,
		"total":     len(records),
		"limit":     opts.Limit,
		"offset":    opts.Offset,
	})
}

func (s *Server) storeQuestion(w http.ResponseWriter, r *http.Request) {
	var rec analytics.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rec.Question == "" {
		httpError(w, http.StatusBadRequest, "question is required")
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	id, err := s.Analytics.Log(r.Context(), rec)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "storing question")
		return
	}
	if s.Notifier != nil {
		if _, err := s.Notifier.Question(r.Context(), rec.Question, rec.UserID, rec.ResponseTimeMS, rec.Success); err != nil {
			log.Printf("question webhook: %v", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"status": "stored",
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.Analytics == nil {
		httpError(w, http.StatusServiceUnavailable, "analytics disabled")
		return
	}

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &days); err != nil || days < 0 {
			httpError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
	}

	report, err := s.Analytics.BuildReport(r.Context(), days)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "building report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
