package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dasmlab/pharmagen/pkg/assistant"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// maxRequestBytes bounds the JSON body of an ask request.
const maxRequestBytes = 64 * 1024

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question"`
	Language string `json:"language,omitempty"`
}

// AskResponse is returned for an answered question.
type AskResponse struct {
	RequestID string `json:"request_id"`
	Answer    string `json:"answer"`
	Language  string `json:"language"`
}

// ErrorResponse is returned for a failed question. Error is a user-facing
// message and never carries backend diagnostics.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

// HTTPServer provides the JSON API, health and metrics endpoints.
type HTTPServer struct {
	assistant *assistant.Assistant
	logger    *logrus.Logger
	port      int
	srv       *http.Server
}

// NewHTTPServer creates a new HTTP server around an assistant.
func NewHTTPServer(a *assistant.Assistant, logger *logrus.Logger, port int) *HTTPServer {
	if logger == nil {
		logger = logrus.New()
	}
	s := &HTTPServer{
		assistant: a,
		logger:    logger,
		port:      port,
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/ask", s.handleAsk)
	mux.HandleFunc("/api/v1/languages", s.handleLanguages)

	// Health check endpoint
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *HTTPServer) Start() error {
	s.logger.WithFields(logrus.Fields{
		"port": s.port,
	}).Info("Starting HTTP server")

	return s.srv.ListenAndServe()
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// handleAsk answers one question.
func (s *HTTPServer) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.logger.WithError(err).Debug("[HTTP] Invalid ask request body")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON request body."})
		return
	}

	answer, err := s.assistant.Ask(r.Context(), assistant.Query{
		RawText:     req.Question,
		LanguageTag: req.Language,
	})
	if err != nil {
		code := httpStatus(err)
		s.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": answer.RequestID,
			"status":     code,
		}).Info("[HTTP] Ask failed")
		writeJSON(w, code, ErrorResponse{
			RequestID: answer.RequestID,
			Error:     assistant.UserMessage(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{
		RequestID: answer.RequestID,
		Answer:    answer.Text,
		Language:  answer.Language.Code,
	})
}

// handleLanguages lists the supported response languages.
func (s *HTTPServer) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type language struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	supported := s.assistant.Languages.Supported()
	out := make([]language, 0, len(supported))
	for _, l := range supported {
		out = append(out, language{Code: l.Code, Name: l.Name})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default":   s.assistant.Languages.Default().Code,
		"languages": out,
	})
}

// handleHealth reports whether the model backend is reachable.
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if s.assistant.Client == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	if err := s.assistant.Client.CheckHealth(ctx); err != nil {
		s.logger.WithError(err).Warn("[HTTP] Model health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  assistant.UserMessage(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
