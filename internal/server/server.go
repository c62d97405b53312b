package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coinchat/query-service/internal/query"
)

// Server exposes the chat endpoint. Input presence validation happens
// here; everything past this boundary always produces an answer.
type Server struct {
	service *query.Service
	logger  *logrus.Logger
}

type chatRequest struct {
	Message string `json:"message"`
}

func New(service *query.Service, logger *logrus.Logger) *Server {
	return &Server{
		service: service,
		logger:  logger,
	}
}

func (s *Server) Start(port string, healthHandler http.HandlerFunc) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", healthHandler)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		s.logger.WithField("port", port).Info("Starting chat server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("Chat server failed")
		}
	}()

	return server
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	requestID := uuid.New().String()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	start := time.Now()
	response := s.service.AnswerQuery(r.Context(), req.Message)

	s.logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Answered chat query")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
