// Package api exposes the honeypot over HTTP: message ingestion, conversation
// inspection and campaign scans.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/MikeSquared-Agency/jaal/internal/conversation"
	"github.com/MikeSquared-Agency/jaal/internal/processor"
)

type Server struct {
	router   *chi.Mux
	port     int
	apiKey   string
	proc     *processor.Processor
	registry *conversation.Registry
	logger   *slog.Logger
}

func NewServer(port int, apiKey string, rateLimitPerMin int, proc *processor.Processor, registry *conversation.Registry, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if rateLimitPerMin > 0 {
		router.Use(httprate.Limit(
			rateLimitPerMin,
			time.Minute,
			httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
				return "ip:" + r.RemoteAddr, nil
			}),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded","retry_after":60}`))
			}),
		))
	}

	s := &Server{
		router:   router,
		port:     port,
		apiKey:   apiKey,
		proc:     proc,
		registry: registry,
		logger:   logger,
	}

	if apiKey == "" {
		logger.Warn("JAAL_API_KEY not set, API authentication disabled")
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/jaal/status", s.status)

	router.Group(func(r chi.Router) {
		r.Use(apiKeyAuth(apiKey))
		r.Post("/api/v1/message", s.handleMessage)
		r.Get("/api/v1/conversation/{id}", s.getConversation)
		r.Get("/api/v1/conversations", s.listConversations)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// apiKeyAuth matches X-API-Key or Authorization: Bearer against key. An
// empty key disables the check entirely.
func apiKeyAuth(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get("X-API-Key")
			if got == "" {
				got = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if got != key {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error":   "Unauthorized",
					"message": "Invalid or missing API key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":         "jaal",
		"status":        "active",
		"conversations": s.registry.Len(),
	})
}

type messageRequest struct {
	ConversationID string         `json:"conversation_id"`
	Message        string         `json:"message"`
	Metadata       map[string]any `json:"metadata"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Bad Request",
			"message": fmt.Sprintf("invalid JSON: %v", err),
		})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Bad Request",
			"message": "Missing required field: message",
		})
		return
	}

	envelope, err := s.proc.HandleMessage(r.Context(), req.ConversationID, req.Message, req.Metadata)
	if err != nil {
		s.logger.Error("message processing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Internal Server Error",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, envelope)
}

func (s *Server) getConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := s.registry.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Conversation not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"conversation":    rec,
	})
}

type conversationSummary struct {
	ConversationID    string    `json:"conversation_id"`
	ScamDetected      bool      `json:"scam_detected"`
	TurnCount         int       `json:"turn_count"`
	IntelligenceCount int       `json:"intelligence_count"`
	StartTime         time.Time `json:"start_time"`
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	records := s.registry.Snapshots()
	summaries := make([]conversationSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, conversationSummary{
			ConversationID:    rec.ID,
			ScamDetected:      rec.ScamDetected,
			TurnCount:         rec.TurnCount,
			IntelligenceCount: rec.Intelligence.FindingCount(),
			StartTime:         rec.StartTime,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_conversations": len(summaries),
		"conversations":       summaries,
	})
}
