package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/jaal/internal/conversation"
	"github.com/MikeSquared-Agency/jaal/internal/detector"
	"github.com/MikeSquared-Agency/jaal/internal/engage"
	"github.com/MikeSquared-Agency/jaal/internal/intel"
	"github.com/MikeSquared-Agency/jaal/internal/patterns"
	"github.com/MikeSquared-Agency/jaal/internal/processor"
)

const scamOpener = "Your bank account will be blocked today! Share your OTP immediately to verify."

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProcessor(registry *conversation.Registry) *processor.Processor {
	lib := patterns.Default()
	logger := testLogger()
	return processor.New(
		registry,
		detector.New(lib),
		engage.New(lib, rand.New(rand.NewSource(1)), 0, 0, logger),
		intel.New(lib, logger),
		nil, nil, nil,
		logger,
	)
}

func newTestServer(apiKey string, rateLimitPerMin int) (*Server, *conversation.Registry) {
	registry := conversation.NewRegistry()
	srv := NewServer(8760, apiKey, rateLimitPerMin, testProcessor(registry), registry, testLogger())
	return srv, registry
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer("", 0)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer("", 0)

	req := httptest.NewRequest("GET", "/api/v1/jaal/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["agent"] != "jaal" {
		t.Errorf("expected agent jaal, got %q", body["agent"])
	}
	if body["status"] != "active" {
		t.Errorf("expected status active, got %q", body["status"])
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv, _ := newTestServer("", 0)

	req := httptest.NewRequest("GET", "/nonexistent", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestMessageEndpoint_MissingMessage(t *testing.T) {
	srv, _ := newTestServer("", 0)

	req := httptest.NewRequest("POST", "/api/v1/message", strings.NewReader(`{"conversation_id":"conv_x"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["message"] != "Missing required field: message" {
		t.Errorf("unexpected error message %q", body["message"])
	}
}

func TestMessageEndpoint_InvalidJSON(t *testing.T) {
	srv, _ := newTestServer("", 0)

	req := httptest.NewRequest("POST", "/api/v1/message", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestMessageEndpoint_BenignEnvelope(t *testing.T) {
	srv, _ := newTestServer("", 0)

	body := `{"conversation_id":"conv_benign","message":"Hey, are we still meeting for lunch tomorrow?"}`
	req := httptest.NewRequest("POST", "/api/v1/message", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var env processor.Envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}

	if env.ConversationID != "conv_benign" {
		t.Errorf("expected conv_benign, got %q", env.ConversationID)
	}
	if env.ScamDetection.Detected {
		t.Error("benign message should not be detected")
	}
	if env.ScamDetection.ScamType != "none" {
		t.Errorf("expected scam_type none, got %q", env.ScamDetection.ScamType)
	}
	if env.AgentResponse.Message == "" {
		t.Error("expected a reply")
	}
	if env.AgentResponse.Strategy != "initial_engagement" {
		t.Errorf("expected initial_engagement, got %q", env.AgentResponse.Strategy)
	}
	if env.AgentResponse.AgentActivated {
		t.Error("agent should not be activated on a benign turn")
	}
	if env.EngagementMetrics.TurnCount != 1 {
		t.Errorf("expected turn 1, got %d", env.EngagementMetrics.TurnCount)
	}
	if env.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
}

func TestMessageEndpoint_ScamDetected(t *testing.T) {
	srv, _ := newTestServer("", 0)

	body := `{"conversation_id":"conv_scam","message":"` + scamOpener + `"}`
	req := httptest.NewRequest("POST", "/api/v1/message", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var env processor.Envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}

	if !env.ScamDetection.Detected {
		t.Fatal("expected detection")
	}
	if env.ScamDetection.ScamType != "financial_fraud" {
		t.Errorf("expected financial_fraud, got %q", env.ScamDetection.ScamType)
	}
	if env.ScamDetection.Confidence < 0.3 {
		t.Errorf("expected confidence at threshold or above, got %f", env.ScamDetection.Confidence)
	}
	if len(env.ScamDetection.Indicators) == 0 {
		t.Error("expected indicators")
	}
	if !env.AgentResponse.AgentActivated {
		t.Error("expected agent activation")
	}
}

func TestAPIKeyAuth(t *testing.T) {
	srv, _ := newTestServer("sekret", 0)

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"no key", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"x-api-key", "X-API-Key", "sekret", http.StatusOK},
		{"bearer", "Authorization", "Bearer sekret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/v1/message", strings.NewReader(`{"message":"hello there"}`))
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestAPIKeyAuth_HealthStaysOpen(t *testing.T) {
	srv, _ := newTestServer("sekret", 0)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestGetConversation(t *testing.T) {
	srv, _ := newTestServer("", 0)

	post := httptest.NewRequest("POST", "/api/v1/message", strings.NewReader(`{"conversation_id":"conv_get","message":"hello there"}`))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, post)
	if w.Code != http.StatusOK {
		t.Fatalf("setup failed: %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/conversation/conv_get", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		ConversationID string              `json:"conversation_id"`
		Conversation   conversation.Record `json:"conversation"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.ConversationID != "conv_get" {
		t.Errorf("expected conv_get, got %q", body.ConversationID)
	}
	if body.Conversation.TurnCount != 1 {
		t.Errorf("expected turn 1, got %d", body.Conversation.TurnCount)
	}
	if len(body.Conversation.Messages) != 2 {
		t.Errorf("expected scammer and agent messages, got %d", len(body.Conversation.Messages))
	}
}

func TestGetConversation_Unknown(t *testing.T) {
	srv, _ := newTestServer("", 0)

	req := httptest.NewRequest("GET", "/api/v1/conversation/conv_missing", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestListConversations(t *testing.T) {
	srv, _ := newTestServer("", 0)

	for _, id := range []string{"conv_one", "conv_two"} {
		req := httptest.NewRequest("POST", "/api/v1/message", strings.NewReader(`{"conversation_id":"`+id+`","message":"hello there"}`))
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("setup failed for %s: %d", id, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/api/v1/conversations", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Total         int                   `json:"total_conversations"`
		Conversations []conversationSummary `json:"conversations"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Total != 2 {
		t.Errorf("expected 2 conversations, got %d", body.Total)
	}
	for _, s := range body.Conversations {
		if s.TurnCount != 1 {
			t.Errorf("%s: expected turn 1, got %d", s.ConversationID, s.TurnCount)
		}
		if s.StartTime.IsZero() {
			t.Errorf("%s: expected a start time", s.ConversationID)
		}
	}
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer("", 2)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", w.Header().Get("Retry-After"))
	}
}
