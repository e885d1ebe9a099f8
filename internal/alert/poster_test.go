package alert

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/jaal/internal/campaign"
	"github.com/MikeSquared-Agency/jaal/internal/conversation"
	"github.com/MikeSquared-Agency/jaal/internal/intel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func confirmedRecord() *conversation.Record {
	rec := conversation.NewRecord("conv_alert", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	rec.ScamDetected = true
	rec.ScamType = "financial_fraud"
	rec.Confidence = 0.7
	rec.Indicators = []string{"urgency_pressure", "credential_request"}
	rec.TurnCount = 3
	rec.Intelligence.UPIIDs = []intel.UPIHandle{{UPIID: "mule@paytm", Provider: "paytm"}}
	return rec
}

func TestFormatScamAlert(t *testing.T) {
	msg := formatScamAlert(confirmedRecord())

	checks := []string{
		"financial_fraud",
		"0.70",
		"conv_alert",
		"turn 3",
		"urgency_pressure, credential_request",
		"Findings so far:* 1",
	}
	for _, check := range checks {
		if !strings.Contains(msg, check) {
			t.Errorf("expected message to contain %q, got %q", check, msg)
		}
	}
}

func TestFormatCampaignAlert(t *testing.T) {
	c := campaign.Campaign{
		IdentifierKind:  campaign.KindUPIHandle,
		Identifier:      "mule@paytm",
		ConversationIDs: []string{"conv_a", "conv_b"},
		Count:           2,
		ScamTypes:       []string{"financial_fraud", "payment_scam"},
		FirstSeen:       time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		LastSeen:        time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}

	msg := formatCampaignAlert(c)

	checks := []string{
		"upi_id",
		"mule@paytm",
		"conv_a, conv_b",
		"financial_fraud, payment_scam",
		"2025-06-01T10:00:00Z",
	}
	for _, check := range checks {
		if !strings.Contains(msg, check) {
			t.Errorf("expected message to contain %q, got %q", check, msg)
		}
	}
}

func TestPostScamAlert_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xoxb-test" {
			t.Errorf("expected Bearer xoxb-test, got %q", r.Header.Get("Authorization"))
		}

		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		json.Unmarshal(body, &payload)

		if payload["channel"] != "C123" {
			t.Errorf("expected channel C123, got %v", payload["channel"])
		}
		if text, _ := payload["text"].(string); !strings.Contains(text, "financial_fraud") {
			t.Errorf("expected scam type in text, got %v", payload["text"])
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	if err := p.PostScamAlert(context.Background(), confirmedRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostScamAlert_SlackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "channel_not_found",
		})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	err := p.PostScamAlert(context.Background(), confirmedRecord())
	if err == nil {
		t.Fatal("expected error for slack error response")
	}
	if !strings.Contains(err.Error(), "channel_not_found") {
		t.Errorf("expected slack error in message, got %v", err)
	}
}

func TestPostCampaignAlert_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	c := campaign.Campaign{
		IdentifierKind:  campaign.KindBankAccount,
		Identifier:      "987654321",
		ConversationIDs: []string{"conv_a", "conv_b"},
		Count:           2,
	}
	if err := p.PostCampaignAlert(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
