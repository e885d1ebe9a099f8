package detector

import (
	"math"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/jaal/internal/patterns"
)

func TestScore(t *testing.T) {
	d := New(patterns.Default())

	tests := []struct {
		name           string
		message        string
		recent         []string
		wantScam       bool
		wantConfidence float64
		wantCategory   string
	}{
		{
			name:           "benign message",
			message:        "see you at lunch",
			wantScam:       false,
			wantConfidence: 0.0,
			wantCategory:   patterns.CategoryUnknown,
		},
		{
			name:           "bank blocking scam",
			message:        "URGENT: Your bank account will be blocked today. Verify immediately!",
			wantScam:       true,
			wantConfidence: 0.65,
			wantCategory:   patterns.CategoryFinancialFraud,
		},
		{
			name:           "urgency alone sits exactly on the threshold",
			message:        "urgent, act immediately today",
			wantScam:       true,
			wantConfidence: 0.30,
			wantCategory:   patterns.CategoryUnknown,
		},
		{
			name:           "credential requests are capped",
			message:        "send otp, pin, cvv and password",
			wantScam:       true,
			wantConfidence: 0.55,
			wantCategory:   patterns.CategoryPaymentScam,
		},
		{
			name:           "harvesting across recent messages",
			message:        "also need your pin",
			recent:         []string{"share your otp please", "also need your pin"},
			wantScam:       true,
			wantConfidence: 0.40,
			wantCategory:   patterns.CategoryUnknown,
		},
		{
			name:           "same request without history stays below threshold",
			message:        "also need your pin",
			recent:         []string{"also need your pin"},
			wantScam:       false,
			wantConfidence: 0.15,
			wantCategory:   patterns.CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Score(tt.message, tt.recent)

			if got.IsScam != tt.wantScam {
				t.Errorf("IsScam: expected %v, got %v", tt.wantScam, got.IsScam)
			}
			if math.Abs(got.Confidence-tt.wantConfidence) > 0.001 {
				t.Errorf("Confidence: expected %.3f, got %.3f", tt.wantConfidence, got.Confidence)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category: expected %q, got %q", tt.wantCategory, got.Category)
			}
			if got.IsScam != (got.Confidence >= Threshold) {
				t.Errorf("IsScam %v inconsistent with confidence %.3f", got.IsScam, got.Confidence)
			}
		})
	}
}

func TestScore_KYCPhishingMessage(t *testing.T) {
	d := New(patterns.Default())

	got := d.Score("Your HDFC account will be blocked due to pending KYC. Update now: http://hdfc-kyc-update.tk", nil)

	if !got.IsScam {
		t.Fatalf("expected scam verdict, got confidence %.3f", got.Confidence)
	}
	if got.Confidence < Threshold {
		t.Errorf("expected confidence >= %.2f, got %.3f", Threshold, got.Confidence)
	}
	if got.Category != patterns.CategoryFinancialFraud {
		t.Errorf("expected category %q, got %q", patterns.CategoryFinancialFraud, got.Category)
	}

	wantIndicators := []string{
		"Matched financial_fraud pattern",
		"Matched phishing pattern",
		"Contains urgency language (1 instances)",
		"Contains external link",
		"Contains common scam phrases (1 matches)",
	}
	if len(got.Indicators) != len(wantIndicators) {
		t.Fatalf("expected %d indicators, got %d: %v", len(wantIndicators), len(got.Indicators), got.Indicators)
	}
	for i, want := range wantIndicators {
		if got.Indicators[i] != want {
			t.Errorf("indicator %d: expected %q, got %q", i, want, got.Indicators[i])
		}
	}

	if !strings.HasPrefix(got.Reasoning, "Scam detected with 72.0% confidence.") {
		t.Errorf("unexpected reasoning: %q", got.Reasoning)
	}
	if !strings.HasSuffix(got.Reasoning, "and 2 more.") {
		t.Errorf("expected truncated indicator list in reasoning, got %q", got.Reasoning)
	}
}

func TestScore_ConfidenceBounds(t *testing.T) {
	d := New(patterns.Default())

	messages := []string{
		"",
		"hello",
		"URGENT act now today! Dear customer, you have won a lottery prize of 25 lakhs rupees. " +
			"Send otp, pin, cvv, password, card number and account number to claim your reward. " +
			"Update your kyc and verify your account at http://bit.ly/x or call 9876543210. " +
			"Work from home and earn daily, registration fee required, guaranteed income assured.",
	}

	for _, msg := range messages {
		got := d.Score(msg, nil)
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("confidence out of range for %q: %.3f", msg, got.Confidence)
		}
	}
}

func TestScore_BenignReasoning(t *testing.T) {
	d := New(patterns.Default())

	got := d.Score("see you at lunch", nil)
	want := "Message does not contain sufficient scam indicators."
	if got.Reasoning != want {
		t.Errorf("expected %q, got %q", want, got.Reasoning)
	}
	if len(got.Indicators) != 0 {
		t.Errorf("expected no indicators, got %v", got.Indicators)
	}
}

func TestProgressiveHarvesting(t *testing.T) {
	creds := patterns.Default().CredentialKeywords

	tests := []struct {
		name   string
		recent []string
		want   bool
	}{
		{"empty history", nil, false},
		{"single message never triggers", []string{"share your otp and pin"}, false},
		{"two distinct keywords across messages", []string{"send the otp", "and your pin"}, true},
		{"same keyword repeated", []string{"otp please", "the otp", "resend otp"}, false},
		{"keyword outside window", []string{"your pin here", "hello", "anything", "more text"}, false},
		{"distinct keywords inside window", []string{"old text", "card number please", "and account number"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progressiveHarvesting(tt.recent, creds); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
