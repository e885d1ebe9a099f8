package bus

import (
	"encoding/json"
	"testing"
)

func TestScamDetectedSignalParsing(t *testing.T) {
	raw := `{
		"conversation_id": "conv_7f3a",
		"scam_type": "financial_fraud",
		"confidence": 0.62,
		"turn_count": 3,
		"indicators": ["Suspected financial_fraud pattern", "Urgency keyword: urgent"]
	}`

	var signal ScamDetectedSignal
	err := json.Unmarshal([]byte(raw), &signal)
	if err != nil {
		t.Fatalf("failed to parse ScamDetectedSignal: %v", err)
	}

	if signal.ConversationID != "conv_7f3a" {
		t.Errorf("expected conversation_id 'conv_7f3a', got '%s'", signal.ConversationID)
	}
	if signal.ScamType != "financial_fraud" {
		t.Errorf("expected scam_type 'financial_fraud', got '%s'", signal.ScamType)
	}
	if signal.Confidence != 0.62 {
		t.Errorf("expected confidence 0.62, got %f", signal.Confidence)
	}
	if signal.TurnCount != 3 {
		t.Errorf("expected turn_count 3, got %d", signal.TurnCount)
	}
	if len(signal.Indicators) != 2 {
		t.Errorf("expected 2 indicators, got %d", len(signal.Indicators))
	}
}

func TestInboundMessageParsing(t *testing.T) {
	raw := `{
		"conversation_id": "conv_9b21",
		"message": "Your account will be blocked today, verify now",
		"metadata": {"channel": "sms"}
	}`

	var msg InboundMessage
	err := json.Unmarshal([]byte(raw), &msg)
	if err != nil {
		t.Fatalf("failed to parse InboundMessage: %v", err)
	}

	if msg.ConversationID != "conv_9b21" {
		t.Errorf("expected conversation_id 'conv_9b21', got '%s'", msg.ConversationID)
	}
	if msg.Message == "" {
		t.Error("expected non-empty message")
	}
	if msg.Metadata["channel"] != "sms" {
		t.Errorf("expected channel metadata, got %v", msg.Metadata)
	}
}

func TestInboundMessageWithoutID(t *testing.T) {
	raw := `{"message": "hello"}`

	var msg InboundMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("failed to parse InboundMessage: %v", err)
	}
	if msg.ConversationID != "" {
		t.Errorf("expected empty conversation_id, got '%s'", msg.ConversationID)
	}
}

func TestIntelExtractedSignalRoundTrip(t *testing.T) {
	signal := IntelExtractedSignal{
		ConversationID: "conv_rt",
		ScamType:       "phishing",
		NewFindings:    2,
		TotalFindings:  5,
		QualityScore:   48,
	}

	data, err := json.Marshal(signal)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var parsed IntelExtractedSignal
	err = json.Unmarshal(data, &parsed)
	if err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if parsed != signal {
		t.Errorf("round-trip mismatch: got %+v, want %+v", parsed, signal)
	}
}

func TestSubjectConstants(t *testing.T) {
	if SubjectScamDetected != "swarm.jaal.scam.detected" {
		t.Errorf("expected SubjectScamDetected 'swarm.jaal.scam.detected', got '%s'", SubjectScamDetected)
	}
	if SubjectInbound != "swarm.jaal.message.inbound" {
		t.Errorf("expected SubjectInbound 'swarm.jaal.message.inbound', got '%s'", SubjectInbound)
	}
	if SubjectReply != "swarm.jaal.reply" {
		t.Errorf("expected SubjectReply 'swarm.jaal.reply', got '%s'", SubjectReply)
	}
}
