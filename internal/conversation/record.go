// Package conversation holds per-counterparty conversation records and the
// lock registry that serializes turns on them.
package conversation

import (
	"slices"
	"time"

	"github.com/MikeSquared-Agency/jaal/internal/intel"
)

// Roles on transcript messages.
const (
	RoleScammer = intel.RoleScammer
	RoleAgent   = "agent"
)

// Message is one transcript entry. Strategy is set on agent replies only.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Strategy  string    `json:"strategy,omitempty"`
}

// Record is the full state of one conversation. Messages are append-only
// and insertion order is transcript order. ScamDetected moves false to
// true exactly once; ScamType, Confidence and Indicators freeze at that
// point. TurnCount counts scammer messages only.
type Record struct {
	ID             string             `json:"conversation_id"`
	Messages       []Message          `json:"messages"`
	ScamDetected   bool               `json:"scam_detected"`
	ScamType       string             `json:"scam_type,omitempty"`
	Confidence     float64            `json:"confidence"`
	Indicators     []string           `json:"indicators,omitempty"`
	AgentActivated bool               `json:"agent_activated"`
	TurnCount      int                `json:"turn_count"`
	StartTime      time.Time          `json:"start_time"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Intelligence   intel.Intelligence `json:"extracted_intelligence"`
}

// NewRecord initializes an empty record for id.
func NewRecord(id string, now time.Time) *Record {
	return &Record{
		ID:        id,
		StartTime: now,
		UpdatedAt: now,
	}
}

// AppendScammer appends an inbound message and advances the turn clock.
func (r *Record) AppendScammer(content string, now time.Time) {
	r.Messages = append(r.Messages, Message{
		Role:      RoleScammer,
		Content:   content,
		Timestamp: now,
	})
	r.TurnCount++
	r.UpdatedAt = now
}

// AppendAgent appends the agent reply with its strategy label. Agent
// messages do not advance the turn clock.
func (r *Record) AppendAgent(content, strategy string, now time.Time) {
	r.Messages = append(r.Messages, Message{
		Role:      RoleAgent,
		Content:   content,
		Timestamp: now,
		Strategy:  strategy,
	})
	r.UpdatedAt = now
}

// RecordScore stores the latest scorer outcome. While unconfirmed the
// confidence and indicators track the most recent turn; a scam verdict
// confirms the record, sets its type and freezes all three fields.
// Calls after confirmation are no-ops.
func (r *Record) RecordScore(isScam bool, scamType string, confidence float64, indicators []string) {
	if r.ScamDetected {
		return
	}
	r.Confidence = confidence
	r.Indicators = indicators
	if isScam {
		r.ScamDetected = true
		r.ScamType = scamType
	}
}

// IntelMessages projects the transcript into the extractor's view.
func (r *Record) IntelMessages() []intel.Message {
	out := make([]intel.Message, len(r.Messages))
	for i, m := range r.Messages {
		out[i] = intel.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

// RecentScammerMessages returns up to n of the most recent scammer-authored
// message bodies in transcript order.
func (r *Record) RecentScammerMessages(n int) []string {
	var out []string
	for _, m := range r.Messages {
		if m.Role == RoleScammer {
			out = append(out, m.Content)
		}
	}
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// Clone returns a deep copy safe to read outside the registry lock.
func (r *Record) Clone() *Record {
	out := *r
	out.Messages = slices.Clone(r.Messages)
	out.Indicators = slices.Clone(r.Indicators)
	out.Intelligence = r.Intelligence.Clone()
	return &out
}
