// Package processor orchestrates jaal's per-turn pipeline: detection while a
// conversation is unconfirmed, engagement once it flips, extraction over the
// full transcript every turn, then persistence and bus signals outside the
// conversation lock.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/jaal/internal/alert"
	"github.com/MikeSquared-Agency/jaal/internal/bus"
	"github.com/MikeSquared-Agency/jaal/internal/conversation"
	"github.com/MikeSquared-Agency/jaal/internal/detector"
	"github.com/MikeSquared-Agency/jaal/internal/engage"
	"github.com/MikeSquared-Agency/jaal/internal/intel"
	"github.com/MikeSquared-Agency/jaal/internal/store"
)

// ScamDetection is the detection block of the response envelope. ScamType
// reads "none" until the conversation is confirmed.
type ScamDetection struct {
	Detected   bool     `json:"detected"`
	Confidence float64  `json:"confidence"`
	ScamType   string   `json:"scam_type"`
	Indicators []string `json:"indicators"`
}

// AgentResponse is the reply block of the response envelope.
type AgentResponse struct {
	Message        string `json:"message"`
	Strategy       string `json:"strategy"`
	AgentActivated bool   `json:"agent_activated"`
}

// EngagementMetrics summarizes conversation progress for the envelope.
type EngagementMetrics struct {
	TurnCount                 int     `json:"turn_count"`
	EngagementDurationSeconds float64 `json:"engagement_duration_seconds"`
	IntelligenceExtracted     int     `json:"intelligence_extracted"`
}

// Envelope is the full per-turn response, returned by the message endpoint
// and published on the reply subject for bus-ingested messages.
type Envelope struct {
	ConversationID        string             `json:"conversation_id"`
	ScamDetection         ScamDetection      `json:"scam_detection"`
	AgentResponse         AgentResponse      `json:"agent_response"`
	EngagementMetrics     EngagementMetrics  `json:"engagement_metrics"`
	ExtractedIntelligence intel.Intelligence `json:"extracted_intelligence"`
	Timestamp             time.Time          `json:"timestamp"`
}

// Processor wires the pipeline stages together. Store, bus and alerts are
// nil-guarded so tests and degraded deployments can run without them.
type Processor struct {
	registry  *conversation.Registry
	detector  *detector.Detector
	engine    *engage.Engine
	extractor *intel.Extractor
	store     *store.Store
	bus       *bus.Client
	alerts    *alert.Poster
	logger    *slog.Logger
}

func New(registry *conversation.Registry, det *detector.Detector, eng *engage.Engine, ext *intel.Extractor, st *store.Store, b *bus.Client, alerts *alert.Poster, logger *slog.Logger) *Processor {
	return &Processor{
		registry:  registry,
		detector:  det,
		engine:    eng,
		extractor: ext,
		store:     st,
		bus:       b,
		alerts:    alerts,
		logger:    logger,
	}
}

// HandleMessage runs one inbound message through the pipeline and returns
// the response envelope. An empty conversation id starts a new conversation.
func (p *Processor) HandleMessage(ctx context.Context, conversationID, message string, metadata map[string]any) (*Envelope, error) {
	if message == "" {
		return nil, fmt.Errorf("empty message")
	}
	if conversationID == "" {
		conversationID = "conv_" + uuid.New().String()
	}
	if len(metadata) > 0 {
		p.logger.Debug("inbound metadata", "conversation_id", conversationID, "keys", len(metadata))
	}

	var (
		detectedNow bool
		added       int
	)

	snapshot := p.registry.With(conversationID, func(rec *conversation.Record) {
		now := time.Now().UTC()
		rec.AppendScammer(message, now)

		// Score only while unconfirmed; once a conversation flips the
		// verdict is frozen and later turns skip the detector entirely.
		if !rec.ScamDetected {
			res := p.detector.Score(message, rec.RecentScammerMessages(3))
			rec.RecordScore(res.IsScam, res.Category, res.Confidence, res.Indicators)
			detectedNow = res.IsScam
		}

		var text, strategy string
		if rec.ScamDetected {
			rec.AgentActivated = true
			resp := p.engine.Respond(message, rec.TurnCount, rec.ScamType, transcriptView(rec))
			text, strategy = resp.Text, resp.Strategy
		} else {
			text = p.engine.InitialReply(message)
			strategy = engage.StrategyInitialEngagement
		}
		rec.AppendAgent(text, strategy, time.Now().UTC())

		mined := p.extractor.Extract(rec.IntelMessages())
		added = rec.Intelligence.Merge(mined)
	})

	p.persist(ctx, snapshot)

	if detectedNow {
		p.logger.Info("scam detected",
			"conversation_id", snapshot.ID,
			"scam_type", snapshot.ScamType,
			"confidence", snapshot.Confidence,
			"turn", snapshot.TurnCount,
		)
		p.announceDetection(ctx, snapshot)
	}

	if added > 0 && p.bus != nil {
		if err := p.bus.Publish(bus.SubjectIntelExtracted, bus.IntelExtractedSignal{
			ConversationID: snapshot.ID,
			ScamType:       snapshot.ScamType,
			NewFindings:    added,
			TotalFindings:  snapshot.Intelligence.FindingCount(),
			QualityScore:   snapshot.Intelligence.Summary.QualityScore,
		}); err != nil {
			p.logger.Error("failed to publish intel extracted", "conversation_id", snapshot.ID, "error", err)
		}
	}

	return buildEnvelope(snapshot), nil
}

// HandleInbound is the NATS handler for the inbound message subject; the
// envelope goes back out on the reply subject instead of an HTTP response.
func (p *Processor) HandleInbound(subject string, data []byte) {
	ctx := context.Background()

	var msg bus.InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		p.logger.Error("failed to parse inbound message", "error", err)
		return
	}

	env, err := p.HandleMessage(ctx, msg.ConversationID, msg.Message, msg.Metadata)
	if err != nil {
		p.logger.Error("inbound message rejected", "error", err)
		return
	}

	if p.bus != nil {
		if err := p.bus.Publish(bus.SubjectReply, env); err != nil {
			p.logger.Error("failed to publish reply", "conversation_id", env.ConversationID, "error", err)
		}
	}
}

func (p *Processor) persist(ctx context.Context, snapshot *conversation.Record) {
	if p.store == nil {
		return
	}
	if err := p.store.UpsertConversation(ctx, snapshot); err != nil {
		p.logger.Error("failed to persist conversation", "conversation_id", snapshot.ID, "error", err)
	}
}

func (p *Processor) announceDetection(ctx context.Context, snapshot *conversation.Record) {
	if p.bus != nil {
		if err := p.bus.Publish(bus.SubjectScamDetected, bus.ScamDetectedSignal{
			ConversationID: snapshot.ID,
			ScamType:       snapshot.ScamType,
			Confidence:     snapshot.Confidence,
			TurnCount:      snapshot.TurnCount,
			Indicators:     snapshot.Indicators,
		}); err != nil {
			p.logger.Error("failed to publish scam detected", "conversation_id", snapshot.ID, "error", err)
		}
	}

	if p.alerts != nil {
		if err := p.alerts.PostScamAlert(ctx, snapshot); err != nil {
			p.logger.Error("slack post failed", "conversation_id", snapshot.ID, "error", err)
		}
	}
}

func buildEnvelope(snapshot *conversation.Record) *Envelope {
	scamType := "none"
	if snapshot.ScamDetected {
		scamType = snapshot.ScamType
	}
	indicators := snapshot.Indicators
	if indicators == nil {
		indicators = []string{}
	}

	var text, strategy string
	if n := len(snapshot.Messages); n > 0 {
		last := snapshot.Messages[n-1]
		text, strategy = last.Content, last.Strategy
	}

	duration := snapshot.UpdatedAt.Sub(snapshot.StartTime).Seconds()

	return &Envelope{
		ConversationID: snapshot.ID,
		ScamDetection: ScamDetection{
			Detected:   snapshot.ScamDetected,
			Confidence: snapshot.Confidence,
			ScamType:   scamType,
			Indicators: indicators,
		},
		AgentResponse: AgentResponse{
			Message:        text,
			Strategy:       strategy,
			AgentActivated: snapshot.AgentActivated,
		},
		EngagementMetrics: EngagementMetrics{
			TurnCount:                 snapshot.TurnCount,
			EngagementDurationSeconds: math.Round(duration*100) / 100,
			IntelligenceExtracted:     snapshot.Intelligence.FindingCount(),
		},
		ExtractedIntelligence: snapshot.Intelligence,
		Timestamp:             time.Now().UTC(),
	}
}

func transcriptView(rec *conversation.Record) []engage.Message {
	out := make([]engage.Message, len(rec.Messages))
	for i, m := range rec.Messages {
		out[i] = engage.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
