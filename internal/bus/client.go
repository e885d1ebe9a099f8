package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects jaal publishes on or subscribes to.
const (
	// SubjectScamDetected fires once per conversation, the moment the
	// score first crosses the detection threshold.
	SubjectScamDetected = "swarm.jaal.scam.detected"
	// SubjectIntelExtracted fires whenever an extraction pass adds
	// findings to a conversation.
	SubjectIntelExtracted = "swarm.jaal.intel.extracted"
	// SubjectReply carries the full response envelope for messages that
	// arrived over the bus rather than HTTP.
	SubjectReply = "swarm.jaal.reply"
	// SubjectInbound is the bus analogue of the message endpoint.
	SubjectInbound = "swarm.jaal.message.inbound"
	// SubjectRegistered announces the agent to the swarm on boot.
	SubjectRegistered = "swarm.agent.jaal.registered"
	// SubjectCampaignDetected carries confirmed cross-conversation
	// campaign clusters.
	SubjectCampaignDetected = "swarm.jaal.campaign.detected"
)

// ScamDetectedSignal is emitted at the detection flip, enabling downstream
// consumers to start watching a conversation before extraction matures.
type ScamDetectedSignal struct {
	ConversationID string   `json:"conversation_id"`
	ScamType       string   `json:"scam_type"`
	Confidence     float64  `json:"confidence"`
	TurnCount      int      `json:"turn_count"`
	Indicators     []string `json:"indicators,omitempty"`
}

// IntelExtractedSignal is emitted when a merge adds new findings.
type IntelExtractedSignal struct {
	ConversationID string  `json:"conversation_id"`
	ScamType       string  `json:"scam_type"`
	NewFindings    int     `json:"new_findings"`
	TotalFindings  int     `json:"total_findings"`
	QualityScore   float64 `json:"quality_score"`
}

// InboundMessage is the wire format accepted on SubjectInbound.
type InboundMessage struct {
	ConversationID string         `json:"conversation_id,omitempty"`
	Message        string         `json:"message"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// AgentRegistration is the boot announcement payload.
type AgentRegistration struct {
	Agent        string   `json:"agent"`
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
	Port         int      `json:"port"`
	Timestamp    string   `json:"timestamp"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
