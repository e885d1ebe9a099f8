// Package alert posts operational notifications to Slack. Alerting is
// optional; the caller nil-guards the poster when no token is configured.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/jaal/internal/campaign"
	"github.com/MikeSquared-Agency/jaal/internal/conversation"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostScamAlert notifies the channel that a conversation was confirmed as
// a scam.
func (p *Poster) PostScamAlert(ctx context.Context, rec *conversation.Record) error {
	if err := p.post(ctx, formatScamAlert(rec)); err != nil {
		return err
	}
	p.logger.Info("posted scam alert", "conversation_id", rec.ID, "scam_type", rec.ScamType)
	return nil
}

// PostCampaignAlert notifies the channel that a campaign scan confirmed a
// shared identifier across conversations.
func (p *Poster) PostCampaignAlert(ctx context.Context, c campaign.Campaign) error {
	if err := p.post(ctx, formatCampaignAlert(c)); err != nil {
		return err
	}
	p.logger.Info("posted campaign alert", "identifier_kind", c.IdentifierKind, "identifier", c.Identifier)
	return nil
}

func (p *Poster) post(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return fmt.Errorf("slack error: %s", slackResp.Error)
	}

	return nil
}

func formatScamAlert(rec *conversation.Record) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Scam confirmed:* %s (confidence %.2f)\n", rec.ScamType, rec.Confidence)
	fmt.Fprintf(&sb, "*Conversation:* %s | turn %d\n", rec.ID, rec.TurnCount)

	if len(rec.Indicators) > 0 {
		fmt.Fprintf(&sb, "*Indicators:* %s\n", strings.Join(rec.Indicators, ", "))
	}
	if n := rec.Intelligence.FindingCount(); n > 0 {
		fmt.Fprintf(&sb, "*Findings so far:* %d\n", n)
	}

	return sb.String()
}

func formatCampaignAlert(c campaign.Campaign) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Campaign detected:* %s `%s`\n", c.IdentifierKind, c.Identifier)
	fmt.Fprintf(&sb, "*Conversations:* %d (%s)\n", c.Count, strings.Join(c.ConversationIDs, ", "))

	if len(c.ScamTypes) > 0 {
		fmt.Fprintf(&sb, "*Scam types:* %s\n", strings.Join(c.ScamTypes, ", "))
	}
	fmt.Fprintf(&sb, "*Seen:* %s to %s\n",
		c.FirstSeen.Format(time.RFC3339), c.LastSeen.Format(time.RFC3339))

	return sb.String()
}
