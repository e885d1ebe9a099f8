package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/jaal/internal/alert"
	"github.com/MikeSquared-Agency/jaal/internal/bus"
	"github.com/MikeSquared-Agency/jaal/internal/campaign"
	"github.com/MikeSquared-Agency/jaal/internal/conversation"
	"github.com/MikeSquared-Agency/jaal/internal/processor"
)

// ConversationSource yields persisted scam conversations for campaign scans.
// A zero since means no lower bound.
type ConversationSource interface {
	ScamConversations(ctx context.Context, since time.Time) ([]*conversation.Record, error)
}

// CampaignServer extends the base server with campaign scan endpoints.
type CampaignServer struct {
	*Server
	source ConversationSource
	bus    *bus.Client
	alerts *alert.Poster
}

// CampaignScanRequest is the POST /api/v1/campaigns/scan payload.
type CampaignScanRequest struct {
	Since   *string `json:"since,omitempty"`
	MinSize *int    `json:"min_size,omitempty"`
	DryRun  bool    `json:"dry_run"`
}

// CampaignScanResponse lists the campaigns a scan found.
type CampaignScanResponse struct {
	Campaigns []campaign.Campaign `json:"campaigns"`
	Count     int                 `json:"count"`
	DryRun    bool                `json:"dry_run"`
}

func NewCampaignServer(port int, apiKey string, rateLimitPerMin int, proc *processor.Processor, registry *conversation.Registry, source ConversationSource, b *bus.Client, alerts *alert.Poster, logger *slog.Logger) *CampaignServer {
	base := NewServer(port, apiKey, rateLimitPerMin, proc, registry, logger)
	cs := &CampaignServer{
		Server: base,
		source: source,
		bus:    b,
		alerts: alerts,
	}

	base.router.Route("/api/v1/campaigns", func(r chi.Router) {
		r.Use(apiKeyAuth(apiKey))
		r.Post("/scan", cs.scanCampaigns)
		r.Get("/scan", cs.scanCampaignsPreview)
	})

	return cs
}

// scanCampaigns handles POST /api/v1/campaigns/scan.
func (cs *CampaignServer) scanCampaigns(w http.ResponseWriter, r *http.Request) {
	var req CampaignScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "Bad Request",
			"message": fmt.Sprintf("invalid JSON: %v", err),
		})
		return
	}
	cs.runScan(w, r, &req)
}

// scanCampaignsPreview handles GET /api/v1/campaigns/scan as a forced dry run.
func (cs *CampaignServer) scanCampaignsPreview(w http.ResponseWriter, r *http.Request) {
	req := CampaignScanRequest{DryRun: true}

	q := r.URL.Query()
	if since := q.Get("since"); since != "" {
		req.Since = &since
	}
	if raw := q.Get("min_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":   "Bad Request",
				"message": fmt.Sprintf("invalid min_size: %v", err),
			})
			return
		}
		req.MinSize = &n
	}

	cs.runScan(w, r, &req)
}

func (cs *CampaignServer) runScan(w http.ResponseWriter, r *http.Request, req *CampaignScanRequest) {
	var since time.Time
	if req.Since != nil {
		t, err := time.Parse(time.RFC3339, *req.Since)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":   "Bad Request",
				"message": fmt.Sprintf("invalid since timestamp: %v", err),
			})
			return
		}
		since = t
	}

	minSize := 2
	if req.MinSize != nil {
		minSize = *req.MinSize
	}

	records, err := cs.source.ScamConversations(r.Context(), since)
	if err != nil {
		cs.logger.Error("campaign scan failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Internal Server Error",
			"message": "campaign scan failed",
		})
		return
	}

	campaigns := campaign.Find(records, minSize)
	if campaigns == nil {
		campaigns = []campaign.Campaign{}
	}

	if !req.DryRun {
		for _, c := range campaigns {
			cs.announce(r.Context(), c)
		}
	}

	writeJSON(w, http.StatusOK, CampaignScanResponse{
		Campaigns: campaigns,
		Count:     len(campaigns),
		DryRun:    req.DryRun,
	})
}

func (cs *CampaignServer) announce(ctx context.Context, c campaign.Campaign) {
	if cs.bus != nil {
		if err := cs.bus.Publish(bus.SubjectCampaignDetected, c); err != nil {
			cs.logger.Warn("failed to publish campaign",
				"identifier_kind", c.IdentifierKind,
				"identifier", c.Identifier,
				"error", err)
		}
	}
	if cs.alerts != nil {
		if err := cs.alerts.PostCampaignAlert(ctx, c); err != nil {
			cs.logger.Warn("failed to post campaign alert",
				"identifier", c.Identifier,
				"error", err)
		}
	}
}
