// Package ingest imports the predecessor's JSON conversation store: a
// single file mapping conversation id to a snake_case record. Records are
// converted, re-mined for intelligence and written through the store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/MikeSquared-Agency/jaal/internal/conversation"
	"github.com/MikeSquared-Agency/jaal/internal/intel"
	"github.com/MikeSquared-Agency/jaal/internal/store"
)

// Config holds the import configuration.
type Config struct {
	Path   string
	DryRun bool
}

// Importer converts legacy records and writes them through the store and
// registry. Store and registry are nil-guarded.
type Importer struct {
	cfg       Config
	extractor *intel.Extractor
	store     *store.Store
	registry  *conversation.Registry
	logger    *slog.Logger
}

func New(cfg Config, ext *intel.Extractor, st *store.Store, registry *conversation.Registry, logger *slog.Logger) *Importer {
	return &Importer{
		cfg:       cfg,
		extractor: ext,
		store:     st,
		registry:  registry,
		logger:    logger,
	}
}

// Result counts the outcome of one import run.
type Result struct {
	Imported int
	Skipped  int
	Errors   []string
}

type legacyMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Strategy  string `json:"strategy"`
}

type legacyRecord struct {
	Messages       []legacyMessage `json:"messages"`
	ScamDetected   bool            `json:"scam_detected"`
	ScamType       string          `json:"scam_type"`
	Confidence     float64         `json:"confidence"`
	Indicators     []string        `json:"indicators"`
	AgentActivated bool            `json:"agent_activated"`
	StartTime      string          `json:"start_time"`
}

// Run reads the legacy store and imports every convertible conversation.
// A missing file is a warning, not an error; malformed entries are skipped
// and counted.
func (im *Importer) Run(ctx context.Context) (*Result, error) {
	res := &Result{}

	data, err := os.ReadFile(im.cfg.Path)
	if err != nil {
		if os.IsNotExist(err) {
			im.logger.Warn("legacy store not found, nothing to import", "path", im.cfg.Path)
			return res, nil
		}
		return nil, fmt.Errorf("read legacy store: %w", err)
	}

	var legacy map[string]legacyRecord
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("parse legacy store: %w", err)
	}

	ids := make([]string, 0, len(legacy))
	for id := range legacy {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		rec, err := im.convert(id, legacy[id])
		if err != nil {
			im.logger.Warn("skipping legacy conversation", "conversation_id", id, "error", err)
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", id, err))
			continue
		}

		if im.cfg.DryRun {
			res.Imported++
			continue
		}

		if im.store != nil {
			if err := im.store.UpsertConversation(ctx, rec); err != nil {
				im.logger.Error("failed to persist legacy conversation", "conversation_id", id, "error", err)
				res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", id, err))
				continue
			}
		}
		if im.registry != nil {
			im.registry.Seed(rec)
		}
		res.Imported++
	}

	im.logger.Info("legacy import complete",
		"path", im.cfg.Path,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"errors", len(res.Errors),
		"dry_run", im.cfg.DryRun,
	)

	return res, nil
}

// convert rebuilds a record from its legacy form. The turn clock and the
// intelligence are recomputed from the transcript rather than trusted.
func (im *Importer) convert(id string, lr legacyRecord) (*conversation.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("empty conversation id")
	}
	if len(lr.Messages) == 0 {
		return nil, fmt.Errorf("no messages")
	}

	start, err := parseLegacyTime(lr.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse start_time: %w", err)
	}

	rec := conversation.NewRecord(id, start)
	rec.ScamDetected = lr.ScamDetected
	rec.ScamType = lr.ScamType
	rec.Confidence = lr.Confidence
	rec.Indicators = lr.Indicators
	rec.AgentActivated = lr.AgentActivated

	for _, m := range lr.Messages {
		ts, err := parseLegacyTime(m.Timestamp)
		if err != nil {
			ts = start
		}
		switch m.Role {
		case conversation.RoleScammer:
			rec.AppendScammer(m.Content, ts)
		case conversation.RoleAgent:
			rec.AppendAgent(m.Content, m.Strategy, ts)
		default:
			return nil, fmt.Errorf("unknown role %q", m.Role)
		}
	}

	rec.Intelligence.Merge(im.extractor.Extract(rec.IntelMessages()))
	return rec, nil
}

// legacyTimeFormats covers the predecessor's isoformat timestamps, written
// with and without a zone suffix.
var legacyTimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
}

func parseLegacyTime(s string) (time.Time, error) {
	for _, layout := range legacyTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
