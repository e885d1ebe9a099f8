package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/jaal/internal/alert"
	"github.com/MikeSquared-Agency/jaal/internal/api"
	"github.com/MikeSquared-Agency/jaal/internal/bus"
	"github.com/MikeSquared-Agency/jaal/internal/config"
	"github.com/MikeSquared-Agency/jaal/internal/conversation"
	"github.com/MikeSquared-Agency/jaal/internal/detector"
	"github.com/MikeSquared-Agency/jaal/internal/engage"
	"github.com/MikeSquared-Agency/jaal/internal/ingest"
	"github.com/MikeSquared-Agency/jaal/internal/intel"
	"github.com/MikeSquared-Agency/jaal/internal/patterns"
	"github.com/MikeSquared-Agency/jaal/internal/processor"
	"github.com/MikeSquared-Agency/jaal/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("jaal starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database connected")

	// Pipeline stages
	lib := patterns.Default()
	det := detector.New(lib)
	eng := engage.New(lib, rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg.HumanBehaviorProb, cfg.TonePrefixProb, slog.Default())
	ext := intel.New(lib, slog.Default())

	// Conversation registry, seeded from the store
	registry := conversation.NewRegistry()
	records, err := db.LoadConversations(ctx)
	if err != nil {
		slog.Error("failed to load conversations", "error", err)
		os.Exit(1)
	}
	for _, rec := range records {
		registry.Seed(rec)
	}
	slog.Info("conversations loaded", "count", len(records))

	// One-shot legacy store import, before serving starts
	if cfg.LegacyStorePath != "" {
		importer := ingest.New(ingest.Config{Path: cfg.LegacyStorePath}, ext, db, registry, slog.Default())
		if _, err := importer.Run(ctx); err != nil {
			slog.Error("legacy import failed", "error", err)
			os.Exit(1)
		}
	}

	// NATS
	busClient, err := bus.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer busClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Slack alerts (optional; jaal works without Slack, just no ops alerts)
	var alerts *alert.Poster
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		alerts = alert.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
		slog.Info("slack alerts ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured, running without alerts")
	}

	// Processor, the main pipeline
	proc := processor.New(registry, det, eng, ext, db, busClient, alerts, slog.Default())

	// Bus ingestion mirrors the HTTP message endpoint
	if err := busClient.Subscribe(bus.SubjectInbound, proc.HandleInbound); err != nil {
		slog.Error("failed to subscribe to inbound messages", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewCampaignServer(cfg.Port, cfg.APIKey, cfg.RateLimitPerMin,
		proc, registry, db, busClient, alerts, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := busClient.Publish(bus.SubjectRegistered, bus.AgentRegistration{
		Agent:        "jaal",
		Role:         "honeypot",
		Capabilities: []string{"scam_detection", "engagement", "intel_extraction", "campaign_detection"},
		Port:         cfg.Port,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("jaal ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("jaal stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
