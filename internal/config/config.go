package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port              int
	NatsURL           string
	NatsToken         string
	DatabaseURL       string
	LogLevel          string
	APIKey            string
	RateLimitPerMin   int
	HumanBehaviorProb float64
	TonePrefixProb    float64
	SlackBotToken     string
	SlackChannel      string
	LegacyStorePath   string
}

func Load() Config {
	return Config{
		Port:              envInt("JAAL_PORT", 8760),
		NatsURL:           envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:         envStr("NATS_TOKEN", ""),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		APIKey:            envStr("JAAL_API_KEY", ""),
		RateLimitPerMin:   envInt("JAAL_RATE_LIMIT_PER_MINUTE", 120),
		HumanBehaviorProb: envFloat("JAAL_HUMAN_BEHAVIOR_PROB", 0.20),
		TonePrefixProb:    envFloat("JAAL_TONE_PREFIX_PROB", 0.30),
		SlackBotToken:     envStr("JAAL_SLACK_TOKEN", ""),
		SlackChannel:      envStr("JAAL_SLACK_CHANNEL", ""),
		LegacyStorePath:   envStr("JAAL_LEGACY_STORE", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
