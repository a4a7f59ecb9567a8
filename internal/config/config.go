package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultEONETURL is the NASA EONET v3 events endpoint.
const DefaultEONETURL = "https://eonet.gsfc.nasa.gov/api/v3/events"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Upstream feed.
	EONETURL       string
	EONETStatus    string
	EONETLimit     int
	EONETDays      int
	EONETTimeout   time.Duration
	EONETUserAgent string

	// Cache and polling.
	CacheTTL        time.Duration
	PollSchedule    string
	BreakerFailures uint32
	BreakerCooldown time.Duration

	// Kafka publishing of classified batches.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Summarizer (Anthropic).
	SummarizerEnabled bool
	AnthropicAPIKey   string
	AnthropicModel    string
	SummarizerTimeout time.Duration
	SummarizerRate    float64

	HighlightDuration time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	eonetTimeout, err := parsePositiveDuration("EONET_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	breakerCooldown, err := parsePositiveDuration("BREAKER_COOLDOWN", "1m")
	if err != nil {
		return nil, err
	}
	summarizerTimeout, err := parsePositiveDuration("SUMMARIZER_TIMEOUT", "20s")
	if err != nil {
		return nil, err
	}
	highlight, err := parsePositiveDuration("HIGHLIGHT_DURATION", "2s")
	if err != nil {
		return nil, err
	}

	limit, err := parsePositiveInt("EONET_LIMIT", 30)
	if err != nil {
		return nil, err
	}
	days, err := parsePositiveInt("EONET_DAYS", 30)
	if err != nil {
		return nil, err
	}
	failures, err := parsePositiveInt("BREAKER_FAILURES", 5)
	if err != nil {
		return nil, err
	}

	rate, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("SUMMARIZER_RATE", "0.5"), 64)
	if err != nil || rate <= 0 {
		return nil, errors.New("invalid SUMMARIZER_RATE")
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	summarizerEnabled := apiKey != ""
	if v := os.Getenv("SUMMARIZER_ENABLED"); v != "" {
		summarizerEnabled = v == "true"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	// An explicitly empty POLL_SCHEDULE disables background polling.
	pollSchedule, ok := os.LookupEnv("POLL_SCHEDULE")
	if !ok {
		pollSchedule = "@every 5m"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     splitList(sharedcfg.EnvOrDefault("CORS_ORIGINS", "*")),

		EONETURL:       sharedcfg.EnvOrDefault("EONET_URL", DefaultEONETURL),
		EONETStatus:    sharedcfg.EnvOrDefault("EONET_STATUS", "open"),
		EONETLimit:     limit,
		EONETDays:      days,
		EONETTimeout:   eonetTimeout,
		EONETUserAgent: sharedcfg.EnvOrDefault("EONET_USER_AGENT", "natural-events-service/1.0 (+https://github.com/couchcryptid/natural-events-service)"),

		CacheTTL:        cacheTTL,
		PollSchedule:    strings.TrimSpace(pollSchedule),
		BreakerFailures: uint32(failures), //nolint:gosec // bounded by parsePositiveInt
		BreakerCooldown: breakerCooldown,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "classified-natural-events"),

		SummarizerEnabled: summarizerEnabled,
		AnthropicAPIKey:   apiKey,
		AnthropicModel:    sharedcfg.EnvOrDefault("ANTHROPIC_MODEL", "claude-haiku-4-5-20251001"),
		SummarizerTimeout: summarizerTimeout,
		SummarizerRate:    rate,

		HighlightDuration: highlight,
	}

	if cfg.EONETURL == "" {
		return nil, errors.New("EONET_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when Kafka is enabled")
	}
	if cfg.SummarizerEnabled && cfg.AnthropicAPIKey == "" {
		return nil, errors.New("SUMMARIZER_ENABLED is true but ANTHROPIC_API_KEY is not set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 10000 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
