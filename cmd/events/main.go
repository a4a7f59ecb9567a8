package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	anthropicadapter "github.com/couchcryptid/natural-events-service/internal/adapter/anthropic"
	"github.com/couchcryptid/natural-events-service/internal/adapter/eonet"
	httpadapter "github.com/couchcryptid/natural-events-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/natural-events-service/internal/adapter/kafka"
	"github.com/couchcryptid/natural-events-service/internal/cache"
	"github.com/couchcryptid/natural-events-service/internal/config"
	"github.com/couchcryptid/natural-events-service/internal/observability"
	"github.com/couchcryptid/natural-events-service/internal/pipeline"
	"github.com/couchcryptid/natural-events-service/internal/summarize"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := eonet.NewClient(eonet.OptionsFromConfig(cfg), metrics, logger)
	events := cache.New(client, cfg.CacheTTL, metrics, logger, cache.WithFetchTimeout(cfg.EONETTimeout))

	// Publishing is feature-flagged via KAFKA_ENABLED.
	var (
		loader pipeline.BatchLoader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	// Summaries are feature-flagged via SUMMARIZER_ENABLED / ANTHROPIC_API_KEY.
	var summarizer summarize.Summarizer
	if cfg.SummarizerEnabled {
		summarizer = anthropicadapter.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		logger.Info("summarizer enabled", "model", cfg.AnthropicModel, "timeout", cfg.SummarizerTimeout)
	} else {
		logger.Info("summarizer disabled")
	}
	summaries := summarize.NewService(summarizer, summarize.Options{
		Timeout: cfg.SummarizerTimeout,
		Rate:    cfg.SummarizerRate,
	}, metrics, logger)

	p := pipeline.New(events, loader, logger, metrics)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:              cfg.HTTPAddr,
		CORSOrigins:       cfg.CORSOrigins,
		HighlightDuration: cfg.HighlightDuration,
	}, p, summaries, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start background poller.
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		if err := p.Run(ctx, cfg.PollSchedule); err != nil {
			logger.Error("poller error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	// Close the writer only after the poller has stopped publishing.
	select {
	case <-pollerDone:
	case <-shutdownCtx.Done():
		logger.Warn("poller did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
