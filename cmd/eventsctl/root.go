package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/natural-events-service/internal/adapter/eonet"
	"github.com/couchcryptid/natural-events-service/internal/cache"
	"github.com/couchcryptid/natural-events-service/internal/config"
	"github.com/couchcryptid/natural-events-service/internal/observability"
	"github.com/couchcryptid/natural-events-service/internal/pipeline"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "eventsctl",
	Short: "Inspect the natural event feed from the command line",
	Long:  "Fetches open events from NASA EONET, classifies them by category and region, and prints the result or an aggregate report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		logger = observability.NewStderrLogger(cfg)
		return nil
	},
	SilenceUsage: true,
}

// newPipeline wires a one-shot pipeline without publishing. Metrics are
// collected but never exposed.
func newPipeline() *pipeline.Pipeline {
	metrics := observability.NewMetricsForTesting()
	client := eonet.NewClient(eonet.OptionsFromConfig(cfg), metrics, logger)
	events := cache.New(client, cfg.CacheTTL, metrics, logger, cache.WithFetchTimeout(cfg.EONETTimeout))
	return pipeline.New(events, nil, logger, metrics)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
