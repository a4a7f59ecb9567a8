package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	anthropicadapter "github.com/couchcryptid/natural-events-service/internal/adapter/anthropic"
	"github.com/couchcryptid/natural-events-service/internal/domain"
	"github.com/couchcryptid/natural-events-service/internal/observability"
	"github.com/couchcryptid/natural-events-service/internal/summarize"
)

var (
	reportSummarize bool
	reportJSON      bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print per-category and per-region event counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportSummarize && cfg.AnthropicAPIKey == "" {
			return errors.New("--summarize requires ANTHROPIC_API_KEY")
		}

		p := newPipeline()
		report, snap, err := p.Report(cmd.Context())
		if err != nil {
			return fmt.Errorf("build report: %w", err)
		}
		if snap.Stale {
			logger.Warn("report built from stale data", "fetched_at", snap.FetchedAt)
		}

		var summary string
		if reportSummarize {
			client := anthropicadapter.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
			svc := summarize.NewService(client, summarize.Options{Timeout: cfg.SummarizerTimeout},
				observability.NewMetricsForTesting(), logger)
			summary = svc.SummarizeReport(cmd.Context(), report)
		}

		out := cmd.OutOrStdout()
		if reportJSON {
			return writeJSON(out, struct {
				domain.AggregateReport
				Summary string `json:"summary,omitempty"`
			}{report, summary})
		}
		return writeReport(out, report, summary)
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportSummarize, "summarize", false, "append a generated narrative summary")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(reportCmd)
}

func writeReport(w io.Writer, report domain.AggregateReport, summary string) error {
	if _, err := fmt.Fprintf(w, "Total events: %d\n", report.TotalCount); err != nil {
		return err
	}
	if text := domain.SummaryText(report); text != "" {
		if _, err := fmt.Fprintln(w, text); err != nil {
			return err
		}
	}
	if summary != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", summary); err != nil {
			return err
		}
	}
	return nil
}
