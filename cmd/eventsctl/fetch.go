package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/natural-events-service/internal/domain"
)

var (
	fetchRaw  bool
	fetchJSON bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and classify the current event list",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPipeline()
		out := cmd.OutOrStdout()

		if fetchRaw {
			res, err := p.Raw(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch events: %w", err)
			}
			return writeJSON(out, res.Events)
		}

		snap, err := p.Classified(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}
		if fetchJSON {
			return writeJSON(out, snap.Events)
		}
		return writeEventTable(out, snap.Events)
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchRaw, "raw", false, "print upstream events without classification")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print classified events as JSON")
	rootCmd.AddCommand(fetchCmd)
}

func writeEventTable(w io.Writer, events []domain.ClassifiedEvent) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tREGION\tLAT\tLON\tTITLE")
	for _, ev := range events {
		lat, lon := "-", "-"
		if ev.Geo != nil {
			lat = fmt.Sprintf("%.3f", ev.Geo.Lat)
			lon = fmt.Sprintf("%.3f", ev.Geo.Lon)
		}
		region := ev.Region
		if region == "" {
			region = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", ev.ID, ev.Category, region, lat, lon, ev.Title)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
