package domain

import (
	"fmt"
	"sort"
	"strings"
)

// AggregateReport summarizes a classified batch.
type AggregateReport struct {
	TotalCount       int                       `json:"total_count"`
	ByCategory       map[string]int            `json:"by_category"`
	ByCategoryRegion map[string]map[string]int `json:"by_category_region"`
}

// Aggregate counts events per category and per category x region. Events
// without a region are counted in ByCategory only.
func Aggregate(events []ClassifiedEvent) AggregateReport {
	report := AggregateReport{
		TotalCount:       len(events),
		ByCategory:       make(map[string]int),
		ByCategoryRegion: make(map[string]map[string]int),
	}

	for i := range events {
		ev := &events[i]
		report.ByCategory[ev.Category]++
		if ev.Region == "" {
			continue
		}
		regions, ok := report.ByCategoryRegion[ev.Category]
		if !ok {
			regions = make(map[string]int)
			report.ByCategoryRegion[ev.Category] = regions
		}
		regions[ev.Region]++
	}
	return report
}

// summaryLineSeparator joins per-category lines in SummaryText.
const summaryLineSeparator = "\n"

// SummaryText renders a report as one line per category:
//
//	Category <tag>: <total> total events. Distribution: [<region>: <count>, ...]
//
// Categories are sorted by name; regions by count (descending) then name, so
// the output is stable for identical reports. The summarizer prompt is built
// from this text. An empty report renders as "".
func SummaryText(report AggregateReport) string {
	if len(report.ByCategory) == 0 {
		return ""
	}

	categories := make([]string, 0, len(report.ByCategory))
	for c := range report.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, fmt.Sprintf("Category %s: %d total events. Distribution: [%s]",
			c, report.ByCategory[c], formatDistribution(report.ByCategoryRegion[c])))
	}
	return strings.Join(lines, summaryLineSeparator)
}

func formatDistribution(regions map[string]int) string {
	if len(regions) == 0 {
		return ""
	}

	names := make([]string, 0, len(regions))
	for r := range regions {
		names = append(names, r)
	}
	sort.Slice(names, func(i, j int) bool {
		if regions[names[i]] != regions[names[j]] {
			return regions[names[i]] > regions[names[j]]
		}
		return names[i] < names[j]
	})

	parts := make([]string, len(names))
	for i, r := range names {
		parts[i] = fmt.Sprintf("%s: %d", r, regions[r])
	}
	return strings.Join(parts, ", ")
}
