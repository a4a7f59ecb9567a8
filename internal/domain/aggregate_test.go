package domain

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func classified(category, region string) ClassifiedEvent {
	return ClassifiedEvent{Category: category, Region: region}
}

func TestAggregate_WildfiresByRegion(t *testing.T) {
	events := []ClassifiedEvent{
		classified("Wildfires", RegionNorthAmerica),
		classified("Wildfires", RegionNorthAmerica),
		classified("Wildfires", RegionAfrica),
		classified("Wildfires", RegionNorthAmerica),
		classified("Wildfires", RegionAfrica),
	}

	report := Aggregate(events)

	assert.Equal(t, 5, report.TotalCount)
	assert.Equal(t, 5, report.ByCategory["Wildfires"])
	assert.Equal(t, map[string]int{RegionNorthAmerica: 3, RegionAfrica: 2}, report.ByCategoryRegion["Wildfires"])
}

func TestAggregate_UnlocatedEventsCountedInCategoryOnly(t *testing.T) {
	events := []ClassifiedEvent{
		classified("Floods", RegionAsia),
		classified("Floods", ""),
		classified(CategoryGeneric, ""),
	}

	report := Aggregate(events)

	want := AggregateReport{
		TotalCount:       3,
		ByCategory:       map[string]int{"Floods": 2, CategoryGeneric: 1},
		ByCategoryRegion: map[string]map[string]int{"Floods": {RegionAsia: 1}},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_Empty(t *testing.T) {
	report := Aggregate(nil)

	assert.Equal(t, 0, report.TotalCount)
	assert.Empty(t, report.ByCategory)
	assert.Empty(t, report.ByCategoryRegion)
	assert.Equal(t, "", SummaryText(report))
}

func TestSummaryText(t *testing.T) {
	report := Aggregate([]ClassifiedEvent{
		classified("Wildfires", RegionNorthAmerica),
		classified("Wildfires", RegionAfrica),
		classified("Wildfires", RegionNorthAmerica),
		classified("Severe Storms", RegionAsia),
		classified("Severe Storms", ""),
		classified("Earthquakes", ""),
	})

	text := SummaryText(report)

	lines := strings.Split(text, "\n")
	assert.Equal(t, []string{
		"Category Earthquakes: 1 total events. Distribution: []",
		"Category Severe Storms: 2 total events. Distribution: [Asia: 1]",
		"Category Wildfires: 3 total events. Distribution: [North America: 2, Africa: 1]",
	}, lines)
}

func TestSummaryText_TiesSortedByName(t *testing.T) {
	report := Aggregate([]ClassifiedEvent{
		classified("Floods", RegionEurope),
		classified("Floods", RegionAsia),
	})

	assert.Equal(t, "Category Floods: 2 total events. Distribution: [Asia: 1, Europe: 1]", SummaryText(report))
}
