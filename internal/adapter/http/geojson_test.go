package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/natural-events-service/internal/correlate"
	"github.com/couchcryptid/natural-events-service/internal/domain"
)

func located(id, title string, lat, lon float64) domain.ClassifiedEvent {
	return domain.ClassifiedEvent{
		RawEvent: domain.RawEvent{ID: id, Title: title},
		Category: "Wildfires",
		Geo:      &domain.Geo{Lat: lat, Lon: lon},
	}
}

func TestGeoJSONPresenter_DuplicateIDSingleFeature(t *testing.T) {
	p := newGeoJSONPresenter()
	correlate.New().Render(p, []domain.ClassifiedEvent{
		located("EONET_1", "first", 10, 20),
		located("EONET_2", "other", 30, 40),
		located("EONET_1", "second", 11, 21),
	})

	fc := p.collection()
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "EONET_1", fc.Features[0].ID)
	assert.Equal(t, "second", fc.Features[0].Properties["title"])
	assert.Equal(t, []float64{21, 11}, fc.Features[0].Geometry.FlatCoords())
	assert.Equal(t, "EONET_2", fc.Features[1].ID)
}

func TestGeoJSONPresenter_FocusMarksFeature(t *testing.T) {
	p := newGeoJSONPresenter()
	c := correlate.New()
	c.Render(p, []domain.ClassifiedEvent{
		located("EONET_1", "fire", 10, 20),
		located("EONET_2", "other", 30, 40),
	})
	require.True(t, c.Focus("EONET_2"))

	fc := p.collection()
	require.Len(t, fc.Features, 2)
	assert.NotContains(t, fc.Features[0].Properties, "focused")
	assert.Equal(t, true, fc.Features[1].Properties["focused"])
	assert.Equal(t, true, fc.Features[1].Properties["highlighted"])
}
